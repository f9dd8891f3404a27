package keeper

import (
	"context"

	"pwmgr/internal/app/syncer"
)

// SyncServer ждет одного клиента и проводит с ним сеанс синхронизации
func (a *App) SyncServer(ctx context.Context, addr string) (*syncer.Result, error) {
	if addr == "" {
		addr = a.cfg.SyncAddress
	}
	return syncer.RunServer(ctx, addr, a.store, a.log)
}

// SyncClient подключается к серверу; конфликты разрешает пользователь
func (a *App) SyncClient(ctx context.Context, addr string) (*syncer.Result, error) {
	if addr == "" {
		addr = a.cfg.SyncAddress
	}
	return syncer.RunClient(ctx, addr, a.store, a.prompt, a.log)
}
