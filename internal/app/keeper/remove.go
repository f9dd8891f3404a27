package keeper

import (
	"context"
	"fmt"
)

// Remove удаляет запись. Мягкое удаление помечает запись как удаленную,
// чтобы удаление дошло до других узлов при синхронизации; жесткое стирает ее.
func (a *App) Remove(ctx context.Context, rawID string, hard bool) error {
	id, err := parseID(rawID)
	if err != nil {
		return err
	}

	if hard {
		if err := a.store.Remove(ctx, id); err != nil {
			a.log.Error("ошибка удаления записи", "id", id.String(), "error", err)
			return fmt.Errorf("ошибка удаления записи: %w", err)
		}
		a.log.Debug("запись удалена", "id", id.String(), "hard", true)
		return nil
	}

	e, err := a.store.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("ошибка чтения записи: %w", err)
	}
	if e == nil {
		return notFound(id)
	}

	e.SetRemoved(true)
	e.SetLastUpdateNow()
	if err := a.store.Put(ctx, e); err != nil {
		a.log.Error("ошибка сохранения записи", "id", id.String(), "error", err)
		return fmt.Errorf("ошибка сохранения записи: %w", err)
	}

	a.log.Debug("запись удалена", "id", id.String(), "hard", false)
	return nil
}
