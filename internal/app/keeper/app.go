package keeper

import (
	"context"
	"fmt"
	"os"

	"pwmgr/internal/app/prompt"
	"pwmgr/internal/config"
	"pwmgr/internal/domain/entry"
	"pwmgr/internal/infrastructure/storage"
	"pwmgr/internal/infrastructure/storage/sqlite"

	"golang.org/x/exp/slog"
)

// App объединяет хранилище, конфигурацию и взаимодействие с пользователем
type App struct {
	cfg     *config.Config
	log     *slog.Logger
	store   storage.Store
	prompt  prompt.Prompter
	editor  EditorLauncher
	tempDir string
}

type Option func(*App)

func WithPrompter(p prompt.Prompter) Option {
	return func(a *App) {
		a.prompt = p
	}
}

func WithEditor(e EditorLauncher) Option {
	return func(a *App) {
		a.editor = e
	}
}

// WithTempDir задает каталог для временных YAML-файлов редактора
func WithTempDir(dir string) Option {
	return func(a *App) {
		a.tempDir = dir
	}
}

func New(cfg *config.Config, log *slog.Logger, store storage.Store, opts ...Option) *App {
	a := &App{
		cfg:     cfg,
		log:     log.With("component", "keeper"),
		store:   store,
		prompt:  prompt.NewStd(),
		editor:  DefaultEditor(cfg.Editor),
		tempDir: os.TempDir(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Open открывает базу из конфигурации и создает приложение
func Open(ctx context.Context, cfg *config.Config, log *slog.Logger, opts ...Option) (*App, error) {
	store, err := sqlite.New(ctx, cfg.DBPath, log)
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия базы данных: %w", err)
	}
	return New(cfg, log, store, opts...), nil
}

func (a *App) Close() error {
	return a.store.Close()
}

func (a *App) Store() storage.Store {
	return a.store
}

func (a *App) Config() *config.Config {
	return a.cfg
}

func parseID(raw string) (entry.ID, error) {
	id, err := entry.ParseID(raw)
	if err != nil {
		return entry.ID{}, fmt.Errorf("неверный формат ID %q: %w", raw, err)
	}
	return id, nil
}

func notFound(id entry.ID) error {
	return fmt.Errorf("запись %s: %w", id, entry.ErrNotFound)
}
