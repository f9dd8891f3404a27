// Локальный HTTP API только для чтения:
//
//	GET /api/v1/health        # Состояние и число активных записей
//	GET /api/v1/entries       # Активные записи, ?tag= для фильтра по тегу
//	GET /api/v1/entries/{id}  # Одна запись
//	GET /api/v1/tags          # Теги с количеством записей
//
// Значения секретных свойств всегда маскируются.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	entriesAPI "pwmgr/internal/app/api/http/entries"
	healthAPI "pwmgr/internal/app/api/http/health"
	"pwmgr/internal/app/api/http/middleware"
	"pwmgr/internal/app/api/http/middleware/logger"
	"pwmgr/internal/infrastructure/storage"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"golang.org/x/exp/slog"
)

const (
	Title   = "pwmgr API"
	Version = "1.0.0"

	shutdownTimeout   = 5 * time.Second
	readHeaderTimeout = 5 * time.Second
)

type Handlers struct {
	Health  *healthAPI.Handler
	Entries *entriesAPI.Handler
}

// New создает *chi.Mux со всеми операциями, зарегистрированными через huma.Register
func New(store storage.ReadStore, log *slog.Logger) *chi.Mux {
	mux := chi.NewMux()

	API := humachi.New(mux, huma.DefaultConfig(Title, Version))

	h := handlers(store, log)
	h.Health.SetupRoutes(API)
	h.Entries.SetupRoutes(API)

	return mux
}

func handlers(store storage.ReadStore, log *slog.Logger) *Handlers {
	loggerMW := logger.New(log)
	middlewares := middleware.NewContainer()

	middlewares.Add(loggerMW.Middleware())
	healthHandler := healthAPI.NewHandler(store, log, middlewares.GetAllAndClear())

	middlewares.Add(loggerMW.Middleware())
	entriesHandler := entriesAPI.NewHandler(store, log, middlewares.GetAllAndClear())

	return &Handlers{
		Health:  healthHandler,
		Entries: entriesHandler,
	}
}

// Serve обслуживает API на addr до отмены ctx
func Serve(ctx context.Context, addr string, store storage.ReadStore, log *slog.Logger) error {
	log = log.With("component", "api")

	srv := &http.Server{
		Addr:              addr,
		Handler:           New(store, log),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("API запущен", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("ошибка запуска API: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("ошибка остановки API: %w", err)
	}
	log.Info("API остановлен")
	return nil
}
