package health

import (
	"context"

	"pwmgr/internal/domain/entry"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"
)

// Counter перечисляет ID записей
type Counter interface {
	AllIDsFiltered(ctx context.Context, excludeRemoved bool) ([]entry.ID, error)
}

type Handler struct {
	store      Counter
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(store Counter, log *slog.Logger, middleware huma.Middlewares) *Handler {
	return &Handler{
		store:      store,
		log:        log,
		middleware: middleware,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.healthCheckOp(), h.healthCheck)
}

func (h *Handler) healthCheck(ctx context.Context, _ *Input) (*Output, error) {
	h.log.Debug("health check request received")

	ids, err := h.store.AllIDsFiltered(ctx, true)
	if err != nil {
		h.log.Error("health check failed", "error", err)
		return nil, huma.Error503ServiceUnavailable("storage unavailable")
	}

	return &Output{
		Body: Response{
			Status:  "OK",
			Entries: len(ids),
		},
	}, nil
}
