package entries

import (
	"context"

	"pwmgr/internal/domain/entry"
	"pwmgr/internal/infrastructure/storage"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"
)

// Reader - часть хранилища, нужная обработчику
type Reader interface {
	Get(ctx context.Context, id entry.ID) (*entry.Entry, error)
	List(ctx context.Context, excludeRemoved bool) ([]*entry.Entry, error)
	AllTags(ctx context.Context) ([]storage.TagCount, error)
	WithReadTransaction(ctx context.Context, fn func(storage.Reader) error) error
}

type Handler struct {
	store      Reader
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(store Reader, log *slog.Logger, mws huma.Middlewares) *Handler {
	return &Handler{
		store:      store,
		log:        log,
		middleware: mws,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.listOp(), h.list)
	huma.Register(api, h.findOp(), h.find)
	huma.Register(api, h.tagsOp(), h.tags)
}

func (h *Handler) list(ctx context.Context, input *listInput) (*listOutput, error) {
	var (
		items []*entry.Entry
		err   error
	)
	if input.Tag == "" {
		items, err = h.store.List(ctx, true)
	} else {
		items, err = h.tagged(ctx, input.Tag)
	}
	if err != nil {
		h.log.Error("failed to list entries", "tag", input.Tag, "error", err)
		return nil, huma.Error500InternalServerError("failed to list entries")
	}

	docs := make([]entry.Document, 0, len(items))
	for _, e := range items {
		docs = append(docs, masked(e))
	}

	return &listOutput{
		Body: listResponse{
			Entries: docs,
			Total:   len(docs),
		},
	}, nil
}

// tagged читает индекс и сами записи в одной транзакции чтения
func (h *Handler) tagged(ctx context.Context, tag string) (items []*entry.Entry, err error) {
	err = h.store.WithReadTransaction(ctx, func(r storage.Reader) error {
		ids, err := r.TaggedIDs(ctx, tag)
		if err != nil {
			return err
		}

		items = make([]*entry.Entry, 0, len(ids))
		for _, id := range ids {
			e, err := r.Get(ctx, id)
			if err != nil {
				return err
			}
			if e != nil {
				items = append(items, e)
			}
		}
		return nil
	})
	return items, err
}

func (h *Handler) find(ctx context.Context, input *findInput) (*findOutput, error) {
	id, err := entry.ParseID(input.ID)
	if err != nil {
		return nil, huma.Error400BadRequest("invalid entry id", err)
	}

	e, err := h.store.Get(ctx, id)
	if err != nil {
		h.log.Error("failed to get entry", "id", input.ID, "error", err)
		return nil, huma.Error500InternalServerError("failed to get entry")
	}
	if e == nil {
		return nil, huma.Error404NotFound("entry not found", entry.ErrNotFound)
	}

	return &findOutput{Body: masked(e)}, nil
}

func (h *Handler) tags(ctx context.Context, _ *struct{}) (*tagsOutput, error) {
	tags, err := h.store.AllTags(ctx)
	if err != nil {
		h.log.Error("failed to list tags", "error", err)
		return nil, huma.Error500InternalServerError("failed to list tags")
	}
	if tags == nil {
		tags = []storage.TagCount{}
	}

	return &tagsOutput{
		Body: tagsResponse{Tags: tags},
	}, nil
}

func masked(e *entry.Entry) entry.Document {
	c := e.Clone()
	c.MaskSecretProperties()
	return c.Document()
}
