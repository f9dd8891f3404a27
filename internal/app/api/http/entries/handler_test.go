package entries

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"pwmgr/internal/domain/entry"
	"pwmgr/internal/infrastructure/storage"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

type MockReader struct {
	mock.Mock
	// Tx получает вызовы внутри WithReadTransaction; nil - сам мок
	Tx *MockReader
}

func (m *MockReader) WithReadTransaction(ctx context.Context, fn func(storage.Reader) error) error {
	args := m.Called(ctx)
	if err := args.Error(0); err != nil {
		return err
	}
	if m.Tx != nil {
		return fn(m.Tx)
	}
	return fn(m)
}

func (m *MockReader) AllIDs(ctx context.Context) ([]entry.ID, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entry.ID), args.Error(1)
}

func (m *MockReader) AllIDsFiltered(ctx context.Context, excludeRemoved bool) ([]entry.ID, error) {
	args := m.Called(ctx, excludeRemoved)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entry.ID), args.Error(1)
}

func (m *MockReader) Get(ctx context.Context, id entry.ID) (*entry.Entry, error) {
	args := m.Called(ctx, id)
	// Безопасное приведение nil к указателю
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entry.Entry), args.Error(1)
}

func (m *MockReader) List(ctx context.Context, excludeRemoved bool) ([]*entry.Entry, error) {
	args := m.Called(ctx, excludeRemoved)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entry.Entry), args.Error(1)
}

func (m *MockReader) TaggedIDs(ctx context.Context, tag string) ([]entry.ID, error) {
	args := m.Called(ctx, tag)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entry.ID), args.Error(1)
}

func (m *MockReader) AllTags(ctx context.Context) ([]storage.TagCount, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]storage.TagCount), args.Error(1)
}

func secretEntry() *entry.Entry {
	return entry.New(entry.NewID(), "github", nil, []string{"dev"}, map[string]string{"user": "bob", "password!": "hunter2"})
}

func TestHandler_list(t *testing.T) {
	e := secretEntry()

	t.Run("all active entries masked", func(t *testing.T) {
		store := new(MockReader)
		store.On("List", mock.Anything, true).Return([]*entry.Entry{e}, nil)
		h := NewHandler(store, slog.Default(), huma.Middlewares{})

		out, err := h.list(context.Background(), &listInput{})

		require.NoError(t, err)
		require.Len(t, out.Body.Entries, 1)
		assert.Equal(t, 1, out.Body.Total)
		assert.Equal(t, entry.SecretMask, out.Body.Entries[0].Properties["password!"])
		assert.Equal(t, "hunter2", e.Properties()["password!"])
		store.AssertExpectations(t)
	})

	t.Run("by tag in one read transaction", func(t *testing.T) {
		tx := new(MockReader)
		tx.On("TaggedIDs", mock.Anything, "dev").Return([]entry.ID{e.ID()}, nil)
		tx.On("Get", mock.Anything, e.ID()).Return(e, nil)

		store := &MockReader{Tx: tx}
		store.On("WithReadTransaction", mock.Anything).Return(nil).Once()
		h := NewHandler(store, slog.Default(), huma.Middlewares{})

		out, err := h.list(context.Background(), &listInput{Tag: "dev"})

		require.NoError(t, err)
		require.Len(t, out.Body.Entries, 1)
		assert.Equal(t, e.ID().String(), out.Body.Entries[0].ID)
		store.AssertExpectations(t)
		tx.AssertExpectations(t)
		// вне транзакции хранилище не читается
		store.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
		store.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
		store.AssertNotCalled(t, "TaggedIDs", mock.Anything, mock.Anything)
	})

	t.Run("by tag transaction error", func(t *testing.T) {
		store := new(MockReader)
		store.On("WithReadTransaction", mock.Anything).Return(errors.New("database is locked"))
		h := NewHandler(store, slog.Default(), huma.Middlewares{})

		out, err := h.list(context.Background(), &listInput{Tag: "dev"})

		assert.Nil(t, out)
		assert.Error(t, err)
	})

	t.Run("storage error", func(t *testing.T) {
		store := new(MockReader)
		store.On("List", mock.Anything, true).Return(nil, errors.New("boom"))
		h := NewHandler(store, slog.Default(), huma.Middlewares{})

		out, err := h.list(context.Background(), &listInput{})

		assert.Nil(t, out)
		assert.Error(t, err)
	})
}

func TestHandler_HTTP(t *testing.T) {
	e := secretEntry()
	missing := entry.NewID()

	store := new(MockReader)
	store.On("Get", mock.Anything, e.ID()).Return(e, nil)
	store.On("Get", mock.Anything, missing).Return(nil, nil)
	store.On("AllTags", mock.Anything).Return(nil, nil)

	_, api := humatest.New(t)
	NewHandler(store, slog.Default(), huma.Middlewares{}).SetupRoutes(api)

	t.Run("find", func(t *testing.T) {
		resp := api.Get("/api/v1/entries/" + e.ID().String())
		require.Equal(t, http.StatusOK, resp.Code)

		var doc entry.Document
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &doc))
		assert.Equal(t, "github", doc.Service)
		assert.Equal(t, entry.SecretMask, doc.Properties["password!"])
		assert.Equal(t, "bob", doc.Properties["user"])
	})

	t.Run("not found", func(t *testing.T) {
		resp := api.Get("/api/v1/entries/" + missing.String())
		assert.Equal(t, http.StatusNotFound, resp.Code)
	})

	t.Run("bad id", func(t *testing.T) {
		resp := api.Get("/api/v1/entries/not-a-ulid")
		assert.Equal(t, http.StatusBadRequest, resp.Code)
	})

	t.Run("empty tags", func(t *testing.T) {
		resp := api.Get("/api/v1/tags")
		require.Equal(t, http.StatusOK, resp.Code)

		var body map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
		assert.JSONEq(t, `[]`, string(body["tags"]))
	})
}
