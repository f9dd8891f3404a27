package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"pwmgr/internal/domain/entry"
	"pwmgr/internal/infrastructure/storage/sqlite"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

func TestNew(t *testing.T) {
	ctx := context.Background()
	store, err := sqlite.New(ctx, filepath.Join(t.TempDir(), "pwmgr.db"), slog.Default())
	require.NoError(t, err)
	defer store.Close()

	active := entry.New(entry.NewID(), "github", nil, []string{"dev"}, map[string]string{"token!": "t"})
	gone := entry.New(entry.NewID(), "old", nil, []string{"dev"}, map[string]string{"k": "v"})
	gone.SetRemoved(true)
	require.NoError(t, store.Put(ctx, active))
	require.NoError(t, store.Put(ctx, gone))

	srv := httptest.NewServer(New(store, slog.Default()))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/v1/health")
	require.NoError(t, err)
	var health struct {
		Status  string `json:"status"`
		Entries int    `json:"entries"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	resp.Body.Close()
	assert.Equal(t, "OK", health.Status)
	assert.Equal(t, 1, health.Entries)

	resp, err = http.Get(srv.URL + "/api/v1/entries?tag=dev")
	require.NoError(t, err)
	var list struct {
		Entries []entry.Document `json:"entries"`
		Total   int              `json:"total"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	resp.Body.Close()
	require.Equal(t, 1, list.Total)
	assert.Equal(t, active.ID().String(), list.Entries[0].ID)
	assert.Equal(t, entry.SecretMask, list.Entries[0].Properties["token!"])
}

func TestServe_StopsOnCancel(t *testing.T) {
	store, err := sqlite.New(context.Background(), filepath.Join(t.TempDir(), "pwmgr.db"), slog.Default())
	require.NoError(t, err)
	defer store.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Serve(ctx, "127.0.0.1:0", store, slog.Default())
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not stop")
	}
}
