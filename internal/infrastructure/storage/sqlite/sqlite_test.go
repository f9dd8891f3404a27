package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"pwmgr/internal/domain/entry"
	"pwmgr/internal/infrastructure/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()

	s, err := New(context.Background(), filepath.Join(t.TempDir(), "db", "pwmgr.db"), slog.Default())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	return s
}

// indexPairs читает пары (tag, id) напрямую из индекса
func indexPairs(t *testing.T, s *Storage) map[string][]string {
	t.Helper()

	rows, err := s.db.Query(`SELECT tag, id FROM tags ORDER BY tag, id`)
	require.NoError(t, err)
	defer rows.Close()

	pairs := map[string][]string{}
	for rows.Next() {
		var tag string
		var raw []byte
		require.NoError(t, rows.Scan(&tag, &raw))
		id, err := entry.IDFromBytes(raw)
		require.NoError(t, err)
		pairs[tag] = append(pairs[tag], id.String())
	}
	require.NoError(t, rows.Err())

	return pairs
}

func TestStorage_PutGet(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)

	e := entry.New(entry.NewID(), "Alpha", []string{"alp"}, []string{"t1"}, map[string]string{"user": "alice"})
	require.NoError(t, s.Put(ctx, e))

	got, err := s.Get(ctx, e.ID())
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, e.Equal(got))

	missing, err := s.Get(ctx, entry.NewID())
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestStorage_AllIDs(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)

	a := entry.New(entry.NewID(), "A", nil, nil, nil)
	b := entry.New(entry.NewID(), "B", nil, nil, nil)
	b.SetRemoved(true)
	require.NoError(t, s.Put(ctx, b))
	require.NoError(t, s.Put(ctx, a))

	ids, err := s.AllIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []entry.ID{a.ID(), b.ID()}, ids)

	active, err := s.AllIDsFiltered(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, []entry.ID{a.ID()}, active)

	all, err := s.AllIDsFiltered(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestStorage_TagIndex(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)

	id := entry.NewID()
	e := entry.New(id, "Alpha", nil, []string{"a", "b"}, nil)
	require.NoError(t, s.Put(ctx, e))
	assert.Equal(t, map[string][]string{"a": {id.String()}, "b": {id.String()}}, indexPairs(t, s))

	// {a,b} -> {b,c}
	e = entry.New(id, "Alpha", nil, []string{"b", "c"}, nil)
	require.NoError(t, s.Put(ctx, e))
	assert.Equal(t, map[string][]string{"b": {id.String()}, "c": {id.String()}}, indexPairs(t, s))

	ids, err := s.TaggedIDs(ctx, "a")
	require.NoError(t, err)
	assert.Empty(t, ids)

	ids, err = s.TaggedIDs(ctx, "c")
	require.NoError(t, err)
	assert.Equal(t, []entry.ID{id}, ids)
}

func TestStorage_PutTransitions(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name         string
		priorTags    []string
		priorRemoved bool
		hasPrior     bool
		newTags      []string
		newRemoved   bool
		wantIndexed  []string
	}{
		{name: "absent to active", newTags: []string{"x"}, wantIndexed: []string{"x"}},
		{name: "absent to removed", newTags: []string{"x"}, newRemoved: true},
		{name: "active to active", hasPrior: true, priorTags: []string{"x", "y"}, newTags: []string{"y", "z"}, wantIndexed: []string{"y", "z"}},
		{name: "active to removed", hasPrior: true, priorTags: []string{"x"}, newTags: []string{"x"}, newRemoved: true},
		{name: "removed to active", hasPrior: true, priorTags: []string{"x"}, priorRemoved: true, newTags: []string{"x", "y"}, wantIndexed: []string{"x", "y"}},
		{name: "removed to removed", hasPrior: true, priorTags: []string{"x"}, priorRemoved: true, newTags: []string{"y"}, newRemoved: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStorage(t)
			id := entry.NewID()

			if tt.hasPrior {
				prior := entry.New(id, "svc", nil, tt.priorTags, nil)
				prior.SetRemoved(tt.priorRemoved)
				require.NoError(t, s.Put(ctx, prior))
			}

			next := entry.New(id, "svc", nil, tt.newTags, nil)
			next.SetRemoved(tt.newRemoved)
			require.NoError(t, s.Put(ctx, next))

			var indexed []string
			for tag, ids := range indexPairs(t, s) {
				assert.Equal(t, []string{id.String()}, ids)
				indexed = append(indexed, tag)
			}
			assert.ElementsMatch(t, tt.wantIndexed, indexed)
		})
	}
}

func TestStorage_Remove(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)

	e := entry.New(entry.NewID(), "Alpha", nil, []string{"x", "y"}, nil)
	require.NoError(t, s.Put(ctx, e))
	require.NoError(t, s.Remove(ctx, e.ID()))

	got, err := s.Get(ctx, e.ID())
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Empty(t, indexPairs(t, s))

	// удаление отсутствующей записи не является ошибкой
	require.NoError(t, s.Remove(ctx, entry.NewID()))
}

func TestStorage_AllTags(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)

	require.NoError(t, s.Put(ctx, entry.New(entry.NewID(), "A", nil, []string{"web", "mail"}, nil)))
	require.NoError(t, s.Put(ctx, entry.New(entry.NewID(), "B", nil, []string{"web"}, nil)))
	removed := entry.New(entry.NewID(), "C", nil, []string{"web", "old"}, nil)
	removed.SetRemoved(true)
	require.NoError(t, s.Put(ctx, removed))

	tags, err := s.AllTags(ctx)
	require.NoError(t, err)
	assert.Equal(t, []storage.TagCount{
		{Tag: "mail", Count: 1},
		{Tag: "web", Count: 2},
	}, tags)
}

func TestStorage_WriteTransactionRollback(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)
	boom := errors.New("boom")

	e := entry.New(entry.NewID(), "Alpha", nil, []string{"t"}, nil)
	err := s.WithWriteTransaction(ctx, func(w storage.Writer) error {
		require.NoError(t, w.Put(ctx, e))

		// внутри транзакции запись уже видна
		got, err := w.Get(ctx, e.ID())
		require.NoError(t, err)
		require.NotNil(t, got)

		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := s.Get(ctx, e.ID())
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Empty(t, indexPairs(t, s))
}

func TestStorage_WriteTransactionPanic(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)

	e := entry.New(entry.NewID(), "Alpha", nil, nil, nil)
	assert.Panics(t, func() {
		_ = s.WithWriteTransaction(ctx, func(w storage.Writer) error {
			require.NoError(t, w.Put(ctx, e))
			panic("unexpected")
		})
	})

	got, err := s.Get(ctx, e.ID())
	require.NoError(t, err)
	assert.Nil(t, got)

	// блокировка должна быть освобождена
	require.NoError(t, s.Put(ctx, e))
}

func TestStorage_WritersAreExclusive(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)

	entered := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)

	go func() {
		done <- s.WithWriteTransaction(ctx, func(w storage.Writer) error {
			close(entered)
			<-release
			return w.Put(ctx, entry.New(entry.NewID(), "first", nil, nil, nil))
		})
	}()
	<-entered

	waitCtx, cancel := context.WithTimeout(ctx, 200*time.Millisecond)
	defer cancel()

	second := make(chan error, 1)
	go func() {
		second <- s.WithWriteTransaction(waitCtx, func(storage.Writer) error { return nil })
	}()

	// второй писатель не должен войти, пока первый держит блокировку
	err := <-second
	assert.Error(t, err)

	close(release)
	require.NoError(t, <-done)
}

func TestStorage_ReadDuringWrite(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)

	existing := entry.New(entry.NewID(), "Alpha", nil, nil, nil)
	require.NoError(t, s.Put(ctx, existing))

	err := s.WithWriteTransaction(ctx, func(w storage.Writer) error {
		require.NoError(t, w.Put(ctx, entry.New(entry.NewID(), "Beta", nil, nil, nil)))

		// читатель видит только зафиксированное состояние
		ids, err := s.AllIDs(ctx)
		require.NoError(t, err)
		assert.Equal(t, []entry.ID{existing.ID()}, ids)
		return nil
	})
	require.NoError(t, err)

	ids, err := s.AllIDs(ctx)
	require.NoError(t, err)
	assert.Len(t, ids, 2)
}

func TestNew_InvalidPath(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	// родительский элемент пути является обычным файлом
	_, err := New(context.Background(), filepath.Join(blocker, "db", "pwmgr.db"), slog.Default())
	assert.ErrorIs(t, err, ErrOpen)
}

func TestNew_Reopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "pwmgr.db")

	s, err := New(ctx, path, slog.Default())
	require.NoError(t, err)
	e := entry.New(entry.NewID(), "Alpha", nil, []string{"t"}, nil)
	require.NoError(t, s.Put(ctx, e))
	require.NoError(t, s.Close())

	s, err = New(ctx, path, slog.Default())
	require.NoError(t, err)
	defer s.Close()

	got, err := s.Get(ctx, e.ID())
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, e.Equal(got))
}

func TestNew_PathWithSpecialCharacters(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		dir  string
	}{
		{name: "space", dir: "My Passwords"},
		{name: "hash", dir: "vault#1"},
		{name: "percent", dir: "100%"},
		{name: "question mark", dir: "why?"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.dir, "database.db")

			s, err := New(ctx, path, slog.Default())
			require.NoError(t, err)
			defer s.Close()

			e := entry.New(entry.NewID(), "Alpha", nil, nil, map[string]string{"user": "alice"})
			require.NoError(t, s.Put(ctx, e))

			// файл создан ровно по указанному пути
			info, err := os.Stat(path)
			require.NoError(t, err)
			assert.False(t, info.IsDir())

			got, err := s.Get(ctx, e.ID())
			require.NoError(t, err)
			assert.NotNil(t, got)
		})
	}
}

func TestStorage_TaggedIDsSkipsStaleIndex(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)

	active := entry.New(entry.NewID(), "Active", nil, []string{"work"}, nil)
	removed := entry.New(entry.NewID(), "Removed", nil, []string{"work"}, nil)
	removed.SetRemoved(true)
	require.NoError(t, s.Put(ctx, active))
	require.NoError(t, s.Put(ctx, removed))

	// устаревшая строка индекса для удаленной записи
	_, err := s.db.Exec(`INSERT INTO tags (tag, id) VALUES (?, ?)`, "work", removed.ID().Bytes())
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{active.ID().String(), removed.ID().String()}, indexPairs(t, s)["work"])

	ids, err := s.TaggedIDs(ctx, "work")
	require.NoError(t, err)
	assert.Equal(t, []entry.ID{active.ID()}, ids)
}
