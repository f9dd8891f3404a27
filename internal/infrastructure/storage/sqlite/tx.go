package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"

	"pwmgr/internal/domain/entry"
	"pwmgr/internal/infrastructure/storage"

	"golang.org/x/exp/slog"
)

type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// txView реализует storage.Writer поверх одной транзакции
type txView struct {
	q   queryer
	log *slog.Logger
}

func (t *txView) Get(ctx context.Context, id entry.ID) (*entry.Entry, error) {
	const query = `SELECT body FROM entries WHERE id = ?`

	var body []byte
	err := t.q.QueryRowContext(ctx, query, id.Bytes()).Scan(&body)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		t.log.Error("failed to get entry", "id", id.String(), "error", err)
		return nil, fmt.Errorf("get entry: %w", err)
	}

	e, err := entry.Unmarshal(body)
	if err != nil {
		return nil, fmt.Errorf("decode entry %s: %w", id, err)
	}
	return e, nil
}

func (t *txView) AllIDs(ctx context.Context) ([]entry.ID, error) {
	const query = `SELECT id FROM entries ORDER BY id`

	rows, err := t.q.QueryContext(ctx, query)
	if err != nil {
		t.log.Error("failed to list ids", "error", err)
		return nil, fmt.Errorf("list ids: %w", err)
	}
	defer rows.Close()

	ids := []entry.ID{}
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan id: %w", err)
		}
		id, err := entry.IDFromBytes(raw)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list ids: %w", err)
	}

	return ids, nil
}

func (t *txView) AllIDsFiltered(ctx context.Context, excludeRemoved bool) ([]entry.ID, error) {
	if !excludeRemoved {
		return t.AllIDs(ctx)
	}

	entries, err := t.List(ctx, true)
	if err != nil {
		return nil, err
	}

	ids := make([]entry.ID, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.ID())
	}
	return ids, nil
}

func (t *txView) List(ctx context.Context, excludeRemoved bool) ([]*entry.Entry, error) {
	const query = `SELECT body FROM entries ORDER BY id`

	rows, err := t.q.QueryContext(ctx, query)
	if err != nil {
		t.log.Error("failed to list entries", "error", err)
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	entries := []*entry.Entry{}
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		e, err := entry.Unmarshal(body)
		if err != nil {
			return nil, err
		}
		if excludeRemoved && e.IsRemoved() {
			continue
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}

	return entries, nil
}

func (t *txView) TaggedIDs(ctx context.Context, tag string) ([]entry.ID, error) {
	const query = `
		SELECT e.body
		FROM tags t
		JOIN entries e ON e.id = t.id
		WHERE t.tag = ?
		ORDER BY t.id`

	rows, err := t.q.QueryContext(ctx, query, tag)
	if err != nil {
		t.log.Error("failed to list tagged entries", "tag", tag, "error", err)
		return nil, fmt.Errorf("list tagged entries: %w", err)
	}
	defer rows.Close()

	ids := []entry.ID{}
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		e, err := entry.Unmarshal(body)
		if err != nil {
			return nil, err
		}
		// индекс не должен содержать удалённых записей, но проверяем всё равно
		if e.IsRemoved() {
			continue
		}
		ids = append(ids, e.ID())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tagged entries: %w", err)
	}

	return ids, nil
}

func (t *txView) AllTags(ctx context.Context) ([]storage.TagCount, error) {
	entries, err := t.List(ctx, true)
	if err != nil {
		return nil, err
	}

	counts := map[string]int{}
	for _, e := range entries {
		for _, tag := range e.Tags() {
			counts[tag]++
		}
	}

	result := make([]storage.TagCount, 0, len(counts))
	for tag, n := range counts {
		result = append(result, storage.TagCount{Tag: tag, Count: n})
	}
	slices.SortFunc(result, func(a, b storage.TagCount) int {
		return strings.Compare(a.Tag, b.Tag)
	})

	return result, nil
}

// Put сохраняет e и обновляет индекс тегов по разнице между тегами старой и новой версии.
// У удаленной записи тегов в индексе нет.
func (t *txView) Put(ctx context.Context, e *entry.Entry) error {
	prior, err := t.Get(ctx, e.ID())
	if err != nil {
		return err
	}

	var oldTags, newTags []string
	if prior != nil && !prior.IsRemoved() {
		oldTags = prior.Tags()
	}
	if !e.IsRemoved() {
		newTags = e.Tags()
	}

	id := e.ID().Bytes()
	for _, tag := range difference(oldTags, newTags) {
		if _, err := t.q.ExecContext(ctx, `DELETE FROM tags WHERE tag = ? AND id = ?`, tag, id); err != nil {
			return fmt.Errorf("unindex tag %q: %w", tag, err)
		}
	}
	for _, tag := range difference(newTags, oldTags) {
		if _, err := t.q.ExecContext(ctx, `INSERT OR IGNORE INTO tags (tag, id) VALUES (?, ?)`, tag, id); err != nil {
			return fmt.Errorf("index tag %q: %w", tag, err)
		}
	}

	body, err := entry.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode entry: %w", err)
	}

	const query = `
		INSERT INTO entries (id, body) VALUES (?, ?)
		ON CONFLICT (id) DO UPDATE SET body = excluded.body`

	if _, err := t.q.ExecContext(ctx, query, id, body); err != nil {
		t.log.Error("failed to put entry", "id", e.ID().String(), "error", err)
		return fmt.Errorf("put entry: %w", err)
	}

	return nil
}

// Remove удаляет запись и ее строки индекса; отсутствующая запись игнорируется
func (t *txView) Remove(ctx context.Context, id entry.ID) error {
	raw := id.Bytes()

	if _, err := t.q.ExecContext(ctx, `DELETE FROM tags WHERE id = ?`, raw); err != nil {
		return fmt.Errorf("unindex entry: %w", err)
	}
	if _, err := t.q.ExecContext(ctx, `DELETE FROM entries WHERE id = ?`, raw); err != nil {
		t.log.Error("failed to remove entry", "id", id.String(), "error", err)
		return fmt.Errorf("remove entry: %w", err)
	}

	return nil
}

// difference возвращает значения a, которых нет в b. Оба среза отсортированы и без повторов.
func difference(a, b []string) []string {
	var out []string
	for _, v := range a {
		if _, found := slices.BinarySearch(b, v); !found {
			out = append(out, v)
		}
	}
	return out
}
