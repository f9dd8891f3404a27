package keeper

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"pwmgr/internal/domain/entry"
	"pwmgr/internal/infrastructure/storage"
)

type ListSort int

const (
	SortByID ListSort = iota
	SortByService
	SortByLastUpdate
)

type ListOptions struct {
	// Tags - фильтр по тегам без учета регистра
	Tags []string
	// TagAnd требует наличия всех тегов вместо любого из них
	TagAnd      bool
	WithRemoved bool
	Sort        ListSort
	Reverse     bool
}

// List возвращает записи в порядке, заданном opts
func (a *App) List(ctx context.Context, opts ListOptions) ([]*entry.Entry, error) {
	var entries []*entry.Entry

	err := a.store.WithReadTransaction(ctx, func(r storage.Reader) error {
		ids, err := collectIDs(ctx, r, opts)
		if err != nil {
			return err
		}

		entries = make([]*entry.Entry, 0, len(ids))
		for _, id := range ids {
			e, err := r.Get(ctx, id)
			if err != nil {
				return err
			}
			if e != nil {
				entries = append(entries, e)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка записей: %w", err)
	}

	switch opts.Sort {
	case SortByService:
		slices.SortStableFunc(entries, func(x, y *entry.Entry) int {
			return strings.Compare(strings.ToLower(x.Service()), strings.ToLower(y.Service()))
		})
	case SortByLastUpdate:
		slices.SortStableFunc(entries, compareLastUpdate)
	}

	if opts.Reverse {
		slices.Reverse(entries)
	}

	return entries, nil
}

// compareLastUpdate ставит записи без времени изменения первыми
func compareLastUpdate(x, y *entry.Entry) int {
	tx, okx := x.LastUpdate()
	ty, oky := y.LastUpdate()
	switch {
	case !okx && !oky:
		return 0
	case !okx:
		return -1
	case !oky:
		return 1
	}
	return cmp.Compare(tx.Unix(), ty.Unix())
}

// collectIDs отбирает ID по тегам. Варианты одного тега в разном регистре
// объединяются, после чего группы складываются (OR) или пересекаются (AND).
func collectIDs(ctx context.Context, r storage.Reader, opts ListOptions) ([]entry.ID, error) {
	if len(opts.Tags) == 0 {
		return r.AllIDsFiltered(ctx, !opts.WithRemoved)
	}

	groups := make(map[string]map[entry.ID]struct{}, len(opts.Tags))
	for _, t := range opts.Tags {
		groups[strings.ToLower(t)] = nil
	}

	tags, err := r.AllTags(ctx)
	if err != nil {
		return nil, err
	}

	for _, tc := range tags {
		key := strings.ToLower(tc.Tag)
		set, ok := groups[key]
		if !ok {
			continue
		}
		if set == nil {
			set = make(map[entry.ID]struct{})
			groups[key] = set
		}

		tagged, err := r.TaggedIDs(ctx, tc.Tag)
		if err != nil {
			return nil, err
		}
		for _, id := range tagged {
			set[id] = struct{}{}
		}
	}

	var result map[entry.ID]struct{}
	for _, set := range groups {
		switch {
		case result == nil && (set != nil || opts.TagAnd):
			result = make(map[entry.ID]struct{}, len(set))
			for id := range set {
				result[id] = struct{}{}
			}
		case opts.TagAnd:
			for id := range result {
				if _, ok := set[id]; !ok {
					delete(result, id)
				}
			}
		default:
			for id := range set {
				result[id] = struct{}{}
			}
		}
	}

	ids := make([]entry.ID, 0, len(result))
	for id := range result {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, entry.ID.Compare)
	return ids, nil
}

func formatStamp(e *entry.Entry) string {
	ts, ok := e.LastUpdate()
	if !ok {
		return "-"
	}
	return ts.Format(time.RFC3339)
}
