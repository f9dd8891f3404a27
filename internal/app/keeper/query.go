package keeper

import (
	"context"
	"fmt"

	"pwmgr/internal/domain/entry"
	"pwmgr/internal/infrastructure/storage"
)

type QueryOptions struct {
	Key         string
	Mode        MatchMode
	ShowSecrets bool
}

// Query ищет запись по ID, а если такой нет - по имени сервиса и псевдонимам
func (a *App) Query(ctx context.Context, opts QueryOptions) ([]*entry.Entry, error) {
	matcher, err := NewMatcher(opts.Mode, opts.Key)
	if err != nil {
		return nil, err
	}

	var hits []*entry.Entry
	err = a.store.WithReadTransaction(ctx, func(r storage.Reader) error {
		if id, err := entry.ParseID(opts.Key); err == nil {
			e, err := r.Get(ctx, id)
			if err != nil {
				return err
			}
			if e != nil {
				hits = append(hits, e)
				return nil
			}
		}

		entries, err := r.List(ctx, true)
		if err != nil {
			return err
		}
		for _, e := range entries {
			if matchServiceOrAlias(matcher, e) {
				hits = append(hits, e)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка поиска записей: %w", err)
	}

	if len(hits) == 0 {
		return nil, ErrNoMatch
	}

	if !opts.ShowSecrets {
		for _, e := range hits {
			e.MaskSecretProperties()
		}
	}
	return hits, nil
}

func matchServiceOrAlias(m Matcher, e *entry.Entry) bool {
	if m.Match(e.Service()) {
		return true
	}
	for _, alias := range e.Aliases() {
		if m.Match(alias) {
			return true
		}
	}
	return false
}
