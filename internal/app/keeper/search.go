package keeper

import (
	"context"
	"fmt"
	"slices"

	"pwmgr/internal/domain/entry"
	"pwmgr/internal/infrastructure/storage"
)

type SearchOptions struct {
	Key  string
	Mode MatchMode
	// IncludeService добавляет к поиску имя сервиса и псевдонимы
	IncludeService bool
	// Properties - ключи свойств, значения которых сравниваются с Key
	Properties []string
	// Tags ограничивает поиск записями хотя бы с одним из тегов
	Tags []string
}

// Search ищет активные записи по значениям свойств и, при необходимости, по имени сервиса
func (a *App) Search(ctx context.Context, opts SearchOptions) ([]*entry.Entry, error) {
	matcher, err := NewMatcher(opts.Mode, opts.Key)
	if err != nil {
		return nil, err
	}

	var hits []*entry.Entry
	err = a.store.WithReadTransaction(ctx, func(r storage.Reader) error {
		entries, err := r.List(ctx, true)
		if err != nil {
			return err
		}

		for _, e := range entries {
			if !hasAnyTag(e, opts.Tags) {
				continue
			}
			if opts.IncludeService && matchServiceOrAlias(matcher, e) {
				hits = append(hits, e)
				continue
			}
			if matchProperties(matcher, e, opts.Properties) {
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
	return hits, nil
}

func hasAnyTag(e *entry.Entry, tags []string) bool {
	if len(tags) == 0 {
		return true
	}
	own := e.Tags()
	for _, t := range tags {
		if slices.Contains(own, t) {
			return true
		}
	}
	return false
}

func matchProperties(m Matcher, e *entry.Entry, keys []string) bool {
	if len(keys) == 0 {
		return false
	}
	for k, v := range e.Properties() {
		if slices.Contains(keys, k) && m.Match(v) {
			return true
		}
	}
	return false
}
