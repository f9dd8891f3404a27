package keeper

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"pwmgr/internal/infrastructure/storage"
)

type TagsOptions struct {
	// Key - необязательный фильтр по имени тега
	Key     string
	Mode    MatchMode
	ByCount bool
	Reverse bool
}

// Tags возвращает теги активных записей с количеством записей
func (a *App) Tags(ctx context.Context, opts TagsOptions) ([]storage.TagCount, error) {
	tags, err := a.store.AllTags(ctx)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения тегов: %w", err)
	}
	if len(tags) == 0 {
		return nil, ErrNoTags
	}

	if opts.Key != "" {
		matcher, err := NewMatcher(opts.Mode, opts.Key)
		if err != nil {
			return nil, err
		}
		tags = slices.DeleteFunc(tags, func(t storage.TagCount) bool {
			return !matcher.Match(t.Tag)
		})
	}

	if opts.ByCount {
		slices.SortFunc(tags, func(x, y storage.TagCount) int {
			if x.Count != y.Count {
				return y.Count - x.Count
			}
			return strings.Compare(x.Tag, y.Tag)
		})
	} else {
		slices.SortFunc(tags, func(x, y storage.TagCount) int {
			return strings.Compare(x.Tag, y.Tag)
		})
	}

	if opts.Reverse {
		slices.Reverse(tags)
	}
	return tags, nil
}
