package keeper

import (
	"context"
	"fmt"

	"pwmgr/internal/domain/entry"

	"gopkg.in/yaml.v3"
)

// Edit открывает существующую запись в редакторе и сохраняет результат
func (a *App) Edit(ctx context.Context, rawID string) (*entry.Entry, error) {
	id, err := parseID(rawID)
	if err != nil {
		return nil, err
	}

	current, err := a.store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения записи: %w", err)
	}
	if current == nil {
		return nil, notFound(id)
	}

	content, err := yaml.Marshal(current.Document())
	if err != nil {
		return nil, fmt.Errorf("ошибка преобразования записи в YAML: %w", err)
	}

	doc, err := a.editLoop(ctx, "edit", id, content)
	if err != nil {
		return nil, err
	}

	e := entry.New(id, doc.Service, doc.Aliases, doc.Tags, doc.Properties)
	e.SetRemoved(doc.Removed != nil && *doc.Removed)
	e.SetLastUpdateNow()

	if err := a.store.Put(ctx, e); err != nil {
		a.log.Error("ошибка сохранения записи", "id", id.String(), "error", err)
		return nil, fmt.Errorf("ошибка сохранения записи: %w", err)
	}

	a.log.Debug("запись изменена", "id", id.String())
	return e, nil
}
