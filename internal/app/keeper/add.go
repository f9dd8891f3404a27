package keeper

import (
	"context"
	"fmt"
	"strconv"

	"pwmgr/internal/domain/entry"
)

const addTemplate = `# Новая запись. ID менять нельзя.
# Свойства с ключом, оканчивающимся на "!", считаются секретными.
id: %s
service: %s
aliases: []
tags: []
properties:
#  user: name@example.com
#  password!: secret
`

// Add создает запись через внешний редактор
func (a *App) Add(ctx context.Context, service string) (*entry.Entry, error) {
	id := entry.NewID()
	content := fmt.Sprintf(addTemplate, strconv.Quote(id.String()), strconv.Quote(service))

	doc, err := a.editLoop(ctx, "add", id, []byte(content), requireService, requireProperties)
	if err != nil {
		return nil, err
	}

	e := entry.New(id, doc.Service, doc.Aliases, doc.Tags, doc.Properties)
	if err := a.store.Put(ctx, e); err != nil {
		a.log.Error("ошибка сохранения записи", "id", id.String(), "error", err)
		return nil, fmt.Errorf("ошибка сохранения записи: %w", err)
	}

	a.log.Debug("запись добавлена", "id", id.String())
	return e, nil
}
