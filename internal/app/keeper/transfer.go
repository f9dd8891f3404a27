package keeper

import (
	"context"
	"errors"
	"fmt"
	"io"

	"pwmgr/internal/domain/entry"
	"pwmgr/internal/infrastructure/storage"

	"gopkg.in/yaml.v3"
)

// Export пишет все записи, включая удаленные, как поток YAML-документов
func (a *App) Export(ctx context.Context, w io.Writer) (int, error) {
	entries, err := a.store.List(ctx, false)
	if err != nil {
		return 0, fmt.Errorf("ошибка чтения записей: %w", err)
	}
	if len(entries) == 0 {
		return 0, ErrNothingToExport
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	for _, e := range entries {
		if err := enc.Encode(e.Document()); err != nil {
			return 0, fmt.Errorf("ошибка записи YAML: %w", err)
		}
	}
	if err := enc.Close(); err != nil {
		return 0, fmt.Errorf("ошибка записи YAML: %w", err)
	}

	return len(entries), nil
}

type ImportOptions struct {
	// Merge добавляет записи к существующим вместо полной замены базы
	Merge bool
	// Overwrite разрешает заменять записи с уже существующим ID
	Overwrite bool
	// DryRun только проверяет входные данные
	DryRun bool
}

// ImportResult - число записанных записей (при DryRun - прошедших проверку)
type ImportResult struct {
	Imported int
	Replaced int
	DryRun   bool
}

// Import читает поток YAML-документов. Без Merge база предварительно
// очищается после подтверждения пользователя. Все изменения выполняются в
// одной транзакции: ошибка в любом документе откатывает импорт целиком.
func (a *App) Import(ctx context.Context, r io.Reader, opts ImportOptions) (*ImportResult, error) {
	docs, err := decodeDocuments(r)
	if err != nil {
		return nil, err
	}

	replace := !opts.Merge && !opts.DryRun
	if replace {
		ids, err := a.store.AllIDs(ctx)
		if err != nil {
			return nil, fmt.Errorf("ошибка чтения записей: %w", err)
		}
		if len(ids) > 0 {
			ok, err := a.prompt.Confirm(fmt.Sprintf("Существующие данные (%d записей) будут заменены. Продолжить?", len(ids)), false, "")
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, ErrImportCancelled
			}
		}
	}

	result := &ImportResult{DryRun: opts.DryRun}
	err = a.store.WithWriteTransaction(ctx, func(w storage.Writer) error {
		if replace {
			ids, err := w.AllIDs(ctx)
			if err != nil {
				return err
			}
			for _, id := range ids {
				if err := w.Remove(ctx, id); err != nil {
					return err
				}
			}
			result.Replaced = len(ids)
		}

		for i, doc := range docs {
			e, err := importEntry(doc)
			if err != nil {
				return fmt.Errorf("документ %d: %w", i+1, err)
			}

			existing, err := w.Get(ctx, e.ID())
			if err != nil {
				return err
			}
			if existing != nil && !opts.Overwrite {
				return fmt.Errorf("%w: %s", ErrDuplicateID, e.ID())
			}

			if opts.DryRun {
				result.Imported++
				continue
			}
			if err := w.Put(ctx, e); err != nil {
				return err
			}
			result.Imported++
		}
		return nil
	})
	if err != nil {
		a.log.Error("ошибка импорта", "error", err)
		return nil, fmt.Errorf("ошибка импорта: %w", err)
	}

	a.log.Debug("импорт завершен", "imported", result.Imported, "replaced", result.Replaced, "dry_run", opts.DryRun)
	return result, nil
}

// importEntry нормализует документ; время изменения и признак удаления
// сохраняются, если они указаны, иначе запись получает текущее время
func importEntry(doc entry.Document) (*entry.Entry, error) {
	e, err := entry.FromDocument(doc)
	if err != nil {
		return nil, err
	}
	if _, ok := e.LastUpdate(); !ok {
		e.SetLastUpdateNow()
	}
	return e, nil
}

func decodeDocuments(r io.Reader) ([]entry.Document, error) {
	dec := yaml.NewDecoder(r)

	var docs []entry.Document
	for {
		var doc entry.Document
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			return docs, nil
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
		}
		docs = append(docs, doc)
	}
}
