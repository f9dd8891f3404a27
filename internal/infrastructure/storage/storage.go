package storage

import (
	"context"

	"pwmgr/internal/domain/entry"
)

// TagCount количество активных записей с тегом
type TagCount struct {
	Tag   string `json:"tag" doc:"Tag name"`
	Count int    `json:"count" doc:"Number of active entries with the tag"`
}

// Reader представление хранилища только для чтения
type Reader interface {
	// Get возвращает (nil, nil), если записи нет
	Get(ctx context.Context, id entry.ID) (*entry.Entry, error)

	// AllIDs все идентификаторы по возрастанию, включая удаленные
	AllIDs(ctx context.Context) ([]entry.ID, error)
	// AllIDsFiltered то же, что AllIDs, с опциональным исключением удаленных
	AllIDsFiltered(ctx context.Context, excludeRemoved bool) ([]entry.ID, error)

	// List загружает записи в порядке идентификаторов
	List(ctx context.Context, excludeRemoved bool) ([]*entry.Entry, error)

	// TaggedIDs активные записи с тегом tag
	TaggedIDs(ctx context.Context, tag string) ([]entry.ID, error)

	// AllTags теги активных записей с количеством, по алфавиту
	AllTags(ctx context.Context) ([]TagCount, error)
}

// ReadStore хранилище, из которого можно читать согласованным снимком
type ReadStore interface {
	Reader
	WithReadTransaction(ctx context.Context, fn func(Reader) error) error
}

// Writer добавляет к Reader изменения, которые поддерживают индекс тегов
type Writer interface {
	Reader
	// Put вставляет или заменяет запись
	Put(ctx context.Context, e *entry.Entry) error
	// Remove физически удаляет запись; отсутствие записи не ошибка
	Remove(ctx context.Context, id entry.ID) error
}

// Store транзакционное хранилище записей. Одиночные методы из Writer
// выполняются каждый в своей транзакции.
type Store interface {
	Writer
	WithReadTransaction(ctx context.Context, fn func(Reader) error) error
	WithWriteTransaction(ctx context.Context, fn func(Writer) error) error
	Close() error
}
