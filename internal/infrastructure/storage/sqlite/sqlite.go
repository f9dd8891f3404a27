package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"pwmgr/internal/domain/entry"
	"pwmgr/internal/infrastructure/migration"
	"pwmgr/internal/infrastructure/storage"

	"github.com/gofrs/flock"
	_ "github.com/mattn/go-sqlite3"
	"golang.org/x/exp/slog"
)

// ErrOpen - ошибка открытия хранилища записей
var ErrOpen = errors.New("open entry store")

const (
	dsnParams      = "?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000&_foreign_keys=on"
	lockRetryDelay = 50 * time.Millisecond
)

// Storage хранилище записей поверх SQLite. Пишущие транзакции исключают друг друга
// и внутри процесса, и между процессами, открывшими тот же файл.
type Storage struct {
	db   *sql.DB
	path string
	sem  chan struct{}
	lock *flock.Flock
	log  *slog.Logger
}

var _ storage.Store = (*Storage)(nil)

// dataSource строит file: URI; путь экранируется, поэтому пробелы, '?', '#' и '%' в нем допустимы
func dataSource(path string) string {
	return "file:" + (&url.URL{Path: path}).EscapedPath() + dsnParams
}

// New открывает или создает базу по пути path и применяет миграции на том же соединении
func New(ctx context.Context, path string, log *slog.Logger) (*Storage, error) {
	log = log.With("component", "entry_storage")

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("%w: create directory: %v", ErrOpen, err)
		}
	}

	db, err := sql.Open("sqlite3", dataSource(path))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOpen, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", ErrOpen, err)
	}

	if err := migration.NewMigration(db, migration.DefaultEngine).Up(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", ErrOpen, err)
	}

	log.Debug("entry store opened", "path", path)

	return &Storage{
		db:   db,
		path: path,
		sem:  make(chan struct{}, 1),
		lock: flock.New(path + ".lock"),
		log:  log,
	}, nil
}

// Close закрывает соединение с базой
func (s *Storage) Close() error {
	return s.db.Close()
}

// Path возвращает путь к файлу базы
func (s *Storage) Path() string {
	return s.path
}

// WithReadTransaction выполняет fn на согласованном снимке данных
func (s *Storage) WithReadTransaction(ctx context.Context, fn func(storage.Reader) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin read transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	return fn(&txView{q: tx, log: s.log})
}

// WithWriteTransaction выполняет fn под блокировкой записи.
// Изменения фиксируются, только если fn вернула nil; паника в fn откатывает транзакцию и пробрасывается дальше.
func (s *Storage) WithWriteTransaction(ctx context.Context, fn func(storage.Writer) error) (err error) {
	unlock, err := s.acquireWriteLock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin write transaction: %w", err)
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		if rerr := tx.Rollback(); rerr != nil && !errors.Is(rerr, sql.ErrTxDone) {
			s.log.Warn("rollback failed", "error", rerr)
		}
	}()

	if err := fn(&txView{q: tx, log: s.log}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	committed = true

	return nil
}

// acquireWriteLock берет семафор процесса, затем файловую блокировку
func (s *Storage) acquireWriteLock(ctx context.Context) (func(), error) {
	select {
	case s.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, fmt.Errorf("acquire write lock: %w", ctx.Err())
	}

	locked, err := s.lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil || !locked {
		<-s.sem
		if err == nil {
			err = ctx.Err()
		}
		return nil, fmt.Errorf("acquire write lock: %w", err)
	}

	return func() {
		if err := s.lock.Unlock(); err != nil {
			s.log.Warn("release write lock", "error", err)
		}
		<-s.sem
	}, nil
}

// Get читает запись в отдельной транзакции чтения
func (s *Storage) Get(ctx context.Context, id entry.ID) (e *entry.Entry, err error) {
	err = s.WithReadTransaction(ctx, func(r storage.Reader) error {
		e, err = r.Get(ctx, id)
		return err
	})
	return e, err
}

// AllIDs возвращает все идентификаторы в отдельной транзакции чтения
func (s *Storage) AllIDs(ctx context.Context) (ids []entry.ID, err error) {
	err = s.WithReadTransaction(ctx, func(r storage.Reader) error {
		ids, err = r.AllIDs(ctx)
		return err
	})
	return ids, err
}

// AllIDsFiltered - AllIDs с опциональным исключением удаленных записей
func (s *Storage) AllIDsFiltered(ctx context.Context, excludeRemoved bool) (ids []entry.ID, err error) {
	err = s.WithReadTransaction(ctx, func(r storage.Reader) error {
		ids, err = r.AllIDsFiltered(ctx, excludeRemoved)
		return err
	})
	return ids, err
}

// List возвращает записи в порядке идентификаторов
func (s *Storage) List(ctx context.Context, excludeRemoved bool) (entries []*entry.Entry, err error) {
	err = s.WithReadTransaction(ctx, func(r storage.Reader) error {
		entries, err = r.List(ctx, excludeRemoved)
		return err
	})
	return entries, err
}

// TaggedIDs возвращает активные записи с тегом tag
func (s *Storage) TaggedIDs(ctx context.Context, tag string) (ids []entry.ID, err error) {
	err = s.WithReadTransaction(ctx, func(r storage.Reader) error {
		ids, err = r.TaggedIDs(ctx, tag)
		return err
	})
	return ids, err
}

// AllTags возвращает теги с количеством активных записей
func (s *Storage) AllTags(ctx context.Context) (tags []storage.TagCount, err error) {
	err = s.WithReadTransaction(ctx, func(r storage.Reader) error {
		tags, err = r.AllTags(ctx)
		return err
	})
	return tags, err
}

// Put сохраняет запись в отдельной транзакции записи
func (s *Storage) Put(ctx context.Context, e *entry.Entry) error {
	return s.WithWriteTransaction(ctx, func(w storage.Writer) error {
		return w.Put(ctx, e)
	})
}

// Remove физически удаляет запись в отдельной транзакции записи
func (s *Storage) Remove(ctx context.Context, id entry.ID) error {
	return s.WithWriteTransaction(ctx, func(w storage.Writer) error {
		return w.Remove(ctx, id)
	})
}
