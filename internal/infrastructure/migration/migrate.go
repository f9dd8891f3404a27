package migration

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed sql/*.sql
var sqlFiles embed.FS

// Migrator - интерфейс для самой библиотеки migrate.Migrate
type Migrator interface {
	Up() error
	Close() (error, error)
}

// MigrationEngine - фабрика для создания мигратора (чтобы не лезть в ФС и БД в тестах)
type MigrationEngine func(db *sql.DB) (Migrator, error)

// Migration применяет миграции к уже открытому соединению
type Migration struct {
	db     *sql.DB
	engine MigrationEngine
}

// NewMigration создает Migration; nil engine означает DefaultEngine
func NewMigration(db *sql.DB, engine MigrationEngine) *Migration {
	if engine == nil {
		engine = DefaultEngine
	}
	return &Migration{
		db:     db,
		engine: engine,
	}
}

// instanceMigrator закрывает только источник миграций, соединение остается у вызывающего
type instanceMigrator struct {
	*migrate.Migrate
	src source.Driver
}

func (m *instanceMigrator) Close() (error, error) {
	return m.src.Close(), nil
}

// DefaultEngine - миграции из встроенных sql-файлов поверх переданного соединения
func DefaultEngine(db *sql.DB) (Migrator, error) {
	src, err := iofs.New(sqlFiles, "sql")
	if err != nil {
		return nil, fmt.Errorf("open migration source: %w", err)
	}
	drv, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		_ = src.Close()
		return nil, fmt.Errorf("open migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", drv)
	if err != nil {
		_ = src.Close()
		return nil, fmt.Errorf("create migrator: %w", err)
	}
	return &instanceMigrator{Migrate: m, src: src}, nil
}

// Up применяет все новые миграции; ErrNoChange ошибкой не считается
func (mg *Migration) Up() (err error) {
	m, err := mg.engine(mg.db)
	if err != nil {
		return err
	}
	defer func() {
		serr, dberr := m.Close()
		if serr != nil {
			if err != nil {
				err = fmt.Errorf("%w; migration source error: %v", err, serr)
			} else {
				err = serr
			}
		}
		if dberr != nil {
			if err != nil {
				err = fmt.Errorf("%w; migration database error: %v", err, dberr)
			} else {
				err = dberr
			}
		}
	}()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up: %w", err)
	}
	return nil
}
