package database

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"netalloc/pkg/logger"
)

// Migrator применяет SQL миграции из встроенной файловой системы
type Migrator struct {
	provider *goose.Provider
	db       *sql.DB
}

// NewMigrator создаёт мигратор для каталога dir внутри migrations
func NewMigrator(pool *pgxpool.Pool, migrations fs.FS, dir string) (*Migrator, error) {
	sub, err := fs.Sub(migrations, dir)
	if err != nil {
		return nil, fmt.Errorf("open migrations dir %q: %w", dir, err)
	}

	db := stdlib.OpenDBFromPool(pool)

	provider, err := goose.NewProvider(goose.DialectPostgres, db, sub)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create migration provider: %w", err)
	}

	return &Migrator{provider: provider, db: db}, nil
}

// Up применяет все новые миграции
func (m *Migrator) Up(ctx context.Context) error {
	results, err := m.provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	for _, r := range results {
		logger.Log.Info("Migration applied",
			"version", r.Source.Version,
			"duration", r.Duration,
		)
	}
	return nil
}

// Down откатывает последнюю миграцию
func (m *Migrator) Down(ctx context.Context) error {
	r, err := m.provider.Down(ctx)
	if err != nil {
		return fmt.Errorf("failed to rollback migration: %w", err)
	}

	logger.Log.Info("Migration rolled back", "version", r.Source.Version)
	return nil
}

// Version возвращает текущую версию схемы
func (m *Migrator) Version(ctx context.Context) (int64, error) {
	return m.provider.GetDBVersion(ctx)
}

// Close освобождает *sql.DB поверх пула
func (m *Migrator) Close() error {
	return m.db.Close()
}

// RunMigrations применяет миграции, если это включено
func RunMigrations(ctx context.Context, pool *pgxpool.Pool, autoMigrate bool, migrations fs.FS, dir string) error {
	if !autoMigrate {
		logger.Log.Info("Auto-migration is disabled")
		return nil
	}

	m, err := NewMigrator(pool, migrations, dir)
	if err != nil {
		return err
	}
	defer m.Close()

	return m.Up(ctx)
}
