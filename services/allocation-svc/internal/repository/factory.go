package repository

import (
	"context"
	"fmt"

	"netalloc/migrations"
	"netalloc/pkg/config"
	"netalloc/pkg/database"
)

// Backend хранилище истории запусков
type Backend string

const (
	BackendNone     Backend = "none"
	BackendMemory   Backend = "memory"
	BackendPostgres Backend = "postgres"
)

// History выбранное хранилище истории. Runs равен nil, если история выключена.
type History struct {
	Runs    RunRepository
	Backend Backend
	db      *database.PostgresDB // Для закрытия при shutdown
}

// Close закрывает соединения
func (h *History) Close() {
	if h.db != nil {
		h.db.Close()
	}
}

// NewHistory выбирает хранилище истории по конфигурации. history.enabled
// проверяется первым: выключенная история не подключается к базе.
func NewHistory(ctx context.Context, cfg *config.Config) (*History, error) {
	switch {
	case !cfg.History.Enabled:
		return &History{Backend: BackendNone}, nil
	case cfg.Database.Enabled:
		return newPostgresHistory(ctx, cfg)
	default:
		return &History{
			Runs:    NewMemoryRunRepository(cfg.History.MaxItems),
			Backend: BackendMemory,
		}, nil
	}
}

func newPostgresHistory(ctx context.Context, cfg *config.Config) (*History, error) {
	db, err := database.NewPostgresDB(ctx, &cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	if err := database.RunMigrations(
		ctx,
		db.Pool(),
		cfg.Database.AutoMigrate,
		migrations.PostgresMigrations,
		"postgres",
	); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &History{
		Runs:    NewPostgresRunRepository(db, cfg.History.MaxItems),
		Backend: BackendPostgres,
		db:      db,
	}, nil
}
