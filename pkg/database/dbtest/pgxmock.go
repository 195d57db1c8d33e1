// Package dbtest содержит адаптер pgxmock к интерфейсу database.DB.
package dbtest

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
)

// Adapter прокидывает вызовы database.DB в pgxmock
type Adapter struct {
	Mock pgxmock.PgxPoolIface
}

// New создаёт mock пул и адаптер. Mock закрывается в t.Cleanup.
func New(t testing.TB) (pgxmock.PgxPoolIface, *Adapter) {
	t.Helper()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	t.Cleanup(mock.Close)

	return mock, &Adapter{Mock: mock}
}

func (a *Adapter) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return a.Mock.Exec(ctx, sql, args...)
}

func (a *Adapter) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return a.Mock.Query(ctx, sql, args...)
}

func (a *Adapter) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return a.Mock.QueryRow(ctx, sql, args...)
}

func (a *Adapter) BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error) {
	return a.Mock.BeginTx(ctx, txOptions)
}

func (a *Adapter) Close() {
	a.Mock.Close()
}

func (a *Adapter) Ping(ctx context.Context) error {
	return a.Mock.Ping(ctx)
}
