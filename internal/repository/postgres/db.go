package postgres

import (
	"context"
	"database/sql"
)

// Querier is the subset of database/sql used by the repositories, satisfied by
// both *sql.DB and *sql.Tx so a repository can be scoped to a transaction.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

var (
	_ Querier = (*sql.DB)(nil)
	_ Querier = (*sql.Tx)(nil)
)
