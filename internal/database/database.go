// Package database defines the narrow connection surface the engine
// consumes and the helpers a host needs to supply it: pool construction
// and an advisory lock for serializing migration runs. The engine itself
// never opens, pools, or closes connections.
package database

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is the read/write slice of a pgx connection, pool, or
// transaction. Ledger and probe operations accept it so they work both
// inside and outside the migration transaction.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Conn is the full collaborator contract: querying plus the ability to open
// the single transaction a migration path runs in. *pgxpool.Pool and
// *pgx.Conn both satisfy it.
type Conn interface {
	Querier
	Begin(ctx context.Context) (pgx.Tx, error)
}
