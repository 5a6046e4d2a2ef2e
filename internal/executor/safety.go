package executor

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// setLockTimeout sets lock_timeout for the migration transaction so a path
// fails fast instead of queueing behind application locks.
func setLockTimeout(ctx context.Context, tx pgx.Tx, timeout time.Duration) error {
	sql := fmt.Sprintf("SET lock_timeout = '%dms'", timeout.Milliseconds())

	if _, err := tx.Exec(ctx, sql); err != nil {
		return fmt.Errorf("setting lock_timeout: %w", err)
	}

	return nil
}

// setStatementTimeout sets statement_timeout for the migration transaction
// to bound any single script statement.
func setStatementTimeout(ctx context.Context, tx pgx.Tx, timeout time.Duration) error {
	sql := fmt.Sprintf("SET statement_timeout = '%dms'", timeout.Milliseconds())

	if _, err := tx.Exec(ctx, sql); err != nil {
		return fmt.Errorf("setting statement_timeout: %w", err)
	}

	return nil
}
