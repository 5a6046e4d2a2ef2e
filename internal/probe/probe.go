// Package probe determines which schema version a database is currently at.
package probe

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/aqasim81/schema-version-engine/internal/database"
	"github.com/aqasim81/schema-version-engine/internal/ledger"
	"github.com/aqasim81/schema-version-engine/internal/version"
)

// Probe reads the applied-versions table to find the current version.
type Probe struct {
	db database.Querier
}

// New creates a Probe on the given connection.
func New(db database.Querier) *Probe {
	return &Probe{db: db}
}

type appliedRow struct {
	version   string
	appliedAt time.Time
}

// CurrentVersion returns the most recently applied version, or "" when the
// database is unversioned. A database whose applied-versions table does not
// exist yet is unversioned, not an error.
func (p *Probe) CurrentVersion(ctx context.Context) (string, error) {
	exists, err := p.tableExists(ctx)
	if err != nil {
		return "", err
	}

	if !exists {
		return "", nil
	}

	rows, err := p.db.Query(ctx,
		`SELECT version, applied_at FROM `+ledger.VersionsTable,
	)
	if err != nil {
		return "", fmt.Errorf("reading current version: %w", err)
	}
	defer rows.Close()

	applied, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (appliedRow, error) {
		var r appliedRow
		if scanErr := row.Scan(&r.version, &r.appliedAt); scanErr != nil {
			return appliedRow{}, fmt.Errorf("reading current version: %w", scanErr)
		}

		return r, nil
	})
	if err != nil {
		return "", err
	}

	return latestApplied(applied), nil
}

// latestApplied picks the version with the latest applied_at. Versions
// committed in the same path transaction share a timestamp (NOW() is the
// transaction timestamp), so ties are broken by numeric version order
// rather than the text ordering a bare ORDER BY would apply.
func latestApplied(applied []appliedRow) string {
	var best appliedRow

	for _, r := range applied {
		switch {
		case best.version == "":
			best = r
		case r.appliedAt.After(best.appliedAt):
			best = r
		case r.appliedAt.Equal(best.appliedAt) && version.Compare(r.version, best.version) > 0:
			best = r
		}
	}

	return best.version
}

// tableExists checks for the applied-versions table via to_regclass, which
// returns NULL instead of erroring for unknown relations.
func (p *Probe) tableExists(ctx context.Context) (bool, error) {
	var reg *string

	err := p.db.QueryRow(ctx, `SELECT to_regclass($1)::text`, ledger.VersionsTable).Scan(&reg)
	if err != nil {
		return false, fmt.Errorf("checking for %s table: %w", ledger.VersionsTable, err)
	}

	return reg != nil, nil
}
