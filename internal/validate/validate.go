// Package validate cross-checks the catalog against the database's actual
// state, detecting drift between what the ledger claims and what exists.
package validate

import (
	"context"
	"fmt"

	"github.com/aqasim81/schema-version-engine/internal/catalog"
	"github.com/aqasim81/schema-version-engine/internal/database"
	"github.com/aqasim81/schema-version-engine/internal/parser"
	"github.com/aqasim81/schema-version-engine/internal/probe"
)

// Report is the outcome of a validation pass. Issues block correctness;
// recommendations are advisory and never affect Valid.
type Report struct {
	Valid           bool
	Issues          []string
	Recommendations []string
}

// Validator checks persisted state against the catalog.
type Validator struct {
	db      database.Querier
	catalog *catalog.Catalog
	probe   *probe.Probe
}

// New creates a Validator for the given connection and catalog.
func New(db database.Querier, cat *catalog.Catalog) *Validator {
	return &Validator{db: db, catalog: cat, probe: probe.New(db)}
}

// Validate runs every check and assembles the report. A returned error
// means the checks themselves could not run, not that the schema is bad.
func (v *Validator) Validate(ctx context.Context) (Report, error) {
	var report Report

	expected, err := v.expectedTables()
	if err != nil {
		return Report{}, err
	}

	if err := v.checkTables(ctx, expected, &report); err != nil {
		return Report{}, err
	}

	if err := v.checkCurrentVersion(ctx, &report); err != nil {
		return Report{}, err
	}

	if err := v.checkIndexes(ctx, expected, &report); err != nil {
		return Report{}, err
	}

	report.Valid = len(report.Issues) == 0

	return report, nil
}

// expectedTables derives the tables the earliest catalog version creates.
func (v *Validator) expectedTables() ([]string, error) {
	earliest, _ := v.catalog.Lookup(v.catalog.Earliest())

	var tables []string

	for _, s := range earliest.Forward {
		created, err := parser.CreatedTables(s.SQL)
		if err != nil {
			return nil, fmt.Errorf("script %s: %w", s.ID, err)
		}

		tables = append(tables, created...)
	}

	return tables, nil
}

// checkTables verifies each expected table still exists.
func (v *Validator) checkTables(ctx context.Context, expected []string, report *Report) error {
	for _, table := range expected {
		var reg *string

		err := v.db.QueryRow(ctx, `SELECT to_regclass($1)::text`, table).Scan(&reg)
		if err != nil {
			return fmt.Errorf("checking table %s: %w", table, err)
		}

		if reg == nil {
			report.Issues = append(report.Issues,
				fmt.Sprintf("expected table %s is missing", table))
		}
	}

	return nil
}

// checkCurrentVersion flags drift: a persisted version the catalog does not know.
func (v *Validator) checkCurrentVersion(ctx context.Context, report *Report) error {
	current, err := v.probe.CurrentVersion(ctx)
	if err != nil {
		return err
	}

	if current == "" {
		report.Recommendations = append(report.Recommendations,
			"database is unversioned; run an upgrade to the latest version")

		return nil
	}

	if !v.catalog.Contains(current) {
		report.Issues = append(report.Issues,
			fmt.Sprintf("persisted current version %s is not in the catalog", current))
	}

	return nil
}

// checkIndexes is a rough heuristic: expected tables that exist but carry
// no indexes at all usually mean a partially applied bootstrap.
func (v *Validator) checkIndexes(ctx context.Context, expected []string, report *Report) error {
	if len(expected) == 0 {
		return nil
	}

	var count int

	err := v.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM pg_indexes WHERE schemaname = 'public' AND tablename = ANY($1)`,
		expected,
	).Scan(&count)
	if err != nil {
		return fmt.Errorf("counting indexes: %w", err)
	}

	if count == 0 {
		report.Recommendations = append(report.Recommendations,
			"no indexes found on expected tables; verify primary keys were created")
	}

	return nil
}
