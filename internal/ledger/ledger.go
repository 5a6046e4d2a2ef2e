// Package ledger persists the engine's durable state: which schema versions
// are currently applied, and an append-only log of every migration attempt.
package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/aqasim81/schema-version-engine/internal/database"
)

// Operation kinds recorded on attempt logs.
const (
	OpUpgrade   = "UPGRADE"
	OpDowngrade = "DOWNGRADE"
	OpRollback  = "ROLLBACK"
)

// Attempt statuses. Every attempt transitions STARTED to exactly one of
// the terminal statuses and is immutable thereafter.
const (
	StatusStarted    = "STARTED"
	StatusSuccess    = "SUCCESS"
	StatusFailed     = "FAILED"
	StatusRolledBack = "ROLLED_BACK"
)

// Default query limits applied when the caller passes a non-positive value.
const (
	DefaultHistoryLimit = 50
	DefaultKeepDays     = 30
)

// AppliedVersion is one row of the applied-versions table: durable proof a
// version's forward scripts are committed and not since rolled back.
type AppliedVersion struct {
	Version         string
	Description     string
	AppliedAt       time.Time
	AppliedBy       string
	Checksum        string
	ExecutionTimeMs int
}

// Attempt is one row of the attempt log.
type Attempt struct {
	ID              int64
	MigrationID     string
	Version         string
	Operation       string
	Status          string
	StartedAt       time.Time
	CompletedAt     *time.Time
	ErrorMessage    string
	ExecutedScripts []string
}

// AppliedParams contains the fields needed to upsert an applied-version record.
type AppliedParams struct {
	Version         string
	Description     string
	AppliedBy       string
	Checksum        string
	ExecutionTimeMs int
}

// Ledger reads and writes the engine-owned tables. Attempt-log writes go
// through the ledger's own connection so they survive the migration
// transaction's rollback; applied-version writes take an explicit Querier
// so the executor can run them inside that transaction.
type Ledger struct {
	db database.Conn
}

// New creates a Ledger on the given connection.
func New(db database.Conn) *Ledger {
	return &Ledger{db: db}
}

// EnsureSchema creates both engine tables if they do not exist. Idempotent;
// shares its DDL with the bootstrap catalog version.
func (l *Ledger) EnsureSchema(ctx context.Context) error {
	if _, err := l.db.Exec(ctx, CreateVersionsTableSQL); err != nil {
		return fmt.Errorf("%w: %w", ErrSchemaCreation, err)
	}

	if _, err := l.db.Exec(ctx, CreateAttemptsTableSQL); err != nil {
		return fmt.Errorf("%w: %w", ErrSchemaCreation, err)
	}

	return nil
}

// RecordApplied upserts an applied-version record. Re-applying a version
// refreshes the existing row rather than duplicating it.
func (l *Ledger) RecordApplied(ctx context.Context, q database.Querier, p AppliedParams) error {
	_, err := q.Exec(ctx,
		`INSERT INTO `+VersionsTable+` (version, description, applied_by, checksum, execution_time_ms)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (version) DO UPDATE SET
		     description = EXCLUDED.description,
		     applied_at = NOW(),
		     applied_by = EXCLUDED.applied_by,
		     checksum = EXCLUDED.checksum,
		     execution_time_ms = EXCLUDED.execution_time_ms`,
		p.Version, p.Description, p.AppliedBy, p.Checksum, p.ExecutionTimeMs,
	)
	if err != nil {
		return fmt.Errorf("recording version %s as applied: %w", p.Version, err)
	}

	return nil
}

// RemoveApplied deletes a version's applied record after its rollback
// scripts committed. Missing rows are reported, not ignored.
func (l *Ledger) RemoveApplied(ctx context.Context, q database.Querier, version string) error {
	tag, err := q.Exec(ctx, `DELETE FROM `+VersionsTable+` WHERE version = $1`, version)
	if err != nil {
		return fmt.Errorf("removing applied record for %s: %w", version, err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("version %s: %w", version, ErrVersionNotRecorded)
	}

	return nil
}

// AppliedVersions returns every applied-version record ordered by version.
func (l *Ledger) AppliedVersions(ctx context.Context) ([]AppliedVersion, error) {
	rows, err := l.db.Query(ctx,
		`SELECT version, description, applied_at, applied_by, checksum, execution_time_ms
		 FROM `+VersionsTable+`
		 ORDER BY version`,
	)
	if err != nil {
		return nil, fmt.Errorf("querying applied versions: %w", err)
	}
	defer rows.Close()

	applied, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (AppliedVersion, error) {
		var v AppliedVersion
		if scanErr := row.Scan(&v.Version, &v.Description, &v.AppliedAt, &v.AppliedBy, &v.Checksum, &v.ExecutionTimeMs); scanErr != nil {
			return AppliedVersion{}, fmt.Errorf("%w: %w", ErrCorruptRecord, scanErr)
		}

		return v, nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning applied versions: %w", err)
	}

	return applied, nil
}

// StartAttempt inserts a STARTED attempt row for the given migration id.
func (l *Ledger) StartAttempt(ctx context.Context, migrationID, version, operation string) error {
	_, err := l.db.Exec(ctx,
		`INSERT INTO `+AttemptsTable+` (migration_id, version, operation, status)
		 VALUES ($1, $2, $3, $4)`,
		migrationID, version, operation, StatusStarted,
	)
	if err != nil {
		return fmt.Errorf("logging attempt start for %s: %w", version, err)
	}

	return nil
}

// CompleteAttempt closes a STARTED attempt with its terminal status, error
// text, and the ordered list of executed script ids.
func (l *Ledger) CompleteAttempt(ctx context.Context, migrationID, status, errorMessage string, executed []string) error {
	serialized, err := encodeScripts(executed)
	if err != nil {
		return err
	}

	tag, err := l.db.Exec(ctx,
		`UPDATE `+AttemptsTable+`
		 SET status = $2, completed_at = NOW(), error_message = NULLIF($3, ''), executed_scripts = $4
		 WHERE migration_id = $1 AND status = $5`,
		migrationID, status, errorMessage, serialized, StatusStarted,
	)
	if err != nil {
		return fmt.Errorf("logging attempt completion %s: %w", migrationID, err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("attempt %s: %w", migrationID, ErrAttemptNotOpen)
	}

	return nil
}

// History returns attempt logs, most recent first. A non-positive limit
// uses DefaultHistoryLimit.
func (l *Ledger) History(ctx context.Context, limit int) ([]Attempt, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	rows, err := l.db.Query(ctx,
		`SELECT id, migration_id, version, operation, status, started_at, completed_at,
		        COALESCE(error_message, ''), executed_scripts
		 FROM `+AttemptsTable+`
		 ORDER BY started_at DESC, id DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying migration history: %w", err)
	}
	defer rows.Close()

	attempts, err := pgx.CollectRows(rows, scanAttempt)
	if err != nil {
		return nil, fmt.Errorf("scanning migration history: %w", err)
	}

	return attempts, nil
}

// Cleanup deletes attempt logs started more than keepDays ago and returns
// the number removed. STARTED rows are kept regardless of age so an
// in-flight or operator-abandoned attempt stays visible.
func (l *Ledger) Cleanup(ctx context.Context, keepDays int) (int64, error) {
	if keepDays <= 0 {
		keepDays = DefaultKeepDays
	}

	tag, err := l.db.Exec(ctx,
		`DELETE FROM `+AttemptsTable+`
		 WHERE started_at < NOW() - make_interval(days => $1)
		   AND status <> $2`,
		keepDays, StatusStarted,
	)
	if err != nil {
		return 0, fmt.Errorf("cleaning up attempt logs: %w", err)
	}

	return tag.RowsAffected(), nil
}

func scanAttempt(row pgx.CollectableRow) (Attempt, error) {
	var (
		a          Attempt
		serialized string
	)

	err := row.Scan(&a.ID, &a.MigrationID, &a.Version, &a.Operation, &a.Status,
		&a.StartedAt, &a.CompletedAt, &a.ErrorMessage, &serialized)
	if err != nil {
		return Attempt{}, fmt.Errorf("%w: %w", ErrCorruptRecord, err)
	}

	a.ExecutedScripts, err = decodeScripts(serialized)
	if err != nil {
		return Attempt{}, err
	}

	return a, nil
}

// encodeScripts serializes a script id list as a JSON array. nil encodes as
// the empty list.
func encodeScripts(scripts []string) (string, error) {
	if scripts == nil {
		scripts = []string{}
	}

	data, err := json.Marshal(scripts)
	if err != nil {
		return "", fmt.Errorf("serializing executed scripts: %w", err)
	}

	return string(data), nil
}

func decodeScripts(serialized string) ([]string, error) {
	if serialized == "" {
		return nil, nil
	}

	var scripts []string
	if err := json.Unmarshal([]byte(serialized), &scripts); err != nil {
		return nil, fmt.Errorf("%w: executed_scripts %q: %w", ErrCorruptRecord, serialized, err)
	}

	return scripts, nil
}
