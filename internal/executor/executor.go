// Package executor orchestrates schema migrations: it computes the path to
// a target version, runs every script on that path inside one transaction,
// and records the outcome in the audit ledger.
package executor

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/aqasim81/schema-version-engine/internal/catalog"
	"github.com/aqasim81/schema-version-engine/internal/database"
	"github.com/aqasim81/schema-version-engine/internal/ledger"
	"github.com/aqasim81/schema-version-engine/internal/parser"
	"github.com/aqasim81/schema-version-engine/internal/version"
)

// AuditLedger abstracts the ledger operations the executor needs, for
// testability. Applied-record operations take an explicit Querier so they
// run inside the path transaction; attempt-log operations use the ledger's
// own connection and survive a transaction rollback.
type AuditLedger interface {
	EnsureSchema(ctx context.Context) error
	RecordApplied(ctx context.Context, q database.Querier, p ledger.AppliedParams) error
	RemoveApplied(ctx context.Context, q database.Querier, version string) error
	StartAttempt(ctx context.Context, migrationID, version, operation string) error
	CompleteAttempt(ctx context.Context, migrationID, status, errorMessage string, executed []string) error
}

// VersionProbe abstracts current-version detection.
type VersionProbe interface {
	CurrentVersion(ctx context.Context) (string, error)
}

// Executor runs migration paths. The host must serialize calls against a
// given schema (see database.TryAcquireLock); the executor itself performs
// no mutual exclusion.
type Executor struct {
	db               database.Conn
	catalog          *catalog.Catalog
	ledger           AuditLedger
	probe            VersionProbe
	appliedBy        string
	lockTimeout      time.Duration
	statementTimeout time.Duration
	onProgress       func(ProgressEvent)
	newMigrationID   func() string
}

// Option configures an Executor.
type Option func(*Executor)

// WithAppliedBy sets the actor recorded on applied-version rows.
func WithAppliedBy(actor string) Option {
	return func(e *Executor) { e.appliedBy = actor }
}

// WithLockTimeout sets lock_timeout for the path transaction.
func WithLockTimeout(d time.Duration) Option {
	return func(e *Executor) { e.lockTimeout = d }
}

// WithStatementTimeout sets statement_timeout for the path transaction.
func WithStatementTimeout(d time.Duration) Option {
	return func(e *Executor) { e.statementTimeout = d }
}

// WithProgressCallback sets a function called for each path version processed.
func WithProgressCallback(fn func(ProgressEvent)) Option {
	return func(e *Executor) { e.onProgress = fn }
}

// New creates an Executor over the given connection, catalog, ledger, and probe.
func New(db database.Conn, cat *catalog.Catalog, l AuditLedger, p VersionProbe, opts ...Option) *Executor {
	e := &Executor{
		db:      db,
		catalog: cat,
		ledger:  l,
		probe:   p,
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.newMigrationID == nil {
		e.newMigrationID = func() string { return "mig_" + uuid.NewString() }
	}

	return e
}

// Compare reports how the current version relates to target and the path
// between them. Returns an error when target is not a catalog version.
func (e *Executor) Compare(ctx context.Context, target string) (Comparison, error) {
	current, err := e.probe.CurrentVersion(ctx)
	if err != nil {
		return Comparison{}, err
	}

	path, err := e.catalog.Path(current, target)
	if err != nil {
		return Comparison{}, err
	}

	cmp := Comparison{
		Current:       current,
		Target:        target,
		MigrationPath: make([]string, 0, len(path.Versions)),
	}

	for _, v := range path.Versions {
		cmp.MigrationPath = append(cmp.MigrationPath, v.Version)
	}

	switch path.Direction {
	case catalog.DirectionUpgrade:
		cmp.NeedsUpgrade = true
	case catalog.DirectionDowngrade:
		cmp.NeedsDowngrade = true
	case catalog.DirectionNone:
	}

	return cmp, nil
}

// MigrateTo moves the database to the target version, forward or backward.
// Already at target is a successful no-op. All failure modes are captured
// in the Result; MigrateTo never panics or returns an error out of band.
func (e *Executor) MigrateTo(ctx context.Context, target string) Result {
	return e.run(ctx, target, "")
}

// RollbackToVersion is MigrateTo restricted to targets strictly below the
// current version, logged with operation kind ROLLBACK.
func (e *Executor) RollbackToVersion(ctx context.Context, target string) Result {
	start := time.Now()

	current, err := e.probe.CurrentVersion(ctx)
	if err != nil {
		return e.failed(Result{Version: target}, err, start)
	}

	if current == "" {
		current = catalog.Unversioned
	}

	if version.Compare(target, current) >= 0 {
		return e.failed(Result{Version: target}, ErrNotBelowCurrent, start)
	}

	return e.run(ctx, target, ledger.OpRollback)
}

// run executes one migration attempt end to end.
func (e *Executor) run(ctx context.Context, target, opOverride string) Result {
	start := time.Now()
	res := Result{Version: target}

	current, err := e.probe.CurrentVersion(ctx)
	if err != nil {
		return e.failed(res, err, start)
	}

	path, err := e.catalog.Path(current, target)
	if err != nil {
		return e.failed(res, err, start)
	}

	if path.Direction == catalog.DirectionNone {
		// Idempotent short-circuit: nothing ran, nothing is logged.
		e.fireProgress(ProgressEvent{Version: target, Status: StatusSkipped})

		res.Success = true
		res.ExecutedScripts = []string{}
		res.RollbackAvailable = e.hasRollback(target)
		res.Duration = time.Since(start)

		return res
	}

	op := operationKind(path.Direction, opOverride)

	// The attempt log must exist before the STARTED row; on a virgin
	// database this is also what lets the bootstrap attempt be recorded.
	if err := e.ledger.EnsureSchema(ctx); err != nil {
		return e.failed(res, err, start)
	}

	migrationID := e.newMigrationID()

	if err := e.ledger.StartAttempt(ctx, migrationID, target, op); err != nil {
		return e.failed(res, err, start)
	}

	executed := []string{}

	tx, err := e.db.Begin(ctx)
	if err != nil {
		e.closeAttempt(ctx, migrationID, ledger.StatusFailed, err, executed)

		return e.failed(res, err, start)
	}

	runErr := e.runPath(ctx, tx, path, &executed, &res)
	if runErr != nil {
		// Undo everything applied so far in this call. If the rollback
		// itself fails the schema state is undefined and an operator must
		// reconcile; the attempt log still records the original failure.
		_ = tx.Rollback(ctx)

		e.closeAttempt(ctx, migrationID, ledger.StatusFailed, runErr, executed)

		res.ExecutedScripts = executed

		return e.failed(res, runErr, start)
	}

	if err := tx.Commit(ctx); err != nil {
		e.closeAttempt(ctx, migrationID, ledger.StatusFailed, err, executed)

		res.ExecutedScripts = executed

		return e.failed(res, err, start)
	}

	finalStatus := ledger.StatusSuccess
	if op == ledger.OpRollback {
		finalStatus = ledger.StatusRolledBack
	}

	e.closeAttempt(ctx, migrationID, finalStatus, nil, executed)

	res.Success = true
	res.ExecutedScripts = executed
	res.RollbackAvailable = e.hasRollback(target)
	res.Duration = time.Since(start)

	return res
}

// runPath executes every version on the path inside the given transaction.
// On failure res.FailedScript is set when the failure is attributable to a
// script.
func (e *Executor) runPath(ctx context.Context, tx pgx.Tx, path catalog.Path, executed *[]string, res *Result) error {
	if e.lockTimeout > 0 {
		if err := setLockTimeout(ctx, tx, e.lockTimeout); err != nil {
			return err
		}
	}

	if e.statementTimeout > 0 {
		if err := setStatementTimeout(ctx, tx, e.statementTimeout); err != nil {
			return err
		}
	}

	for _, v := range path.Versions {
		if err := e.runVersion(ctx, tx, v, path.Direction, executed, res); err != nil {
			return err
		}
	}

	return nil
}

// runVersion executes one version's script set and updates its
// applied-version record.
func (e *Executor) runVersion(ctx context.Context, tx pgx.Tx, v catalog.Version, dir catalog.Direction, executed *[]string, res *Result) error {
	scripts := v.Forward
	if dir == catalog.DirectionDowngrade {
		if len(v.Rollback) == 0 {
			return &ScriptError{Version: v.Version, Err: ErrRollbackUnavailable}
		}

		scripts = v.Rollback
	}

	e.fireProgress(ProgressEvent{Version: v.Version, Status: StatusStarting})

	start := time.Now()

	for _, s := range scripts {
		if err := e.runScript(ctx, tx, v.Version, s); err != nil {
			res.FailedScript = s.ID

			e.fireProgress(ProgressEvent{
				Version:  v.Version,
				Status:   StatusFailed,
				Duration: time.Since(start),
				Error:    err,
			})

			return err
		}

		*executed = append(*executed, s.ID)
	}

	var err error

	if dir == catalog.DirectionUpgrade {
		err = e.ledger.RecordApplied(ctx, tx, ledger.AppliedParams{
			Version:         v.Version,
			Description:     v.Description,
			AppliedBy:       e.appliedBy,
			Checksum:        v.Checksum(),
			ExecutionTimeMs: int(time.Since(start).Milliseconds()),
		})
	} else {
		err = e.ledger.RemoveApplied(ctx, tx, v.Version)
	}

	if err != nil {
		e.fireProgress(ProgressEvent{Version: v.Version, Status: StatusFailed, Error: err})

		return err
	}

	e.fireProgress(ProgressEvent{
		Version:  v.Version,
		Status:   StatusCompleted,
		Duration: time.Since(start),
	})

	return nil
}

// runScript executes one script's statement batch sequentially. Any
// statement failure aborts the script and is attributed to its id.
func (e *Executor) runScript(ctx context.Context, tx pgx.Tx, ver string, s catalog.Script) error {
	stmts, err := parser.SplitStatements(s.SQL)
	if err != nil {
		return &ScriptError{Version: ver, ScriptID: s.ID, Err: err}
	}

	for _, stmt := range stmts {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return &ScriptError{Version: ver, ScriptID: s.ID, Err: err}
		}
	}

	return nil
}

// closeAttempt marks the attempt's terminal status. Best-effort: when this
// fails (connection gone after a failed rollback, say) the original outcome
// still reaches the caller, and the attempt stays visibly STARTED for an
// operator to reconcile.
func (e *Executor) closeAttempt(ctx context.Context, migrationID, status string, cause error, executed []string) {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}

	if err := e.ledger.CompleteAttempt(ctx, migrationID, status, msg, executed); err != nil {
		e.fireProgress(ProgressEvent{Status: StatusFailed, Error: err})
	}
}

func (e *Executor) failed(res Result, err error, start time.Time) Result {
	res.Success = false
	res.Err = err
	res.Duration = time.Since(start)
	res.RollbackAvailable = false

	return res
}

// hasRollback reports whether the given version defines rollback scripts.
func (e *Executor) hasRollback(ver string) bool {
	v, ok := e.catalog.Lookup(ver)

	return ok && len(v.Rollback) > 0
}

func operationKind(dir catalog.Direction, override string) string {
	if override != "" {
		return override
	}

	if dir == catalog.DirectionDowngrade {
		return ledger.OpDowngrade
	}

	return ledger.OpUpgrade
}

func (e *Executor) fireProgress(event ProgressEvent) {
	if e.onProgress != nil {
		e.onProgress(event)
	}
}
