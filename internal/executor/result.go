package executor

import "time"

// Result reports the outcome of one MigrateTo or RollbackToVersion call.
// The executor never returns a Go error from those operations; every
// failure mode is folded in here so hosts branch on the value.
type Result struct {
	Success           bool
	Version           string        // requested target
	ExecutedScripts   []string      // script ids, in execution order
	FailedScript      string        // id of the script whose statement failed, if attributable
	Err               error         // nil when Success
	Duration          time.Duration
	RollbackAvailable bool          // whether the now-current version can be rolled back
}

// Comparison describes the relationship between the current and target
// versions and the path between them.
type Comparison struct {
	Current        string // "" when unversioned
	Target         string
	NeedsUpgrade   bool
	NeedsDowngrade bool
	MigrationPath  []string // versions in traversal order
}

// Progress status constants reported via ProgressEvent.
const (
	StatusStarting  = "starting"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusSkipped   = "skipped"
)

// ProgressEvent is emitted once per path version processed, plus a single
// skipped event for an idempotent no-op call.
type ProgressEvent struct {
	Version  string
	Status   string
	Duration time.Duration
	Error    error
}
