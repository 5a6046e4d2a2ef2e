package executor

import (
	"errors"
	"fmt"
)

// ErrRollbackUnavailable indicates a downgrade path crosses a version that
// defines no rollback scripts. Such versions are irreversible floors; the
// engine never infers a no-op rollback.
var ErrRollbackUnavailable = errors.New("version has no rollback scripts")

// ErrNotBelowCurrent indicates a rollback target that is not strictly less
// than the current version.
var ErrNotBelowCurrent = errors.New("rollback target must be below current version")

// ScriptError wraps a statement failure, attributed to the script and
// version it occurred in.
type ScriptError struct {
	Version  string
	ScriptID string
	Err      error
}

func (e *ScriptError) Error() string {
	return fmt.Sprintf("version %s script %s: %v", e.Version, e.ScriptID, e.Err)
}

func (e *ScriptError) Unwrap() error {
	return e.Err
}
