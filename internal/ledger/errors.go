package ledger

import "errors"

// ErrSchemaCreation indicates the engine-owned tables could not be created.
var ErrSchemaCreation = errors.New("creating engine tables")

// ErrVersionNotRecorded indicates no applied record exists for the given version.
var ErrVersionNotRecorded = errors.New("version has no applied record")

// ErrAttemptNotOpen indicates the attempt is missing or already closed;
// closed attempts are immutable.
var ErrAttemptNotOpen = errors.New("attempt log is not open")

// ErrCorruptRecord indicates a persisted row did not match its expected shape.
var ErrCorruptRecord = errors.New("corrupt ledger record")
