package ledger

// Engine-owned table names. The bootstrap catalog version creates both
// tables through its own forward scripts; EnsureSchema runs the same DDL
// so the attempt log exists before the bootstrap transaction commits.
const (
	VersionsTable = "schema_versions"
	AttemptsTable = "schema_migration_attempts"
)

// CreateVersionsTableSQL is the DDL for the applied-versions table.
const CreateVersionsTableSQL = `CREATE TABLE IF NOT EXISTS ` + VersionsTable + ` (
    version           TEXT PRIMARY KEY,
    description       TEXT NOT NULL DEFAULT '',
    applied_at        TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    applied_by        TEXT NOT NULL DEFAULT '',
    checksum          TEXT NOT NULL DEFAULT '',
    execution_time_ms INTEGER NOT NULL DEFAULT 0
)`

// CreateAttemptsTableSQL is the DDL for the append-only attempt log.
const CreateAttemptsTableSQL = `CREATE TABLE IF NOT EXISTS ` + AttemptsTable + ` (
    id               BIGSERIAL PRIMARY KEY,
    migration_id     TEXT NOT NULL UNIQUE,
    version          TEXT NOT NULL,
    operation        TEXT NOT NULL,
    status           TEXT NOT NULL,
    started_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    completed_at     TIMESTAMPTZ,
    error_message    TEXT,
    executed_scripts TEXT NOT NULL DEFAULT '[]'
)`
