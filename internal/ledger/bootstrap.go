package ledger

import "github.com/aqasim81/schema-version-engine/internal/catalog"

// BootstrapVersion returns the catalog version that creates the engine's
// own tables. The engine migrates its own schema as version 1: catalogs
// should declare this (or equivalent DDL) as their earliest version. The
// version defines no rollback scripts — removing the ledger would erase
// the audit trail, so it is an explicit floor.
func BootstrapVersion() catalog.Version {
	return catalog.Version{
		Version:     "1.0.0",
		Description: "schema version engine bootstrap",
		Forward: []catalog.Script{
			{
				ID:             "bootstrap_versions_table",
				Name:           "create_schema_versions",
				Description:    "applied-versions table",
				SQL:            CreateVersionsTableSQL,
				ExecutionOrder: 1,
			},
			{
				ID:             "bootstrap_attempts_table",
				Name:           "create_schema_migration_attempts",
				Description:    "migration attempt log",
				SQL:            CreateAttemptsTableSQL,
				ExecutionOrder: 2,
			},
		},
	}
}
