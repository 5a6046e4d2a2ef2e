package ledger_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aqasim81/schema-version-engine/internal/catalog"
	"github.com/aqasim81/schema-version-engine/internal/ledger"
	"github.com/aqasim81/schema-version-engine/internal/parser"
)

func TestBootstrapVersion_isValidCatalogVersion(t *testing.T) {
	t.Parallel()

	cat, err := catalog.New([]catalog.Version{ledger.BootstrapVersion()})
	require.NoError(t, err)

	assert.Equal(t, "1.0.0", cat.Earliest())
}

func TestBootstrapVersion_createsBothEngineTables(t *testing.T) {
	t.Parallel()

	boot := ledger.BootstrapVersion()
	require.Len(t, boot.Forward, 2)
	assert.Empty(t, boot.Rollback, "bootstrap must be an irreversible floor")

	var tables []string

	for _, s := range boot.Forward {
		created, err := parser.CreatedTables(s.SQL)
		require.NoError(t, err)

		tables = append(tables, created...)
	}

	assert.Equal(t, []string{ledger.VersionsTable, ledger.AttemptsTable}, tables)
}

func TestNew_returnsNonNil(t *testing.T) {
	t.Parallel()

	// nil conn is accepted at construction time; errors surface on use.
	l := ledger.New(nil)
	assert.NotNil(t, l)
}
