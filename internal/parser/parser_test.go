package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aqasim81/schema-version-engine/internal/parser"
)

func TestSplitStatements(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		sql      string
		expected int
	}{
		{name: "empty input", sql: "", expected: 0},
		{name: "whitespace only", sql: "  \n\t ", expected: 0},
		{name: "single statement", sql: "CREATE TABLE users (id INT)", expected: 1},
		{
			name:     "two statements",
			sql:      "CREATE TABLE users (id INT); CREATE INDEX idx_users ON users(id);",
			expected: 2,
		},
		{
			name:     "semicolon inside string literal is not a boundary",
			sql:      "INSERT INTO t (v) VALUES ('a;b'); SELECT 1;",
			expected: 2,
		},
		{
			name: "dollar-quoted function body",
			sql: `CREATE FUNCTION f() RETURNS void AS $$
BEGIN
  PERFORM 1;
END;
$$ LANGUAGE plpgsql;
SELECT 1;`,
			expected: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			stmts, err := parser.SplitStatements(tt.sql)
			require.NoError(t, err)
			assert.Len(t, stmts, tt.expected)
		})
	}
}

func TestSplitStatements_invalidSQL(t *testing.T) {
	t.Parallel()

	_, err := parser.SplitStatements("CREATE TABEL oops")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "splitting SQL batch")
}

func TestCreatedTables(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		sql      string
		expected []string
	}{
		{name: "empty input", sql: ""},
		{name: "no creates", sql: "SELECT 1; ALTER TABLE t ADD COLUMN c INT;"},
		{
			name:     "single create",
			sql:      "CREATE TABLE users (id SERIAL PRIMARY KEY)",
			expected: []string{"users"},
		},
		{
			name: "multiple creates with other statements",
			sql: `CREATE TABLE users (id SERIAL PRIMARY KEY);
CREATE INDEX idx_users ON users(id);
CREATE TABLE posts (id SERIAL PRIMARY KEY);`,
			expected: []string{"users", "posts"},
		},
		{
			name:     "if not exists",
			sql:      "CREATE TABLE IF NOT EXISTS audit_log (id BIGSERIAL PRIMARY KEY)",
			expected: []string{"audit_log"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tables, err := parser.CreatedTables(tt.sql)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, tables)
		})
	}
}

func TestCreatedTables_invalidSQL(t *testing.T) {
	t.Parallel()

	_, err := parser.CreatedTables("NOT REAL SQL")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing SQL")
}
