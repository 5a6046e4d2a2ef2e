package parser //nolint:revive // intentional: does not conflict with go/parser in internal package

import (
	"fmt"
	"strings"

	pg_query "github.com/pganalyze/pg_query_go/v6"
)

// SplitStatements splits a raw statement batch on true PostgreSQL statement
// boundaries using the real parser, so semicolons inside strings, dollar
// quotes, or function bodies are not treated as separators. Empty and
// whitespace-only input yields zero statements.
func SplitStatements(sql string) ([]string, error) {
	trimmed := strings.TrimSpace(sql)
	if trimmed == "" {
		return nil, nil
	}

	stmts, err := pg_query.SplitWithParser(trimmed, true)
	if err != nil {
		return nil, fmt.Errorf("splitting SQL batch: %w", err)
	}

	out := make([]string, 0, len(stmts))

	for _, s := range stmts {
		if strings.TrimSpace(s) == "" {
			continue
		}

		out = append(out, s)
	}

	return out, nil
}

// CreatedTables parses the SQL and returns the names of tables it creates,
// in statement order. Used by the integrity validator to derive the table
// set a catalog version is expected to have produced.
func CreatedTables(sql string) ([]string, error) {
	trimmed := strings.TrimSpace(sql)
	if trimmed == "" {
		return nil, nil
	}

	tree, err := pg_query.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parsing SQL: %w", err)
	}

	var tables []string

	for _, stmt := range tree.Stmts {
		node, ok := stmt.Stmt.Node.(*pg_query.Node_CreateStmt)
		if !ok {
			continue
		}

		if rel := node.CreateStmt.GetRelation(); rel != nil && rel.Relname != "" {
			tables = append(tables, rel.Relname)
		}
	}

	return tables, nil
}
