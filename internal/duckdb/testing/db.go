// Package duckdbtesting opens schema-initialized DuckDB databases for tests.
package duckdbtesting

import (
	"database/sql"
	"testing"
	"time"

	"agentevals/internal/duckdb"
	"agentevals/internal/testutil"
)

const defaultTimeout = 5 * time.Second

// Open opens an in-memory DuckDB with the schema applied and closes it on cleanup.
func Open(t testing.TB) *sql.DB {
	t.Helper()
	ctx := testutil.Context(t, defaultTimeout)
	db, err := duckdb.Open(ctx, ":memory:")
	if err != nil {
		t.Fatalf("open duckdb: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db
}
