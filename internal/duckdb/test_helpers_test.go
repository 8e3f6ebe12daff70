package duckdb_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	duckdbtesting "agentevals/internal/duckdb/testing"
	"agentevals/internal/eval"
	"agentevals/internal/history"
	"agentevals/internal/testutil"
)

const testTimeout = 5 * time.Second

// openTestDB opens an in-memory DuckDB instance with the schema applied.
func openTestDB(t *testing.T) (*sql.DB, context.Context) {
	t.Helper()
	ctx := testutil.Context(t, testTimeout)
	return duckdbtesting.Open(t), ctx
}

// queryInt returns a single integer value from the database.
func queryInt(t *testing.T, ctx context.Context, db *sql.DB, query string, args ...any) int {
	t.Helper()
	var out int
	if err := db.QueryRowContext(ctx, query, args...).Scan(&out); err != nil {
		t.Fatalf("query int failed: %v", err)
	}
	return out
}

func sampleRecord(runID string) history.Record {
	return history.Record{
		RunMetadata: history.RunMetadata{
			RunID:     runID,
			Timestamp: "2025-03-04T10:30:00.000000",
			Model:     "gpt-4.1-mini",
			Dataset:   "routing_dataset.csv",
			EvalType:  "handoff",
			GitCommit: "abc123",
		},
		Accuracy: 0.5,
		Correct:  1,
		Total:    2,
		CSVPath:  "results/handoff_evals_20250304_103000.csv",
	}
}

func sampleCases() []eval.CaseResult {
	return []eval.CaseResult{
		{CaseID: "r1", Prompt: "Transfer $50", Expected: "Operational", Actual: "Operational", ConversationID: "conv_1", ReloadedItems: 3, Correct: true},
		{CaseID: "r2", Prompt: "Help me budget", Expected: "FinancialCoach", Actual: "ERROR", Error: "boom"},
	}
}
