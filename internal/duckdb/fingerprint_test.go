package duckdb_test

import (
	"encoding/json"
	"testing"

	"pgregory.net/rapid"

	"agentevals/internal/duckdb"
	"agentevals/internal/eval"
)

func TestCanonicalJSONIsKeyOrderIndependent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		values := rapid.MapOf(rapid.StringMatching(`[a-z]{1,6}`), rapid.String()).Draw(t, "values")
		left, err := duckdb.CanonicalJSON(values)
		if err != nil {
			t.Fatalf("canonical: %v", err)
		}
		raw, err := json.Marshal(values)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		right, err := duckdb.CanonicalJSON(json.RawMessage(raw))
		if err != nil {
			t.Fatalf("canonical raw: %v", err)
		}
		if string(left) != string(right) {
			t.Fatalf("canonical forms differ: %s vs %s", left, right)
		}
	})
}

func TestDatasetKeyIgnoresOutcomes(t *testing.T) {
	cases := []eval.CaseResult{{CaseID: "t1", Prompt: "Transfer $50", Expected: "transfer_funds", Actual: "None"}}
	first, _, err := duckdb.DatasetKey("tool", cases)
	if err != nil {
		t.Fatalf("dataset key: %v", err)
	}
	cases[0].Actual = "transfer_funds"
	cases[0].Correct = true
	second, _, err := duckdb.DatasetKey("tool", cases)
	if err != nil {
		t.Fatalf("dataset key: %v", err)
	}
	if first != second {
		t.Fatalf("expected outcomes not to affect the key")
	}
	other, _, err := duckdb.DatasetKey("handoff", cases)
	if err != nil {
		t.Fatalf("dataset key: %v", err)
	}
	if other == first {
		t.Fatalf("expected eval type to affect the key")
	}
}
