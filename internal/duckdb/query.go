package duckdb

import (
	"context"
	"database/sql"
	"fmt"
)

// CaseAccuracy is one row of the per-case accuracy view.
type CaseAccuracy struct {
	EvalType string  `json:"eval_type"`
	Model    string  `json:"model"`
	CaseID   string  `json:"case_id"`
	Runs     int     `json:"runs"`
	Correct  int     `json:"correct"`
	Accuracy float64 `json:"accuracy"`
}

// CaseAccuracies reads v_case_accuracy for evalType, hardest cases first.
func CaseAccuracies(ctx context.Context, db *sql.DB, evalType string) ([]CaseAccuracy, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT eval_type, model, case_id, runs, correct, accuracy
		 FROM v_case_accuracy
		 WHERE eval_type = ?
		 ORDER BY accuracy ASC, case_id ASC, model ASC`, evalType)
	if err != nil {
		return nil, fmt.Errorf("duckdb: query case accuracy: %w", err)
	}
	defer rows.Close()
	var out []CaseAccuracy
	for rows.Next() {
		var row CaseAccuracy
		if err := rows.Scan(&row.EvalType, &row.Model, &row.CaseID, &row.Runs, &row.Correct, &row.Accuracy); err != nil {
			return nil, fmt.Errorf("duckdb: scan case accuracy: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
