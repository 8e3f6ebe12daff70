// Package export writes per-case evaluation results to CSV files.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"agentevals/internal/eval"
	"agentevals/internal/history"
)

// Header is the column order shared by every export.
var Header = []string{"run_id", "timestamp", "model", "dataset", "eval_type", "message", "target", "output"}

// FileName returns "{evalType}_evals_{YYYYMMDD_HHMMSS}.csv".
func FileName(evalType string, now time.Time) string {
	return fmt.Sprintf("%s_evals_%s.csv", evalType, now.Format("20060102_150405"))
}

// WriteResults writes one row per result under dir, creating dir if needed,
// and returns the file path.
func WriteResults(dir string, now time.Time, meta history.RunMetadata, results []eval.ScoredResult) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create results dir: %w", err)
	}
	path := filepath.Join(dir, FileName(meta.EvalType, now))
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create results file: %w", err)
	}

	writer := csv.NewWriter(file)
	rows := make([][]string, 0, len(results)+1)
	rows = append(rows, Header)
	for _, result := range results {
		rows = append(rows, []string{
			meta.RunID,
			meta.Timestamp,
			meta.Model,
			meta.Dataset,
			meta.EvalType,
			result.Message,
			result.Target,
			result.Output,
		})
	}
	writeErr := writer.WriteAll(rows)
	closeErr := file.Close()
	if writeErr != nil {
		return "", fmt.Errorf("write results: %w", writeErr)
	}
	if closeErr != nil {
		return "", fmt.Errorf("close results file: %w", closeErr)
	}
	return path, nil
}
