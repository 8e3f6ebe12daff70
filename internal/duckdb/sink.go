package duckdb

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"agentevals/internal/eval"
	"agentevals/internal/history"
)

// datasetCase is the fingerprinted view of one dataset row.
type datasetCase struct {
	CaseID   string `json:"case_id"`
	Prompt   string `json:"prompt"`
	Expected string `json:"expected"`
}

// DatasetKey fingerprints the cases a run was scored against.
func DatasetKey(evalType string, cases []eval.CaseResult) (string, []byte, error) {
	rows := make([]datasetCase, 0, len(cases))
	for _, c := range cases {
		rows = append(rows, datasetCase{CaseID: c.CaseID, Prompt: c.Prompt, Expected: c.Expected})
	}
	canonical, err := CanonicalJSON(map[string]any{"eval_type": evalType, "cases": rows})
	if err != nil {
		return "", nil, err
	}
	return fingerprintBytes(canonical), canonical, nil
}

// RecordRun inserts one run and its case rows in a single transaction.
// It returns the generated run primary key.
func RecordRun(ctx context.Context, db *sql.DB, record history.Record, cases []eval.CaseResult) (string, error) {
	if db == nil {
		return "", errors.New("duckdb: db is nil")
	}
	startedAt, err := time.ParseInLocation(history.TimestampLayout, record.Timestamp, time.Local)
	if err != nil {
		return "", fmt.Errorf("duckdb: parse run timestamp: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("duckdb: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	datasetID, err := upsertDataset(ctx, tx, record, cases)
	if err != nil {
		return "", err
	}

	runPK := uuid.NewString()
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO eval_runs (
		  run_pk, run_id, started_at, model, eval_type, dataset_id, git_commit,
		  accuracy, correct, total, csv_path, recorded_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, now())`,
		runPK, record.RunID, startedAt, record.Model, record.EvalType, datasetID, record.GitCommit,
		record.Accuracy, record.Correct, record.Total, record.CSVPath,
	); err != nil {
		return "", fmt.Errorf("duckdb: insert run %s: %w", record.RunID, err)
	}

	for i, c := range cases {
		var tools any
		if len(c.AllTools) > 0 {
			encoded, err := json.Marshal(c.AllTools)
			if err != nil {
				return "", err
			}
			tools = string(encoded)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO eval_case_results (
			  run_pk, case_index, case_id, prompt, expected, actual, all_tools,
			  conversation_id, final_output, reloaded_items, correct, error_message
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			runPK, i, c.CaseID, c.Prompt, c.Expected, c.Actual, tools,
			nullable(c.ConversationID), nullable(c.FinalOutput), c.ReloadedItems, c.Correct, nullable(c.Error),
		); err != nil {
			return "", fmt.Errorf("duckdb: insert case %s: %w", c.CaseID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("duckdb: commit: %w", err)
	}
	return runPK, nil
}

func upsertDataset(ctx context.Context, tx *sql.Tx, record history.Record, cases []eval.CaseResult) (string, error) {
	key, canonical, err := DatasetKey(record.EvalType, cases)
	if err != nil {
		return "", err
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO datasets (dataset_id, dataset_key, name, eval_type, case_count, cases, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, now())
		 ON CONFLICT (dataset_key) DO NOTHING`,
		uuid.NewString(), key, record.Dataset, record.EvalType, len(cases), string(canonical),
	); err != nil {
		return "", fmt.Errorf("duckdb: upsert dataset: %w", err)
	}
	var id string
	if err := tx.QueryRowContext(ctx,
		"SELECT CAST(dataset_id AS VARCHAR) FROM datasets WHERE dataset_key = ?", key,
	).Scan(&id); err != nil {
		return "", fmt.Errorf("duckdb: lookup dataset id: %w", err)
	}
	return id, nil
}

func nullable(value string) any {
	if value == "" {
		return nil
	}
	return value
}

// Sink adapts a database handle to the runner's result sink.
type Sink struct {
	db *sql.DB
}

// NewSink wraps an open database.
func NewSink(db *sql.DB) *Sink {
	return &Sink{db: db}
}

// OpenSink opens path and applies the schema.
func OpenSink(ctx context.Context, path string) (*Sink, error) {
	db, err := Open(ctx, path)
	if err != nil {
		return nil, err
	}
	return &Sink{db: db}, nil
}

// RecordRun implements runner.ResultSink.
func (s *Sink) RecordRun(ctx context.Context, record history.Record, cases []eval.CaseResult) error {
	_, err := RecordRun(ctx, s.db, record, cases)
	return err
}

// DB exposes the underlying handle for queries.
func (s *Sink) DB() *sql.DB {
	return s.db
}

// Close releases the database.
func (s *Sink) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
