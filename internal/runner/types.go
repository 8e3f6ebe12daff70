package runner

import (
	"context"
	"io"
	"time"

	"go.uber.org/zap"

	"agentevals/internal/agent"
	"agentevals/internal/eval"
	"agentevals/internal/history"
	"agentevals/internal/session"
)

// Evaluation type identifiers, also used as CSV file prefixes.
const (
	EvalHandoff = "handoff"
	EvalTool    = "tool"
)

// DefaultModel is used when no model is requested.
const DefaultModel = "gpt-4.1-mini"

// ActualError is recorded as the actual label of a case whose run failed.
const ActualError = "ERROR"

// ProviderFactory builds a model provider for the requested model.
type ProviderFactory func(model string) (agent.Provider, error)

// ResultSink receives each persisted run, for example an analytics database.
type ResultSink interface {
	RecordRun(ctx context.Context, record history.Record, cases []eval.CaseResult) error
}

// Dependencies are the collaborators an evaluation run needs.
type Dependencies struct {
	ProviderFactory ProviderFactory
	Sessions        session.Store
	History         *history.Store
	Sink            ResultSink
	Commit          func(ctx context.Context) string
	Now             func() time.Time
	Logger          *zap.Logger
}

// Options configures a single evaluation run.
type Options struct {
	Model           string
	DatasetPath     string
	ResultsDir      string
	MaxTurns        int
	ContinueOnError bool
	Verbose         bool
	VerboseWriter   io.Writer
	NoColor         bool
	Observer        RunObserver
}

// EvalResult is the terminal output of a run.
type EvalResult struct {
	RunID    string              `json:"run_id"`
	Model    string              `json:"model"`
	EvalType string              `json:"eval_type"`
	Accuracy float64             `json:"accuracy"`
	Correct  int                 `json:"correct"`
	Total    int                 `json:"total"`
	Results  []eval.ScoredResult `json:"results"`
	CSVPath  string              `json:"csv_path"`
	Cases    []eval.CaseResult   `json:"-"`
}

// runRecord is the phase-1 output for one case.
type runRecord struct {
	CaseID         string
	Prompt         string
	Expected       string
	Actual         string
	AllTools       []string
	ConversationID string
	FinalOutput    string
	Err            error
}
