package live

import (
	"time"

	"agentevals/internal/runner"
)

// CaseRow holds UI state for a single dataset case.
type CaseRow struct {
	Index          int
	ID             string
	Prompt         string
	Expected       string
	Actual         string
	Status         runner.CaseEventType
	ConversationID string
	ReloadedItems  int
	Reloaded       bool
	StartedAt      time.Time
	FinishedAt     time.Time
	Duration       time.Duration
	Error          string
}

// StatusCounts aggregates counts by status bucket.
type StatusCounts struct {
	Queued    int
	Running   int
	Generated int
	Reloading int
	Failed    int
	Correct   int
	Incorrect int
}

// Scored returns the number of cases with a final verdict.
func (c StatusCounts) Scored() int {
	return c.Correct + c.Incorrect
}

// State captures the live UI state for one evaluation run.
type State struct {
	RunID     string
	EvalType  string
	Model     string
	Commit    string
	Dataset   string
	Total     int
	Phase     runner.Phase
	StartedAt time.Time
	LastEvent string
	Rows      []CaseRow
	Counts    StatusCounts
	Summary   string
	Finished  bool
}
