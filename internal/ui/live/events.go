package live

import (
	"agentevals/internal/history"
	"agentevals/internal/runner"
)

// EventKind identifies the type of live UI event.
type EventKind int

const (
	// EventRunStart signals the start of a run.
	EventRunStart EventKind = iota
	// EventPhase signals a state machine transition.
	EventPhase
	// EventCase delivers a case status update.
	EventCase
	// EventRunEnd signals run completion.
	EventRunEnd
)

// Event carries a UI update payload.
type Event struct {
	Kind   EventKind
	Meta   history.RunMetadata
	Total  int
	Phase  runner.Phase
	Case   runner.CaseEvent
	Result runner.EvalResult
	Err    string
}
