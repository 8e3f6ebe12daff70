package runner

import (
	"time"

	"agentevals/internal/history"
)

// Phase is a step of the evaluation state machine.
type Phase string

const (
	PhaseInit        Phase = "init"
	PhaseGenerate    Phase = "generate"
	PhaseReloadScore Phase = "reload_score"
	PhasePersist     Phase = "persist"
	PhaseDone        Phase = "done"
)

// CaseEventType identifies a case status update for observers.
type CaseEventType string

const (
	// CaseQueued marks a case loaded but not yet run.
	CaseQueued CaseEventType = "queued"
	// CaseRunning marks an active agent run.
	CaseRunning CaseEventType = "running"
	// CaseGenerated marks a stored phase-1 record.
	CaseGenerated CaseEventType = "generated"
	// CaseFailed marks a case error kept under continue-on-error, from either phase.
	CaseFailed CaseEventType = "failed"
	// CaseReloading marks a session being reopened.
	CaseReloading CaseEventType = "reloading"
	// CaseCorrect marks a matching label.
	CaseCorrect CaseEventType = "correct"
	// CaseIncorrect marks a mismatching label.
	CaseIncorrect CaseEventType = "incorrect"
)

// CaseEvent carries a single status update for a case.
type CaseEvent struct {
	EvalType       string
	Index          int
	CaseID         string
	Prompt         string
	Expected       string
	Actual         string
	ConversationID string
	ReloadedItems  int
	Type           CaseEventType
	Error          string
	Duration       time.Duration
	EmittedAt      time.Time
}

// RunObserver receives run lifecycle events for UI, metrics, or logging.
type RunObserver interface {
	// OnRunStart signals the start of a run over total cases.
	OnRunStart(meta history.RunMetadata, total int)
	// OnPhase signals a state machine transition.
	OnPhase(evalType string, phase Phase)
	// OnCaseEvent delivers a case status update.
	OnCaseEvent(event CaseEvent)
	// OnRunEnd signals run completion. err is nil on success.
	OnRunEnd(result EvalResult, err error)
}

// MultiObserver fans events out to several observers in order.
type MultiObserver []RunObserver

func (m MultiObserver) OnRunStart(meta history.RunMetadata, total int) {
	for _, o := range m {
		if o != nil {
			o.OnRunStart(meta, total)
		}
	}
}

func (m MultiObserver) OnPhase(evalType string, phase Phase) {
	for _, o := range m {
		if o != nil {
			o.OnPhase(evalType, phase)
		}
	}
}

func (m MultiObserver) OnCaseEvent(event CaseEvent) {
	for _, o := range m {
		if o != nil {
			o.OnCaseEvent(event)
		}
	}
}

func (m MultiObserver) OnRunEnd(result EvalResult, err error) {
	for _, o := range m {
		if o != nil {
			o.OnRunEnd(result, err)
		}
	}
}
