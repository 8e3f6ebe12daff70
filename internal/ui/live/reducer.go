package live

import (
	"fmt"

	"agentevals/internal/eval"
	"agentevals/internal/history"
	"agentevals/internal/runner"
)

// Start resets the state for a new run.
func Start(state State, meta history.RunMetadata, total int) State {
	return State{
		RunID:     meta.RunID,
		EvalType:  meta.EvalType,
		Model:     meta.Model,
		Commit:    meta.GitCommit,
		Dataset:   meta.Dataset,
		Total:     total,
		Phase:     runner.PhaseInit,
		StartedAt: state.StartedAt,
	}
}

// EnterPhase records a phase transition.
func EnterPhase(state State, phase runner.Phase) State {
	state.Phase = phase
	state.LastEvent = "phase " + string(phase)
	return state
}

// Reduce applies a case event to the UI state.
func Reduce(state State, event runner.CaseEvent) State {
	state = ensureRow(state, event)
	state = applyCaseEvent(state, event)
	state.Counts = recount(state.Rows)
	if message := formatLastEvent(event); message != "" {
		state.LastEvent = message
	}
	return state
}

// Finish records the run outcome.
func Finish(state State, result runner.EvalResult, errMsg string) State {
	state.Finished = true
	if errMsg != "" {
		state.LastEvent = "run failed: " + errMsg
		return state
	}
	summary := eval.Summary{Correct: result.Correct, Total: result.Total, Accuracy: result.Accuracy}
	state.Summary = summary.String()
	state.LastEvent = "results saved to " + result.CSVPath
	return state
}

// ensureRow grows the state rows to include the target index.
func ensureRow(state State, event runner.CaseEvent) State {
	if event.Index < 0 || event.Index < len(state.Rows) {
		return state
	}
	rows := make([]CaseRow, event.Index+1)
	copy(rows, state.Rows)
	for i := len(state.Rows); i < len(rows); i++ {
		rows[i] = CaseRow{Index: i, Status: runner.CaseQueued}
	}
	state.Rows = rows
	return state
}

// applyCaseEvent updates a row with the given event.
func applyCaseEvent(state State, event runner.CaseEvent) State {
	if event.Index < 0 || event.Index >= len(state.Rows) {
		return state
	}
	row := state.Rows[event.Index]
	if event.CaseID != "" {
		row.ID = event.CaseID
	}
	if event.Prompt != "" {
		row.Prompt = event.Prompt
	}
	if event.Expected != "" {
		row.Expected = event.Expected
	}
	row.Status = event.Type
	switch event.Type {
	case runner.CaseRunning:
		if row.StartedAt.IsZero() {
			row.StartedAt = event.EmittedAt
		}
	case runner.CaseGenerated, runner.CaseFailed:
		row.Actual = event.Actual
		row.ConversationID = event.ConversationID
		row.Error = event.Error
		// Reload failures arrive after generation and carry no duration.
		if event.Duration > 0 || row.FinishedAt.IsZero() {
			row.FinishedAt = event.EmittedAt
			row.Duration = event.Duration
		}
	case runner.CaseCorrect, runner.CaseIncorrect:
		if event.Actual != "" {
			row.Actual = event.Actual
		}
		row.ReloadedItems = event.ReloadedItems
		row.Reloaded = true
		if event.Error != "" {
			row.Error = event.Error
		}
	}
	state.Rows[event.Index] = row
	return state
}

// recount recomputes status counts for the current rows.
func recount(rows []CaseRow) StatusCounts {
	var counts StatusCounts
	for _, row := range rows {
		switch row.Status {
		case runner.CaseQueued:
			counts.Queued++
		case runner.CaseRunning:
			counts.Running++
		case runner.CaseGenerated:
			counts.Generated++
		case runner.CaseReloading:
			counts.Reloading++
		case runner.CaseCorrect:
			counts.Correct++
		case runner.CaseIncorrect:
			counts.Incorrect++
		}
		if row.Error != "" {
			counts.Failed++
		}
	}
	return counts
}

// formatLastEvent creates a short footer message for the event.
func formatLastEvent(event runner.CaseEvent) string {
	label := event.CaseID
	if label == "" {
		label = formatIndex(event.Index)
	}
	switch event.Type {
	case runner.CaseRunning:
		return label + " running"
	case runner.CaseGenerated:
		return fmt.Sprintf("%s routed to %s", label, event.Actual)
	case runner.CaseFailed:
		return fmt.Sprintf("%s failed: %s", label, event.Error)
	case runner.CaseCorrect:
		return label + " correct"
	case runner.CaseIncorrect:
		return fmt.Sprintf("%s incorrect (expected %s, got %s)", label, event.Expected, event.Actual)
	}
	return ""
}
