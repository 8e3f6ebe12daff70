package live

import (
	"time"

	"github.com/charmbracelet/lipgloss"
)

// renderHeader renders the run header line.
func renderHeader(state State, now time.Time, noColor bool) string {
	line := "Run " + state.RunID
	if state.Model != "" {
		line += " | Model: " + state.Model
	}
	if state.Commit != "" {
		line += " | Commit: " + state.Commit
	}
	if !state.StartedAt.IsZero() {
		line += " | Elapsed: " + now.Sub(state.StartedAt).Round(100*time.Millisecond).String()
	}
	return stylize(line, noColor, lipgloss.Color("33"))
}

// renderSummary renders the status counts line.
func renderSummary(state State, noColor bool) string {
	counts := state.Counts
	line := "Cases: " + fmtInt(state.Total) +
		" Queued: " + fmtInt(counts.Queued) +
		" Running: " + fmtInt(counts.Running) +
		" Generated: " + fmtInt(counts.Generated) +
		" Correct: " + fmtInt(counts.Correct) +
		" Incorrect: " + fmtInt(counts.Incorrect) +
		" Failed: " + fmtInt(counts.Failed)
	if state.Summary != "" {
		line += " | Accuracy: " + state.Summary
	}
	return stylize(line, noColor, lipgloss.Color("242"))
}

// renderPhaseLine renders the current phase and dataset.
func renderPhaseLine(state State, noColor bool) string {
	if state.Phase == "" {
		return ""
	}
	line := "Phase " + phaseLabel(state.Phase)
	if state.EvalType != "" {
		line += " | " + state.EvalType
	}
	if state.Dataset != "" {
		line += " | " + state.Dataset
	}
	return stylize(line, noColor, lipgloss.Color("240"))
}

// renderFooter renders the last event line.
func renderFooter(state State, noColor bool) string {
	if state.LastEvent == "" {
		return ""
	}
	return stylize("Last event: "+state.LastEvent, noColor, lipgloss.Color("244"))
}

func stylize(text string, noColor bool, color lipgloss.Color) string {
	if noColor {
		return text
	}
	return lipgloss.NewStyle().Foreground(color).Render(text)
}
