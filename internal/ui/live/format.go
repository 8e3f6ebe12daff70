package live

import (
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"agentevals/internal/runner"
)

func formatCaseID(row CaseRow) string {
	if row.ID != "" {
		return row.ID
	}
	return formatIndex(row.Index)
}

// formatIndex formats a case index as a fallback id.
func formatIndex(index int) string {
	return "#" + fmtInt(index+1)
}

func fmtInt(value int) string {
	return strconv.Itoa(value)
}

// formatPrompt collapses whitespace and truncates the prompt for display.
func formatPrompt(text string) string {
	normalized := strings.Join(strings.Fields(text), " ")
	const limit = 60
	if len(normalized) <= limit {
		return normalized
	}
	return normalized[:limit-3] + "..."
}

// formatStatus renders the status cell, colored when enabled.
func formatStatus(row CaseRow, noColor bool) string {
	label := statusLabel(row.Status)
	if row.Error != "" && row.Status != runner.CaseFailed {
		label += " (error)"
	}
	if noColor {
		return label
	}
	return statusStyle(row.Status).Render(label)
}

func statusLabel(status runner.CaseEventType) string {
	switch status {
	case runner.CaseReloading:
		return "reloading"
	case "":
		return "queued"
	default:
		return string(status)
	}
}

// formatReloaded shows the reloaded session size once a case is scored.
func formatReloaded(row CaseRow) string {
	if !row.Reloaded {
		return ""
	}
	return fmtInt(row.ReloadedItems)
}

// formatRowDuration returns elapsed or total generation time for a row.
func formatRowDuration(row CaseRow, now time.Time) string {
	if row.Duration > 0 {
		return formatDuration(row.Duration)
	}
	if !row.StartedAt.IsZero() && row.FinishedAt.IsZero() {
		return formatDuration(now.Sub(row.StartedAt))
	}
	return ""
}

func formatDuration(duration time.Duration) string {
	if duration <= 0 {
		return "0s"
	}
	return duration.Round(100 * time.Millisecond).String()
}

func phaseLabel(phase runner.Phase) string {
	switch phase {
	case runner.PhaseGenerate:
		return "1/2 generate"
	case runner.PhaseReloadScore:
		return "2/2 reload and score"
	default:
		return string(phase)
	}
}

// statusStyle selects a style for a given status.
func statusStyle(status runner.CaseEventType) lipgloss.Style {
	color := lipgloss.Color("244")
	switch status {
	case runner.CaseCorrect:
		color = lipgloss.Color("42")
	case runner.CaseIncorrect:
		color = lipgloss.Color("220")
	case runner.CaseFailed:
		color = lipgloss.Color("196")
	case runner.CaseRunning:
		color = lipgloss.Color("33")
	case runner.CaseReloading:
		color = lipgloss.Color("201")
	case runner.CaseGenerated:
		color = lipgloss.Color("39")
	case runner.CaseQueued:
		color = lipgloss.Color("246")
	}
	return lipgloss.NewStyle().Foreground(color)
}
