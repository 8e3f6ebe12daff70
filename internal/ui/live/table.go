package live

import (
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

// tableStyles returns table styles for the UI.
func tableStyles(noColor bool) table.Styles {
	styles := table.DefaultStyles()
	if noColor {
		return styles
	}
	styles.Header = styles.Header.Foreground(lipgloss.Color("252"))
	return styles
}

// defaultColumns returns the columns for an 80-column terminal.
func defaultColumns() []table.Column {
	return columnsForWidth(80)
}

// columnsForWidth gives the prompt column whatever width is left over.
func columnsForWidth(width int) []table.Column {
	fixed := []table.Column{
		{Title: "Case", Width: 5},
		{Title: "Expected", Width: 16},
		{Title: "Actual", Width: 16},
		{Title: "Status", Width: 11},
		{Title: "Items", Width: 5},
		{Title: "Time", Width: 7},
	}
	used := 0
	for _, col := range fixed {
		used += col.Width + 2
	}
	promptWidth := max(width-used-2, 12)
	columns := make([]table.Column, 0, len(fixed)+1)
	columns = append(columns, fixed[0], table.Column{Title: "Prompt", Width: promptWidth})
	return append(columns, fixed[1:]...)
}

// rowsForState converts UI state into table rows.
func rowsForState(state State, now time.Time, noColor bool) []table.Row {
	rows := make([]table.Row, 0, len(state.Rows))
	for _, row := range state.Rows {
		rows = append(rows, table.Row{
			formatCaseID(row),
			formatPrompt(row.Prompt),
			row.Expected,
			row.Actual,
			formatStatus(row, noColor),
			formatReloaded(row),
			formatRowDuration(row, now),
		})
	}
	return rows
}
