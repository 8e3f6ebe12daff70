package cli

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"agentevals/internal/duckdb"
	"agentevals/internal/runner"
)

// runStats builds the handler for the stats command.
func runStats(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}

		flags := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		flags.SetOutput(stderr)
		configPath := flags.String("config", "", "Path to config file (default: search for .agentevals/config.yml)")
		evalType := flags.String("eval-type", runner.EvalHandoff, "Evaluation to summarize: handoff|tool")
		asJSON := flags.Bool("json", false, "Print rows as JSON")
		if code, ok := parseFlags(cmd, flags, args, stdout, stderr); !ok {
			return code
		}
		if *evalType != runner.EvalHandoff && *evalType != runner.EvalTool {
			fmt.Fprintf(stderr, "invalid arguments: unknown eval type %q\n", *evalType)
			return ExitUsage
		}

		ctx := context.Background()
		application, _, code := startApp(ctx, *configPath, "", stderr)
		if application == nil {
			return code
		}
		defer application.Close()

		rows, err := application.CaseAccuracies(ctx, *evalType)
		if err != nil {
			fmt.Fprintf(stderr, "Stats failed: %v\n", err)
			return ExitError
		}
		if *asJSON {
			if rows == nil {
				rows = []duckdb.CaseAccuracy{}
			}
			return writeJSON(stdout, stderr, rows)
		}
		if len(rows) == 0 {
			fmt.Fprintf(stdout, "No %s runs in the analytics database.\n", *evalType)
			return ExitOK
		}
		t := table.New().
			Border(lipgloss.NormalBorder()).
			Headers("CASE", "MODEL", "RUNS", "CORRECT", "ACCURACY")
		for _, row := range rows {
			t.Row(row.CaseID, row.Model, fmt.Sprint(row.Runs), fmt.Sprint(row.Correct), fmt.Sprintf("%.2f%%", row.Accuracy*100))
		}
		fmt.Fprintln(stdout, t.String())
		return ExitOK
	}
}
