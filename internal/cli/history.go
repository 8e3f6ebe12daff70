package cli

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"agentevals/internal/history"
)

// runHistory builds the handler for the history command.
func runHistory(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}

		flags := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		flags.SetOutput(stderr)
		configPath := flags.String("config", "", "Path to config file (default: search for .agentevals/config.yml)")
		limit := flags.Int("limit", 0, "Show at most this many runs (0 shows all)")
		asJSON := flags.Bool("json", false, "Print records as JSON")
		if code, ok := parseFlags(cmd, flags, args, stdout, stderr); !ok {
			return code
		}
		if *limit < 0 {
			fmt.Fprintln(stderr, "invalid arguments: --limit must be >= 0")
			return ExitUsage
		}

		application, _, code := startApp(context.Background(), *configPath, "", stderr)
		if application == nil {
			return code
		}
		defer application.Close()

		records, err := application.History()
		if err != nil {
			fmt.Fprintf(stderr, "History failed: %v\n", err)
			return ExitError
		}
		if *limit > 0 && len(records) > *limit {
			records = records[:*limit]
		}
		if *asJSON {
			if records == nil {
				records = []history.Record{}
			}
			return writeJSON(stdout, stderr, records)
		}
		if len(records) == 0 {
			fmt.Fprintln(stdout, "No runs recorded yet.")
			return ExitOK
		}
		fmt.Fprintln(stdout, historyTable(records))
		return ExitOK
	}
}

// historyTable renders records newest first.
func historyTable(records []history.Record) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("RUN", "TYPE", "MODEL", "ACCURACY", "COMMIT", "DATASET")
	for _, record := range records {
		t.Row(
			record.RunID,
			record.EvalType,
			record.Model,
			fmt.Sprintf("%.2f%%", record.Accuracy*100),
			shortCommit(record.GitCommit),
			record.Dataset,
		)
	}
	return t.String()
}

func shortCommit(commit string) string {
	if len(commit) > 10 {
		return commit[:10]
	}
	return commit
}

// writeJSON prints an indented JSON document.
func writeJSON(stdout, stderr io.Writer, value any) int {
	encoder := json.NewEncoder(stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(value); err != nil {
		fmt.Fprintf(stderr, "encode output: %v\n", err)
		return ExitError
	}
	return ExitOK
}
