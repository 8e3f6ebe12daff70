package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"agentevals/internal/dataset"
)

// runExamples builds the handler for the examples command.
func runExamples(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}

		flags := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		flags.SetOutput(stderr)
		configPath := flags.String("config", "", "Path to config file (default: search for .agentevals/config.yml)")
		evalType := flags.String("eval-type", "routing", "Dataset to show: routing|tool")
		asJSON := flags.Bool("json", false, "Print cases as JSON")
		if code, ok := parseFlags(cmd, flags, args, stdout, stderr); !ok {
			return code
		}
		kind, err := dataset.ParseKind(*evalType)
		if err != nil {
			fmt.Fprintf(stderr, "invalid arguments: %v\n", err)
			return ExitUsage
		}

		application, _, code := startApp(context.Background(), *configPath, "", stderr)
		if application == nil {
			return code
		}
		defer application.Close()

		cases, err := application.Examples(kind)
		if err != nil {
			fmt.Fprintf(stderr, "Examples failed: %v\n", err)
			return ExitError
		}
		if *asJSON {
			return writeJSON(stdout, stderr, cases)
		}
		t := table.New().
			Border(lipgloss.NormalBorder()).
			Headers("CASE", "EXPECTED", "PROMPT")
		for _, c := range cases {
			t.Row(c.ID, c.Expected, strings.Join(strings.Fields(c.Prompt), " "))
		}
		fmt.Fprintln(stdout, t.String())
		return ExitOK
	}
}
