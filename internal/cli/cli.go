package cli

import (
	"fmt"
	"io"

	"agentevals/internal/runner"
)

const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

// Command is one CLI subcommand.
type Command struct {
	Name    string
	Summary string
	Usage   []string
	Run     func(args []string, stdout, stderr io.Writer) int
}

// Run dispatches args to a subcommand and returns the process exit code.
func Run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		printUsage(stdout)
		return ExitUsage
	}
	if isHelpArg(args[0]) {
		printUsage(stdout)
		return ExitOK
	}

	cmd := findCommand(args[0])
	if cmd == nil {
		fmt.Fprintf(stderr, "Unknown command: %s\n\n", args[0])
		printUsage(stderr)
		return ExitUsage
	}

	return cmd.Run(args[1:], stdout, stderr)
}

func findCommand(name string) *Command {
	for _, cmd := range commands {
		if cmd.Name == name {
			return cmd
		}
	}
	return nil
}

func isHelpArg(arg string) bool {
	switch arg {
	case "-h", "--help", "help":
		return true
	default:
		return false
	}
}

func wantsHelp(args []string) bool {
	for _, arg := range args {
		switch arg {
		case "-h", "--help":
			return true
		}
	}
	return false
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  agentevals <command> [options]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	for _, cmd := range commands {
		fmt.Fprintf(w, "  %-13s %s\n", cmd.Name, cmd.Summary)
	}
	fmt.Fprintln(w, "\nUse \"agentevals <command> --help\" for more information.")
}

func printCommandUsage(cmd *Command, w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	for _, line := range cmd.Usage {
		fmt.Fprintf(w, "  %s\n", line)
	}
	if cmd.Summary != "" {
		fmt.Fprintf(w, "\n%s\n", cmd.Summary)
	}
}

func command(name, summary string, usage []string, runner func(cmd *Command) func(args []string, stdout, stderr io.Writer) int) *Command {
	cmd := &Command{
		Name:    name,
		Summary: summary,
		Usage:   usage,
	}
	cmd.Run = runner(cmd)
	return cmd
}

var commands = []*Command{
	command("eval-handoff", "Evaluate orchestrator routing accuracy", []string{
		"agentevals eval-handoff [--model <name>] [--dataset <csv>] [--config <path>]",
		"agentevals eval-handoff --verbose [--no-color] [--continue-on-error]",
		"agentevals eval-handoff --ui auto|live|plain",
	}, runEval(runner.EvalHandoff)),
	command("eval-tool", "Evaluate specialist tool-call accuracy", []string{
		"agentevals eval-tool [--model <name>] [--dataset <csv>] [--config <path>]",
		"agentevals eval-tool --verbose [--no-color] [--continue-on-error]",
		"agentevals eval-tool --ui auto|live|plain",
	}, runEval(runner.EvalTool)),
	command("history", "List recorded evaluation runs", []string{
		"agentevals history [--config <path>] [--limit <n>] [--json]",
	}, runHistory),
	command("stats", "Show per-case accuracy from the analytics database", []string{
		"agentevals stats [--eval-type handoff|tool] [--config <path>] [--json]",
	}, runStats),
	command("examples", "Show the cases of an evaluation dataset", []string{
		"agentevals examples [--eval-type routing|tool] [--config <path>] [--json]",
	}, runExamples),
	command("serve", "Serve the evaluation HTTP API", []string{
		"agentevals serve [--addr <host:port>] [--config <path>]",
	}, runServe),
	command("validate", "Validate .agentevals/config.yml", []string{
		"agentevals validate [--config <path>]",
	}, runValidate),
	command("init", "Scaffold config and starter datasets", []string{
		"agentevals init [--config <path>] [--yes]",
	}, runInit),
}
