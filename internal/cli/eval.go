package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"agentevals/internal/app"
	"agentevals/internal/eval"
	"agentevals/internal/runner"
	"agentevals/internal/ui/live"
)

// startLive is a test seam for the live UI controller.
var startLive = live.StartController

// runEval builds the handler for eval-handoff and eval-tool.
func runEval(evalType string) func(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
		return func(args []string, stdout, stderr io.Writer) int {
			if wantsHelp(args) {
				printCommandUsage(cmd, stdout)
				return ExitOK
			}

			flags := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
			flags.SetOutput(stderr)
			configPath := flags.String("config", "", "Path to config file (default: search for .agentevals/config.yml)")
			model := flags.String("model", "", "Model name (default: config model)")
			datasetPath := flags.String("dataset", "", "CSV dataset overriding the configured one")
			verbose := flags.Bool("verbose", false, "Print per-case progress")
			noColor := flags.Bool("no-color", false, "Disable colored output")
			uiMode := flags.String("ui", "auto", "Console UI mode: auto|live|plain")
			logLevel := flags.String("log-level", "", "Log level override: debug|info|warn|error")
			continueOnError := flags.Bool("continue-on-error", false, "Record failed cases as ERROR instead of aborting")
			if code, ok := parseFlags(cmd, flags, args, stdout, stderr); !ok {
				return code
			}

			decision, err := resolveUIMode(*uiMode, *verbose, stdout)
			if err != nil {
				fmt.Fprintf(stderr, "invalid arguments: %v\n", err)
				printCommandUsage(cmd, stderr)
				return ExitUsage
			}
			if decision.warning != "" {
				fmt.Fprintln(stderr, decision.warning)
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			application, logger, code := startApp(ctx, *configPath, *logLevel, stderr)
			if application == nil {
				return code
			}
			defer func() {
				if err := application.Close(); err != nil {
					logger.Warn("close app", zap.Error(err))
				}
				_ = logger.Sync()
			}()

			req := app.RunRequest{
				Model:           *model,
				DatasetPath:     *datasetPath,
				Verbose:         *verbose,
				VerboseWriter:   stdout,
				NoColor:         *noColor,
				ContinueOnError: *continueOnError,
			}
			var controller *live.Controller
			if decision.useLive {
				controller = startLive(stdout, live.Options{NoColor: *noColor})
				req.Observer = controller
			}

			result, err := application.Run(ctx, evalType, req)
			if controller != nil {
				controller.Close()
				controller.Wait()
			}
			if err != nil {
				fmt.Fprintf(stderr, "Evaluation failed: %v\n", err)
				return ExitError
			}
			printEvalResult(stdout, result, *verbose)
			return ExitOK
		}
	}
}

// printEvalResult writes the run summary. Verbose runs already printed the
// accuracy and results path.
func printEvalResult(w io.Writer, result runner.EvalResult, verbose bool) {
	fmt.Fprintf(w, "Run %s completed (%s)\n", result.RunID, result.Model)
	if verbose {
		return
	}
	summary := eval.Summary{Correct: result.Correct, Total: result.Total, Accuracy: result.Accuracy}
	fmt.Fprintf(w, "Accuracy: %s\n", summary.String())
	fmt.Fprintf(w, "Results: %s\n", result.CSVPath)
}
