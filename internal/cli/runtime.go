package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"agentevals/internal/app"
	"agentevals/internal/config"
	"agentevals/internal/logging"
)

// openApp is a test seam for building the application.
var openApp = app.New

// appOptions lets tests inject providers and clocks into openApp.
var appOptions = func() []app.Option { return nil }

// newLogger builds the process logger, applying a --log-level override.
func newLogger(cfg config.Config, levelOverride string, stderr io.Writer) (*zap.Logger, error) {
	logCfg := cfg.Log
	if strings.TrimSpace(levelOverride) != "" {
		logCfg.Level = levelOverride
	}
	return logging.New(logCfg, stderr)
}

// parseFlags parses args and reports the exit code to return when parsing
// did not succeed.
func parseFlags(cmd *Command, flags *flag.FlagSet, args []string, stdout, stderr io.Writer) (int, bool) {
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			printCommandUsage(cmd, stdout)
			return ExitOK, false
		}
		fmt.Fprintf(stderr, "invalid arguments: %v\n", err)
		printCommandUsage(cmd, stderr)
		return ExitUsage, false
	}
	if flags.NArg() > 0 {
		fmt.Fprintf(stderr, "unexpected arguments: %s\n", strings.Join(flags.Args(), " "))
		printCommandUsage(cmd, stderr)
		return ExitUsage, false
	}
	return ExitOK, true
}

// startApp loads config, logging, and the application shared by most commands.
func startApp(ctx context.Context, configPath, logLevel string, stderr io.Writer, extra ...app.Option) (*app.App, *zap.Logger, int) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Config error:\n%v\n", err)
		return nil, nil, ExitError
	}
	logger, err := newLogger(cfg, logLevel, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "invalid arguments: %v\n", err)
		return nil, nil, ExitUsage
	}
	opts := append(appOptions(), extra...)
	application, err := openApp(ctx, cfg, logger, opts...)
	if err != nil {
		fmt.Fprintf(stderr, "Startup failed: %v\n", err)
		_ = logger.Sync()
		return nil, nil, ExitError
	}
	return application, logger, ExitOK
}
