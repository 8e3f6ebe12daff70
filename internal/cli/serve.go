package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"agentevals/internal/app"
	"agentevals/internal/metrics"
	"agentevals/internal/server"
)

// serveAPI is a test seam for running the HTTP server.
var serveAPI = server.Serve

// runServe builds the handler for the serve command.
func runServe(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}

		fs := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		fs.SetOutput(stderr)
		configPath := fs.String("config", "", "Path to config file (default: search for .agentevals/config.yml)")
		addr := fs.String("addr", "", "Address to listen on (default: server.addr from config)")
		logLevel := fs.String("log-level", "", "Log level override: debug|info|warn|error")
		if code, ok := parseFlags(cmd, fs, args, stdout, stderr); !ok {
			return code
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		cfg, err := loadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(stderr, "Config error:\n%v\n", err)
			return ExitError
		}
		listen := strings.TrimSpace(*addr)
		if listen == "" {
			listen = cfg.Server.Addr
		}
		if listen == "" {
			fmt.Fprintln(stderr, "Missing --addr")
			return ExitUsage
		}

		logger, err := newLogger(cfg, *logLevel, stderr)
		if err != nil {
			fmt.Fprintf(stderr, "invalid arguments: %v\n", err)
			return ExitUsage
		}
		defer func() { _ = logger.Sync() }()

		collector := metrics.NewCollector(nil, logger)
		opts := append(appOptions(), app.WithMetrics(collector))
		application, err := openApp(ctx, cfg, logger, opts...)
		if err != nil {
			fmt.Fprintf(stderr, "Startup failed: %v\n", err)
			return ExitError
		}
		defer application.Close()

		fmt.Fprintf(stdout, "Serving API at http://%s\n", listen)
		err = serveAPI(ctx, server.Config{
			Addr:    listen,
			Service: application,
			Metrics: collector,
			Logger:  logger,
		})
		if err != nil {
			fmt.Fprintf(stderr, "Server error: %v\n", err)
			return ExitError
		}
		return ExitOK
	}
}
