// Package app wires configuration into evaluation runs for the CLI and the
// HTTP server.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"agentevals/internal/agent"
	"agentevals/internal/config"
	"agentevals/internal/dataset"
	"agentevals/internal/duckdb"
	"agentevals/internal/history"
	"agentevals/internal/metrics"
	"agentevals/internal/runner"
	"agentevals/internal/session"
	"agentevals/internal/vcs"
)

// ErrRunInProgress is returned when a second run starts while one is active.
var ErrRunInProgress = errors.New("an evaluation is already running")

// ErrAnalyticsDisabled is returned by analytics queries when duckdb.path is unset.
var ErrAnalyticsDisabled = errors.New("analytics database not configured (set duckdb.path)")

// RunRequest carries per-run overrides.
type RunRequest struct {
	Model         string
	DatasetPath   string
	Verbose       bool
	VerboseWriter io.Writer
	NoColor       bool
	Observer      runner.RunObserver
	// ContinueOnError is OR-ed with the config setting.
	ContinueOnError bool
}

// App owns the long-lived collaborators of a process.
type App struct {
	cfg      config.Config
	logger   *zap.Logger
	sessions session.Store
	history  *history.Store
	sink     *duckdb.Sink
	metrics  *metrics.Collector

	providerFactory runner.ProviderFactory
	now             func() time.Time
	commit          func(context.Context) string

	// runMu keeps history appends single-writer.
	runMu sync.Mutex
}

// Option customizes an App.
type Option func(*App)

// WithProviderFactory replaces the environment-driven provider factory.
func WithProviderFactory(factory runner.ProviderFactory) Option {
	return func(a *App) { a.providerFactory = factory }
}

// WithSessions replaces the configured session store.
func WithSessions(store session.Store) Option {
	return func(a *App) { a.sessions = store }
}

// WithMetrics attaches a metrics collector to every run.
func WithMetrics(collector *metrics.Collector) Option {
	return func(a *App) { a.metrics = collector }
}

// WithClock overrides the run clock.
func WithClock(now func() time.Time) Option {
	return func(a *App) { a.now = now }
}

// WithCommit overrides git commit discovery.
func WithCommit(commit func(context.Context) string) Option {
	return func(a *App) { a.commit = commit }
}

// New builds an App from a normalized config.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger, opts ...Option) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &App{
		cfg:     cfg,
		logger:  logger.With(zap.String("component", "app")),
		history: history.NewStore(cfg.HistoryPath),
		now:     time.Now,
		commit:  vcs.NewClient("", nil).CommitOrUnknown,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.providerFactory == nil {
		a.providerFactory = a.envProvider
	}
	if a.sessions == nil {
		store, err := session.New(cfg.Session)
		if err != nil {
			return nil, fmt.Errorf("session store: %w", err)
		}
		a.sessions = store
	}
	if strings.TrimSpace(cfg.DuckDB.Path) != "" {
		sink, err := duckdb.OpenSink(ctx, cfg.DuckDB.Path)
		if err != nil {
			_ = a.sessions.Close()
			return nil, err
		}
		a.sink = sink
	}
	return a, nil
}

func (a *App) envProvider(model string) (agent.Provider, error) {
	return agent.ProviderFromEnv(agent.ProviderSettings{
		Name:      a.cfg.Provider.Name,
		Model:     model,
		BaseURL:   a.cfg.Provider.BaseURL,
		APIKeyEnv: a.cfg.Provider.APIKeyEnv,
	}, nil)
}

// Config returns the config the App was built from.
func (a *App) Config() config.Config {
	return a.cfg
}

// Metrics returns the attached collector, or nil.
func (a *App) Metrics() *metrics.Collector {
	return a.metrics
}

// Close releases the session store and analytics database.
func (a *App) Close() error {
	var errs []error
	if a.sessions != nil {
		errs = append(errs, a.sessions.Close())
	}
	if a.sink != nil {
		errs = append(errs, a.sink.Close())
	}
	return errors.Join(errs...)
}

// RunHandoffEval runs the routing evaluation.
func (a *App) RunHandoffEval(ctx context.Context, req RunRequest) (runner.EvalResult, error) {
	return a.Run(ctx, runner.EvalHandoff, req)
}

// RunToolEval runs the tool-call evaluation.
func (a *App) RunToolEval(ctx context.Context, req RunRequest) (runner.EvalResult, error) {
	return a.Run(ctx, runner.EvalTool, req)
}

// Run executes one evaluation. Runs never overlap; a concurrent call fails
// fast with ErrRunInProgress.
func (a *App) Run(ctx context.Context, evalType string, req RunRequest) (runner.EvalResult, error) {
	if !a.runMu.TryLock() {
		return runner.EvalResult{}, ErrRunInProgress
	}
	defer a.runMu.Unlock()

	deps := runner.Dependencies{
		ProviderFactory: a.providerFactory,
		Sessions:        a.sessions,
		History:         a.history,
		Commit:          a.commit,
		Now:             a.now,
		Logger:          a.logger,
	}
	if a.sink != nil {
		deps.Sink = a.sink
	}
	opts := a.options(evalType, req)

	switch evalType {
	case runner.EvalHandoff:
		return runner.RunHandoffEval(ctx, deps, opts)
	case runner.EvalTool:
		return runner.RunToolEval(ctx, deps, opts)
	default:
		return runner.EvalResult{}, fmt.Errorf("unknown eval type %q", evalType)
	}
}

func (a *App) options(evalType string, req RunRequest) runner.Options {
	model := strings.TrimSpace(req.Model)
	if model == "" {
		model = a.cfg.Model
	}
	datasetPath := req.DatasetPath
	if datasetPath == "" {
		if evalType == runner.EvalTool {
			datasetPath = a.cfg.Datasets.Tool
		} else {
			datasetPath = a.cfg.Datasets.Routing
		}
	}
	observers := runner.MultiObserver{}
	if a.metrics != nil {
		observers = append(observers, a.metrics)
	}
	if req.Observer != nil {
		observers = append(observers, req.Observer)
	}
	return runner.Options{
		Model:           model,
		DatasetPath:     datasetPath,
		ResultsDir:      a.cfg.ResultsDir,
		MaxTurns:        a.cfg.MaxTurns,
		ContinueOnError: a.cfg.ContinueOnError || req.ContinueOnError,
		Verbose:         req.Verbose,
		VerboseWriter:   req.VerboseWriter,
		NoColor:         req.NoColor,
		Observer:        observers,
	}
}

// History returns every recorded run, newest first.
func (a *App) History() ([]history.Record, error) {
	records, err := a.history.Load()
	if err != nil {
		return nil, err
	}
	return history.SortNewestFirst(records), nil
}

// CaseAccuracies reports per-case accuracy across every recorded run of evalType.
func (a *App) CaseAccuracies(ctx context.Context, evalType string) ([]duckdb.CaseAccuracy, error) {
	if a.sink == nil {
		return nil, ErrAnalyticsDisabled
	}
	return duckdb.CaseAccuracies(ctx, a.sink.DB(), evalType)
}

// Examples returns the cases of the dataset for kind.
func (a *App) Examples(kind dataset.Kind) ([]dataset.Case, error) {
	path := a.cfg.Datasets.Routing
	if kind == dataset.KindTool {
		path = a.cfg.Datasets.Tool
	}
	ds, err := dataset.Load(path, kind)
	if err != nil {
		return nil, err
	}
	return ds.Cases, nil
}
