// Package metrics exposes evaluation and HTTP metrics in Prometheus format.
package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"agentevals/internal/history"
	"agentevals/internal/runner"
)

const namespace = "agentevals"

// Run statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Collector records evaluation runs and HTTP requests. It implements
// runner.RunObserver so it can be attached to any run.
type Collector struct {
	registry *prometheus.Registry

	runsTotal    *prometheus.CounterVec
	casesTotal   *prometheus.CounterVec
	accuracy     *prometheus.GaugeVec
	runDuration  *prometheus.HistogramVec
	httpRequests *prometheus.CounterVec

	mu      sync.Mutex
	started map[string]runStart

	logger *zap.Logger
}

type runStart struct {
	evalType string
	at       float64
}

// NewCollector registers all metrics on reg. A nil reg gets a fresh registry
// that also carries the Go runtime collector.
func NewCollector(reg *prometheus.Registry, logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	if reg == nil {
		reg = prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector())
	}
	factory := promauto.With(reg)
	c := &Collector{
		registry: reg,
		started:  map[string]runStart{},
		logger:   logger.With(zap.String("component", "metrics")),
	}

	c.runsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "eval_runs_total",
			Help:      "Total number of evaluation runs",
		},
		[]string{"kind", "status"},
	)

	c.casesTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "eval_cases_total",
			Help:      "Total number of scored evaluation cases",
		},
		[]string{"kind", "outcome"},
	)

	c.accuracy = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "eval_accuracy",
			Help:      "Accuracy of the most recent evaluation run",
		},
		[]string{"kind"},
	)

	c.runDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "eval_run_duration_seconds",
			Help:      "Evaluation run duration in seconds",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600},
		},
		[]string{"kind"},
	)

	c.httpRequests = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	return c
}

// Registry returns the registry backing the collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// RecordHTTPRequest counts one served request.
func (c *Collector) RecordHTTPRequest(method, route string, status int) {
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}

// OnRunStart remembers when a run began.
func (c *Collector) OnRunStart(meta history.RunMetadata, _ int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.started[meta.RunID] = runStart{evalType: meta.EvalType, at: nowSeconds()}
}

// OnPhase is a no-op.
func (c *Collector) OnPhase(string, runner.Phase) {}

// OnCaseEvent counts terminal case outcomes.
func (c *Collector) OnCaseEvent(event runner.CaseEvent) {
	switch event.Type {
	case runner.CaseCorrect, runner.CaseIncorrect, runner.CaseFailed:
		c.casesTotal.WithLabelValues(event.EvalType, string(event.Type)).Inc()
	}
}

// OnRunEnd records status, accuracy, and duration.
func (c *Collector) OnRunEnd(result runner.EvalResult, err error) {
	kind := result.EvalType
	c.mu.Lock()
	start, ok := c.startFor(result.RunID)
	c.mu.Unlock()
	if kind == "" {
		kind = start.evalType
	}

	if err != nil {
		c.runsTotal.WithLabelValues(kind, StatusError).Inc()
		c.logger.Debug("run failed", zap.String("kind", kind), zap.Error(err))
		return
	}
	c.runsTotal.WithLabelValues(kind, StatusSuccess).Inc()
	c.accuracy.WithLabelValues(kind).Set(result.Accuracy)
	if ok {
		c.runDuration.WithLabelValues(kind).Observe(nowSeconds() - start.at)
	}
}

// startFor pops the start entry for runID. A failed run carries no run id,
// so the only pending entry is used instead. Callers hold c.mu.
func (c *Collector) startFor(runID string) (runStart, bool) {
	if start, ok := c.started[runID]; ok {
		delete(c.started, runID)
		return start, true
	}
	if len(c.started) == 1 {
		for id, start := range c.started {
			delete(c.started, id)
			return start, true
		}
	}
	return runStart{}, false
}

var nowSeconds = func() float64 {
	return float64(time.Now().UnixNano()) / float64(time.Second)
}
