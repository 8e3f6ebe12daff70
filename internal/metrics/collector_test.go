package metrics

import (
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agentevals/internal/history"
	"agentevals/internal/runner"
)

func TestCollectorRecordsSuccessfulRun(t *testing.T) {
	clock := 100.0
	restore := nowSeconds
	nowSeconds = func() float64 { return clock }
	t.Cleanup(func() { nowSeconds = restore })

	c := NewCollector(nil, nil)
	c.OnRunStart(history.RunMetadata{RunID: "run-1", EvalType: runner.EvalHandoff}, 2)
	c.OnPhase(runner.EvalHandoff, runner.PhaseGenerate)
	c.OnCaseEvent(runner.CaseEvent{EvalType: runner.EvalHandoff, Type: runner.CaseGenerated})
	c.OnCaseEvent(runner.CaseEvent{EvalType: runner.EvalHandoff, Type: runner.CaseCorrect})
	c.OnCaseEvent(runner.CaseEvent{EvalType: runner.EvalHandoff, Type: runner.CaseIncorrect})
	clock = 112.5
	c.OnRunEnd(runner.EvalResult{RunID: "run-1", EvalType: runner.EvalHandoff, Accuracy: 0.5}, nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.runsTotal.WithLabelValues("handoff", StatusSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.casesTotal.WithLabelValues("handoff", "correct")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.casesTotal.WithLabelValues("handoff", "incorrect")))
	assert.Equal(t, 0.5, testutil.ToFloat64(c.accuracy.WithLabelValues("handoff")))
	assert.Equal(t, 1, testutil.CollectAndCount(c.runDuration))
	assert.Empty(t, c.started)
}

func TestCollectorRecordsFailedRun(t *testing.T) {
	c := NewCollector(nil, nil)
	c.OnRunStart(history.RunMetadata{RunID: "run-2", EvalType: runner.EvalTool}, 1)
	c.OnCaseEvent(runner.CaseEvent{EvalType: runner.EvalTool, Type: runner.CaseFailed})
	c.OnRunEnd(runner.EvalResult{}, errors.New("boom"))

	assert.Equal(t, 1.0, testutil.ToFloat64(c.runsTotal.WithLabelValues("tool", StatusError)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.casesTotal.WithLabelValues("tool", "failed")))
	assert.Equal(t, 0, testutil.CollectAndCount(c.accuracy))
}

func TestCollectorHTTPRequestsExposition(t *testing.T) {
	c := NewCollector(nil, nil)
	c.RecordHTTPRequest("GET", "/api/history", 200)
	c.RecordHTTPRequest("GET", "/api/history", 200)

	expected := `
# HELP agentevals_http_requests_total Total number of HTTP requests
# TYPE agentevals_http_requests_total counter
agentevals_http_requests_total{method="GET",route="/api/history",status="200"} 2
`
	err := testutil.GatherAndCompare(c.Registry(), strings.NewReader(expected), "agentevals_http_requests_total")
	require.NoError(t, err)
}
