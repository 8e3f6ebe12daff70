package runner

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"agentevals/internal/agent"
	"agentevals/internal/agent/agenttest"
	"agentevals/internal/eval"
	"agentevals/internal/history"
	"agentevals/internal/session"
	"agentevals/internal/testutil"
)

// bankModel is a fake model that routes or calls tools by prompt text.
type bankModel struct {
	routes map[string]string
	tools  map[string][2]string
}

func (m bankModel) provider() agent.Provider {
	return agenttest.Func(func(_ context.Context, prompt agent.Prompt) ([]agent.StreamEvent, error) {
		if agenttest.HasToolOutput(prompt) {
			return []agent.StreamEvent{agenttest.Message("done")}, nil
		}
		text := agenttest.LastUserText(prompt)
		if hasTool(prompt, agent.HandoffToolName("Operational")) {
			target, ok := m.routes[text]
			if !ok {
				return []agent.StreamEvent{agenttest.Message("I can answer that myself.")}, nil
			}
			return []agent.StreamEvent{agenttest.Handoff("h_"+target, target)}, nil
		}
		call, ok := m.tools[text]
		if !ok {
			return []agent.StreamEvent{agenttest.Message("Which account?")}, nil
		}
		return []agent.StreamEvent{agenttest.Call("c_"+call[0], call[0], call[1])}, nil
	})
}

func hasTool(prompt agent.Prompt, name string) bool {
	for _, def := range prompt.Tools {
		if def.Name == name {
			return true
		}
	}
	return false
}

type recordingObserver struct {
	mu     sync.Mutex
	phases []Phase
	events []CaseEvent
	starts int
	total  int
	ends   int
	endErr error
}

func (r *recordingObserver) OnRunStart(_ history.RunMetadata, total int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.starts++
	r.total = total
}

func (r *recordingObserver) OnPhase(_ string, phase Phase) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.phases = append(r.phases, phase)
}

func (r *recordingObserver) OnCaseEvent(event CaseEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordingObserver) OnRunEnd(_ EvalResult, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ends++
	r.endErr = err
}

func (r *recordingObserver) eventTypes(caseID string) []CaseEventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	var types []CaseEventType
	for _, event := range r.events {
		if event.CaseID == caseID {
			types = append(types, event.Type)
		}
	}
	return types
}

type recordingSink struct {
	records []history.Record
	cases   [][]eval.CaseResult
	err     error
}

func (s *recordingSink) RecordRun(_ context.Context, record history.Record, cases []eval.CaseResult) error {
	s.records = append(s.records, record)
	s.cases = append(s.cases, cases)
	return s.err
}

type fixture struct {
	dir      string
	deps     Dependencies
	sessions session.Store
}

func newFixture(t *testing.T, provider agent.Provider) fixture {
	t.Helper()
	dir := t.TempDir()
	sessions := session.NewMemoryStore()
	clock := testutil.NewFakeClock(time.Date(2025, 3, 4, 10, 30, 0, 0, time.UTC))
	return fixture{
		dir:      dir,
		sessions: sessions,
		deps: Dependencies{
			ProviderFactory: func(string) (agent.Provider, error) { return provider, nil },
			Sessions:        sessions,
			History:         history.NewStore(filepath.Join(dir, "eval_history.json")),
			Commit:          func(context.Context) string { return "abc123" },
			Now:             clock.Now,
		},
	}
}

func writeDataset(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write dataset: %v", err)
	}
	return path
}

func TestRunHandoffEvalSingleCase(t *testing.T) {
	ctx := testutil.Context(t, 2*time.Second)
	model := bankModel{routes: map[string]string{"Transfer $50": "Operational"}}
	f := newFixture(t, model.provider())
	path := writeDataset(t, f.dir, "routing.csv", "case_id,prompt,expected_agent\nr1,Transfer $50,Operational\n")
	observer := &recordingObserver{}

	result, err := RunHandoffEval(ctx, f.deps, Options{DatasetPath: path, ResultsDir: filepath.Join(f.dir, "results"), Observer: observer})
	if err != nil {
		t.Fatalf("run handoff eval: %v", err)
	}
	if result.Correct != 1 || result.Total != 1 || result.Accuracy != 1.0 {
		t.Fatalf("unexpected aggregate: %+v", result)
	}
	want := eval.ScoredResult{Message: "Transfer $50", Target: "Operational", Output: "Operational", Correct: true}
	if len(result.Results) != 1 || result.Results[0] != want {
		t.Fatalf("unexpected results: %+v", result.Results)
	}
	if result.Model != DefaultModel || result.EvalType != EvalHandoff {
		t.Fatalf("unexpected identity: %+v", result)
	}

	if !strings.HasPrefix(filepath.Base(result.CSVPath), "handoff_evals_") {
		t.Fatalf("unexpected csv path %s", result.CSVPath)
	}
	if _, err := os.Stat(result.CSVPath); err != nil {
		t.Fatalf("expected csv file: %v", err)
	}

	records, err := f.deps.History.Load()
	if err != nil {
		t.Fatalf("load history: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected one history record, got %d", len(records))
	}
	record := records[0]
	if record.RunID != result.RunID || record.GitCommit != "abc123" || record.Dataset != path || record.CSVPath != result.CSVPath {
		t.Fatalf("unexpected history record: %+v", record)
	}

	wantPhases := []Phase{PhaseInit, PhaseGenerate, PhaseReloadScore, PhasePersist, PhaseDone}
	if len(observer.phases) != len(wantPhases) {
		t.Fatalf("unexpected phases: %v", observer.phases)
	}
	for i, phase := range wantPhases {
		if observer.phases[i] != phase {
			t.Fatalf("phase %d: expected %s got %s", i, phase, observer.phases[i])
		}
	}
	wantEvents := []CaseEventType{CaseQueued, CaseRunning, CaseGenerated, CaseReloading, CaseCorrect}
	got := observer.eventTypes("r1")
	if len(got) != len(wantEvents) {
		t.Fatalf("unexpected events: %v", got)
	}
	for i := range wantEvents {
		if got[i] != wantEvents[i] {
			t.Fatalf("event %d: expected %s got %s", i, wantEvents[i], got[i])
		}
	}
	if observer.starts != 1 || observer.total != 1 || observer.ends != 1 || observer.endErr != nil {
		t.Fatalf("unexpected lifecycle: %+v", observer)
	}
}

func TestRunHandoffEvalSessionsSurviveReload(t *testing.T) {
	ctx := testutil.Context(t, 2*time.Second)
	model := bankModel{routes: map[string]string{
		"Transfer $50":        "Operational",
		"What are your hours": "Informational",
	}}
	f := newFixture(t, model.provider())
	path := writeDataset(t, f.dir, "routing.csv", "case_id,prompt,expected_agent\nr1,Transfer $50,Operational\nr2,What are your hours,Informational\nr3,Help me budget,FinancialCoach\n")

	result, err := RunHandoffEval(ctx, f.deps, Options{DatasetPath: path, ResultsDir: f.dir})
	if err != nil {
		t.Fatalf("run handoff eval: %v", err)
	}
	if result.Correct != 2 || result.Total != 3 {
		t.Fatalf("unexpected aggregate: %d/%d", result.Correct, result.Total)
	}
	if result.Results[2].Output != "Orchestrator" || result.Results[2].Correct {
		t.Fatalf("expected unrouted case to report the orchestrator, got %+v", result.Results[2])
	}
	for i, c := range result.Cases {
		if c.ConversationID == "" {
			t.Fatalf("case %d: missing conversation id", i)
		}
		if c.ReloadedItems == 0 {
			t.Fatalf("case %d: expected reloaded items", i)
		}
		sess, err := f.sessions.Open(ctx, c.ConversationID)
		if err != nil {
			t.Fatalf("open session: %v", err)
		}
		items, err := sess.GetItems(ctx)
		if err != nil {
			t.Fatalf("get items: %v", err)
		}
		if len(items) != c.ReloadedItems {
			t.Fatalf("case %d: expected %d items, got %d", i, c.ReloadedItems, len(items))
		}
	}
	if result.Cases[0].ConversationID == result.Cases[1].ConversationID {
		t.Fatalf("expected a fresh session per case")
	}
}

func TestRunToolEvalRecordsFirstTool(t *testing.T) {
	ctx := testutil.Context(t, 2*time.Second)
	model := bankModel{tools: map[string][2]string{
		"Transfer $50 from checking to savings": {"transfer_funds", `{"from_account":"checking","to_account":"savings","amount":50}`},
		"Pay City Power $120":                   {"pay_bill", `{"payee":"City Power","amount":120}`},
	}}
	f := newFixture(t, model.provider())
	path := writeDataset(t, f.dir, "tools.csv", "case_id,prompt,expected_tool\nt1,Transfer $50 from checking to savings,transfer_funds\nt2,Pay City Power $120,pay_bill\nt3,Move some money,transfer_funds\n")
	var out bytes.Buffer

	result, err := RunToolEval(ctx, f.deps, Options{Model: "test-model", DatasetPath: path, ResultsDir: f.dir, Verbose: true, VerboseWriter: &out, NoColor: true})
	if err != nil {
		t.Fatalf("run tool eval: %v", err)
	}
	if result.Correct != 2 || result.Total != 3 || result.Model != "test-model" {
		t.Fatalf("unexpected aggregate: %+v", result)
	}
	if result.Results[2].Output != "None" {
		t.Fatalf("expected None for a case without tool calls, got %q", result.Results[2].Output)
	}
	if got := result.Cases[0].AllTools; len(got) != 1 || got[0] != "transfer_funds" {
		t.Fatalf("unexpected all tools: %v", got)
	}
	if !strings.HasPrefix(filepath.Base(result.CSVPath), "tool_evals_") {
		t.Fatalf("unexpected csv path %s", result.CSVPath)
	}

	text := out.String()
	for _, want := range []string{
		"[verbose] === Phase 1: Generate conversations and store in sessions ===",
		"=== Phase 2: Reload sessions and evaluate tool call accuracy ===",
		"✅ t1 | expected=transfer_funds, actual=transfer_funds | all_tools=[transfer_funds]",
		"❌ t3 | expected=transfer_funds, actual=None | all_tools=[None]",
		"Results saved to: " + result.CSVPath,
		"Accuracy: 2/3 = 66.67%",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected verbose output to contain %q, got:\n%s", want, text)
		}
	}
}

func TestRunAbortsOnCaseErrorByDefault(t *testing.T) {
	ctx := testutil.Context(t, 2*time.Second)
	boom := errors.New("model unavailable")
	provider := agenttest.Func(func(context.Context, agent.Prompt) ([]agent.StreamEvent, error) {
		return nil, boom
	})
	f := newFixture(t, provider)
	path := writeDataset(t, f.dir, "routing.csv", "case_id,prompt,expected_agent\nr1,Transfer $50,Operational\n")
	observer := &recordingObserver{}

	_, err := RunHandoffEval(ctx, f.deps, Options{DatasetPath: path, ResultsDir: f.dir, Observer: observer})
	if !errors.Is(err, boom) || !strings.Contains(err.Error(), "case r1") {
		t.Fatalf("expected wrapped provider error, got %v", err)
	}
	if observer.ends != 1 || observer.endErr == nil {
		t.Fatalf("expected run end with error")
	}
	records, err := f.deps.History.Load()
	if err != nil {
		t.Fatalf("load history: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected no history on abort, got %d", len(records))
	}
}

func TestRunContinueOnErrorScoresFailedCases(t *testing.T) {
	ctx := testutil.Context(t, 2*time.Second)
	model := bankModel{routes: map[string]string{"Transfer $50": "Operational"}}
	inner := model.provider()
	provider := agenttest.Func(func(ctx context.Context, prompt agent.Prompt) ([]agent.StreamEvent, error) {
		if agenttest.LastUserText(prompt) == "explode" {
			return nil, errors.New("boom")
		}
		stream, err := inner.Stream(ctx, prompt)
		if err != nil {
			return nil, err
		}
		var events []agent.StreamEvent
		for {
			event, err := stream.Recv()
			if err != nil {
				return events, nil
			}
			events = append(events, event)
		}
	})
	f := newFixture(t, provider)
	sink := &recordingSink{err: errors.New("sink offline")}
	f.deps.Sink = sink
	path := writeDataset(t, f.dir, "routing.csv", "case_id,prompt,expected_agent\nr1,explode,Operational\nr2,Transfer $50,Operational\n")
	observer := &recordingObserver{}

	result, err := RunHandoffEval(ctx, f.deps, Options{DatasetPath: path, ResultsDir: f.dir, ContinueOnError: true, Observer: observer})
	if err != nil {
		t.Fatalf("run handoff eval: %v", err)
	}
	if result.Correct != 1 || result.Total != 2 {
		t.Fatalf("unexpected aggregate: %+v", result)
	}
	failed := result.Cases[0]
	if failed.Actual != ActualError || failed.Correct || failed.Error == "" || failed.ReloadedItems != 0 {
		t.Fatalf("unexpected failed case: %+v", failed)
	}
	got := observer.eventTypes("r1")
	if len(got) != 5 || got[2] != CaseFailed || got[4] != CaseIncorrect {
		t.Fatalf("unexpected events for failed case: %v", got)
	}
	if len(sink.records) != 1 || len(sink.cases[0]) != 2 {
		t.Fatalf("expected sink to receive the run")
	}
}

// unreadableStore creates sessions normally but cannot reopen them.
type unreadableStore struct {
	session.Store
}

func (unreadableStore) Open(context.Context, string) (session.Session, error) {
	return nil, errors.New("disk detached")
}

func TestRunReloadFailureIsNeverCorrect(t *testing.T) {
	ctx := testutil.Context(t, 2*time.Second)
	model := bankModel{routes: map[string]string{"Transfer $50": "Operational"}}
	f := newFixture(t, model.provider())
	f.deps.Sessions = unreadableStore{Store: f.sessions}
	path := writeDataset(t, f.dir, "routing.csv", "case_id,prompt,expected_agent\nr1,Transfer $50,Operational\n")

	if _, err := RunHandoffEval(ctx, f.deps, Options{DatasetPath: path, ResultsDir: f.dir}); err == nil || !strings.Contains(err.Error(), "disk detached") {
		t.Fatalf("expected reload error to abort the run, got %v", err)
	}

	observer := &recordingObserver{}
	result, err := RunHandoffEval(ctx, f.deps, Options{DatasetPath: path, ResultsDir: f.dir, ContinueOnError: true, Observer: observer})
	if err != nil {
		t.Fatalf("run handoff eval: %v", err)
	}
	if result.Correct != 0 || result.Total != 1 || result.Accuracy != 0 {
		t.Fatalf("unexpected aggregate: %+v", result)
	}
	got := result.Cases[0]
	if got.Correct || got.Actual != "Operational" || got.ReloadedItems != 0 || !strings.Contains(got.Error, "disk detached") {
		t.Fatalf("unexpected case result: %+v", got)
	}
	if result.Results[0].Correct {
		t.Fatalf("scored row must be incorrect: %+v", result.Results[0])
	}
	types := observer.eventTypes("r1")
	if len(types) == 0 || types[len(types)-1] != CaseFailed {
		t.Fatalf("expected the case to end as failed, got %v", types)
	}
}

func TestRunRequiresDependencies(t *testing.T) {
	ctx := testutil.Context(t, time.Second)
	f := newFixture(t, agenttest.NewScripted())
	deps := f.deps
	deps.Sessions = nil
	if _, err := RunHandoffEval(ctx, deps, Options{}); err == nil {
		t.Fatalf("expected missing session store error")
	}
	deps = f.deps
	deps.ProviderFactory = func(string) (agent.Provider, error) { return nil, errors.New("no key") }
	if _, err := RunHandoffEval(ctx, deps, Options{}); err == nil || !strings.Contains(err.Error(), "no key") {
		t.Fatalf("expected provider factory error, got %v", err)
	}
}
