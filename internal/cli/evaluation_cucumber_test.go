//go:build cucumber

package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cucumber/godog"

	"agentevals/internal/agent"
	"agentevals/internal/agent/agenttest"
	"agentevals/internal/app"
	"agentevals/internal/history"
	"agentevals/internal/runner"
	"agentevals/internal/ui/live"
)

// TestEvaluationScenarios runs the evaluation feature scenarios.
func TestEvaluationScenarios(t *testing.T) {
	suite := godog.TestSuite{
		Name:                "evaluation",
		ScenarioInitializer: initializeEvaluationScenario(t),
		Options: &godog.Options{
			Format:    "pretty",
			Paths:     []string{filepath.Join("..", "..", "features", "evaluation.feature")},
			Strict:    true,
			TestingT:  t,
			Randomize: 0,
		},
	}
	if suite.Run() != 0 {
		t.Fatalf("non-zero godog status")
	}
}

func initializeEvaluationScenario(t *testing.T) func(*godog.ScenarioContext) {
	return func(ctx *godog.ScenarioContext) {
		state := &evaluationScenarioState{t: t}
		origTerminal := isTerminal
		origOptions := appOptions
		ctx.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
			state.reset()
			isTerminal = func(io.Writer) bool { return state.isTTY }
			appOptions = state.appOptions
			return ctx, nil
		})
		ctx.After(func(ctx context.Context, _ *godog.Scenario, _ error) (context.Context, error) {
			isTerminal = origTerminal
			appOptions = origOptions
			if state.root != "" {
				_ = os.RemoveAll(state.root)
			}
			return ctx, nil
		})

		ctx.Step(`^a project with in-memory sessions$`, state.givenProject)
		ctx.Step(`^a routing dataset:$`, state.givenDataset("routing"))
		ctx.Step(`^a tool dataset:$`, state.givenDataset("tool"))
		ctx.Step(`^a model that routes prompts containing "([^"]+)" to "([^"]+)"$`, state.givenRoutingModel)
		ctx.Step(`^a model that never calls tools$`, state.givenSilentModel)
		ctx.Step(`^I run "([^"]+)"$`, state.whenIRun)
		ctx.Step(`^the command exits with code (\d+)$`, state.thenExitCode)
		ctx.Step(`^the output contains "([^"]+)"$`, state.thenOutputContains)
		ctx.Step(`^the history lists (\d+) "([^"]+)" runs?$`, state.thenHistoryLists)
		ctx.Step(`^a TTY stdout$`, state.givenTTY)
		ctx.Step(`^stdout is not a TTY$`, state.givenNonTTY)
		ctx.Step(`^the UI mode "([^"]+)" is resolved with verbose output$`, state.whenResolveVerbose)
		ctx.Step(`^the UI mode "([^"]+)" is resolved$`, state.whenResolve)
		ctx.Step(`^the live UI is not used$`, state.thenNotLive)
		ctx.Step(`^a fallback warning is shown$`, state.thenWarning)
		ctx.Step(`^(\d+) queued routing cases$`, state.givenQueuedCases)
		ctx.Step(`^case (\d+) is routed to "([^"]+)" and scored correct$`, state.whenCaseScored)
		ctx.Step(`^the UI shows (\d+) correct and (\d+) queued cases$`, state.thenUICounts)
	}
}

type evaluationScenarioState struct {
	t        *testing.T
	root     string
	datasets map[string]string
	provider agent.Provider
	stdout   bytes.Buffer
	stderr   bytes.Buffer
	exitCode int
	isTTY    bool
	decision uiModeDecision
	uiState  live.State
}

func (s *evaluationScenarioState) reset() {
	s.root = ""
	s.datasets = map[string]string{}
	s.provider = nil
	s.stdout.Reset()
	s.stderr.Reset()
	s.exitCode = -1
	s.isTTY = false
	s.decision = uiModeDecision{}
	s.uiState = live.State{}
}

func (s *evaluationScenarioState) appOptions() []app.Option {
	start := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	tick := 0
	return []app.Option{
		app.WithProviderFactory(func(string) (agent.Provider, error) {
			if s.provider == nil {
				return nil, fmt.Errorf("no model configured")
			}
			return s.provider, nil
		}),
		app.WithClock(func() time.Time {
			tick++
			return start.Add(time.Duration(tick) * time.Second)
		}),
		app.WithCommit(func(context.Context) string { return "feedface" }),
	}
}

func (s *evaluationScenarioState) givenProject() error {
	root, err := os.MkdirTemp("", "agentevals-feature-")
	if err != nil {
		return err
	}
	s.root = root
	return nil
}

func (s *evaluationScenarioState) givenDataset(kind string) func(*godog.Table) error {
	return func(table *godog.Table) error {
		var lines []string
		for _, row := range table.Rows {
			cells := make([]string, 0, len(row.Cells))
			for _, cell := range row.Cells {
				cells = append(cells, strings.TrimSpace(cell.Value))
			}
			lines = append(lines, strings.Join(cells, ","))
		}
		path := filepath.Join(s.root, kind+".csv")
		if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
			return err
		}
		s.datasets[kind] = path
		return nil
	}
}

func (s *evaluationScenarioState) givenRoutingModel(keyword, target string) error {
	transfer := agent.HandoffToolName(target)
	s.provider = agenttest.Func(func(_ context.Context, prompt agent.Prompt) ([]agent.StreamEvent, error) {
		if agenttest.HasToolOutput(prompt) {
			return []agent.StreamEvent{agenttest.Message("done")}, nil
		}
		if strings.Contains(agenttest.LastUserText(prompt), keyword) {
			for _, def := range prompt.Tools {
				if def.Name == transfer {
					return []agent.StreamEvent{agenttest.Handoff("h1", target)}, nil
				}
			}
		}
		return []agent.StreamEvent{agenttest.Message("Happy to help.")}, nil
	})
	return nil
}

func (s *evaluationScenarioState) givenSilentModel() error {
	s.provider = agenttest.Func(func(context.Context, agent.Prompt) ([]agent.StreamEvent, error) {
		return []agent.StreamEvent{agenttest.Message("Happy to help.")}, nil
	})
	return nil
}

// whenIRun writes the project config and runs the CLI against it.
func (s *evaluationScenarioState) whenIRun(command string) error {
	if s.root == "" {
		return fmt.Errorf("no project configured")
	}
	var body strings.Builder
	body.WriteString(testConfigYAML)
	if len(s.datasets) > 0 {
		body.WriteString("datasets:\n")
		for kind, path := range s.datasets {
			fmt.Fprintf(&body, "  %s: %q\n", kind, path)
		}
	}
	configPath := writeTestConfig(s.t, s.root, body.String())
	args := append(strings.Fields(command), "--config", configPath)
	s.stdout.Reset()
	s.stderr.Reset()
	s.exitCode = Run(args, &s.stdout, &s.stderr)
	return nil
}

func (s *evaluationScenarioState) thenExitCode(code int) error {
	if s.exitCode != code {
		return fmt.Errorf("expected exit %d, got %d (stderr %q)", code, s.exitCode, s.stderr.String())
	}
	return nil
}

func (s *evaluationScenarioState) thenOutputContains(text string) error {
	if !strings.Contains(s.stdout.String(), text) {
		return fmt.Errorf("expected %q in output:\n%s", text, s.stdout.String())
	}
	return nil
}

func (s *evaluationScenarioState) thenHistoryLists(count int, evalType string) error {
	records, err := history.NewStore(filepath.Join(s.root, "results", "history.json")).Load()
	if err != nil {
		return err
	}
	if len(records) != count {
		return fmt.Errorf("expected %d runs, got %d", count, len(records))
	}
	for _, record := range records {
		if record.EvalType != evalType || record.GitCommit != "feedface" {
			return fmt.Errorf("unexpected record %+v", record)
		}
	}
	return nil
}

func (s *evaluationScenarioState) givenTTY() error {
	s.isTTY = true
	return nil
}

func (s *evaluationScenarioState) givenNonTTY() error {
	s.isTTY = false
	return nil
}

func (s *evaluationScenarioState) whenResolveVerbose(mode string) error {
	decision, err := resolveUIMode(mode, true, nil)
	s.decision = decision
	return err
}

func (s *evaluationScenarioState) whenResolve(mode string) error {
	decision, err := resolveUIMode(mode, false, nil)
	s.decision = decision
	return err
}

func (s *evaluationScenarioState) thenNotLive() error {
	if s.decision.useLive {
		return fmt.Errorf("expected plain output")
	}
	return nil
}

func (s *evaluationScenarioState) thenWarning() error {
	if s.decision.warning == "" {
		return fmt.Errorf("expected a fallback warning")
	}
	return nil
}

func (s *evaluationScenarioState) givenQueuedCases(count int) error {
	for i := 0; i < count; i++ {
		s.uiState = live.Reduce(s.uiState, runner.CaseEvent{
			EvalType: runner.EvalHandoff,
			Index:    i,
			CaseID:   fmt.Sprintf("r%d", i+1),
			Type:     runner.CaseQueued,
		})
	}
	return nil
}

func (s *evaluationScenarioState) whenCaseScored(number int, target string) error {
	index := number - 1
	base := runner.CaseEvent{EvalType: runner.EvalHandoff, Index: index, Expected: target, Actual: target}
	for _, kind := range []runner.CaseEventType{runner.CaseRunning, runner.CaseGenerated, runner.CaseReloading, runner.CaseCorrect} {
		event := base
		event.Type = kind
		event.EmittedAt = time.Now()
		s.uiState = live.Reduce(s.uiState, event)
	}
	return nil
}

func (s *evaluationScenarioState) thenUICounts(correct, queued int) error {
	counts := s.uiState.Counts
	if counts.Correct != correct || counts.Queued != queued {
		return fmt.Errorf("unexpected counts %+v", counts)
	}
	return nil
}
