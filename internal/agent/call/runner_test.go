package call

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"agentevals/internal/agent"
	"agentevals/internal/agent/agenttest"
	"agentevals/internal/session"
	"agentevals/internal/testutil"
)

func bankingAgents() (*agent.Agent, *agent.Agent) {
	params := agent.ObjectSchema(map[string]agent.ToolSchema{
		"payee": agent.StringSchema("Payee"),
	}, []string{"payee"}, nil)
	operational := &agent.Agent{
		Name:         "Operational",
		Instructions: "execute operations",
		Tools: []agent.Tool{{
			Definition: agent.ToolDefinition{Name: "pay_bill", Parameters: &params},
			Handler: func(_ context.Context, args agent.ToolCallArgs) (any, error) {
				payee, err := args.RequiredString("payee")
				if err != nil {
					return nil, err
				}
				return map[string]string{"status": "success", "payee": payee}, nil
			},
		}},
	}
	orchestrator := &agent.Agent{
		Name:         "Orchestrator",
		Instructions: "route",
		Handoffs:     []*agent.Agent{operational},
	}
	return orchestrator, operational
}

func TestRunCallHandoffThenTool(t *testing.T) {
	ctx := testutil.Context(t, 2*time.Second)
	orchestrator, operational := bankingAgents()
	provider := agenttest.NewScripted(
		[]agent.StreamEvent{agenttest.Handoff("h1", "Operational")},
		[]agent.StreamEvent{agenttest.Call("t1", "pay_bill", `{"payee":"City Power"}`)},
		[]agent.StreamEvent{agenttest.Message("Paid.")},
	)
	store := session.NewMemoryStore()
	sess, err := store.Create(ctx)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	result, err := RunCall(ctx, Request{Agent: orchestrator, Input: "Pay my power bill", Session: sess, Provider: provider})
	if err != nil {
		t.Fatalf("run call: %v", err)
	}
	if result.LastAgent != operational {
		t.Fatalf("expected operational to be last agent, got %v", result.LastAgent.Name)
	}
	if result.FinalOutput != "Paid." {
		t.Fatalf("unexpected final output %q", result.FinalOutput)
	}
	wantTypes := []session.ItemType{
		session.ItemHandoffCall, session.ItemHandoffOutput,
		session.ItemToolCall, session.ItemToolOutput,
		session.ItemMessage,
	}
	if len(result.NewItems) != len(wantTypes) {
		t.Fatalf("expected %d new items, got %d", len(wantTypes), len(result.NewItems))
	}
	for i, want := range wantTypes {
		if result.NewItems[i].Type != want {
			t.Fatalf("item %d: expected %s, got %s", i, want, result.NewItems[i].Type)
		}
	}
	handoff := result.NewItems[1]
	if handoff.SourceAgent != "Orchestrator" || handoff.TargetAgent != "Operational" {
		t.Fatalf("unexpected handoff item: %+v", handoff)
	}
	if !strings.Contains(result.NewItems[3].Output, "City Power") {
		t.Fatalf("expected tool output to include payee, got %q", result.NewItems[3].Output)
	}
	if len(result.AllItems) != len(result.NewItems)+1 || result.AllItems[0].Content != "Pay my power bill" {
		t.Fatalf("unexpected all items: %+v", result.AllItems)
	}
	if result.Metrics.Turns != 3 || result.Metrics.Handoffs != 1 || result.Metrics.ToolCalls["pay_bill"] != 1 {
		t.Fatalf("unexpected metrics: %+v", result.Metrics)
	}

	if provider.Prompts[0].Instructions != "route" || provider.Prompts[1].Instructions != "execute operations" {
		t.Fatalf("expected active agent instructions to switch after handoff")
	}
	if len(provider.Prompts[0].Tools) != 1 || provider.Prompts[0].Tools[0].Name != "transfer_to_operational" {
		t.Fatalf("unexpected orchestrator tools: %+v", provider.Prompts[0].Tools)
	}

	stored, err := sess.GetItems(ctx)
	if err != nil {
		t.Fatalf("get items: %v", err)
	}
	if len(stored) != len(result.AllItems) {
		t.Fatalf("expected %d stored items, got %d", len(result.AllItems), len(stored))
	}
}

func TestRunCallReplaysPriorSessionItems(t *testing.T) {
	ctx := testutil.Context(t, 2*time.Second)
	orchestrator, _ := bankingAgents()
	store := session.NewMemoryStore()
	sess, _ := store.Create(ctx)
	if err := sess.AddItems(ctx, session.UserMessage("earlier"), session.Item{Type: session.ItemMessage, Role: "assistant", Content: "reply"}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	provider := agenttest.NewScripted([]agent.StreamEvent{agenttest.Message("Which account?")})

	result, err := RunCall(ctx, Request{Agent: orchestrator, Input: "now", Session: sess, Provider: provider})
	if err != nil {
		t.Fatalf("run call: %v", err)
	}
	if got := len(provider.Prompts[0].InputItems); got != 3 {
		t.Fatalf("expected prior history plus input in prompt, got %d items", got)
	}
	if len(result.AllItems) != 4 || len(result.NewItems) != 1 {
		t.Fatalf("unexpected items: all=%d new=%d", len(result.AllItems), len(result.NewItems))
	}
	if result.LastAgent != orchestrator {
		t.Fatalf("expected orchestrator to stay active")
	}
}

func TestRunCallMaxTurns(t *testing.T) {
	ctx := testutil.Context(t, 2*time.Second)
	_, operational := bankingAgents()
	loop := agenttest.Func(func(context.Context, agent.Prompt) ([]agent.StreamEvent, error) {
		return []agent.StreamEvent{agenttest.Call("", "pay_bill", `{"payee":"x"}`)}, nil
	})
	store := session.NewMemoryStore()
	sess, _ := store.Create(ctx)

	_, err := RunCall(ctx, Request{Agent: operational, Input: "loop", Session: sess, Provider: loop, Limits: RunLimits{MaxTurns: 2}})
	if !errors.Is(err, ErrMaxTurnsExceeded) {
		t.Fatalf("expected max turns error, got %v", err)
	}
	if sess.CachedID() != "" {
		t.Fatalf("failed turn must not persist items")
	}
}

func TestRunCallUnknownTool(t *testing.T) {
	ctx := testutil.Context(t, 2*time.Second)
	orchestrator, _ := bankingAgents()
	provider := agenttest.NewScripted([]agent.StreamEvent{agenttest.Call("x", "pay_bill", `{}`)})

	_, err := RunCall(ctx, Request{Agent: orchestrator, Input: "pay", Provider: provider})
	if !errors.Is(err, ErrUnknownTool) {
		t.Fatalf("expected unknown tool error, got %v", err)
	}
}

func TestRunCallToolErrorIsReportedToModel(t *testing.T) {
	ctx := testutil.Context(t, 2*time.Second)
	_, operational := bankingAgents()
	provider := agenttest.NewScripted(
		[]agent.StreamEvent{agenttest.Call("t1", "pay_bill", `{}`)},
		[]agent.StreamEvent{agenttest.Message("Who is the payee?")},
	)

	result, err := RunCall(ctx, Request{Agent: operational, Input: "pay", Provider: provider})
	if err != nil {
		t.Fatalf("run call: %v", err)
	}
	if !strings.Contains(result.NewItems[1].Output, "payee is required") {
		t.Fatalf("expected handler error in output, got %q", result.NewItems[1].Output)
	}
}

func TestRunCallProviderError(t *testing.T) {
	ctx := testutil.Context(t, 2*time.Second)
	orchestrator, _ := bankingAgents()
	failing := agenttest.Func(func(context.Context, agent.Prompt) ([]agent.StreamEvent, error) {
		return nil, errors.New("upstream unavailable")
	})
	if _, err := RunCall(ctx, Request{Agent: orchestrator, Input: "hi", Provider: failing}); err == nil {
		t.Fatalf("expected provider error")
	}
	if _, err := RunCall(ctx, Request{Input: "hi", Provider: failing}); err == nil {
		t.Fatalf("expected missing agent error")
	}
}
