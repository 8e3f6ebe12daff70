package call

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"agentevals/internal/agent"
	"agentevals/internal/session"
)

// RunCall executes a single user turn against the entry agent, following
// handoffs and tool calls until the active agent stops requesting follow-ups.
// Items are saved to the request session only when the turn succeeds.
func RunCall(ctx context.Context, req Request) (Result, error) {
	if req.Agent == nil {
		return Result{}, fmt.Errorf("agent is required")
	}
	if req.Provider == nil {
		return Result{}, fmt.Errorf("provider is required")
	}
	logger := req.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	start := time.Now()

	var prior []session.Item
	if req.Session != nil {
		items, err := req.Session.GetItems(ctx)
		if err != nil {
			return Result{}, err
		}
		prior = items
	}
	input := session.UserMessage(req.Input)
	history, err := historyFromItems(append(append([]session.Item(nil), prior...), input))
	if err != nil {
		return Result{}, err
	}

	turn := &turnState{
		active:  req.Agent,
		history: history,
		metrics: RunMetrics{ToolCalls: map[string]int{}},
		logger:  logger,
	}
	for {
		if turn.metrics.Turns >= req.Limits.maxTurns() {
			return Result{}, fmt.Errorf("%w (%d)", ErrMaxTurnsExceeded, req.Limits.maxTurns())
		}
		prompt := agent.Prompt{
			Model:        req.Model,
			Instructions: turn.active.Instructions,
			InputItems:   turn.history,
			Tools:        turn.active.ToolDefinitions(),
		}
		logger.Debug("model call",
			zap.String("agent", turn.active.Name),
			zap.Int("turn", turn.metrics.Turns+1),
			zap.Int("history_items", len(turn.history)))
		stream, err := req.Provider.Stream(ctx, prompt)
		if err != nil {
			return Result{}, err
		}
		turn.metrics.Turns++
		needsFollowUp, err := turn.handleResponseStream(ctx, stream)
		if err != nil {
			return Result{}, err
		}
		if !needsFollowUp {
			break
		}
	}

	if req.Session != nil {
		toSave := append([]session.Item{input}, turn.newItems...)
		if err := req.Session.AddItems(ctx, toSave...); err != nil {
			return Result{}, err
		}
	}

	turn.metrics.WallTime = time.Since(start)
	all := make([]session.Item, 0, len(prior)+1+len(turn.newItems))
	all = append(all, prior...)
	all = append(all, input)
	all = append(all, turn.newItems...)
	return Result{
		NewItems:    turn.newItems,
		AllItems:    all,
		FinalOutput: turn.finalOutput,
		LastAgent:   turn.active,
		Metrics:     turn.metrics,
	}, nil
}
