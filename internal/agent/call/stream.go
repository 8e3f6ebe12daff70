package call

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"agentevals/internal/agent"
	"agentevals/internal/session"
)

// turnState is the mutable state of one RunCall.
type turnState struct {
	active      *agent.Agent
	history     []agent.HistoryItem
	newItems    []session.Item
	finalOutput string
	metrics     RunMetrics
	logger      *zap.Logger
}

// handleResponseStream consumes streamed output, applying handoffs and executing tools.
// A handoff ends the response: later events in the same stream are dropped.
func (t *turnState) handleResponseStream(ctx context.Context, stream agent.Stream) (bool, error) {
	needsFollowUp := false
	for {
		event, err := stream.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return needsFollowUp, err
		}
		switch event.Type {
		case agent.StreamEventMessage:
			t.history = append(t.history, agent.AssistantText(event.Message))
			t.newItems = append(t.newItems, session.Item{
				Type:    session.ItemMessage,
				Agent:   t.active.Name,
				Role:    "assistant",
				Content: event.Message,
			})
			t.finalOutput = event.Message
		case agent.StreamEventToolCall:
			call := event.ToolCall
			if call.ID == "" {
				call.ID = fmt.Sprintf("call-%d", len(t.history))
			}
			if target, ok := t.active.HandoffTarget(call.Name); ok {
				if err := t.handoff(call, target); err != nil {
					return false, err
				}
				return true, nil
			}
			if err := t.invokeTool(ctx, call); err != nil {
				return false, err
			}
			needsFollowUp = true
		default:
			return needsFollowUp, fmt.Errorf("unknown stream event type: %d", event.Type)
		}
	}
	return needsFollowUp, nil
}

// handoff records the transfer and makes target the active agent.
func (t *turnState) handoff(call agent.ToolCall, target *agent.Agent) error {
	args, err := call.Args.Encode()
	if err != nil {
		return err
	}
	output, err := json.Marshal(map[string]string{"assistant": target.Name})
	if err != nil {
		return err
	}
	source := t.active.Name
	t.newItems = append(t.newItems,
		session.Item{
			Type:        session.ItemHandoffCall,
			Agent:       source,
			CallID:      call.ID,
			Name:        call.Name,
			Arguments:   args,
			TargetAgent: target.Name,
		},
		session.Item{
			Type:        session.ItemHandoffOutput,
			Agent:       source,
			CallID:      call.ID,
			Output:      string(output),
			SourceAgent: source,
			TargetAgent: target.Name,
		},
	)
	t.history = append(t.history,
		agent.HistoryItem{Role: "assistant", Content: call},
		agent.HistoryItem{Role: "tool", Content: agent.ToolOutput{ToolCallID: call.ID, Output: string(output)}},
	)
	t.metrics.Handoffs++
	t.logger.Debug("handoff", zap.String("from", source), zap.String("to", target.Name))
	t.active = target
	return nil
}

// invokeTool executes a function tool and records the call and its output.
// Handler errors are reported back to the model as the tool output.
func (t *turnState) invokeTool(ctx context.Context, call agent.ToolCall) error {
	tool, ok := t.active.FindTool(call.Name)
	if !ok || tool.Handler == nil {
		return fmt.Errorf("%w %q for agent %s", ErrUnknownTool, call.Name, t.active.Name)
	}
	args, err := call.Args.Encode()
	if err != nil {
		return err
	}
	output := renderToolOutput(tool.Handler(ctx, call.Args))
	t.newItems = append(t.newItems,
		session.Item{
			Type:      session.ItemToolCall,
			Agent:     t.active.Name,
			CallID:    call.ID,
			Name:      call.Name,
			Arguments: args,
		},
		session.Item{
			Type:   session.ItemToolOutput,
			Agent:  t.active.Name,
			CallID: call.ID,
			Name:   call.Name,
			Output: output,
		},
	)
	t.history = append(t.history,
		agent.HistoryItem{Role: "assistant", Content: call},
		agent.HistoryItem{Role: "tool", Content: agent.ToolOutput{ToolCallID: call.ID, Output: output}},
	)
	t.metrics.ToolCalls[call.Name]++
	t.logger.Debug("tool call", zap.String("agent", t.active.Name), zap.String("tool", call.Name), zap.String("args", args))
	return nil
}

func renderToolOutput(value any, err error) string {
	if err != nil {
		return "An error occurred while running the tool: " + err.Error()
	}
	if text, ok := value.(string); ok {
		return text
	}
	payload, marshalErr := json.Marshal(value)
	if marshalErr != nil {
		return fmt.Sprintf("%v", value)
	}
	return string(payload)
}
