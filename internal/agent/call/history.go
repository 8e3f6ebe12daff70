package call

import (
	"fmt"

	"agentevals/internal/agent"
	"agentevals/internal/session"
)

// historyFromItems rebuilds model history from persisted session items.
func historyFromItems(items []session.Item) ([]agent.HistoryItem, error) {
	history := make([]agent.HistoryItem, 0, len(items))
	for _, item := range items {
		switch item.Type {
		case session.ItemMessage:
			role := item.Role
			if role == "" {
				role = "assistant"
			}
			history = append(history, agent.HistoryItem{Role: role, Content: agent.HistoryText{Text: item.Content}})
		case session.ItemToolCall, session.ItemHandoffCall:
			args, err := agent.ParseToolCallArgs(item.Arguments)
			if err != nil {
				return nil, fmt.Errorf("session item %s: %w", item.CallID, err)
			}
			history = append(history, agent.HistoryItem{
				Role:    "assistant",
				Content: agent.ToolCall{ID: item.CallID, Name: item.Name, Args: args},
			})
		case session.ItemToolOutput, session.ItemHandoffOutput:
			history = append(history, agent.HistoryItem{
				Role:    "tool",
				Content: agent.ToolOutput{ToolCallID: item.CallID, Output: item.Output},
			})
		}
	}
	return history, nil
}
