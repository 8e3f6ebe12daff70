package agent

import (
	"fmt"
	"strings"
)

// chatRequest is the JSON payload sent to a chat completions endpoint.
type chatRequest struct {
	Model             string        `json:"model"`
	Stream            bool          `json:"stream"`
	Messages          []chatMessage `json:"messages"`
	Tools             []chatTool    `json:"tools,omitempty"`
	ToolChoice        string        `json:"tool_choice,omitempty"`
	ParallelToolCalls *bool         `json:"parallel_tool_calls,omitempty"`
}

// chatMessage represents a single chat message.
type chatMessage struct {
	Role       string         `json:"role"`
	Content    string         `json:"content,omitempty"`
	ToolCalls  []chatToolCall `json:"tool_calls,omitempty"`
	ToolCallID string         `json:"tool_call_id,omitempty"`
}

// chatTool describes a function tool.
type chatTool struct {
	Type     string                 `json:"type"`
	Function chatFunctionDefinition `json:"function"`
}

// chatFunctionDefinition describes a tool's function signature.
type chatFunctionDefinition struct {
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Parameters  *ToolSchema `json:"parameters,omitempty"`
}

// chatToolCall represents a tool call emitted by the model.
type chatToolCall struct {
	ID       string           `json:"id"`
	Type     string           `json:"type"`
	Function chatFunctionCall `json:"function"`
}

// chatFunctionCall describes the name and arguments of a tool call.
type chatFunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// buildChatMessages converts a prompt into chat message payloads. Consecutive
// assistant tool calls are merged into one assistant message.
func buildChatMessages(prompt Prompt) ([]chatMessage, error) {
	messages := make([]chatMessage, 0, len(prompt.InputItems)+1)
	if strings.TrimSpace(prompt.Instructions) != "" {
		messages = append(messages, chatMessage{
			Role:    "system",
			Content: prompt.Instructions,
		})
	}
	for _, item := range prompt.InputItems {
		msg, err := toChatMessage(item)
		if err != nil {
			return nil, err
		}
		if n := len(messages); n > 0 && len(msg.ToolCalls) > 0 && len(messages[n-1].ToolCalls) > 0 {
			messages[n-1].ToolCalls = append(messages[n-1].ToolCalls, msg.ToolCalls...)
			continue
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

// toChatMessage converts a history item into a chat message.
func toChatMessage(item HistoryItem) (chatMessage, error) {
	role := item.Role
	if role == "developer" {
		role = "system"
	}
	switch content := item.Content.(type) {
	case HistoryText:
		return chatMessage{Role: role, Content: content.Text}, nil
	case ToolCall:
		if content.ID == "" {
			return chatMessage{}, fmt.Errorf("tool call id is required")
		}
		args, err := content.Args.Encode()
		if err != nil {
			return chatMessage{}, err
		}
		return chatMessage{
			Role: "assistant",
			ToolCalls: []chatToolCall{{
				ID:   content.ID,
				Type: "function",
				Function: chatFunctionCall{
					Name:      content.Name,
					Arguments: args,
				},
			}},
		}, nil
	case ToolOutput:
		return chatMessage{
			Role:       "tool",
			Content:    content.Output,
			ToolCallID: content.ToolCallID,
		}, nil
	default:
		return chatMessage{}, fmt.Errorf("unsupported history content type %T", item.Content)
	}
}

// buildChatTools converts tool definitions into function tool payloads.
func buildChatTools(defs []ToolDefinition) []chatTool {
	tools := make([]chatTool, 0, len(defs))
	for _, def := range defs {
		params := def.Parameters
		if params == nil {
			defaultSchema := ToolSchema{Type: "object"}
			params = &defaultSchema
		}
		tools = append(tools, chatTool{
			Type: "function",
			Function: chatFunctionDefinition{
				Name:        def.Name,
				Description: def.Description,
				Parameters:  params,
			},
		})
	}
	return tools
}
