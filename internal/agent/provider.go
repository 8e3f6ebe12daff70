package agent

import "context"

// StreamEventType identifies streamed event kinds.
type StreamEventType int

const (
	StreamEventMessage StreamEventType = iota
	StreamEventToolCall
)

// StreamEvent carries either a message or tool call from the model stream.
type StreamEvent struct {
	Type     StreamEventType
	Message  string
	ToolCall ToolCall
}

// Stream yields incremental model events.
type Stream interface {
	Recv() (StreamEvent, error)
}

// Provider streams model responses for a prompt.
type Provider interface {
	Stream(ctx context.Context, prompt Prompt) (Stream, error)
}

// ToolCall describes a tool invocation emitted by the model.
type ToolCall struct {
	ID   string
	Name string
	Args ToolCallArgs
}

// ToolOutput is the result of a tool or handoff invocation fed back to the model.
type ToolOutput struct {
	ToolCallID string
	Output     string
}

// Prompt is the fully assembled request sent to a provider.
type Prompt struct {
	Model        string
	Instructions string
	InputItems   []HistoryItem
	Tools        []ToolDefinition
}
