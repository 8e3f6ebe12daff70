// Package agenttest provides scripted model providers for tests.
package agenttest

import (
	"context"
	"errors"
	"sync"

	"agentevals/internal/agent"
)

// ErrScriptExhausted is returned when a Scripted provider runs out of responses.
var ErrScriptExhausted = errors.New("scripted provider has no more responses")

// Message returns a message event.
func Message(text string) agent.StreamEvent {
	return agent.StreamEvent{Type: agent.StreamEventMessage, Message: text}
}

// Call returns a tool call event. args must be a JSON object or empty.
func Call(id, name, args string) agent.StreamEvent {
	parsed, err := agent.ParseToolCallArgs(args)
	if err != nil {
		panic(err)
	}
	return agent.StreamEvent{Type: agent.StreamEventToolCall, ToolCall: agent.ToolCall{ID: id, Name: name, Args: parsed}}
}

// Handoff returns the tool call event that transfers control to target.
func Handoff(id, target string) agent.StreamEvent {
	return Call(id, agent.HandoffToolName(target), "")
}

// Scripted replays one response per Stream call, in order.
type Scripted struct {
	mu        sync.Mutex
	Responses [][]agent.StreamEvent
	Prompts   []agent.Prompt
}

// NewScripted builds a Scripted provider.
func NewScripted(responses ...[]agent.StreamEvent) *Scripted {
	return &Scripted{Responses: responses}
}

// Stream implements agent.Provider.
func (s *Scripted) Stream(_ context.Context, prompt agent.Prompt) (agent.Stream, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Prompts = append(s.Prompts, prompt)
	if len(s.Prompts) > len(s.Responses) {
		return nil, ErrScriptExhausted
	}
	return agent.NewStaticStream(s.Responses[len(s.Prompts)-1]), nil
}

// Calls reports how many times Stream was invoked.
func (s *Scripted) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Prompts)
}

// Func adapts a function into an agent.Provider.
type Func func(ctx context.Context, prompt agent.Prompt) ([]agent.StreamEvent, error)

// Stream implements agent.Provider.
func (f Func) Stream(ctx context.Context, prompt agent.Prompt) (agent.Stream, error) {
	events, err := f(ctx, prompt)
	if err != nil {
		return nil, err
	}
	return agent.NewStaticStream(events), nil
}

// LastUserText returns the most recent user message in the prompt.
func LastUserText(prompt agent.Prompt) string {
	for i := len(prompt.InputItems) - 1; i >= 0; i-- {
		item := prompt.InputItems[i]
		if item.Role != "user" {
			continue
		}
		if text, ok := item.Content.(agent.HistoryText); ok {
			return text.Text
		}
	}
	return ""
}

// HasToolOutput reports whether the prompt already ends with a tool result,
// meaning the model is being asked to follow up.
func HasToolOutput(prompt agent.Prompt) bool {
	if len(prompt.InputItems) == 0 {
		return false
	}
	_, ok := prompt.InputItems[len(prompt.InputItems)-1].Content.(agent.ToolOutput)
	return ok
}
