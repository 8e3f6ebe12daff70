package agent

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
)

// chatStreamChunk is a partial SSE payload.
type chatStreamChunk struct {
	Choices []chatStreamChoice `json:"choices"`
}

// chatStreamChoice contains a delta event.
type chatStreamChoice struct {
	Delta        chatStreamDelta `json:"delta"`
	FinishReason string          `json:"finish_reason"`
}

// chatStreamDelta contains incremental content or tool calls.
type chatStreamDelta struct {
	Content   string               `json:"content"`
	ToolCalls []chatStreamToolCall `json:"tool_calls"`
}

// chatStreamToolCall represents a streaming tool call delta.
type chatStreamToolCall struct {
	Index    int              `json:"index"`
	ID       string           `json:"id"`
	Type     string           `json:"type"`
	Function chatFunctionCall `json:"function"`
}

// parseChatStream reads SSE output and converts it into stream events.
func parseChatStream(reader io.Reader) ([]StreamEvent, error) {
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var acc streamAccumulator
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "[DONE]" {
			break
		}
		var chunk chatStreamChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			return nil, fmt.Errorf("parse stream chunk: %w", err)
		}
		for _, choice := range chunk.Choices {
			acc.addContent(choice.Delta.Content)
			for _, call := range choice.Delta.ToolCalls {
				acc.addToolCall(call.Index, call.ID, call.Function.Name, call.Function.Arguments)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return acc.events()
}

// toolCallFragment gathers streaming tool call fragments for one index.
type toolCallFragment struct {
	ID        string
	Name      string
	Arguments strings.Builder
}

// streamAccumulator merges streamed deltas into complete events.
type streamAccumulator struct {
	content strings.Builder
	calls   map[int]*toolCallFragment
}

func (a *streamAccumulator) addContent(text string) {
	a.content.WriteString(text)
}

func (a *streamAccumulator) addToolCall(index int, id, name, arguments string) {
	if a.calls == nil {
		a.calls = make(map[int]*toolCallFragment)
	}
	frag := a.calls[index]
	if frag == nil {
		frag = &toolCallFragment{}
		a.calls[index] = frag
	}
	if id != "" {
		frag.ID = id
	}
	if name != "" {
		frag.Name = name
	}
	frag.Arguments.WriteString(arguments)
}

// events returns the message event (if any) followed by tool calls in index order.
func (a *streamAccumulator) events() ([]StreamEvent, error) {
	events := make([]StreamEvent, 0, len(a.calls)+1)
	if a.content.Len() > 0 {
		events = append(events, StreamEvent{
			Type:    StreamEventMessage,
			Message: a.content.String(),
		})
	}
	indices := make([]int, 0, len(a.calls))
	for index := range a.calls {
		indices = append(indices, index)
	}
	sort.Ints(indices)
	for _, index := range indices {
		frag := a.calls[index]
		args, err := ParseToolCallArgs(frag.Arguments.String())
		if err != nil {
			return nil, err
		}
		callID := frag.ID
		if callID == "" {
			callID = fmt.Sprintf("call-%d", index)
		}
		events = append(events, StreamEvent{
			Type: StreamEventToolCall,
			ToolCall: ToolCall{
				ID:   callID,
				Name: frag.Name,
				Args: args,
			},
		})
	}
	return events, nil
}

// staticStream exposes a slice of events as a Stream.
type staticStream struct {
	events []StreamEvent
	index  int
}

// NewStaticStream returns a Stream that replays events and then io.EOF.
func NewStaticStream(events []StreamEvent) Stream {
	return &staticStream{events: events}
}

// Recv returns the next event or io.EOF when complete.
func (s *staticStream) Recv() (StreamEvent, error) {
	if s.index >= len(s.events) {
		return StreamEvent{}, io.EOF
	}
	event := s.events[s.index]
	s.index++
	return event, nil
}
