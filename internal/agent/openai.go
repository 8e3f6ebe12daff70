package agent

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIProvider implements Provider on top of the go-openai streaming client.
type OpenAIProvider struct {
	client *openai.Client
	Model  string
}

// NewOpenAIProvider constructs an OpenAI provider. An empty baseURL uses the public API.
func NewOpenAIProvider(model, apiKey, baseURL string) (*OpenAIProvider, error) {
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("model is required")
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("api key is required")
	}
	cfg := openai.DefaultConfig(apiKey)
	if strings.TrimSpace(baseURL) != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	return &OpenAIProvider{
		client: openai.NewClientWithConfig(cfg),
		Model:  model,
	}, nil
}

// Stream sends the prompt and drains the streamed response into events.
func (p *OpenAIProvider) Stream(ctx context.Context, prompt Prompt) (Stream, error) {
	messages, err := toOpenAIMessages(prompt)
	if err != nil {
		return nil, err
	}
	model := p.Model
	if prompt.Model != "" {
		model = prompt.Model
	}
	req := openai.ChatCompletionRequest{
		Model:    model,
		Messages: messages,
		Stream:   true,
	}
	if len(prompt.Tools) > 0 {
		req.Tools = toOpenAITools(prompt.Tools)
		req.ParallelToolCalls = false
	}

	stream, err := p.client.CreateChatCompletionStream(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("openai stream: %w", err)
	}
	defer stream.Close()

	var acc streamAccumulator
	for {
		response, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("openai recv: %w", err)
		}
		for _, choice := range response.Choices {
			acc.addContent(choice.Delta.Content)
			for _, call := range choice.Delta.ToolCalls {
				index := 0
				if call.Index != nil {
					index = *call.Index
				}
				acc.addToolCall(index, call.ID, call.Function.Name, call.Function.Arguments)
			}
		}
	}
	events, err := acc.events()
	if err != nil {
		return nil, err
	}
	return NewStaticStream(events), nil
}

// toOpenAIMessages converts the prompt into go-openai chat messages.
func toOpenAIMessages(prompt Prompt) ([]openai.ChatCompletionMessage, error) {
	chat, err := buildChatMessages(prompt)
	if err != nil {
		return nil, err
	}
	messages := make([]openai.ChatCompletionMessage, 0, len(chat))
	for _, msg := range chat {
		out := openai.ChatCompletionMessage{
			Role:       msg.Role,
			Content:    msg.Content,
			ToolCallID: msg.ToolCallID,
		}
		for _, call := range msg.ToolCalls {
			out.ToolCalls = append(out.ToolCalls, openai.ToolCall{
				ID:   call.ID,
				Type: openai.ToolTypeFunction,
				Function: openai.FunctionCall{
					Name:      call.Function.Name,
					Arguments: call.Function.Arguments,
				},
			})
		}
		messages = append(messages, out)
	}
	return messages, nil
}

// toOpenAITools converts tool definitions into go-openai function tools.
func toOpenAITools(defs []ToolDefinition) []openai.Tool {
	tools := make([]openai.Tool, 0, len(defs))
	for _, def := range buildChatTools(defs) {
		tools = append(tools, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        def.Function.Name,
				Description: def.Function.Description,
				Parameters:  def.Function.Parameters,
			},
		})
	}
	return tools
}
