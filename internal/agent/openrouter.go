package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
)

// defaultOpenRouterBaseURL is the default OpenRouter API base URL.
const defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"

// Provider names accepted by ProviderFromEnv.
const (
	ProviderOpenRouter = "openrouter"
	ProviderOpenAI     = "openai"
)

// HTTPDoer abstracts HTTP clients used by providers.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ProviderSettings selects and configures a provider.
type ProviderSettings struct {
	Name      string
	Model     string
	BaseURL   string
	APIKeyEnv string
}

// OpenRouterProvider implements Provider for OpenRouter and other
// OpenAI-compatible chat completion endpoints.
type OpenRouterProvider struct {
	APIKey  string
	BaseURL string
	Client  HTTPDoer
	Model   string
}

// ProviderFromEnv builds a provider using environment credentials.
func ProviderFromEnv(settings ProviderSettings, client HTTPDoer) (Provider, error) {
	name := strings.TrimSpace(settings.Name)
	if name == "" {
		name = strings.TrimSpace(os.Getenv("LLM_PROVIDER"))
	}
	if name == "" {
		name = ProviderOpenAI
	}
	apiKey := lookupAPIKey(name, settings.APIKeyEnv)
	switch name {
	case ProviderOpenRouter:
		if apiKey == "" {
			return nil, fmt.Errorf("LLM_API_KEY is required")
		}
		return NewOpenRouterProvider(settings.Model, apiKey, settings.BaseURL, client)
	case ProviderOpenAI:
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY or LLM_API_KEY is required")
		}
		return NewOpenAIProvider(settings.Model, apiKey, settings.BaseURL)
	default:
		return nil, fmt.Errorf("unsupported provider %q", name)
	}
}

// lookupAPIKey resolves the credential for a provider.
func lookupAPIKey(provider, keyEnv string) string {
	candidates := []string{}
	if strings.TrimSpace(keyEnv) != "" {
		candidates = append(candidates, strings.TrimSpace(keyEnv))
	}
	candidates = append(candidates, "LLM_API_KEY")
	if provider == ProviderOpenAI {
		candidates = append(candidates, "OPENAI_API_KEY")
	}
	for _, name := range candidates {
		if value := strings.TrimSpace(os.Getenv(name)); value != "" {
			return value
		}
	}
	return ""
}

// NewOpenRouterProvider constructs an OpenRouter provider with explicit settings.
func NewOpenRouterProvider(model, apiKey, baseURL string, client HTTPDoer) (*OpenRouterProvider, error) {
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("model is required")
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("api key is required")
	}
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultOpenRouterBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &OpenRouterProvider{
		APIKey:  apiKey,
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  client,
		Model:   model,
	}, nil
}

// Stream sends a prompt and returns the parsed SSE events.
func (p *OpenRouterProvider) Stream(ctx context.Context, prompt Prompt) (Stream, error) {
	messages, err := buildChatMessages(prompt)
	if err != nil {
		return nil, err
	}
	model := p.Model
	if prompt.Model != "" {
		model = prompt.Model
	}
	requestBody := chatRequest{
		Model:    model,
		Stream:   true,
		Messages: messages,
	}
	if len(prompt.Tools) > 0 {
		requestBody.Tools = buildChatTools(prompt.Tools)
		requestBody.ToolChoice = "auto"
		parallel := false
		requestBody.ParallelToolCalls = &parallel
	}
	payload, err := json.Marshal(requestBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	endpoint := p.BaseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")

	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("chat completions error (%d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	events, err := parseChatStream(resp.Body)
	if err != nil {
		return nil, err
	}
	return NewStaticStream(events), nil
}
