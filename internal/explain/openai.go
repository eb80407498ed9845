package explain

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// Presets for OpenAI-compatible chat completion services.
const (
	DefaultOpenAIBaseURL = "https://api.openai.com/v1/chat/completions"
	DefaultOpenAIModel   = "gpt-4o-mini"

	DefaultGroqBaseURL = "https://api.groq.com/openai/v1/chat/completions"
	DefaultGroqModel   = "llama-3.3-70b-versatile"

	DefaultOpenRouterBaseURL = "https://openrouter.ai/api/v1/chat/completions"
	DefaultOpenRouterModel   = "anthropic/claude-haiku-4.5"

	// DefaultHTTPReferer and DefaultXTitle identify the app to OpenRouter.
	DefaultHTTPReferer = "https://github.com/user/cmdlens"
	DefaultXTitle      = "cmdlens"
)

// chatTemperature keeps explanations close to deterministic.
const chatTemperature = 0.1

// ChatBackend implements Explainer for any OpenAI-compatible chat
// completions endpoint. OpenAI, Groq and OpenRouter differ only in their
// defaults and extra headers.
type ChatBackend struct {
	name       string
	apiKey     string
	baseURL    string
	model      string
	maxTokens  int
	headers    map[string]string
	httpClient *http.Client
}

// ChatOption is a functional option for configuring ChatBackend.
type ChatOption func(*ChatBackend)

// WithAPIKey sets the bearer token.
func WithAPIKey(key string) ChatOption {
	return func(b *ChatBackend) {
		b.apiKey = key
	}
}

// WithBaseURL sets a custom endpoint (useful for testing).
func WithBaseURL(url string) ChatOption {
	return func(b *ChatBackend) {
		b.baseURL = url
	}
}

// WithModel sets the model to use.
func WithModel(model string) ChatOption {
	return func(b *ChatBackend) {
		b.model = model
	}
}

// WithMaxTokens sets the maximum tokens for responses.
func WithMaxTokens(tokens int) ChatOption {
	return func(b *ChatBackend) {
		b.maxTokens = tokens
	}
}

// WithHeader adds an extra request header.
func WithHeader(key, value string) ChatOption {
	return func(b *ChatBackend) {
		b.headers[key] = value
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) ChatOption {
	return func(b *ChatBackend) {
		b.httpClient = client
	}
}

func newChatBackend(name, baseURL, model string, opts []ChatOption) *ChatBackend {
	b := &ChatBackend{
		name:       name,
		baseURL:    baseURL,
		model:      model,
		maxTokens:  DefaultMaxTokens,
		headers:    map[string]string{},
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// NewOpenAIBackend creates a backend for the OpenAI API.
func NewOpenAIBackend(opts ...ChatOption) *ChatBackend {
	return newChatBackend("openai", DefaultOpenAIBaseURL, DefaultOpenAIModel, opts)
}

// NewGroqBackend creates a backend for the Groq API.
func NewGroqBackend(opts ...ChatOption) *ChatBackend {
	return newChatBackend("groq", DefaultGroqBaseURL, DefaultGroqModel, opts)
}

// NewOpenRouterBackend creates a backend for OpenRouter. The referer and
// title headers can be overridden with WithHeader.
func NewOpenRouterBackend(opts ...ChatOption) *ChatBackend {
	defaults := []ChatOption{
		WithHeader("HTTP-Referer", DefaultHTTPReferer),
		WithHeader("X-Title", DefaultXTitle),
	}
	return newChatBackend("openrouter", DefaultOpenRouterBaseURL, DefaultOpenRouterModel, append(defaults, opts...))
}

// Name returns the backend identifier.
func (b *ChatBackend) Name() string {
	return b.name
}

type chatRequest struct {
	Model       string        `json:"model"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature"`
	Messages    []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Index   int         `json:"index"`
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Explain sends the command to the chat completions endpoint and parses the reply.
func (b *ChatBackend) Explain(ctx context.Context, request *Request) (*Explanation, error) {
	if b.apiKey == "" {
		return nil, ErrNoAPIKey
	}
	command := strings.TrimSpace(request.Command)
	if command == "" {
		return nil, ErrEmptyCommand
	}

	prompt, err := buildUserPrompt(&Request{Command: command, Context: request.Context})
	if err != nil {
		return nil, fmt.Errorf("building prompt: %w", err)
	}

	model := b.model
	if request.Model != "" {
		model = request.Model
	}

	jsonBody, err := json.Marshal(chatRequest{
		Model:       model,
		MaxTokens:   b.maxTokens,
		Temperature: chatTemperature,
		Messages: []chatMessage{
			{Role: "system", Content: SystemPrompt},
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	headers := make(map[string]string, len(b.headers)+1)
	for k, v := range b.headers {
		headers[k] = v
	}
	headers["Authorization"] = "Bearer " + b.apiKey

	status, body, err := postJSON(ctx, b.httpClient, b.baseURL, headers, jsonBody)
	if err != nil {
		return nil, err
	}

	var apiResp chatResponse
	if !isSuccess(status) {
		if err := json.Unmarshal(body, &apiResp); err == nil && apiResp.Error != nil {
			return nil, fmt.Errorf("API error (%d): %s", status, apiResp.Error.Message)
		}
		return nil, fmt.Errorf("API error (%d): %s", status, string(body))
	}

	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}
	if len(apiResp.Choices) == 0 {
		return nil, ErrEmptyResponse
	}

	reply := strings.TrimSpace(apiResp.Choices[0].Message.Content)
	if reply == "" {
		return nil, ErrEmptyResponse
	}

	exp := ParseExplanation(command, reply)
	exp.Model = apiResp.Model
	exp.TokensUsed = apiResp.Usage.TotalTokens
	return exp, nil
}
