package explain

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

const (
	// DefaultAnthropicBaseURL is the default API endpoint for Anthropic.
	DefaultAnthropicBaseURL = "https://api.anthropic.com/v1/messages"

	// DefaultAnthropicModel is the default model for Anthropic.
	DefaultAnthropicModel = "claude-haiku-4-5-20251001"

	// AnthropicAPIVersion is the required API version header.
	AnthropicAPIVersion = "2023-06-01"
)

// AnthropicBackend implements Explainer for the Anthropic Messages API.
type AnthropicBackend struct {
	apiKey     string
	baseURL    string
	model      string
	maxTokens  int
	httpClient *http.Client
}

// AnthropicOption is a functional option for configuring AnthropicBackend.
type AnthropicOption func(*AnthropicBackend)

// WithAnthropicAPIKey sets the API key for the Anthropic backend.
func WithAnthropicAPIKey(key string) AnthropicOption {
	return func(b *AnthropicBackend) {
		b.apiKey = key
	}
}

// WithAnthropicBaseURL sets a custom base URL (useful for testing).
func WithAnthropicBaseURL(url string) AnthropicOption {
	return func(b *AnthropicBackend) {
		b.baseURL = url
	}
}

// WithAnthropicModel sets the model to use.
func WithAnthropicModel(model string) AnthropicOption {
	return func(b *AnthropicBackend) {
		b.model = model
	}
}

// WithAnthropicMaxTokens sets the maximum tokens for responses.
func WithAnthropicMaxTokens(tokens int) AnthropicOption {
	return func(b *AnthropicBackend) {
		b.maxTokens = tokens
	}
}

// WithAnthropicHTTPClient sets a custom HTTP client.
func WithAnthropicHTTPClient(client *http.Client) AnthropicOption {
	return func(b *AnthropicBackend) {
		b.httpClient = client
	}
}

// NewAnthropicBackend creates a new Anthropic backend with the given options.
func NewAnthropicBackend(opts ...AnthropicOption) *AnthropicBackend {
	b := &AnthropicBackend{
		baseURL:    DefaultAnthropicBaseURL,
		model:      DefaultAnthropicModel,
		maxTokens:  DefaultMaxTokens,
		httpClient: http.DefaultClient,
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// Name returns the backend identifier.
func (b *AnthropicBackend) Name() string {
	return "anthropic"
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system,omitempty"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Model      string `json:"model"`
	StopReason string `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
	Error *anthropicError `json:"error,omitempty"`
}

type anthropicError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Explain sends the command to the Anthropic API and parses the reply.
func (b *AnthropicBackend) Explain(ctx context.Context, request *Request) (*Explanation, error) {
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

	jsonBody, err := json.Marshal(anthropicRequest{
		Model:     model,
		MaxTokens: b.maxTokens,
		System:    SystemPrompt,
		Messages:  []anthropicMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	status, body, err := postJSON(ctx, b.httpClient, b.baseURL, map[string]string{
		"x-api-key":         b.apiKey,
		"anthropic-version": AnthropicAPIVersion,
	}, jsonBody)
	if err != nil {
		return nil, err
	}

	var apiResp anthropicResponse
	if !isSuccess(status) {
		if err := json.Unmarshal(body, &apiResp); err == nil && apiResp.Error != nil {
			return nil, fmt.Errorf("API error (%d): %s", status, apiResp.Error.Message)
		}
		return nil, fmt.Errorf("API error (%d): %s", status, string(body))
	}

	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}

	var text strings.Builder
	for _, c := range apiResp.Content {
		if c.Type == "text" {
			text.WriteString(c.Text)
		}
	}
	reply := strings.TrimSpace(text.String())
	if reply == "" {
		return nil, ErrEmptyResponse
	}

	exp := ParseExplanation(command, reply)
	exp.Model = apiResp.Model
	exp.TokensUsed = apiResp.Usage.InputTokens + apiResp.Usage.OutputTokens
	return exp, nil
}
