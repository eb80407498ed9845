package explain

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

const sampleReply = `{
  "parts": [
    {"text": "ls", "type": "command", "explanation": "list directory contents", "manPage": "ls"},
    {"text": "-la", "type": "option", "explanation": "long format, include hidden files"}
  ],
  "overall_explanation": "Lists all files in long format.",
  "safety_notes": "Read-only.",
  "examples": [{"command": "ls -lh", "description": "human readable sizes"}]
}`

func anthropicHandler(t *testing.T, text string, check func(anthropicRequest)) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		var reqBody anthropicRequest
		if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
			t.Errorf("failed to decode request body: %v", err)
		}
		if check != nil {
			check(reqBody)
		}
		resp := anthropicResponse{Model: reqBody.Model}
		resp.Content = append(resp.Content, struct {
			Type string `json:"type"`
			Text string `json:"text"`
		}{Type: "text", Text: text})
		resp.Usage.InputTokens = 40
		resp.Usage.OutputTokens = 60
		json.NewEncoder(w).Encode(resp)
	}
}

func chatHandler(t *testing.T, text string, check func(*http.Request, chatRequest)) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		var reqBody chatRequest
		if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
			t.Errorf("failed to decode request body: %v", err)
		}
		if check != nil {
			check(r, reqBody)
		}
		resp := chatResponse{Model: reqBody.Model}
		resp.Choices = append(resp.Choices, struct {
			Index   int         `json:"index"`
			Message chatMessage `json:"message"`
		}{Message: chatMessage{Role: "assistant", Content: text}})
		resp.Usage.TotalTokens = 77
		json.NewEncoder(w).Encode(resp)
	}
}

// =============================================================================
// Anthropic Backend Tests
// =============================================================================

func TestAnthropicBackend_Name(t *testing.T) {
	if got := NewAnthropicBackend().Name(); got != "anthropic" {
		t.Errorf("Name() = %q, want %q", got, "anthropic")
	}
}

func TestAnthropicBackend_Explain_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if got := r.Header.Get("x-api-key"); got != "test-api-key" {
			t.Errorf("expected x-api-key header, got %q", got)
		}
		if got := r.Header.Get("anthropic-version"); got != AnthropicAPIVersion {
			t.Errorf("expected anthropic-version header, got %q", got)
		}
		anthropicHandler(t, sampleReply, func(req anthropicRequest) {
			if req.System != SystemPrompt {
				t.Errorf("unexpected system prompt %q", req.System)
			}
			if req.MaxTokens != DefaultMaxTokens {
				t.Errorf("expected max_tokens %d, got %d", DefaultMaxTokens, req.MaxTokens)
			}
			if len(req.Messages) != 1 || !strings.Contains(req.Messages[0].Content, `"ls -la"`) {
				t.Errorf("expected quoted command in user message, got %+v", req.Messages)
			}
		})(w, r)
	}))
	defer server.Close()

	b := NewAnthropicBackend(
		WithAnthropicAPIKey("test-api-key"),
		WithAnthropicBaseURL(server.URL),
	)

	exp, err := b.Explain(context.Background(), &Request{Command: "  ls -la  "})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(exp.Parts) != 2 || exp.Parts[0].ManPage != "ls" {
		t.Errorf("unexpected parts: %+v", exp.Parts)
	}
	if exp.OverallExplanation != "Lists all files in long format." {
		t.Errorf("OverallExplanation = %q", exp.OverallExplanation)
	}
	if exp.Model != DefaultAnthropicModel {
		t.Errorf("Model = %q, want %q", exp.Model, DefaultAnthropicModel)
	}
	if exp.TokensUsed != 100 {
		t.Errorf("TokensUsed = %d, want 100", exp.TokensUsed)
	}
}

func TestAnthropicBackend_Explain_WithContext(t *testing.T) {
	server := httptest.NewServer(anthropicHandler(t, sampleReply, func(req anthropicRequest) {
		prompt := req.Messages[0].Content
		for _, want := range []string{"/home/user", "zsh", "darwin"} {
			if !strings.Contains(prompt, want) {
				t.Errorf("expected %q in prompt, got %q", want, prompt)
			}
		}
	}))
	defer server.Close()

	b := NewAnthropicBackend(WithAnthropicAPIKey("k"), WithAnthropicBaseURL(server.URL))
	_, err := b.Explain(context.Background(), &Request{
		Command: "pwd",
		Context: &ShellContext{WorkingDir: "/home/user", Shell: "zsh", OS: "darwin"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAnthropicBackend_Explain_ModelOverride(t *testing.T) {
	server := httptest.NewServer(anthropicHandler(t, sampleReply, func(req anthropicRequest) {
		if req.Model != "claude-sonnet-4-5" {
			t.Errorf("expected overridden model, got %s", req.Model)
		}
	}))
	defer server.Close()

	b := NewAnthropicBackend(WithAnthropicAPIKey("k"), WithAnthropicBaseURL(server.URL))
	if _, err := b.Explain(context.Background(), &Request{Command: "ls", Model: "claude-sonnet-4-5"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAnthropicBackend_Explain_InputErrors(t *testing.T) {
	if _, err := NewAnthropicBackend().Explain(context.Background(), &Request{Command: "ls"}); !errors.Is(err, ErrNoAPIKey) {
		t.Errorf("expected ErrNoAPIKey, got %v", err)
	}
	b := NewAnthropicBackend(WithAnthropicAPIKey("k"))
	if _, err := b.Explain(context.Background(), &Request{Command: "   "}); !errors.Is(err, ErrEmptyCommand) {
		t.Errorf("expected ErrEmptyCommand, got %v", err)
	}
}

func TestAnthropicBackend_Explain_EmptyResponse(t *testing.T) {
	server := httptest.NewServer(anthropicHandler(t, "  \n ", nil))
	defer server.Close()

	b := NewAnthropicBackend(WithAnthropicAPIKey("k"), WithAnthropicBaseURL(server.URL))
	if _, err := b.Explain(context.Background(), &Request{Command: "ls"}); !errors.Is(err, ErrEmptyResponse) {
		t.Errorf("expected ErrEmptyResponse, got %v", err)
	}
}

func TestAnthropicBackend_Explain_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		json.NewEncoder(w).Encode(anthropicResponse{})
	}))
	defer server.Close()

	b := NewAnthropicBackend(WithAnthropicAPIKey("k"), WithAnthropicBaseURL(server.URL))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if _, err := b.Explain(ctx, &Request{Command: "ls"}); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected context.DeadlineExceeded, got %v", err)
	}
}

func TestAnthropicBackend_Explain_APIError(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		response   string
		wantErr    string
	}{
		{
			name:       "401 Unauthorized",
			statusCode: 401,
			response:   `{"error":{"type":"authentication_error","message":"Invalid API key"}}`,
			wantErr:    "API error (401): Invalid API key",
		},
		{
			name:       "429 Rate Limited",
			statusCode: 429,
			response:   `{"error":{"type":"rate_limit_error","message":"Rate limit exceeded"}}`,
			wantErr:    "API error (429): Rate limit exceeded",
		},
		{
			name:       "Malformed error response",
			statusCode: 400,
			response:   `not json`,
			wantErr:    "API error (400): not json",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.statusCode)
				w.Write([]byte(tt.response))
			}))
			defer server.Close()

			b := NewAnthropicBackend(WithAnthropicAPIKey("k"), WithAnthropicBaseURL(server.URL))
			_, err := b.Explain(context.Background(), &Request{Command: "ls"})
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %q", tt.wantErr, err.Error())
			}
		})
	}
}

// =============================================================================
// Chat Backend Tests
// =============================================================================

func TestChatBackend_Presets(t *testing.T) {
	tests := []struct {
		backend *ChatBackend
		name    string
		baseURL string
		model   string
	}{
		{NewOpenAIBackend(), "openai", DefaultOpenAIBaseURL, DefaultOpenAIModel},
		{NewGroqBackend(), "groq", DefaultGroqBaseURL, DefaultGroqModel},
		{NewOpenRouterBackend(), "openrouter", DefaultOpenRouterBaseURL, DefaultOpenRouterModel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.backend.Name(); got != tt.name {
				t.Errorf("Name() = %q, want %q", got, tt.name)
			}
			if tt.backend.baseURL != tt.baseURL {
				t.Errorf("baseURL = %q, want %q", tt.backend.baseURL, tt.baseURL)
			}
			if tt.backend.model != tt.model {
				t.Errorf("model = %q, want %q", tt.backend.model, tt.model)
			}
		})
	}
}

func TestChatBackend_Explain_Success(t *testing.T) {
	server := httptest.NewServer(chatHandler(t, "```json\n"+sampleReply+"\n```", func(r *http.Request, req chatRequest) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-api-key" {
			t.Errorf("expected bearer auth, got %q", got)
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" || req.Messages[1].Role != "user" {
			t.Errorf("expected system and user messages, got %+v", req.Messages)
		}
		if req.Temperature != chatTemperature {
			t.Errorf("temperature = %v, want %v", req.Temperature, chatTemperature)
		}
	}))
	defer server.Close()

	b := NewGroqBackend(WithAPIKey("test-api-key"), WithBaseURL(server.URL))
	exp, err := b.Explain(context.Background(), &Request{Command: "ls -la"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(exp.Parts) != 2 {
		t.Errorf("expected 2 parts, got %+v", exp.Parts)
	}
	if exp.Model != DefaultGroqModel {
		t.Errorf("Model = %q, want %q", exp.Model, DefaultGroqModel)
	}
	if exp.TokensUsed != 77 {
		t.Errorf("TokensUsed = %d, want 77", exp.TokensUsed)
	}
}

func TestChatBackend_OpenRouterHeaders(t *testing.T) {
	server := httptest.NewServer(chatHandler(t, sampleReply, func(r *http.Request, _ chatRequest) {
		if got := r.Header.Get("HTTP-Referer"); got != "https://example.com" {
			t.Errorf("HTTP-Referer = %q", got)
		}
		if got := r.Header.Get("X-Title"); got != DefaultXTitle {
			t.Errorf("X-Title = %q", got)
		}
	}))
	defer server.Close()

	b := NewOpenRouterBackend(
		WithAPIKey("k"),
		WithBaseURL(server.URL),
		WithHeader("HTTP-Referer", "https://example.com"),
	)
	if _, err := b.Explain(context.Background(), &Request{Command: "ls"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestChatBackend_Explain_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(chatResponse{})
	}))
	defer server.Close()

	b := NewOpenAIBackend(WithAPIKey("k"), WithBaseURL(server.URL))
	if _, err := b.Explain(context.Background(), &Request{Command: "ls"}); !errors.Is(err, ErrEmptyResponse) {
		t.Errorf("expected ErrEmptyResponse, got %v", err)
	}
}

func TestChatBackend_Explain_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"Incorrect API key provided","type":"invalid_request_error"}}`))
	}))
	defer server.Close()

	b := NewOpenAIBackend(WithAPIKey("k"), WithBaseURL(server.URL))
	_, err := b.Explain(context.Background(), &Request{Command: "ls"})
	if err == nil || !strings.Contains(err.Error(), "API error (401): Incorrect API key provided") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestChatBackend_ContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
		json.NewEncoder(w).Encode(chatResponse{})
	}))
	defer server.Close()

	b := NewOpenAIBackend(WithAPIKey("k"), WithBaseURL(server.URL))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	if _, err := b.Explain(ctx, &Request{Command: "ls"}); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestBackendInterfaceCompliance(t *testing.T) {
	var _ Explainer = (*AnthropicBackend)(nil)
	var _ Explainer = (*ChatBackend)(nil)
}

// =============================================================================
// Reply Parsing Tests
// =============================================================================

func TestParseExplanation(t *testing.T) {
	tests := []struct {
		name        string
		reply       string
		wantParts   int
		wantOverall string
		wantNotes   string
	}{
		{
			name:        "plain json",
			reply:       sampleReply,
			wantParts:   2,
			wantOverall: "Lists all files in long format.",
			wantNotes:   "Read-only.",
		},
		{
			name:        "fenced with prose",
			reply:       "Here you go:\n```json\n" + sampleReply + "\n```\nHope it helps.",
			wantParts:   2,
			wantOverall: "Lists all files in long format.",
			wantNotes:   "Read-only.",
		},
		{
			name:        "not json",
			reply:       "ls lists files.",
			wantParts:   1,
			wantOverall: "ls lists files.",
			wantNotes:   fallbackSafetyNote,
		},
		{
			name:        "empty object",
			reply:       "{}",
			wantParts:   1,
			wantOverall: "{}",
			wantNotes:   fallbackSafetyNote,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exp := ParseExplanation("ls -la", tt.reply)
			if len(exp.Parts) != tt.wantParts {
				t.Errorf("len(Parts) = %d, want %d", len(exp.Parts), tt.wantParts)
			}
			if exp.OverallExplanation != tt.wantOverall {
				t.Errorf("OverallExplanation = %q, want %q", exp.OverallExplanation, tt.wantOverall)
			}
			if exp.SafetyNotes != tt.wantNotes {
				t.Errorf("SafetyNotes = %q, want %q", exp.SafetyNotes, tt.wantNotes)
			}
			if exp.Examples == nil {
				t.Error("Examples should never be nil")
			}
		})
	}
}

func TestParseExplanation_FallbackPart(t *testing.T) {
	exp := ParseExplanation("tar xzf a.tgz", "garbage")
	if exp.Parts[0].Text != "tar xzf a.tgz" || exp.Parts[0].Type != "command" {
		t.Errorf("unexpected fallback part: %+v", exp.Parts[0])
	}
}
