// Package explain asks a language model for a part-by-part explanation of a
// shell command. It is the optional online companion to the offline lexer
// and safety packages, which never depend on it.
package explain

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"text/template"
)

// Common errors returned by backends.
var (
	// ErrNoAPIKey is returned when no API key is configured for a backend.
	ErrNoAPIKey = errors.New("no API key configured")

	// ErrEmptyCommand is returned when the command to explain is empty.
	ErrEmptyCommand = errors.New("empty command")

	// ErrEmptyResponse is returned when the model returns no text.
	ErrEmptyResponse = errors.New("empty response from model")
)

// DefaultMaxTokens is the default maximum tokens for a reply. Explanations
// carry several parts and examples, so this is larger than a one-liner needs.
const DefaultMaxTokens = 1500

// Explainer is implemented by every model backend.
type Explainer interface {
	// Explain returns a structured explanation of request.Command.
	// The context should be used for cancellation and timeouts.
	Explain(ctx context.Context, request *Request) (*Explanation, error)

	// Name returns the backend identifier for logging.
	Name() string
}

// Request contains the input for an explanation.
type Request struct {
	// Command is the shell command to explain.
	Command string

	// Context provides optional shell context (pwd, shell type, OS).
	// May be nil if context is not available or disabled.
	Context *ShellContext

	// Model overrides the backend's default model when set.
	Model string
}

// ShellContext describes the user's shell environment.
type ShellContext struct {
	WorkingDir string
	Shell      string
	OS         string
}

// Explanation is the structured reply of the explain service.
type Explanation struct {
	Parts              []Part    `json:"parts" yaml:"parts"`
	OverallExplanation string    `json:"overall_explanation" yaml:"overall_explanation"`
	SafetyNotes        string    `json:"safety_notes" yaml:"safety_notes"`
	Examples           []Example `json:"examples" yaml:"examples"`

	// Model and TokensUsed describe the call, not the command.
	Model      string `json:"model,omitempty" yaml:"model,omitempty"`
	TokensUsed int    `json:"tokens_used,omitempty" yaml:"tokens_used,omitempty"`
}

// Part explains one token of the command.
type Part struct {
	Text        string `json:"text" yaml:"text"`
	Type        string `json:"type" yaml:"type"`
	Explanation string `json:"explanation" yaml:"explanation"`
	ManPage     string `json:"manPage,omitempty" yaml:"manPage,omitempty"`
}

// Example is a related command with a short description.
type Example struct {
	Command     string `json:"command" yaml:"command"`
	Description string `json:"description" yaml:"description"`
}

// SystemPrompt is shared by all backends.
const SystemPrompt = "You are an expert system administrator and shell command educator. " +
	"Provide accurate, detailed explanations of shell commands with proper safety warnings. " +
	"Always respond with valid JSON format only."

// userPromptTemplate is rendered with the command and optional shell context.
const userPromptTemplate = `Analyze this shell command and provide a detailed breakdown: "{{.Command}}"
{{with .Context}}
The user runs {{.Shell}} on {{.OS}} in {{.WorkingDir}}.
{{end}}
Please respond with a JSON object containing:
1. "parts" - an array of command parts, each with:
   - "text": the actual text/token
   - "type": one of "command", "option", "argument", "operator", "pipe", "redirect"
   - "explanation": detailed explanation of what this part does
   - "manPage": (optional) the command name for manual page reference

2. "overall_explanation": a comprehensive explanation of what the entire command does
3. "safety_notes": any important safety warnings or considerations
4. "examples": 2-3 similar example commands, each with "command" and "description"

Focus on accuracy and educational value. If the command contains potentially dangerous operations, clearly warn about them.

Respond ONLY with valid JSON, no markdown formatting.`

var userPrompt = template.Must(template.New("user").Parse(userPromptTemplate))

// buildUserPrompt renders the prompt for a request.
func buildUserPrompt(request *Request) (string, error) {
	var buf bytes.Buffer
	if err := userPrompt.Execute(&buf, request); err != nil {
		return "", fmt.Errorf("executing template: %w", err)
	}
	return buf.String(), nil
}

// postJSON sends body to url and returns the response status and payload.
// Transport failures caused by ctx are reported with the context error wrapped.
func postJSON(ctx context.Context, client *http.Client, url string, headers map[string]string, body []byte) (int, []byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, nil, fmt.Errorf("creating request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return 0, nil, fmt.Errorf("request timeout: %w", context.DeadlineExceeded)
		}
		if errors.Is(ctx.Err(), context.Canceled) {
			return 0, nil, fmt.Errorf("request canceled: %w", context.Canceled)
		}
		return 0, nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("reading response: %w", err)
	}
	return resp.StatusCode, payload, nil
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}
