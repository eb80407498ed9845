package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/user/cmdlens/internal/config"
	"github.com/user/cmdlens/internal/explain"
	"github.com/user/cmdlens/internal/shellctx"
)

type explainOptions struct {
	inputOptions
	backend   string
	model     string
	noContext bool
}

func newExplainCmd(a *app) *cobra.Command {
	var opts explainOptions

	cmd := &cobra.Command{
		Use:   "explain [command]",
		Short: "Ask an LLM backend for a part-by-part explanation",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runExplain(cmd.Context(), args, opts)
		},
	}

	opts.inputOptions.bind(cmd)
	cmd.Flags().StringVar(&opts.backend, "backend", "", "Override backend ("+strings.Join(config.Backends, "|")+")")
	cmd.Flags().StringVar(&opts.model, "model", "", "Override model")
	cmd.Flags().BoolVar(&opts.noContext, "no-context", false, "Do not send working dir, shell and OS")
	return cmd
}

func (a *app) runExplain(ctx context.Context, args []string, opts explainOptions) error {
	command, err := a.readCommand(ctx, args, opts.inputOptions)
	if err != nil {
		return err
	}

	backendName := a.cfg.Backend
	if opts.backend != "" {
		backendName = opts.backend
	}

	modelName := a.cfg.GetModel(backendName)
	if opts.model != "" {
		modelName = opts.model
	}

	be, err := a.newExplainer(backendName, a.cfg)
	if err != nil {
		return userError(err)
	}

	var shellContext *explain.ShellContext
	if a.cfg.IncludeContext && !opts.noContext {
		shellContext = shellctx.GatherContext()
	}

	ctx, cancel := context.WithTimeout(ctx, a.cfg.Timeout())
	defer cancel()

	a.logger.Debug("requesting explanation", "backend", be.Name(), "model", modelName)

	exp, err := be.Explain(ctx, &explain.Request{
		Command: command,
		Context: shellContext,
		Model:   modelName,
	})
	if err != nil {
		return explainError(backendName, err)
	}

	a.logger.Debug("explanation received", "tokens_used", exp.TokensUsed)

	report := a.inspector.Inspect(command)
	if err := a.printer.Explanation(exp); err != nil {
		return writeErr(err)
	}

	rec := recordFor(report)
	rec.Explanation = exp
	a.record(rec)

	return a.verdict(report.Analysis)
}

// explainError maps backend failures to exit codes and hints.
func explainError(backendName string, err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return systemError(errors.New("request timed out"))
	case errors.Is(err, context.Canceled):
		return systemError(errors.New("request canceled"))
	case errors.Is(err, explain.ErrNoAPIKey):
		return userError(fmt.Errorf("no API key configured for backend %q (set %s_API_KEY or add api_key to config)",
			backendName, strings.ToUpper(backendName)))
	default:
		return systemError(fmt.Errorf("API error: %w", err))
	}
}

// createExplainer creates an LLM backend based on the backend name.
func createExplainer(name string, cfg *config.Config) (explain.Explainer, error) {
	maxTokens := cfg.Advanced.MaxTokens

	switch name {
	case "anthropic":
		return explain.NewAnthropicBackend(
			explain.WithAnthropicAPIKey(cfg.Anthropic.APIKey),
			explain.WithAnthropicModel(cfg.Anthropic.Model),
			explain.WithAnthropicMaxTokens(maxTokens),
		), nil

	case "openai":
		return explain.NewOpenAIBackend(
			explain.WithAPIKey(cfg.OpenAI.APIKey),
			explain.WithModel(cfg.OpenAI.Model),
			explain.WithMaxTokens(maxTokens),
		), nil

	case "groq":
		return explain.NewGroqBackend(
			explain.WithAPIKey(cfg.Groq.APIKey),
			explain.WithModel(cfg.Groq.Model),
			explain.WithMaxTokens(maxTokens),
		), nil

	case "openrouter":
		return explain.NewOpenRouterBackend(
			explain.WithAPIKey(cfg.OpenRouter.APIKey),
			explain.WithModel(cfg.OpenRouter.Model),
			explain.WithMaxTokens(maxTokens),
		), nil

	default:
		return nil, fmt.Errorf("unknown backend: %s (valid: %s)", name, strings.Join(config.Backends, ", "))
	}
}
