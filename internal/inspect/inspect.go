// Package inspect combines tokenizing and risk assessment of one command line.
package inspect

import (
	"strings"
	"sync"

	"github.com/user/cmdlens/internal/lexer"
	"github.com/user/cmdlens/internal/safety"
)

// Report bundles everything cmdlens knows about a command line.
type Report struct {
	// Input is the raw command as given.
	Input string `json:"input" yaml:"input"`
	// Tokens is the lossless decomposition of Input.
	Tokens []lexer.Token `json:"tokens" yaml:"tokens"`
	// Analysis is the safety verdict.
	Analysis safety.CommandAnalysis `json:"analysis" yaml:"analysis"`
	// CommandType is a coarse category of the base command.
	CommandType string `json:"commandType" yaml:"commandType"`
	// Complexity is simple, moderate or complex.
	Complexity Complexity `json:"complexity" yaml:"complexity"`
}

// Inspector exposes Tokenize and Assess over one shared registry.
type Inspector struct {
	tokenizer *lexer.Tokenizer
	checker   *safety.Checker

	cache *sync.Map // raw input -> Report; nil when memoization is off
}

// Option configures an Inspector.
type Option func(*Inspector)

// WithMemoization caches reports keyed by the raw input string.
func WithMemoization() Option {
	return func(in *Inspector) {
		in.cache = &sync.Map{}
	}
}

// New creates an Inspector. The tokenizer's allow-list is the default
// known-command set plus any names the registry adds.
func New(registry *safety.Registry, opts ...Option) *Inspector {
	if registry == nil {
		registry = safety.DefaultRegistry()
	}
	in := &Inspector{
		tokenizer: lexer.New(lexer.WithExtraCommands(registry.KnownCommands()...)),
		checker:   safety.NewCheckerWithRegistry(registry),
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// Tokenize decomposes command into classified tokens.
func (in *Inspector) Tokenize(command string) []lexer.Token {
	return in.tokenizer.Tokenize(command)
}

// Assess returns the safety verdict for command.
func (in *Inspector) Assess(command string) safety.CommandAnalysis {
	return in.checker.Assess(command)
}

// Inspect tokenizes and assesses command in one call.
func (in *Inspector) Inspect(command string) Report {
	if in.cache != nil {
		if cached, ok := in.cache.Load(command); ok {
			return cloneReport(cached.(Report))
		}
	}

	tokens := in.tokenizer.Tokenize(command)
	report := Report{
		Input:       command,
		Tokens:      tokens,
		Analysis:    in.checker.Assess(command),
		CommandType: CommandType(command),
		Complexity:  ComplexityOf(command),
	}
	if report.Tokens == nil {
		report.Tokens = []lexer.Token{}
	}

	if in.cache != nil {
		in.cache.Store(command, cloneReport(report))
	}
	return report
}

// cloneReport copies the slices so callers cannot alter cached entries.
func cloneReport(r Report) Report {
	r.Tokens = append([]lexer.Token{}, r.Tokens...)
	a := r.Analysis
	a.Warnings = append([]string{}, a.Warnings...)
	a.Alternatives = append([]string{}, a.Alternatives...)
	a.SafeFlags = append([]string{}, a.SafeFlags...)
	r.Analysis = a
	return r
}

// baseWord returns the lower-cased first word of command.
func baseWord(command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToLower(fields[0])
}
