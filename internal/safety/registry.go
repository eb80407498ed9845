package safety

import (
	"fmt"
	"regexp"
	"slices"
	"sort"
	"strings"
)

// MockOutput pairs a compiled pattern with a canned sample output.
type MockOutput struct {
	// Priority orders evaluation; lower values are tried first. Equal
	// priorities keep the order in which they were registered.
	Priority int
	// Regex is matched against the full trimmed command.
	Regex *regexp.Regexp
	// Output is the sample.
	Output string
	// Examples are commands that produce this kind of output.
	Examples []string
}

// Registry is the read-only knowledge base consulted by Checker. Build one
// with NewRegistry at startup and share it; nothing mutates it afterwards.
// Base-command keys are stored lower-cased. Flags and paths are kept as
// given and matched case-sensitively.
type Registry struct {
	tiers            map[string]RiskLevel
	criticalWarnings map[string]string
	dangerousFlags   map[string]struct{}
	systemPaths      []string
	knownCommands    []string
	explanations     map[string]string
	alternatives     map[string][]string
	safeFlags        map[string][]string
	mockOutputs      []MockOutput
}

var defaultRegistry = mustRegistry(NewRegistry())

func mustRegistry(r *Registry, err error) *Registry {
	if err != nil {
		panic(fmt.Sprintf("safety: invalid built-in rules: %v", err))
	}
	return r
}

// DefaultRegistry returns the shared registry holding only the built-in rules.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

// NewRegistry builds a registry from the built-in rules with packs merged on
// top in order. Later packs add entries and replace same-keyed map entries.
func NewRegistry(packs ...RulePack) (*Registry, error) {
	r := &Registry{
		tiers:            make(map[string]RiskLevel),
		criticalWarnings: make(map[string]string),
		dangerousFlags:   make(map[string]struct{}),
		explanations:     make(map[string]string),
		alternatives:     make(map[string][]string),
		safeFlags:        make(map[string][]string),
	}

	if err := r.merge(builtinRules); err != nil {
		return nil, fmt.Errorf("built-in rules: %w", err)
	}
	for i, pack := range packs {
		if err := r.merge(pack); err != nil {
			return nil, fmt.Errorf("rule pack %d: %w", i+1, err)
		}
	}

	sort.SliceStable(r.mockOutputs, func(i, j int) bool {
		return r.mockOutputs[i].Priority < r.mockOutputs[j].Priority
	})

	return r, nil
}

// merge folds a pack into the registry under construction.
func (r *Registry) merge(pack RulePack) error {
	for _, name := range pack.DangerousCommands {
		key := normalizeKey(name)
		if key == "" {
			return fmt.Errorf("empty dangerous command")
		}
		r.tiers[key] = Escalate(r.tiers[key], High)
	}
	for _, name := range pack.CriticalCommands {
		key := normalizeKey(name)
		if key == "" {
			return fmt.Errorf("empty critical command")
		}
		r.tiers[key] = Critical
	}
	for name, warning := range pack.CriticalWarnings {
		r.criticalWarnings[normalizeKey(name)] = warning
	}
	for _, flag := range pack.DangerousFlags {
		if flag == "" {
			return fmt.Errorf("empty dangerous flag")
		}
		r.dangerousFlags[flag] = struct{}{}
	}
	for _, p := range pack.SystemPaths {
		if p == "" {
			return fmt.Errorf("empty system path")
		}
		if !slices.Contains(r.systemPaths, p) {
			r.systemPaths = append(r.systemPaths, p)
		}
	}
	for _, name := range pack.KnownCommands {
		if name != "" && !slices.Contains(r.knownCommands, name) {
			r.knownCommands = append(r.knownCommands, name)
		}
	}
	for name, text := range pack.Explanations {
		r.explanations[normalizeKey(name)] = text
	}
	for name, list := range pack.Alternatives {
		r.alternatives[normalizeKey(name)] = append([]string(nil), list...)
	}
	for name, list := range pack.SafeFlags {
		r.safeFlags[normalizeKey(name)] = append([]string(nil), list...)
	}
	for _, rule := range pack.MockOutputs {
		re, err := regexp.Compile(rule.Pattern)
		if err != nil {
			return fmt.Errorf("mock output pattern %q: %w", rule.Pattern, err)
		}
		if rule.Output == "" {
			return fmt.Errorf("mock output pattern %q has empty output", rule.Pattern)
		}
		r.mockOutputs = append(r.mockOutputs, MockOutput{
			Priority: rule.Priority,
			Regex:    re,
			Output:   rule.Output,
			Examples: append([]string(nil), rule.Examples...),
		})
	}
	return nil
}

// Tier returns the risk tier of a dangerous base command.
func (r *Registry) Tier(baseCommand string) (RiskLevel, bool) {
	level, ok := r.tiers[normalizeKey(baseCommand)]
	return level, ok
}

// CriticalWarning returns the extra warning for a critical base command.
func (r *Registry) CriticalWarning(baseCommand string) string {
	key := normalizeKey(baseCommand)
	if w, ok := r.criticalWarnings[key]; ok {
		return w
	}
	return fmt.Sprintf("%s command can cause irreversible damage", key)
}

// IsDangerousFlag reports whether word exactly matches a dangerous flag.
func (r *Registry) IsDangerousFlag(word string) bool {
	_, ok := r.dangerousFlags[word]
	return ok
}

// TouchesSystemPath reports whether word contains a system path prefix.
func (r *Registry) TouchesSystemPath(word string) bool {
	for _, p := range r.systemPaths {
		if strings.Contains(word, p) {
			return true
		}
	}
	return false
}

// Explanation returns the description of a base command.
func (r *Registry) Explanation(baseCommand string) (string, bool) {
	text, ok := r.explanations[normalizeKey(baseCommand)]
	return text, ok
}

// Alternatives returns a copy of the safer suggestions for a base command.
func (r *Registry) Alternatives(baseCommand string) []string {
	return cloneOrEmpty(r.alternatives[normalizeKey(baseCommand)])
}

// SafeFlags returns a copy of the safe flags for a base command.
func (r *Registry) SafeFlags(baseCommand string) []string {
	return cloneOrEmpty(r.safeFlags[normalizeKey(baseCommand)])
}

// MatchMockOutput returns the first mock output, in priority order, whose
// pattern matches command.
func (r *Registry) MatchMockOutput(command string) (MockOutput, bool) {
	for _, m := range r.mockOutputs {
		if m.Regex.MatchString(command) {
			return cloneMock(m), true
		}
	}
	return MockOutput{}, false
}

// MockOutputs returns the mock output table in evaluation order.
func (r *Registry) MockOutputs() []MockOutput {
	out := make([]MockOutput, len(r.mockOutputs))
	for i, m := range r.mockOutputs {
		out[i] = cloneMock(m)
	}
	return out
}

// DangerousCommands returns the sorted names of all dangerous base commands.
func (r *Registry) DangerousCommands() []string {
	names := make([]string, 0, len(r.tiers))
	for name := range r.tiers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SystemPaths returns a copy of the system path prefixes.
func (r *Registry) SystemPaths() []string {
	return cloneOrEmpty(r.systemPaths)
}

// KnownCommands returns the names rule packs add to the tokenizer allow-list.
func (r *Registry) KnownCommands() []string {
	return cloneOrEmpty(r.knownCommands)
}

func normalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func cloneMock(m MockOutput) MockOutput {
	m.Examples = cloneOrEmpty(m.Examples)
	return m
}

func cloneOrEmpty(list []string) []string {
	out := make([]string, len(list))
	copy(out, list)
	return out
}
