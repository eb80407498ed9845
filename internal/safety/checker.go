package safety

import (
	"fmt"
	"strings"
)

const (
	emptyExplanation   = "Empty command."
	genericExplanation = "Standard system command for file and process operations"
	wildcardWarning    = "Wildcard patterns may match more files than expected"
	systemPathWarning  = "Command affects system directories"
)

// Checker assesses shell commands against a Registry. It keeps no state
// between calls and is safe for concurrent use.
type Checker struct {
	registry *Registry
}

// NewChecker creates a Checker backed by the built-in rules.
func NewChecker() *Checker {
	return &Checker{registry: DefaultRegistry()}
}

// NewCheckerWithRegistry creates a Checker backed by the given registry.
func NewCheckerWithRegistry(r *Registry) *Checker {
	if r == nil {
		r = DefaultRegistry()
	}
	return &Checker{registry: r}
}

// Registry returns the registry the checker consults.
func (c *Checker) Registry() *Registry {
	return c.registry
}

// Assess analyzes a command and returns its safety verdict. It never fails:
// input that matches no rule is Low risk with no warnings.
//
// Rules are applied in order and only ever raise the level:
//  1. dangerous base command (High, or the command's Critical tier)
//  2. dangerous flags, one warning per occurrence (Medium)
//  3. wildcards (informational)
//  4. system paths (informational)
func (c *Checker) Assess(command string) CommandAnalysis {
	trimmed := strings.TrimSpace(command)
	if trimmed == "" {
		return CommandAnalysis{
			Command:      "",
			IsSafe:       true,
			RiskLevel:    Low,
			Warnings:     []string{},
			Explanation:  emptyExplanation,
			Alternatives: []string{},
			SafeFlags:    []string{},
		}
	}

	words := strings.Fields(trimmed)
	base := strings.ToLower(words[0])

	result := CommandAnalysis{
		Command:   trimmed,
		IsSafe:    true,
		RiskLevel: Low,
		Warnings:  []string{},
	}

	if tier, ok := c.registry.Tier(base); ok {
		result.IsSafe = false
		result.RiskLevel = Escalate(result.RiskLevel, High)
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("'%s' can modify system files or settings", base))

		if tier == Critical {
			result.RiskLevel = Escalate(result.RiskLevel, Critical)
			result.Warnings = append(result.Warnings, c.registry.CriticalWarning(base))
		}
	}

	for _, word := range words {
		if c.registry.IsDangerousFlag(word) {
			result.IsSafe = false
			result.RiskLevel = Escalate(result.RiskLevel, Medium)
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("Flag '%s' may bypass safety checks", word))
		}
	}

	if anyWord(words, hasWildcard) {
		result.Warnings = append(result.Warnings, wildcardWarning)
	}

	if anyWord(words, c.registry.TouchesSystemPath) {
		result.Warnings = append(result.Warnings, systemPathWarning)
	}

	if m, ok := c.registry.MatchMockOutput(trimmed); ok {
		result.MockOutput = m.Output
	}

	result.Explanation = c.explain(base, result.IsSafe)
	result.Alternatives = c.registry.Alternatives(base)
	result.SafeFlags = c.registry.SafeFlags(base)

	return result
}

// IsSafe reports whether Assess would mark the command safe.
func (c *Checker) IsSafe(command string) bool {
	return c.Assess(command).IsSafe
}

// Warnings returns the warnings Assess would produce for the command.
func (c *Checker) Warnings(command string) []string {
	return c.Assess(command).Warnings
}

// explain picks the explanation text for a base command.
func (c *Checker) explain(base string, isSafe bool) string {
	if !isSafe {
		return fmt.Sprintf("This command (%s) has potential risks. "+
			"Consider using safer alternatives or testing in a controlled environment.", base)
	}
	if text, ok := c.registry.Explanation(base); ok {
		return text
	}
	return genericExplanation
}

var defaultChecker = NewChecker()

// Assess analyzes a command with the built-in rules.
func Assess(command string) CommandAnalysis {
	return defaultChecker.Assess(command)
}

func hasWildcard(word string) bool {
	return strings.ContainsAny(word, "*?")
}

func anyWord(words []string, pred func(string) bool) bool {
	for _, w := range words {
		if pred(w) {
			return true
		}
	}
	return false
}
