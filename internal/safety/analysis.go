package safety

// CommandAnalysis is the verdict produced by Assess. Slices are never nil so
// serialized output always carries empty lists rather than nulls.
type CommandAnalysis struct {
	// Command is the trimmed input.
	Command string `json:"command" yaml:"command"`
	// IsSafe is false when a dangerous command or flag was found.
	IsSafe bool `json:"isSafe" yaml:"isSafe"`
	// RiskLevel is the highest level raised by any rule.
	RiskLevel RiskLevel `json:"riskLevel" yaml:"riskLevel"`
	// Warnings are in rule order: command, flags, wildcard, system paths.
	Warnings []string `json:"warnings" yaml:"warnings"`
	// MockOutput is a canned sample of the output; empty when no pattern matched.
	MockOutput string `json:"mockOutput,omitempty" yaml:"mockOutput,omitempty"`
	// Explanation describes the base command or cautions about it.
	Explanation string `json:"explanation" yaml:"explanation"`
	// Alternatives are safer ways to achieve the same result.
	Alternatives []string `json:"alternatives" yaml:"alternatives"`
	// SafeFlags are commonly used flags that are harmless for the base command.
	SafeFlags []string `json:"safeFlags" yaml:"safeFlags"`
}

// HasMockOutput reports whether a mock output pattern matched.
func (a CommandAnalysis) HasMockOutput() bool {
	return a.MockOutput != ""
}
