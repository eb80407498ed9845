package inspect

import "strings"

// Complexity is a rough measure of how involved a command line is.
type Complexity string

const (
	// Simple scores 3 or less.
	Simple Complexity = "simple"
	// Moderate scores 4 to 6.
	Moderate Complexity = "moderate"
	// Complex scores above 6.
	Complex Complexity = "complex"
)

const generalType = "general"

var commandTypes = map[string]string{
	"ls":      "file-listing",
	"find":    "search",
	"grep":    "text-search",
	"tar":     "archive",
	"git":     "version-control",
	"curl":    "network",
	"wget":    "network",
	"docker":  "container",
	"kubectl": "kubernetes",
	"ps":      "process",
	"df":      "disk-usage",
	"chmod":   "permissions",
	"chown":   "ownership",
}

// CommandType returns the category of the command's base word, or "general".
func CommandType(command string) string {
	if t, ok := commandTypes[baseWord(command)]; ok {
		return t
	}
	return generalType
}

// ComplexityOf scores a command line: one point per whitespace-separated
// word, plus two per "|" and two per "<" or ">" character.
func ComplexityOf(command string) Complexity {
	score := len(strings.Fields(command))
	score += 2 * strings.Count(command, "|")
	score += 2 * strings.Count(command, "<")
	score += 2 * strings.Count(command, ">")

	switch {
	case score <= 3:
		return Simple
	case score <= 6:
		return Moderate
	default:
		return Complex
	}
}
