// Package sanitize strips presentation noise from pasted commands and model replies.
package sanitize

import (
	"regexp"
	"strings"
)

// codeFenceRegex matches a markdown code fence with an optional language tag.
var codeFenceRegex = regexp.MustCompile("(?s)^\\s*```[a-zA-Z0-9_-]*\\n?(.*?)\\n?```\\s*$")

// inlineBacktickRegex matches content wrapped in single backticks.
var inlineBacktickRegex = regexp.MustCompile("^`([^`]+)`$")

// promptPrefixRegex matches a leading shell prompt ("$ " or "# ") copied from docs.
var promptPrefixRegex = regexp.MustCompile(`^[$#]\s+`)

// firstBacktickRegex finds the first backtick-quoted span in prose.
var firstBacktickRegex = regexp.MustCompile("`([^`]+)`")

// Command cleans a command pasted from documentation or chat so it can be
// inspected as typed:
//  1. remove a surrounding markdown code fence
//  2. remove inline backticks wrapping the whole text
//  3. drop leading and trailing blank lines
//  4. remove a "$ " or "# " prompt on the first line
//  5. trim outer whitespace, keeping inner lines and indentation
func Command(raw string) string {
	result := stripFence(raw)

	if m := inlineBacktickRegex.FindStringSubmatch(strings.TrimSpace(result)); m != nil {
		result = m[1]
	}

	lines := trimBlankLines(strings.Split(result, "\n"))
	if len(lines) == 0 {
		return ""
	}

	lines[0] = promptPrefixRegex.ReplaceAllString(strings.TrimLeft(lines[0], " \t"), "")
	last := len(lines) - 1
	lines[last] = strings.TrimRight(lines[last], " \t\r")

	return strings.Join(lines, "\n")
}

// Reply extracts the JSON document from a model reply. Models often wrap
// JSON in a ```json fence or surround it with a sentence; both are removed.
// If no object braces are present the fence-stripped text is returned.
func Reply(raw string) string {
	result := strings.TrimSpace(stripFence(raw))

	start := strings.Index(result, "{")
	end := strings.LastIndex(result, "}")
	if start >= 0 && end > start {
		return result[start : end+1]
	}
	return result
}

// SuggestedCommand returns the first backtick-quoted command in a suggestion
// such as "Use trash-cli: `trash-put filename` (moves to trash)".
func SuggestedCommand(suggestion string) (string, bool) {
	m := firstBacktickRegex.FindStringSubmatch(suggestion)
	if m == nil {
		return "", false
	}
	cmd := strings.TrimSpace(m[1])
	return cmd, cmd != ""
}

func stripFence(s string) string {
	if m := codeFenceRegex.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return s
}

// trimBlankLines drops blank lines at both ends.
func trimBlankLines(lines []string) []string {
	first := -1
	for i, line := range lines {
		if strings.TrimSpace(line) != "" {
			first = i
			break
		}
	}
	if first == -1 {
		return nil
	}

	last := first
	for i := len(lines) - 1; i >= first; i-- {
		if strings.TrimSpace(lines[i]) != "" {
			last = i
			break
		}
	}
	return lines[first : last+1]
}
