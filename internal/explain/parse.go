package explain

import (
	"encoding/json"
	"strings"

	"github.com/user/cmdlens/internal/sanitize"
)

const (
	fallbackPartText   = "Failed to parse detailed explanation. The command appears to be a shell command."
	fallbackSafetyNote = "Please verify command safety before execution."
)

// ParseExplanation decodes a model reply. A reply that is not the expected
// JSON object still yields a usable Explanation: one part covering the whole
// command, the raw reply as the overall explanation, and a generic note.
func ParseExplanation(command, reply string) *Explanation {
	var exp Explanation
	if err := json.Unmarshal([]byte(sanitize.Reply(reply)), &exp); err != nil || isBlank(&exp) {
		return &Explanation{
			Parts: []Part{{
				Text:        command,
				Type:        "command",
				Explanation: fallbackPartText,
			}},
			OverallExplanation: strings.TrimSpace(reply),
			SafetyNotes:        fallbackSafetyNote,
			Examples:           []Example{},
		}
	}

	if exp.Parts == nil {
		exp.Parts = []Part{}
	}
	if exp.Examples == nil {
		exp.Examples = []Example{}
	}
	return &exp
}

func isBlank(e *Explanation) bool {
	return len(e.Parts) == 0 && e.OverallExplanation == "" && e.SafetyNotes == "" && len(e.Examples) == 0
}
