// Package history persists inspected commands to a JSON file and searches them.
package history

import (
	"slices"
	"strings"
	"time"

	"github.com/user/cmdlens/internal/explain"
	"github.com/user/cmdlens/internal/safety"
)

// Entry is one remembered command.
type Entry struct {
	ID          string                  `json:"id"`
	Command     string                  `json:"command"`
	Analysis    *safety.CommandAnalysis `json:"analysis,omitempty"`
	Explanation *explain.Explanation    `json:"explanation,omitempty"`
	CommandType string                  `json:"commandType,omitempty"`
	Complexity  string                  `json:"complexity,omitempty"`
	Timestamp   time.Time               `json:"timestamp"`
	IsFavorite  bool                    `json:"isFavorite"`
	Tags        []string                `json:"tags"`
}

// Record is the caller-supplied part of an Entry.
type Record struct {
	Command     string
	Analysis    *safety.CommandAnalysis
	Explanation *explain.Explanation
	CommandType string
	Complexity  string
}

// RiskLevel reports the stored risk level, Low when no analysis was kept.
func (e *Entry) RiskLevel() safety.RiskLevel {
	if e.Analysis == nil {
		return safety.Low
	}
	return e.Analysis.RiskLevel
}

// HasTag reports whether the entry carries tag, ignoring case.
func (e *Entry) HasTag(tag string) bool {
	return slices.ContainsFunc(e.Tags, func(t string) bool {
		return strings.EqualFold(t, tag)
	})
}

// Summary returns the explanation texts that are searched and indexed.
func (e *Entry) Summary() string {
	var parts []string
	if e.Explanation != nil && e.Explanation.OverallExplanation != "" {
		parts = append(parts, e.Explanation.OverallExplanation)
	}
	if e.Analysis != nil && e.Analysis.Explanation != "" {
		parts = append(parts, e.Analysis.Explanation)
	}
	return strings.Join(parts, " ")
}
