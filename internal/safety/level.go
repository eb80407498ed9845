// Package safety provides deterministic risk assessment for shell commands.
package safety

import (
	"errors"
	"fmt"
	"strings"
)

// RiskLevel represents the severity of a command's potential harm.
// Levels are ordered: Low < Medium < High < Critical.
type RiskLevel int

const (
	// Low indicates no rule fired.
	Low RiskLevel = iota
	// Medium indicates a flag that may bypass confirmations or safeguards.
	Medium
	// High indicates a command that can modify system files or settings.
	High
	// Critical indicates a command that can destroy data irreversibly.
	Critical
)

// ErrInvalidRiskLevel is returned when a risk level string cannot be parsed.
var ErrInvalidRiskLevel = errors.New("invalid risk level")

// String returns the string representation of the risk level.
func (r RiskLevel) String() string {
	switch r {
	case Low:
		return "low"
	case Medium:
		return "medium"
	case High:
		return "high"
	case Critical:
		return "critical"
	default:
		return "unknown"
	}
}

// ParseRiskLevel converts a case-insensitive level name into a RiskLevel.
func ParseRiskLevel(s string) (RiskLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return Low, nil
	case "medium":
		return Medium, nil
	case "high":
		return High, nil
	case "critical":
		return Critical, nil
	default:
		return Low, fmt.Errorf("%w: %q (must be low, medium, high or critical)", ErrInvalidRiskLevel, s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (r RiskLevel) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *RiskLevel) UnmarshalText(text []byte) error {
	level, err := ParseRiskLevel(string(text))
	if err != nil {
		return err
	}
	*r = level
	return nil
}

// Escalate returns the higher of the two levels. Rules merge through it so a
// later rule can raise the level but never lower it.
func Escalate(current, candidate RiskLevel) RiskLevel {
	if candidate > current {
		return candidate
	}
	return current
}
