package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/user/cmdlens/internal/lexer"
	"github.com/user/cmdlens/internal/safety"
)

// ColorMode controls ANSI coloring of text output.
type ColorMode int

const (
	// ColorAuto colors only when writing to a terminal and NO_COLOR is unset.
	ColorAuto ColorMode = iota
	// ColorAlways always colors.
	ColorAlways
	// ColorNever never colors.
	ColorNever
)

// String returns the string representation of the color mode.
func (m ColorMode) String() string {
	switch m {
	case ColorAuto:
		return "auto"
	case ColorAlways:
		return "always"
	case ColorNever:
		return "never"
	default:
		return "unknown"
	}
}

// ParseColorMode parses a string into a ColorMode.
// Returns ColorAuto for empty string.
func ParseColorMode(s string) (ColorMode, error) {
	switch s {
	case "auto", "":
		return ColorAuto, nil
	case "always":
		return ColorAlways, nil
	case "never":
		return ColorNever, nil
	default:
		return ColorAuto, fmt.Errorf("%w: %q (must be auto, always, or never)", ErrInvalidColor, s)
	}
}

// isTerminal can be overridden for testing.
var isTerminal = func(fd int) bool { return term.IsTerminal(fd) }

// UseColor resolves mode for writer w.
func UseColor(mode ColorMode, w io.Writer) bool {
	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isTerminal(int(f.Fd()))
}

const ansiReset = "\x1b[0m"

// kindStyles maps token kinds to SGR sequences.
var kindStyles = map[lexer.Kind]string{
	lexer.Command:  "\x1b[1;34m", // bold blue
	lexer.Option:   "\x1b[32m",   // green
	lexer.Argument: "\x1b[33m",   // yellow
	lexer.Pipe:     "\x1b[1;35m", // bold magenta
	lexer.Redirect: "\x1b[31m",   // red
	lexer.Operator: "\x1b[93m",   // bright yellow
}

// riskStyles maps risk levels to SGR sequences.
var riskStyles = map[safety.RiskLevel]string{
	safety.Low:      "\x1b[32m",
	safety.Medium:   "\x1b[33m",
	safety.High:     "\x1b[31m",
	safety.Critical: "\x1b[1;41;97m",
}

func paint(style, text string, enabled bool) string {
	if !enabled || style == "" || text == "" {
		return text
	}
	return style + text + ansiReset
}

// Highlight re-renders tokens as the original command, coloring each token by
// kind. With color disabled the result equals lexer.Join(tokens).
func Highlight(tokens []lexer.Token, color bool) string {
	var b strings.Builder
	for _, t := range tokens {
		b.WriteString(paint(kindStyles[t.Kind], t.Text, color))
	}
	return b.String()
}

// RiskLabel renders a risk level, colored when enabled.
func RiskLabel(level safety.RiskLevel, color bool) string {
	return paint(riskStyles[level], level.String(), color)
}

func bold(text string, color bool) string {
	return paint("\x1b[1m", text, color)
}

func dim(text string, color bool) string {
	return paint("\x1b[2m", text, color)
}
