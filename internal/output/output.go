// Package output renders inspection results as colored text, JSON or YAML
// and copies suggested commands to the clipboard.
package output

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Common errors returned by output functions.
var (
	// ErrNoClipboard is returned when no clipboard tool is available.
	ErrNoClipboard = errors.New("no clipboard tool available")

	// ErrUnsupportedOS is returned for unsupported operating systems.
	ErrUnsupportedOS = errors.New("unsupported operating system")

	// ErrInvalidFormat is returned when an invalid format string is provided.
	ErrInvalidFormat = errors.New("invalid output format")

	// ErrInvalidColor is returned when an invalid color mode string is provided.
	ErrInvalidColor = errors.New("invalid color mode")
)

// Format selects how values are rendered.
type Format int

const (
	// FormatText is human-readable, optionally colored text.
	FormatText Format = iota
	// FormatJSON is indented JSON.
	FormatJSON
	// FormatYAML is YAML.
	FormatYAML
)

// String returns the string representation of the format.
func (f Format) String() string {
	switch f {
	case FormatText:
		return "text"
	case FormatJSON:
		return "json"
	case FormatYAML:
		return "yaml"
	default:
		return "unknown"
	}
}

// ParseFormat parses a string into a Format.
// Returns FormatText for empty string. Returns ErrInvalidFormat for unknown strings.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "text", "":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return FormatText, fmt.Errorf("%w: %q (must be text, json, or yaml)", ErrInvalidFormat, s)
	}
}

// stdout and stderr can be overridden for testing
var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// SetOutputWriters allows tests to capture output by replacing stdout/stderr.
// Pass nil to restore default behavior.
func SetOutputWriters(out, err io.Writer) {
	if out != nil {
		stdout = out
	} else {
		stdout = os.Stdout
	}
	if err != nil {
		stderr = err
	} else {
		stderr = os.Stderr
	}
}

// Stdout returns the current standard output writer.
func Stdout() io.Writer {
	return stdout
}

// Stderr returns the current standard error writer.
func Stderr() io.Writer {
	return stderr
}

// Printer writes values in one format.
type Printer struct {
	w      io.Writer
	format Format
	color  bool
}

// NewPrinter creates a Printer. Color only affects FormatText.
func NewPrinter(w io.Writer, format Format, color bool) *Printer {
	return &Printer{w: w, format: format, color: color}
}

// Format returns the printer's format.
func (p *Printer) Format() Format {
	return p.format
}

// encode writes v as JSON or YAML. It reports false for FormatText so the
// caller can render text itself.
func (p *Printer) encode(v any) (bool, error) {
	switch p.format {
	case FormatJSON:
		enc := json.NewEncoder(p.w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return true, enc.Encode(v)
	case FormatYAML:
		enc := yaml.NewEncoder(p.w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return true, err
		}
		return true, enc.Close()
	default:
		return false, nil
	}
}

// Value writes v as JSON or YAML, or with fmt's %v in text mode.
func (p *Printer) Value(v any) error {
	if ok, err := p.encode(v); ok {
		return err
	}
	_, err := fmt.Fprintln(p.w, v)
	return err
}
