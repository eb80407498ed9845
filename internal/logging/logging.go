// Package logging builds the slog logger shared by the CLI and its packages.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Redacted replaces the value of sensitive attributes.
const Redacted = "[REDACTED]"

// sensitiveKeys are attribute key fragments whose values are never logged.
var sensitiveKeys = []string{"api_key", "apikey", "token", "secret", "authorization", "password"}

// ParseLevel converts a config level name to a slog.Level.
// "warning" is accepted as an alias for "warn".
func ParseLevel(level string) (slog.Level, error) {
	name := strings.ToLower(strings.TrimSpace(level))
	if name == "" {
		return slog.LevelWarn, nil
	}
	if name == "warning" {
		name = "warn"
	}

	var l slog.Level
	if err := l.UnmarshalText([]byte(name)); err != nil {
		return slog.LevelWarn, fmt.Errorf("invalid log level %q (valid: debug, info, warn, error)", level)
	}
	return l, nil
}

// New returns a text logger writing to w. verbose forces debug level.
func New(level string, w io.Writer, verbose bool) (*slog.Logger, error) {
	l, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	if verbose {
		l = slog.LevelDebug
	}

	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:       l,
		ReplaceAttr: redact,
	})
	return slog.New(handler), nil
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

func redact(_ []string, a slog.Attr) slog.Attr {
	if IsSensitiveKey(a.Key) {
		return slog.String(a.Key, Redacted)
	}
	return a
}

// IsSensitiveKey reports whether an attribute key names a credential.
func IsSensitiveKey(key string) bool {
	k := strings.ToLower(key)
	for _, s := range sensitiveKeys {
		if strings.Contains(k, s) {
			return true
		}
	}
	return false
}
