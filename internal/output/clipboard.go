package output

import (
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/user/cmdlens/internal/sanitize"
)

// ErrNoSuggestion is returned when a suggestion contains no backticked command.
var ErrNoSuggestion = errors.New("suggestion has no command to copy")

// clipboardTools lists candidate tools per OS in order of preference.
var clipboardTools = map[string][][]string{
	"darwin": {{"pbcopy"}},
	"linux": {
		{"wl-copy"},
		{"xclip", "-selection", "clipboard"},
		{"xsel", "--clipboard", "--input"},
	},
	"windows": {{"clip.exe"}},
}

// lookPath can be overridden for testing.
var lookPath = exec.LookPath

// clipboardCommand returns the first available tool for goos.
func clipboardCommand(goos string) ([]string, error) {
	tools, ok := clipboardTools[goos]
	if !ok {
		return nil, ErrUnsupportedOS
	}
	for _, argv := range tools {
		if _, err := lookPath(argv[0]); err == nil {
			return argv, nil
		}
	}
	return nil, ErrNoClipboard
}

// CopyToClipboard copies text to the system clipboard using pbcopy on macOS,
// wl-copy, xclip or xsel on Linux, and clip.exe on Windows.
func CopyToClipboard(text string) error {
	argv, err := clipboardCommand(runtime.GOOS)
	if err != nil {
		return err
	}
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Stdin = strings.NewReader(text)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %w", argv[0], err)
	}
	return nil
}

// HasClipboard returns true if a clipboard tool is available on the current system.
func HasClipboard() bool {
	_, err := clipboardCommand(runtime.GOOS)
	return err == nil
}

// clipboardTool allows tests to override the clipboard. When nil, the
// system clipboard is used.
var clipboardTool func(text string) error

// SetClipboardFunc allows tests to inject a custom clipboard function.
// Pass nil to restore default behavior.
func SetClipboardFunc(fn func(text string) error) {
	clipboardTool = fn
}

func copyText(text string) error {
	if clipboardTool != nil {
		return clipboardTool(text)
	}
	return CopyToClipboard(text)
}

// CopySuggestion copies the backticked command of a safer-alternative
// suggestion, such as "Use trash-cli: `trash-put filename`", and prints a
// confirmation to stderr. The copied command is returned.
func CopySuggestion(suggestion string) (string, error) {
	cmd, ok := sanitize.SuggestedCommand(suggestion)
	if !ok {
		return "", ErrNoSuggestion
	}
	if err := copyText(cmd); err != nil {
		return "", err
	}
	fmt.Fprintf(stderr, "Copied to clipboard: %s\n", cmd)
	return cmd, nil
}

// Copy copies text and prints a confirmation to stderr.
func Copy(text string) error {
	if err := copyText(text); err != nil {
		return err
	}
	fmt.Fprintln(stderr, "Command copied to clipboard.")
	return nil
}
