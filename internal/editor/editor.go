// Package editor opens the user's editor on a temporary file so a long or
// multi-line command can be pasted comfortably.
package editor

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/user/cmdlens/internal/sanitize"
)

// MarkerPrefix starts the instruction lines written into the temp file.
// Only these lines are dropped; "#" alone is left alone so shell comments
// and root prompts survive.
const MarkerPrefix = "#~"

// InputTemplate is the text shown to users in the editor.
const InputTemplate = MarkerPrefix + ` Paste the shell command to inspect below.
` + MarkerPrefix + ` Lines starting with "` + MarkerPrefix + `" are ignored; markdown fences and "$ " prompts are removed.
` + MarkerPrefix + ` Save and quit when done (:wq in vim).

`

// TempFilePattern is the os.CreateTemp pattern. The .sh suffix enables shell
// syntax highlighting in most editors.
const TempFilePattern = "cmdlens-*.sh"

// Editor opens the user's preferred editor for command input.
type Editor struct {
	// EditorCmd overrides the default editor command ($VISUAL, $EDITOR, or vi).
	EditorCmd string
}

// NewEditor creates a new Editor with an optional command override.
// If editorCmd is empty, the default lookup chain will be used.
func NewEditor(editorCmd string) *Editor {
	return &Editor{EditorCmd: editorCmd}
}

// GetInput opens the editor with initial pre-filled below the instructions
// and returns the cleaned command. An untouched template yields "".
func (e *Editor) GetInput(ctx context.Context, initial string) (string, error) {
	tmpFile, err := os.CreateTemp("", TempFilePattern)
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer os.Remove(tmpPath)

	content := InputTemplate
	if initial != "" {
		content += initial + "\n"
	}
	if _, err := tmpFile.WriteString(content); err != nil {
		tmpFile.Close()
		return "", fmt.Errorf("writing template: %w", err)
	}

	// CreateTemp already uses 0600; make it explicit since commands may hold secrets.
	if err := tmpFile.Chmod(0600); err != nil {
		tmpFile.Close()
		return "", fmt.Errorf("setting file permissions: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return "", fmt.Errorf("closing temp file: %w", err)
	}

	cmdParts := append(getEditorCommand(e.EditorCmd), tmpPath)

	cmd := exec.CommandContext(ctx, cmdParts[0], cmdParts[1:]...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("editor cancelled: %w", ctx.Err())
		}
		return "", fmt.Errorf("running editor: %w", err)
	}

	raw, err := os.ReadFile(tmpPath)
	if err != nil {
		return "", fmt.Errorf("reading temp file: %w", err)
	}

	return ProcessInput(string(raw)), nil
}

// ProcessInput drops instruction lines and cleans the rest with
// sanitize.Command. Blank lines inside the command are kept.
func ProcessInput(raw string) string {
	var lines []string
	for _, line := range strings.Split(raw, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), MarkerPrefix) {
			continue
		}
		lines = append(lines, strings.TrimRight(line, "\r"))
	}
	return sanitize.Command(strings.Join(lines, "\n"))
}

// getEditorCommand returns the editor command split into executable and arguments.
// It follows the precedence: override -> $VISUAL -> $EDITOR -> vi
func getEditorCommand(override string) []string {
	editorStr := override
	if editorStr == "" {
		editorStr = os.Getenv("VISUAL")
	}
	if editorStr == "" {
		editorStr = os.Getenv("EDITOR")
	}

	// Editors with arguments such as "code --wait" are split on spaces;
	// quoting is not supported.
	parts := strings.Fields(editorStr)
	if len(parts) == 0 {
		return []string{"vi"}
	}
	return parts
}

// GetEditorPath returns the resolved path of the editor for display purposes.
// Returns the editor name even if the full path cannot be resolved.
func GetEditorPath(override string) string {
	name := getEditorCommand(override)[0]
	if path, err := exec.LookPath(name); err == nil {
		return path
	}
	return name
}
