package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/user/cmdlens/internal/editor"
	"github.com/user/cmdlens/internal/sanitize"
)

// inputOptions selects where the command comes from.
type inputOptions struct {
	useEditor bool
}

func (o *inputOptions) bind(cmd *cobra.Command) {
	cmd.Flags().BoolVarP(&o.useEditor, "editor", "e", false, "Paste the command in $EDITOR")
}

// readCommand returns the command to work on.
// Precedence: --editor (pre-filled with args) > args > piped stdin.
func (a *app) readCommand(ctx context.Context, args []string, in inputOptions) (string, error) {
	var command string

	switch {
	case in.useEditor:
		ed := editor.NewEditor(a.cfg.Editor.Editor)
		text, err := ed.GetInput(ctx, strings.Join(args, " "))
		if err != nil {
			return "", userError(fmt.Errorf("getting input from editor: %w", err))
		}
		command = text

	case len(args) > 0:
		command = sanitize.Command(strings.Join(args, " "))

	default:
		if isTerminal(a.stdin) {
			return "", userError(errors.New("no command given: pass it as an argument or pipe it on stdin"))
		}
		data, err := io.ReadAll(io.LimitReader(a.stdin, maxCommandLength+1))
		if err != nil {
			return "", systemError(fmt.Errorf("reading stdin: %w", err))
		}
		command = sanitize.Command(string(data))
	}

	if err := validateInput(command); err != nil {
		return "", userError(err)
	}
	return command, nil
}

// validateInput validates the command string.
func validateInput(command string) error {
	if strings.TrimSpace(command) == "" {
		return errors.New("empty command")
	}

	if strings.ContainsRune(command, 0) {
		return errors.New("invalid input: contains null bytes")
	}

	if len(command) > maxCommandLength {
		return fmt.Errorf("command too long (max %d bytes)", maxCommandLength)
	}

	return nil
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
