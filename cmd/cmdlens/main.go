// Package main is the entry point for the cmdlens CLI tool.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// Exit codes.
const (
	exitSuccess     = 0
	exitUserError   = 1
	exitSystemError = 2
	exitUnsafe      = 3

	maxCommandLength = 10000
)

// version is set at build time via ldflags: -X main.version=...
var version = "dev"

// errUnsafe is returned under --strict when the command is judged unsafe.
var errUnsafe = errors.New("command judged unsafe")

// exitError carries the exit code for an error.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }

func (e *exitError) Unwrap() error { return e.err }

func userError(err error) error {
	return &exitError{code: exitUserError, err: err}
}

func systemError(err error) error {
	return &exitError{code: exitSystemError, err: err}
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run executes the CLI and returns the process exit code.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	return newApp(stdin, stdout, stderr).execute(args)
}

// execute runs the command tree for args and reports errors on stderr.
func (a *app) execute(args []string) int {
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetIn(a.stdin)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	err := root.Execute()
	if err == nil {
		return exitSuccess
	}

	code := exitCode(err)
	if code == exitUnsafe {
		fmt.Fprintln(a.stderr, "cmdlens: command judged unsafe, review it before running")
	} else {
		fmt.Fprintf(a.stderr, "cmdlens: %v\n", err)
	}
	return code
}

// exitCode maps an error to an exit code. Untyped errors come from flag
// and argument parsing and count as user errors.
func exitCode(err error) int {
	if errors.Is(err, errUnsafe) {
		return exitUnsafe
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return exitUserError
}
