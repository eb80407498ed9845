// Package shellctx gathers shell context information (pwd, shell, OS) that is
// sent along with explain requests.
package shellctx

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/user/cmdlens/internal/explain"
)

const unknown = "unknown"

// Gatherer reads the environment through swappable functions.
type Gatherer struct {
	Getenv func(string) string
	Getwd  func() (string, error)
	GOOS   string

	// ShortenHome replaces the home directory prefix of the working
	// directory with "~" so the full path is not sent to a remote model.
	ShortenHome bool
}

// NewGatherer returns a Gatherer bound to the real process environment.
func NewGatherer() *Gatherer {
	return &Gatherer{
		Getenv:      os.Getenv,
		Getwd:       os.Getwd,
		GOOS:        runtime.GOOS,
		ShortenHome: true,
	}
}

// GatherContext collects information about the current shell environment.
// Never returns nil; values that cannot be determined are "unknown".
func GatherContext() *explain.ShellContext {
	return NewGatherer().Gather()
}

// Gather builds the ShellContext.
func (g *Gatherer) Gather() *explain.ShellContext {
	return &explain.ShellContext{
		WorkingDir: g.workingDir(),
		Shell:      GetShellFromPath(g.Getenv("SHELL")),
		OS:         g.GOOS,
	}
}

func (g *Gatherer) workingDir() string {
	wd, err := g.Getwd()
	if err != nil || wd == "" {
		return unknown
	}
	if !g.ShortenHome {
		return wd
	}

	home := g.Getenv("HOME")
	if home == "" || home == "/" {
		return wd
	}
	if wd == home {
		return "~"
	}
	if rest, ok := strings.CutPrefix(wd, home+string(filepath.Separator)); ok {
		return "~" + string(filepath.Separator) + rest
	}
	return wd
}

// GetShellFromPath extracts the shell name from a full path such as
// "/bin/zsh". Returns "unknown" for an empty path.
func GetShellFromPath(shellPath string) string {
	if shellPath == "" {
		return unknown
	}
	return filepath.Base(shellPath)
}
