package shellctx

import (
	"errors"
	"runtime"
	"testing"
)

func fakeGatherer(env map[string]string, wd string, wdErr error) *Gatherer {
	return &Gatherer{
		Getenv:      func(k string) string { return env[k] },
		Getwd:       func() (string, error) { return wd, wdErr },
		GOOS:        "linux",
		ShortenHome: true,
	}
}

func TestGatherContext(t *testing.T) {
	ctx := GatherContext()

	if ctx == nil {
		t.Fatal("GatherContext() returned nil")
	}
	if ctx.WorkingDir == "" {
		t.Error("GatherContext().WorkingDir should not be empty")
	}
	if ctx.Shell == "" {
		t.Error("GatherContext().Shell should not be empty")
	}
	if ctx.OS != runtime.GOOS {
		t.Errorf("GatherContext().OS = %q, want %q", ctx.OS, runtime.GOOS)
	}
}

func TestGatherShell(t *testing.T) {
	tests := []struct {
		name      string
		shell     string
		wantShell string
	}{
		{name: "zsh", shell: "/bin/zsh", wantShell: "zsh"},
		{name: "bash", shell: "/bin/bash", wantShell: "bash"},
		{name: "fish in usr/local", shell: "/usr/local/bin/fish", wantShell: "fish"},
		{name: "homebrew zsh", shell: "/opt/homebrew/bin/zsh", wantShell: "zsh"},
		{name: "empty SHELL", shell: "", wantShell: "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := fakeGatherer(map[string]string{"SHELL": tt.shell}, "/tmp", nil)
			if got := g.Gather().Shell; got != tt.wantShell {
				t.Errorf("Gather().Shell = %q, want %q", got, tt.wantShell)
			}
		})
	}
}

func TestGatherWorkingDir(t *testing.T) {
	home := map[string]string{"HOME": "/home/ada"}

	tests := []struct {
		name    string
		env     map[string]string
		wd      string
		err     error
		shorten bool
		want    string
	}{
		{name: "outside home", env: home, wd: "/var/log", shorten: true, want: "/var/log"},
		{name: "home itself", env: home, wd: "/home/ada", shorten: true, want: "~"},
		{name: "below home", env: home, wd: "/home/ada/src/app", shorten: true, want: "~/src/app"},
		{name: "sibling prefix", env: home, wd: "/home/adam", shorten: true, want: "/home/adam"},
		{name: "shortening off", env: home, wd: "/home/ada/src", shorten: false, want: "/home/ada/src"},
		{name: "no HOME", env: nil, wd: "/home/ada/src", shorten: true, want: "/home/ada/src"},
		{name: "getwd fails", env: home, err: errors.New("gone"), shorten: true, want: "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := fakeGatherer(tt.env, tt.wd, tt.err)
			g.ShortenHome = tt.shorten
			if got := g.Gather().WorkingDir; got != tt.want {
				t.Errorf("Gather().WorkingDir = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGetShellFromPath(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		expected string
	}{
		{name: "zsh", path: "/bin/zsh", expected: "zsh"},
		{name: "bash", path: "/usr/bin/bash", expected: "bash"},
		{name: "just shell name", path: "zsh", expected: "zsh"},
		{name: "empty path", path: "", expected: "unknown"},
		{name: "trailing slash", path: "/bin/zsh/", expected: "zsh"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := GetShellFromPath(tt.path); result != tt.expected {
				t.Errorf("GetShellFromPath(%q) = %q, want %q", tt.path, result, tt.expected)
			}
		})
	}
}

func TestGatherNeverReturnsEmptyFields(t *testing.T) {
	ctx := fakeGatherer(nil, "", nil).Gather()
	if ctx.WorkingDir == "" || ctx.Shell == "" || ctx.OS == "" {
		t.Errorf("expected all fields populated, got %+v", ctx)
	}
}
