package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/user/cmdlens/internal/config"
	"github.com/user/cmdlens/internal/explain"
	"github.com/user/cmdlens/internal/history"
	"github.com/user/cmdlens/internal/inspect"
	"github.com/user/cmdlens/internal/logging"
	"github.com/user/cmdlens/internal/output"
	"github.com/user/cmdlens/internal/templates"
)

// skipSetup marks commands that run without loading configuration.
const skipSetup = "cmdlens/skip-setup"

// app holds the state shared by all commands of one invocation.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	// Persistent flags.
	configPath string
	format     string
	color      string
	verbose    bool
	strict     bool
	noHistory  bool

	cfg       *config.Config
	logger    *slog.Logger
	printer   *output.Printer
	inspector *inspect.Inspector

	// newExplainer builds the explain backend; tests replace it.
	newExplainer func(name string, cfg *config.Config) (explain.Explainer, error)
}

func newApp(stdin io.Reader, stdout, stderr io.Writer) *app {
	return &app{
		stdin:        stdin,
		stdout:       stdout,
		stderr:       stderr,
		logger:       logging.Discard(),
		newExplainer: createExplainer,
	}
}

// setup loads configuration and builds the logger, registry and printer.
func (a *app) setup(cmd *cobra.Command) error {
	if cmd.Annotations[skipSetup] == "true" {
		return nil
	}

	// Bootstrap logger for config loading; replaced once the level is known.
	bootLevel := "warn"
	if a.verbose {
		bootLevel = "debug"
	}
	boot, err := logging.New(bootLevel, a.stderr, false)
	if err != nil {
		return systemError(err)
	}

	cfg, err := config.Load(&config.LoadOptions{ConfigPath: a.configPath, Logger: boot})
	if err != nil {
		return systemError(fmt.Errorf("failed to load config: %w", err))
	}
	if err := cfg.Validate(); err != nil {
		return userError(fmt.Errorf("invalid config: %w", err))
	}
	a.cfg = cfg

	a.logger, err = logging.New(cfg.Log.Level, a.stderr, a.verbose)
	if err != nil {
		return userError(err)
	}

	registry, err := cfg.Registry()
	if err != nil {
		return userError(fmt.Errorf("loading rules: %w", err))
	}
	a.inspector = inspect.New(registry)

	formatName := cfg.OutputFormat
	if a.format != "" {
		formatName = a.format
	}
	format, err := output.ParseFormat(formatName)
	if err != nil {
		return userError(err)
	}

	colorName := cfg.Color
	if a.color != "" {
		colorName = a.color
	}
	mode, err := output.ParseColorMode(colorName)
	if err != nil {
		return userError(err)
	}

	output.SetOutputWriters(a.stdout, a.stderr)
	a.printer = output.NewPrinter(a.stdout, format, output.UseColor(mode, a.stdout))
	a.logger.Debug("setup complete",
		"config", cfg.Path(), "format", format.String(), "backend", cfg.Backend)
	return nil
}

// historyStore opens the configured history file.
func (a *app) historyStore() (*history.Store, error) {
	path, err := a.cfg.HistoryPath()
	if err != nil {
		return nil, systemError(err)
	}
	return history.NewStore(path,
		history.WithMaxEntries(a.cfg.History.MaxEntries),
		history.WithLogger(a.logger),
	), nil
}

// record remembers a command unless history is disabled. Failures are
// logged, never fatal.
func (a *app) record(rec history.Record) {
	if a.noHistory || !a.cfg.History.Enabled {
		return
	}
	store, err := a.historyStore()
	if err != nil {
		a.logger.Warn("history unavailable", "error", err)
		return
	}
	entry, err := store.Add(rec)
	if err != nil {
		a.logger.Warn("failed to record history", "error", err)
		return
	}
	a.logger.Debug("recorded history entry", "id", entry.ID)
}

// catalog returns the built-in templates merged with the configured file.
func (a *app) catalog() (*templates.Catalog, error) {
	catalog := templates.Builtin()
	if a.cfg.Templates.File == "" {
		return catalog, nil
	}
	extra, err := templates.LoadFile(a.cfg.Templates.File)
	if err != nil {
		return nil, userError(err)
	}
	return catalog.Merge(extra), nil
}

// printf writes plain text to stdout.
func (a *app) printf(format string, args ...any) {
	fmt.Fprintf(a.stdout, format, args...)
}
