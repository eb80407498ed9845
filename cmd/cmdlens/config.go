package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/user/cmdlens/internal/config"
	"github.com/user/cmdlens/internal/editor"
	"github.com/user/cmdlens/internal/output"
)

// configView is the printable form of the configuration with API keys masked.
type configView struct {
	Path           string                 `json:"path" yaml:"path"`
	Backend        string                 `json:"backend" yaml:"backend"`
	IncludeContext bool                   `json:"include_context" yaml:"include_context"`
	OutputFormat   string                 `json:"output_format" yaml:"output_format"`
	Color          string                 `json:"color" yaml:"color"`
	Backends       map[string]backendView `json:"backends" yaml:"backends"`
	Rules          config.RulesConfig     `json:"rules" yaml:"rules"`
	History        historyView            `json:"history" yaml:"history"`
	TemplatesFile  string                 `json:"templates_file,omitempty" yaml:"templates_file,omitempty"`
	Editor         string                 `json:"editor" yaml:"editor"`
	LogLevel       string                 `json:"log_level" yaml:"log_level"`
	TimeoutSeconds int                    `json:"timeout_seconds" yaml:"timeout_seconds"`
	MaxTokens      int                    `json:"max_tokens" yaml:"max_tokens"`
}

type backendView struct {
	Model  string `json:"model" yaml:"model"`
	APIKey string `json:"api_key" yaml:"api_key"`
	Active bool   `json:"active" yaml:"active"`
}

type historyView struct {
	Enabled    bool   `json:"enabled" yaml:"enabled"`
	Path       string `json:"path" yaml:"path"`
	MaxEntries int    `json:"max_entries" yaml:"max_entries"`
}

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the current configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			view := a.configView()
			if a.printer.Format() != output.FormatText {
				return writeErr(a.printer.Value(view))
			}
			return writeErr(writeConfigText(a.stdout, view))
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:         "init",
		Short:       "Create the default config file",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipSetup: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.InitConfig()
			if err != nil {
				return userError(err)
			}
			fmt.Fprintf(a.stderr, "Created config file: %s\n", path)
			return nil
		},
	})
	return cmd
}

func (a *app) configView() configView {
	cfg := a.cfg
	historyPath, err := cfg.HistoryPath()
	if err != nil {
		historyPath = "(unavailable)"
	}

	path := cfg.Path()
	if path == "" {
		path = "(defaults)"
	}

	view := configView{
		Path:           path,
		Backend:        cfg.Backend,
		IncludeContext: cfg.IncludeContext,
		OutputFormat:   cfg.OutputFormat,
		Color:          cfg.Color,
		Backends:       make(map[string]backendView, len(config.Backends)),
		Rules:          cfg.Rules,
		History: historyView{
			Enabled:    cfg.History.Enabled,
			Path:       historyPath,
			MaxEntries: cfg.History.MaxEntries,
		},
		TemplatesFile:  cfg.Templates.File,
		Editor:         editor.GetEditorPath(cfg.Editor.Editor),
		LogLevel:       cfg.Log.Level,
		TimeoutSeconds: cfg.Advanced.TimeoutSeconds,
		MaxTokens:      cfg.Advanced.MaxTokens,
	}
	for _, name := range config.Backends {
		view.Backends[name] = backendView{
			Model:  cfg.GetModel(name),
			APIKey: maskAPIKey(cfg.GetAPIKey(name)),
			Active: name == cfg.Backend,
		}
	}
	return view
}

func writeConfigText(w io.Writer, v configView) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Config file:\t%s\n", v.Path)
	fmt.Fprintf(tw, "Backend:\t%s\n", v.Backend)
	fmt.Fprintf(tw, "Include context:\t%t\n", v.IncludeContext)
	fmt.Fprintf(tw, "Output format:\t%s\n", v.OutputFormat)
	fmt.Fprintf(tw, "Color:\t%s\n", v.Color)
	fmt.Fprintf(tw, "Editor:\t%s\n", v.Editor)
	fmt.Fprintf(tw, "Log level:\t%s\n", v.LogLevel)
	fmt.Fprintf(tw, "Timeout:\t%ds\n", v.TimeoutSeconds)
	fmt.Fprintf(tw, "Max tokens:\t%d\n", v.MaxTokens)
	fmt.Fprintf(tw, "History:\t%t (%s, max %d)\n", v.History.Enabled, v.History.Path, v.History.MaxEntries)
	if v.Rules.File != "" {
		fmt.Fprintf(tw, "Rules file:\t%s\n", v.Rules.File)
	}
	if len(v.Rules.CriticalCommands) > 0 {
		fmt.Fprintf(tw, "Critical commands:\t%v\n", v.Rules.CriticalCommands)
	}
	if v.TemplatesFile != "" {
		fmt.Fprintf(tw, "Templates file:\t%s\n", v.TemplatesFile)
	}
	for _, name := range config.Backends {
		b := v.Backends[name]
		fmt.Fprintf(tw, "[%s]\tmodel %s, key %s\n", name, b.Model, b.APIKey)
	}
	return tw.Flush()
}

func newBackendsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "backends",
		Short: "List available explain backends",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			view := a.configView()
			if a.printer.Format() != output.FormatText {
				return writeErr(a.printer.Value(view.Backends))
			}

			tw := tabwriter.NewWriter(a.stdout, 0, 0, 2, ' ', 0)
			for _, name := range config.Backends {
				b := view.Backends[name]
				status := "not configured"
				if a.cfg.GetAPIKey(name) != "" {
					status = "configured"
				}
				active := ""
				if b.Active {
					active = "(active)"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", name, active, status, b.Model)
			}
			return writeErr(tw.Flush())
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print the version",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipSetup: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "cmdlens version %s\n", version)
			return nil
		},
	}
}

// maskAPIKey returns a masked version of an API key for display.
// Never logs or prints the full key.
func maskAPIKey(key string) string {
	if key == "" {
		return "(not set)"
	}
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
