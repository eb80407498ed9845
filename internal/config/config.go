// Package config handles configuration loading from TOML files and environment variables.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// AppName names the config directory and the env var prefix.
const AppName = "cmdlens"

// DefaultConfigTOML is the default configuration template for `config init`.
const DefaultConfigTOML = `# cmdlens configuration file
# See: https://github.com/user/cmdlens

# Backend used by "cmdlens explain": anthropic | openai | groq | openrouter
backend = "groq"

# Include shell context (pwd, shell, OS) in explain prompts
include_context = true

# Default output format: text | json | yaml
output_format = "text"

# Colored text output: auto | always | never
color = "auto"

[anthropic]
# API key (or use ANTHROPIC_API_KEY env var)
api_key = ""
model = "claude-haiku-4-5-20251001"

[openai]
# API key (or use OPENAI_API_KEY env var)
api_key = ""
model = "gpt-4o-mini"

[groq]
# API key (or use GROQ_API_KEY env var)
api_key = ""
model = "llama-3.3-70b-versatile"

[openrouter]
# API key (or use OPENROUTER_API_KEY env var)
api_key = ""
model = "anthropic/claude-haiku-4.5"

[rules]
# Extra rule pack merged over the built-in rules (TOML, unknown keys rejected)
# file = "~/.config/cmdlens/rules.toml"
# Commands raised to critical risk in addition to the built-in ones
critical_commands = []

[history]
enabled = true
# Defaults to history.json next to this file
# path = ""
max_entries = 100

[templates]
# Extra YAML template catalog merged over the built-in one
# file = ""

[editor]
# Override $EDITOR/$VISUAL (uncomment to use)
# editor = "nvim"

[log]
# debug | info | warn | error
level = "warn"

[advanced]
# API call timeout in seconds
timeout_seconds = 30
# Maximum tokens for the explain response
max_tokens = 1500
`

// Backend names accepted in the backend setting.
var Backends = []string{"anthropic", "openai", "groq", "openrouter"}

// Config represents the full configuration for cmdlens.
type Config struct {
	Backend        string          `toml:"backend"`
	IncludeContext bool            `toml:"include_context"`
	OutputFormat   string          `toml:"output_format"`
	Color          string          `toml:"color"`
	Anthropic      BackendConfig   `toml:"anthropic"`
	OpenAI         BackendConfig   `toml:"openai"`
	Groq           BackendConfig   `toml:"groq"`
	OpenRouter     BackendConfig   `toml:"openrouter"`
	Rules          RulesConfig     `toml:"rules"`
	History        HistoryConfig   `toml:"history"`
	Templates      TemplatesConfig `toml:"templates"`
	Editor         EditorConfig    `toml:"editor"`
	Log            LogConfig       `toml:"log"`
	Advanced       AdvancedConfig  `toml:"advanced"`

	// path is the file the config was read from, empty for defaults.
	path string
}

// BackendConfig holds per-backend credentials and model.
type BackendConfig struct {
	APIKey string `toml:"api_key"`
	Model  string `toml:"model"`
}

// RulesConfig extends the built-in safety rules.
type RulesConfig struct {
	File             string   `toml:"file"`
	CriticalCommands []string `toml:"critical_commands"`
}

// HistoryConfig controls the history store.
type HistoryConfig struct {
	Enabled    bool   `toml:"enabled"`
	Path       string `toml:"path"`
	MaxEntries int    `toml:"max_entries"`
}

// TemplatesConfig points at an extra template catalog.
type TemplatesConfig struct {
	File string `toml:"file"`
}

// EditorConfig holds editor configuration.
type EditorConfig struct {
	Editor string `toml:"editor"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `toml:"level"`
}

// AdvancedConfig holds advanced configuration options.
type AdvancedConfig struct {
	TimeoutSeconds int `toml:"timeout_seconds"`
	MaxTokens      int `toml:"max_tokens"`
}

// Timeout returns the configured timeout as a time.Duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Advanced.TimeoutSeconds) * time.Second
}

// Path returns the file the configuration was loaded from, if any.
func (c *Config) Path() string {
	return c.path
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Backend:        "groq",
		IncludeContext: true,
		OutputFormat:   "text",
		Color:          "auto",
		Anthropic:      BackendConfig{Model: "claude-haiku-4-5-20251001"},
		OpenAI:         BackendConfig{Model: "gpt-4o-mini"},
		Groq:           BackendConfig{Model: "llama-3.3-70b-versatile"},
		OpenRouter:     BackendConfig{Model: "anthropic/claude-haiku-4.5"},
		History: HistoryConfig{
			Enabled:    true,
			MaxEntries: 100,
		},
		Log: LogConfig{Level: "warn"},
		Advanced: AdvancedConfig{
			TimeoutSeconds: 30,
			MaxTokens:      1500,
		},
	}
}

// LoadOptions configures how configuration is loaded.
type LoadOptions struct {
	// ConfigPath is an explicit path to a config file (highest priority).
	ConfigPath string

	// Logger receives warnings such as insecure file permissions.
	// slog.Default() is used when nil.
	Logger *slog.Logger
}

// Load loads configuration from the appropriate source with the following priority:
// 1. --config flag (via LoadOptions.ConfigPath)
// 2. $CMDLENS_CONFIG env var
// 3. $XDG_CONFIG_HOME/cmdlens/config.toml
// 4. ~/.config/cmdlens/config.toml
//
// Environment variables override file config for API keys and backend selection.
func Load(opts *LoadOptions) (*Config, error) {
	cfg := Default()

	logger := slog.Default()
	if opts != nil && opts.Logger != nil {
		logger = opts.Logger
	}

	configPath := findConfigPath(opts)
	if configPath != "" {
		if err := loadFromFile(cfg, configPath, logger); err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
		cfg.path = configPath
		logger.Debug("config loaded", "path", configPath)
	}

	applyEnvOverrides(cfg)

	return cfg, nil
}

// findConfigPath determines the config file path based on priority.
func findConfigPath(opts *LoadOptions) string {
	if opts != nil && opts.ConfigPath != "" {
		return opts.ConfigPath
	}

	if envPath := os.Getenv("CMDLENS_CONFIG"); envPath != "" {
		return envPath
	}

	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		xdgPath := filepath.Join(xdgConfigHome, AppName, "config.toml")
		if fileExists(xdgPath) {
			return xdgPath
		}
	}

	if homeDir, err := os.UserHomeDir(); err == nil {
		homePath := filepath.Join(homeDir, ".config", AppName, "config.toml")
		if fileExists(homePath) {
			return homePath
		}
	}

	return ""
}

// loadFromFile loads configuration from a TOML file.
func loadFromFile(cfg *Config, path string, logger *slog.Logger) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat config file: %w", err)
	}

	// API keys may be stored here.
	mode := info.Mode().Perm()
	if mode&0077 != 0 {
		logger.Warn("config file has insecure permissions, should be 0600",
			"path", path, "mode", fmt.Sprintf("%o", mode))
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("parse TOML: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to the config.
// Environment variables take precedence over file config.
func applyEnvOverrides(cfg *Config) {
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		cfg.Anthropic.APIKey = key
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		cfg.OpenAI.APIKey = key
	}
	if key := os.Getenv("GROQ_API_KEY"); key != "" {
		cfg.Groq.APIKey = key
	}
	if key := os.Getenv("OPENROUTER_API_KEY"); key != "" {
		cfg.OpenRouter.APIKey = key
	}

	if backend := os.Getenv("CMDLENS_BACKEND"); backend != "" {
		cfg.Backend = backend
	}
}

// fileExists returns true if the file at path exists and is a regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// GetConfigDir returns the directory where config should be stored.
// Uses $XDG_CONFIG_HOME/cmdlens if set, otherwise ~/.config/cmdlens.
func GetConfigDir() (string, error) {
	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		return filepath.Join(xdgConfigHome, AppName), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}

	return filepath.Join(homeDir, ".config", AppName), nil
}

// InitConfig creates a default configuration file at the standard location.
// Returns an error if the file already exists.
func InitConfig() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return "", fmt.Errorf("creating config directory: %w", err)
	}

	configPath := filepath.Join(configDir, "config.toml")

	if fileExists(configPath) {
		return "", fmt.Errorf("config file already exists: %s", configPath)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTOML), 0600); err != nil {
		return "", fmt.Errorf("writing config file: %w", err)
	}

	return configPath, nil
}

// HistoryPath returns the configured history file, defaulting to
// history.json in the config directory.
func (c *Config) HistoryPath() (string, error) {
	if c.History.Path != "" {
		return expandHome(c.History.Path)
	}
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "history.json"), nil
}

// backendConfig returns the section for a backend name.
func (c *Config) backendConfig(backend string) *BackendConfig {
	switch backend {
	case "anthropic":
		return &c.Anthropic
	case "openai":
		return &c.OpenAI
	case "groq":
		return &c.Groq
	case "openrouter":
		return &c.OpenRouter
	default:
		return nil
	}
}

// GetAPIKey returns the API key for the specified backend.
// Returns empty string if no key is configured.
func (c *Config) GetAPIKey(backend string) string {
	if b := c.backendConfig(backend); b != nil {
		return b.APIKey
	}
	return ""
}

// GetModel returns the model for the specified backend.
func (c *Config) GetModel(backend string) string {
	if b := c.backendConfig(backend); b != nil {
		return b.Model
	}
	return ""
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.backendConfig(c.Backend) == nil {
		return fmt.Errorf("invalid backend: %s (must be anthropic, openai, groq, or openrouter)", c.Backend)
	}

	switch c.OutputFormat {
	case "text", "json", "yaml":
	default:
		return fmt.Errorf("invalid output_format: %s (must be text, json, or yaml)", c.OutputFormat)
	}

	switch c.Color {
	case "auto", "always", "never":
	default:
		return fmt.Errorf("invalid color: %s (must be auto, always, or never)", c.Color)
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Log.Level)
	}

	if c.Advanced.TimeoutSeconds <= 0 {
		return fmt.Errorf("timeout_seconds must be positive")
	}

	if c.Advanced.MaxTokens <= 0 {
		return fmt.Errorf("max_tokens must be positive")
	}

	if c.History.MaxEntries <= 0 {
		return fmt.Errorf("history max_entries must be positive")
	}

	return nil
}

// expandHome replaces a leading "~/" with the user's home directory.
func expandHome(path string) (string, error) {
	if len(path) < 2 || path[:2] != "~/" {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, path[2:]), nil
}
