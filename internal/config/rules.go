package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/user/cmdlens/internal/safety"
)

// LoadRulePack reads a rule pack file. Unknown keys are rejected so a typo
// such as "dangerous_command" fails loudly instead of silently doing nothing.
func LoadRulePack(path string) (safety.RulePack, error) {
	var pack safety.RulePack

	data, err := os.ReadFile(path)
	if err != nil {
		return pack, fmt.Errorf("reading rule pack: %w", err)
	}

	dec := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields()
	if err := dec.Decode(&pack); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return pack, fmt.Errorf("rule pack %s has unknown keys:\n%s", path, strict.String())
		}
		var decErr *toml.DecodeError
		if errors.As(err, &decErr) {
			row, col := decErr.Position()
			return pack, fmt.Errorf("rule pack %s:%d:%d: %w", path, row, col, err)
		}
		return pack, fmt.Errorf("rule pack %s: %w", path, err)
	}

	return pack, nil
}

// RulePacks returns the packs this configuration adds to the built-in rules:
// the rules file, then the critical_commands list.
func (c *Config) RulePacks() ([]safety.RulePack, error) {
	var packs []safety.RulePack

	if c.Rules.File != "" {
		path, err := expandHome(c.Rules.File)
		if err != nil {
			return nil, err
		}
		pack, err := LoadRulePack(path)
		if err != nil {
			return nil, err
		}
		packs = append(packs, pack)
	}

	if len(c.Rules.CriticalCommands) > 0 {
		packs = append(packs, safety.RulePack{CriticalCommands: c.Rules.CriticalCommands})
	}

	return packs, nil
}

// Registry builds the safety registry for this configuration. Without any
// extra rules the shared default registry is returned.
func (c *Config) Registry() (*safety.Registry, error) {
	packs, err := c.RulePacks()
	if err != nil {
		return nil, err
	}
	if len(packs) == 0 {
		return safety.DefaultRegistry(), nil
	}
	r, err := safety.NewRegistry(packs...)
	if err != nil {
		return nil, fmt.Errorf("building rules: %w", err)
	}
	return r, nil
}
