// Package config loads the demo's pane declarations from TOML.
// Each pane becomes a widget in the constraint solver; its declared
// preferences translate to constraints at the configured strength.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"gitlab.com/tinyland/lab/tessera/pkg/cassowary"
)

// Config is the demo configuration.
type Config struct {
	General GeneralConfig `toml:"general"`
	Panes   []PaneConfig  `toml:"pane"`
}

// GeneralConfig holds app-wide settings.
type GeneralConfig struct {
	LogLevel string `toml:"log_level"`
}

// PaneConfig declares one pane's layout preferences. Width is the
// preferred width in cells (0 means flexible), MinWidth a hard-ish
// floor, and Strength the priority of the width preference.
type PaneConfig struct {
	Name     string  `toml:"name"`
	Width    float64 `toml:"width"`
	MinWidth float64 `toml:"min_width"`
	Strength string  `toml:"strength"`
}

// StrengthValue maps the declared strength name to a solver strength.
// Unrecognized or empty names default to strong.
func (p PaneConfig) StrengthValue() cassowary.Strength {
	switch p.Strength {
	case "weak":
		return cassowary.Weak
	case "medium":
		return cassowary.Medium
	case "strong", "":
		return cassowary.Strong
	case "required":
		return cassowary.Required
	}
	return cassowary.Strong
}

// Validate rejects configs the solver cannot meaningfully lay out.
func (c *Config) Validate() error {
	if len(c.Panes) == 0 {
		return fmt.Errorf("config: at least one pane is required")
	}
	seen := make(map[string]bool, len(c.Panes))
	for _, p := range c.Panes {
		if p.Name == "" {
			return fmt.Errorf("config: pane with empty name")
		}
		if seen[p.Name] {
			return fmt.Errorf("config: duplicate pane name %q", p.Name)
		}
		seen[p.Name] = true
		if p.Width < 0 || p.MinWidth < 0 {
			return fmt.Errorf("config: pane %q has negative size", p.Name)
		}
	}
	return nil
}

// Load reads configuration from the standard config path.
// Search order:
//  1. $XDG_CONFIG_HOME/tessera/config.toml
//  2. ~/.config/tessera/config.toml
//
// If no file exists, returns DefaultConfig().
func Load() (*Config, error) {
	for _, p := range configSearchPaths() {
		if _, err := os.Stat(p); err == nil {
			return LoadFromFile(p)
		}
	}
	return DefaultConfig(), nil
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}
	defer f.Close()
	return LoadFromReader(f)
}

// LoadFromReader reads configuration from an io.Reader.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{General: GeneralConfig{LogLevel: "info"}}
	if _, err := toml.NewDecoder(r).Decode(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DefaultConfig returns a three-pane layout: a fixed-preference
// sidebar, a flexible main area, and a narrow inspector.
func DefaultConfig() *Config {
	return &Config{
		General: GeneralConfig{LogLevel: "info"},
		Panes: []PaneConfig{
			{Name: "sidebar", Width: 30, MinWidth: 20, Strength: "strong"},
			{Name: "main", MinWidth: 40, Strength: "medium"},
			{Name: "inspector", Width: 24, MinWidth: 16, Strength: "medium"},
		},
	}
}

// configSearchPaths returns the ordered list of config file paths to try.
func configSearchPaths() []string {
	home, _ := os.UserHomeDir()
	var paths []string

	xdg := xdgConfigHome(home)
	paths = append(paths, filepath.Join(xdg, "tessera", "config.toml"))

	// If XDG_CONFIG_HOME was explicitly set, also try the fallback default.
	defaultXDG := filepath.Join(home, ".config")
	if xdg != defaultXDG {
		paths = append(paths, filepath.Join(defaultXDG, "tessera", "config.toml"))
	}

	return paths
}

// xdgConfigHome returns XDG_CONFIG_HOME or ~/.config as fallback.
func xdgConfigHome(home string) string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return v
	}
	return filepath.Join(home, ".config")
}
