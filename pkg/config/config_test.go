package config

import (
	"strings"
	"testing"

	"gitlab.com/tinyland/lab/tessera/pkg/cassowary"
)

func TestLoadFromReader(t *testing.T) {
	input := `
[general]
log_level = "debug"

[[pane]]
name = "nav"
width = 20
strength = "required"

[[pane]]
name = "body"
min_width = 40
`
	cfg, err := LoadFromReader(strings.NewReader(input))
	if err != nil {
		t.Fatalf("LoadFromReader: %v", err)
	}
	if cfg.General.LogLevel != "debug" {
		t.Errorf("log_level: got %q, want debug", cfg.General.LogLevel)
	}
	if len(cfg.Panes) != 2 {
		t.Fatalf("panes: got %d, want 2", len(cfg.Panes))
	}
	if cfg.Panes[0].Name != "nav" || cfg.Panes[0].Width != 20 {
		t.Errorf("nav pane: got %+v", cfg.Panes[0])
	}
	if cfg.Panes[1].MinWidth != 40 {
		t.Errorf("body min_width: got %v, want 40", cfg.Panes[1].MinWidth)
	}
}

func TestLoadFromReaderRejectsInvalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"no panes", `[general]` + "\n" + `log_level = "info"`},
		{"empty name", "[[pane]]\nwidth = 10\n"},
		{"duplicate name", "[[pane]]\nname = \"a\"\n[[pane]]\nname = \"a\"\n"},
		{"negative width", "[[pane]]\nname = \"a\"\nwidth = -5\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadFromReader(strings.NewReader(tt.input)); err == nil {
				t.Errorf("expected error for %s", tt.name)
			}
		})
	}
}

func TestStrengthValue(t *testing.T) {
	tests := []struct {
		in   string
		want cassowary.Strength
	}{
		{"weak", cassowary.Weak},
		{"medium", cassowary.Medium},
		{"strong", cassowary.Strong},
		{"required", cassowary.Required},
		{"", cassowary.Strong},
		{"bogus", cassowary.Strong},
	}
	for _, tt := range tests {
		if got := (PaneConfig{Strength: tt.in}).StrengthValue(); got != tt.want {
			t.Errorf("StrengthValue(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestDefaultConfigValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}
