package tui

import (
	"math"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"gitlab.com/tinyland/lab/tessera/pkg/config"
	"gitlab.com/tinyland/lab/tessera/pkg/layout"
)

func newTestModel(t *testing.T) *Model {
	t.Helper()
	m, err := NewModel(config.DefaultConfig(), layout.NewSolver(layout.NewVarNames()))
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}
	return m
}

func TestResizeSolvesPaneRow(t *testing.T) {
	m := newTestModel(t)
	if err := m.Resize(120, 40); err != nil {
		t.Fatalf("Resize: %v", err)
	}

	// The sidebar keeps its strong preferred width.
	sidebar := m.panes[0]
	if math.Abs(sidebar.bounds.Width-30) > 1e-6 {
		t.Errorf("sidebar width: got %v, want 30", sidebar.bounds.Width)
	}
	// Panes tile left to right without gaps.
	x := 0.0
	for _, p := range m.panes {
		if math.Abs(p.bounds.X-x) > 1e-6 {
			t.Errorf("pane %s x: got %v, want %v", p.name, p.bounds.X, x)
		}
		if math.Abs(p.bounds.Height-40) > 1e-6 {
			t.Errorf("pane %s height: got %v, want 40", p.name, p.bounds.Height)
		}
		x += p.bounds.Width
	}
	// The row's trailing edge reaches the window edge.
	last := m.panes[len(m.panes)-1]
	if math.Abs(last.bounds.X+last.bounds.Width-120) > 1e-6 {
		t.Errorf("row right edge: got %v, want 120", last.bounds.X+last.bounds.Width)
	}
}

func TestResizeTwiceReSuggestsOnly(t *testing.T) {
	m := newTestModel(t)
	if err := m.Resize(120, 40); err != nil {
		t.Fatalf("first resize: %v", err)
	}
	if err := m.Resize(80, 24); err != nil {
		t.Fatalf("second resize: %v", err)
	}
	for _, p := range m.panes {
		if math.Abs(p.bounds.Height-24) > 1e-6 {
			t.Errorf("pane %s height after shrink: got %v, want 24", p.name, p.bounds.Height)
		}
	}
}

func TestTogglePaneHidesAndRestores(t *testing.T) {
	m := newTestModel(t)
	if err := m.Resize(120, 40); err != nil {
		t.Fatalf("Resize: %v", err)
	}
	if err := m.TogglePane(0); err != nil {
		t.Fatalf("hide: %v", err)
	}
	if !m.panes[0].hidden {
		t.Fatal("pane not marked hidden")
	}
	if err := m.TogglePane(0); err != nil {
		t.Fatalf("unhide: %v", err)
	}
	if m.panes[0].hidden {
		t.Fatal("pane still marked hidden")
	}
	// Out-of-range toggles are ignored.
	if err := m.TogglePane(99); err != nil {
		t.Fatalf("out of range toggle: %v", err)
	}
}

func TestUpdateHandlesWindowSize(t *testing.T) {
	m := newTestModel(t)
	model, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	got := model.(*Model)
	if got.width != 100 || got.height != 30 {
		t.Errorf("size: got %dx%d, want 100x30", got.width, got.height)
	}
	if got.err != nil {
		t.Errorf("resize error: %v", got.err)
	}
}

func TestViewMentionsPanes(t *testing.T) {
	m := newTestModel(t)
	if view := m.View(); !strings.Contains(view, "solving") {
		t.Errorf("pre-size view: %q", view)
	}
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 20})
	view := m.View()
	for _, name := range []string{"sidebar", "main", "inspector"} {
		if !strings.Contains(view, name) {
			t.Errorf("view missing pane %q", name)
		}
	}
}

func TestDumpWritesDiagnostics(t *testing.T) {
	m := newTestModel(t)
	var out strings.Builder
	if err := m.Dump(&out, 120, 40); err != nil {
		t.Fatalf("Dump: %v", err)
	}
	s := out.String()
	if !strings.Contains(s, "CONSTRAINTS") || !strings.Contains(s, "VARIABLES") {
		t.Errorf("dump missing sections: %q", s)
	}
	if !strings.Contains(s, "sidebar.width") {
		t.Errorf("dump missing named variable: %q", s)
	}
}
