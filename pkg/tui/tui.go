// Package tui is a small bubbletea demo driving the constraint solver.
// Configured panes become solver widgets laid out in a horizontal row;
// terminal resizes are fed to the solver as edit-variable suggestions
// and the solved geometry is rendered as lipgloss boxes. Number keys
// hide and unhide panes through the solver's hide protocol.
package tui

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"gitlab.com/tinyland/lab/tessera/pkg/cassowary"
	"gitlab.com/tinyland/lab/tessera/pkg/config"
	"gitlab.com/tinyland/lab/tessera/pkg/layout"
)

// pane is one configured widget and its solved geometry.
type pane struct {
	id     layout.WidgetID
	name   string
	vars   layout.LayoutVars
	bounds layout.Rect
	hidden bool
}

// keyMap defines the demo's key bindings.
type keyMap struct {
	Quit   key.Binding
	Toggle key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Toggle: key.NewBinding(
			key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"),
			key.WithHelp("1-9", "hide/unhide pane"),
		),
	}
}

// Model is the bubbletea model for the layout demo.
type Model struct {
	solver *layout.Solver
	root   layout.LayoutVars
	panes  []*pane
	keys   keyMap

	width, height int
	err           error
}

// rootID is the solver widget representing the terminal window.
const rootID layout.WidgetID = 1

// NewModel builds the solver state for the configured panes. The root
// widget's width and height are declared as potential edit variables;
// resize events suggest values for them.
func NewModel(cfg *config.Config, solver *layout.Solver) (*Model, error) {
	m := &Model{solver: solver, keys: defaultKeyMap()}

	root := layout.NewBuilder().Position(0, 0)
	root.Editable(root.Vars.Width, cassowary.Strong)
	root.Editable(root.Vars.Height, cassowary.Strong)
	m.root = root.Vars
	var rootBounds layout.Rect
	if err := solver.AddWidget(rootID, "window", root, &rootBounds); err != nil {
		return nil, fmt.Errorf("tui: declaring window: %w", err)
	}

	var prev *layout.LayoutVars
	for i, pc := range cfg.Panes {
		b := layout.NewBuilder()
		b.AlignTop(&m.root)
		b.AddConstraint(cassowary.Eq(
			cassowary.VarExpr(b.Vars.Height),
			cassowary.VarExpr(m.root.Height),
			cassowary.Required,
		))
		if prev == nil {
			b.AlignLeft(&m.root)
		} else {
			b.RightOf(prev, 0)
		}
		if pc.Width > 0 {
			b.WidthStrength(pc.Width, pc.StrengthValue())
		}
		if pc.MinWidth > 0 {
			b.MinWidth(pc.MinWidth, cassowary.Strong)
		}
		if i == len(cfg.Panes)-1 {
			// Pull the row's trailing edge to the window edge so
			// flexible panes absorb the slack.
			b.AddConstraint(cassowary.Eq(
				cassowary.VarExpr(b.Vars.Right),
				cassowary.VarExpr(m.root.Right),
				cassowary.Medium,
			))
		}

		p := &pane{id: layout.WidgetID(i + 2), name: pc.Name, vars: b.Vars}
		if err := solver.AddWidget(p.id, pc.Name, b, &p.bounds); err != nil {
			return nil, fmt.Errorf("tui: declaring pane %q: %w", pc.Name, err)
		}
		m.panes = append(m.panes, p)
		prev = &p.vars
	}
	return m, nil
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		if err := m.Resize(float64(msg.Width), float64(msg.Height)); err != nil {
			m.err = err
		}
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Toggle):
			idx, err := strconv.Atoi(msg.String())
			if err == nil {
				if err := m.TogglePane(idx - 1); err != nil {
					m.err = err
				}
			}
		}
	}
	return m, nil
}

// Resize suggests the new window dimensions to the solver and applies
// the harvested deltas to pane geometry.
func (m *Model) Resize(w, h float64) error {
	if err := m.solver.EditVariable(m.root.Width, w); err != nil {
		return err
	}
	if err := m.solver.EditVariable(m.root.Height, h); err != nil {
		return err
	}
	m.applyChanges()
	return nil
}

// TogglePane hides or unhides the pane at index i.
func (m *Model) TogglePane(i int) error {
	if i < 0 || i >= len(m.panes) {
		return nil
	}
	p := m.panes[i]
	if p.hidden {
		if err := m.solver.UnhideWidget(p.id); err != nil {
			return err
		}
	} else {
		if err := m.solver.HideWidget(p.id, &p.vars); err != nil {
			return err
		}
	}
	p.hidden = !p.hidden
	m.applyChanges()
	return nil
}

// applyChanges harvests solver deltas into pane bounds.
func (m *Model) applyChanges() {
	for _, change := range m.solver.FetchChanges() {
		for _, p := range m.panes {
			if p.id == change.Widget {
				p.vars.Apply(&p.bounds, change.Var, change.Value)
			}
		}
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 {
		return "solving layout..."
	}
	if m.err != nil {
		return fmt.Sprintf("layout error: %v\npress q to quit", m.err)
	}

	var boxes []string
	for i, p := range m.panes {
		if p.hidden {
			continue
		}
		w := int(p.bounds.Width)
		h := int(p.bounds.Height)
		if w < 4 || h < 3 {
			continue
		}
		box := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Width(w - 2).
			Height(h - 3).
			Render(fmt.Sprintf("%d %s\n%.0fx%.0f @ %.0f", i+1, p.name, p.bounds.Width, p.bounds.Height, p.bounds.X))
		boxes = append(boxes, box)
	}
	if len(boxes) == 0 {
		return "all panes hidden (1-9 to unhide, q to quit)"
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, boxes...)
}

// Dump solves the layout at a fixed size and writes the solver's
// constraint and variable dumps. Used by the -dump flag.
func (m *Model) Dump(w io.Writer, width, height float64) error {
	if err := m.Resize(width, height); err != nil {
		return err
	}
	m.solver.DebugConstraints(w)
	m.solver.DebugVariables(w)
	return nil
}
