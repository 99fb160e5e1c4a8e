package layout

import "gitlab.com/tinyland/lab/tessera/pkg/cassowary"

// LayoutVars holds the engine variables describing one widget's
// geometry. Left, Top, Width and Height are the four primary variables
// the solver indexes a widget under; Right and Bottom are derived
// edges, tied to the primaries by required constraints the Builder
// seeds, and own no stored geometry field.
type LayoutVars struct {
	Left   cassowary.Variable
	Top    cassowary.Variable
	Width  cassowary.Variable
	Height cassowary.Variable
	Right  cassowary.Variable
	Bottom cassowary.Variable
}

// NewLayoutVars allocates fresh engine variables for all six edges.
func NewLayoutVars() LayoutVars {
	return LayoutVars{
		Left:   cassowary.NewVariable(),
		Top:    cassowary.NewVariable(),
		Width:  cassowary.NewVariable(),
		Height: cassowary.NewVariable(),
		Right:  cassowary.NewVariable(),
		Bottom: cassowary.NewVariable(),
	}
}

// Array returns the four primary variables, the ones a widget is
// registered and indexed under.
func (v *LayoutVars) Array() [4]cassowary.Variable {
	return [4]cassowary.Variable{v.Left, v.Top, v.Width, v.Height}
}

// Apply writes val into the Rect field owned by variable vr, if any.
// Returns false for variables that own no stored field (Right, Bottom,
// or a variable from another widget).
func (v *LayoutVars) Apply(r *Rect, vr cassowary.Variable, val float64) bool {
	switch vr {
	case v.Left:
		r.X = val
	case v.Top:
		r.Y = val
	case v.Width:
		r.Width = val
	case v.Height:
		r.Height = val
	default:
		return false
	}
	return true
}

// Rect is a widget's solved geometry in layout units.
type Rect struct {
	X, Y, Width, Height float64
}

// Right returns the X coordinate of the right edge.
func (r Rect) Right() float64 { return r.X + r.Width }

// Bottom returns the Y coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// Empty returns true if the rect has no area.
func (r Rect) Empty() bool { return r.Width <= 0 || r.Height <= 0 }
