package layout

import "gitlab.com/tinyland/lab/tessera/pkg/cassowary"

// EditVar is one edit-variable directive in a layout declaration.
// With HasVal set, ingestion installs the edit variable (if needed) and
// suggests Val immediately. Without it, only the strength is recorded,
// deferring solver work until a value is actually suggested through
// Solver.EditVariable.
type EditVar struct {
	Var      cassowary.Variable
	Val      float64
	HasVal   bool
	Strength cassowary.Strength
}

// Builder accumulates a widget's layout declaration: its geometry
// variables, the constraints relating them, and any edit-variable
// directives. A Builder is handed to Solver.AddWidget (or to
// Solver.UpdateFromBuilder for constraints spanning existing widgets).
type Builder struct {
	Vars        LayoutVars
	constraints []*cassowary.Constraint
	editVars    []EditVar
}

// NewBuilder allocates fresh layout variables and seeds the required
// derivation constraints tying the right and bottom edges to them.
func NewBuilder() *Builder {
	b := &Builder{Vars: NewLayoutVars()}
	b.constraints = append(b.constraints,
		cassowary.Eq(
			cassowary.VarExpr(b.Vars.Right),
			cassowary.VarExpr(b.Vars.Left).Plus(cassowary.VarExpr(b.Vars.Width)),
			cassowary.Required,
		),
		cassowary.Eq(
			cassowary.VarExpr(b.Vars.Bottom),
			cassowary.VarExpr(b.Vars.Top).Plus(cassowary.VarExpr(b.Vars.Height)),
			cassowary.Required,
		),
	)
	return b
}

// BuilderFor wraps existing layout variables in an empty declaration,
// without re-seeding the derivation constraints NewBuilder adds. Use it
// for bundles that add constraints or edit directives to a widget whose
// declaration already exists (or will exist) elsewhere.
func BuilderFor(vars LayoutVars) *Builder {
	return &Builder{Vars: vars}
}

// AddConstraint appends raw constraints to the declaration.
func (b *Builder) AddConstraint(cs ...*cassowary.Constraint) *Builder {
	b.constraints = append(b.constraints, cs...)
	return b
}

// Width constrains the widget's width to w (required).
func (b *Builder) Width(w float64) *Builder {
	return b.WidthStrength(w, cassowary.Required)
}

// WidthStrength constrains the widget's width to w at strength s.
func (b *Builder) WidthStrength(w float64, s cassowary.Strength) *Builder {
	return b.AddConstraint(cassowary.Eq(cassowary.VarExpr(b.Vars.Width), cassowary.ConstExpr(w), s))
}

// Height constrains the widget's height to h (required).
func (b *Builder) Height(h float64) *Builder {
	return b.HeightStrength(h, cassowary.Required)
}

// HeightStrength constrains the widget's height to h at strength s.
func (b *Builder) HeightStrength(h float64, s cassowary.Strength) *Builder {
	return b.AddConstraint(cassowary.Eq(cassowary.VarExpr(b.Vars.Height), cassowary.ConstExpr(h), s))
}

// Size constrains both dimensions (required).
func (b *Builder) Size(w, h float64) *Builder {
	return b.Width(w).Height(h)
}

// Left constrains the widget's left edge to x (required).
func (b *Builder) Left(x float64) *Builder {
	return b.AddConstraint(cassowary.Eq(cassowary.VarExpr(b.Vars.Left), cassowary.ConstExpr(x), cassowary.Required))
}

// Top constrains the widget's top edge to y (required).
func (b *Builder) Top(y float64) *Builder {
	return b.AddConstraint(cassowary.Eq(cassowary.VarExpr(b.Vars.Top), cassowary.ConstExpr(y), cassowary.Required))
}

// Position constrains both origin coordinates (required).
func (b *Builder) Position(x, y float64) *Builder {
	return b.Left(x).Top(y)
}

// MinWidth keeps the width at or above w at strength s.
func (b *Builder) MinWidth(w float64, s cassowary.Strength) *Builder {
	return b.AddConstraint(cassowary.GE(cassowary.VarExpr(b.Vars.Width), cassowary.ConstExpr(w), s))
}

// MinHeight keeps the height at or above h at strength s.
func (b *Builder) MinHeight(h float64, s cassowary.Strength) *Builder {
	return b.AddConstraint(cassowary.GE(cassowary.VarExpr(b.Vars.Height), cassowary.ConstExpr(h), s))
}

// AlignLeft pins this widget's left edge to another widget's.
func (b *Builder) AlignLeft(other *LayoutVars) *Builder {
	return b.AddConstraint(cassowary.Eq(cassowary.VarExpr(b.Vars.Left), cassowary.VarExpr(other.Left), cassowary.Required))
}

// AlignTop pins this widget's top edge to another widget's.
func (b *Builder) AlignTop(other *LayoutVars) *Builder {
	return b.AddConstraint(cassowary.Eq(cassowary.VarExpr(b.Vars.Top), cassowary.VarExpr(other.Top), cassowary.Required))
}

// RightOf places this widget's left edge at other's right edge plus
// padding.
func (b *Builder) RightOf(other *LayoutVars, padding float64) *Builder {
	return b.AddConstraint(cassowary.Eq(
		cassowary.VarExpr(b.Vars.Left),
		cassowary.VarExpr(other.Right).AddConstant(padding),
		cassowary.Required,
	))
}

// Below places this widget's top edge at other's bottom edge plus
// padding.
func (b *Builder) Below(other *LayoutVars, padding float64) *Builder {
	return b.AddConstraint(cassowary.Eq(
		cassowary.VarExpr(b.Vars.Top),
		cassowary.VarExpr(other.Bottom).AddConstant(padding),
		cassowary.Required,
	))
}

// EditValue declares v editable at strength s and suggests val during
// ingestion.
func (b *Builder) EditValue(v cassowary.Variable, val float64, s cassowary.Strength) *Builder {
	b.editVars = append(b.editVars, EditVar{Var: v, Val: val, HasVal: true, Strength: s})
	return b
}

// Editable declares v as potentially editable at strength s without
// suggesting a value. The strength is cached and used when a value is
// first suggested through Solver.EditVariable.
func (b *Builder) Editable(v cassowary.Variable, s cassowary.Strength) *Builder {
	b.editVars = append(b.editVars, EditVar{Var: v, Strength: s})
	return b
}

// Constraints returns the declared constraints in declaration order.
func (b *Builder) Constraints() []*cassowary.Constraint {
	return b.constraints
}

// EditVars returns the declared edit-variable directives.
func (b *Builder) EditVars() []EditVar {
	return b.editVars
}
