// Package layout is the constraint-solving core of the widget toolkit.
// It wraps the incremental cassowary engine with the bookkeeping a live
// widget tree needs: which widget owns which geometry variable, which
// constraints touch which variables, constraints parked while a widget
// is hidden, and solved values that arrived before their widget was
// registered.
//
// The wrapper guarantees the engine never sees a duplicate add or a
// remove of an absent constraint, keeps its indices and the engine's
// installed set consistent under widget churn, and turns the engine's
// raw (variable, value) change feed into widget-scoped deltas.
//
// A Solver is single-owner: all mutation goes through one exclusive
// handle with no internal locking. The one exception is the VarNames
// diagnostics table, which is guarded independently.
package layout

import (
	"container/list"
	"fmt"

	"github.com/charmbracelet/log"

	"gitlab.com/tinyland/lab/tessera/pkg/cassowary"
)

// WidgetID identifies a widget. IDs are allocated by the widget tree,
// not by this package; the solver only indexes variables under them.
type WidgetID uint64

// Change is one widget-scoped layout delta from FetchChanges.
type Change struct {
	Widget WidgetID
	Var    cassowary.Variable
	Value  float64
}

// Solver keeps widget geometry in sync with the constraint engine.
type Solver struct {
	engine *cassowary.Solver

	// Mutually consistent constraint indices: c is in
	// varConstraints[v] iff v is in constraintVars[c].
	varConstraints map[cassowary.Variable]map[*cassowary.Constraint]struct{}
	constraintVars map[*cassowary.Constraint][]cassowary.Variable

	// varWidgets resolves "whose layout changed".
	varWidgets map[cassowary.Variable]WidgetID

	// hidden parks the constraints pulled from the engine while a
	// widget is hidden, for verbatim reinstall on unhide.
	hidden map[WidgetID][]*cassowary.Constraint

	// editStrengths caches strengths declared without a value, consumed
	// the first time a value is suggested for the variable.
	editStrengths map[cassowary.Variable]cassowary.Strength

	// deferred holds solved values for variables whose widget is not
	// registered yet; AddWidget consumes them.
	deferred map[cassowary.Variable]float64

	// Insertion-ordered ledger of installed constraints, diagnostics
	// only.
	ledger      *list.List
	ledgerElems map[*cassowary.Constraint]*list.Element

	names  *VarNames
	logger *log.Logger
}

// NewSolver creates a solver around a fresh engine. names is the
// optional diagnostics naming context; nil disables naming.
func NewSolver(names *VarNames) *Solver {
	return &Solver{
		engine:         cassowary.NewSolver(),
		varConstraints: make(map[cassowary.Variable]map[*cassowary.Constraint]struct{}),
		constraintVars: make(map[*cassowary.Constraint][]cassowary.Variable),
		varWidgets:     make(map[cassowary.Variable]WidgetID),
		hidden:         make(map[WidgetID][]*cassowary.Constraint),
		editStrengths:  make(map[cassowary.Variable]cassowary.Strength),
		deferred:       make(map[cassowary.Variable]float64),
		ledger:         list.New(),
		ledgerElems:    make(map[*cassowary.Constraint]*list.Element),
		names:          names,
		logger:         log.Default(),
	}
}

// SetLogger replaces the solver's debug logger.
func (s *Solver) SetLogger(l *log.Logger) {
	s.logger = l
}

// AddWidget registers a widget's layout declaration. The four primary
// variables are mapped to the widget before the declaration is
// ingested, so constraints referencing them resolve correctly in later
// harvests. Any value the engine already solved for the primaries seeds
// the corresponding bounds field and leaves the deferred cache;
// deferred right/bottom values are discarded. A non-empty name records
// "{name}.{edge}" diagnostics names for all six edges.
//
// A returned error means the declaration was rejected by the engine
// and the mutation batch should be treated as fatally inconsistent.
func (s *Solver) AddWidget(id WidgetID, name string, b *Builder, bounds *Rect) error {
	vars := &b.Vars
	s.varWidgets[vars.Left] = id
	s.varWidgets[vars.Top] = id
	s.varWidgets[vars.Width] = id
	s.varWidgets[vars.Height] = id

	if val, ok := s.deferred[vars.Left]; ok {
		bounds.X = val
		delete(s.deferred, vars.Left)
	}
	if val, ok := s.deferred[vars.Top]; ok {
		bounds.Y = val
		delete(s.deferred, vars.Top)
	}
	if val, ok := s.deferred[vars.Width]; ok {
		bounds.Width = val
		delete(s.deferred, vars.Width)
	}
	if val, ok := s.deferred[vars.Height]; ok {
		bounds.Height = val
		delete(s.deferred, vars.Height)
	}
	delete(s.deferred, vars.Right)
	delete(s.deferred, vars.Bottom)

	if name != "" {
		s.AddDebugVarName(vars.Left, name+".left")
		s.AddDebugVarName(vars.Top, name+".top")
		s.AddDebugVarName(vars.Right, name+".right")
		s.AddDebugVarName(vars.Bottom, name+".bottom")
		s.AddDebugVarName(vars.Width, name+".width")
		s.AddDebugVarName(vars.Height, name+".height")
	}

	return s.UpdateFromBuilder(b)
}

// RemoveWidget tears down every constraint still installed that touches
// any of the widget's four primary variables, with symmetric cleanup of
// the sibling variables' constraint sets, then drops the variables from
// the widget index. Constraints indexed under descendant widgets are
// not reached; removal is not recursive over children.
func (s *Solver) RemoveWidget(vars *LayoutVars) error {
	for _, v := range vars.Array() {
		if set, ok := s.varConstraints[v]; ok {
			delete(s.varConstraints, v)
			for c := range set {
				if !s.engine.HasConstraint(c) {
					continue
				}
				s.dropFromLedger(c)
				if err := s.engine.RemoveConstraint(c); err != nil {
					return fmt.Errorf("layout: removing %s: %w", FormatConstraint(c, s.names), err)
				}
				// Symmetric cleanup: every other variable this
				// constraint references must forget it too.
				for _, other := range s.constraintVars[c] {
					if otherSet, ok := s.varConstraints[other]; ok {
						delete(otherSet, c)
					}
				}
				delete(s.constraintVars, c)
			}
		}
		delete(s.varWidgets, v)
	}
	return nil
}

// HideWidget pulls every installed constraint touching the widget's
// four primary variables out of the engine, keeping the indices intact,
// and parks the collected list for UnhideWidget. Hiding an already
// hidden widget is a no-op. A constraint touching two of the widget's
// variables is collected once per touch; reinstall tolerates the
// duplicates.
func (s *Solver) HideWidget(id WidgetID, vars *LayoutVars) error {
	if _, ok := s.hidden[id]; ok {
		return nil
	}
	var constraints []*cassowary.Constraint
	for _, v := range vars.Array() {
		for c := range s.varConstraints[v] {
			if s.engine.HasConstraint(c) {
				if err := s.engine.RemoveConstraint(c); err != nil {
					return fmt.Errorf("layout: hiding %s: %w", FormatConstraint(c, s.names), err)
				}
			}
			constraints = append(constraints, c)
		}
	}
	s.hidden[id] = constraints
	return nil
}

// UnhideWidget reinstalls the constraint list parked by HideWidget.
// Unhiding a widget that is not hidden is a no-op. Install is
// idempotent: constraints already present (duplicates in the parked
// list, or reinstalled through another path) are skipped.
func (s *Solver) UnhideWidget(id WidgetID) error {
	constraints, ok := s.hidden[id]
	if !ok {
		return nil
	}
	delete(s.hidden, id)
	for _, c := range constraints {
		if !s.engine.HasConstraint(c) {
			if err := s.engine.AddConstraint(c); err != nil {
				return fmt.Errorf("layout: unhiding %s: %w", FormatConstraint(c, s.names), err)
			}
		}
	}
	return nil
}

// EditVariable suggests a target value for v, installing it as an edit
// variable on first use. The install strength is the one cached by a
// strength-only directive, or Strong. Later calls only re-suggest,
// which is a cheap incremental re-solve.
func (s *Solver) EditVariable(v cassowary.Variable, val float64) error {
	if !s.engine.HasEditVariable(v) {
		strength := cassowary.Strong
		if cached, ok := s.editStrengths[v]; ok {
			strength = cached
			delete(s.editStrengths, v)
		}
		s.logger.Debug("add edit variable", "var", FormatVariable(v, s.names), "strength", float64(strength))
		if err := s.engine.AddEditVariable(v, strength); err != nil {
			return fmt.Errorf("layout: edit %s: %w", FormatVariable(v, s.names), err)
		}
	}
	if err := s.engine.SuggestValue(v, val); err != nil {
		return fmt.Errorf("layout: suggest %s: %w", FormatVariable(v, s.names), err)
	}
	return nil
}

// HasEditVariable reports whether v is installed as an edit variable.
func (s *Solver) HasEditVariable(v cassowary.Variable) bool {
	return s.engine.HasEditVariable(v)
}

// HasConstraint reports whether c is currently installed in the engine.
func (s *Solver) HasConstraint(c *cassowary.Constraint) bool {
	return s.engine.HasConstraint(c)
}

// Value returns the engine's current solved value for v.
func (s *Solver) Value(v cassowary.Variable) float64 {
	return s.engine.GetValue(v)
}

// UpdateFromBuilder ingests a declaration bundle. Edit directives with
// a value are installed and suggested immediately; strength-only
// directives cache their strength for EditVariable. Constraints are
// installed into the engine, entered into the diagnostics ledger, and
// indexed on both sides. The engine rejecting a constraint (duplicate,
// or unsatisfiable required) aborts ingestion before that constraint
// is indexed; treat such an error as fatal to the batch.
func (s *Solver) UpdateFromBuilder(b *Builder) error {
	for _, ev := range b.editVars {
		if ev.HasVal {
			if !s.engine.HasEditVariable(ev.Var) {
				s.logger.Debug("add edit variable", "var", FormatVariable(ev.Var, s.names), "strength", float64(ev.Strength))
				if err := s.engine.AddEditVariable(ev.Var, ev.Strength); err != nil {
					return fmt.Errorf("layout: edit %s: %w", FormatVariable(ev.Var, s.names), err)
				}
			}
			if err := s.engine.SuggestValue(ev.Var, ev.Val); err != nil {
				return fmt.Errorf("layout: suggest %s: %w", FormatVariable(ev.Var, s.names), err)
			}
		} else {
			s.editStrengths[ev.Var] = ev.Strength
		}
	}
	for _, c := range b.constraints {
		if err := s.addConstraint(c); err != nil {
			return err
		}
		varList := s.constraintVars[c]
		for _, term := range c.Expression().Terms {
			set, ok := s.varConstraints[term.Variable]
			if !ok {
				set = make(map[*cassowary.Constraint]struct{})
				s.varConstraints[term.Variable] = set
			}
			set[c] = struct{}{}
			varList = append(varList, term.Variable)
		}
		s.constraintVars[c] = varList
	}
	return nil
}

// addConstraint installs c into the engine and the ledger. On engine
// rejection nothing is recorded.
func (s *Solver) addConstraint(c *cassowary.Constraint) error {
	if err := s.engine.AddConstraint(c); err != nil {
		return fmt.Errorf("layout: adding %s: %w", FormatConstraint(c, s.names), err)
	}
	s.ledgerElems[c] = s.ledger.PushBack(c)
	return nil
}

// dropFromLedger removes c from the diagnostics ledger if present.
func (s *Solver) dropFromLedger(c *cassowary.Constraint) {
	if elem, ok := s.ledgerElems[c]; ok {
		s.ledger.Remove(elem)
		delete(s.ledgerElems, c)
	}
}

// FetchChanges drains the engine's changed-variable feed and resolves
// each delta to its owning widget. Deltas for variables with no
// registered widget yet are parked in the deferred-value cache and
// consumed by a later AddWidget; the engine legitimately solves ahead
// of widget registration when a batch declares constraints before
// constructing every widget they reference. Harvesting twice without
// an intervening mutation yields nothing the second time.
func (s *Solver) FetchChanges() []Change {
	var changes []Change
	for _, vc := range s.engine.FetchChanges() {
		s.logger.Debug("solver change", "var", FormatVariable(vc.Variable, s.names), "value", vc.Value)
		if id, ok := s.varWidgets[vc.Variable]; ok {
			changes = append(changes, Change{Widget: id, Var: vc.Variable, Value: vc.Value})
		} else {
			s.deferred[vc.Variable] = vc.Value
		}
	}
	return changes
}

// AddDebugVarName records a diagnostics name for v. No-op when the
// solver was built without a naming context.
func (s *Solver) AddDebugVarName(v cassowary.Variable, name string) {
	s.names.Set(v, name)
}

// Names returns the solver's naming context, possibly nil.
func (s *Solver) Names() *VarNames {
	return s.names
}

// UpdateEngine gives f direct access to the underlying engine.
// Bypassing the wrapper's indices is on the caller; intended for
// diagnostics and tests.
func (s *Solver) UpdateEngine(f func(*cassowary.Solver)) {
	f(s.engine)
}
