package layout

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"gitlab.com/tinyland/lab/tessera/pkg/cassowary"
)

// newTestSolver returns a quiet solver with a naming context.
func newTestSolver() *Solver {
	return NewSolver(NewVarNames())
}

// changeFor finds the harvested change for a given variable.
func changeFor(t *testing.T, changes []Change, v cassowary.Variable) Change {
	t.Helper()
	for _, c := range changes {
		if c.Var == v {
			return c
		}
	}
	t.Fatalf("no change for variable %d in %v", v, changes)
	return Change{}
}

func approxVal(t *testing.T, label string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-6 {
		t.Errorf("%s: got %v, want %v", label, got, want)
	}
}

func TestAddWidgetHarvestScenario(t *testing.T) {
	s := newTestSolver()
	b := NewBuilder().Width(100).Left(0)
	var bounds Rect
	if err := s.AddWidget(1, "a", b, &bounds); err != nil {
		t.Fatalf("AddWidget: %v", err)
	}

	changes := s.FetchChanges()
	wc := changeFor(t, changes, b.Vars.Width)
	if wc.Widget != 1 {
		t.Errorf("width change widget: got %d, want 1", wc.Widget)
	}
	approxVal(t, "width", wc.Value, 100)
	lc := changeFor(t, changes, b.Vars.Left)
	if lc.Widget != 1 {
		t.Errorf("left change widget: got %d, want 1", lc.Widget)
	}
	approxVal(t, "left", lc.Value, 0)
}

func TestFetchChangesTwiceIsEmpty(t *testing.T) {
	s := newTestSolver()
	b := NewBuilder().Size(100, 40).Position(0, 0)
	var bounds Rect
	if err := s.AddWidget(1, "a", b, &bounds); err != nil {
		t.Fatalf("AddWidget: %v", err)
	}
	if first := s.FetchChanges(); len(first) == 0 {
		t.Fatal("first harvest empty, want geometry deltas")
	}
	if second := s.FetchChanges(); len(second) != 0 {
		t.Fatalf("second harvest with no mutation: got %v, want empty", second)
	}
}

func TestRemoveWidgetCleansEverything(t *testing.T) {
	s := newTestSolver()
	b := NewBuilder().Width(100).Left(0)
	var bounds Rect
	if err := s.AddWidget(1, "a", b, &bounds); err != nil {
		t.Fatalf("AddWidget: %v", err)
	}
	installed := b.Constraints()
	s.FetchChanges()

	if err := s.RemoveWidget(&b.Vars); err != nil {
		t.Fatalf("RemoveWidget: %v", err)
	}

	for _, c := range installed {
		if s.HasConstraint(c) {
			t.Errorf("constraint still installed after removal: %s", FormatConstraint(c, s.names))
		}
	}
	for _, v := range b.Vars.Array() {
		if _, ok := s.varWidgets[v]; ok {
			t.Errorf("variable %d still mapped to a widget", v)
		}
		if set, ok := s.varConstraints[v]; ok && len(set) > 0 {
			t.Errorf("variable %d still has %d indexed constraints", v, len(set))
		}
	}
	if len(s.constraintVars) != 0 {
		t.Errorf("constraint index not empty after removal: %d entries", len(s.constraintVars))
	}
	if changes := s.FetchChanges(); len(changes) != 0 {
		t.Fatalf("harvest after removal: got %v, want empty", changes)
	}
}

func TestRemoveWidgetSymmetricCleanup(t *testing.T) {
	s := newTestSolver()
	a := NewBuilder().Position(0, 0).Size(50, 50)
	bld := NewBuilder().Size(50, 50).Top(0)
	bld.RightOf(&a.Vars, 0)
	var ra, rb Rect
	if err := s.AddWidget(1, "a", a, &ra); err != nil {
		t.Fatalf("add a: %v", err)
	}
	if err := s.AddWidget(2, "b", bld, &rb); err != nil {
		t.Fatalf("add b: %v", err)
	}

	// Removing b must also strip the cross constraint from a's right
	// edge index, leaving no dangling reference.
	if err := s.RemoveWidget(&bld.Vars); err != nil {
		t.Fatalf("remove b: %v", err)
	}
	if set := s.varConstraints[a.Vars.Right]; len(set) != 0 {
		for c := range set {
			if !s.HasConstraint(c) {
				t.Errorf("dangling reference on a.right: %s", FormatConstraint(c, s.names))
			}
		}
	}
}

func TestHideUnhideRoundTrip(t *testing.T) {
	s := newTestSolver()
	b := NewBuilder().Width(100).Left(0)
	var bounds Rect
	if err := s.AddWidget(1, "a", b, &bounds); err != nil {
		t.Fatalf("AddWidget: %v", err)
	}
	installed := b.Constraints()

	if err := s.HideWidget(1, &b.Vars); err != nil {
		t.Fatalf("hide: %v", err)
	}
	for _, c := range installed {
		if s.HasConstraint(c) {
			t.Errorf("constraint installed while hidden: %s", FormatConstraint(c, s.names))
		}
	}
	// Indices are untouched by hide.
	for _, v := range b.Vars.Array() {
		if _, ok := s.varWidgets[v]; !ok {
			t.Errorf("hide dropped widget mapping for %d", v)
		}
	}

	if err := s.UnhideWidget(1); err != nil {
		t.Fatalf("unhide: %v", err)
	}
	for _, c := range installed {
		if !s.HasConstraint(c) {
			t.Errorf("constraint missing after unhide: %s", FormatConstraint(c, s.names))
		}
	}
}

func TestHideIsIdempotent(t *testing.T) {
	s := newTestSolver()
	b := NewBuilder().Width(100)
	var bounds Rect
	if err := s.AddWidget(1, "a", b, &bounds); err != nil {
		t.Fatalf("AddWidget: %v", err)
	}
	if err := s.HideWidget(1, &b.Vars); err != nil {
		t.Fatalf("hide: %v", err)
	}
	stored := len(s.hidden[1])
	if err := s.HideWidget(1, &b.Vars); err != nil {
		t.Fatalf("second hide: %v", err)
	}
	if got := len(s.hidden[1]); got != stored {
		t.Errorf("second hide changed stored list: %d -> %d", stored, got)
	}
	// Unhide twice: the second is a no-op.
	if err := s.UnhideWidget(1); err != nil {
		t.Fatalf("unhide: %v", err)
	}
	if err := s.UnhideWidget(1); err != nil {
		t.Fatalf("second unhide: %v", err)
	}
}

func TestHideCollectsPerVariableTouch(t *testing.T) {
	s := newTestSolver()
	b := NewBuilder()
	// One constraint touching two of the widget's own variables is
	// collected once per touch; reinstall tolerates the duplicate.
	square := cassowary.Eq(cassowary.VarExpr(b.Vars.Width), cassowary.VarExpr(b.Vars.Height), cassowary.Required)
	b.AddConstraint(square).Width(80)
	var bounds Rect
	if err := s.AddWidget(1, "a", b, &bounds); err != nil {
		t.Fatalf("AddWidget: %v", err)
	}
	if err := s.HideWidget(1, &b.Vars); err != nil {
		t.Fatalf("hide: %v", err)
	}
	seen := 0
	for _, c := range s.hidden[1] {
		if c == square {
			seen++
		}
	}
	if seen != 2 {
		t.Errorf("square constraint collected %d times, want 2", seen)
	}
	if err := s.UnhideWidget(1); err != nil {
		t.Fatalf("unhide with duplicates: %v", err)
	}
	if !s.HasConstraint(square) {
		t.Error("square constraint not reinstalled")
	}
}

func TestDeferredValuesSeedLateWidget(t *testing.T) {
	s := newTestSolver()
	late := NewBuilder()

	// Constraints land before the widget exists; the solve legitimately
	// runs ahead of registration.
	pre := BuilderFor(late.Vars).
		AddConstraint(cassowary.Eq(cassowary.VarExpr(late.Vars.Width), cassowary.ConstExpr(80), cassowary.Required)).
		AddConstraint(cassowary.Eq(cassowary.VarExpr(late.Vars.Left), cassowary.ConstExpr(5), cassowary.Required)).
		AddConstraint(cassowary.Eq(cassowary.VarExpr(late.Vars.Right), cassowary.ConstExpr(85), cassowary.Required))
	if err := s.UpdateFromBuilder(pre); err != nil {
		t.Fatalf("UpdateFromBuilder: %v", err)
	}

	if changes := s.FetchChanges(); len(changes) != 0 {
		t.Fatalf("harvest before registration: got widget-scoped %v, want all deferred", changes)
	}

	bounds := Rect{Y: 7, Height: 3}
	if err := s.AddWidget(9, "late", late, &bounds); err != nil {
		t.Fatalf("AddWidget: %v", err)
	}
	// Solved values seed their fields; untouched fields keep the caller
	// defaults. The derived right edge owns no field and its deferred
	// value is discarded.
	want := Rect{X: 5, Y: 7, Width: 80, Height: 3}
	if diff := cmp.Diff(want, bounds, cmpopts.EquateApprox(0, 1e-6)); diff != "" {
		t.Errorf("seeded bounds mismatch (-want +got):\n%s", diff)
	}
	if _, ok := s.deferred[late.Vars.Right]; ok {
		t.Error("deferred right value not discarded on registration")
	}
}

func TestEditStrengthCacheUsedOnFirstSuggest(t *testing.T) {
	s := newTestSolver()
	b := NewBuilder().WidthStrength(50, cassowary.Medium)
	b.Editable(b.Vars.Width, cassowary.Weak)
	var bounds Rect
	if err := s.AddWidget(1, "a", b, &bounds); err != nil {
		t.Fatalf("AddWidget: %v", err)
	}
	if s.HasEditVariable(b.Vars.Width) {
		t.Fatal("strength-only directive installed an edit variable")
	}

	if err := s.EditVariable(b.Vars.Width, 10); err != nil {
		t.Fatalf("EditVariable: %v", err)
	}
	if !s.HasEditVariable(b.Vars.Width) {
		t.Fatal("edit variable not installed on first suggest")
	}
	if _, ok := s.editStrengths[b.Vars.Width]; ok {
		t.Error("cached strength not consumed")
	}
	// The cached Weak strength loses to the Medium width preference; a
	// wrongly applied Strong default would win instead.
	approxVal(t, "weak edit loses", s.Value(b.Vars.Width), 50)
}

func TestEditVariableDefaultStrongStrength(t *testing.T) {
	s := newTestSolver()
	b := NewBuilder().WidthStrength(50, cassowary.Medium)
	var bounds Rect
	if err := s.AddWidget(1, "a", b, &bounds); err != nil {
		t.Fatalf("AddWidget: %v", err)
	}
	if err := s.EditVariable(b.Vars.Width, 10); err != nil {
		t.Fatalf("EditVariable: %v", err)
	}
	approxVal(t, "strong edit wins", s.Value(b.Vars.Width), 10)

	// Re-suggesting only re-suggests; no reinstall.
	if err := s.EditVariable(b.Vars.Width, 30); err != nil {
		t.Fatalf("re-suggest: %v", err)
	}
	approxVal(t, "re-suggested", s.Value(b.Vars.Width), 30)
}

func TestEditDirectiveWithValueInstallsImmediately(t *testing.T) {
	s := newTestSolver()
	b := NewBuilder()
	b.EditValue(b.Vars.Width, 120, cassowary.Strong)
	var bounds Rect
	if err := s.AddWidget(1, "a", b, &bounds); err != nil {
		t.Fatalf("AddWidget: %v", err)
	}
	if !s.HasEditVariable(b.Vars.Width) {
		t.Fatal("edit directive with value did not install")
	}
	approxVal(t, "suggested during ingestion", s.Value(b.Vars.Width), 120)
}

func TestDuplicateConstraintIngestionFails(t *testing.T) {
	s := newTestSolver()
	b := NewBuilder().Width(100)
	var bounds Rect
	if err := s.AddWidget(1, "a", b, &bounds); err != nil {
		t.Fatalf("AddWidget: %v", err)
	}
	dup := BuilderFor(b.Vars).AddConstraint(b.Constraints()[2])
	err := s.UpdateFromBuilder(dup)
	if !errors.Is(err, cassowary.ErrDuplicateConstraint) {
		t.Fatalf("duplicate ingestion: got %v, want ErrDuplicateConstraint", err)
	}
}

func TestHasConstraintAcrossHide(t *testing.T) {
	s := newTestSolver()
	b := NewBuilder().Width(100)
	var bounds Rect
	if err := s.AddWidget(1, "a", b, &bounds); err != nil {
		t.Fatalf("AddWidget: %v", err)
	}
	width := b.Constraints()[2]
	if !s.HasConstraint(width) {
		t.Fatal("width constraint not installed")
	}
	if err := s.HideWidget(1, &b.Vars); err != nil {
		t.Fatalf("hide: %v", err)
	}
	if s.HasConstraint(width) {
		t.Error("width constraint reported installed while hidden")
	}
	if err := s.UnhideWidget(1); err != nil {
		t.Fatalf("unhide: %v", err)
	}
	if !s.HasConstraint(width) {
		t.Error("width constraint missing after unhide")
	}
}

func TestRemoveAfterHarvestEmitsNothingForWidget(t *testing.T) {
	s := newTestSolver()
	b := NewBuilder().Width(100).Left(0)
	var bounds Rect
	if err := s.AddWidget(1, "a", b, &bounds); err != nil {
		t.Fatalf("AddWidget: %v", err)
	}
	s.FetchChanges()
	if err := s.RemoveWidget(&b.Vars); err != nil {
		t.Fatalf("RemoveWidget: %v", err)
	}
	for _, c := range s.FetchChanges() {
		if c.Widget == 1 {
			t.Errorf("change for removed widget: %+v", c)
		}
	}
}

func TestCrossWidgetChainSolves(t *testing.T) {
	s := newTestSolver()
	a := NewBuilder().Position(0, 0).Size(30, 10)
	bld := NewBuilder().Size(70, 10).Top(0)
	bld.RightOf(&a.Vars, 0)
	var ra, rb Rect
	if err := s.AddWidget(1, "a", a, &ra); err != nil {
		t.Fatalf("add a: %v", err)
	}
	if err := s.AddWidget(2, "b", bld, &rb); err != nil {
		t.Fatalf("add b: %v", err)
	}
	changes := s.FetchChanges()
	got := changeFor(t, changes, bld.Vars.Left)
	if got.Widget != 2 {
		t.Errorf("b.left widget: got %d, want 2", got.Widget)
	}
	approxVal(t, "b.left", got.Value, 30)
}

func TestApplyMapsVariablesToFields(t *testing.T) {
	vars := NewLayoutVars()
	var r Rect
	if !vars.Apply(&r, vars.Width, 42) {
		t.Fatal("Apply rejected width")
	}
	if r.Width != 42 {
		t.Errorf("width: got %v, want 42", r.Width)
	}
	if vars.Apply(&r, vars.Right, 99) {
		t.Error("Apply accepted derived right edge")
	}
	if vars.Apply(&r, cassowary.NewVariable(), 1) {
		t.Error("Apply accepted foreign variable")
	}
}
