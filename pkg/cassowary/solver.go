package cassowary

import (
	"fmt"
	"math"
)

// tag records the symbols a constraint introduced into the tableau so
// the constraint can later be located and removed.
type tag struct {
	marker symbol
	other  symbol
}

// editInfo tracks an installed edit variable: the synthetic constraint
// backing it and the value most recently suggested.
type editInfo struct {
	tag        tag
	constraint *Constraint
	constant   float64
}

// varData is per-variable bookkeeping: the tableau symbol, a reference
// count of installed constraints using the variable, and the value last
// reported through FetchChanges.
type varData struct {
	symbol       symbol
	count        int
	reported     float64
	everReported bool
}

// Solver is an incremental Cassowary simplex solver. The tableau is
// kept in solved form at all times, so adding or removing a single
// constraint and re-optimizing touches only the affected rows.
type Solver struct {
	cns            map[*Constraint]tag
	vars           map[Variable]*varData
	rows           map[symbol]*row
	edits          map[Variable]*editInfo
	infeasibleRows []symbol
	objective      *row
	artificial     *row
	nextSymbolID   uint64
}

// NewSolver returns an empty solver.
func NewSolver() *Solver {
	return &Solver{
		cns:       make(map[*Constraint]tag),
		vars:      make(map[Variable]*varData),
		rows:      make(map[symbol]*row),
		edits:     make(map[Variable]*editInfo),
		objective: newRow(0),
	}
}

// AddConstraint installs a constraint into the tableau and re-optimizes.
// Returns ErrDuplicateConstraint if the same constraint object is
// already installed, or ErrUnsatisfiableConstraint if the constraint is
// required and conflicts with the existing required set.
func (s *Solver) AddConstraint(c *Constraint) error {
	if _, ok := s.cns[c]; ok {
		return ErrDuplicateConstraint
	}

	// Lower the constraint into an augmented row: slack/error symbols
	// for inequalities and non-required strengths, dummy symbols so a
	// required equality stays traceable.
	r, t := s.createRow(c)
	subject := chooseSubject(r, t)

	if subject == invalidSymbol && allDummies(r) {
		if !nearZero(r.constant) {
			s.releaseRowVars(c)
			return ErrUnsatisfiableConstraint
		}
		subject = t.marker
	}

	if subject == invalidSymbol {
		ok, err := s.addWithArtificialVariable(r)
		if err != nil {
			return err
		}
		if !ok {
			s.releaseRowVars(c)
			return ErrUnsatisfiableConstraint
		}
	} else {
		r.solveFor(subject)
		s.substitute(subject, r)
		s.rows[subject] = r
	}

	s.cns[c] = t
	return s.optimize(s.objective)
}

// RemoveConstraint removes a previously added constraint and
// re-optimizes. Returns ErrUnknownConstraint if the constraint is not
// installed.
func (s *Solver) RemoveConstraint(c *Constraint) error {
	t, ok := s.cns[c]
	if !ok {
		return ErrUnknownConstraint
	}
	delete(s.cns, c)

	// Back out the error-symbol contributions before dropping the row,
	// or the objective would keep penalizing a dead constraint.
	s.removeConstraintEffects(c, t)

	if _, ok := s.rows[t.marker]; ok {
		delete(s.rows, t.marker)
	} else {
		leaving, r, err := s.markerLeavingRow(t.marker)
		if err != nil {
			return err
		}
		delete(s.rows, leaving)
		r.solveForPair(leaving, t.marker)
		s.substitute(t.marker, r)
	}

	s.releaseRowVars(c)
	return s.optimize(s.objective)
}

// HasConstraint reports whether c is currently installed.
func (s *Solver) HasConstraint(c *Constraint) bool {
	_, ok := s.cns[c]
	return ok
}

// AddEditVariable makes v editable at the given strength by installing
// a synthetic "v == 0" constraint whose constant is later shifted by
// SuggestValue. Strength must be below Required.
func (s *Solver) AddEditVariable(v Variable, strength Strength) error {
	if _, ok := s.edits[v]; ok {
		return ErrDuplicateEditVariable
	}
	strength = strength.clip()
	if strength == Required {
		return ErrBadRequiredStrength
	}
	cn := NewConstraint(VarExpr(v), Equal, strength)
	if err := s.AddConstraint(cn); err != nil {
		return fmt.Errorf("%w: installing edit constraint: %w", ErrInternal, err)
	}
	s.edits[v] = &editInfo{tag: s.cns[cn], constraint: cn}
	return nil
}

// RemoveEditVariable removes v's edit constraint.
func (s *Solver) RemoveEditVariable(v Variable) error {
	info, ok := s.edits[v]
	if !ok {
		return ErrUnknownEditVariable
	}
	if err := s.RemoveConstraint(info.constraint); err != nil {
		return fmt.Errorf("%w: removing edit constraint: %w", ErrInternal, err)
	}
	delete(s.edits, v)
	return nil
}

// HasEditVariable reports whether v is editable.
func (s *Solver) HasEditVariable(v Variable) bool {
	_, ok := s.edits[v]
	return ok
}

// SuggestValue proposes a target value for an edit variable. The
// tableau is updated with the dual simplex, which is cheap when the
// suggestion only shifts constants.
func (s *Solver) SuggestValue(v Variable, value float64) error {
	info, ok := s.edits[v]
	if !ok {
		return ErrUnknownEditVariable
	}
	delta := value - info.constant
	info.constant = value

	// Fast paths: one of the edit constraint's error symbols is basic,
	// so only that row's constant moves.
	if r, ok := s.rows[info.tag.marker]; ok {
		if r.add(-delta) < 0 {
			s.infeasibleRows = append(s.infeasibleRows, info.tag.marker)
		}
		return s.dualOptimize()
	}
	if r, ok := s.rows[info.tag.other]; ok {
		if r.add(delta) < 0 {
			s.infeasibleRows = append(s.infeasibleRows, info.tag.other)
		}
		return s.dualOptimize()
	}

	// Otherwise the delta propagates through every row holding the
	// marker symbol.
	for sym, r := range s.rows {
		coeff := r.coefficientFor(info.tag.marker)
		if coeff != 0 && r.add(delta*coeff) < 0 && sym.kind != symbolExternal {
			s.infeasibleRows = append(s.infeasibleRows, sym)
		}
	}
	return s.dualOptimize()
}

// GetValue returns the current solved value of v, or 0 if v is unknown
// or parametric.
func (s *Solver) GetValue(v Variable) float64 {
	d, ok := s.vars[v]
	if !ok {
		return 0
	}
	if r, ok := s.rows[d.symbol]; ok {
		return r.constant
	}
	return 0
}

// FetchChanges returns every variable whose solved value differs from
// the value last reported, and marks those values reported. A variable
// is always reported on its first harvest so callers learn of new
// variables even when they solve to zero. Calling FetchChanges twice
// with no intervening mutation returns nil the second time. The order
// of the returned pairs is unspecified.
func (s *Solver) FetchChanges() []VariableChange {
	var changes []VariableChange
	for v, d := range s.vars {
		val := 0.0
		if r, ok := s.rows[d.symbol]; ok {
			val = r.constant
		}
		if !d.everReported || math.Abs(val-d.reported) >= epsilon {
			changes = append(changes, VariableChange{Variable: v, Value: val})
			d.reported = val
			d.everReported = true
		}
	}
	return changes
}

// VariableChange is one entry of the FetchChanges feed.
type VariableChange struct {
	Variable Variable
	Value    float64
}

// --- internal machinery ---

func (s *Solver) newSymbol(kind symbolKind) symbol {
	s.nextSymbolID++
	return symbol{id: s.nextSymbolID, kind: kind}
}

// varSymbol returns the tableau symbol for v, allocating bookkeeping on
// first use, and bumps v's constraint reference count.
func (s *Solver) varSymbol(v Variable) symbol {
	d, ok := s.vars[v]
	if !ok {
		d = &varData{symbol: s.newSymbol(symbolExternal)}
		s.vars[v] = d
	}
	d.count++
	return d.symbol
}

// releaseRowVars drops one reference per term of c, forgetting
// variables no installed constraint uses anymore.
func (s *Solver) releaseRowVars(c *Constraint) {
	for _, t := range c.expression.Terms {
		if nearZero(t.Coefficient) {
			continue
		}
		d, ok := s.vars[t.Variable]
		if !ok {
			continue
		}
		d.count--
		if d.count <= 0 {
			delete(s.vars, t.Variable)
		}
	}
}

// createRow lowers a constraint into a tableau row, substituting any
// symbols that are already basic, and records the marker symbols.
func (s *Solver) createRow(c *Constraint) (*row, tag) {
	expr := c.expression
	r := newRow(expr.Constant)
	for _, term := range expr.Terms {
		if nearZero(term.Coefficient) {
			continue
		}
		sym := s.varSymbol(term.Variable)
		if basic, ok := s.rows[sym]; ok {
			r.insertRow(basic, term.Coefficient)
		} else {
			r.insertSymbol(sym, term.Coefficient)
		}
	}

	var t tag
	switch c.op {
	case LessOrEqual, GreaterOrEqual:
		coeff := 1.0
		if c.op == GreaterOrEqual {
			coeff = -1.0
		}
		slack := s.newSymbol(symbolSlack)
		r.insertSymbol(slack, coeff)
		t.marker = slack
		if c.strength < Required {
			errSym := s.newSymbol(symbolError)
			r.insertSymbol(errSym, -coeff)
			s.objective.insertSymbol(errSym, float64(c.strength))
			t.other = errSym
		}
	case Equal:
		if c.strength < Required {
			errPlus := s.newSymbol(symbolError)
			errMinus := s.newSymbol(symbolError)
			r.insertSymbol(errPlus, -1)
			r.insertSymbol(errMinus, 1)
			s.objective.insertSymbol(errPlus, float64(c.strength))
			s.objective.insertSymbol(errMinus, float64(c.strength))
			t.marker = errPlus
			t.other = errMinus
		} else {
			dummy := s.newSymbol(symbolDummy)
			r.insertSymbol(dummy, 1)
			t.marker = dummy
		}
	}

	// The simplex works on rows with non-negative constants.
	if r.constant < 0 {
		r.reverseSign()
	}
	return r, t
}

// chooseSubject picks the symbol the new row will be solved for: an
// external symbol if one is present, otherwise a negative-coefficient
// slack or error marker.
func chooseSubject(r *row, t tag) symbol {
	for sym := range r.cells {
		if sym.kind == symbolExternal {
			return sym
		}
	}
	if t.marker.kind == symbolSlack || t.marker.kind == symbolError {
		if r.coefficientFor(t.marker) < 0 {
			return t.marker
		}
	}
	if t.other.kind == symbolSlack || t.other.kind == symbolError {
		if r.coefficientFor(t.other) < 0 {
			return t.other
		}
	}
	return invalidSymbol
}

func allDummies(r *row) bool {
	for sym := range r.cells {
		if sym.kind != symbolDummy {
			return false
		}
	}
	return true
}

// addWithArtificialVariable introduces a temporary artificial basic
// symbol for a row that offers no obvious subject, then optimizes it
// away. Reports whether the row was satisfiable.
func (s *Solver) addWithArtificialVariable(r *row) (bool, error) {
	art := s.newSymbol(symbolSlack)
	s.rows[art] = r.clone()
	s.artificial = r.clone()

	if err := s.optimize(s.artificial); err != nil {
		return false, err
	}
	success := nearZero(s.artificial.constant)
	s.artificial = nil

	if artRow, ok := s.rows[art]; ok {
		delete(s.rows, art)
		if len(artRow.cells) == 0 {
			return success, nil
		}
		entering := anyPivotableSymbol(artRow)
		if entering == invalidSymbol {
			return false, nil
		}
		artRow.solveForPair(art, entering)
		s.substitute(entering, artRow)
		s.rows[entering] = artRow
	}
	for _, rr := range s.rows {
		rr.remove(art)
	}
	s.objective.remove(art)
	return success, nil
}

// substitute replaces sym with the given row throughout the tableau.
func (s *Solver) substitute(sym symbol, r *row) {
	for rowSym, rr := range s.rows {
		rr.substitute(sym, r)
		if rowSym.kind != symbolExternal && rr.constant < 0 {
			s.infeasibleRows = append(s.infeasibleRows, rowSym)
		}
	}
	s.objective.substitute(sym, r)
	if s.artificial != nil {
		s.artificial.substitute(sym, r)
	}
}

// optimize runs the primal simplex until the objective has no negative
// coefficients.
func (s *Solver) optimize(objective *row) error {
	for {
		entering := enteringSymbol(objective)
		if entering == invalidSymbol {
			return nil
		}
		leaving, r := s.leavingRow(entering)
		if r == nil {
			return fmt.Errorf("%w: objective is unbounded", ErrInternal)
		}
		delete(s.rows, leaving)
		r.solveForPair(leaving, entering)
		s.substitute(entering, r)
		s.rows[entering] = r
	}
}

// dualOptimize restores feasibility after constants moved, pivoting on
// rows whose constants went negative.
func (s *Solver) dualOptimize() error {
	for len(s.infeasibleRows) > 0 {
		leaving := s.infeasibleRows[len(s.infeasibleRows)-1]
		s.infeasibleRows = s.infeasibleRows[:len(s.infeasibleRows)-1]
		r, ok := s.rows[leaving]
		if !ok || r.constant >= 0 {
			continue
		}
		entering := s.dualEnteringSymbol(r)
		if entering == invalidSymbol {
			return fmt.Errorf("%w: dual optimize found no entering symbol", ErrInternal)
		}
		delete(s.rows, leaving)
		r.solveForPair(leaving, entering)
		s.substitute(entering, r)
		s.rows[entering] = r
	}
	return nil
}

// enteringSymbol picks the first non-dummy objective cell with a
// negative coefficient.
func enteringSymbol(objective *row) symbol {
	for sym, c := range objective.cells {
		if sym.kind != symbolDummy && c < 0 {
			return sym
		}
	}
	return invalidSymbol
}

// dualEnteringSymbol picks the cell minimizing the objective-to-row
// coefficient ratio among positive row coefficients.
func (s *Solver) dualEnteringSymbol(r *row) symbol {
	entering := invalidSymbol
	ratio := math.MaxFloat64
	for sym, c := range r.cells {
		if c <= 0 || sym.kind == symbolDummy {
			continue
		}
		objCoeff := s.objective.coefficientFor(sym)
		rr := objCoeff / c
		if rr < ratio {
			ratio = rr
			entering = sym
		}
	}
	return entering
}

// anyPivotableSymbol returns a slack or error symbol from the row.
func anyPivotableSymbol(r *row) symbol {
	for sym := range r.cells {
		if sym.kind == symbolSlack || sym.kind == symbolError {
			return sym
		}
	}
	return invalidSymbol
}

// leavingRow picks the basic row bounding the entering symbol most
// tightly (minimum ratio test).
func (s *Solver) leavingRow(entering symbol) (symbol, *row) {
	ratio := math.MaxFloat64
	found := invalidSymbol
	var foundRow *row
	for sym, r := range s.rows {
		if sym.kind == symbolExternal {
			continue
		}
		c := r.coefficientFor(entering)
		if c >= 0 {
			continue
		}
		rr := -r.constant / c
		if rr < ratio {
			ratio = rr
			found = sym
			foundRow = r
		}
	}
	return found, foundRow
}

// markerLeavingRow locates the row to pivot when removing a constraint
// whose marker is not basic. Preference order: restricted rows where the
// marker enters feasibly, then any restricted row, then an external row.
func (s *Solver) markerLeavingRow(marker symbol) (symbol, *row, error) {
	r1 := math.MaxFloat64
	r2 := math.MaxFloat64
	first, second, third := invalidSymbol, invalidSymbol, invalidSymbol
	for sym, r := range s.rows {
		c := r.coefficientFor(marker)
		if c == 0 {
			continue
		}
		if sym.kind == symbolExternal {
			third = sym
		} else if c < 0 {
			if rr := -r.constant / c; rr < r1 {
				r1 = rr
				first = sym
			}
		} else {
			if rr := r.constant / c; rr < r2 {
				r2 = rr
				second = sym
			}
		}
	}
	pick := first
	if pick == invalidSymbol {
		pick = second
	}
	if pick == invalidSymbol {
		pick = third
	}
	if pick == invalidSymbol {
		return invalidSymbol, nil, fmt.Errorf("%w: constraint marker not found in tableau", ErrInternal)
	}
	return pick, s.rows[pick], nil
}

// removeConstraintEffects backs the constraint's error symbols out of
// the objective.
func (s *Solver) removeConstraintEffects(c *Constraint, t tag) {
	if t.marker.kind == symbolError {
		s.removeMarkerEffects(t.marker, c.strength)
	}
	if t.other.kind == symbolError {
		s.removeMarkerEffects(t.other, c.strength)
	}
}

func (s *Solver) removeMarkerEffects(marker symbol, strength Strength) {
	if r, ok := s.rows[marker]; ok {
		s.objective.insertRow(r, -float64(strength))
	} else {
		s.objective.insertSymbol(marker, -float64(strength))
	}
}
