package cassowary

import "math"

// nearZero is the tolerance below which a coefficient is treated as zero.
const epsilon = 1e-8

func nearZero(v float64) bool {
	return math.Abs(v) < epsilon
}

// symbolKind classifies the tableau's internal symbols.
type symbolKind uint8

const (
	symbolInvalid symbolKind = iota
	symbolExternal
	symbolSlack
	symbolError
	symbolDummy
)

// symbol is an internal tableau column. External symbols correspond to
// caller-visible Variables; slack, error and dummy symbols are
// introduced while lowering constraints.
type symbol struct {
	id   uint64
	kind symbolKind
}

var invalidSymbol = symbol{}

// row is one tableau row: a linear combination of symbols plus a
// constant, with the basic symbol implicit (held by the rows map key).
type row struct {
	cells    map[symbol]float64
	constant float64
}

func newRow(constant float64) *row {
	return &row{cells: make(map[symbol]float64), constant: constant}
}

func (r *row) clone() *row {
	c := &row{cells: make(map[symbol]float64, len(r.cells)), constant: r.constant}
	for s, v := range r.cells {
		c.cells[s] = v
	}
	return c
}

// add shifts the row's constant and returns the new value.
func (r *row) add(v float64) float64 {
	r.constant += v
	return r.constant
}

// insertSymbol adds coefficient*sym to the row, dropping the cell if
// the combined coefficient cancels to zero.
func (r *row) insertSymbol(s symbol, coefficient float64) {
	c := r.cells[s] + coefficient
	if nearZero(c) {
		delete(r.cells, s)
	} else {
		r.cells[s] = c
	}
}

// insertRow adds coefficient*other to the row.
func (r *row) insertRow(other *row, coefficient float64) {
	r.constant += other.constant * coefficient
	for s, c := range other.cells {
		r.insertSymbol(s, c*coefficient)
	}
}

func (r *row) remove(s symbol) {
	delete(r.cells, s)
}

func (r *row) reverseSign() {
	r.constant = -r.constant
	for s, c := range r.cells {
		r.cells[s] = -c
	}
}

// solveFor rewrites the row so that s becomes its basic symbol, i.e.
// expresses s in terms of the remaining symbols.
func (r *row) solveFor(s symbol) {
	coefficient := -1.0 / r.cells[s]
	delete(r.cells, s)
	r.constant *= coefficient
	for sym, c := range r.cells {
		r.cells[sym] = c * coefficient
	}
}

// solveForPair treats lhs as the row's current basic symbol and solves
// the row for rhs.
func (r *row) solveForPair(lhs, rhs symbol) {
	r.insertSymbol(lhs, -1)
	r.solveFor(rhs)
}

func (r *row) coefficientFor(s symbol) float64 {
	return r.cells[s]
}

// substitute replaces every occurrence of s with the given row.
func (r *row) substitute(s symbol, other *row) {
	if c, ok := r.cells[s]; ok {
		delete(r.cells, s)
		r.insertRow(other, c)
	}
}
