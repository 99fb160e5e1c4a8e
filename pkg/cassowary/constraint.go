package cassowary

// RelationalOperator relates a constraint's expression to zero.
type RelationalOperator int

const (
	LessOrEqual RelationalOperator = iota
	Equal
	GreaterOrEqual
)

// String renders the operator the way it appears in constraint dumps.
func (op RelationalOperator) String() string {
	switch op {
	case LessOrEqual:
		return "<="
	case Equal:
		return "=="
	case GreaterOrEqual:
		return ">="
	}
	return "?"
}

// Constraint is an immutable linear (in)equality of the form
// "expression op 0" with an attached strength. Constraints are compared
// by identity: the same *Constraint added twice is a duplicate, while
// two separately built constraints with equal contents are distinct.
type Constraint struct {
	expression Expression
	op         RelationalOperator
	strength   Strength
}

// NewConstraint builds a constraint asserting "e op 0" at strength s.
func NewConstraint(e Expression, op RelationalOperator, s Strength) *Constraint {
	return &Constraint{expression: e, op: op, strength: s.clip()}
}

// Eq builds lhs == rhs at strength s.
func Eq(lhs, rhs Expression, s Strength) *Constraint {
	return NewConstraint(lhs.Minus(rhs), Equal, s)
}

// LE builds lhs <= rhs at strength s.
func LE(lhs, rhs Expression, s Strength) *Constraint {
	return NewConstraint(lhs.Minus(rhs), LessOrEqual, s)
}

// GE builds lhs >= rhs at strength s.
func GE(lhs, rhs Expression, s Strength) *Constraint {
	return NewConstraint(lhs.Minus(rhs), GreaterOrEqual, s)
}

// Expression returns the constraint's left-hand expression.
func (c *Constraint) Expression() Expression { return c.expression }

// Op returns the constraint's relational operator.
func (c *Constraint) Op() RelationalOperator { return c.op }

// Strength returns the constraint's strength.
func (c *Constraint) Strength() Strength { return c.strength }
