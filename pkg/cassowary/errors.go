package cassowary

import "errors"

// Solver errors. These indicate a logically inconsistent sequence of
// calls (duplicate add, remove of something absent, an unsatisfiable
// required constraint) and callers should treat them as fatal to the
// current mutation batch rather than retrying.
var (
	// ErrDuplicateConstraint is returned when a constraint already in
	// the solver is added again.
	ErrDuplicateConstraint = errors.New("cassowary: constraint already installed")

	// ErrUnsatisfiableConstraint is returned when a required constraint
	// cannot be satisfied together with the existing required set.
	ErrUnsatisfiableConstraint = errors.New("cassowary: required constraint unsatisfiable")

	// ErrUnknownConstraint is returned when removing a constraint the
	// solver does not hold.
	ErrUnknownConstraint = errors.New("cassowary: constraint not installed")

	// ErrDuplicateEditVariable is returned when a variable is made
	// editable twice.
	ErrDuplicateEditVariable = errors.New("cassowary: edit variable already installed")

	// ErrBadRequiredStrength is returned when an edit variable is added
	// at Required strength, which would make every suggestion binding.
	ErrBadRequiredStrength = errors.New("cassowary: edit variable cannot be required")

	// ErrUnknownEditVariable is returned when suggesting a value for, or
	// removing, a variable that is not editable.
	ErrUnknownEditVariable = errors.New("cassowary: unknown edit variable")

	// ErrInternal indicates the tableau reached a state the algorithm
	// does not expect. It signals a bug in the solver itself.
	ErrInternal = errors.New("cassowary: internal solver error")
)
