// Package cassowary implements an incremental linear constraint solver
// based on the Cassowary algorithm. It maintains a simplex tableau that
// can be updated cheaply as constraints are added and removed, and
// supports "edit variables" whose values external code may suggest,
// with conflicts resolved by constraint strength.
//
// The solver is not safe for concurrent use; callers own serialization.
package cassowary

import "sync/atomic"

// Variable is an opaque handle to one scalar unknown in the constraint
// system. Variables are comparable and usable as map keys. The zero
// value is invalid; obtain variables from NewVariable.
type Variable uint64

var nextVariable atomic.Uint64

// NewVariable allocates a fresh variable handle. Handles are unique for
// the lifetime of the process.
func NewVariable() Variable {
	return Variable(nextVariable.Add(1))
}

// Term is a single (coefficient * variable) product inside an expression.
type Term struct {
	Variable    Variable
	Coefficient float64
}

// Expression is a linear combination of terms plus a constant:
// c1*v1 + c2*v2 + ... + k.
type Expression struct {
	Terms    []Term
	Constant float64
}

// NewExpression builds an expression from a constant and terms.
func NewExpression(constant float64, terms ...Term) Expression {
	return Expression{Terms: terms, Constant: constant}
}

// VarExpr returns an expression consisting of a single variable with
// coefficient 1.
func VarExpr(v Variable) Expression {
	return Expression{Terms: []Term{{Variable: v, Coefficient: 1}}}
}

// ConstExpr returns a constant expression with no variable terms.
func ConstExpr(k float64) Expression {
	return Expression{Constant: k}
}

// Plus returns e + other as a new expression. Neither input is modified.
func (e Expression) Plus(other Expression) Expression {
	terms := make([]Term, 0, len(e.Terms)+len(other.Terms))
	terms = append(terms, e.Terms...)
	terms = append(terms, other.Terms...)
	return Expression{Terms: terms, Constant: e.Constant + other.Constant}
}

// Minus returns e - other as a new expression.
func (e Expression) Minus(other Expression) Expression {
	return e.Plus(other.Negate())
}

// Times returns e scaled by k.
func (e Expression) Times(k float64) Expression {
	terms := make([]Term, len(e.Terms))
	for i, t := range e.Terms {
		terms[i] = Term{Variable: t.Variable, Coefficient: t.Coefficient * k}
	}
	return Expression{Terms: terms, Constant: e.Constant * k}
}

// Negate returns -e.
func (e Expression) Negate() Expression {
	return e.Times(-1)
}

// AddConstant returns e + k.
func (e Expression) AddConstant(k float64) Expression {
	terms := make([]Term, len(e.Terms))
	copy(terms, e.Terms)
	return Expression{Terms: terms, Constant: e.Constant + k}
}
