package layout

import (
	"fmt"
	"io"
	"strings"

	"gitlab.com/tinyland/lab/tessera/pkg/cassowary"
)

// Diagnostics formatting. None of this affects solving; the output is
// for humans reading constraint dumps.

// FormatVariable renders v as its recorded name, falling back to an
// opaque handle string.
func FormatVariable(v cassowary.Variable, names *VarNames) string {
	if name, ok := names.Get(v); ok {
		return name
	}
	return fmt.Sprintf("var(%d)", uint64(v))
}

// FormatConstraint renders c as "{strength} {expression} {op} 0", with
// the strength bucketed against the four named tiers plus +/-
// gradations between them.
func FormatConstraint(c *cassowary.Constraint, names *VarNames) string {
	return fmt.Sprintf("%s %s %s 0", strengthLabel(c.Strength()), FormatExpression(c.Expression(), names), c.Op())
}

// strengthLabel buckets a numeric strength into a fixed-width label.
func strengthLabel(s cassowary.Strength) string {
	switch {
	case s < cassowary.Weak:
		return "WEAK-"
	case s == cassowary.Weak:
		return "WEAK "
	case s < cassowary.Medium:
		return "WEAK+"
	case s == cassowary.Medium:
		return "MED  "
	case s < cassowary.Strong:
		return "MED+ "
	case s == cassowary.Strong:
		return "STR  "
	case s < cassowary.Required:
		return "STR+ "
	case s == cassowary.Required:
		return "REQD "
	default:
		return "REQD+"
	}
}

// FormatExpression renders a linear expression as a sum of terms,
// eliding coefficients of magnitude one.
func FormatExpression(e cassowary.Expression, names *VarNames) string {
	var out strings.Builder
	first := true
	if e.Constant != 0 {
		fmt.Fprintf(&out, "%v", e.Constant)
		first = false
	}
	for _, term := range e.Terms {
		var coef string
		switch {
		case term.Coefficient == 1:
			if !first {
				coef = "+ "
			}
		case term.Coefficient == -1:
			coef = "- "
		case term.Coefficient > 0:
			if !first {
				coef = fmt.Sprintf("+ %v * ", term.Coefficient)
			} else {
				coef = fmt.Sprintf("%v * ", term.Coefficient)
			}
		default:
			coef = fmt.Sprintf("- %v * ", -term.Coefficient)
		}
		fmt.Fprintf(&out, " %s%s", coef, FormatVariable(term.Variable, names))
		first = false
	}
	return out.String()
}

// DebugConstraints writes every installed constraint in insertion
// order.
func (s *Solver) DebugConstraints(w io.Writer) {
	fmt.Fprintln(w, "CONSTRAINTS")
	for elem := s.ledger.Front(); elem != nil; elem = elem.Next() {
		fmt.Fprintln(w, FormatConstraint(elem.Value.(*cassowary.Constraint), s.names))
	}
}

// DebugVariables writes every named variable and its current solved
// value, in ascending handle order.
func (s *Solver) DebugVariables(w io.Writer) {
	fmt.Fprintln(w, "VARIABLES")
	for _, v := range s.names.sorted() {
		name, _ := s.names.Get(v)
		fmt.Fprintf(w, "%s = %v\n", name, s.engine.GetValue(v))
	}
}
