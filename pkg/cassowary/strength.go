package cassowary

// Strength is the priority attached to a constraint or edit variable.
// The solver satisfies Required constraints unconditionally and resolves
// conflicts among the rest by descending strength, then by magnitude of
// violation. Strengths form a lexicographic (strong, medium, weak)
// triple packed into a single float.
type Strength float64

// The four named strength tiers. Intermediate gradations can be built
// with MakeStrength or by scalar arithmetic between tiers.
const (
	Required Strength = 1_001_001_000
	Strong   Strength = 1_000_000
	Medium   Strength = 1_000
	Weak     Strength = 1
)

// MakeStrength combines per-tier magnitudes a (strong), b (medium) and
// c (weak), each scaled by weight w, into a single strength value. Each
// tier saturates at 1000 so a lower tier can never outrank a higher one.
func MakeStrength(a, b, c, w float64) Strength {
	clamp := func(v float64) float64 {
		if v < 0 {
			return 0
		}
		if v > 1000 {
			return 1000
		}
		return v
	}
	return Strength(clamp(a*w)*1_000_000 + clamp(b*w)*1_000 + clamp(c*w))
}

// clip bounds s to the valid [0, Required] range.
func (s Strength) clip() Strength {
	if s < 0 {
		return 0
	}
	if s > Required {
		return Required
	}
	return s
}
