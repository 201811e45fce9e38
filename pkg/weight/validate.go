package weight

import (
	"maps"
	"slices"
)

// DefaultEpsilon is the tolerance above 1.0 before a parent is flagged.
const DefaultEpsilon = 1e-9

// Violation is a parent whose outgoing weight exceeds the 1.0 budget.
type Violation struct {
	Parent string  `json:"parent"`
	Total  float64 `json:"total"`
}

// Report summarizes outgoing weight per parent.
type Report struct {
	Totals     map[string]float64 `json:"totals"`
	Violations []Violation        `json:"violations,omitempty"`
}

// OK reports whether no parent exceeds its budget.
func (r Report) OK() bool { return len(r.Violations) == 0 }

// Parents returns the parents in sorted order.
func (r Report) Parents() []string {
	return slices.Sorted(maps.Keys(r.Totals))
}

// Validate sums the weight each parent hands out and flags every parent
// whose total exceeds 1.0 by more than epsilon. A non-positive epsilon means
// DefaultEpsilon.
//
// Validate never fails: a violation points at a bug in the policy that
// produced edges, not at bad input, so callers report it and carry on.
// Violations are sorted by parent.
func Validate(edges []Edge, epsilon float64) Report {
	if epsilon <= 0 {
		epsilon = DefaultEpsilon
	}

	r := Report{Totals: make(map[string]float64)}
	for _, e := range edges {
		r.Totals[e.Parent] += e.Weight
	}
	for _, p := range r.Parents() {
		if total := r.Totals[p]; total > 1+epsilon {
			r.Violations = append(r.Violations, Violation{Parent: p, Total: total})
		}
	}
	return r
}
