package weight

import (
	"testing"
)

func TestValidateCleanPolicies(t *testing.T) {
	for _, p := range Policies {
		t.Run(p.String(), func(t *testing.T) {
			edges, err := Assign(lopsided(), Options{Policy: p})
			if err != nil {
				t.Fatalf("Assign: %v", err)
			}
			r := Validate(edges, 0)
			if !r.OK() {
				t.Errorf("violations = %+v, want none", r.Violations)
			}
		})
	}
}

func TestValidateFlagsOverweight(t *testing.T) {
	edges := []Edge{
		{"B", "A", 0.5},
		{"C", "A", 0.6},
		{"D", "Z", 1.0},
		{"E", "M", 0.4},
		{"F", "M", 0.7},
	}

	r := Validate(edges, 0)
	if r.OK() {
		t.Fatal("expected violations")
	}
	if len(r.Violations) != 2 {
		t.Fatalf("got %d violations, want 2: %+v", len(r.Violations), r.Violations)
	}
	if r.Violations[0].Parent != "A" || r.Violations[1].Parent != "M" {
		t.Errorf("violations not sorted by parent: %+v", r.Violations)
	}
	if !approx(r.Violations[0].Total, 1.1) {
		t.Errorf("A total = %v, want 1.1", r.Violations[0].Total)
	}
	if !approx(r.Totals["Z"], 1.0) {
		t.Errorf("Z total = %v, want 1", r.Totals["Z"])
	}

	parents := r.Parents()
	if len(parents) != 3 || parents[0] != "A" || parents[2] != "Z" {
		t.Errorf("Parents = %v, want [A M Z]", parents)
	}
}

func TestValidateEpsilon(t *testing.T) {
	edges := []Edge{{"B", "A", 0.5}, {"C", "A", 0.5 + 1e-12}}

	if r := Validate(edges, 0); !r.OK() {
		t.Errorf("default epsilon should absorb rounding: %+v", r.Violations)
	}
	if r := Validate(edges, 1e-15); r.OK() {
		t.Error("tight epsilon should flag the overshoot")
	}
}

func TestValidateEmpty(t *testing.T) {
	r := Validate(nil, 0)
	if !r.OK() || len(r.Totals) != 0 {
		t.Errorf("Validate(nil) = %+v, want empty report", r)
	}
}
