// Package weight assigns funding weights to a seed/dependency graph.
//
// # Overview
//
// The input is a two-level hierarchy: a root sentinel ("ethereum"), seed
// repositories below it (level 1), and their dependencies (level 2). [Assign]
// turns it into [Edge] rows (repo, parent, weight) under one of three
// policies:
//
//	even      seed→root 1/|seeds|, child→seed 1/|children of seed|
//	half      seed→root 0.5/|seeds|, child→seed 0.5/|seed links| (global)
//	selfloop  seed→root 1/|seeds|, seed→seed 0.2 and child→seed 0.8/k,
//	          or seed→seed 1.0 when the seed has no children
//
// Under even and selfloop every parent distributes exactly 1.0. Under half
// the 0.5/0.5 budget is global, so individual seeds may hand out more or
// less than their share.
//
// # Ordering
//
// Output is deterministic: seed→root rows sorted by repo, then one group per
// seed in sorted order, self-loop first, then children sorted by ID.
//
// # Validation
//
// [Validate] is an independent cross-check that sums weight per parent and
// flags any parent above 1.0. It reports; it never fails.
//
// # Example
//
//	g, _ := graph.ReadGraphFile("unweighted_graph.json")
//	edges, err := weight.Assign(g, weight.Options{Policy: weight.PolicySelfLoop})
//	if err != nil {
//	    return err
//	}
//	if r := weight.Validate(edges, 0); !r.OK() {
//	    logger.Warn("overweight parents", "count", len(r.Violations))
//	}
package weight
