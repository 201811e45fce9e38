package weight

import (
	"github.com/matzehuels/stackweight/pkg/errors"
	"github.com/matzehuels/stackweight/pkg/graph"
)

// Edge is one weighted row: Repo receives Weight of Parent's budget.
// Parent is either the root sentinel or a seed; Repo == Parent is a
// self-loop (PolicySelfLoop only).
type Edge struct {
	Repo   string  `json:"repo"`
	Parent string  `json:"parent"`
	Weight float64 `json:"weight"`
}

// IsSelfLoop reports whether the edge points back at its own parent.
func (e Edge) IsSelfLoop() bool { return e.Repo == e.Parent }

// Assign weighs g under opts and returns the weighted edges.
//
// Rows are emitted in a fixed order: all seed→root rows sorted by repo, then
// one group per seed (sorted), each group holding the seed's self-loop (if
// the policy has one) followed by its children sorted by ID.
//
// Assign is a pure function of its arguments. It fails only on invalid
// options (CONFIGURATION_ERROR) or a nil graph (STRUCTURAL_ERROR); empty
// inputs produce an empty result, never a division by zero.
func Assign(g *graph.Graph, opts Options) ([]Edge, error) {
	if g == nil {
		return nil, errors.Structural("graph is nil")
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return AssignHierarchy(graph.NewHierarchy(g), opts)
}

// AssignHierarchy is [Assign] over a prebuilt hierarchy.
func AssignHierarchy(h *graph.Hierarchy, opts Options) ([]Edge, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	switch opts.Policy {
	case PolicyEven:
		return assignEven(h, opts.Root), nil
	case PolicyHalf:
		return assignHalf(h, opts.Root), nil
	case PolicySelfLoop:
		return assignSelfLoop(h, opts.Root, opts.Retain), nil
	default:
		return nil, errors.Configuration("unknown policy %q", opts.Policy)
	}
}

// share returns budget/n, or 0 when n is 0.
func share(budget float64, n int) float64 {
	if n == 0 {
		return 0
	}
	return budget / float64(n)
}

// rootEdges emits one seed→root row per seed, sorted by seed ID.
func rootEdges(seeds []string, root string, w float64) []Edge {
	out := make([]Edge, 0, len(seeds))
	for _, s := range seeds {
		out = append(out, Edge{Repo: s, Parent: root, Weight: w})
	}
	return out
}

func assignEven(h *graph.Hierarchy, root string) []Edge {
	seeds := h.SortedSeeds()
	out := rootEdges(seeds, root, share(1, len(seeds)))

	for _, p := range seeds {
		children := h.SortedChildren(p)
		w := share(1, len(children))
		for _, c := range children {
			out = append(out, Edge{Repo: c, Parent: p, Weight: w})
		}
	}
	return out
}

func assignHalf(h *graph.Hierarchy, root string) []Edge {
	seeds := h.SortedSeeds()
	out := rootEdges(seeds, root, share(0.5, len(seeds)))

	w := share(0.5, h.LinkCount())
	for _, p := range seeds {
		for _, c := range h.SortedTargets(p) {
			out = append(out, Edge{Repo: c, Parent: p, Weight: w})
		}
	}
	return out
}

func assignSelfLoop(h *graph.Hierarchy, root string, retain float64) []Edge {
	seeds := h.SortedSeeds()
	out := rootEdges(seeds, root, share(1, len(seeds)))

	for _, p := range seeds {
		children := h.SortedChildren(p)
		if len(children) == 0 {
			out = append(out, Edge{Repo: p, Parent: p, Weight: 1})
			continue
		}
		out = append(out, Edge{Repo: p, Parent: p, Weight: retain})
		w := share(1-retain, len(children))
		for _, c := range children {
			out = append(out, Edge{Repo: c, Parent: p, Weight: w})
		}
	}
	return out
}
