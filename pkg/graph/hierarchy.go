package graph

import "slices"

// Hierarchy indexes the two-level seed → dependency structure of a Graph.
//
// Seeds are kept in first-seen order, and each seed's targets in link order.
// Nothing is sorted at build time; the Sorted* accessors sort on demand so
// that emitters control ordering.
//
// A Hierarchy is read-only after construction and safe for concurrent reads.
type Hierarchy struct {
	seeds    []string
	isSeed   map[string]bool
	targets  map[string][]string // seed -> link targets, duplicates kept
	children map[string][]string // seed -> unique targets, first-seen order
}

// NewHierarchy builds the seed index of g. Links whose source is not a
// level-1 node are ignored, and so are self-links: a seed is never its own
// child. The self-loop policy adds its own A→A row.
func NewHierarchy(g *Graph) *Hierarchy {
	h := &Hierarchy{
		isSeed:   make(map[string]bool),
		targets:  make(map[string][]string),
		children: make(map[string][]string),
	}

	for _, n := range g.Nodes {
		if n.IsSeed() && !h.isSeed[n.ID] {
			h.isSeed[n.ID] = true
			h.seeds = append(h.seeds, n.ID)
		}
	}

	seen := make(map[string]map[string]bool, len(h.seeds))
	for _, l := range g.Links {
		if !h.isSeed[l.Source] || l.Target == l.Source {
			continue
		}
		h.targets[l.Source] = append(h.targets[l.Source], l.Target)
		if seen[l.Source] == nil {
			seen[l.Source] = make(map[string]bool)
		}
		if !seen[l.Source][l.Target] {
			seen[l.Source][l.Target] = true
			h.children[l.Source] = append(h.children[l.Source], l.Target)
		}
	}

	return h
}

// Seeds returns the level-1 node IDs in input order.
// The returned slice should not be modified.
func (h *Hierarchy) Seeds() []string { return h.seeds }

// SeedCount returns the number of level-1 nodes.
func (h *Hierarchy) SeedCount() int { return len(h.seeds) }

// IsSeed reports whether id is a level-1 node.
func (h *Hierarchy) IsSeed(id string) bool { return h.isSeed[id] }

// Children returns the unique targets of seed in first-seen order.
// The returned slice should not be modified.
func (h *Hierarchy) Children(seed string) []string { return h.children[seed] }

// Targets returns every link target of seed in link order, including
// repeated links to the same target.
// The returned slice should not be modified.
func (h *Hierarchy) Targets(seed string) []string { return h.targets[seed] }

// LinkCount returns the number of links whose source is a seed.
func (h *Hierarchy) LinkCount() int {
	n := 0
	for _, t := range h.targets {
		n += len(t)
	}
	return n
}

// SortedSeeds returns a sorted copy of the seed IDs.
func (h *Hierarchy) SortedSeeds() []string {
	return slices.Sorted(slices.Values(h.seeds))
}

// SortedChildren returns a sorted copy of the unique children of seed.
func (h *Hierarchy) SortedChildren(seed string) []string {
	return slices.Sorted(slices.Values(h.children[seed]))
}

// SortedTargets returns a sorted copy of all link targets of seed.
func (h *Hierarchy) SortedTargets(seed string) []string {
	return slices.Sorted(slices.Values(h.targets[seed]))
}
