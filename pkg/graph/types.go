package graph

import "maps"

// =============================================================================
// Constants
// =============================================================================

// Node levels. A node without a "level" key decodes to LevelNone.
const (
	LevelNone       = 0 // Unleveled (root or unrelated nodes)
	LevelSeed       = 1 // Seed repository, direct child of the root sentinel
	LevelDependency = 2 // Dependency of a seed repository
)

// DefaultRoot is the virtual parent of every seed node.
const DefaultRoot = "ethereum"

// JSON keys of the node-link format.
const (
	keyNodes  = "nodes"
	keyLinks  = "links"
	keyEdges  = "edges" // accepted alias for keyLinks
	keyID     = "id"
	keyLevel  = "level"
	keySource = "source"
	keyTarget = "target"
)

// =============================================================================
// Graph - Node-Link Input Graph
// =============================================================================

// Graph is the node-link input graph: seeds, their dependencies and the
// links between them. It is loaded once, read by the weighting step and then
// discarded.
type Graph struct {
	Nodes []Node
	Links []Link
}

// Node is a graph vertex, usually a repository URL.
type Node struct {
	ID    string
	Level int            // LevelNone, LevelSeed or LevelDependency
	Meta  map[string]any // Every other key of the input object
}

// IsSeed reports whether the node is a level-1 seed.
func (n Node) IsSeed() bool { return n.Level == LevelSeed }

// Link is a directed source→target pair referencing node IDs.
type Link struct {
	Source string
	Target string
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.Nodes) }

// LinkCount returns the number of links.
func (g *Graph) LinkCount() int { return len(g.Links) }

// Node returns the node with the given ID.
func (g *Graph) Node(id string) (Node, bool) {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// Record returns the node as a flat JSON-style object: its metadata plus
// "id", with "level" omitted.
func (n Node) Record() map[string]any {
	out := make(map[string]any, len(n.Meta)+1)
	maps.Copy(out, n.Meta)
	out[keyID] = n.ID
	return out
}
