package cache

// Keyer builds cache keys. Implementations must be deterministic: equal
// inputs give equal keys.
type Keyer interface {
	// WeightsKey identifies the weight table computed from a graph.
	WeightsKey(graphHash string, opts WeightsKeyOpts) string

	// ArtifactKey identifies a rendered diagram of a weight table.
	ArtifactKey(edgesHash string, opts ArtifactKeyOpts) string
}

// WeightsKeyOpts are the options that change a weight table.
type WeightsKeyOpts struct {
	Policy string  `json:"policy"`
	Root   string  `json:"root"`
	Retain float64 `json:"retain,omitempty"`
}

// ArtifactKeyOpts are the options that change a rendered diagram.
type ArtifactKeyOpts struct {
	Format string `json:"format"`
	Layout string `json:"layout,omitempty"`
	Root   string `json:"root,omitempty"`
	Links  bool   `json:"links,omitempty"`
}

// DefaultKeyer produces "<kind>:<sha256>" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default key scheme.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// WeightsKey implements [Keyer].
func (DefaultKeyer) WeightsKey(graphHash string, opts WeightsKeyOpts) string {
	return hashKey("weights", graphHash, opts)
}

// ArtifactKey implements [Keyer].
func (DefaultKeyer) ArtifactKey(edgesHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", edgesHash, opts)
}

var _ Keyer = DefaultKeyer{}
