package cache

// ScopedKeyer prefixes every key of an inner Keyer. The CLI scopes keys by
// build version so an upgraded binary never reads entries written by an
// older one:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "v1.2.0:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner keyer means
// [DefaultKeyer].
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// WeightsKey implements [Keyer].
func (k *ScopedKeyer) WeightsKey(graphHash string, opts WeightsKeyOpts) string {
	return k.prefix + k.inner.WeightsKey(graphHash, opts)
}

// ArtifactKey implements [Keyer].
func (k *ScopedKeyer) ArtifactKey(edgesHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(edgesHash, opts)
}
