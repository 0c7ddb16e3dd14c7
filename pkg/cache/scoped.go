package cache

// ScopedKeyer wraps a Keyer with a prefix so several deployments can share
// one backend without reading each other's tables.
//
// Example usage:
//
//	// Keys for a staging server sharing the production redis
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "staging:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// TableKey generates a prefixed table key.
func (k *ScopedKeyer) TableKey(name string, size uint32) string {
	return k.prefix + k.inner.TableKey(name, size)
}
