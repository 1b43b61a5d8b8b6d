package cache

// ScopedKeyer wraps a Keyer with a prefix so several projects can share one
// backend, typically a Redis instance, without their keys colliding.
//
// Example usage:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "project:dashboards:")
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

// ResultKey generates a prefixed key for a resolution result.
func (k *ScopedKeyer) ResultKey(sceneHash string, opts ResultKeyOpts) string {
	return k.prefix + k.inner.ResultKey(sceneHash, opts)
}
