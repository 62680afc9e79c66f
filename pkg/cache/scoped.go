package cache

// ScopedKeyer wraps a Keyer with a prefix so that several deployments can
// share one Redis database.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "wardley:staging:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer that prepends prefix to every key.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// ModelKey returns the prefixed model key.
func (k *ScopedKeyer) ModelKey(textHash string) string {
	return k.prefix + k.inner.ModelKey(textHash)
}

// LayoutKey returns the prefixed layout key.
func (k *ScopedKeyer) LayoutKey(textHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(textHash, opts)
}
