package cache

// ScopedKeyer wraps a Keyer with a prefix for namespace isolation.
// This is useful when several confgrid servers share one Redis instance.
//
// Example usage:
//
//	// Per-deployment keys
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "confgrid:staging:")
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

// ScheduleKey generates a prefixed key for schedule caching.
func (k *ScopedKeyer) ScheduleKey(sourceHash string, opts ScheduleKeyOpts) string {
	return k.prefix + k.inner.ScheduleKey(sourceHash, opts)
}

// LayoutKey generates a prefixed key for layout caching.
func (k *ScopedKeyer) LayoutKey(scheduleHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(scheduleHash, opts)
}

// ArtifactKey generates a prefixed key for artifact caching.
func (k *ScopedKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(layoutHash, opts)
}
