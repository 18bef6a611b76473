package authz

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

const defaultCacheSize = 512

// Cache memoizes capability snapshots keyed on the principal's value
// fingerprint. Snapshots are immutable, so a hit is safe to share across
// requests and goroutines; the LRU bound keeps long-lived processes from
// accumulating one entry per historical principal.
type Cache struct {
	entries *lru.Cache[string, Capabilities]
}

// NewCache builds a capability cache. A non-positive size falls back to
// the default.
func NewCache(size int) (*Cache, error) {
	if size <= 0 {
		size = defaultCacheSize
	}
	entries, err := lru.New[string, Capabilities](size)
	if err != nil {
		return nil, err
	}
	return &Cache{entries: entries}, nil
}

// For returns the capability snapshot for the principal, computing and
// caching it on first sight of the fingerprint. A nil cache degrades to
// an uncached computation.
func (c *Cache) For(p Principal) Capabilities {
	if c == nil || c.entries == nil {
		return CapabilitiesFor(p)
	}
	key := p.Fingerprint()
	if caps, ok := c.entries.Get(key); ok {
		return caps
	}
	caps := CapabilitiesFor(p)
	c.entries.Add(key, caps)
	return caps
}
