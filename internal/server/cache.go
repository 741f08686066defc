package server

import (
	"sync"
	"time"

	"github.com/mj1618/desktop-runner/internal/model"
	"github.com/mj1618/desktop-runner/internal/platform"
)

type cacheKey struct {
	App    string
	Window string
	PID    int
	Depth  int
}

type cacheEntry struct {
	elements  []model.Element
	timestamp time.Time
}

// TreeCache keeps recent tree reads for the read tool so repeated reads
// between steps do not walk the accessibility tree again. Step runs never
// read through it.
type TreeCache struct {
	mu      sync.Mutex
	entries map[cacheKey]cacheEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewTreeCache creates a cache. A ttl of 0 disables caching.
func NewTreeCache(ttl time.Duration) *TreeCache {
	return &TreeCache{entries: make(map[cacheKey]cacheEntry), ttl: ttl, now: time.Now}
}

// ReadElements returns a cached read younger than the TTL, otherwise reads
// through reader.
func (c *TreeCache) ReadElements(reader platform.Reader, opts platform.ReadOptions) ([]model.Element, error) {
	if c.ttl == 0 {
		return reader.ReadElements(opts)
	}
	key := cacheKey{App: opts.App, Window: opts.Window, PID: opts.PID, Depth: opts.Depth}

	c.mu.Lock()
	entry, ok := c.entries[key]
	c.mu.Unlock()
	if ok && c.now().Sub(entry.timestamp) < c.ttl {
		return entry.elements, nil
	}

	elements, err := reader.ReadElements(opts)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.entries[key] = cacheEntry{elements: elements, timestamp: c.now()}
	c.mu.Unlock()
	return elements, nil
}

// InvalidateAll drops every entry. Called after anything that may have
// changed the desktop.
func (c *TreeCache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[cacheKey]cacheEntry)
}

// Len returns the number of cached reads.
func (c *TreeCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
