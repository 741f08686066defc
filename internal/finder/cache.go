package finder

import (
	"sync"

	"github.com/mj1618/desktop-runner/internal/element"
)

// Cache maps a requested title to the window or pane node found for it.
// Entries live until the caller invalidates them.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*element.Node
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]*element.Node)}
}

// Get returns the node cached under title.
func (c *Cache) Get(title string) (*element.Node, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n, ok := c.entries[title]
	return n, ok
}

// Put stores n under title.
func (c *Cache) Put(title string, n *element.Node) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[title] = n
}

// Invalidate removes the entry for title.
func (c *Cache) Invalidate(title string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, title)
}

// InvalidateAll clears the entire cache.
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*element.Node)
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
