package atlas

import "sync"

// DescriptorCache memoizes (path) -> FieldDescriptor lookups against one
// registry. Descriptors are context-independent, so a single cache serves
// every compilation unit of a run: access rules are re-evaluated per call
// against the caller's scan context.
//
// No cache is required for correctness; resolution is already pure. The
// cache only trades memory for repeated path walks.
type DescriptorCache struct {
	registry *Registry

	mu sync.RWMutex
	m  map[string]*FieldDescriptor
}

// NewDescriptorCache creates a cache bound to a built registry.
func NewDescriptorCache(r *Registry) *DescriptorCache {
	return &DescriptorCache{
		registry: r,
		m:        make(map[string]*FieldDescriptor),
	}
}

// Resolve behaves like Registry.Resolve with descriptor memoization.
// Resolution failures are not cached; they are cheap and rare.
func (c *DescriptorCache) Resolve(path string, sc ScanContext) (*FieldDescriptor, error) {
	// Fast path: read-lock cache check
	c.mu.RLock()
	fd, ok := c.m[path]
	c.mu.RUnlock()

	if !ok {
		var err error
		fd, err = c.registry.Descriptor(path)
		if err != nil {
			return nil, err
		}

		// Slow path: store with write-lock
		c.mu.Lock()
		// Double-check pattern: a racing fill wins, results are identical
		if cached, ok := c.m[path]; ok {
			fd = cached
		} else {
			c.m[path] = fd
		}
		c.mu.Unlock()
	}

	if err := CheckAccess(fd, sc); err != nil {
		return nil, err
	}
	return fd, nil
}

// Len returns the number of memoized descriptors.
func (c *DescriptorCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.m)
}

// Reset clears the cache. This is primarily useful for test isolation.
func (c *DescriptorCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m = make(map[string]*FieldDescriptor)
}
