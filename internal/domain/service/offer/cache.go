package offer

import "sync"

// MarkerCache is the session-local copy of a seller's read markers,
// keyed by listing ID. It is constructed at session start and
// discarded with the session; the read_markers table stays the only
// state shared across sessions.
//
// Put never lowers a stored count, mirroring the monotonicity of the
// persisted marker.
type MarkerCache struct {
	mu      sync.Mutex
	markers map[string]int
}

func NewMarkerCache() *MarkerCache {
	return &MarkerCache{
		markers: make(map[string]int),
	}
}

func (c *MarkerCache) Get(listingID string) (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	count, ok := c.markers[listingID]
	return count, ok
}

func (c *MarkerCache) Put(listingID string, count int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.markers[listingID]; ok && existing > count {
		return
	}

	c.markers[listingID] = count
}

func (c *MarkerCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.markers)
}
