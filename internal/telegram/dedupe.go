package telegram

import "sync"

// DedupeCache remembers recently processed update IDs so redelivered
// webhooks are dropped before they reach the document pipeline. It is
// size-bounded with oldest-first eviction and safe for concurrent use.
type DedupeCache struct {
	mu       sync.Mutex
	capacity int
	seen     map[int64]struct{}
	order    []int64
}

func NewDedupeCache(capacity int) *DedupeCache {
	if capacity <= 0 {
		capacity = 1000
	}
	return &DedupeCache{
		capacity: capacity,
		seen:     make(map[int64]struct{}, capacity),
	}
}

// Seen reports whether the update was already processed and records it if
// not. The oldest entries are evicted once the cap is reached.
func (c *DedupeCache) Seen(updateID int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.seen[updateID]; ok {
		return true
	}

	c.seen[updateID] = struct{}{}
	c.order = append(c.order, updateID)
	for len(c.order) > c.capacity {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.seen, oldest)
	}
	return false
}

// Len returns the number of cached update IDs.
func (c *DedupeCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.order)
}
