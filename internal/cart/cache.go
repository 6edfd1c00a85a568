package cart

import (
	"sync"

	"github.com/google/uuid"

	"github.com/cartforge/cartforge/pkg/enums"
)

// Key identifies one organized cart tree. Invalidation is by exact key, never
// by pattern.
type Key struct {
	CustomerID uuid.UUID
	CartType   enums.CartType
	StoreID    uuid.UUID
}

// Cache memoizes organized cart trees for the duration of a unit of work.
// Every mutation of a cart must invalidate its key before the mutation's
// caller can observe the result.
type Cache interface {
	Get(key Key) ([]*OrganizedCartItem, bool)
	Set(key Key, tree []*OrganizedCartItem)
	Invalidate(key Key)
}

type memoryCache struct {
	mu      sync.Mutex
	entries map[Key][]*OrganizedCartItem
}

// NewMemoryCache builds the in-process cache used per unit of work.
func NewMemoryCache() Cache {
	return &memoryCache{entries: map[Key][]*OrganizedCartItem{}}
}

func (c *memoryCache) Get(key Key) ([]*OrganizedCartItem, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	tree, ok := c.entries[key]
	return tree, ok
}

func (c *memoryCache) Set(key Key, tree []*OrganizedCartItem) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = tree
}

func (c *memoryCache) Invalidate(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}
