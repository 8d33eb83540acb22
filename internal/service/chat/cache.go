package chat

import (
	"container/list"
	"crypto/sha256"
	"fmt"
	"sync"

	"github.com/sandevgo/edabot/internal/core"
)

const DefaultCacheSize = 512

// ResponseCache memoizes generation calls by exact prompt text. Entries
// are keyed by the sha256 of the flattened prompt, which preserves
// exact-match semantics while bounding key size. Eviction is LRU.
type ResponseCache struct {
	mu       sync.Mutex
	capacity int
	entries  map[string]*list.Element
	order    *list.List
}

type cacheEntry struct {
	key   string
	value core.Generation
}

func NewResponseCache(capacity int) *ResponseCache {
	if capacity <= 0 {
		capacity = DefaultCacheSize
	}
	return &ResponseCache{
		capacity: capacity,
		entries:  make(map[string]*list.Element),
		order:    list.New(),
	}
}

// GetOrCompute returns the cached generation for promptKey, or invokes
// compute and stores the result. Compute runs outside the lock, so two
// concurrent misses on one key may both compute; the last write wins.
// Errors are returned to the caller and never cached.
func (c *ResponseCache) GetOrCompute(promptKey string, compute func() (core.Generation, error)) (core.Generation, error) {
	key := hashKey(promptKey)

	c.mu.Lock()
	if el, ok := c.entries[key]; ok {
		c.order.MoveToFront(el)
		gen := el.Value.(*cacheEntry).value
		c.mu.Unlock()
		return gen, nil
	}
	c.mu.Unlock()

	gen, err := compute()
	if err != nil {
		return core.Generation{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		el.Value.(*cacheEntry).value = gen
		c.order.MoveToFront(el)
		return gen, nil
	}

	c.entries[key] = c.order.PushFront(&cacheEntry{key: key, value: gen})
	for len(c.entries) > c.capacity {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*cacheEntry).key)
	}
	return gen, nil
}

// Len reports the number of cached entries.
func (c *ResponseCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func hashKey(promptKey string) string {
	return fmt.Sprintf("%x", sha256.Sum256([]byte(promptKey)))
}
