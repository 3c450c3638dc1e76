// cache/cache.go

package cache

import (
	"context"
	"strings"
	"sync"
	"time"
)

// DefaultTTL is used when Set is called with a non-positive TTL.
const DefaultTTL = 5 * time.Minute

// ResponseCache memoizes API read responses keyed by an opaque string.
// A miss and an expired entry are both reported as (nil, false), never as
// an error.
type ResponseCache interface {
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, bool)
	Has(ctx context.Context, key string) bool
	ClearExpired(ctx context.Context) int
	Clear(ctx context.Context) error
	ClearPrefix(ctx context.Context, prefix string) error
	Size(ctx context.Context) int
}

type entry struct {
	data     []byte
	storedAt time.Time
	ttl      time.Duration
}

func (e entry) expired(now time.Time) bool {
	return now.Sub(e.storedAt) > e.ttl
}

// MemoryCache is the in-process ResponseCache. Operations take the whole-map
// lock; critical sections are small and contention is low.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// Set inserts or overwrites the entry for key. The previous entry, if any,
// is discarded.
func (c *MemoryCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{data: data, storedAt: c.now(), ttl: ttl}
	return nil
}

// Get returns the stored payload if present and fresh. A stale entry is
// evicted on the way out.
func (c *MemoryCache) Get(ctx context.Context, key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if e.expired(c.now()) {
		delete(c.entries, key)
		return nil, false
	}
	return e.data, true
}

func (c *MemoryCache) Has(ctx context.Context, key string) bool {
	_, ok := c.Get(ctx, key)
	return ok
}

// ClearExpired sweeps every entry whose TTL has elapsed and returns the
// number evicted. Lazy eviction in Get already guarantees correctness; the
// sweep keeps Size accurate.
func (c *MemoryCache) ClearExpired(ctx context.Context) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	evicted := 0
	for key, e := range c.entries {
		if e.expired(now) {
			delete(c.entries, key)
			evicted++
		}
	}
	return evicted
}

func (c *MemoryCache) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry)
	return nil
}

// ClearPrefix evicts every entry whose key starts with prefix, expired or not.
func (c *MemoryCache) ClearPrefix(ctx context.Context, prefix string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}
	return nil
}

// Size returns the count of non-expired entries. Expired entries are swept
// first so the count is exact, not an upper bound.
func (c *MemoryCache) Size(ctx context.Context) int {
	c.ClearExpired(ctx)
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
