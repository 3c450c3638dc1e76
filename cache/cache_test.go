// cache/cache_test.go
package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// fakeClock drives expiry without sleeping.
type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.now = f.now.Add(d)
}

func newTestCache() (*MemoryCache, *fakeClock) {
	clock := &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	c := NewMemoryCache()
	c.now = clock.Now
	return c, clock
}

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()

	t.Run("GetReturnsFreshValue", func(t *testing.T) {
		c, _ := newTestCache()
		assert.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))

		data, ok := c.Get(ctx, "k")
		assert.True(t, ok)
		assert.Equal(t, []byte("v"), data)
	})

	t.Run("GetAfterTTLReturnsAbsent", func(t *testing.T) {
		c, clock := newTestCache()
		assert.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))

		clock.Advance(time.Minute + time.Second)

		_, ok := c.Get(ctx, "k")
		assert.False(t, ok)
		assert.False(t, c.Has(ctx, "k"))
	})

	t.Run("SetOverwritesWithoutMerge", func(t *testing.T) {
		c, _ := newTestCache()
		assert.NoError(t, c.Set(ctx, "k", []byte("v1"), time.Minute))
		assert.NoError(t, c.Set(ctx, "k", []byte("v2"), time.Minute))

		data, ok := c.Get(ctx, "k")
		assert.True(t, ok)
		assert.Equal(t, []byte("v2"), data)
		assert.Equal(t, 1, c.Size(ctx))
	})

	t.Run("SizeExcludesExpiredEntries", func(t *testing.T) {
		c, clock := newTestCache()
		for _, key := range []string{"a", "b", "c"} {
			assert.NoError(t, c.Set(ctx, key, []byte("v"), time.Second))
		}
		assert.Equal(t, 3, c.Size(ctx))

		clock.Advance(2 * time.Second)
		assert.Equal(t, 0, c.Size(ctx))
	})

	t.Run("ClearExpiredSweepsOnlyStaleEntries", func(t *testing.T) {
		c, clock := newTestCache()
		assert.NoError(t, c.Set(ctx, "short", []byte("v"), time.Second))
		assert.NoError(t, c.Set(ctx, "long", []byte("v"), time.Hour))

		clock.Advance(2 * time.Second)

		assert.Equal(t, 1, c.ClearExpired(ctx))
		assert.False(t, c.Has(ctx, "short"))
		assert.True(t, c.Has(ctx, "long"))
	})

	t.Run("ClearEmptiesEverything", func(t *testing.T) {
		c, _ := newTestCache()
		assert.NoError(t, c.Set(ctx, "a", []byte("v"), time.Minute))
		assert.NoError(t, c.Set(ctx, "b", []byte("v"), time.Minute))

		assert.NoError(t, c.Clear(ctx))
		assert.Equal(t, 0, c.Size(ctx))
	})

	t.Run("ClearPrefixLeavesOtherKeys", func(t *testing.T) {
		c, _ := newTestCache()
		assert.NoError(t, c.Set(ctx, "GET /products", []byte("v"), time.Minute))
		assert.NoError(t, c.Set(ctx, "GET /products/1", []byte("v"), time.Minute))
		assert.NoError(t, c.Set(ctx, "GET /orders", []byte("v"), time.Minute))

		assert.NoError(t, c.ClearPrefix(ctx, "GET /products"))
		assert.False(t, c.Has(ctx, "GET /products"))
		assert.False(t, c.Has(ctx, "GET /products/1"))
		assert.True(t, c.Has(ctx, "GET /orders"))
	})

	t.Run("NonPositiveTTLUsesDefault", func(t *testing.T) {
		c, clock := newTestCache()
		assert.NoError(t, c.Set(ctx, "k", []byte("v"), 0))

		clock.Advance(DefaultTTL - time.Second)
		assert.True(t, c.Has(ctx, "k"))

		clock.Advance(2 * time.Second)
		assert.False(t, c.Has(ctx, "k"))
	})
}
