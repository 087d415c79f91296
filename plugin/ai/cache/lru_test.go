package cache

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCacheSetGet(t *testing.T) {
	c := NewEmbeddingCache(4, time.Minute)

	_, ok := c.Get("missing")
	require.False(t, ok)

	c.Set("hello", []float32{1, 2, 3})
	vector, ok := c.Get("hello")
	require.True(t, ok)
	require.Equal(t, []float32{1, 2, 3}, vector)
	require.Equal(t, 1, c.Len())
}

func TestCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewEmbeddingCache(2, time.Minute)

	c.Set("a", []float32{1})
	c.Set("b", []float32{2})
	// Touch "a" so "b" becomes the eviction candidate.
	_, ok := c.Get("a")
	require.True(t, ok)

	c.Set("c", []float32{3})
	require.Equal(t, 2, c.Len())

	_, ok = c.Get("b")
	require.False(t, ok)
	_, ok = c.Get("a")
	require.True(t, ok)
	_, ok = c.Get("c")
	require.True(t, ok)
}

func TestCacheExpiresEntries(t *testing.T) {
	c := NewEmbeddingCache(4, 10*time.Millisecond)

	c.Set("soon-stale", []float32{1})
	time.Sleep(25 * time.Millisecond)

	_, ok := c.Get("soon-stale")
	require.False(t, ok)
	require.Zero(t, c.Len())
}

func TestCacheUpdateRefreshesEntry(t *testing.T) {
	c := NewEmbeddingCache(4, time.Minute)

	c.Set("key", []float32{1})
	c.Set("key", []float32{9, 9})

	vector, ok := c.Get("key")
	require.True(t, ok)
	require.Equal(t, []float32{9, 9}, vector)
	require.Equal(t, 1, c.Len())
}

func TestCacheCapacityBound(t *testing.T) {
	c := NewEmbeddingCache(8, time.Minute)
	for i := 0; i < 100; i++ {
		c.Set(fmt.Sprintf("key-%d", i), []float32{float32(i)})
	}
	require.Equal(t, 8, c.Len())
}
