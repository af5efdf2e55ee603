package facade

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheSetGet(t *testing.T) {
	c := NewCache()

	c.Set("k", "value")
	got, ok := c.Get("k", time.Minute)
	require.True(t, ok)
	assert.Equal(t, "value", got)

	_, ok = c.Get("missing", time.Minute)
	assert.False(t, ok)
}

func TestCacheReaderSuppliedTTL(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c := NewCache()
	c.now = func() time.Time { return now }

	c.Set("k", "value")
	now = now.Add(30 * time.Second)

	// The same entry is fresh for a patient reader and stale for a strict one
	_, ok := c.Get("k", time.Minute)
	assert.True(t, ok)
	_, ok = c.Get("k", 10*time.Second)
	assert.False(t, ok)
}

func TestCacheLazyEviction(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c := NewCache()
	c.now = func() time.Time { return now }

	c.Set("k", "value")
	require.Equal(t, 1, c.Size())

	// Expired entries linger until a read observes them
	now = now.Add(2 * time.Minute)
	assert.Equal(t, 1, c.Size())

	_, ok := c.Get("k", time.Minute)
	assert.False(t, ok)
	assert.Equal(t, 0, c.Size())
}

func TestCacheClear(t *testing.T) {
	c := NewCache()
	c.Set("a", 1)
	c.Set("b", 2)
	require.Equal(t, 2, c.Size())

	c.Clear()
	assert.Equal(t, 0, c.Size())
}

func TestCacheOverwriteRefreshes(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c := NewCache()
	c.now = func() time.Time { return now }

	c.Set("k", "old")
	now = now.Add(50 * time.Second)
	c.Set("k", "new")
	now = now.Add(30 * time.Second)

	// Age is measured from the overwrite, not the original store
	got, ok := c.Get("k", time.Minute)
	require.True(t, ok)
	assert.Equal(t, "new", got)
}

func TestCacheGetOrFill(t *testing.T) {
	c := NewCache()
	calls := 0

	fill := func() (any, error) {
		calls++
		return "filled", nil
	}

	got, err := c.GetOrFill("k", time.Minute, fill)
	require.NoError(t, err)
	assert.Equal(t, "filled", got)
	assert.Equal(t, 1, calls)

	got, err = c.GetOrFill("k", time.Minute, fill)
	require.NoError(t, err)
	assert.Equal(t, "filled", got)
	assert.Equal(t, 1, calls, "fresh hit must not refill")
}

func TestCacheGetOrFillError(t *testing.T) {
	c := NewCache()

	_, err := c.GetOrFill("k", time.Minute, func() (any, error) {
		return nil, fmt.Errorf("upstream down")
	})
	require.Error(t, err)

	// Failures are not cached
	assert.Equal(t, 0, c.Size())
}

func TestCacheGetOrFillSingleFlight(t *testing.T) {
	c := NewCache()
	var calls atomic.Int32
	release := make(chan struct{})

	fill := func() (any, error) {
		calls.Add(1)
		<-release
		return "shared", nil
	}

	var wg sync.WaitGroup
	results := make([]any, 8)
	errs := make([]error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = c.GetOrFill("k", time.Minute, fill)
		}(i)
	}

	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load(), "concurrent misses must collapse into one fill")
	for i := range results {
		require.NoError(t, errs[i])
		assert.Equal(t, "shared", results[i])
	}
}

func TestCacheKeyDeterministic(t *testing.T) {
	a := CacheKey("search_datasets", map[string]any{"search": "titanic", "page": 1, "page_size": 20})
	b := CacheKey("search_datasets", map[string]any{"page_size": 20, "page": 1, "search": "titanic"})
	assert.Equal(t, a, b, "parameter order must not affect the key")

	c := CacheKey("search_datasets", map[string]any{"search": "titanic", "page": 2, "page_size": 20})
	assert.NotEqual(t, a, c)

	d := CacheKey("list_models", map[string]any{"search": "titanic", "page": 1, "page_size": 20})
	assert.NotEqual(t, a, d, "operation name is part of the key")
}

func TestCacheKeyNormalizesValues(t *testing.T) {
	ts := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	a := CacheKey("op", map[string]any{"since": ts})
	b := CacheKey("op", map[string]any{"since": "2026-06-01T00:00:00Z"})
	assert.Equal(t, a, b)

	assert.Equal(t, "op", CacheKey("op", nil))
	assert.Equal(t, "op", CacheKey("op", map[string]any{}))
}
