package facade

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// cacheEntry pairs a stored value with its write timestamp. Freshness is
// decided by the reader: the same entry can be fresh for one caller and
// stale for another supplying a smaller TTL.
type cacheEntry struct {
	value    any
	storedAt time.Time
}

// Cache is an in-memory key/value store with per-read TTL semantics. There
// is no background eviction; an expired entry is removed lazily when a read
// observes it. Safe for concurrent use.
//
// A Cache is owned by the Facade that created it and lives for the process.
type Cache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry

	// now is replaceable in tests
	now func() time.Time

	group singleflight.Group
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

// Get returns the value stored under key if its age does not exceed ttl.
// An expired entry is evicted and reported as a miss.
func (c *Cache) Get(key string, ttl time.Duration) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().Sub(entry.storedAt) > ttl {
		delete(c.entries, key)
		return nil, false
	}
	return entry.value, true
}

// Set unconditionally stores value under key with the current timestamp.
func (c *Cache) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{value: value, storedAt: c.now()}
}

// Clear removes all entries.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
}

// Size returns the entry count, including entries that have logically
// expired but not yet been read and evicted.
func (c *Cache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// GetOrFill returns the cached value for key if fresh, otherwise invokes
// fill once and stores its result. Concurrent misses on the same key are
// collapsed into a single fill call.
func (c *Cache) GetOrFill(key string, ttl time.Duration, fill func() (any, error)) (any, error) {
	if value, ok := c.Get(key, ttl); ok {
		return value, nil
	}

	value, err, _ := c.group.Do(key, func() (any, error) {
		// A concurrent flight may have filled the entry between the miss
		// above and acquiring the flight.
		if value, ok := c.Get(key, ttl); ok {
			return value, nil
		}
		value, err := fill()
		if err != nil {
			return nil, err
		}
		c.Set(key, value)
		return value, nil
	})
	return value, err
}

// CacheKey builds a deterministic key from an operation name and its
// parameters. Parameter order never affects the key; identical requests
// always hash to identical keys.
func CacheKey(op string, params map[string]any) string {
	if len(params) == 0 {
		return op
	}

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(op)
	for _, k := range keys {
		b.WriteByte('|')
		b.WriteString(k)
		b.WriteByte('=')
		fmt.Fprintf(&b, "%v", Normalize(params[k]))
	}
	return b.String()
}
