package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/smartshop/backend/internal/domain"
)

// cacheItem represents a single item in the cache with expiration
type cacheItem struct {
	Value      interface{}
	Expiration time.Time
}

// MemoryCache is a thread-safe in-memory cache with TTL support.
// Entries are never removed explicitly; an entry read after its expiration is a miss
// and is replaced by the next Set for the same key.
type MemoryCache struct {
	data  map[string]cacheItem
	mutex sync.RWMutex
	now   func() time.Time
}

// NewMemoryCache creates a new in-memory cache using the wall clock
func NewMemoryCache() *MemoryCache {
	return NewMemoryCacheWithClock(time.Now)
}

// NewMemoryCacheWithClock creates a cache that reads the current time from now
func NewMemoryCacheWithClock(now func() time.Time) *MemoryCache {
	if now == nil {
		now = time.Now
	}
	return &MemoryCache{
		data: make(map[string]cacheItem),
		now:  now,
	}
}

// Get retrieves a value from the cache. A stored nil is a hit with a nil value.
func (c *MemoryCache) Get(ctx context.Context, key string) (interface{}, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	item, exists := c.data[key]
	if !exists {
		return nil, domain.ErrCacheMiss
	}

	if c.now().After(item.Expiration) {
		return nil, domain.ErrCacheMiss
	}

	return item.Value, nil
}

// Set stores a value in the cache with TTL, overwriting any previous entry
func (c *MemoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	// Serialize to JSON and back so values look the same as ones read from Redis
	jsonData, err := json.Marshal(value)
	if err != nil {
		return err
	}

	var storedValue interface{}
	if err := json.Unmarshal(jsonData, &storedValue); err != nil {
		return err
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.data[key] = cacheItem{
		Value:      storedValue,
		Expiration: c.now().Add(ttl),
	}

	return nil
}

// Size returns the number of unexpired items in the cache
func (c *MemoryCache) Size() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	now := c.now()
	live := 0
	for _, item := range c.data {
		if !now.After(item.Expiration) {
			live++
		}
	}
	return live
}
