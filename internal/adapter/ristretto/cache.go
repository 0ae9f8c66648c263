// Package ristretto implements the cache port using dgraph-io/ristretto
// as an in-process TTL store. It backs the confirmation gate's pending
// actions, so Take (read-and-delete) must be atomic per key.
package ristretto

import (
	"context"
	"sync"
	"time"

	"github.com/dgraph-io/ristretto/v2"
)

// Cache wraps a ristretto cache as an in-process TTL key-value store.
type Cache struct {
	c *ristretto.Cache[string, []byte]

	// Serializes Take against concurrent Takes and Sets. Ristretto has
	// no compare-and-delete, and the confirmation gate requires that two
	// racing "yes" replies never both consume the same pending action.
	mu sync.Mutex
}

// New creates a ristretto-backed cache. maxCostBytes is the maximum total
// size of cached values in bytes.
func New(maxCostBytes int64) (*Cache, error) {
	c, err := ristretto.NewCache(&ristretto.Config[string, []byte]{
		NumCounters: maxCostBytes / 100 * 10, // ~10x expected items
		MaxCost:     maxCostBytes,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &Cache{c: c}, nil
}

// Get retrieves a value from the cache.
func (c *Cache) Get(_ context.Context, key string) ([]byte, bool, error) {
	val, found := c.c.Get(key)
	if !found {
		return nil, false, nil
	}
	return val, true, nil
}

// Set stores a value with the given TTL. Ristretto admits writes
// asynchronously, so Set waits until the value is visible; a pending
// action that silently never lands would break the confirmation flow.
func (c *Cache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.c.SetWithTTL(key, value, int64(len(value)), ttl)
	c.c.Wait()
	return nil
}

// Delete removes a value from the cache.
func (c *Cache) Delete(_ context.Context, key string) error {
	c.c.Del(key)
	return nil
}

// Take retrieves and deletes a value in one atomic step. Returns false
// if the key is absent or expired.
func (c *Cache) Take(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	val, found := c.c.Get(key)
	if !found {
		return nil, false, nil
	}
	c.c.Del(key)
	return val, true, nil
}

// Close shuts down the cache and releases resources.
func (c *Cache) Close() {
	c.c.Close()
}
