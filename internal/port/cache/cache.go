// Package cache defines the port interface for TTL key-value caching.
package cache

import (
	"context"
	"time"
)

// Cache is the port interface for key-value caching with expiry.
//
// Take is the atomic read-and-delete used by the confirmation gate: two
// concurrent confirmations for the same key must not both observe the
// value. Implementations own that atomicity, not callers.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Take(ctx context.Context, key string) ([]byte, bool, error)
}
