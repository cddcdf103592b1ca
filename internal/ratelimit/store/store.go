// Package store provides counter storage for window-based rate limiting.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrKeyNotFound is returned when a key is absent or expired.
var ErrKeyNotFound = errors.New("key not found")

// Store holds expiring integer counters. Implementations must be safe
// for concurrent use.
type Store interface {
	// Get returns the value for key or an error wrapping ErrKeyNotFound.
	Get(ctx context.Context, key string) (int64, error)

	// IncrementWithExpiry adds delta to key and returns the new value.
	// A key created by this call expires after expiration; an existing
	// key keeps its expiry.
	IncrementWithExpiry(ctx context.Context, key string, delta int64, expiration time.Duration) (int64, error)

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the store.
	Close() error
}

// IsKeyNotFound reports whether err means the key was not present.
func IsKeyNotFound(err error) bool {
	return errors.Is(err, ErrKeyNotFound)
}

// Pinger is implemented by stores backed by a remote service.
type Pinger interface {
	Ping(ctx context.Context) error
}
