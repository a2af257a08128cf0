// Package cacher provides a generic read-through cache used to avoid
// recomputing expensive values under concurrent demand, such as full-board
// renders requested by many sessions at once.
package cacher

import (
	"context"
	"time"
)

// FetchFunc computes a value on a cache miss. It receives a context for
// cancellation control and returns the value or an error.
type FetchFunc[T any] func(ctx context.Context) (T, error)

// Cacher is a read-through cache. Implementations must be safe for
// concurrent use and should collapse concurrent misses for the same key
// into a single fetch.
type Cacher[T any] interface {
	// GetOrFetch returns the cached value for key, or computes it with
	// fetchFn on a miss and caches the result with the given TTL.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeout control
	//   - key: The cache key to retrieve or set
	//   - ttl: Time-to-live for a freshly fetched value
	//   - fetchFn: Function invoked to compute the value on a miss
	//
	// Returns:
	//   - The cached or fetched value of type T
	//   - An error if fetching fails
	GetOrFetch(ctx context.Context, key string, ttl time.Duration, fetchFn FetchFunc[T]) (T, error)

	// Delete removes a key from the cache. Removing a missing key is not
	// an error.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeout control
	//   - key: The cache key to delete
	//
	// Returns:
	//   - An error if the operation fails
	Delete(ctx context.Context, key string) error

	// Clear removes all items from the cache.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeout control
	//
	// Returns:
	//   - An error if the operation fails
	Clear(ctx context.Context) error

	// ItemCount returns the number of items currently cached, including
	// items that have expired but not yet been evicted.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeout control
	//
	// Returns:
	//   - The number of cached items
	//   - An error if the operation fails
	ItemCount(ctx context.Context) (int, error)
}
