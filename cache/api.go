package cache

import (
	"context"

	"github.com/IvanBrykalov/lrukcache/policy"
)

// Cache is a sharded, in-memory key/value cache.
// All methods are safe for concurrent use by multiple goroutines.
//
// Every call is routed to exactly one shard, chosen by hash(key) mod N, and
// runs under that shard's lock only. Typical cost is O(1): a hash, a map
// lookup and a constant amount of link fixes.
type Cache[K comparable, V any] interface {
	// Put inserts or updates k→v in k's shard, following the shard policy.
	Put(k K, v V)

	// Get returns the value for k and a boolean flag indicating presence.
	Get(k K) (V, bool)

	// Value returns the value for k, or the zero value on a miss.
	// It cannot tell a miss from a stored zero value; prefer Get.
	Value(k K) V

	// Remove deletes k if present and returns true on success.
	Remove(k K) bool

	// Len returns the total number of resident entries across all shards.
	Len() int

	// GetOrLoad returns the value for k, loading it via Options.Loader on miss.
	// Concurrent loads for the same key are coalesced (singleflight).
	// If no Loader was configured, returns ErrNoLoader.
	GetOrLoad(ctx context.Context, k K) (V, error)

	// Shards returns the number of shards.
	Shards() int

	// ShardLens returns the number of resident entries per shard,
	// useful for checking key distribution.
	ShardLens() []int

	// Stats sums the counters of all shards.
	Stats() policy.Stats

	// Close marks the cache closed: later writes are ignored and reads miss.
	// It is a soft close and always returns nil.
	Close() error
}
