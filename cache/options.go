package cache

import (
	"context"

	"github.com/IvanBrykalov/lrukcache/policy"
)

// Options configures the cache behavior. Zero values are safe;
// defaults are applied in New():
//   - Shards <= 0   => host parallelism (runtime.NumCPU)
//   - nil Policy    => LRU
//   - nil Hash      => xxhash-based hashing of common key types
//   - nil Metrics   => NoopMetrics
type Options[K comparable, V any] struct {
	// Capacity is the total entry budget, split evenly across shards
	// (ceil(Capacity/Shards) each). <= 0 yields a cache that holds nothing.
	Capacity int

	// Shards is the number of independent shards. No rounding is applied.
	Shards int

	// Policy builds each shard; nil => lru.Policy.
	// Use lruk.Policy for LRU-K admission per shard.
	Policy policy.Policy[K, V]

	// Hash maps a key to 64 bits for shard selection. It must be
	// deterministic for the life of the cache.
	Hash func(K) uint64

	// Loader fetches a value on cache miss. Used by GetOrLoad.
	Loader func(ctx context.Context, k K) (V, error)

	// OnEvict is called on eviction under the shard lock; keep callbacks lightweight.
	OnEvict func(k K, v V, reason policy.EvictReason)

	// Metrics is shared by all shards; it must be safe for concurrent use.
	Metrics policy.Metrics
}
