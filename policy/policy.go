// Package policy holds the contracts shared by the cache implementations:
// the minimal Cache surface, the Policy factory used by the sharded cache to
// build its shards, and the observability hooks.
package policy

// Cache is the surface every bounded cache in this module exposes.
// Implementations are safe for concurrent use.
type Cache[K comparable, V any] interface {
	// Get returns the value for k and whether it was found.
	// A hit counts as a use for the recency ordering.
	Get(k K) (V, bool)
	// Put inserts or overwrites k→v.
	Put(k K, v V)
	// Remove deletes k and reports whether it was resident.
	Remove(k K) bool
	// Len returns the number of resident entries.
	Len() int
}

// Peeker is implemented by caches that can read a resident value without
// touching it: no recency change, no counters, no admission touch.
type Peeker[K comparable, V any] interface {
	Peek(k K) (V, bool)
}

// Config is what a Policy needs to build one cache instance.
type Config[K comparable, V any] struct {
	// Capacity bounds the number of resident entries; <= 0 yields a cache
	// that never holds anything.
	Capacity int
	// Metrics receives hit/miss/evict/resident signals. Nil => NoopMetrics.
	Metrics Metrics
	// OnEvict is called for every capacity eviction, under the instance lock.
	OnEvict func(k K, v V, reason EvictReason)
}

// Policy is a factory that creates independent cache instances,
// e.g. one per shard.
type Policy[K comparable, V any] interface {
	New(cfg Config[K, V]) Cache[K, V]
}

// Stats is a point-in-time snapshot of an instance's counters.
type Stats struct {
	Hits       uint64
	Misses     uint64
	Evictions  uint64
	Promotions uint64 // LRU-K only
	Forgotten  uint64 // LRU-K only: access counts dropped by the history cache
	Len        int
}

// HitRate returns Hits/(Hits+Misses), or 0 before the first lookup.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}
