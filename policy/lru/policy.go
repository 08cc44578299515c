package lru

import "github.com/IvanBrykalov/lrukcache/policy"

type lruPolicy[K comparable, V any] struct{}

// Policy returns a factory that builds independent LRU caches,
// e.g. one per shard of a sharded cache.
func Policy[K comparable, V any]() policy.Policy[K, V] { return lruPolicy[K, V]{} }

// New implements policy.Policy.
func (lruPolicy[K, V]) New(cfg policy.Config[K, V]) policy.Cache[K, V] {
	return NewWithOptions(Options[K, V]{
		Capacity: cfg.Capacity,
		Metrics:  cfg.Metrics,
		OnEvict:  cfg.OnEvict,
	})
}
