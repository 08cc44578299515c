package lruk

import "github.com/IvanBrykalov/lrukcache/policy"

type lrukPolicy[K comparable, V any] struct {
	historyCapacity int
	k               int
}

// Policy returns a factory that builds independent LRU-K caches. Config's
// Capacity sizes the hot tier of each instance; historyCapacity and k are
// applied to every instance as given.
//
// When used with a sharded cache, pass a per-shard history capacity.
func Policy[K comparable, V any](historyCapacity, k int) policy.Policy[K, V] {
	return lrukPolicy[K, V]{historyCapacity: historyCapacity, k: k}
}

// New implements policy.Policy.
func (p lrukPolicy[K, V]) New(cfg policy.Config[K, V]) policy.Cache[K, V] {
	return NewWithOptions(Options[K, V]{
		HotCapacity:     cfg.Capacity,
		HistoryCapacity: p.historyCapacity,
		K:               p.k,
		Metrics:         cfg.Metrics,
		OnEvict:         cfg.OnEvict,
	})
}
