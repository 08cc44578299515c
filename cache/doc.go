// Package cache provides a generic, sharded in-memory cache built from
// independent bounded caches (LRU by default, LRU-K optionally).
//
// Design
//
//   - Sharding: the cache owns a fixed set of N shards. N is Options.Shards,
//     or the host's parallelism (runtime.NumCPU) when that is <= 0. A key is
//     routed to shard hash(key) mod N; the mapping never changes after
//     construction.
//
//   - Capacity: each shard holds at most ceil(Capacity/N) entries and enforces
//     that limit on its own. Global capacity is therefore approximate: a
//     skewed key distribution can fill some shards while others sit idle,
//     and two keys in different shards never evict each other.
//
//   - Concurrency: every shard has its own mutex, and each operation takes
//     exactly one of them. Operations on keys in different shards never
//     contend; no lock is ever held across shards.
//
//   - Policies: shards are built by a policy.Policy factory. lru.Policy is the
//     default; lruk.Policy gives every shard LRU-K admission.
//
//   - GetOrLoad: coalesces concurrent loads for the same key using singleflight.
//     If Loader is nil, GetOrLoad returns ErrNoLoader.
//
//   - Metrics: Options.Metrics is shared by all shards and receives
//     Hit/Miss/Evict/Resident signals; see metrics/prom for a Prometheus
//     adapter.
//
// Basic usage
//
//	c := cache.NewLRU[string, []byte](10_000, 0) // shards = NumCPU
//	c.Put("a", []byte("1"))
//	if v, ok := c.Get("a"); ok {
//	    _ = v
//	}
//	c.Remove("a")
//
// LRU-K shards
//
//	c := cache.New[string, string](cache.Options[string, string]{
//	    Capacity: 50_000,
//	    Shards:   16,
//	    Policy:   lruk.Policy[string, string](1_024 /* history per shard */, 2),
//	})
//
// With GetOrLoad (singleflight)
//
//	c := cache.New[string, string](cache.Options[string, string]{
//	    Capacity: 1024,
//	    Loader: func(ctx context.Context, k string) (string, error) {
//	        return "v:" + k, nil
//	    },
//	})
//	v, err := c.GetOrLoad(context.Background(), "key")
package cache
