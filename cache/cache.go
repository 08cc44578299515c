package cache

import (
	"context"
	"sync/atomic"

	"github.com/IvanBrykalov/lrukcache/internal/singleflight"
	"github.com/IvanBrykalov/lrukcache/internal/util"
	"github.com/IvanBrykalov/lrukcache/policy"
	"github.com/IvanBrykalov/lrukcache/policy/lru"
)

// statser is implemented by the bundled policies.
type statser interface{ Stats() policy.Stats }

// cache is a fixed set of independent shards, each with its own lock.
// No lock is ever held across two shards.
type cache[K comparable, V any] struct {
	shards []policy.Cache[K, V]
	hash   func(K) uint64
	closed atomic.Bool

	loader func(ctx context.Context, k K) (V, error)

	// singleflight group for coalescing concurrent loads in GetOrLoad.
	sf singleflight.Group[K, V]
}

// New constructs a sharded cache with the provided Options.
// Each shard holds at most ceil(Capacity/Shards) entries.
func New[K comparable, V any](opt Options[K, V]) Cache[K, V] {
	n := opt.Shards
	if n <= 0 {
		n = util.HostParallelism()
	}
	pol := opt.Policy
	if pol == nil {
		pol = lru.Policy[K, V]()
	}
	hash := opt.Hash
	if hash == nil {
		hash = util.Hash[K]
	}

	cfg := policy.Config[K, V]{
		Capacity: util.CeilDiv(opt.Capacity, n),
		Metrics:  policy.OrNoop(opt.Metrics),
		OnEvict:  opt.OnEvict,
	}
	shards := make([]policy.Cache[K, V], n)
	for i := range shards {
		shards[i] = pol.New(cfg)
	}

	return &cache[K, V]{
		shards: shards,
		hash:   hash,
		loader: opt.Loader,
	}
}

// NewLRU is shorthand for an LRU-sharded cache of the given total capacity
// and shard count (<= 0 => host parallelism).
func NewLRU[K comparable, V any](capacity, shards int) Cache[K, V] {
	return New(Options[K, V]{Capacity: capacity, Shards: shards})
}

// ---- Cache[K,V] implementation ----

// Put delegates k→v to k's shard.
func (c *cache[K, V]) Put(k K, v V) {
	if c.closed.Load() {
		return
	}
	c.shardFor(k).Put(k, v)
}

// Get returns the value for k from k's shard.
func (c *cache[K, V]) Get(k K) (V, bool) {
	if c.closed.Load() {
		var zero V
		return zero, false
	}
	return c.shardFor(k).Get(k)
}

// Value returns the value for k, or the zero value on a miss.
func (c *cache[K, V]) Value(k K) V {
	v, _ := c.Get(k)
	return v
}

// Remove deletes k from its shard and returns true on success.
func (c *cache[K, V]) Remove(k K) bool {
	if c.closed.Load() {
		return false
	}
	return c.shardFor(k).Remove(k)
}

// Len returns the total number of resident entries across all shards.
// Shards are visited one at a time, so the sum is not an atomic snapshot.
func (c *cache[K, V]) Len() int {
	total := 0
	for _, s := range c.shards {
		total += s.Len()
	}
	return total
}

// Shards returns the number of shards.
func (c *cache[K, V]) Shards() int { return len(c.shards) }

// ShardLens returns the number of resident entries in each shard.
func (c *cache[K, V]) ShardLens() []int {
	out := make([]int, len(c.shards))
	for i, s := range c.shards {
		out[i] = s.Len()
	}
	return out
}

// Stats sums the counters of every shard that exposes them.
func (c *cache[K, V]) Stats() policy.Stats {
	var total policy.Stats
	for _, s := range c.shards {
		st, ok := s.(statser)
		if !ok {
			total.Len += s.Len()
			continue
		}
		x := st.Stats()
		total.Hits += x.Hits
		total.Misses += x.Misses
		total.Evictions += x.Evictions
		total.Promotions += x.Promotions
		total.Forgotten += x.Forgotten
		total.Len += x.Len
	}
	return total
}

// Close marks the cache as closed. Future operations are ignored.
func (c *cache[K, V]) Close() error {
	c.closed.Store(true)
	return nil
}

// GetOrLoad returns the value for k; on miss it loads via Options.Loader,
// coalescing concurrent loads for the same key (singleflight).
// If no Loader is configured, returns ErrNoLoader.
func (c *cache[K, V]) GetOrLoad(ctx context.Context, k K) (V, error) {
	var zero V
	if c.closed.Load() {
		return zero, ErrClosed
	}
	// fast path
	if v, ok := c.Get(k); ok {
		return v, nil
	}
	if c.loader == nil {
		return zero, ErrNoLoader
	}

	// singleflight: exactly one real load for the key
	return c.sf.Do(ctx, k, func() (V, error) {
		// A flight that finished just before this one may have stored k.
		// The re-check must not count as a touch or a miss.
		if v, ok := c.peek(k); ok {
			return v, nil
		}
		v, err := c.loader(ctx, k)
		if err == nil {
			c.Put(k, v)
		}
		return v, err
	})
}

// ---- helpers ----

// peek reads k without touching it when the shard supports that.
func (c *cache[K, V]) peek(k K) (V, bool) {
	if p, ok := c.shardFor(k).(policy.Peeker[K, V]); ok {
		return p.Peek(k)
	}
	var zero V
	return zero, false
}

// shardFor picks k's shard: hash(k) mod len(shards).
func (c *cache[K, V]) shardFor(k K) policy.Cache[K, V] {
	return c.shards[c.indexOf(k)]
}

func (c *cache[K, V]) indexOf(k K) int {
	return util.ShardIndex(c.hash(k), len(c.shards))
}
