// Package lruk implements an LRU-K admission cache.
//
// A key is admitted to the hot LRU tier only on its K-th touch. Puts and
// hot-tier misses on Get both count as touches. Until then its value waits
// in a pending map and its touch count lives in a small, separately bounded
// history LRU. Cold keys that are touched once and never again therefore
// never occupy a hot slot.
//
// The history cache is itself LRU-bounded, so a key's accumulated count is
// forgotten when enough other cold keys are counted in between; the key then
// starts again from zero. Its pending value is kept until the key is promoted
// or removed, which means the pending map is bounded only by the number of
// distinct cold keys written.
//
// Concurrency: each key maps to one of a fixed set of stripes. A stripe
// mutex is held for the whole of Get, Put and Remove on its keys, so the
// hot check, the count update and the promotion happen atomically per key.
// Operations on keys in different stripes run in parallel and only meet on
// the inner caches' own short locks. Locks are always taken stripe first,
// inner cache second.
package lruk

import (
	"sync"

	"github.com/IvanBrykalov/lrukcache/internal/util"
	"github.com/IvanBrykalov/lrukcache/policy"
	"github.com/IvanBrykalov/lrukcache/policy/lru"
)

// Options configures a Cache.
type Options[K comparable, V any] struct {
	// HotCapacity bounds the hot tier; <= 0 means nothing is ever retained
	// after promotion.
	HotCapacity int
	// HistoryCapacity bounds the number of keys whose touch counts are
	// remembered; <= 0 means counts are never remembered, so only K == 1
	// can promote.
	HistoryCapacity int
	// K is the number of touches required for admission; values < 1 mean 1.
	K int

	// Metrics receives Hit/Miss for lookups on this cache, Evict for hot-tier
	// capacity evictions (EvictCapacity) and forgotten counts (EvictHistory),
	// and Resident for the hot tier. If it also implements
	// policy.PromotionMetrics, Promote is called on every admission.
	Metrics policy.Metrics

	// OnEvict is called when the hot tier evicts an entry, under its lock.
	OnEvict func(k K, v V, reason policy.EvictReason)

	// Hash selects the stripe for a key. Nil => util.Hash.
	Hash func(K) uint64
}

// stripe owns the pending values of the keys hashed to it.
type stripe[K comparable, V any] struct {
	mu      sync.Mutex
	pending map[K]V
	_       util.CacheLinePad
}

// Cache is an LRU-K cache, safe for concurrent use.
type Cache[K comparable, V any] struct {
	hot     *lru.Cache[K, V]
	history *lru.Cache[K, int]
	k       int

	stripes []stripe[K, V]
	hash    func(K) uint64

	metrics  policy.Metrics
	promoter policy.PromotionMetrics // nil when metrics cannot count promotions

	_          util.CacheLinePad
	hits       util.PaddedAtomicUint64
	misses     util.PaddedAtomicUint64
	promotions util.PaddedAtomicUint64
	forgotten  util.PaddedAtomicUint64
}

// New returns an LRU-K cache with the given hot-tier capacity, history
// capacity and admission threshold k.
func New[K comparable, V any](hotCapacity, historyCapacity, k int) *Cache[K, V] {
	return NewWithOptions(Options[K, V]{
		HotCapacity:     hotCapacity,
		HistoryCapacity: historyCapacity,
		K:               k,
	})
}

// NewWithOptions returns an LRU-K cache configured by opt.
func NewWithOptions[K comparable, V any](opt Options[K, V]) *Cache[K, V] {
	k := opt.K
	if k < 1 {
		k = 1
	}
	hash := opt.Hash
	if hash == nil {
		hash = util.Hash[K]
	}
	m := policy.OrNoop(opt.Metrics)

	c := &Cache[K, V]{
		k:       k,
		hash:    hash,
		metrics: m,
		stripes: make([]stripe[K, V], util.ReasonableShardCount()),
	}
	c.promoter, _ = m.(policy.PromotionMetrics)
	for i := range c.stripes {
		c.stripes[i].pending = make(map[K]V)
	}

	// The tiers report evictions and residency; lookups are counted once,
	// at this level.
	c.hot = lru.NewWithOptions(lru.Options[K, V]{
		Capacity: opt.HotCapacity,
		Metrics:  tierMetrics{m},
		OnEvict:  opt.OnEvict,
	})
	c.history = lru.NewWithOptions(lru.Options[K, int]{
		Capacity: opt.HistoryCapacity,
		OnEvict: func(K, int, policy.EvictReason) {
			c.forgotten.Add(1)
			m.Evict(policy.EvictHistory)
		},
	})
	return c
}

// Get returns the value for k and whether it was a hit.
//
// A hot hit refreshes k's recency. A hot miss counts as a touch; if that
// touch reaches K and a value for k is pending, the value is promoted to the
// hot tier and returned as a hit.
func (c *Cache[K, V]) Get(k K) (V, bool) {
	s := c.stripeFor(k)
	s.mu.Lock()
	defer s.mu.Unlock()

	if v, ok := c.hot.Get(k); ok {
		c.hit()
		return v, true
	}

	if c.touchLocked(k) >= c.k {
		if v, ok := s.pending[k]; ok {
			c.promoteLocked(s, k, v)
			c.hit()
			return v, true
		}
	}

	c.misses.Add(1)
	c.metrics.Miss()
	var zero V
	return zero, false
}

// Value is the single-result form of Get: it returns the zero value on a miss.
//
// Value cannot tell a miss from a hit whose stored value is the zero value
// of V. Use Get whenever that distinction matters.
func (c *Cache[K, V]) Value(k K) V {
	v, _ := c.Get(k)
	return v
}

// Put writes k→v.
//
// A hot key is overwritten in place, without counting a touch. Otherwise
// the value is recorded as pending and the touch is counted; reaching K
// promotes the key immediately.
func (c *Cache[K, V]) Put(k K, v V) {
	s := c.stripeFor(k)
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.hot.Update(k, v) {
		return
	}

	s.pending[k] = v
	if c.touchLocked(k) >= c.k {
		c.promoteLocked(s, k, v)
	}
}

// Remove drops k from the hot tier, the pending map and the history, and
// reports whether a value for k was held.
func (c *Cache[K, V]) Remove(k K) bool {
	s := c.stripeFor(k)
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := c.hot.Remove(k)
	if _, ok := s.pending[k]; ok {
		delete(s.pending, k)
		removed = true
	}
	c.history.Remove(k)
	return removed
}

// Len returns the number of entries in the hot tier.
func (c *Cache[K, V]) Len() int { return c.hot.Len() }

// Pending returns the number of values waiting for admission.
func (c *Cache[K, V]) Pending() int {
	n := 0
	for i := range c.stripes {
		s := &c.stripes[i]
		s.mu.Lock()
		n += len(s.pending)
		s.mu.Unlock()
	}
	return n
}

// Touches returns the remembered touch count of a cold key without
// counting a touch. Hot keys and forgotten keys report 0.
func (c *Cache[K, V]) Touches(k K) int {
	n, _ := c.history.Peek(k)
	return n
}

// Peek returns k's value if it is resident in the hot tier. It counts no
// touch, changes no recency and records no hit or miss. Pending values are
// not visible.
func (c *Cache[K, V]) Peek(k K) (V, bool) { return c.hot.Peek(k) }

// Hot reports whether k is resident in the hot tier, without touching it.
func (c *Cache[K, V]) Hot(k K) bool { return c.hot.Contains(k) }

// K returns the admission threshold.
func (c *Cache[K, V]) K() int { return c.k }

// Stats returns a snapshot of the counters. Evictions are hot-tier
// capacity evictions; Forgotten counts history evictions.
func (c *Cache[K, V]) Stats() policy.Stats {
	return policy.Stats{
		Hits:       c.hits.Load(),
		Misses:     c.misses.Load(),
		Evictions:  c.hot.Stats().Evictions,
		Promotions: c.promotions.Load(),
		Forgotten:  c.forgotten.Load(),
		Len:        c.hot.Len(),
	}
}

// -------------------- internals (stripe lock held) --------------------

func (c *Cache[K, V]) stripeFor(k K) *stripe[K, V] {
	return &c.stripes[util.ShardIndex(c.hash(k), len(c.stripes))]
}

// touchLocked counts one touch of k in the history cache and returns the
// new count. A key the history has forgotten starts again from zero.
func (c *Cache[K, V]) touchLocked(k K) int {
	n, _ := c.history.Peek(k)
	n++
	c.history.Put(k, n)
	return n
}

// promoteLocked moves k from the pending map into the hot tier and clears
// its touch count.
func (c *Cache[K, V]) promoteLocked(s *stripe[K, V], k K, v V) {
	delete(s.pending, k)
	c.history.Remove(k)
	c.hot.Put(k, v)
	c.promotions.Add(1)
	if c.promoter != nil {
		c.promoter.Promote()
	}
}

func (c *Cache[K, V]) hit() {
	c.hits.Add(1)
	c.metrics.Hit()
}

// tierMetrics forwards eviction and residency signals from the hot tier but
// drops its Hit/Miss, which the LRU-K cache reports itself.
type tierMetrics struct{ m policy.Metrics }

func (tierMetrics) Hit()                         {}
func (tierMetrics) Miss()                        {}
func (t tierMetrics) Evict(r policy.EvictReason) { t.m.Evict(r) }
func (t tierMetrics) Resident(delta int)         { t.m.Resident(delta) }

// Ensure Cache satisfies the shared surface.
var (
	_ policy.Cache[string, int]  = (*Cache[string, int])(nil)
	_ policy.Peeker[string, int] = (*Cache[string, int])(nil)
)
