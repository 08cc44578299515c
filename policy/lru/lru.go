// Package lru implements a bounded Least-Recently-Used cache.
//
// A Cache pairs a key→handle map with an arena-backed recency ordering
// (internal/order): Get, Put and Remove are O(1), and inserting a new key
// into a full cache evicts the least recently used entry first. Eviction is
// driven by the index size, never by walking the ordering.
//
// One mutex guards each instance; every operation holds it for its full
// duration, so there is no reader/writer split (a Get reorders entries).
package lru

import (
	"sync"

	"github.com/IvanBrykalov/lrukcache/internal/order"
	"github.com/IvanBrykalov/lrukcache/internal/util"
	"github.com/IvanBrykalov/lrukcache/policy"
)

// Options configures a Cache. The zero value is a cache that holds nothing.
type Options[K comparable, V any] struct {
	// Capacity is the entry limit; <= 0 makes every Put a no-op.
	Capacity int

	// Metrics receives Hit/Miss/Evict/Resident signals. Nil => NoopMetrics.
	Metrics policy.Metrics

	// OnEvict is called for every capacity eviction, under the cache lock.
	// Keep it lightweight and do not call back into the same cache.
	OnEvict func(k K, v V, reason policy.EvictReason)
}

// Cache is a capacity-bounded LRU cache, safe for concurrent use.
type Cache[K comparable, V any] struct {
	// ---- guarded by mu ----
	mu    sync.Mutex
	index map[K]order.Handle
	order *order.Index[K, V]

	cap     int
	metrics policy.Metrics
	onEvict func(k K, v V, reason policy.EvictReason)

	// ---- hot counters (separate cache lines to avoid false sharing) ----
	_      util.CacheLinePad
	hits   util.PaddedAtomicUint64
	misses util.PaddedAtomicUint64
	evicts util.PaddedAtomicUint64
}

// New returns an empty cache holding at most capacity entries.
func New[K comparable, V any](capacity int) *Cache[K, V] {
	return NewWithOptions(Options[K, V]{Capacity: capacity})
}

// NewWithOptions returns an empty cache configured by opt.
func NewWithOptions[K comparable, V any](opt Options[K, V]) *Cache[K, V] {
	hint := opt.Capacity
	if hint < 0 {
		hint = 0
	}
	return &Cache[K, V]{
		index:   make(map[K]order.Handle, min(hint, 1<<16)),
		order:   order.New[K, V](hint),
		cap:     opt.Capacity,
		metrics: policy.OrNoop(opt.Metrics),
		onEvict: opt.OnEvict,
	}
}

// Put inserts or overwrites k→v and marks k as most recently used.
// When k is new and the cache is full, the least recently used entry is
// evicted first. Put is a no-op when the capacity is <= 0.
func (c *Cache[K, V]) Put(k K, v V) {
	if c.cap <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if h, ok := c.index[k]; ok {
		c.order.Set(h, v)
		c.order.MoveToBack(h)
		return
	}

	if len(c.index) >= c.cap {
		c.evictOldestLocked()
	}
	c.index[k] = c.order.PushBack(k, v)
	c.metrics.Resident(1)
}

// Update overwrites the value of a resident key and marks it as most
// recently used. It reports false, without inserting, when k is absent.
func (c *Cache[K, V]) Update(k K, v V) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	h, ok := c.index[k]
	if !ok {
		return false
	}
	c.order.Set(h, v)
	c.order.MoveToBack(h)
	return true
}

// Get returns the value for k and whether it was found.
// A hit marks k as most recently used; a miss returns the zero value.
func (c *Cache[K, V]) Get(k K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	h, ok := c.index[k]
	if !ok {
		c.misses.Add(1)
		c.metrics.Miss()
		var zero V
		return zero, false
	}
	c.order.MoveToBack(h)
	_, v, _ := c.order.Get(h)
	c.hits.Add(1)
	c.metrics.Hit()
	return v, true
}

// Value is the single-result form of Get: it returns the zero value on a miss.
//
// Value cannot tell a miss from a hit whose stored value is the zero value
// of V. Use Get whenever that distinction matters.
func (c *Cache[K, V]) Value(k K) V {
	v, _ := c.Get(k)
	return v
}

// Peek returns the value for k without changing its recency or the counters.
func (c *Cache[K, V]) Peek(k K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if h, ok := c.index[k]; ok {
		_, v, _ := c.order.Get(h)
		return v, true
	}
	var zero V
	return zero, false
}

// Contains reports whether k is resident, without changing its recency.
func (c *Cache[K, V]) Contains(k K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.index[k]
	return ok
}

// Remove deletes k and reports whether it was resident.
// Explicit removals are not counted as evictions.
func (c *Cache[K, V]) Remove(k K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	h, ok := c.index[k]
	if !ok {
		return false
	}
	c.order.Remove(h)
	delete(c.index, k)
	c.metrics.Resident(-1)
	return true
}

// Len returns the number of resident entries.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.index)
}

// Capacity returns the configured entry limit.
func (c *Cache[K, V]) Capacity() int { return c.cap }

// Keys returns the resident keys from least to most recently used.
func (c *Cache[K, V]) Keys() []K {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]K, 0, len(c.index))
	c.order.Walk(func(k K, _ V) bool {
		out = append(out, k)
		return true
	})
	return out
}

// Purge drops every entry without reporting evictions.
func (c *Cache[K, V]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if n := len(c.index); n > 0 {
		c.metrics.Resident(-n)
	}
	clear(c.index)
	c.order.Reset()
}

// Stats returns a snapshot of the hit/miss/eviction counters.
func (c *Cache[K, V]) Stats() policy.Stats {
	return policy.Stats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evicts.Load(),
		Len:       c.Len(),
	}
}

// -------------------- internals (mu held) --------------------

// evictOldestLocked removes the least recently used entry from both the
// ordering and the index.
func (c *Cache[K, V]) evictOldestLocked() {
	h, ok := c.order.Front()
	if !ok {
		return
	}
	k, v, _ := c.order.Remove(h)
	delete(c.index, k)
	c.evicts.Add(1)
	c.metrics.Evict(policy.EvictCapacity)
	c.metrics.Resident(-1)
	if c.onEvict != nil {
		c.onEvict(k, v, policy.EvictCapacity)
	}
}

// Ensure Cache satisfies the shared surface.
var (
	_ policy.Cache[string, int]  = (*Cache[string, int])(nil)
	_ policy.Peeker[string, int] = (*Cache[string, int])(nil)
)
