// Package order implements the recency ordering used by the caches: an arena
// of entries linked from least to most recently used, addressed by
// generation-checked handles.
//
// Slot 0 is the head sentinel (before the LRU entry) and slot 1 is the tail
// sentinel (after the MRU entry). Sentinels are never returned, evicted or
// looked up. Removing an entry frees its slot for reuse and bumps the slot
// generation, so a handle kept past Remove can never reach the next occupant.
//
// An Index is not safe for concurrent use; callers guard it with their own lock.
package order

const (
	head uint32 = 0
	tail uint32 = 1

	// prealloc caps the up-front arena reservation for very large capacities.
	prealloc = 1 << 16
)

// Index is an intrusive LRU→MRU ordering with O(1) append and detach.
type Index[K comparable, V any] struct {
	nodes []node[K, V]
	free  []uint32
	len   int
}

// New returns an empty Index sized for about capacity entries.
func New[K comparable, V any](capacity int) *Index[K, V] {
	if capacity < 0 {
		capacity = 0
	}
	if capacity > prealloc {
		capacity = prealloc
	}
	x := &Index[K, V]{nodes: make([]node[K, V], 2, capacity+2)}
	x.link()
	return x
}

func (x *Index[K, V]) link() {
	x.nodes[head].next = tail
	x.nodes[head].prev = head
	x.nodes[tail].prev = head
	x.nodes[tail].next = tail
}

// Len returns the number of live entries.
func (x *Index[K, V]) Len() int { return x.len }

// Valid reports whether h addresses a live entry.
func (x *Index[K, V]) Valid(h Handle) bool {
	if h.idx <= tail || int(h.idx) >= len(x.nodes) {
		return false
	}
	n := &x.nodes[h.idx]
	return n.live && n.gen == h.gen
}

// PushBack appends k→v at the most recently used end and returns its handle.
func (x *Index[K, V]) PushBack(k K, v V) Handle {
	var idx uint32
	if last := len(x.free) - 1; last >= 0 {
		idx = x.free[last]
		x.free = x.free[:last]
	} else {
		x.nodes = append(x.nodes, node[K, V]{})
		idx = uint32(len(x.nodes) - 1)
	}

	n := &x.nodes[idx]
	n.key, n.val, n.live = k, v, true
	if n.gen == 0 {
		n.gen = 1
	}
	x.insertBeforeTail(idx)
	x.len++
	return Handle{idx: idx, gen: n.gen}
}

// MoveToBack marks h as most recently used. It reports false for a stale handle.
func (x *Index[K, V]) MoveToBack(h Handle) bool {
	if !x.Valid(h) {
		return false
	}
	if x.nodes[tail].prev == h.idx {
		return true
	}
	x.detach(h.idx)
	x.insertBeforeTail(h.idx)
	return true
}

// Remove detaches h and frees its slot, returning the stored pair.
func (x *Index[K, V]) Remove(h Handle) (K, V, bool) {
	if !x.Valid(h) {
		var (
			zk K
			zv V
		)
		return zk, zv, false
	}
	x.detach(h.idx)

	n := &x.nodes[h.idx]
	k, v := n.key, n.val
	var (
		zk K
		zv V
	)
	n.key, n.val = zk, zv
	n.live = false
	n.gen++
	if n.gen == 0 {
		n.gen = 1
	}
	x.free = append(x.free, h.idx)
	x.len--
	return k, v, true
}

// Front returns the least recently used entry.
func (x *Index[K, V]) Front() (Handle, bool) {
	idx := x.nodes[head].next
	if idx == tail {
		return Handle{}, false
	}
	return Handle{idx: idx, gen: x.nodes[idx].gen}, true
}

// Get returns the pair stored at h.
func (x *Index[K, V]) Get(h Handle) (K, V, bool) {
	if !x.Valid(h) {
		var (
			zk K
			zv V
		)
		return zk, zv, false
	}
	n := &x.nodes[h.idx]
	return n.key, n.val, true
}

// Set overwrites the value stored at h without touching its position.
func (x *Index[K, V]) Set(h Handle, v V) bool {
	if !x.Valid(h) {
		return false
	}
	x.nodes[h.idx].val = v
	return true
}

// Walk visits entries from least to most recently used until fn returns false.
func (x *Index[K, V]) Walk(fn func(k K, v V) bool) {
	for idx := x.nodes[head].next; idx != tail; idx = x.nodes[idx].next {
		n := &x.nodes[idx]
		if !fn(n.key, n.val) {
			return
		}
	}
}

// Reset drops every entry. Outstanding handles become invalid.
func (x *Index[K, V]) Reset() {
	for i := range x.nodes[2:] {
		n := &x.nodes[i+2]
		if n.live {
			var (
				zk K
				zv V
			)
			n.key, n.val, n.live = zk, zv, false
			n.gen++
			if n.gen == 0 {
				n.gen = 1
			}
		}
	}
	x.free = x.free[:0]
	for i := len(x.nodes) - 1; i > int(tail); i-- {
		x.free = append(x.free, uint32(i))
	}
	x.len = 0
	x.link()
}

// -------------------- internals --------------------

func (x *Index[K, V]) insertBeforeTail(idx uint32) {
	last := x.nodes[tail].prev
	x.nodes[idx].prev = last
	x.nodes[idx].next = tail
	x.nodes[last].next = idx
	x.nodes[tail].prev = idx
}

func (x *Index[K, V]) detach(idx uint32) {
	n := &x.nodes[idx]
	x.nodes[n.prev].next = n.next
	x.nodes[n.next].prev = n.prev
	n.prev, n.next = idx, idx
}
