package order

// node is one arena slot. Live slots carry a key/value pair and their
// position in the recency ordering; free slots sit on the free list.
type node[K comparable, V any] struct {
	key K
	val V

	// Arena links: prev is less recently used, next is more recently used.
	prev uint32
	next uint32

	// gen is bumped every time the slot is freed, which invalidates all
	// handles issued for the previous occupant.
	gen  uint32
	live bool
}

// Handle addresses a live entry in an Index.
// The zero Handle is never valid.
type Handle struct {
	idx uint32
	gen uint32
}
