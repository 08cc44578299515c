package policy

// EvictReason explains why an entry left a cache without an explicit Remove.
type EvictReason int

const (
	// EvictCapacity: the least recently used entry made room for a new key.
	EvictCapacity EvictReason = iota
	// EvictHistory: an LRU-K access counter was dropped by the bounded
	// history cache before the key reached K touches.
	EvictHistory
)

// String returns a stable, label-friendly name.
func (r EvictReason) String() string {
	switch r {
	case EvictHistory:
		return "history"
	default:
		return "capacity"
	}
}

// Metrics exposes cache-level observability hooks.
// A NoopMetrics implementation is provided and used by default.
// Implementations must be safe for concurrent use: hooks are called
// under per-instance locks from many goroutines.
type Metrics interface {
	Hit()
	Miss()
	Evict(reason EvictReason)
	// Resident reports a change in the number of resident entries.
	// Deltas from many instances (shards, tiers) can be summed.
	Resident(delta int)
}

// PromotionMetrics is an optional extension of Metrics. LRU-K caches call
// Promote whenever a key is admitted to the hot tier.
type PromotionMetrics interface {
	Promote()
}

// NoopMetrics is a drop-in Metrics implementation that does nothing.
type NoopMetrics struct{}

func (NoopMetrics) Hit()              {}
func (NoopMetrics) Miss()             {}
func (NoopMetrics) Evict(EvictReason) {}
func (NoopMetrics) Resident(int)      {}

// Ensure NoopMetrics implements the Metrics interface at compile time.
var _ Metrics = NoopMetrics{}

// OrNoop returns m, or NoopMetrics when m is nil.
func OrNoop(m Metrics) Metrics {
	if m == nil {
		return NoopMetrics{}
	}
	return m
}
