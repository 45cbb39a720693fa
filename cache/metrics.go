package cache

// EvictReason explains why an entry was removed.
type EvictReason int

const (
	// EvictCapacity: removed to make room for an insert.
	EvictCapacity EvictReason = iota
	// EvictExpired: deadline passed (lazy on read or by the background sweep).
	EvictExpired
)

func (r EvictReason) String() string {
	if r == EvictExpired {
		return "expired"
	}
	return "capacity"
}

// Metrics exposes cache-level observability hooks. Implementations must be
// safe for concurrent use; hooks run on the caller's goroutine, sometimes
// under an engine lock, so keep them cheap.
type Metrics interface {
	Hit()
	Miss()
	Evict(reason EvictReason)
}

// NoopMetrics is the default Metrics implementation and does nothing.
type NoopMetrics struct{}

func (NoopMetrics) Hit()              {}
func (NoopMetrics) Miss()             {}
func (NoopMetrics) Evict(EvictReason) {}

var _ Metrics = NoopMetrics{}
