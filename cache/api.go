package cache

// Cache is the contract shared by every variant: the LRU and TTL leaf
// engines, the Sharded router and the Tiered cache.
// All methods are safe for concurrent use by multiple goroutines.
type Cache[K comparable, V any] interface {
	// Get returns the value for k and whether it was present.
	// It records a hit or a miss. A nil key is treated as absent and not counted.
	Get(k K) (V, bool)

	// Put inserts or replaces k→v, evicting at most one entry when the cache
	// is full. A nil key or value is rejected with ErrNilKey / ErrNilValue
	// before anything changes.
	Put(k K, v V) error

	// Invalidate removes k. It is not counted as an eviction.
	Invalidate(k K)

	// Clear removes every entry and resets all counters to zero.
	Clear()

	// Len returns the number of resident entries (approximate for Sharded).
	Len() int

	// Stats returns a snapshot of hits, misses, evictions and size.
	Stats() Stats

	// Close releases background resources. It is idempotent; the cache stays
	// usable afterwards.
	Close() error
}
