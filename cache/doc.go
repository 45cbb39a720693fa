// Package cache provides generic in-process key/value caches with
// interchangeable eviction disciplines and two concurrency-scaling wrappers.
//
// Variants
//
//   - LRU: bounded map that evicts the least recently touched entry.
//     Reads share an RWMutex and queue their recency update; the next writer
//     replays the queue before it relinks or evicts, so eviction order is exact.
//
//   - TTL: every entry expires a fixed duration after it was written.
//     Expired entries are dropped lazily by Get and by a background sweep
//     every max(ttl/2, 1s). On overflow the entry with the nearest deadline
//     goes first. Close stops the sweep.
//
//   - Sharded: N (power of two) independent leaf engines; a key is routed by
//     FNV-1a (or maphash) followed by a murmur3 finalizer and a bitmask.
//     Len and Stats are sums and only approximate under concurrent writes;
//     eviction order is per shard, never global.
//
//   - Tiered: small per-goroutine L1 fronts over one shared L2. See the
//     Tiered type for the staleness rules of pooled fronts and Local handles.
//
// Every variant implements Cache. Use New to build a leaf engine from a
// Config, or NewOptimized to let package policy pick a variant for a workload.
//
// Basic usage
//
//	cfg, err := cache.NewConfigBuilder().MaxSize(10_000).Build()
//	if err != nil {
//	    return err
//	}
//	c, err := cache.New[string, []byte](cfg)
//	if err != nil {
//	    return err
//	}
//	defer c.Close()
//	_ = c.Put("a", []byte("1"))
//	if v, ok := c.Get("a"); ok {
//	    _ = v
//	}
//
// With expiry
//
//	cfg, _ := cache.NewConfigBuilder().
//	    Strategy(cache.Expiry).
//	    TTL(30 * time.Second).
//	    Build()
//	c, _ := cache.NewTTL[string, string](cfg)
//	defer c.Close() // stops the background sweep
//
// Loading on miss
//
//	l, _ := cache.NewLoading[string, string](c, func(ctx context.Context, k string) (string, error) {
//	    return fetch(ctx, k)
//	})
//	v, err := l.GetOrLoad(ctx, "key")
//
// Errors
//
// Invalid configuration fails construction with an error wrapping
// ErrInvalidConfig. Put rejects nil keys and values (ErrNilKey, ErrNilValue)
// before changing anything. Nothing else can fail: the engines do no I/O.
//
// Observability
//
// Config.Metrics receives Hit/Miss/Evict signals (see metrics/prom for a
// Prometheus adapter) and Config.Logger receives debug lifecycle records.
// Both are silent by default.
package cache
