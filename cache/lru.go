package cache

import (
	"log/slog"
	"sync"
)

// promoteBatch bounds the number of recency updates queued by readers before
// one of them takes the write lock and applies the batch.
const promoteBatch = 128

// LRU is a bounded map that evicts the least recently touched entry.
//
// Reads share the lock: a Get looks the node up under RLock and queues the
// recency update instead of relinking the list. Every writer applies the
// queue, in arrival order, before it changes the list, so eviction always
// sees the exact access order. Counters are atomics bumped under the read lock.
type LRU[K comparable, V any] struct {
	mu  sync.RWMutex
	m   map[K]*node[K, V]
	ls  recencyList[K, V]
	cap int

	// pending is appended to by readers holding mu.RLock and pmu,
	// and drained by writers holding mu.Lock.
	pmu     sync.Mutex
	pending []*node[K, V]

	guard   nilGuard[K, V]
	metrics Metrics
	log     *slog.Logger
	stats   recorder
}

// NewLRU builds a recency-bounded engine from cfg. cfg.Strategy is not
// consulted; use New to dispatch on it.
func NewLRU[K comparable, V any](cfg Config) (*LRU[K, V], error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	c := &LRU[K, V]{
		m:       make(map[K]*node[K, V], cfg.maxSize),
		cap:     cfg.maxSize,
		pending: make([]*node[K, V], 0, promoteBatch),
		guard:   newNilGuard[K, V](),
		metrics: cfg.metricsOrNoop(),
		log:     cfg.loggerOrNop(),
	}
	c.log.Debug("lru cache created", slog.Int("max_size", c.cap))
	return c, nil
}

// Get returns the value for k and marks it most recently used.
func (c *LRU[K, V]) Get(k K) (V, bool) {
	var zero V
	if c.guard.nilKey(k) {
		return zero, false
	}

	c.mu.RLock()
	n, ok := c.m[k]
	var (
		v     V
		flush bool
	)
	if ok {
		v = n.val
		flush = c.queuePromotion(n)
		c.stats.hit()
	} else {
		c.stats.miss()
	}
	c.mu.RUnlock()

	if !ok {
		c.metrics.Miss()
		return zero, false
	}
	c.metrics.Hit()

	if flush {
		c.mu.Lock()
		c.applyPromotionsLocked()
		c.mu.Unlock()
	}
	return v, true
}

// Contains reports whether k is resident without touching recency or stats.
func (c *LRU[K, V]) Contains(k K) bool {
	if c.guard.nilKey(k) {
		return false
	}
	c.mu.RLock()
	_, ok := c.m[k]
	c.mu.RUnlock()
	return ok
}

// Put inserts or updates k→v as MRU and evicts the LRU entry on overflow.
func (c *LRU[K, V]) Put(k K, v V) error {
	if err := c.guard.check(k, v); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.applyPromotionsLocked()

	if n, ok := c.m[k]; ok {
		n.val = v
		c.ls.moveToFront(n)
		return nil
	}

	n := &node[K, V]{key: k, val: v}
	c.m[k] = n
	c.ls.pushFront(n)

	if c.ls.len > c.cap {
		if tail := c.ls.back(); tail != nil {
			c.removeLocked(tail)
			c.stats.evict()
			c.metrics.Evict(EvictCapacity)
		}
	}
	return nil
}

// Invalidate removes k if present.
func (c *LRU[K, V]) Invalidate(k K) {
	if c.guard.nilKey(k) {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if n, ok := c.m[k]; ok {
		c.removeLocked(n)
	}
}

// Clear removes every entry and zeroes the counters. Get counts under the
// read lock, so every Get is counted either before or after the reset.
func (c *LRU[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := c.ls.len
	c.ls.reset()
	c.m = make(map[K]*node[K, V], c.cap)
	c.pmu.Lock()
	c.pending = c.pending[:0]
	c.pmu.Unlock()
	c.stats.reset()
	c.log.Debug("lru cache cleared", slog.Int("removed", removed))
}

// Len returns the number of resident entries.
func (c *LRU[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ls.len
}

// Stats returns a snapshot of the counters and the current size.
func (c *LRU[K, V]) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stats.snapshot(c.ls.len)
}

// MaxSize returns the entry limit.
func (c *LRU[K, V]) MaxSize() int { return c.cap }

// Close is a no-op; the LRU engine owns no background resources.
func (c *LRU[K, V]) Close() error { return nil }

// -------------------- internals --------------------

// queuePromotion records a read of n. Caller holds mu.RLock.
// It reports whether the queue is full and should be applied now.
func (c *LRU[K, V]) queuePromotion(n *node[K, V]) bool {
	c.pmu.Lock()
	c.pending = append(c.pending, n)
	full := len(c.pending) >= promoteBatch
	c.pmu.Unlock()
	return full
}

// applyPromotionsLocked replays queued reads in order. Caller holds mu.Lock.
func (c *LRU[K, V]) applyPromotionsLocked() {
	c.pmu.Lock()
	defer c.pmu.Unlock()
	for i, n := range c.pending {
		if n.linked {
			c.ls.moveToFront(n)
		}
		c.pending[i] = nil
	}
	c.pending = c.pending[:0]
}

func (c *LRU[K, V]) removeLocked(n *node[K, V]) {
	c.ls.remove(n)
	delete(c.m, n.key)
}

var _ Cache[string, int] = (*LRU[string, int])(nil)
