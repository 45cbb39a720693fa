package cache

import (
	"fmt"
	"log/slog"
	"math"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/IvanBrykalov/tiercache/internal/util"
)

// minSweepInterval is the floor of the background sweep period.
const minSweepInterval = time.Second

// ttlEntry is immutable once stored; a Put always stores a fresh entry so
// CompareAndDelete can tell an observed entry from its replacement.
type ttlEntry[V any] struct {
	val V
	exp int64  // absolute deadline, UnixNano
	seq uint64 // insertion order, breaks deadline ties
}

// TTL is a bounded map whose entries expire a fixed duration after insertion.
//
// Expired entries are removed lazily by Get and proactively by a background
// sweep running every max(ttl/2, 1s). On overflow the entry with the nearest
// deadline is evicted. Lookups and removals never take a lock; inserts are
// serialized by admitMu so the size limit holds.
type TTL[K comparable, V any] struct {
	*ttlCore[K, V]
}

// ttlCore holds the state shared with the sweep goroutine. The goroutine
// references only the core, so an unreachable TTL can be collected and its
// cleanup stops the sweep.
type ttlCore[K comparable, V any] struct {
	m     sync.Map // K -> *ttlEntry[V]
	count util.PaddedAtomicInt64
	seq   atomic.Uint64

	admitMu sync.Mutex

	cap int
	ttl time.Duration
	cfg Config

	guard   nilGuard[K, V]
	metrics Metrics
	log     *slog.Logger
	stats   recorder

	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// NewTTL builds an expiry-bounded engine from cfg and starts its sweep.
// Call Close to stop the sweep.
func NewTTL[K comparable, V any](cfg Config) (*TTL[K, V], error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	c := &ttlCore[K, V]{
		cap:     cfg.maxSize,
		ttl:     cfg.ttl,
		cfg:     cfg,
		guard:   newNilGuard[K, V](),
		metrics: cfg.metricsOrNoop(),
		log:     cfg.loggerOrNop(),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	interval := sweepInterval(c.ttl)
	go c.sweepLoop(interval)
	c.log.Debug("ttl cache created",
		slog.Int("max_size", c.cap),
		slog.Duration("ttl", c.ttl),
		slog.Duration("sweep_interval", interval))

	t := &TTL[K, V]{ttlCore: c}
	runtime.AddCleanup(t, func(c *ttlCore[K, V]) { c.stopSweep() }, c)
	return t, nil
}

func sweepInterval(ttl time.Duration) time.Duration {
	return max(ttl/2, minSweepInterval)
}

// Get returns the value for k. An expired entry is removed and reported as
// both a miss and an eviction.
func (c *ttlCore[K, V]) Get(k K) (V, bool) {
	var zero V
	if c.guard.nilKey(k) {
		return zero, false
	}

	raw, ok := c.m.Load(k)
	if !ok {
		c.stats.miss()
		c.metrics.Miss()
		return zero, false
	}
	e := raw.(*ttlEntry[V])
	if c.expired(e, c.cfg.now()) {
		c.removeExpired(k, e)
		c.stats.miss()
		c.metrics.Miss()
		return zero, false
	}
	c.stats.hit()
	c.metrics.Hit()
	return e.val, true
}

// Put stores k→v with deadline now+ttl. When the cache is full and k is new,
// the entry with the nearest deadline is evicted first.
func (c *ttlCore[K, V]) Put(k K, v V) error {
	if err := c.guard.check(k, v); err != nil {
		return err
	}

	c.admitMu.Lock()
	defer c.admitMu.Unlock()

	if _, exists := c.m.Load(k); !exists {
		for int(c.count.Load()) >= c.cap {
			if !c.evictSoonest() {
				break
			}
		}
	}

	e := &ttlEntry[V]{
		val: v,
		exp: deadline(c.cfg.now(), c.ttl),
		seq: c.seq.Add(1),
	}
	if _, loaded := c.m.Swap(k, e); !loaded {
		c.count.Add(1)
		// k was removed by an Invalidate after the Load above.
		for int(c.count.Load()) > c.cap {
			if !c.evictSoonest() {
				break
			}
		}
	}
	return nil
}

// Invalidate removes k if present.
func (c *ttlCore[K, V]) Invalidate(k K) {
	if c.guard.nilKey(k) {
		return
	}
	if _, loaded := c.m.LoadAndDelete(k); loaded {
		c.count.Add(-1)
	}
}

// Clear removes every entry and zeroes the counters.
func (c *ttlCore[K, V]) Clear() {
	c.admitMu.Lock()
	defer c.admitMu.Unlock()

	removed := 0
	c.m.Range(func(k, v any) bool {
		if c.m.CompareAndDelete(k, v) {
			c.count.Add(-1)
			removed++
		}
		return true
	})
	c.stats.reset()
	c.log.Debug("ttl cache cleared", slog.Int("removed", removed))
}

// Len returns the number of stored entries, including expired ones the
// sweep has not reached yet.
func (c *ttlCore[K, V]) Len() int { return int(c.count.Load()) }

// Stats returns a snapshot of the counters and the current size.
func (c *ttlCore[K, V]) Stats() Stats { return c.stats.snapshot(c.Len()) }

// MaxSize returns the entry limit.
func (c *ttlCore[K, V]) MaxSize() int { return c.cap }

// TTL returns the configured entry lifetime.
func (c *ttlCore[K, V]) TTL() time.Duration { return c.ttl }

// Close stops the background sweep and waits for it to exit. It is
// idempotent. Get, Put and Invalidate keep working; expiry is then only
// enforced lazily by Get.
func (c *ttlCore[K, V]) Close() error {
	c.stopSweep()
	<-c.done
	return nil
}

func (c *ttlCore[K, V]) stopSweep() {
	c.closeOnce.Do(func() {
		close(c.stop)
		c.log.Debug("ttl cache sweep stopped")
	})
}

// -------------------- internals --------------------

// deadline converts a relative ttl into an absolute UnixNano deadline,
// saturating instead of overflowing.
func deadline(now int64, ttl time.Duration) int64 {
	if d := now + int64(ttl); d >= now {
		return d
	}
	return math.MaxInt64
}

func (c *ttlCore[K, V]) expired(e *ttlEntry[V], now int64) bool {
	return now > e.exp
}

// removeExpired deletes k only if it still maps to the observed entry, so an
// entry already removed by the sweep (or replaced by a Put) is not counted twice.
func (c *ttlCore[K, V]) removeExpired(k any, e *ttlEntry[V]) bool {
	if !c.m.CompareAndDelete(k, e) {
		return false
	}
	c.count.Add(-1)
	c.stats.evict()
	c.metrics.Evict(EvictExpired)
	return true
}

// evictSoonest removes the entry with the nearest deadline (ties: oldest
// insert). Caller holds admitMu. Returns false if nothing could be removed.
func (c *ttlCore[K, V]) evictSoonest() bool {
	var (
		victimKey any
		victim    *ttlEntry[V]
	)
	c.m.Range(func(k, v any) bool {
		e := v.(*ttlEntry[V])
		if victim == nil || e.exp < victim.exp || (e.exp == victim.exp && e.seq < victim.seq) {
			victimKey, victim = k, e
		}
		return true
	})
	if victim == nil {
		return false
	}
	if c.m.CompareAndDelete(victimKey, victim) {
		c.count.Add(-1)
		c.stats.evict()
		c.metrics.Evict(EvictCapacity)
	}
	// A concurrent Get or Invalidate may have removed the victim first;
	// either way the count dropped or will be re-checked by the caller.
	return true
}

func (c *ttlCore[K, V]) sweepLoop(interval time.Duration) {
	defer close(c.done)
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-c.stop:
			return
		case <-t.C:
			if err := c.safeSweep(); err != nil {
				c.log.Error("ttl sweep failed", slog.Any("err", err))
			}
		}
	}
}

// safeSweep confines a fault to one sweep cycle.
func (c *ttlCore[K, V]) safeSweep() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("sweep panic: %v", r)
		}
	}()
	c.sweep()
	return nil
}

// sweep removes every entry whose deadline has passed and returns how many
// it removed.
func (c *ttlCore[K, V]) sweep() int {
	now := c.cfg.now()
	removed := 0
	c.m.Range(func(k, v any) bool {
		if e := v.(*ttlEntry[V]); c.expired(e, now) && c.removeExpired(k, e) {
			removed++
		}
		return true
	})
	if removed > 0 {
		c.log.Debug("ttl sweep removed expired entries", slog.Int("removed", removed))
	}
	return removed
}

var _ Cache[string, int] = (*TTL[string, int])(nil)
