package cache

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/IvanBrykalov/tiercache/internal/util"
)

// Tiered puts small per-goroutine front caches (L1) in front of one shared
// backing cache (L2). Writes go to L2 first, then to the caller's L1; reads
// try L1 and promote L2 hits into it.
//
// Two ways to use it:
//
//   - Through the Tiered value itself. Each call borrows an L1 front from a
//     sync.Pool (per-P, dropped by the GC under memory pressure, recreated
//     empty on demand). Put, Invalidate, Clear and ClearLocal bump an epoch
//     that empties every pooled front on its next borrow, so a goroutine
//     never reads back a value older than its own last write.
//   - Through a Local handle owned by one goroutine. Its L1 is a private
//     copy: after another handle invalidates a key, this handle may keep
//     returning the old value until its own Invalidate, Clear, ClearLocal or
//     natural L1 eviction.
//
// Stats count a request answered by L2 after an L1 miss as a hit, not a miss:
// hits = L1 hits + L2 hits, misses = L2 misses.
type Tiered[K comparable, V any] struct {
	backing     Cache[K, V]
	ownsBacking bool
	localCap    int
	guard       nilGuard[K, V]

	pool    sync.Pool // *front[K, V]
	epoch   atomic.Uint64
	release atomic.Uint64

	l1Hits   util.PaddedAtomicUint64
	l1Misses util.PaddedAtomicUint64
	l2Hits   util.PaddedAtomicUint64
	l2Misses util.PaddedAtomicUint64

	closeOnce sync.Once
}

// NewTiered wraps backing. backing is referenced, not owned: Close does not
// close it. localCapacity bounds every L1 front.
func NewTiered[K comparable, V any](backing Cache[K, V], localCapacity int) (*Tiered[K, V], error) {
	if backing == nil {
		return nil, ErrNilBacking
	}
	if localCapacity < 1 {
		return nil, fmt.Errorf("%w: local capacity must be at least 1, got %d", ErrInvalidConfig, localCapacity)
	}
	t := &Tiered[K, V]{
		backing:  backing,
		localCap: localCapacity,
		guard:    newNilGuard[K, V](),
	}
	t.pool.New = func() any { return newFront[K, V](t.localCap) }
	return t, nil
}

// Get checks the caller's L1, then L2.
func (t *Tiered[K, V]) Get(k K) (V, bool) {
	if t.guard.nilKey(k) {
		var zero V
		return zero, false
	}
	f := t.borrow()
	defer t.pool.Put(f)
	return t.get(f, k)
}

// Put writes L2, empties the pooled L1 fronts, then seeds the caller's L1.
func (t *Tiered[K, V]) Put(k K, v V) error {
	if err := t.guard.check(k, v); err != nil {
		return err
	}
	if err := t.backing.Put(k, v); err != nil {
		return err
	}
	t.epoch.Add(1)
	f := t.borrow()
	f.put(k, v)
	t.pool.Put(f)
	return nil
}

// Invalidate removes k from L2 and empties the pooled L1 fronts.
// Local handles keep their copies.
func (t *Tiered[K, V]) Invalidate(k K) {
	if t.guard.nilKey(k) {
		return
	}
	t.backing.Invalidate(k)
	t.epoch.Add(1)
}

// Clear clears L2, zeroes the tier counters and empties the pooled L1 fronts.
// Local handles keep their L1 until they next clear it themselves.
func (t *Tiered[K, V]) Clear() {
	t.backing.Clear()
	t.l1Hits.Store(0)
	t.l1Misses.Store(0)
	t.l2Hits.Store(0)
	t.l2Misses.Store(0)
	t.epoch.Add(1)
}

// ClearLocal drops the pooled L1 fronts without touching L2 or the counters.
func (t *Tiered[K, V]) ClearLocal() { t.epoch.Add(1) }

// Len returns the size of L2.
func (t *Tiered[K, V]) Len() int { return t.backing.Len() }

// Stats combines tier counters with L2's evictions and size.
func (t *Tiered[K, V]) Stats() Stats {
	bs := t.backing.Stats()
	return Stats{
		Hits:      t.l1Hits.Load() + t.l2Hits.Load(),
		Misses:    t.l2Misses.Load(),
		Evictions: bs.Evictions,
		Size:      bs.Size,
	}
}

// DetailedStats returns the per-tier counters.
func (t *Tiered[K, V]) DetailedStats() TierStats {
	return TierStats{
		L1Hits:   t.l1Hits.Load(),
		L1Misses: t.l1Misses.Load(),
		L2Hits:   t.l2Hits.Load(),
		L2Misses: t.l2Misses.Load(),
	}
}

// Close releases every L1 front, pooled or held by a Local handle, and
// closes L2 if this Tiered created it. It is idempotent and the cache stays
// usable: fronts are recreated empty on next access.
func (t *Tiered[K, V]) Close() error {
	t.release.Add(1)
	t.epoch.Add(1)
	var err error
	t.closeOnce.Do(func() {
		if t.ownsBacking {
			err = t.backing.Close()
		}
	})
	return err
}

// Backing returns the L2 cache.
func (t *Tiered[K, V]) Backing() Cache[K, V] { return t.backing }

// Local returns a handle with its own private L1. A Local must be used by a
// single goroutine at a time.
func (t *Tiered[K, V]) Local() *Local[K, V] { return &Local[K, V]{t: t} }

func (t *Tiered[K, V]) borrow() *front[K, V] {
	f := t.pool.Get().(*front[K, V])
	if cur := t.epoch.Load(); f.epoch != cur {
		f.reset()
		f.epoch = cur
	}
	return f
}

func (t *Tiered[K, V]) get(f *front[K, V], k K) (V, bool) {
	if v, ok := f.get(k); ok {
		t.l1Hits.Add(1)
		return v, true
	}
	t.l1Misses.Add(1)

	v, ok := t.backing.Get(k)
	if !ok {
		t.l2Misses.Add(1)
		return v, false
	}
	t.l2Hits.Add(1)
	f.put(k, v)
	return v, true
}

var _ Cache[string, int] = (*Tiered[string, int])(nil)

// Local is a goroutine-owned view of a Tiered cache with a private L1.
// It is not safe for concurrent use.
type Local[K comparable, V any] struct {
	t   *Tiered[K, V]
	f   *front[K, V]
	gen uint64
}

var _ Cache[string, int] = (*Local[string, int])(nil)

// Get checks this handle's L1, then L2.
func (l *Local[K, V]) Get(k K) (V, bool) {
	if l.t.guard.nilKey(k) {
		var zero V
		return zero, false
	}
	return l.t.get(l.front(), k)
}

// Put writes L2, then this handle's L1.
func (l *Local[K, V]) Put(k K, v V) error {
	if err := l.t.guard.check(k, v); err != nil {
		return err
	}
	if err := l.t.backing.Put(k, v); err != nil {
		return err
	}
	l.front().put(k, v)
	return nil
}

// Invalidate removes k from L2 and from this handle's L1 only.
func (l *Local[K, V]) Invalidate(k K) {
	if l.t.guard.nilKey(k) {
		return
	}
	l.t.backing.Invalidate(k)
	if l.f != nil {
		l.f.remove(k)
	}
}

// Clear clears the shared state (see Tiered.Clear) and drops this handle's L1.
func (l *Local[K, V]) Clear() {
	l.t.Clear()
	l.f = nil
}

// ClearLocal drops this handle's L1 only.
func (l *Local[K, V]) ClearLocal() { l.f = nil }

// Len returns the size of L2.
func (l *Local[K, V]) Len() int { return l.t.Len() }

// Stats returns the shared Tiered stats.
func (l *Local[K, V]) Stats() Stats { return l.t.Stats() }

// Close releases this handle's L1.
func (l *Local[K, V]) Close() error {
	l.f = nil
	return nil
}

// front returns the handle's L1, recreating it after ClearLocal or Tiered.Close.
func (l *Local[K, V]) front() *front[K, V] {
	gen := l.t.release.Load()
	if l.f == nil || l.gen != gen {
		l.f = newFront[K, V](l.t.localCap)
		l.gen = gen
	}
	return l.f
}

// TierStats breaks Tiered traffic down by level.
type TierStats struct {
	L1Hits   uint64
	L1Misses uint64
	L2Hits   uint64
	L2Misses uint64
}

// L1HitRate is L1Hits / (L1Hits + L1Misses).
func (s TierStats) L1HitRate() float64 { return ratio(s.L1Hits, s.L1Hits+s.L1Misses) }

// L2HitRate is L2Hits / (L2Hits + L2Misses).
func (s TierStats) L2HitRate() float64 { return ratio(s.L2Hits, s.L2Hits+s.L2Misses) }

// OverallHitRate is (L1Hits + L2Hits) / (L1Hits + L1Misses + L2Misses).
func (s TierStats) OverallHitRate() float64 {
	return ratio(s.L1Hits+s.L2Hits, s.L1Hits+s.L1Misses+s.L2Misses)
}

func ratio(n, d uint64) float64 {
	if d == 0 {
		return 0
	}
	return float64(n) / float64(d)
}

// front is a plain LRU map owned by one goroutine at a time.
type front[K comparable, V any] struct {
	m     map[K]*node[K, V]
	ls    recencyList[K, V]
	cap   int
	epoch uint64
}

func newFront[K comparable, V any](capacity int) *front[K, V] {
	return &front[K, V]{m: make(map[K]*node[K, V], capacity), cap: capacity}
}

func (f *front[K, V]) get(k K) (V, bool) {
	n, ok := f.m[k]
	if !ok {
		var zero V
		return zero, false
	}
	f.ls.moveToFront(n)
	return n.val, true
}

func (f *front[K, V]) put(k K, v V) {
	if n, ok := f.m[k]; ok {
		n.val = v
		f.ls.moveToFront(n)
		return
	}
	n := &node[K, V]{key: k, val: v}
	f.m[k] = n
	f.ls.pushFront(n)
	if f.ls.len > f.cap {
		tail := f.ls.back()
		f.ls.remove(tail)
		delete(f.m, tail.key)
	}
}

func (f *front[K, V]) remove(k K) {
	if n, ok := f.m[k]; ok {
		f.ls.remove(n)
		delete(f.m, k)
	}
}

func (f *front[K, V]) reset() {
	f.ls.reset()
	clear(f.m)
}
