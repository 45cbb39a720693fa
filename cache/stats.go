package cache

import (
	"fmt"

	"github.com/IvanBrykalov/tiercache/internal/util"
)

// Stats is an immutable point-in-time snapshot of cache counters.
type Stats struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
	Size      int
}

// RequestCount is Hits + Misses.
func (s Stats) RequestCount() uint64 { return s.Hits + s.Misses }

// HitRate is Hits / RequestCount, or 0 when no request was recorded.
func (s Stats) HitRate() float64 {
	n := s.RequestCount()
	if n == 0 {
		return 0
	}
	return float64(s.Hits) / float64(n)
}

// MissRate is 1 - HitRate.
func (s Stats) MissRate() float64 { return 1 - s.HitRate() }

func (s Stats) String() string {
	return fmt.Sprintf("Stats{hits=%d, misses=%d, hitRate=%.2f%%, evictions=%d, size=%d}",
		s.Hits, s.Misses, s.HitRate()*100, s.Evictions, s.Size)
}

// recorder holds the hot counters of one cache instance. Each counter sits on
// its own cache line; increments never take the structural lock.
type recorder struct {
	_      util.CacheLinePad
	hits   util.PaddedAtomicUint64
	misses util.PaddedAtomicUint64
	evicts util.PaddedAtomicUint64
}

func (r *recorder) hit()   { r.hits.Add(1) }
func (r *recorder) miss()  { r.misses.Add(1) }
func (r *recorder) evict() { r.evicts.Add(1) }

func (r *recorder) snapshot(size int) Stats {
	return Stats{
		Hits:      r.hits.Load(),
		Misses:    r.misses.Load(),
		Evictions: r.evicts.Load(),
		Size:      size,
	}
}

func (r *recorder) reset() {
	r.hits.Store(0)
	r.misses.Store(0)
	r.evicts.Store(0)
}
