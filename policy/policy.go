// Package policy recommends a cache variant for a workload shape.
//
// The recommendation is advisory: callers may always construct any variant
// directly. The function is pure and holds no state.
package policy

import (
	"errors"
	"fmt"
)

// Variant names a cache construction.
type Variant int

const (
	// Baseline is a single leaf engine (LRU or TTL).
	Baseline Variant = iota
	// Tiered is per-goroutine L1 fronts over a shared L2.
	Tiered
	// Sharded is N independent engines selected by key hash.
	Sharded
)

func (v Variant) String() string {
	switch v {
	case Baseline:
		return "baseline"
	case Tiered:
		return "tiered"
	case Sharded:
		return "sharded"
	default:
		return fmt.Sprintf("Variant(%d)", int(v))
	}
}

// Thresholds of the selection rule.
const (
	LowConcurrency     = 10   // below this thread count a single engine is enough
	TieredMaxThreads   = 50   // tiered is considered up to this thread count
	TieredMinReadRatio = 0.90 // and only for workloads strictly more read-heavy than this
)

// ErrInvalidWorkload is returned for an impossible workload descriptor.
var ErrInvalidWorkload = errors.New("policy: invalid workload")

// Workload describes the expected access pattern.
type Workload struct {
	// Threads is the expected number of goroutines hitting the cache concurrently (>= 1).
	Threads int
	// ReadRatio is the fraction of operations that are reads, in [0, 1].
	ReadRatio float64
}

// Validate checks the descriptor.
func (w Workload) Validate() error {
	if w.Threads < 1 {
		return fmt.Errorf("%w: expected thread count must be at least 1, got %d", ErrInvalidWorkload, w.Threads)
	}
	if w.ReadRatio < 0 || w.ReadRatio > 1 {
		return fmt.Errorf("%w: read ratio must be between 0.0 and 1.0, got %v", ErrInvalidWorkload, w.ReadRatio)
	}
	return nil
}

// Recommend maps a workload to a variant:
//   - Threads < 10                                  → Baseline
//   - 10 <= Threads <= 50 and ReadRatio > 0.90      → Tiered
//   - everything else (incl. mixed or > 50 threads) → Sharded
func Recommend(w Workload) (Variant, error) {
	if err := w.Validate(); err != nil {
		return Baseline, err
	}
	switch {
	case w.Threads < LowConcurrency:
		return Baseline, nil
	case w.Threads <= TieredMaxThreads && w.ReadRatio > TieredMinReadRatio:
		return Tiered, nil
	default:
		return Sharded, nil
	}
}
