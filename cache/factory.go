package cache

import (
	"fmt"

	"github.com/IvanBrykalov/tiercache/policy"
)

// New builds a single leaf engine for cfg.Strategy(): LRU for Recency,
// TTL for Expiry.
func New[K comparable, V any](cfg Config) (Cache[K, V], error) {
	return newLeaf[K, V](cfg)
}

func newLeaf[K comparable, V any](cfg Config) (Cache[K, V], error) {
	switch cfg.strategy {
	case Recency:
		return NewLRU[K, V](cfg)
	case Expiry:
		return NewTTL[K, V](cfg)
	default:
		return nil, fmt.Errorf("%w: unknown eviction strategy %v", ErrInvalidConfig, cfg.strategy)
	}
}

// NewTieredFromConfig builds a leaf engine from cfg and wraps it in a Tiered
// cache with cfg.LocalCapacity() fronts. The Tiered owns that engine and
// closes it on Close.
func NewTieredFromConfig[K comparable, V any](cfg Config) (*Tiered[K, V], error) {
	backing, err := newLeaf[K, V](cfg)
	if err != nil {
		return nil, err
	}
	t, err := NewTiered(backing, cfg.localCapacity)
	if err != nil {
		_ = backing.Close()
		return nil, err
	}
	t.ownsBacking = true
	return t, nil
}

// NewHighConcurrency is NewSharded.
func NewHighConcurrency[K comparable, V any](cfg Config) (*Sharded[K, V], error) {
	return NewSharded[K, V](cfg)
}

// NewReadHeavy is NewTieredFromConfig.
func NewReadHeavy[K comparable, V any](cfg Config) (*Tiered[K, V], error) {
	return NewTieredFromConfig[K, V](cfg)
}

// NewOptimized builds the variant policy.Recommend picks for the workload.
func NewOptimized[K comparable, V any](cfg Config, threads int, readRatio float64) (Cache[K, V], error) {
	v, err := policy.Recommend(policy.Workload{Threads: threads, ReadRatio: readRatio})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	switch v {
	case policy.Baseline:
		return New[K, V](cfg)
	case policy.Tiered:
		return NewTieredFromConfig[K, V](cfg)
	default:
		return NewSharded[K, V](cfg)
	}
}
