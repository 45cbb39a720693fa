package cache

import (
	"fmt"
	"log/slog"

	"github.com/IvanBrykalov/tiercache/internal/util"
)

// Sharded partitions the key space over a power-of-two number of independent
// leaf engines. There is no global lock: Len and Stats sum the shards and are
// only approximate under concurrent mutation. Eviction order is per shard.
type Sharded[K comparable, V any] struct {
	shards []Cache[K, V]
	hasher util.Hasher[K]
	guard  nilGuard[K, V]

	// Router-level counters: each Get counts exactly once here, whatever the
	// shard did, so totals are never double counted.
	stats recorder
}

// NewSharded builds cfg.Shards() engines of cfg.Strategy(), each holding
// max(1, maxSize/shards) entries.
func NewSharded[K comparable, V any](cfg Config) (*Sharded[K, V], error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	n := cfg.Shards()
	per := max(1, cfg.maxSize/n)
	shardCfg := cfg.withMaxSize(per)

	c := &Sharded[K, V]{
		shards: make([]Cache[K, V], n),
		hasher: util.NewHasher[K](),
		guard:  newNilGuard[K, V](),
	}
	for i := range c.shards {
		s, err := newLeaf[K, V](shardCfg)
		if err != nil {
			_ = c.Close()
			return nil, err
		}
		c.shards[i] = s
	}
	cfg.loggerOrNop().Debug("sharded cache created",
		slog.Int("shards", n),
		slog.Int("per_shard_size", per),
		slog.String("strategy", cfg.strategy.String()))
	return c, nil
}

// Get routes to the owning shard.
func (c *Sharded[K, V]) Get(k K) (V, bool) {
	if c.guard.nilKey(k) {
		var zero V
		return zero, false
	}
	v, ok := c.shardFor(k).Get(k)
	if ok {
		c.stats.hit()
	} else {
		c.stats.miss()
	}
	return v, ok
}

// Put routes to the owning shard.
func (c *Sharded[K, V]) Put(k K, v V) error {
	if err := c.guard.check(k, v); err != nil {
		return err
	}
	return c.shardFor(k).Put(k, v)
}

// Invalidate routes to the owning shard.
func (c *Sharded[K, V]) Invalidate(k K) {
	if c.guard.nilKey(k) {
		return
	}
	c.shardFor(k).Invalidate(k)
}

// Clear clears every shard and resets the router counters.
func (c *Sharded[K, V]) Clear() {
	for _, s := range c.shards {
		s.Clear()
	}
	c.stats.reset()
}

// Len sums the shard sizes.
func (c *Sharded[K, V]) Len() int {
	total := 0
	for _, s := range c.shards {
		total += s.Len()
	}
	return total
}

// Stats combines router hits/misses with summed shard sizes and evictions.
func (c *Sharded[K, V]) Stats() Stats {
	st := c.stats.snapshot(0)
	for _, s := range c.shards {
		ss := s.Stats()
		st.Size += ss.Size
		st.Evictions += ss.Evictions
	}
	return st
}

// Close closes every shard.
func (c *Sharded[K, V]) Close() error {
	for _, s := range c.shards {
		if s != nil {
			_ = s.Close()
		}
	}
	return nil
}

// ShardCount returns the number of shards.
func (c *Sharded[K, V]) ShardCount() int { return len(c.shards) }

// ShardIndex returns the shard that owns k. It is stable for the lifetime of c.
func (c *Sharded[K, V]) ShardIndex(k K) int {
	return util.ShardIndex(util.Mix64(c.hasher.Sum64(k)), len(c.shards))
}

// ShardStats returns the stats of shard i, as recorded by that shard.
func (c *Sharded[K, V]) ShardStats(i int) (Stats, error) {
	if i < 0 || i >= len(c.shards) {
		return Stats{}, fmt.Errorf("%w: %d (shards=%d)", ErrShardIndex, i, len(c.shards))
	}
	return c.shards[i].Stats(), nil
}

func (c *Sharded[K, V]) shardFor(k K) Cache[K, V] {
	return c.shards[c.ShardIndex(k)]
}

var _ Cache[string, int] = (*Sharded[string, int])(nil)
