package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IvanBrykalov/tiercache/policy"
)

func TestNew_DispatchesOnStrategy(t *testing.T) {
	t.Parallel()

	c, err := New[string, int](DefaultConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	assert.IsType(t, &LRU[string, int]{}, c)

	c, err = New[string, int](mustConfig(t, NewConfigBuilder().Strategy(Expiry).TTL(time.Minute)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	assert.IsType(t, &TTL[string, int]{}, c)
}

func TestNewOptimized(t *testing.T) {
	t.Parallel()

	cfg := mustConfig(t, NewConfigBuilder().MaxSize(256).Shards(4))
	cases := []struct {
		threads int
		ratio   float64
		want    any
	}{
		{4, 0.5, &LRU[string, int]{}},
		{20, 0.95, &Tiered[string, int]{}},
		{20, 0.5, &Sharded[string, int]{}},
		{300, 0.99, &Sharded[string, int]{}},
	}
	for _, tc := range cases {
		c, err := NewOptimized[string, int](cfg, tc.threads, tc.ratio)
		require.NoError(t, err)
		assert.IsType(t, tc.want, c, "threads=%d ratio=%v", tc.threads, tc.ratio)
		require.NoError(t, c.Put("k", 1))
		v, ok := c.Get("k")
		assert.True(t, ok)
		assert.Equal(t, 1, v)
		_ = c.Close()
	}
}

func TestNewOptimized_InvalidWorkload(t *testing.T) {
	t.Parallel()

	_, err := NewOptimized[string, int](DefaultConfig(), 0, 0.5)
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.ErrorIs(t, err, policy.ErrInvalidWorkload)

	_, err = NewOptimized[string, int](DefaultConfig(), 4, 1.5)
	assert.ErrorIs(t, err, policy.ErrInvalidWorkload)
}

func TestNamedConstructors(t *testing.T) {
	t.Parallel()

	cfg := mustConfig(t, NewConfigBuilder().Shards(2))
	hc, err := NewHighConcurrency[string, int](cfg)
	require.NoError(t, err)
	assert.Equal(t, 2, hc.ShardCount())

	rh, err := NewReadHeavy[string, int](cfg)
	require.NoError(t, err)
	assert.True(t, rh.ownsBacking)
	require.NoError(t, rh.Close())
}
