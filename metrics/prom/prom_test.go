package prom

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IvanBrykalov/tiercache/cache"
)

func TestAdapter_CountsCacheEvents(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg, "app", "cache", prometheus.Labels{"name": "test"})

	cfg, err := cache.NewConfigBuilder().MaxSize(2).Metrics(m).Build()
	require.NoError(t, err)
	c, err := cache.NewLRU[string, int](cfg)
	require.NoError(t, err)
	require.NoError(t, m.TrackSize(c.Len))

	require.NoError(t, c.Put("a", 1))
	require.NoError(t, c.Put("b", 2))
	require.NoError(t, c.Put("c", 3)) // evicts a
	c.Get("a")
	c.Get("b")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.hits))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.misses))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.evicts.WithLabelValues("capacity")))

	want := `
# HELP app_cache_size_entries Number of resident entries
# TYPE app_cache_size_entries gauge
app_cache_size_entries{name="test"} 2
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(want), "app_cache_size_entries"))
}

func TestAdapter_ExpiredReason(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg, "", "", nil)

	cfg, err := cache.NewConfigBuilder().
		Strategy(cache.Expiry).
		TTL(10 * time.Millisecond).
		Metrics(m).
		Build()
	require.NoError(t, err)
	c, err := cache.NewTTL[string, int](cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	require.NoError(t, c.Put("k", 1))
	time.Sleep(30 * time.Millisecond)
	_, ok := c.Get("k")
	require.False(t, ok)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.evicts.WithLabelValues("expired")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.misses))
}

func TestAdapter_TrackSizeTwiceFails(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg, "x", "", nil)
	require.NoError(t, m.TrackSize(func() int { return 0 }))
	assert.Error(t, m.TrackSize(func() int { return 0 }))
}
