package cache

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeClock is safe to advance while the sweep goroutine reads it.
type fakeClock struct {
	t       atomic.Int64
	panicky atomic.Bool
}

func (f *fakeClock) NowUnixNano() int64 {
	if f.panicky.Load() {
		panic("clock failure")
	}
	return f.t.Load()
}

func (f *fakeClock) add(d time.Duration) { f.t.Add(int64(d)) }

func newFakeClock() *fakeClock {
	f := &fakeClock{}
	f.t.Store(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).UnixNano())
	return f
}

func mustConfig(t testing.TB, b *ConfigBuilder) Config {
	t.Helper()
	cfg, err := b.Build()
	require.NoError(t, err)
	return cfg
}

func ptr[T any](v T) *T { return &v }
