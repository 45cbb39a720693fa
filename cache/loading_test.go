package cache

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestLoading_Constructor(t *testing.T) {
	t.Parallel()

	_, err := NewLoading[string, string](nil, func(context.Context, string) (string, error) { return "", nil })
	assert.ErrorIs(t, err, ErrNilBacking)

	_, err = NewLoading[string, string](newTestLRU[string, string](t, 4), nil)
	assert.ErrorIs(t, err, ErrNoLoader)
}

// Concurrent GetOrLoad calls for one key run the loader once; later calls are hits.
func TestLoading_Singleflight(t *testing.T) {
	var calls atomic.Int64
	l, err := NewLoading[string, string](newTestLRU[string, string](t, 64),
		func(_ context.Context, k string) (string, error) {
			calls.Add(1)
			time.Sleep(20 * time.Millisecond)
			return "v:" + k, nil
		})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	const n = 64
	start := make(chan struct{})
	var g errgroup.Group
	for i := 0; i < n; i++ {
		g.Go(func() error {
			<-start
			v, err := l.GetOrLoad(ctx, "k")
			if err != nil {
				return err
			}
			if v != "v:k" {
				return fmt.Errorf("got %q", v)
			}
			return nil
		})
	}
	close(start)
	require.NoError(t, g.Wait())
	assert.Equal(t, int64(1), calls.Load())

	v, err := l.GetOrLoad(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, "v:k", v)
	assert.Equal(t, int64(1), calls.Load())
}

func TestLoading_ErrorIsNotCached(t *testing.T) {
	t.Parallel()

	errBoom := errors.New("boom")
	var fail atomic.Bool
	fail.Store(true)
	l, err := NewLoading[string, int](newTestLRU[string, int](t, 4),
		func(context.Context, string) (int, error) {
			if fail.Load() {
				return 0, errBoom
			}
			return 42, nil
		})
	require.NoError(t, err)

	_, err = l.GetOrLoad(context.Background(), "k")
	require.ErrorIs(t, err, errBoom)
	assert.Equal(t, 0, l.Len())

	fail.Store(false)
	v, err := l.GetOrLoad(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.Equal(t, 1, l.Len())
}
