package singleflight

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestGroup_CoalescesConcurrentCalls(t *testing.T) {
	var g Group[string, int]
	var calls atomic.Int32
	release := make(chan struct{})

	var eg errgroup.Group
	var started sync.WaitGroup
	const n = 16
	started.Add(n)
	for i := 0; i < n; i++ {
		eg.Go(func() error {
			started.Done()
			v, err, _ := g.Do(context.Background(), "k", func() (int, error) {
				calls.Add(1)
				<-release
				return 7, nil
			})
			if err != nil {
				return err
			}
			if v != 7 {
				return errors.New("wrong value")
			}
			return nil
		})
	}
	started.Wait()
	time.Sleep(10 * time.Millisecond)
	close(release)

	require.NoError(t, eg.Wait())
	assert.LessOrEqual(t, calls.Load(), int32(n))
	assert.GreaterOrEqual(t, calls.Load(), int32(1))
	assert.Equal(t, 0, g.InFlight())
}

func TestGroup_FollowerContextCancel(t *testing.T) {
	var g Group[string, int]
	release := make(chan struct{})
	leaderIn := make(chan struct{})

	go func() {
		_, _, _ = g.Do(context.Background(), "k", func() (int, error) {
			close(leaderIn)
			<-release
			return 1, nil
		})
	}()
	<-leaderIn

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err, shared := g.Do(ctx, "k", func() (int, error) { return 2, nil })
	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, shared)
	close(release)
}

func TestGroup_PanicBecomesError(t *testing.T) {
	var g Group[int, string]
	_, err, _ := g.Do(context.Background(), 1, func() (string, error) {
		panic("boom")
	})
	var pe *PanicError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "boom", pe.Value)

	// The key is free again after a panicked flight.
	v, err, _ := g.Do(context.Background(), 1, func() (string, error) { return "ok", nil })
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
}
