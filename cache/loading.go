package cache

import (
	"context"

	"github.com/IvanBrykalov/tiercache/internal/singleflight"
)

// LoadFunc fetches the value for a key on a cache miss (e.g. a remote call).
type LoadFunc[K comparable, V any] func(ctx context.Context, k K) (V, error)

// Loading puts a loader behind any Cache. Concurrent misses for the same key
// share a single load.
type Loading[K comparable, V any] struct {
	Cache[K, V]
	load LoadFunc[K, V]
	sf   singleflight.Group[K, V]
}

// NewLoading wraps c with load.
func NewLoading[K comparable, V any](c Cache[K, V], load LoadFunc[K, V]) (*Loading[K, V], error) {
	if c == nil {
		return nil, ErrNilBacking
	}
	if load == nil {
		return nil, ErrNoLoader
	}
	return &Loading[K, V]{Cache: c, load: load}, nil
}

// GetOrLoad returns the cached value for k, or loads, stores and returns it.
// A load error is returned as is and nothing is stored.
func (l *Loading[K, V]) GetOrLoad(ctx context.Context, k K) (V, error) {
	if v, ok := l.Get(k); ok {
		return v, nil
	}
	v, err, _ := l.sf.Do(ctx, k, func() (V, error) {
		v, err := l.load(ctx, k)
		if err != nil {
			return v, err
		}
		if err := l.Put(k, v); err != nil {
			return v, err
		}
		return v, nil
	})
	return v, err
}
