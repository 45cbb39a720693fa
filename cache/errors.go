package cache

import "errors"

var (
	// ErrInvalidConfig wraps every configuration validation failure.
	ErrInvalidConfig = errors.New("cache: invalid configuration")

	// ErrNilKey is returned by Put when the key is a nil pointer, interface,
	// map, slice, func or channel.
	ErrNilKey = errors.New("cache: nil key")

	// ErrNilValue is returned by Put when the value is nil.
	ErrNilValue = errors.New("cache: nil value")

	// ErrNilBacking is returned when a Tiered cache is built without a backing cache.
	ErrNilBacking = errors.New("cache: nil backing cache")

	// ErrShardIndex is returned by Sharded.ShardStats for an out-of-range index.
	ErrShardIndex = errors.New("cache: shard index out of range")

	// ErrNoLoader is returned by NewLoading when no loader function is provided.
	ErrNoLoader = errors.New("cache: no loader provided")
)
