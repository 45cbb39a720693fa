package util

import (
	"math/bits"
	"runtime"
)

// ShardMultiplier is the number of shards created per logical CPU by default.
const ShardMultiplier = 4

// DefaultShardCount is NextPow2(ShardMultiplier * GOMAXPROCS).
func DefaultShardCount() int {
	p := max(runtime.GOMAXPROCS(0), 1)
	return int(NextPow2(uint64(p * ShardMultiplier)))
}

// ShardIndex maps a mixed 64-bit hash to one of shards buckets.
// Power-of-two counts take the low bits; other counts fall back to modulo.
func ShardIndex(hash uint64, shards int) int {
	if shards <= 1 {
		return 0
	}
	if IsPowerOfTwo(uint64(shards)) {
		return int(hash & uint64(shards-1))
	}
	return int(hash % uint64(shards))
}

// IsPowerOfTwo reports whether x is a power of two (> 0).
func IsPowerOfTwo(x uint64) bool {
	return x != 0 && x&(x-1) == 0
}

// NextPow2 returns the smallest power of two >= x; 0 and 1 give 1.
// Results that do not fit in 64 bits clamp to 1<<63.
func NextPow2(x uint64) uint64 {
	if x <= 1 {
		return 1
	}
	n := bits.Len64(x - 1)
	if n >= 64 {
		return 1 << 63
	}
	return 1 << n
}
