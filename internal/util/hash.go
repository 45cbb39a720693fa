// Package util contains internal helpers (hashing, sharding, padding).
//revive:disable:var-naming  // allow 'util' as an internal helpers package name
package util

import "hash/maphash"

// Hasher hashes keys of type K for shard routing.
// Common key types use FNV-1a so the result is stable across processes;
// every other comparable type falls back to maphash with a seed fixed for the
// lifetime of the Hasher.
type Hasher[K comparable] struct {
	seed maphash.Seed
}

// NewHasher returns a Hasher with a fresh maphash seed.
func NewHasher[K comparable]() Hasher[K] {
	return Hasher[K]{seed: maphash.MakeSeed()}
}

// Sum64 returns the raw 64-bit hash of k (before mixing).
func (h Hasher[K]) Sum64(k K) uint64 {
	if v, ok := Fnv64a(k); ok {
		return v
	}
	return maphash.Comparable(h.seed, k)
}

// Fnv64a hashes common key types using 64-bit FNV-1a.
// Supported: string, [16|32|64]byte, all int/uint widths, uintptr.
// ok is false for any other type, including types with a String method:
// routing must follow ==, and String output may change while the key does not.
func Fnv64a[K comparable](k K) (uint64, bool) {
	switch v := any(k).(type) {
	case string:
		return fnv64aFromString(v), true
	case [16]byte:
		return fnv64aFromBytes(v[:]), true
	case [32]byte:
		return fnv64aFromBytes(v[:]), true
	case [64]byte:
		return fnv64aFromBytes(v[:]), true

	// Integer-like keys: hash little-endian bytes of the value.
	case uint8:
		return fnv64aFromUint64(uint64(v)), true
	case uint16:
		return fnv64aFromUint64(uint64(v)), true
	case uint32:
		return fnv64aFromUint64(uint64(v)), true
	case uint64:
		return fnv64aFromUint64(v), true
	case uint:
		return fnv64aFromUint64(uint64(v)), true
	case uintptr:
		return fnv64aFromUint64(uint64(v)), true
	case int8:
		return fnv64aFromUint64(uint64(uint8(v))), true
	case int16:
		return fnv64aFromUint64(uint64(uint16(v))), true
	case int32:
		return fnv64aFromUint64(uint64(uint32(v))), true
	case int64:
		return fnv64aFromUint64(uint64(v)), true
	case int:
		return fnv64aFromUint64(uint64(v)), true

	default:
		return 0, false
	}
}

// Mix64 is the murmur3 fmix64 finalizer. It spreads low-entropy hashes over
// all 64 bits so masking off the low bits does not cluster keys.
func Mix64(h uint64) uint64 {
	h ^= h >> 33
	h *= 0xff51afd7ed558ccd
	h ^= h >> 33
	h *= 0xc4ceb9fe1a85ec53
	h ^= h >> 33
	return h
}

const (
	fnvOffset64 = 1469598103934665603
	fnvPrime64  = 1099511628211
)

func fnv64aFromString(s string) uint64 {
	h := uint64(fnvOffset64)
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= fnvPrime64
	}
	return h
}

func fnv64aFromBytes(b []byte) uint64 {
	h := uint64(fnvOffset64)
	for _, c := range b {
		h ^= uint64(c)
		h *= fnvPrime64
	}
	return h
}

func fnv64aFromUint64(u uint64) uint64 {
	// Hash the 8 little-endian bytes of u without allocating.
	h := uint64(fnvOffset64)
	for i := 0; i < 8; i++ {
		h ^= uint64(byte(u))
		h *= fnvPrime64
		u >>= 8
	}
	return h
}
