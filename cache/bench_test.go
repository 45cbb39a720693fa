package cache

import (
	"math/rand"
	"strconv"
	"sync/atomic"
	"testing"
	"time"
)

func benchCache(b *testing.B, name string) Cache[int, int] {
	cfg, err := NewConfigBuilder().MaxSize(100_000).TTL(time.Minute).Build()
	if err != nil {
		b.Fatal(err)
	}
	var c Cache[int, int]
	switch name {
	case "lru":
		c, err = NewLRU[int, int](cfg)
	case "ttl":
		c, err = NewTTL[int, int](cfg)
	case "sharded":
		c, err = NewSharded[int, int](cfg)
	case "tiered":
		c, err = NewTieredFromConfig[int, int](cfg)
	}
	if err != nil {
		b.Fatal(err)
	}
	b.Cleanup(func() { _ = c.Close() })
	return c
}

// benchmarkMix runs a read/write mix against a warm cache from
// GOMAXPROCS goroutines. Int keys keep strconv noise off the hot path.
func benchmarkMix(b *testing.B, name string, readsPct int) {
	c := benchCache(b, name)

	// Preload half the capacity for a realistic hit rate.
	for i := 0; i < 50_000; i++ {
		_ = c.Put(i, 1)
	}

	b.ReportAllocs()
	b.ResetTimer()

	var seed int64 = 1
	keyMask := (1 << 16) - 1

	b.RunParallel(func(pb *testing.PB) {
		r := rand.New(rand.NewSource(atomic.AddInt64(&seed, 1)))
		i := 0
		for pb.Next() {
			k := i & keyMask
			if r.Intn(100) < readsPct {
				c.Get(k)
			} else {
				_ = c.Put(k, 1)
			}
			i++
		}
	})
}

func BenchmarkMix(b *testing.B) {
	for _, name := range []string{"lru", "ttl", "sharded", "tiered"} {
		for _, reads := range []int{50, 90, 99} {
			b.Run(name+"/"+strconv.Itoa(reads)+"r", func(b *testing.B) {
				benchmarkMix(b, name, reads)
			})
		}
	}
}

// Each worker reads through its own Local handle, the tiered fast path.
func BenchmarkTiered_LocalHandles(b *testing.B) {
	cfg, err := NewConfigBuilder().MaxSize(100_000).LocalCapacity(1_024).Build()
	if err != nil {
		b.Fatal(err)
	}
	tc, err := NewTieredFromConfig[int, int](cfg)
	if err != nil {
		b.Fatal(err)
	}
	b.Cleanup(func() { _ = tc.Close() })
	for i := 0; i < 4_096; i++ {
		_ = tc.Put(i, i)
	}

	b.ReportAllocs()
	b.ResetTimer()

	b.RunParallel(func(pb *testing.PB) {
		h := tc.Local()
		defer h.Close()
		i := 0
		for pb.Next() {
			h.Get(i & 1023)
			i++
		}
	})
}

// benchmarkTieredReads runs a 95% read mix over a hot set that fits in L1 and
// reports the resulting L1 hit rate. Pooled fronts are emptied by every write;
// Local fronts only lose what their own goroutine invalidates.
func benchmarkTieredReads(b *testing.B, local bool) {
	cfg, err := NewConfigBuilder().MaxSize(100_000).LocalCapacity(1_024).Build()
	if err != nil {
		b.Fatal(err)
	}
	tc, err := NewTieredFromConfig[int, int](cfg)
	if err != nil {
		b.Fatal(err)
	}
	b.Cleanup(func() { _ = tc.Close() })
	for i := 0; i < 1_024; i++ {
		_ = tc.Put(i, i)
	}

	b.ReportAllocs()
	b.ResetTimer()

	var seed int64 = 1
	b.RunParallel(func(pb *testing.PB) {
		r := rand.New(rand.NewSource(atomic.AddInt64(&seed, 1)))
		var c Cache[int, int] = tc
		if local {
			h := tc.Local()
			defer h.Close()
			c = h
		}
		i := 0
		for pb.Next() {
			k := i & 1023
			if r.Intn(100) < 95 {
				c.Get(k)
			} else {
				_ = c.Put(k, i)
			}
			i++
		}
	})
	b.StopTimer()
	b.ReportMetric(tc.DetailedStats().L1HitRate()*100, "l1-hit-%")
}

func BenchmarkTiered_L1HitRate(b *testing.B) {
	b.Run("pooled", func(b *testing.B) { benchmarkTieredReads(b, false) })
	b.Run("local", func(b *testing.B) { benchmarkTieredReads(b, true) })
}
