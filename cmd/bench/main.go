// Command bench runs a synthetic workload against one cache variant and
// exposes optional pprof/Prometheus endpoints.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	_ "net/http/pprof" // registers /debug/pprof/* on DefaultServeMux
	"os"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/IvanBrykalov/tiercache/cache"
	pmet "github.com/IvanBrykalov/tiercache/metrics/prom"
)

func main() {
	// ---- Flags ----
	var (
		variant  = flag.String("variant", "auto", "cache variant: lru | ttl | sharded | tiered | auto")
		maxSize  = flag.Int("max", 100_000, "cache capacity (entries)")
		ttl      = flag.Duration("ttl", cache.DefaultTTL, "entry lifetime for the ttl variant")
		shards   = flag.Int("shards", 0, "number of shards (0=auto)")
		localCap = flag.Int("local", cache.DefaultLocalCapacity, "tiered L1 capacity per goroutine")

		workers  = flag.Int("workers", 2*runtime.GOMAXPROCS(0), "number of worker goroutines")
		duration = flag.Duration("duration", 10*time.Second, "benchmark duration")
		readPct  = flag.Int("reads", 80, "read percentage [0..100]")
		opsLimit = flag.Float64("rate", 0, "total ops/s limit across workers (0 = unlimited)")

		keys    = flag.Int("keys", 1_000_000, "keyspace size")
		zipfS   = flag.Float64("zipf_s", 1.1, "Zipf s > 1 (skew)")
		zipfV   = flag.Float64("zipf_v", 1.0, "Zipf v")
		seed    = flag.Int64("seed", time.Now().UnixNano(), "random seed")
		preload = flag.Int("preload", 0, "preload entries (0 = max/2)")

		pprofAddr   = flag.String("pprof", "", "serve pprof at addr (e.g. :6060); empty = disabled")
		metricsAddr = flag.String("http", ":8080", "serve Prometheus metrics at addr")
		verbose     = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	// ---- pprof server (on DefaultServeMux) ----
	if *pprofAddr != "" {
		go func() {
			logger.Info("pprof: serving", "addr", *pprofAddr)
			logger.Error("pprof server stopped", "err", http.ListenAndServe(*pprofAddr, nil))
		}()
	}

	// ---- Prometheus metrics (on DefaultServeMux) ----
	metrics := pmet.New(nil, "tiercache", "bench", prometheus.Labels{"variant": *variant})
	http.Handle("/metrics", promhttp.Handler())
	go func() {
		logger.Info("metrics: serving", "addr", *metricsAddr)
		logger.Error("metrics server stopped", "err", http.ListenAndServe(*metricsAddr, nil))
	}()

	workersN := max(*workers, 1)

	// ---- Build cache ----
	b := cache.NewConfigBuilder().
		MaxSize(*maxSize).
		TTL(*ttl).
		LocalCapacity(*localCap).
		Metrics(metrics).
		Logger(logger)
	if *shards > 0 {
		b = b.Shards(*shards)
	}
	if *variant == "ttl" {
		b = b.Strategy(cache.Expiry)
	}
	cfg, err := b.Build()
	if err != nil {
		logger.Error("invalid configuration", "err", err)
		os.Exit(2)
	}
	c, err := build(cfg, *variant, workersN, float64(*readPct)/100)
	if err != nil {
		logger.Error("cannot build cache", "err", err)
		os.Exit(2)
	}
	defer func() { _ = c.Close() }()
	if err := metrics.TrackSize(c.Len); err != nil {
		logger.Warn("size gauge not registered", "err", err)
	}

	// ---- Preload half capacity to get a realistic hit-rate ----
	pl := *preload
	if pl == 0 {
		pl = *maxSize / 2
	}
	for i := 0; i < pl; i++ {
		k := "k:" + strconv.Itoa(i)
		_ = c.Put(k, "v"+strconv.Itoa(i))
	}

	// ---- Load generation ----
	var limiter *rate.Limiter
	if *opsLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(*opsLimit), workersN)
	}

	var reads, writes, total atomic.Uint64
	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	keysMax := uint64(*keys - 1)
	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workersN; w++ {
		g.Go(func() error {
			// Each worker gets its own RNG + Zipf (rand.Rand is NOT goroutine-safe).
			r := rand.New(rand.NewSource(*seed + int64(w)*9973))
			z := rand.NewZipf(r, *zipfS, *zipfV, keysMax)
			key := func() string { return "k:" + strconv.FormatUint(z.Uint64(), 10) }

			for gctx.Err() == nil {
				if limiter != nil {
					if err := limiter.Wait(gctx); err != nil {
						break
					}
				}
				total.Add(1)
				if int(r.Int31n(100)) < *readPct {
					reads.Add(1)
					c.Get(key())
					continue
				}
				writes.Add(1)
				if err := c.Put(key(), "v"+strconv.Itoa(r.Int())); err != nil {
					return err
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		logger.Error("worker failed", "err", err)
	}
	elapsed := time.Since(start)

	// ---- Report ----
	ops := total.Load()
	fmt.Printf("variant=%s max=%d workers=%d keys=%d dur=%v seed=%d\n",
		*variant, *maxSize, workersN, *keys, elapsed, *seed)
	fmt.Printf("ops=%d (%.0f ops/s)  reads=%d  writes=%d\n",
		ops, float64(ops)/elapsed.Seconds(), reads.Load(), writes.Load())
	fmt.Println(c.Stats())
	if t, ok := c.(*cache.Tiered[string, string]); ok {
		d := t.DetailedStats()
		fmt.Printf("l1-hit-rate=%.2f%%  l2-hit-rate=%.2f%%\n", d.L1HitRate()*100, d.L2HitRate()*100)
	}
}

func build(cfg cache.Config, variant string, workers int, readRatio float64) (cache.Cache[string, string], error) {
	switch variant {
	case "lru", "ttl":
		return cache.New[string, string](cfg)
	case "sharded":
		return cache.NewSharded[string, string](cfg)
	case "tiered":
		return cache.NewTieredFromConfig[string, string](cfg)
	case "auto":
		return cache.NewOptimized[string, string](cfg, workers, readRatio)
	default:
		return nil, fmt.Errorf("unknown variant %q (use lru, ttl, sharded, tiered or auto)", variant)
	}
}
