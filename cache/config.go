package cache

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/IvanBrykalov/tiercache/internal/util"
)

// Strategy selects the eviction discipline of a leaf engine.
type Strategy int

const (
	// Recency evicts the least recently touched entry on overflow (LRU).
	Recency Strategy = iota
	// Expiry gives every entry an absolute deadline and evicts the entry with
	// the nearest deadline on overflow (TTL).
	Expiry
)

func (s Strategy) String() string {
	switch s {
	case Recency:
		return "recency"
	case Expiry:
		return "expiry"
	default:
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
}

func (s Strategy) valid() bool { return s == Recency || s == Expiry }

const (
	// DefaultMaxSize is the entry limit used when none is configured.
	DefaultMaxSize = 1000
	// DefaultTTL is the entry lifetime used when none is configured.
	DefaultTTL = 5 * time.Minute
	// DefaultLocalCapacity is the per-goroutine front cache size of a Tiered cache.
	DefaultLocalCapacity = 100
	// MaxShards caps the shard count of a Sharded cache.
	MaxShards = 1 << 16
)

// Clock provides time in UnixNano; useful for deterministic tests.
type Clock interface{ NowUnixNano() int64 }

// Config is an immutable cache configuration. Build one with
// NewConfigBuilder or use DefaultConfig. The zero Config is invalid and
// rejected by every constructor.
type Config struct {
	maxSize       int
	ttl           time.Duration
	strategy      Strategy
	shards        int // 0 = util.DefaultShardCount()
	localCapacity int

	metrics Metrics
	logger  *slog.Logger
	clock   Clock
}

// DefaultConfig returns {maxSize: 1000, ttl: 5m, strategy: Recency}.
func DefaultConfig() Config {
	cfg, _ := NewConfigBuilder().Build()
	return cfg
}

// MaxSize is the entry limit.
func (c Config) MaxSize() int { return c.maxSize }

// TTL is the lifetime of entries in an Expiry engine.
func (c Config) TTL() time.Duration { return c.ttl }

// Strategy is the eviction discipline of leaf engines.
func (c Config) Strategy() Strategy { return c.strategy }

// Shards is the shard count used by NewSharded, already rounded up to a power of two.
func (c Config) Shards() int {
	if c.shards == 0 {
		return util.DefaultShardCount()
	}
	return c.shards
}

// LocalCapacity is the per-goroutine front cache size used by Tiered caches.
func (c Config) LocalCapacity() int { return c.localCapacity }

// withMaxSize returns a copy with a different entry limit (used to size shards).
func (c Config) withMaxSize(n int) Config {
	c.maxSize = n
	return c
}

func (c Config) validate() error {
	if c.maxSize < 1 {
		return fmt.Errorf("%w: maxSize must be at least 1, got %d", ErrInvalidConfig, c.maxSize)
	}
	if c.ttl < 0 {
		return fmt.Errorf("%w: ttl must be non-negative, got %v", ErrInvalidConfig, c.ttl)
	}
	if !c.strategy.valid() {
		return fmt.Errorf("%w: unknown eviction strategy %v", ErrInvalidConfig, c.strategy)
	}
	if c.shards < 0 || c.shards > MaxShards {
		return fmt.Errorf("%w: shard count must be in [1, %d], got %d", ErrInvalidConfig, MaxShards, c.shards)
	}
	if c.localCapacity < 1 {
		return fmt.Errorf("%w: local capacity must be at least 1, got %d", ErrInvalidConfig, c.localCapacity)
	}
	return nil
}

func (c Config) metricsOrNoop() Metrics {
	if c.metrics == nil {
		return NoopMetrics{}
	}
	return c.metrics
}

func (c Config) loggerOrNop() *slog.Logger {
	if c.logger == nil {
		return nopLogger
	}
	return c.logger
}

func (c Config) now() int64 {
	if c.clock != nil {
		return c.clock.NowUnixNano()
	}
	return time.Now().UnixNano()
}

// ConfigBuilder accumulates configuration and validates it. The first invalid
// value is remembered and returned by Build; later setters are ignored.
type ConfigBuilder struct {
	cfg Config
	err error
}

// NewConfigBuilder starts from the defaults.
func NewConfigBuilder() *ConfigBuilder {
	return &ConfigBuilder{cfg: Config{
		maxSize:       DefaultMaxSize,
		ttl:           DefaultTTL,
		strategy:      Recency,
		localCapacity: DefaultLocalCapacity,
	}}
}

func (b *ConfigBuilder) fail(format string, args ...any) *ConfigBuilder {
	if b.err == nil {
		b.err = fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...)
	}
	return b
}

// MaxSize sets the entry limit (>= 1).
func (b *ConfigBuilder) MaxSize(n int) *ConfigBuilder {
	if n < 1 {
		return b.fail("maxSize must be at least 1, got %d", n)
	}
	b.cfg.maxSize = n
	return b
}

// TTL sets the entry lifetime for Expiry engines (>= 0).
func (b *ConfigBuilder) TTL(d time.Duration) *ConfigBuilder {
	if d < 0 {
		return b.fail("ttl must be non-negative, got %v", d)
	}
	b.cfg.ttl = d
	return b
}

// Strategy sets the eviction discipline.
func (b *ConfigBuilder) Strategy(s Strategy) *ConfigBuilder {
	if !s.valid() {
		return b.fail("unknown eviction strategy %v", s)
	}
	b.cfg.strategy = s
	return b
}

// Shards sets the shard count for NewSharded (1..MaxShards, rounded up to a power of two).
func (b *ConfigBuilder) Shards(n int) *ConfigBuilder {
	if n < 1 || n > MaxShards {
		return b.fail("shard count must be in [1, %d], got %d", MaxShards, n)
	}
	b.cfg.shards = int(util.NextPow2(uint64(n)))
	return b
}

// LocalCapacity sets the per-goroutine front cache size of Tiered caches (>= 1).
func (b *ConfigBuilder) LocalCapacity(n int) *ConfigBuilder {
	if n < 1 {
		return b.fail("local capacity must be at least 1, got %d", n)
	}
	b.cfg.localCapacity = n
	return b
}

// Metrics plugs an observability backend; nil means NoopMetrics.
func (b *ConfigBuilder) Metrics(m Metrics) *ConfigBuilder {
	b.cfg.metrics = m
	return b
}

// Logger sets the structured logger; nil keeps the library silent.
func (b *ConfigBuilder) Logger(l *slog.Logger) *ConfigBuilder {
	b.cfg.logger = l
	return b
}

// Clock overrides the time source (tests). Nil means time.Now.
func (b *ConfigBuilder) Clock(c Clock) *ConfigBuilder {
	b.cfg.clock = c
	return b
}

// Build returns the configuration, or the first validation error.
func (b *ConfigBuilder) Build() (Config, error) {
	if b.err != nil {
		return Config{}, b.err
	}
	return b.cfg, nil
}
