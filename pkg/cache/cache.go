// Package cache provides a small key-value caching interface with in-memory
// and Redis-backed implementations, plus a typed cache for allocation results.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"netalloc/pkg/config"
)

// Backend types for cache implementations.
const (
	// BackendMemory specifies an in-memory LRU backend.
	BackendMemory = "memory"
	// BackendRedis specifies a Redis backend.
	BackendRedis = "redis"
)

// Standard errors returned by cache operations.
var (
	// ErrKeyNotFound is returned when a requested key does not exist in the cache.
	ErrKeyNotFound = errors.New("key not found")
	// ErrCacheClosed is returned when an operation is attempted on a closed cache.
	ErrCacheClosed = errors.New("cache is closed")
	// ErrUnknownBackend is returned by New for an unsupported backend name.
	ErrUnknownBackend = errors.New("unknown cache backend")
)

// Cache is the set of operations shared by all backends.
type Cache interface {
	// Get retrieves the value associated with the given key.
	// Returns ErrKeyNotFound if the key does not exist or has expired.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores a value with the given TTL. A non-positive TTL means the
	// backend default.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Delete removes the key. Missing keys are not an error.
	Delete(ctx context.Context, key string) error
	// Exists reports whether a live entry exists for the key.
	Exists(ctx context.Context, key string) (bool, error)
	// DeleteByPattern removes all keys matching a glob with a single '*'
	// and returns how many were removed.
	DeleteByPattern(ctx context.Context, pattern string) (int64, error)
	// Stats returns hit/miss counters and size information.
	Stats(ctx context.Context) (*Stats, error)
	// Clear removes all entries.
	Clear(ctx context.Context) error
	// Close releases backend resources.
	Close() error
}

// Stats holds cache counters.
type Stats struct {
	TotalKeys   int64   // Number of keys currently stored.
	Hits        int64   // Successful lookups.
	Misses      int64   // Failed lookups.
	Evictions   int64   // Entries dropped to respect MaxEntries.
	HitRate     float64 // Hits / (Hits + Misses).
	MemoryBytes int64   // Approximate payload size.
	Backend     string  // "memory" or "redis".
}

// Options contains configuration parameters for creating a Cache.
type Options struct {
	Backend    string        // BackendMemory or BackendRedis.
	DefaultTTL time.Duration // TTL applied when Set receives a non-positive one.

	// Memory backend
	MaxEntries      int           // LRU capacity.
	CleanupInterval time.Duration // Interval of the expired-entry sweep.

	// Redis backend
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPoolSize int
}

// DefaultOptions returns options for a memory cache with sensible defaults.
func DefaultOptions() *Options {
	return &Options{
		Backend:         BackendMemory,
		DefaultTTL:      10 * time.Minute,
		MaxEntries:      1000,
		CleanupInterval: time.Minute,
		RedisAddr:       "localhost:6379",
		RedisPoolSize:   10,
	}
}

// FromConfig создаёт опции из конфигурации
func FromConfig(cfg *config.CacheConfig) *Options {
	opts := DefaultOptions()
	opts.Backend = cfg.Driver
	if cfg.DefaultTTL > 0 {
		opts.DefaultTTL = cfg.DefaultTTL
	}
	if cfg.MaxEntries > 0 {
		opts.MaxEntries = cfg.MaxEntries
	}
	opts.RedisAddr = cfg.Address()
	opts.RedisPassword = cfg.Password
	opts.RedisDB = cfg.DB
	return opts
}

// New создаёт кэш на основе опций
func New(opts *Options) (Cache, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	switch opts.Backend {
	case BackendRedis:
		return NewRedisCache(opts)
	case BackendMemory, "":
		return NewMemoryCache(opts), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, opts.Backend)
	}
}

func hitRate(hits, misses int64) float64 {
	if total := hits + misses; total > 0 {
		return float64(hits) / float64(total)
	}
	return 0
}
