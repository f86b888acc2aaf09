package strata

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/strata-io/strata-client/internal/constants"
)

// CacheType selects the backend a cache is built on.
type CacheType string

const (
	// CacheTypeMemory is an in-process cache, private to one client.
	CacheTypeMemory CacheType = "memory"

	// CacheTypeNATS is a NATS JetStream KV bucket, shared across processes.
	CacheTypeNATS CacheType = "nats"

	// CacheTypeNone disables caching.
	CacheTypeNone CacheType = "none"
)

// Static errors for err113 compliance.
var (
	ErrNATSConfigRequired    = errors.New("NATS configuration required for NATS cache")
	ErrUnsupportedCacheType  = errors.New("unsupported cache type")
	ErrCacheDisabled         = errors.New("cache disabled")
	ErrKeyNotFoundInAnyCache = errors.New("key not found in any cache")
)

// CacheConfig describes how to build a cache for API responses.
type CacheConfig struct {
	// Type selects the backend.
	Type CacheType

	// Namespace, when set, prefixes every key. One backend can then serve
	// several resource collections ("clusters", "jobs", ...) without key
	// collisions.
	Namespace string

	// Memory tunes the in-memory backend. Nil uses defaults.
	Memory *MemoryCacheConfig

	// NATS configures the NATS KV backend. Required for CacheTypeNATS.
	NATS *NATSKVConfig

	// Options applies backend-independent tuning. Nil uses DefaultCacheOptions().
	Options *CacheOptions
}

// MemoryCacheConfig tunes the in-memory backend.
type MemoryCacheConfig struct {
	// MaxSize bounds the number of entries held.
	MaxSize int

	// CleanupInterval is how often expired entries are evicted in the
	// background. Zero disables the loop; expired entries are then dropped
	// only when accessed.
	CleanupInterval time.Duration
}

// DefaultCacheConfig returns the default configuration: a bounded in-memory
// cache with a one-minute cleanup loop.
func DefaultCacheConfig() *CacheConfig {
	return &CacheConfig{
		Type: CacheTypeMemory,
		Memory: &MemoryCacheConfig{
			MaxSize:         constants.DefaultCacheSize,
			CleanupInterval: time.Minute,
		},
		Options: DefaultCacheOptions(),
	}
}

// NewCacheFromConfig creates a cache backend from configuration. A nil config
// uses DefaultCacheConfig().
func NewCacheFromConfig(config *CacheConfig) (Cache, error) {
	if config == nil {
		config = DefaultCacheConfig()
	}

	var (
		cache Cache
		err   error
	)

	switch config.Type {
	case CacheTypeMemory:
		cache = newMemoryCacheFromConfig(config.Memory)

	case CacheTypeNATS:
		if config.NATS == nil {
			return nil, ErrNATSConfigRequired
		}

		cache, err = NewNATSKVCache(config.NATS)
		if err != nil {
			return nil, err
		}

	case CacheTypeNone:
		cache = NewNoOpCache()

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedCacheType, config.Type)
	}

	if config.Namespace != "" {
		cache = NewNamespacedCache(config.Namespace, cache)
	}

	return cache, nil
}

// newMemoryCacheFromConfig builds the in-memory backend and starts its
// cleanup loop when an interval is configured.
func newMemoryCacheFromConfig(config *MemoryCacheConfig) *MemoryCache {
	if config == nil {
		config = DefaultCacheConfig().Memory
	}

	cache := NewMemoryCache(config.MaxSize)
	if config.CleanupInterval > 0 {
		cache.StartCleanup(config.CleanupInterval)
	}

	return cache
}

// NamespacedCache prefixes every key before delegating to its backend,
// keeping resource collections that share one backend apart.
type NamespacedCache struct {
	prefix  string
	backend Cache
}

// NewNamespacedCache wraps backend so all keys live under namespace.
func NewNamespacedCache(namespace string, backend Cache) *NamespacedCache {
	return &NamespacedCache{
		prefix:  namespace + "/",
		backend: backend,
	}
}

// Get retrieves an entry from the namespace.
func (c *NamespacedCache) Get(ctx context.Context, key string) (*CacheEntry, error) {
	return c.backend.Get(ctx, c.prefix+key)
}

// Set stores an entry under the namespace.
func (c *NamespacedCache) Set(ctx context.Context, key string, entry *CacheEntry) error {
	return c.backend.Set(ctx, c.prefix+key, entry)
}

// Delete removes an entry from the namespace.
func (c *NamespacedCache) Delete(ctx context.Context, key string) error {
	return c.backend.Delete(ctx, c.prefix+key)
}

// Clear drops the whole backend, including entries of other namespaces
// sharing it.
func (c *NamespacedCache) Clear(ctx context.Context) error {
	return c.backend.Clear(ctx)
}

// Has reports whether the namespace holds a non-expired entry for key.
func (c *NamespacedCache) Has(ctx context.Context, key string) bool {
	return c.backend.Has(ctx, c.prefix+key)
}

// NoOpCache stores nothing. Every lookup misses.
type NoOpCache struct{}

// NewNoOpCache creates a cache that disables caching.
func NewNoOpCache() *NoOpCache {
	return &NoOpCache{}
}

// Get always misses.
func (c *NoOpCache) Get(ctx context.Context, key string) (*CacheEntry, error) {
	return nil, ErrCacheDisabled
}

// Set discards the entry.
func (c *NoOpCache) Set(ctx context.Context, key string, entry *CacheEntry) error {
	return nil
}

// Delete does nothing.
func (c *NoOpCache) Delete(ctx context.Context, key string) error {
	return nil
}

// Clear does nothing.
func (c *NoOpCache) Clear(ctx context.Context) error {
	return nil
}

// Has always reports false.
func (c *NoOpCache) Has(ctx context.Context, key string) bool {
	return false
}

// CacheBuilder assembles a CacheConfig fluently.
type CacheBuilder struct {
	config *CacheConfig
}

// NewCacheBuilder starts a builder with the in-memory backend selected.
func NewCacheBuilder() *CacheBuilder {
	return &CacheBuilder{
		config: &CacheConfig{
			Type:    CacheTypeMemory,
			Options: DefaultCacheOptions(),
		},
	}
}

// WithType selects the backend.
func (b *CacheBuilder) WithType(cacheType CacheType) *CacheBuilder {
	b.config.Type = cacheType

	return b
}

// WithNamespace prefixes all keys with the given namespace.
func (b *CacheBuilder) WithNamespace(namespace string) *CacheBuilder {
	b.config.Namespace = namespace

	return b
}

// WithMemoryConfig tunes the in-memory backend.
func (b *CacheBuilder) WithMemoryConfig(maxSize int, cleanupInterval time.Duration) *CacheBuilder {
	b.config.Memory = &MemoryCacheConfig{
		MaxSize:         maxSize,
		CleanupInterval: cleanupInterval,
	}

	return b
}

// WithNATSConfig configures the NATS KV backend.
func (b *CacheBuilder) WithNATSConfig(config *NATSKVConfig) *CacheBuilder {
	b.config.NATS = config

	return b
}

// WithOptions sets backend-independent options.
func (b *CacheBuilder) WithOptions(options *CacheOptions) *CacheBuilder {
	b.config.Options = options

	return b
}

// Build creates the cache.
func (b *CacheBuilder) Build() (Cache, error) {
	return NewCacheFromConfig(b.config)
}

// CacheChain layers cache backends: a fast private level in front of a
// shared one. Reads promote hits into the levels in front; writes and
// deletes go to every level.
type CacheChain struct {
	levels []Cache
}

// NewCacheChain creates a chain from fastest to slowest level.
func NewCacheChain(levels ...Cache) *CacheChain {
	return &CacheChain{levels: levels}
}

// Get returns the entry from the first level holding it, backfilling the
// levels in front of the hit.
func (c *CacheChain) Get(ctx context.Context, key string) (*CacheEntry, error) {
	for i, level := range c.levels {
		entry, err := level.Get(ctx, key)
		if err != nil {
			continue
		}

		for j := 0; j < i; j++ {
			_ = c.levels[j].Set(ctx, key, entry)
		}

		return entry, nil
	}

	return nil, ErrKeyNotFoundInAnyCache
}

// Set writes the entry through to every level, returning the last error.
func (c *CacheChain) Set(ctx context.Context, key string, entry *CacheEntry) error {
	var lastErr error

	for _, level := range c.levels {
		if err := level.Set(ctx, key, entry); err != nil {
			lastErr = err
		}
	}

	return lastErr
}

// Delete removes the entry from every level, returning the last error.
func (c *CacheChain) Delete(ctx context.Context, key string) error {
	var lastErr error

	for _, level := range c.levels {
		if err := level.Delete(ctx, key); err != nil {
			lastErr = err
		}
	}

	return lastErr
}

// Clear empties every level, returning the last error.
func (c *CacheChain) Clear(ctx context.Context) error {
	var lastErr error

	for _, level := range c.levels {
		if err := level.Clear(ctx); err != nil {
			lastErr = err
		}
	}

	return lastErr
}

// Has reports whether any level holds a non-expired entry for key.
func (c *CacheChain) Has(ctx context.Context, key string) bool {
	for _, level := range c.levels {
		if level.Has(ctx, key) {
			return true
		}
	}

	return false
}
