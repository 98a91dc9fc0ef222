package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/anatolykoptev/go_clip/internal/sheet"
)

// KVStore is a persistent key-value backend for the cache's second tier.
// Get returns ErrNotFound on a miss.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
	Name() string
}

// Cache provides 2-tier caching of the last ingested collection:
// L1 in-process (lost on restart) + L2 KVStore (survives restarts).
// Entries never expire; the last write wins.
//
// Get and Set never return errors. Failures are logged and resolve to a
// miss or false.
type Cache struct {
	mu    sync.RWMutex
	setMu sync.Mutex // keeps L1 and L2 in the same write order
	l1    map[string][]byte
	l2    KVStore // nil = memory only
}

// NewCache creates a cache over l2, which may be nil.
func NewCache(l2 KVStore) *Cache {
	return &Cache{l1: make(map[string][]byte), l2: l2}
}

// OpenCache builds the cache selected by cfg.CacheBackend. A backend that
// cannot be opened degrades the cache to memory only.
func OpenCache(ctx context.Context, cfg Config) *Cache {
	cfg = cfg.withDefaults()
	l2, err := openBackend(ctx, cfg)
	if err != nil {
		slog.Warn("cache: backend unavailable, L2 disabled",
			slog.String("backend", cfg.CacheBackend), slog.Any("error", err))
		l2 = nil
	}
	c := NewCache(l2)
	slog.Info("cache: initialized", slog.String("backend", c.Backend()), slog.String("key", cfg.CacheKey))
	return c
}

func openBackend(ctx context.Context, cfg Config) (KVStore, error) {
	switch cfg.CacheBackend {
	case BackendMemory:
		return nil, nil
	case BackendSQLite:
		return OpenSQLiteStore(cfg.CachePath)
	case BackendRedis:
		return OpenRedisStore(ctx, cfg.RedisURL)
	case BackendPostgres:
		return OpenPostgresStore(ctx, cfg.DatabaseURL)
	}
	return nil, fmt.Errorf("unknown cache backend %q", cfg.CacheBackend)
}

// Backend names the active second tier.
func (c *Cache) Backend() string {
	if c.l2 == nil {
		return BackendMemory
	}
	return c.l2.Name()
}

// Get tries L1, then L2. On L2 hit, populates L1 unless a write got there
// first.
func (c *Cache) Get(ctx context.Context, key string) (sheet.Collection, bool) {
	c.mu.RLock()
	data, ok := c.l1[key]
	c.mu.RUnlock()
	if ok {
		if rows, err := decodeCollection(data); err == nil {
			slog.Debug("cache: L1 hit", slog.String("key", key))
			metrics.CacheHits.Add(1)
			return rows, true
		}
		c.mu.Lock()
		delete(c.l1, key) // corrupt
		c.mu.Unlock()
	}

	if c.l2 != nil {
		data, err := c.l2.Get(ctx, key)
		switch {
		case err == nil:
			rows, derr := decodeCollection(data)
			if derr == nil {
				slog.Debug("cache: L2 hit", slog.String("key", key), slog.String("backend", c.l2.Name()))
				metrics.CacheHits.Add(1)
				c.mu.Lock()
				if _, ok := c.l1[key]; !ok { // a concurrent Set wins
					c.l1[key] = data
				}
				c.mu.Unlock()
				return rows, true
			}
			metrics.CacheReadErrors.Add(1)
			slog.Warn("cache: corrupt L2 entry ignored", slog.String("key", key), slog.Any("error", derr))
		case errors.Is(err, ErrNotFound):
		default:
			metrics.CacheReadErrors.Add(1)
			slog.Warn("cache: L2 get failed", slog.String("key", key), slog.Any("error", err))
		}
	}

	metrics.CacheMisses.Add(1)
	return nil, false
}

// Set stores value in both tiers. It reports whether the durable tier (or
// L1 when memory only) accepted the write.
func (c *Cache) Set(ctx context.Context, key string, value sheet.Collection) bool {
	if value == nil {
		value = sheet.Collection{}
	}
	data, err := json.Marshal(value)
	if err != nil {
		metrics.CacheWriteErrors.Add(1)
		slog.Warn("cache: encode failed", slog.String("key", key), slog.Any("error", err))
		return false
	}

	c.setMu.Lock()
	defer c.setMu.Unlock()

	c.mu.Lock()
	c.l1[key] = data
	c.mu.Unlock()

	if c.l2 == nil {
		return true
	}
	if err := c.l2.Set(ctx, key, data); err != nil {
		metrics.CacheWriteErrors.Add(1)
		slog.Warn("cache: L2 set failed", slog.String("key", key), slog.Any("error", err))
		return false
	}
	return true
}

// Close releases the backend.
func (c *Cache) Close() error {
	if c.l2 == nil {
		return nil
	}
	return c.l2.Close()
}

func decodeCollection(data []byte) (sheet.Collection, error) {
	var rows sheet.Collection
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, err
	}
	if rows == nil {
		rows = sheet.Collection{}
	}
	return rows, nil
}
