package engine

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache provides 2-tier caching: L1 in-memory + L2 Redis.
// Transcripts and analyses are keyed by video ID, so a repeated digest run
// or tool call does not hit YouTube or the LLM again.
var podCache *tieredCache

// CacheTTL controls how long results stay cached.
var CacheTTL = 24 * time.Hour

var (
	cacheHits   atomic.Int64
	cacheMisses atomic.Int64
)

type tieredCache struct {
	l1              sync.Map      // key → *cacheEntry
	rdb             *redis.Client // nil if Redis unavailable
	ttl             time.Duration
	maxEntries      int
	cleanupInterval time.Duration
	stop            chan struct{}
}

type cacheEntry struct {
	data      []byte
	expiresAt time.Time
}

// InitCache sets up the 2-tier cache. Call after Init().
// redisURL can be empty to disable L2.
func InitCache(redisURL string, ttl time.Duration, maxEntries int, cleanupInterval time.Duration) {
	if podCache != nil {
		close(podCache.stop)
	}
	c := &tieredCache{ttl: ttl, maxEntries: maxEntries, cleanupInterval: cleanupInterval, stop: make(chan struct{})}

	if redisURL != "" {
		opts, err := redis.ParseURL(redisURL)
		if err != nil {
			slog.Warn("cache: invalid redis URL, L2 disabled", slog.Any("error", err))
		} else {
			rdb := redis.NewClient(opts)
			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			if err := rdb.Ping(ctx).Err(); err != nil {
				slog.Warn("cache: redis unreachable, L2 disabled", slog.Any("error", err))
				_ = rdb.Close()
			} else {
				c.rdb = rdb
				slog.Info("cache: L2 redis connected", slog.String("addr", opts.Addr))
			}
		}
	}

	podCache = c
	slog.Info("cache: initialized", slog.Duration("ttl", ttl), slog.Bool("redis", c.rdb != nil), slog.Int("max_entries", maxEntries))

	go c.cleanupLoop()
}

// CacheKey builds a deterministic cache key from parts.
func CacheKey(parts ...string) string {
	joined := strings.Join(parts, "|")
	hash := sha256.Sum256([]byte(joined))
	return fmt.Sprintf("pd:%x", hash[:12])
}

// CacheGet tries L1, then L2. On L2 hit, populates L1.
func CacheGet(ctx context.Context, key string) ([]byte, bool) {
	if podCache == nil {
		cacheMisses.Add(1)
		return nil, false
	}

	if val, ok := podCache.l1.Load(key); ok {
		entry := val.(*cacheEntry)
		if time.Now().Before(entry.expiresAt) {
			slog.Debug("cache: L1 hit", slog.String("key", key))
			cacheHits.Add(1)
			return entry.data, true
		}
		podCache.l1.Delete(key)
	}

	if podCache.rdb != nil {
		data, err := podCache.rdb.Get(ctx, key).Bytes()
		if err == nil {
			slog.Debug("cache: L2 hit", slog.String("key", key))
			cacheHits.Add(1)
			podCache.l1.Store(key, &cacheEntry{
				data:      data,
				expiresAt: time.Now().Add(podCache.ttl),
			})
			return data, true
		}
	}

	cacheMisses.Add(1)
	return nil, false
}

// CacheSet stores data in both L1 and L2.
func CacheSet(ctx context.Context, key string, data []byte) {
	if podCache == nil {
		return
	}

	podCache.evictIfNeeded()

	podCache.l1.Store(key, &cacheEntry{
		data:      data,
		expiresAt: time.Now().Add(podCache.ttl),
	})

	if podCache.rdb != nil {
		if err := podCache.rdb.Set(ctx, key, data, podCache.ttl).Err(); err != nil {
			slog.Debug("cache: L2 set failed", slog.Any("error", err))
		}
	}
}

// CacheLoadJSON loads a cached value of type T.
// Returns the decoded value and true on hit; zero value and false on miss or decode error.
func CacheLoadJSON[T any](ctx context.Context, key string) (T, bool) {
	var out T
	data, ok := CacheGet(ctx, key)
	if !ok {
		return out, false
	}
	if err := json.Unmarshal(data, &out); err != nil {
		var zero T
		return zero, false
	}
	return out, true
}

// CacheStoreJSON marshals v and stores it in the cache.
func CacheStoreJSON[T any](ctx context.Context, key string, v T) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	CacheSet(ctx, key, data)
}

// CacheStats returns current cache hit/miss counters.
func CacheStats() (hits, misses int64) {
	return cacheHits.Load(), cacheMisses.Load()
}

// evictIfNeeded removes entries when L1 exceeds maxEntries.
// Removes expired entries first, then oldest entries if still over limit.
func (c *tieredCache) evictIfNeeded() {
	if c.maxEntries <= 0 {
		return
	}

	count := 0
	c.l1.Range(func(_, _ any) bool {
		count++
		return true
	})
	if count < c.maxEntries {
		return
	}

	now := time.Now()
	c.l1.Range(func(key, val any) bool {
		if entry, ok := val.(*cacheEntry); ok && now.After(entry.expiresAt) {
			c.l1.Delete(key)
			count--
		}
		return count >= c.maxEntries
	})

	// Earlier expiry means older entry, since every entry gets the same ttl.
	for count >= c.maxEntries {
		var oldestKey any
		oldestAt := now.Add(c.ttl + time.Hour)
		c.l1.Range(func(key, val any) bool {
			if entry, ok := val.(*cacheEntry); ok && entry.expiresAt.Before(oldestAt) {
				oldestKey = key
				oldestAt = entry.expiresAt
			}
			return true
		})
		if oldestKey == nil {
			break
		}
		c.l1.Delete(oldestKey)
		count--
	}
}

// cleanupLoop periodically removes expired L1 entries until the cache is replaced.
func (c *tieredCache) cleanupLoop() {
	interval := c.cleanupInterval
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			now := time.Now()
			c.l1.Range(func(key, val any) bool {
				if entry, ok := val.(*cacheEntry); ok && now.After(entry.expiresAt) {
					c.l1.Delete(key)
				}
				return true
			})
		}
	}
}
