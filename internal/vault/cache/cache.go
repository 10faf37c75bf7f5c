// Package cache provides a process-local TTL cache for decrypted secret
// values. Entries are keyed by "name:version" (or "name:current") and must
// be invalidated synchronously on every successful mutation so stale
// plaintext is never served past an update, rotation, or revocation.
package cache

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"time"
)

// CurrentVersion is the version label for a secret's current value.
const CurrentVersion = "current"

type entry struct {
	value     []byte
	expiresAt time.Time
}

// SecretCache is a TTL cache with a periodic sweep janitor. The zero value
// is not usable; construct with NewSecretCache.
type SecretCache struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
	logger  *slog.Logger
}

// NewSecretCache creates a cache whose entries expire after ttl.
func NewSecretCache(ttl time.Duration, logger *slog.Logger) *SecretCache {
	return &SecretCache{
		entries: make(map[string]entry),
		ttl:     ttl,
		logger:  logger,
	}
}

// Key builds the cache key for a secret name and version. Pass zero for the
// current version.
func Key(name string, version uint) string {
	if version == 0 {
		return name + ":" + CurrentVersion
	}
	return name + ":" + strconv.FormatUint(uint64(version), 10)
}

// Get returns the cached value for key, or false if absent or expired.
// Expired entries are left for the sweeper.
func (c *SecretCache) Get(key string) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || time.Now().After(e.expiresAt) {
		return nil, false
	}
	return e.value, true
}

// Set stores value under key with the cache TTL.
func (c *SecretCache) Set(key string, value []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry{value: value, expiresAt: time.Now().Add(c.ttl)}
}

// Invalidate removes every entry for the given secret name, covering both
// the current alias and all pinned versions.
func (c *SecretCache) Invalidate(name string) {
	prefix := name + ":"

	c.mu.Lock()
	defer c.mu.Unlock()

	for key := range c.entries {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			delete(c.entries, key)
		}
	}
}

// Len returns the number of entries, expired ones included.
func (c *SecretCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Sweep evicts all expired entries and returns how many were removed.
func (c *SecretCache) Sweep() int {
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// StartSweeper runs the eviction loop until the context is cancelled.
// It is intended to run in its own goroutine.
func (c *SecretCache) StartSweeper(ctx context.Context, interval time.Duration) {
	c.logger.Info("secret cache sweeper started", slog.Duration("interval", interval))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("secret cache sweeper stopped")
			return
		case <-ticker.C:
			if removed := c.Sweep(); removed > 0 {
				c.logger.Debug("secret cache sweep", slog.Int("evicted", removed))
			}
		}
	}
}
