package cache

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

func TestSecretCache(t *testing.T) {
	logger := slog.Default()

	t.Run("Key", func(t *testing.T) {
		assert.Equal(t, "db_password:current", Key("db_password", 0))
		assert.Equal(t, "db_password:3", Key("db_password", 3))
	})

	t.Run("SetAndGet", func(t *testing.T) {
		c := NewSecretCache(time.Minute, logger)
		c.Set(Key("db_password", 0), []byte("hunter2"))

		value, ok := c.Get(Key("db_password", 0))
		assert.True(t, ok)
		assert.Equal(t, []byte("hunter2"), value)

		_, ok = c.Get(Key("other", 0))
		assert.False(t, ok)
	})

	t.Run("ExpiredEntryIsAMiss", func(t *testing.T) {
		c := NewSecretCache(time.Millisecond, logger)
		c.Set("k:current", []byte("v"))

		time.Sleep(5 * time.Millisecond)

		_, ok := c.Get("k:current")
		assert.False(t, ok)
	})

	t.Run("InvalidateRemovesAllVersionsOfName", func(t *testing.T) {
		c := NewSecretCache(time.Minute, logger)
		c.Set(Key("db_password", 0), []byte("v2"))
		c.Set(Key("db_password", 1), []byte("v1"))
		c.Set(Key("db_password_old", 0), []byte("other"))

		c.Invalidate("db_password")

		_, ok := c.Get(Key("db_password", 0))
		assert.False(t, ok)
		_, ok = c.Get(Key("db_password", 1))
		assert.False(t, ok)
		_, ok = c.Get(Key("db_password_old", 0))
		assert.True(t, ok)
	})

	t.Run("SweepEvictsOnlyExpired", func(t *testing.T) {
		c := NewSecretCache(time.Minute, logger)
		c.Set("fresh:current", []byte("v"))
		c.entries["stale:current"] = entry{
			value:     []byte("v"),
			expiresAt: time.Now().Add(-time.Second),
		}

		removed := c.Sweep()

		assert.Equal(t, 1, removed)
		assert.Equal(t, 1, c.Len())
	})
}

func TestSecretCacheSweeperShutdown(t *testing.T) {
	defer goleak.VerifyNone(t)

	c := NewSecretCache(time.Minute, slog.Default())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		c.StartSweeper(ctx, 10*time.Millisecond)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop after context cancellation")
	}
}
