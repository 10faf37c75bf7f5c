package usecase

import (
	"context"
	"log/slog"
	"time"

	cryptoDomain "github.com/keywell/vault/internal/crypto/domain"
	apperrors "github.com/keywell/vault/internal/errors"
	"github.com/keywell/vault/internal/metrics"
)

// MonitorConfig holds key expiry monitor configuration.
type MonitorConfig struct {
	// Interval is the tick interval of the monitor loop.
	Interval time.Duration
	// ExpiryWarning is the look-ahead window for expiry notifications.
	ExpiryWarning time.Duration
}

// KeyMonitor periodically surfaces active keys that are close to expiring and
// deprecates rotated-out keys past their deprecation date. It never rotates
// keys by itself; rotation stays an explicit operator action.
type KeyMonitor struct {
	config     MonitorConfig
	keyUseCase KeyUseCase
	keyRepo    KeyRepository
	metrics    metrics.BusinessMetrics
	logger     *slog.Logger
}

// NewKeyMonitor creates a new key expiry monitor.
func NewKeyMonitor(
	config MonitorConfig,
	keyUseCase KeyUseCase,
	keyRepo KeyRepository,
	businessMetrics metrics.BusinessMetrics,
	logger *slog.Logger,
) *KeyMonitor {
	return &KeyMonitor{
		config:     config,
		keyUseCase: keyUseCase,
		keyRepo:    keyRepo,
		metrics:    businessMetrics,
		logger:     logger,
	}
}

// Start runs the monitor loop until the context is canceled.
func (m *KeyMonitor) Start(ctx context.Context) error {
	m.logger.Info("starting key expiry monitor",
		slog.Duration("interval", m.config.Interval),
		slog.Duration("expiry_warning", m.config.ExpiryWarning),
	)

	ticker := time.NewTicker(m.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("stopping key expiry monitor")
			return ctx.Err()
		case <-ticker.C:
			if err := m.Check(ctx); err != nil {
				m.logger.Error("key monitor check failed", slog.Any("error", err))
			}
		}
	}
}

// Check performs a single monitor pass.
func (m *KeyMonitor) Check(ctx context.Context) error {
	expiring, err := m.keyUseCase.ExpiringKeys(ctx, m.config.ExpiryWarning)
	if err != nil {
		return err
	}

	for _, key := range expiring {
		m.logger.Warn("encryption key expiring soon, rotation required",
			slog.String("key_id", key.ID.String()),
			slog.Uint64("version", uint64(key.Version)),
			slog.Time("expires_at", *key.ExpiresAt),
		)
		m.metrics.RecordOperation(ctx, "keys", "key_expiry_warning", "success")
	}

	due, err := m.keyRepo.ListDueForDeprecation(ctx, time.Now().UTC())
	if err != nil {
		return err
	}

	for _, key := range due {
		if err := m.keyUseCase.DeprecateKey(ctx, key.ID); err != nil {
			// Losing the transition race is fine; anything else is logged.
			if !apperrors.Is(err, cryptoDomain.ErrInvalidTransition) {
				m.logger.Error("failed to deprecate key",
					slog.String("key_id", key.ID.String()),
					slog.Any("error", err),
				)
			}
			continue
		}

		m.logger.Info("deprecated rotated-out key",
			slog.String("key_id", key.ID.String()),
			slog.Uint64("version", uint64(key.Version)),
		)
		m.metrics.RecordOperation(ctx, "keys", "key_deprecate", "success")
	}

	return nil
}
