package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	cryptoDomain "github.com/keywell/vault/internal/crypto/domain"
	"github.com/keywell/vault/internal/metrics"
)

// keyUseCaseWithMetrics decorates KeyUseCase with metrics instrumentation.
type keyUseCaseWithMetrics struct {
	next    KeyUseCase
	metrics metrics.BusinessMetrics
}

// NewKeyUseCaseWithMetrics wraps a KeyUseCase with metrics recording.
func NewKeyUseCaseWithMetrics(useCase KeyUseCase, m metrics.BusinessMetrics) KeyUseCase {
	return &keyUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// record emits the operation counter and duration histogram for one call.
func (k *keyUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	k.metrics.RecordOperation(ctx, "keys", operation, status)
	k.metrics.RecordDuration(ctx, "keys", operation, time.Since(start), status)
}

func (k *keyUseCaseWithMetrics) StoreKey(
	ctx context.Context,
	material []byte,
	version uint,
	algorithm cryptoDomain.Algorithm,
) (*cryptoDomain.EncryptionKey, error) {
	start := time.Now()
	key, err := k.next.StoreKey(ctx, material, version, algorithm)
	k.record(ctx, "key_store", start, err)
	return key, err
}

func (k *keyUseCaseWithMetrics) RetrieveActiveKey(ctx context.Context) (*cryptoDomain.ActiveKey, error) {
	start := time.Now()
	key, err := k.next.RetrieveActiveKey(ctx)
	k.record(ctx, "key_retrieve_active", start, err)
	return key, err
}

func (k *keyUseCaseWithMetrics) MaterialByVersion(ctx context.Context, version uint) ([]byte, error) {
	start := time.Now()
	material, err := k.next.MaterialByVersion(ctx, version)
	k.record(ctx, "key_material_by_version", start, err)
	return material, err
}

func (k *keyUseCaseWithMetrics) RotateKey(ctx context.Context, oldKeyID uuid.UUID) (uuid.UUID, error) {
	start := time.Now()
	id, err := k.next.RotateKey(ctx, oldKeyID)
	k.record(ctx, "key_rotate", start, err)
	return id, err
}

func (k *keyUseCaseWithMetrics) DeprecateKey(ctx context.Context, id uuid.UUID) error {
	start := time.Now()
	err := k.next.DeprecateKey(ctx, id)
	k.record(ctx, "key_deprecate", start, err)
	return err
}

func (k *keyUseCaseWithMetrics) DestroyKey(ctx context.Context, id uuid.UUID) error {
	start := time.Now()
	err := k.next.DestroyKey(ctx, id)
	k.record(ctx, "key_destroy", start, err)
	return err
}

func (k *keyUseCaseWithMetrics) ExpiringKeys(ctx context.Context, within time.Duration) ([]*cryptoDomain.EncryptionKey, error) {
	start := time.Now()
	keys, err := k.next.ExpiringKeys(ctx, within)
	k.record(ctx, "key_expiring", start, err)
	return keys, err
}

func (k *keyUseCaseWithMetrics) ListKeys(ctx context.Context) ([]*cryptoDomain.EncryptionKey, error) {
	start := time.Now()
	keys, err := k.next.ListKeys(ctx)
	k.record(ctx, "key_list", start, err)
	return keys, err
}
