package usecase

import (
	"context"
	"time"

	accessDomain "github.com/keywell/vault/internal/access/domain"
	"github.com/keywell/vault/internal/metrics"
	vaultDomain "github.com/keywell/vault/internal/vault/domain"
)

// vaultUseCaseWithMetrics decorates VaultUseCase with metrics instrumentation.
type vaultUseCaseWithMetrics struct {
	next    VaultUseCase
	metrics metrics.BusinessMetrics
}

// NewVaultUseCaseWithMetrics wraps a VaultUseCase with metrics recording.
func NewVaultUseCaseWithMetrics(useCase VaultUseCase, m metrics.BusinessMetrics) VaultUseCase {
	return &vaultUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// record emits the operation counter and duration histogram for one call.
func (v *vaultUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	v.metrics.RecordOperation(ctx, "vault", operation, status)
	v.metrics.RecordDuration(ctx, "vault", operation, time.Since(start), status)
}

func (v *vaultUseCaseWithMetrics) CreateSecret(
	ctx context.Context,
	config SecretConfig,
	actor accessDomain.Actor,
) (*vaultDomain.Secret, error) {
	start := time.Now()
	secret, err := v.next.CreateSecret(ctx, config, actor)
	v.record(ctx, "secret_create", start, err)
	return secret, err
}

func (v *vaultUseCaseWithMetrics) GetSecret(
	ctx context.Context,
	name string,
	actor accessDomain.Actor,
	version uint,
) (*SecretValue, error) {
	start := time.Now()
	value, err := v.next.GetSecret(ctx, name, actor, version)
	v.record(ctx, "secret_get", start, err)
	return value, err
}

func (v *vaultUseCaseWithMetrics) UpdateSecret(
	ctx context.Context,
	name string,
	value []byte,
	actor accessDomain.Actor,
	reason string,
) (*vaultDomain.Secret, error) {
	start := time.Now()
	secret, err := v.next.UpdateSecret(ctx, name, value, actor, reason)
	v.record(ctx, "secret_update", start, err)
	return secret, err
}

func (v *vaultUseCaseWithMetrics) RotateSecret(
	ctx context.Context,
	name string,
	actor accessDomain.Actor,
) (*vaultDomain.Secret, error) {
	start := time.Now()
	secret, err := v.next.RotateSecret(ctx, name, actor)
	v.record(ctx, "secret_rotate", start, err)
	return secret, err
}

func (v *vaultUseCaseWithMetrics) RevokeSecret(ctx context.Context, name string, actor accessDomain.Actor) error {
	start := time.Now()
	err := v.next.RevokeSecret(ctx, name, actor)
	v.record(ctx, "secret_revoke", start, err)
	return err
}

func (v *vaultUseCaseWithMetrics) RollbackSecret(
	ctx context.Context,
	name string,
	version uint,
	actor accessDomain.Actor,
) (*vaultDomain.Secret, error) {
	start := time.Now()
	secret, err := v.next.RollbackSecret(ctx, name, version, actor)
	v.record(ctx, "secret_rollback", start, err)
	return secret, err
}

func (v *vaultUseCaseWithMetrics) ListSecrets(
	ctx context.Context,
	actor accessDomain.Actor,
	offset, limit int,
) ([]*vaultDomain.Secret, error) {
	start := time.Now()
	secrets, err := v.next.ListSecrets(ctx, actor, offset, limit)
	v.record(ctx, "secret_list", start, err)
	return secrets, err
}

func (v *vaultUseCaseWithMetrics) GetSecretVersions(ctx context.Context, name string) ([]*vaultDomain.SecretVersion, error) {
	start := time.Now()
	versions, err := v.next.GetSecretVersions(ctx, name)
	v.record(ctx, "secret_versions", start, err)
	return versions, err
}

func (v *vaultUseCaseWithMetrics) ListSecretsByStatus(
	ctx context.Context,
	status vaultDomain.SecretStatus,
) ([]*vaultDomain.Secret, error) {
	start := time.Now()
	secrets, err := v.next.ListSecretsByStatus(ctx, status)
	v.record(ctx, "secret_list_by_status", start, err)
	return secrets, err
}

func (v *vaultUseCaseWithMetrics) ListStuckRotating(
	ctx context.Context,
	staleAfter time.Duration,
) ([]*vaultDomain.Secret, error) {
	start := time.Now()
	secrets, err := v.next.ListStuckRotating(ctx, staleAfter)
	v.record(ctx, "secret_stuck_rotating", start, err)
	return secrets, err
}

func (v *vaultUseCaseWithMetrics) CountSecrets(ctx context.Context) (uint, uint, error) {
	start := time.Now()
	total, rotationEnabled, err := v.next.CountSecrets(ctx)
	v.record(ctx, "secret_count", start, err)
	return total, rotationEnabled, err
}
