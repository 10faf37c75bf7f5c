package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	accessDomain "github.com/keywell/vault/internal/access/domain"
	cryptoDomain "github.com/keywell/vault/internal/crypto/domain"
	cryptoService "github.com/keywell/vault/internal/crypto/service"
	"github.com/keywell/vault/internal/database"
	apperrors "github.com/keywell/vault/internal/errors"
	rotationDomain "github.com/keywell/vault/internal/rotation/domain"
	"github.com/keywell/vault/internal/vault/cache"
	vaultDomain "github.com/keywell/vault/internal/vault/domain"
	vaultService "github.com/keywell/vault/internal/vault/service"
)

// Change reasons written by internal operations.
const (
	rotationReason = "Automatic rotation"
	initialReason  = "Initial version"
)

// vaultUseCase implements the VaultUseCase interface.
type vaultUseCase struct {
	txManager      database.TxManager
	secretRepo     SecretRepository
	versionRepo    SecretVersionRepository
	scheduleRepo   ScheduleRepository
	accessChecker  AccessChecker
	auditLogger    AuditLogger
	keyProvider    KeyProvider
	cipher         cryptoService.Cipher
	valueGenerator vaultService.ValueGenerator
	secretCache    *cache.SecretCache
	logger         *slog.Logger
}

// NewVaultUseCase creates a new vault use case instance with the provided dependencies.
func NewVaultUseCase(
	txManager database.TxManager,
	secretRepo SecretRepository,
	versionRepo SecretVersionRepository,
	scheduleRepo ScheduleRepository,
	accessChecker AccessChecker,
	auditLogger AuditLogger,
	keyProvider KeyProvider,
	cipher cryptoService.Cipher,
	valueGenerator vaultService.ValueGenerator,
	secretCache *cache.SecretCache,
	logger *slog.Logger,
) VaultUseCase {
	return &vaultUseCase{
		txManager:      txManager,
		secretRepo:     secretRepo,
		versionRepo:    versionRepo,
		scheduleRepo:   scheduleRepo,
		accessChecker:  accessChecker,
		auditLogger:    auditLogger,
		keyProvider:    keyProvider,
		cipher:         cipher,
		valueGenerator: valueGenerator,
		secretCache:    secretCache,
		logger:         logger,
	}
}

// CreateSecret encrypts and stores a new secret with version 1.
func (v *vaultUseCase) CreateSecret(
	ctx context.Context,
	config SecretConfig,
	actor accessDomain.Actor,
) (*vaultDomain.Secret, error) {
	if !config.Type.IsValid() {
		return nil, vaultDomain.ErrInvalidSecretType
	}

	if err := v.authorize(ctx, nil, config.Name, accessDomain.OperationCreate, actor, nil); err != nil {
		return nil, err
	}

	activeKey, err := v.keyProvider.RetrieveActiveKey(ctx)
	if err != nil {
		return nil, err
	}

	encrypted, err := v.cipher.Encrypt(config.Value, activeKey.Material, activeKey.Key.Version)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	reason := initialReason
	secret := &vaultDomain.Secret{
		ID:                   uuid.Must(uuid.NewV7()),
		Name:                 config.Name,
		Type:                 config.Type,
		CurrentVersion:       1,
		Status:               vaultDomain.SecretStatusActive,
		RotationEnabled:      config.RotationEnabled,
		RotationIntervalDays: config.RotationIntervalDays,
		CreatedAt:            now,
		UpdatedAt:            now,
		ExpiresAt:            config.ExpiresAt,
		Tags:                 config.Tags,
		Metadata:             config.Metadata,
	}
	version := &vaultDomain.SecretVersion{
		ID:            uuid.Must(uuid.NewV7()),
		SecretID:      secret.ID,
		VersionNumber: 1,
		Ciphertext:    encrypted.Ciphertext,
		IV:            encrypted.IV,
		Salt:          encrypted.Salt,
		KeyVersion:    encrypted.KeyVersion,
		IsCurrent:     true,
		CreatedBy:     actorLabel(actor),
		CreatedAt:     now,
		ChangeReason:  &reason,
	}

	err = v.txManager.WithTx(ctx, func(txCtx context.Context) error {
		if err := v.secretRepo.Create(txCtx, secret); err != nil {
			return err
		}
		if err := v.versionRepo.Create(txCtx, version); err != nil {
			return err
		}
		if secret.RotationEnabled {
			return v.scheduleNextRotation(txCtx, secret)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	v.recordAccess(ctx, secret, config.Name, actor, accessDomain.OperationCreate, true)
	return secret, nil
}

// GetSecret returns the decrypted value of the requested version.
func (v *vaultUseCase) GetSecret(
	ctx context.Context,
	name string,
	actor accessDomain.Actor,
	version uint,
) (*SecretValue, error) {
	secret, err := v.secretRepo.GetByName(ctx, name)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			v.recordAccess(ctx, nil, name, actor, accessDomain.OperationRead, false)
		}
		return nil, err
	}

	if err := v.authorize(ctx, secret, name, accessDomain.OperationRead, actor, nil); err != nil {
		return nil, err
	}

	if !secret.Status.Readable() {
		v.recordAccess(ctx, secret, name, actor, accessDomain.OperationRead, false)
		return nil, vaultDomain.ErrSecretNotActive
	}

	cacheKey := cache.Key(name, version)
	if plaintext, ok := v.secretCache.Get(cacheKey); ok {
		v.recordAccess(ctx, secret, name, actor, accessDomain.OperationRead, true)
		return &SecretValue{Secret: secret, Version: resolvedVersion(secret, version), Plaintext: plaintext}, nil
	}

	plaintext, versionNumber, err := v.decryptVersion(ctx, secret, version)
	if err != nil {
		v.recordAccess(ctx, secret, name, actor, accessDomain.OperationRead, false)
		return nil, err
	}

	v.secretCache.Set(cacheKey, plaintext)
	v.recordAccess(ctx, secret, name, actor, accessDomain.OperationRead, true)

	return &SecretValue{Secret: secret, Version: versionNumber, Plaintext: plaintext}, nil
}

// UpdateSecret stores a new value as the next version and makes it current.
// The rotating status is held as a lock for the duration, so revoked secrets
// and secrets mid-rotation reject the update.
func (v *vaultUseCase) UpdateSecret(
	ctx context.Context,
	name string,
	value []byte,
	actor accessDomain.Actor,
	reason string,
) (*vaultDomain.Secret, error) {
	if err := v.authorize(ctx, nil, name, accessDomain.OperationUpdate, actor, nil); err != nil {
		return nil, err
	}

	secret, err := v.secretRepo.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}

	err = v.withRotatingLock(ctx, secret, func() error {
		return v.appendVersion(ctx, secret, value, actor, reason)
	})
	if err != nil {
		v.recordAccess(ctx, secret, name, actor, accessDomain.OperationUpdate, false)
		return nil, err
	}

	v.secretCache.Invalidate(name)
	v.recordAccess(ctx, secret, name, actor, accessDomain.OperationUpdate, true)
	return secret, nil
}

// RotateSecret generates a fresh value and stores it as the next version.
// The rotating status is held as a lock for the duration and is always
// released: back to active on success, restored to active on failure.
func (v *vaultUseCase) RotateSecret(
	ctx context.Context,
	name string,
	actor accessDomain.Actor,
) (*vaultDomain.Secret, error) {
	if err := v.authorize(ctx, nil, name, accessDomain.OperationRotate, actor, nil); err != nil {
		return nil, err
	}

	secret, err := v.secretRepo.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}

	err = v.withRotatingLock(ctx, secret, func() error {
		return v.performRotation(ctx, secret, actor)
	})
	if err != nil {
		v.recordAccess(ctx, secret, name, actor, accessDomain.OperationRotate, false)
		return nil, err
	}

	v.secretCache.Invalidate(name)
	v.recordAccess(ctx, secret, name, actor, accessDomain.OperationRotate, true)
	return secret, nil
}

// performRotation generates and persists the new value while the rotating
// lock is held.
func (v *vaultUseCase) performRotation(
	ctx context.Context,
	secret *vaultDomain.Secret,
	actor accessDomain.Actor,
) error {
	value, err := v.valueGenerator.Generate(secret.Type)
	if err != nil {
		return err
	}
	defer cryptoDomain.Zero(value)

	if err := v.appendVersion(ctx, secret, value, actor, rotationReason); err != nil {
		return err
	}

	if secret.RotationEnabled {
		if err := v.scheduleNextRotation(ctx, secret); err != nil {
			// The rotation itself succeeded; a missed reschedule is logged
			// and picked up by the next operator review.
			v.logger.Error(
				"failed to schedule next rotation",
				slog.String("secret", secret.Name),
				slog.Any("error", err),
			)
		}
	}
	return nil
}

// withRotatingLock runs fn while holding the secret's rotating status. The
// lock is only acquired from active, so a revoked secret or one already
// rotating rejects the mutation with ErrSecretNotActive. Every ciphertext
// mutation after creation goes through here.
func (v *vaultUseCase) withRotatingLock(
	ctx context.Context,
	secret *vaultDomain.Secret,
	fn func() error,
) error {
	locked, err := v.secretRepo.TransitionStatus(
		ctx,
		secret.ID,
		vaultDomain.SecretStatusActive,
		vaultDomain.SecretStatusRotating,
	)
	if err != nil {
		return err
	}
	if !locked {
		return vaultDomain.ErrSecretNotActive
	}

	fnErr := fn()

	// The lock must be released on both paths. A failed release leaves the
	// secret flagged by the staleness scan instead of silently unlocked.
	released, releaseErr := v.secretRepo.TransitionStatus(
		ctx,
		secret.ID,
		vaultDomain.SecretStatusRotating,
		vaultDomain.SecretStatusActive,
	)
	if releaseErr != nil || !released {
		v.logger.Error(
			"failed to release rotating status",
			slog.String("secret", secret.Name),
			slog.Any("error", releaseErr),
		)
	}
	return fnErr
}

// RevokeSecret permanently blocks reads of the secret.
func (v *vaultUseCase) RevokeSecret(ctx context.Context, name string, actor accessDomain.Actor) error {
	if err := v.authorize(ctx, nil, name, accessDomain.OperationRevoke, actor, nil); err != nil {
		return err
	}

	secret, err := v.secretRepo.GetByName(ctx, name)
	if err != nil {
		return err
	}

	if !secret.Status.CanTransitionTo(vaultDomain.SecretStatusRevoked) {
		return vaultDomain.ErrInvalidTransition
	}

	moved, err := v.secretRepo.TransitionStatus(ctx, secret.ID, secret.Status, vaultDomain.SecretStatusRevoked)
	if err != nil {
		return err
	}
	if !moved {
		return vaultDomain.ErrInvalidTransition
	}

	v.secretCache.Invalidate(name)
	v.recordAccess(ctx, secret, name, actor, accessDomain.OperationRevoke, true)
	return nil
}

// RollbackSecret re-applies a historical version's value as a new forward
// version, holding the rotating status like UpdateSecret does.
func (v *vaultUseCase) RollbackSecret(
	ctx context.Context,
	name string,
	version uint,
	actor accessDomain.Actor,
) (*vaultDomain.Secret, error) {
	if err := v.authorize(ctx, nil, name, accessDomain.OperationUpdate, actor, nil); err != nil {
		return nil, err
	}

	secret, err := v.secretRepo.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}

	err = v.withRotatingLock(ctx, secret, func() error {
		plaintext, _, err := v.decryptVersion(ctx, secret, version)
		if err != nil {
			return err
		}
		defer cryptoDomain.Zero(plaintext)

		reason := fmt.Sprintf("Rollback to version %d", version)
		return v.appendVersion(ctx, secret, plaintext, actor, reason)
	})
	if err != nil {
		v.recordAccess(ctx, secret, name, actor, accessDomain.OperationUpdate, false)
		return nil, err
	}

	v.secretCache.Invalidate(name)
	v.recordAccess(ctx, secret, name, actor, accessDomain.OperationUpdate, true)
	return secret, nil
}

// ListSecrets returns secret metadata without values.
func (v *vaultUseCase) ListSecrets(
	ctx context.Context,
	actor accessDomain.Actor,
	offset, limit int,
) ([]*vaultDomain.Secret, error) {
	return v.secretRepo.List(ctx, offset, limit)
}

// GetSecretVersions returns version metadata with ciphertext fields cleared.
func (v *vaultUseCase) GetSecretVersions(ctx context.Context, name string) ([]*vaultDomain.SecretVersion, error) {
	secret, err := v.secretRepo.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}

	versions, err := v.versionRepo.ListBySecret(ctx, secret.ID)
	if err != nil {
		return nil, err
	}

	for _, version := range versions {
		version.Ciphertext = nil
		version.IV = nil
		version.Salt = nil
	}
	return versions, nil
}

// ListSecretsByStatus returns all secrets in the given status.
func (v *vaultUseCase) ListSecretsByStatus(
	ctx context.Context,
	status vaultDomain.SecretStatus,
) ([]*vaultDomain.Secret, error) {
	return v.secretRepo.ListByStatus(ctx, status)
}

// ListStuckRotating returns secrets holding the rotating status for longer
// than staleAfter.
func (v *vaultUseCase) ListStuckRotating(
	ctx context.Context,
	staleAfter time.Duration,
) ([]*vaultDomain.Secret, error) {
	cutoff := time.Now().UTC().Add(-staleAfter)
	return v.secretRepo.ListStuckRotating(ctx, cutoff)
}

// CountSecrets returns total and rotation-enabled secret counts.
func (v *vaultUseCase) CountSecrets(ctx context.Context) (uint, uint, error) {
	total, err := v.secretRepo.Count(ctx)
	if err != nil {
		return 0, 0, err
	}
	rotationEnabled, err := v.secretRepo.CountRotationEnabled(ctx)
	if err != nil {
		return 0, 0, err
	}
	return total, rotationEnabled, nil
}

// authorize runs the access check and translates a denial into
// ErrAccessDenied. Every denial is audit-logged here, so mutating and
// reading paths record them uniformly. The secret is nil when the caller
// has not loaded it yet.
func (v *vaultUseCase) authorize(
	ctx context.Context,
	secret *vaultDomain.Secret,
	name string,
	operation accessDomain.Operation,
	actor accessDomain.Actor,
	requestContext map[string]string,
) error {
	granted, err := v.accessChecker.CheckAccess(ctx, name, operation, actor, requestContext)
	if err != nil {
		return err
	}
	if !granted {
		v.recordAccess(ctx, secret, name, actor, operation, false)
		return accessDomain.ErrAccessDenied
	}
	return nil
}

// appendVersion inserts the next version row, flips the current flag, and
// bumps the secret's current version in one transaction.
func (v *vaultUseCase) appendVersion(
	ctx context.Context,
	secret *vaultDomain.Secret,
	value []byte,
	actor accessDomain.Actor,
	reason string,
) error {
	activeKey, err := v.keyProvider.RetrieveActiveKey(ctx)
	if err != nil {
		return err
	}

	encrypted, err := v.cipher.Encrypt(value, activeKey.Material, activeKey.Key.Version)
	if err != nil {
		return err
	}

	nextNumber := secret.CurrentVersion + 1
	version := &vaultDomain.SecretVersion{
		ID:            uuid.Must(uuid.NewV7()),
		SecretID:      secret.ID,
		VersionNumber: nextNumber,
		Ciphertext:    encrypted.Ciphertext,
		IV:            encrypted.IV,
		Salt:          encrypted.Salt,
		KeyVersion:    encrypted.KeyVersion,
		IsCurrent:     true,
		CreatedBy:     actorLabel(actor),
		CreatedAt:     time.Now().UTC(),
		ChangeReason:  &reason,
	}

	err = v.txManager.WithTx(ctx, func(txCtx context.Context) error {
		if err := v.versionRepo.ClearCurrent(txCtx, secret.ID); err != nil {
			return err
		}
		if err := v.versionRepo.Create(txCtx, version); err != nil {
			return err
		}
		return v.secretRepo.SetCurrentVersion(txCtx, secret.ID, nextNumber)
	})
	if err != nil {
		return err
	}

	secret.CurrentVersion = nextNumber
	return nil
}

// decryptVersion loads and decrypts the requested version, or the current
// version when version is zero.
func (v *vaultUseCase) decryptVersion(
	ctx context.Context,
	secret *vaultDomain.Secret,
	version uint,
) ([]byte, uint, error) {
	var row *vaultDomain.SecretVersion
	var err error

	if version == 0 {
		row, err = v.versionRepo.GetCurrent(ctx, secret.ID)
	} else {
		row, err = v.versionRepo.GetByNumber(ctx, secret.ID, version)
	}
	if err != nil {
		return nil, 0, err
	}

	material, err := v.keyProvider.MaterialByVersion(ctx, row.KeyVersion)
	if err != nil {
		return nil, 0, err
	}

	plaintext, err := v.cipher.Decrypt(cryptoDomain.EncryptedValue{
		Ciphertext: row.Ciphertext,
		IV:         row.IV,
		Salt:       row.Salt,
		KeyVersion: row.KeyVersion,
	}, material)
	if err != nil {
		return nil, 0, err
	}

	return plaintext, row.VersionNumber, nil
}

// scheduleNextRotation creates the next automatic rotation schedule unless
// the secret already has an open one.
func (v *vaultUseCase) scheduleNextRotation(ctx context.Context, secret *vaultDomain.Secret) error {
	existing, err := v.scheduleRepo.GetOpenBySecret(ctx, secret.ID)
	if err != nil && !apperrors.Is(err, apperrors.ErrNotFound) {
		return err
	}
	if existing != nil {
		return nil
	}

	interval := time.Duration(secret.RotationIntervalDays) * 24 * time.Hour
	schedule := &rotationDomain.RotationSchedule{
		ID:           uuid.Must(uuid.NewV7()),
		SecretID:     secret.ID,
		ScheduledAt:  time.Now().UTC().Add(interval),
		RotationType: rotationDomain.RotationTypeAutomatic,
		CreatedAt:    time.Now().UTC(),
	}
	return v.scheduleRepo.Create(ctx, schedule)
}

// recordAccess audit-logs an access decision. Failures inside the logger are
// swallowed; the entry itself is always attempted.
func (v *vaultUseCase) recordAccess(
	ctx context.Context,
	secret *vaultDomain.Secret,
	name string,
	actor accessDomain.Actor,
	operation accessDomain.Operation,
	granted bool,
) {
	entry := &accessDomain.AccessLogEntry{
		ID:         uuid.Must(uuid.NewV7()),
		SecretName: name,
		AccessedBy: actorLabel(actor),
		AccessType: operation,
		Granted:    granted,
		Timestamp:  time.Now().UTC(),
	}
	if secret != nil {
		id := secret.ID
		entry.SecretID = &id
	}
	v.auditLogger.RecordAccess(ctx, entry)
}

// resolvedVersion maps the zero version request to the current version number.
func resolvedVersion(secret *vaultDomain.Secret, version uint) uint {
	if version == 0 {
		return secret.CurrentVersion
	}
	return version
}

// actorLabel renders the actor for audit rows and version attribution.
func actorLabel(actor accessDomain.Actor) string {
	if actor.UserID != "" {
		return actor.UserID
	}
	if actor.Service != "" {
		return actor.Service
	}
	return "anonymous"
}
