// Package usecase implements the secrets vault: create, read, update, rotate,
// revoke, and rollback over append-only version history, with access-control
// gating, audit logging, and a TTL cache in front of decryption.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	accessDomain "github.com/keywell/vault/internal/access/domain"
	cryptoDomain "github.com/keywell/vault/internal/crypto/domain"
	rotationDomain "github.com/keywell/vault/internal/rotation/domain"
	vaultDomain "github.com/keywell/vault/internal/vault/domain"
)

// SecretRepository defines persistence operations for Secret metadata.
type SecretRepository interface {
	Create(ctx context.Context, secret *vaultDomain.Secret) error
	Get(ctx context.Context, id uuid.UUID) (*vaultDomain.Secret, error)
	GetByName(ctx context.Context, name string) (*vaultDomain.Secret, error)
	List(ctx context.Context, offset, limit int) ([]*vaultDomain.Secret, error)
	ListByStatus(ctx context.Context, status vaultDomain.SecretStatus) ([]*vaultDomain.Secret, error)
	ListStuckRotating(ctx context.Context, cutoff time.Time) ([]*vaultDomain.Secret, error)
	TransitionStatus(ctx context.Context, id uuid.UUID, from, to vaultDomain.SecretStatus) (bool, error)
	SetCurrentVersion(ctx context.Context, id uuid.UUID, version uint) error
	Count(ctx context.Context) (uint, error)
	CountRotationEnabled(ctx context.Context) (uint, error)
}

// SecretVersionRepository defines persistence operations for SecretVersion rows.
type SecretVersionRepository interface {
	Create(ctx context.Context, version *vaultDomain.SecretVersion) error
	GetCurrent(ctx context.Context, secretID uuid.UUID) (*vaultDomain.SecretVersion, error)
	GetByNumber(ctx context.Context, secretID uuid.UUID, number uint) (*vaultDomain.SecretVersion, error)
	ListBySecret(ctx context.Context, secretID uuid.UUID) ([]*vaultDomain.SecretVersion, error)
	ClearCurrent(ctx context.Context, secretID uuid.UUID) error
}

// AccessChecker gates every vault operation before any ciphertext is touched.
type AccessChecker interface {
	CheckAccess(
		ctx context.Context,
		secretName string,
		operation accessDomain.Operation,
		actor accessDomain.Actor,
		requestContext map[string]string,
	) (bool, error)
}

// AuditLogger durably records access decisions. Logging failures are
// swallowed by implementations; recording must never block the primary
// operation.
type AuditLogger interface {
	RecordAccess(ctx context.Context, entry *accessDomain.AccessLogEntry)
}

// KeyProvider resolves encryption key material from the key manager. It is
// a subset of the key manager's use case interface.
type KeyProvider interface {
	RetrieveActiveKey(ctx context.Context) (*cryptoDomain.ActiveKey, error)
	MaterialByVersion(ctx context.Context, version uint) ([]byte, error)
}

// ScheduleRepository is the slice of rotation-schedule persistence the vault
// needs to plan the next automatic rotation after a create or rotate.
type ScheduleRepository interface {
	Create(ctx context.Context, schedule *rotationDomain.RotationSchedule) error
	GetOpenBySecret(ctx context.Context, secretID uuid.UUID) (*rotationDomain.RotationSchedule, error)
}

// SecretConfig is the caller-supplied definition of a new secret.
type SecretConfig struct {
	Name                 string
	Type                 vaultDomain.SecretType
	Value                []byte
	RotationEnabled      bool
	RotationIntervalDays uint
	ExpiresAt            *time.Time
	Tags                 []string
	Metadata             map[string]string
}

// SecretValue is a decrypted read result.
type SecretValue struct {
	Secret    *vaultDomain.Secret
	Version   uint
	Plaintext []byte
}

// VaultUseCase defines the business operations for secret management.
type VaultUseCase interface {
	// CreateSecret encrypts and stores a new secret with version 1 and
	// schedules the first rotation when rotation is enabled.
	CreateSecret(ctx context.Context, config SecretConfig, actor accessDomain.Actor) (*vaultDomain.Secret, error)

	// GetSecret returns the decrypted value of the requested version, or the
	// current version when version is zero. Every attempt is audit-logged.
	GetSecret(ctx context.Context, name string, actor accessDomain.Actor, version uint) (*SecretValue, error)

	// UpdateSecret stores a new value as the next version and makes it current.
	UpdateSecret(ctx context.Context, name string, value []byte, actor accessDomain.Actor, reason string) (*vaultDomain.Secret, error)

	// RotateSecret generates a fresh value for the secret's type and stores it
	// as the next version, holding the rotating status as a lock throughout.
	RotateSecret(ctx context.Context, name string, actor accessDomain.Actor) (*vaultDomain.Secret, error)

	// RevokeSecret permanently blocks reads of the secret.
	RevokeSecret(ctx context.Context, name string, actor accessDomain.Actor) error

	// RollbackSecret re-applies a historical version's value as a new forward
	// version; old rows are never resurrected.
	RollbackSecret(ctx context.Context, name string, version uint, actor accessDomain.Actor) (*vaultDomain.Secret, error)

	// ListSecrets returns secret metadata without values.
	ListSecrets(ctx context.Context, actor accessDomain.Actor, offset, limit int) ([]*vaultDomain.Secret, error)

	// GetSecretVersions returns version metadata without plaintext.
	GetSecretVersions(ctx context.Context, name string) ([]*vaultDomain.SecretVersion, error)

	// ListSecretsByStatus returns all secrets in the given status.
	ListSecretsByStatus(ctx context.Context, status vaultDomain.SecretStatus) ([]*vaultDomain.Secret, error)

	// ListStuckRotating returns secrets holding the rotating status for longer
	// than staleAfter. They require operator intervention.
	ListStuckRotating(ctx context.Context, staleAfter time.Duration) ([]*vaultDomain.Secret, error)

	// CountSecrets returns total and rotation-enabled secret counts.
	CountSecrets(ctx context.Context) (total, rotationEnabled uint, err error)
}
