// Package usecase implements business logic orchestration for the encryption
// key lifecycle: storage, active-key lookup, rotation, deprecation, and
// destruction, plus the background expiry monitor.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	cryptoDomain "github.com/keywell/vault/internal/crypto/domain"
)

// KeyRepository defines encryption key metadata persistence operations.
type KeyRepository interface {
	Create(ctx context.Context, key *cryptoDomain.EncryptionKey) error
	Get(ctx context.Context, id uuid.UUID) (*cryptoDomain.EncryptionKey, error)
	GetByVersion(ctx context.Context, version uint) (*cryptoDomain.EncryptionKey, error)
	GetActive(ctx context.Context) (*cryptoDomain.EncryptionKey, error)
	List(ctx context.Context) ([]*cryptoDomain.EncryptionKey, error)
	TransitionStatus(ctx context.Context, id uuid.UUID, from, to cryptoDomain.KeyStatus) (bool, error)
	SetDeprecateAt(ctx context.Context, id uuid.UUID, at time.Time) error
	ListExpiring(ctx context.Context, before time.Time) ([]*cryptoDomain.EncryptionKey, error)
	ListDueForDeprecation(ctx context.Context, now time.Time) ([]*cryptoDomain.EncryptionKey, error)
}

// KeyUseCase manages the lifecycle of symmetric encryption keys and exposes
// active-key and by-version material lookup to the vault.
type KeyUseCase interface {
	// StoreKey persists key metadata and hands the raw material to the
	// separate material store. Material and metadata never share a record.
	StoreKey(ctx context.Context, material []byte, version uint, algorithm cryptoDomain.Algorithm) (*cryptoDomain.EncryptionKey, error)

	// RetrieveActiveKey returns the highest-version active key with its
	// unwrapped material. Fails with ErrNoActiveKey when none exists.
	RetrieveActiveKey(ctx context.Context) (*cryptoDomain.ActiveKey, error)

	// MaterialByVersion returns the key material for the key that encrypted
	// a given ciphertext. Fails with ErrKeyDestroyed once the key has been
	// destroyed; the failure is permanent.
	MaterialByVersion(ctx context.Context, version uint) ([]byte, error)

	// RotateKey retires the old key and promotes a freshly generated one.
	RotateKey(ctx context.Context, oldKeyID uuid.UUID) (uuid.UUID, error)

	// DeprecateKey moves a rotated-out key to deprecated.
	DeprecateKey(ctx context.Context, id uuid.UUID) error

	// DestroyKey irreversibly destroys a key and deletes its material.
	DestroyKey(ctx context.Context, id uuid.UUID) error

	// ExpiringKeys returns active keys expiring within the given window.
	ExpiringKeys(ctx context.Context, within time.Duration) ([]*cryptoDomain.EncryptionKey, error)

	// ListKeys returns all key metadata ordered by version descending.
	ListKeys(ctx context.Context) ([]*cryptoDomain.EncryptionKey, error)
}
