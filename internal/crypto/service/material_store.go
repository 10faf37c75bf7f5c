package service

import (
	"context"
	"fmt"

	"gocloud.dev/secrets"

	cryptoDomain "github.com/keywell/vault/internal/crypto/domain"
	apperrors "github.com/keywell/vault/internal/errors"

	// Register all keeper provider drivers
	_ "gocloud.dev/secrets/awskms"
	_ "gocloud.dev/secrets/azurekeyvault"
	_ "gocloud.dev/secrets/gcpkms"
	_ "gocloud.dev/secrets/hashivault"
	_ "gocloud.dev/secrets/localsecrets"
)

// Keeper is the subset of *secrets.Keeper used to wrap key material.
type Keeper interface {
	Encrypt(ctx context.Context, plaintext []byte) ([]byte, error)
	Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error)
}

// OpenKeeper opens a secrets.Keeper for the configured provider using keeperURI.
// Supports: gcpkms://, awskms://, azurekeyvault://, hashivault://, base64key://
func OpenKeeper(ctx context.Context, keeperURI string) (*secrets.Keeper, error) {
	keeper, err := secrets.OpenKeeper(ctx, keeperURI)
	if err != nil {
		return nil, fmt.Errorf("failed to open keeper: %w", err)
	}
	return keeper, nil
}

// MaterialRepository persists wrapped key material rows. It is a separate
// table from key metadata; only the key ID links the two.
type MaterialRepository interface {
	Get(ctx context.Context, keyID string) ([]byte, error)
	Put(ctx context.Context, keyID string, wrapped []byte) error
	Delete(ctx context.Context, keyID string) error
}

// keeperMaterialStore implements KeyMaterialStore by wrapping material with a
// KMS-backed keeper before handing it to the repository. Raw material never
// reaches storage in plaintext, and deleting a row is irrecoverable because
// the wrapped bytes are the only copy.
type keeperMaterialStore struct {
	keeper Keeper
	repo   MaterialRepository
}

// NewKeeperMaterialStore creates a KeyMaterialStore backed by keeper and repo.
func NewKeeperMaterialStore(keeper Keeper, repo MaterialRepository) KeyMaterialStore {
	return &keeperMaterialStore{
		keeper: keeper,
		repo:   repo,
	}
}

// Get loads and unwraps the material for keyID. Returns ErrKeyNotFound when
// the material row no longer exists (destroyed or never stored).
func (s *keeperMaterialStore) Get(ctx context.Context, keyID string) ([]byte, error) {
	wrapped, err := s.repo.Get(ctx, keyID)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, cryptoDomain.ErrKeyNotFound
		}
		return nil, err
	}

	material, err := s.keeper.Decrypt(ctx, wrapped)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to unwrap key material")
	}

	return material, nil
}

// Put wraps material with the keeper and persists the wrapped bytes.
func (s *keeperMaterialStore) Put(ctx context.Context, keyID string, material []byte) error {
	if len(material) != cryptoDomain.KeySize {
		return cryptoDomain.ErrInvalidKeySize
	}

	wrapped, err := s.keeper.Encrypt(ctx, material)
	if err != nil {
		return apperrors.Wrap(err, "failed to wrap key material")
	}

	return s.repo.Put(ctx, keyID, wrapped)
}

// Delete removes the wrapped material irrecoverably.
func (s *keeperMaterialStore) Delete(ctx context.Context, keyID string) error {
	return s.repo.Delete(ctx, keyID)
}
