package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	cryptoDomain "github.com/keywell/vault/internal/crypto/domain"
	cryptoService "github.com/keywell/vault/internal/crypto/service"
	"github.com/keywell/vault/internal/database"
	apperrors "github.com/keywell/vault/internal/errors"
)

// Config holds key lifecycle configuration.
type Config struct {
	// KeyExpiry is the default lifetime for a newly stored key.
	KeyExpiry time.Duration
	// DeprecationDelay is how long a rotated-out key stays decrypt-only
	// before becoming eligible for deprecation.
	DeprecationDelay time.Duration
}

// keyUseCase implements the KeyUseCase interface.
type keyUseCase struct {
	config        Config
	txManager     database.TxManager
	keyRepo       KeyRepository
	materialStore cryptoService.KeyMaterialStore
}

// NewKeyUseCase creates a new key use case instance with the provided dependencies.
func NewKeyUseCase(
	config Config,
	txManager database.TxManager,
	keyRepo KeyRepository,
	materialStore cryptoService.KeyMaterialStore,
) KeyUseCase {
	return &keyUseCase{
		config:        config,
		txManager:     txManager,
		keyRepo:       keyRepo,
		materialStore: materialStore,
	}
}

// StoreKey persists key metadata and stores the raw material separately.
func (k *keyUseCase) StoreKey(
	ctx context.Context,
	material []byte,
	version uint,
	algorithm cryptoDomain.Algorithm,
) (*cryptoDomain.EncryptionKey, error) {
	if len(material) != cryptoDomain.KeySize {
		return nil, cryptoDomain.ErrInvalidKeySize
	}
	if algorithm != cryptoDomain.AES256CBC {
		return nil, cryptoDomain.ErrUnsupportedAlgorithm
	}

	now := time.Now().UTC()
	expiresAt := now.Add(k.config.KeyExpiry)

	key := &cryptoDomain.EncryptionKey{
		ID:        uuid.Must(uuid.NewV7()),
		Version:   version,
		Algorithm: algorithm,
		Status:    cryptoDomain.KeyStatusActive,
		CreatedAt: now,
		ExpiresAt: &expiresAt,
	}

	err := k.txManager.WithTx(ctx, func(txCtx context.Context) error {
		if err := k.keyRepo.Create(txCtx, key); err != nil {
			return err
		}
		return k.materialStore.Put(txCtx, key.ID.String(), material)
	})
	if err != nil {
		return nil, err
	}

	return key, nil
}

// RetrieveActiveKey returns the current encrypting key with its material.
func (k *keyUseCase) RetrieveActiveKey(ctx context.Context) (*cryptoDomain.ActiveKey, error) {
	key, err := k.keyRepo.GetActive(ctx)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, cryptoDomain.ErrNoActiveKey
		}
		return nil, err
	}

	material, err := k.materialStore.Get(ctx, key.ID.String())
	if err != nil {
		return nil, err
	}

	return &cryptoDomain.ActiveKey{Key: *key, Material: material}, nil
}

// MaterialByVersion resolves key material for decrypting old ciphertext.
func (k *keyUseCase) MaterialByVersion(ctx context.Context, version uint) ([]byte, error) {
	key, err := k.keyRepo.GetByVersion(ctx, version)
	if err != nil {
		return nil, err
	}

	if key.Status == cryptoDomain.KeyStatusDestroyed {
		return nil, cryptoDomain.ErrKeyDestroyed
	}

	material, err := k.materialStore.Get(ctx, key.ID.String())
	if err != nil {
		if apperrors.Is(err, cryptoDomain.ErrKeyNotFound) {
			// Metadata exists but material is gone: the key was destroyed.
			return nil, cryptoDomain.ErrKeyDestroyed
		}
		return nil, err
	}

	return material, nil
}

// RotateKey retires oldKeyID and promotes a freshly generated key as the sole
// active key. The old key keeps decrypting ciphertext tagged with its version
// until its deprecation date passes.
func (k *keyUseCase) RotateKey(ctx context.Context, oldKeyID uuid.UUID) (uuid.UUID, error) {
	oldKey, err := k.keyRepo.Get(ctx, oldKeyID)
	if err != nil {
		return uuid.Nil, err
	}

	material, err := cryptoService.GenerateKeyMaterial()
	if err != nil {
		return uuid.Nil, err
	}
	defer cryptoDomain.Zero(material)

	now := time.Now().UTC()
	expiresAt := now.Add(k.config.KeyExpiry)

	newKey := &cryptoDomain.EncryptionKey{
		ID:        uuid.Must(uuid.NewV7()),
		Version:   oldKey.Version + 1,
		Algorithm: oldKey.Algorithm,
		Status:    cryptoDomain.KeyStatusActive,
		CreatedAt: now,
		ExpiresAt: &expiresAt,
	}

	err = k.txManager.WithTx(ctx, func(txCtx context.Context) error {
		moved, err := k.keyRepo.TransitionStatus(
			txCtx,
			oldKey.ID,
			cryptoDomain.KeyStatusActive,
			cryptoDomain.KeyStatusRotating,
		)
		if err != nil {
			return err
		}
		if !moved {
			// Another rotation got there first, or the key was never active.
			return cryptoDomain.ErrInvalidTransition
		}

		if err := k.keyRepo.SetDeprecateAt(txCtx, oldKey.ID, now.Add(k.config.DeprecationDelay)); err != nil {
			return err
		}

		if err := k.keyRepo.Create(txCtx, newKey); err != nil {
			return err
		}

		return k.materialStore.Put(txCtx, newKey.ID.String(), material)
	})
	if err != nil {
		return uuid.Nil, err
	}

	return newKey.ID, nil
}

// DeprecateKey moves a rotated-out key to deprecated.
func (k *keyUseCase) DeprecateKey(ctx context.Context, id uuid.UUID) error {
	moved, err := k.keyRepo.TransitionStatus(
		ctx,
		id,
		cryptoDomain.KeyStatusRotating,
		cryptoDomain.KeyStatusDeprecated,
	)
	if err != nil {
		return err
	}
	if !moved {
		return cryptoDomain.ErrInvalidTransition
	}
	return nil
}

// DestroyKey irreversibly destroys a key. Ciphertext tagged with this key's
// version becomes permanently undecryptable; this is an intentional, audited
// data-loss event.
func (k *keyUseCase) DestroyKey(ctx context.Context, id uuid.UUID) error {
	key, err := k.keyRepo.Get(ctx, id)
	if err != nil {
		return err
	}
	if key.Status == cryptoDomain.KeyStatusDestroyed {
		return cryptoDomain.ErrInvalidTransition
	}

	return k.txManager.WithTx(ctx, func(txCtx context.Context) error {
		moved, err := k.keyRepo.TransitionStatus(txCtx, id, key.Status, cryptoDomain.KeyStatusDestroyed)
		if err != nil {
			return err
		}
		if !moved {
			return cryptoDomain.ErrInvalidTransition
		}

		return k.materialStore.Delete(txCtx, id.String())
	})
}

// ExpiringKeys returns active keys expiring within the given window.
func (k *keyUseCase) ExpiringKeys(ctx context.Context, within time.Duration) ([]*cryptoDomain.EncryptionKey, error) {
	return k.keyRepo.ListExpiring(ctx, time.Now().UTC().Add(within))
}

// ListKeys returns all key metadata ordered by version descending.
func (k *keyUseCase) ListKeys(ctx context.Context) ([]*cryptoDomain.EncryptionKey, error) {
	return k.keyRepo.List(ctx)
}
