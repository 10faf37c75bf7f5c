// Package mocks provides mock implementations for testing key lifecycle use cases.
package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	cryptoDomain "github.com/keywell/vault/internal/crypto/domain"
)

// MockKeyRepository is a mock implementation of KeyRepository for testing.
type MockKeyRepository struct {
	mock.Mock
}

func (m *MockKeyRepository) Create(ctx context.Context, key *cryptoDomain.EncryptionKey) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockKeyRepository) Get(ctx context.Context, id uuid.UUID) (*cryptoDomain.EncryptionKey, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cryptoDomain.EncryptionKey), args.Error(1)
}

func (m *MockKeyRepository) GetByVersion(ctx context.Context, version uint) (*cryptoDomain.EncryptionKey, error) {
	args := m.Called(ctx, version)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cryptoDomain.EncryptionKey), args.Error(1)
}

func (m *MockKeyRepository) GetActive(ctx context.Context) (*cryptoDomain.EncryptionKey, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cryptoDomain.EncryptionKey), args.Error(1)
}

func (m *MockKeyRepository) List(ctx context.Context) ([]*cryptoDomain.EncryptionKey, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*cryptoDomain.EncryptionKey), args.Error(1)
}

func (m *MockKeyRepository) TransitionStatus(
	ctx context.Context,
	id uuid.UUID,
	from, to cryptoDomain.KeyStatus,
) (bool, error) {
	args := m.Called(ctx, id, from, to)
	return args.Bool(0), args.Error(1)
}

func (m *MockKeyRepository) SetDeprecateAt(ctx context.Context, id uuid.UUID, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

func (m *MockKeyRepository) ListExpiring(ctx context.Context, before time.Time) ([]*cryptoDomain.EncryptionKey, error) {
	args := m.Called(ctx, before)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*cryptoDomain.EncryptionKey), args.Error(1)
}

func (m *MockKeyRepository) ListDueForDeprecation(ctx context.Context, now time.Time) ([]*cryptoDomain.EncryptionKey, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*cryptoDomain.EncryptionKey), args.Error(1)
}

// MockKeyMaterialStore is a mock implementation of KeyMaterialStore for testing.
type MockKeyMaterialStore struct {
	mock.Mock
}

func (m *MockKeyMaterialStore) Get(ctx context.Context, keyID string) ([]byte, error) {
	args := m.Called(ctx, keyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockKeyMaterialStore) Put(ctx context.Context, keyID string, material []byte) error {
	args := m.Called(ctx, keyID, material)
	return args.Error(0)
}

func (m *MockKeyMaterialStore) Delete(ctx context.Context, keyID string) error {
	args := m.Called(ctx, keyID)
	return args.Error(0)
}

// MockKeyUseCase is a mock implementation of KeyUseCase for testing.
type MockKeyUseCase struct {
	mock.Mock
}

func (m *MockKeyUseCase) StoreKey(
	ctx context.Context,
	material []byte,
	version uint,
	algorithm cryptoDomain.Algorithm,
) (*cryptoDomain.EncryptionKey, error) {
	args := m.Called(ctx, material, version, algorithm)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cryptoDomain.EncryptionKey), args.Error(1)
}

func (m *MockKeyUseCase) RetrieveActiveKey(ctx context.Context) (*cryptoDomain.ActiveKey, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cryptoDomain.ActiveKey), args.Error(1)
}

func (m *MockKeyUseCase) MaterialByVersion(ctx context.Context, version uint) ([]byte, error) {
	args := m.Called(ctx, version)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockKeyUseCase) RotateKey(ctx context.Context, oldKeyID uuid.UUID) (uuid.UUID, error) {
	args := m.Called(ctx, oldKeyID)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockKeyUseCase) DeprecateKey(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockKeyUseCase) DestroyKey(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockKeyUseCase) ExpiringKeys(ctx context.Context, within time.Duration) ([]*cryptoDomain.EncryptionKey, error) {
	args := m.Called(ctx, within)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*cryptoDomain.EncryptionKey), args.Error(1)
}

func (m *MockKeyUseCase) ListKeys(ctx context.Context) ([]*cryptoDomain.EncryptionKey, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*cryptoDomain.EncryptionKey), args.Error(1)
}
