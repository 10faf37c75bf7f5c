// Package mocks provides mock implementations for the secrets API handlers.
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	accessDomain "github.com/keywell/vault/internal/access/domain"
	vaultDomain "github.com/keywell/vault/internal/vault/domain"
	vaultUseCase "github.com/keywell/vault/internal/vault/usecase"
)

// MockVaultUseCase is a mock implementation of VaultUseCase.
type MockVaultUseCase struct {
	mock.Mock
}

func (m *MockVaultUseCase) CreateSecret(ctx context.Context, config vaultUseCase.SecretConfig, actor accessDomain.Actor) (*vaultDomain.Secret, error) {
	args := m.Called(ctx, config, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*vaultDomain.Secret), args.Error(1)
}

func (m *MockVaultUseCase) GetSecret(ctx context.Context, name string, actor accessDomain.Actor, version uint) (*vaultUseCase.SecretValue, error) {
	args := m.Called(ctx, name, actor, version)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*vaultUseCase.SecretValue), args.Error(1)
}

func (m *MockVaultUseCase) UpdateSecret(ctx context.Context, name string, value []byte, actor accessDomain.Actor, reason string) (*vaultDomain.Secret, error) {
	args := m.Called(ctx, name, value, actor, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*vaultDomain.Secret), args.Error(1)
}

func (m *MockVaultUseCase) RotateSecret(ctx context.Context, name string, actor accessDomain.Actor) (*vaultDomain.Secret, error) {
	args := m.Called(ctx, name, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*vaultDomain.Secret), args.Error(1)
}

func (m *MockVaultUseCase) RevokeSecret(ctx context.Context, name string, actor accessDomain.Actor) error {
	args := m.Called(ctx, name, actor)
	return args.Error(0)
}

func (m *MockVaultUseCase) RollbackSecret(ctx context.Context, name string, version uint, actor accessDomain.Actor) (*vaultDomain.Secret, error) {
	args := m.Called(ctx, name, version, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*vaultDomain.Secret), args.Error(1)
}

func (m *MockVaultUseCase) ListSecrets(ctx context.Context, actor accessDomain.Actor, offset, limit int) ([]*vaultDomain.Secret, error) {
	args := m.Called(ctx, actor, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*vaultDomain.Secret), args.Error(1)
}

func (m *MockVaultUseCase) GetSecretVersions(ctx context.Context, name string) ([]*vaultDomain.SecretVersion, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*vaultDomain.SecretVersion), args.Error(1)
}

func (m *MockVaultUseCase) ListSecretsByStatus(ctx context.Context, status vaultDomain.SecretStatus) ([]*vaultDomain.Secret, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*vaultDomain.Secret), args.Error(1)
}

func (m *MockVaultUseCase) ListStuckRotating(ctx context.Context, staleAfter time.Duration) ([]*vaultDomain.Secret, error) {
	args := m.Called(ctx, staleAfter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*vaultDomain.Secret), args.Error(1)
}

func (m *MockVaultUseCase) CountSecrets(ctx context.Context) (uint, uint, error) {
	args := m.Called(ctx)
	return args.Get(0).(uint), args.Get(1).(uint), args.Error(2)
}
