// Package mocks provides mock implementations for testing vault use cases.
package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	accessDomain "github.com/keywell/vault/internal/access/domain"
	cryptoDomain "github.com/keywell/vault/internal/crypto/domain"
	rotationDomain "github.com/keywell/vault/internal/rotation/domain"
	vaultDomain "github.com/keywell/vault/internal/vault/domain"
)

// MockSecretRepository is a mock implementation of SecretRepository for testing.
type MockSecretRepository struct {
	mock.Mock
}

func (m *MockSecretRepository) Create(ctx context.Context, secret *vaultDomain.Secret) error {
	args := m.Called(ctx, secret)
	return args.Error(0)
}

func (m *MockSecretRepository) Get(ctx context.Context, id uuid.UUID) (*vaultDomain.Secret, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*vaultDomain.Secret), args.Error(1)
}

func (m *MockSecretRepository) GetByName(ctx context.Context, name string) (*vaultDomain.Secret, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*vaultDomain.Secret), args.Error(1)
}

func (m *MockSecretRepository) List(ctx context.Context, offset, limit int) ([]*vaultDomain.Secret, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*vaultDomain.Secret), args.Error(1)
}

func (m *MockSecretRepository) ListByStatus(
	ctx context.Context,
	status vaultDomain.SecretStatus,
) ([]*vaultDomain.Secret, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*vaultDomain.Secret), args.Error(1)
}

func (m *MockSecretRepository) ListStuckRotating(
	ctx context.Context,
	cutoff time.Time,
) ([]*vaultDomain.Secret, error) {
	args := m.Called(ctx, cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*vaultDomain.Secret), args.Error(1)
}

func (m *MockSecretRepository) TransitionStatus(
	ctx context.Context,
	id uuid.UUID,
	from, to vaultDomain.SecretStatus,
) (bool, error) {
	args := m.Called(ctx, id, from, to)
	return args.Bool(0), args.Error(1)
}

func (m *MockSecretRepository) SetCurrentVersion(ctx context.Context, id uuid.UUID, version uint) error {
	args := m.Called(ctx, id, version)
	return args.Error(0)
}

func (m *MockSecretRepository) Count(ctx context.Context) (uint, error) {
	args := m.Called(ctx)
	return args.Get(0).(uint), args.Error(1)
}

func (m *MockSecretRepository) CountRotationEnabled(ctx context.Context) (uint, error) {
	args := m.Called(ctx)
	return args.Get(0).(uint), args.Error(1)
}

// MockSecretVersionRepository is a mock implementation of SecretVersionRepository for testing.
type MockSecretVersionRepository struct {
	mock.Mock
}

func (m *MockSecretVersionRepository) Create(ctx context.Context, version *vaultDomain.SecretVersion) error {
	args := m.Called(ctx, version)
	return args.Error(0)
}

func (m *MockSecretVersionRepository) GetCurrent(
	ctx context.Context,
	secretID uuid.UUID,
) (*vaultDomain.SecretVersion, error) {
	args := m.Called(ctx, secretID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*vaultDomain.SecretVersion), args.Error(1)
}

func (m *MockSecretVersionRepository) GetByNumber(
	ctx context.Context,
	secretID uuid.UUID,
	number uint,
) (*vaultDomain.SecretVersion, error) {
	args := m.Called(ctx, secretID, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*vaultDomain.SecretVersion), args.Error(1)
}

func (m *MockSecretVersionRepository) ListBySecret(
	ctx context.Context,
	secretID uuid.UUID,
) ([]*vaultDomain.SecretVersion, error) {
	args := m.Called(ctx, secretID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*vaultDomain.SecretVersion), args.Error(1)
}

func (m *MockSecretVersionRepository) ClearCurrent(ctx context.Context, secretID uuid.UUID) error {
	args := m.Called(ctx, secretID)
	return args.Error(0)
}

// MockAccessChecker is a mock implementation of AccessChecker for testing.
type MockAccessChecker struct {
	mock.Mock
}

func (m *MockAccessChecker) CheckAccess(
	ctx context.Context,
	secretName string,
	operation accessDomain.Operation,
	actor accessDomain.Actor,
	requestContext map[string]string,
) (bool, error) {
	args := m.Called(ctx, secretName, operation, actor, requestContext)
	return args.Bool(0), args.Error(1)
}

// MockAuditLogger is a mock implementation of AuditLogger for testing.
type MockAuditLogger struct {
	mock.Mock
}

func (m *MockAuditLogger) RecordAccess(ctx context.Context, entry *accessDomain.AccessLogEntry) {
	m.Called(ctx, entry)
}

// MockKeyProvider is a mock implementation of KeyProvider for testing.
type MockKeyProvider struct {
	mock.Mock
}

func (m *MockKeyProvider) RetrieveActiveKey(ctx context.Context) (*cryptoDomain.ActiveKey, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cryptoDomain.ActiveKey), args.Error(1)
}

func (m *MockKeyProvider) MaterialByVersion(ctx context.Context, version uint) ([]byte, error) {
	args := m.Called(ctx, version)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// MockScheduleRepository is a mock implementation of ScheduleRepository for testing.
type MockScheduleRepository struct {
	mock.Mock
}

func (m *MockScheduleRepository) Create(ctx context.Context, schedule *rotationDomain.RotationSchedule) error {
	args := m.Called(ctx, schedule)
	return args.Error(0)
}

func (m *MockScheduleRepository) GetOpenBySecret(
	ctx context.Context,
	secretID uuid.UUID,
) (*rotationDomain.RotationSchedule, error) {
	args := m.Called(ctx, secretID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rotationDomain.RotationSchedule), args.Error(1)
}

// MockValueGenerator is a mock implementation of ValueGenerator for testing.
type MockValueGenerator struct {
	mock.Mock
}

func (m *MockValueGenerator) Generate(secretType vaultDomain.SecretType) ([]byte, error) {
	args := m.Called(secretType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}
