// Package mocks provides mock implementations of the rotation usecase interfaces.
package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	accessDomain "github.com/keywell/vault/internal/access/domain"
	rotationDomain "github.com/keywell/vault/internal/rotation/domain"
	"github.com/keywell/vault/internal/rotation/usecase"
	vaultDomain "github.com/keywell/vault/internal/vault/domain"
)

// MockScheduleRepository is a mock implementation of ScheduleRepository.
type MockScheduleRepository struct {
	mock.Mock
}

func (m *MockScheduleRepository) Create(ctx context.Context, schedule *rotationDomain.RotationSchedule) error {
	args := m.Called(ctx, schedule)
	return args.Error(0)
}

func (m *MockScheduleRepository) Get(ctx context.Context, id uuid.UUID) (*rotationDomain.RotationSchedule, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rotationDomain.RotationSchedule), args.Error(1)
}

func (m *MockScheduleRepository) ListDue(ctx context.Context, now time.Time) ([]*rotationDomain.RotationSchedule, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*rotationDomain.RotationSchedule), args.Error(1)
}

func (m *MockScheduleRepository) ListUpcoming(ctx context.Context, now, horizon time.Time) ([]*rotationDomain.RotationSchedule, error) {
	args := m.Called(ctx, now, horizon)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*rotationDomain.RotationSchedule), args.Error(1)
}

func (m *MockScheduleRepository) GetOpenBySecret(ctx context.Context, secretID uuid.UUID) (*rotationDomain.RotationSchedule, error) {
	args := m.Called(ctx, secretID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rotationDomain.RotationSchedule), args.Error(1)
}

func (m *MockScheduleRepository) Claim(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockScheduleRepository) MarkCompleted(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockScheduleRepository) MarkFailed(ctx context.Context, id uuid.UUID, reason string) error {
	args := m.Called(ctx, id, reason)
	return args.Error(0)
}

func (m *MockScheduleRepository) Cancel(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockScheduleRepository) CountSettledSince(ctx context.Context, since time.Time) (uint, uint, error) {
	args := m.Called(ctx, since)
	return args.Get(0).(uint), args.Get(1).(uint), args.Error(2)
}

// MockSecretVault is a mock implementation of SecretVault.
type MockSecretVault struct {
	mock.Mock
}

func (m *MockSecretVault) RotateSecret(ctx context.Context, name string, actor accessDomain.Actor) (*vaultDomain.Secret, error) {
	args := m.Called(ctx, name, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*vaultDomain.Secret), args.Error(1)
}

func (m *MockSecretVault) ListSecretsByStatus(ctx context.Context, status vaultDomain.SecretStatus) ([]*vaultDomain.Secret, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*vaultDomain.Secret), args.Error(1)
}

func (m *MockSecretVault) ListStuckRotating(ctx context.Context, staleAfter time.Duration) ([]*vaultDomain.Secret, error) {
	args := m.Called(ctx, staleAfter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*vaultDomain.Secret), args.Error(1)
}

func (m *MockSecretVault) CountSecrets(ctx context.Context) (uint, uint, error) {
	args := m.Called(ctx)
	return args.Get(0).(uint), args.Get(1).(uint), args.Error(2)
}

// MockSecretResolver is a mock implementation of SecretResolver.
type MockSecretResolver struct {
	mock.Mock
}

func (m *MockSecretResolver) Get(ctx context.Context, id uuid.UUID) (*vaultDomain.Secret, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*vaultDomain.Secret), args.Error(1)
}

// MockSchedulerUseCase is a mock implementation of SchedulerUseCase.
type MockSchedulerUseCase struct {
	mock.Mock
}

func (m *MockSchedulerUseCase) RotateAllDueSecrets(ctx context.Context) (*usecase.RotationOutcome, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.RotationOutcome), args.Error(1)
}

func (m *MockSchedulerUseCase) ScheduleRotation(
	ctx context.Context,
	secretID uuid.UUID,
	at time.Time,
	rotationType rotationDomain.RotationType,
) (*rotationDomain.RotationSchedule, error) {
	args := m.Called(ctx, secretID, at, rotationType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rotationDomain.RotationSchedule), args.Error(1)
}

func (m *MockSchedulerUseCase) CancelScheduledRotation(ctx context.Context, scheduleID uuid.UUID) error {
	args := m.Called(ctx, scheduleID)
	return args.Error(0)
}

func (m *MockSchedulerUseCase) EmergencyRotateAll(ctx context.Context, pattern string) (*usecase.RotationOutcome, error) {
	args := m.Called(ctx, pattern)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.RotationOutcome), args.Error(1)
}

func (m *MockSchedulerUseCase) NotifyUpcomingRotations(ctx context.Context, daysAhead int) ([]*rotationDomain.RotationSchedule, error) {
	args := m.Called(ctx, daysAhead)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*rotationDomain.RotationSchedule), args.Error(1)
}

func (m *MockSchedulerUseCase) GetRotationMetrics(ctx context.Context) (*rotationDomain.RotationMetrics, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rotationDomain.RotationMetrics), args.Error(1)
}

func (m *MockSchedulerUseCase) Start(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
