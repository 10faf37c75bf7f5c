// Package mocks provides mock implementations for testing access-control use cases.
package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	accessDomain "github.com/keywell/vault/internal/access/domain"
)

// MockPolicyRepository is a mock implementation of PolicyRepository for testing.
type MockPolicyRepository struct {
	mock.Mock
}

func (m *MockPolicyRepository) Create(ctx context.Context, policy *accessDomain.AccessPolicy) error {
	args := m.Called(ctx, policy)
	return args.Error(0)
}

func (m *MockPolicyRepository) Get(ctx context.Context, id uuid.UUID) (*accessDomain.AccessPolicy, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*accessDomain.AccessPolicy), args.Error(1)
}

func (m *MockPolicyRepository) GetByName(ctx context.Context, name string) (*accessDomain.AccessPolicy, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*accessDomain.AccessPolicy), args.Error(1)
}

func (m *MockPolicyRepository) ListEnabled(ctx context.Context) ([]*accessDomain.AccessPolicy, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*accessDomain.AccessPolicy), args.Error(1)
}

func (m *MockPolicyRepository) List(ctx context.Context) ([]*accessDomain.AccessPolicy, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*accessDomain.AccessPolicy), args.Error(1)
}

func (m *MockPolicyRepository) Update(ctx context.Context, policy *accessDomain.AccessPolicy) error {
	args := m.Called(ctx, policy)
	return args.Error(0)
}

func (m *MockPolicyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockAccessLogRepository is a mock implementation of AccessLogRepository for testing.
type MockAccessLogRepository struct {
	mock.Mock
}

func (m *MockAccessLogRepository) Create(ctx context.Context, entry *accessDomain.AccessLogEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockAccessLogRepository) List(
	ctx context.Context,
	secretName string,
	offset, limit int,
) ([]*accessDomain.AccessLogEntry, error) {
	args := m.Called(ctx, secretName, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*accessDomain.AccessLogEntry), args.Error(1)
}

func (m *MockAccessLogRepository) Metrics(
	ctx context.Context,
	since time.Time,
) (*accessDomain.AccessMetrics, error) {
	args := m.Called(ctx, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*accessDomain.AccessMetrics), args.Error(1)
}
