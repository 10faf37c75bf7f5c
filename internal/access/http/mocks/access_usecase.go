// Package mocks provides mock implementations for the access-control API handlers.
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	accessDomain "github.com/keywell/vault/internal/access/domain"
	accessUseCase "github.com/keywell/vault/internal/access/usecase"
)

// MockAccessUseCase is a mock implementation of AccessUseCase.
type MockAccessUseCase struct {
	mock.Mock
}

func (m *MockAccessUseCase) CheckAccess(
	ctx context.Context,
	secretName string,
	operation accessDomain.Operation,
	actor accessDomain.Actor,
	requestContext map[string]string,
) (bool, error) {
	args := m.Called(ctx, secretName, operation, actor, requestContext)
	return args.Bool(0), args.Error(1)
}

func (m *MockAccessUseCase) CreatePolicy(ctx context.Context, config accessUseCase.PolicyConfig) (*accessDomain.AccessPolicy, error) {
	args := m.Called(ctx, config)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*accessDomain.AccessPolicy), args.Error(1)
}

func (m *MockAccessUseCase) UpdatePolicy(ctx context.Context, name string, config accessUseCase.PolicyConfig) (*accessDomain.AccessPolicy, error) {
	args := m.Called(ctx, name, config)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*accessDomain.AccessPolicy), args.Error(1)
}

func (m *MockAccessUseCase) DeletePolicy(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

func (m *MockAccessUseCase) GetPolicy(ctx context.Context, name string) (*accessDomain.AccessPolicy, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*accessDomain.AccessPolicy), args.Error(1)
}

func (m *MockAccessUseCase) ListPolicies(ctx context.Context) ([]*accessDomain.AccessPolicy, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*accessDomain.AccessPolicy), args.Error(1)
}

func (m *MockAccessUseCase) GrantAccess(
	ctx context.Context,
	userID, secretPattern string,
	operations []accessDomain.Operation,
) (*accessDomain.AccessPolicy, error) {
	args := m.Called(ctx, userID, secretPattern, operations)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*accessDomain.AccessPolicy), args.Error(1)
}

func (m *MockAccessUseCase) RevokeAccess(ctx context.Context, userID, secretPattern string) error {
	args := m.Called(ctx, userID, secretPattern)
	return args.Error(0)
}

func (m *MockAccessUseCase) RecordAccess(ctx context.Context, entry *accessDomain.AccessLogEntry) {
	m.Called(ctx, entry)
}

func (m *MockAccessUseCase) GetAccessLog(ctx context.Context, secretName string, offset, limit int) ([]*accessDomain.AccessLogEntry, error) {
	args := m.Called(ctx, secretName, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*accessDomain.AccessLogEntry), args.Error(1)
}

func (m *MockAccessUseCase) GetAccessMetrics(ctx context.Context, window time.Duration) (*accessDomain.AccessMetrics, error) {
	args := m.Called(ctx, window)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*accessDomain.AccessMetrics), args.Error(1)
}
