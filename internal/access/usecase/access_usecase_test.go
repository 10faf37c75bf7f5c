package usecase

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	accessDomain "github.com/keywell/vault/internal/access/domain"
	accessService "github.com/keywell/vault/internal/access/service"
	"github.com/keywell/vault/internal/access/usecase/mocks"
	apperrors "github.com/keywell/vault/internal/errors"
)

func newAccessUseCase(policyRepo *mocks.MockPolicyRepository, logRepo *mocks.MockAccessLogRepository) AccessUseCase {
	return NewAccessUseCase(policyRepo, logRepo, accessService.NewPatternMatcher(), slog.Default())
}

func allowPolicy(name, pattern string, users []string, operations []accessDomain.Operation, priority int) *accessDomain.AccessPolicy {
	now := time.Now().UTC()
	return &accessDomain.AccessPolicy{
		ID:                uuid.Must(uuid.NewV7()),
		PolicyName:        name,
		SecretPattern:     pattern,
		AllowedUsers:      users,
		AllowedOperations: operations,
		Priority:          priority,
		Enabled:           true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

func TestAccessUseCase_CheckAccess(t *testing.T) {
	ctx := context.Background()
	readOnly := []accessDomain.Operation{accessDomain.OperationRead}

	t.Run("SingleReadPolicyScenario", func(t *testing.T) {
		policyRepo := new(mocks.MockPolicyRepository)
		logRepo := new(mocks.MockAccessLogRepository)
		policyRepo.On("ListEnabled", mock.Anything).
			Return([]*accessDomain.AccessPolicy{
				allowPolicy("db-read", "db_*", []string{"u1"}, readOnly, 10),
			}, nil)

		uc := newAccessUseCase(policyRepo, logRepo)
		actor := accessDomain.Actor{UserID: "u1"}

		granted, err := uc.CheckAccess(ctx, "db_password", accessDomain.OperationRead, actor, nil)
		require.NoError(t, err)
		assert.True(t, granted)

		granted, err = uc.CheckAccess(ctx, "db_password", accessDomain.OperationUpdate, actor, nil)
		require.NoError(t, err)
		assert.False(t, granted)

		granted, err = uc.CheckAccess(ctx, "api_key", accessDomain.OperationRead, actor, nil)
		require.NoError(t, err)
		assert.False(t, granted)
	})

	t.Run("DefaultDenyWithNoPolicies", func(t *testing.T) {
		policyRepo := new(mocks.MockPolicyRepository)
		logRepo := new(mocks.MockAccessLogRepository)
		policyRepo.On("ListEnabled", mock.Anything).Return([]*accessDomain.AccessPolicy{}, nil)

		uc := newAccessUseCase(policyRepo, logRepo)
		granted, err := uc.CheckAccess(
			ctx, "anything", accessDomain.OperationRead, accessDomain.Actor{UserID: "u1"}, nil)

		require.NoError(t, err)
		assert.False(t, granted)
	})

	t.Run("HigherPriorityPolicyWinsFirst", func(t *testing.T) {
		policyRepo := new(mocks.MockPolicyRepository)
		logRepo := new(mocks.MockAccessLogRepository)
		// ListEnabled returns priority-descending order; the first full match
		// settles the decision.
		policyRepo.On("ListEnabled", mock.Anything).
			Return([]*accessDomain.AccessPolicy{
				allowPolicy("narrow", "db_password", []string{"u1"}, readOnly, 100),
				allowPolicy("broad", "*", []string{"u2"}, readOnly, 1),
			}, nil)

		uc := newAccessUseCase(policyRepo, logRepo)

		granted, err := uc.CheckAccess(
			ctx, "db_password", accessDomain.OperationRead, accessDomain.Actor{UserID: "u1"}, nil)
		require.NoError(t, err)
		assert.True(t, granted)

		// The lower-priority policy still grants where it matches.
		granted, err = uc.CheckAccess(
			ctx, "db_password", accessDomain.OperationRead, accessDomain.Actor{UserID: "u2"}, nil)
		require.NoError(t, err)
		assert.True(t, granted)
	})

	t.Run("RoleAndServiceMatching", func(t *testing.T) {
		policy := allowPolicy("ops", "*", nil, readOnly, 5)
		policy.AllowedRoles = []string{"admin"}
		policy.AllowedServices = []string{"rotation-scheduler"}

		policyRepo := new(mocks.MockPolicyRepository)
		logRepo := new(mocks.MockAccessLogRepository)
		policyRepo.On("ListEnabled", mock.Anything).
			Return([]*accessDomain.AccessPolicy{policy}, nil)

		uc := newAccessUseCase(policyRepo, logRepo)

		granted, err := uc.CheckAccess(ctx, "s", accessDomain.OperationRead,
			accessDomain.Actor{UserID: "u9", Roles: []string{"admin"}}, nil)
		require.NoError(t, err)
		assert.True(t, granted)

		granted, err = uc.CheckAccess(ctx, "s", accessDomain.OperationRead,
			accessDomain.Actor{Service: "rotation-scheduler"}, nil)
		require.NoError(t, err)
		assert.True(t, granted)

		granted, err = uc.CheckAccess(ctx, "s", accessDomain.OperationRead,
			accessDomain.Actor{UserID: "u9", Roles: []string{"viewer"}}, nil)
		require.NoError(t, err)
		assert.False(t, granted)
	})

	t.Run("ConditionsMustAllMatch", func(t *testing.T) {
		policy := allowPolicy("env-gated", "*", []string{"u1"}, readOnly, 5)
		policy.Conditions = map[string]string{"env": "production", "mfa": "true"}

		policyRepo := new(mocks.MockPolicyRepository)
		logRepo := new(mocks.MockAccessLogRepository)
		policyRepo.On("ListEnabled", mock.Anything).
			Return([]*accessDomain.AccessPolicy{policy}, nil)

		uc := newAccessUseCase(policyRepo, logRepo)
		actor := accessDomain.Actor{UserID: "u1"}

		granted, err := uc.CheckAccess(ctx, "s", accessDomain.OperationRead, actor,
			map[string]string{"env": "production", "mfa": "true"})
		require.NoError(t, err)
		assert.True(t, granted)

		granted, err = uc.CheckAccess(ctx, "s", accessDomain.OperationRead, actor,
			map[string]string{"env": "production"})
		require.NoError(t, err)
		assert.False(t, granted)

		granted, err = uc.CheckAccess(ctx, "s", accessDomain.OperationRead, actor, nil)
		require.NoError(t, err)
		assert.False(t, granted)
	})

	t.Run("InvalidOperationRejected", func(t *testing.T) {
		uc := newAccessUseCase(new(mocks.MockPolicyRepository), new(mocks.MockAccessLogRepository))
		_, err := uc.CheckAccess(ctx, "s", accessDomain.Operation("exfiltrate"), accessDomain.Actor{UserID: "u1"}, nil)
		assert.ErrorIs(t, err, accessDomain.ErrInvalidOperation)
	})
}

func TestAccessUseCase_PolicyAdministration(t *testing.T) {
	ctx := context.Background()
	readOnly := []accessDomain.Operation{accessDomain.OperationRead}

	t.Run("CreatePolicy", func(t *testing.T) {
		policyRepo := new(mocks.MockPolicyRepository)
		policyRepo.On("Create", mock.Anything, mock.MatchedBy(func(policy *accessDomain.AccessPolicy) bool {
			return policy.PolicyName == "db-read" && policy.Enabled
		})).Return(nil).Once()

		uc := newAccessUseCase(policyRepo, new(mocks.MockAccessLogRepository))
		policy, err := uc.CreatePolicy(ctx, PolicyConfig{
			PolicyName:        "db-read",
			SecretPattern:     "db_*",
			AllowedUsers:      []string{"u1"},
			AllowedOperations: readOnly,
			Priority:          10,
			Enabled:           true,
		})

		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, policy.ID)
		policyRepo.AssertExpectations(t)
	})

	t.Run("CreatePolicyValidation", func(t *testing.T) {
		uc := newAccessUseCase(new(mocks.MockPolicyRepository), new(mocks.MockAccessLogRepository))

		_, err := uc.CreatePolicy(ctx, PolicyConfig{SecretPattern: "*", AllowedOperations: readOnly})
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

		_, err = uc.CreatePolicy(ctx, PolicyConfig{PolicyName: "p", AllowedOperations: readOnly})
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

		_, err = uc.CreatePolicy(ctx, PolicyConfig{PolicyName: "p", SecretPattern: "*"})
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

		_, err = uc.CreatePolicy(ctx, PolicyConfig{
			PolicyName:        "p",
			SecretPattern:     "*",
			AllowedOperations: []accessDomain.Operation{"exfiltrate"},
		})
		assert.ErrorIs(t, err, accessDomain.ErrInvalidOperation)
	})

	t.Run("GrantAndRevokeAccessUseDedicatedPolicy", func(t *testing.T) {
		policyRepo := new(mocks.MockPolicyRepository)
		created := allowPolicy("grant:u1:db_*", "db_*", []string{"u1"}, readOnly, 0)

		policyRepo.On("Create", mock.Anything, mock.MatchedBy(func(policy *accessDomain.AccessPolicy) bool {
			return policy.PolicyName == "grant:u1:db_*" &&
				len(policy.AllowedUsers) == 1 && policy.AllowedUsers[0] == "u1"
		})).Return(nil).Once()
		policyRepo.On("GetByName", mock.Anything, "grant:u1:db_*").Return(created, nil).Once()
		policyRepo.On("Delete", mock.Anything, created.ID).Return(nil).Once()

		uc := newAccessUseCase(policyRepo, new(mocks.MockAccessLogRepository))

		_, err := uc.GrantAccess(ctx, "u1", "db_*", readOnly)
		require.NoError(t, err)

		require.NoError(t, uc.RevokeAccess(ctx, "u1", "db_*"))
		policyRepo.AssertExpectations(t)
	})
}

func TestAccessUseCase_RecordAccess(t *testing.T) {
	ctx := context.Background()

	t.Run("PersistenceFailureIsSwallowed", func(t *testing.T) {
		logRepo := new(mocks.MockAccessLogRepository)
		logRepo.On("Create", mock.Anything, mock.Anything).
			Return(apperrors.ErrConflict).Once()

		uc := newAccessUseCase(new(mocks.MockPolicyRepository), logRepo)

		// Must not panic or propagate the error.
		uc.RecordAccess(ctx, &accessDomain.AccessLogEntry{
			ID:         uuid.Must(uuid.NewV7()),
			SecretName: "db_password",
			AccessedBy: "u1",
			AccessType: accessDomain.OperationRead,
			Granted:    true,
			Timestamp:  time.Now().UTC(),
		})
		logRepo.AssertExpectations(t)
	})
}

func TestAccessUseCase_GetAccessMetrics(t *testing.T) {
	ctx := context.Background()

	logRepo := new(mocks.MockAccessLogRepository)
	logRepo.On("Metrics", mock.Anything, mock.MatchedBy(func(since time.Time) bool {
		expected := time.Now().UTC().Add(-24 * time.Hour)
		return since.Sub(expected) < time.Minute && expected.Sub(since) < time.Minute
	})).Return(&accessDomain.AccessMetrics{
		TotalAttempts: 10,
		GrantedCount:  7,
		DeniedCount:   3,
	}, nil).Once()

	uc := newAccessUseCase(new(mocks.MockPolicyRepository), logRepo)
	metrics, err := uc.GetAccessMetrics(ctx, 24*time.Hour)

	require.NoError(t, err)
	assert.Equal(t, uint(10), metrics.TotalAttempts)
	logRepo.AssertExpectations(t)
}
