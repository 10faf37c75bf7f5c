package commands

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	accessDomain "github.com/keywell/vault/internal/access/domain"
	accessMocks "github.com/keywell/vault/internal/access/http/mocks"
	accessUseCase "github.com/keywell/vault/internal/access/usecase"
)

func TestRunCreatePolicy(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()

	t.Run("creates-enabled-policy", func(t *testing.T) {
		policy := &accessDomain.AccessPolicy{
			ID:            uuid.Must(uuid.NewV7()),
			PolicyName:    "db-readers",
			SecretPattern: "db_*",
			Priority:      10,
			Enabled:       true,
		}

		mockUseCase := &accessMocks.MockAccessUseCase{}
		mockUseCase.On("CreatePolicy", ctx, mock.MatchedBy(func(config accessUseCase.PolicyConfig) bool {
			return config.PolicyName == "db-readers" &&
				config.SecretPattern == "db_*" &&
				len(config.AllowedOperations) == 2 &&
				config.AllowedRoles[0] == "dba" &&
				config.Enabled
		})).Return(policy, nil)

		var out bytes.Buffer
		err := RunCreatePolicy(ctx, mockUseCase, logger, &out, PolicyInput{
			Name:       "db-readers",
			Pattern:    "db_*",
			Operations: "read, rotate",
			Roles:      "dba",
			Priority:   10,
		}, "text")

		require.NoError(t, err)
		require.Contains(t, out.String(), "Created policy db-readers")
		mockUseCase.AssertExpectations(t)
	})

	t.Run("invalid-operation", func(t *testing.T) {
		mockUseCase := &accessMocks.MockAccessUseCase{}

		err := RunCreatePolicy(ctx, mockUseCase, logger, &bytes.Buffer{}, PolicyInput{
			Name:       "bad",
			Pattern:    "*",
			Operations: "read,launch",
		}, "text")

		require.Error(t, err)
		require.Contains(t, err.Error(), "invalid operation")
		mockUseCase.AssertNotCalled(t, "CreatePolicy", mock.Anything, mock.Anything)
	})
}
