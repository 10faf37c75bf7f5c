package commands

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	rotationUseCase "github.com/keywell/vault/internal/rotation/usecase"
	rotationMocks "github.com/keywell/vault/internal/rotation/usecase/mocks"
)

func TestRunRotateDue(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()

	t.Run("text-output", func(t *testing.T) {
		mockUseCase := &rotationMocks.MockSchedulerUseCase{}
		mockUseCase.On("RotateAllDueSecrets", ctx).
			Return(&rotationUseCase.RotationOutcome{Processed: 3, Completed: 2, Failed: 1}, nil)

		var out bytes.Buffer
		err := RunRotateDue(ctx, mockUseCase, logger, &out, "text")

		require.NoError(t, err)
		require.Contains(t, out.String(), "Processed 3 rotation(s): 2 completed, 1 failed")
		mockUseCase.AssertExpectations(t)
	})

	t.Run("json-output", func(t *testing.T) {
		mockUseCase := &rotationMocks.MockSchedulerUseCase{}
		mockUseCase.On("RotateAllDueSecrets", ctx).
			Return(&rotationUseCase.RotationOutcome{Processed: 1, Completed: 1}, nil)

		var out bytes.Buffer
		err := RunRotateDue(ctx, mockUseCase, logger, &out, "json")

		require.NoError(t, err)
		require.Contains(t, out.String(), `"completed": 1`)
		mockUseCase.AssertExpectations(t)
	})
}

func TestRunEmergencyRotate(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()

	mockUseCase := &rotationMocks.MockSchedulerUseCase{}
	mockUseCase.On("EmergencyRotateAll", ctx, "db_*").
		Return(&rotationUseCase.RotationOutcome{Processed: 2, Completed: 2}, nil)

	var out bytes.Buffer
	err := RunEmergencyRotate(ctx, mockUseCase, logger, &out, "db_*", "text")

	require.NoError(t, err)
	require.Contains(t, out.String(), "Processed 2 rotation(s): 2 completed, 0 failed")
	mockUseCase.AssertExpectations(t)
}
