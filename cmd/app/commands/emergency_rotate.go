package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	rotationUseCase "github.com/keywell/vault/internal/rotation/usecase"
)

// RunEmergencyRotate immediately rotates every active secret whose name
// matches the pattern, bypassing the schedule queue. An empty pattern matches
// all active secrets. Intended for compromise response.
func RunEmergencyRotate(
	ctx context.Context,
	schedulerUseCase rotationUseCase.SchedulerUseCase,
	logger *slog.Logger,
	w io.Writer,
	pattern string,
	format string,
) error {
	logger.Warn("starting emergency rotation", slog.String("pattern", pattern))

	outcome, err := schedulerUseCase.EmergencyRotateAll(ctx, pattern)
	if err != nil {
		return fmt.Errorf("failed to run emergency rotation: %w", err)
	}

	logger.Warn("emergency rotation finished",
		slog.String("pattern", pattern),
		slog.Int("processed", outcome.Processed),
		slog.Int("completed", outcome.Completed),
		slog.Int("failed", outcome.Failed),
	)

	if format == "json" {
		return outputOutcomeJSON(w, outcome)
	}
	outputOutcomeText(w, outcome)
	return nil
}
