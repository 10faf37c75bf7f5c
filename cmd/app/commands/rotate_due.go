package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	rotationUseCase "github.com/keywell/vault/internal/rotation/usecase"
)

// RunRotateDue processes every rotation schedule that is due now, exactly as
// one tick of the scheduler worker would. Failed rotations are reported but
// do not stop the batch.
func RunRotateDue(
	ctx context.Context,
	schedulerUseCase rotationUseCase.SchedulerUseCase,
	logger *slog.Logger,
	w io.Writer,
	format string,
) error {
	logger.Info("processing due rotation schedules")

	outcome, err := schedulerUseCase.RotateAllDueSecrets(ctx)
	if err != nil {
		return fmt.Errorf("failed to process due rotations: %w", err)
	}

	logger.Info("due rotations processed",
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

// outputOutcomeText outputs a rotation outcome in human-readable text format.
func outputOutcomeText(w io.Writer, outcome *rotationUseCase.RotationOutcome) {
	fmt.Fprintf(w, "Processed %d rotation(s): %d completed, %d failed\n",
		outcome.Processed, outcome.Completed, outcome.Failed)
}

// outputOutcomeJSON outputs a rotation outcome in JSON format for machine consumption.
func outputOutcomeJSON(w io.Writer, outcome *rotationUseCase.RotationOutcome) error {
	result := map[string]interface{}{
		"processed": outcome.Processed,
		"completed": outcome.Completed,
		"failed":    outcome.Failed,
	}

	jsonBytes, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	fmt.Fprintln(w, string(jsonBytes))
	return nil
}
