package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	rotationUseCase "github.com/keywell/vault/internal/rotation/usecase"
)

// RunRotationMetrics prints rotation coverage and the trailing 30-day
// success rate.
func RunRotationMetrics(
	ctx context.Context,
	schedulerUseCase rotationUseCase.SchedulerUseCase,
	logger *slog.Logger,
	w io.Writer,
	format string,
) error {
	metrics, err := schedulerUseCase.GetRotationMetrics(ctx)
	if err != nil {
		return fmt.Errorf("failed to get rotation metrics: %w", err)
	}

	logger.Info("rotation metrics collected",
		slog.Uint64("total_secrets", uint64(metrics.TotalSecrets)),
		slog.Float64("success_rate", metrics.SuccessRate),
	)

	if format == "json" {
		result := map[string]interface{}{
			"total_secrets":            metrics.TotalSecrets,
			"rotation_enabled_secrets": metrics.RotationEnabledSecrets,
			"completed_last_30_days":   metrics.CompletedLast30Days,
			"failed_last_30_days":      metrics.FailedLast30Days,
			"success_rate":             metrics.SuccessRate,
		}
		jsonBytes, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Fprintln(w, string(jsonBytes))
		return nil
	}

	fmt.Fprintf(w, "Secrets: %d total, %d with rotation enabled\n",
		metrics.TotalSecrets, metrics.RotationEnabledSecrets)
	fmt.Fprintf(w, "Last 30 days: %d completed, %d failed (success rate %.2f)\n",
		metrics.CompletedLast30Days, metrics.FailedLast30Days, metrics.SuccessRate)
	return nil
}
