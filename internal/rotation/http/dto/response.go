package dto

import (
	"time"

	rotationDomain "github.com/keywell/vault/internal/rotation/domain"
	rotationUseCase "github.com/keywell/vault/internal/rotation/usecase"
)

// ScheduleResponse represents a rotation schedule in API responses.
type ScheduleResponse struct {
	ID            string     `json:"id"`
	SecretID      string     `json:"secret_id"`
	ScheduledAt   time.Time  `json:"scheduled_at"`
	RotationType  string     `json:"rotation_type"`
	ClaimedAt     *time.Time `json:"claimed_at,omitempty"`
	Completed     bool       `json:"completed"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	Failed        bool       `json:"failed"`
	FailureReason *string    `json:"failure_reason,omitempty"`
	Cancelled     bool       `json:"cancelled"`
	CreatedAt     time.Time  `json:"created_at"`
}

// ListSchedulesResponse is a list of rotation schedules.
type ListSchedulesResponse struct {
	Schedules []ScheduleResponse `json:"schedules"`
	Count     int                `json:"count"`
}

// OutcomeResponse summarizes a rotation batch.
type OutcomeResponse struct {
	Processed int `json:"processed"`
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
}

// RotationMetricsResponse aggregates rotation outcomes over 30 days.
type RotationMetricsResponse struct {
	TotalSecrets           uint    `json:"total_secrets"`
	RotationEnabledSecrets uint    `json:"rotation_enabled_secrets"`
	CompletedLast30Days    uint    `json:"completed_last_30_days"`
	FailedLast30Days       uint    `json:"failed_last_30_days"`
	SuccessRate            float64 `json:"success_rate"`
}

// MapScheduleToResponse converts a domain schedule to an API response.
func MapScheduleToResponse(schedule *rotationDomain.RotationSchedule) ScheduleResponse {
	return ScheduleResponse{
		ID:            schedule.ID.String(),
		SecretID:      schedule.SecretID.String(),
		ScheduledAt:   schedule.ScheduledAt,
		RotationType:  string(schedule.RotationType),
		ClaimedAt:     schedule.ClaimedAt,
		Completed:     schedule.Completed,
		CompletedAt:   schedule.CompletedAt,
		Failed:        schedule.Failed,
		FailureReason: schedule.FailureReason,
		Cancelled:     schedule.Cancelled,
		CreatedAt:     schedule.CreatedAt,
	}
}

// MapSchedulesToListResponse converts domain schedules to a list response.
func MapSchedulesToListResponse(schedules []*rotationDomain.RotationSchedule) ListSchedulesResponse {
	responses := make([]ScheduleResponse, 0, len(schedules))
	for _, schedule := range schedules {
		responses = append(responses, MapScheduleToResponse(schedule))
	}
	return ListSchedulesResponse{Schedules: responses, Count: len(responses)}
}

// MapOutcomeToResponse converts a batch outcome to an API response.
func MapOutcomeToResponse(outcome *rotationUseCase.RotationOutcome) OutcomeResponse {
	return OutcomeResponse{
		Processed: outcome.Processed,
		Completed: outcome.Completed,
		Failed:    outcome.Failed,
	}
}

// MapRotationMetricsToResponse converts domain metrics to an API response.
func MapRotationMetricsToResponse(metrics *rotationDomain.RotationMetrics) RotationMetricsResponse {
	return RotationMetricsResponse{
		TotalSecrets:           metrics.TotalSecrets,
		RotationEnabledSecrets: metrics.RotationEnabledSecrets,
		CompletedLast30Days:    metrics.CompletedLast30Days,
		FailedLast30Days:       metrics.FailedLast30Days,
		SuccessRate:            metrics.SuccessRate,
	}
}
