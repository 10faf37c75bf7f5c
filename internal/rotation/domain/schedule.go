// Package domain defines the rotation scheduling domain model. A schedule is
// a one-shot work item: it is created open, claimed exactly once by a worker,
// and closed as completed, failed, or cancelled.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// RotationType distinguishes how a rotation was initiated.
type RotationType string

// Rotation types.
const (
	RotationTypeAutomatic RotationType = "automatic"
	RotationTypeManual    RotationType = "manual"
	RotationTypeEmergency RotationType = "emergency"
)

// IsValid reports whether the rotation type is one of the known types.
func (r RotationType) IsValid() bool {
	switch r {
	case RotationTypeAutomatic, RotationTypeManual, RotationTypeEmergency:
		return true
	}
	return false
}

// RotationSchedule is a pending or settled rotation work item for a secret.
type RotationSchedule struct {
	// ID is the unique identifier and the idempotency key for processing.
	ID uuid.UUID
	// SecretID references the secret to rotate.
	SecretID uuid.UUID
	// ScheduledAt is when the rotation becomes due.
	ScheduledAt time.Time
	// RotationType records how this schedule was created.
	RotationType RotationType
	// ClaimedAt is set when a worker claims the schedule for processing.
	// A schedule is claimed at most once; the claim is the idempotency guard.
	ClaimedAt *time.Time
	// Completed marks a successfully processed schedule.
	Completed bool
	// CompletedAt is when processing finished, nil while open.
	CompletedAt *time.Time
	// Failed marks a schedule whose rotation errored.
	Failed bool
	// FailureReason holds the rotation error message, nil unless Failed.
	FailureReason *string
	// Cancelled marks a schedule withdrawn before processing.
	Cancelled bool
	// CreatedAt is the UTC timestamp when this schedule was created.
	CreatedAt time.Time
}

// Open reports whether the schedule is still awaiting processing.
func (s *RotationSchedule) Open() bool {
	return !s.Completed && !s.Failed && !s.Cancelled
}

// RotationMetrics aggregates scheduling outcomes for reporting.
type RotationMetrics struct {
	// TotalSecrets counts all secrets in the vault.
	TotalSecrets uint
	// RotationEnabledSecrets counts secrets with automatic rotation on.
	RotationEnabledSecrets uint
	// CompletedLast30Days counts schedules completed in the last 30 days.
	CompletedLast30Days uint
	// FailedLast30Days counts schedules failed in the last 30 days.
	FailedLast30Days uint
	// SuccessRate is completed / (completed + failed) over the window,
	// 1.0 when the window is empty.
	SuccessRate float64
}
