// Package usecase implements the rotation scheduler: the periodic worker
// that processes due schedules, on-demand and emergency rotation, upcoming
// rotation notification, and rotation metrics.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	accessDomain "github.com/keywell/vault/internal/access/domain"
	rotationDomain "github.com/keywell/vault/internal/rotation/domain"
	vaultDomain "github.com/keywell/vault/internal/vault/domain"
)

// ScheduleRepository defines persistence operations for rotation schedules.
type ScheduleRepository interface {
	Create(ctx context.Context, schedule *rotationDomain.RotationSchedule) error
	Get(ctx context.Context, id uuid.UUID) (*rotationDomain.RotationSchedule, error)
	ListDue(ctx context.Context, now time.Time) ([]*rotationDomain.RotationSchedule, error)
	ListUpcoming(ctx context.Context, now, horizon time.Time) ([]*rotationDomain.RotationSchedule, error)
	GetOpenBySecret(ctx context.Context, secretID uuid.UUID) (*rotationDomain.RotationSchedule, error)
	Claim(ctx context.Context, id uuid.UUID) (bool, error)
	MarkCompleted(ctx context.Context, id uuid.UUID) error
	MarkFailed(ctx context.Context, id uuid.UUID, reason string) error
	Cancel(ctx context.Context, id uuid.UUID) error
	CountSettledSince(ctx context.Context, since time.Time) (completed, failed uint, err error)
}

// SecretVault is the slice of the vault the scheduler drives.
type SecretVault interface {
	RotateSecret(ctx context.Context, name string, actor accessDomain.Actor) (*vaultDomain.Secret, error)
	ListSecretsByStatus(ctx context.Context, status vaultDomain.SecretStatus) ([]*vaultDomain.Secret, error)
	ListStuckRotating(ctx context.Context, staleAfter time.Duration) ([]*vaultDomain.Secret, error)
	CountSecrets(ctx context.Context) (total, rotationEnabled uint, err error)
}

// SecretResolver resolves secret metadata for scheduled work items.
type SecretResolver interface {
	Get(ctx context.Context, id uuid.UUID) (*vaultDomain.Secret, error)
}

// RotationOutcome summarizes one scheduler batch.
type RotationOutcome struct {
	// Processed counts schedules this worker claimed.
	Processed int
	// Completed counts successful rotations.
	Completed int
	// Failed counts rotations that errored; failures never abort the batch.
	Failed int
}

// SchedulerUseCase defines the business operations for rotation scheduling.
type SchedulerUseCase interface {
	// RotateAllDueSecrets claims and processes every due schedule, isolating
	// per-secret failures.
	RotateAllDueSecrets(ctx context.Context) (*RotationOutcome, error)

	// ScheduleRotation creates a schedule for a secret. A secret has at most
	// one open schedule at a time.
	ScheduleRotation(
		ctx context.Context,
		secretID uuid.UUID,
		at time.Time,
		rotationType rotationDomain.RotationType,
	) (*rotationDomain.RotationSchedule, error)

	// CancelScheduledRotation withdraws an open schedule.
	CancelScheduledRotation(ctx context.Context, scheduleID uuid.UUID) error

	// EmergencyRotateAll immediately rotates every active secret whose name
	// matches the glob pattern (empty pattern matches all), bypassing the
	// normal schedule.
	EmergencyRotateAll(ctx context.Context, pattern string) (*RotationOutcome, error)

	// NotifyUpcomingRotations returns open schedules due within daysAhead
	// days. Read-only.
	NotifyUpcomingRotations(ctx context.Context, daysAhead int) ([]*rotationDomain.RotationSchedule, error)

	// GetRotationMetrics aggregates rotation outcomes over the trailing 30 days.
	GetRotationMetrics(ctx context.Context) (*rotationDomain.RotationMetrics, error)

	// Start runs the periodic scheduler loop until the context is cancelled.
	Start(ctx context.Context) error
}
