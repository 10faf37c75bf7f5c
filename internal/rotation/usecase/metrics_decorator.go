package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/keywell/vault/internal/metrics"
	rotationDomain "github.com/keywell/vault/internal/rotation/domain"
)

// schedulerUseCaseWithMetrics decorates SchedulerUseCase with metrics instrumentation.
type schedulerUseCaseWithMetrics struct {
	next    SchedulerUseCase
	metrics metrics.BusinessMetrics
}

// NewSchedulerUseCaseWithMetrics wraps a SchedulerUseCase with metrics recording.
func NewSchedulerUseCaseWithMetrics(useCase SchedulerUseCase, m metrics.BusinessMetrics) SchedulerUseCase {
	return &schedulerUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (s *schedulerUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	s.metrics.RecordOperation(ctx, "rotation", operation, status)
	s.metrics.RecordDuration(ctx, "rotation", operation, time.Since(start), status)
}

func (s *schedulerUseCaseWithMetrics) RotateAllDueSecrets(ctx context.Context) (*RotationOutcome, error) {
	start := time.Now()
	outcome, err := s.next.RotateAllDueSecrets(ctx)
	s.record(ctx, "rotate_due", start, err)
	return outcome, err
}

func (s *schedulerUseCaseWithMetrics) ScheduleRotation(
	ctx context.Context,
	secretID uuid.UUID,
	at time.Time,
	rotationType rotationDomain.RotationType,
) (*rotationDomain.RotationSchedule, error) {
	start := time.Now()
	schedule, err := s.next.ScheduleRotation(ctx, secretID, at, rotationType)
	s.record(ctx, "schedule_create", start, err)
	return schedule, err
}

func (s *schedulerUseCaseWithMetrics) CancelScheduledRotation(ctx context.Context, scheduleID uuid.UUID) error {
	start := time.Now()
	err := s.next.CancelScheduledRotation(ctx, scheduleID)
	s.record(ctx, "schedule_cancel", start, err)
	return err
}

func (s *schedulerUseCaseWithMetrics) EmergencyRotateAll(ctx context.Context, pattern string) (*RotationOutcome, error) {
	start := time.Now()
	outcome, err := s.next.EmergencyRotateAll(ctx, pattern)
	s.record(ctx, "rotate_emergency", start, err)
	return outcome, err
}

func (s *schedulerUseCaseWithMetrics) NotifyUpcomingRotations(ctx context.Context, daysAhead int) ([]*rotationDomain.RotationSchedule, error) {
	start := time.Now()
	schedules, err := s.next.NotifyUpcomingRotations(ctx, daysAhead)
	s.record(ctx, "schedule_upcoming", start, err)
	return schedules, err
}

func (s *schedulerUseCaseWithMetrics) GetRotationMetrics(ctx context.Context) (*rotationDomain.RotationMetrics, error) {
	start := time.Now()
	m, err := s.next.GetRotationMetrics(ctx)
	s.record(ctx, "metrics", start, err)
	return m, err
}

func (s *schedulerUseCaseWithMetrics) Start(ctx context.Context) error {
	return s.next.Start(ctx)
}
