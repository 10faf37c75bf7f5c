package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	accessDomain "github.com/keywell/vault/internal/access/domain"
	accessService "github.com/keywell/vault/internal/access/service"
	apperrors "github.com/keywell/vault/internal/errors"
	rotationDomain "github.com/keywell/vault/internal/rotation/domain"
	vaultDomain "github.com/keywell/vault/internal/vault/domain"
)

const metricsWindow = 30 * 24 * time.Hour

// systemActor identifies the scheduler in access checks and audit records.
// A policy granting the rotate operation to this service must exist for
// automatic rotation to work.
var systemActor = accessDomain.Actor{Service: "rotation-scheduler"}

// Config holds the scheduler worker settings.
type Config struct {
	// Interval between scheduler runs.
	Interval time.Duration
	// StaleAfter marks secrets stuck in rotating longer than this.
	StaleAfter time.Duration
	// EmergencyConcurrency bounds parallel rotations during an emergency run.
	EmergencyConcurrency int
}

type schedulerUseCase struct {
	scheduleRepo ScheduleRepository
	vault        SecretVault
	resolver     SecretResolver
	matcher      accessService.PatternMatcher
	config       Config
	logger       *slog.Logger
}

// NewSchedulerUseCase creates a new scheduler use case.
func NewSchedulerUseCase(
	scheduleRepo ScheduleRepository,
	vault SecretVault,
	resolver SecretResolver,
	matcher accessService.PatternMatcher,
	config Config,
	logger *slog.Logger,
) SchedulerUseCase {
	return &schedulerUseCase{
		scheduleRepo: scheduleRepo,
		vault:        vault,
		resolver:     resolver,
		matcher:      matcher,
		config:       config,
		logger:       logger,
	}
}

func (s *schedulerUseCase) RotateAllDueSecrets(ctx context.Context) (*RotationOutcome, error) {
	due, err := s.scheduleRepo.ListDue(ctx, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	outcome := &RotationOutcome{}
	for _, schedule := range due {
		// The claim is the idempotency gate: overlapping workers race on it
		// and exactly one proceeds.
		claimed, err := s.scheduleRepo.Claim(ctx, schedule.ID)
		if err != nil {
			s.logger.Error("failed to claim rotation schedule",
				slog.String("schedule_id", schedule.ID.String()),
				slog.String("error", err.Error()),
			)
			continue
		}
		if !claimed {
			continue
		}

		outcome.Processed++
		if err := s.processSchedule(ctx, schedule); err != nil {
			outcome.Failed++
			s.logger.Error("scheduled rotation failed",
				slog.String("schedule_id", schedule.ID.String()),
				slog.String("secret_id", schedule.SecretID.String()),
				slog.String("error", err.Error()),
			)
			continue
		}
		outcome.Completed++
	}

	return outcome, nil
}

// processSchedule rotates one claimed schedule and settles it.
func (s *schedulerUseCase) processSchedule(ctx context.Context, schedule *rotationDomain.RotationSchedule) error {
	secret, err := s.resolver.Get(ctx, schedule.SecretID)
	if err != nil {
		s.settleFailed(ctx, schedule.ID, err)
		return err
	}

	if _, err := s.vault.RotateSecret(ctx, secret.Name, systemActor); err != nil {
		s.settleFailed(ctx, schedule.ID, err)
		return err
	}

	if err := s.scheduleRepo.MarkCompleted(ctx, schedule.ID); err != nil {
		return apperrors.Wrap(err, "mark rotation schedule completed")
	}

	s.logger.Info("rotated secret on schedule",
		slog.String("secret_name", secret.Name),
		slog.String("rotation_type", string(schedule.RotationType)),
	)
	return nil
}

func (s *schedulerUseCase) settleFailed(ctx context.Context, scheduleID uuid.UUID, cause error) {
	if err := s.scheduleRepo.MarkFailed(ctx, scheduleID, cause.Error()); err != nil {
		s.logger.Error("failed to mark rotation schedule failed",
			slog.String("schedule_id", scheduleID.String()),
			slog.String("error", err.Error()),
		)
	}
}

func (s *schedulerUseCase) ScheduleRotation(
	ctx context.Context,
	secretID uuid.UUID,
	at time.Time,
	rotationType rotationDomain.RotationType,
) (*rotationDomain.RotationSchedule, error) {
	if !rotationType.IsValid() {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, fmt.Sprintf("invalid rotation type %q", rotationType))
	}

	if _, err := s.resolver.Get(ctx, secretID); err != nil {
		return nil, err
	}

	existing, err := s.scheduleRepo.GetOpenBySecret(ctx, secretID)
	if err != nil && !apperrors.Is(err, rotationDomain.ErrScheduleNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, rotationDomain.ErrScheduleExists
	}

	schedule := &rotationDomain.RotationSchedule{
		ID:           uuid.Must(uuid.NewV7()),
		SecretID:     secretID,
		ScheduledAt:  at.UTC(),
		RotationType: rotationType,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.scheduleRepo.Create(ctx, schedule); err != nil {
		return nil, err
	}
	return schedule, nil
}

func (s *schedulerUseCase) CancelScheduledRotation(ctx context.Context, scheduleID uuid.UUID) error {
	if _, err := s.scheduleRepo.Get(ctx, scheduleID); err != nil {
		return err
	}
	return s.scheduleRepo.Cancel(ctx, scheduleID)
}

func (s *schedulerUseCase) EmergencyRotateAll(ctx context.Context, pattern string) (*RotationOutcome, error) {
	secrets, err := s.vault.ListSecretsByStatus(ctx, vaultDomain.SecretStatusActive)
	if err != nil {
		return nil, err
	}

	var targets []*vaultDomain.Secret
	for _, secret := range secrets {
		if pattern != "" {
			matched, err := s.matcher.Matches(pattern, secret.Name)
			if err != nil {
				return nil, err
			}
			if !matched {
				continue
			}
		}
		targets = append(targets, secret)
	}

	outcome := &RotationOutcome{Processed: len(targets)}
	var group errgroup.Group
	group.SetLimit(s.config.EmergencyConcurrency)

	results := make([]error, len(targets))
	for i, secret := range targets {
		group.Go(func() error {
			_, err := s.vault.RotateSecret(ctx, secret.Name, systemActor)
			results[i] = err
			s.recordEmergency(ctx, secret.ID, err)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	for i, err := range results {
		if err != nil {
			outcome.Failed++
			s.logger.Error("emergency rotation failed",
				slog.String("secret_name", targets[i].Name),
				slog.String("error", err.Error()),
			)
			continue
		}
		outcome.Completed++
	}

	s.logger.Warn("emergency rotation finished",
		slog.String("pattern", pattern),
		slog.Int("processed", outcome.Processed),
		slog.Int("failed", outcome.Failed),
	)
	return outcome, nil
}

// recordEmergency writes a settled schedule row so emergency rotations show
// up in the audit trail and rotation metrics alongside scheduled ones.
func (s *schedulerUseCase) recordEmergency(ctx context.Context, secretID uuid.UUID, rotationErr error) {
	now := time.Now().UTC()
	schedule := &rotationDomain.RotationSchedule{
		ID:           uuid.Must(uuid.NewV7()),
		SecretID:     secretID,
		ScheduledAt:  now,
		RotationType: rotationDomain.RotationTypeEmergency,
		ClaimedAt:    &now,
		CreatedAt:    now,
	}
	if rotationErr != nil {
		reason := rotationErr.Error()
		schedule.Failed = true
		schedule.FailureReason = &reason
	} else {
		schedule.Completed = true
		schedule.CompletedAt = &now
	}
	if err := s.scheduleRepo.Create(ctx, schedule); err != nil {
		s.logger.Error("failed to record emergency rotation",
			slog.String("secret_id", secretID.String()),
			slog.String("error", err.Error()),
		)
	}
}

func (s *schedulerUseCase) NotifyUpcomingRotations(ctx context.Context, daysAhead int) ([]*rotationDomain.RotationSchedule, error) {
	if daysAhead <= 0 {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "daysAhead must be positive")
	}
	now := time.Now().UTC()
	horizon := now.Add(time.Duration(daysAhead) * 24 * time.Hour)
	return s.scheduleRepo.ListUpcoming(ctx, now, horizon)
}

func (s *schedulerUseCase) GetRotationMetrics(ctx context.Context) (*rotationDomain.RotationMetrics, error) {
	total, rotationEnabled, err := s.vault.CountSecrets(ctx)
	if err != nil {
		return nil, err
	}

	completed, failed, err := s.scheduleRepo.CountSettledSince(ctx, time.Now().UTC().Add(-metricsWindow))
	if err != nil {
		return nil, err
	}

	metrics := &rotationDomain.RotationMetrics{
		TotalSecrets:           total,
		RotationEnabledSecrets: rotationEnabled,
		CompletedLast30Days:    completed,
		FailedLast30Days:       failed,
		SuccessRate:            1.0,
	}
	if completed+failed > 0 {
		metrics.SuccessRate = float64(completed) / float64(completed+failed)
	}
	return metrics, nil
}

func (s *schedulerUseCase) Start(ctx context.Context) error {
	s.logger.Info("starting rotation scheduler",
		slog.String("interval", s.config.Interval.String()),
	)

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("stopping rotation scheduler")
			return ctx.Err()
		case <-ticker.C:
			outcome, err := s.RotateAllDueSecrets(ctx)
			if err != nil {
				s.logger.Error("rotation scheduler run failed", slog.String("error", err.Error()))
				continue
			}
			if outcome.Processed > 0 {
				s.logger.Info("rotation scheduler run finished",
					slog.Int("processed", outcome.Processed),
					slog.Int("completed", outcome.Completed),
					slog.Int("failed", outcome.Failed),
				)
			}
			s.reportStuckSecrets(ctx)
		}
	}
}

// reportStuckSecrets flags secrets left in rotating beyond the staleness
// threshold. They are surfaced for operator intervention, never unlocked
// automatically.
func (s *schedulerUseCase) reportStuckSecrets(ctx context.Context) {
	stuck, err := s.vault.ListStuckRotating(ctx, s.config.StaleAfter)
	if err != nil {
		s.logger.Error("failed to scan for stuck rotations", slog.String("error", err.Error()))
		return
	}
	for _, secret := range stuck {
		s.logger.Warn("secret stuck in rotating status",
			slog.String("secret_name", secret.Name),
			slog.Time("rotating_since", *secret.RotatingSince),
		)
	}
}
