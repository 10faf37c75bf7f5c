// Package repository implements rotation-schedule persistence for PostgreSQL
// and MySQL. Claiming a schedule is a conditional update: a schedule is
// processed at most once even with multiple workers racing on the same rows.
package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/keywell/vault/internal/database"
	apperrors "github.com/keywell/vault/internal/errors"
	rotationDomain "github.com/keywell/vault/internal/rotation/domain"
)

const pgScheduleColumns = `id, secret_id, scheduled_at, rotation_type, claimed_at,
	completed, completed_at, failed, failure_reason, cancelled, created_at`

// PostgreSQLScheduleRepository implements RotationSchedule persistence for PostgreSQL databases.
type PostgreSQLScheduleRepository struct {
	db *sql.DB
}

// NewPostgreSQLScheduleRepository creates a new PostgreSQL schedule repository instance.
func NewPostgreSQLScheduleRepository(db *sql.DB) *PostgreSQLScheduleRepository {
	return &PostgreSQLScheduleRepository{db: db}
}

// Create inserts a new rotation schedule.
func (p *PostgreSQLScheduleRepository) Create(ctx context.Context, schedule *rotationDomain.RotationSchedule) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO rotation_schedules (` + pgScheduleColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := querier.ExecContext(
		ctx,
		query,
		schedule.ID,
		schedule.SecretID,
		schedule.ScheduledAt,
		schedule.RotationType,
		schedule.ClaimedAt,
		schedule.Completed,
		schedule.CompletedAt,
		schedule.Failed,
		schedule.FailureReason,
		schedule.Cancelled,
		schedule.CreatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create rotation schedule")
	}
	return nil
}

// Get retrieves a schedule by its id.
func (p *PostgreSQLScheduleRepository) Get(ctx context.Context, id uuid.UUID) (*rotationDomain.RotationSchedule, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + pgScheduleColumns + ` FROM rotation_schedules WHERE id = $1 LIMIT 1`

	return scanSchedule(querier.QueryRowContext(ctx, query, id))
}

// ListDue retrieves open, unclaimed schedules due at or before now, oldest first.
func (p *PostgreSQLScheduleRepository) ListDue(ctx context.Context, now time.Time) ([]*rotationDomain.RotationSchedule, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + pgScheduleColumns + ` FROM rotation_schedules
			  WHERE scheduled_at <= $1
				AND claimed_at IS NULL
				AND completed = FALSE AND failed = FALSE AND cancelled = FALSE
			  ORDER BY scheduled_at`

	rows, err := querier.QueryContext(ctx, query, now)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list due schedules")
	}
	defer rows.Close()

	return scanSchedules(rows)
}

// ListUpcoming retrieves open schedules due between now and the horizon.
func (p *PostgreSQLScheduleRepository) ListUpcoming(
	ctx context.Context,
	now, horizon time.Time,
) ([]*rotationDomain.RotationSchedule, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + pgScheduleColumns + ` FROM rotation_schedules
			  WHERE scheduled_at > $1 AND scheduled_at <= $2
				AND completed = FALSE AND failed = FALSE AND cancelled = FALSE
			  ORDER BY scheduled_at`

	rows, err := querier.QueryContext(ctx, query, now, horizon)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list upcoming schedules")
	}
	defer rows.Close()

	return scanSchedules(rows)
}

// GetOpenBySecret retrieves the open schedule for a secret, if any.
func (p *PostgreSQLScheduleRepository) GetOpenBySecret(
	ctx context.Context,
	secretID uuid.UUID,
) (*rotationDomain.RotationSchedule, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + pgScheduleColumns + ` FROM rotation_schedules
			  WHERE secret_id = $1
				AND completed = FALSE AND failed = FALSE AND cancelled = FALSE
			  ORDER BY scheduled_at
			  LIMIT 1`

	return scanSchedule(querier.QueryRowContext(ctx, query, secretID))
}

// Claim marks the schedule as claimed by a worker. Returns false when the
// schedule was already claimed or settled, which makes processing idempotent.
func (p *PostgreSQLScheduleRepository) Claim(ctx context.Context, id uuid.UUID) (bool, error) {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE rotation_schedules
			  SET claimed_at = $1
			  WHERE id = $2
				AND claimed_at IS NULL
				AND completed = FALSE AND failed = FALSE AND cancelled = FALSE`

	result, err := querier.ExecContext(ctx, query, time.Now().UTC(), id)
	if err != nil {
		return false, apperrors.Wrap(err, "failed to claim schedule")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, apperrors.Wrap(err, "failed to read affected rows")
	}
	return affected == 1, nil
}

// MarkCompleted settles a claimed schedule as successful.
func (p *PostgreSQLScheduleRepository) MarkCompleted(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE rotation_schedules
			  SET completed = TRUE, completed_at = $1
			  WHERE id = $2 AND completed = FALSE AND failed = FALSE AND cancelled = FALSE`

	return settleSchedule(ctx, querier, query, time.Now().UTC(), id)
}

// MarkFailed settles a claimed schedule as failed with the rotation error.
func (p *PostgreSQLScheduleRepository) MarkFailed(ctx context.Context, id uuid.UUID, reason string) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE rotation_schedules
			  SET failed = TRUE, completed_at = $1, failure_reason = $2
			  WHERE id = $3 AND completed = FALSE AND failed = FALSE AND cancelled = FALSE`

	return settleSchedule(ctx, querier, query, time.Now().UTC(), reason, id)
}

// Cancel withdraws an open schedule.
func (p *PostgreSQLScheduleRepository) Cancel(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE rotation_schedules
			  SET cancelled = TRUE
			  WHERE id = $1
				AND claimed_at IS NULL
				AND completed = FALSE AND failed = FALSE AND cancelled = FALSE`

	return settleSchedule(ctx, querier, query, id)
}

// CountSettledSince counts completed and failed schedules settled after the
// given time.
func (p *PostgreSQLScheduleRepository) CountSettledSince(
	ctx context.Context,
	since time.Time,
) (completed, failed uint, err error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT
				  COUNT(*) FILTER (WHERE completed = TRUE),
				  COUNT(*) FILTER (WHERE failed = TRUE)
			  FROM rotation_schedules
			  WHERE completed_at >= $1`

	err = querier.QueryRowContext(ctx, query, since).Scan(&completed, &failed)
	if err != nil {
		return 0, 0, apperrors.Wrap(err, "failed to count settled schedules")
	}
	return completed, failed, nil
}

func settleSchedule(ctx context.Context, querier database.Querier, query string, args ...any) error {
	result, err := querier.ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.Wrap(err, "failed to settle schedule")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to read affected rows")
	}
	if affected == 0 {
		return rotationDomain.ErrScheduleSettled
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSchedule(row rowScanner) (*rotationDomain.RotationSchedule, error) {
	var schedule rotationDomain.RotationSchedule

	err := row.Scan(
		&schedule.ID,
		&schedule.SecretID,
		&schedule.ScheduledAt,
		&schedule.RotationType,
		&schedule.ClaimedAt,
		&schedule.Completed,
		&schedule.CompletedAt,
		&schedule.Failed,
		&schedule.FailureReason,
		&schedule.Cancelled,
		&schedule.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, rotationDomain.ErrScheduleNotFound
		}
		return nil, apperrors.Wrap(err, "failed to scan rotation schedule")
	}
	return &schedule, nil
}

func scanSchedules(rows *sql.Rows) ([]*rotationDomain.RotationSchedule, error) {
	var schedules []*rotationDomain.RotationSchedule
	for rows.Next() {
		schedule, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		schedules = append(schedules, schedule)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate schedules")
	}
	return schedules, nil
}
