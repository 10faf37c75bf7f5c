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

const mysqlScheduleColumns = `id, secret_id, scheduled_at, rotation_type, claimed_at,
	completed, completed_at, failed, failure_reason, cancelled, created_at`

// MySQLScheduleRepository implements RotationSchedule persistence for MySQL databases.
type MySQLScheduleRepository struct {
	db *sql.DB
}

// NewMySQLScheduleRepository creates a new MySQL schedule repository instance.
func NewMySQLScheduleRepository(db *sql.DB) *MySQLScheduleRepository {
	return &MySQLScheduleRepository{db: db}
}

// Create inserts a new rotation schedule.
func (m *MySQLScheduleRepository) Create(ctx context.Context, schedule *rotationDomain.RotationSchedule) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO rotation_schedules (` + mysqlScheduleColumns + `)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := querier.ExecContext(
		ctx,
		query,
		schedule.ID.String(),
		schedule.SecretID.String(),
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
func (m *MySQLScheduleRepository) Get(ctx context.Context, id uuid.UUID) (*rotationDomain.RotationSchedule, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + mysqlScheduleColumns + ` FROM rotation_schedules WHERE id = ? LIMIT 1`

	return scanSchedule(querier.QueryRowContext(ctx, query, id.String()))
}

// ListDue retrieves open, unclaimed schedules due at or before now, oldest first.
func (m *MySQLScheduleRepository) ListDue(ctx context.Context, now time.Time) ([]*rotationDomain.RotationSchedule, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + mysqlScheduleColumns + ` FROM rotation_schedules
			  WHERE scheduled_at <= ?
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
func (m *MySQLScheduleRepository) ListUpcoming(
	ctx context.Context,
	now, horizon time.Time,
) ([]*rotationDomain.RotationSchedule, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + mysqlScheduleColumns + ` FROM rotation_schedules
			  WHERE scheduled_at > ? AND scheduled_at <= ?
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
func (m *MySQLScheduleRepository) GetOpenBySecret(
	ctx context.Context,
	secretID uuid.UUID,
) (*rotationDomain.RotationSchedule, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + mysqlScheduleColumns + ` FROM rotation_schedules
			  WHERE secret_id = ?
				AND completed = FALSE AND failed = FALSE AND cancelled = FALSE
			  ORDER BY scheduled_at
			  LIMIT 1`

	return scanSchedule(querier.QueryRowContext(ctx, query, secretID.String()))
}

// Claim marks the schedule as claimed by a worker. Returns false when the
// schedule was already claimed or settled.
func (m *MySQLScheduleRepository) Claim(ctx context.Context, id uuid.UUID) (bool, error) {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE rotation_schedules
			  SET claimed_at = ?
			  WHERE id = ?
				AND claimed_at IS NULL
				AND completed = FALSE AND failed = FALSE AND cancelled = FALSE`

	result, err := querier.ExecContext(ctx, query, time.Now().UTC(), id.String())
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
func (m *MySQLScheduleRepository) MarkCompleted(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE rotation_schedules
			  SET completed = TRUE, completed_at = ?
			  WHERE id = ? AND completed = FALSE AND failed = FALSE AND cancelled = FALSE`

	return settleSchedule(ctx, querier, query, time.Now().UTC(), id.String())
}

// MarkFailed settles a claimed schedule as failed with the rotation error.
func (m *MySQLScheduleRepository) MarkFailed(ctx context.Context, id uuid.UUID, reason string) error {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE rotation_schedules
			  SET failed = TRUE, completed_at = ?, failure_reason = ?
			  WHERE id = ? AND completed = FALSE AND failed = FALSE AND cancelled = FALSE`

	return settleSchedule(ctx, querier, query, time.Now().UTC(), reason, id.String())
}

// Cancel withdraws an open schedule.
func (m *MySQLScheduleRepository) Cancel(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE rotation_schedules
			  SET cancelled = TRUE
			  WHERE id = ?
				AND claimed_at IS NULL
				AND completed = FALSE AND failed = FALSE AND cancelled = FALSE`

	return settleSchedule(ctx, querier, query, id.String())
}

// CountSettledSince counts completed and failed schedules settled after the
// given time.
func (m *MySQLScheduleRepository) CountSettledSince(
	ctx context.Context,
	since time.Time,
) (completed, failed uint, err error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT
				  COALESCE(SUM(completed = TRUE), 0),
				  COALESCE(SUM(failed = TRUE), 0)
			  FROM rotation_schedules
			  WHERE completed_at >= ?`

	err = querier.QueryRowContext(ctx, query, since).Scan(&completed, &failed)
	if err != nil {
		return 0, 0, apperrors.Wrap(err, "failed to count settled schedules")
	}
	return completed, failed, nil
}
