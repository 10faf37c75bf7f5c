package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rotationDomain "github.com/keywell/vault/internal/rotation/domain"
	"github.com/keywell/vault/internal/testutil"
)

func newTestSchedule(secretID uuid.UUID, scheduledAt time.Time) *rotationDomain.RotationSchedule {
	return &rotationDomain.RotationSchedule{
		ID:           uuid.Must(uuid.NewV7()),
		SecretID:     secretID,
		ScheduledAt:  scheduledAt,
		RotationType: rotationDomain.RotationTypeAutomatic,
		CreatedAt:    time.Now().UTC(),
	}
}

func TestPostgreSQLScheduleRepository_CreateAndGet(t *testing.T) {
	testutil.SkipIfNoPostgres(t)

	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLScheduleRepository(db)
	ctx := context.Background()

	secretID := testutil.CreateTestSecret(t, db, "postgres", "db/scheduled-secret")

	schedule := newTestSchedule(secretID, time.Now().UTC().Add(24*time.Hour))
	err := repo.Create(ctx, schedule)
	require.NoError(t, err)

	readSchedule, err := repo.Get(ctx, schedule.ID)
	require.NoError(t, err)
	assert.Equal(t, schedule.ID, readSchedule.ID)
	assert.Equal(t, secretID, readSchedule.SecretID)
	assert.Equal(t, rotationDomain.RotationTypeAutomatic, readSchedule.RotationType)
	assert.Nil(t, readSchedule.ClaimedAt)
	assert.False(t, readSchedule.Completed)
	assert.False(t, readSchedule.Failed)
	assert.False(t, readSchedule.Cancelled)
}

func TestPostgreSQLScheduleRepository_Get_NotFound(t *testing.T) {
	testutil.SkipIfNoPostgres(t)

	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLScheduleRepository(db)

	_, err := repo.Get(context.Background(), uuid.Must(uuid.NewV7()))
	assert.ErrorIs(t, err, rotationDomain.ErrScheduleNotFound)
}

func TestPostgreSQLScheduleRepository_ListDue(t *testing.T) {
	testutil.SkipIfNoPostgres(t)

	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLScheduleRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	secretID := testutil.CreateTestSecret(t, db, "postgres", "db/due-secret")

	overdue := newTestSchedule(secretID, now.Add(-2*time.Hour))
	require.NoError(t, repo.Create(ctx, overdue))

	justDue := newTestSchedule(secretID, now.Add(-time.Minute))
	require.NoError(t, repo.Create(ctx, justDue))

	future := newTestSchedule(secretID, now.Add(24*time.Hour))
	require.NoError(t, repo.Create(ctx, future))

	claimed := newTestSchedule(secretID, now.Add(-time.Hour))
	require.NoError(t, repo.Create(ctx, claimed))
	ok, err := repo.Claim(ctx, claimed.ID)
	require.NoError(t, err)
	require.True(t, ok)

	schedules, err := repo.ListDue(ctx, now)
	require.NoError(t, err)
	require.Len(t, schedules, 2)

	// Oldest first
	assert.Equal(t, overdue.ID, schedules[0].ID)
	assert.Equal(t, justDue.ID, schedules[1].ID)
}

func TestPostgreSQLScheduleRepository_ListUpcoming(t *testing.T) {
	testutil.SkipIfNoPostgres(t)

	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLScheduleRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	secretID := testutil.CreateTestSecret(t, db, "postgres", "db/upcoming-secret")

	inWindow := newTestSchedule(secretID, now.Add(3*24*time.Hour))
	require.NoError(t, repo.Create(ctx, inWindow))

	beyondWindow := newTestSchedule(secretID, now.Add(30*24*time.Hour))
	require.NoError(t, repo.Create(ctx, beyondWindow))

	alreadyDue := newTestSchedule(secretID, now.Add(-time.Hour))
	require.NoError(t, repo.Create(ctx, alreadyDue))

	schedules, err := repo.ListUpcoming(ctx, now, now.Add(7*24*time.Hour))
	require.NoError(t, err)
	require.Len(t, schedules, 1)
	assert.Equal(t, inWindow.ID, schedules[0].ID)
}

func TestPostgreSQLScheduleRepository_GetOpenBySecret(t *testing.T) {
	testutil.SkipIfNoPostgres(t)

	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLScheduleRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	secretID := testutil.CreateTestSecret(t, db, "postgres", "db/open-secret")

	settled := newTestSchedule(secretID, now.Add(-24*time.Hour))
	require.NoError(t, repo.Create(ctx, settled))
	require.NoError(t, repo.MarkCompleted(ctx, settled.ID))

	open := newTestSchedule(secretID, now.Add(24*time.Hour))
	require.NoError(t, repo.Create(ctx, open))

	readSchedule, err := repo.GetOpenBySecret(ctx, secretID)
	require.NoError(t, err)
	assert.Equal(t, open.ID, readSchedule.ID)

	otherID := testutil.CreateTestSecret(t, db, "postgres", "db/no-schedule-secret")
	_, err = repo.GetOpenBySecret(ctx, otherID)
	assert.ErrorIs(t, err, rotationDomain.ErrScheduleNotFound)
}

func TestPostgreSQLScheduleRepository_Claim(t *testing.T) {
	testutil.SkipIfNoPostgres(t)

	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLScheduleRepository(db)
	ctx := context.Background()

	secretID := testutil.CreateTestSecret(t, db, "postgres", "db/claimed-secret")
	schedule := newTestSchedule(secretID, time.Now().UTC())
	require.NoError(t, repo.Create(ctx, schedule))

	ok, err := repo.Claim(ctx, schedule.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	readSchedule, err := repo.Get(ctx, schedule.ID)
	require.NoError(t, err)
	require.NotNil(t, readSchedule.ClaimedAt)

	// A second claim loses
	ok, err = repo.Claim(ctx, schedule.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPostgreSQLScheduleRepository_MarkCompleted(t *testing.T) {
	testutil.SkipIfNoPostgres(t)

	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLScheduleRepository(db)
	ctx := context.Background()

	secretID := testutil.CreateTestSecret(t, db, "postgres", "db/completed-secret")
	schedule := newTestSchedule(secretID, time.Now().UTC())
	require.NoError(t, repo.Create(ctx, schedule))

	err := repo.MarkCompleted(ctx, schedule.ID)
	require.NoError(t, err)

	readSchedule, err := repo.Get(ctx, schedule.ID)
	require.NoError(t, err)
	assert.True(t, readSchedule.Completed)
	require.NotNil(t, readSchedule.CompletedAt)

	// Settling twice is rejected
	err = repo.MarkCompleted(ctx, schedule.ID)
	assert.ErrorIs(t, err, rotationDomain.ErrScheduleSettled)
}

func TestPostgreSQLScheduleRepository_MarkFailed(t *testing.T) {
	testutil.SkipIfNoPostgres(t)

	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLScheduleRepository(db)
	ctx := context.Background()

	secretID := testutil.CreateTestSecret(t, db, "postgres", "db/failed-secret")
	schedule := newTestSchedule(secretID, time.Now().UTC())
	require.NoError(t, repo.Create(ctx, schedule))

	err := repo.MarkFailed(ctx, schedule.ID, "encryption key unavailable")
	require.NoError(t, err)

	readSchedule, err := repo.Get(ctx, schedule.ID)
	require.NoError(t, err)
	assert.True(t, readSchedule.Failed)
	require.NotNil(t, readSchedule.FailureReason)
	assert.Equal(t, "encryption key unavailable", *readSchedule.FailureReason)

	err = repo.MarkFailed(ctx, schedule.ID, "again")
	assert.ErrorIs(t, err, rotationDomain.ErrScheduleSettled)
}

func TestPostgreSQLScheduleRepository_Cancel(t *testing.T) {
	testutil.SkipIfNoPostgres(t)

	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLScheduleRepository(db)
	ctx := context.Background()

	secretID := testutil.CreateTestSecret(t, db, "postgres", "db/cancelled-secret")

	open := newTestSchedule(secretID, time.Now().UTC().Add(24*time.Hour))
	require.NoError(t, repo.Create(ctx, open))

	err := repo.Cancel(ctx, open.ID)
	require.NoError(t, err)

	readSchedule, err := repo.Get(ctx, open.ID)
	require.NoError(t, err)
	assert.True(t, readSchedule.Cancelled)

	// Claimed schedules cannot be cancelled out from under a worker
	claimed := newTestSchedule(secretID, time.Now().UTC())
	require.NoError(t, repo.Create(ctx, claimed))
	ok, err := repo.Claim(ctx, claimed.ID)
	require.NoError(t, err)
	require.True(t, ok)

	err = repo.Cancel(ctx, claimed.ID)
	assert.ErrorIs(t, err, rotationDomain.ErrScheduleSettled)
}

func TestPostgreSQLScheduleRepository_CountSettledSince(t *testing.T) {
	testutil.SkipIfNoPostgres(t)

	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLScheduleRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	secretID := testutil.CreateTestSecret(t, db, "postgres", "db/counted-secret")

	completedSchedule := newTestSchedule(secretID, now)
	require.NoError(t, repo.Create(ctx, completedSchedule))
	require.NoError(t, repo.MarkCompleted(ctx, completedSchedule.ID))

	failedSchedule := newTestSchedule(secretID, now)
	require.NoError(t, repo.Create(ctx, failedSchedule))
	require.NoError(t, repo.MarkFailed(ctx, failedSchedule.ID, "boom"))

	openSchedule := newTestSchedule(secretID, now)
	require.NoError(t, repo.Create(ctx, openSchedule))

	completed, failed, err := repo.CountSettledSince(ctx, now.Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, uint(1), completed)
	assert.Equal(t, uint(1), failed)

	completed, failed, err = repo.CountSettledSince(ctx, now.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, uint(0), completed)
	assert.Equal(t, uint(0), failed)
}
