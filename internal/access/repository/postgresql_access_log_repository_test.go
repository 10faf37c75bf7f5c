package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	accessDomain "github.com/keywell/vault/internal/access/domain"
	"github.com/keywell/vault/internal/testutil"
)

func newTestLogEntry(secretName string, operation accessDomain.Operation, granted bool) *accessDomain.AccessLogEntry {
	return &accessDomain.AccessLogEntry{
		ID:         uuid.Must(uuid.NewV7()),
		SecretName: secretName,
		AccessedBy: "user:alice",
		AccessType: operation,
		Granted:    granted,
		Timestamp:  time.Now().UTC(),
	}
}

func TestPostgreSQLAccessLogRepository_Create(t *testing.T) {
	testutil.SkipIfNoPostgres(t)

	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLAccessLogRepository(db)
	ctx := context.Background()

	secretID := testutil.CreateTestSecret(t, db, "postgres", "db/logged-secret")

	entry := newTestLogEntry("db/logged-secret", accessDomain.OperationRead, true)
	entry.SecretID = &secretID

	err := repo.Create(ctx, entry)
	require.NoError(t, err)

	entries, err := repo.List(ctx, "db/logged-secret", 0, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, entry.ID, entries[0].ID)
	assert.Equal(t, "user:alice", entries[0].AccessedBy)
	assert.Equal(t, accessDomain.OperationRead, entries[0].AccessType)
	assert.True(t, entries[0].Granted)
	require.NotNil(t, entries[0].SecretID)
	assert.Equal(t, secretID, *entries[0].SecretID)
}

func TestPostgreSQLAccessLogRepository_Create_NilSecretID(t *testing.T) {
	testutil.SkipIfNoPostgres(t)

	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLAccessLogRepository(db)
	ctx := context.Background()

	// Denied lookups of unknown secrets are logged without a secret id
	entry := newTestLogEntry("db/unknown-secret", accessDomain.OperationRead, false)
	err := repo.Create(ctx, entry)
	require.NoError(t, err)

	entries, err := repo.List(ctx, "db/unknown-secret", 0, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Nil(t, entries[0].SecretID)
	assert.False(t, entries[0].Granted)
}

func TestPostgreSQLAccessLogRepository_List_FilterAndPagination(t *testing.T) {
	testutil.SkipIfNoPostgres(t)

	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLAccessLogRepository(db)
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		entry := newTestLogEntry("db/filtered-secret", accessDomain.OperationRead, true)
		entry.Timestamp = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, repo.Create(ctx, entry))
	}
	require.NoError(t, repo.Create(ctx, newTestLogEntry("db/other-secret", accessDomain.OperationRead, true)))

	// Filtered by secret name, newest first
	entries, err := repo.List(ctx, "db/filtered-secret", 0, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.True(t, entries[0].Timestamp.After(entries[1].Timestamp))

	entries, err = repo.List(ctx, "db/filtered-secret", 2, 2)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	// Empty name returns everything
	entries, err = repo.List(ctx, "", 0, 10)
	require.NoError(t, err)
	assert.Len(t, entries, 4)
}

func TestPostgreSQLAccessLogRepository_Metrics(t *testing.T) {
	testutil.SkipIfNoPostgres(t)

	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLAccessLogRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newTestLogEntry("db/metrics-secret", accessDomain.OperationRead, true)))
	require.NoError(t, repo.Create(ctx, newTestLogEntry("db/metrics-secret", accessDomain.OperationRead, true)))
	require.NoError(t, repo.Create(ctx, newTestLogEntry("db/metrics-secret", accessDomain.OperationRotate, false)))

	// An old entry outside the window
	old := newTestLogEntry("db/metrics-secret", accessDomain.OperationDelete, true)
	old.Timestamp = time.Now().UTC().Add(-48 * time.Hour)
	require.NoError(t, repo.Create(ctx, old))

	metrics, err := repo.Metrics(ctx, time.Now().UTC().Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, uint(3), metrics.TotalAttempts)
	assert.Equal(t, uint(2), metrics.GrantedCount)
	assert.Equal(t, uint(1), metrics.DeniedCount)
	assert.Equal(t, uint(2), metrics.ByOperation[accessDomain.OperationRead])
	assert.Equal(t, uint(1), metrics.ByOperation[accessDomain.OperationRotate])
}
