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

func newTestPolicy(name string, priority int) *accessDomain.AccessPolicy {
	now := time.Now().UTC()
	return &accessDomain.AccessPolicy{
		ID:                uuid.Must(uuid.NewV7()),
		PolicyName:        name,
		SecretPattern:     "db/*",
		AllowedUsers:      []string{"alice"},
		AllowedRoles:      []string{"dba"},
		AllowedServices:   []string{"billing-api"},
		AllowedOperations: []accessDomain.Operation{accessDomain.OperationRead, accessDomain.OperationRotate},
		Conditions:        map[string]string{"environment": "production"},
		Priority:          priority,
		Enabled:           true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

func TestNewPostgreSQLPolicyRepository(t *testing.T) {
	testutil.SkipIfNoPostgres(t)

	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)

	repo := NewPostgreSQLPolicyRepository(db)
	assert.NotNil(t, repo)
	assert.IsType(t, &PostgreSQLPolicyRepository{}, repo)
}

func TestPostgreSQLPolicyRepository_Create(t *testing.T) {
	testutil.SkipIfNoPostgres(t)

	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLPolicyRepository(db)
	ctx := context.Background()

	policy := newTestPolicy("db-readers", 10)
	err := repo.Create(ctx, policy)
	require.NoError(t, err)

	readPolicy, err := repo.Get(ctx, policy.ID)
	require.NoError(t, err)
	assert.Equal(t, policy.ID, readPolicy.ID)
	assert.Equal(t, "db-readers", readPolicy.PolicyName)
	assert.Equal(t, "db/*", readPolicy.SecretPattern)
	assert.Equal(t, []string{"alice"}, readPolicy.AllowedUsers)
	assert.Equal(t, []string{"dba"}, readPolicy.AllowedRoles)
	assert.Equal(t, []string{"billing-api"}, readPolicy.AllowedServices)
	assert.Equal(t, []accessDomain.Operation{accessDomain.OperationRead, accessDomain.OperationRotate}, readPolicy.AllowedOperations)
	assert.Equal(t, map[string]string{"environment": "production"}, readPolicy.Conditions)
	assert.Equal(t, 10, readPolicy.Priority)
	assert.True(t, readPolicy.Enabled)
}

func TestPostgreSQLPolicyRepository_Create_DuplicateName(t *testing.T) {
	testutil.SkipIfNoPostgres(t)

	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLPolicyRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newTestPolicy("duplicate-policy", 10)))

	err := repo.Create(ctx, newTestPolicy("duplicate-policy", 20))
	assert.ErrorIs(t, err, accessDomain.ErrPolicyExists)
}

func TestPostgreSQLPolicyRepository_GetByName(t *testing.T) {
	testutil.SkipIfNoPostgres(t)

	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLPolicyRepository(db)
	ctx := context.Background()

	policy := newTestPolicy("named-policy", 5)
	require.NoError(t, repo.Create(ctx, policy))

	readPolicy, err := repo.GetByName(ctx, "named-policy")
	require.NoError(t, err)
	assert.Equal(t, policy.ID, readPolicy.ID)

	_, err = repo.GetByName(ctx, "missing-policy")
	assert.ErrorIs(t, err, accessDomain.ErrPolicyNotFound)
}

func TestPostgreSQLPolicyRepository_ListEnabled(t *testing.T) {
	testutil.SkipIfNoPostgres(t)

	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLPolicyRepository(db)
	ctx := context.Background()

	low := newTestPolicy("low-priority", 1)
	require.NoError(t, repo.Create(ctx, low))

	high := newTestPolicy("high-priority", 100)
	require.NoError(t, repo.Create(ctx, high))

	disabled := newTestPolicy("disabled-policy", 500)
	disabled.Enabled = false
	require.NoError(t, repo.Create(ctx, disabled))

	policies, err := repo.ListEnabled(ctx)
	require.NoError(t, err)

	// The migrations seed the rotation-scheduler policy at priority 1000
	require.Len(t, policies, 3)
	assert.Equal(t, "rotation-scheduler", policies[0].PolicyName)
	assert.Equal(t, high.ID, policies[1].ID)
	assert.Equal(t, low.ID, policies[2].ID)
}

func TestPostgreSQLPolicyRepository_Update(t *testing.T) {
	testutil.SkipIfNoPostgres(t)

	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLPolicyRepository(db)
	ctx := context.Background()

	policy := newTestPolicy("mutable-policy", 10)
	require.NoError(t, repo.Create(ctx, policy))

	policy.SecretPattern = "api/*"
	policy.AllowedRoles = []string{"platform"}
	policy.Priority = 42
	policy.Enabled = false

	err := repo.Update(ctx, policy)
	require.NoError(t, err)

	readPolicy, err := repo.Get(ctx, policy.ID)
	require.NoError(t, err)
	assert.Equal(t, "api/*", readPolicy.SecretPattern)
	assert.Equal(t, []string{"platform"}, readPolicy.AllowedRoles)
	assert.Equal(t, 42, readPolicy.Priority)
	assert.False(t, readPolicy.Enabled)
}

func TestPostgreSQLPolicyRepository_Update_NotFound(t *testing.T) {
	testutil.SkipIfNoPostgres(t)

	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLPolicyRepository(db)

	err := repo.Update(context.Background(), newTestPolicy("ghost-policy", 1))
	assert.ErrorIs(t, err, accessDomain.ErrPolicyNotFound)
}

func TestPostgreSQLPolicyRepository_Delete(t *testing.T) {
	testutil.SkipIfNoPostgres(t)

	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLPolicyRepository(db)
	ctx := context.Background()

	policy := newTestPolicy("short-lived-policy", 10)
	require.NoError(t, repo.Create(ctx, policy))

	err := repo.Delete(ctx, policy.ID)
	require.NoError(t, err)

	_, err = repo.Get(ctx, policy.ID)
	assert.ErrorIs(t, err, accessDomain.ErrPolicyNotFound)

	err = repo.Delete(ctx, policy.ID)
	assert.ErrorIs(t, err, accessDomain.ErrPolicyNotFound)
}
