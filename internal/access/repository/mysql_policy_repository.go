package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	accessDomain "github.com/keywell/vault/internal/access/domain"
	"github.com/keywell/vault/internal/database"
	apperrors "github.com/keywell/vault/internal/errors"
)

const mysqlPolicyColumns = `id, policy_name, secret_pattern, allowed_users, allowed_roles,
	allowed_services, allowed_operations, conditions, priority, enabled, created_at, updated_at`

// MySQLPolicyRepository implements AccessPolicy persistence for MySQL databases.
type MySQLPolicyRepository struct {
	db *sql.DB
}

// NewMySQLPolicyRepository creates a new MySQL policy repository instance.
func NewMySQLPolicyRepository(db *sql.DB) *MySQLPolicyRepository {
	return &MySQLPolicyRepository{db: db}
}

// Create inserts a new access policy.
func (m *MySQLPolicyRepository) Create(ctx context.Context, policy *accessDomain.AccessPolicy) error {
	querier := database.GetTx(ctx, m.db)

	fields, err := marshalPolicyJSON(policy)
	if err != nil {
		return err
	}

	query := `INSERT INTO access_policies (` + mysqlPolicyColumns + `)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		policy.ID.String(),
		policy.PolicyName,
		policy.SecretPattern,
		fields.users,
		fields.roles,
		fields.services,
		fields.operations,
		fields.conditions,
		policy.Priority,
		policy.Enabled,
		policy.CreatedAt,
		policy.UpdatedAt,
	)
	if err != nil {
		if isPolicyUniqueViolation(err) {
			return accessDomain.ErrPolicyExists
		}
		return apperrors.Wrap(err, "failed to create access policy")
	}
	return nil
}

// Get retrieves a policy by its id.
func (m *MySQLPolicyRepository) Get(ctx context.Context, id uuid.UUID) (*accessDomain.AccessPolicy, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + mysqlPolicyColumns + ` FROM access_policies WHERE id = ? LIMIT 1`

	return scanPolicy(querier.QueryRowContext(ctx, query, id.String()))
}

// GetByName retrieves a policy by its unique name.
func (m *MySQLPolicyRepository) GetByName(ctx context.Context, name string) (*accessDomain.AccessPolicy, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + mysqlPolicyColumns + ` FROM access_policies WHERE policy_name = ? LIMIT 1`

	return scanPolicy(querier.QueryRowContext(ctx, query, name))
}

// ListEnabled retrieves all enabled policies ordered by priority descending.
func (m *MySQLPolicyRepository) ListEnabled(ctx context.Context) ([]*accessDomain.AccessPolicy, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + mysqlPolicyColumns + ` FROM access_policies
			  WHERE enabled = TRUE
			  ORDER BY priority DESC, policy_name`

	rows, err := querier.QueryContext(ctx, query)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list enabled policies")
	}
	defer rows.Close()

	return scanPolicies(rows)
}

// List retrieves all policies ordered by priority descending.
func (m *MySQLPolicyRepository) List(ctx context.Context) ([]*accessDomain.AccessPolicy, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + mysqlPolicyColumns + ` FROM access_policies ORDER BY priority DESC, policy_name`

	rows, err := querier.QueryContext(ctx, query)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list policies")
	}
	defer rows.Close()

	return scanPolicies(rows)
}

// Update rewrites a policy's mutable fields.
func (m *MySQLPolicyRepository) Update(ctx context.Context, policy *accessDomain.AccessPolicy) error {
	querier := database.GetTx(ctx, m.db)

	fields, err := marshalPolicyJSON(policy)
	if err != nil {
		return err
	}

	query := `UPDATE access_policies
			  SET secret_pattern = ?, allowed_users = ?, allowed_roles = ?,
				  allowed_services = ?, allowed_operations = ?, conditions = ?,
				  priority = ?, enabled = ?, updated_at = ?
			  WHERE id = ?`

	result, err := querier.ExecContext(
		ctx,
		query,
		policy.SecretPattern,
		fields.users,
		fields.roles,
		fields.services,
		fields.operations,
		fields.conditions,
		policy.Priority,
		policy.Enabled,
		time.Now().UTC(),
		policy.ID.String(),
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update access policy")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to read affected rows")
	}
	if affected == 0 {
		return accessDomain.ErrPolicyNotFound
	}
	return nil
}

// Delete removes a policy.
func (m *MySQLPolicyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, m.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM access_policies WHERE id = ?`, id.String())
	if err != nil {
		return apperrors.Wrap(err, "failed to delete access policy")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to read affected rows")
	}
	if affected == 0 {
		return accessDomain.ErrPolicyNotFound
	}
	return nil
}
