// Package repository implements access-control persistence for PostgreSQL
// and MySQL. Policy allow-lists and conditions are stored as JSON columns;
// the access log is append-only.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	accessDomain "github.com/keywell/vault/internal/access/domain"
	"github.com/keywell/vault/internal/database"
	apperrors "github.com/keywell/vault/internal/errors"
)

const pgPolicyColumns = `id, policy_name, secret_pattern, allowed_users, allowed_roles,
	allowed_services, allowed_operations, conditions, priority, enabled, created_at, updated_at`

// PostgreSQLPolicyRepository implements AccessPolicy persistence for PostgreSQL databases.
type PostgreSQLPolicyRepository struct {
	db *sql.DB
}

// NewPostgreSQLPolicyRepository creates a new PostgreSQL policy repository instance.
func NewPostgreSQLPolicyRepository(db *sql.DB) *PostgreSQLPolicyRepository {
	return &PostgreSQLPolicyRepository{db: db}
}

// Create inserts a new access policy.
func (p *PostgreSQLPolicyRepository) Create(ctx context.Context, policy *accessDomain.AccessPolicy) error {
	querier := database.GetTx(ctx, p.db)

	fields, err := marshalPolicyJSON(policy)
	if err != nil {
		return err
	}

	query := `INSERT INTO access_policies (` + pgPolicyColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err = querier.ExecContext(
		ctx,
		query,
		policy.ID,
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
func (p *PostgreSQLPolicyRepository) Get(ctx context.Context, id uuid.UUID) (*accessDomain.AccessPolicy, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + pgPolicyColumns + ` FROM access_policies WHERE id = $1 LIMIT 1`

	return scanPolicy(querier.QueryRowContext(ctx, query, id))
}

// GetByName retrieves a policy by its unique name.
func (p *PostgreSQLPolicyRepository) GetByName(ctx context.Context, name string) (*accessDomain.AccessPolicy, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + pgPolicyColumns + ` FROM access_policies WHERE policy_name = $1 LIMIT 1`

	return scanPolicy(querier.QueryRowContext(ctx, query, name))
}

// ListEnabled retrieves all enabled policies ordered by priority descending.
// Evaluation order is the persistence order: the first matching policy wins.
func (p *PostgreSQLPolicyRepository) ListEnabled(ctx context.Context) ([]*accessDomain.AccessPolicy, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + pgPolicyColumns + ` FROM access_policies
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
func (p *PostgreSQLPolicyRepository) List(ctx context.Context) ([]*accessDomain.AccessPolicy, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + pgPolicyColumns + ` FROM access_policies ORDER BY priority DESC, policy_name`

	rows, err := querier.QueryContext(ctx, query)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list policies")
	}
	defer rows.Close()

	return scanPolicies(rows)
}

// Update rewrites a policy's mutable fields.
func (p *PostgreSQLPolicyRepository) Update(ctx context.Context, policy *accessDomain.AccessPolicy) error {
	querier := database.GetTx(ctx, p.db)

	fields, err := marshalPolicyJSON(policy)
	if err != nil {
		return err
	}

	query := `UPDATE access_policies
			  SET secret_pattern = $1, allowed_users = $2, allowed_roles = $3,
				  allowed_services = $4, allowed_operations = $5, conditions = $6,
				  priority = $7, enabled = $8, updated_at = $9
			  WHERE id = $10`

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
		policy.ID,
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
func (p *PostgreSQLPolicyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, p.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM access_policies WHERE id = $1`, id)
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

// isPolicyUniqueViolation checks if the error is a unique constraint violation
func isPolicyUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	errMsg := strings.ToLower(err.Error())
	return strings.Contains(errMsg, "duplicate key") ||
		strings.Contains(errMsg, "unique constraint") ||
		strings.Contains(errMsg, "duplicate entry") ||
		strings.Contains(errMsg, "1062")
}

type policyJSON struct {
	users      []byte
	roles      []byte
	services   []byte
	operations []byte
	conditions []byte
}

func marshalPolicyJSON(policy *accessDomain.AccessPolicy) (*policyJSON, error) {
	var fields policyJSON
	var err error

	if fields.users, err = json.Marshal(policy.AllowedUsers); err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal allowed users")
	}
	if fields.roles, err = json.Marshal(policy.AllowedRoles); err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal allowed roles")
	}
	if fields.services, err = json.Marshal(policy.AllowedServices); err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal allowed services")
	}
	if fields.operations, err = json.Marshal(policy.AllowedOperations); err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal allowed operations")
	}
	if fields.conditions, err = json.Marshal(policy.Conditions); err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal conditions")
	}
	return &fields, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPolicy(row rowScanner) (*accessDomain.AccessPolicy, error) {
	var policy accessDomain.AccessPolicy
	var users, roles, services, operations, conditions []byte

	err := row.Scan(
		&policy.ID,
		&policy.PolicyName,
		&policy.SecretPattern,
		&users,
		&roles,
		&services,
		&operations,
		&conditions,
		&policy.Priority,
		&policy.Enabled,
		&policy.CreatedAt,
		&policy.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, accessDomain.ErrPolicyNotFound
		}
		return nil, apperrors.Wrap(err, "failed to scan access policy")
	}

	for _, field := range []struct {
		raw  []byte
		dest any
	}{
		{users, &policy.AllowedUsers},
		{roles, &policy.AllowedRoles},
		{services, &policy.AllowedServices},
		{operations, &policy.AllowedOperations},
		{conditions, &policy.Conditions},
	} {
		if len(field.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(field.raw, field.dest); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal policy field")
		}
	}
	return &policy, nil
}

func scanPolicies(rows *sql.Rows) ([]*accessDomain.AccessPolicy, error) {
	var policies []*accessDomain.AccessPolicy
	for rows.Next() {
		policy, err := scanPolicy(rows)
		if err != nil {
			return nil, err
		}
		policies = append(policies, policy)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate policies")
	}
	return policies, nil
}
