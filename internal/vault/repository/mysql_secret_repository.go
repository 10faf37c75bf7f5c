package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/keywell/vault/internal/database"
	apperrors "github.com/keywell/vault/internal/errors"
	vaultDomain "github.com/keywell/vault/internal/vault/domain"
)

const mysqlSecretColumns = `id, name, type, current_version, status, rotation_enabled,
	rotation_interval_days, created_at, updated_at, rotating_since, expires_at, tags, metadata`

// MySQLSecretRepository implements Secret persistence for MySQL databases.
type MySQLSecretRepository struct {
	db *sql.DB
}

// NewMySQLSecretRepository creates a new MySQL Secret repository instance.
func NewMySQLSecretRepository(db *sql.DB) *MySQLSecretRepository {
	return &MySQLSecretRepository{db: db}
}

// Create inserts a new secret into the MySQL database.
func (m *MySQLSecretRepository) Create(ctx context.Context, secret *vaultDomain.Secret) error {
	querier := database.GetTx(ctx, m.db)

	tags, metadata, err := marshalSecretJSON(secret)
	if err != nil {
		return err
	}

	query := `INSERT INTO secrets (` + mysqlSecretColumns + `)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		secret.ID.String(),
		secret.Name,
		secret.Type,
		secret.CurrentVersion,
		secret.Status,
		secret.RotationEnabled,
		secret.RotationIntervalDays,
		secret.CreatedAt,
		secret.UpdatedAt,
		secret.RotatingSince,
		secret.ExpiresAt,
		tags,
		metadata,
	)
	if err != nil {
		if isMySQLUniqueViolation(err) {
			return vaultDomain.ErrSecretExists
		}
		return apperrors.Wrap(err, "failed to create secret")
	}
	return nil
}

// Get retrieves a secret by its id.
func (m *MySQLSecretRepository) Get(ctx context.Context, id uuid.UUID) (*vaultDomain.Secret, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + mysqlSecretColumns + ` FROM secrets WHERE id = ? LIMIT 1`

	return scanSecret(querier.QueryRowContext(ctx, query, id.String()))
}

// GetByName retrieves a secret by its unique name.
func (m *MySQLSecretRepository) GetByName(ctx context.Context, name string) (*vaultDomain.Secret, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + mysqlSecretColumns + ` FROM secrets WHERE name = ? LIMIT 1`

	return scanSecret(querier.QueryRowContext(ctx, query, name))
}

// List retrieves secrets ordered by name with pagination.
func (m *MySQLSecretRepository) List(ctx context.Context, offset, limit int) ([]*vaultDomain.Secret, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + mysqlSecretColumns + ` FROM secrets ORDER BY name LIMIT ? OFFSET ?`

	rows, err := querier.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list secrets")
	}
	defer rows.Close()

	return scanSecrets(rows)
}

// ListByStatus retrieves all secrets with the given status ordered by name.
func (m *MySQLSecretRepository) ListByStatus(
	ctx context.Context,
	status vaultDomain.SecretStatus,
) ([]*vaultDomain.Secret, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + mysqlSecretColumns + ` FROM secrets WHERE status = ? ORDER BY name`

	rows, err := querier.QueryContext(ctx, query, status)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list secrets by status")
	}
	defer rows.Close()

	return scanSecrets(rows)
}

// ListStuckRotating retrieves secrets holding rotating status since before
// the cutoff.
func (m *MySQLSecretRepository) ListStuckRotating(
	ctx context.Context,
	cutoff time.Time,
) ([]*vaultDomain.Secret, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + mysqlSecretColumns + ` FROM secrets
			  WHERE status = ? AND rotating_since IS NOT NULL AND rotating_since < ?
			  ORDER BY rotating_since`

	rows, err := querier.QueryContext(ctx, query, vaultDomain.SecretStatusRotating, cutoff)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list stuck rotating secrets")
	}
	defer rows.Close()

	return scanSecrets(rows)
}

// TransitionStatus atomically moves a secret from one status to another.
func (m *MySQLSecretRepository) TransitionStatus(
	ctx context.Context,
	id uuid.UUID,
	from, to vaultDomain.SecretStatus,
) (bool, error) {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE secrets
			  SET status = ?,
				  rotating_since = CASE WHEN ? = 'rotating' THEN ? ELSE NULL END,
				  updated_at = ?
			  WHERE id = ? AND status = ?`

	now := time.Now().UTC()
	result, err := querier.ExecContext(ctx, query, to, to, now, now, id.String(), from)
	if err != nil {
		return false, apperrors.Wrap(err, "failed to transition secret status")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, apperrors.Wrap(err, "failed to read affected rows")
	}
	return affected == 1, nil
}

// SetCurrentVersion updates the version number served for reads.
func (m *MySQLSecretRepository) SetCurrentVersion(
	ctx context.Context,
	id uuid.UUID,
	version uint,
) error {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE secrets SET current_version = ?, updated_at = ? WHERE id = ?`

	_, err := querier.ExecContext(ctx, query, version, time.Now().UTC(), id.String())
	if err != nil {
		return apperrors.Wrap(err, "failed to set current version")
	}
	return nil
}

// Count returns the total number of secrets.
func (m *MySQLSecretRepository) Count(ctx context.Context) (uint, error) {
	querier := database.GetTx(ctx, m.db)

	var count uint
	err := querier.QueryRowContext(ctx, `SELECT COUNT(*) FROM secrets`).Scan(&count)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to count secrets")
	}
	return count, nil
}

// CountRotationEnabled returns the number of secrets with automatic rotation on.
func (m *MySQLSecretRepository) CountRotationEnabled(ctx context.Context) (uint, error) {
	querier := database.GetTx(ctx, m.db)

	var count uint
	err := querier.QueryRowContext(
		ctx,
		`SELECT COUNT(*) FROM secrets WHERE rotation_enabled = TRUE`,
	).Scan(&count)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to count rotation enabled secrets")
	}
	return count, nil
}

// isMySQLUniqueViolation checks if the error is a MySQL unique constraint violation
func isMySQLUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	errMsg := strings.ToLower(err.Error())
	// MySQL: "Error 1062: Duplicate entry"
	return strings.Contains(errMsg, "duplicate entry") || strings.Contains(errMsg, "1062")
}
