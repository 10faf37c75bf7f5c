// Package repository implements vault persistence for PostgreSQL and MySQL.
// Secret history is append-only: version rows are inserted, never rewritten,
// and status changes go through conditional updates so concurrent rotations
// cannot interleave.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/keywell/vault/internal/database"
	apperrors "github.com/keywell/vault/internal/errors"
	vaultDomain "github.com/keywell/vault/internal/vault/domain"
)

const pgSecretColumns = `id, name, type, current_version, status, rotation_enabled,
	rotation_interval_days, created_at, updated_at, rotating_since, expires_at, tags, metadata`

// PostgreSQLSecretRepository implements Secret persistence for PostgreSQL databases.
type PostgreSQLSecretRepository struct {
	db *sql.DB
}

// NewPostgreSQLSecretRepository creates a new PostgreSQL Secret repository instance.
func NewPostgreSQLSecretRepository(db *sql.DB) *PostgreSQLSecretRepository {
	return &PostgreSQLSecretRepository{db: db}
}

// Create inserts a new secret into the PostgreSQL database.
func (p *PostgreSQLSecretRepository) Create(ctx context.Context, secret *vaultDomain.Secret) error {
	querier := database.GetTx(ctx, p.db)

	tags, metadata, err := marshalSecretJSON(secret)
	if err != nil {
		return err
	}

	query := `INSERT INTO secrets (` + pgSecretColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err = querier.ExecContext(
		ctx,
		query,
		secret.ID,
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
		if isPostgreSQLUniqueViolation(err) {
			return vaultDomain.ErrSecretExists
		}
		return apperrors.Wrap(err, "failed to create secret")
	}
	return nil
}

// Get retrieves a secret by its id.
func (p *PostgreSQLSecretRepository) Get(ctx context.Context, id uuid.UUID) (*vaultDomain.Secret, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + pgSecretColumns + ` FROM secrets WHERE id = $1 LIMIT 1`

	return scanSecret(querier.QueryRowContext(ctx, query, id))
}

// GetByName retrieves a secret by its unique name.
func (p *PostgreSQLSecretRepository) GetByName(ctx context.Context, name string) (*vaultDomain.Secret, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + pgSecretColumns + ` FROM secrets WHERE name = $1 LIMIT 1`

	return scanSecret(querier.QueryRowContext(ctx, query, name))
}

// List retrieves secrets ordered by name with pagination. Values are not
// included; secrets carry metadata only.
func (p *PostgreSQLSecretRepository) List(ctx context.Context, offset, limit int) ([]*vaultDomain.Secret, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + pgSecretColumns + ` FROM secrets ORDER BY name OFFSET $1 LIMIT $2`

	rows, err := querier.QueryContext(ctx, query, offset, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list secrets")
	}
	defer rows.Close()

	return scanSecrets(rows)
}

// ListByStatus retrieves all secrets with the given status ordered by name.
func (p *PostgreSQLSecretRepository) ListByStatus(
	ctx context.Context,
	status vaultDomain.SecretStatus,
) ([]*vaultDomain.Secret, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + pgSecretColumns + ` FROM secrets WHERE status = $1 ORDER BY name`

	rows, err := querier.QueryContext(ctx, query, status)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list secrets by status")
	}
	defer rows.Close()

	return scanSecrets(rows)
}

// ListStuckRotating retrieves secrets that have held rotating status since
// before the cutoff. They are flagged for operator intervention, never
// silently unlocked.
func (p *PostgreSQLSecretRepository) ListStuckRotating(
	ctx context.Context,
	cutoff time.Time,
) ([]*vaultDomain.Secret, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + pgSecretColumns + ` FROM secrets
			  WHERE status = $1 AND rotating_since IS NOT NULL AND rotating_since < $2
			  ORDER BY rotating_since`

	rows, err := querier.QueryContext(ctx, query, vaultDomain.SecretStatusRotating, cutoff)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list stuck rotating secrets")
	}
	defer rows.Close()

	return scanSecrets(rows)
}

// TransitionStatus atomically moves a secret from one status to another.
// It returns false without error when the secret was not in the expected
// status, which signals a lost compare-and-swap race.
func (p *PostgreSQLSecretRepository) TransitionStatus(
	ctx context.Context,
	id uuid.UUID,
	from, to vaultDomain.SecretStatus,
) (bool, error) {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE secrets
			  SET status = $1,
				  rotating_since = CASE WHEN $1 = 'rotating' THEN $2 ELSE NULL END,
				  updated_at = $2
			  WHERE id = $3 AND status = $4`

	result, err := querier.ExecContext(ctx, query, to, time.Now().UTC(), id, from)
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
func (p *PostgreSQLSecretRepository) SetCurrentVersion(
	ctx context.Context,
	id uuid.UUID,
	version uint,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE secrets SET current_version = $1, updated_at = $2 WHERE id = $3`

	_, err := querier.ExecContext(ctx, query, version, time.Now().UTC(), id)
	if err != nil {
		return apperrors.Wrap(err, "failed to set current version")
	}
	return nil
}

// Count returns the total number of secrets.
func (p *PostgreSQLSecretRepository) Count(ctx context.Context) (uint, error) {
	querier := database.GetTx(ctx, p.db)

	var count uint
	err := querier.QueryRowContext(ctx, `SELECT COUNT(*) FROM secrets`).Scan(&count)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to count secrets")
	}
	return count, nil
}

// CountRotationEnabled returns the number of secrets with automatic rotation on.
func (p *PostgreSQLSecretRepository) CountRotationEnabled(ctx context.Context) (uint, error) {
	querier := database.GetTx(ctx, p.db)

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

// isPostgreSQLUniqueViolation checks if the error is a PostgreSQL unique constraint violation
func isPostgreSQLUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	errMsg := strings.ToLower(err.Error())
	// PostgreSQL: "duplicate key value violates unique constraint" or "pq: duplicate key"
	return strings.Contains(errMsg, "duplicate key") || strings.Contains(errMsg, "unique constraint")
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSecret(row rowScanner) (*vaultDomain.Secret, error) {
	var secret vaultDomain.Secret
	var tags, metadata []byte

	err := row.Scan(
		&secret.ID,
		&secret.Name,
		&secret.Type,
		&secret.CurrentVersion,
		&secret.Status,
		&secret.RotationEnabled,
		&secret.RotationIntervalDays,
		&secret.CreatedAt,
		&secret.UpdatedAt,
		&secret.RotatingSince,
		&secret.ExpiresAt,
		&tags,
		&metadata,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, vaultDomain.ErrSecretNotFound
		}
		return nil, apperrors.Wrap(err, "failed to scan secret")
	}

	if err := unmarshalSecretJSON(&secret, tags, metadata); err != nil {
		return nil, err
	}
	return &secret, nil
}

func scanSecrets(rows *sql.Rows) ([]*vaultDomain.Secret, error) {
	var secrets []*vaultDomain.Secret
	for rows.Next() {
		secret, err := scanSecret(rows)
		if err != nil {
			return nil, err
		}
		secrets = append(secrets, secret)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate secrets")
	}
	return secrets, nil
}

func marshalSecretJSON(secret *vaultDomain.Secret) (tags, metadata []byte, err error) {
	tags, err = json.Marshal(secret.Tags)
	if err != nil {
		return nil, nil, apperrors.Wrap(err, "failed to marshal secret tags")
	}
	metadata, err = json.Marshal(secret.Metadata)
	if err != nil {
		return nil, nil, apperrors.Wrap(err, "failed to marshal secret metadata")
	}
	return tags, metadata, nil
}

func unmarshalSecretJSON(secret *vaultDomain.Secret, tags, metadata []byte) error {
	if len(tags) > 0 {
		if err := json.Unmarshal(tags, &secret.Tags); err != nil {
			return apperrors.Wrap(err, "failed to unmarshal secret tags")
		}
	}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &secret.Metadata); err != nil {
			return apperrors.Wrap(err, "failed to unmarshal secret metadata")
		}
	}
	return nil
}
