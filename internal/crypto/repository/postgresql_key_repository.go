// Package repository implements data persistence for encryption key metadata
// and wrapped key material. Repositories support both PostgreSQL and MySQL;
// status changes are conditional updates so concurrent lifecycle transitions
// cannot interleave.
package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	cryptoDomain "github.com/keywell/vault/internal/crypto/domain"
	"github.com/keywell/vault/internal/database"
	apperrors "github.com/keywell/vault/internal/errors"
)

// PostgreSQLKeyRepository implements EncryptionKey persistence for PostgreSQL.
type PostgreSQLKeyRepository struct {
	db *sql.DB
}

// NewPostgreSQLKeyRepository creates a new PostgreSQL key repository instance.
func NewPostgreSQLKeyRepository(db *sql.DB) *PostgreSQLKeyRepository {
	return &PostgreSQLKeyRepository{db: db}
}

const pgKeyColumns = `id, version, algorithm, status, created_at, rotated_at, deprecate_at, expires_at`

// Create inserts a new encryption key metadata record.
func (p *PostgreSQLKeyRepository) Create(ctx context.Context, key *cryptoDomain.EncryptionKey) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO encryption_keys (` + pgKeyColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := querier.ExecContext(
		ctx,
		query,
		key.ID,
		key.Version,
		key.Algorithm,
		key.Status,
		key.CreatedAt,
		key.RotatedAt,
		key.DeprecateAt,
		key.ExpiresAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create encryption key")
	}
	return nil
}

// Get retrieves an encryption key by its ID.
func (p *PostgreSQLKeyRepository) Get(ctx context.Context, id uuid.UUID) (*cryptoDomain.EncryptionKey, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + pgKeyColumns + ` FROM encryption_keys WHERE id = $1`

	return scanKey(querier.QueryRowContext(ctx, query, id))
}

// GetByVersion retrieves an encryption key by its lineage version.
func (p *PostgreSQLKeyRepository) GetByVersion(ctx context.Context, version uint) (*cryptoDomain.EncryptionKey, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + pgKeyColumns + ` FROM encryption_keys WHERE version = $1`

	return scanKey(querier.QueryRowContext(ctx, query, version))
}

// GetActive retrieves the highest-version key with active status.
func (p *PostgreSQLKeyRepository) GetActive(ctx context.Context) (*cryptoDomain.EncryptionKey, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + pgKeyColumns + ` FROM encryption_keys
			  WHERE status = $1
			  ORDER BY version DESC
			  LIMIT 1`

	return scanKey(querier.QueryRowContext(ctx, query, cryptoDomain.KeyStatusActive))
}

// List retrieves all encryption keys ordered by version descending.
func (p *PostgreSQLKeyRepository) List(ctx context.Context) ([]*cryptoDomain.EncryptionKey, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + pgKeyColumns + ` FROM encryption_keys ORDER BY version DESC`

	rows, err := querier.QueryContext(ctx, query)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list encryption keys")
	}
	defer rows.Close()

	return scanKeys(rows)
}

// TransitionStatus atomically moves a key from one status to another.
// Returns false without error when the key was not in the expected status,
// which callers treat as losing the race.
func (p *PostgreSQLKeyRepository) TransitionStatus(
	ctx context.Context,
	id uuid.UUID,
	from, to cryptoDomain.KeyStatus,
) (bool, error) {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE encryption_keys
			  SET status = $1, rotated_at = CASE WHEN $1 = 'rotating' THEN $2 ELSE rotated_at END
			  WHERE id = $3 AND status = $4`

	result, err := querier.ExecContext(ctx, query, to, time.Now().UTC(), id, from)
	if err != nil {
		return false, apperrors.Wrap(err, "failed to transition key status")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, apperrors.Wrap(err, "failed to read affected rows")
	}

	return affected == 1, nil
}

// SetDeprecateAt schedules the deprecation date of a rotated-out key.
func (p *PostgreSQLKeyRepository) SetDeprecateAt(ctx context.Context, id uuid.UUID, at time.Time) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE encryption_keys SET deprecate_at = $1 WHERE id = $2`

	_, err := querier.ExecContext(ctx, query, at, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to set key deprecation date")
	}
	return nil
}

// ListExpiring retrieves active keys whose expiry falls before the given time.
func (p *PostgreSQLKeyRepository) ListExpiring(ctx context.Context, before time.Time) ([]*cryptoDomain.EncryptionKey, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + pgKeyColumns + ` FROM encryption_keys
			  WHERE status = $1 AND expires_at IS NOT NULL AND expires_at <= $2
			  ORDER BY expires_at ASC`

	rows, err := querier.QueryContext(ctx, query, cryptoDomain.KeyStatusActive, before)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list expiring keys")
	}
	defer rows.Close()

	return scanKeys(rows)
}

// ListDueForDeprecation retrieves rotated-out keys past their deprecation date.
func (p *PostgreSQLKeyRepository) ListDueForDeprecation(ctx context.Context, now time.Time) ([]*cryptoDomain.EncryptionKey, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + pgKeyColumns + ` FROM encryption_keys
			  WHERE status = $1 AND deprecate_at IS NOT NULL AND deprecate_at <= $2`

	rows, err := querier.QueryContext(ctx, query, cryptoDomain.KeyStatusRotating, now)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list keys due for deprecation")
	}
	defer rows.Close()

	return scanKeys(rows)
}

// scanKey scans a single key row, mapping sql.ErrNoRows to ErrKeyNotFound.
func scanKey(row *sql.Row) (*cryptoDomain.EncryptionKey, error) {
	var key cryptoDomain.EncryptionKey
	err := row.Scan(
		&key.ID,
		&key.Version,
		&key.Algorithm,
		&key.Status,
		&key.CreatedAt,
		&key.RotatedAt,
		&key.DeprecateAt,
		&key.ExpiresAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, cryptoDomain.ErrKeyNotFound
		}
		return nil, apperrors.Wrap(err, "failed to scan encryption key")
	}
	return &key, nil
}

// scanKeys scans all key rows from a result set.
func scanKeys(rows *sql.Rows) ([]*cryptoDomain.EncryptionKey, error) {
	var keys []*cryptoDomain.EncryptionKey
	for rows.Next() {
		var key cryptoDomain.EncryptionKey
		err := rows.Scan(
			&key.ID,
			&key.Version,
			&key.Algorithm,
			&key.Status,
			&key.CreatedAt,
			&key.RotatedAt,
			&key.DeprecateAt,
			&key.ExpiresAt,
		)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan encryption key")
		}
		keys = append(keys, &key)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate encryption keys")
	}
	return keys, nil
}
