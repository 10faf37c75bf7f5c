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

// MySQLKeyRepository implements EncryptionKey persistence for MySQL.
type MySQLKeyRepository struct {
	db *sql.DB
}

// NewMySQLKeyRepository creates a new MySQL key repository instance.
func NewMySQLKeyRepository(db *sql.DB) *MySQLKeyRepository {
	return &MySQLKeyRepository{db: db}
}

const mysqlKeyColumns = `id, version, algorithm, status, created_at, rotated_at, deprecate_at, expires_at`

// Create inserts a new encryption key metadata record.
func (m *MySQLKeyRepository) Create(ctx context.Context, key *cryptoDomain.EncryptionKey) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO encryption_keys (` + mysqlKeyColumns + `)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := querier.ExecContext(
		ctx,
		query,
		key.ID.String(),
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
func (m *MySQLKeyRepository) Get(ctx context.Context, id uuid.UUID) (*cryptoDomain.EncryptionKey, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + mysqlKeyColumns + ` FROM encryption_keys WHERE id = ?`

	return scanKey(querier.QueryRowContext(ctx, query, id.String()))
}

// GetByVersion retrieves an encryption key by its lineage version.
func (m *MySQLKeyRepository) GetByVersion(ctx context.Context, version uint) (*cryptoDomain.EncryptionKey, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + mysqlKeyColumns + ` FROM encryption_keys WHERE version = ?`

	return scanKey(querier.QueryRowContext(ctx, query, version))
}

// GetActive retrieves the highest-version key with active status.
func (m *MySQLKeyRepository) GetActive(ctx context.Context) (*cryptoDomain.EncryptionKey, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + mysqlKeyColumns + ` FROM encryption_keys
			  WHERE status = ?
			  ORDER BY version DESC
			  LIMIT 1`

	return scanKey(querier.QueryRowContext(ctx, query, cryptoDomain.KeyStatusActive))
}

// List retrieves all encryption keys ordered by version descending.
func (m *MySQLKeyRepository) List(ctx context.Context) ([]*cryptoDomain.EncryptionKey, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + mysqlKeyColumns + ` FROM encryption_keys ORDER BY version DESC`

	rows, err := querier.QueryContext(ctx, query)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list encryption keys")
	}
	defer rows.Close()

	return scanKeys(rows)
}

// TransitionStatus atomically moves a key from one status to another.
func (m *MySQLKeyRepository) TransitionStatus(
	ctx context.Context,
	id uuid.UUID,
	from, to cryptoDomain.KeyStatus,
) (bool, error) {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE encryption_keys
			  SET status = ?, rotated_at = CASE WHEN ? = 'rotating' THEN ? ELSE rotated_at END
			  WHERE id = ? AND status = ?`

	result, err := querier.ExecContext(ctx, query, to, to, time.Now().UTC(), id.String(), from)
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
func (m *MySQLKeyRepository) SetDeprecateAt(ctx context.Context, id uuid.UUID, at time.Time) error {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE encryption_keys SET deprecate_at = ? WHERE id = ?`

	_, err := querier.ExecContext(ctx, query, at, id.String())
	if err != nil {
		return apperrors.Wrap(err, "failed to set key deprecation date")
	}
	return nil
}

// ListExpiring retrieves active keys whose expiry falls before the given time.
func (m *MySQLKeyRepository) ListExpiring(ctx context.Context, before time.Time) ([]*cryptoDomain.EncryptionKey, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + mysqlKeyColumns + ` FROM encryption_keys
			  WHERE status = ? AND expires_at IS NOT NULL AND expires_at <= ?
			  ORDER BY expires_at ASC`

	rows, err := querier.QueryContext(ctx, query, cryptoDomain.KeyStatusActive, before)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list expiring keys")
	}
	defer rows.Close()

	return scanKeys(rows)
}

// ListDueForDeprecation retrieves rotated-out keys past their deprecation date.
func (m *MySQLKeyRepository) ListDueForDeprecation(ctx context.Context, now time.Time) ([]*cryptoDomain.EncryptionKey, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + mysqlKeyColumns + ` FROM encryption_keys
			  WHERE status = ? AND deprecate_at IS NOT NULL AND deprecate_at <= ?`

	rows, err := querier.QueryContext(ctx, query, cryptoDomain.KeyStatusRotating, now)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list keys due for deprecation")
	}
	defer rows.Close()

	return scanKeys(rows)
}
