package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/keywell/vault/internal/database"
	apperrors "github.com/keywell/vault/internal/errors"
	vaultDomain "github.com/keywell/vault/internal/vault/domain"
)

const mysqlVersionColumns = `id, secret_id, version_number, ciphertext, iv, salt, key_version,
	is_current, created_by, created_at, change_reason`

// MySQLVersionRepository implements SecretVersion persistence for MySQL databases.
type MySQLVersionRepository struct {
	db *sql.DB
}

// NewMySQLVersionRepository creates a new MySQL SecretVersion repository instance.
func NewMySQLVersionRepository(db *sql.DB) *MySQLVersionRepository {
	return &MySQLVersionRepository{db: db}
}

// Create inserts a new secret version.
func (m *MySQLVersionRepository) Create(ctx context.Context, version *vaultDomain.SecretVersion) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO secret_versions (` + mysqlVersionColumns + `)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := querier.ExecContext(
		ctx,
		query,
		version.ID.String(),
		version.SecretID.String(),
		version.VersionNumber,
		version.Ciphertext,
		version.IV,
		version.Salt,
		version.KeyVersion,
		version.IsCurrent,
		version.CreatedBy,
		version.CreatedAt,
		version.ChangeReason,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create secret version")
	}
	return nil
}

// GetCurrent retrieves the version currently serving reads for a secret.
func (m *MySQLVersionRepository) GetCurrent(
	ctx context.Context,
	secretID uuid.UUID,
) (*vaultDomain.SecretVersion, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + mysqlVersionColumns + ` FROM secret_versions
			  WHERE secret_id = ? AND is_current = TRUE
			  LIMIT 1`

	return scanVersion(querier.QueryRowContext(ctx, query, secretID.String()))
}

// GetByNumber retrieves a specific version of a secret.
func (m *MySQLVersionRepository) GetByNumber(
	ctx context.Context,
	secretID uuid.UUID,
	number uint,
) (*vaultDomain.SecretVersion, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + mysqlVersionColumns + ` FROM secret_versions
			  WHERE secret_id = ? AND version_number = ?
			  LIMIT 1`

	return scanVersion(querier.QueryRowContext(ctx, query, secretID.String(), number))
}

// ListBySecret retrieves all versions of a secret ordered by version number descending.
func (m *MySQLVersionRepository) ListBySecret(
	ctx context.Context,
	secretID uuid.UUID,
) ([]*vaultDomain.SecretVersion, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + mysqlVersionColumns + ` FROM secret_versions
			  WHERE secret_id = ?
			  ORDER BY version_number DESC`

	rows, err := querier.QueryContext(ctx, query, secretID.String())
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list secret versions")
	}
	defer rows.Close()

	var versions []*vaultDomain.SecretVersion
	for rows.Next() {
		version, err := scanVersion(rows)
		if err != nil {
			return nil, err
		}
		versions = append(versions, version)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate secret versions")
	}
	return versions, nil
}

// ClearCurrent unsets the is_current flag on the current version of a secret.
func (m *MySQLVersionRepository) ClearCurrent(ctx context.Context, secretID uuid.UUID) error {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE secret_versions SET is_current = FALSE
			  WHERE secret_id = ? AND is_current = TRUE`

	_, err := querier.ExecContext(ctx, query, secretID.String())
	if err != nil {
		return apperrors.Wrap(err, "failed to clear current version")
	}
	return nil
}
