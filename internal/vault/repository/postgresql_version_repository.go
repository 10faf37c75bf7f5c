package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/keywell/vault/internal/database"
	apperrors "github.com/keywell/vault/internal/errors"
	vaultDomain "github.com/keywell/vault/internal/vault/domain"
)

const pgVersionColumns = `id, secret_id, version_number, ciphertext, iv, salt, key_version,
	is_current, created_by, created_at, change_reason`

// PostgreSQLVersionRepository implements SecretVersion persistence for PostgreSQL databases.
type PostgreSQLVersionRepository struct {
	db *sql.DB
}

// NewPostgreSQLVersionRepository creates a new PostgreSQL SecretVersion repository instance.
func NewPostgreSQLVersionRepository(db *sql.DB) *PostgreSQLVersionRepository {
	return &PostgreSQLVersionRepository{db: db}
}

// Create inserts a new secret version. Version rows are immutable after
// insertion except for the is_current flag.
func (p *PostgreSQLVersionRepository) Create(ctx context.Context, version *vaultDomain.SecretVersion) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO secret_versions (` + pgVersionColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := querier.ExecContext(
		ctx,
		query,
		version.ID,
		version.SecretID,
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
func (p *PostgreSQLVersionRepository) GetCurrent(
	ctx context.Context,
	secretID uuid.UUID,
) (*vaultDomain.SecretVersion, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + pgVersionColumns + ` FROM secret_versions
			  WHERE secret_id = $1 AND is_current = TRUE
			  LIMIT 1`

	return scanVersion(querier.QueryRowContext(ctx, query, secretID))
}

// GetByNumber retrieves a specific version of a secret.
func (p *PostgreSQLVersionRepository) GetByNumber(
	ctx context.Context,
	secretID uuid.UUID,
	number uint,
) (*vaultDomain.SecretVersion, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + pgVersionColumns + ` FROM secret_versions
			  WHERE secret_id = $1 AND version_number = $2
			  LIMIT 1`

	return scanVersion(querier.QueryRowContext(ctx, query, secretID, number))
}

// ListBySecret retrieves all versions of a secret ordered by version number
// descending. Ciphertext is included; callers must not expose it in listings.
func (p *PostgreSQLVersionRepository) ListBySecret(
	ctx context.Context,
	secretID uuid.UUID,
) ([]*vaultDomain.SecretVersion, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + pgVersionColumns + ` FROM secret_versions
			  WHERE secret_id = $1
			  ORDER BY version_number DESC`

	rows, err := querier.QueryContext(ctx, query, secretID)
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

// ClearCurrent unsets the is_current flag on the current version of a
// secret. Runs inside the same transaction as the insert of the successor
// so the one-current-version invariant holds at commit.
func (p *PostgreSQLVersionRepository) ClearCurrent(ctx context.Context, secretID uuid.UUID) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE secret_versions SET is_current = FALSE
			  WHERE secret_id = $1 AND is_current = TRUE`

	_, err := querier.ExecContext(ctx, query, secretID)
	if err != nil {
		return apperrors.Wrap(err, "failed to clear current version")
	}
	return nil
}

func scanVersion(row rowScanner) (*vaultDomain.SecretVersion, error) {
	var version vaultDomain.SecretVersion

	err := row.Scan(
		&version.ID,
		&version.SecretID,
		&version.VersionNumber,
		&version.Ciphertext,
		&version.IV,
		&version.Salt,
		&version.KeyVersion,
		&version.IsCurrent,
		&version.CreatedBy,
		&version.CreatedAt,
		&version.ChangeReason,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, vaultDomain.ErrVersionNotFound
		}
		return nil, apperrors.Wrap(err, "failed to scan secret version")
	}
	return &version, nil
}
