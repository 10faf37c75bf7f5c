package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/keywell/vault/internal/database"
	apperrors "github.com/keywell/vault/internal/errors"
)

// PostgreSQLMaterialRepository persists wrapped key material for PostgreSQL.
// The table holds only the wrapped bytes; metadata lives in encryption_keys.
type PostgreSQLMaterialRepository struct {
	db *sql.DB
}

// NewPostgreSQLMaterialRepository creates a new PostgreSQL material repository instance.
func NewPostgreSQLMaterialRepository(db *sql.DB) *PostgreSQLMaterialRepository {
	return &PostgreSQLMaterialRepository{db: db}
}

// Get retrieves the wrapped material for a key.
func (p *PostgreSQLMaterialRepository) Get(ctx context.Context, keyID string) ([]byte, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT wrapped_material FROM key_material WHERE key_id = $1`

	var wrapped []byte
	if err := querier.QueryRowContext(ctx, query, keyID).Scan(&wrapped); err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get key material")
	}

	return wrapped, nil
}

// Put inserts the wrapped material for a key.
func (p *PostgreSQLMaterialRepository) Put(ctx context.Context, keyID string, wrapped []byte) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO key_material (key_id, wrapped_material, created_at) VALUES ($1, $2, $3)`

	_, err := querier.ExecContext(ctx, query, keyID, wrapped, time.Now().UTC())
	if err != nil {
		return apperrors.Wrap(err, "failed to store key material")
	}
	return nil
}

// Delete removes the wrapped material row. This is a hard delete.
func (p *PostgreSQLMaterialRepository) Delete(ctx context.Context, keyID string) error {
	querier := database.GetTx(ctx, p.db)

	query := `DELETE FROM key_material WHERE key_id = $1`

	_, err := querier.ExecContext(ctx, query, keyID)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete key material")
	}
	return nil
}
