package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/keywell/vault/internal/database"
	apperrors "github.com/keywell/vault/internal/errors"
)

// MySQLMaterialRepository persists wrapped key material for MySQL.
type MySQLMaterialRepository struct {
	db *sql.DB
}

// NewMySQLMaterialRepository creates a new MySQL material repository instance.
func NewMySQLMaterialRepository(db *sql.DB) *MySQLMaterialRepository {
	return &MySQLMaterialRepository{db: db}
}

// Get retrieves the wrapped material for a key.
func (m *MySQLMaterialRepository) Get(ctx context.Context, keyID string) ([]byte, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT wrapped_material FROM key_material WHERE key_id = ?`

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
func (m *MySQLMaterialRepository) Put(ctx context.Context, keyID string, wrapped []byte) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO key_material (key_id, wrapped_material, created_at) VALUES (?, ?, ?)`

	_, err := querier.ExecContext(ctx, query, keyID, wrapped, time.Now().UTC())
	if err != nil {
		return apperrors.Wrap(err, "failed to store key material")
	}
	return nil
}

// Delete removes the wrapped material row. This is a hard delete.
func (m *MySQLMaterialRepository) Delete(ctx context.Context, keyID string) error {
	querier := database.GetTx(ctx, m.db)

	query := `DELETE FROM key_material WHERE key_id = ?`

	_, err := querier.ExecContext(ctx, query, keyID)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete key material")
	}
	return nil
}
