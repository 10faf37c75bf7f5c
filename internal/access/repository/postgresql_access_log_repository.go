package repository

import (
	"context"
	"database/sql"
	"time"

	accessDomain "github.com/keywell/vault/internal/access/domain"
	"github.com/keywell/vault/internal/database"
	apperrors "github.com/keywell/vault/internal/errors"
)

const pgAccessLogColumns = `id, secret_name, secret_id, accessed_by, access_type, granted, timestamp`

// PostgreSQLAccessLogRepository implements append-only access-log persistence
// for PostgreSQL databases.
type PostgreSQLAccessLogRepository struct {
	db *sql.DB
}

// NewPostgreSQLAccessLogRepository creates a new PostgreSQL access-log repository instance.
func NewPostgreSQLAccessLogRepository(db *sql.DB) *PostgreSQLAccessLogRepository {
	return &PostgreSQLAccessLogRepository{db: db}
}

// Create appends an access log entry.
func (p *PostgreSQLAccessLogRepository) Create(ctx context.Context, entry *accessDomain.AccessLogEntry) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO access_log (` + pgAccessLogColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := querier.ExecContext(
		ctx,
		query,
		entry.ID,
		entry.SecretName,
		entry.SecretID,
		entry.AccessedBy,
		entry.AccessType,
		entry.Granted,
		entry.Timestamp,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create access log entry")
	}
	return nil
}

// List retrieves entries newest first, optionally filtered by secret name.
func (p *PostgreSQLAccessLogRepository) List(
	ctx context.Context,
	secretName string,
	offset, limit int,
) ([]*accessDomain.AccessLogEntry, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + pgAccessLogColumns + ` FROM access_log
			  WHERE ($1 = '' OR secret_name = $1)
			  ORDER BY timestamp DESC
			  OFFSET $2 LIMIT $3`

	rows, err := querier.QueryContext(ctx, query, secretName, offset, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list access log entries")
	}
	defer rows.Close()

	var entries []*accessDomain.AccessLogEntry
	for rows.Next() {
		var entry accessDomain.AccessLogEntry
		err := rows.Scan(
			&entry.ID,
			&entry.SecretName,
			&entry.SecretID,
			&entry.AccessedBy,
			&entry.AccessType,
			&entry.Granted,
			&entry.Timestamp,
		)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan access log entry")
		}
		entries = append(entries, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate access log entries")
	}
	return entries, nil
}

// Metrics aggregates decisions since the given time.
func (p *PostgreSQLAccessLogRepository) Metrics(
	ctx context.Context,
	since time.Time,
) (*accessDomain.AccessMetrics, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT access_type, granted, COUNT(*) FROM access_log
			  WHERE timestamp >= $1
			  GROUP BY access_type, granted`

	rows, err := querier.QueryContext(ctx, query, since)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to aggregate access metrics")
	}
	defer rows.Close()

	metrics := &accessDomain.AccessMetrics{
		ByOperation: make(map[accessDomain.Operation]uint),
	}
	for rows.Next() {
		var operation accessDomain.Operation
		var granted bool
		var count uint
		if err := rows.Scan(&operation, &granted, &count); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan access metrics row")
		}

		metrics.TotalAttempts += count
		metrics.ByOperation[operation] += count
		if granted {
			metrics.GrantedCount += count
		} else {
			metrics.DeniedCount += count
		}
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate access metrics")
	}
	return metrics, nil
}
