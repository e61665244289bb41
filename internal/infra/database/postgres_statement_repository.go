// internal/infra/database/postgres_statement_repository.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"video_xapi_tracker/internal/domain/delivery"
)

// ErrRecordNotFound is returned when a status transition matched no Pending
// row: either the id is unknown or a concurrent drain already moved the
// record to a terminal state.
var ErrRecordNotFound = fmt.Errorf("queued statement record not found or not pending")

// PostgresStatementRepository persists the statement queue in the
// 'xapi_statements' table. Status transitions are guarded with a
// status = Pending predicate so terminal rows are never moved again, which
// is what makes concurrent drain runs tolerable.
type PostgresStatementRepository struct {
	db *sql.DB
}

func NewPostgresStatementRepository(db *sql.DB) *PostgresStatementRepository {
	return &PostgresStatementRepository{db: db}
}

func (r *PostgresStatementRepository) Enqueue(ctx context.Context, rec *delivery.Record) error {
	query := `INSERT INTO xapi_statements (statement, status, attempts, created_at, modified_at)
               VALUES ($1, $2, $3, NOW(), NOW())
               RETURNING id, created_at, modified_at`
	err := r.db.QueryRowContext(ctx, query, rec.Statement, delivery.StatusPending, 0).
		Scan(&rec.ID, &rec.CreatedAt, &rec.ModifiedAt)
	if err != nil {
		return fmt.Errorf("error enqueueing statement record: %w", err)
	}
	rec.Status = delivery.StatusPending
	rec.Attempts = 0
	return nil
}

func (r *PostgresStatementRepository) ListPending(ctx context.Context, limit int) ([]*delivery.Record, error) {
	query := `SELECT id, statement, status, attempts, error_message, created_at, modified_at
               FROM xapi_statements
               WHERE status = $1
               ORDER BY created_at ASC
               LIMIT $2`
	rows, err := r.db.QueryContext(ctx, query, delivery.StatusPending, limit)
	if err != nil {
		return nil, fmt.Errorf("error querying pending statement records: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

func (r *PostgresStatementRepository) MarkSent(ctx context.Context, id int64) error {
	query := `UPDATE xapi_statements
               SET status = $1, modified_at = NOW()
               WHERE id = $2 AND status = $3`
	return r.execTransition(ctx, query, delivery.StatusSent, id, delivery.StatusPending)
}

func (r *PostgresStatementRepository) MarkFailed(ctx context.Context, id int64, errMsg string) error {
	query := `UPDATE xapi_statements
               SET status = $1, error_message = $2, modified_at = NOW()
               WHERE id = $3 AND status = $4`
	return r.execTransition(ctx, query, delivery.StatusFailed, errMsg, id, delivery.StatusPending)
}

func (r *PostgresStatementRepository) RecordAttempt(ctx context.Context, id int64, attempts int, errMsg string) error {
	query := `UPDATE xapi_statements
               SET attempts = $1, error_message = $2, modified_at = NOW()
               WHERE id = $3 AND status = $4`
	return r.execTransition(ctx, query, attempts, errMsg, id, delivery.StatusPending)
}

func (r *PostgresStatementRepository) execTransition(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("error updating statement record: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading rows affected: %w", err)
	}
	if affected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (r *PostgresStatementRepository) Stats(ctx context.Context) (*delivery.QueueStats, error) {
	query := `SELECT
                 COUNT(*) FILTER (WHERE status = $1),
                 COUNT(*) FILTER (WHERE status = $2),
                 COUNT(*) FILTER (WHERE status = $3),
                 COUNT(*)
               FROM xapi_statements`
	stats := delivery.QueueStats{}
	err := r.db.QueryRowContext(ctx, query, delivery.StatusPending, delivery.StatusSent, delivery.StatusFailed).
		Scan(&stats.Pending, &stats.Sent, &stats.Failed, &stats.Total)
	if err != nil {
		return nil, fmt.Errorf("error querying queue stats: %w", err)
	}
	return &stats, nil
}

func (r *PostgresStatementRepository) DeleteProcessedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM xapi_statements
               WHERE status IN ($1, $2) AND modified_at < $3`
	res, err := r.db.ExecContext(ctx, query, delivery.StatusSent, delivery.StatusFailed, cutoff)
	if err != nil {
		return 0, fmt.Errorf("error deleting processed statement records: %w", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("error reading rows affected: %w", err)
	}
	return deleted, nil
}

func scanRecords(rows *sql.Rows) ([]*delivery.Record, error) {
	records := make([]*delivery.Record, 0)
	for rows.Next() {
		rec := delivery.Record{}
		if err := rows.Scan(
			&rec.ID, &rec.Statement, &rec.Status, &rec.Attempts,
			&rec.ErrorMessage, &rec.CreatedAt, &rec.ModifiedAt,
		); err != nil {
			return nil, fmt.Errorf("error scanning statement record row: %w", err)
		}
		records = append(records, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating statement record rows: %w", err)
	}
	return records, nil
}
