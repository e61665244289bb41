// internal/domain/delivery/repository.go
package delivery

import (
	"context"
	"time"
)

// Repository defines the operations for persisting and mutating queue
// records. All mutations are single-row updates keyed by record id; the
// storage layer guards status transitions so a record that already reached
// Sent or Failed is never moved again.
type Repository interface {
	// Enqueue inserts a new Pending record and fills in its id and timestamps.
	Enqueue(ctx context.Context, rec *Record) error

	// ListPending returns up to limit Pending records, oldest first.
	ListPending(ctx context.Context, limit int) ([]*Record, error)

	// MarkSent moves a Pending record to Sent.
	MarkSent(ctx context.Context, id int64) error

	// MarkFailed moves a Pending record to Failed, recording the error.
	MarkFailed(ctx context.Context, id int64, errMsg string) error

	// RecordAttempt persists an incremented attempt count and the last error
	// for a record that stays Pending.
	RecordAttempt(ctx context.Context, id int64, attempts int, errMsg string) error

	// Stats returns row counts by status.
	Stats(ctx context.Context) (*QueueStats, error)

	// DeleteProcessedBefore removes Sent and Failed records last modified
	// before cutoff. Pending records are never deleted. Returns the number
	// of rows removed.
	DeleteProcessedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
