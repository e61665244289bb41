// internal/app/delivery_service.go
package app

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"video_xapi_tracker/internal/domain/delivery"
	"video_xapi_tracker/internal/domain/lrs"
	"video_xapi_tracker/internal/domain/statement"

	"github.com/sirupsen/logrus"
)

// DefaultQueueLimit is the batch size for one queue drain pass when the
// caller does not supply one.
const DefaultQueueLimit = 50

// DeliveryService is the statement delivery engine: synchronous sends
// through the LRS client, durable queueing as the fallback, and batch queue
// draining with terminal failure accounting.
//
// The client may be nil: a service without a client only accepts queued
// writes, which lets event producers keep recording while the LRS is
// unconfigured. maxRetries bounds both the client's in-call retry loop and
// the slower cross-invocation retry tier in ProcessQueue.
type DeliveryService struct {
	client     lrs.Client
	repo       delivery.Repository
	maxRetries int
	logger     *logrus.Logger
}

func NewDeliveryService(client lrs.Client, repo delivery.Repository, maxRetries int, logger *logrus.Logger) *DeliveryService {
	if maxRetries <= 0 {
		maxRetries = 3
	}
	return &DeliveryService{
		client:     client,
		repo:       repo,
		maxRetries: maxRetries,
		logger:     logger,
	}
}

// Configured reports whether synchronous delivery is possible.
func (s *DeliveryService) Configured() bool {
	return s.client != nil
}

// SendStatement attempts synchronous delivery of one statement. The result
// is structured, not an error: callers decide whether to fall back to the
// queue.
func (s *DeliveryService) SendStatement(ctx context.Context, st *statement.Statement) lrs.Result {
	if s.client == nil {
		return lrs.Result{Success: false, Err: "LRS is not configured", HTTPCode: 0}
	}
	return s.client.SendStatement(ctx, st)
}

// SendStatements attempts synchronous delivery of a batch in one request.
func (s *DeliveryService) SendStatements(ctx context.Context, sts []*statement.Statement) lrs.Result {
	if s.client == nil {
		return lrs.Result{Success: false, Err: "LRS is not configured", HTTPCode: 0}
	}
	return s.client.SendStatements(ctx, sts)
}

// TestConnection checks LRS reachability via its about resource.
func (s *DeliveryService) TestConnection(ctx context.Context) lrs.Result {
	if s.client == nil {
		return lrs.Result{Success: false, Err: "LRS is not configured", HTTPCode: 0}
	}
	return s.client.TestConnection(ctx)
}

// QueueStatement persists a statement as a Pending queue record. The
// returned error reports the persistence operation only, never delivery.
func (s *DeliveryService) QueueStatement(ctx context.Context, st *statement.Statement) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("failed to encode statement for queueing: %w", err)
	}

	rec := &delivery.Record{Statement: data}
	if err := s.repo.Enqueue(ctx, rec); err != nil {
		return fmt.Errorf("failed to enqueue statement: %w", err)
	}
	s.logger.Debugf("Statement queued with record ID %d", rec.ID)
	return nil
}

// ProcessQueue drains up to limit Pending records, oldest first. Each
// record either moves to Sent, stays Pending with an incremented attempt
// count, or moves to Failed once attempts reach maxRetries. A record whose
// stored statement is not valid JSON is marked Failed immediately; data
// corruption is permanent and does not consume the retry budget.
func (s *DeliveryService) ProcessQueue(ctx context.Context, limit int) (*delivery.ProcessSummary, error) {
	if limit <= 0 {
		limit = DefaultQueueLimit
	}

	records, err := s.repo.ListPending(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending statements: %w", err)
	}

	summary := &delivery.ProcessSummary{}
	for _, rec := range records {
		summary.Processed++

		var st statement.Statement
		if err := json.Unmarshal(rec.Statement, &st); err != nil {
			s.markFailed(ctx, rec.ID, "invalid JSON in queued statement")
			summary.Failed++
			summary.AddError("invalid JSON in queued statement")
			continue
		}

		result := s.SendStatement(ctx, &st)
		if result.Success {
			if err := s.repo.MarkSent(ctx, rec.ID); err != nil {
				s.logger.Warnf("Could not mark record %d as sent: %v", rec.ID, err)
			}
			summary.Successful++
			continue
		}

		rec.Attempts++
		if rec.Attempts >= s.maxRetries {
			s.markFailed(ctx, rec.ID, result.Err)
			summary.Failed++
		} else {
			if err := s.repo.RecordAttempt(ctx, rec.ID, rec.Attempts, result.Err); err != nil {
				s.logger.Warnf("Could not record attempt for record %d: %v", rec.ID, err)
			}
		}
		summary.AddError(result.Err)
	}

	return summary, nil
}

func (s *DeliveryService) markFailed(ctx context.Context, id int64, errMsg string) {
	if err := s.repo.MarkFailed(ctx, id, errMsg); err != nil {
		s.logger.Warnf("Could not mark record %d as failed: %v", id, err)
	}
}

// QueueStats returns row counts by status.
func (s *DeliveryService) QueueStats(ctx context.Context) (*delivery.QueueStats, error) {
	return s.repo.Stats(ctx)
}

// CleanupQueue deletes Sent and Failed records older than the retention
// window. Pending records are never touched regardless of age.
func (s *DeliveryService) CleanupQueue(ctx context.Context, days int) (int64, error) {
	if days <= 0 {
		days = 30
	}
	cutoff := time.Now().Add(-time.Duration(days) * 24 * time.Hour)
	deleted, err := s.repo.DeleteProcessedBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to clean up statement queue: %w", err)
	}
	return deleted, nil
}
