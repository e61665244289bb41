// internal/app/ingest_service.go
package app

import (
	"context"
	"fmt"

	"video_xapi_tracker/internal/domain/lrs"
	"video_xapi_tracker/internal/domain/statement"

	"github.com/sirupsen/logrus"
)

var (
	// ErrTrackingDisabled is returned when xAPI tracking is switched off.
	ErrTrackingDisabled = fmt.Errorf("xAPI tracking is disabled")
	// ErrInvalidStatement is returned when a built statement fails the
	// pre-send sanity check.
	ErrInvalidStatement = fmt.Errorf("statement failed validation")
)

// InstructorResolver finds the instructor actor for a course, typically the
// first principal holding a configuration capability there. The host
// application's user model owns this lookup; resolution is best-effort and
// a failed or empty lookup never fails tracking.
type InstructorResolver interface {
	ResolveInstructor(ctx context.Context, courseID int64) (*statement.Actor, error)
}

// TrackOutcome reports which delivery path an ingested event took.
type TrackOutcome struct {
	Statement *statement.Statement
	Delivered bool // synchronous delivery succeeded
	Queued    bool // statement was written to the durable queue
	Result    lrs.Result
}

// IngestService composes the pipeline spec'd at the host boundary:
// build the statement, validate it, attempt synchronous delivery when the
// LRS is configured, and fall back to the durable queue.
type IngestService struct {
	delivery    *DeliveryService
	resolver    InstructorResolver // optional
	baseURL     string
	platform    string
	xapiEnabled bool
	logger      *logrus.Logger
}

func NewIngestService(
	delivery *DeliveryService,
	resolver InstructorResolver,
	baseURL, platform string,
	xapiEnabled bool,
	logger *logrus.Logger,
) *IngestService {
	return &IngestService{
		delivery:    delivery,
		resolver:    resolver,
		baseURL:     baseURL,
		platform:    platform,
		xapiEnabled: xapiEnabled,
		logger:      logger,
	}
}

// Track ingests one interaction event. Statements that fail validation are
// rejected before any network or queue write; delivery failures fall back
// to the queue. An error is returned only when neither delivery nor
// queueing happened.
func (s *IngestService) Track(
	ctx context.Context,
	user statement.Principal,
	video statement.Video,
	course statement.Course,
	ev statement.Event,
) (*TrackOutcome, error) {
	if !s.xapiEnabled {
		return nil, ErrTrackingDisabled
	}

	builder := statement.NewBuilder(user, video, course, s.baseURL, s.platform)
	if s.resolver != nil {
		instructor, err := s.resolver.ResolveInstructor(ctx, course.ID)
		if err != nil {
			s.logger.Warnf("Instructor resolution failed for course %d: %v", course.ID, err)
		} else {
			builder.WithInstructor(instructor)
		}
	}

	st := builder.Build(ev)
	if !statement.Validate(st) {
		return nil, ErrInvalidStatement
	}

	outcome := &TrackOutcome{Statement: st}

	if s.delivery.Configured() {
		outcome.Result = s.delivery.SendStatement(ctx, st)
		if outcome.Result.Success {
			outcome.Delivered = true
			return outcome, nil
		}
		s.logger.Infof("Synchronous delivery failed (HTTP %d), queueing statement: %s",
			outcome.Result.HTTPCode, outcome.Result.Err)
	} else {
		s.logger.Debug("LRS not configured, queueing statement directly")
	}

	if err := s.delivery.QueueStatement(ctx, st); err != nil {
		return outcome, fmt.Errorf("statement could not be delivered or queued: %w", err)
	}
	outcome.Queued = true
	return outcome, nil
}
