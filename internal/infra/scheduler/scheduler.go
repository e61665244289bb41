package scheduler

import (
	"context"
	"time"

	"video_xapi_tracker/internal/app"
	"video_xapi_tracker/internal/domain/delivery"
	"video_xapi_tracker/internal/infra/config"
	infralrs "video_xapi_tracker/internal/infra/lrs"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// QueueScheduler drives the periodic queue drain and the retention cleanup.
// It is a thin trigger: each run re-checks the feature flags, validates the
// LRS configuration, constructs a fresh delivery service and logs the
// summary. Concurrent overlap with a live-request drain is tolerated; the
// queue store's Pending-only transitions keep that at-least-once.
type QueueScheduler struct {
	cronEngine *cron.Cron
	cfg        *config.AppConfig
	repo       delivery.Repository
	logger     *logrus.Logger
}

func NewQueueScheduler(cfg *config.AppConfig, repo delivery.Repository, logger *logrus.Logger) *QueueScheduler {
	return &QueueScheduler{
		cronEngine: cron.New(cron.WithLocation(time.Local)),
		cfg:        cfg,
		repo:       repo,
		logger:     logger,
	}
}

func (s *QueueScheduler) Start() error {
	s.logger.Info("Starting queue scheduler...")

	if _, err := s.cronEngine.AddFunc(s.cfg.CronSpecQueue, s.runQueueDrain); err != nil {
		return err
	}
	if _, err := s.cronEngine.AddFunc(s.cfg.CronSpecCleanup, s.runCleanup); err != nil {
		return err
	}

	s.cronEngine.Start()
	s.logger.Infof("Queue scheduler started (drain: %q, cleanup: %q).", s.cfg.CronSpecQueue, s.cfg.CronSpecCleanup)
	return nil
}

func (s *QueueScheduler) runQueueDrain() {
	if !s.cfg.XAPIEnabled || !s.cfg.QueueEnabled {
		s.logger.Debug("xAPI or queue processing is disabled, skipping drain.")
		return
	}

	if errs := config.ValidateLRS(s.cfg.LRS); len(errs) > 0 {
		s.logger.Warnf("Invalid LRS configuration, skipping drain: %v", errs)
		return
	}

	client, err := infralrs.NewHTTPClient(infralrs.Config{
		Endpoint:   s.cfg.LRS.Endpoint,
		Username:   s.cfg.LRS.Username,
		Password:   s.cfg.LRS.Password,
		AuthMethod: s.cfg.LRS.AuthMethod,
		MaxRetries: s.cfg.QueueMaxRetries,
		Timeout:    time.Duration(s.cfg.LRSTimeoutSeconds) * time.Second,
	})
	if err != nil {
		s.logger.Errorf("Could not construct LRS client for drain: %v", err)
		return
	}

	svc := app.NewDeliveryService(client, s.repo, s.cfg.QueueMaxRetries, s.logger)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	summary, err := svc.ProcessQueue(ctx, s.cfg.QueueBatchSize)
	if err != nil {
		s.logger.Errorf("Error during queue drain: %v", err)
		return
	}

	s.logSummary(summary)
}

func (s *QueueScheduler) logSummary(summary *delivery.ProcessSummary) {
	s.logger.Infof("Processed %d statements: %d successful, %d failed.",
		summary.Processed, summary.Successful, summary.Failed)
	for _, errMsg := range summary.Errors {
		s.logger.Warnf("Queue drain error: %s", errMsg)
	}
}

func (s *QueueScheduler) runCleanup() {
	// Cleanup needs no LRS client; the service runs queue-only.
	svc := app.NewDeliveryService(nil, s.repo, s.cfg.QueueMaxRetries, s.logger)

	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
	defer cancel()

	deleted, err := svc.CleanupQueue(ctx, s.cfg.QueueRetentionDays)
	if err != nil {
		s.logger.Errorf("Error during queue cleanup: %v", err)
		return
	}
	s.logger.Infof("Queue cleanup removed %d processed records older than %d days.", deleted, s.cfg.QueueRetentionDays)
}

func (s *QueueScheduler) Stop() {
	s.logger.Info("Stopping queue scheduler...")
	ctx := s.cronEngine.Stop() // waits for running jobs
	<-ctx.Done()
	s.logger.Info("Queue scheduler gracefully stopped.")
}
