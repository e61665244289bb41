package main

import (
	"context"
	"fmt"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"video_xapi_tracker/internal/app"
	domainlrs "video_xapi_tracker/internal/domain/lrs"
	"video_xapi_tracker/internal/infra/config"
	idb "video_xapi_tracker/internal/infra/database"
	"video_xapi_tracker/internal/infra/httpapi"
	"video_xapi_tracker/internal/infra/logger"
	infralrs "video_xapi_tracker/internal/infra/lrs"
	"video_xapi_tracker/internal/infra/scheduler"
)

func main() {
	fmt.Println("Video xAPI Tracker starting...")

	cfg, err := config.Load()
	if err != nil {
		stdlog.Fatalf("FATAL: Could not load application configuration: %v", err)
	}

	logger.Init(cfg)
	log := logger.Get()
	log.Infof("Configuration loaded. LogLevel: %s, Environment: %s, xAPI enabled: %t, queue enabled: %t",
		cfg.LogLevel, cfg.Environment, cfg.XAPIEnabled, cfg.QueueEnabled)

	// Database connection
	db, err := idb.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("FATAL: Could not connect to database: %v", err)
	}
	defer db.Close()
	log.Info("Database connection established successfully.")

	// Repositories
	statementRepo := idb.NewPostgresStatementRepository(db)
	log.Info("Statement queue repository initialized.")

	// LRS client: constructed only when the configuration validates.
	// Without one, every tracked event goes straight to the queue.
	var lrsClient domainlrs.Client
	if errs := config.ValidateLRS(cfg.LRS); len(errs) == 0 {
		lrsClient, err = infralrs.NewHTTPClient(infralrs.Config{
			Endpoint:   cfg.LRS.Endpoint,
			Username:   cfg.LRS.Username,
			Password:   cfg.LRS.Password,
			AuthMethod: cfg.LRS.AuthMethod,
			MaxRetries: cfg.QueueMaxRetries,
			Timeout:    time.Duration(cfg.LRSTimeoutSeconds) * time.Second,
		})
		if err != nil {
			log.Fatalf("FATAL: Could not construct LRS client: %v", err)
		}
		log.Infof("LRS client initialized for endpoint %s.", cfg.LRS.Endpoint)
	} else {
		log.Warnf("LRS configuration incomplete or invalid (%v); running in queue-only mode.", errs)
	}

	// Services
	deliveryService := app.NewDeliveryService(lrsClient, statementRepo, cfg.QueueMaxRetries, log)
	ingestService := app.NewIngestService(deliveryService, nil, cfg.BaseURL, cfg.PlatformName, cfg.XAPIEnabled, log)
	log.Info("Delivery and ingest services initialized.")

	// Scheduler
	queueScheduler := scheduler.NewQueueScheduler(cfg, statementRepo, log)
	if err := queueScheduler.Start(); err != nil {
		log.Fatalf("FATAL: Could not start queue scheduler: %v", err)
	}

	// HTTP API
	handler := httpapi.NewHandler(ingestService, deliveryService, log)
	server := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: httpapi.NewRouter(handler),
	}
	go func() {
		log.Infof("HTTP API listening on %s", cfg.ListenAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("FATAL: HTTP server error: %v", err)
		}
	}()

	log.Info("Application setup complete.")

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down application...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warnf("HTTP server shutdown: %v", err)
	}
	queueScheduler.Stop()
	log.Info("Application shut down gracefully.")
}
