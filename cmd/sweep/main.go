// Command sweep runs a single expiry pass and a notification cleanup, for
// deployments that schedule maintenance externally.
package main

import (
	"context"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"stylistbook/internal/config"
	"stylistbook/internal/database"
	"stylistbook/internal/domain/availability"
	"stylistbook/internal/domain/booking"
	"stylistbook/internal/domain/notification"
	"stylistbook/internal/domain/request"
	"stylistbook/internal/pkg/clock"
	"stylistbook/internal/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	lg, err := logger.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = lg.Sync() }()

	db, err := database.Connect(cfg.DatabaseURL, lg)
	if err != nil {
		lg.Fatal("db connect failed", zap.Error(err))
	}

	clk := clock.Real()
	notificationRepo := notification.NewRepository(db)
	dispatcher := notification.NewDispatcher(notification.NewDBSink(notificationRepo), cfg.NotifyQueueSize, 1, lg)

	svc, err := request.NewService(
		request.WithRetry(
			request.NewRepository(db, cfg.StoreTimeout),
			request.RetryPolicy{Attempts: cfg.StoreRetryAttempts, BaseDelay: cfg.StoreRetryBaseDelay},
			clk, lg,
		),
		availability.NewGate(availability.NewRepository(db)),
		booking.NewStore(db),
		notification.NewRequestNotifier(dispatcher, clk, cfg.AutoBookWindow, lg),
		clk, lg,
		request.Policy{RequestTTL: cfg.RequestTTL, AutoBookWindow: cfg.AutoBookWindow, SweepBatchSize: cfg.SweepBatchSize},
	)
	if err != nil {
		lg.Fatal("request service", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	failed := false
	expired, err := svc.SweepExpired(ctx)
	if err != nil {
		lg.Error("expiry sweep failed", zap.Int("expired", expired), zap.Error(err))
		failed = true
	}

	deleted, err := notification.NewCleaner(notificationRepo, clk, cfg.NotificationRetention, lg).CleanupOnce(ctx)
	if err != nil {
		failed = true
	}

	if err := dispatcher.Close(ctx); err != nil {
		lg.Warn("notification queue not drained", zap.Error(err))
	}

	lg.Info("maintenance completed", zap.Int("expired", expired), zap.Int64("notifications_deleted", deleted))
	if failed {
		_ = lg.Sync()
		os.Exit(1)
	}
}
