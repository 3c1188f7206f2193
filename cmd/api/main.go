package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"stylistbook/internal/config"
	"stylistbook/internal/database"
	"stylistbook/internal/domain/availability"
	"stylistbook/internal/domain/booking"
	"stylistbook/internal/domain/notification"
	"stylistbook/internal/domain/request"
	"stylistbook/internal/middleware"
	"stylistbook/internal/pkg/clock"
	jwtsvc "stylistbook/internal/pkg/jwt"
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

	if cfg.IsProdLike() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Connect(cfg.DatabaseURL, lg)
	if err != nil {
		lg.Fatal("database connect failed", zap.Error(err))
	}
	if err := migrate(db); err != nil {
		lg.Fatal("migration failed", zap.Error(err))
	}

	clk := clock.Real()
	tokens := jwtsvc.New(cfg.JWTSecret, 24*time.Hour)

	// availability
	workStatusRepo := availability.NewRepository(db)
	var (
		gate        request.AvailabilityGate = availability.NewGate(workStatusRepo)
		invalidator availability.Invalidator
	)
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer func() { _ = rdb.Close() }()
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			lg.Warn("redis unreachable, availability cache will fall through", zap.Error(err))
		}
		cached := availability.NewCachedGate(availability.NewGate(workStatusRepo), availability.NewRedisCache(rdb), cfg.AvailabilityCacheTTL, lg)
		gate, invalidator = cached, cached
	}
	availabilityHandler := availability.NewHandler(availability.NewService(workStatusRepo, invalidator, clk, lg))

	// notifications
	notificationRepo := notification.NewRepository(db)
	hub := notification.NewHub(lg.Named("ws"))
	dispatcher := notification.NewDispatcher(
		notification.MultiSink{notification.NewDBSink(notificationRepo), hub},
		cfg.NotifyQueueSize, cfg.NotifyWorkers, lg.Named("notifications"),
	)
	notifier := notification.NewRequestNotifier(dispatcher, clk, cfg.AutoBookWindow, lg)
	notificationHandler := notification.NewHandler(notificationRepo, hub, tokens, cfg.CORSAllowedOrigins, lg)
	cleaner := notification.NewCleaner(notificationRepo, clk, cfg.NotificationRetention, lg.Named("notification_cleanup"))

	// booking requests
	bookingStore := booking.NewStore(db)
	requestRepo := request.WithRetry(
		request.NewRepository(db, cfg.StoreTimeout),
		request.RetryPolicy{Attempts: cfg.StoreRetryAttempts, BaseDelay: cfg.StoreRetryBaseDelay},
		clk, lg,
	)
	requestService, err := request.NewService(requestRepo, gate, bookingStore, notifier, clk, lg.Named("requests"), request.Policy{
		RequestTTL:     cfg.RequestTTL,
		AutoBookWindow: cfg.AutoBookWindow,
		SweepBatchSize: cfg.SweepBatchSize,
	})
	if err != nil {
		lg.Fatal("request service", zap.Error(err))
	}
	sweeper := request.NewSweeper(requestService, clk, cfg.SweepInterval, lg.Named("sweeper"))
	requestHandler := request.NewHandler(requestService, sweeper)
	bookingHandler := booking.NewHandler(bookingStore)

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.ErrorLogger(lg))
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))

	r.GET("/healthz", func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group("/api/v1")
	{
		notificationHandler.RegisterWSRoutes(v1)

		protected := v1.Group("", middleware.JWTAuth(tokens))
		requestHandler.RegisterRoutes(protected, middleware.RateLimit(cfg.RateLimitPerMinute, lg))
		bookingHandler.RegisterRoutes(protected)
		availabilityHandler.RegisterRoutes(protected)
		notificationHandler.RegisterRoutes(protected)

		internal := v1.Group("/internal", middleware.InternalTokenAuth(cfg.InternalToken, lg))
		requestHandler.RegisterInternalRoutes(internal)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go sweeper.Run(ctx)
	go cleaner.Run(ctx, cfg.NotificationCleanupInterval)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		lg.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Fatal("http server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	lg.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		lg.Error("http server shutdown", zap.Error(err))
	}
	if err := dispatcher.Close(shutdownCtx); err != nil {
		lg.Warn("notification queue not drained", zap.Error(err), zap.Int64("dropped", dispatcher.Dropped()))
	}
	lg.Info("stopped")
}

func migrate(db *gorm.DB) error {
	var models []any
	models = append(models, request.Models()...)
	models = append(models, booking.Models()...)
	models = append(models, availability.Models()...)
	models = append(models, notification.Models()...)
	return db.AutoMigrate(models...)
}
