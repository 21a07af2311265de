package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/careconnect/booking-service/internal/di"
	"github.com/careconnect/booking-service/internal/metrics"
	"github.com/careconnect/booking-service/internal/service"
	"github.com/careconnect/booking-service/internal/worker"
	"github.com/careconnect/booking-service/pkg/config"
	"github.com/careconnect/booking-service/pkg/database"
	"github.com/careconnect/booking-service/pkg/logger"
	"github.com/careconnect/booking-service/pkg/middleware"
	pkgredis "github.com/careconnect/booking-service/pkg/redis"
	"github.com/careconnect/booking-service/pkg/telemetry"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logCfg := &logger.Config{
		ServiceName: cfg.App.Name,
		Development: cfg.IsDevelopment(),
	}
	if _, err := logger.Init(logCfg); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	appLog := logger.Get()
	appLog.Info("Starting Booking Service...")

	ctx := context.Background()

	// Initialize OpenTelemetry
	if _, err := telemetry.Init(ctx, &telemetry.Config{
		Enabled:        cfg.OTel.Enabled,
		ServiceName:    cfg.OTel.ServiceName,
		ServiceVersion: cfg.App.Version,
		Environment:    cfg.App.Environment,
		CollectorAddr:  cfg.OTel.CollectorAddr,
	}); err != nil {
		appLog.Warn(fmt.Sprintf("Telemetry init failed, tracing disabled: %v", err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = telemetry.Shutdown(shutdownCtx)
	}()

	if err := metrics.Init(); err != nil {
		appLog.Warn(fmt.Sprintf("Metrics init failed: %v", err))
	}

	// Initialize database connection
	db, err := database.NewPostgres(ctx, &database.PostgresConfig{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		Database:        cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		MaxConns:        int32(cfg.Database.MaxOpenConns),
		MinConns:        int32(cfg.Database.MaxIdleConns),
		MaxConnLifetime: cfg.Database.ConnMaxLifetime,
		MaxConnIdleTime: cfg.Database.ConnMaxIdleTime,
		ConnectTimeout:  10 * time.Second,
		MaxRetries:      3,
		RetryInterval:   2 * time.Second,
		EnableTracing:   cfg.OTel.Enabled,
		ServiceName:     cfg.OTel.ServiceName,
	})
	if err != nil {
		appLog.Fatal(fmt.Sprintf("Database connection failed: %v", err))
	}
	defer db.Close()
	appLog.Info("Database connected")

	// Initialize Redis connection
	redisClient, err := pkgredis.NewClient(ctx, &pkgredis.Config{
		Host:         cfg.Redis.Host,
		Port:         cfg.Redis.Port,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})
	if err != nil {
		appLog.Fatal(fmt.Sprintf("Redis connection failed: %v", err))
	}
	defer redisClient.Close()
	appLog.Info("Redis connected")

	// Initialize Kafka notifier, falling back to no-op when unreachable
	var notifier service.Notifier
	notifier, err = service.NewKafkaNotifier(ctx, &service.NotifierConfig{
		Brokers:     cfg.Kafka.Brokers,
		Topic:       "notification-events",
		ServiceName: cfg.App.Name,
		ClientID:    cfg.Kafka.ClientID,
	})
	if err != nil {
		appLog.Warn(fmt.Sprintf("Kafka connection failed, using no-op notifier: %v", err))
		notifier = service.NewNoOpNotifier()
	} else {
		appLog.Info("Kafka notifier connected")
	}
	defer notifier.Close()

	// Build dependency injection container
	container := di.NewContainer(&di.ContainerConfig{
		DB:       db,
		Redis:    redisClient,
		Notifier: notifier,
		OfferExpiryConfig: &worker.OfferExpiryWorkerConfig{
			SweepInterval: cfg.Worker.OfferSweepInterval,
		},
		ReminderConfig: &worker.ReminderWorkerConfig{
			TickInterval: cfg.Worker.ReminderTick,
			LeadTime:     cfg.Worker.ReminderLeadTime,
		},
	})

	// Start background workers
	if err := container.OfferExpiryWorker.Start(ctx); err != nil {
		appLog.Fatal(fmt.Sprintf("Failed to start offer expiry worker: %v", err))
	}
	defer container.OfferExpiryWorker.Stop()

	if err := container.ReminderWorker.Start(ctx); err != nil {
		appLog.Fatal(fmt.Sprintf("Failed to start reminder worker: %v", err))
	}
	defer container.ReminderWorker.Stop()

	router := setupRouter(cfg, container, redisClient)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ReadHeaderTimeout: 2 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	// Start server in goroutine
	go func() {
		appLog.Info(fmt.Sprintf("Booking Service listening on %s", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLog.Fatal(fmt.Sprintf("Failed to start server: %v", err))
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.Fatal(fmt.Sprintf("Server forced to shutdown: %v", err))
	}

	appLog.Info("Server exited gracefully")
}

func setupRouter(cfg *config.Config, container *di.Container, redisClient *pkgredis.Client) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		gin.DisableConsoleColor()
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(telemetry.TracingMiddleware(cfg.OTel.ServiceName))

	// Probes stay outside the authenticated surface
	router.GET("/health", container.HealthHandler.Health)
	router.GET("/ready", container.HealthHandler.Ready)

	authConfig := &middleware.AuthConfig{Secret: cfg.JWT.Secret}
	idempotencyConfig := middleware.DefaultIdempotencyConfig(redisClient)

	staffOnly := middleware.RequireRole("staff")

	v1 := router.Group("/api/v1")
	v1.Use(middleware.AuthMiddleware(authConfig))
	{
		activities := v1.Group("/activities")
		{
			activities.POST("", staffOnly, container.ActivityHandler.CreateActivity)
			activities.GET("/:id", container.ActivityHandler.GetActivity)
			activities.POST("/:id/cancel", staffOnly, container.ActivityHandler.CancelActivity)
			activities.PATCH("/:id/capacity", staffOnly, container.ActivityHandler.UpdateCapacity)
			activities.GET("/:id/matches", staffOnly, container.VolunteerHandler.FindMatches)
		}

		bookings := v1.Group("/bookings")
		{
			bookings.POST("", middleware.IdempotencyMiddleware(idempotencyConfig), container.BookingHandler.CreateBooking)
			bookings.GET("/:id", container.BookingHandler.GetBooking)
			bookings.POST("/:id/cancel", container.BookingHandler.CancelBooking)
			bookings.POST("/:id/check-in", container.BookingHandler.CheckIn)
			bookings.POST("/:id/feedback", container.BookingHandler.SubmitFeedback)
		}

		waitlist := v1.Group("/waitlist")
		{
			waitlist.POST("/:id/accept", container.WaitlistHandler.AcceptOffer)
			waitlist.POST("/:id/decline", container.WaitlistHandler.DeclineOffer)
		}

		participants := v1.Group("/participants")
		{
			participants.GET("/:id/bookings", container.BookingHandler.GetParticipantBookings)
			participants.GET("/:id/waitlist", container.WaitlistHandler.GetParticipantWaitlist)
		}

		assignments := v1.Group("/assignments")
		{
			assignments.POST("", staffOnly, container.VolunteerHandler.CreateAssignment)
			assignments.POST("/:id/respond", container.VolunteerHandler.RespondAssignment)
			assignments.POST("/:id/check-in", container.VolunteerHandler.CheckInAssignment)
			assignments.POST("/:id/check-out", container.VolunteerHandler.CheckOutAssignment)
			assignments.POST("/:id/complete", staffOnly, container.VolunteerHandler.CompleteAssignment)
		}
	}

	return router
}
