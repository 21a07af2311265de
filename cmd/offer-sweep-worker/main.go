package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/careconnect/booking-service/internal/repository"
	"github.com/careconnect/booking-service/internal/service"
	"github.com/careconnect/booking-service/internal/worker"
	"github.com/careconnect/booking-service/pkg/config"
	"github.com/careconnect/booking-service/pkg/database"
	"github.com/careconnect/booking-service/pkg/logger"
)

// Standalone offer sweeper. Runs the same sweep as the in-process worker
// for deployments that keep background work off the API instances.
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logCfg := &logger.Config{
		ServiceName: "offer-sweep-worker",
		Development: cfg.IsDevelopment(),
	}
	if _, err := logger.Init(logCfg); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	appLog := logger.Get()
	appLog.Info("Starting Offer Sweep Worker...")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection
	db, err := database.NewPostgres(ctx, &database.PostgresConfig{
		Host:          cfg.Database.Host,
		Port:          cfg.Database.Port,
		User:          cfg.Database.User,
		Password:      cfg.Database.Password,
		Database:      cfg.Database.DBName,
		SSLMode:       cfg.Database.SSLMode,
		MaxConns:      10,
		MinConns:      2,
		MaxRetries:    3,
		RetryInterval: 2 * time.Second,
	})
	if err != nil {
		appLog.Fatal(fmt.Sprintf("Failed to connect to database: %v", err))
	}
	defer db.Close()
	appLog.Info("Database connected")

	// Initialize Kafka notifier, falling back to no-op when unreachable
	var notifier service.Notifier
	notifier, err = service.NewKafkaNotifier(ctx, &service.NotifierConfig{
		Brokers:     cfg.Kafka.Brokers,
		Topic:       "notification-events",
		ServiceName: "offer-sweep-worker",
		ClientID:    "offer-sweep-worker",
	})
	if err != nil {
		appLog.Warn(fmt.Sprintf("Kafka connection failed, using no-op notifier: %v", err))
		notifier = service.NewNoOpNotifier()
	}
	defer notifier.Close()

	// Wire just the waitlist path; the sweeper needs nothing else
	waitlistRepo := repository.NewPostgresWaitlistRepository(db.Pool())
	bookingRepo := repository.NewPostgresBookingRepository(db.Pool())
	activityRepo := repository.NewPostgresActivityRepository(db.Pool())
	waitlistService := service.NewWaitlistService(waitlistRepo, bookingRepo, activityRepo, notifier)

	sweeper := worker.NewOfferExpiryWorker(waitlistService, &worker.OfferExpiryWorkerConfig{
		SweepInterval: cfg.Worker.OfferSweepInterval,
	})
	if err := sweeper.Start(ctx); err != nil {
		appLog.Fatal(fmt.Sprintf("Failed to start sweeper: %v", err))
	}

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLog.Info("Shutting down sweeper...")

	sweeper.Stop()
	appLog.Info("Sweeper exited gracefully")
}
