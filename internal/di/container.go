package di

import (
	"github.com/careconnect/booking-service/internal/handler"
	"github.com/careconnect/booking-service/internal/repository"
	"github.com/careconnect/booking-service/internal/service"
	"github.com/careconnect/booking-service/internal/worker"
	"github.com/careconnect/booking-service/pkg/database"
	"github.com/careconnect/booking-service/pkg/redis"
)

// Container holds all dependencies for the booking service
type Container struct {
	// Infrastructure
	DB    *database.PostgresDB
	Redis *redis.Client

	// Repositories
	ActivityRepo    repository.ActivityRepository
	BookingRepo     repository.BookingRepository
	WaitlistRepo    repository.WaitlistRepository
	VolunteerRepo   repository.VolunteerRepository
	ParticipantRepo repository.ParticipantRepository
	AssignmentRepo  repository.AssignmentRepository

	// Notification publisher
	Notifier service.Notifier

	// Services
	ConflictService  service.ConflictService
	WaitlistService  service.WaitlistService
	BookingService   service.BookingService
	VolunteerService service.VolunteerService
	ActivityService  service.ActivityService

	// Workers
	OfferExpiryWorker *worker.OfferExpiryWorker
	ReminderWorker    *worker.ReminderWorker

	// Handlers
	HealthHandler    *handler.HealthHandler
	ActivityHandler  *handler.ActivityHandler
	BookingHandler   *handler.BookingHandler
	WaitlistHandler  *handler.WaitlistHandler
	VolunteerHandler *handler.VolunteerHandler
}

// ContainerConfig contains configuration for building the container
type ContainerConfig struct {
	DB       *database.PostgresDB
	Redis    *redis.Client
	Notifier service.Notifier

	OfferExpiryConfig *worker.OfferExpiryWorkerConfig
	ReminderConfig    *worker.ReminderWorkerConfig
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *ContainerConfig) *Container {
	c := &Container{
		DB:       cfg.DB,
		Redis:    cfg.Redis,
		Notifier: cfg.Notifier,
	}

	// Repositories; the activity repo gets a Redis read-through cache
	activityRepo := repository.NewPostgresActivityRepository(c.DB.Pool())
	if c.Redis != nil {
		c.ActivityRepo = repository.NewCachedActivityRepository(activityRepo, c.Redis)
	} else {
		c.ActivityRepo = activityRepo
	}
	c.BookingRepo = repository.NewPostgresBookingRepository(c.DB.Pool())
	c.WaitlistRepo = repository.NewPostgresWaitlistRepository(c.DB.Pool())
	c.VolunteerRepo = repository.NewPostgresVolunteerRepository(c.DB.Pool())
	c.ParticipantRepo = repository.NewPostgresParticipantRepository(c.DB.Pool())
	c.AssignmentRepo = repository.NewPostgresAssignmentRepository(c.DB.Pool())

	// Services
	c.ConflictService = service.NewConflictService(c.BookingRepo, c.ActivityRepo)
	c.WaitlistService = service.NewWaitlistService(c.WaitlistRepo, c.BookingRepo, c.ActivityRepo, c.Notifier)
	c.BookingService = service.NewBookingService(c.BookingRepo, c.ActivityRepo, c.ParticipantRepo, c.ConflictService, c.WaitlistService, c.Notifier)
	c.VolunteerService = service.NewVolunteerService(c.VolunteerRepo, c.AssignmentRepo, c.ActivityRepo, c.Notifier)
	c.ActivityService = service.NewActivityService(c.ActivityRepo, c.BookingRepo, c.WaitlistRepo, c.AssignmentRepo, c.WaitlistService, c.Notifier)

	// Workers
	c.OfferExpiryWorker = worker.NewOfferExpiryWorker(c.WaitlistService, cfg.OfferExpiryConfig)
	c.ReminderWorker = worker.NewReminderWorker(c.ActivityService, cfg.ReminderConfig)

	// Handlers
	c.HealthHandler = handler.NewHealthHandler(c.DB, c.Redis)
	c.ActivityHandler = handler.NewActivityHandler(c.ActivityService)
	c.BookingHandler = handler.NewBookingHandler(c.BookingService)
	c.WaitlistHandler = handler.NewWaitlistHandler(c.WaitlistService)
	c.VolunteerHandler = handler.NewVolunteerHandler(c.VolunteerService)

	return c
}
