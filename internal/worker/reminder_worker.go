package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/careconnect/booking-service/internal/service"
	"github.com/careconnect/booking-service/pkg/logger"
)

// ReminderWorkerConfig contains configuration for the reminder worker
type ReminderWorkerConfig struct {
	// TickInterval is the interval between reminder passes
	TickInterval time.Duration
	// LeadTime is how far ahead of the activity start reminders go out
	LeadTime time.Duration
}

// DefaultReminderWorkerConfig returns default configuration
func DefaultReminderWorkerConfig() *ReminderWorkerConfig {
	return &ReminderWorkerConfig{
		TickInterval: time.Hour,
		LeadTime:     24 * time.Hour,
	}
}

// ReminderWorker sends upcoming-activity reminders to confirmed participants
// and confirmed volunteers. Each pass covers the activities starting inside
// one tick-sized window at the lead-time horizon, so an activity is reminded
// once rather than on every tick.
type ReminderWorker struct {
	activities service.ActivityService
	config     *ReminderWorkerConfig
	log        *zap.Logger
	stopCh     chan struct{}
	wg         sync.WaitGroup
	mu         sync.Mutex
	running    bool

	totalSent int64
}

// NewReminderWorker creates a new reminder worker
func NewReminderWorker(activities service.ActivityService, config *ReminderWorkerConfig) *ReminderWorker {
	if config == nil {
		config = DefaultReminderWorkerConfig()
	}

	return &ReminderWorker{
		activities: activities,
		config:     config,
		log:        logger.Get(),
		stopCh:     make(chan struct{}),
	}
}

// Start starts the reminder worker
func (w *ReminderWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("reminder worker already running")
	}
	w.running = true
	w.mu.Unlock()

	w.log.Info("starting reminder worker",
		zap.Duration("tick_interval", w.config.TickInterval),
		zap.Duration("lead_time", w.config.LeadTime),
	)

	w.wg.Add(1)
	go w.run(ctx)

	return nil
}

// Stop stops the reminder worker
func (w *ReminderWorker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	w.log.Info("stopping reminder worker")
	close(w.stopCh)
	w.wg.Wait()
	w.log.Info("reminder worker stopped")
}

func (w *ReminderWorker) run(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.config.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.remind(ctx)
		}
	}
}

// remind runs one reminder pass over the current window
func (w *ReminderWorker) remind(ctx context.Context) {
	from := time.Now().Add(w.config.LeadTime)
	to := from.Add(w.config.TickInterval)

	sent, err := w.activities.RemindUpcoming(ctx, from, to)
	if err != nil {
		w.log.Error("reminder pass failed", zap.Error(err))
		return
	}
	if sent == 0 {
		return
	}

	w.mu.Lock()
	w.totalSent += int64(sent)
	w.mu.Unlock()

	w.log.Info("sent activity reminders",
		zap.Int("sent", sent),
		zap.Time("window_start", from),
		zap.Time("window_end", to),
	)
}
