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

// OfferExpiryWorkerConfig contains configuration for the offer expiry worker
type OfferExpiryWorkerConfig struct {
	// SweepInterval is the interval between sweeps for expired offers
	SweepInterval time.Duration
}

// DefaultOfferExpiryWorkerConfig returns default configuration
func DefaultOfferExpiryWorkerConfig() *OfferExpiryWorkerConfig {
	return &OfferExpiryWorkerConfig{
		SweepInterval: time.Minute,
	}
}

// OfferExpiryWorker periodically expires stale waitlist offers and cascades
// each freed seat to the next entry in line. Expiry is lazy between sweeps;
// the accept path rejects overdue offers on its own.
type OfferExpiryWorker struct {
	waitlist service.WaitlistService
	config   *OfferExpiryWorkerConfig
	log      *zap.Logger
	stopCh   chan struct{}
	wg       sync.WaitGroup
	mu       sync.Mutex
	running  bool

	totalExpired  int64
	lastSweepTime time.Time
}

// NewOfferExpiryWorker creates a new offer expiry worker
func NewOfferExpiryWorker(waitlist service.WaitlistService, config *OfferExpiryWorkerConfig) *OfferExpiryWorker {
	if config == nil {
		config = DefaultOfferExpiryWorkerConfig()
	}

	return &OfferExpiryWorker{
		waitlist: waitlist,
		config:   config,
		log:      logger.Get(),
		stopCh:   make(chan struct{}),
	}
}

// Start starts the offer expiry worker
func (w *OfferExpiryWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("offer expiry worker already running")
	}
	w.running = true
	w.mu.Unlock()

	w.log.Info("starting offer expiry worker",
		zap.Duration("sweep_interval", w.config.SweepInterval),
	)

	w.wg.Add(1)
	go w.run(ctx)

	return nil
}

// Stop stops the offer expiry worker
func (w *OfferExpiryWorker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	w.log.Info("stopping offer expiry worker")
	close(w.stopCh)
	w.wg.Wait()
	w.log.Info("offer expiry worker stopped")
}

// run sweeps on a ticker until stopped
func (w *OfferExpiryWorker) run(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.config.SweepInterval)
	defer ticker.Stop()

	// Run immediately on start
	w.sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

// sweep runs one expiry pass
func (w *OfferExpiryWorker) sweep(ctx context.Context) {
	w.mu.Lock()
	w.lastSweepTime = time.Now()
	w.mu.Unlock()

	expired, err := w.waitlist.SweepExpiredOffers(ctx)
	if err != nil {
		w.log.Error("offer expiry sweep failed", zap.Error(err))
		return
	}
	if expired == 0 {
		return
	}

	w.mu.Lock()
	w.totalExpired += int64(expired)
	w.mu.Unlock()

	w.log.Info("expired stale waitlist offers", zap.Int("expired", expired))
}

// Stats returns worker statistics
func (w *OfferExpiryWorker) Stats() *OfferExpiryWorkerStats {
	w.mu.Lock()
	defer w.mu.Unlock()

	return &OfferExpiryWorkerStats{
		IsRunning:     w.running,
		TotalExpired:  w.totalExpired,
		LastSweepTime: w.lastSweepTime,
	}
}

// OfferExpiryWorkerStats contains worker statistics
type OfferExpiryWorkerStats struct {
	IsRunning     bool      `json:"is_running"`
	TotalExpired  int64     `json:"total_expired"`
	LastSweepTime time.Time `json:"last_sweep_time"`
}
