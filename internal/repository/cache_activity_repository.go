package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/careconnect/booking-service/internal/domain"
	"github.com/careconnect/booking-service/pkg/redis"
)

const (
	activityDetailKeyPrefix = "activity:detail:"

	// Short TTL; seat counters go stale quickly under load and the
	// admission path always re-checks against Postgres atomically.
	activityCacheTTL = 30 * time.Second
)

// CachedActivityRepository wraps ActivityRepository with Redis caching.
// Only single-activity reads are cached. Every write path invalidates
// the detail key so the counters never serve stale admission decisions.
type CachedActivityRepository struct {
	repo  ActivityRepository
	cache *redis.Client
}

var _ ActivityRepository = (*CachedActivityRepository)(nil)

// NewCachedActivityRepository creates a new CachedActivityRepository
func NewCachedActivityRepository(repo ActivityRepository, cache *redis.Client) *CachedActivityRepository {
	return &CachedActivityRepository{
		repo:  repo,
		cache: cache,
	}
}

// Create creates a new activity
func (r *CachedActivityRepository) Create(ctx context.Context, activity *domain.Activity) error {
	return r.repo.Create(ctx, activity)
}

// GetByID retrieves an activity by ID with caching
func (r *CachedActivityRepository) GetByID(ctx context.Context, id string) (*domain.Activity, error) {
	cacheKey := activityDetailKeyPrefix + id
	cached, err := r.cache.Get(ctx, cacheKey).Result()
	if err == nil && cached != "" {
		var activity domain.Activity
		if err := json.Unmarshal([]byte(cached), &activity); err == nil {
			return &activity, nil
		}
	}

	activity, err := r.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	r.cacheActivity(ctx, cacheKey, activity)
	return activity, nil
}

// Update updates an activity and invalidates its cache
func (r *CachedActivityRepository) Update(ctx context.Context, activity *domain.Activity) error {
	if err := r.repo.Update(ctx, activity); err != nil {
		return err
	}
	r.invalidate(ctx, activity.ID)
	return nil
}

// ListAlternatives retrieves alternatives (not cached, counters move too fast)
func (r *CachedActivityRepository) ListAlternatives(ctx context.Context, activityType, excludeID string, from time.Time, limit int) ([]*domain.Activity, error) {
	return r.repo.ListAlternatives(ctx, activityType, excludeID, from, limit)
}

// ListRoomOverlaps retrieves room overlaps (not cached)
func (r *CachedActivityRepository) ListRoomOverlaps(ctx context.Context, room, excludeID string, start, end time.Time) ([]*domain.Activity, error) {
	return r.repo.ListRoomOverlaps(ctx, room, excludeID, start, end)
}

// ListStartingBetween retrieves upcoming activities (not cached)
func (r *CachedActivityRepository) ListStartingBetween(ctx context.Context, from, to time.Time) ([]*domain.Activity, error) {
	return r.repo.ListStartingBetween(ctx, from, to)
}

// TryReserveSeat claims a seat and invalidates the detail cache
func (r *CachedActivityRepository) TryReserveSeat(ctx context.Context, id string) (bool, error) {
	reserved, err := r.repo.TryReserveSeat(ctx, id)
	if err == nil {
		r.invalidate(ctx, id)
	}
	return reserved, err
}

// ReleaseSeat returns a seat and invalidates the detail cache
func (r *CachedActivityRepository) ReleaseSeat(ctx context.Context, id string) error {
	if err := r.repo.ReleaseSeat(ctx, id); err != nil {
		return err
	}
	r.invalidate(ctx, id)
	return nil
}

// TryReserveVolunteerSlot claims a volunteer slot and invalidates the detail cache
func (r *CachedActivityRepository) TryReserveVolunteerSlot(ctx context.Context, id string) (bool, error) {
	reserved, err := r.repo.TryReserveVolunteerSlot(ctx, id)
	if err == nil {
		r.invalidate(ctx, id)
	}
	return reserved, err
}

// ReleaseVolunteerSlot returns a volunteer slot and invalidates the detail cache
func (r *CachedActivityRepository) ReleaseVolunteerSlot(ctx context.Context, id string) error {
	if err := r.repo.ReleaseVolunteerSlot(ctx, id); err != nil {
		return err
	}
	r.invalidate(ctx, id)
	return nil
}

// MarkCancelled cancels the activity and invalidates the detail cache
func (r *CachedActivityRepository) MarkCancelled(ctx context.Context, id, reason string, now time.Time) (bool, error) {
	cancelled, err := r.repo.MarkCancelled(ctx, id, reason, now)
	if err == nil && cancelled {
		r.invalidate(ctx, id)
	}
	return cancelled, err
}

func (r *CachedActivityRepository) cacheActivity(ctx context.Context, key string, activity *domain.Activity) {
	data, err := json.Marshal(activity)
	if err != nil {
		return
	}
	// Best effort; a failed cache write never fails the request
	r.cache.Set(ctx, key, string(data), activityCacheTTL)
}

func (r *CachedActivityRepository) invalidate(ctx context.Context, id string) {
	r.cache.Del(ctx, activityDetailKeyPrefix+id)
}
