package service

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/careconnect/booking-service/internal/domain"
	"github.com/careconnect/booking-service/internal/metrics"
	"github.com/careconnect/booking-service/internal/repository"
	"github.com/careconnect/booking-service/pkg/telemetry"
)

const maxAlternatives = 3

// alternativePoolSize is how many same-type candidates are pulled before
// the per-booking overlap filter trims them down to maxAlternatives.
const alternativePoolSize = 25

// ConflictResult is the outcome of a schedule conflict check
type ConflictResult struct {
	HasConflict         bool
	ConflictingActivity *domain.Activity
	Alternatives        []*domain.Activity
}

// ConflictError carries the conflict payload through the error path so
// handlers can surface the conflicting activity and alternatives.
type ConflictError struct {
	Result *ConflictResult
}

// Error implements the error interface
func (e *ConflictError) Error() string {
	if e.Result != nil && e.Result.ConflictingActivity != nil {
		return fmt.Sprintf("booking conflicts with activity %s", e.Result.ConflictingActivity.ID)
	}
	return domain.ErrBookingConflict.Error()
}

// Unwrap lets errors.Is match domain.ErrBookingConflict
func (e *ConflictError) Unwrap() error {
	return domain.ErrBookingConflict
}

// ConflictService detects schedule conflicts for a participant and
// proposes alternative activities.
type ConflictService interface {
	// CheckConflict checks the candidate window [start, end) against the
	// participant's confirmed bookings. excludeActivityID is skipped
	// (used when re-checking an existing booking). Store errors propagate;
	// an uncheckable schedule never passes as conflict-free.
	CheckConflict(ctx context.Context, participantID string, start, end time.Time, excludeActivityID string) (*ConflictResult, error)
}

// conflictService implements ConflictService
type conflictService struct {
	bookingRepo  repository.BookingRepository
	activityRepo repository.ActivityRepository
}

// NewConflictService creates a new conflict service
func NewConflictService(bookingRepo repository.BookingRepository, activityRepo repository.ActivityRepository) ConflictService {
	return &conflictService{
		bookingRepo:  bookingRepo,
		activityRepo: activityRepo,
	}
}

// CheckConflict checks the candidate window against the participant's schedule
func (s *conflictService) CheckConflict(ctx context.Context, participantID string, start, end time.Time, excludeActivityID string) (*ConflictResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.conflict.check")
	defer span.End()

	span.SetAttributes(
		attribute.String("participant_id", participantID),
		attribute.String("window_start", start.Format(time.RFC3339)),
		attribute.String("window_end", end.Format(time.RFC3339)),
	)

	if !start.Before(end) {
		span.SetStatus(codes.Error, "invalid window")
		return nil, domain.ErrInvalidTimeWindow
	}

	booked, err := s.bookingRepo.ListConfirmedActivities(ctx, participantID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	var conflicting *domain.Activity
	for _, activity := range booked {
		if activity.ID == excludeActivityID || activity.IsCancelled {
			continue
		}
		if activity.Overlaps(start, end) {
			conflicting = activity
			break
		}
	}

	if conflicting == nil {
		span.SetStatus(codes.Ok, "")
		return &ConflictResult{HasConflict: false}, nil
	}

	metrics.RecordConflict(ctx, participantID)
	span.SetAttributes(attribute.String("conflicting_activity_id", conflicting.ID))

	alternatives, err := s.findAlternatives(ctx, conflicting, booked, excludeActivityID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("alternatives", len(alternatives)))
	span.SetStatus(codes.Ok, "")
	return &ConflictResult{
		HasConflict:         true,
		ConflictingActivity: conflicting,
		Alternatives:        alternatives,
	}, nil
}

// findAlternatives returns up to maxAlternatives upcoming activities of the
// same type as the conflicting one, each free of overlap with every one of
// the participant's confirmed bookings. No cross-type backfill.
func (s *conflictService) findAlternatives(ctx context.Context, conflicting *domain.Activity, booked []*domain.Activity, excludeActivityID string) ([]*domain.Activity, error) {
	pool, err := s.activityRepo.ListAlternatives(ctx, conflicting.ActivityType, conflicting.ID, time.Now(), alternativePoolSize)
	if err != nil {
		return nil, err
	}

	var alternatives []*domain.Activity
	for _, candidate := range pool {
		if candidate.ID == excludeActivityID {
			continue
		}
		if overlapsAny(candidate, booked) {
			continue
		}
		alternatives = append(alternatives, candidate)
		if len(alternatives) == maxAlternatives {
			break
		}
	}
	return alternatives, nil
}

func overlapsAny(candidate *domain.Activity, booked []*domain.Activity) bool {
	for _, existing := range booked {
		if existing.IsCancelled {
			continue
		}
		if existing.Overlaps(candidate.StartTime, candidate.EndTime) {
			return true
		}
	}
	return false
}
