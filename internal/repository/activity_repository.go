package repository

import (
	"context"
	"time"

	"github.com/careconnect/booking-service/internal/domain"
)

// ActivityRepository manages activity persistence and the atomic seat counters.
type ActivityRepository interface {
	Create(ctx context.Context, activity *domain.Activity) error
	GetByID(ctx context.Context, id string) (*domain.Activity, error)
	Update(ctx context.Context, activity *domain.Activity) error

	// ListAlternatives returns upcoming non-cancelled activities of the same
	// type with open seats, excluding excludeID, ordered by start time.
	ListAlternatives(ctx context.Context, activityType, excludeID string, from time.Time, limit int) ([]*domain.Activity, error)

	// ListRoomOverlaps returns non-cancelled activities in the given room
	// whose window overlaps [start, end), excluding excludeID.
	ListRoomOverlaps(ctx context.Context, room, excludeID string, start, end time.Time) ([]*domain.Activity, error)

	// ListStartingBetween returns non-cancelled activities starting in [from, to).
	ListStartingBetween(ctx context.Context, from, to time.Time) ([]*domain.Activity, error)

	// TryReserveSeat atomically increments current_bookings if a seat is
	// available. Returns false when the activity is full or cancelled.
	TryReserveSeat(ctx context.Context, id string) (bool, error)

	// ReleaseSeat decrements current_bookings, never below zero.
	ReleaseSeat(ctx context.Context, id string) error

	// TryReserveVolunteerSlot atomically increments current_volunteers if
	// below max_volunteers. Returns false when the roster is full or cancelled.
	TryReserveVolunteerSlot(ctx context.Context, id string) (bool, error)

	// ReleaseVolunteerSlot decrements current_volunteers, never below zero.
	ReleaseVolunteerSlot(ctx context.Context, id string) error

	// MarkCancelled flips the activity to cancelled with a reason. Returns
	// false when the activity was already cancelled.
	MarkCancelled(ctx context.Context, id, reason string, now time.Time) (bool, error)
}
