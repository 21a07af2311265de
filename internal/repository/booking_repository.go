package repository

import (
	"context"

	"github.com/careconnect/booking-service/internal/domain"
)

// BookingRepository manages booking persistence.
type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) error
	GetByID(ctx context.Context, id string) (*domain.Booking, error)

	// GetByActivityAndParticipant returns the booking row for the pair
	// regardless of status, or ErrBookingNotFound.
	GetByActivityAndParticipant(ctx context.Context, activityID, participantID string) (*domain.Booking, error)

	// ListConfirmedByParticipant returns the participant's confirmed bookings.
	ListConfirmedByParticipant(ctx context.Context, participantID string) ([]*domain.Booking, error)

	// ListConfirmedActivities returns the activities behind the
	// participant's confirmed bookings, joined in one query.
	ListConfirmedActivities(ctx context.Context, participantID string) ([]*domain.Activity, error)

	// ListConfirmedByActivity returns all confirmed bookings for an activity.
	ListConfirmedByActivity(ctx context.Context, activityID string) ([]*domain.Booking, error)

	Update(ctx context.Context, booking *domain.Booking) error

	// Reconfirm flips a cancelled booking back to confirmed. Returns false
	// when the row is no longer cancelled.
	Reconfirm(ctx context.Context, id string) (bool, error)
}
