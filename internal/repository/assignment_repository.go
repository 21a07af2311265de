package repository

import (
	"context"
	"time"

	"github.com/careconnect/booking-service/internal/domain"
)

// AssignmentRepository manages volunteer assignments.
type AssignmentRepository interface {
	Create(ctx context.Context, assignment *domain.VolunteerAssignment) error
	GetByID(ctx context.Context, id string) (*domain.VolunteerAssignment, error)

	// GetActiveByActivityAndVolunteer returns the volunteer's invited or
	// confirmed assignment for the activity, or ErrAssignmentNotFound.
	GetActiveByActivityAndVolunteer(ctx context.Context, activityID, volunteerID string) (*domain.VolunteerAssignment, error)

	// ListActiveByActivity returns invited and confirmed assignments for
	// an activity.
	ListActiveByActivity(ctx context.Context, activityID string) ([]*domain.VolunteerAssignment, error)

	// ListActiveByVolunteer returns the volunteer's invited and confirmed
	// assignments.
	ListActiveByVolunteer(ctx context.Context, volunteerID string) ([]*domain.VolunteerAssignment, error)

	// ListConfirmedOverlapping returns volunteer IDs holding a confirmed
	// assignment on an activity whose window overlaps [start, end).
	ListConfirmedOverlapping(ctx context.Context, start, end time.Time) ([]string, error)

	Update(ctx context.Context, assignment *domain.VolunteerAssignment) error

	// UpdateStatusIf flips the assignment from one status to another.
	// Returns false when the row is not in the expected status.
	UpdateStatusIf(ctx context.Context, id string, from, to domain.AssignmentStatus, now time.Time) (bool, error)
}
