package repository

import (
	"context"

	"github.com/careconnect/booking-service/internal/domain"
)

// VolunteerRepository manages volunteer profiles.
type VolunteerRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Volunteer, error)
	ListAll(ctx context.Context) ([]*domain.Volunteer, error)
	Update(ctx context.Context, volunteer *domain.Volunteer) error
}

// ParticipantRepository resolves participant profiles.
type ParticipantRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Participant, error)
}
