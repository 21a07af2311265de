package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/careconnect/booking-service/internal/domain"
	"github.com/careconnect/booking-service/pkg/telemetry"
)

// PostgresVolunteerRepository implements VolunteerRepository using PostgreSQL with pgxpool
type PostgresVolunteerRepository struct {
	pool *pgxpool.Pool
}

var _ VolunteerRepository = (*PostgresVolunteerRepository)(nil)

// NewPostgresVolunteerRepository creates a new PostgresVolunteerRepository
func NewPostgresVolunteerRepository(pool *pgxpool.Pool) *PostgresVolunteerRepository {
	return &PostgresVolunteerRepository{pool: pool}
}

const volunteerColumns = `
	id, user_id, interests, availability, rating,
	total_hours, total_sessions, created_at, updated_at
`

// GetByID retrieves a volunteer by ID
func (r *PostgresVolunteerRepository) GetByID(ctx context.Context, id string) (*domain.Volunteer, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.volunteer.get_by_id")
	defer span.End()

	span.SetAttributes(attribute.String("volunteer_id", id))

	query := `SELECT ` + volunteerColumns + ` FROM volunteers WHERE id = $1`

	volunteer, err := scanVolunteer(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "not found")
			return nil, domain.ErrVolunteerNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get volunteer: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return volunteer, nil
}

// ListAll retrieves every volunteer profile
func (r *PostgresVolunteerRepository) ListAll(ctx context.Context) ([]*domain.Volunteer, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.volunteer.list_all")
	defer span.End()

	query := `SELECT ` + volunteerColumns + ` FROM volunteers ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to query volunteers: %w", err)
	}
	defer rows.Close()

	var volunteers []*domain.Volunteer
	for rows.Next() {
		volunteer, err := scanVolunteer(rows)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		volunteers = append(volunteers, volunteer)
	}

	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("error iterating volunteers: %w", err)
	}

	span.SetAttributes(attribute.Int("count", len(volunteers)))
	span.SetStatus(codes.Ok, "")
	return volunteers, nil
}

// Update updates a volunteer profile
func (r *PostgresVolunteerRepository) Update(ctx context.Context, volunteer *domain.Volunteer) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.volunteer.update")
	defer span.End()

	span.SetAttributes(attribute.String("volunteer_id", volunteer.ID))

	availability, err := json.Marshal(volunteer.Availability)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to marshal availability: %w", err)
	}

	query := `
		UPDATE volunteers SET
			interests = $2,
			availability = $3,
			rating = $4,
			total_hours = $5,
			total_sessions = $6,
			updated_at = $7
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query,
		volunteer.ID,
		volunteer.Interests,
		availability,
		volunteer.Rating,
		volunteer.TotalHours,
		volunteer.TotalSessions,
		time.Now(),
	)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to update volunteer: %w", err)
	}

	if result.RowsAffected() == 0 {
		span.SetStatus(codes.Error, "not found")
		return domain.ErrVolunteerNotFound
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

func scanVolunteer(row pgx.Row) (*domain.Volunteer, error) {
	volunteer := &domain.Volunteer{}
	var availability []byte

	err := row.Scan(
		&volunteer.ID,
		&volunteer.UserID,
		&volunteer.Interests,
		&availability,
		&volunteer.Rating,
		&volunteer.TotalHours,
		&volunteer.TotalSessions,
		&volunteer.CreatedAt,
		&volunteer.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(availability) > 0 {
		if err := json.Unmarshal(availability, &volunteer.Availability); err != nil {
			return nil, fmt.Errorf("failed to unmarshal availability: %w", err)
		}
	}

	return volunteer, nil
}

// PostgresParticipantRepository implements ParticipantRepository using PostgreSQL with pgxpool
type PostgresParticipantRepository struct {
	pool *pgxpool.Pool
}

var _ ParticipantRepository = (*PostgresParticipantRepository)(nil)

// NewPostgresParticipantRepository creates a new PostgresParticipantRepository
func NewPostgresParticipantRepository(pool *pgxpool.Pool) *PostgresParticipantRepository {
	return &PostgresParticipantRepository{pool: pool}
}

// GetByID retrieves a participant by ID
func (r *PostgresParticipantRepository) GetByID(ctx context.Context, id string) (*domain.Participant, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.participant.get_by_id")
	defer span.End()

	span.SetAttributes(attribute.String("participant_id", id))

	query := `
		SELECT id, user_id, first_name, last_name, created_at, updated_at
		FROM participants
		WHERE id = $1
	`

	participant := &domain.Participant{}
	var lastName *string

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&participant.ID,
		&participant.UserID,
		&participant.FirstName,
		&lastName,
		&participant.CreatedAt,
		&participant.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "not found")
			return nil, domain.ErrParticipantNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get participant: %w", err)
	}

	if lastName != nil {
		participant.LastName = *lastName
	}

	span.SetStatus(codes.Ok, "")
	return participant, nil
}
