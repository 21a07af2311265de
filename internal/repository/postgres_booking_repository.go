package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/careconnect/booking-service/internal/domain"
	"github.com/careconnect/booking-service/pkg/telemetry"
)

// PostgresBookingRepository implements BookingRepository using PostgreSQL with pgxpool
type PostgresBookingRepository struct {
	pool *pgxpool.Pool
}

var _ BookingRepository = (*PostgresBookingRepository)(nil)

// NewPostgresBookingRepository creates a new PostgresBookingRepository
func NewPostgresBookingRepository(pool *pgxpool.Pool) *PostgresBookingRepository {
	return &PostgresBookingRepository{pool: pool}
}

const bookingColumns = `
	id, activity_id, participant_id, status, checked_in_at,
	feedback_rating, feedback_text, cancelled_at, created_at, updated_at
`

// Create creates a new booking record in the database
func (r *PostgresBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.booking.create")
	defer span.End()

	span.SetAttributes(
		attribute.String("booking_id", booking.ID),
		attribute.String("activity_id", booking.ActivityID),
		attribute.String("participant_id", booking.ParticipantID),
	)

	query := `
		INSERT INTO bookings (
			id, activity_id, participant_id, status, checked_in_at,
			feedback_rating, feedback_text, cancelled_at, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8, $9, $10
		)
	`

	_, err := r.pool.Exec(ctx, query,
		booking.ID,
		booking.ActivityID,
		booking.ParticipantID,
		booking.Status.String(),
		booking.CheckedInAt,
		booking.FeedbackRating,
		nullString(booking.FeedbackText),
		booking.CancelledAt,
		booking.CreatedAt,
		booking.UpdatedAt,
	)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to create booking: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// GetByID retrieves a booking by its ID
func (r *PostgresBookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.booking.get_by_id")
	defer span.End()

	span.SetAttributes(attribute.String("booking_id", id))

	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	booking, err := scanBooking(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "not found")
			return nil, domain.ErrBookingNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return booking, nil
}

// GetByActivityAndParticipant retrieves the booking for the pair regardless of status
func (r *PostgresBookingRepository) GetByActivityAndParticipant(ctx context.Context, activityID, participantID string) (*domain.Booking, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.booking.get_by_activity_and_participant")
	defer span.End()

	span.SetAttributes(
		attribute.String("activity_id", activityID),
		attribute.String("participant_id", participantID),
	)

	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE activity_id = $1 AND participant_id = $2
	`

	booking, err := scanBooking(r.pool.QueryRow(ctx, query, activityID, participantID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "not found")
			return nil, domain.ErrBookingNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return booking, nil
}

// ListConfirmedByParticipant retrieves the participant's confirmed bookings
func (r *PostgresBookingRepository) ListConfirmedByParticipant(ctx context.Context, participantID string) ([]*domain.Booking, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.booking.list_confirmed_by_participant")
	defer span.End()

	span.SetAttributes(attribute.String("participant_id", participantID))

	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE participant_id = $1 AND status = 'confirmed'
		ORDER BY created_at ASC
	`

	return r.queryBookings(ctx, span, query, participantID)
}

// ListConfirmedActivities retrieves the activities behind the participant's
// confirmed bookings
func (r *PostgresBookingRepository) ListConfirmedActivities(ctx context.Context, participantID string) ([]*domain.Activity, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.booking.list_confirmed_activities")
	defer span.End()

	span.SetAttributes(attribute.String("participant_id", participantID))

	query := `
		SELECT
			a.id, a.title, a.description, a.activity_type, a.tags, a.start_time, a.end_time,
			a.capacity, a.current_bookings, a.min_volunteers, a.max_volunteers, a.current_volunteers,
			a.location, a.room, a.requirements, a.is_cancelled, a.cancellation_reason,
			a.created_at, a.updated_at
		FROM bookings b
		JOIN activities a ON a.id = b.activity_id
		WHERE b.participant_id = $1 AND b.status = 'confirmed'
		ORDER BY a.start_time ASC
	`

	rows, err := r.pool.Query(ctx, query, participantID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to query booked activities: %w", err)
	}
	defer rows.Close()

	var activities []*domain.Activity
	for rows.Next() {
		activity, err := scanActivity(rows)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		activities = append(activities, activity)
	}

	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("error iterating booked activities: %w", err)
	}

	span.SetAttributes(attribute.Int("count", len(activities)))
	span.SetStatus(codes.Ok, "")
	return activities, nil
}

// ListConfirmedByActivity retrieves all confirmed bookings for an activity
func (r *PostgresBookingRepository) ListConfirmedByActivity(ctx context.Context, activityID string) ([]*domain.Booking, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.booking.list_confirmed_by_activity")
	defer span.End()

	span.SetAttributes(attribute.String("activity_id", activityID))

	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE activity_id = $1 AND status = 'confirmed'
		ORDER BY created_at ASC
	`

	return r.queryBookings(ctx, span, query, activityID)
}

// Update updates an existing booking
func (r *PostgresBookingRepository) Update(ctx context.Context, booking *domain.Booking) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.booking.update")
	defer span.End()

	span.SetAttributes(attribute.String("booking_id", booking.ID))

	query := `
		UPDATE bookings SET
			status = $2,
			checked_in_at = $3,
			feedback_rating = $4,
			feedback_text = $5,
			cancelled_at = $6,
			updated_at = $7
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query,
		booking.ID,
		booking.Status.String(),
		booking.CheckedInAt,
		booking.FeedbackRating,
		nullString(booking.FeedbackText),
		booking.CancelledAt,
		time.Now(),
	)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to update booking: %w", err)
	}

	if result.RowsAffected() == 0 {
		span.SetStatus(codes.Error, "not found")
		return domain.ErrBookingNotFound
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// Reconfirm flips a cancelled booking back to confirmed
func (r *PostgresBookingRepository) Reconfirm(ctx context.Context, id string) (bool, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.booking.reconfirm")
	defer span.End()

	span.SetAttributes(attribute.String("booking_id", id))

	query := `
		UPDATE bookings SET
			status = 'confirmed',
			cancelled_at = NULL,
			updated_at = $2
		WHERE id = $1
		  AND status = 'cancelled'
	`

	result, err := r.pool.Exec(ctx, query, id, time.Now())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return false, fmt.Errorf("failed to reconfirm booking: %w", err)
	}

	reconfirmed := result.RowsAffected() > 0
	span.SetAttributes(attribute.Bool("reconfirmed", reconfirmed))
	span.SetStatus(codes.Ok, "")
	return reconfirmed, nil
}

func (r *PostgresBookingRepository) queryBookings(ctx context.Context, span trace.Span, query string, args ...interface{}) ([]*domain.Booking, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*domain.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		bookings = append(bookings, booking)
	}

	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("error iterating bookings: %w", err)
	}

	span.SetAttributes(attribute.Int("count", len(bookings)))
	span.SetStatus(codes.Ok, "")
	return bookings, nil
}

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	booking := &domain.Booking{}
	var (
		status       string
		feedbackText *string
	)

	err := row.Scan(
		&booking.ID,
		&booking.ActivityID,
		&booking.ParticipantID,
		&status,
		&booking.CheckedInAt,
		&booking.FeedbackRating,
		&feedbackText,
		&booking.CancelledAt,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	booking.Status = domain.BookingStatus(status)
	if feedbackText != nil {
		booking.FeedbackText = *feedbackText
	}

	return booking, nil
}
