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

// PostgresActivityRepository implements ActivityRepository using PostgreSQL with pgxpool
type PostgresActivityRepository struct {
	pool *pgxpool.Pool
}

var _ ActivityRepository = (*PostgresActivityRepository)(nil)

// NewPostgresActivityRepository creates a new PostgresActivityRepository
func NewPostgresActivityRepository(pool *pgxpool.Pool) *PostgresActivityRepository {
	return &PostgresActivityRepository{pool: pool}
}

const activityColumns = `
	id, title, description, activity_type, tags, start_time, end_time,
	capacity, current_bookings, min_volunteers, max_volunteers, current_volunteers,
	location, room, requirements, is_cancelled, cancellation_reason,
	created_at, updated_at
`

// Create creates a new activity record in the database
func (r *PostgresActivityRepository) Create(ctx context.Context, activity *domain.Activity) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.activity.create")
	defer span.End()

	span.SetAttributes(
		attribute.String("activity_id", activity.ID),
		attribute.String("activity_type", activity.ActivityType),
	)

	query := `
		INSERT INTO activities (
			id, title, description, activity_type, tags, start_time, end_time,
			capacity, current_bookings, min_volunteers, max_volunteers, current_volunteers,
			location, room, requirements, is_cancelled, cancellation_reason,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7,
			$8, $9, $10, $11, $12,
			$13, $14, $15, $16, $17,
			$18, $19
		)
	`

	_, err := r.pool.Exec(ctx, query,
		activity.ID,
		activity.Title,
		nullString(activity.Description),
		activity.ActivityType,
		activity.Tags,
		activity.StartTime,
		activity.EndTime,
		activity.Capacity,
		activity.CurrentBookings,
		activity.MinVolunteers,
		activity.MaxVolunteers,
		activity.CurrentVolunteers,
		nullString(activity.Location),
		nullString(activity.Room),
		nullString(activity.Requirements),
		activity.IsCancelled,
		nullString(activity.CancellationReason),
		activity.CreatedAt,
		activity.UpdatedAt,
	)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to create activity: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// GetByID retrieves an activity by its ID
func (r *PostgresActivityRepository) GetByID(ctx context.Context, id string) (*domain.Activity, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.activity.get_by_id")
	defer span.End()

	span.SetAttributes(attribute.String("activity_id", id))

	query := `SELECT ` + activityColumns + ` FROM activities WHERE id = $1`

	row := r.pool.QueryRow(ctx, query, id)
	activity, err := scanActivity(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "not found")
			return nil, domain.ErrActivityNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get activity: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return activity, nil
}

// Update updates the mutable fields of an activity
func (r *PostgresActivityRepository) Update(ctx context.Context, activity *domain.Activity) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.activity.update")
	defer span.End()

	span.SetAttributes(attribute.String("activity_id", activity.ID))

	query := `
		UPDATE activities SET
			title = $2,
			description = $3,
			tags = $4,
			start_time = $5,
			end_time = $6,
			capacity = $7,
			min_volunteers = $8,
			max_volunteers = $9,
			location = $10,
			room = $11,
			requirements = $12,
			updated_at = $13
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query,
		activity.ID,
		activity.Title,
		nullString(activity.Description),
		activity.Tags,
		activity.StartTime,
		activity.EndTime,
		activity.Capacity,
		activity.MinVolunteers,
		activity.MaxVolunteers,
		nullString(activity.Location),
		nullString(activity.Room),
		nullString(activity.Requirements),
		time.Now(),
	)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to update activity: %w", err)
	}

	if result.RowsAffected() == 0 {
		span.SetStatus(codes.Error, "not found")
		return domain.ErrActivityNotFound
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// ListAlternatives retrieves upcoming activities of the same type with open seats
func (r *PostgresActivityRepository) ListAlternatives(ctx context.Context, activityType, excludeID string, from time.Time, limit int) ([]*domain.Activity, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.activity.list_alternatives")
	defer span.End()

	span.SetAttributes(
		attribute.String("activity_type", activityType),
		attribute.Int("limit", limit),
	)

	query := `
		SELECT ` + activityColumns + `
		FROM activities
		WHERE activity_type = $1
		  AND id <> $2
		  AND start_time > $3
		  AND NOT is_cancelled
		  AND current_bookings < capacity
		ORDER BY start_time ASC
		LIMIT $4
	`

	return r.queryActivities(ctx, span, query, activityType, excludeID, from, limit)
}

// ListRoomOverlaps retrieves activities sharing the room with an overlapping window
func (r *PostgresActivityRepository) ListRoomOverlaps(ctx context.Context, room, excludeID string, start, end time.Time) ([]*domain.Activity, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.activity.list_room_overlaps")
	defer span.End()

	span.SetAttributes(attribute.String("room", room))

	query := `
		SELECT ` + activityColumns + `
		FROM activities
		WHERE room = $1
		  AND id <> $2
		  AND NOT is_cancelled
		  AND start_time < $4
		  AND end_time > $3
		ORDER BY start_time ASC
	`

	return r.queryActivities(ctx, span, query, room, excludeID, start, end)
}

// ListStartingBetween retrieves non-cancelled activities starting in [from, to)
func (r *PostgresActivityRepository) ListStartingBetween(ctx context.Context, from, to time.Time) ([]*domain.Activity, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.activity.list_starting_between")
	defer span.End()

	query := `
		SELECT ` + activityColumns + `
		FROM activities
		WHERE start_time >= $1
		  AND start_time < $2
		  AND NOT is_cancelled
		ORDER BY start_time ASC
	`

	return r.queryActivities(ctx, span, query, from, to)
}

// TryReserveSeat atomically claims one seat when capacity allows
func (r *PostgresActivityRepository) TryReserveSeat(ctx context.Context, id string) (bool, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.activity.try_reserve_seat")
	defer span.End()

	span.SetAttributes(attribute.String("activity_id", id))

	query := `
		UPDATE activities SET
			current_bookings = current_bookings + 1,
			updated_at = $2
		WHERE id = $1
		  AND NOT is_cancelled
		  AND current_bookings < capacity
	`

	result, err := r.pool.Exec(ctx, query, id, time.Now())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return false, fmt.Errorf("failed to reserve seat: %w", err)
	}

	reserved := result.RowsAffected() > 0
	span.SetAttributes(attribute.Bool("reserved", reserved))
	span.SetStatus(codes.Ok, "")
	return reserved, nil
}

// ReleaseSeat returns one seat, never dropping the counter below zero
func (r *PostgresActivityRepository) ReleaseSeat(ctx context.Context, id string) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.activity.release_seat")
	defer span.End()

	span.SetAttributes(attribute.String("activity_id", id))

	query := `
		UPDATE activities SET
			current_bookings = GREATEST(current_bookings - 1, 0),
			updated_at = $2
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query, id, time.Now())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to release seat: %w", err)
	}

	if result.RowsAffected() == 0 {
		span.SetStatus(codes.Error, "not found")
		return domain.ErrActivityNotFound
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// TryReserveVolunteerSlot atomically claims one volunteer slot below max_volunteers
func (r *PostgresActivityRepository) TryReserveVolunteerSlot(ctx context.Context, id string) (bool, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.activity.try_reserve_volunteer_slot")
	defer span.End()

	span.SetAttributes(attribute.String("activity_id", id))

	query := `
		UPDATE activities SET
			current_volunteers = current_volunteers + 1,
			updated_at = $2
		WHERE id = $1
		  AND NOT is_cancelled
		  AND current_volunteers < max_volunteers
	`

	result, err := r.pool.Exec(ctx, query, id, time.Now())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return false, fmt.Errorf("failed to reserve volunteer slot: %w", err)
	}

	reserved := result.RowsAffected() > 0
	span.SetAttributes(attribute.Bool("reserved", reserved))
	span.SetStatus(codes.Ok, "")
	return reserved, nil
}

// ReleaseVolunteerSlot returns one volunteer slot, never dropping below zero
func (r *PostgresActivityRepository) ReleaseVolunteerSlot(ctx context.Context, id string) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.activity.release_volunteer_slot")
	defer span.End()

	span.SetAttributes(attribute.String("activity_id", id))

	query := `
		UPDATE activities SET
			current_volunteers = GREATEST(current_volunteers - 1, 0),
			updated_at = $2
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query, id, time.Now())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to release volunteer slot: %w", err)
	}

	if result.RowsAffected() == 0 {
		span.SetStatus(codes.Error, "not found")
		return domain.ErrActivityNotFound
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// MarkCancelled flips the activity to cancelled, once
func (r *PostgresActivityRepository) MarkCancelled(ctx context.Context, id, reason string, now time.Time) (bool, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.activity.mark_cancelled")
	defer span.End()

	span.SetAttributes(attribute.String("activity_id", id))

	query := `
		UPDATE activities SET
			is_cancelled = TRUE,
			cancellation_reason = $2,
			updated_at = $3
		WHERE id = $1
		  AND NOT is_cancelled
	`

	result, err := r.pool.Exec(ctx, query, id, nullString(reason), now)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return false, fmt.Errorf("failed to cancel activity: %w", err)
	}

	cancelled := result.RowsAffected() > 0
	span.SetAttributes(attribute.Bool("cancelled", cancelled))
	span.SetStatus(codes.Ok, "")
	return cancelled, nil
}

func (r *PostgresActivityRepository) queryActivities(ctx context.Context, span trace.Span, query string, args ...interface{}) ([]*domain.Activity, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to query activities: %w", err)
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
		return nil, fmt.Errorf("error iterating activities: %w", err)
	}

	span.SetAttributes(attribute.Int("count", len(activities)))
	span.SetStatus(codes.Ok, "")
	return activities, nil
}

func scanActivity(row pgx.Row) (*domain.Activity, error) {
	activity := &domain.Activity{}
	var (
		description        *string
		location           *string
		room               *string
		requirements       *string
		cancellationReason *string
	)

	err := row.Scan(
		&activity.ID,
		&activity.Title,
		&description,
		&activity.ActivityType,
		&activity.Tags,
		&activity.StartTime,
		&activity.EndTime,
		&activity.Capacity,
		&activity.CurrentBookings,
		&activity.MinVolunteers,
		&activity.MaxVolunteers,
		&activity.CurrentVolunteers,
		&location,
		&room,
		&requirements,
		&activity.IsCancelled,
		&cancellationReason,
		&activity.CreatedAt,
		&activity.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if description != nil {
		activity.Description = *description
	}
	if location != nil {
		activity.Location = *location
	}
	if room != nil {
		activity.Room = *room
	}
	if requirements != nil {
		activity.Requirements = *requirements
	}
	if cancellationReason != nil {
		activity.CancellationReason = *cancellationReason
	}

	return activity, nil
}

// nullString converts an empty string to a NULL parameter
func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
