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

// PostgresAssignmentRepository implements AssignmentRepository using PostgreSQL with pgxpool
type PostgresAssignmentRepository struct {
	pool *pgxpool.Pool
}

var _ AssignmentRepository = (*PostgresAssignmentRepository)(nil)

// NewPostgresAssignmentRepository creates a new PostgresAssignmentRepository
func NewPostgresAssignmentRepository(pool *pgxpool.Pool) *PostgresAssignmentRepository {
	return &PostgresAssignmentRepository{pool: pool}
}

const assignmentColumns = `
	id, activity_id, volunteer_id, role, status,
	check_in_time, check_out_time, hours_contributed, staff_rating,
	volunteer_feedback, created_at, updated_at
`

// Create creates a new assignment record in the database
func (r *PostgresAssignmentRepository) Create(ctx context.Context, assignment *domain.VolunteerAssignment) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.assignment.create")
	defer span.End()

	span.SetAttributes(
		attribute.String("assignment_id", assignment.ID),
		attribute.String("activity_id", assignment.ActivityID),
		attribute.String("volunteer_id", assignment.VolunteerID),
	)

	query := `
		INSERT INTO volunteer_assignments (
			id, activity_id, volunteer_id, role, status,
			check_in_time, check_out_time, hours_contributed, staff_rating,
			volunteer_feedback, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8, $9,
			$10, $11, $12
		)
	`

	_, err := r.pool.Exec(ctx, query,
		assignment.ID,
		assignment.ActivityID,
		assignment.VolunteerID,
		assignment.Role.String(),
		assignment.Status.String(),
		assignment.CheckInTime,
		assignment.CheckOutTime,
		assignment.HoursContributed,
		assignment.StaffRating,
		nullString(assignment.VolunteerFeedback),
		assignment.CreatedAt,
		assignment.UpdatedAt,
	)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to create assignment: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// GetByID retrieves an assignment by its ID
func (r *PostgresAssignmentRepository) GetByID(ctx context.Context, id string) (*domain.VolunteerAssignment, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.assignment.get_by_id")
	defer span.End()

	span.SetAttributes(attribute.String("assignment_id", id))

	query := `SELECT ` + assignmentColumns + ` FROM volunteer_assignments WHERE id = $1`

	assignment, err := scanAssignment(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "not found")
			return nil, domain.ErrAssignmentNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get assignment: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return assignment, nil
}

// GetActiveByActivityAndVolunteer retrieves the volunteer's invited or confirmed assignment
func (r *PostgresAssignmentRepository) GetActiveByActivityAndVolunteer(ctx context.Context, activityID, volunteerID string) (*domain.VolunteerAssignment, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.assignment.get_active_by_activity_and_volunteer")
	defer span.End()

	span.SetAttributes(
		attribute.String("activity_id", activityID),
		attribute.String("volunteer_id", volunteerID),
	)

	query := `
		SELECT ` + assignmentColumns + `
		FROM volunteer_assignments
		WHERE activity_id = $1
		  AND volunteer_id = $2
		  AND status IN ('invited', 'confirmed')
	`

	assignment, err := scanAssignment(r.pool.QueryRow(ctx, query, activityID, volunteerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "not found")
			return nil, domain.ErrAssignmentNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get assignment: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return assignment, nil
}

// ListActiveByActivity retrieves invited and confirmed assignments for an activity
func (r *PostgresAssignmentRepository) ListActiveByActivity(ctx context.Context, activityID string) ([]*domain.VolunteerAssignment, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.assignment.list_active_by_activity")
	defer span.End()

	span.SetAttributes(attribute.String("activity_id", activityID))

	query := `
		SELECT ` + assignmentColumns + `
		FROM volunteer_assignments
		WHERE activity_id = $1
		  AND status IN ('invited', 'confirmed')
		ORDER BY created_at ASC
	`

	return r.queryAssignments(ctx, span, query, activityID)
}

// ListActiveByVolunteer retrieves the volunteer's invited and confirmed assignments
func (r *PostgresAssignmentRepository) ListActiveByVolunteer(ctx context.Context, volunteerID string) ([]*domain.VolunteerAssignment, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.assignment.list_active_by_volunteer")
	defer span.End()

	span.SetAttributes(attribute.String("volunteer_id", volunteerID))

	query := `
		SELECT ` + assignmentColumns + `
		FROM volunteer_assignments
		WHERE volunteer_id = $1
		  AND status IN ('invited', 'confirmed')
		ORDER BY created_at ASC
	`

	return r.queryAssignments(ctx, span, query, volunteerID)
}

// ListConfirmedOverlapping retrieves volunteer IDs with a confirmed assignment
// on an activity overlapping [start, end)
func (r *PostgresAssignmentRepository) ListConfirmedOverlapping(ctx context.Context, start, end time.Time) ([]string, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.assignment.list_confirmed_overlapping")
	defer span.End()

	query := `
		SELECT DISTINCT va.volunteer_id
		FROM volunteer_assignments va
		JOIN activities a ON a.id = va.activity_id
		WHERE va.status = 'confirmed'
		  AND NOT a.is_cancelled
		  AND a.start_time < $2
		  AND a.end_time > $1
	`

	rows, err := r.pool.Query(ctx, query, start, end)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to query overlapping assignments: %w", err)
	}
	defer rows.Close()

	var volunteerIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		volunteerIDs = append(volunteerIDs, id)
	}

	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("error iterating overlapping assignments: %w", err)
	}

	span.SetAttributes(attribute.Int("count", len(volunteerIDs)))
	span.SetStatus(codes.Ok, "")
	return volunteerIDs, nil
}

// Update updates an existing assignment
func (r *PostgresAssignmentRepository) Update(ctx context.Context, assignment *domain.VolunteerAssignment) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.assignment.update")
	defer span.End()

	span.SetAttributes(attribute.String("assignment_id", assignment.ID))

	query := `
		UPDATE volunteer_assignments SET
			role = $2,
			status = $3,
			check_in_time = $4,
			check_out_time = $5,
			hours_contributed = $6,
			staff_rating = $7,
			volunteer_feedback = $8,
			updated_at = $9
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query,
		assignment.ID,
		assignment.Role.String(),
		assignment.Status.String(),
		assignment.CheckInTime,
		assignment.CheckOutTime,
		assignment.HoursContributed,
		assignment.StaffRating,
		nullString(assignment.VolunteerFeedback),
		time.Now(),
	)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to update assignment: %w", err)
	}

	if result.RowsAffected() == 0 {
		span.SetStatus(codes.Error, "not found")
		return domain.ErrAssignmentNotFound
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// UpdateStatusIf flips the assignment between two statuses atomically
func (r *PostgresAssignmentRepository) UpdateStatusIf(ctx context.Context, id string, from, to domain.AssignmentStatus, now time.Time) (bool, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.assignment.update_status_if")
	defer span.End()

	span.SetAttributes(
		attribute.String("assignment_id", id),
		attribute.String("from", from.String()),
		attribute.String("to", to.String()),
	)

	query := `
		UPDATE volunteer_assignments SET
			status = $3,
			updated_at = $4
		WHERE id = $1
		  AND status = $2
	`

	result, err := r.pool.Exec(ctx, query, id, from.String(), to.String(), now)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return false, fmt.Errorf("failed to update assignment status: %w", err)
	}

	flipped := result.RowsAffected() > 0
	span.SetAttributes(attribute.Bool("flipped", flipped))
	span.SetStatus(codes.Ok, "")
	return flipped, nil
}

func (r *PostgresAssignmentRepository) queryAssignments(ctx context.Context, span trace.Span, query string, args ...interface{}) ([]*domain.VolunteerAssignment, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to query assignments: %w", err)
	}
	defer rows.Close()

	var assignments []*domain.VolunteerAssignment
	for rows.Next() {
		assignment, err := scanAssignment(rows)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		assignments = append(assignments, assignment)
	}

	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("error iterating assignments: %w", err)
	}

	span.SetAttributes(attribute.Int("count", len(assignments)))
	span.SetStatus(codes.Ok, "")
	return assignments, nil
}

func scanAssignment(row pgx.Row) (*domain.VolunteerAssignment, error) {
	assignment := &domain.VolunteerAssignment{}
	var (
		role     string
		status   string
		feedback *string
	)

	err := row.Scan(
		&assignment.ID,
		&assignment.ActivityID,
		&assignment.VolunteerID,
		&role,
		&status,
		&assignment.CheckInTime,
		&assignment.CheckOutTime,
		&assignment.HoursContributed,
		&assignment.StaffRating,
		&feedback,
		&assignment.CreatedAt,
		&assignment.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	assignment.Role = domain.AssignmentRole(role)
	assignment.Status = domain.AssignmentStatus(status)
	if feedback != nil {
		assignment.VolunteerFeedback = *feedback
	}

	return assignment, nil
}
