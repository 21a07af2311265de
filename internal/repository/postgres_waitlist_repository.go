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

// PostgresWaitlistRepository implements WaitlistRepository using PostgreSQL with pgxpool
type PostgresWaitlistRepository struct {
	pool *pgxpool.Pool
}

var _ WaitlistRepository = (*PostgresWaitlistRepository)(nil)

// NewPostgresWaitlistRepository creates a new PostgresWaitlistRepository
func NewPostgresWaitlistRepository(pool *pgxpool.Pool) *PostgresWaitlistRepository {
	return &PostgresWaitlistRepository{pool: pool}
}

const waitlistColumns = `
	id, activity_id, participant_id, position, status,
	notified_at, expires_at, created_at, updated_at
`

// Enqueue inserts a new entry with the next position for the activity.
// A transaction-scoped advisory lock keyed by the activity serializes
// concurrent joins, so the MAX(position) read and the insert see each
// other and positions stay distinct under READ COMMITTED.
func (r *PostgresWaitlistRepository) Enqueue(ctx context.Context, entry *domain.WaitlistEntry) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.waitlist.enqueue")
	defer span.End()

	span.SetAttributes(
		attribute.String("waitlist_id", entry.ID),
		attribute.String("activity_id", entry.ActivityID),
		attribute.String("participant_id", entry.ParticipantID),
	)

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to begin enqueue transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Released automatically at commit or rollback.
	lockQuery := `SELECT pg_advisory_xact_lock(hashtextextended('waitlist:' || $1, 0))`
	if _, err := tx.Exec(ctx, lockQuery, entry.ActivityID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to lock waitlist for activity: %w", err)
	}

	query := `
		INSERT INTO waitlist_entries (
			id, activity_id, participant_id, position, status, created_at, updated_at
		)
		SELECT $1, $2, $3, COALESCE(MAX(position), 0) + 1, $4, $5, $5
		FROM waitlist_entries
		WHERE activity_id = $2
		RETURNING position
	`

	err = tx.QueryRow(ctx, query,
		entry.ID,
		entry.ActivityID,
		entry.ParticipantID,
		entry.Status.String(),
		entry.CreatedAt,
	).Scan(&entry.Position)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to enqueue waitlist entry: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to commit waitlist entry: %w", err)
	}

	span.SetAttributes(attribute.Int("position", entry.Position))
	span.SetStatus(codes.Ok, "")
	return nil
}

// GetByID retrieves a waitlist entry by its ID
func (r *PostgresWaitlistRepository) GetByID(ctx context.Context, id string) (*domain.WaitlistEntry, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.waitlist.get_by_id")
	defer span.End()

	span.SetAttributes(attribute.String("waitlist_id", id))

	query := `SELECT ` + waitlistColumns + ` FROM waitlist_entries WHERE id = $1`

	entry, err := scanWaitlistEntry(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "not found")
			return nil, domain.ErrWaitlistNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get waitlist entry: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return entry, nil
}

// GetActiveByActivityAndParticipant retrieves the participant's waiting or notified entry
func (r *PostgresWaitlistRepository) GetActiveByActivityAndParticipant(ctx context.Context, activityID, participantID string) (*domain.WaitlistEntry, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.waitlist.get_active_by_activity_and_participant")
	defer span.End()

	span.SetAttributes(
		attribute.String("activity_id", activityID),
		attribute.String("participant_id", participantID),
	)

	query := `
		SELECT ` + waitlistColumns + `
		FROM waitlist_entries
		WHERE activity_id = $1
		  AND participant_id = $2
		  AND status IN ('waiting', 'notified')
	`

	entry, err := scanWaitlistEntry(r.pool.QueryRow(ctx, query, activityID, participantID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "not found")
			return nil, domain.ErrWaitlistNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get waitlist entry: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return entry, nil
}

// NextWaiting retrieves the lowest-position waiting entry for the activity
func (r *PostgresWaitlistRepository) NextWaiting(ctx context.Context, activityID string) (*domain.WaitlistEntry, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.waitlist.next_waiting")
	defer span.End()

	span.SetAttributes(attribute.String("activity_id", activityID))

	query := `
		SELECT ` + waitlistColumns + `
		FROM waitlist_entries
		WHERE activity_id = $1 AND status = 'waiting'
		ORDER BY position ASC
		LIMIT 1
	`

	entry, err := scanWaitlistEntry(r.pool.QueryRow(ctx, query, activityID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "empty")
			return nil, domain.ErrWaitlistNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get next waiting entry: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return entry, nil
}

// MarkNotified flips waiting -> notified with the offer window
func (r *PostgresWaitlistRepository) MarkNotified(ctx context.Context, id string, notifiedAt, expiresAt time.Time) (bool, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.waitlist.mark_notified")
	defer span.End()

	span.SetAttributes(attribute.String("waitlist_id", id))

	query := `
		UPDATE waitlist_entries SET
			status = 'notified',
			notified_at = $2,
			expires_at = $3,
			updated_at = $2
		WHERE id = $1
		  AND status = 'waiting'
	`

	return r.execFlip(ctx, span, "notify waitlist entry", query, id, notifiedAt, expiresAt)
}

// MarkAccepted flips notified -> accepted while the offer window is still open
func (r *PostgresWaitlistRepository) MarkAccepted(ctx context.Context, id string, now time.Time) (bool, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.waitlist.mark_accepted")
	defer span.End()

	span.SetAttributes(attribute.String("waitlist_id", id))

	query := `
		UPDATE waitlist_entries SET
			status = 'accepted',
			updated_at = $2
		WHERE id = $1
		  AND status = 'notified'
		  AND expires_at > $2
	`

	return r.execFlip(ctx, span, "accept waitlist offer", query, id, now)
}

// MarkDeclined flips notified -> declined
func (r *PostgresWaitlistRepository) MarkDeclined(ctx context.Context, id string, now time.Time) (bool, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.waitlist.mark_declined")
	defer span.End()

	span.SetAttributes(attribute.String("waitlist_id", id))

	query := `
		UPDATE waitlist_entries SET
			status = 'declined',
			updated_at = $2
		WHERE id = $1
		  AND status = 'notified'
	`

	return r.execFlip(ctx, span, "decline waitlist offer", query, id, now)
}

// MarkExpired flips notified -> expired once the window has elapsed
func (r *PostgresWaitlistRepository) MarkExpired(ctx context.Context, id string, now time.Time) (bool, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.waitlist.mark_expired")
	defer span.End()

	span.SetAttributes(attribute.String("waitlist_id", id))

	query := `
		UPDATE waitlist_entries SET
			status = 'expired',
			updated_at = $2
		WHERE id = $1
		  AND status = 'notified'
		  AND expires_at <= $2
	`

	return r.execFlip(ctx, span, "expire waitlist offer", query, id, now)
}

// MarkCancelled flips an active entry to cancelled
func (r *PostgresWaitlistRepository) MarkCancelled(ctx context.Context, id string, now time.Time) (bool, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.waitlist.mark_cancelled")
	defer span.End()

	span.SetAttributes(attribute.String("waitlist_id", id))

	query := `
		UPDATE waitlist_entries SET
			status = 'cancelled',
			updated_at = $2
		WHERE id = $1
		  AND status IN ('waiting', 'notified')
	`

	return r.execFlip(ctx, span, "cancel waitlist entry", query, id, now)
}

// ListExpiredOffers retrieves notified entries whose window elapsed at or before now
func (r *PostgresWaitlistRepository) ListExpiredOffers(ctx context.Context, now time.Time, limit int) ([]*domain.WaitlistEntry, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.waitlist.list_expired_offers")
	defer span.End()

	span.SetAttributes(attribute.Int("limit", limit))

	query := `
		SELECT ` + waitlistColumns + `
		FROM waitlist_entries
		WHERE status = 'notified'
		  AND expires_at <= $1
		ORDER BY expires_at ASC
		LIMIT $2
	`

	return r.queryEntries(ctx, span, query, now, limit)
}

// ListActiveByParticipant retrieves the participant's waiting and notified entries
func (r *PostgresWaitlistRepository) ListActiveByParticipant(ctx context.Context, participantID string) ([]*domain.WaitlistEntry, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.waitlist.list_active_by_participant")
	defer span.End()

	span.SetAttributes(attribute.String("participant_id", participantID))

	query := `
		SELECT ` + waitlistColumns + `
		FROM waitlist_entries
		WHERE participant_id = $1
		  AND status IN ('waiting', 'notified')
		ORDER BY created_at ASC
	`

	return r.queryEntries(ctx, span, query, participantID)
}

// ListActiveByActivity retrieves waiting and notified entries ordered by position
func (r *PostgresWaitlistRepository) ListActiveByActivity(ctx context.Context, activityID string) ([]*domain.WaitlistEntry, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.waitlist.list_active_by_activity")
	defer span.End()

	span.SetAttributes(attribute.String("activity_id", activityID))

	query := `
		SELECT ` + waitlistColumns + `
		FROM waitlist_entries
		WHERE activity_id = $1
		  AND status IN ('waiting', 'notified')
		ORDER BY position ASC
	`

	return r.queryEntries(ctx, span, query, activityID)
}

// CountWaitingAhead counts waiting entries ahead of the given position
func (r *PostgresWaitlistRepository) CountWaitingAhead(ctx context.Context, activityID string, position int) (int, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.waitlist.count_waiting_ahead")
	defer span.End()

	span.SetAttributes(
		attribute.String("activity_id", activityID),
		attribute.Int("position", position),
	)

	query := `
		SELECT COUNT(*)
		FROM waitlist_entries
		WHERE activity_id = $1
		  AND status = 'waiting'
		  AND position < $2
	`

	var count int
	if err := r.pool.QueryRow(ctx, query, activityID, position).Scan(&count); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, fmt.Errorf("failed to count waiting entries: %w", err)
	}

	span.SetAttributes(attribute.Int("count", count))
	span.SetStatus(codes.Ok, "")
	return count, nil
}

func (r *PostgresWaitlistRepository) execFlip(ctx context.Context, span trace.Span, action, query string, args ...interface{}) (bool, error) {
	result, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return false, fmt.Errorf("failed to %s: %w", action, err)
	}

	flipped := result.RowsAffected() > 0
	span.SetAttributes(attribute.Bool("flipped", flipped))
	span.SetStatus(codes.Ok, "")
	return flipped, nil
}

func (r *PostgresWaitlistRepository) queryEntries(ctx context.Context, span trace.Span, query string, args ...interface{}) ([]*domain.WaitlistEntry, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to query waitlist entries: %w", err)
	}
	defer rows.Close()

	var entries []*domain.WaitlistEntry
	for rows.Next() {
		entry, err := scanWaitlistEntry(rows)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("error iterating waitlist entries: %w", err)
	}

	span.SetAttributes(attribute.Int("count", len(entries)))
	span.SetStatus(codes.Ok, "")
	return entries, nil
}

func scanWaitlistEntry(row pgx.Row) (*domain.WaitlistEntry, error) {
	entry := &domain.WaitlistEntry{}
	var status string

	err := row.Scan(
		&entry.ID,
		&entry.ActivityID,
		&entry.ParticipantID,
		&entry.Position,
		&status,
		&entry.NotifiedAt,
		&entry.ExpiresAt,
		&entry.CreatedAt,
		&entry.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	entry.Status = domain.WaitlistStatus(status)
	return entry, nil
}
