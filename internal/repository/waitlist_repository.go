package repository

import (
	"context"
	"time"

	"github.com/careconnect/booking-service/internal/domain"
)

// WaitlistRepository manages waitlist entries. Position assignment and all
// status flips are performed atomically in SQL so concurrent joins and the
// sweep worker never race.
type WaitlistRepository interface {
	// Enqueue inserts a new entry, assigning the next position for the
	// activity in the same statement. The entry's Position and CreatedAt
	// are populated on return.
	Enqueue(ctx context.Context, entry *domain.WaitlistEntry) error

	GetByID(ctx context.Context, id string) (*domain.WaitlistEntry, error)

	// GetActiveByActivityAndParticipant returns the participant's entry in
	// waiting or notified state, or ErrWaitlistNotFound.
	GetActiveByActivityAndParticipant(ctx context.Context, activityID, participantID string) (*domain.WaitlistEntry, error)

	// NextWaiting returns the lowest-position waiting entry for the
	// activity, or ErrWaitlistNotFound when the queue is empty.
	NextWaiting(ctx context.Context, activityID string) (*domain.WaitlistEntry, error)

	// MarkNotified flips waiting -> notified with the offer window. Returns
	// false when the entry is no longer waiting.
	MarkNotified(ctx context.Context, id string, notifiedAt, expiresAt time.Time) (bool, error)

	// MarkAccepted flips notified -> accepted while the offer is still
	// live. Returns false when the entry is not notified or past expiry.
	MarkAccepted(ctx context.Context, id string, now time.Time) (bool, error)

	// MarkDeclined flips notified -> declined. Returns false when the entry
	// is not notified.
	MarkDeclined(ctx context.Context, id string, now time.Time) (bool, error)

	// MarkExpired flips notified -> expired once the offer window has
	// elapsed. Returns false when another actor got there first.
	MarkExpired(ctx context.Context, id string, now time.Time) (bool, error)

	// MarkCancelled flips an active entry to cancelled. Returns false when
	// the entry is no longer active.
	MarkCancelled(ctx context.Context, id string, now time.Time) (bool, error)

	// ListExpiredOffers returns notified entries whose offer window elapsed
	// at or before now.
	ListExpiredOffers(ctx context.Context, now time.Time, limit int) ([]*domain.WaitlistEntry, error)

	// ListActiveByParticipant returns the participant's waiting and
	// notified entries across activities.
	ListActiveByParticipant(ctx context.Context, participantID string) ([]*domain.WaitlistEntry, error)

	// ListActiveByActivity returns waiting and notified entries for an
	// activity ordered by position.
	ListActiveByActivity(ctx context.Context, activityID string) ([]*domain.WaitlistEntry, error)

	// CountWaitingAhead returns how many waiting entries precede the given
	// position for the activity. This is the live rank minus one.
	CountWaitingAhead(ctx context.Context, activityID string, position int) (int, error)
}
