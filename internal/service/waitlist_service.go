package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/careconnect/booking-service/internal/domain"
	"github.com/careconnect/booking-service/internal/dto"
	"github.com/careconnect/booking-service/internal/metrics"
	"github.com/careconnect/booking-service/internal/repository"
	"github.com/careconnect/booking-service/pkg/logger"
	"github.com/careconnect/booking-service/pkg/telemetry"
)

// sweepBatchSize bounds how many expired offers one sweep pass processes
const sweepBatchSize = 100

// WaitlistService maintains the FIFO queue per activity: enqueue, offer
// promotion, accept/decline, and the periodic expiry sweep.
type WaitlistService interface {
	// Enqueue adds the participant to the activity's waitlist in waiting
	// state and returns the entry with its assigned position.
	Enqueue(ctx context.Context, activityID, participantID string) (*domain.WaitlistEntry, error)

	// Promote offers the freed seat to the lowest-position waiting entry.
	// Returns true when an offer was issued, false when the queue is empty.
	Promote(ctx context.Context, activityID string) (bool, error)

	// AcceptOffer converts an active offer into a confirmed booking.
	AcceptOffer(ctx context.Context, waitlistID string, actor domain.Actor) (*dto.AcceptOfferResponse, error)

	// DeclineOffer declines an active offer and cascades to the next entry.
	DeclineOffer(ctx context.Context, waitlistID string, actor domain.Actor) error

	// SweepExpiredOffers expires stale offers and cascades each freed seat.
	// Returns the number of entries expired.
	SweepExpiredOffers(ctx context.Context) (int, error)

	// GetParticipantWaitlist returns the participant's active entries with
	// the live rank among currently-waiting entries.
	GetParticipantWaitlist(ctx context.Context, participantID string) ([]*dto.WaitlistEntryResponse, error)
}

// waitlistService implements WaitlistService
type waitlistService struct {
	waitlistRepo repository.WaitlistRepository
	bookingRepo  repository.BookingRepository
	activityRepo repository.ActivityRepository
	notifier     Notifier
}

// NewWaitlistService creates a new waitlist service
func NewWaitlistService(
	waitlistRepo repository.WaitlistRepository,
	bookingRepo repository.BookingRepository,
	activityRepo repository.ActivityRepository,
	notifier Notifier,
) WaitlistService {
	if notifier == nil {
		notifier = NewNoOpNotifier()
	}
	return &waitlistService{
		waitlistRepo: waitlistRepo,
		bookingRepo:  bookingRepo,
		activityRepo: activityRepo,
		notifier:     notifier,
	}
}

// Enqueue adds the participant to the activity's FIFO queue
func (s *waitlistService) Enqueue(ctx context.Context, activityID, participantID string) (*domain.WaitlistEntry, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.waitlist.enqueue")
	defer span.End()

	span.SetAttributes(
		attribute.String("activity_id", activityID),
		attribute.String("participant_id", participantID),
	)

	_, err := s.waitlistRepo.GetActiveByActivityAndParticipant(ctx, activityID, participantID)
	if err == nil {
		span.SetStatus(codes.Error, "already waitlisted")
		return nil, domain.ErrAlreadyWaitlisted
	}
	if !errors.Is(err, domain.ErrWaitlistNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	now := time.Now()
	entry := &domain.WaitlistEntry{
		ID:            uuid.New().String(),
		ActivityID:    activityID,
		ParticipantID: participantID,
		Status:        domain.WaitlistStatusWaiting,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.waitlistRepo.Enqueue(ctx, entry); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("position", entry.Position))
	span.SetStatus(codes.Ok, "")
	return entry, nil
}

// Promote issues a time-bound offer to the head of the queue
func (s *waitlistService) Promote(ctx context.Context, activityID string) (bool, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.waitlist.promote")
	defer span.End()

	span.SetAttributes(attribute.String("activity_id", activityID))

	entry, err := s.waitlistRepo.NextWaiting(ctx, activityID)
	if err != nil {
		if errors.Is(err, domain.ErrWaitlistNotFound) {
			span.SetStatus(codes.Ok, "queue empty")
			return false, nil
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return false, err
	}

	now := time.Now()
	notified, err := s.waitlistRepo.MarkNotified(ctx, entry.ID, now, now.Add(domain.OfferWindow))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return false, err
	}
	if !notified {
		// Lost a race with a concurrent promotion for the same entry
		span.SetStatus(codes.Ok, "entry no longer waiting")
		return false, nil
	}

	metrics.RecordOfferIssued(ctx, activityID)
	notify(ctx, s.notifier, &domain.Notification{
		Type:        domain.NotificationWaitlistOffer,
		RecipientID: entry.ParticipantID,
		ActivityID:  activityID,
		Subject:     "A seat has opened up",
		Body:        "A seat is being held for you for the next 2 hours. Accept the offer to confirm your booking.",
		OccurredAt:  now,
	})

	span.SetAttributes(attribute.String("waitlist_id", entry.ID))
	span.SetStatus(codes.Ok, "")
	return true, nil
}

// AcceptOffer converts an active offer into a confirmed booking
func (s *waitlistService) AcceptOffer(ctx context.Context, waitlistID string, actor domain.Actor) (*dto.AcceptOfferResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.waitlist.accept_offer")
	defer span.End()

	span.SetAttributes(
		attribute.String("waitlist_id", waitlistID),
		attribute.String("actor_id", actor.ID),
	)

	entry, err := s.waitlistRepo.GetByID(ctx, waitlistID)
	if err != nil {
		span.SetStatus(codes.Error, "not found")
		return nil, err
	}

	if entry.ParticipantID != actor.ID && !actor.IsStaff() {
		span.SetStatus(codes.Error, "forbidden")
		return nil, domain.ErrForbidden
	}

	now := time.Now()
	if entry.OfferExpired(now) {
		return nil, s.expireAndCascade(ctx, entry, now)
	}
	if entry.Status != domain.WaitlistStatusNotified {
		span.SetStatus(codes.Error, "offer not active")
		return nil, domain.ErrOfferNotActive
	}

	activity, err := s.activityRepo.GetByID(ctx, entry.ActivityID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if activity.IsCancelled {
		span.SetStatus(codes.Error, "activity cancelled")
		return nil, domain.ErrActivityCancelled
	}

	// The entry flip is the last write. Any earlier failure leaves the
	// entry notified so the participant can retry until expiry.
	reserved, err := s.activityRepo.TryReserveSeat(ctx, entry.ActivityID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if !reserved {
		// The held seat was re-consumed while the offer was outstanding.
		// Surface the capacity conflict; the caller must re-decide.
		span.SetStatus(codes.Error, "seat re-consumed")
		return nil, domain.ErrActivityFull
	}

	booking, err := s.confirmBookingRow(ctx, entry.ActivityID, entry.ParticipantID, now)
	if err != nil {
		if relErr := s.activityRepo.ReleaseSeat(ctx, entry.ActivityID); relErr != nil {
			logger.Get().Warn("seat release after failed booking insert failed",
				zap.String("activity_id", entry.ActivityID),
				zap.Error(relErr),
			)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	accepted, err := s.waitlistRepo.MarkAccepted(ctx, entry.ID, now)
	if err != nil || !accepted {
		// The booking is already confirmed; the entry flip lost a race
		// with the sweep or errored. Keep the booking and log so the
		// entry can be reconciled.
		logger.Get().Warn("waitlist entry flip after confirmed booking failed",
			zap.String("waitlist_id", entry.ID),
			zap.String("booking_id", booking.ID),
			zap.Bool("accepted", accepted),
			zap.Error(err),
		)
	}

	metrics.RecordOfferAccepted(ctx, entry.ActivityID)
	notify(ctx, s.notifier, &domain.Notification{
		Type:        domain.NotificationBookingConfirmed,
		RecipientID: entry.ParticipantID,
		ActivityID:  entry.ActivityID,
		Subject:     "Booking confirmed",
		OccurredAt:  now,
	})

	span.SetStatus(codes.Ok, "")
	return &dto.AcceptOfferResponse{
		BookingID:  booking.ID,
		WaitlistID: entry.ID,
		Status:     domain.WaitlistStatusAccepted.String(),
	}, nil
}

// DeclineOffer declines an active offer and cascades to the next in line
func (s *waitlistService) DeclineOffer(ctx context.Context, waitlistID string, actor domain.Actor) error {
	ctx, span := telemetry.StartSpan(ctx, "service.waitlist.decline_offer")
	defer span.End()

	span.SetAttributes(
		attribute.String("waitlist_id", waitlistID),
		attribute.String("actor_id", actor.ID),
	)

	entry, err := s.waitlistRepo.GetByID(ctx, waitlistID)
	if err != nil {
		span.SetStatus(codes.Error, "not found")
		return err
	}

	if entry.ParticipantID != actor.ID && !actor.IsStaff() {
		span.SetStatus(codes.Error, "forbidden")
		return domain.ErrForbidden
	}

	now := time.Now()
	declined, err := s.waitlistRepo.MarkDeclined(ctx, entry.ID, now)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	if !declined {
		span.SetStatus(codes.Error, "offer not active")
		return domain.ErrOfferNotActive
	}

	metrics.RecordOfferDeclined(ctx, entry.ActivityID)

	if _, err := s.Promote(ctx, entry.ActivityID); err != nil {
		// Declining succeeded; a failed cascade is retried by the sweep
		logger.Get().Warn("waitlist cascade after decline failed",
			zap.String("activity_id", entry.ActivityID),
			zap.Error(err),
		)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// SweepExpiredOffers expires stale offers and cascades each freed seat
func (s *waitlistService) SweepExpiredOffers(ctx context.Context) (int, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.waitlist.sweep_expired_offers")
	defer span.End()

	now := time.Now()
	stale, err := s.waitlistRepo.ListExpiredOffers(ctx, now, sweepBatchSize)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}

	expired := 0
	touched := make(map[string]struct{})
	for _, entry := range stale {
		flipped, err := s.waitlistRepo.MarkExpired(ctx, entry.ID, now)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return expired, err
		}
		if !flipped {
			continue
		}
		expired++
		touched[entry.ActivityID] = struct{}{}

		notify(ctx, s.notifier, &domain.Notification{
			Type:        domain.NotificationOfferExpired,
			RecipientID: entry.ParticipantID,
			ActivityID:  entry.ActivityID,
			Subject:     "Your waitlist offer has expired",
			OccurredAt:  now,
		})
	}

	for activityID := range touched {
		if _, err := s.Promote(ctx, activityID); err != nil {
			logger.Get().Warn("waitlist cascade after expiry failed",
				zap.String("activity_id", activityID),
				zap.Error(err),
			)
		}
	}

	metrics.RecordOffersExpired(ctx, int64(expired))
	span.SetAttributes(attribute.Int("expired", expired))
	span.SetStatus(codes.Ok, "")
	return expired, nil
}

// GetParticipantWaitlist returns active entries with the live rank
func (s *waitlistService) GetParticipantWaitlist(ctx context.Context, participantID string) ([]*dto.WaitlistEntryResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.waitlist.get_participant_waitlist")
	defer span.End()

	span.SetAttributes(attribute.String("participant_id", participantID))

	entries, err := s.waitlistRepo.ListActiveByParticipant(ctx, participantID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	out := make([]*dto.WaitlistEntryResponse, 0, len(entries))
	for _, entry := range entries {
		resp := dto.WaitlistEntryFromDomain(entry)
		if entry.Status == domain.WaitlistStatusWaiting {
			ahead, err := s.waitlistRepo.CountWaitingAhead(ctx, entry.ActivityID, entry.Position)
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				return nil, err
			}
			resp.Rank = ahead + 1
		}
		out = append(out, resp)
	}

	span.SetStatus(codes.Ok, "")
	return out, nil
}

// expireAndCascade flips an overdue offer to expired, promotes the next
// entry, and returns ErrOfferExpired for the caller.
func (s *waitlistService) expireAndCascade(ctx context.Context, entry *domain.WaitlistEntry, now time.Time) error {
	flipped, err := s.waitlistRepo.MarkExpired(ctx, entry.ID, now)
	if err != nil {
		return err
	}
	if flipped {
		metrics.RecordOffersExpired(ctx, 1)
		if _, err := s.Promote(ctx, entry.ActivityID); err != nil {
			logger.Get().Warn("waitlist cascade after expiry failed",
				zap.String("activity_id", entry.ActivityID),
				zap.Error(err),
			)
		}
	}
	return domain.ErrOfferExpired
}

// confirmBookingRow inserts a confirmed booking, or flips the pair's
// cancelled row back to confirmed when one exists.
func (s *waitlistService) confirmBookingRow(ctx context.Context, activityID, participantID string, now time.Time) (*domain.Booking, error) {
	existing, err := s.bookingRepo.GetByActivityAndParticipant(ctx, activityID, participantID)
	if err == nil {
		if existing.Status == domain.BookingStatusConfirmed {
			return existing, nil
		}
		reconfirmed, err := s.bookingRepo.Reconfirm(ctx, existing.ID)
		if err != nil {
			return nil, err
		}
		if !reconfirmed {
			return nil, domain.ErrInvalidBookingState
		}
		existing.Status = domain.BookingStatusConfirmed
		existing.CancelledAt = nil
		return existing, nil
	}
	if !errors.Is(err, domain.ErrBookingNotFound) {
		return nil, err
	}

	booking := &domain.Booking{
		ID:            uuid.New().String(),
		ActivityID:    activityID,
		ParticipantID: participantID,
		Status:        domain.BookingStatusConfirmed,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.bookingRepo.Create(ctx, booking); err != nil {
		return nil, err
	}
	return booking, nil
}
