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

// BookingService orchestrates admission: conflict check, capacity-aware
// confirm-or-waitlist, cancellation with waitlist cascade, check-in and
// post-activity feedback.
type BookingService interface {
	// CreateBooking registers a participant for an activity. When the
	// activity is full the participant is waitlisted instead; that is a
	// successful outcome, not an error.
	CreateBooking(ctx context.Context, activityID, participantID string, actor domain.Actor) (*dto.CreateBookingResponse, error)

	// CancelBooking cancels a confirmed booking and offers the freed seat
	// to the waitlist head.
	CancelBooking(ctx context.Context, bookingID string, actor domain.Actor) (*dto.CancelBookingResponse, error)

	// CheckIn records the participant's arrival during the activity window.
	CheckIn(ctx context.Context, bookingID string, actor domain.Actor) (*dto.BookingResponse, error)

	// SubmitFeedback records a 1-5 rating after the activity has ended.
	SubmitFeedback(ctx context.Context, bookingID string, actor domain.Actor, rating int, text string) (*dto.BookingResponse, error)

	// GetBooking retrieves a booking visible to the actor.
	GetBooking(ctx context.Context, bookingID string, actor domain.Actor) (*dto.BookingResponse, error)

	// GetParticipantBookings lists the participant's confirmed bookings.
	GetParticipantBookings(ctx context.Context, participantID string) ([]*dto.BookingResponse, error)
}

// bookingService implements BookingService
type bookingService struct {
	bookingRepo     repository.BookingRepository
	activityRepo    repository.ActivityRepository
	participantRepo repository.ParticipantRepository
	conflicts       ConflictService
	waitlist        WaitlistService
	notifier        Notifier
}

// NewBookingService creates a new booking service
func NewBookingService(
	bookingRepo repository.BookingRepository,
	activityRepo repository.ActivityRepository,
	participantRepo repository.ParticipantRepository,
	conflicts ConflictService,
	waitlist WaitlistService,
	notifier Notifier,
) BookingService {
	if notifier == nil {
		notifier = NewNoOpNotifier()
	}
	return &bookingService{
		bookingRepo:     bookingRepo,
		activityRepo:    activityRepo,
		participantRepo: participantRepo,
		conflicts:       conflicts,
		waitlist:        waitlist,
		notifier:        notifier,
	}
}

// CreateBooking registers a participant for an activity
func (s *bookingService) CreateBooking(ctx context.Context, activityID, participantID string, actor domain.Actor) (*dto.CreateBookingResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.create")
	defer span.End()

	started := time.Now()

	span.SetAttributes(
		attribute.String("activity_id", activityID),
		attribute.String("participant_id", participantID),
		attribute.String("actor_id", actor.ID),
	)

	if participantID == "" {
		span.SetStatus(codes.Error, "invalid participant_id")
		return nil, domain.ErrInvalidParticipantID
	}
	if participantID != actor.ID && !actor.IsStaff() {
		span.SetStatus(codes.Error, "forbidden")
		return nil, domain.ErrForbidden
	}

	activity, err := s.activityRepo.GetByID(ctx, activityID)
	if err != nil {
		span.SetStatus(codes.Error, "activity not found")
		return nil, err
	}
	now := time.Now()
	if activity.IsCancelled {
		metrics.RecordRejection(ctx, "activity_cancelled")
		span.SetStatus(codes.Error, "activity cancelled")
		return nil, domain.ErrActivityCancelled
	}
	if activity.HasStarted(now) {
		metrics.RecordRejection(ctx, "past_activity")
		span.SetStatus(codes.Error, "past activity")
		return nil, domain.ErrPastActivity
	}

	if _, err := s.participantRepo.GetByID(ctx, participantID); err != nil {
		span.SetStatus(codes.Error, "participant not found")
		return nil, err
	}

	existing, err := s.bookingRepo.GetByActivityAndParticipant(ctx, activityID, participantID)
	if err != nil && !errors.Is(err, domain.ErrBookingNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if existing != nil && existing.IsConfirmed() {
		metrics.RecordRejection(ctx, "already_registered")
		span.SetStatus(codes.Error, "already registered")
		return nil, domain.ErrAlreadyRegistered
	}

	conflict, err := s.conflicts.CheckConflict(ctx, participantID, activity.StartTime, activity.EndTime, activityID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if conflict.HasConflict {
		metrics.RecordRejection(ctx, "conflict")
		span.SetStatus(codes.Error, "schedule conflict")
		return nil, &ConflictError{Result: conflict}
	}

	reserved, err := s.activityRepo.TryReserveSeat(ctx, activityID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if !reserved {
		entry, err := s.waitlist.Enqueue(ctx, activityID, participantID)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}

		metrics.RecordWaitlisted(ctx, activityID)
		metrics.RecordAdmissionDuration(ctx, time.Since(started).Seconds(), dto.OutcomeWaitlisted)
		span.SetAttributes(attribute.Int("waitlist_position", entry.Position))
		span.SetStatus(codes.Ok, "waitlisted")
		return &dto.CreateBookingResponse{
			Status:   dto.OutcomeWaitlisted,
			Position: entry.Position,
		}, nil
	}

	booking, err := s.confirmRow(ctx, existing, activityID, participantID, now)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	metrics.RecordConfirmation(ctx, activityID)
	metrics.RecordAdmissionDuration(ctx, time.Since(started).Seconds(), dto.OutcomeConfirmed)
	notify(ctx, s.notifier, &domain.Notification{
		Type:        domain.NotificationBookingConfirmed,
		RecipientID: participantID,
		ActivityID:  activityID,
		Subject:     "Booking confirmed",
		OccurredAt:  now,
	})

	span.SetStatus(codes.Ok, "confirmed")
	return &dto.CreateBookingResponse{
		Status:  dto.OutcomeConfirmed,
		Booking: dto.BookingFromDomain(booking),
	}, nil
}

// CancelBooking cancels a booking and offers the freed seat to the waitlist
func (s *bookingService) CancelBooking(ctx context.Context, bookingID string, actor domain.Actor) (*dto.CancelBookingResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.cancel")
	defer span.End()

	span.SetAttributes(
		attribute.String("booking_id", bookingID),
		attribute.String("actor_id", actor.ID),
	)

	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		span.SetStatus(codes.Error, "not found")
		return nil, err
	}
	if booking.IsCancelled() {
		span.SetStatus(codes.Error, "already cancelled")
		return nil, domain.ErrAlreadyCancelled
	}

	if booking.ParticipantID != actor.ID && !actor.IsStaff() {
		span.SetStatus(codes.Error, "forbidden")
		return nil, domain.ErrForbidden
	}

	activity, err := s.activityRepo.GetByID(ctx, booking.ActivityID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	now := time.Now()
	if !actor.IsStaff() && now.Add(domain.CancellationNotice).After(activity.StartTime) {
		span.SetStatus(codes.Error, "cancellation deadline")
		return nil, domain.ErrCancellationClosed
	}

	if err := booking.Cancel(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if err := s.bookingRepo.Update(ctx, booking); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if err := s.activityRepo.ReleaseSeat(ctx, booking.ActivityID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	notified, err := s.waitlist.Promote(ctx, booking.ActivityID)
	if err != nil {
		// Cancellation stands; the sweep retries the cascade
		logger.Get().Warn("waitlist promotion after cancellation failed",
			zap.String("activity_id", booking.ActivityID),
			zap.Error(err),
		)
	}

	metrics.RecordCancellation(ctx, booking.ActivityID)
	notify(ctx, s.notifier, &domain.Notification{
		Type:        domain.NotificationBookingCancelled,
		RecipientID: booking.ParticipantID,
		ActivityID:  booking.ActivityID,
		Subject:     "Booking cancelled",
		OccurredAt:  now,
	})

	span.SetAttributes(attribute.Bool("waitlist_notified", notified))
	span.SetStatus(codes.Ok, "")
	return &dto.CancelBookingResponse{
		BookingID:        booking.ID,
		Status:           booking.Status.String(),
		WaitlistNotified: notified,
	}, nil
}

// CheckIn records the participant's arrival
func (s *bookingService) CheckIn(ctx context.Context, bookingID string, actor domain.Actor) (*dto.BookingResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.check_in")
	defer span.End()

	span.SetAttributes(
		attribute.String("booking_id", bookingID),
		attribute.String("actor_id", actor.ID),
	)

	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		span.SetStatus(codes.Error, "not found")
		return nil, err
	}
	if booking.ParticipantID != actor.ID && !actor.IsStaff() {
		span.SetStatus(codes.Error, "forbidden")
		return nil, domain.ErrForbidden
	}

	activity, err := s.activityRepo.GetByID(ctx, booking.ActivityID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if err := booking.CheckIn(activity, time.Now()); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if err := s.bookingRepo.Update(ctx, booking); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return dto.BookingFromDomain(booking), nil
}

// SubmitFeedback records the participant's post-activity rating
func (s *bookingService) SubmitFeedback(ctx context.Context, bookingID string, actor domain.Actor, rating int, text string) (*dto.BookingResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.submit_feedback")
	defer span.End()

	span.SetAttributes(
		attribute.String("booking_id", bookingID),
		attribute.String("actor_id", actor.ID),
		attribute.Int("rating", rating),
	)

	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		span.SetStatus(codes.Error, "not found")
		return nil, err
	}
	// Feedback is personal; staff cannot submit it on someone's behalf
	if booking.ParticipantID != actor.ID {
		span.SetStatus(codes.Error, "forbidden")
		return nil, domain.ErrForbidden
	}

	activity, err := s.activityRepo.GetByID(ctx, booking.ActivityID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if err := booking.SubmitFeedback(activity, rating, text, time.Now()); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if err := s.bookingRepo.Update(ctx, booking); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return dto.BookingFromDomain(booking), nil
}

// GetBooking retrieves a booking visible to the actor
func (s *bookingService) GetBooking(ctx context.Context, bookingID string, actor domain.Actor) (*dto.BookingResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.get")
	defer span.End()

	span.SetAttributes(attribute.String("booking_id", bookingID))

	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		span.SetStatus(codes.Error, "not found")
		return nil, err
	}
	if booking.ParticipantID != actor.ID && !actor.IsStaff() {
		span.SetStatus(codes.Error, "forbidden")
		return nil, domain.ErrForbidden
	}

	span.SetStatus(codes.Ok, "")
	return dto.BookingFromDomain(booking), nil
}

// GetParticipantBookings lists the participant's confirmed bookings
func (s *bookingService) GetParticipantBookings(ctx context.Context, participantID string) ([]*dto.BookingResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.get_participant_bookings")
	defer span.End()

	span.SetAttributes(attribute.String("participant_id", participantID))

	bookings, err := s.bookingRepo.ListConfirmedByParticipant(ctx, participantID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	out := make([]*dto.BookingResponse, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, dto.BookingFromDomain(b))
	}

	span.SetStatus(codes.Ok, "")
	return out, nil
}

// confirmRow inserts a confirmed booking, or flips the pair's cancelled
// row back to confirmed so the (activity, participant) uniqueness holds.
func (s *bookingService) confirmRow(ctx context.Context, existing *domain.Booking, activityID, participantID string, now time.Time) (*domain.Booking, error) {
	if existing != nil {
		reconfirmed, err := s.bookingRepo.Reconfirm(ctx, existing.ID)
		if err != nil {
			return nil, err
		}
		if !reconfirmed {
			return nil, domain.ErrAlreadyRegistered
		}
		existing.Status = domain.BookingStatusConfirmed
		existing.CancelledAt = nil
		return existing, nil
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
