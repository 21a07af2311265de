package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/careconnect/booking-service/internal/domain"
	"github.com/careconnect/booking-service/internal/dto"
	"github.com/careconnect/booking-service/internal/repository"
	"github.com/careconnect/booking-service/pkg/logger"
	"github.com/careconnect/booking-service/pkg/telemetry"
)

// ActivityService manages the activity lifecycle: creation with the
// room-overlap check, cancellation with its fan-out cascade, capacity
// changes, and the reminder fan-out used by the reminder worker.
type ActivityService interface {
	// CreateActivity creates a new activity. The room-overlap check runs
	// at creation time only.
	CreateActivity(ctx context.Context, req *dto.CreateActivityRequest) (*dto.ActivityResponse, error)

	// GetActivity retrieves one activity.
	GetActivity(ctx context.Context, activityID string) (*dto.ActivityResponse, error)

	// CancelActivity terminally cancels an activity and cascades to all
	// confirmed bookings, active waitlist entries, and active assignments.
	CancelActivity(ctx context.Context, activityID, reason string) (*dto.ActivityResponse, error)

	// UpdateCapacity changes the seat capacity. Every added seat offers
	// a promotion to the waitlist.
	UpdateCapacity(ctx context.Context, activityID string, capacity int) (*dto.ActivityResponse, error)

	// RemindUpcoming emits reminder notifications for activities starting
	// in [from, to) to confirmed participants and confirmed volunteers.
	// Returns the number of notifications emitted.
	RemindUpcoming(ctx context.Context, from, to time.Time) (int, error)
}

// activityService implements ActivityService
type activityService struct {
	activityRepo   repository.ActivityRepository
	bookingRepo    repository.BookingRepository
	waitlistRepo   repository.WaitlistRepository
	assignmentRepo repository.AssignmentRepository
	waitlist       WaitlistService
	notifier       Notifier
}

// NewActivityService creates a new activity service
func NewActivityService(
	activityRepo repository.ActivityRepository,
	bookingRepo repository.BookingRepository,
	waitlistRepo repository.WaitlistRepository,
	assignmentRepo repository.AssignmentRepository,
	waitlist WaitlistService,
	notifier Notifier,
) ActivityService {
	if notifier == nil {
		notifier = NewNoOpNotifier()
	}
	return &activityService{
		activityRepo:   activityRepo,
		bookingRepo:    bookingRepo,
		waitlistRepo:   waitlistRepo,
		assignmentRepo: assignmentRepo,
		waitlist:       waitlist,
		notifier:       notifier,
	}
}

// CreateActivity creates a new activity
func (s *activityService) CreateActivity(ctx context.Context, req *dto.CreateActivityRequest) (*dto.ActivityResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.activity.create")
	defer span.End()

	span.SetAttributes(
		attribute.String("activity_type", req.ActivityType),
		attribute.Int("capacity", req.Capacity),
	)

	now := time.Now()
	activity := &domain.Activity{
		ID:            uuid.New().String(),
		Title:         req.Title,
		Description:   req.Description,
		ActivityType:  req.ActivityType,
		Tags:          req.Tags,
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
		Capacity:      req.Capacity,
		MinVolunteers: req.MinVolunteers,
		MaxVolunteers: req.MaxVolunteers,
		Location:      req.Location,
		Room:          req.Room,
		Requirements:  req.Requirements,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := activity.Validate(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if activity.Room != "" {
		occupied, err := s.activityRepo.ListRoomOverlaps(ctx, activity.Room, activity.ID, activity.StartTime, activity.EndTime)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		if len(occupied) > 0 {
			span.SetStatus(codes.Error, "room occupied")
			return nil, domain.ErrRoomOccupied
		}
	}

	if err := s.activityRepo.Create(ctx, activity); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.String("activity_id", activity.ID))
	span.SetStatus(codes.Ok, "")
	return dto.ActivityFromDomain(activity), nil
}

// GetActivity retrieves one activity
func (s *activityService) GetActivity(ctx context.Context, activityID string) (*dto.ActivityResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.activity.get")
	defer span.End()

	span.SetAttributes(attribute.String("activity_id", activityID))

	activity, err := s.activityRepo.GetByID(ctx, activityID)
	if err != nil {
		span.SetStatus(codes.Error, "not found")
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return dto.ActivityFromDomain(activity), nil
}

// CancelActivity terminally cancels an activity with its full cascade.
// The cascade is a fan-out of single-row writes; a failure partway leaves
// earlier flips intact and is safe to re-run.
func (s *activityService) CancelActivity(ctx context.Context, activityID, reason string) (*dto.ActivityResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.activity.cancel")
	defer span.End()

	span.SetAttributes(attribute.String("activity_id", activityID))

	activity, err := s.activityRepo.GetByID(ctx, activityID)
	if err != nil {
		span.SetStatus(codes.Error, "not found")
		return nil, err
	}

	now := time.Now()
	cancelled, err := s.activityRepo.MarkCancelled(ctx, activityID, reason, now)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if !cancelled {
		span.SetStatus(codes.Error, "already cancelled")
		return nil, domain.ErrActivityCancelled
	}
	activity.IsCancelled = true
	activity.CancellationReason = reason

	if err := s.cascadeBookings(ctx, activityID, now); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if err := s.cascadeWaitlist(ctx, activityID, now); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if err := s.cascadeAssignments(ctx, activityID, now); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return dto.ActivityFromDomain(activity), nil
}

func (s *activityService) cascadeBookings(ctx context.Context, activityID string, now time.Time) error {
	bookings, err := s.bookingRepo.ListConfirmedByActivity(ctx, activityID)
	if err != nil {
		return err
	}
	for _, booking := range bookings {
		if err := booking.Cancel(); err != nil {
			continue
		}
		if err := s.bookingRepo.Update(ctx, booking); err != nil {
			return err
		}
		notify(ctx, s.notifier, &domain.Notification{
			Type:        domain.NotificationActivityCancelled,
			RecipientID: booking.ParticipantID,
			ActivityID:  activityID,
			Subject:     "Activity cancelled",
			OccurredAt:  now,
		})
	}
	return nil
}

func (s *activityService) cascadeWaitlist(ctx context.Context, activityID string, now time.Time) error {
	entries, err := s.waitlistRepo.ListActiveByActivity(ctx, activityID)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		flipped, err := s.waitlistRepo.MarkCancelled(ctx, entry.ID, now)
		if err != nil {
			return err
		}
		if !flipped {
			continue
		}
		notify(ctx, s.notifier, &domain.Notification{
			Type:        domain.NotificationActivityCancelled,
			RecipientID: entry.ParticipantID,
			ActivityID:  activityID,
			Subject:     "Activity cancelled",
			OccurredAt:  now,
		})
	}
	return nil
}

func (s *activityService) cascadeAssignments(ctx context.Context, activityID string, now time.Time) error {
	assignments, err := s.assignmentRepo.ListActiveByActivity(ctx, activityID)
	if err != nil {
		return err
	}
	for _, assignment := range assignments {
		flipped, err := s.assignmentRepo.UpdateStatusIf(ctx, assignment.ID, assignment.Status, domain.AssignmentStatusCancelled, now)
		if err != nil {
			return err
		}
		if !flipped {
			continue
		}
		notify(ctx, s.notifier, &domain.Notification{
			Type:        domain.NotificationActivityCancelled,
			RecipientID: assignment.VolunteerID,
			ActivityID:  activityID,
			Subject:     "Activity cancelled",
			OccurredAt:  now,
		})
	}
	return nil
}

// UpdateCapacity changes seat capacity and promotes one waiting entry per
// added seat
func (s *activityService) UpdateCapacity(ctx context.Context, activityID string, capacity int) (*dto.ActivityResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.activity.update_capacity")
	defer span.End()

	span.SetAttributes(
		attribute.String("activity_id", activityID),
		attribute.Int("capacity", capacity),
	)

	activity, err := s.activityRepo.GetByID(ctx, activityID)
	if err != nil {
		span.SetStatus(codes.Error, "not found")
		return nil, err
	}
	if activity.IsCancelled {
		span.SetStatus(codes.Error, "activity cancelled")
		return nil, domain.ErrActivityCancelled
	}
	if capacity < activity.CurrentBookings {
		span.SetStatus(codes.Error, "capacity below current bookings")
		return nil, domain.ErrInvalidCapacity
	}

	added := capacity - activity.Capacity
	activity.Capacity = capacity
	activity.UpdatedAt = time.Now()
	if err := s.activityRepo.Update(ctx, activity); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	for i := 0; i < added; i++ {
		notified, err := s.waitlist.Promote(ctx, activityID)
		if err != nil {
			logger.Get().Warn("waitlist promotion after capacity increase failed",
				zap.String("activity_id", activityID),
				zap.Error(err),
			)
			break
		}
		if !notified {
			break
		}
	}

	span.SetStatus(codes.Ok, "")
	return dto.ActivityFromDomain(activity), nil
}

// RemindUpcoming emits reminders for activities starting in [from, to)
func (s *activityService) RemindUpcoming(ctx context.Context, from, to time.Time) (int, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.activity.remind_upcoming")
	defer span.End()

	activities, err := s.activityRepo.ListStartingBetween(ctx, from, to)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}

	sent := 0
	for _, activity := range activities {
		bookings, err := s.bookingRepo.ListConfirmedByActivity(ctx, activity.ID)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return sent, err
		}
		for _, booking := range bookings {
			notify(ctx, s.notifier, &domain.Notification{
				Type:        domain.NotificationActivityReminder,
				RecipientID: booking.ParticipantID,
				ActivityID:  activity.ID,
				Subject:     "Upcoming activity reminder",
				OccurredAt:  time.Now(),
			})
			sent++
		}

		assignments, err := s.assignmentRepo.ListActiveByActivity(ctx, activity.ID)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return sent, err
		}
		for _, assignment := range assignments {
			if assignment.Status != domain.AssignmentStatusConfirmed {
				continue
			}
			notify(ctx, s.notifier, &domain.Notification{
				Type:        domain.NotificationAssignmentReminder,
				RecipientID: assignment.VolunteerID,
				ActivityID:  activity.ID,
				Subject:     "Upcoming volunteer shift reminder",
				OccurredAt:  time.Now(),
			})
			sent++
		}
	}

	span.SetAttributes(attribute.Int("sent", sent))
	span.SetStatus(codes.Ok, "")
	return sent, nil
}
