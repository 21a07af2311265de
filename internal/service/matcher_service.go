package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/careconnect/booking-service/internal/domain"
	"github.com/careconnect/booking-service/internal/dto"
	"github.com/careconnect/booking-service/internal/metrics"
	"github.com/careconnect/booking-service/internal/repository"
	"github.com/careconnect/booking-service/pkg/telemetry"
)

// Match score weights. The components sum to at most 100.
const (
	interestPointsPerTag = 10.0
	interestCap          = 40.0
	ratingWeight         = 5.0
	ratingCap            = 25.0
	experienceDivisor    = 10.0
	experienceCap        = 15.0
	availabilityPoints   = 20.0
)

// VolunteerService scores volunteers against activities and manages the
// assignment lifecycle from invitation through completion.
type VolunteerService interface {
	// FindMatches returns up to limit ranked candidates for the activity.
	FindMatches(ctx context.Context, activityID string, limit int) ([]*dto.VolunteerMatch, error)

	// CreateAssignment invites a volunteer to fill a role.
	CreateAssignment(ctx context.Context, activityID, volunteerID string, role domain.AssignmentRole) (*dto.AssignmentResponse, error)

	// RespondAssignment records the volunteer's accept/decline.
	RespondAssignment(ctx context.Context, assignmentID string, actor domain.Actor, accept bool) (*dto.AssignmentResponse, error)

	// CheckInAssignment records the volunteer's arrival for a shift.
	CheckInAssignment(ctx context.Context, assignmentID string, actor domain.Actor) (*dto.AssignmentResponse, error)

	// CheckOutAssignment records departure and optional feedback.
	CheckOutAssignment(ctx context.Context, assignmentID string, actor domain.Actor, feedback string) (*dto.AssignmentResponse, error)

	// CompleteAssignment closes out a confirmed assignment after the
	// activity ends and folds the staff rating into the volunteer's
	// rolling aggregates.
	CompleteAssignment(ctx context.Context, assignmentID string, staffRating int, hours *float64) (*dto.VolunteerResponse, error)
}

// volunteerService implements VolunteerService
type volunteerService struct {
	volunteerRepo  repository.VolunteerRepository
	assignmentRepo repository.AssignmentRepository
	activityRepo   repository.ActivityRepository
	notifier       Notifier
}

// NewVolunteerService creates a new volunteer service
func NewVolunteerService(
	volunteerRepo repository.VolunteerRepository,
	assignmentRepo repository.AssignmentRepository,
	activityRepo repository.ActivityRepository,
	notifier Notifier,
) VolunteerService {
	if notifier == nil {
		notifier = NewNoOpNotifier()
	}
	return &volunteerService{
		volunteerRepo:  volunteerRepo,
		assignmentRepo: assignmentRepo,
		activityRepo:   activityRepo,
		notifier:       notifier,
	}
}

// FindMatches scores all eligible volunteers against the activity
func (s *volunteerService) FindMatches(ctx context.Context, activityID string, limit int) ([]*dto.VolunteerMatch, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.volunteer.find_matches")
	defer span.End()

	started := time.Now()

	span.SetAttributes(
		attribute.String("activity_id", activityID),
		attribute.Int("limit", limit),
	)

	activity, err := s.activityRepo.GetByID(ctx, activityID)
	if err != nil {
		span.SetStatus(codes.Error, "not found")
		return nil, err
	}

	volunteers, err := s.volunteerRepo.ListAll(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	excluded, err := s.excludedVolunteers(ctx, activity)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	matches := make([]*dto.VolunteerMatch, 0, len(volunteers))
	for _, v := range volunteers {
		if _, skip := excluded[v.ID]; skip {
			continue
		}
		breakdown := scoreVolunteer(v, activity)
		matches = append(matches, &dto.VolunteerMatch{
			VolunteerID: v.ID,
			Score:       breakdown.Interest + breakdown.Rating + breakdown.Experience + breakdown.Availability,
			Breakdown:   breakdown,
		})
	}

	// Stable sort keeps the store's ordering for equal scores
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}

	metrics.RecordMatchDuration(ctx, time.Since(started).Seconds(), len(volunteers))
	span.SetAttributes(attribute.Int("matches", len(matches)))
	span.SetStatus(codes.Ok, "")
	return matches, nil
}

// excludedVolunteers collects volunteers already holding an active
// assignment for this activity or a confirmed overlapping one elsewhere
func (s *volunteerService) excludedVolunteers(ctx context.Context, activity *domain.Activity) (map[string]struct{}, error) {
	excluded := make(map[string]struct{})

	active, err := s.assignmentRepo.ListActiveByActivity(ctx, activity.ID)
	if err != nil {
		return nil, err
	}
	for _, a := range active {
		excluded[a.VolunteerID] = struct{}{}
	}

	busy, err := s.assignmentRepo.ListConfirmedOverlapping(ctx, activity.StartTime, activity.EndTime)
	if err != nil {
		return nil, err
	}
	for _, id := range busy {
		excluded[id] = struct{}{}
	}

	return excluded, nil
}

// scoreVolunteer computes the fixed weighted components for one candidate.
// Each component is computed independently; no normalization across the pool.
func scoreVolunteer(v *domain.Volunteer, activity *domain.Activity) dto.ScoreBreakdown {
	var breakdown dto.ScoreBreakdown

	for _, tag := range activity.Tags {
		if v.HasInterest(tag) {
			breakdown.Interest += interestPointsPerTag
		}
	}
	if breakdown.Interest > interestCap {
		breakdown.Interest = interestCap
	}

	breakdown.Rating = v.Rating * ratingWeight
	if breakdown.Rating > ratingCap {
		breakdown.Rating = ratingCap
	}

	breakdown.Experience = v.TotalHours / experienceDivisor
	if breakdown.Experience > experienceCap {
		breakdown.Experience = experienceCap
	}

	if v.AvailableFor(activity.Weekday(), activity.Slot()) {
		breakdown.Availability = availabilityPoints
	}

	return breakdown
}

// CreateAssignment invites a volunteer to fill a role
func (s *volunteerService) CreateAssignment(ctx context.Context, activityID, volunteerID string, role domain.AssignmentRole) (*dto.AssignmentResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.volunteer.create_assignment")
	defer span.End()

	span.SetAttributes(
		attribute.String("activity_id", activityID),
		attribute.String("volunteer_id", volunteerID),
		attribute.String("role", role.String()),
	)

	if !role.IsValid() {
		span.SetStatus(codes.Error, "invalid role")
		return nil, domain.ErrInvalidRole
	}

	activity, err := s.activityRepo.GetByID(ctx, activityID)
	if err != nil {
		span.SetStatus(codes.Error, "activity not found")
		return nil, err
	}
	if activity.IsCancelled {
		span.SetStatus(codes.Error, "activity cancelled")
		return nil, domain.ErrActivityCancelled
	}

	if _, err := s.volunteerRepo.GetByID(ctx, volunteerID); err != nil {
		span.SetStatus(codes.Error, "volunteer not found")
		return nil, err
	}

	_, err = s.assignmentRepo.GetActiveByActivityAndVolunteer(ctx, activityID, volunteerID)
	if err == nil {
		span.SetStatus(codes.Error, "assignment conflict")
		return nil, domain.ErrAssignmentConflict
	}
	if !errors.Is(err, domain.ErrAssignmentNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	reserved, err := s.activityRepo.TryReserveVolunteerSlot(ctx, activityID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if !reserved {
		span.SetStatus(codes.Error, "volunteers full")
		return nil, domain.ErrVolunteersFull
	}

	now := time.Now()
	assignment := &domain.VolunteerAssignment{
		ID:          uuid.New().String(),
		ActivityID:  activityID,
		VolunteerID: volunteerID,
		Role:        role,
		Status:      domain.AssignmentStatusInvited,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.assignmentRepo.Create(ctx, assignment); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	metrics.RecordAssignmentCreated(ctx, activityID, role.String())
	notify(ctx, s.notifier, &domain.Notification{
		Type:        domain.NotificationAssignmentInvited,
		RecipientID: volunteerID,
		ActivityID:  activityID,
		Subject:     "You have been invited to volunteer",
		OccurredAt:  now,
	})

	span.SetStatus(codes.Ok, "")
	return dto.AssignmentFromDomain(assignment), nil
}

// RespondAssignment records the volunteer's accept/decline
func (s *volunteerService) RespondAssignment(ctx context.Context, assignmentID string, actor domain.Actor, accept bool) (*dto.AssignmentResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.volunteer.respond_assignment")
	defer span.End()

	span.SetAttributes(
		attribute.String("assignment_id", assignmentID),
		attribute.Bool("accept", accept),
	)

	assignment, err := s.assignmentRepo.GetByID(ctx, assignmentID)
	if err != nil {
		span.SetStatus(codes.Error, "not found")
		return nil, err
	}
	if assignment.VolunteerID != actor.ID && !actor.IsStaff() {
		span.SetStatus(codes.Error, "forbidden")
		return nil, domain.ErrForbidden
	}

	now := time.Now()
	if err := assignment.Respond(accept, now); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	flipped, err := s.assignmentRepo.UpdateStatusIf(ctx, assignment.ID, domain.AssignmentStatusInvited, assignment.Status, now)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if !flipped {
		span.SetStatus(codes.Error, "already responded")
		return nil, domain.ErrAlreadyResponded
	}

	if !accept {
		// Declining frees the slot; staff must re-run the matcher to refill
		if err := s.activityRepo.ReleaseVolunteerSlot(ctx, assignment.ActivityID); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
	}

	span.SetStatus(codes.Ok, "")
	return dto.AssignmentFromDomain(assignment), nil
}

// CheckInAssignment records the volunteer's arrival
func (s *volunteerService) CheckInAssignment(ctx context.Context, assignmentID string, actor domain.Actor) (*dto.AssignmentResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.volunteer.check_in_assignment")
	defer span.End()

	span.SetAttributes(attribute.String("assignment_id", assignmentID))

	assignment, err := s.assignmentRepo.GetByID(ctx, assignmentID)
	if err != nil {
		span.SetStatus(codes.Error, "not found")
		return nil, err
	}
	if assignment.VolunteerID != actor.ID && !actor.IsStaff() {
		span.SetStatus(codes.Error, "forbidden")
		return nil, domain.ErrForbidden
	}

	if err := assignment.CheckIn(time.Now()); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if err := s.assignmentRepo.Update(ctx, assignment); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return dto.AssignmentFromDomain(assignment), nil
}

// CheckOutAssignment records departure and optional volunteer feedback
func (s *volunteerService) CheckOutAssignment(ctx context.Context, assignmentID string, actor domain.Actor, feedback string) (*dto.AssignmentResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.volunteer.check_out_assignment")
	defer span.End()

	span.SetAttributes(attribute.String("assignment_id", assignmentID))

	assignment, err := s.assignmentRepo.GetByID(ctx, assignmentID)
	if err != nil {
		span.SetStatus(codes.Error, "not found")
		return nil, err
	}
	if assignment.VolunteerID != actor.ID && !actor.IsStaff() {
		span.SetStatus(codes.Error, "forbidden")
		return nil, domain.ErrForbidden
	}

	if err := assignment.CheckOut(feedback, time.Now()); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if err := s.assignmentRepo.Update(ctx, assignment); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return dto.AssignmentFromDomain(assignment), nil
}

// CompleteAssignment closes out a confirmed assignment and updates the
// volunteer's rolling aggregates
func (s *volunteerService) CompleteAssignment(ctx context.Context, assignmentID string, staffRating int, hours *float64) (*dto.VolunteerResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.volunteer.complete_assignment")
	defer span.End()

	span.SetAttributes(
		attribute.String("assignment_id", assignmentID),
		attribute.Int("staff_rating", staffRating),
	)

	assignment, err := s.assignmentRepo.GetByID(ctx, assignmentID)
	if err != nil {
		span.SetStatus(codes.Error, "not found")
		return nil, err
	}

	activity, err := s.activityRepo.GetByID(ctx, assignment.ActivityID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	now := time.Now()
	if !activity.HasEnded(now) {
		span.SetStatus(codes.Error, "activity not ended")
		return nil, domain.ErrActivityNotEnded
	}

	worked := assignment.WorkedHours(activity)
	if hours != nil && *hours > 0 {
		worked = *hours
	}

	if err := assignment.Complete(staffRating, worked, now); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if err := s.assignmentRepo.Update(ctx, assignment); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	volunteer, err := s.volunteerRepo.GetByID(ctx, assignment.VolunteerID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if err := volunteer.RecordCompletion(staffRating, worked, now); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if err := s.volunteerRepo.Update(ctx, volunteer); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	metrics.RecordAssignmentCompleted(ctx, assignment.ActivityID)
	span.SetStatus(codes.Ok, "")
	return dto.VolunteerFromDomain(volunteer), nil
}
