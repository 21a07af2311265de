package handler

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/careconnect/booking-service/internal/domain"
	"github.com/careconnect/booking-service/internal/dto"
	"github.com/careconnect/booking-service/pkg/middleware"
)

// MockBookingService is a mock implementation of BookingService for testing
type MockBookingService struct {
	CreateBookingFunc          func(ctx context.Context, activityID, participantID string, actor domain.Actor) (*dto.CreateBookingResponse, error)
	CancelBookingFunc          func(ctx context.Context, bookingID string, actor domain.Actor) (*dto.CancelBookingResponse, error)
	CheckInFunc                func(ctx context.Context, bookingID string, actor domain.Actor) (*dto.BookingResponse, error)
	SubmitFeedbackFunc         func(ctx context.Context, bookingID string, actor domain.Actor, rating int, text string) (*dto.BookingResponse, error)
	GetBookingFunc             func(ctx context.Context, bookingID string, actor domain.Actor) (*dto.BookingResponse, error)
	GetParticipantBookingsFunc func(ctx context.Context, participantID string) ([]*dto.BookingResponse, error)
}

func (m *MockBookingService) CreateBooking(ctx context.Context, activityID, participantID string, actor domain.Actor) (*dto.CreateBookingResponse, error) {
	if m.CreateBookingFunc != nil {
		return m.CreateBookingFunc(ctx, activityID, participantID, actor)
	}
	return nil, nil
}

func (m *MockBookingService) CancelBooking(ctx context.Context, bookingID string, actor domain.Actor) (*dto.CancelBookingResponse, error) {
	if m.CancelBookingFunc != nil {
		return m.CancelBookingFunc(ctx, bookingID, actor)
	}
	return nil, nil
}

func (m *MockBookingService) CheckIn(ctx context.Context, bookingID string, actor domain.Actor) (*dto.BookingResponse, error) {
	if m.CheckInFunc != nil {
		return m.CheckInFunc(ctx, bookingID, actor)
	}
	return nil, nil
}

func (m *MockBookingService) SubmitFeedback(ctx context.Context, bookingID string, actor domain.Actor, rating int, text string) (*dto.BookingResponse, error) {
	if m.SubmitFeedbackFunc != nil {
		return m.SubmitFeedbackFunc(ctx, bookingID, actor, rating, text)
	}
	return nil, nil
}

func (m *MockBookingService) GetBooking(ctx context.Context, bookingID string, actor domain.Actor) (*dto.BookingResponse, error) {
	if m.GetBookingFunc != nil {
		return m.GetBookingFunc(ctx, bookingID, actor)
	}
	return nil, nil
}

func (m *MockBookingService) GetParticipantBookings(ctx context.Context, participantID string) ([]*dto.BookingResponse, error) {
	if m.GetParticipantBookingsFunc != nil {
		return m.GetParticipantBookingsFunc(ctx, participantID)
	}
	return nil, nil
}

// MockWaitlistService is a mock implementation of WaitlistService for testing
type MockWaitlistService struct {
	EnqueueFunc                func(ctx context.Context, activityID, participantID string) (*domain.WaitlistEntry, error)
	PromoteFunc                func(ctx context.Context, activityID string) (bool, error)
	AcceptOfferFunc            func(ctx context.Context, waitlistID string, actor domain.Actor) (*dto.AcceptOfferResponse, error)
	DeclineOfferFunc           func(ctx context.Context, waitlistID string, actor domain.Actor) error
	SweepExpiredOffersFunc     func(ctx context.Context) (int, error)
	GetParticipantWaitlistFunc func(ctx context.Context, participantID string) ([]*dto.WaitlistEntryResponse, error)
}

func (m *MockWaitlistService) Enqueue(ctx context.Context, activityID, participantID string) (*domain.WaitlistEntry, error) {
	if m.EnqueueFunc != nil {
		return m.EnqueueFunc(ctx, activityID, participantID)
	}
	return nil, nil
}

func (m *MockWaitlistService) Promote(ctx context.Context, activityID string) (bool, error) {
	if m.PromoteFunc != nil {
		return m.PromoteFunc(ctx, activityID)
	}
	return false, nil
}

func (m *MockWaitlistService) AcceptOffer(ctx context.Context, waitlistID string, actor domain.Actor) (*dto.AcceptOfferResponse, error) {
	if m.AcceptOfferFunc != nil {
		return m.AcceptOfferFunc(ctx, waitlistID, actor)
	}
	return nil, nil
}

func (m *MockWaitlistService) DeclineOffer(ctx context.Context, waitlistID string, actor domain.Actor) error {
	if m.DeclineOfferFunc != nil {
		return m.DeclineOfferFunc(ctx, waitlistID, actor)
	}
	return nil
}

func (m *MockWaitlistService) SweepExpiredOffers(ctx context.Context) (int, error) {
	if m.SweepExpiredOffersFunc != nil {
		return m.SweepExpiredOffersFunc(ctx)
	}
	return 0, nil
}

func (m *MockWaitlistService) GetParticipantWaitlist(ctx context.Context, participantID string) ([]*dto.WaitlistEntryResponse, error) {
	if m.GetParticipantWaitlistFunc != nil {
		return m.GetParticipantWaitlistFunc(ctx, participantID)
	}
	return nil, nil
}

// MockActivityService is a mock implementation of ActivityService for testing
type MockActivityService struct {
	CreateActivityFunc func(ctx context.Context, req *dto.CreateActivityRequest) (*dto.ActivityResponse, error)
	GetActivityFunc    func(ctx context.Context, activityID string) (*dto.ActivityResponse, error)
	CancelActivityFunc func(ctx context.Context, activityID, reason string) (*dto.ActivityResponse, error)
	UpdateCapacityFunc func(ctx context.Context, activityID string, capacity int) (*dto.ActivityResponse, error)
	RemindUpcomingFunc func(ctx context.Context, from, to time.Time) (int, error)
}

func (m *MockActivityService) CreateActivity(ctx context.Context, req *dto.CreateActivityRequest) (*dto.ActivityResponse, error) {
	if m.CreateActivityFunc != nil {
		return m.CreateActivityFunc(ctx, req)
	}
	return nil, nil
}

func (m *MockActivityService) GetActivity(ctx context.Context, activityID string) (*dto.ActivityResponse, error) {
	if m.GetActivityFunc != nil {
		return m.GetActivityFunc(ctx, activityID)
	}
	return nil, nil
}

func (m *MockActivityService) CancelActivity(ctx context.Context, activityID, reason string) (*dto.ActivityResponse, error) {
	if m.CancelActivityFunc != nil {
		return m.CancelActivityFunc(ctx, activityID, reason)
	}
	return nil, nil
}

func (m *MockActivityService) UpdateCapacity(ctx context.Context, activityID string, capacity int) (*dto.ActivityResponse, error) {
	if m.UpdateCapacityFunc != nil {
		return m.UpdateCapacityFunc(ctx, activityID, capacity)
	}
	return nil, nil
}

func (m *MockActivityService) RemindUpcoming(ctx context.Context, from, to time.Time) (int, error) {
	if m.RemindUpcomingFunc != nil {
		return m.RemindUpcomingFunc(ctx, from, to)
	}
	return 0, nil
}

// MockVolunteerService is a mock implementation of VolunteerService for testing
type MockVolunteerService struct {
	FindMatchesFunc        func(ctx context.Context, activityID string, limit int) ([]*dto.VolunteerMatch, error)
	CreateAssignmentFunc   func(ctx context.Context, activityID, volunteerID string, role domain.AssignmentRole) (*dto.AssignmentResponse, error)
	RespondAssignmentFunc  func(ctx context.Context, assignmentID string, actor domain.Actor, accept bool) (*dto.AssignmentResponse, error)
	CheckInAssignmentFunc  func(ctx context.Context, assignmentID string, actor domain.Actor) (*dto.AssignmentResponse, error)
	CheckOutAssignmentFunc func(ctx context.Context, assignmentID string, actor domain.Actor, feedback string) (*dto.AssignmentResponse, error)
	CompleteAssignmentFunc func(ctx context.Context, assignmentID string, staffRating int, hours *float64) (*dto.VolunteerResponse, error)
}

func (m *MockVolunteerService) FindMatches(ctx context.Context, activityID string, limit int) ([]*dto.VolunteerMatch, error) {
	if m.FindMatchesFunc != nil {
		return m.FindMatchesFunc(ctx, activityID, limit)
	}
	return nil, nil
}

func (m *MockVolunteerService) CreateAssignment(ctx context.Context, activityID, volunteerID string, role domain.AssignmentRole) (*dto.AssignmentResponse, error) {
	if m.CreateAssignmentFunc != nil {
		return m.CreateAssignmentFunc(ctx, activityID, volunteerID, role)
	}
	return nil, nil
}

func (m *MockVolunteerService) RespondAssignment(ctx context.Context, assignmentID string, actor domain.Actor, accept bool) (*dto.AssignmentResponse, error) {
	if m.RespondAssignmentFunc != nil {
		return m.RespondAssignmentFunc(ctx, assignmentID, actor, accept)
	}
	return nil, nil
}

func (m *MockVolunteerService) CheckInAssignment(ctx context.Context, assignmentID string, actor domain.Actor) (*dto.AssignmentResponse, error) {
	if m.CheckInAssignmentFunc != nil {
		return m.CheckInAssignmentFunc(ctx, assignmentID, actor)
	}
	return nil, nil
}

func (m *MockVolunteerService) CheckOutAssignment(ctx context.Context, assignmentID string, actor domain.Actor, feedback string) (*dto.AssignmentResponse, error) {
	if m.CheckOutAssignmentFunc != nil {
		return m.CheckOutAssignmentFunc(ctx, assignmentID, actor, feedback)
	}
	return nil, nil
}

func (m *MockVolunteerService) CompleteAssignment(ctx context.Context, assignmentID string, staffRating int, hours *float64) (*dto.VolunteerResponse, error) {
	if m.CompleteAssignmentFunc != nil {
		return m.CompleteAssignmentFunc(ctx, assignmentID, staffRating, hours)
	}
	return nil, nil
}

// identityMiddleware mimics the auth middleware by injecting the caller
// identity directly into the gin context.
func identityMiddleware(userID, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID != "" {
			c.Set(middleware.ContextKeyUserID, userID)
			c.Set(middleware.ContextKeyUserRole, role)
		}
		c.Next()
	}
}

// envelope mirrors the API response envelope for assertions
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func decodeEnvelope(t *testing.T, body []byte) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		t.Fatalf("failed to decode response envelope: %v", err)
	}
	return env
}
