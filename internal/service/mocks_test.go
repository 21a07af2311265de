package service

import (
	"context"
	"sync"
	"time"

	"github.com/careconnect/booking-service/internal/domain"
)

// MockActivityRepository is a mock implementation of ActivityRepository
type MockActivityRepository struct {
	CreateFunc                  func(ctx context.Context, activity *domain.Activity) error
	GetByIDFunc                 func(ctx context.Context, id string) (*domain.Activity, error)
	UpdateFunc                  func(ctx context.Context, activity *domain.Activity) error
	ListAlternativesFunc        func(ctx context.Context, activityType, excludeID string, from time.Time, limit int) ([]*domain.Activity, error)
	ListRoomOverlapsFunc        func(ctx context.Context, room, excludeID string, start, end time.Time) ([]*domain.Activity, error)
	ListStartingBetweenFunc     func(ctx context.Context, from, to time.Time) ([]*domain.Activity, error)
	TryReserveSeatFunc          func(ctx context.Context, id string) (bool, error)
	ReleaseSeatFunc             func(ctx context.Context, id string) error
	TryReserveVolunteerSlotFunc func(ctx context.Context, id string) (bool, error)
	ReleaseVolunteerSlotFunc    func(ctx context.Context, id string) error
	MarkCancelledFunc           func(ctx context.Context, id, reason string, now time.Time) (bool, error)
}

func (m *MockActivityRepository) Create(ctx context.Context, activity *domain.Activity) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, activity)
	}
	return nil
}

func (m *MockActivityRepository) GetByID(ctx context.Context, id string) (*domain.Activity, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, domain.ErrActivityNotFound
}

func (m *MockActivityRepository) Update(ctx context.Context, activity *domain.Activity) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, activity)
	}
	return nil
}

func (m *MockActivityRepository) ListAlternatives(ctx context.Context, activityType, excludeID string, from time.Time, limit int) ([]*domain.Activity, error) {
	if m.ListAlternativesFunc != nil {
		return m.ListAlternativesFunc(ctx, activityType, excludeID, from, limit)
	}
	return []*domain.Activity{}, nil
}

func (m *MockActivityRepository) ListRoomOverlaps(ctx context.Context, room, excludeID string, start, end time.Time) ([]*domain.Activity, error) {
	if m.ListRoomOverlapsFunc != nil {
		return m.ListRoomOverlapsFunc(ctx, room, excludeID, start, end)
	}
	return []*domain.Activity{}, nil
}

func (m *MockActivityRepository) ListStartingBetween(ctx context.Context, from, to time.Time) ([]*domain.Activity, error) {
	if m.ListStartingBetweenFunc != nil {
		return m.ListStartingBetweenFunc(ctx, from, to)
	}
	return []*domain.Activity{}, nil
}

func (m *MockActivityRepository) TryReserveSeat(ctx context.Context, id string) (bool, error) {
	if m.TryReserveSeatFunc != nil {
		return m.TryReserveSeatFunc(ctx, id)
	}
	return true, nil
}

func (m *MockActivityRepository) ReleaseSeat(ctx context.Context, id string) error {
	if m.ReleaseSeatFunc != nil {
		return m.ReleaseSeatFunc(ctx, id)
	}
	return nil
}

func (m *MockActivityRepository) TryReserveVolunteerSlot(ctx context.Context, id string) (bool, error) {
	if m.TryReserveVolunteerSlotFunc != nil {
		return m.TryReserveVolunteerSlotFunc(ctx, id)
	}
	return true, nil
}

func (m *MockActivityRepository) ReleaseVolunteerSlot(ctx context.Context, id string) error {
	if m.ReleaseVolunteerSlotFunc != nil {
		return m.ReleaseVolunteerSlotFunc(ctx, id)
	}
	return nil
}

func (m *MockActivityRepository) MarkCancelled(ctx context.Context, id, reason string, now time.Time) (bool, error) {
	if m.MarkCancelledFunc != nil {
		return m.MarkCancelledFunc(ctx, id, reason, now)
	}
	return true, nil
}

// MockBookingRepository is a mock implementation of BookingRepository
type MockBookingRepository struct {
	CreateFunc                      func(ctx context.Context, booking *domain.Booking) error
	GetByIDFunc                     func(ctx context.Context, id string) (*domain.Booking, error)
	GetByActivityAndParticipantFunc func(ctx context.Context, activityID, participantID string) (*domain.Booking, error)
	ListConfirmedByParticipantFunc  func(ctx context.Context, participantID string) ([]*domain.Booking, error)
	ListConfirmedActivitiesFunc     func(ctx context.Context, participantID string) ([]*domain.Activity, error)
	ListConfirmedByActivityFunc     func(ctx context.Context, activityID string) ([]*domain.Booking, error)
	UpdateFunc                      func(ctx context.Context, booking *domain.Booking) error
	ReconfirmFunc                   func(ctx context.Context, id string) (bool, error)
}

func (m *MockBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, booking)
	}
	return nil
}

func (m *MockBookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, domain.ErrBookingNotFound
}

func (m *MockBookingRepository) GetByActivityAndParticipant(ctx context.Context, activityID, participantID string) (*domain.Booking, error) {
	if m.GetByActivityAndParticipantFunc != nil {
		return m.GetByActivityAndParticipantFunc(ctx, activityID, participantID)
	}
	return nil, domain.ErrBookingNotFound
}

func (m *MockBookingRepository) ListConfirmedByParticipant(ctx context.Context, participantID string) ([]*domain.Booking, error) {
	if m.ListConfirmedByParticipantFunc != nil {
		return m.ListConfirmedByParticipantFunc(ctx, participantID)
	}
	return []*domain.Booking{}, nil
}

func (m *MockBookingRepository) ListConfirmedActivities(ctx context.Context, participantID string) ([]*domain.Activity, error) {
	if m.ListConfirmedActivitiesFunc != nil {
		return m.ListConfirmedActivitiesFunc(ctx, participantID)
	}
	return []*domain.Activity{}, nil
}

func (m *MockBookingRepository) ListConfirmedByActivity(ctx context.Context, activityID string) ([]*domain.Booking, error) {
	if m.ListConfirmedByActivityFunc != nil {
		return m.ListConfirmedByActivityFunc(ctx, activityID)
	}
	return []*domain.Booking{}, nil
}

func (m *MockBookingRepository) Update(ctx context.Context, booking *domain.Booking) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, booking)
	}
	return nil
}

func (m *MockBookingRepository) Reconfirm(ctx context.Context, id string) (bool, error) {
	if m.ReconfirmFunc != nil {
		return m.ReconfirmFunc(ctx, id)
	}
	return true, nil
}

// MockWaitlistRepository is a mock implementation of WaitlistRepository
type MockWaitlistRepository struct {
	EnqueueFunc                           func(ctx context.Context, entry *domain.WaitlistEntry) error
	GetByIDFunc                           func(ctx context.Context, id string) (*domain.WaitlistEntry, error)
	GetActiveByActivityAndParticipantFunc func(ctx context.Context, activityID, participantID string) (*domain.WaitlistEntry, error)
	NextWaitingFunc                       func(ctx context.Context, activityID string) (*domain.WaitlistEntry, error)
	MarkNotifiedFunc                      func(ctx context.Context, id string, notifiedAt, expiresAt time.Time) (bool, error)
	MarkAcceptedFunc                      func(ctx context.Context, id string, now time.Time) (bool, error)
	MarkDeclinedFunc                      func(ctx context.Context, id string, now time.Time) (bool, error)
	MarkExpiredFunc                       func(ctx context.Context, id string, now time.Time) (bool, error)
	MarkCancelledFunc                     func(ctx context.Context, id string, now time.Time) (bool, error)
	ListExpiredOffersFunc                 func(ctx context.Context, now time.Time, limit int) ([]*domain.WaitlistEntry, error)
	ListActiveByParticipantFunc           func(ctx context.Context, participantID string) ([]*domain.WaitlistEntry, error)
	ListActiveByActivityFunc              func(ctx context.Context, activityID string) ([]*domain.WaitlistEntry, error)
	CountWaitingAheadFunc                 func(ctx context.Context, activityID string, position int) (int, error)
}

func (m *MockWaitlistRepository) Enqueue(ctx context.Context, entry *domain.WaitlistEntry) error {
	if m.EnqueueFunc != nil {
		return m.EnqueueFunc(ctx, entry)
	}
	entry.Position = 1
	return nil
}

func (m *MockWaitlistRepository) GetByID(ctx context.Context, id string) (*domain.WaitlistEntry, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, domain.ErrWaitlistNotFound
}

func (m *MockWaitlistRepository) GetActiveByActivityAndParticipant(ctx context.Context, activityID, participantID string) (*domain.WaitlistEntry, error) {
	if m.GetActiveByActivityAndParticipantFunc != nil {
		return m.GetActiveByActivityAndParticipantFunc(ctx, activityID, participantID)
	}
	return nil, domain.ErrWaitlistNotFound
}

func (m *MockWaitlistRepository) NextWaiting(ctx context.Context, activityID string) (*domain.WaitlistEntry, error) {
	if m.NextWaitingFunc != nil {
		return m.NextWaitingFunc(ctx, activityID)
	}
	return nil, domain.ErrWaitlistNotFound
}

func (m *MockWaitlistRepository) MarkNotified(ctx context.Context, id string, notifiedAt, expiresAt time.Time) (bool, error) {
	if m.MarkNotifiedFunc != nil {
		return m.MarkNotifiedFunc(ctx, id, notifiedAt, expiresAt)
	}
	return true, nil
}

func (m *MockWaitlistRepository) MarkAccepted(ctx context.Context, id string, now time.Time) (bool, error) {
	if m.MarkAcceptedFunc != nil {
		return m.MarkAcceptedFunc(ctx, id, now)
	}
	return true, nil
}

func (m *MockWaitlistRepository) MarkDeclined(ctx context.Context, id string, now time.Time) (bool, error) {
	if m.MarkDeclinedFunc != nil {
		return m.MarkDeclinedFunc(ctx, id, now)
	}
	return true, nil
}

func (m *MockWaitlistRepository) MarkExpired(ctx context.Context, id string, now time.Time) (bool, error) {
	if m.MarkExpiredFunc != nil {
		return m.MarkExpiredFunc(ctx, id, now)
	}
	return true, nil
}

func (m *MockWaitlistRepository) MarkCancelled(ctx context.Context, id string, now time.Time) (bool, error) {
	if m.MarkCancelledFunc != nil {
		return m.MarkCancelledFunc(ctx, id, now)
	}
	return true, nil
}

func (m *MockWaitlistRepository) ListExpiredOffers(ctx context.Context, now time.Time, limit int) ([]*domain.WaitlistEntry, error) {
	if m.ListExpiredOffersFunc != nil {
		return m.ListExpiredOffersFunc(ctx, now, limit)
	}
	return []*domain.WaitlistEntry{}, nil
}

func (m *MockWaitlistRepository) ListActiveByParticipant(ctx context.Context, participantID string) ([]*domain.WaitlistEntry, error) {
	if m.ListActiveByParticipantFunc != nil {
		return m.ListActiveByParticipantFunc(ctx, participantID)
	}
	return []*domain.WaitlistEntry{}, nil
}

func (m *MockWaitlistRepository) ListActiveByActivity(ctx context.Context, activityID string) ([]*domain.WaitlistEntry, error) {
	if m.ListActiveByActivityFunc != nil {
		return m.ListActiveByActivityFunc(ctx, activityID)
	}
	return []*domain.WaitlistEntry{}, nil
}

func (m *MockWaitlistRepository) CountWaitingAhead(ctx context.Context, activityID string, position int) (int, error) {
	if m.CountWaitingAheadFunc != nil {
		return m.CountWaitingAheadFunc(ctx, activityID, position)
	}
	return 0, nil
}

// MockVolunteerRepository is a mock implementation of VolunteerRepository
type MockVolunteerRepository struct {
	GetByIDFunc func(ctx context.Context, id string) (*domain.Volunteer, error)
	ListAllFunc func(ctx context.Context) ([]*domain.Volunteer, error)
	UpdateFunc  func(ctx context.Context, volunteer *domain.Volunteer) error
}

func (m *MockVolunteerRepository) GetByID(ctx context.Context, id string) (*domain.Volunteer, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, domain.ErrVolunteerNotFound
}

func (m *MockVolunteerRepository) ListAll(ctx context.Context) ([]*domain.Volunteer, error) {
	if m.ListAllFunc != nil {
		return m.ListAllFunc(ctx)
	}
	return []*domain.Volunteer{}, nil
}

func (m *MockVolunteerRepository) Update(ctx context.Context, volunteer *domain.Volunteer) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, volunteer)
	}
	return nil
}

// MockParticipantRepository is a mock implementation of ParticipantRepository
type MockParticipantRepository struct {
	GetByIDFunc func(ctx context.Context, id string) (*domain.Participant, error)
}

func (m *MockParticipantRepository) GetByID(ctx context.Context, id string) (*domain.Participant, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return &domain.Participant{ID: id, UserID: "user-" + id}, nil
}

// MockAssignmentRepository is a mock implementation of AssignmentRepository
type MockAssignmentRepository struct {
	CreateFunc                          func(ctx context.Context, assignment *domain.VolunteerAssignment) error
	GetByIDFunc                         func(ctx context.Context, id string) (*domain.VolunteerAssignment, error)
	GetActiveByActivityAndVolunteerFunc func(ctx context.Context, activityID, volunteerID string) (*domain.VolunteerAssignment, error)
	ListActiveByActivityFunc            func(ctx context.Context, activityID string) ([]*domain.VolunteerAssignment, error)
	ListActiveByVolunteerFunc           func(ctx context.Context, volunteerID string) ([]*domain.VolunteerAssignment, error)
	ListConfirmedOverlappingFunc        func(ctx context.Context, start, end time.Time) ([]string, error)
	UpdateFunc                          func(ctx context.Context, assignment *domain.VolunteerAssignment) error
	UpdateStatusIfFunc                  func(ctx context.Context, id string, from, to domain.AssignmentStatus, now time.Time) (bool, error)
}

func (m *MockAssignmentRepository) Create(ctx context.Context, assignment *domain.VolunteerAssignment) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, assignment)
	}
	return nil
}

func (m *MockAssignmentRepository) GetByID(ctx context.Context, id string) (*domain.VolunteerAssignment, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, domain.ErrAssignmentNotFound
}

func (m *MockAssignmentRepository) GetActiveByActivityAndVolunteer(ctx context.Context, activityID, volunteerID string) (*domain.VolunteerAssignment, error) {
	if m.GetActiveByActivityAndVolunteerFunc != nil {
		return m.GetActiveByActivityAndVolunteerFunc(ctx, activityID, volunteerID)
	}
	return nil, domain.ErrAssignmentNotFound
}

func (m *MockAssignmentRepository) ListActiveByActivity(ctx context.Context, activityID string) ([]*domain.VolunteerAssignment, error) {
	if m.ListActiveByActivityFunc != nil {
		return m.ListActiveByActivityFunc(ctx, activityID)
	}
	return []*domain.VolunteerAssignment{}, nil
}

func (m *MockAssignmentRepository) ListActiveByVolunteer(ctx context.Context, volunteerID string) ([]*domain.VolunteerAssignment, error) {
	if m.ListActiveByVolunteerFunc != nil {
		return m.ListActiveByVolunteerFunc(ctx, volunteerID)
	}
	return []*domain.VolunteerAssignment{}, nil
}

func (m *MockAssignmentRepository) ListConfirmedOverlapping(ctx context.Context, start, end time.Time) ([]string, error) {
	if m.ListConfirmedOverlappingFunc != nil {
		return m.ListConfirmedOverlappingFunc(ctx, start, end)
	}
	return []string{}, nil
}

func (m *MockAssignmentRepository) Update(ctx context.Context, assignment *domain.VolunteerAssignment) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, assignment)
	}
	return nil
}

func (m *MockAssignmentRepository) UpdateStatusIf(ctx context.Context, id string, from, to domain.AssignmentStatus, now time.Time) (bool, error) {
	if m.UpdateStatusIfFunc != nil {
		return m.UpdateStatusIfFunc(ctx, id, from, to, now)
	}
	return true, nil
}

// RecordingNotifier captures published notifications for assertions
type RecordingNotifier struct {
	mu            sync.Mutex
	Notifications []*domain.Notification
}

func (n *RecordingNotifier) Notify(ctx context.Context, notification *domain.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Notifications = append(n.Notifications, notification)
	return nil
}

func (n *RecordingNotifier) Close() error {
	return nil
}

// Sent returns how many notifications of the given type were published
func (n *RecordingNotifier) Sent(t domain.NotificationType) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	count := 0
	for _, notification := range n.Notifications {
		if notification.Type == t {
			count++
		}
	}
	return count
}
