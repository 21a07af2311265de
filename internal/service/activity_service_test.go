package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/careconnect/booking-service/internal/domain"
	"github.com/careconnect/booking-service/internal/dto"
)

func newActivityServiceForTest(
	ar *MockActivityRepository,
	br *MockBookingRepository,
	wr *MockWaitlistRepository,
	sr *MockAssignmentRepository,
	notifier Notifier,
) ActivityService {
	waitlist := NewWaitlistService(wr, br, ar, notifier)
	return NewActivityService(ar, br, wr, sr, waitlist, notifier)
}

func TestActivityService_CreateActivity(t *testing.T) {
	start := time.Now().Add(48 * time.Hour)

	tests := []struct {
		name       string
		req        *dto.CreateActivityRequest
		setupMocks func(*MockActivityRepository)
		wantErr    error
	}{
		{
			name: "successful creation",
			req: &dto.CreateActivityRequest{
				Title:        "Morning Yoga",
				ActivityType: "yoga",
				StartTime:    start,
				EndTime:      start.Add(time.Hour),
				Capacity:     15,
				Room:         "studio-2",
			},
		},
		{
			name: "start not before end",
			req: &dto.CreateActivityRequest{
				Title:        "Morning Yoga",
				ActivityType: "yoga",
				StartTime:    start,
				EndTime:      start,
				Capacity:     15,
			},
			wantErr: domain.ErrInvalidTimeWindow,
		},
		{
			name: "room occupied",
			req: &dto.CreateActivityRequest{
				Title:        "Morning Yoga",
				ActivityType: "yoga",
				StartTime:    start,
				EndTime:      start.Add(time.Hour),
				Capacity:     15,
				Room:         "studio-2",
			},
			setupMocks: func(ar *MockActivityRepository) {
				ar.ListRoomOverlapsFunc = func(ctx context.Context, room, excludeID string, s, e time.Time) ([]*domain.Activity, error) {
					return []*domain.Activity{{ID: "act-prior", Room: room}}, nil
				}
			},
			wantErr: domain.ErrRoomOccupied,
		},
		{
			name: "no room skips the overlap check",
			req: &dto.CreateActivityRequest{
				Title:        "Park Walk",
				ActivityType: "outdoor",
				StartTime:    start,
				EndTime:      start.Add(time.Hour),
				Capacity:     15,
			},
			setupMocks: func(ar *MockActivityRepository) {
				ar.ListRoomOverlapsFunc = func(ctx context.Context, room, excludeID string, s, e time.Time) ([]*domain.Activity, error) {
					t.Error("ListRoomOverlaps should not be called without a room")
					return nil, nil
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			activityRepo := &MockActivityRepository{}
			if tt.setupMocks != nil {
				tt.setupMocks(activityRepo)
			}

			svc := newActivityServiceForTest(activityRepo, &MockBookingRepository{}, &MockWaitlistRepository{}, &MockAssignmentRepository{}, nil)
			resp, err := svc.CreateActivity(context.Background(), tt.req)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("CreateActivity() error = %v, wantErr %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Errorf("CreateActivity() unexpected error = %v", err)
				return
			}
			if resp.ID == "" {
				t.Error("CreateActivity() expected generated ID")
			}
			if resp.Title != tt.req.Title {
				t.Errorf("CreateActivity() title = %s, want %s", resp.Title, tt.req.Title)
			}
		})
	}
}

func TestActivityService_CancelActivity_Cascade(t *testing.T) {
	start := time.Now().Add(24 * time.Hour)
	activity := &domain.Activity{
		ID:        "act-1",
		Title:     "Morning Yoga",
		StartTime: start,
		EndTime:   start.Add(time.Hour),
		Capacity:  10,
	}

	cancelledBookings := 0
	cancelledWaitlist := map[string]bool{}
	cancelledAssignments := map[string]bool{}

	activityRepo := &MockActivityRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*domain.Activity, error) {
			return activity, nil
		},
	}
	bookingRepo := &MockBookingRepository{
		ListConfirmedByActivityFunc: func(ctx context.Context, activityID string) ([]*domain.Booking, error) {
			return []*domain.Booking{
				{ID: "book-1", ActivityID: activityID, ParticipantID: "part-001", Status: domain.BookingStatusConfirmed},
				{ID: "book-2", ActivityID: activityID, ParticipantID: "part-002", Status: domain.BookingStatusConfirmed},
			}, nil
		},
		UpdateFunc: func(ctx context.Context, booking *domain.Booking) error {
			if booking.Status != domain.BookingStatusCancelled {
				t.Errorf("cascaded booking %s status = %s, want cancelled", booking.ID, booking.Status)
			}
			cancelledBookings++
			return nil
		},
	}
	waitlistRepo := &MockWaitlistRepository{
		ListActiveByActivityFunc: func(ctx context.Context, activityID string) ([]*domain.WaitlistEntry, error) {
			return []*domain.WaitlistEntry{
				{ID: "wl-1", ActivityID: activityID, ParticipantID: "part-003", Status: domain.WaitlistStatusWaiting},
				notifiedEntry("wl-2", activityID, "part-004", time.Hour),
			}, nil
		},
		MarkCancelledFunc: func(ctx context.Context, id string, now time.Time) (bool, error) {
			cancelledWaitlist[id] = true
			return true, nil
		},
	}
	assignmentRepo := &MockAssignmentRepository{
		ListActiveByActivityFunc: func(ctx context.Context, activityID string) ([]*domain.VolunteerAssignment, error) {
			return []*domain.VolunteerAssignment{
				{ID: "as-1", ActivityID: activityID, VolunteerID: "vol-1", Status: domain.AssignmentStatusConfirmed},
			}, nil
		},
		UpdateStatusIfFunc: func(ctx context.Context, id string, from, to domain.AssignmentStatus, now time.Time) (bool, error) {
			if to != domain.AssignmentStatusCancelled {
				t.Errorf("cascaded assignment %s target status = %s, want cancelled", id, to)
			}
			cancelledAssignments[id] = true
			return true, nil
		},
	}
	notifier := &RecordingNotifier{}

	svc := newActivityServiceForTest(activityRepo, bookingRepo, waitlistRepo, assignmentRepo, notifier)
	resp, err := svc.CancelActivity(context.Background(), "act-1", "facilitator unavailable")
	if err != nil {
		t.Fatalf("CancelActivity() unexpected error = %v", err)
	}

	if !resp.IsCancelled {
		t.Error("CancelActivity() response should be cancelled")
	}
	if cancelledBookings != 2 {
		t.Errorf("cascaded bookings = %d, want 2", cancelledBookings)
	}
	if !cancelledWaitlist["wl-1"] || !cancelledWaitlist["wl-2"] {
		t.Errorf("cascaded waitlist entries = %v, want wl-1 and wl-2", cancelledWaitlist)
	}
	if !cancelledAssignments["as-1"] {
		t.Errorf("cascaded assignments = %v, want as-1", cancelledAssignments)
	}
	// Two participants, two waitlisted, one volunteer
	if got := notifier.Sent(domain.NotificationActivityCancelled); got != 5 {
		t.Errorf("cancellation notifications = %d, want 5", got)
	}
}

func TestActivityService_CancelActivity_AlreadyCancelled(t *testing.T) {
	activityRepo := &MockActivityRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*domain.Activity, error) {
			return &domain.Activity{ID: id, IsCancelled: true}, nil
		},
		MarkCancelledFunc: func(ctx context.Context, id, reason string, now time.Time) (bool, error) {
			return false, nil
		},
	}

	svc := newActivityServiceForTest(activityRepo, &MockBookingRepository{}, &MockWaitlistRepository{}, &MockAssignmentRepository{}, nil)
	_, err := svc.CancelActivity(context.Background(), "act-1", "duplicate")
	if !errors.Is(err, domain.ErrActivityCancelled) {
		t.Errorf("CancelActivity() error = %v, want ErrActivityCancelled", err)
	}
}

func TestActivityService_UpdateCapacity(t *testing.T) {
	t.Run("each added seat promotes one entry", func(t *testing.T) {
		queue := []*domain.WaitlistEntry{
			{ID: "wl-1", ActivityID: "act-1", ParticipantID: "part-001", Position: 1, Status: domain.WaitlistStatusWaiting},
			{ID: "wl-2", ActivityID: "act-1", ParticipantID: "part-002", Position: 2, Status: domain.WaitlistStatusWaiting},
			{ID: "wl-3", ActivityID: "act-1", ParticipantID: "part-003", Position: 3, Status: domain.WaitlistStatusWaiting},
		}
		promoted := 0

		activityRepo := &MockActivityRepository{
			GetByIDFunc: func(ctx context.Context, id string) (*domain.Activity, error) {
				return &domain.Activity{ID: id, Capacity: 10, CurrentBookings: 10}, nil
			},
		}
		waitlistRepo := &MockWaitlistRepository{
			NextWaitingFunc: func(ctx context.Context, activityID string) (*domain.WaitlistEntry, error) {
				if promoted >= len(queue) {
					return nil, domain.ErrWaitlistNotFound
				}
				return queue[promoted], nil
			},
			MarkNotifiedFunc: func(ctx context.Context, id string, notifiedAt, expiresAt time.Time) (bool, error) {
				promoted++
				return true, nil
			},
		}

		svc := newActivityServiceForTest(activityRepo, &MockBookingRepository{}, waitlistRepo, &MockAssignmentRepository{}, nil)
		resp, err := svc.UpdateCapacity(context.Background(), "act-1", 12)
		if err != nil {
			t.Fatalf("UpdateCapacity() unexpected error = %v", err)
		}
		if resp.Capacity != 12 {
			t.Errorf("UpdateCapacity() capacity = %d, want 12", resp.Capacity)
		}
		if promoted != 2 {
			t.Errorf("promotions = %d, want 2 for 2 added seats", promoted)
		}
	})

	t.Run("capacity below current bookings", func(t *testing.T) {
		activityRepo := &MockActivityRepository{
			GetByIDFunc: func(ctx context.Context, id string) (*domain.Activity, error) {
				return &domain.Activity{ID: id, Capacity: 10, CurrentBookings: 8}, nil
			},
		}

		svc := newActivityServiceForTest(activityRepo, &MockBookingRepository{}, &MockWaitlistRepository{}, &MockAssignmentRepository{}, nil)
		_, err := svc.UpdateCapacity(context.Background(), "act-1", 5)
		if !errors.Is(err, domain.ErrInvalidCapacity) {
			t.Errorf("UpdateCapacity() error = %v, want ErrInvalidCapacity", err)
		}
	})

	t.Run("cancelled activity", func(t *testing.T) {
		activityRepo := &MockActivityRepository{
			GetByIDFunc: func(ctx context.Context, id string) (*domain.Activity, error) {
				return &domain.Activity{ID: id, Capacity: 10, IsCancelled: true}, nil
			},
		}

		svc := newActivityServiceForTest(activityRepo, &MockBookingRepository{}, &MockWaitlistRepository{}, &MockAssignmentRepository{}, nil)
		_, err := svc.UpdateCapacity(context.Background(), "act-1", 12)
		if !errors.Is(err, domain.ErrActivityCancelled) {
			t.Errorf("UpdateCapacity() error = %v, want ErrActivityCancelled", err)
		}
	})
}

func TestActivityService_RemindUpcoming(t *testing.T) {
	start := time.Now().Add(12 * time.Hour)

	activityRepo := &MockActivityRepository{
		ListStartingBetweenFunc: func(ctx context.Context, from, to time.Time) ([]*domain.Activity, error) {
			return []*domain.Activity{
				{ID: "act-1", StartTime: start, EndTime: start.Add(time.Hour), Capacity: 10},
			}, nil
		},
	}
	bookingRepo := &MockBookingRepository{
		ListConfirmedByActivityFunc: func(ctx context.Context, activityID string) ([]*domain.Booking, error) {
			return []*domain.Booking{
				{ID: "book-1", ActivityID: activityID, ParticipantID: "part-001", Status: domain.BookingStatusConfirmed},
				{ID: "book-2", ActivityID: activityID, ParticipantID: "part-002", Status: domain.BookingStatusConfirmed},
			}, nil
		},
	}
	assignmentRepo := &MockAssignmentRepository{
		ListActiveByActivityFunc: func(ctx context.Context, activityID string) ([]*domain.VolunteerAssignment, error) {
			return []*domain.VolunteerAssignment{
				{ID: "as-1", ActivityID: activityID, VolunteerID: "vol-1", Status: domain.AssignmentStatusConfirmed},
				// Invited but unconfirmed volunteers are not reminded
				{ID: "as-2", ActivityID: activityID, VolunteerID: "vol-2", Status: domain.AssignmentStatusInvited},
			}, nil
		},
	}
	notifier := &RecordingNotifier{}

	svc := newActivityServiceForTest(activityRepo, bookingRepo, &MockWaitlistRepository{}, assignmentRepo, notifier)
	sent, err := svc.RemindUpcoming(context.Background(), time.Now(), time.Now().Add(24*time.Hour))
	if err != nil {
		t.Fatalf("RemindUpcoming() unexpected error = %v", err)
	}
	if sent != 3 {
		t.Errorf("RemindUpcoming() sent = %d, want 3", sent)
	}
	if notifier.Sent(domain.NotificationActivityReminder) != 2 {
		t.Errorf("participant reminders = %d, want 2", notifier.Sent(domain.NotificationActivityReminder))
	}
	if notifier.Sent(domain.NotificationAssignmentReminder) != 1 {
		t.Errorf("volunteer reminders = %d, want 1", notifier.Sent(domain.NotificationAssignmentReminder))
	}
}
