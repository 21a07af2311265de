package domain

import (
	"testing"
	"time"
)

func TestAssignmentStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		name string
		from AssignmentStatus
		to   AssignmentStatus
		want bool
	}{
		{"invited to confirmed", AssignmentStatusInvited, AssignmentStatusConfirmed, true},
		{"invited to declined", AssignmentStatusInvited, AssignmentStatusDeclined, true},
		{"invited to completed", AssignmentStatusInvited, AssignmentStatusCompleted, false},
		{"confirmed to completed", AssignmentStatusConfirmed, AssignmentStatusCompleted, true},
		{"confirmed to declined", AssignmentStatusConfirmed, AssignmentStatusDeclined, false},
		{"invited to cancelled", AssignmentStatusInvited, AssignmentStatusCancelled, true},
		{"confirmed to cancelled", AssignmentStatusConfirmed, AssignmentStatusCancelled, true},
		{"declined is terminal", AssignmentStatusDeclined, AssignmentStatusCancelled, false},
		{"completed is terminal", AssignmentStatusCompleted, AssignmentStatusCancelled, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
				t.Errorf("%s -> %s = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestVolunteerAssignment_Respond(t *testing.T) {
	now := time.Now()

	t.Run("accept", func(t *testing.T) {
		a := &VolunteerAssignment{Status: AssignmentStatusInvited}
		if err := a.Respond(true, now); err != nil {
			t.Fatalf("Respond() error = %v", err)
		}
		if a.Status != AssignmentStatusConfirmed {
			t.Errorf("status = %v, want confirmed", a.Status)
		}
	})

	t.Run("decline", func(t *testing.T) {
		a := &VolunteerAssignment{Status: AssignmentStatusInvited}
		if err := a.Respond(false, now); err != nil {
			t.Fatalf("Respond() error = %v", err)
		}
		if a.Status != AssignmentStatusDeclined {
			t.Errorf("status = %v, want declined", a.Status)
		}
	})

	t.Run("already responded", func(t *testing.T) {
		a := &VolunteerAssignment{Status: AssignmentStatusConfirmed}
		if err := a.Respond(true, now); err != ErrAlreadyResponded {
			t.Errorf("Respond() = %v, want %v", err, ErrAlreadyResponded)
		}
	})
}

func TestVolunteerAssignment_WorkedHours(t *testing.T) {
	start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	activity := testActivity(start, start.Add(2*time.Hour))

	t.Run("from check-in and check-out", func(t *testing.T) {
		in := start.Add(5 * time.Minute)
		out := in.Add(90 * time.Minute)
		a := &VolunteerAssignment{CheckInTime: &in, CheckOutTime: &out}
		if got := a.WorkedHours(activity); got != 1.5 {
			t.Errorf("WorkedHours() = %v, want 1.5", got)
		}
	})

	t.Run("falls back to activity duration", func(t *testing.T) {
		a := &VolunteerAssignment{}
		if got := a.WorkedHours(activity); got != 2.0 {
			t.Errorf("WorkedHours() = %v, want 2.0", got)
		}
	})
}

func TestVolunteerAssignment_Complete(t *testing.T) {
	now := time.Now()

	t.Run("confirmed assignment", func(t *testing.T) {
		a := &VolunteerAssignment{Status: AssignmentStatusConfirmed}
		if err := a.Complete(5, 2.0, now); err != nil {
			t.Fatalf("Complete() error = %v", err)
		}
		if a.Status != AssignmentStatusCompleted {
			t.Errorf("status = %v, want completed", a.Status)
		}
		if a.StaffRating == nil || *a.StaffRating != 5 {
			t.Errorf("StaffRating = %v, want 5", a.StaffRating)
		}
		if a.HoursContributed == nil || *a.HoursContributed != 2.0 {
			t.Errorf("HoursContributed = %v, want 2.0", a.HoursContributed)
		}
	})

	t.Run("already completed", func(t *testing.T) {
		a := &VolunteerAssignment{Status: AssignmentStatusCompleted}
		if err := a.Complete(5, 2.0, now); err != ErrAlreadyCompleted {
			t.Errorf("Complete() = %v, want %v", err, ErrAlreadyCompleted)
		}
	})

	t.Run("invited cannot complete", func(t *testing.T) {
		a := &VolunteerAssignment{Status: AssignmentStatusInvited}
		if err := a.Complete(5, 2.0, now); err != ErrInvalidAssignmentState {
			t.Errorf("Complete() = %v, want %v", err, ErrInvalidAssignmentState)
		}
	})
}
