package domain

import (
	"testing"
	"time"
)

func TestVolunteer_AvailableFor(t *testing.T) {
	v := &Volunteer{
		Availability: map[string][]TimeSlot{
			"monday":  {TimeSlotMorning, TimeSlotAfternoon},
			"tuesday": {TimeSlotAll},
		},
	}

	tests := []struct {
		name    string
		weekday string
		slot    TimeSlot
		want    bool
	}{
		{"listed slot", "monday", TimeSlotMorning, true},
		{"second listed slot", "monday", TimeSlotAfternoon, true},
		{"unlisted slot", "monday", TimeSlotEvening, false},
		{"all sentinel covers morning", "tuesday", TimeSlotMorning, true},
		{"all sentinel covers evening", "tuesday", TimeSlotEvening, true},
		{"missing weekday", "sunday", TimeSlotMorning, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := v.AvailableFor(tt.weekday, tt.slot); got != tt.want {
				t.Errorf("AvailableFor(%q, %q) = %v, want %v", tt.weekday, tt.slot, got, tt.want)
			}
		})
	}
}

func TestVolunteer_RecordCompletion(t *testing.T) {
	now := time.Now()

	t.Run("rolling average rounds half up", func(t *testing.T) {
		v := &Volunteer{Rating: 4.0, TotalSessions: 3, TotalHours: 12}
		if err := v.RecordCompletion(5, 2.5, now); err != nil {
			t.Fatalf("RecordCompletion() error = %v", err)
		}
		// (4.0*3 + 5) / 4 = 4.25 -> 4.3
		if v.Rating != 4.3 {
			t.Errorf("Rating = %v, want 4.3", v.Rating)
		}
		if v.TotalSessions != 4 {
			t.Errorf("TotalSessions = %d, want 4", v.TotalSessions)
		}
		if v.TotalHours != 14.5 {
			t.Errorf("TotalHours = %v, want 14.5", v.TotalHours)
		}
	})

	t.Run("first session sets rating", func(t *testing.T) {
		v := &Volunteer{}
		if err := v.RecordCompletion(4, 1, now); err != nil {
			t.Fatalf("RecordCompletion() error = %v", err)
		}
		if v.Rating != 4.0 {
			t.Errorf("Rating = %v, want 4.0", v.Rating)
		}
	})

	t.Run("rejects out-of-range rating", func(t *testing.T) {
		v := &Volunteer{}
		if err := v.RecordCompletion(0, 1, now); err != ErrInvalidRating {
			t.Errorf("RecordCompletion(0) = %v, want %v", err, ErrInvalidRating)
		}
		if err := v.RecordCompletion(6, 1, now); err != ErrInvalidRating {
			t.Errorf("RecordCompletion(6) = %v, want %v", err, ErrInvalidRating)
		}
	})
}

func TestVolunteer_HasInterest(t *testing.T) {
	v := &Volunteer{Interests: []string{"exercise", "art"}}
	if !v.HasInterest("art") {
		t.Error("expected interest in art")
	}
	if v.HasInterest("music") {
		t.Error("did not expect interest in music")
	}
}
