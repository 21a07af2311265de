package domain

import (
	"strings"
	"time"
)

// TimeSlot buckets an activity start time into the coarse slots volunteers
// declare availability for.
type TimeSlot string

const (
	TimeSlotMorning   TimeSlot = "morning"
	TimeSlotAfternoon TimeSlot = "afternoon"
	TimeSlotEvening   TimeSlot = "evening"

	// TimeSlotAll is the availability sentinel meaning any slot that day.
	TimeSlotAll TimeSlot = "all"
)

// Activity represents a scheduled activity with bounded participant seats
// and a volunteer staffing range.
type Activity struct {
	ID                 string    `json:"id"`
	Title              string    `json:"title"`
	Description        string    `json:"description,omitempty"`
	ActivityType       string    `json:"activity_type"`
	Tags               []string  `json:"tags,omitempty"`
	StartTime          time.Time `json:"start_time"`
	EndTime            time.Time `json:"end_time"`
	Capacity           int       `json:"capacity"`
	CurrentBookings    int       `json:"current_bookings"`
	MinVolunteers      int       `json:"min_volunteers"`
	MaxVolunteers      int       `json:"max_volunteers"`
	CurrentVolunteers  int       `json:"current_volunteers"`
	Location           string    `json:"location,omitempty"`
	Room               string    `json:"room,omitempty"`
	Requirements       string    `json:"requirements,omitempty"`
	IsCancelled        bool      `json:"is_cancelled"`
	CancellationReason string    `json:"cancellation_reason,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// Validate validates all activity fields
func (a *Activity) Validate() error {
	if strings.TrimSpace(a.ID) == "" {
		return ErrInvalidActivityID
	}
	if !a.StartTime.Before(a.EndTime) {
		return ErrInvalidTimeWindow
	}
	if a.Capacity <= 0 {
		return ErrInvalidCapacity
	}
	if a.MinVolunteers < 0 || a.MaxVolunteers < a.MinVolunteers {
		return ErrInvalidCapacity
	}
	return nil
}

// HasStarted checks if the activity has started at the given time
func (a *Activity) HasStarted(now time.Time) bool {
	return !now.Before(a.StartTime)
}

// HasEnded checks if the activity has ended at the given time
func (a *Activity) HasEnded(now time.Time) bool {
	return !now.Before(a.EndTime)
}

// InProgress checks if the given time falls inside the activity window
func (a *Activity) InProgress(now time.Time) bool {
	return a.HasStarted(now) && !a.HasEnded(now)
}

// HasAvailableSeats checks if the activity can admit another participant
func (a *Activity) HasAvailableSeats() bool {
	return a.CurrentBookings < a.Capacity
}

// HasOpenVolunteerSlots checks if the activity can take another volunteer
func (a *Activity) HasOpenVolunteerSlots() bool {
	return a.CurrentVolunteers < a.MaxVolunteers
}

// Overlaps reports whether the activity window strictly overlaps
// [start, end). Touching endpoints do not overlap.
func (a *Activity) Overlaps(start, end time.Time) bool {
	return start.Before(a.EndTime) && end.After(a.StartTime)
}

// Duration returns the length of the activity window
func (a *Activity) Duration() time.Duration {
	return a.EndTime.Sub(a.StartTime)
}

// Weekday returns the lowercase weekday name of the activity start
func (a *Activity) Weekday() string {
	return strings.ToLower(a.StartTime.Weekday().String())
}

// Slot returns the time-of-day bucket of the activity start:
// before 12:00 morning, before 17:00 afternoon, otherwise evening.
func (a *Activity) Slot() TimeSlot {
	hour := a.StartTime.Hour()
	switch {
	case hour < 12:
		return TimeSlotMorning
	case hour < 17:
		return TimeSlotAfternoon
	default:
		return TimeSlotEvening
	}
}

// Cancel marks the activity as terminally cancelled
func (a *Activity) Cancel(reason string) error {
	if a.IsCancelled {
		return ErrActivityCancelled
	}
	a.IsCancelled = true
	a.CancellationReason = reason
	a.UpdatedAt = time.Now()
	return nil
}
