package domain

import (
	"math"
	"time"
)

// Volunteer represents a volunteer profile with matching inputs and rolling
// contribution aggregates. The aggregates are the system of record; they are
// updated incrementally at assignment completion and never recomputed from
// history.
type Volunteer struct {
	ID            string                `json:"id"`
	UserID        string                `json:"user_id"`
	Interests     []string              `json:"interests,omitempty"`
	Availability  map[string][]TimeSlot `json:"availability,omitempty"`
	Rating        float64               `json:"rating"`
	TotalHours    float64               `json:"total_hours"`
	TotalSessions int                   `json:"total_sessions"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
}

// HasInterest checks if the volunteer lists the given tag as an interest
func (v *Volunteer) HasInterest(tag string) bool {
	for _, interest := range v.Interests {
		if interest == tag {
			return true
		}
	}
	return false
}

// AvailableFor checks if the volunteer's availability covers the given
// weekday and time slot. The sentinel "all" covers every slot that day.
// No entry for the weekday means unavailable.
func (v *Volunteer) AvailableFor(weekday string, slot TimeSlot) bool {
	slots, ok := v.Availability[weekday]
	if !ok {
		return false
	}
	for _, s := range slots {
		if s == slot || s == TimeSlotAll {
			return true
		}
	}
	return false
}

// RecordCompletion folds a completed assignment into the rolling aggregates.
// The rating is an incremental weighted average rounded half-up to 1 decimal:
// (old_rating * old_sessions + staff_rating) / (old_sessions + 1).
func (v *Volunteer) RecordCompletion(staffRating int, hours float64, now time.Time) error {
	if staffRating < 1 || staffRating > 5 {
		return ErrInvalidRating
	}
	updated := (v.Rating*float64(v.TotalSessions) + float64(staffRating)) / float64(v.TotalSessions+1)
	v.Rating = math.Round(updated*10) / 10
	v.TotalSessions++
	v.TotalHours += hours
	v.UpdatedAt = now
	return nil
}
