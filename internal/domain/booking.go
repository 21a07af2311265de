package domain

import "time"

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusNoShow    BookingStatus = "no_show"
)

// IsValid checks if the status is a valid BookingStatus
func (s BookingStatus) IsValid() bool {
	switch s {
	case BookingStatusConfirmed, BookingStatusCancelled, BookingStatusCompleted, BookingStatusNoShow:
		return true
	}
	return false
}

// String returns the string representation of BookingStatus
func (s BookingStatus) String() string {
	return string(s)
}

// CanTransitionTo reports whether a booking may move from this status to the
// target status. All transition checks go through here so validity is not
// re-derived at call sites.
func (s BookingStatus) CanTransitionTo(target BookingStatus) bool {
	switch s {
	case BookingStatusConfirmed:
		return target == BookingStatusCancelled ||
			target == BookingStatusCompleted ||
			target == BookingStatusNoShow
	case BookingStatusCancelled:
		// Re-registration transitions a cancelled row back to confirmed.
		return target == BookingStatusConfirmed
	default:
		return false
	}
}

// Booking represents a participant's seat in an activity
type Booking struct {
	ID             string        `json:"id"`
	ActivityID     string        `json:"activity_id"`
	ParticipantID  string        `json:"participant_id"`
	Status         BookingStatus `json:"status"`
	CheckedInAt    *time.Time    `json:"checked_in_at,omitempty"`
	FeedbackRating *int          `json:"feedback_rating,omitempty"`
	FeedbackText   string        `json:"feedback_text,omitempty"`
	CancelledAt    *time.Time    `json:"cancelled_at,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// CancellationNotice is how long before the activity start a participant
// may still cancel. Staff cancellations are not bound by it.
const CancellationNotice = 2 * time.Hour

// IsConfirmed checks if the booking is in confirmed status
func (b *Booking) IsConfirmed() bool {
	return b.Status == BookingStatusConfirmed
}

// IsCancelled checks if the booking is in cancelled status
func (b *Booking) IsCancelled() bool {
	return b.Status == BookingStatusCancelled
}

// Cancel marks the booking as cancelled
func (b *Booking) Cancel() error {
	if b.Status == BookingStatusCancelled {
		return ErrAlreadyCancelled
	}
	if !b.Status.CanTransitionTo(BookingStatusCancelled) {
		return ErrInvalidBookingState
	}
	now := time.Now()
	b.Status = BookingStatusCancelled
	b.CancelledAt = &now
	b.UpdatedAt = now
	return nil
}

// CheckIn records the participant's arrival. Valid once, only for a
// confirmed booking, only during the activity window.
func (b *Booking) CheckIn(activity *Activity, now time.Time) error {
	if !b.IsConfirmed() {
		return ErrInvalidBookingState
	}
	if b.CheckedInAt != nil {
		return ErrAlreadyCheckedIn
	}
	if !activity.InProgress(now) {
		return ErrCheckInClosed
	}
	b.CheckedInAt = &now
	b.UpdatedAt = now
	return nil
}

// SubmitFeedback records the participant's rating. Valid once, only after
// the activity end time.
func (b *Booking) SubmitFeedback(activity *Activity, rating int, text string, now time.Time) error {
	if rating < 1 || rating > 5 {
		return ErrInvalidRating
	}
	if b.FeedbackRating != nil {
		return ErrFeedbackExists
	}
	if !activity.HasEnded(now) {
		return ErrFeedbackTooEarly
	}
	b.FeedbackRating = &rating
	b.FeedbackText = text
	b.UpdatedAt = now
	return nil
}
