package dto

import (
	"time"

	"github.com/careconnect/booking-service/internal/domain"
)

// Booking outcome statuses returned by createBooking
const (
	OutcomeConfirmed  = "confirmed"
	OutcomeWaitlisted = "waitlisted"
)

// CreateBookingRequest represents request to register for an activity.
// ParticipantID is optional; staff may book on behalf of a participant,
// everyone else books for themselves.
type CreateBookingRequest struct {
	ActivityID    string `json:"activity_id" binding:"required"`
	ParticipantID string `json:"participant_id,omitempty"`
}

// CreateBookingResponse represents the admission outcome: a confirmed
// booking, or a waitlist placement when the activity is full.
type CreateBookingResponse struct {
	Status   string           `json:"status"`
	Booking  *BookingResponse `json:"booking,omitempty"`
	Position int              `json:"position,omitempty"`
	Rank     int              `json:"rank,omitempty"`
}

// CancelBookingResponse represents response after cancelling a booking
type CancelBookingResponse struct {
	BookingID        string `json:"booking_id"`
	Status           string `json:"status"`
	WaitlistNotified bool   `json:"waitlist_notified"`
}

// SubmitFeedbackRequest represents post-activity feedback
type SubmitFeedbackRequest struct {
	Rating int    `json:"rating" binding:"required,min=1,max=5"`
	Text   string `json:"text,omitempty"`
}

// BookingResponse represents a booking in API responses
type BookingResponse struct {
	ID             string     `json:"id"`
	ActivityID     string     `json:"activity_id"`
	ParticipantID  string     `json:"participant_id"`
	Status         string     `json:"status"`
	CheckedInAt    *time.Time `json:"checked_in_at,omitempty"`
	FeedbackRating *int       `json:"feedback_rating,omitempty"`
	FeedbackText   string     `json:"feedback_text,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// ConflictCheckResponse represents the result of a schedule conflict check
type ConflictCheckResponse struct {
	HasConflict         bool                `json:"has_conflict"`
	ConflictingActivity *ActivityResponse   `json:"conflicting_activity,omitempty"`
	Alternatives        []*ActivityResponse `json:"alternatives,omitempty"`
}

// BookingFromDomain converts a domain Booking to BookingResponse
func BookingFromDomain(b *domain.Booking) *BookingResponse {
	return &BookingResponse{
		ID:             b.ID,
		ActivityID:     b.ActivityID,
		ParticipantID:  b.ParticipantID,
		Status:         b.Status.String(),
		CheckedInAt:    b.CheckedInAt,
		FeedbackRating: b.FeedbackRating,
		FeedbackText:   b.FeedbackText,
		CreatedAt:      b.CreatedAt,
	}
}
