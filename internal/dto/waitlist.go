package dto

import (
	"time"

	"github.com/careconnect/booking-service/internal/domain"
)

// AcceptOfferResponse represents response after accepting a waitlist offer
type AcceptOfferResponse struct {
	BookingID  string `json:"booking_id"`
	WaitlistID string `json:"waitlist_id"`
	Status     string `json:"status"`
}

// DeclineOfferResponse represents response after declining a waitlist offer
type DeclineOfferResponse struct {
	WaitlistID string `json:"waitlist_id"`
	Status     string `json:"status"`
}

// WaitlistEntryResponse represents a waitlist entry in API responses.
// Rank is the live place in line among currently-waiting entries;
// Position is the frozen creation-order token.
type WaitlistEntryResponse struct {
	ID            string     `json:"id"`
	ActivityID    string     `json:"activity_id"`
	ParticipantID string     `json:"participant_id"`
	Position      int        `json:"position"`
	Rank          int        `json:"rank,omitempty"`
	Status        string     `json:"status"`
	NotifiedAt    *time.Time `json:"notified_at,omitempty"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// WaitlistEntryFromDomain converts a domain WaitlistEntry to WaitlistEntryResponse
func WaitlistEntryFromDomain(e *domain.WaitlistEntry) *WaitlistEntryResponse {
	return &WaitlistEntryResponse{
		ID:            e.ID,
		ActivityID:    e.ActivityID,
		ParticipantID: e.ParticipantID,
		Position:      e.Position,
		Status:        e.Status.String(),
		NotifiedAt:    e.NotifiedAt,
		ExpiresAt:     e.ExpiresAt,
		CreatedAt:     e.CreatedAt,
	}
}
