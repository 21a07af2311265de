package domain

import "time"

// OfferWindow is how long a promoted waitlist entry holds its seat offer.
const OfferWindow = 2 * time.Hour

// WaitlistStatus represents the status of a waitlist entry
type WaitlistStatus string

const (
	WaitlistStatusWaiting   WaitlistStatus = "waiting"
	WaitlistStatusNotified  WaitlistStatus = "notified"
	WaitlistStatusAccepted  WaitlistStatus = "accepted"
	WaitlistStatusDeclined  WaitlistStatus = "declined"
	WaitlistStatusExpired   WaitlistStatus = "expired"
	WaitlistStatusCancelled WaitlistStatus = "cancelled"
)

// IsValid checks if the status is a valid WaitlistStatus
func (s WaitlistStatus) IsValid() bool {
	switch s {
	case WaitlistStatusWaiting, WaitlistStatusNotified, WaitlistStatusAccepted,
		WaitlistStatusDeclined, WaitlistStatusExpired, WaitlistStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of WaitlistStatus
func (s WaitlistStatus) String() string {
	return string(s)
}

// IsActive reports whether the entry still occupies a place in the queue.
func (s WaitlistStatus) IsActive() bool {
	return s == WaitlistStatusWaiting || s == WaitlistStatusNotified
}

// CanTransitionTo reports whether a waitlist entry may move from this status
// to the target status. Cancellation is reachable from any active state via
// the activity-cancellation cascade.
func (s WaitlistStatus) CanTransitionTo(target WaitlistStatus) bool {
	if target == WaitlistStatusCancelled {
		return s.IsActive()
	}
	switch s {
	case WaitlistStatusWaiting:
		return target == WaitlistStatusNotified
	case WaitlistStatusNotified:
		return target == WaitlistStatusAccepted ||
			target == WaitlistStatusDeclined ||
			target == WaitlistStatusExpired
	default:
		return false
	}
}

// WaitlistEntry represents a participant's place in an activity's FIFO queue.
// Position is assigned once at creation and never renumbered; it is the FIFO
// ordering token, not the live rank shown to users.
type WaitlistEntry struct {
	ID            string         `json:"id"`
	ActivityID    string         `json:"activity_id"`
	ParticipantID string         `json:"participant_id"`
	Position      int            `json:"position"`
	Status        WaitlistStatus `json:"status"`
	NotifiedAt    *time.Time     `json:"notified_at,omitempty"`
	ExpiresAt     *time.Time     `json:"expires_at,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// HasActiveOffer checks if the entry holds an unexpired offer at the given time
func (e *WaitlistEntry) HasActiveOffer(now time.Time) bool {
	return e.Status == WaitlistStatusNotified && e.ExpiresAt != nil && now.Before(*e.ExpiresAt)
}

// OfferExpired checks if the entry holds an offer whose window has closed
func (e *WaitlistEntry) OfferExpired(now time.Time) bool {
	return e.Status == WaitlistStatusNotified && e.ExpiresAt != nil && !now.Before(*e.ExpiresAt)
}

// Notify promotes a waiting entry to a time-bound offer
func (e *WaitlistEntry) Notify(now time.Time) error {
	if !e.Status.CanTransitionTo(WaitlistStatusNotified) {
		return ErrInvalidWaitlistState
	}
	expires := now.Add(OfferWindow)
	e.Status = WaitlistStatusNotified
	e.NotifiedAt = &now
	e.ExpiresAt = &expires
	e.UpdatedAt = now
	return nil
}

// Accept moves a notified entry to accepted; the caller books the seat
func (e *WaitlistEntry) Accept(now time.Time) error {
	if e.Status != WaitlistStatusNotified {
		return ErrOfferNotActive
	}
	if e.OfferExpired(now) {
		return ErrOfferExpired
	}
	e.Status = WaitlistStatusAccepted
	e.UpdatedAt = now
	return nil
}

// Decline moves a notified entry to declined
func (e *WaitlistEntry) Decline(now time.Time) error {
	if e.Status != WaitlistStatusNotified {
		return ErrOfferNotActive
	}
	e.Status = WaitlistStatusDeclined
	e.UpdatedAt = now
	return nil
}

// Expire marks an overdue offer as expired
func (e *WaitlistEntry) Expire(now time.Time) error {
	if !e.Status.CanTransitionTo(WaitlistStatusExpired) {
		return ErrInvalidWaitlistState
	}
	e.Status = WaitlistStatusExpired
	e.UpdatedAt = now
	return nil
}
