package domain

import "time"

// NotificationType identifies the kind of notification event published for
// downstream delivery. Delivery itself is outside the core; publishing is
// fire-and-forget.
type NotificationType string

const (
	NotificationBookingConfirmed   NotificationType = "booking.confirmed"
	NotificationBookingCancelled   NotificationType = "booking.cancelled"
	NotificationWaitlistOffer      NotificationType = "waitlist.offer"
	NotificationOfferExpired       NotificationType = "waitlist.offer_expired"
	NotificationActivityCancelled  NotificationType = "activity.cancelled"
	NotificationActivityReminder   NotificationType = "activity.reminder"
	NotificationAssignmentInvited  NotificationType = "assignment.invited"
	NotificationAssignmentReminder NotificationType = "assignment.reminder"
)

// Notification is the event envelope published to the notification topic
type Notification struct {
	ID          string           `json:"id"`
	Type        NotificationType `json:"type"`
	RecipientID string           `json:"recipient_id"`
	ActivityID  string           `json:"activity_id,omitempty"`
	Subject     string           `json:"subject,omitempty"`
	Body        string           `json:"body,omitempty"`
	OccurredAt  time.Time        `json:"occurred_at"`
}
