package domain

import "errors"

// Domain errors
var (
	// Activity errors
	ErrActivityNotFound  = errors.New("activity not found")
	ErrActivityCancelled = errors.New("activity is cancelled")
	ErrActivityNotEnded  = errors.New("activity has not ended yet")
	ErrPastActivity      = errors.New("activity has already started")
	ErrActivityFull      = errors.New("activity has no available seats")
	ErrInvalidTimeWindow = errors.New("activity start must be before end")
	ErrInvalidCapacity   = errors.New("activity capacity must be positive")
	ErrRoomOccupied      = errors.New("room is occupied during the requested window")

	// Booking errors
	ErrBookingNotFound     = errors.New("booking not found")
	ErrAlreadyRegistered   = errors.New("participant already has a confirmed booking")
	ErrAlreadyCancelled    = errors.New("booking is already cancelled")
	ErrBookingConflict     = errors.New("booking conflicts with an existing booking")
	ErrCancellationClosed  = errors.New("cancellation deadline has passed")
	ErrNotCheckedIn        = errors.New("booking has no check-in")
	ErrAlreadyCheckedIn    = errors.New("booking is already checked in")
	ErrCheckInClosed       = errors.New("check-in is only open during the activity window")
	ErrFeedbackExists      = errors.New("feedback has already been submitted")
	ErrFeedbackTooEarly    = errors.New("feedback is only accepted after the activity ends")
	ErrInvalidRating       = errors.New("rating must be between 1 and 5")
	ErrInvalidBookingState = errors.New("operation is not valid for the booking status")

	// Waitlist errors
	ErrWaitlistNotFound     = errors.New("waitlist entry not found")
	ErrOfferNotActive       = errors.New("waitlist entry has no active offer")
	ErrOfferExpired         = errors.New("waitlist offer has expired")
	ErrAlreadyWaitlisted    = errors.New("participant is already on the waitlist")
	ErrInvalidWaitlistState = errors.New("operation is not valid for the waitlist status")

	// Volunteer errors
	ErrVolunteerNotFound      = errors.New("volunteer not found")
	ErrVolunteersFull         = errors.New("activity has no open volunteer slots")
	ErrAssignmentNotFound     = errors.New("assignment not found")
	ErrAssignmentConflict     = errors.New("volunteer already has an active assignment for this activity")
	ErrAlreadyResponded       = errors.New("assignment has already been responded to")
	ErrAlreadyCompleted       = errors.New("assignment is already completed")
	ErrInvalidAssignmentState = errors.New("operation is not valid for the assignment status")

	// Participant errors
	ErrParticipantNotFound = errors.New("participant not found")

	// Authorization errors
	ErrForbidden = errors.New("actor is not allowed to perform this operation")

	// Validation errors
	ErrInvalidActivityID    = errors.New("invalid activity id")
	ErrInvalidParticipantID = errors.New("invalid participant id")
	ErrInvalidVolunteerID   = errors.New("invalid volunteer id")
	ErrInvalidRole          = errors.New("invalid assignment role")
)
