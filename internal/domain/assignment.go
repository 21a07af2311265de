package domain

import "time"

// AssignmentRole represents the role a volunteer is invited to fill
type AssignmentRole string

const (
	RoleFacilitator AssignmentRole = "facilitator"
	RoleAssistant   AssignmentRole = "assistant"
	RoleSetupCrew   AssignmentRole = "setup_crew"
)

// IsValid checks if the role is a valid AssignmentRole
func (r AssignmentRole) IsValid() bool {
	switch r {
	case RoleFacilitator, RoleAssistant, RoleSetupCrew:
		return true
	}
	return false
}

// String returns the string representation of the role
func (r AssignmentRole) String() string {
	return string(r)
}

// AssignmentStatus represents the status of a volunteer assignment
type AssignmentStatus string

const (
	AssignmentStatusInvited   AssignmentStatus = "invited"
	AssignmentStatusConfirmed AssignmentStatus = "confirmed"
	AssignmentStatusDeclined  AssignmentStatus = "declined"
	AssignmentStatusCompleted AssignmentStatus = "completed"
	AssignmentStatusCancelled AssignmentStatus = "cancelled"
)

// IsValid checks if the status is a valid AssignmentStatus
func (s AssignmentStatus) IsValid() bool {
	switch s {
	case AssignmentStatusInvited, AssignmentStatusConfirmed, AssignmentStatusDeclined,
		AssignmentStatusCompleted, AssignmentStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of AssignmentStatus
func (s AssignmentStatus) String() string {
	return string(s)
}

// IsActive reports whether the assignment still occupies a volunteer slot.
func (s AssignmentStatus) IsActive() bool {
	return s == AssignmentStatusInvited || s == AssignmentStatusConfirmed
}

// CanTransitionTo reports whether an assignment may move from this status to
// the target status.
func (s AssignmentStatus) CanTransitionTo(target AssignmentStatus) bool {
	if target == AssignmentStatusCancelled {
		return s.IsActive()
	}
	switch s {
	case AssignmentStatusInvited:
		return target == AssignmentStatusConfirmed || target == AssignmentStatusDeclined
	case AssignmentStatusConfirmed:
		return target == AssignmentStatusCompleted
	default:
		return false
	}
}

// VolunteerAssignment represents a volunteer's assignment to an activity
type VolunteerAssignment struct {
	ID                string           `json:"id"`
	ActivityID        string           `json:"activity_id"`
	VolunteerID       string           `json:"volunteer_id"`
	Role              AssignmentRole   `json:"role"`
	Status            AssignmentStatus `json:"status"`
	CheckInTime       *time.Time       `json:"check_in_time,omitempty"`
	CheckOutTime      *time.Time       `json:"check_out_time,omitempty"`
	HoursContributed  *float64         `json:"hours_contributed,omitempty"`
	StaffRating       *int             `json:"staff_rating,omitempty"`
	VolunteerFeedback string           `json:"volunteer_feedback,omitempty"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

// Respond moves an invited assignment to confirmed or declined
func (a *VolunteerAssignment) Respond(accept bool, now time.Time) error {
	if a.Status != AssignmentStatusInvited {
		if a.Status == AssignmentStatusConfirmed || a.Status == AssignmentStatusDeclined {
			return ErrAlreadyResponded
		}
		return ErrInvalidAssignmentState
	}
	if accept {
		a.Status = AssignmentStatusConfirmed
	} else {
		a.Status = AssignmentStatusDeclined
	}
	a.UpdatedAt = now
	return nil
}

// CheckIn records the volunteer's arrival for a confirmed assignment
func (a *VolunteerAssignment) CheckIn(now time.Time) error {
	if a.Status != AssignmentStatusConfirmed {
		return ErrInvalidAssignmentState
	}
	if a.CheckInTime != nil {
		return ErrAlreadyCheckedIn
	}
	a.CheckInTime = &now
	a.UpdatedAt = now
	return nil
}

// CheckOut records the volunteer's departure and optional feedback
func (a *VolunteerAssignment) CheckOut(feedback string, now time.Time) error {
	if a.Status != AssignmentStatusConfirmed {
		return ErrInvalidAssignmentState
	}
	if a.CheckInTime == nil {
		return ErrNotCheckedIn
	}
	a.CheckOutTime = &now
	a.VolunteerFeedback = feedback
	a.UpdatedAt = now
	return nil
}

// WorkedHours derives hours contributed from check-in/out when both exist;
// the fallback is the activity duration.
func (a *VolunteerAssignment) WorkedHours(activity *Activity) float64 {
	if a.CheckInTime != nil && a.CheckOutTime != nil && a.CheckOutTime.After(*a.CheckInTime) {
		return a.CheckOutTime.Sub(*a.CheckInTime).Hours()
	}
	return activity.Duration().Hours()
}

// Complete marks a confirmed assignment completed with the staff rating and
// final hours
func (a *VolunteerAssignment) Complete(staffRating int, hours float64, now time.Time) error {
	if a.Status == AssignmentStatusCompleted {
		return ErrAlreadyCompleted
	}
	if !a.Status.CanTransitionTo(AssignmentStatusCompleted) {
		return ErrInvalidAssignmentState
	}
	if staffRating < 1 || staffRating > 5 {
		return ErrInvalidRating
	}
	a.Status = AssignmentStatusCompleted
	a.StaffRating = &staffRating
	a.HoursContributed = &hours
	a.UpdatedAt = now
	return nil
}
