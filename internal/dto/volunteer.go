package dto

import (
	"time"

	"github.com/careconnect/booking-service/internal/domain"
)

// ScoreBreakdown itemizes the weighted components of a match score
type ScoreBreakdown struct {
	Interest     float64 `json:"interest"`
	Rating       float64 `json:"rating"`
	Experience   float64 `json:"experience"`
	Availability float64 `json:"availability"`
}

// VolunteerMatch represents one ranked candidate for an activity
type VolunteerMatch struct {
	VolunteerID string         `json:"volunteer_id"`
	Score       float64        `json:"score"`
	Breakdown   ScoreBreakdown `json:"breakdown"`
}

// CreateAssignmentRequest represents request to invite a volunteer
type CreateAssignmentRequest struct {
	ActivityID  string `json:"activity_id" binding:"required"`
	VolunteerID string `json:"volunteer_id" binding:"required"`
	Role        string `json:"role" binding:"required,oneof=facilitator assistant setup_crew"`
}

// RespondAssignmentRequest represents an invited volunteer's response
type RespondAssignmentRequest struct {
	Response string `json:"response" binding:"required,oneof=accept decline"`
}

// CheckOutAssignmentRequest represents a volunteer checking out of a shift
type CheckOutAssignmentRequest struct {
	Feedback string `json:"feedback,omitempty"`
}

// CompleteAssignmentRequest represents staff closing out an assignment
type CompleteAssignmentRequest struct {
	StaffRating int      `json:"staff_rating" binding:"required,min=1,max=5"`
	Hours       *float64 `json:"hours,omitempty"`
}

// AssignmentResponse represents an assignment in API responses
type AssignmentResponse struct {
	ID                string     `json:"id"`
	ActivityID        string     `json:"activity_id"`
	VolunteerID       string     `json:"volunteer_id"`
	Role              string     `json:"role"`
	Status            string     `json:"status"`
	CheckInTime       *time.Time `json:"check_in_time,omitempty"`
	CheckOutTime      *time.Time `json:"check_out_time,omitempty"`
	HoursContributed  *float64   `json:"hours_contributed,omitempty"`
	StaffRating       *int       `json:"staff_rating,omitempty"`
	VolunteerFeedback string     `json:"volunteer_feedback,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

// VolunteerResponse represents a volunteer profile in API responses
type VolunteerResponse struct {
	ID            string                       `json:"id"`
	Interests     []string                     `json:"interests,omitempty"`
	Availability  map[string][]domain.TimeSlot `json:"availability,omitempty"`
	Rating        float64                      `json:"rating"`
	TotalHours    float64                      `json:"total_hours"`
	TotalSessions int                          `json:"total_sessions"`
}

// AssignmentFromDomain converts a domain VolunteerAssignment to AssignmentResponse
func AssignmentFromDomain(a *domain.VolunteerAssignment) *AssignmentResponse {
	return &AssignmentResponse{
		ID:                a.ID,
		ActivityID:        a.ActivityID,
		VolunteerID:       a.VolunteerID,
		Role:              a.Role.String(),
		Status:            a.Status.String(),
		CheckInTime:       a.CheckInTime,
		CheckOutTime:      a.CheckOutTime,
		HoursContributed:  a.HoursContributed,
		StaffRating:       a.StaffRating,
		VolunteerFeedback: a.VolunteerFeedback,
		CreatedAt:         a.CreatedAt,
	}
}

// VolunteerFromDomain converts a domain Volunteer to VolunteerResponse
func VolunteerFromDomain(v *domain.Volunteer) *VolunteerResponse {
	return &VolunteerResponse{
		ID:            v.ID,
		Interests:     v.Interests,
		Availability:  v.Availability,
		Rating:        v.Rating,
		TotalHours:    v.TotalHours,
		TotalSessions: v.TotalSessions,
	}
}
