package dto

import (
	"time"

	"github.com/careconnect/booking-service/internal/domain"
)

// CreateActivityRequest represents request to create an activity
type CreateActivityRequest struct {
	Title         string    `json:"title" binding:"required"`
	Description   string    `json:"description,omitempty"`
	ActivityType  string    `json:"activity_type" binding:"required"`
	Tags          []string  `json:"tags,omitempty"`
	StartTime     time.Time `json:"start_time" binding:"required"`
	EndTime       time.Time `json:"end_time" binding:"required"`
	Capacity      int       `json:"capacity" binding:"required,min=1"`
	MinVolunteers int       `json:"min_volunteers" binding:"min=0"`
	MaxVolunteers int       `json:"max_volunteers" binding:"min=0"`
	Location      string    `json:"location,omitempty"`
	Room          string    `json:"room,omitempty"`
	Requirements  string    `json:"requirements,omitempty"`
}

// CancelActivityRequest represents request to cancel an activity
type CancelActivityRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// UpdateCapacityRequest represents request to change an activity's capacity
type UpdateCapacityRequest struct {
	Capacity int `json:"capacity" binding:"required,min=1"`
}

// ActivityResponse represents an activity in API responses
type ActivityResponse struct {
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
}

// ActivityFromDomain converts a domain Activity to ActivityResponse
func ActivityFromDomain(a *domain.Activity) *ActivityResponse {
	return &ActivityResponse{
		ID:                 a.ID,
		Title:              a.Title,
		Description:        a.Description,
		ActivityType:       a.ActivityType,
		Tags:               a.Tags,
		StartTime:          a.StartTime,
		EndTime:            a.EndTime,
		Capacity:           a.Capacity,
		CurrentBookings:    a.CurrentBookings,
		MinVolunteers:      a.MinVolunteers,
		MaxVolunteers:      a.MaxVolunteers,
		CurrentVolunteers:  a.CurrentVolunteers,
		Location:           a.Location,
		Room:               a.Room,
		Requirements:       a.Requirements,
		IsCancelled:        a.IsCancelled,
		CancellationReason: a.CancellationReason,
	}
}

// ActivitiesFromDomain converts a slice of domain Activities
func ActivitiesFromDomain(activities []*domain.Activity) []*ActivityResponse {
	out := make([]*ActivityResponse, 0, len(activities))
	for _, a := range activities {
		out = append(out, ActivityFromDomain(a))
	}
	return out
}
