package domain

import "time"

// ActorRole identifies who is invoking an operation
type ActorRole string

const (
	ActorRoleParticipant ActorRole = "participant"
	ActorRoleVolunteer   ActorRole = "volunteer"
	ActorRoleStaff       ActorRole = "staff"
)

// Actor is the authenticated caller of a core operation
type Actor struct {
	ID   string    `json:"id"`
	Role ActorRole `json:"role"`
}

// IsStaff checks if the actor holds the staff role
func (a Actor) IsStaff() bool {
	return a.Role == ActorRoleStaff
}

// Participant represents a registered participant
type Participant struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
