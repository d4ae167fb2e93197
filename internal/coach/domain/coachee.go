package domain

import "time"

// Coachee statuses.
const (
	CoacheeStatusInvited = "invited"
	CoacheeStatusActive  = "active"
)

// Coachee is a coaching relationship between a coach and a coachee user.
// The pair (CoachID, UserID) is unique.
type Coachee struct {
	ID        string
	CoachID   string
	UserID    string
	Email     string
	FullName  string
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}
