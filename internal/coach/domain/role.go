package domain

import "time"

// Role names recognised by the routing logic. Anything else stored in
// user_roles is ignored when resolving a landing destination.
const (
	RoleAdmin   = "admin"
	RoleCoach   = "coach"
	RoleCoachee = "coachee"
)

// RoleAssignment is a (user, role) pair. A user may hold zero, one or many.
type RoleAssignment struct {
	UserID    string
	Role      string
	CreatedAt time.Time
}

// KnownRole reports whether name is one of the recognised role strings.
func KnownRole(name string) bool {
	switch name {
	case RoleAdmin, RoleCoach, RoleCoachee:
		return true
	}
	return false
}
