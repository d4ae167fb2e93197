package domain

import "time"

// Goal ("quiero") statuses. A goal in StatusReformulado is closed to action
// list mutations.
const (
	GoalStatusActivo      = "activo"
	GoalStatusReformulado = "reformulado"
	GoalStatusCerrado     = "cerrado"
)

// Goal is a coachee-authored personal intention.
type Goal struct {
	ID        string
	OwnerID   string // coachee user id
	Title     string
	Detail    string
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ActionsLocked reports whether the goal's action list is immutable.
func (g Goal) ActionsLocked() bool {
	return g.Status == GoalStatusReformulado
}

// ValidGoalStatus reports whether s is a recognised goal status.
func ValidGoalStatus(s string) bool {
	switch s {
	case GoalStatusActivo, GoalStatusReformulado, GoalStatusCerrado:
		return true
	}
	return false
}
