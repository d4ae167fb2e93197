package domain

import "time"

// Action kinds: enablers and blockers.
const (
	ActionKindHabilitante   = "habilitante"
	ActionKindInhabilitante = "inhabilitante"
)

// Action is an enabling or blocking factor linked to a goal.
type Action struct {
	ID          string
	GoalID      string
	Kind        string
	Description string
	Done        bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ValidActionKind reports whether k is a recognised action kind.
func ValidActionKind(k string) bool {
	return k == ActionKindHabilitante || k == ActionKindInhabilitante
}
