package domain

import "time"

// Invitation lifecycle statuses.
const (
	InvitationStatusSent    = "sent"
	InvitationStatusUsed    = "used"
	InvitationStatusExpired = "expired"
	InvitationStatusRevoked = "revoked"
)

// Invitation is a single-use credential letting a coachee set an initial
// password. At most one row exists per (coach, coachee) pair; reissuing
// overwrites the row, so the newest token always supersedes the previous one.
type Invitation struct {
	ID        string
	CoachID   string
	CoacheeID string
	Email     string
	TokenHash string
	Status    string
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Expired reports whether the invitation's expiry has passed at now.
func (i Invitation) Expired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}

// Consumed reports whether the invitation has already been used.
func (i Invitation) Consumed() bool {
	return i.UsedAt != nil
}
