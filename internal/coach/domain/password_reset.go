package domain

import "time"

// PasswordReset is the self-service variant of Invitation: same single-use
// token shape, scoped to an existing user instead of a coaching pair.
type PasswordReset struct {
	ID        string
	UserID    string
	TokenHash string
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
}

func (p PasswordReset) Expired(now time.Time) bool {
	return now.After(p.ExpiresAt)
}

func (p PasswordReset) Consumed() bool {
	return p.UsedAt != nil
}
