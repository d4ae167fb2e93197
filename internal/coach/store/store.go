package store

import (
	"context"
	"errors"
	"time"

	"github.com/quierolab/quiero/internal/coach/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite for now)
// implement this. It exposes sub-repositories to keep concerns tidy and
// testable, and keeps transactions explicit so nobody accidentally nests one.
type Store interface {
	Users() Users
	Roles() Roles
	Coachees() Coachees
	Invitations() Invitations
	PasswordResets() PasswordResets
	RefreshTokens() RefreshTokens
	Goals() Goals
	Actions() Actions
	Settings() Settings

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed. This is the
	// recommended way to handle multi-step writes.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail is used during login, provisioning and reset issuance.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser inserts a new user (id is provided by app via ULID).
	CreateUser(ctx context.Context, u domain.User) error

	// ActivateWithPassword sets the password_hash, flips active=1 and bumps
	// updated_at. Used when an invitation token is consumed.
	ActivateWithPassword(ctx context.Context, userID string, hash string) error

	// UpdatePasswordHash sets the password_hash (argon2) and bumps updated_at.
	UpdatePasswordHash(ctx context.Context, userID string, newHash string) error

	// DeleteUser cascades to roles, tokens and owned rows (per schema).
	DeleteUser(ctx context.Context, userID string) error
}

type Roles interface {
	// ListRolesForUser returns the raw role strings assigned to a user.
	ListRolesForUser(ctx context.Context, userID string) ([]string, error)

	// GrantRole inserts a (user, role) pair; granting twice is a no-op.
	GrantRole(ctx context.Context, userID, role string) error

	// RevokeRole removes a (user, role) pair.
	RevokeRole(ctx context.Context, userID, role string) error
}

type Coachees interface {
	// CreateCoachee inserts a coaching relationship row.
	CreateCoachee(ctx context.Context, c domain.Coachee) error

	// GetCoacheeByID fetches a relationship row.
	GetCoacheeByID(ctx context.Context, id string) (domain.Coachee, error)

	// ListCoacheesForCoach returns a coach's coachees, newest first.
	ListCoacheesForCoach(ctx context.Context, coachID string) ([]domain.Coachee, error)

	// UpdateCoacheeStatus flips the relationship status (invited -> active).
	UpdateCoacheeStatus(ctx context.Context, id, status string) error
}

type Invitations interface {
	// UpsertInvitation inserts the row for (coach, coachee) or, when one
	// already exists, overwrites email/token/expiry and resets status to
	// "sent" with used_at cleared. The newest issuance always supersedes.
	UpsertInvitation(ctx context.Context, inv domain.Invitation) error

	// GetInvitationByTokenHash looks a row up by token fingerprint,
	// regardless of status; lifecycle checks stay in the service.
	GetInvitationByTokenHash(ctx context.Context, hash string) (domain.Invitation, error)

	// GetInvitationByPair fetches the row for a (coach, coachee) pair.
	GetInvitationByPair(ctx context.Context, coachID, coacheeID string) (domain.Invitation, error)

	// MarkInvitationUsed sets status="used" and used_at=now, guarded by
	// used_at still being NULL. Returns ErrNotFound when the guard fails,
	// which is how concurrent double-consumption is detected.
	MarkInvitationUsed(ctx context.Context, invitationID string, usedAt time.Time) error

	// MarkInvitationRevoked is the compensating action after a failed
	// delivery: the token row exists but its link never reached anyone.
	MarkInvitationRevoked(ctx context.Context, invitationID string) error

	// ExpireOverdueInvitations rolls past-expiry "sent" rows to "expired"
	// (housekeeping).
	ExpireOverdueInvitations(ctx context.Context, now time.Time) error
}

type PasswordResets interface {
	// CreatePasswordReset stores a new reset token row.
	CreatePasswordReset(ctx context.Context, pr domain.PasswordReset) error

	// GetPasswordResetByTokenHash looks a row up by token fingerprint.
	GetPasswordResetByTokenHash(ctx context.Context, hash string) (domain.PasswordReset, error)

	// MarkPasswordResetUsed consumes the token, guarded by used_at IS NULL.
	MarkPasswordResetUsed(ctx context.Context, resetID string, usedAt time.Time) error

	// DeleteExpiredPasswordResets is housekeeping.
	DeleteExpiredPasswordResets(ctx context.Context, now time.Time) error
}

type RefreshTokens interface {
	// CreateRefreshToken stores a new refresh token record.
	CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error

	// GetRefreshTokenByHash returns the token by its fingerprint.
	GetRefreshTokenByHash(ctx context.Context, hash string) (domain.RefreshToken, error)

	// RevokeRefreshToken flips revoked=1, sets updated_at.
	RevokeRefreshToken(ctx context.Context, hash string) error

	// RevokeAllUserRefreshTokens bulk revocation for a user (password reset).
	RevokeAllUserRefreshTokens(ctx context.Context, userID string) error

	// DeleteExpiredRefreshTokens is housekeeping.
	DeleteExpiredRefreshTokens(ctx context.Context, now time.Time) error
}

type Goals interface {
	CreateGoal(ctx context.Context, g domain.Goal) error
	GetGoalByID(ctx context.Context, id string) (domain.Goal, error)
	ListGoalsForOwner(ctx context.Context, ownerID string) ([]domain.Goal, error)

	// UpdateGoalContent mutates title/detail and bumps updated_at.
	UpdateGoalContent(ctx context.Context, id, title, detail string) error

	// UpdateGoalStatus transitions the goal status.
	UpdateGoalStatus(ctx context.Context, id, status string) error

	// DeleteGoal cascades to its actions (per schema).
	DeleteGoal(ctx context.Context, id string) error
}

type Actions interface {
	CreateAction(ctx context.Context, a domain.Action) error
	GetActionByID(ctx context.Context, id string) (domain.Action, error)
	ListActionsForGoal(ctx context.Context, goalID string) ([]domain.Action, error)
	UpdateAction(ctx context.Context, id, description string, done bool) error
	DeleteAction(ctx context.Context, id string) error
}

type Settings interface {
	GetSetting(ctx context.Context, key string) (domain.Setting, error)
	ListSettings(ctx context.Context) ([]domain.Setting, error)
	PutSetting(ctx context.Context, key, value string) error
}
