package sqlite

import (
	"context"
	"time"

	"github.com/quierolab/quiero/internal/coach/domain"
	"github.com/quierolab/quiero/internal/coach/store"
)

type invitationsRepo struct {
	db dbtx
}

const invitationColumns = `id, coach_id, coachee_id, email, token_hash, status, expires_at, used_at, created_at, updated_at`

func (r *invitationsRepo) UpsertInvitation(ctx context.Context, inv domain.Invitation) error {
	ts := now()
	// ON CONFLICT keeps the original row id; a refreshed invitation is the
	// same logical row with a new token and a reset lifecycle.
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO coachee_invitations
		     (id, coach_id, coachee_id, email, token_hash, status, expires_at, used_at, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, NULL, ?, ?)
		 ON CONFLICT (coach_id, coachee_id) DO UPDATE SET
		     email      = excluded.email,
		     token_hash = excluded.token_hash,
		     status     = excluded.status,
		     expires_at = excluded.expires_at,
		     used_at    = NULL,
		     updated_at = excluded.updated_at`,
		inv.ID, inv.CoachID, inv.CoacheeID, inv.Email, inv.TokenHash,
		inv.Status, inv.ExpiresAt, ts, ts)
	return mapConstraint(err)
}

func (r *invitationsRepo) GetInvitationByTokenHash(ctx context.Context, hash string) (domain.Invitation, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+invitationColumns+` FROM coachee_invitations WHERE token_hash = ?`, hash)
	return scanInvitation(row)
}

func (r *invitationsRepo) GetInvitationByPair(ctx context.Context, coachID, coacheeID string) (domain.Invitation, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+invitationColumns+` FROM coachee_invitations WHERE coach_id = ? AND coachee_id = ?`,
		coachID, coacheeID)
	return scanInvitation(row)
}

// MarkInvitationUsed is the single concurrency guard in the lifecycle: the
// used_at IS NULL predicate makes consumption first-writer-wins.
func (r *invitationsRepo) MarkInvitationUsed(ctx context.Context, invitationID string, usedAt time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE coachee_invitations
		 SET status = ?, used_at = ?, updated_at = ?
		 WHERE id = ? AND used_at IS NULL`,
		domain.InvitationStatusUsed, usedAt, now(), invitationID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *invitationsRepo) MarkInvitationRevoked(ctx context.Context, invitationID string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE coachee_invitations SET status = ?, updated_at = ? WHERE id = ?`,
		domain.InvitationStatusRevoked, now(), invitationID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *invitationsRepo) ExpireOverdueInvitations(ctx context.Context, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE coachee_invitations
		 SET status = ?, updated_at = ?
		 WHERE status = ? AND expires_at < ?`,
		domain.InvitationStatusExpired, now(), domain.InvitationStatusSent, at)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInvitation(row rowScanner) (domain.Invitation, error) {
	var (
		inv    domain.Invitation
		usedAt = mapOptionalTime(nil)
	)
	err := row.Scan(&inv.ID, &inv.CoachID, &inv.CoacheeID, &inv.Email, &inv.TokenHash,
		&inv.Status, &inv.ExpiresAt, &usedAt, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		return domain.Invitation{}, mapNotFound(err)
	}
	inv.UsedAt = mapNullTimePtr(usedAt)
	return inv, nil
}

var _ store.Invitations = (*invitationsRepo)(nil)
