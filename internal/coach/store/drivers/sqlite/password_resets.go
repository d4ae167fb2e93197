package sqlite

import (
	"context"
	"time"

	"github.com/quierolab/quiero/internal/coach/domain"
)

type passwordResetsRepo struct {
	db dbtx
}

func (r *passwordResetsRepo) CreatePasswordReset(ctx context.Context, pr domain.PasswordReset) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO password_resets (id, user_id, token_hash, expires_at, used_at, created_at)
		 VALUES (?, ?, ?, ?, NULL, ?)`,
		pr.ID, pr.UserID, pr.TokenHash, pr.ExpiresAt, now())
	return mapConstraint(err)
}

func (r *passwordResetsRepo) GetPasswordResetByTokenHash(ctx context.Context, hash string) (domain.PasswordReset, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, token_hash, expires_at, used_at, created_at
		 FROM password_resets WHERE token_hash = ?`, hash)

	var (
		pr     domain.PasswordReset
		usedAt = mapOptionalTime(nil)
	)
	err := row.Scan(&pr.ID, &pr.UserID, &pr.TokenHash, &pr.ExpiresAt, &usedAt, &pr.CreatedAt)
	if err != nil {
		return domain.PasswordReset{}, mapNotFound(err)
	}
	pr.UsedAt = mapNullTimePtr(usedAt)
	return pr, nil
}

// Same guarded single-use update as invitations.
func (r *passwordResetsRepo) MarkPasswordResetUsed(ctx context.Context, resetID string, usedAt time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE password_resets SET used_at = ? WHERE id = ? AND used_at IS NULL`,
		usedAt, resetID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *passwordResetsRepo) DeleteExpiredPasswordResets(ctx context.Context, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM password_resets WHERE expires_at < ?`, at)
	return err
}
