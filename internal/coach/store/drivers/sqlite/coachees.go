package sqlite

import (
	"context"

	"github.com/quierolab/quiero/internal/coach/domain"
)

type coacheesRepo struct {
	db dbtx
}

const coacheeColumns = `id, coach_id, user_id, email, full_name, status, created_at, updated_at`

func (r *coacheesRepo) CreateCoachee(ctx context.Context, c domain.Coachee) error {
	ts := now()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO coachees (id, coach_id, user_id, email, full_name, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.CoachID, c.UserID, c.Email, c.FullName, c.Status, ts, ts)
	return mapConstraint(err)
}

func (r *coacheesRepo) GetCoacheeByID(ctx context.Context, id string) (domain.Coachee, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+coacheeColumns+` FROM coachees WHERE id = ?`, id)

	var c domain.Coachee
	err := row.Scan(&c.ID, &c.CoachID, &c.UserID, &c.Email, &c.FullName, &c.Status, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return domain.Coachee{}, mapNotFound(err)
	}
	return c, nil
}

func (r *coacheesRepo) ListCoacheesForCoach(ctx context.Context, coachID string) ([]domain.Coachee, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+coacheeColumns+` FROM coachees WHERE coach_id = ? ORDER BY created_at DESC, id DESC`,
		coachID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Coachee
	for rows.Next() {
		var c domain.Coachee
		if err := rows.Scan(&c.ID, &c.CoachID, &c.UserID, &c.Email, &c.FullName, &c.Status, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *coacheesRepo) UpdateCoacheeStatus(ctx context.Context, id, status string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE coachees SET status = ?, updated_at = ? WHERE id = ?`,
		status, now(), id)
	if err != nil {
		return err
	}
	return requireRow(res)
}
