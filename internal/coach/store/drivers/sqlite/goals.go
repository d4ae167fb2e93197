package sqlite

import (
	"context"

	"github.com/quierolab/quiero/internal/coach/domain"
)

type goalsRepo struct {
	db dbtx
}

const goalColumns = `id, owner_id, title, detail, status, created_at, updated_at`

func (r *goalsRepo) CreateGoal(ctx context.Context, g domain.Goal) error {
	ts := now()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO quieros (id, owner_id, title, detail, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		g.ID, g.OwnerID, g.Title, g.Detail, g.Status, ts, ts)
	return mapConstraint(err)
}

func (r *goalsRepo) GetGoalByID(ctx context.Context, id string) (domain.Goal, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+goalColumns+` FROM quieros WHERE id = ?`, id)

	var g domain.Goal
	err := row.Scan(&g.ID, &g.OwnerID, &g.Title, &g.Detail, &g.Status, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return domain.Goal{}, mapNotFound(err)
	}
	return g, nil
}

func (r *goalsRepo) ListGoalsForOwner(ctx context.Context, ownerID string) ([]domain.Goal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+goalColumns+` FROM quieros WHERE owner_id = ? ORDER BY created_at DESC, id DESC`,
		ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Goal
	for rows.Next() {
		var g domain.Goal
		if err := rows.Scan(&g.ID, &g.OwnerID, &g.Title, &g.Detail, &g.Status, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (r *goalsRepo) UpdateGoalContent(ctx context.Context, id, title, detail string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE quieros SET title = ?, detail = ?, updated_at = ? WHERE id = ?`,
		title, detail, now(), id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *goalsRepo) UpdateGoalStatus(ctx context.Context, id, status string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE quieros SET status = ?, updated_at = ? WHERE id = ?`,
		status, now(), id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *goalsRepo) DeleteGoal(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM quieros WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}
