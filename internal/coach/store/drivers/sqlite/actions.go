package sqlite

import (
	"context"

	"github.com/quierolab/quiero/internal/coach/domain"
)

type actionsRepo struct {
	db dbtx
}

const actionColumns = `id, quiero_id, kind, description, done, created_at, updated_at`

func (r *actionsRepo) CreateAction(ctx context.Context, a domain.Action) error {
	ts := now()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO actions (id, quiero_id, kind, description, done, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.GoalID, a.Kind, a.Description, a.Done, ts, ts)
	return mapConstraint(err)
}

func (r *actionsRepo) GetActionByID(ctx context.Context, id string) (domain.Action, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+actionColumns+` FROM actions WHERE id = ?`, id)

	var a domain.Action
	err := row.Scan(&a.ID, &a.GoalID, &a.Kind, &a.Description, &a.Done, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return domain.Action{}, mapNotFound(err)
	}
	return a, nil
}

func (r *actionsRepo) ListActionsForGoal(ctx context.Context, goalID string) ([]domain.Action, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+actionColumns+` FROM actions WHERE quiero_id = ? ORDER BY created_at ASC, id ASC`,
		goalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Action
	for rows.Next() {
		var a domain.Action
		if err := rows.Scan(&a.ID, &a.GoalID, &a.Kind, &a.Description, &a.Done, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *actionsRepo) UpdateAction(ctx context.Context, id, description string, done bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE actions SET description = ?, done = ?, updated_at = ? WHERE id = ?`,
		description, done, now(), id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *actionsRepo) DeleteAction(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM actions WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}
