package sqlite

import (
	"context"
)

type rolesRepo struct {
	db dbtx
}

func (r *rolesRepo) ListRolesForUser(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT role FROM user_roles WHERE user_id = ? ORDER BY role`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []string
	for rows.Next() {
		var role string
		if err := rows.Scan(&role); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

func (r *rolesRepo) GrantRole(ctx context.Context, userID, role string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO user_roles (user_id, role, created_at) VALUES (?, ?, ?)
		 ON CONFLICT (user_id, role) DO NOTHING`,
		userID, role, now())
	return err
}

func (r *rolesRepo) RevokeRole(ctx context.Context, userID, role string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM user_roles WHERE user_id = ? AND role = ?`, userID, role)
	return err
}
