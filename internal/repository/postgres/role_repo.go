package postgres

import (
	"context"
	"database/sql"
	"errors"

	"eventreg/internal/domain"
)

const (
	selectRoleByCode = `
		SELECT id, code
		FROM roles
		WHERE code = $1
	`
	selectRolesByUser = `
		SELECT r.id, r.code
		FROM roles r
		INNER JOIN user_roles ur ON ur.role_id = r.id
		WHERE ur.user_id = $1
		ORDER BY r.code
	`
)

type roleRepository struct {
	DB *sql.DB
}

// NewRoleRepository returns the role lookup backed by the seeded roles table.
func NewRoleRepository(db *sql.DB) domain.RoleRepository {
	return &roleRepository{DB: db}
}

func (r *roleRepository) GetByCode(ctx context.Context, code string) (*domain.Role, error) {
	var role domain.Role
	if err := r.DB.QueryRowContext(ctx, selectRoleByCode, code).Scan(&role.ID, &role.Code); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &role, nil
}

func (r *roleRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Role, error) {
	rows, err := r.DB.QueryContext(ctx, selectRolesByUser, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	roles := make([]*domain.Role, 0, 2)
	for rows.Next() {
		var role domain.Role
		if err := rows.Scan(&role.ID, &role.Code); err != nil {
			return nil, err
		}
		roles = append(roles, &role)
	}
	return roles, rows.Err()
}
