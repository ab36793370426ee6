package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/frahmantamala/event-management/internal/user"
	"github.com/jmoiron/sqlx"
)

const userColumns = "id, email, name, role, COALESCE(provider, '') AS provider, is_active, created_at, updated_at"

type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository works with any sqlx driver; queries are written with ?
// and rebound for the driver in use.
func NewUserRepository(db *sqlx.DB) user.Repository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*user.User, error) {
	return r.getOne(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	return r.getOne(ctx, "SELECT "+userColumns+" FROM users WHERE email = ?", email)
}

func (r *UserRepository) getOne(ctx context.Context, query string, arg interface{}) (*user.User, error) {
	var u user.User
	if err := r.db.GetContext(ctx, &u, r.db.Rebind(query), arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, user.ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

func (r *UserRepository) GetPermissions(ctx context.Context, userID int64) ([]string, error) {
	query := r.db.Rebind(`
SELECT p.name
FROM permissions p
JOIN user_permissions up ON up.permission_id = p.id
WHERE up.user_id = ?
ORDER BY p.name`)

	var names []string
	if err := r.db.SelectContext(ctx, &names, query, userID); err != nil {
		return nil, fmt.Errorf("get user permissions: %w", err)
	}
	return names, nil
}

func (r *UserRepository) Ensure(ctx context.Context, u *user.User, passwordHash string) (*user.User, error) {
	query := r.db.Rebind(`
INSERT INTO users (email, name, password_hash, role, provider, is_active, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
ON CONFLICT (email) DO NOTHING`)

	if _, err := r.db.ExecContext(ctx, query, u.Email, u.Name, passwordHash, u.Role, u.Provider, u.IsActive); err != nil {
		return nil, fmt.Errorf("ensure user: %w", err)
	}
	return r.GetByEmail(ctx, u.Email)
}
