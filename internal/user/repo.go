package user

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MikeMC777/fulfillment-ecom/internal/apperr"
)

type Repository interface {
	GetByID(ctx context.Context, id int64) (*User, error)
	// UserPermissions returns the permission tokens of the user's role, or
	// apperr.ErrRoleNotAssigned when the account has no role.
	UserPermissions(ctx context.Context, id int64) ([]string, error)
}

// AddressReader resolves delivery addresses.
type AddressReader interface {
	GetAddress(ctx context.Context, id int64) (*Address, error)
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

func (r *PGRepo) GetByID(ctx context.Context, id int64) (*User, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var u User
	err := r.db.QueryRow(ctx, `
		SELECT id, username, email, role_id, created_at, updated_at
		FROM users WHERE id=$1
	`, id).Scan(&u.ID, &u.Username, &u.Email, &u.RoleID, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *PGRepo) UserPermissions(ctx context.Context, id int64) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var (
		roleID *int64
		perms  []string
	)
	err := r.db.QueryRow(ctx, `
		SELECT u.role_id, COALESCE(r.permissions, '{}')
		FROM users u LEFT JOIN roles r ON r.id = u.role_id
		WHERE u.id = $1
	`, id).Scan(&roleID, &perms)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	if roleID == nil {
		return nil, apperr.ErrRoleNotAssigned
	}
	return perms, nil
}
