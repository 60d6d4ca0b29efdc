package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Sibogoje/crm/internal/platform/httpx"
)

// User is the persisted account record used for login.
type User struct {
	ID           int64
	CompanyID    int64
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Role         string
}

// UserRepository looks up accounts for credential verification.
type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*User, error)
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository builds the pgx-backed user repository.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	err := r.pool.QueryRow(ctx, `
		SELECT id, company_id, email, password_hash, first_name, last_name, role
		FROM users
		WHERE email = $1
	`, email).Scan(&u.ID, &u.CompanyID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &u.Role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.ErrNotFound
		}
		return nil, fmt.Errorf("auth: get user by email: %w", err)
	}
	return &u, nil
}
