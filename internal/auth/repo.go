package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/catalogd/catalogd/internal/platform/httpx"
	"github.com/catalogd/catalogd/internal/rbac"
)

// Repository persists user accounts.
type Repository interface {
	FindByUsername(ctx context.Context, username string) (*User, error)
	Create(ctx context.Context, user User) (*User, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository backed by the provided pool.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) FindByUsername(ctx context.Context, username string) (*User, error) {
	const query = `SELECT id, username, email, full_name, password_hash, role, is_active, created_at
		FROM users WHERE username = $1`
	var u User
	var role string
	err := r.pool.QueryRow(ctx, query, username).Scan(
		&u.ID, &u.Username, &u.Email, &u.FullName, &u.PasswordHash, &role, &u.IsActive, &u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.ErrNotFound
		}
		return nil, fmt.Errorf("auth: find user: %w", errors.Join(httpx.ErrStorage, err))
	}
	u.Role = rbac.Role(role)
	return &u, nil
}

func (r *repository) Create(ctx context.Context, user User) (*User, error) {
	const query = `INSERT INTO users (username, email, full_name, password_hash, role, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())
		RETURNING id, created_at`
	err := r.pool.QueryRow(ctx, query,
		user.Username, user.Email, user.FullName, user.PasswordHash, string(user.Role), user.IsActive,
	).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, fmt.Errorf("%w: username or email already registered", httpx.ErrConflict)
		}
		return nil, fmt.Errorf("auth: create user: %w", errors.Join(httpx.ErrStorage, err))
	}
	return &user, nil
}
