package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"valour-interiors/quotes_backend/internal/domain/auth"
)

type UserRepository struct {
	db *DB
}

func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) FindByName(ctx context.Context, name string) (auth.User, error) {
	var u auth.User
	err := r.db.Pool.QueryRow(ctx,
		`SELECT id, name, password_hash, role FROM users WHERE name = $1`, name,
	).Scan(&u.ID, &u.Name, &u.PasswordHash, &u.Role)
	if errors.Is(err, pgx.ErrNoRows) {
		return auth.User{}, auth.ErrUserNotFound
	}
	if err != nil {
		return auth.User{}, fmt.Errorf("find user: %w", err)
	}
	return u, nil
}

func (r *UserRepository) Create(ctx context.Context, u auth.User) (auth.User, error) {
	_, err := r.db.Pool.Exec(ctx,
		`INSERT INTO users (id, name, password_hash, role) VALUES ($1, $2, $3, $4)`,
		u.ID, u.Name, u.PasswordHash, u.Role,
	)
	if isUniqueViolation(err) {
		return auth.User{}, auth.ErrUserExists
	}
	if err != nil {
		return auth.User{}, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}
