package postgres

import (
	"context"
	"fmt"

	"github.com/jwalitptl/clinic-ledger/internal/model"
	"github.com/jwalitptl/clinic-ledger/internal/repository"
)

type userRepository struct {
	BaseRepository
}

func NewUserRepository(base BaseRepository) repository.UserRepository {
	return &userRepository{base}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (username, password_hash)
		VALUES ($1, $2)
		RETURNING id, created_at
	`
	err := r.db.QueryRowxContext(ctx, query, user.Username, user.PasswordHash).
		Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err, "users_username_key") {
			return repository.ErrDuplicateUsername
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	query := `SELECT id, username, password_hash, created_at FROM users WHERE username = $1`
	var user model.User
	if err := r.db.GetContext(ctx, &user, query, username); err != nil {
		return nil, fmt.Errorf("failed to get user: %w", notFound(err))
	}
	return &user, nil
}
