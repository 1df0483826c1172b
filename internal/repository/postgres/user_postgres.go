package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/andressep95/identity-service/internal/domain"
	"github.com/andressep95/identity-service/internal/repository"
)

type userRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new PostgreSQL user repository
func NewUserRepository(db *sqlx.DB) repository.UserRepository {
	return &userRepository{db: db}
}

// GetByID retrieves a user of a domain by user ID
func (r *userRepository) GetByID(ctx context.Context, userID, domainID string) (*domain.User, error) {
	query := `
		SELECT user_id, domain_id, name, email, email_verified, password_hash, state,
			   role_type, backend, mfa, required_actions, language, created_at, last_accessed_at
		FROM users
		WHERE user_id = $1 AND domain_id = $2 AND ` + notDeleted

	var user domain.User
	if err := r.db.GetContext(ctx, &user, query, userID, domainID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: user %s", domain.ErrNotFound, userID)
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	return &user, nil
}

// UpdateLastAccessed stamps the user's last successful token issue
func (r *userRepository) UpdateLastAccessed(ctx context.Context, userID, domainID string) error {
	query := `UPDATE users SET last_accessed_at = NOW() WHERE user_id = $1 AND domain_id = $2`

	if _, err := r.db.ExecContext(ctx, query, userID, domainID); err != nil {
		return fmt.Errorf("failed to update last accessed time: %w", err)
	}

	return nil
}
