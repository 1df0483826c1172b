package repository

import (
	"context"

	"github.com/andressep95/identity-service/internal/domain"
)

type UserRepository interface {
	GetByID(ctx context.Context, userID, domainID string) (*domain.User, error)
	UpdateLastAccessed(ctx context.Context, userID, domainID string) error
}
