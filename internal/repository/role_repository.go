package repository

import (
	"context"

	"github.com/andressep95/identity-service/internal/domain"
)

type RoleRepository interface {
	GetByID(ctx context.Context, roleID, domainID string) (*domain.Role, error)
}

// RoleBindingRepository lists bindings ordered by creation time, oldest first.
type RoleBindingRepository interface {
	Filter(ctx context.Context, filter domain.RoleBindingFilter) ([]*domain.RoleBinding, error)
}
