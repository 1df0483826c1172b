package repository

import (
	"context"

	"github.com/andressep95/identity-service/internal/domain"
)

type ProjectRepository interface {
	Filter(ctx context.Context, filter domain.ProjectFilter) ([]*domain.Project, error)
}
