package repository

import (
	"context"

	"github.com/andressep95/identity-service/internal/domain"
)

type AppRepository interface {
	GetByID(ctx context.Context, appID, domainID string) (*domain.App, error)
}

type APIKeyRepository interface {
	GetByID(ctx context.Context, apiKeyID, domainID string) (*domain.APIKey, error)
}
