package repository

import (
	"context"

	"github.com/andressep95/identity-service/internal/domain"
)

// DomainRepository reads domains. Deleted domains are never returned.
type DomainRepository interface {
	GetByID(ctx context.Context, domainID string) (*domain.Domain, error)
	GetByName(ctx context.Context, name string) (*domain.Domain, error)
}

// DomainSecretRepository reads the PEM signing material of a domain.
type DomainSecretRepository interface {
	GetByDomainID(ctx context.Context, domainID string) (*domain.DomainSecret, error)
}

// WorkspaceRepository reads workspaces. Deleted workspaces are never returned.
type WorkspaceRepository interface {
	GetByID(ctx context.Context, workspaceID, domainID string) (*domain.Workspace, error)
}
