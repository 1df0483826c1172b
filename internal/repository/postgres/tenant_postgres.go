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

// notDeleted is appended to every default read of soft-deleted tables.
const notDeleted = `state <> 'DELETED'`

type domainRepository struct {
	db *sqlx.DB
}

// NewDomainRepository creates a new PostgreSQL domain repository
func NewDomainRepository(db *sqlx.DB) repository.DomainRepository {
	return &domainRepository{db: db}
}

// GetByID retrieves a non-deleted domain by its ID
func (r *domainRepository) GetByID(ctx context.Context, domainID string) (*domain.Domain, error) {
	query := `
		SELECT domain_id, name, state, config, created_at, deleted_at
		FROM domains
		WHERE domain_id = $1 AND ` + notDeleted

	var d domain.Domain
	if err := r.db.GetContext(ctx, &d, query, domainID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: domain %s", domain.ErrNotFound, domainID)
		}
		return nil, fmt.Errorf("failed to get domain by id: %w", err)
	}

	return &d, nil
}

// GetByName retrieves a non-deleted domain by its unique name
func (r *domainRepository) GetByName(ctx context.Context, name string) (*domain.Domain, error) {
	query := `
		SELECT domain_id, name, state, config, created_at, deleted_at
		FROM domains
		WHERE name = $1 AND ` + notDeleted

	var d domain.Domain
	if err := r.db.GetContext(ctx, &d, query, name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: domain name %s", domain.ErrNotFound, name)
		}
		return nil, fmt.Errorf("failed to get domain by name: %w", err)
	}

	return &d, nil
}

type domainSecretRepository struct {
	db *sqlx.DB
}

func NewDomainSecretRepository(db *sqlx.DB) repository.DomainSecretRepository {
	return &domainSecretRepository{db: db}
}

// GetByDomainID retrieves the signing material of a domain
func (r *domainSecretRepository) GetByDomainID(ctx context.Context, domainID string) (*domain.DomainSecret, error) {
	query := `
		SELECT domain_id, private_key, public_key, refresh_private_key, refresh_public_key, created_at
		FROM domain_secrets
		WHERE domain_id = $1`

	var secret domain.DomainSecret
	if err := r.db.GetContext(ctx, &secret, query, domainID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: secret of domain %s", domain.ErrNotFound, domainID)
		}
		return nil, fmt.Errorf("failed to get domain secret: %w", err)
	}

	return &secret, nil
}

type workspaceRepository struct {
	db *sqlx.DB
}

func NewWorkspaceRepository(db *sqlx.DB) repository.WorkspaceRepository {
	return &workspaceRepository{db: db}
}

// GetByID retrieves a non-deleted workspace of a domain
func (r *workspaceRepository) GetByID(ctx context.Context, workspaceID, domainID string) (*domain.Workspace, error) {
	query := `
		SELECT workspace_id, domain_id, name, state, created_at, deleted_at
		FROM workspaces
		WHERE workspace_id = $1 AND domain_id = $2 AND ` + notDeleted

	var w domain.Workspace
	if err := r.db.GetContext(ctx, &w, query, workspaceID, domainID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: workspace %s", domain.ErrNotFound, workspaceID)
		}
		return nil, fmt.Errorf("failed to get workspace by id: %w", err)
	}

	return &w, nil
}
