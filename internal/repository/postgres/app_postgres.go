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

type appRepository struct {
	db *sqlx.DB
}

// NewAppRepository creates a new PostgreSQL app repository
func NewAppRepository(db *sqlx.DB) repository.AppRepository {
	return &appRepository{db: db}
}

// GetByID retrieves an app of a domain
func (r *appRepository) GetByID(ctx context.Context, appID, domainID string) (*domain.App, error) {
	query := `
		SELECT app_id, domain_id, workspace_id, name, state, role_type, role_id, created_at
		FROM apps
		WHERE app_id = $1 AND domain_id = $2 AND ` + notDeleted

	var app domain.App
	if err := r.db.GetContext(ctx, &app, query, appID, domainID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: app %s", domain.ErrNotFound, appID)
		}
		return nil, fmt.Errorf("failed to get app: %w", err)
	}

	return &app, nil
}

type apiKeyRepository struct {
	db *sqlx.DB
}

// NewAPIKeyRepository creates a new PostgreSQL api key repository
func NewAPIKeyRepository(db *sqlx.DB) repository.APIKeyRepository {
	return &apiKeyRepository{db: db}
}

// GetByID retrieves an api key of a domain, including its secret hash
func (r *apiKeyRepository) GetByID(ctx context.Context, apiKeyID, domainID string) (*domain.APIKey, error) {
	query := `
		SELECT api_key_id, domain_id, owner_type, owner_id, secret_hash, state, expired_at, created_at
		FROM api_keys
		WHERE api_key_id = $1 AND domain_id = $2 AND ` + notDeleted

	var key domain.APIKey
	if err := r.db.GetContext(ctx, &key, query, apiKeyID, domainID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: api key %s", domain.ErrNotFound, apiKeyID)
		}
		return nil, fmt.Errorf("failed to get api key: %w", err)
	}

	return &key, nil
}
