package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/andressep95/identity-service/internal/domain"
	"github.com/andressep95/identity-service/internal/repository"
)

type roleRepository struct {
	db *sqlx.DB
}

// NewRoleRepository creates a new PostgreSQL role repository
func NewRoleRepository(db *sqlx.DB) repository.RoleRepository {
	return &roleRepository{db: db}
}

// GetByID retrieves a role of a domain with its ordered permissions
func (r *roleRepository) GetByID(ctx context.Context, roleID, domainID string) (*domain.Role, error) {
	query := `
		SELECT role_id, domain_id, name, role_type, permissions, created_at
		FROM roles
		WHERE role_id = $1 AND domain_id = $2`

	var role domain.Role
	if err := r.db.GetContext(ctx, &role, query, roleID, domainID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: role %s", domain.ErrNotFound, roleID)
		}
		return nil, fmt.Errorf("failed to get role: %w", err)
	}

	return &role, nil
}

type roleBindingRepository struct {
	db *sqlx.DB
}

// NewRoleBindingRepository creates a new PostgreSQL role binding repository
func NewRoleBindingRepository(db *sqlx.DB) repository.RoleBindingRepository {
	return &roleBindingRepository{db: db}
}

// Filter lists bindings matching the filter, oldest first. Ties on created_at are broken by
// role_binding_id so repeated resolutions pick the same binding.
func (r *roleBindingRepository) Filter(ctx context.Context, filter domain.RoleBindingFilter) ([]*domain.RoleBinding, error) {
	conditions := []string{"user_id = ?", "domain_id = ?"}
	args := []any{filter.UserID, filter.DomainID}

	if len(filter.RoleTypes) > 0 {
		conditions = append(conditions, "role_type IN (?)")
		args = append(args, filter.RoleTypes)
	}

	if !filter.AnyWorkspace {
		if filter.WorkspaceID == nil {
			conditions = append(conditions, "workspace_id IS NULL")
		} else {
			conditions = append(conditions, "workspace_id = ?")
			args = append(args, *filter.WorkspaceID)
		}
	}

	query, args, err := sqlx.In(`
		SELECT role_binding_id, user_id, domain_id, role_id, role_type, workspace_id, created_at
		FROM role_bindings
		WHERE `+strings.Join(conditions, " AND ")+`
		ORDER BY created_at ASC, role_binding_id ASC`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to build role binding query: %w", err)
	}

	var bindings []*domain.RoleBinding
	if err := r.db.SelectContext(ctx, &bindings, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to filter role bindings: %w", err)
	}

	return bindings, nil
}
