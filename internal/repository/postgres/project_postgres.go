package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/andressep95/identity-service/internal/domain"
	"github.com/andressep95/identity-service/internal/repository"
)

type projectRepository struct {
	db *sqlx.DB
}

// NewProjectRepository creates a new PostgreSQL project repository
func NewProjectRepository(db *sqlx.DB) repository.ProjectRepository {
	return &projectRepository{db: db}
}

// Filter lists projects of a domain in one workspace, optionally narrowed by type and member.
// An empty workspace id matches projects without a workspace, never every workspace.
func (r *projectRepository) Filter(ctx context.Context, filter domain.ProjectFilter) ([]*domain.Project, error) {
	conditions := []string{"domain_id = $1"}
	args := []any{filter.DomainID}

	if filter.WorkspaceID == "" {
		conditions = append(conditions, "workspace_id IS NULL")
	} else {
		args = append(args, filter.WorkspaceID)
		conditions = append(conditions, fmt.Sprintf("workspace_id = $%d", len(args)))
	}
	if filter.ProjectType != "" {
		args = append(args, filter.ProjectType)
		conditions = append(conditions, fmt.Sprintf("project_type = $%d", len(args)))
	}
	if filter.MemberUserID != "" {
		args = append(args, filter.MemberUserID)
		conditions = append(conditions, fmt.Sprintf("users @> jsonb_build_array($%d::text)", len(args)))
	}

	query := `
		SELECT project_id, domain_id, workspace_id, name, project_type, users, created_at
		FROM projects
		WHERE ` + strings.Join(conditions, " AND ") + `
		ORDER BY created_at ASC`

	var projects []*domain.Project
	if err := r.db.SelectContext(ctx, &projects, query, args...); err != nil {
		return nil, fmt.Errorf("failed to filter projects: %w", err)
	}

	return projects, nil
}
