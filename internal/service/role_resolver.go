package service

import (
	"context"
	"fmt"

	"github.com/andressep95/identity-service/internal/domain"
	"github.com/andressep95/identity-service/internal/repository"
)

// RoleResolver picks the effective role of a user for a target workspace
type RoleResolver struct {
	bindings repository.RoleBindingRepository
}

func NewRoleResolver(bindings repository.RoleBindingRepository) *RoleResolver {
	return &RoleResolver{bindings: bindings}
}

// Resolve returns the role type and role id of the oldest matching binding. Admins match their
// admin bindings in any workspace; everyone else matches owner or member bindings of
// workspaceID, or domain level ones when workspaceID is empty. Without a match the user falls
// back to (USER, nil).
func (r *RoleResolver) Resolve(ctx context.Context, user *domain.User, workspaceID string) (domain.RoleType, *string, error) {
	filter := domain.RoleBindingFilter{
		UserID:   user.UserID,
		DomainID: user.DomainID,
	}

	switch user.RoleType {
	case domain.RoleTypeDomainAdmin, domain.RoleTypeSystemAdmin:
		filter.RoleTypes = []domain.RoleType{user.RoleType}
		filter.AnyWorkspace = true
	default:
		filter.RoleTypes = []domain.RoleType{domain.RoleTypeWorkspaceOwner, domain.RoleTypeWorkspaceMember}
		if workspaceID != "" {
			filter.WorkspaceID = &workspaceID
		}
	}

	bindings, err := r.bindings.Filter(ctx, filter)
	if err != nil {
		return "", nil, fmt.Errorf("failed to resolve role of user %s: %w", user.UserID, err)
	}

	if len(bindings) == 0 {
		return domain.RoleTypeUser, nil, nil
	}

	first := bindings[0]
	roleID := first.RoleID
	return first.RoleType, &roleID, nil
}
