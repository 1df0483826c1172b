package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/andressep95/identity-service/internal/cache"
	"github.com/andressep95/identity-service/internal/domain"
	"github.com/andressep95/identity-service/internal/repository"
)

// PermissionResolver expands roles into permission lists and users into visible projects
type PermissionResolver struct {
	roles    repository.RoleRepository
	projects repository.ProjectRepository
	cache    cache.Cache
	ttl      time.Duration
}

func NewPermissionResolver(
	roles repository.RoleRepository,
	projects repository.ProjectRepository,
	c cache.Cache,
	ttl time.Duration,
) *PermissionResolver {
	if ttl <= 0 {
		ttl = cache.DefaultTTL
	}

	return &PermissionResolver{
		roles:    roles,
		projects: projects,
		cache:    c,
		ttl:      ttl,
	}
}

// PermissionsForRole returns the ordered permissions of a role. A role without permissions
// yields an empty, non-nil list.
func (r *PermissionResolver) PermissionsForRole(ctx context.Context, roleID, domainID string) ([]string, error) {
	key := cache.RolePermissionsKey(domainID, roleID)

	var permissions []string
	found, err := r.cache.Get(ctx, key, &permissions)
	if err != nil {
		log.Printf("[PERMISSIONS] Cache read failed for %s: %v", key, err)
	}
	if found && permissions != nil {
		return permissions, nil
	}

	role, err := r.roles.GetByID(ctx, roleID, domainID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: role %s in domain %s", domain.ErrRoleNotFound, roleID, domainID)
		}
		return nil, err
	}

	permissions = append([]string{}, role.Permissions...)

	if err := r.cache.Set(ctx, key, permissions, r.ttl); err != nil {
		log.Printf("[PERMISSIONS] Cache write failed for %s: %v", key, err)
	}

	return permissions, nil
}

// ProjectsForMember returns the PUBLIC projects of the workspace followed by the PRIVATE ones
// listing the user, without duplicates.
func (r *PermissionResolver) ProjectsForMember(ctx context.Context, userID, workspaceID, domainID string) ([]string, error) {
	public, err := r.projects.Filter(ctx, domain.ProjectFilter{
		DomainID:    domainID,
		WorkspaceID: workspaceID,
		ProjectType: domain.ProjectTypePublic,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list public projects: %w", err)
	}

	private, err := r.projects.Filter(ctx, domain.ProjectFilter{
		DomainID:     domainID,
		WorkspaceID:  workspaceID,
		ProjectType:  domain.ProjectTypePrivate,
		MemberUserID: userID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list private projects: %w", err)
	}

	seen := make(map[string]struct{}, len(public)+len(private))
	projectIDs := make([]string, 0, len(public)+len(private))
	for _, p := range append(public, private...) {
		if _, ok := seen[p.ProjectID]; ok {
			continue
		}
		seen[p.ProjectID] = struct{}{}
		projectIDs = append(projectIDs, p.ProjectID)
	}

	return projectIDs, nil
}
