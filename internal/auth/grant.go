package auth

import (
	"context"
	"fmt"
	"slices"

	"github.com/andressep95/identity-service/internal/domain"
)

// scopeRoles lists the role types allowed to hold each scope. A nil entry allows every role.
var scopeRoles = map[domain.Scope][]domain.RoleType{
	domain.ScopeSystem:    {domain.RoleTypeSystemAdmin, domain.RoleTypeDomainAdmin},
	domain.ScopeDomain:    {domain.RoleTypeDomainAdmin},
	domain.ScopeWorkspace: {domain.RoleTypeDomainAdmin, domain.RoleTypeWorkspaceOwner, domain.RoleTypeWorkspaceMember},
	domain.ScopeUser:      nil,
}

// GrantAuthenticator does not check a credential. It confirms that the already verified user
// may hold the requested scope with the role resolved for it.
type GrantAuthenticator struct {
	rootDomainID string
}

func NewGrantAuthenticator(rootDomainID string) *GrantAuthenticator {
	return &GrantAuthenticator{rootDomainID: rootDomainID}
}

func (a *GrantAuthenticator) AuthType() domain.AuthType {
	return domain.AuthTypeGrant
}

func (a *GrantAuthenticator) Authenticate(_ context.Context, req *Request) (*domain.Principal, error) {
	user := req.User
	if user == nil {
		return nil, fmt.Errorf("%w: grant requires a verified user", domain.ErrAuthenticationFailure)
	}

	if !user.IsEnabled() {
		return nil, fmt.Errorf("%w: user %s is %s", domain.ErrAuthenticationFailure, user.UserID, user.State)
	}

	allowed, ok := scopeRoles[req.Scope]
	if !ok {
		return nil, fmt.Errorf("%w: unknown scope %q", domain.ErrPermissionDenied, req.Scope)
	}

	if req.Scope == domain.ScopeSystem && req.DomainID != a.rootDomainID {
		return nil, fmt.Errorf("%w: SYSTEM scope is only granted in the root domain", domain.ErrPermissionDenied)
	}

	if req.Scope == domain.ScopeWorkspace && req.WorkspaceID == "" {
		return nil, fmt.Errorf("%w: workspace_id", domain.ErrMissingParameter)
	}

	if allowed != nil && !slices.Contains(allowed, req.RoleType) {
		return nil, fmt.Errorf("%w: role %s cannot hold %s scope", domain.ErrPermissionDenied, req.RoleType, req.Scope)
	}

	return domain.UserPrincipal(user), nil
}
