package domain

import (
	"time"
)

// RoleType is the privilege tier a role grants.
type RoleType string

const (
	RoleTypeSystemAdmin     RoleType = "SYSTEM_ADMIN"
	RoleTypeDomainAdmin     RoleType = "DOMAIN_ADMIN"
	RoleTypeWorkspaceOwner  RoleType = "WORKSPACE_OWNER"
	RoleTypeWorkspaceMember RoleType = "WORKSPACE_MEMBER"
	RoleTypeUser            RoleType = "USER"
)

// Role is a named permission bundle.
type Role struct {
	RoleID      string     `json:"role_id" db:"role_id"`
	DomainID    string     `json:"domain_id" db:"domain_id"`
	Name        string     `json:"name" db:"name"`
	RoleType    RoleType   `json:"role_type" db:"role_type"`
	Permissions StringList `json:"permissions" db:"permissions"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
}

// RoleBinding grants a user a role within a domain or a workspace.
type RoleBinding struct {
	RoleBindingID string    `json:"role_binding_id" db:"role_binding_id"`
	UserID        string    `json:"user_id" db:"user_id"`
	DomainID      string    `json:"domain_id" db:"domain_id"`
	RoleID        string    `json:"role_id" db:"role_id"`
	RoleType      RoleType  `json:"role_type" db:"role_type"`
	WorkspaceID   *string   `json:"workspace_id,omitempty" db:"workspace_id"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// RoleBindingFilter selects bindings. A nil WorkspaceID matches domain level bindings only
// unless AnyWorkspace is set.
type RoleBindingFilter struct {
	UserID       string
	DomainID     string
	RoleTypes    []RoleType
	WorkspaceID  *string
	AnyWorkspace bool
}
