package cache

import "fmt"

const prefix = "identity"

func DomainStateKey(domainID string) string {
	return fmt.Sprintf("%s:domain-state:%s", prefix, domainID)
}

func WorkspaceStateKey(domainID, workspaceID string) string {
	return fmt.Sprintf("%s:workspace-state:%s:%s", prefix, domainID, workspaceID)
}

func RolePermissionsKey(domainID, roleID string) string {
	return fmt.Sprintf("%s:role-permissions:%s:%s", prefix, domainID, roleID)
}

// MFACodeKey holds the outstanding verification code of a user.
func MFACodeKey(domainID, userID string) string {
	return fmt.Sprintf("%s:mfa:%s:%s", prefix, domainID, userID)
}
