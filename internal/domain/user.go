package domain

import (
	"database/sql/driver"
	"time"
)

type UserBackend string

const (
	UserBackendLocal    UserBackend = "LOCAL"
	UserBackendExternal UserBackend = "EXTERNAL"
)

type MFAState string

const (
	MFAStateEnabled  MFAState = "ENABLED"
	MFAStateDisabled MFAState = "DISABLED"
)

// RequiredActionUpdatePassword forces the holder through a password change before any other access.
const RequiredActionUpdatePassword = "UPDATE_PASSWORD"

// UserProfilePermission is the only permission granted while a password change is pending.
const UserProfilePermission = "identity.UserProfile"

// MFA is the user's multi-factor configuration, stored as a JSONB document.
type MFA struct {
	State   MFAState  `json:"state"`
	MFAType string    `json:"mfa_type,omitempty"`
	Options StringMap `json:"options,omitempty"`
}

func (m MFA) Value() (driver.Value, error) {
	return marshalJSON(m)
}

func (m *MFA) Scan(src any) error {
	return scanJSON(src, m)
}

type User struct {
	UserID          string      `json:"user_id" db:"user_id"`
	DomainID        string      `json:"domain_id" db:"domain_id"`
	Name            string      `json:"name" db:"name"`
	Email           string      `json:"email" db:"email"`
	EmailVerified   bool        `json:"email_verified" db:"email_verified"`
	PasswordHash    string      `json:"-" db:"password_hash"`
	State           State       `json:"state" db:"state"`
	RoleType        RoleType    `json:"role_type" db:"role_type"`
	Backend         UserBackend `json:"backend" db:"backend"`
	MFA             MFA         `json:"mfa" db:"mfa"`
	RequiredActions StringList  `json:"required_actions" db:"required_actions"`
	Language        string      `json:"language" db:"language"`
	CreatedAt       time.Time   `json:"created_at" db:"created_at"`
	LastAccessedAt  *time.Time  `json:"last_accessed_at,omitempty" db:"last_accessed_at"`
}

func (u *User) IsEnabled() bool {
	return u.State == StateEnabled
}

func (u *User) MFAEnabled() bool {
	return u.MFA.State == MFAStateEnabled
}

// MFADestination is where verification challenges are delivered.
func (u *User) MFADestination() string {
	if email := u.MFA.Options["email"]; email != "" {
		return email
	}
	return u.Email
}

func (u *User) HasRequiredAction(action string) bool {
	return u.RequiredActions.Contains(action)
}
