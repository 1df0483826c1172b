package domain

import (
	"time"
)

// App is a non-human principal bound to a single role.
type App struct {
	AppID       string    `json:"app_id" db:"app_id"`
	DomainID    string    `json:"domain_id" db:"domain_id"`
	WorkspaceID *string   `json:"workspace_id,omitempty" db:"workspace_id"`
	Name        string    `json:"name" db:"name"`
	State       State     `json:"state" db:"state"`
	RoleType    RoleType  `json:"role_type" db:"role_type"`
	RoleID      string    `json:"role_id" db:"role_id"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

func (a *App) IsEnabled() bool {
	return a.State == StateEnabled
}

// APIKey is a long-lived secret issued to a user or an app.
type APIKey struct {
	APIKeyID   string     `json:"api_key_id" db:"api_key_id"`
	DomainID   string     `json:"domain_id" db:"domain_id"`
	OwnerType  OwnerType  `json:"owner_type" db:"owner_type"`
	OwnerID    string     `json:"owner_id" db:"owner_id"`
	SecretHash string     `json:"-" db:"secret_hash"`
	State      State      `json:"state" db:"state"`
	ExpiredAt  *time.Time `json:"expired_at,omitempty" db:"expired_at"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
}

// IsUsable reports whether the key is enabled and not past its expiry at now.
func (k *APIKey) IsUsable(now time.Time) bool {
	if k.State != StateEnabled {
		return false
	}
	return k.ExpiredAt == nil || now.Before(*k.ExpiredAt)
}
