package domain

import (
	"time"
)

// State is the lifecycle state shared by domains, workspaces, users, apps and api keys.
type State string

const (
	StateEnabled  State = "ENABLED"
	StateDisabled State = "DISABLED"
	StateDeleted  State = "DELETED"
	StatePending  State = "PENDING"
)

// Domain is the tenant boundary. A deleted domain keeps its row with StateDeleted and
// DeletedAt set; repositories exclude it from every default query.
type Domain struct {
	DomainID  string     `json:"domain_id" db:"domain_id"`
	Name      string     `json:"name" db:"name"`
	State     State      `json:"state" db:"state"`
	Config    StringMap  `json:"config" db:"config"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

func (d *Domain) IsEnabled() bool {
	return d.State == StateEnabled
}

// ExternalAuthEnabled reports whether the domain accepts EXTERNAL credentials.
func (d *Domain) ExternalAuthEnabled() bool {
	return d.Config["external_auth"] == "enabled"
}

// DomainSecret holds the PEM encoded signing material of a domain.
type DomainSecret struct {
	DomainID          string    `db:"domain_id"`
	PrivateKey        string    `db:"private_key"`
	PublicKey         string    `db:"public_key"`
	RefreshPrivateKey string    `db:"refresh_private_key"`
	RefreshPublicKey  string    `db:"refresh_public_key"`
	CreatedAt         time.Time `db:"created_at"`
}

// Workspace groups projects inside a domain.
type Workspace struct {
	WorkspaceID string     `json:"workspace_id" db:"workspace_id"`
	DomainID    string     `json:"domain_id" db:"domain_id"`
	Name        string     `json:"name" db:"name"`
	State       State      `json:"state" db:"state"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

func (w *Workspace) IsEnabled() bool {
	return w.State == StateEnabled
}
