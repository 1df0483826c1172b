package domain

import "time"

type ProjectType string

const (
	ProjectTypePublic  ProjectType = "PUBLIC"
	ProjectTypePrivate ProjectType = "PRIVATE"
)

// Project is a visibility container. Private projects list their members in Users.
type Project struct {
	ProjectID   string      `json:"project_id" db:"project_id"`
	DomainID    string      `json:"domain_id" db:"domain_id"`
	WorkspaceID string      `json:"workspace_id" db:"workspace_id"`
	Name        string      `json:"name" db:"name"`
	ProjectType ProjectType `json:"project_type" db:"project_type"`
	Users       StringList  `json:"users" db:"users"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`
}

type ProjectFilter struct {
	DomainID     string
	WorkspaceID  string
	ProjectType  ProjectType
	MemberUserID string
}
