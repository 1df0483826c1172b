package domain

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type TokenType string

const (
	TokenTypeAccess  TokenType = "ACCESS_TOKEN"
	TokenTypeRefresh TokenType = "REFRESH_TOKEN"
)

type OwnerType string

const (
	OwnerTypeUser OwnerType = "USER"
	OwnerTypeApp  OwnerType = "APP"
)

// Scope is the authorization breadth requested through Grant.
type Scope string

const (
	ScopeSystem    Scope = "SYSTEM"
	ScopeDomain    Scope = "DOMAIN"
	ScopeWorkspace Scope = "WORKSPACE"
	ScopeUser      Scope = "USER"
)

// AuthType selects the credential authenticator.
type AuthType string

const (
	AuthTypeLocal    AuthType = "LOCAL"
	AuthTypeExternal AuthType = "EXTERNAL"
	AuthTypeAPIKey   AuthType = "API_KEY"
	AuthTypeGrant    AuthType = "GRANT"
)

// KeyPurpose distinguishes the access and refresh key pairs of a domain.
type KeyPurpose string

const (
	KeyPurposeAccess  KeyPurpose = "access"
	KeyPurposeRefresh KeyPurpose = "refresh"
)

// ClaimsVersion is embedded in every token as "ver".
const ClaimsVersion = "2.0"

// Claims is the signed payload. Permissions and Projects are nil when unrestricted; an empty
// non-nil list restricts the bearer to nothing and is serialized as [].
type Claims struct {
	jwt.RegisteredClaims
	DomainID    string    `json:"did"`
	OwnerType   OwnerType `json:"own"`
	TokenType   TokenType `json:"typ"`
	Version     string    `json:"ver,omitempty"`
	WorkspaceID string    `json:"wid,omitempty"`
	Scope       Scope     `json:"scope,omitempty"`
	Permissions []string  `json:"permissions,omitzero"`
	Projects    []string  `json:"projects,omitzero"`
}

// PrincipalID returns the audience, which always carries the owner's user or app id.
func (c *Claims) PrincipalID() string {
	if len(c.Audience) == 0 {
		return ""
	}
	return c.Audience[0]
}

type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

type GrantResult struct {
	AccessToken string   `json:"access_token"`
	RoleType    RoleType `json:"role_type"`
	RoleID      *string  `json:"role_id"`
	DomainID    string   `json:"domain_id"`
	WorkspaceID *string  `json:"workspace_id"`
}

// Principal is an authenticated identity: exactly one of User or App is set.
type Principal struct {
	OwnerType OwnerType
	User      *User
	App       *App
}

func UserPrincipal(u *User) *Principal {
	return &Principal{OwnerType: OwnerTypeUser, User: u}
}

func AppPrincipal(a *App) *Principal {
	return &Principal{OwnerType: OwnerTypeApp, App: a}
}

func (p *Principal) ID() string {
	if p.User != nil {
		return p.User.UserID
	}
	if p.App != nil {
		return p.App.AppID
	}
	return ""
}
