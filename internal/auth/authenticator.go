package auth

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/andressep95/identity-service/internal/domain"
)

// Request carries what an authenticator needs. Credentials hold the caller supplied values of
// Issue; the grant fields are filled by the Grant protocol for the GRANT strategy only.
type Request struct {
	DomainID    string
	Credentials map[string]string

	User        *domain.User
	Scope       domain.Scope
	RoleType    domain.RoleType
	WorkspaceID string
}

// Authenticator resolves a credential to a principal for one auth type
type Authenticator interface {
	AuthType() domain.AuthType
	Authenticate(ctx context.Context, req *Request) (*domain.Principal, error)
}

// Registry resolves authenticators by auth type
type Registry struct {
	authenticators map[domain.AuthType]Authenticator
}

func NewRegistry(authenticators ...Authenticator) *Registry {
	r := &Registry{authenticators: make(map[domain.AuthType]Authenticator, len(authenticators))}
	for _, a := range authenticators {
		r.authenticators[a.AuthType()] = a
	}
	return r
}

func (r *Registry) Get(authType domain.AuthType) (Authenticator, error) {
	a, ok := r.authenticators[authType]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedAuthType, authType)
	}
	return a, nil
}

func credential(req *Request, key string) (string, error) {
	value := req.Credentials[key]
	if value == "" {
		return "", fmt.Errorf("%w: credentials.%s", domain.ErrMissingParameter, key)
	}
	return value, nil
}

// ErrInvalidCredentials is the only failure a caller sees for a rejected credential, whatever
// the reason. The reason is logged.
var ErrInvalidCredentials = fmt.Errorf("%w: invalid credentials", domain.ErrAuthenticationFailure)

// reject logs why a credential was refused and returns ErrInvalidCredentials.
func reject(domainID, format string, args ...any) error {
	log.Printf("[AUTH] Rejected credential in domain %s: %s", domainID, fmt.Sprintf(format, args...))
	return ErrInvalidCredentials
}

// failure maps a lookup miss to ErrInvalidCredentials while keeping store errors visible.
func failure(err error, domainID, what string) error {
	if errors.Is(err, domain.ErrNotFound) {
		return reject(domainID, "%s not found", what)
	}
	return err
}
