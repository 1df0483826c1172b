package auth

import (
	"context"

	"github.com/andressep95/identity-service/internal/domain"
	"github.com/andressep95/identity-service/internal/repository"
	"github.com/andressep95/identity-service/pkg/hash"
)

// LocalAuthenticator checks a user id and password against the stored argon2 digest
type LocalAuthenticator struct {
	users  repository.UserRepository
	hasher *hash.Hasher
}

func NewLocalAuthenticator(users repository.UserRepository, hasher *hash.Hasher) *LocalAuthenticator {
	return &LocalAuthenticator{users: users, hasher: hasher}
}

func (a *LocalAuthenticator) AuthType() domain.AuthType {
	return domain.AuthTypeLocal
}

func (a *LocalAuthenticator) Authenticate(ctx context.Context, req *Request) (*domain.Principal, error) {
	userID, err := credential(req, "user_id")
	if err != nil {
		return nil, err
	}
	password, err := credential(req, "password")
	if err != nil {
		return nil, err
	}

	user, err := a.users.GetByID(ctx, userID, req.DomainID)
	if err != nil {
		return nil, failure(err, req.DomainID, "user "+userID)
	}

	// Password first, so account state is only revealed to whoever knows the password, and
	// then only in the log
	ok, err := a.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		return nil, reject(req.DomainID, "unreadable password hash for user %s: %v", userID, err)
	}
	if !ok {
		return nil, reject(req.DomainID, "wrong password for user %s", userID)
	}

	if user.Backend != domain.UserBackendLocal {
		return nil, reject(req.DomainID, "user %s is not a local user", userID)
	}
	if !user.IsEnabled() {
		return nil, reject(req.DomainID, "user %s is %s", userID, user.State)
	}

	return domain.UserPrincipal(user), nil
}
