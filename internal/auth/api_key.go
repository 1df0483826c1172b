package auth

import (
	"context"
	"time"

	"github.com/andressep95/identity-service/internal/domain"
	"github.com/andressep95/identity-service/internal/repository"
	"github.com/andressep95/identity-service/pkg/hash"
)

// APIKeyAuthenticator checks an api key id and secret. The key owner becomes the principal.
type APIKeyAuthenticator struct {
	keys   repository.APIKeyRepository
	users  repository.UserRepository
	apps   repository.AppRepository
	hasher *hash.Hasher
	now    func() time.Time
}

func NewAPIKeyAuthenticator(
	keys repository.APIKeyRepository,
	users repository.UserRepository,
	apps repository.AppRepository,
	hasher *hash.Hasher,
	now func() time.Time,
) *APIKeyAuthenticator {
	if now == nil {
		now = time.Now
	}

	return &APIKeyAuthenticator{
		keys:   keys,
		users:  users,
		apps:   apps,
		hasher: hasher,
		now:    now,
	}
}

func (a *APIKeyAuthenticator) AuthType() domain.AuthType {
	return domain.AuthTypeAPIKey
}

func (a *APIKeyAuthenticator) Authenticate(ctx context.Context, req *Request) (*domain.Principal, error) {
	keyID, err := credential(req, "api_key_id")
	if err != nil {
		return nil, err
	}
	secret, err := credential(req, "secret")
	if err != nil {
		return nil, err
	}

	key, err := a.keys.GetByID(ctx, keyID, req.DomainID)
	if err != nil {
		return nil, failure(err, req.DomainID, "api key "+keyID)
	}

	ok, err := a.hasher.Verify(secret, key.SecretHash)
	if err != nil {
		return nil, reject(req.DomainID, "unreadable secret hash for api key %s: %v", keyID, err)
	}
	if !ok {
		return nil, reject(req.DomainID, "wrong secret for api key %s", keyID)
	}

	if !key.IsUsable(a.now()) {
		return nil, reject(req.DomainID, "api key %s is disabled or expired", keyID)
	}

	switch key.OwnerType {
	case domain.OwnerTypeUser:
		user, err := a.users.GetByID(ctx, key.OwnerID, req.DomainID)
		if err != nil {
			return nil, failure(err, req.DomainID, "api key owner "+key.OwnerID)
		}
		if !user.IsEnabled() {
			return nil, reject(req.DomainID, "user %s is %s", user.UserID, user.State)
		}
		return domain.UserPrincipal(user), nil

	case domain.OwnerTypeApp:
		app, err := a.apps.GetByID(ctx, key.OwnerID, req.DomainID)
		if err != nil {
			return nil, failure(err, req.DomainID, "api key owner "+key.OwnerID)
		}
		if !app.IsEnabled() {
			return nil, reject(req.DomainID, "app %s is %s", app.AppID, app.State)
		}
		return domain.AppPrincipal(app), nil
	}

	return nil, reject(req.DomainID, "api key %s has unknown owner type %q", keyID, key.OwnerType)
}
