package auth

import (
	"context"
	"fmt"

	"github.com/andressep95/identity-service/internal/domain"
	"github.com/andressep95/identity-service/pkg/hash"
)

var testHasher = hash.NewHasher(hash.Argon2Config{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 8, KeyLength: 16})

func mustHash(secret string) string {
	encoded, err := testHasher.Hash(secret)
	if err != nil {
		panic(err)
	}
	return encoded
}

type fakeUsers map[string]*domain.User

func (f fakeUsers) GetByID(_ context.Context, userID, domainID string) (*domain.User, error) {
	u, ok := f[domainID+"/"+userID]
	if !ok {
		return nil, fmt.Errorf("%w: user %s", domain.ErrNotFound, userID)
	}
	return u, nil
}

func (f fakeUsers) UpdateLastAccessed(context.Context, string, string) error {
	return nil
}

type fakeDomains map[string]*domain.Domain

func (f fakeDomains) GetByID(_ context.Context, domainID string) (*domain.Domain, error) {
	d, ok := f[domainID]
	if !ok {
		return nil, fmt.Errorf("%w: domain %s", domain.ErrNotFound, domainID)
	}
	return d, nil
}

func (f fakeDomains) GetByName(_ context.Context, name string) (*domain.Domain, error) {
	for _, d := range f {
		if d.Name == name {
			return d, nil
		}
	}
	return nil, fmt.Errorf("%w: domain %s", domain.ErrNotFound, name)
}

// externalDomains has d1 accepting external credentials and d2 refusing them.
var externalDomains = fakeDomains{
	"d1": {DomainID: "d1", Name: "acme", State: domain.StateEnabled, Config: domain.StringMap{"external_auth": "enabled"}},
	"d2": {DomainID: "d2", Name: "local-only", State: domain.StateEnabled},
}

type fakeApps map[string]*domain.App

func (f fakeApps) GetByID(_ context.Context, appID, domainID string) (*domain.App, error) {
	a, ok := f[domainID+"/"+appID]
	if !ok {
		return nil, fmt.Errorf("%w: app %s", domain.ErrNotFound, appID)
	}
	return a, nil
}

type fakeKeys map[string]*domain.APIKey

func (f fakeKeys) GetByID(_ context.Context, keyID, domainID string) (*domain.APIKey, error) {
	k, ok := f[domainID+"/"+keyID]
	if !ok {
		return nil, fmt.Errorf("%w: api key %s", domain.ErrNotFound, keyID)
	}
	return k, nil
}

func localUser(id string, backend domain.UserBackend, state domain.State, password string) *domain.User {
	return &domain.User{
		UserID:       id,
		DomainID:     "d1",
		State:        state,
		RoleType:     domain.RoleTypeUser,
		Backend:      backend,
		PasswordHash: mustHash(password),
	}
}
