package service

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"

	"github.com/andressep95/identity-service/internal/auth"
	"github.com/andressep95/identity-service/internal/cache"
	"github.com/andressep95/identity-service/internal/domain"
	"github.com/andressep95/identity-service/internal/mfa"
	"github.com/andressep95/identity-service/pkg/hash"
	"github.com/andressep95/identity-service/pkg/jwt"
)

var (
	keyOnce    sync.Once
	accessKey  *rsa.PrivateKey
	refreshKey *rsa.PrivateKey

	testHasher = hash.NewHasher(hash.Argon2Config{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 8, KeyLength: 16})
)

func testKeys(t *testing.T) (*rsa.PrivateKey, *rsa.PrivateKey) {
	t.Helper()
	keyOnce.Do(func() {
		var err error
		if accessKey, err = rsa.GenerateKey(rand.Reader, 2048); err != nil {
			panic(err)
		}
		if refreshKey, err = rsa.GenerateKey(rand.Reader, 2048); err != nil {
			panic(err)
		}
	})
	return accessKey, refreshKey
}

type fakeKeyProvider struct {
	domains map[string]bool
	access  *rsa.PrivateKey
	refresh *rsa.PrivateKey
}

func (f *fakeKeyProvider) pick(domainID string, purpose domain.KeyPurpose) (*rsa.PrivateKey, error) {
	if !f.domains[domainID] {
		return nil, fmt.Errorf("%w: domain %s", domain.ErrKeyUnavailable, domainID)
	}
	if purpose == domain.KeyPurposeRefresh {
		return f.refresh, nil
	}
	return f.access, nil
}

func (f *fakeKeyProvider) PrivateKey(_ context.Context, domainID string, purpose domain.KeyPurpose) (*rsa.PrivateKey, error) {
	return f.pick(domainID, purpose)
}

func (f *fakeKeyProvider) PublicKey(_ context.Context, domainID string, purpose domain.KeyPurpose) (*rsa.PublicKey, error) {
	key, err := f.pick(domainID, purpose)
	if err != nil {
		return nil, err
	}
	return &key.PublicKey, nil
}

type fakeDomains struct {
	domains map[string]*domain.Domain
	calls   int
}

func (f *fakeDomains) GetByID(_ context.Context, domainID string) (*domain.Domain, error) {
	f.calls++
	d, ok := f.domains[domainID]
	if !ok {
		return nil, fmt.Errorf("%w: domain %s", domain.ErrNotFound, domainID)
	}
	return d, nil
}

func (f *fakeDomains) GetByName(_ context.Context, name string) (*domain.Domain, error) {
	for _, d := range f.domains {
		if d.Name == name {
			return d, nil
		}
	}
	return nil, fmt.Errorf("%w: domain name %s", domain.ErrNotFound, name)
}

type fakeWorkspaces struct {
	workspaces map[string]*domain.Workspace
	calls      int
}

func (f *fakeWorkspaces) GetByID(_ context.Context, workspaceID, domainID string) (*domain.Workspace, error) {
	f.calls++
	w, ok := f.workspaces[domainID+"/"+workspaceID]
	if !ok {
		return nil, fmt.Errorf("%w: workspace %s", domain.ErrNotFound, workspaceID)
	}
	return w, nil
}

type fakeUsers struct {
	users    map[string]*domain.User
	accessed []string
}

func (f *fakeUsers) GetByID(_ context.Context, userID, domainID string) (*domain.User, error) {
	u, ok := f.users[domainID+"/"+userID]
	if !ok {
		return nil, fmt.Errorf("%w: user %s", domain.ErrNotFound, userID)
	}
	return u, nil
}

func (f *fakeUsers) UpdateLastAccessed(_ context.Context, userID, _ string) error {
	f.accessed = append(f.accessed, userID)
	return nil
}

// fakeBindings keeps bindings in creation order and applies the filter like the store does.
type fakeBindings struct {
	bindings []*domain.RoleBinding
	last     domain.RoleBindingFilter
}

func (f *fakeBindings) Filter(_ context.Context, filter domain.RoleBindingFilter) ([]*domain.RoleBinding, error) {
	f.last = filter
	var out []*domain.RoleBinding
	for _, b := range f.bindings {
		if b.UserID != filter.UserID || b.DomainID != filter.DomainID {
			continue
		}
		if len(filter.RoleTypes) > 0 && !containsRoleType(filter.RoleTypes, b.RoleType) {
			continue
		}
		if !filter.AnyWorkspace {
			switch {
			case filter.WorkspaceID == nil && b.WorkspaceID != nil:
				continue
			case filter.WorkspaceID != nil && (b.WorkspaceID == nil || *b.WorkspaceID != *filter.WorkspaceID):
				continue
			}
		}
		out = append(out, b)
	}
	return out, nil
}

func containsRoleType(types []domain.RoleType, t domain.RoleType) bool {
	for _, candidate := range types {
		if candidate == t {
			return true
		}
	}
	return false
}

type fakeRoles struct {
	roles map[string]*domain.Role
	calls int
}

func (f *fakeRoles) GetByID(_ context.Context, roleID, domainID string) (*domain.Role, error) {
	f.calls++
	r, ok := f.roles[domainID+"/"+roleID]
	if !ok {
		return nil, fmt.Errorf("%w: role %s", domain.ErrNotFound, roleID)
	}
	return r, nil
}

type fakeProjects struct {
	projects []*domain.Project
}

func (f *fakeProjects) Filter(_ context.Context, filter domain.ProjectFilter) ([]*domain.Project, error) {
	var out []*domain.Project
	for _, p := range f.projects {
		if p.DomainID != filter.DomainID {
			continue
		}
		if p.WorkspaceID != filter.WorkspaceID {
			continue
		}
		if filter.ProjectType != "" && p.ProjectType != filter.ProjectType {
			continue
		}
		if filter.MemberUserID != "" && !p.Users.Contains(filter.MemberUserID) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

type sentChallenge struct {
	userID, domainID, destination, language string
}

type fakeVerifier struct {
	code    string
	sendErr error
	sent    []sentChallenge
}

func (f *fakeVerifier) Type() string { return mfa.TypeEmail }

func (f *fakeVerifier) SendChallenge(_ context.Context, userID, domainID, destination, language string) error {
	f.sent = append(f.sent, sentChallenge{userID, domainID, destination, language})
	return f.sendErr
}

func (f *fakeVerifier) CheckCode(_ context.Context, _, _, code string) error {
	if code != f.code {
		return domain.ErrInvalidMFACode
	}
	return nil
}

type testEnv struct {
	svc        *TokenService
	codec      *jwt.Codec
	keys       *fakeKeyProvider
	domains    *fakeDomains
	workspaces *fakeWorkspaces
	users      *fakeUsers
	bindings   *fakeBindings
	roles      *fakeRoles
	projects   *fakeProjects
	verifier   *fakeVerifier
	state      *StateChecker
	perms      *PermissionResolver
	now        time.Time
}

const testPassword = "correct-horse"

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	access, refresh := testKeys(t)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	c := cache.NewRedisCache(client)

	passwordHash, err := testHasher.Hash(testPassword)
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}

	w1 := "w1"
	env := &testEnv{
		keys: &fakeKeyProvider{
			domains: map[string]bool{"root": true, "d1": true, "d-off": true},
			access:  access,
			refresh: refresh,
		},
		domains: &fakeDomains{domains: map[string]*domain.Domain{
			"root":  {DomainID: "root", Name: "root", State: domain.StateEnabled},
			"d1":    {DomainID: "d1", Name: "acme", State: domain.StateEnabled},
			"d-off": {DomainID: "d-off", Name: "dormant", State: domain.StateDisabled},
		}},
		workspaces: &fakeWorkspaces{workspaces: map[string]*domain.Workspace{
			"d1/w1":    {WorkspaceID: "w1", DomainID: "d1", State: domain.StateEnabled},
			"d1/w-off": {WorkspaceID: "w-off", DomainID: "d1", State: domain.StateDisabled},
		}},
		users: &fakeUsers{users: map[string]*domain.User{}},
		bindings: &fakeBindings{bindings: []*domain.RoleBinding{
			{RoleBindingID: "rb1", UserID: "u1", DomainID: "d1", RoleID: "r1", RoleType: domain.RoleTypeWorkspaceMember, WorkspaceID: &w1},
			{RoleBindingID: "rb2", UserID: "admin", DomainID: "d1", RoleID: "r-admin", RoleType: domain.RoleTypeDomainAdmin},
			{RoleBindingID: "rb3", UserID: "sys", DomainID: "root", RoleID: "r-sys", RoleType: domain.RoleTypeDomainAdmin},
			{RoleBindingID: "rb4", UserID: "floater", DomainID: "d1", RoleID: "r1", RoleType: domain.RoleTypeWorkspaceMember},
		}},
		roles: &fakeRoles{roles: map[string]*domain.Role{
			"d1/r1":      {RoleID: "r1", DomainID: "d1", Permissions: domain.StringList{"compute.Instance.get"}},
			"d1/r-admin": {RoleID: "r-admin", DomainID: "d1", Permissions: domain.StringList{"*"}},
			"root/r-sys": {RoleID: "r-sys", DomainID: "root", Permissions: domain.StringList{"*"}},
		}},
		projects: &fakeProjects{projects: []*domain.Project{
			{ProjectID: "p-pub-1", DomainID: "d1", WorkspaceID: "w1", ProjectType: domain.ProjectTypePublic},
			{ProjectID: "p-pub-2", DomainID: "d1", WorkspaceID: "w1", ProjectType: domain.ProjectTypePublic, Users: domain.StringList{"u1"}},
			{ProjectID: "p-priv-in", DomainID: "d1", WorkspaceID: "w1", ProjectType: domain.ProjectTypePrivate, Users: domain.StringList{"u2", "u1"}},
			{ProjectID: "p-priv-out", DomainID: "d1", WorkspaceID: "w1", ProjectType: domain.ProjectTypePrivate, Users: domain.StringList{"u2"}},
			{ProjectID: "p-other-ws", DomainID: "d1", WorkspaceID: "w2", ProjectType: domain.ProjectTypePublic},
		}},
		verifier: &fakeVerifier{code: "246810"},
		now:      time.Now().Truncate(time.Second),
	}

	for _, u := range []*domain.User{
		{UserID: "u1", DomainID: "d1", State: domain.StateEnabled, RoleType: domain.RoleTypeUser, Backend: domain.UserBackendLocal, Language: "en"},
		{UserID: "admin", DomainID: "d1", State: domain.StateEnabled, RoleType: domain.RoleTypeDomainAdmin, Backend: domain.UserBackendLocal},
		{UserID: "sys", DomainID: "root", State: domain.StateEnabled, RoleType: domain.RoleTypeDomainAdmin, Backend: domain.UserBackendLocal},
		{UserID: "floater", DomainID: "d1", State: domain.StateEnabled, RoleType: domain.RoleTypeUser, Backend: domain.UserBackendLocal},
		{UserID: "plain", DomainID: "root", State: domain.StateEnabled, RoleType: domain.RoleTypeUser, Backend: domain.UserBackendLocal},
		{UserID: "off", DomainID: "d-off", State: domain.StateEnabled, RoleType: domain.RoleTypeUser, Backend: domain.UserBackendLocal},
		{UserID: "mfa", DomainID: "d1", State: domain.StateEnabled, RoleType: domain.RoleTypeUser, Backend: domain.UserBackendLocal, Email: "mfa@example.com", Language: "ja",
			MFA: domain.MFA{State: domain.MFAStateEnabled, MFAType: mfa.TypeEmail, Options: domain.StringMap{"email": "otp@example.com"}}},
		{UserID: "reset", DomainID: "d1", State: domain.StateEnabled, RoleType: domain.RoleTypeUser, Backend: domain.UserBackendLocal,
			RequiredActions: domain.StringList{domain.RequiredActionUpdatePassword}},
	} {
		u.PasswordHash = passwordHash
		env.users.users[u.DomainID+"/"+u.UserID] = u
	}

	env.codec = jwt.NewCodec("identity", func() time.Time { return env.now })
	env.state = NewStateChecker(env.domains, env.workspaces, c, cache.DefaultTTL)
	env.perms = NewPermissionResolver(env.roles, env.projects, c, cache.DefaultTTL)

	env.svc = NewTokenService(
		env.keys,
		env.state,
		auth.NewRegistry(
			auth.NewLocalAuthenticator(env.users, testHasher),
			auth.NewGrantAuthenticator("root"),
		),
		mfa.NewRegistry(env.verifier),
		env.users,
		NewRoleResolver(env.bindings),
		env.perms,
		env.codec,
		TokenPolicy{
			RootDomainID:         "root",
			DefaultAccessTimeout: 30 * time.Minute,
			MaxAccessTimeout:     24 * time.Hour,
			RefreshTimeout:       24 * time.Hour,
		},
		WithClock(func() time.Time { return env.now }),
	)

	return env
}

// refreshToken mints a refresh token the way Issue would, bypassing authentication.
func (e *testEnv) refreshToken(t *testing.T, domainID, principalID string, owner domain.OwnerType) string {
	t.Helper()
	token, err := e.codec.Encode(&domain.Claims{
		RegisteredClaims: jwtRegistered(principalID, e.now.Add(time.Hour)),
		DomainID:         domainID,
		OwnerType:        owner,
		TokenType:        domain.TokenTypeRefresh,
	}, e.keys.refresh)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	return token
}

func (e *testEnv) accessClaims(t *testing.T, token string) *domain.Claims {
	t.Helper()
	claims, err := e.codec.Validate(token, &e.keys.access.PublicKey, domain.TokenTypeAccess)
	if err != nil {
		t.Fatalf("Validate access token: %v", err)
	}
	return claims
}

func localCredentials(userID string) map[string]string {
	return map[string]string{"user_id": userID, "password": testPassword}
}

func jwtRegistered(principalID string, expiresAt time.Time) jwtlib.RegisteredClaims {
	return jwtlib.RegisteredClaims{
		Audience:  jwtlib.ClaimStrings{principalID},
		ExpiresAt: jwtlib.NewNumericDate(expiresAt),
	}
}
