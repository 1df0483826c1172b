package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"

	"github.com/andressep95/identity-service/internal/auth"
	"github.com/andressep95/identity-service/internal/domain"
	"github.com/andressep95/identity-service/internal/keys"
	"github.com/andressep95/identity-service/internal/metrics"
	"github.com/andressep95/identity-service/internal/mfa"
	"github.com/andressep95/identity-service/internal/repository"
	"github.com/andressep95/identity-service/pkg/email"
	"github.com/andressep95/identity-service/pkg/jwt"
)

// TokenPolicy bounds token lifetimes and names the root domain
type TokenPolicy struct {
	RootDomainID         string
	DefaultAccessTimeout time.Duration
	MaxAccessTimeout     time.Duration
	RefreshTimeout       time.Duration
}

// Observer receives the outcome of every Issue and Grant call
type Observer interface {
	ObserveToken(protocol string, err error, elapsed time.Duration)
}

type TokenService struct {
	keys           keys.Provider
	state          *StateChecker
	authenticators *auth.Registry
	verifiers      *mfa.Registry
	users          repository.UserRepository
	roles          *RoleResolver
	permissions    *PermissionResolver
	codec          *jwt.Codec
	policy         TokenPolicy
	observer       Observer
	now            func() time.Time
}

type TokenOption func(*TokenService)

// WithClock replaces time.Now for expiry computation.
func WithClock(now func() time.Time) TokenOption {
	return func(s *TokenService) {
		s.now = now
	}
}

func WithObserver(observer Observer) TokenOption {
	return func(s *TokenService) {
		s.observer = observer
	}
}

func NewTokenService(
	keyProvider keys.Provider,
	state *StateChecker,
	authenticators *auth.Registry,
	verifiers *mfa.Registry,
	users repository.UserRepository,
	roles *RoleResolver,
	permissions *PermissionResolver,
	codec *jwt.Codec,
	policy TokenPolicy,
	opts ...TokenOption,
) *TokenService {
	s := &TokenService{
		keys:           keyProvider,
		state:          state,
		authenticators: authenticators,
		verifiers:      verifiers,
		users:          users,
		roles:          roles,
		permissions:    permissions,
		codec:          codec,
		policy:         policy,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type IssueRequest struct {
	DomainID    string
	AuthType    domain.AuthType
	Credentials map[string]string
	Timeout     time.Duration
	VerifyCode  string
}

type GrantRequest struct {
	GrantType   domain.TokenType
	Token       string
	Scope       domain.Scope
	WorkspaceID string
	Timeout     time.Duration
}

// Issue authenticates a credential and mints an access and refresh token pair without
// workspace scope.
func (s *TokenService) Issue(ctx context.Context, req IssueRequest) (pair *domain.TokenPair, err error) {
	start := time.Now()
	defer func() { s.observe(metrics.ProtocolIssue, err, start) }()

	// GRANT only confirms an already verified token and cannot stand in for a credential
	if req.AuthType == domain.AuthTypeGrant {
		return nil, fmt.Errorf("%w: %s cannot be used to issue tokens", domain.ErrUnsupportedAuthType, req.AuthType)
	}

	// Fetch signing keys
	accessKey, err := s.keys.PrivateKey(ctx, req.DomainID, domain.KeyPurposeAccess)
	if err != nil {
		return nil, err
	}
	refreshKey, err := s.keys.PrivateKey(ctx, req.DomainID, domain.KeyPurposeRefresh)
	if err != nil {
		return nil, err
	}

	if err := s.state.CheckDomain(ctx, req.DomainID); err != nil {
		return nil, err
	}

	authenticator, err := s.authenticators.Get(req.AuthType)
	if err != nil {
		return nil, err
	}

	principal, err := authenticator.Authenticate(ctx, &auth.Request{
		DomainID:    req.DomainID,
		Credentials: req.Credentials,
	})
	if err != nil {
		log.Printf("[TOKEN_SERVICE] Authentication failed in domain %s (%s): %v", req.DomainID, req.AuthType, err)
		return nil, err
	}

	var permissions []string
	if user := principal.User; user != nil {
		if user.HasRequiredAction(domain.RequiredActionUpdatePassword) {
			permissions = []string{domain.UserProfilePermission}
		}

		if user.MFAEnabled() {
			if err := s.verifyMFA(ctx, user, req.DomainID, req.VerifyCode); err != nil {
				return nil, err
			}
		}
	}

	now := s.now()
	accessExpiry := now.Add(s.accessTimeout(req.Timeout))

	access, err := s.codec.Encode(&domain.Claims{
		RegisteredClaims: jwtlib.RegisteredClaims{
			Audience:  jwtlib.ClaimStrings{principal.ID()},
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(accessExpiry),
		},
		DomainID:    req.DomainID,
		OwnerType:   principal.OwnerType,
		TokenType:   domain.TokenTypeAccess,
		Permissions: permissions,
	}, accessKey)
	if err != nil {
		return nil, err
	}

	refresh, err := s.codec.Encode(&domain.Claims{
		RegisteredClaims: jwtlib.RegisteredClaims{
			Audience:  jwtlib.ClaimStrings{principal.ID()},
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(now.Add(s.policy.RefreshTimeout)),
		},
		DomainID:  req.DomainID,
		OwnerType: principal.OwnerType,
		TokenType: domain.TokenTypeRefresh,
	}, refreshKey)
	if err != nil {
		return nil, err
	}

	if principal.User != nil {
		if err := s.users.UpdateLastAccessed(ctx, principal.User.UserID, req.DomainID); err != nil {
			log.Printf("[TOKEN_SERVICE] Failed to update last access of user %s: %v", principal.User.UserID, err)
		}
	}

	log.Printf("[TOKEN_SERVICE] Issued tokens for %s %s in domain %s", principal.OwnerType, principal.ID(), req.DomainID)

	return &domain.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    accessExpiry,
	}, nil
}

// verifyMFA checks code when one is supplied. Otherwise it dispatches a challenge and fails
// with MFARequiredError; a dispatch failure is only escalated when the mail transport could
// not be reached.
func (s *TokenService) verifyMFA(ctx context.Context, user *domain.User, domainID, code string) error {
	verifier, err := s.verifiers.Get(user.MFA.MFAType)
	if err != nil {
		return err
	}

	if code != "" {
		return verifier.CheckCode(ctx, user.UserID, domainID, code)
	}

	destination := user.MFADestination()
	if err := verifier.SendChallenge(ctx, user.UserID, domainID, destination, user.Language); err != nil {
		log.Printf("[TOKEN_SERVICE] MFA challenge for user %s was not delivered: %v", user.UserID, err)
		if errors.Is(err, email.ErrTransportUnavailable) {
			return fmt.Errorf("%w: %v", domain.ErrMFADeliveryFailed, err)
		}
	}

	return &domain.MFARequiredError{Destination: destination}
}

// Grant exchanges a verified user token for a new access token scoped to scope and, for
// WORKSPACE scope, to a workspace.
func (s *TokenService) Grant(ctx context.Context, req GrantRequest) (result *domain.GrantResult, err error) {
	start := time.Now()
	defer func() { s.observe(metrics.ProtocolGrant, err, start) }()

	// The payload is read unverified only to find which domain key verifies it
	unverified, err := s.codec.DecodeUnverified(req.Token)
	if err != nil {
		return nil, err
	}
	domainID := unverified.DomainID
	if domainID == "" {
		return nil, fmt.Errorf("%w: token carries no domain id", domain.ErrMalformedToken)
	}

	publicKey, err := s.keys.PublicKey(ctx, domainID, domain.KeyPurposeRefresh)
	if err != nil {
		return nil, err
	}

	// Scope validation
	workspaceID := req.WorkspaceID
	if domainID == s.policy.RootDomainID && req.Scope != domain.ScopeSystem {
		return nil, fmt.Errorf("%w: root domain only grants SYSTEM scope", domain.ErrPermissionDenied)
	}
	if req.Scope == domain.ScopeWorkspace {
		if workspaceID == "" {
			return nil, fmt.Errorf("%w: workspace_id", domain.ErrMissingParameter)
		}
		if err := s.state.CheckWorkspace(ctx, workspaceID, domainID); err != nil {
			return nil, err
		}
	} else {
		workspaceID = ""
	}

	if err := s.state.CheckDomain(ctx, domainID); err != nil {
		return nil, err
	}

	claims, err := s.codec.Validate(req.Token, publicKey, req.GrantType)
	if err != nil {
		return nil, err
	}

	if claims.OwnerType != domain.OwnerTypeUser {
		return nil, fmt.Errorf("%w: only user tokens can be granted", domain.ErrPermissionDenied)
	}

	user, err := s.users.GetByID(ctx, claims.PrincipalID(), domainID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: %w", domain.ErrAuthenticationFailure, err)
		}
		return nil, err
	}

	roleType, roleID, err := s.roles.Resolve(ctx, user, workspaceID)
	if err != nil {
		return nil, err
	}

	grant, err := s.authenticators.Get(domain.AuthTypeGrant)
	if err != nil {
		return nil, err
	}
	if _, err := grant.Authenticate(ctx, &auth.Request{
		DomainID:    domainID,
		User:        user,
		Scope:       req.Scope,
		RoleType:    roleType,
		WorkspaceID: workspaceID,
	}); err != nil {
		return nil, err
	}

	var permissions []string
	if roleID != nil {
		if permissions, err = s.permissions.PermissionsForRole(ctx, *roleID, domainID); err != nil {
			return nil, err
		}
	}

	// A pending password change limits every token to the profile, whichever protocol mints it
	if user.HasRequiredAction(domain.RequiredActionUpdatePassword) {
		permissions = []string{domain.UserProfilePermission}
	}

	var projects []string
	if roleType == domain.RoleTypeWorkspaceMember {
		if projects, err = s.permissions.ProjectsForMember(ctx, user.UserID, workspaceID, domainID); err != nil {
			return nil, err
		}
	}

	privateKey, err := s.keys.PrivateKey(ctx, domainID, domain.KeyPurposeAccess)
	if err != nil {
		return nil, err
	}

	now := s.now()
	access, err := s.codec.Encode(&domain.Claims{
		RegisteredClaims: jwtlib.RegisteredClaims{
			Audience:  jwtlib.ClaimStrings{user.UserID},
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(now.Add(s.accessTimeout(req.Timeout))),
		},
		DomainID:    domainID,
		OwnerType:   domain.OwnerTypeUser,
		TokenType:   domain.TokenTypeAccess,
		WorkspaceID: workspaceID,
		Scope:       req.Scope,
		Permissions: permissions,
		Projects:    projects,
	}, privateKey)
	if err != nil {
		return nil, err
	}

	log.Printf("[TOKEN_SERVICE] Granted %s scope to user %s in domain %s as %s", req.Scope, user.UserID, domainID, roleType)

	result = &domain.GrantResult{
		AccessToken: access,
		RoleType:    roleType,
		RoleID:      roleID,
		DomainID:    domainID,
	}
	if workspaceID != "" {
		result.WorkspaceID = &workspaceID
	}

	return result, nil
}

// accessTimeout applies the lifetime policy: non-positive means default, above max is clamped.
func (s *TokenService) accessTimeout(requested time.Duration) time.Duration {
	if requested <= 0 {
		return s.policy.DefaultAccessTimeout
	}
	if s.policy.MaxAccessTimeout > 0 && requested > s.policy.MaxAccessTimeout {
		return s.policy.MaxAccessTimeout
	}
	return requested
}

func (s *TokenService) observe(protocol string, err error, start time.Time) {
	if s.observer != nil {
		s.observer.ObserveToken(protocol, err, time.Since(start))
	}
}
