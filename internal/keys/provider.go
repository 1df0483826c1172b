package keys

import (
	"context"
	"crypto/rsa"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/andressep95/identity-service/internal/domain"
	"github.com/andressep95/identity-service/internal/repository"
)

// Provider hands out the parsed signing material of a domain
type Provider interface {
	PrivateKey(ctx context.Context, domainID string, purpose domain.KeyPurpose) (*rsa.PrivateKey, error)
	PublicKey(ctx context.Context, domainID string, purpose domain.KeyPurpose) (*rsa.PublicKey, error)
}

type keySet struct {
	accessPrivate  *rsa.PrivateKey
	accessPublic   *rsa.PublicKey
	refreshPrivate *rsa.PrivateKey
	refreshPublic  *rsa.PublicKey
}

// DefaultTTL bounds how long parsed keys are reused before the secret store is read again, so
// rotated or removed key material takes effect without a restart.
const DefaultTTL = 10 * time.Minute

type cachedKeySet struct {
	set     *keySet
	expires time.Time
}

// RepositoryProvider loads PEM material from the domain secret store and keeps the parsed
// keys in memory for ttl.
type RepositoryProvider struct {
	secrets repository.DomainSecretRepository
	ttl     time.Duration
	now     func() time.Time
	parsed  sync.Map // domain id -> cachedKeySet
}

type Option func(*RepositoryProvider)

func WithTTL(ttl time.Duration) Option {
	return func(p *RepositoryProvider) {
		if ttl > 0 {
			p.ttl = ttl
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(p *RepositoryProvider) {
		p.now = now
	}
}

func NewRepositoryProvider(secrets repository.DomainSecretRepository, opts ...Option) *RepositoryProvider {
	p := &RepositoryProvider{
		secrets: secrets,
		ttl:     DefaultTTL,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *RepositoryProvider) PrivateKey(ctx context.Context, domainID string, purpose domain.KeyPurpose) (*rsa.PrivateKey, error) {
	set, err := p.load(ctx, domainID)
	if err != nil {
		return nil, err
	}

	switch purpose {
	case domain.KeyPurposeAccess:
		return set.accessPrivate, nil
	case domain.KeyPurposeRefresh:
		return set.refreshPrivate, nil
	}
	return nil, fmt.Errorf("%w: unknown key purpose %q", domain.ErrKeyUnavailable, purpose)
}

func (p *RepositoryProvider) PublicKey(ctx context.Context, domainID string, purpose domain.KeyPurpose) (*rsa.PublicKey, error) {
	set, err := p.load(ctx, domainID)
	if err != nil {
		return nil, err
	}

	switch purpose {
	case domain.KeyPurposeAccess:
		return set.accessPublic, nil
	case domain.KeyPurposeRefresh:
		return set.refreshPublic, nil
	}
	return nil, fmt.Errorf("%w: unknown key purpose %q", domain.ErrKeyUnavailable, purpose)
}

func (p *RepositoryProvider) load(ctx context.Context, domainID string) (*keySet, error) {
	now := p.now()
	if cached, ok := p.parsed.Load(domainID); ok {
		entry := cached.(cachedKeySet)
		if now.Before(entry.expires) {
			return entry.set, nil
		}
	}

	secret, err := p.secrets.GetByDomainID(ctx, domainID)
	if err != nil {
		// A domain whose secrets are gone stops signing once its entry expires
		p.parsed.Delete(domainID)
		log.Printf("[KEYS] Failed to load secrets for domain %s: %v", domainID, err)
		return nil, fmt.Errorf("%w: domain %s: %w", domain.ErrKeyUnavailable, domainID, err)
	}

	set, err := parse(secret)
	if err != nil {
		log.Printf("[KEYS] Invalid key material for domain %s: %v", domainID, err)
		return nil, fmt.Errorf("%w: domain %s: %v", domain.ErrKeyUnavailable, domainID, err)
	}

	p.parsed.Store(domainID, cachedKeySet{set: set, expires: now.Add(p.ttl)})
	return set, nil
}

func parse(secret *domain.DomainSecret) (*keySet, error) {
	var (
		set keySet
		err error
	)

	if set.accessPrivate, err = jwt.ParseRSAPrivateKeyFromPEM([]byte(secret.PrivateKey)); err != nil {
		return nil, fmt.Errorf("access private key: %w", err)
	}
	if set.accessPublic, err = jwt.ParseRSAPublicKeyFromPEM([]byte(secret.PublicKey)); err != nil {
		return nil, fmt.Errorf("access public key: %w", err)
	}
	if set.refreshPrivate, err = jwt.ParseRSAPrivateKeyFromPEM([]byte(secret.RefreshPrivateKey)); err != nil {
		return nil, fmt.Errorf("refresh private key: %w", err)
	}
	if set.refreshPublic, err = jwt.ParseRSAPublicKeyFromPEM([]byte(secret.RefreshPublicKey)); err != nil {
		return nil, fmt.Errorf("refresh public key: %w", err)
	}

	return &set, nil
}
