package service

import (
	"context"
	"crypto/rsa"
	"fmt"

	"github.com/andressep95/identity-service/internal/domain"
	"github.com/andressep95/identity-service/internal/keys"
	"github.com/andressep95/identity-service/internal/repository"
)

type DomainService struct {
	domains repository.DomainRepository
	keys    keys.Provider
}

// DomainAuthInfo is what a login client needs to know about a domain before authenticating
type DomainAuthInfo struct {
	DomainID     string       `json:"domain_id"`
	Name         string       `json:"name"`
	State        domain.State `json:"state"`
	ExternalAuth bool         `json:"external_auth"`
}

func NewDomainService(domains repository.DomainRepository, keyProvider keys.Provider) *DomainService {
	return &DomainService{
		domains: domains,
		keys:    keyProvider,
	}
}

// GetAuthInfo looks a domain up by its unique name
func (s *DomainService) GetAuthInfo(ctx context.Context, name string) (*DomainAuthInfo, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: name", domain.ErrMissingParameter)
	}

	d, err := s.domains.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}

	return &DomainAuthInfo{
		DomainID:     d.DomainID,
		Name:         d.Name,
		State:        d.State,
		ExternalAuth: d.ExternalAuthEnabled(),
	}, nil
}

// PublicKey returns the access verification key of an existing domain
func (s *DomainService) PublicKey(ctx context.Context, domainID string) (*rsa.PublicKey, error) {
	if _, err := s.domains.GetByID(ctx, domainID); err != nil {
		return nil, err
	}

	return s.keys.PublicKey(ctx, domainID, domain.KeyPurposeAccess)
}
