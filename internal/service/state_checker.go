package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/andressep95/identity-service/internal/cache"
	"github.com/andressep95/identity-service/internal/domain"
	"github.com/andressep95/identity-service/internal/repository"
)

// StateChecker verifies that domains and workspaces are ENABLED. The observed state is cached
// for the TTL, so a state change may take up to one TTL to be noticed. Lookup misses are
// never cached.
type StateChecker struct {
	domains    repository.DomainRepository
	workspaces repository.WorkspaceRepository
	cache      cache.Cache
	ttl        time.Duration
}

func NewStateChecker(
	domains repository.DomainRepository,
	workspaces repository.WorkspaceRepository,
	c cache.Cache,
	ttl time.Duration,
) *StateChecker {
	if ttl <= 0 {
		ttl = cache.DefaultTTL
	}

	return &StateChecker{
		domains:    domains,
		workspaces: workspaces,
		cache:      c,
		ttl:        ttl,
	}
}

// CheckDomain fails with domain.ErrDomainDisabled unless the domain is ENABLED.
func (s *StateChecker) CheckDomain(ctx context.Context, domainID string) error {
	state, err := s.cachedState(ctx, cache.DomainStateKey(domainID), func() (domain.State, error) {
		d, err := s.domains.GetByID(ctx, domainID)
		if err != nil {
			return "", err
		}
		return d.State, nil
	})
	if err != nil {
		return err
	}

	if state != domain.StateEnabled {
		return fmt.Errorf("%w: domain %s is %s", domain.ErrDomainDisabled, domainID, state)
	}

	return nil
}

// CheckWorkspace fails with domain.ErrPermissionDenied when the workspace is missing or not
// ENABLED.
func (s *StateChecker) CheckWorkspace(ctx context.Context, workspaceID, domainID string) error {
	state, err := s.cachedState(ctx, cache.WorkspaceStateKey(domainID, workspaceID), func() (domain.State, error) {
		w, err := s.workspaces.GetByID(ctx, workspaceID, domainID)
		if err != nil {
			return "", err
		}
		return w.State, nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("%w: %w", domain.ErrPermissionDenied, err)
		}
		return err
	}

	if state != domain.StateEnabled {
		return fmt.Errorf("%w: %w: workspace %s is %s", domain.ErrPermissionDenied, domain.ErrWorkspaceDisabled, workspaceID, state)
	}

	return nil
}

func (s *StateChecker) cachedState(ctx context.Context, key string, load func() (domain.State, error)) (domain.State, error) {
	var state domain.State
	found, err := s.cache.Get(ctx, key, &state)
	if err != nil {
		log.Printf("[STATE] Cache read failed for %s: %v", key, err)
	}
	if found {
		return state, nil
	}

	state, err = load()
	if err != nil {
		return "", err
	}

	if err := s.cache.Set(ctx, key, state, s.ttl); err != nil {
		log.Printf("[STATE] Cache write failed for %s: %v", key, err)
	}

	return state, nil
}
