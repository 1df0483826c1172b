package mfa

import (
	"context"
	"fmt"

	"github.com/andressep95/identity-service/internal/domain"
)

const TypeEmail = "EMAIL"

// Verifier checks and dispatches verification codes for one MFA type
type Verifier interface {
	Type() string
	// SendChallenge generates a fresh code for the user and delivers it to destination.
	SendChallenge(ctx context.Context, userID, domainID, destination, language string) error
	// CheckCode fails with domain.ErrInvalidMFACode unless code matches the outstanding one.
	CheckCode(ctx context.Context, userID, domainID, code string) error
}

// Registry resolves verifiers by MFA type
type Registry struct {
	verifiers map[string]Verifier
}

func NewRegistry(verifiers ...Verifier) *Registry {
	r := &Registry{verifiers: make(map[string]Verifier, len(verifiers))}
	for _, v := range verifiers {
		r.verifiers[v.Type()] = v
	}
	return r
}

func (r *Registry) Get(mfaType string) (Verifier, error) {
	v, ok := r.verifiers[mfaType]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedMFAType, mfaType)
	}
	return v, nil
}
