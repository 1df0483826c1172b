package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/andressep95/identity-service/internal/domain"
	"github.com/andressep95/identity-service/internal/repository"
)

// ExternalAuthenticator forwards credentials to an external identity provider over HTTP. The
// provider answers with the user id it vouches for, which must be an EXTERNAL user of the domain.
// Only domains with external_auth enabled accept it.
type ExternalAuthenticator struct {
	client   *http.Client
	endpoint string
	domains  repository.DomainRepository
	users    repository.UserRepository
}

type externalAuthRequest struct {
	DomainID    string            `json:"domain_id"`
	Credentials map[string]string `json:"credentials"`
}

type externalAuthResponse struct {
	UserID string `json:"user_id"`
	Error  string `json:"error,omitempty"`
}

func NewExternalAuthenticator(
	endpoint string,
	timeout time.Duration,
	domains repository.DomainRepository,
	users repository.UserRepository,
) *ExternalAuthenticator {
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	return &ExternalAuthenticator{
		client:   &http.Client{Timeout: timeout},
		endpoint: endpoint,
		domains:  domains,
		users:    users,
	}
}

func (a *ExternalAuthenticator) AuthType() domain.AuthType {
	return domain.AuthTypeExternal
}

func (a *ExternalAuthenticator) Authenticate(ctx context.Context, req *Request) (*domain.Principal, error) {
	if a.endpoint == "" {
		return nil, fmt.Errorf("%w: external authentication is not configured", domain.ErrUnsupportedAuthType)
	}

	d, err := a.domains.GetByID(ctx, req.DomainID)
	if err != nil {
		return nil, err
	}
	if !d.ExternalAuthEnabled() {
		return nil, fmt.Errorf("%w: external authentication is disabled in domain %s", domain.ErrUnsupportedAuthType, req.DomainID)
	}

	userID, err := a.verify(ctx, req)
	if err != nil {
		return nil, reject(req.DomainID, "external provider: %v", err)
	}

	user, err := a.users.GetByID(ctx, userID, req.DomainID)
	if err != nil {
		return nil, failure(err, req.DomainID, "external user "+userID)
	}

	if user.Backend != domain.UserBackendExternal {
		return nil, reject(req.DomainID, "user %s is not an external user", userID)
	}
	if !user.IsEnabled() {
		return nil, reject(req.DomainID, "user %s is %s", userID, user.State)
	}

	return domain.UserPrincipal(user), nil
}

func (a *ExternalAuthenticator) verify(ctx context.Context, req *Request) (string, error) {
	jsonData, err := json.Marshal(externalAuthRequest{DomainID: req.DomainID, Credentials: req.Credentials})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create HTTP request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to reach identity provider: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	var result externalAuthResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("identity provider returned status %d: %s", resp.StatusCode, string(body))
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("identity provider rejected credentials: %s", result.Error)
	}
	if result.UserID == "" {
		return "", fmt.Errorf("identity provider returned no user id")
	}

	return result.UserID, nil
}
