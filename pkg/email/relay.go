package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// RelaySender implements Sender by posting to an HTTP mail relay
type RelaySender struct {
	client     *http.Client
	serviceURL string
}

// RelayRequest represents the request body accepted by the mail relay
type RelayRequest struct {
	Type     string `json:"type"`
	To       string `json:"to"`
	UserID   string `json:"user_id"`
	Language string `json:"language"`
	Subject  string `json:"subject"`
	HTML     string `json:"html"`
}

// RelayResponse represents the response of the mail relay
type RelayResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// NewRelaySender creates a new HTTP relay sender
func NewRelaySender(config *EmailConfig) (*RelaySender, error) {
	if config.BaseURL == "" {
		return nil, fmt.Errorf("email service URL is required")
	}

	timeout := config.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	return &RelaySender{
		client:     &http.Client{Timeout: timeout},
		serviceURL: config.BaseURL,
	}, nil
}

// SendMFACode renders the code mail and hands it to the relay
func (s *RelaySender) SendMFACode(ctx context.Context, msg *MFACodeMessage) error {
	subject, html := MFACodeTemplate(msg.Language, msg.UserID, msg.Code, msg.TTL)

	req := &RelayRequest{
		Type:     "mfa_code",
		To:       msg.To,
		UserID:   msg.UserID,
		Language: msg.Language,
		Subject:  subject,
		HTML:     html,
	}

	if err := s.post(ctx, req); err != nil {
		log.Printf("[EMAIL] Failed to relay MFA code to %s: %v", msg.To, err)
		return err
	}

	log.Printf("[EMAIL] MFA code relayed to %s", msg.To)
	return nil
}

func (s *RelaySender) post(ctx context.Context, req *RelayRequest) error {
	jsonData, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.serviceURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create HTTP request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransportUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusBadGateway,
		resp.StatusCode == http.StatusServiceUnavailable,
		resp.StatusCode == http.StatusGatewayTimeout:
		return fmt.Errorf("%w: relay returned status %d", ErrTransportUnavailable, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		var errorResp RelayResponse
		if err := json.Unmarshal(body, &errorResp); err != nil || errorResp.Error == "" {
			return fmt.Errorf("email service returned status %d: %s", resp.StatusCode, string(body))
		}
		return fmt.Errorf("email service error: %s", errorResp.Error)
	}

	var successResp RelayResponse
	if err := json.Unmarshal(body, &successResp); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	if !successResp.Success {
		return fmt.Errorf("email service returned success=false: %s", successResp.Error)
	}

	return nil
}
