package email

import (
	"context"
	"fmt"
	"log"

	"github.com/resend/resend-go/v2"
)

// ResendSender implements Sender using Resend
type ResendSender struct {
	client *resend.Client
	config *EmailConfig
}

// NewResendSender creates a new Resend sender
func NewResendSender(config *EmailConfig) (*ResendSender, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("resend API key is required")
	}

	if config.FromEmail == "" {
		return nil, fmt.Errorf("from email is required")
	}

	return &ResendSender{
		client: resend.NewClient(config.APIKey),
		config: config,
	}, nil
}

// SendMFACode sends a localized verification code mail
func (s *ResendSender) SendMFACode(ctx context.Context, msg *MFACodeMessage) error {
	subject, html := MFACodeTemplate(msg.Language, msg.UserID, msg.Code, msg.TTL)

	params := &resend.SendEmailRequest{
		From:    s.config.from(),
		To:      []string{msg.To},
		Subject: subject,
		Html:    html,
	}

	sent, err := s.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		log.Printf("[EMAIL] Failed to send MFA code to %s: %v", msg.To, err)
		if unreachable(err) {
			return fmt.Errorf("%w: %v", ErrTransportUnavailable, err)
		}
		return fmt.Errorf("failed to send MFA code email: %w", err)
	}

	log.Printf("[EMAIL] MFA code sent to %s (ID: %s)", msg.To, sent.Id)
	return nil
}
