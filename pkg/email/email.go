package email

import (
	"context"
	"errors"
	"net"
	"net/url"
	"time"
)

// ErrTransportUnavailable reports that the mail provider could not be reached at all, as
// opposed to a provider that answered and rejected the message.
var ErrTransportUnavailable = errors.New("mail transport unavailable")

// Sender delivers MFA verification codes
type Sender interface {
	SendMFACode(ctx context.Context, msg *MFACodeMessage) error
}

// MFACodeMessage is a single verification code delivery
type MFACodeMessage struct {
	To       string
	UserID   string
	Code     string
	Language string
	TTL      time.Duration
}

// EmailConfig holds email provider configuration
type EmailConfig struct {
	APIKey    string        // Resend API key
	FromEmail string        // sender address
	FromName  string        // sender display name
	BaseURL   string        // URL of the HTTP mail relay endpoint
	Timeout   time.Duration // HTTP request timeout
}

func (c *EmailConfig) from() string {
	if c.FromName == "" {
		return c.FromEmail
	}
	return c.FromName + " <" + c.FromEmail + ">"
}

// unreachable wraps connection level failures with ErrTransportUnavailable.
func unreachable(err error) bool {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
