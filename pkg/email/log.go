package email

import (
	"context"
	"log"
)

// LogSender writes codes to the process log instead of mailing them. Development only.
type LogSender struct{}

func (LogSender) SendMFACode(_ context.Context, msg *MFACodeMessage) error {
	log.Printf("[EMAIL] MFA code for user %s <%s>: %s", msg.UserID, msg.To, msg.Code)
	return nil
}
