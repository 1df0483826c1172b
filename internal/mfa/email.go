package mfa

import (
	"context"
	"crypto/rand"
	"fmt"
	"log"
	"math/big"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/andressep95/identity-service/internal/cache"
	"github.com/andressep95/identity-service/internal/domain"
	"github.com/andressep95/identity-service/pkg/email"
)

// consumeCode deletes the stored code only when it matches, so a wrong guess leaves the
// outstanding code usable until it expires.
var consumeCode = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	redis.call("DEL", KEYS[1])
	return 1
end
return 0
`)

// EmailVerifier stores six digit codes in Redis and mails them to the user
type EmailVerifier struct {
	redis       *redis.Client
	sender      email.Sender
	codeTTL     time.Duration
	sendTimeout time.Duration
	generate    func() (string, error)
}

func NewEmailVerifier(redisClient *redis.Client, sender email.Sender, codeTTL, sendTimeout time.Duration) *EmailVerifier {
	return &EmailVerifier{
		redis:       redisClient,
		sender:      sender,
		codeTTL:     codeTTL,
		sendTimeout: sendTimeout,
		generate:    generateCode,
	}
}

func (v *EmailVerifier) Type() string {
	return TypeEmail
}

func (v *EmailVerifier) SendChallenge(ctx context.Context, userID, domainID, destination, language string) error {
	code, err := v.generate()
	if err != nil {
		return fmt.Errorf("failed to generate verification code: %w", err)
	}

	if err := v.redis.Set(ctx, cache.MFACodeKey(domainID, userID), code, v.codeTTL).Err(); err != nil {
		return fmt.Errorf("failed to store verification code: %w", err)
	}

	sendCtx := ctx
	if v.sendTimeout > 0 {
		var cancel context.CancelFunc
		sendCtx, cancel = context.WithTimeout(ctx, v.sendTimeout)
		defer cancel()
	}

	err = v.sender.SendMFACode(sendCtx, &email.MFACodeMessage{
		To:       destination,
		UserID:   userID,
		Code:     code,
		Language: language,
		TTL:      v.codeTTL,
	})
	if err != nil {
		return fmt.Errorf("failed to deliver verification code: %w", err)
	}

	log.Printf("[MFA] Verification code sent to user %s in domain %s", userID, domainID)
	return nil
}

func (v *EmailVerifier) CheckCode(ctx context.Context, userID, domainID, code string) error {
	if code == "" {
		return domain.ErrInvalidMFACode
	}

	matched, err := consumeCode.Run(ctx, v.redis, []string{cache.MFACodeKey(domainID, userID)}, code).Int()
	if err != nil {
		return fmt.Errorf("failed to check verification code: %w", err)
	}
	if matched != 1 {
		return domain.ErrInvalidMFACode
	}

	return nil
}

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
