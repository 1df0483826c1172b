package mfa

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/andressep95/identity-service/internal/domain"
	"github.com/andressep95/identity-service/pkg/email"
)

type recordingSender struct {
	sent []*email.MFACodeMessage
	err  error
}

func (s *recordingSender) SendMFACode(_ context.Context, msg *email.MFACodeMessage) error {
	s.sent = append(s.sent, msg)
	return s.err
}

func newTestVerifier(t *testing.T, sender email.Sender) (*EmailVerifier, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	v := NewEmailVerifier(client, sender, 5*time.Minute, time.Second)
	v.generate = func() (string, error) { return "123456", nil }
	return v, mr
}

func TestEmailChallengeThenCheck(t *testing.T) {
	sender := &recordingSender{}
	v, _ := newTestVerifier(t, sender)
	ctx := context.Background()

	if err := v.SendChallenge(ctx, "u1", "d1", "u1@example.com", "ko"); err != nil {
		t.Fatalf("SendChallenge: %v", err)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("expected one dispatch, got %d", len(sender.sent))
	}
	msg := sender.sent[0]
	if msg.To != "u1@example.com" || msg.Code != "123456" || msg.Language != "ko" {
		t.Fatalf("unexpected message: %+v", msg)
	}

	if err := v.CheckCode(ctx, "u1", "d1", "000000"); !errors.Is(err, domain.ErrInvalidMFACode) {
		t.Fatalf("expected ErrInvalidMFACode for wrong code, got %v", err)
	}
	if err := v.CheckCode(ctx, "u1", "d1", "123456"); err != nil {
		t.Fatalf("CheckCode: %v", err)
	}
	if err := v.CheckCode(ctx, "u1", "d1", "123456"); !errors.Is(err, domain.ErrInvalidMFACode) {
		t.Fatalf("code must be single use, got %v", err)
	}
}

func TestEmailCodeExpires(t *testing.T) {
	v, mr := newTestVerifier(t, &recordingSender{})
	ctx := context.Background()

	if err := v.SendChallenge(ctx, "u1", "d1", "u1@example.com", "en"); err != nil {
		t.Fatalf("SendChallenge: %v", err)
	}
	mr.FastForward(6 * time.Minute)

	if err := v.CheckCode(ctx, "u1", "d1", "123456"); !errors.Is(err, domain.ErrInvalidMFACode) {
		t.Fatalf("expected expired code to be rejected, got %v", err)
	}
}

func TestEmailCodesScopedByDomain(t *testing.T) {
	v, _ := newTestVerifier(t, &recordingSender{})
	ctx := context.Background()

	if err := v.SendChallenge(ctx, "u1", "d1", "u1@example.com", "en"); err != nil {
		t.Fatalf("SendChallenge: %v", err)
	}
	if err := v.CheckCode(ctx, "u1", "d2", "123456"); !errors.Is(err, domain.ErrInvalidMFACode) {
		t.Fatalf("code must not verify in another domain, got %v", err)
	}
}

func TestEmailDeliveryFailureKeepsCause(t *testing.T) {
	sender := &recordingSender{err: email.ErrTransportUnavailable}
	v, _ := newTestVerifier(t, sender)

	err := v.SendChallenge(context.Background(), "u1", "d1", "u1@example.com", "en")
	if !errors.Is(err, email.ErrTransportUnavailable) {
		t.Fatalf("expected transport error to propagate, got %v", err)
	}
}

func TestRegistryRejectsUnknownType(t *testing.T) {
	v, _ := newTestVerifier(t, &recordingSender{})
	registry := NewRegistry(v)

	if got, err := registry.Get(TypeEmail); err != nil || got != v {
		t.Fatalf("expected email verifier, got %v %v", got, err)
	}
	if _, err := registry.Get("OTP"); !errors.Is(err, domain.ErrUnsupportedMFAType) {
		t.Fatalf("expected ErrUnsupportedMFAType, got %v", err)
	}
}

func TestGenerateCodeFormat(t *testing.T) {
	for i := 0; i < 20; i++ {
		code, err := generateCode()
		if err != nil {
			t.Fatalf("generateCode: %v", err)
		}
		if len(code) != 6 {
			t.Fatalf("expected six digits, got %q", code)
		}
	}
}
