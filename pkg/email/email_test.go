package email

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestMFACodeTemplateLanguages(t *testing.T) {
	tests := []struct {
		language string
		subject  string
	}{
		{"en", "Your verification code"},
		{"ko", "인증 코드 안내"},
		{"ko-KR", "인증 코드 안내"},
		{"ja_JP", "認証コードのお知らせ"},
		{"fr", "Your verification code"},
		{"", "Your verification code"},
	}

	for _, tt := range tests {
		t.Run(tt.language, func(t *testing.T) {
			subject, html := MFACodeTemplate(tt.language, "u1", "482913", 5*time.Minute)
			if subject != tt.subject {
				t.Fatalf("expected subject %q, got %q", tt.subject, subject)
			}
			if !strings.Contains(html, "482913") || !strings.Contains(html, "u1") {
				t.Fatal("body must carry the code and the user id")
			}
		})
	}
}

func TestRelaySenderPostsRenderedMail(t *testing.T) {
	var got RelayRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(RelayResponse{Success: true})
	}))
	defer server.Close()

	sender, err := NewRelaySender(&EmailConfig{BaseURL: server.URL})
	if err != nil {
		t.Fatalf("NewRelaySender: %v", err)
	}

	err = sender.SendMFACode(context.Background(), &MFACodeMessage{
		To: "u1@example.com", UserID: "u1", Code: "123456", Language: "ja", TTL: 5 * time.Minute,
	})
	if err != nil {
		t.Fatalf("SendMFACode: %v", err)
	}
	if got.Type != "mfa_code" || got.To != "u1@example.com" || !strings.Contains(got.HTML, "123456") {
		t.Fatalf("unexpected relay request: %+v", got)
	}
}

func TestRelaySenderErrors(t *testing.T) {
	rejecting := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(RelayResponse{Error: "invalid recipient"})
	}))
	defer rejecting.Close()

	overloaded := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer overloaded.Close()

	closed := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	closedURL := closed.URL
	closed.Close()

	tests := []struct {
		name        string
		url         string
		unavailable bool
	}{
		{"rejected", rejecting.URL, false},
		{"overloaded", overloaded.URL, true},
		{"unreachable", closedURL, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender, _ := NewRelaySender(&EmailConfig{BaseURL: tt.url, Timeout: time.Second})
			err := sender.SendMFACode(context.Background(), &MFACodeMessage{To: "a@b.c", Code: "000000"})
			if err == nil {
				t.Fatal("expected an error")
			}
			if errors.Is(err, ErrTransportUnavailable) != tt.unavailable {
				t.Fatalf("unavailable=%v, got %v", tt.unavailable, err)
			}
		})
	}
}

func TestNewResendSenderRequiresConfig(t *testing.T) {
	if _, err := NewResendSender(&EmailConfig{FromEmail: "no-reply@example.com"}); err == nil {
		t.Fatal("expected missing api key error")
	}
	if _, err := NewResendSender(&EmailConfig{APIKey: "re_test"}); err == nil {
		t.Fatal("expected missing from error")
	}
}
