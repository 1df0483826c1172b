package hash

import (
	"errors"
	"testing"
)

// cheap parameters keep the suite fast
var testConfig = Argon2Config{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 8, KeyLength: 16}

func TestHashVerify(t *testing.T) {
	h := NewHasher(testConfig)

	encoded, err := h.Hash("correct horse")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}

	ok, err := h.Verify("correct horse", encoded)
	if err != nil || !ok {
		t.Fatalf("expected match, ok=%v err=%v", ok, err)
	}

	ok, err = h.Verify("battery staple", encoded)
	if err != nil || ok {
		t.Fatalf("expected mismatch, ok=%v err=%v", ok, err)
	}
}

func TestVerifyUsesStoredParameters(t *testing.T) {
	encoded, err := NewHasher(testConfig).Hash("secret")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}

	ok, err := NewHasher(DefaultConfig).Verify("secret", encoded)
	if err != nil || !ok {
		t.Fatalf("expected match across configs, ok=%v err=%v", ok, err)
	}
}

func TestVerifyInvalidHash(t *testing.T) {
	h := NewHasher(testConfig)

	tests := []struct {
		name    string
		encoded string
		want    error
	}{
		{"empty", "", ErrInvalidHash},
		{"bcrypt", "$2a$10$abcdefghijklmnopqrstuv", ErrInvalidHash},
		{"bad params", "$argon2id$v=19$m=x$c2FsdA$a2V5", ErrInvalidHash},
		{"old version", "$argon2id$v=16$m=1024,t=1,p=1$c2FsdA$a2V5", ErrIncompatibleVersion},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := h.Verify("secret", tt.encoded); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}
