package security

import (
	"errors"
	"strings"
	"testing"
)

func TestHashPasswordRequiresMinimumLength(t *testing.T) {
	if _, err := HashPassword("short"); !errors.Is(err, ErrPasswordTooShort) {
		t.Fatalf("expected ErrPasswordTooShort, got %v", err)
	}
}

func TestHashPasswordAndVerify(t *testing.T) {
	password := "this-is-a-long-password"
	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if !VerifyPassword(password, hash) {
		t.Fatalf("expected password verification to succeed")
	}
	if VerifyPassword("wrong-password", hash) {
		t.Fatalf("expected wrong password verification to fail")
	}
}

func TestVerifyRejectsMalformedHashes(t *testing.T) {
	password := "this-is-a-long-password"
	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	parts := strings.Split(hash, "$")

	cases := map[string]string{
		"empty":          "",
		"wrong version":  strings.Join([]string{"v0", parts[1], parts[2], parts[3]}, "$"),
		"weak rounds":    strings.Join([]string{parts[0], "10", parts[2], parts[3]}, "$"),
		"bad salt":       strings.Join([]string{parts[0], parts[1], "!!", parts[3]}, "$"),
		"short digest":   strings.Join([]string{parts[0], parts[1], parts[2], "AAAA"}, "$"),
		"missing fields": parts[0] + "$" + parts[1],
	}
	for name, encoded := range cases {
		if VerifyPassword(password, encoded) {
			t.Errorf("%s: expected verification to fail", name)
		}
	}
}

func TestNewSecret(t *testing.T) {
	a, err := NewSecret(32)
	if err != nil {
		t.Fatalf("new secret: %v", err)
	}
	b, err := NewSecret(32)
	if err != nil {
		t.Fatalf("new secret: %v", err)
	}
	if a == b {
		t.Fatalf("expected distinct secrets")
	}
	if len(a) != 43 {
		t.Fatalf("expected 43 encoded chars, got %d", len(a))
	}
	if _, err := NewSecret(0); err == nil {
		t.Fatalf("expected error for zero length")
	}
}
