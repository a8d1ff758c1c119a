package auth

import (
	"errors"
	"testing"
	"time"

	"carteira/internal/core"
)

func TestHashAndCompare(t *testing.T) {
	if _, err := HashPassword("12345"); !errors.Is(err, ErrPasswordTooShort) {
		t.Fatalf("expected ErrPasswordTooShort, got %v", err)
	}
	hash, err := HashPassword("segredo1")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "segredo1" {
		t.Fatalf("hash must not equal the password")
	}
	if err := ComparePassword(hash, "segredo1"); err != nil {
		t.Fatalf("compare: %v", err)
	}
	if err := ComparePassword(hash, "outro"); !errors.Is(err, ErrPasswordMismatch) {
		t.Fatalf("expected mismatch, got %v", err)
	}
}

func TestTokenRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("0123456789abcdef0123456789abcdef")
	u := core.User{ID: "user-1", Email: "ana@example.com"}

	token, exp, err := issuer.Issue(u, time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	s, err := issuer.Parse(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if s.UserID != "user-1" || s.Email != "ana@example.com" {
		t.Fatalf("unexpected session: %+v", s)
	}
	if s.ExpiresAt.Unix() != exp.Unix() {
		t.Fatalf("expiry mismatch: %v vs %v", s.ExpiresAt, exp)
	}
}

func TestTokenExpired(t *testing.T) {
	issuer := NewTokenIssuer("0123456789abcdef0123456789abcdef")
	issued := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	issuer.now = func() time.Time { return issued }

	token, _, err := issuer.Issue(core.User{ID: "u"}, time.Minute)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	issuer.now = func() time.Time { return issued.Add(2 * time.Minute) }
	if _, err := issuer.Parse(token); !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}
}

func TestTokenWrongSecret(t *testing.T) {
	a := NewTokenIssuer("0123456789abcdef0123456789abcdef")
	b := NewTokenIssuer("ffffffffffffffffffffffffffffffff")
	token, _, _ := a.Issue(core.User{ID: "u"}, time.Hour)
	if _, err := b.Parse(token); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("expected ErrInvalidSession, got %v", err)
	}
	if _, err := a.Parse("garbage"); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("expected ErrInvalidSession for garbage, got %v", err)
	}
}
