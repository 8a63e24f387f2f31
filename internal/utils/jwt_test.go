package utils

import (
	"testing"
	"time"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	t.Parallel()

	secret := "super-secret"
	tok, err := NewAccessToken(secret, 42, "alice", "ADMIN", []string{"session:read", "session:write"}, "dev-1", "10.0.0.5", time.Hour)
	if err != nil {
		t.Fatalf("NewAccessToken error: %v", err)
	}
	if tok.Token == "" {
		t.Fatal("empty token")
	}

	claims, err := ParseClaims(secret, tok.Token)
	if err != nil {
		t.Fatalf("ParseClaims error: %v", err)
	}
	if claims.UserID != 42 {
		t.Fatalf("user id mismatch: got %d want 42", claims.UserID)
	}
	if claims.Username != "alice" {
		t.Fatalf("username mismatch: got %q", claims.Username)
	}
	if claims.UserType != "ADMIN" {
		t.Fatalf("user type mismatch: got %q", claims.UserType)
	}
	if len(claims.Authorities) != 2 || claims.Authorities[0] != "session:read" {
		t.Fatalf("authorities mismatch: %v", claims.Authorities)
	}
	if claims.DeviceID != "dev-1" {
		t.Fatalf("device id mismatch: got %q", claims.DeviceID)
	}
	if claims.ClientIP != "10.0.0.5" {
		t.Fatalf("client ip mismatch: got %q", claims.ClientIP)
	}
	if claims.TokenType != TokenTypeAccess {
		t.Fatalf("token type mismatch: got %q", claims.TokenType)
	}
}

func TestRefreshTokenOmitsClientIP(t *testing.T) {
	t.Parallel()

	tok, err := NewRefreshToken("k", 7, "bob", "CUSTOMER", []string{"profile:read"}, "dev-2", time.Hour)
	if err != nil {
		t.Fatalf("NewRefreshToken error: %v", err)
	}
	claims, err := ParseClaims("k", tok.Token)
	if err != nil {
		t.Fatalf("ParseClaims error: %v", err)
	}
	if claims.ClientIP != "" {
		t.Fatalf("refresh token should carry no client ip, got %q", claims.ClientIP)
	}
	if claims.TokenType != TokenTypeRefresh {
		t.Fatalf("token type mismatch: got %q", claims.TokenType)
	}
}

func TestParseClaims_Expired(t *testing.T) {
	t.Parallel()

	tok, err := NewAccessToken("k", 1, "u", "CUSTOMER", nil, "d", "", -time.Second)
	if err != nil {
		t.Fatalf("NewAccessToken error: %v", err)
	}
	if _, err := ParseClaims("k", tok.Token); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestParseClaims_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := NewAccessToken("right-secret", 1, "u", "CUSTOMER", nil, "d", "", time.Hour)
	if err != nil {
		t.Fatalf("NewAccessToken error: %v", err)
	}
	if _, err := ParseClaims("wrong-secret", tok.Token); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken for wrong secret, got %v", err)
	}
}

func TestParseClaims_Malformed(t *testing.T) {
	t.Parallel()

	if _, err := ParseClaims("k", "not.a.jwt"); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken for malformed token, got %v", err)
	}
	if _, err := ParseClaims("k", ""); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken for empty token, got %v", err)
	}
}

func TestRemainingLife(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	c := &TokenClaims{ExpiresAt: now.Add(time.Minute)}
	if d := c.RemainingLife(now); d <= 0 || d > time.Minute {
		t.Fatalf("unexpected remaining life: %v", d)
	}
	c = &TokenClaims{ExpiresAt: now.Add(-time.Minute)}
	if d := c.RemainingLife(now); d != 0 {
		t.Fatalf("expired token should have zero remaining life, got %v", d)
	}
}

func TestFingerprintToken(t *testing.T) {
	t.Parallel()

	a := FingerprintToken("token-a")
	b := FingerprintToken("token-b")
	if a == b {
		t.Fatal("distinct tokens must not share a fingerprint")
	}
	if a != FingerprintToken("token-a") {
		t.Fatal("fingerprint must be deterministic")
	}
	if len(a) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(a))
	}
}
