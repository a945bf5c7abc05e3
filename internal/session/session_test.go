package session

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "u1",
		"exp": exp.Unix(),
	})
	s, err := tok.SignedString([]byte("test-key"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}

func TestEmptySession(t *testing.T) {
	s := New()
	if _, ok := s.SessionToken(); ok {
		t.Error("empty session should have no token")
	}
	if _, ok := s.PlatformToken(); ok {
		t.Error("empty session should have no platform token")
	}
}

func TestOpaqueTokenNeverExpiresLocally(t *testing.T) {
	s := New()
	s.SetCredentials("opaque-token-no-jwt")
	s.now = func() time.Time { return time.Now().Add(100 * 365 * 24 * time.Hour) }

	tok, ok := s.SessionToken()
	if !ok || tok != "opaque-token-no-jwt" {
		t.Errorf("got (%q, %v); a token without an exp claim is the server's to reject", tok, ok)
	}
}

func TestJWTExpiryReadLocally(t *testing.T) {
	base := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	s := New()
	s.SetCredentials(signedToken(t, base.Add(time.Hour)))

	s.now = func() time.Time { return base }
	if _, ok := s.SessionToken(); !ok {
		t.Fatal("token should be valid well before exp")
	}

	// Inside the skew window the token already reads as unusable.
	s.now = func() time.Time { return base.Add(time.Hour - 10*time.Second) }
	if _, ok := s.SessionToken(); ok {
		t.Error("token within the expiry skew should read as expired")
	}

	s.now = func() time.Time { return base.Add(2 * time.Hour) }
	if _, ok := s.SessionToken(); ok {
		t.Error("token past exp should read as expired")
	}
}

func TestPlatformTokenExpiry(t *testing.T) {
	base := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	s := New()
	s.now = func() time.Time { return base }

	s.SetPlatformToken("pt", base.Add(time.Hour))
	if tok, ok := s.PlatformToken(); !ok || tok != "pt" {
		t.Fatalf("got (%q, %v), want (pt, true)", tok, ok)
	}

	s.now = func() time.Time { return base.Add(time.Hour) }
	if _, ok := s.PlatformToken(); ok {
		t.Error("platform token should read as expired")
	}

	// A refreshed token replaces the expired one.
	s.SetPlatformToken("pt2", base.Add(2*time.Hour))
	if tok, ok := s.PlatformToken(); !ok || tok != "pt2" {
		t.Errorf("got (%q, %v), want (pt2, true)", tok, ok)
	}
}

func TestClear(t *testing.T) {
	s := New()
	s.SetCredentials("tok")
	s.SetPlatformToken("pt", time.Now().Add(time.Hour))

	s.Clear()

	if _, ok := s.SessionToken(); ok {
		t.Error("session token should be gone")
	}
	if _, ok := s.PlatformToken(); ok {
		t.Error("platform token should be gone")
	}
}
