// Package session holds the in-memory credentials for the logged-in account:
// the session access token for our own API and the short-lived music-platform
// token refreshed through it.
package session

import (
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// expirySkew is subtracted from token expiries so a token about to lapse
// mid-request already reads as unusable.
const expirySkew = 30 * time.Second

// Session implements api.TokenSource.
type Session struct {
	mu sync.Mutex

	sessionToken  string
	sessionExpiry time.Time // zero when the token carries no exp claim

	platformToken  string
	platformExpiry time.Time

	now func() time.Time
}

// New creates an empty session.
func New() *Session {
	return &Session{now: time.Now}
}

// SetCredentials installs the session access token. When the token is a JWT,
// its exp claim is read (unverified — the server is the authority, we only
// want to skip doomed requests) so expiry can be decided locally.
func (s *Session) SetCredentials(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessionToken = token
	s.sessionExpiry = time.Time{}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err == nil {
		if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
			s.sessionExpiry = exp.Time
		}
	}
}

// SessionToken returns the session credential if one is installed and not
// known to be expired. Returning false here means "not authenticated": no
// network call should be made.
func (s *Session) SessionToken() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sessionToken == "" {
		return "", false
	}
	if !s.sessionExpiry.IsZero() && s.now().After(s.sessionExpiry.Add(-expirySkew)) {
		return "", false
	}
	return s.sessionToken, true
}

// SetPlatformToken stores a freshly minted music-platform token.
func (s *Session) SetPlatformToken(token string, expiresAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.platformToken = token
	s.platformExpiry = expiresAt
}

// PlatformToken returns the platform token if present and unexpired.
func (s *Session) PlatformToken() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.platformToken == "" {
		return "", false
	}
	if !s.platformExpiry.IsZero() && s.now().After(s.platformExpiry.Add(-expirySkew)) {
		return "", false
	}
	return s.platformToken, true
}

// Clear drops all credentials; used on logout.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessionToken = ""
	s.sessionExpiry = time.Time{}
	s.platformToken = ""
	s.platformExpiry = time.Time{}
}
