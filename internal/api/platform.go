package api

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/resonatefm/resonate/internal/domain"
)

// errCodePlatformTokenExpired is the distinguished error code the backend
// returns when the music-platform access token it was handed has expired.
// Only this code triggers the refresh-retry protocol; any other failure,
// including a plain 401, is terminal.
const errCodePlatformTokenExpired = "platform_token_expired"

// refreshTokenResponse is the session-refresh endpoint's payload: a new
// short-lived platform access credential plus its lifetime.
type refreshTokenResponse struct {
	AccessToken string `json:"accessToken"`
	ExpiresIn   int    `json:"expiresIn"` // seconds
}

// RefreshPlatformToken obtains a fresh music-platform token using the
// session credential (not the expired platform token) and stores it.
func (c *Client) RefreshPlatformToken(ctx context.Context) (string, error) {
	var resp refreshTokenResponse
	if err := c.do(ctx, http.MethodPost, "/v1/platform/token/refresh", nil, nil, &resp, ""); err != nil {
		return "", err
	}
	if resp.AccessToken == "" {
		return "", domain.E(domain.KindDecoding, "refresh response missing access token")
	}
	expiresAt := time.Now().Add(time.Duration(resp.ExpiresIn) * time.Second)
	c.session.SetPlatformToken(resp.AccessToken, expiresAt)
	c.logger.Debug("platform token refreshed", "expiresIn", resp.ExpiresIn)
	return resp.AccessToken, nil
}

// doPlatform wraps do with the token refresh-retry protocol for endpoints
// backed by the music platform.
//
// Attempt with the current platform token; if the backend signals the
// distinguished expired-token code, refresh once via the session credential
// and re-issue the original request exactly once. The retry's outcome is
// terminal either way — the budget is one refresh-and-retry cycle per call,
// never a loop.
func (c *Client) doPlatform(ctx context.Context, method, path string, query url.Values, out interface{}) error {
	token, ok := c.session.PlatformToken()
	if !ok {
		// No usable token on hand: refresh first, then a single attempt.
		fresh, err := c.RefreshPlatformToken(ctx)
		if err != nil {
			return err
		}
		return c.do(ctx, method, path, query, nil, out, fresh)
	}

	err := c.do(ctx, method, path, query, nil, out, token)
	if serverErrorCode(err) != errCodePlatformTokenExpired {
		return err
	}

	c.logger.Info("platform token expired, refreshing", "path", path)
	fresh, refreshErr := c.RefreshPlatformToken(ctx)
	if refreshErr != nil {
		return refreshErr
	}
	return c.do(ctx, method, path, query, nil, out, fresh)
}
