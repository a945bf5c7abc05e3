// Package api implements the authenticated request client for the resonate
// backend. It attaches the bearer session credential, classifies transport
// and HTTP outcomes into the closed error taxonomy, and runs the one-shot
// platform-token refresh-retry protocol for music-platform backed calls.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/resonatefm/resonate/internal/domain"
	"golang.org/x/time/rate"
)

const (
	defaultTimeout = 30 * time.Second
	userAgent      = "Resonate/1.0"

	platformTokenHeader = "X-Platform-Token"
	deviceHeader        = "X-Resonate-Device"
)

// TokenSource resolves credentials for outgoing requests. The session token
// authenticates against our own API; the platform token is the third-party
// music-platform credential refreshed through the session.
type TokenSource interface {
	SessionToken() (string, bool)
	PlatformToken() (string, bool)
	SetPlatformToken(token string, expiresAt time.Time)
}

// Client implements domain.API against the resonate HTTP backend.
type Client struct {
	baseURL    string
	session    TokenSource
	deviceID   string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewClient creates a new API client. The limiter keeps bursty screens from
// hammering the backend; it is generous enough to never delay a single
// screen's fan-out.
func NewClient(baseURL string, session TokenSource, deviceID string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:  baseURL,
		session:  session,
		deviceID: deviceID,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(10), 20),
		logger:  logger,
	}
}

// errorBody is the structured error payload returned on non-2xx responses.
type errorBody struct {
	ErrorCode string `json:"errorCode"`
	Error     string `json:"error"`
}

// do performs one authenticated request and decodes the response into out.
//
// Outcomes map onto the taxonomy as follows: missing session credential →
// NotAuthenticated (no network call); transport failure → NetworkError, or
// RequestCancelled when the context was aborted; non-2xx → ServerError with
// the structured error body when present; undecodable success body →
// DecodingError. platformToken, when non-empty, is attached for
// platform-backed endpoints.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}, platformToken string) error {
	token, ok := c.session.SessionToken()
	if !ok {
		return domain.E(domain.KindNotAuthenticated, "no session credential")
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return domain.Wrap(domain.KindCancelled, err)
	}

	reqURL := fmt.Sprintf("%s%s", c.baseURL, path)
	if query != nil {
		reqURL = fmt.Sprintf("%s?%s", reqURL, query.Encode())
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return domain.Wrap(domain.KindInternalState, err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reqBody)
	if err != nil {
		return domain.Wrap(domain.KindInternalState, err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set(deviceHeader, c.deviceID)
	req.Header.Set("User-Agent", userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if platformToken != "" {
		req.Header.Set(platformTokenHeader, platformToken)
	}

	c.logger.Debug("api request", "method", method, "path", path)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return domain.Wrap(domain.KindCancelled, ctx.Err())
		}
		c.logger.Error("api request failed", "path", path, "error", err)
		return domain.Wrap(domain.KindNetwork, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.Wrap(domain.KindNetwork, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &domain.Error{Kind: domain.KindServer, Status: resp.StatusCode}
		var eb errorBody
		if json.Unmarshal(respBody, &eb) == nil && (eb.ErrorCode != "" || eb.Error != "") {
			apiErr.Code = eb.ErrorCode
			apiErr.Message = eb.Error
		} else {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		c.logger.Error("api request error", "path", path, "status", resp.StatusCode, "code", apiErr.Code)
		return apiErr
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			c.logger.Error("api decode error", "path", path, "error", err, "bodyLen", len(respBody))
			return domain.Wrap(domain.KindDecoding, err)
		}
	}
	return nil
}

// serverErrorCode extracts the structured error code from a server error.
func serverErrorCode(err error) string {
	var de *domain.Error
	if errors.As(err, &de) && de.Kind == domain.KindServer {
		return de.Code
	}
	return ""
}
