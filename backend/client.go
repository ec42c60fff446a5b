// Package backend is the REST client for the remote ride-booking backend. It
// covers the token exchange, the user registry and push-token registration.
// Response bodies with polymorphic shapes are normalized before they reach
// callers.
package backend

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/ridebook/go-ride-client/users"
)

const defaultTimeout = 30 * time.Second

// TokenSource supplies the stored bearer token when no explicit token is
// passed with a request. Satisfied by sessions.Store.
type TokenSource interface {
	Token() string
}

// APIError is a non-2xx backend response.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend error (%d): %s", e.StatusCode, e.Body)
}

// IsNotFound reports whether err is an APIError with status 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// Client talks JSON to the backend. Authenticated requests carry
// "Authorization: Bearer <token>"; an explicit token argument takes precedence
// over the stored session token.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	logger     zerolog.Logger
}

// ClientOption modifies a Client instance.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying HTTP client (primarily for testing).
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func NewClient(baseURL string, tokens TokenSource, logger zerolog.Logger, options ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		tokens:     tokens,
		logger:     logger,
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// GenerateToken exchanges the static application credential for a bearer
// token. The credential authenticates the client application, not a user.
func (c *Client) GenerateToken(ctx context.Context, key, password string) (string, error) {
	var resp struct {
		Token string `json:"token"`
	}
	body := map[string]string{"key": key, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/generate/token", body, "", &resp); err != nil {
		return "", errors.Wrap(err, "[Client.GenerateToken]")
	}
	if resp.Token == "" {
		return "", errors.New("[Client.GenerateToken] no token in response")
	}
	return resp.Token, nil
}

// FindByPhone looks up the identity record for a phone number (digits only)
// and normalizes the polymorphic response shape.
func (c *Client) FindByPhone(ctx context.Context, phoneDigits string) (users.Lookup, error) {
	var raw json.RawMessage
	path := "/api/users/find/" + url.PathEscape(phoneDigits)
	if err := c.do(ctx, http.MethodGet, path, nil, "", &raw); err != nil {
		if IsNotFound(err) {
			return users.Lookup{Status: users.LookupNotFound}, nil
		}
		return users.Lookup{}, errors.Wrap(err, "[Client.FindByPhone]")
	}
	return NormalizeUserResponse(raw), nil
}

// Register creates a new identity record. The backend may return an empty
// body; callers re-fetch by phone to learn the assigned id.
func (c *Client) Register(ctx context.Context, user *users.User) error {
	if err := c.do(ctx, http.MethodPost, "/api/users/register", user, "", nil); err != nil {
		return errors.Wrap(err, "[Client.Register]")
	}
	return nil
}

// Update pushes a full identity record; the id travels in the body.
func (c *Client) Update(ctx context.Context, user *users.User) (*users.User, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodPatch, "/api/users/update", user, "", &raw); err != nil {
		return nil, errors.Wrap(err, "[Client.Update]")
	}
	lookup := NormalizeUserResponse(raw)
	if lookup.Status != users.LookupFound {
		// Some deployments ack with an empty body; echo the request back.
		return user, nil
	}
	return lookup.User, nil
}

var _ users.Directory = (*Client)(nil)

// do sends one JSON request and decodes a JSON response into out (skipped if
// out is nil). A non-2xx status yields an *APIError.
func (c *Client) do(ctx context.Context, method, path string, body any, token string, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "[Client.do] marshal body")
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return errors.Wrap(err, "[Client.do] build request")
	}
	req.Header.Set("Content-Type", "application/json")
	if bearer := c.bearer(token); bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrapf(err, "[Client.do] %s %s", method, path)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "[Client.do] read body")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Debug().Int("status", resp.StatusCode).Str("path", path).Msg("backend request failed")
		return &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(payload))}
	}

	if out == nil || len(payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return errors.Wrap(err, "[Client.do] decode response")
	}
	return nil
}

// bearer picks the token for a request: the explicit argument wins, then the
// stored session token.
func (c *Client) bearer(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if c.tokens != nil {
		return c.tokens.Token()
	}
	return ""
}
