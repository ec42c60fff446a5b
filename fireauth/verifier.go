// Package fireauth implements the phone-verification provider contract over
// the Firebase Identity Toolkit REST API. It dispatches one-time codes bound
// to an anti-abuse challenge token and classifies confirmation failures into
// the login coordinator's error classes.
package fireauth

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/ridebook/go-ride-client/auth"
)

const (
	defaultBaseURL = "https://identitytoolkit.googleapis.com/v1"
	defaultTimeout = 30 * time.Second
)

// ChallengeProvider supplies the anti-abuse challenge token bound to a page
// container. Reset tears the current challenge instance down so that a resend
// never reuses a stale one.
type ChallengeProvider interface {
	Challenge(ctx context.Context, containerID string) (string, error)
	Reset(containerID string)
}

// StaticChallenge is a ChallengeProvider returning a pre-obtained token.
// Suitable for test phone numbers and headless use.
type StaticChallenge string

func (s StaticChallenge) Challenge(ctx context.Context, containerID string) (string, error) {
	return string(s), nil
}

func (s StaticChallenge) Reset(containerID string) {}

var _ auth.Verifier = (*Verifier)(nil)

// Verifier requests and confirms one-time codes via the Identity Toolkit
// phone endpoints.
type Verifier struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	challenges ChallengeProvider
	logger     zerolog.Logger
}

// VerifierOption modifies a Verifier instance.
type VerifierOption func(*Verifier)

// WithBaseURL points the verifier at a different endpoint (testing).
func WithBaseURL(baseURL string) VerifierOption {
	return func(v *Verifier) {
		v.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) VerifierOption {
	return func(v *Verifier) {
		v.httpClient = hc
	}
}

func NewVerifier(apiKey string, challenges ChallengeProvider, logger zerolog.Logger, options ...VerifierOption) *Verifier {
	v := &Verifier{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
		challenges: challenges,
		logger:     logger,
	}
	for _, opt := range options {
		opt(v)
	}
	return v
}

// ResetChallenge tears down the challenge bound to the container.
func (v *Verifier) ResetChallenge(containerID string) {
	v.challenges.Reset(containerID)
}

// RequestCode obtains a challenge token for the container and asks the
// provider to dispatch a one-time code. The returned confirmation wraps the
// provider's session handle.
func (v *Verifier) RequestCode(ctx context.Context, phoneE164, containerID string) (auth.Confirmation, error) {
	challenge, err := v.challenges.Challenge(ctx, containerID)
	if err != nil {
		return nil, errors.Wrap(err, "[Verifier.RequestCode] challenge")
	}

	var resp struct {
		SessionInfo string `json:"sessionInfo"`
	}
	body := map[string]string{
		"phoneNumber":    phoneE164,
		"recaptchaToken": challenge,
	}
	if err := v.post(ctx, "/accounts:sendVerificationCode", body, &resp); err != nil {
		return nil, errors.Wrap(err, "[Verifier.RequestCode] sendVerificationCode")
	}
	if resp.SessionInfo == "" {
		return nil, errors.New("[Verifier.RequestCode] no session info in response")
	}
	return &confirmation{verifier: v, sessionInfo: resp.SessionInfo}, nil
}

// confirmation holds the provider session for one verification attempt.
type confirmation struct {
	verifier    *Verifier
	sessionInfo string
}

func (c *confirmation) Confirm(ctx context.Context, code string) (*auth.ExternalIdentity, error) {
	var resp struct {
		LocalID     string `json:"localId"`
		PhoneNumber string `json:"phoneNumber"`
	}
	body := map[string]string{
		"sessionInfo": c.sessionInfo,
		"code":        code,
	}
	if err := c.verifier.post(ctx, "/accounts:signInWithPhoneNumber", body, &resp); err != nil {
		return nil, classify(err)
	}
	return &auth.ExternalIdentity{UID: resp.LocalID, Phone: resp.PhoneNumber}, nil
}

// providerError is the Identity Toolkit error body.
type providerError struct {
	Code    int
	Message string
}

func (e *providerError) Error() string {
	return e.Message
}

// classify maps provider error messages onto the coordinator's three error
// classes.
func classify(err error) error {
	var pErr *providerError
	if !errors.As(err, &pErr) {
		return errors.Wrap(auth.VerifyFailedErr, err.Error())
	}
	switch {
	case strings.Contains(pErr.Message, "INVALID_CODE"):
		return auth.InvalidCodeErr
	case strings.Contains(pErr.Message, "SESSION_EXPIRED"),
		strings.Contains(pErr.Message, "CODE_EXPIRED"):
		return auth.ExpiredCodeErr
	default:
		return errors.Wrap(auth.VerifyFailedErr, pErr.Message)
	}
}

func (v *Verifier) post(ctx context.Context, path string, body, out any) error {
	encoded, err := json.Marshal(body)
	if err != nil {
		return errors.Wrap(err, "marshal body")
	}

	url := v.baseURL + path + "?key=" + v.apiKey
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(encoded))
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "request")
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "read body")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var wrapper struct {
			Error providerError `json:"error"`
		}
		if err := json.Unmarshal(payload, &wrapper); err == nil && wrapper.Error.Message != "" {
			return &wrapper.Error
		}
		return &providerError{Code: resp.StatusCode, Message: strings.TrimSpace(string(payload))}
	}

	if out == nil || len(payload) == 0 {
		return nil
	}
	return errors.Wrap(json.Unmarshal(payload, out), "decode response")
}
