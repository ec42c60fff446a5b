// Package auth drives the two-phase phone-verification login flow and keeps
// the backend identity record in step with it.
package auth

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/ridebook/go-ride-client/sessions"
	"github.com/ridebook/go-ride-client/users"
)

// State is the coordinator's position in the login flow.
type State string

const (
	StateIdle          State = "idle"
	StateChallengeSent State = "challenge_sent"
	StateVerifying     State = "verifying"
	StateAuthenticated State = "authenticated"
	StateFailed        State = "failed"
)

// DefaultContainerID names the page container the anti-abuse challenge widget
// binds to.
const DefaultContainerID = "recaptcha-container"

// Credential is the static application credential presented at the token
// exchange endpoint.
type Credential struct {
	Key      string
	Password string
}

// Deps holds all collaborator dependencies for the Coordinator.
type Deps struct {
	Verifier   Verifier          // Phone-verification provider
	Sessions   *sessions.Store   // Bearer token and identity cache
	Exchanger  TokenExchanger    // Static-credential token endpoint
	Reconciler *users.Reconciler // Backend identity reconciliation
	Push       PushRegistrar     // Optional; fire-and-forget token forwarding
}

// CoordinatorOption modifies a Coordinator instance.
type CoordinatorOption func(*Coordinator)

// WithContainerID overrides the challenge container name.
func WithContainerID(id string) CoordinatorOption {
	return func(c *Coordinator) {
		c.containerID = id
	}
}

// Coordinator is the OTP login state machine. One instance serves one login
// surface; methods are safe for concurrent use but re-entrant triggers are
// rejected with RequestInFlightErr while a call is suspended.
type Coordinator struct {
	deps        Deps
	credential  Credential
	containerID string
	logger      zerolog.Logger

	lock         sync.Mutex
	state        State
	confirmation Confirmation
	phoneE164    string
	phoneDigits  string
	inFlight     bool
}

// NewCoordinator initializes a Coordinator with required dependencies.
func NewCoordinator(deps Deps, credential Credential, logger zerolog.Logger, options ...CoordinatorOption) (*Coordinator, error) {
	if deps.Verifier == nil {
		return nil, errors.New("[NewCoordinator] Verifier is required")
	}
	if deps.Sessions == nil {
		return nil, errors.New("[NewCoordinator] Sessions store is required")
	}
	if deps.Exchanger == nil {
		return nil, errors.New("[NewCoordinator] TokenExchanger is required")
	}
	if deps.Reconciler == nil {
		return nil, errors.New("[NewCoordinator] Reconciler is required")
	}

	c := &Coordinator{
		deps:        deps,
		credential:  credential,
		containerID: DefaultContainerID,
		logger:      logger,
		state:       StateIdle,
	}
	for _, opt := range options {
		opt(c)
	}
	return c, nil
}

// State returns the coordinator's current state.
func (c *Coordinator) State() State {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.state
}

// Reset discards any held confirmation handle and returns to Idle.
func (c *Coordinator) Reset() {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.confirmation = nil
	c.state = StateIdle
}

// RequestCode normalizes the phone number, tears down any previous anti-abuse
// challenge and dispatches a one-time code. A second call before verification
// invalidates the earlier confirmation handle.
func (c *Coordinator) RequestCode(ctx context.Context, phoneRaw string) error {
	if Digits(phoneRaw) == "" {
		return PhoneRequiredErr
	}
	if err := c.begin(); err != nil {
		return err
	}
	defer c.end()

	e164 := NormalizeE164(phoneRaw)

	c.lock.Lock()
	// Any prior handle is single-use and now stale.
	c.confirmation = nil
	c.phoneE164 = e164
	c.phoneDigits = Digits(phoneRaw)
	c.lock.Unlock()

	c.deps.Verifier.ResetChallenge(c.containerID)

	confirmation, err := c.deps.Verifier.RequestCode(ctx, e164, c.containerID)
	if err != nil {
		c.setState(StateIdle)
		return errors.Wrap(err, "[Coordinator.RequestCode] Verifier.RequestCode")
	}

	c.lock.Lock()
	c.confirmation = confirmation
	c.state = StateChallengeSent
	c.lock.Unlock()

	c.logger.Debug().Str("phone", e164).Msg("verification code dispatched")
	return nil
}

// VerifyCode submits the one-time code, exchanges the application credential
// for a bearer token, stores it, and reconciles the backend identity record.
//
// The bearer token is stored as soon as the exchange succeeds. A subsequent
// reconciliation failure is surfaced as an error without rolling the token
// back: login is intentionally partial in that case, and callers must treat
// the returned error as a failed login.
func (c *Coordinator) VerifyCode(ctx context.Context, code string) (*users.User, error) {
	if err := ValidateCode(code); err != nil {
		return nil, err
	}
	if err := c.begin(); err != nil {
		return nil, err
	}
	defer c.end()

	c.lock.Lock()
	confirmation := c.confirmation
	phoneDigits := c.phoneDigits
	if confirmation == nil {
		c.lock.Unlock()
		return nil, ReRequestRequiredErr
	}
	c.state = StateVerifying
	c.lock.Unlock()

	if _, err := confirmation.Confirm(ctx, code); err != nil {
		return nil, c.classifyVerifyFailure(err)
	}

	token, err := c.deps.Exchanger.GenerateToken(ctx, c.credential.Key, c.credential.Password)
	if err != nil {
		c.terminate(StateFailed)
		return nil, errors.Wrap(err, "[Coordinator.VerifyCode] GenerateToken")
	}

	// Store immediately so a reload mid-reconciliation keeps the session.
	c.deps.Sessions.SetSession(token, sessions.Identity{Phone: phoneDigits})

	// The handle is consumed by the successful confirmation.
	c.lock.Lock()
	c.confirmation = nil
	c.lock.Unlock()

	user, err := c.deps.Reconciler.Reconcile(ctx, phoneDigits)
	if err != nil {
		c.terminate(StateFailed)
		return nil, errors.Wrap(err, "[Coordinator.VerifyCode] Reconcile")
	}

	c.deps.Sessions.SetSession(token, sessions.Identity{
		UserID: user.UserID,
		Phone:  phoneDigits,
		Name:   user.Name,
	})

	if c.deps.Push != nil {
		go c.registerPushToken(user.UserID)
	}

	c.setState(StateAuthenticated)
	return user, nil
}

// Logout clears the stored session.
func (c *Coordinator) Logout() {
	c.deps.Sessions.Clear()
	c.Reset()
}

// classifyVerifyFailure maps a confirmation failure onto the per-attempt
// recovery rule: a wrong code keeps the handle so the user may retry without
// resending, an expired code (or any other terminal failure) requires a fresh
// request.
func (c *Coordinator) classifyVerifyFailure(err error) error {
	switch {
	case errors.Is(err, InvalidCodeErr):
		c.setState(StateChallengeSent)
		return InvalidCodeErr
	case errors.Is(err, ExpiredCodeErr):
		c.terminate(StateIdle)
		return ExpiredCodeErr
	default:
		c.terminate(StateFailed)
		return errors.Wrap(VerifyFailedErr, err.Error())
	}
}

// registerPushToken is the detached best-effort task forwarding an
// anonymously obtained delivery token to the now-known identity. Failure is
// only logged and never fails the login.
func (c *Coordinator) registerPushToken(userID string) {
	if err := c.deps.Push.RegisterStoredToken(context.Background(), userID); err != nil {
		c.logger.Debug().Err(err).Str("userId", userID).Msg("push token registration failed")
	}
}

func (c *Coordinator) begin() error {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.inFlight {
		return RequestInFlightErr
	}
	c.inFlight = true
	return nil
}

func (c *Coordinator) end() {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.inFlight = false
}

func (c *Coordinator) setState(s State) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.state = s
}

// terminate discards the confirmation handle and moves to the given state.
func (c *Coordinator) terminate(s State) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.confirmation = nil
	c.state = s
}
