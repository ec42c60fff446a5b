package auth

import "context"

// ExternalIdentity is the provider's verified view of the caller after a
// successful code confirmation. It is opaque to the backend; only the phone
// matters for reconciliation.
type ExternalIdentity struct {
	UID   string
	Phone string
}

// Confirmation is the provider-issued handle required to complete one
// verification attempt. A handle accepts at most one terminal Confirm call;
// the coordinator discards it afterwards.
type Confirmation interface {
	// Confirm submits the one-time code. Failures are classified onto
	// InvalidCodeErr, ExpiredCodeErr or VerifyFailedErr.
	Confirm(ctx context.Context, code string) (*ExternalIdentity, error)
}

// Verifier is the third-party phone-verification provider.
type Verifier interface {
	// ResetChallenge tears down any anti-abuse challenge previously bound to
	// the container, preventing stale-session errors on resend.
	ResetChallenge(containerID string)
	// RequestCode builds a fresh anti-abuse challenge bound to containerID
	// and dispatches a one-time code to the E.164 phone number.
	RequestCode(ctx context.Context, phoneE164, containerID string) (Confirmation, error)
}

// TokenExchanger trades the static application credential for a bearer token.
// This endpoint authenticates the client application, not the end user.
type TokenExchanger interface {
	GenerateToken(ctx context.Context, key, password string) (string, error)
}

// PushRegistrar forwards an already-obtained delivery token to the backend
// once an identity id is known. Invoked fire-and-forget after login.
type PushRegistrar interface {
	RegisterStoredToken(ctx context.Context, userID string) error
}
