package auth

import "errors"

var (
	PhoneRequiredErr = errors.New("phone number is required")
	CodeRequiredErr  = errors.New("verification code is required")
	CodeLengthErr    = errors.New("verification code must be 6 digits")

	// ReRequestRequiredErr is returned when no confirmation handle is held,
	// e.g. after a restart or after a terminal verification failure. The
	// caller must request a fresh code; no network call is attempted.
	ReRequestRequiredErr = errors.New("code re-request required")

	// RequestInFlightErr rejects re-entrant triggers while a previous
	// request or verification is still suspended.
	RequestInFlightErr = errors.New("request already in flight")

	// Provider error classes. Verifier implementations map provider-specific
	// failures onto these three.
	InvalidCodeErr  = errors.New("invalid verification code")
	ExpiredCodeErr  = errors.New("verification code expired")
	VerifyFailedErr = errors.New("verification failed")
)
