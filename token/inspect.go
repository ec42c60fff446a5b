// Package token inspects bearer tokens for display purposes. The client
// treats tokens as opaque credentials: claims are parsed without signature
// verification and no validity decision is ever made from them — expiry is
// the backend's responsibility.
package token

import (
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

// Claims is the displayable subset of a bearer token's payload.
type Claims struct {
	Subject   string         `json:"sub,omitempty"`
	Issuer    string         `json:"iss,omitempty"`
	IssuedAt  *time.Time     `json:"iat,omitempty"`
	ExpiresAt *time.Time     `json:"exp,omitempty"`
	Raw       map[string]any `json:"-"`
}

// InspectDisplayClaims parses the token WITHOUT verifying its signature and
// returns the claims for display. Callers must not use the result to decide
// whether the session is valid.
func InspectDisplayClaims(rawToken string) (*Claims, error) {
	if strings.TrimSpace(rawToken) == "" {
		return nil, errors.New("[InspectDisplayClaims] empty token")
	}

	parsed, _, err := jwtlib.NewParser().ParseUnverified(rawToken, jwtlib.MapClaims{})
	if err != nil {
		return nil, errors.Wrap(err, "[InspectDisplayClaims] ParseUnverified")
	}

	mapClaims, ok := parsed.Claims.(jwtlib.MapClaims)
	if !ok {
		return nil, errors.New("[InspectDisplayClaims] unexpected claims type")
	}

	claims := &Claims{Raw: mapClaims}
	if sub, err := mapClaims.GetSubject(); err == nil {
		claims.Subject = sub
	}
	if iss, err := mapClaims.GetIssuer(); err == nil {
		claims.Issuer = iss
	}
	if iat, err := mapClaims.GetIssuedAt(); err == nil && iat != nil {
		claims.IssuedAt = &iat.Time
	}
	if exp, err := mapClaims.GetExpirationTime(); err == nil && exp != nil {
		claims.ExpiresAt = &exp.Time
	}
	return claims, nil
}
