// Package sessions owns the bearer credential and the minimal identity fields
// cached next to it. State is mirrored across two storage tiers so that a
// process restart mid-flow does not lose login state.
//
// Read precedence is fixed and documented: the primary (volatile) tier is
// consulted first, then the fallback (durable) tier. Writes go through to both
// tiers; a session is "logged in" when a bearer token is present in either.
package sessions

import (
	"github.com/ridebook/go-ride-client/storage"
)

// Storage keys shared by both tiers.
const (
	tokenKey         = "ride_token"
	userIDKey        = "userId"
	phoneKey         = "userPhone"
	nameKey          = "userName"
	deliveryTokenKey = "fcmToken"
)

// Identity holds the fields cached alongside the bearer token. It is a cache
// of the backend identity record, not the record itself.
type Identity struct {
	UserID string
	Phone  string
	Name   string
}

// Store is the single injectable session abstraction. All call sites read and
// write through it; nothing else touches the underlying tiers directly.
type Store struct {
	primary  storage.Tier
	fallback storage.Tier
}

func NewStore(primary, fallback storage.Tier) *Store {
	return &Store{primary: primary, fallback: fallback}
}

// SetSession replaces the whole session in both tiers. No token format
// validation is performed; storage failures are swallowed by the tiers.
func (s *Store) SetSession(token string, identity Identity) {
	s.setBoth(tokenKey, token)
	s.setBoth(userIDKey, identity.UserID)
	s.setBoth(phoneKey, identity.Phone)
	s.setBoth(nameKey, identity.Name)
}

// Token returns the bearer token, or "" when absent in both tiers.
func (s *Store) Token() string {
	return s.read(tokenKey)
}

// LoggedIn reports whether a bearer token is present in either tier.
func (s *Store) LoggedIn() bool {
	return s.Token() != ""
}

// Identity returns the cached identity fields.
func (s *Store) Identity() Identity {
	return Identity{
		UserID: s.read(userIDKey),
		Phone:  s.read(phoneKey),
		Name:   s.read(nameKey),
	}
}

// SetDeliveryToken stores the push delivery token in both tiers, overwriting
// any previous one.
func (s *Store) SetDeliveryToken(token string) {
	s.setBoth(deliveryTokenKey, token)
}

// DeliveryToken returns the stored push delivery token, or "" when absent.
func (s *Store) DeliveryToken() string {
	return s.read(deliveryTokenKey)
}

// Clear removes the token and identity fields from both tiers. Used on
// explicit logout. The delivery token is kept: it identifies the device, not
// the user.
func (s *Store) Clear() {
	for _, key := range []string{tokenKey, userIDKey, phoneKey, nameKey} {
		s.primary.Delete(key)
		s.fallback.Delete(key)
	}
}

func (s *Store) setBoth(key, value string) {
	if value == "" {
		s.primary.Delete(key)
		s.fallback.Delete(key)
		return
	}
	s.primary.Set(key, value)
	s.fallback.Set(key, value)
}

func (s *Store) read(key string) string {
	if v, ok := s.primary.Get(key); ok {
		return v
	}
	if v, ok := s.fallback.Get(key); ok {
		return v
	}
	return ""
}
