package users

import "context"

// LookupStatus classifies the shape of a backend identity lookup response.
type LookupStatus int

const (
	// LookupFound means a record was decoded and carries an id.
	LookupFound LookupStatus = iota
	// LookupNotFound means the backend reported no record for the phone.
	LookupNotFound
	// LookupMalformed means the response could not be interpreted as either.
	LookupMalformed
)

// Lookup is the normalized result of an identity-by-phone query. The backend
// sometimes returns the record directly, sometimes wrapped in a list and
// sometimes nested under a generic envelope field; callers only ever see this
// tagged form.
type Lookup struct {
	Status LookupStatus
	User   *User
}

// Directory is the remote user registry as seen by this client.
type Directory interface {
	FindByPhone(ctx context.Context, phoneDigits string) (Lookup, error)
	Register(ctx context.Context, user *User) error
	Update(ctx context.Context, user *User) (*User, error)
}
