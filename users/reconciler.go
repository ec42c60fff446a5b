package users

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

var (
	UserNotFoundErr      = errors.New("user not found after registration")
	MalformedResponseErr = errors.New("malformed user lookup response")
)

// Reconciler keeps the backend identity record in step with a freshly
// verified phone number: adopt the existing record's id when one exists,
// otherwise register a minimal record and re-fetch it to learn the assigned
// id.
type Reconciler struct {
	directory Directory
	logger    zerolog.Logger
}

func NewReconciler(directory Directory, logger zerolog.Logger) *Reconciler {
	return &Reconciler{directory: directory, logger: logger}
}

// Reconcile looks up the identity record for phoneDigits and returns it,
// creating it first when none exists. Exactly one registration call and one
// re-fetch happen on the creation path; none on the adoption path.
func (r *Reconciler) Reconcile(ctx context.Context, phoneDigits string) (*User, error) {
	lookup, err := r.directory.FindByPhone(ctx, phoneDigits)
	if err == nil {
		switch lookup.Status {
		case LookupFound:
			return lookup.User, nil
		case LookupMalformed:
			// Registering against a misbehaving backend risks duplicate
			// records, so a malformed response is surfaced instead.
			return nil, errors.Wrap(MalformedResponseErr, "[Reconciler.Reconcile] FindByPhone")
		}
	} else {
		r.logger.Debug().Err(err).Str("phone", phoneDigits).Msg("identity lookup failed, registering")
	}

	if err := r.directory.Register(ctx, NewMinimal(phoneDigits)); err != nil {
		return nil, errors.Wrap(err, "[Reconciler.Reconcile] Register")
	}

	lookup, err = r.directory.FindByPhone(ctx, phoneDigits)
	if err != nil {
		return nil, errors.Wrap(err, "[Reconciler.Reconcile] FindByPhone after Register")
	}
	if lookup.Status != LookupFound {
		return nil, errors.Wrap(UserNotFoundErr, "[Reconciler.Reconcile]")
	}
	return lookup.User, nil
}

// Update pushes an edited identity record to the backend. The id travels in
// the request body, never as a query parameter.
func (r *Reconciler) Update(ctx context.Context, user *User) (*User, error) {
	if user == nil || user.UserID == "" {
		return nil, errors.New("[Reconciler.Update] user id is required")
	}
	updated, err := r.directory.Update(ctx, user)
	if err != nil {
		return nil, errors.Wrap(err, "[Reconciler.Update] directory.Update")
	}
	return updated, nil
}
