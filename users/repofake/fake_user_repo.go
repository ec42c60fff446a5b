package fakeuserrepo

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/ridebook/go-ride-client/users"
)

var _ users.Directory = (*FakeDirectory)(nil)

// FakeDirectory is an in-memory users.Directory that records call counts so
// tests can assert on the reconciliation call sequence.
type FakeDirectory struct {
	lock    sync.Mutex
	byPhone map[string]*users.User

	FindCalls     int
	RegisterCalls int
	UpdateCalls   int

	// FindErr, when set, is returned by FindByPhone for phones with no record
	// instead of a LookupNotFound result.
	FindErr error
	// RegisterErr, when set, fails Register.
	RegisterErr error
	// MalformedPhones returns LookupMalformed for the listed phones.
	MalformedPhones map[string]bool
}

func NewFakeDirectory() *FakeDirectory {
	return &FakeDirectory{
		byPhone:         make(map[string]*users.User),
		MalformedPhones: make(map[string]bool),
	}
}

// Seed stores a user keyed by phone, assigning an id when absent.
func (d *FakeDirectory) Seed(user *users.User) *users.User {
	d.lock.Lock()
	defer d.lock.Unlock()

	if user.UserID == "" {
		user.UserID = uuid.New().String()
	}
	d.byPhone[user.Phone] = user
	return user
}

func (d *FakeDirectory) FindByPhone(ctx context.Context, phoneDigits string) (users.Lookup, error) {
	d.lock.Lock()
	defer d.lock.Unlock()

	d.FindCalls++
	if d.MalformedPhones[phoneDigits] {
		return users.Lookup{Status: users.LookupMalformed}, nil
	}
	user, ok := d.byPhone[phoneDigits]
	if !ok {
		if d.FindErr != nil {
			return users.Lookup{}, d.FindErr
		}
		return users.Lookup{Status: users.LookupNotFound}, nil
	}
	return users.Lookup{Status: users.LookupFound, User: user}, nil
}

func (d *FakeDirectory) Register(ctx context.Context, user *users.User) error {
	d.lock.Lock()
	defer d.lock.Unlock()

	d.RegisterCalls++
	if d.RegisterErr != nil {
		return d.RegisterErr
	}
	created := *user
	created.UserID = uuid.New().String()
	d.byPhone[created.Phone] = &created
	return nil
}

func (d *FakeDirectory) Update(ctx context.Context, user *users.User) (*users.User, error) {
	d.lock.Lock()
	defer d.lock.Unlock()

	d.UpdateCalls++
	updated := *user
	d.byPhone[updated.Phone] = &updated
	return &updated, nil
}
