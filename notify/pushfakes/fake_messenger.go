package pushfakes

import (
	"context"
	"sync"

	"github.com/ridebook/go-ride-client/notify"
)

var _ notify.Messenger = (*FakeMessenger)(nil)

// FakeMessenger is a scripted push-messaging provider. Deliver pushes a
// message to the currently subscribed foreground handler.
type FakeMessenger struct {
	lock sync.Mutex

	// PermissionGranted is the answer to RequestPermission.
	PermissionGranted bool
	// PermissionErr, when set, fails RequestPermission.
	PermissionErr error
	// Token is returned by DeliveryToken.
	Token string
	// KeyedTokenErr fails only the request carrying a VAPID key, exercising
	// the parameterless fallback path.
	KeyedTokenErr error
	// TokenErr fails every token request.
	TokenErr error

	TokenCalls     []notify.TokenOptions
	SubscribeCalls int

	handler func(notify.InboundMessage)
}

func NewFakeMessenger(token string) *FakeMessenger {
	return &FakeMessenger{PermissionGranted: true, Token: token}
}

func (m *FakeMessenger) RequestPermission(ctx context.Context) (bool, error) {
	if m.PermissionErr != nil {
		return false, m.PermissionErr
	}
	return m.PermissionGranted, nil
}

func (m *FakeMessenger) DeliveryToken(ctx context.Context, opts notify.TokenOptions) (string, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.TokenCalls = append(m.TokenCalls, opts)
	if m.TokenErr != nil {
		return "", m.TokenErr
	}
	if opts.VAPIDKey != "" && m.KeyedTokenErr != nil {
		return "", m.KeyedTokenErr
	}
	return m.Token, nil
}

func (m *FakeMessenger) Subscribe(handler func(notify.InboundMessage)) (func(), error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.SubscribeCalls++
	m.handler = handler
	return func() {
		m.lock.Lock()
		defer m.lock.Unlock()
		m.handler = nil
	}, nil
}

// Deliver simulates a foreground message arrival.
func (m *FakeMessenger) Deliver(msg notify.InboundMessage) {
	m.lock.Lock()
	handler := m.handler
	m.lock.Unlock()

	if handler != nil {
		handler(msg)
	}
}

// FakeRegistrar records backend token registrations.
type FakeRegistrar struct {
	lock sync.Mutex

	Err           error
	Registrations []Registration
}

type Registration struct {
	UserID string
	Token  string
}

var _ notify.Registrar = (*FakeRegistrar)(nil)

func (r *FakeRegistrar) RegisterToken(ctx context.Context, userID, token string) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if r.Err != nil {
		return r.Err
	}
	r.Registrations = append(r.Registrations, Registration{UserID: userID, Token: token})
	return nil
}

// Count returns the number of successful registrations.
func (r *FakeRegistrar) Count() int {
	r.lock.Lock()
	defer r.lock.Unlock()
	return len(r.Registrations)
}
