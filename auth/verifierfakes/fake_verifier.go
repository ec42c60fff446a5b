package verifierfakes

import (
	"context"
	"sync"

	"github.com/ridebook/go-ride-client/auth"
)

var (
	_ auth.Verifier     = (*FakeVerifier)(nil)
	_ auth.Confirmation = (*FakeConfirmation)(nil)
)

// FakeVerifier is a scripted auth.Verifier. Each RequestCode call issues a new
// FakeConfirmation bound to the configured code.
type FakeVerifier struct {
	lock sync.Mutex

	// AcceptCode is the code every issued confirmation accepts.
	AcceptCode string
	// RequestErr, when set, fails RequestCode.
	RequestErr error
	// ConfirmErr, when set, is returned by every confirmation regardless of
	// the submitted code.
	ConfirmErr error

	RequestCalls int
	ResetCalls   int
	Issued       []*FakeConfirmation
}

func NewFakeVerifier(acceptCode string) *FakeVerifier {
	return &FakeVerifier{AcceptCode: acceptCode}
}

func (v *FakeVerifier) ResetChallenge(containerID string) {
	v.lock.Lock()
	defer v.lock.Unlock()
	v.ResetCalls++
}

func (v *FakeVerifier) RequestCode(ctx context.Context, phoneE164, containerID string) (auth.Confirmation, error) {
	v.lock.Lock()
	defer v.lock.Unlock()

	v.RequestCalls++
	if v.RequestErr != nil {
		return nil, v.RequestErr
	}
	confirmation := &FakeConfirmation{
		verifier:   v,
		phone:      phoneE164,
		acceptCode: v.AcceptCode,
	}
	v.Issued = append(v.Issued, confirmation)
	return confirmation, nil
}

// FakeConfirmation accepts exactly the code it was issued with. The issuing
// verifier's ConfirmErr is consulted at confirm time, so tests may script a
// failure after the code was dispatched.
type FakeConfirmation struct {
	lock sync.Mutex

	verifier   *FakeVerifier
	phone      string
	acceptCode string

	ConfirmCalls int
}

func (c *FakeConfirmation) Confirm(ctx context.Context, code string) (*auth.ExternalIdentity, error) {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.verifier.lock.Lock()
	confirmErr := c.verifier.ConfirmErr
	c.verifier.lock.Unlock()

	c.ConfirmCalls++
	if confirmErr != nil {
		return nil, confirmErr
	}
	if code != c.acceptCode {
		return nil, auth.InvalidCodeErr
	}
	return &auth.ExternalIdentity{UID: "fake-uid", Phone: c.phone}, nil
}
