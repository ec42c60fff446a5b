package auth_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/ridebook/go-ride-client/auth"
	"github.com/ridebook/go-ride-client/auth/verifierfakes"
	"github.com/ridebook/go-ride-client/sessions"
	"github.com/ridebook/go-ride-client/storage/memkv"
	"github.com/ridebook/go-ride-client/users"
	fakeuserrepo "github.com/ridebook/go-ride-client/users/repofake"
)

const (
	testPhone      = "9876543210"
	testPhoneE164  = "+919876543210"
	testCode       = "123456"
	testToken      = "bearer-token-1"
	testCredKey    = "RIDEBOOK"
	testCredSecret = "app-secret"
)

// fakeExchanger is a scripted TokenExchanger.
type fakeExchanger struct {
	token string
	err   error
	calls int
}

func (e *fakeExchanger) GenerateToken(ctx context.Context, key, password string) (string, error) {
	e.calls++
	if e.err != nil {
		return "", e.err
	}
	return e.token, nil
}

// fakePush records fire-and-forget registrations.
type fakePush struct {
	lock    sync.Mutex
	userIDs []string
}

func (p *fakePush) RegisterStoredToken(ctx context.Context, userID string) error {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.userIDs = append(p.userIDs, userID)
	return nil
}

func (p *fakePush) registered() []string {
	p.lock.Lock()
	defer p.lock.Unlock()
	return append([]string(nil), p.userIDs...)
}

type testFixture struct {
	verifier  *verifierfakes.FakeVerifier
	store     *sessions.Store
	exchanger *fakeExchanger
	directory *fakeuserrepo.FakeDirectory
	push      *fakePush
	service   *auth.Coordinator
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	verifier := verifierfakes.NewFakeVerifier(testCode)
	store := sessions.NewStore(memkv.New(), memkv.New())
	exchanger := &fakeExchanger{token: testToken}
	directory := fakeuserrepo.NewFakeDirectory()
	push := &fakePush{}

	service, err := auth.NewCoordinator(
		auth.Deps{
			Verifier:   verifier,
			Sessions:   store,
			Exchanger:  exchanger,
			Reconciler: users.NewReconciler(directory, zerolog.Nop()),
			Push:       push,
		},
		auth.Credential{Key: testCredKey, Password: testCredSecret},
		zerolog.Nop(),
	)
	require.NoError(t, err)

	return &testFixture{
		verifier:  verifier,
		store:     store,
		exchanger: exchanger,
		directory: directory,
		push:      push,
		service:   service,
	}
}

func TestCoordinator_RequestCode(t *testing.T) {
	t.Run("dispatch transitions to ChallengeSent", func(t *testing.T) {
		f := setupTestFixture(t)

		require.NoError(t, f.service.RequestCode(context.Background(), testPhone))
		require.Equal(t, auth.StateChallengeSent, f.service.State())
		require.Len(t, f.verifier.Issued, 1)
	})

	t.Run("empty phone rejected before any provider call", func(t *testing.T) {
		f := setupTestFixture(t)

		require.ErrorIs(t, f.service.RequestCode(context.Background(), "  "), auth.PhoneRequiredErr)
		require.Zero(t, f.verifier.RequestCalls)
	})

	t.Run("dispatch failure returns to Idle", func(t *testing.T) {
		f := setupTestFixture(t)
		f.verifier.RequestErr = errors.New("quota exceeded")

		require.Error(t, f.service.RequestCode(context.Background(), testPhone))
		require.Equal(t, auth.StateIdle, f.service.State())
	})

	t.Run("resend tears down the previous challenge", func(t *testing.T) {
		f := setupTestFixture(t)

		require.NoError(t, f.service.RequestCode(context.Background(), testPhone))
		require.NoError(t, f.service.RequestCode(context.Background(), testPhone))
		// One teardown per dispatch: the second dispatch discards the first
		// challenge before creating a new one.
		require.Equal(t, 2, f.verifier.ResetCalls)
		require.Len(t, f.verifier.Issued, 2)
	})
}

func TestCoordinator_VerifyCode(t *testing.T) {
	t.Run("end to end login for an existing identity", func(t *testing.T) {
		f := setupTestFixture(t)
		seeded := f.directory.Seed(&users.User{Name: "Asha", Phone: testPhone, Role: users.RoleUser})

		require.NoError(t, f.service.RequestCode(context.Background(), testPhone))
		user, err := f.service.VerifyCode(context.Background(), testCode)
		require.NoError(t, err)
		require.Equal(t, auth.StateAuthenticated, f.service.State())
		require.Equal(t, seeded.UserID, user.UserID)

		require.Equal(t, testToken, f.store.Token())
		require.Equal(t, seeded.UserID, f.store.Identity().UserID)
		require.Equal(t, testPhone, f.store.Identity().Phone)

		// No creation call for an existing identity.
		require.Zero(t, f.directory.RegisterCalls)
		require.Equal(t, 1, f.directory.FindCalls)
	})

	t.Run("unknown identity is created then re-fetched", func(t *testing.T) {
		f := setupTestFixture(t)

		require.NoError(t, f.service.RequestCode(context.Background(), testPhone))
		user, err := f.service.VerifyCode(context.Background(), testCode)
		require.NoError(t, err)

		require.Equal(t, 1, f.directory.RegisterCalls)
		require.Equal(t, 2, f.directory.FindCalls)
		require.NotEmpty(t, user.UserID)
		require.Equal(t, "User3210", user.Name)
		require.Equal(t, users.RoleUser, user.Role)
		require.True(t, user.Verified)
		require.Equal(t, user.UserID, f.store.Identity().UserID)
	})

	t.Run("verify without a handle fails fast", func(t *testing.T) {
		f := setupTestFixture(t)

		_, err := f.service.VerifyCode(context.Background(), testCode)
		require.ErrorIs(t, err, auth.ReRequestRequiredErr)
		require.Zero(t, f.exchanger.calls)
	})

	t.Run("handle is single use", func(t *testing.T) {
		f := setupTestFixture(t)
		f.directory.Seed(&users.User{Name: "Asha", Phone: testPhone})

		require.NoError(t, f.service.RequestCode(context.Background(), testPhone))
		_, err := f.service.VerifyCode(context.Background(), testCode)
		require.NoError(t, err)

		_, err = f.service.VerifyCode(context.Background(), testCode)
		require.ErrorIs(t, err, auth.ReRequestRequiredErr)
		require.Equal(t, 1, f.verifier.Issued[0].ConfirmCalls)
	})

	t.Run("wrong code keeps the handle for retry", func(t *testing.T) {
		f := setupTestFixture(t)
		f.directory.Seed(&users.User{Name: "Asha", Phone: testPhone})

		require.NoError(t, f.service.RequestCode(context.Background(), testPhone))
		_, err := f.service.VerifyCode(context.Background(), "654321")
		require.ErrorIs(t, err, auth.InvalidCodeErr)
		require.Equal(t, auth.StateChallengeSent, f.service.State())

		// Same handle still works for the right code.
		_, err = f.service.VerifyCode(context.Background(), testCode)
		require.NoError(t, err)
	})

	t.Run("expired code requires re-request", func(t *testing.T) {
		f := setupTestFixture(t)

		require.NoError(t, f.service.RequestCode(context.Background(), testPhone))
		f.verifier.ConfirmErr = auth.ExpiredCodeErr

		_, err := f.service.VerifyCode(context.Background(), testCode)
		require.ErrorIs(t, err, auth.ExpiredCodeErr)

		f.verifier.ConfirmErr = nil
		_, err = f.service.VerifyCode(context.Background(), testCode)
		require.ErrorIs(t, err, auth.ReRequestRequiredErr)
	})

	t.Run("token exchange failure is fatal and stores nothing", func(t *testing.T) {
		f := setupTestFixture(t)
		f.exchanger.err = errors.New("backend down")

		require.NoError(t, f.service.RequestCode(context.Background(), testPhone))
		_, err := f.service.VerifyCode(context.Background(), testCode)
		require.Error(t, err)
		require.Equal(t, auth.StateFailed, f.service.State())
		require.Empty(t, f.store.Token())
	})

	t.Run("reconciliation failure surfaces but the token stays stored", func(t *testing.T) {
		f := setupTestFixture(t)
		f.directory.RegisterErr = errors.New("registry down")

		require.NoError(t, f.service.RequestCode(context.Background(), testPhone))
		_, err := f.service.VerifyCode(context.Background(), testCode)
		require.Error(t, err)
		require.Equal(t, auth.StateFailed, f.service.State())
		// Deliberately not rolled back.
		require.Equal(t, testToken, f.store.Token())
	})

	t.Run("resend invalidates the first handle", func(t *testing.T) {
		f := setupTestFixture(t)
		f.directory.Seed(&users.User{Name: "Asha", Phone: testPhone})

		require.NoError(t, f.service.RequestCode(context.Background(), testPhone))
		first := f.verifier.Issued[0]

		require.NoError(t, f.service.RequestCode(context.Background(), testPhone))
		_, err := f.service.VerifyCode(context.Background(), testCode)
		require.NoError(t, err)

		// The first handle never saw a confirm call; only the fresh one did.
		require.Zero(t, first.ConfirmCalls)
		require.Equal(t, 1, f.verifier.Issued[1].ConfirmCalls)
	})

	t.Run("push registration is forwarded for the resolved identity", func(t *testing.T) {
		f := setupTestFixture(t)
		seeded := f.directory.Seed(&users.User{Name: "Asha", Phone: testPhone})

		require.NoError(t, f.service.RequestCode(context.Background(), testPhone))
		_, err := f.service.VerifyCode(context.Background(), testCode)
		require.NoError(t, err)

		require.Eventually(t, func() bool {
			ids := f.push.registered()
			return len(ids) == 1 && ids[0] == seeded.UserID
		}, time.Second, 10*time.Millisecond)
	})
}

func TestCoordinator_Logout(t *testing.T) {
	f := setupTestFixture(t)
	f.directory.Seed(&users.User{Name: "Asha", Phone: testPhone})

	require.NoError(t, f.service.RequestCode(context.Background(), testPhone))
	_, err := f.service.VerifyCode(context.Background(), testCode)
	require.NoError(t, err)
	require.True(t, f.store.LoggedIn())

	f.service.Logout()
	require.False(t, f.store.LoggedIn())
	require.Equal(t, auth.StateIdle, f.service.State())
}
