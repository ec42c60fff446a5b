package sessions_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ridebook/go-ride-client/sessions"
	"github.com/ridebook/go-ride-client/storage/memkv"
)

func TestStore_SetSession(t *testing.T) {
	t.Run("write is idempotent", func(t *testing.T) {
		store := sessions.NewStore(memkv.New(), memkv.New())

		identity := sessions.Identity{UserID: "u-1", Phone: "9876543210", Name: "Asha"}
		store.SetSession("token-1", identity)
		store.SetSession("token-1", identity)

		require.Equal(t, "token-1", store.Token())
		require.True(t, store.LoggedIn())
		require.Equal(t, identity, store.Identity())
	})

	t.Run("replacement is full, not partial", func(t *testing.T) {
		store := sessions.NewStore(memkv.New(), memkv.New())

		store.SetSession("token-1", sessions.Identity{UserID: "u-1", Phone: "9876543210", Name: "Asha"})
		store.SetSession("token-2", sessions.Identity{Phone: "9876543210"})

		require.Equal(t, "token-2", store.Token())
		require.Empty(t, store.Identity().UserID)
		require.Empty(t, store.Identity().Name)
	})
}

func TestStore_ReadPrecedence(t *testing.T) {
	t.Run("primary tier wins", func(t *testing.T) {
		primary := memkv.New()
		fallback := memkv.New()
		store := sessions.NewStore(primary, fallback)

		primary.Set("ride_token", "primary-token")
		fallback.Set("ride_token", "fallback-token")
		require.Equal(t, "primary-token", store.Token())
	})

	t.Run("fallback tier serves when primary is empty", func(t *testing.T) {
		primary := memkv.New()
		fallback := memkv.New()
		store := sessions.NewStore(primary, fallback)

		// Simulates a restart: the volatile tier is gone, the durable one
		// still holds the session.
		fallback.Set("ride_token", "fallback-token")
		require.Equal(t, "fallback-token", store.Token())
		require.True(t, store.LoggedIn())
	})

	t.Run("absent in both means logged out", func(t *testing.T) {
		store := sessions.NewStore(memkv.New(), memkv.New())
		require.Empty(t, store.Token())
		require.False(t, store.LoggedIn())
	})
}

func TestStore_Clear(t *testing.T) {
	primary := memkv.New()
	fallback := memkv.New()
	store := sessions.NewStore(primary, fallback)

	store.SetSession("token-1", sessions.Identity{UserID: "u-1", Phone: "9876543210", Name: "Asha"})
	store.SetDeliveryToken("fcm-1")
	store.Clear()

	require.Empty(t, store.Token())
	require.False(t, store.LoggedIn())
	require.Equal(t, sessions.Identity{}, store.Identity())
	for _, key := range []string{"ride_token", "userId", "userPhone", "userName"} {
		_, ok := primary.Get(key)
		require.False(t, ok)
		_, ok = fallback.Get(key)
		require.False(t, ok)
	}

	// The delivery token identifies the device, not the user.
	require.Equal(t, "fcm-1", store.DeliveryToken())
}

func TestStore_DeliveryToken(t *testing.T) {
	store := sessions.NewStore(memkv.New(), memkv.New())

	require.Empty(t, store.DeliveryToken())
	store.SetDeliveryToken("fcm-1")
	store.SetDeliveryToken("fcm-2")
	// Re-registration overwrites rather than appends.
	require.Equal(t, "fcm-2", store.DeliveryToken())
}
