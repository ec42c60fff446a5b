package backend_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/goccy/go-json"

	"github.com/ridebook/go-ride-client/backend"
	"github.com/ridebook/go-ride-client/sessions"
	"github.com/ridebook/go-ride-client/storage/memkv"
	"github.com/ridebook/go-ride-client/users"
)

func newTestStore(token string) *sessions.Store {
	store := sessions.NewStore(memkv.New(), memkv.New())
	if token != "" {
		store.SetSession(token, sessions.Identity{})
	}
	return store
}

func TestClient_GenerateToken(t *testing.T) {
	t.Run("returns the exchanged token", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPost, r.Method)
			require.Equal(t, "/auth/generate/token", r.URL.Path)
			require.Equal(t, "application/json", r.Header.Get("Content-Type"))

			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			require.Equal(t, "RIDEBOOK", body["key"])

			_ = json.NewEncoder(w).Encode(map[string]string{"token": "bearer-1"})
		}))
		defer server.Close()

		client := backend.NewClient(server.URL, newTestStore(""), zerolog.Nop())
		token, err := client.GenerateToken(context.Background(), "RIDEBOOK", "secret")
		require.NoError(t, err)
		require.Equal(t, "bearer-1", token)
	})

	t.Run("empty token in response is an error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]string{})
		}))
		defer server.Close()

		client := backend.NewClient(server.URL, newTestStore(""), zerolog.Nop())
		_, err := client.GenerateToken(context.Background(), "RIDEBOOK", "secret")
		require.Error(t, err)
	})
}

func TestClient_FindByPhone(t *testing.T) {
	t.Run("stored session token rides along as bearer", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "Bearer stored-token", r.Header.Get("Authorization"))
			require.Equal(t, "/api/users/find/9876543210", r.URL.Path)
			_ = json.NewEncoder(w).Encode(map[string]string{"userId": "u-1", "phone": "9876543210"})
		}))
		defer server.Close()

		client := backend.NewClient(server.URL, newTestStore("stored-token"), zerolog.Nop())
		lookup, err := client.FindByPhone(context.Background(), "9876543210")
		require.NoError(t, err)
		require.Equal(t, "u-1", lookup.User.UserID)
	})

	t.Run("404 maps to not found", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "no such user", http.StatusNotFound)
		}))
		defer server.Close()

		client := backend.NewClient(server.URL, newTestStore(""), zerolog.Nop())
		lookup, err := client.FindByPhone(context.Background(), "9876543210")
		require.NoError(t, err)
		require.Equal(t, users.LookupNotFound, lookup.Status)
	})

	t.Run("5xx surfaces an API error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}))
		defer server.Close()

		client := backend.NewClient(server.URL, newTestStore(""), zerolog.Nop())
		_, err := client.FindByPhone(context.Background(), "9876543210")
		require.Error(t, err)

		var apiErr *backend.APIError
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	})
}

func TestClient_UpdateFCMToken(t *testing.T) {
	t.Run("falls back to register when update fails", func(t *testing.T) {
		var paths []string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			paths = append(paths, r.URL.Path)
			if r.URL.Path == "/api/common/notifications/update/fcm-token" {
				http.Error(w, "unknown token", http.StatusBadRequest)
				return
			}
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := backend.NewClient(server.URL, newTestStore(""), zerolog.Nop())
		err := client.UpdateFCMToken(context.Background(), backend.TokenRegistration{
			UserID: "u-1", FCMToken: "fcm-1", DeviceType: backend.DeviceTypeWeb, UserType: backend.UserTypeUser,
		})
		require.NoError(t, err)
		require.Equal(t, []string{
			"/api/common/notifications/update/fcm-token",
			"/api/common/notifications/register-token",
		}, paths)
	})

	t.Run("no fallback when update succeeds", func(t *testing.T) {
		var calls int
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := backend.NewClient(server.URL, newTestStore(""), zerolog.Nop())
		err := client.UpdateFCMToken(context.Background(), backend.TokenRegistration{UserID: "u-1", FCMToken: "fcm-1"})
		require.NoError(t, err)
		require.Equal(t, 1, calls)
	})
}
