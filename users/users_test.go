package users_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ridebook/go-ride-client/users"
)

func TestDefaultDisplayName(t *testing.T) {
	require.Equal(t, "User3210", users.DefaultDisplayName("9876543210"))
	require.Equal(t, "User321", users.DefaultDisplayName("321"))
	require.Equal(t, "User", users.DefaultDisplayName(""))
}

func TestNewMinimal(t *testing.T) {
	u := users.NewMinimal("9876543210")
	require.Equal(t, "User3210", u.Name)
	require.Equal(t, "9876543210", u.Phone)
	require.Equal(t, users.RoleUser, u.Role)
	require.True(t, u.Verified)
	require.Empty(t, u.UserID)
}
