package badgerkv_test

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/ridebook/go-ride-client/storage/badgerkv"
)

func TestTierInMemory(t *testing.T) {
	tier, err := badgerkv.OpenInMemory(zerolog.Nop())
	require.NoError(t, err)
	defer tier.Close()

	_, ok := tier.Get("missing")
	require.False(t, ok)

	tier.Set("k", "v1")
	v, ok := tier.Get("k")
	require.True(t, ok)
	require.Equal(t, "v1", v)

	tier.Delete("k")
	_, ok = tier.Get("k")
	require.False(t, ok)
}

func TestTierSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	logger := zerolog.Nop()

	tier, err := badgerkv.Open(dir, logger)
	require.NoError(t, err)
	tier.Set("ride_token", "jwt-value")
	require.NoError(t, tier.Close())

	reopened, err := badgerkv.Open(dir, logger)
	require.NoError(t, err)
	defer reopened.Close()

	v, ok := reopened.Get("ride_token")
	require.True(t, ok)
	require.Equal(t, "jwt-value", v)
}
