package notify_test

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/ridebook/go-ride-client/notify"
	"github.com/ridebook/go-ride-client/storage/memkv"
)

func newTestCache(tier *memkv.Tier) *notify.Cache {
	// No bus: broadcast behaviour is covered by the ingest tests.
	return notify.NewCache(tier, nil, zerolog.Nop())
}

func note(id, title string) notify.Notification {
	return notify.Notification{ID: id, Title: title, Timestamp: time.Now()}
}

func TestCache_Ordering(t *testing.T) {
	cache := newTestCache(memkv.New())

	cache.Add(note("a", "A"))
	cache.Add(note("b", "B"))
	cache.Add(note("c", "C"))

	log := cache.List()
	require.Len(t, log, 3)
	require.Equal(t, []string{"c", "b", "a"}, []string{log[0].ID, log[1].ID, log[2].ID})
}

func TestCache_MarkRead(t *testing.T) {
	t.Run("transition is one-way", func(t *testing.T) {
		cache := newTestCache(memkv.New())
		cache.Add(note("a", "A"))

		cache.MarkRead("a")
		require.True(t, cache.List()[0].Read)

		// A second call is a harmless no-op.
		cache.MarkRead("a")
		require.True(t, cache.List()[0].Read)
	})

	t.Run("unknown id changes nothing", func(t *testing.T) {
		cache := newTestCache(memkv.New())
		cache.Add(note("a", "A"))

		cache.MarkRead("missing")
		log := cache.List()
		require.Len(t, log, 1)
		require.False(t, log[0].Read)
	})
}

func TestCache_UnreadCount(t *testing.T) {
	cache := newTestCache(memkv.New())
	cache.Add(note("a", "A"))
	cache.Add(note("b", "B"))
	require.Equal(t, 2, cache.UnreadCount())

	cache.MarkRead("a")
	require.Equal(t, 1, cache.UnreadCount())
}

func TestCache_CorruptStorage(t *testing.T) {
	t.Run("unreadable log reads as empty", func(t *testing.T) {
		tier := memkv.New()
		tier.Set("ride_notifications", "{not json")

		cache := newTestCache(tier)
		require.Empty(t, cache.List())
	})

	t.Run("writes recover the log", func(t *testing.T) {
		tier := memkv.New()
		tier.Set("ride_notifications", "{not json")

		cache := newTestCache(tier)
		cache.Add(note("a", "A"))
		require.Len(t, cache.List(), 1)
	})
}

func TestCache_PersistsAcrossInstances(t *testing.T) {
	tier := memkv.New()

	first := newTestCache(tier)
	first.Add(note("a", "A"))

	second := newTestCache(tier)
	log := second.List()
	require.Len(t, log, 1)
	require.Equal(t, "a", log[0].ID)
}
