package notify

import (
	"sync"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/ridebook/go-ride-client/bridge"
	"github.com/ridebook/go-ride-client/storage"
)

// logKey is the single storage key holding the JSON-encoded notification log.
const logKey = "ride_notifications"

// Cache is the durable, most-recent-first notification log. The whole log is
// replaced on every write: storage offers no finer-grained atomicity, so
// mutations are read-modify-write over the full collection under one lock.
type Cache struct {
	tier   storage.Tier
	bus    *bridge.Bus
	logger zerolog.Logger
	lock   sync.Mutex
}

func NewCache(tier storage.Tier, bus *bridge.Bus, logger zerolog.Logger) *Cache {
	return &Cache{tier: tier, bus: bus, logger: logger}
}

// List returns the log, most-recent-first. Unreadable storage is treated as
// an empty log, never as an error.
func (c *Cache) List() []Notification {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.load()
}

// Add prepends a record and broadcasts the change with the new record as
// payload.
func (c *Cache) Add(notification Notification) {
	c.lock.Lock()
	log := append([]Notification{notification}, c.load()...)
	c.persist(log)
	c.lock.Unlock()

	c.broadcast(&notification)
}

// MarkRead flips a record's read flag to true; the transition is one-way. An
// unknown id is a no-op and broadcasts nothing.
func (c *Cache) MarkRead(id string) {
	c.lock.Lock()
	log := c.load()
	found := false
	for i := range log {
		if log[i].ID == id {
			log[i].Read = true
			found = true
			break
		}
	}
	if found {
		c.persist(log)
	}
	c.lock.Unlock()

	if found {
		c.broadcast(nil)
	}
}

// UnreadCount reports how many records are still unread.
func (c *Cache) UnreadCount() int {
	count := 0
	for _, n := range c.List() {
		if !n.Read {
			count++
		}
	}
	return count
}

func (c *Cache) load() []Notification {
	raw, ok := c.tier.Get(logKey)
	if !ok || raw == "" {
		return nil
	}
	var log []Notification
	if err := json.Unmarshal([]byte(raw), &log); err != nil {
		c.logger.Debug().Err(err).Msg("notification log unreadable, treating as empty")
		return nil
	}
	return log
}

func (c *Cache) persist(log []Notification) {
	encoded, err := json.Marshal(log)
	if err != nil {
		c.logger.Debug().Err(err).Msg("notification log encode failed")
		return
	}
	c.tier.Set(logKey, string(encoded))
}

// broadcast fires the cache-changed signal; payload is nil for mutations
// without a single affected record.
func (c *Cache) broadcast(notification *Notification) {
	if c.bus == nil {
		return
	}
	var payload any
	if notification != nil {
		payload = notification
	}
	if err := c.bus.Publish(bridge.TopicNotifications, bridge.KindCacheUpdated, payload); err != nil {
		c.logger.Debug().Err(err).Msg("notification broadcast failed")
	}
}
