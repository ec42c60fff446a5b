package notify

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ridebook/go-ride-client/bridge"
)

// Ingestor normalizes inbound push messages into cache records. The
// foreground path is a direct provider subscription; the background path is
// fed by envelopes relayed over the bridge, since the background delivery
// context shares no memory with this one.
type Ingestor struct {
	cache    *Cache
	bus      *bridge.Bus
	notifier SystemNotifier // optional OS-level surfacing
	logger   zerolog.Logger
	nowTime  func() time.Time
}

// IngestorOption modifies an Ingestor instance.
type IngestorOption func(*Ingestor)

// WithNowTime sets the arrival-timestamp clock (primarily for testing).
func WithNowTime(nowFunc func() time.Time) IngestorOption {
	return func(i *Ingestor) {
		i.nowTime = nowFunc
	}
}

// WithSystemNotifier surfaces ingested messages as OS-level notifications.
func WithSystemNotifier(notifier SystemNotifier) IngestorOption {
	return func(i *Ingestor) {
		i.notifier = notifier
	}
}

func NewIngestor(cache *Cache, bus *bridge.Bus, logger zerolog.Logger, options ...IngestorOption) *Ingestor {
	ingestor := &Ingestor{
		cache:   cache,
		bus:     bus,
		logger:  logger,
		nowTime: time.Now,
	}
	for _, opt := range options {
		opt(ingestor)
	}
	return ingestor
}

// HandleForeground is the provider's in-page delivery callback.
func (i *Ingestor) HandleForeground(msg InboundMessage) {
	i.ingest(msg)
}

// Run consumes background-relay envelopes from the bridge until ctx is
// cancelled. Envelopes with an unexpected tag are dropped.
func (i *Ingestor) Run(ctx context.Context) error {
	envelopes, err := i.bus.Subscribe(ctx, bridge.TopicBackground)
	if err != nil {
		return err
	}
	for envelope := range envelopes {
		if envelope.Kind != bridge.KindBackgroundMessage {
			continue
		}
		var msg InboundMessage
		if err := envelope.DecodePayload(&msg); err != nil {
			i.logger.Debug().Err(err).Msg("undecodable background relay dropped")
			continue
		}
		i.ingest(msg)
	}
	return nil
}

// ingest synthesizes id and arrival timestamp, prepends to the log and lets
// the cache broadcast the update. Both intake paths funnel through here so
// interleaved foreground and background arrivals land in delivery order.
func (i *Ingestor) ingest(msg InboundMessage) {
	title, body := DisplayContent(msg)
	notification := Notification{
		ID:        uuid.New().String(),
		Title:     title,
		Body:      body,
		Data:      msg.Data,
		Timestamp: i.nowTime(),
	}
	i.cache.Add(notification)

	if i.notifier != nil {
		i.notifier.Notify(title, body)
	}
}
