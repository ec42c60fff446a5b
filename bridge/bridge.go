// Package bridge is the in-process event bridge between the notification
// ingest paths and the UI surfaces. Delivery is best-effort: listeners active
// at broadcast time receive the event, nothing is queued for late
// subscribers.
//
// The background push-delivery context shares no memory with the page
// context; its messages are relayed through the bridge as tagged envelopes
// and pattern-matched on the tag by the page-side handler.
package bridge

import (
	"context"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Topics carried by the bridge.
const (
	// TopicNotifications carries cache-mutation signals.
	TopicNotifications = "notifications-updated"
	// TopicBackground carries messages relayed from the background
	// delivery context.
	TopicBackground = "background-messages"
)

// Kind tags an envelope payload.
type Kind string

const (
	KindCacheUpdated      Kind = "cache-updated"
	KindBackgroundMessage Kind = "background-message"
)

// Envelope is the tagged union travelling over the bridge. Payload is empty
// for bulk changes (e.g. a read-flag sweep).
type Envelope struct {
	Kind    Kind            `json:"kind"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// DecodePayload unmarshals the envelope payload into out.
func (e Envelope) DecodePayload(out any) error {
	if len(e.Payload) == 0 {
		return errors.New("[Envelope.DecodePayload] empty payload")
	}
	return errors.Wrap(json.Unmarshal(e.Payload, out), "[Envelope.DecodePayload]")
}

// Bus wraps a single-process Watermill pub/sub.
type Bus struct {
	pubsub *gochannel.GoChannel
}

func New(logger zerolog.Logger) *Bus {
	return &Bus{
		pubsub: gochannel.NewGoChannel(
			gochannel.Config{OutputChannelBuffer: 64},
			loggerAdapter{logger: logger},
		),
	}
}

// Publish broadcasts one tagged envelope on a topic. Payload may be nil.
func (b *Bus) Publish(topic string, kind Kind, payload any) error {
	var raw json.RawMessage
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return errors.Wrap(err, "[Bus.Publish] marshal payload")
		}
		raw = encoded
	}
	body, err := json.Marshal(Envelope{Kind: kind, Payload: raw})
	if err != nil {
		return errors.Wrap(err, "[Bus.Publish] marshal envelope")
	}
	msg := message.NewMessage(watermill.NewUUID(), body)
	return errors.Wrap(b.pubsub.Publish(topic, msg), "[Bus.Publish]")
}

// Subscribe returns a channel of decoded envelopes for a topic. The
// subscription is scoped to ctx: cancelling it unsubscribes and closes the
// channel, so callers defer cancel on teardown and cannot leak listeners.
func (b *Bus) Subscribe(ctx context.Context, topic string) (<-chan Envelope, error) {
	messages, err := b.pubsub.Subscribe(ctx, topic)
	if err != nil {
		return nil, errors.Wrap(err, "[Bus.Subscribe]")
	}

	out := make(chan Envelope)
	go func() {
		defer close(out)
		for msg := range messages {
			var envelope Envelope
			if err := json.Unmarshal(msg.Payload, &envelope); err != nil {
				msg.Ack()
				continue
			}
			msg.Ack()
			select {
			case out <- envelope:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// Close shuts the bus down; active subscriber channels are closed.
func (b *Bus) Close() error {
	return b.pubsub.Close()
}

// loggerAdapter bridges watermill's logging onto zerolog.
type loggerAdapter struct {
	logger zerolog.Logger
}

var _ watermill.LoggerAdapter = loggerAdapter{}

func (l loggerAdapter) Error(msg string, err error, fields watermill.LogFields) {
	l.event(l.logger.Error().Err(err), fields).Msg(msg)
}

func (l loggerAdapter) Info(msg string, fields watermill.LogFields) {
	l.event(l.logger.Info(), fields).Msg(msg)
}

func (l loggerAdapter) Debug(msg string, fields watermill.LogFields) {
	l.event(l.logger.Debug(), fields).Msg(msg)
}

func (l loggerAdapter) Trace(msg string, fields watermill.LogFields) {
	l.event(l.logger.Trace(), fields).Msg(msg)
}

func (l loggerAdapter) With(fields watermill.LogFields) watermill.LoggerAdapter {
	ctx := l.logger.With()
	for k, v := range fields {
		ctx = ctx.Interface(k, v)
	}
	return loggerAdapter{logger: ctx.Logger()}
}

func (l loggerAdapter) event(e *zerolog.Event, fields watermill.LogFields) *zerolog.Event {
	for k, v := range fields {
		e = e.Interface(k, v)
	}
	return e
}
