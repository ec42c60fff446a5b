// Package notify registers the client for push delivery, normalizes inbound
// messages from both the foreground and the relayed background path into a
// persisted, time-ordered notification log, and broadcasts every mutation on
// the event bridge.
package notify

import (
	"context"
	"time"
)

// Notification is one entry of the local notification log. Read state is
// owned exclusively by this cache; neither the push provider nor the backend
// know about it.
type Notification struct {
	ID        string            `json:"id"`
	Title     string            `json:"title,omitempty"`
	Body      string            `json:"body,omitempty"`
	Data      map[string]string `json:"data,omitempty"`
	Timestamp time.Time         `json:"ts"`
	Read      bool              `json:"read,omitempty"`
}

// InboundMessage is the loosely-typed push payload as delivered by the
// provider: display fields may sit under a structured notification block or
// under generic data.
type InboundMessage struct {
	Notification map[string]string `json:"notification,omitempty"`
	Data         map[string]string `json:"data,omitempty"`
}

// TokenOptions parameterize delivery-token retrieval.
type TokenOptions struct {
	// VAPIDKey is the project-specific public key; optional.
	VAPIDKey string
}

// Messenger is the push-messaging provider as seen by this client.
type Messenger interface {
	// RequestPermission asks for notification permission. A false result is
	// a user denial, not an error.
	RequestPermission(ctx context.Context) (bool, error)
	// DeliveryToken obtains the opaque delivery token for this client
	// context.
	DeliveryToken(ctx context.Context, opts TokenOptions) (string, error)
	// Subscribe attaches a handler for foreground message delivery and
	// returns its detach function.
	Subscribe(handler func(InboundMessage)) (func(), error)
}

// Registrar forwards delivery tokens to the backend.
type Registrar interface {
	RegisterToken(ctx context.Context, userID, token string) error
}

// SystemNotifier optionally surfaces an OS-level notification.
type SystemNotifier interface {
	Notify(title, body string)
}
