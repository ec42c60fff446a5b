package backend

import (
	"context"
	"net/http"

	"github.com/pkg/errors"
)

// TokenRegistration associates a push delivery token with a backend identity.
type TokenRegistration struct {
	UserID     string `json:"userId"`
	FCMToken   string `json:"fcmToken"`
	DeviceType string `json:"deviceType,omitempty"`
	UserType   string `json:"userType,omitempty"`
}

const (
	DeviceTypeWeb = "WEB"
	UserTypeUser  = "USER"
)

// RegisterFCMToken registers a new delivery token for a user.
func (c *Client) RegisterFCMToken(ctx context.Context, reg TokenRegistration) error {
	if err := c.do(ctx, http.MethodPost, "/api/common/notifications/register-token", reg, "", nil); err != nil {
		return errors.Wrap(err, "[Client.RegisterFCMToken]")
	}
	return nil
}

// UpdateFCMToken replaces a previously registered delivery token, falling
// back to registration when the update endpoint rejects the call.
func (c *Client) UpdateFCMToken(ctx context.Context, reg TokenRegistration) error {
	err := c.do(ctx, http.MethodPost, "/api/common/notifications/update/fcm-token", reg, "", nil)
	if err == nil {
		return nil
	}
	c.logger.Debug().Err(err).Msg("fcm token update failed, falling back to register")
	if err := c.RegisterFCMToken(ctx, reg); err != nil {
		return errors.Wrap(err, "[Client.UpdateFCMToken] register fallback")
	}
	return nil
}

// RegisterToken registers a web delivery token for a user with the default
// device and user types. Satisfies the notification service's registrar
// contract.
func (c *Client) RegisterToken(ctx context.Context, userID, token string) error {
	return c.RegisterFCMToken(ctx, TokenRegistration{
		UserID:     userID,
		FCMToken:   token,
		DeviceType: DeviceTypeWeb,
		UserType:   UserTypeUser,
	})
}

// SendNotification asks the backend to push a message to a user. Used by the
// CLI's test surface.
func (c *Client) SendNotification(ctx context.Context, payload map[string]any) error {
	if err := c.do(ctx, http.MethodPost, "/api/common/notifications/send-notification", payload, "", nil); err != nil {
		return errors.Wrap(err, "[Client.SendNotification]")
	}
	return nil
}
