package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ridebook/go-ride-client/bridge"
	"github.com/ridebook/go-ride-client/notify"
)

var notificationsCmd = &cobra.Command{
	Use:     "notifications",
	Aliases: []string{"notif"},
	Short:   "Work with the local notification log",
}

var notificationsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List notifications, most recent first",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.close()

		log := app.cache.List()
		if len(log) == 0 {
			fmt.Println("No notifications.")
			return nil
		}
		for _, n := range log {
			marker := " "
			if !n.Read {
				marker = "*"
			}
			fmt.Printf("%s %s  %s  %s — %s\n",
				marker, n.ID, n.Timestamp.Format(time.RFC3339), n.Title, n.Body)
		}
		fmt.Printf("%d unread\n", app.cache.UnreadCount())
		return nil
	},
}

var notificationsReadCmd = &cobra.Command{
	Use:   "read <id>",
	Short: "Mark one notification as read",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.close()

		app.cache.MarkRead(args[0])
		return nil
	},
}

var (
	relayTitle string
	relayBody  string

	sendUserID string
	sendTitle  string
	sendBody   string
)

var notificationsSendCmd = &cobra.Command{
	Use:   "send",
	Short: "Ask the backend to push a message to a user",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.close()

		payload := map[string]any{
			"userId": sendUserID,
			"title":  sendTitle,
			"body":   sendBody,
		}
		if err := app.client.SendNotification(cmd.Context(), payload); err != nil {
			return err
		}
		fmt.Println("Sent.")
		return nil
	},
}

// relay simulates the background delivery context: it publishes a tagged
// envelope on the bridge exactly the way the background context does, which
// the ingest loop then normalizes into the log. Useful with 'watch'.
var notificationsRelayCmd = &cobra.Command{
	Use:   "relay",
	Short: "Inject a background-relayed message (testing aid)",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.close()

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()
		go func() {
			if err := app.ingestor.Run(ctx); err != nil {
				app.logger.Debug().Err(err).Msg("ingest loop stopped")
			}
		}()
		// The ingest subscription must attach before we publish; nothing is
		// queued for late subscribers.
		time.Sleep(50 * time.Millisecond)

		msg := notify.InboundMessage{
			Notification: map[string]string{"title": relayTitle, "body": relayBody},
		}
		if err := app.bus.Publish(bridge.TopicBackground, bridge.KindBackgroundMessage, msg); err != nil {
			return err
		}
		// Give the ingest loop a moment to persist before shutdown.
		time.Sleep(200 * time.Millisecond)
		fmt.Println("Relayed.")
		return nil
	},
}

func init() {
	notificationsRelayCmd.Flags().StringVar(&relayTitle, "title", "", "notification title")
	notificationsRelayCmd.Flags().StringVar(&relayBody, "body", "", "notification body")

	notificationsSendCmd.Flags().StringVar(&sendUserID, "user", "", "target user id")
	notificationsSendCmd.Flags().StringVar(&sendTitle, "title", "", "notification title")
	notificationsSendCmd.Flags().StringVar(&sendBody, "body", "", "notification body")
	_ = notificationsSendCmd.MarkFlagRequired("user")

	notificationsCmd.AddCommand(notificationsListCmd)
	notificationsCmd.AddCommand(notificationsReadCmd)
	notificationsCmd.AddCommand(notificationsRelayCmd)
	notificationsCmd.AddCommand(notificationsSendCmd)
	rootCmd.AddCommand(notificationsCmd)
}
