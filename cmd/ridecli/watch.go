package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ridebook/go-ride-client/bridge"
	"github.com/ridebook/go-ride-client/notify"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow notification-log updates until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.close()

		displayAppname(app.cfg.AppName)

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		// Background-relay intake runs alongside the watch loop.
		go func() {
			if err := app.ingestor.Run(ctx); err != nil {
				app.logger.Debug().Err(err).Msg("ingest loop stopped")
			}
		}()

		events, err := app.bus.Subscribe(ctx, bridge.TopicNotifications)
		if err != nil {
			return err
		}

		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

		fmt.Println("Watching for notifications; Ctrl-C to stop.")
		for {
			select {
			case envelope, ok := <-events:
				if !ok {
					return nil
				}
				if envelope.Kind != bridge.KindCacheUpdated {
					continue
				}
				var n notify.Notification
				if err := envelope.DecodePayload(&n); err != nil {
					fmt.Println("· notification log changed")
					continue
				}
				fmt.Printf("· %s — %s\n", n.Title, n.Body)
			case <-stop:
				return nil
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
