package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ridebook/go-ride-client/internal/utils"
	"github.com/ridebook/go-ride-client/token"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the current session",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.close()

		if !app.store.LoggedIn() {
			fmt.Println("Not logged in.")
			return nil
		}

		identity := app.store.Identity()
		fmt.Printf("Name:   %s\n", identity.Name)
		fmt.Printf("Phone:  %s\n", identity.Phone)
		fmt.Printf("UserID: %s\n", identity.UserID)

		// Claims are shown for information only; the client never judges
		// token validity locally.
		claims, err := token.InspectDisplayClaims(app.store.Token())
		if err != nil {
			app.logger.Debug().Err(err).Msg("token claims unreadable")
			return nil
		}
		if claims.Subject != "" {
			fmt.Printf("Token subject: %s\n", claims.Subject)
		}
		if exp := utils.Value(claims.ExpiresAt); !exp.IsZero() {
			fmt.Printf("Token expires: %s\n", exp.Format(time.RFC3339))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
}
