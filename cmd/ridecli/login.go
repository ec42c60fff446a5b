package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/ridebook/go-ride-client/auth"
)

var loginCmd = &cobra.Command{
	Use:   "login [phone]",
	Short: "Log in with a phone number and a one-time code",
	Long: `Starts the phone-OTP login flow: dispatches a one-time code to the given
phone number, prompts for it, and on success stores the bearer token and the
backend identity in the local session.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.close()
		return runLogin(app, args)
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
}

func runLogin(app *app, args []string) error {
	reader := bufio.NewReader(os.Stdin)

	phone := ""
	if len(args) == 1 {
		phone = args[0]
	} else {
		fmt.Print("Phone number: ")
		phone = readLine(reader)
	}

	ctx := context.Background()
	if err := app.coordinator.RequestCode(ctx, phone); err != nil {
		return errors.Wrap(err, "code dispatch failed")
	}
	fmt.Printf("Code sent to %s.\n", auth.NormalizeE164(phone))

	for {
		fmt.Print("Enter 6-digit code (or 'resend'): ")
		input := readLine(reader)

		if strings.EqualFold(input, "resend") {
			if err := app.coordinator.RequestCode(ctx, phone); err != nil {
				return errors.Wrap(err, "resend failed")
			}
			fmt.Println("A fresh code is on its way.")
			continue
		}

		user, err := app.coordinator.VerifyCode(ctx, input)
		switch {
		case err == nil:
			fmt.Printf("Logged in as %s (id %s).\n", user.Name, user.UserID)
			return nil
		case errors.Is(err, auth.InvalidCodeErr):
			fmt.Println("That code is not right; try again.")
		case errors.Is(err, auth.ExpiredCodeErr):
			fmt.Println("That code has expired; type 'resend' for a new one.")
		case errors.Is(err, auth.CodeLengthErr), errors.Is(err, auth.CodeRequiredErr):
			fmt.Println("Codes are exactly six digits.")
		default:
			return errors.Wrap(err, "login failed")
		}
	}
}

func readLine(reader *bufio.Reader) string {
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}
