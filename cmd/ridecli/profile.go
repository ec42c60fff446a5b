package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ridebook/go-ride-client/sessions"
	"github.com/ridebook/go-ride-client/users"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Work with the logged-in user's profile",
}

var (
	profileName    string
	profileEmail   string
	profileAddress string
	profileGender  string
	profileDOB     string
)

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the backend profile for the logged-in user",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.close()

		identity := app.store.Identity()
		if identity.Phone == "" {
			return fmt.Errorf("not logged in")
		}

		lookup, err := app.client.FindByPhone(cmd.Context(), identity.Phone)
		if err != nil {
			return err
		}
		if lookup.Status != users.LookupFound {
			return fmt.Errorf("no profile found for %s", identity.Phone)
		}

		u := lookup.User
		fmt.Printf("Name:    %s\n", u.Name)
		fmt.Printf("Phone:   %s\n", u.Phone)
		fmt.Printf("Email:   %s\n", u.Email)
		fmt.Printf("Address: %s\n", u.Address)
		fmt.Printf("Role:    %s\n", u.Role)
		return nil
	},
}

var profileUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update profile fields on the backend",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.close()

		identity := app.store.Identity()
		if identity.Phone == "" {
			return fmt.Errorf("not logged in")
		}

		// The full current record is fetched first so untouched fields
		// survive the replace-style update.
		lookup, err := app.client.FindByPhone(cmd.Context(), identity.Phone)
		if err != nil {
			return err
		}
		if lookup.Status != users.LookupFound {
			return fmt.Errorf("no profile found for %s", identity.Phone)
		}

		user := lookup.User
		if cmd.Flags().Changed("name") {
			user.Name = profileName
		}
		if cmd.Flags().Changed("email") {
			user.Email = profileEmail
		}
		if cmd.Flags().Changed("address") {
			user.Address = profileAddress
		}
		if cmd.Flags().Changed("gender") {
			user.Gender = profileGender
		}
		if cmd.Flags().Changed("dob") {
			user.DateOfBirth = profileDOB
		}

		reconciler := users.NewReconciler(app.client, app.logger)
		updated, err := reconciler.Update(cmd.Context(), user)
		if err != nil {
			return err
		}

		app.store.SetSession(app.store.Token(), sessions.Identity{
			UserID: updated.UserID,
			Phone:  updated.Phone,
			Name:   updated.Name,
		})
		fmt.Printf("Profile updated for %s.\n", updated.Name)
		return nil
	},
}

func init() {
	profileUpdateCmd.Flags().StringVar(&profileName, "name", "", "display name")
	profileUpdateCmd.Flags().StringVar(&profileEmail, "email", "", "email address")
	profileUpdateCmd.Flags().StringVar(&profileAddress, "address", "", "postal address")
	profileUpdateCmd.Flags().StringVar(&profileGender, "gender", "", "gender")
	profileUpdateCmd.Flags().StringVar(&profileDOB, "dob", "", "date of birth")

	profileCmd.AddCommand(profileShowCmd)
	profileCmd.AddCommand(profileUpdateCmd)
	rootCmd.AddCommand(profileCmd)
}
