package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dharsanguruparan/vdocsign/internal/api"
	"github.com/dharsanguruparan/vdocsign/internal/credstore"
)

func newRegisterCmd(a *app) *cobra.Command {
	var creds api.Credentials
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and log in",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.client.Register(cmd.Context(), creds); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Registered %s.\n", creds.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&creds.Name, "name", "", "Display name")
	cmd.Flags().StringVar(&creds.Email, "email", "", "Email address")
	cmd.Flags().StringVar(&creds.Password, "password", "", "Password")
	return cmd
}

func newLoginCmd(a *app) *cobra.Command {
	var creds api.Credentials
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.client.Login(cmd.Context(), creds); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Logged in as %s.\n", creds.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&creds.Email, "email", "", "Email address")
	cmd.Flags().StringVar(&creds.Password, "password", "", "Password")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.client.Logout(); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Logged out.")
			return nil
		},
	}
}

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show who the stored session belongs to",
		RunE: func(cmd *cobra.Command, args []string) error {
			token, ok := a.creds.Get(credstore.KeyToken)
			if !ok || token == "" {
				fmt.Fprintln(a.out, "Not logged in.")
				return nil
			}
			info, err := api.InspectToken(token)
			if err != nil {
				return err
			}
			switch {
			case info.ExpiresAt.IsZero():
				fmt.Fprintf(a.out, "%s\n", info.Subject)
			case info.Expired(time.Now()):
				fmt.Fprintf(a.out, "%s (session expired %s)\n", info.Subject, info.ExpiresAt.Format(time.RFC3339))
			default:
				fmt.Fprintf(a.out, "%s (session expires %s)\n", info.Subject, info.ExpiresAt.Format(time.RFC3339))
			}
			return nil
		},
	}
}
