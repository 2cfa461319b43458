package main

import (
	"fmt"
	"os"

	"github.com/ledgerline/erp-client/internal/services"
	"github.com/spf13/cobra"
)

const passwordEnv string = "ERPCTL_PASSWORD"

func newLoginCmd(current *app) *cobra.Command {
	var username, password string
	loginCmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the token pair of the profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = os.Getenv(passwordEnv)
			}
			if password == "" {
				return fmt.Errorf("--password or %s required", passwordEnv)
			}
			err := services.NewAuth(current.client).Login(cmd.Context(), username, password)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "logged in as %s (profile %s)\n", username, current.client.Profile())
			return nil
		},
	}
	loginCmd.Flags().StringVarP(&username, "username", "u", "", "Username (required)")
	loginCmd.Flags().StringVar(&password, "password", "", "Password, read from "+passwordEnv+" when empty")
	_ = loginCmd.MarkFlagRequired("username")
	return loginCmd
}

func newLogoutCmd(current *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored tokens of the profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			err := services.NewAuth(current.client).Logout(cmd.Context())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "logged out (profile %s)\n", current.client.Profile())
			return nil
		},
	}
}

func newRefreshCmd(current *app) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Exchange the stored refresh token for a new access token",
		RunE: func(cmd *cobra.Command, args []string) error {
			err := current.client.Refresh(cmd.Context())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "access token refreshed")
			return nil
		},
	}
}
