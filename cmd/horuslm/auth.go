package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newAuthCommand() *cobra.Command {
	authCommands := &cobra.Command{
		Use:   "auth",
		Short: "Log in, register, and inspect the current session",
	}

	var email, password, fullName string

	loginCmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate and store the session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer func() {
				_ = a.Close()
			}()

			if err := a.session.Login(cmd.Context(), email, password); err != nil {
				return fmt.Errorf("session.Login() > %w", err)
			}

			user := a.session.CurrentUser()
			color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", user.Email)
			return nil
		},
	}
	loginCmd.Flags().StringVar(&email, "email", "", "Account email")
	loginCmd.Flags().StringVar(&password, "password", "", "Account password")
	_ = loginCmd.MarkFlagRequired("email")
	_ = loginCmd.MarkFlagRequired("password")

	registerCmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and log in",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer func() {
				_ = a.Close()
			}()

			if err := a.session.Register(cmd.Context(), email, password, fullName); err != nil {
				return fmt.Errorf("session.Register() > %w", err)
			}

			user := a.session.CurrentUser()
			color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "Registered and logged in as %s\n", user.Email)
			return nil
		},
	}
	registerCmd.Flags().StringVar(&email, "email", "", "Account email")
	registerCmd.Flags().StringVar(&password, "password", "", "Account password")
	registerCmd.Flags().StringVar(&fullName, "full-name", "", "Display name")
	_ = registerCmd.MarkFlagRequired("email")
	_ = registerCmd.MarkFlagRequired("password")

	logoutCmd := &cobra.Command{
		Use:   "logout",
		Short: "Clear the stored session and cached data",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer func() {
				_ = a.Close()
			}()

			a.cache.Clear()
			a.session.Logout()
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}

	whoamiCmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer func() {
				_ = a.Close()
			}()

			if err := a.requireLogin(); err != nil {
				return err
			}
			user := a.session.CurrentUser()
			fmt.Fprintf(cmd.OutOrStdout(), "%s", user.Email)
			if user.FullName != "" {
				fmt.Fprintf(cmd.OutOrStdout(), " (%s)", user.FullName)
			}
			if user.IsAdmin {
				fmt.Fprint(cmd.OutOrStdout(), " [admin]")
			}
			fmt.Fprintln(cmd.OutOrStdout())
			return nil
		},
	}

	authCommands.AddCommand(loginCmd, registerCmd, logoutCmd, whoamiCmd)
	return authCommands
}
