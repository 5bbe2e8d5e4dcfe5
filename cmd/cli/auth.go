package main

import (
	"visuall/cmd/internal/forms"

	"github.com/spf13/cobra"
)

func newRegisterCmd(a *app) *cobra.Command {
	var form forms.RegisterForm

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account on the VisuAll API",
		RunE: func(cmd *cobra.Command, args []string) error {
			if form.ConfirmPassword == "" {
				form.ConfirmPassword = form.Password
			}

			c, err := a.client()
			if err != nil {
				return err
			}
			resp, err := c.Register(cmd.Context(), &form)
			if err != nil {
				return err
			}

			a.printf("Account %d created for %s.\n", resp.User.ID, resp.User.Email)
			if resp.ConfirmationRequired {
				a.printf("Check your email for the confirmation code before logging in.\n")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&form.Name, "name", "", "Full name")
	cmd.Flags().StringVar(&form.Email, "email", "", "Email address")
	cmd.Flags().StringVar(&form.Password, "password", "", "Password")
	cmd.Flags().StringVar(&form.ConfirmPassword, "confirm-password", "", "Password confirmation (defaults to --password)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newLoginCmd(a *app) *cobra.Command {
	var form forms.LoginForm

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and remember the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			creds, err := c.Login(cmd.Context(), &form)
			if err != nil {
				return err
			}
			a.printf("Welcome, %s.\n", creds.Name)
			return nil
		},
	}
	cmd.Flags().StringVar(&form.Email, "email", "", "Email address")
	cmd.Flags().StringVar(&form.Password, "password", "", "Password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			if err := c.Logout(cmd.Context()); err != nil {
				return err
			}
			a.printf("Logged out.\n")
			return nil
		},
	}
}
