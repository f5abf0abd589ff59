package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/smartsales/salesctl/client"
	apperrors "github.com/smartsales/salesctl/internal/errors"
	"github.com/smartsales/salesctl/session"
)

func newLoginCommand(opts *globalOptions) *cobra.Command {
	var (
		username string
		password string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			c, err := opts.newClient(ctx)
			if err != nil {
				return err
			}

			if username == "" {
				username = prompt("Username: ")
			}
			if password == "" {
				password = prompt("Password: ")
			}

			user, err := c.Session.Login(ctx, username, password)
			if err != nil {
				return authMessage(err)
			}
			fmt.Printf("Signed in as %s %s (%s)\n", user.FirstName, user.LastName, user.Username)
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Account username")
	cmd.Flags().StringVar(&password, "password", "", "Account password")
	return cmd
}

func newRegisterCommand(opts *globalOptions) *cobra.Command {
	params := session.RegisterParams{}

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			c, err := opts.newClient(ctx)
			if err != nil {
				return err
			}

			user, err := c.Session.Register(ctx, params)
			if err != nil {
				return authMessage(err)
			}
			fmt.Printf("Registered and signed in as %s\n", user.Username)
			return nil
		},
	}

	cmd.Flags().StringVar(&params.Username, "username", "", "Account username")
	cmd.Flags().StringVar(&params.Email, "email", "", "Account email")
	cmd.Flags().StringVar(&params.Password, "password", "", "Account password")
	cmd.Flags().StringVar(&params.FirstName, "first-name", "", "First name")
	cmd.Flags().StringVar(&params.LastName, "last-name", "", "Last name")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newLogoutCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and discard stored credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			c, err := opts.newClient(ctx)
			if err != nil {
				return err
			}
			c.Session.Logout(ctx)
			fmt.Println("Signed out")
			return nil
		},
	}
}

func newWhoamiCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			c, err := opts.newClient(ctx)
			if err != nil {
				return err
			}
			if err := requireAuth(c); err != nil {
				return err
			}
			user := c.Session.User()
			fmt.Printf("%s %s (%s) <%s>\n", user.FirstName, user.LastName, user.Username, user.Email)
			if at := c.Session.LastAuthenticated(); !at.IsZero() {
				fmt.Printf("Session active since %s\n", at.Format(time.RFC1123))
			}
			return nil
		},
	}
}

func newProfileCommand(opts *globalOptions) *cobra.Command {
	params := client.ProfileParams{}

	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Update the signed-in user's profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			c, err := opts.newClient(ctx)
			if err != nil {
				return err
			}
			if err := requireAuth(c); err != nil {
				return err
			}
			user, err := c.UpdateProfile(ctx, params)
			if err != nil {
				return err
			}
			fmt.Printf("Profile updated: %s %s <%s>\n", user.FirstName, user.LastName, user.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&params.FirstName, "first-name", "", "First name")
	cmd.Flags().StringVar(&params.LastName, "last-name", "", "Last name")
	cmd.Flags().StringVar(&params.Email, "email", "", "Email address")
	return cmd
}

// authMessage strips wrapping context from backend auth rejections so the
// user sees the backend's message, not the call chain.
func authMessage(err error) error {
	var authErr *session.AuthError
	if apperrors.As(err, &authErr) {
		return fmt.Errorf("%s", authErr.Message)
	}
	return err
}

func prompt(label string) string {
	fmt.Print(label)
	scanner := bufio.NewScanner(os.Stdin)
	if scanner.Scan() {
		return strings.TrimSpace(scanner.Text())
	}
	return ""
}
