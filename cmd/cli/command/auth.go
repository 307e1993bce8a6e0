package command

import (
	"fmt"
	"time"

	"yamdb/cmd/cli/authentication"
	"yamdb/cmd/cli/command/client"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// tokenLifetime matches the server default and is only used for display
const tokenLifetime = 7 * 24 * time.Hour

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authentication commands",
	Long:  `Sign up, exchange a confirmation code for a token, and log out.`,
}

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Request a confirmation code by email",
	RunE: func(cmd *cobra.Command, args []string) error {
		username, _ := cmd.Flags().GetString("username")
		email, _ := cmd.Flags().GetString("email")

		ctx, cancel := commandContext(cmd)
		defer cancel()

		resp, err := client.NewHTTPClient(apiURL).Signup(ctx, username, email)
		if err != nil {
			return fmt.Errorf("signup failed: %w", err)
		}

		color.Green("✓ Confirmation code sent to %s", resp.Email)
		fmt.Printf("Run 'yamdb auth token -u %s -c <code>' to get your token.\n", resp.Username)
		return nil
	},
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Exchange a confirmation code for an access token",
	RunE: func(cmd *cobra.Command, args []string) error {
		username, _ := cmd.Flags().GetString("username")
		code, _ := cmd.Flags().GetString("code")

		ctx, cancel := commandContext(cmd)
		defer cancel()

		access, err := client.NewHTTPClient(apiURL).Token(ctx, username, code)
		if err != nil {
			return fmt.Errorf("token request failed: %w", err)
		}

		creds := &authentication.StoredCredentials{
			AccessToken: access,
			Username:    username,
			ExpiresAt:   time.Now().Add(tokenLifetime).Unix(),
		}
		if err := authentication.StoreTokens(creds); err != nil {
			return fmt.Errorf("store token: %w", err)
		}

		color.Green("✓ Logged in as %s", username)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored token",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := authentication.DeleteTokens(); err != nil {
			return fmt.Errorf("clear token: %w", err)
		}
		color.Green("✓ Successfully logged out.")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the profile of the logged in user",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := authedClient()
		if err != nil {
			return err
		}

		ctx, cancel := commandContext(cmd)
		defer cancel()

		me, err := c.Me(ctx)
		if err != nil {
			return fmt.Errorf("failed to load profile: %w", err)
		}

		color.Cyan("%s <%s>", me.Username, me.Email)
		fmt.Printf("Role: %s\n", me.Role)
		if me.FirstName != "" || me.LastName != "" {
			fmt.Printf("Name: %s %s\n", me.FirstName, me.LastName)
		}
		if me.Bio != "" {
			fmt.Printf("Bio: %s\n", me.Bio)
		}
		return nil
	},
}

func init() {
	authCmd.AddCommand(signupCmd, tokenCmd, logoutCmd, whoamiCmd)

	signupCmd.Flags().StringP("username", "u", "", "Username for the account")
	signupCmd.Flags().StringP("email", "e", "", "Email address the code is sent to")
	_ = signupCmd.MarkFlagRequired("username")
	_ = signupCmd.MarkFlagRequired("email")

	tokenCmd.Flags().StringP("username", "u", "", "Username for the account")
	tokenCmd.Flags().StringP("code", "c", "", "Confirmation code from the email")
	_ = tokenCmd.MarkFlagRequired("username")
	_ = tokenCmd.MarkFlagRequired("code")
}
