package command

// root.go defines the root command and the global flags of the yamdb CLI.

import (
	"context"
	"fmt"
	"os"
	"time"

	"yamdb/cmd/cli/authentication"
	"yamdb/cmd/cli/command/client"

	"github.com/spf13/cobra"
)

const requestTimeout = 15 * time.Second

var apiURL string // Global flag for API server URL

var rootCmd = &cobra.Command{
	Use:   "yamdb",
	Short: "yamdb - YaMDb Command Line Interface",
	Long: `yamdb talks to the YaMDb review API. With it a user can:
- Sign up and obtain an access token
- Browse titles, categories and genres
- Read and write reviews and comments

Use "yamdb command --help" to see all available commands.`,
	SilenceUsage: true,
}

// Execute is called by main.main. It only needs to happen once.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", envOr("YAMDB_API", "http://localhost:8080"), "API server URL")

	rootCmd.AddCommand(authCmd, titlesCmd, reviewsCmd, commentsCmd, categoriesCmd, genresCmd)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), requestTimeout)
}

// newClient attaches the stored token when one exists, reads work anonymously
func newClient() *client.HTTPClient {
	c := client.NewHTTPClient(apiURL)
	if creds, err := authentication.GetTokens(); err == nil {
		c.SetToken(creds.AccessToken)
	}
	return c
}

// authedClient fails early when no token is stored
func authedClient() (*client.HTTPClient, error) {
	creds, err := authentication.GetTokens()
	if err != nil {
		return nil, err
	}
	c := client.NewHTTPClient(apiURL)
	c.SetToken(creds.AccessToken)
	return c, nil
}
