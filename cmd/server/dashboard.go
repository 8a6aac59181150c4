package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/spf13/cobra"

	"github.com/sorayamlj/FocusTache/pkg/client"
	"github.com/sorayamlj/FocusTache/usecase/dashboard"
)

var (
	dashboardURL     string
	dashboardToken   string
	dashboardTimeout time.Duration
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Print a dashboard snapshot assembled from a running server",
	Long: `dashboard fetches tasks, sessions, notes and calendar events from the API
concurrently and prints the computed snapshot as JSON. Sources that fail are
listed under "degraded" instead of aborting the command.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, zapLogger, err := setup(true)
		if err != nil {
			return err
		}
		defer zapLogger.Sync()

		token := dashboardToken
		if token == "" {
			token = os.Getenv("FOCUSTACHE_TOKEN")
		}
		if token == "" {
			return fmt.Errorf("a bearer token is required (--token or FOCUSTACHE_TOKEN)")
		}

		src := client.New(dashboardURL, token, client.WithTimeout(dashboardTimeout))
		service := dashboard.NewService(src, zapLogger,
			dashboard.WithSourceTimeout(dashboardTimeout),
			dashboard.WithClock(func() time.Time { return time.Now().In(cfg.Timezone) }),
		)

		owner, err := tokenEmail(token)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		snapshot, err := service.Snapshot(ctx, owner)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(snapshot)
	},
}

// tokenEmail reads the email claim without verifying the signature; the
// server verifies the token on every fetch.
func tokenEmail(token string) (string, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return "", fmt.Errorf("parse token: %w", err)
	}
	email, _ := claims["email"].(string)
	if email == "" {
		return "", fmt.Errorf("token carries no email claim")
	}
	return email, nil
}

func init() {
	dashboardCmd.Flags().StringVar(&dashboardURL, "url", "http://localhost:8080", "base URL of the API")
	dashboardCmd.Flags().StringVar(&dashboardToken, "token", "", "bearer token (defaults to $FOCUSTACHE_TOKEN)")
	dashboardCmd.Flags().DurationVar(&dashboardTimeout, "timeout", 5*time.Second, "per-source fetch timeout")
	rootCmd.AddCommand(dashboardCmd)
}
