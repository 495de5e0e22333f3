package main

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"storefront/cmd/internal/auth/session"
)

func newSessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Operate on sessions in the configured store",
	}
	cmd.AddCommand(newSessionIssueCmd())
	return cmd
}

type issuedOutput struct {
	SessionID    string    `json:"session_id"`
	UserID       string    `json:"user_id"`
	Store        string    `json:"store"`
	AccessToken  string    `json:"access_token"`
	AccessExp    time.Time `json:"access_expires_at"`
	SessionToken string    `json:"session_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

func newSessionIssueCmd() *cobra.Command {
	var (
		userID   string
		platform string
		remember bool
	)
	cmd := &cobra.Command{
		Use:   "issue",
		Short: "Issue a session for a user and print its credentials as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			userID = strings.TrimSpace(userID)
			if userID == "" {
				return errors.New("--user is required")
			}

			a, err := openApp(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			iss, err := a.Sessions().IssueSession(cmd.Context(), time.Now().UTC(), userID, session.DeviceContext{
				Platform:   session.ParsePlatform(platform),
				RememberMe: remember,
				UserAgent:  "storefront-cli",
			})
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(issuedOutput{
				SessionID:    iss.SessionID,
				UserID:       iss.UserID,
				Store:        a.SessionBackend(),
				AccessToken:  iss.AccessToken,
				AccessExp:    iss.AccessExp,
				SessionToken: iss.SessionToken,
				ExpiresAt:    iss.ExpiresAt,
			})
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user ID owning the session")
	cmd.Flags().StringVar(&platform, "platform", "web", "client platform (web, ios, android, desktop)")
	cmd.Flags().BoolVar(&remember, "remember", false, "use the long native session lifetime")
	return cmd
}
