package cq

import (
	"bufio"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/stealthomikey/caloriequest/internal/backend"
	"github.com/stealthomikey/caloriequest/internal/service"
)

var loginSession string

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store the session cookie from a browser login",
	Long: "Sign in through the browser at the printed URL, copy the value of the session cookie, " +
		"and pass it with --session or paste it when prompted.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withBackend(func(sqldb *sql.DB, settings service.Settings, client *backend.Client) error {
			value := strings.TrimSpace(loginSession)
			if value == "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Sign in at %s\n", client.LoginURL())
				fmt.Fprintf(cmd.OutOrStdout(), "Paste the %q cookie value: ", client.CookieName)
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && strings.TrimSpace(line) == "" {
					return fmt.Errorf("read session cookie: %w", err)
				}
				value = strings.TrimSpace(line)
			}
			if value == "" {
				return fmt.Errorf("session cookie is required")
			}

			client.Session = value
			user, err := client.CurrentUser(cmd.Context())
			if err != nil {
				return fmt.Errorf("verify session: %w", err)
			}
			if err := service.SaveSession(sqldb, service.Session{
				APIURL:     settings.APIURL,
				CookieName: client.CookieName,
				Value:      value,
				User:       user,
			}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s <%s>\n", user.Name, user.Email)
			return nil
		})
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the backend session and forget it locally",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withBackend(func(sqldb *sql.DB, settings service.Settings, client *backend.Client) error {
			if client.Session != "" {
				if err := client.Logout(cmd.Context()); err != nil {
					slog.Warn("backend logout failed, forgetting local session anyway", "api_url", settings.APIURL, "error", err)
				}
			}
			removed, err := service.ClearSession(sqldb, settings.APIURL)
			if err != nil {
				return err
			}
			if !removed {
				fmt.Fprintln(cmd.OutOrStdout(), "Not logged in")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged out of %s\n", settings.APIURL)
			return nil
		})
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withBackend(func(sqldb *sql.DB, settings service.Settings, client *backend.Client) error {
			user, err := client.CurrentUser(cmd.Context())
			if err != nil {
				return explain(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s <%s> (id %d)\n", user.Name, user.Email, user.ID)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(loginCmd, logoutCmd, whoamiCmd)
	loginCmd.Flags().StringVar(&loginSession, "session", "", "Session cookie value")
}
