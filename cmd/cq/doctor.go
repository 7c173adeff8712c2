package cq

import (
	"database/sql"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/stealthomikey/caloriequest/internal/service"
)

var doctorFix bool

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check local config, the stored session, and food-log data from the API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			out := cmd.OutOrStdout()
			settings, resolveErr := service.ResolveSettings(sqldb, flagOverrides(), os.LookupEnv)
			if resolveErr != nil {
				fmt.Fprintf(out, "Settings error: %v\n", resolveErr)
				settings = service.DefaultSettings()
				if apiURLFlag != "" {
					settings.APIURL = apiURLFlag
				}
			}
			client, err := newBackendClient(sqldb, settings)
			if err != nil {
				return err
			}
			report, err := service.RunDoctor(cmd.Context(), sqldb, settings.APIURL, client, doctorFix)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Schema version: %d\n", report.SchemaVersion)
			fmt.Fprintf(out, "Invalid config keys: %s\n", joinOrNone(report.InvalidConfigKeys))
			fmt.Fprintf(out, "Session stored: %t, valid: %t\n", report.SessionStored, report.SessionValid)
			if report.APIError != "" {
				fmt.Fprintf(out, "API error: %s\n", report.APIError)
			}
			fmt.Fprintf(out, "History entries: %d\n", report.HistoryEntries)
			fmt.Fprintf(out, "Malformed timestamps: %s\n", joinIDsOrNone(report.MalformedTimestamps))
			fmt.Fprintf(out, "Duplicate entry ids: %s\n", joinIDsOrNone(report.DuplicateEntryIDs))
			if doctorFix {
				fmt.Fprintf(out, "Removed config keys: %d\n", report.FixedConfigKeys)
				if report.ClearedSession {
					fmt.Fprintln(out, "Cleared rejected session")
				}
			}
			if !report.Healthy() || (resolveErr != nil && !doctorFix) {
				return fmt.Errorf("doctor found issues")
			}
			return nil
		})
	},
}

func joinOrNone(values []string) string {
	if len(values) == 0 {
		return "none"
	}
	return strings.Join(values, ", ")
}

func joinIDsOrNone(ids []int64) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, fmt.Sprint(id))
	}
	return joinOrNone(parts)
}

func init() {
	rootCmd.AddCommand(doctorCmd)
	doctorCmd.Flags().BoolVar(&doctorFix, "fix", false, "Remove invalid config values and forget a rejected session")
}
