package cq

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/stealthomikey/caloriequest/internal/app"
	"github.com/stealthomikey/caloriequest/internal/db"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create or upgrade the local cq database",
	Long: "Create the SQLite file that holds settings and login sessions, applying any " +
		"pending schema migrations. Running it again on an up-to-date database is a no-op.",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := resolveDBPath()
		if err != nil {
			return err
		}
		if err := app.EnsureDBDir(path); err != nil {
			return err
		}
		sqldb, err := db.Open(path)
		if err != nil {
			return err
		}
		defer sqldb.Close()

		applied, err := db.Migrate(sqldb)
		if err != nil {
			return err
		}
		version, err := db.SchemaVersion(sqldb)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(applied) == 0 {
			fmt.Fprintf(out, "cq database at %s is up to date (schema v%d)\n", path, version)
			return nil
		}
		fmt.Fprintf(out, "Initialized cq database at %s (schema v%d, applied %s)\n",
			path, version, strings.Join(applied, ", "))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
