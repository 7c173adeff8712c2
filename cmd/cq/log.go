package cq

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/stealthomikey/caloriequest/internal/backend"
	"github.com/stealthomikey/caloriequest/internal/service"
)

var (
	logListToday bool
	logListJSON  bool
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "List or delete logged food entries",
}

var logListCmd = &cobra.Command{
	Use:   "list",
	Short: "List logged food entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withBackend(func(sqldb *sql.DB, settings service.Settings, client *backend.Client) error {
			store := newStore(client)
			if err := store.Refresh(cmd.Context()); err != nil {
				return explain(err)
			}
			entries := store.Snapshot()
			if logListToday {
				entries = store.Summary(time.Now(), settings.FoodLogConfig()).Entries
			}
			if logListJSON {
				return writeJSON(cmd.OutOrStdout(), entries)
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No food logged")
				return nil
			}
			renderEntries(cmd.OutOrStdout(), entries)
			return nil
		})
	},
}

var logDeleteCmd = &cobra.Command{
	Use:   "delete <id>...",
	Short: "Delete logged food entries by id",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids := make([]int64, 0, len(args))
		for _, arg := range args {
			id, err := parseInt64Arg("food log id", arg)
			if err != nil {
				return err
			}
			ids = append(ids, id)
		}
		return withBackend(func(sqldb *sql.DB, settings service.Settings, client *backend.Client) error {
			store := newStore(client)
			if err := store.Refresh(cmd.Context()); err != nil {
				return explain(err)
			}
			failed := 0
			for _, res := range store.DeleteAll(cmd.Context(), ids) {
				if res.Err != nil {
					failed++
					fmt.Fprintf(cmd.ErrOrStderr(), "%v\n", explain(res.Err))
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted food log %d\n", res.ID)
			}
			summary := store.Summary(time.Now(), settings.FoodLogConfig())
			fmt.Fprintf(cmd.OutOrStdout(), "Today: %.0f / %.0f kcal\n", summary.Totals.Calories, summary.Feed.Goal.Goal)
			if failed > 0 {
				return fmt.Errorf("%d of %d deletes failed", failed, len(ids))
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(logCmd)
	logCmd.AddCommand(logListCmd, logDeleteCmd)
	logListCmd.Flags().BoolVar(&logListToday, "today", false, "Only entries logged today")
	logListCmd.Flags().BoolVar(&logListJSON, "json", false, "Output JSON")
}
