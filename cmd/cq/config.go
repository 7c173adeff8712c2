package cq

import (
	"database/sql"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/stealthomikey/caloriequest/internal/service"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage cq local configuration",
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			if err := service.SetConfig(sqldb, args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Set %s\n", args[0])
			return nil
		})
	},
}

var configUnsetCmd = &cobra.Command{
	Use:   "unset <key>",
	Short: "Remove a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			removed, err := service.UnsetConfig(sqldb, args[0])
			if err != nil {
				return err
			}
			if !removed {
				fmt.Fprintf(cmd.OutOrStdout(), "%s was not set\n", args[0])
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Unset %s\n", args[0])
			return nil
		})
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Show stored configuration",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			if len(args) == 1 {
				value, ok, err := service.GetConfig(sqldb, args[0])
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("%s is not set", args[0])
				}
				fmt.Fprintln(cmd.OutOrStdout(), value)
				return nil
			}
			cfg, err := service.ListConfig(sqldb)
			if err != nil {
				return err
			}
			keys := make([]string, 0, len(cfg))
			for k := range cfg {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintln(cmd.OutOrStdout(), "KEY\tVALUE")
			for _, k := range keys {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", k, cfg[k])
			}
			return nil
		})
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective settings after flags, environment and stored config",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSettings(func(sqldb *sql.DB, s service.Settings) error {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "KEY\tVALUE\tENV")
			fmt.Fprintf(out, "%s\t%s\t%s\n", service.ConfigAPIURL, s.APIURL, service.EnvVarFor(service.ConfigAPIURL))
			fmt.Fprintf(out, "%s\t%g\t%s\n", service.ConfigDailyGoal, s.DailyGoal, service.EnvVarFor(service.ConfigDailyGoal))
			fmt.Fprintf(out, "%s\t%s\t%s\n", service.ConfigTimezone, s.Timezone, service.EnvVarFor(service.ConfigTimezone))
			fmt.Fprintf(out, "%s\t%s\t%s\n", service.ConfigCookieName, s.CookieName, service.EnvVarFor(service.ConfigCookieName))
			timeout := "none"
			if s.RequestTimeout > 0 {
				timeout = s.RequestTimeout.String()
			}
			fmt.Fprintf(out, "%s\t%s\t%s\n", service.ConfigRequestTimeout, timeout, service.EnvVarFor(service.ConfigRequestTimeout))
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configSetCmd, configUnsetCmd, configGetCmd, configShowCmd)
}
