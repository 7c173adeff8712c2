package cq

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	dbPath         string
	apiURLFlag     string
	goalFlag       string
	timezoneFlag   string
	cookieNameFlag string
	verbose        bool
)

var rootCmd = &cobra.Command{
	Use:   "cq",
	Short: "cq shows your CalorieQuest food log from the terminal",
	Long:  "cq is a terminal client for CalorieQuest: today's calories and macros, food-log cleanup, barcode scanning, and recipe ideas.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadEnvFiles(); err != nil {
			return err
		}
		configureLogging(cmd.ErrOrStderr(), verbose)
		return nil
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&dbPath, "db", "", "Path to SQLite database")
	flags.StringVar(&apiURLFlag, "api-url", "", "CalorieQuest API base URL (overrides CQ_API_URL and config)")
	flags.StringVar(&goalFlag, "goal", "", "Daily calorie goal for this run")
	flags.StringVar(&timezoneFlag, "tz", "", "IANA timezone used to decide which entries are today")
	flags.StringVar(&cookieNameFlag, "cookie-name", "", "Session cookie name expected by the API")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Log debug output to stderr")
}
