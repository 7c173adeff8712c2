package cq

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stealthomikey/caloriequest/internal/backend"
	"github.com/stealthomikey/caloriequest/internal/service"
)

var productsJSON bool

var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "List products saved to your account",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withBackend(func(sqldb *sql.DB, settings service.Settings, client *backend.Client) error {
			products, err := client.ListProducts(cmd.Context())
			if err != nil {
				return explain(err)
			}
			if productsJSON {
				return writeJSON(cmd.OutOrStdout(), products)
			}
			if len(products) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No saved products")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ID\tNAME\tBRAND\tKCAL/100G\tP\tC\tF")
			for _, p := range products {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\t%.0f\t%.1f\t%.1f\t%.1f\n", p.ID, p.Name, p.Brand, p.Calories, p.Protein, p.Carbs, p.Fat)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(productsCmd)
	productsCmd.Flags().BoolVar(&productsJSON, "json", false, "Output JSON")
}
