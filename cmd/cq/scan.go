package cq

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stealthomikey/caloriequest/internal/backend"
	"github.com/stealthomikey/caloriequest/internal/service"
)

var (
	scanGrams    float64
	scanLog      bool
	scanDirect   bool
	scanFallback bool
	scanJSON     bool
)

var scanCmd = &cobra.Command{
	Use:   "scan <barcode>",
	Short: "Look up a product by barcode and optionally log a serving",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withBackend(func(sqldb *sql.DB, settings service.Settings, client *backend.Client) error {
			res, err := service.LookupProduct(cmd.Context(), client, newOpenFoodFactsClient(settings), args[0], service.LookupOptions{
				Direct:   scanDirect,
				Fallback: scanFallback,
			})
			if err != nil {
				return explain(err)
			}
			serving, err := service.ScaleToServing(res.Product.Nutriments, scanGrams)
			if err != nil {
				return err
			}

			var logged *service.ScanLogResult
			if scanLog {
				out, err := service.LogScannedProduct(cmd.Context(), client, res.Product, scanGrams)
				if err != nil {
					return explain(err)
				}
				logged = &out
			}

			if scanJSON {
				return writeJSON(cmd.OutOrStdout(), map[string]any{
					"source":  res.Source,
					"product": res.Product,
					"serving": serving,
					"logged":  logged,
				})
			}
			w := cmd.OutOrStdout()
			p := res.Product
			fmt.Fprintf(w, "%s (%s) [%s]\n", p.ProductName, p.Brand, res.Source)
			fmt.Fprintf(w, "Per 100g: %.0f kcal | P %.1fg | C %.1fg | F %.1fg\n",
				p.Nutriments.EnergyKcal100g, p.Nutriments.Proteins100g, p.Nutriments.Carbohydrates100g, p.Nutriments.Fat100g)
			fmt.Fprintf(w, "Per %.0fg: %.1f kcal | P %.1fg | C %.1fg | F %.1fg\n",
				serving.Grams, serving.Calories, serving.Protein, serving.Carbs, serving.Fat)
			if logged != nil {
				fmt.Fprintf(w, "Logged meal %d (product %d)\n", logged.Meal.ID, logged.Product.ID)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(scanCmd)
	scanCmd.Flags().Float64Var(&scanGrams, "grams", service.DefaultServingGrams, "Serving size in grams")
	scanCmd.Flags().BoolVar(&scanLog, "log", false, "Add the product to your account and log the serving")
	scanCmd.Flags().BoolVar(&scanDirect, "direct", false, "Query Open Food Facts directly instead of the API")
	scanCmd.Flags().BoolVar(&scanFallback, "fallback", true, "Query Open Food Facts when the API has no product")
	scanCmd.Flags().BoolVar(&scanJSON, "json", false, "Output JSON")
}
