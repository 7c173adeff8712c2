package cq

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/stealthomikey/caloriequest/internal/backend"
	"github.com/stealthomikey/caloriequest/internal/service"
)

var (
	recipeBatches int
	recipeJSON    bool
)

var recipesCmd = &cobra.Command{
	Use:   "recipes",
	Short: "Browse recipe ideas",
}

var recipesSuggestCmd = &cobra.Command{
	Use:   "suggest",
	Short: "Show random recipe suggestions",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withBackend(func(sqldb *sql.DB, settings service.Settings, client *backend.Client) error {
			recipes, err := service.SuggestRecipes(cmd.Context(), client, recipeBatches)
			if err != nil {
				return explain(err)
			}
			if recipeJSON {
				return writeJSON(cmd.OutOrStdout(), recipes)
			}
			renderRecipes(cmd.OutOrStdout(), recipes)
			return nil
		})
	},
}

var recipesSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search recipes by name",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.Join(args, " ")
		return withBackend(func(sqldb *sql.DB, settings service.Settings, client *backend.Client) error {
			recipes, searched, err := service.SearchRecipes(cmd.Context(), client, query)
			if err != nil {
				return explain(err)
			}
			if !searched {
				return fmt.Errorf("search query must be at least 2 characters")
			}
			if recipeJSON {
				return writeJSON(cmd.OutOrStdout(), recipes)
			}
			renderRecipes(cmd.OutOrStdout(), recipes)
			return nil
		})
	},
}

var recipesShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one recipe with ingredients and instructions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withBackend(func(sqldb *sql.DB, settings service.Settings, client *backend.Client) error {
			r, err := service.GetRecipe(cmd.Context(), client, args[0])
			if err != nil {
				return explain(err)
			}
			if recipeJSON {
				return writeJSON(cmd.OutOrStdout(), r)
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%s\n%s\n\nIngredients:\n", r.Title, r.Description)
			for _, ing := range r.Ingredients {
				fmt.Fprintf(w, "  - %s %s\n", strings.TrimSpace(ing.Measure), ing.Name)
			}
			fmt.Fprintf(w, "\nInstructions:\n%s\n", r.Instructions)
			if r.Source != "" {
				fmt.Fprintf(w, "\nSource: %s\n", r.Source)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(recipesCmd)
	recipesCmd.AddCommand(recipesSuggestCmd, recipesSearchCmd, recipesShowCmd)
	recipesCmd.PersistentFlags().BoolVar(&recipeJSON, "json", false, "Output JSON")
	recipesSuggestCmd.Flags().IntVar(&recipeBatches, "batches", service.DefaultSuggestionBatches, "Number of suggestion batches to load")
}
