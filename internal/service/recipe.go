package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/stealthomikey/caloriequest/internal/model"
)

const (
	defaultRecipeDescription = "A delicious and easy-to-make meal."
	maxDescriptionRunes      = 100
	minRecipeQueryLen        = 2
	DefaultSuggestionBatches = 2
)

// RecipeSource is the backend's recipe API.
type RecipeSource interface {
	RecipeSuggestions(ctx context.Context) ([]model.APIRecipe, error)
	SearchRecipes(ctx context.Context, query string) ([]model.APIRecipe, error)
	Recipe(ctx context.Context, id string) (model.APIRecipe, error)
}

// ShortDescription returns the first sentence of instructions, cut to 100 characters.
func ShortDescription(instructions string) string {
	instructions = strings.TrimSpace(instructions)
	if instructions == "" {
		return defaultRecipeDescription
	}
	first := strings.TrimSpace(strings.SplitN(instructions, ". ", 2)[0])
	runes := []rune(first)
	if len(runes) > maxDescriptionRunes {
		return string(runes[:maxDescriptionRunes]) + "..."
	}
	return strings.TrimRight(first, ".") + "."
}

func ToRecipe(in model.APIRecipe) model.Recipe {
	out := model.Recipe{
		ID:           in.IDMeal,
		Title:        strings.TrimSpace(in.StrMeal),
		ImageURL:     in.StrMealThumb,
		Description:  ShortDescription(in.StrInstructions),
		Instructions: strings.TrimSpace(in.StrInstructions),
		Ingredients:  in.Ingredients,
	}
	if in.StrSource != nil {
		out.Source = strings.TrimSpace(*in.StrSource)
	}
	if out.Ingredients == nil {
		out.Ingredients = []model.Ingredient{}
	}
	return out
}

func ToRecipes(in []model.APIRecipe) []model.Recipe {
	out := make([]model.Recipe, 0, len(in))
	for _, r := range in {
		out = append(out, ToRecipe(r))
	}
	return out
}

// MergeRecipes appends the recipes in more whose id is not already present.
func MergeRecipes(existing, more []model.Recipe) []model.Recipe {
	seen := make(map[string]struct{}, len(existing)+len(more))
	out := make([]model.Recipe, 0, len(existing)+len(more))
	for _, r := range existing {
		if _, ok := seen[r.ID]; ok {
			continue
		}
		seen[r.ID] = struct{}{}
		out = append(out, r)
	}
	for _, r := range more {
		if _, ok := seen[r.ID]; ok {
			continue
		}
		seen[r.ID] = struct{}{}
		out = append(out, r)
	}
	return out
}

// SuggestRecipes loads batches of random suggestions and merges them by id.
func SuggestRecipes(ctx context.Context, src RecipeSource, batches int) ([]model.Recipe, error) {
	if batches <= 0 {
		return nil, fmt.Errorf("batches must be > 0")
	}
	var out []model.Recipe
	for i := 0; i < batches; i++ {
		batch, err := src.RecipeSuggestions(ctx)
		if err != nil {
			return nil, fmt.Errorf("load recipe suggestions: %w", err)
		}
		out = MergeRecipes(out, ToRecipes(batch))
	}
	if out == nil {
		out = []model.Recipe{}
	}
	return out, nil
}

// SearchRecipes returns (nil, false, nil) without calling the backend when the trimmed
// query is shorter than two characters.
func SearchRecipes(ctx context.Context, src RecipeSource, query string) ([]model.Recipe, bool, error) {
	query = strings.TrimSpace(query)
	if len([]rune(query)) < minRecipeQueryLen {
		return nil, false, nil
	}
	found, err := src.SearchRecipes(ctx, query)
	if err != nil {
		return nil, true, fmt.Errorf("search recipes %q: %w", query, err)
	}
	return ToRecipes(found), true, nil
}

func GetRecipe(ctx context.Context, src RecipeSource, id string) (model.Recipe, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return model.Recipe{}, fmt.Errorf("recipe id is required")
	}
	r, err := src.Recipe(ctx, id)
	if err != nil {
		return model.Recipe{}, fmt.Errorf("get recipe %s: %w", id, err)
	}
	return ToRecipe(r), nil
}
