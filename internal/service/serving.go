package service

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/stealthomikey/caloriequest/internal/model"
)

const DefaultServingGrams = 100

// ServingNutrition is per-100g nutrition scaled to a serving.
type ServingNutrition struct {
	Grams    float64 `json:"grams"`
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

func ScaleToServing(n model.Nutriments, grams float64) (ServingNutrition, error) {
	if err := validatePositiveFloat("serving grams", grams); err != nil {
		return ServingNutrition{}, err
	}
	factor := grams / 100
	return ServingNutrition{
		Grams:    grams,
		Calories: round1(n.EnergyKcal100g * factor),
		Protein:  round1(n.Proteins100g * factor),
		Carbs:    round1(n.Carbohydrates100g * factor),
		Fat:      round1(n.Fat100g * factor),
	}, nil
}

// ProductCreateFrom maps a lookup result to the product payload. Nutrition stays per 100g.
func ProductCreateFrom(p model.FoodProduct) model.ProductCreate {
	name := strings.TrimSpace(p.ProductName)
	if name == "" {
		name = "Unnamed Product"
	}
	brand := strings.TrimSpace(p.Brand)
	if brand == "" {
		brand = "Unknown"
	}
	return model.ProductCreate{
		Name:     name,
		Brand:    brand,
		Quantity: "100",
		Calories: p.Nutriments.EnergyKcal100g,
		Protein:  p.Nutriments.Proteins100g,
		Carbs:    p.Nutriments.Carbohydrates100g,
		Fat:      p.Nutriments.Fat100g,
	}
}

// MealLogger saves products and logs meals against them.
type MealLogger interface {
	CreateProduct(ctx context.Context, in model.ProductCreate) (model.Product, error)
	LogMeal(ctx context.Context, in model.MealCreate) (model.LoggedMeal, error)
}

type ScanLogResult struct {
	Product model.Product    `json:"product"`
	Meal    model.LoggedMeal `json:"meal"`
	Serving ServingNutrition `json:"serving"`
}

// LogScannedProduct saves p to the account and logs grams of it as a meal.
func LogScannedProduct(ctx context.Context, api MealLogger, p model.FoodProduct, grams float64) (ScanLogResult, error) {
	serving, err := ScaleToServing(p.Nutriments, grams)
	if err != nil {
		return ScanLogResult{}, err
	}
	product, err := api.CreateProduct(ctx, ProductCreateFrom(p))
	if err != nil {
		return ScanLogResult{}, fmt.Errorf("add product %q: %w", p.ProductName, err)
	}
	meal, err := api.LogMeal(ctx, model.MealCreate{ProductID: product.ID, QuantityGrams: grams})
	if err != nil {
		return ScanLogResult{}, fmt.Errorf("log meal for product %d: %w", product.ID, err)
	}
	return ScanLogResult{Product: product, Meal: meal, Serving: serving}, nil
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
