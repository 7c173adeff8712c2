package model

import "encoding/json"

// LoggedFoodEntry is one consumption event as returned by GET /food-logs/history.
// Nutrition values are already scaled to the logged serving.
type LoggedFoodEntry struct {
	ID           int64   `json:"id"`
	UserID       int64   `json:"user_id"`
	ProductName  string  `json:"product_name"`
	ServingSizeG float64 `json:"serving_size_g"`
	Calories     float64 `json:"calories"`
	Protein      float64 `json:"proteins"`
	Carbohydrate float64 `json:"carbohydrates"`
	Fat          float64 `json:"fats"`
	LoggedAt     string  `json:"logged_at"`
}

type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Nutriments are per-100g reference values.
type Nutriments struct {
	EnergyKcal100g    float64 `json:"energy-kcal_100g"`
	Fat100g           float64 `json:"fat_100g"`
	Carbohydrates100g float64 `json:"carbohydrates_100g"`
	Proteins100g      float64 `json:"proteins_100g"`
}

// UnmarshalJSON accepts both the Open Food Facts key (energy-kcal_100g) and the
// underscore form some backend versions emit (energy_kcal_100g). Nulls decode as zero.
func (n *Nutriments) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	pick := func(keys ...string) float64 {
		for _, k := range keys {
			var v *float64
			if err := json.Unmarshal(raw[k], &v); err == nil && v != nil {
				return *v
			}
		}
		return 0
	}
	n.EnergyKcal100g = pick("energy-kcal_100g", "energy_kcal_100g")
	n.Fat100g = pick("fat_100g")
	n.Carbohydrates100g = pick("carbohydrates_100g")
	n.Proteins100g = pick("proteins_100g")
	return nil
}

// FoodProduct is a barcode lookup result.
type FoodProduct struct {
	Code        string     `json:"code"`
	ProductName string     `json:"product_name"`
	ImageURL    string     `json:"image_url,omitempty"`
	Brand       string     `json:"brand,omitempty"`
	Quantity    string     `json:"quantity,omitempty"`
	ServingSize string     `json:"serving_size,omitempty"`
	Nutriments  Nutriments `json:"nutriments"`
}

// Product is a product saved to the user's account.
type Product struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Brand    string  `json:"brand"`
	Quantity string  `json:"quantity"`
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
	OwnerID  int64   `json:"owner_id"`
}

type ProductCreate struct {
	Name     string  `json:"name"`
	Brand    string  `json:"brand"`
	Quantity string  `json:"quantity"`
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

type MealCreate struct {
	ProductID     int64   `json:"product_id"`
	QuantityGrams float64 `json:"quantity_grams"`
}

type LoggedMeal struct {
	ID            int64   `json:"id"`
	ProductID     int64   `json:"product_id"`
	QuantityGrams float64 `json:"quantity_grams"`
	LoggedAt      string  `json:"logged_at,omitempty"`
}

type Ingredient struct {
	Name    string `json:"name"`
	Measure string `json:"measure"`
}

// APIRecipe is the recipe shape served by the backend's /meals endpoints.
type APIRecipe struct {
	IDMeal          string       `json:"idMeal"`
	StrMeal         string       `json:"strMeal"`
	StrMealThumb    string       `json:"strMealThumb"`
	StrInstructions string       `json:"strInstructions"`
	StrSource       *string      `json:"strSource"`
	Ingredients     []Ingredient `json:"ingredients"`
}

type Recipe struct {
	ID           string       `json:"id"`
	Title        string       `json:"title"`
	ImageURL     string       `json:"image_url"`
	Description  string       `json:"description"`
	Instructions string       `json:"instructions"`
	Source       string       `json:"source,omitempty"`
	Ingredients  []Ingredient `json:"ingredients"`
}
