package service_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stealthomikey/caloriequest/internal/db"
	"github.com/stealthomikey/caloriequest/internal/model"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cq.db")
	sqldb, err := db.Open(path)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.ApplyMigrations(sqldb); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	return sqldb
}

func noEnv(string) (string, bool) { return "", false }

func envOf(values map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	}
}

type fakeAPI struct {
	suggestions [][]model.APIRecipe
	searchCalls []string
	searchOut   []model.APIRecipe
	recipe      model.APIRecipe
	products    map[string]model.FoodProduct
	lookupErr   error
	created     []model.ProductCreate
	meals       []model.MealCreate
	createErr   error
	logErr      error
}

func (f *fakeAPI) RecipeSuggestions(ctx context.Context) ([]model.APIRecipe, error) {
	if len(f.suggestions) == 0 {
		return nil, nil
	}
	batch := f.suggestions[0]
	f.suggestions = f.suggestions[1:]
	return batch, nil
}

func (f *fakeAPI) SearchRecipes(ctx context.Context, query string) ([]model.APIRecipe, error) {
	f.searchCalls = append(f.searchCalls, query)
	return f.searchOut, nil
}

func (f *fakeAPI) Recipe(ctx context.Context, id string) (model.APIRecipe, error) {
	return f.recipe, nil
}

func (f *fakeAPI) LookupProduct(ctx context.Context, barcode string) (model.FoodProduct, error) {
	if f.lookupErr != nil {
		return model.FoodProduct{}, f.lookupErr
	}
	return f.products[barcode], nil
}

func (f *fakeAPI) CreateProduct(ctx context.Context, in model.ProductCreate) (model.Product, error) {
	if f.createErr != nil {
		return model.Product{}, f.createErr
	}
	f.created = append(f.created, in)
	return model.Product{ID: int64(len(f.created)) + 10, Name: in.Name, Brand: in.Brand, Calories: in.Calories}, nil
}

func (f *fakeAPI) LogMeal(ctx context.Context, in model.MealCreate) (model.LoggedMeal, error) {
	if f.logErr != nil {
		return model.LoggedMeal{}, f.logErr
	}
	f.meals = append(f.meals, in)
	return model.LoggedMeal{ID: 70, ProductID: in.ProductID, QuantityGrams: in.QuantityGrams}, nil
}

type fakeOFF struct {
	product model.FoodProduct
	err     error
	calls   int
}

func (f *fakeOFF) LookupBarcode(ctx context.Context, barcode string) (model.FoodProduct, error) {
	f.calls++
	if f.err != nil {
		return model.FoodProduct{}, f.err
	}
	p := f.product
	p.Code = barcode
	return p, nil
}
