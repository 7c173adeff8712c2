package foodlog_test

import (
	"context"
	"fmt"

	"github.com/stealthomikey/caloriequest/internal/model"
)

type fakeBackend struct {
	historyFn func(ctx context.Context) ([]model.LoggedFoodEntry, error)
	deleteFn  func(ctx context.Context, id int64) error
}

func (f *fakeBackend) FoodLogHistory(ctx context.Context) ([]model.LoggedFoodEntry, error) {
	return f.historyFn(ctx)
}

func (f *fakeBackend) DeleteFoodLog(ctx context.Context, id int64) error {
	if f.deleteFn == nil {
		return nil
	}
	return f.deleteFn(ctx, id)
}

func staticHistory(entries ...model.LoggedFoodEntry) func(context.Context) ([]model.LoggedFoodEntry, error) {
	return func(context.Context) ([]model.LoggedFoodEntry, error) {
		out := make([]model.LoggedFoodEntry, len(entries))
		copy(out, entries)
		return out, nil
	}
}

type statusErr struct {
	status int
	detail string
}

func (e *statusErr) Error() string {
	return fmt.Sprintf("status %d: %s", e.status, e.detail)
}

func (e *statusErr) HTTPStatus() int      { return e.status }
func (e *statusErr) ServerDetail() string { return e.detail }

func entry(id int64, loggedAt string, kcal, protein, carbs, fat float64) model.LoggedFoodEntry {
	return model.LoggedFoodEntry{
		ID:           id,
		UserID:       1,
		ProductName:  fmt.Sprintf("item-%d", id),
		ServingSizeG: 100,
		Calories:     kcal,
		Protein:      protein,
		Carbohydrate: carbs,
		Fat:          fat,
		LoggedAt:     loggedAt,
	}
}

func ids(entries []model.LoggedFoodEntry) []int64 {
	out := make([]int64, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.ID)
	}
	return out
}
