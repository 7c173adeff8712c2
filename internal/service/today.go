package service

import (
	"context"
	"time"

	"github.com/stealthomikey/caloriequest/internal/foodlog"
)

// TodaySummary refreshes store and derives the daily view for the calendar day of now.
// A refresh failure leaves the store empty and is returned alongside a zero summary so
// callers can still render the empty state.
func TodaySummary(ctx context.Context, store *foodlog.Store, now time.Time, settings Settings) (foodlog.Summary, error) {
	cfg := settings.FoodLogConfig()
	if err := cfg.Validate(); err != nil {
		return foodlog.Summary{}, err
	}
	if err := store.Refresh(ctx); err != nil {
		return store.Summary(now, cfg), err
	}
	return store.Summary(now, cfg), nil
}

// ParseDay parses a YYYY-MM-DD day in loc. Empty input means now.
func ParseDay(value string, now time.Time, loc *time.Location) (time.Time, error) {
	if value == "" {
		return now, nil
	}
	if loc == nil {
		loc = time.Local
	}
	d, err := time.ParseInLocation("2006-01-02", value, loc)
	if err != nil {
		return time.Time{}, err
	}
	// noon keeps the day stable against DST shifts
	return d.Add(12 * time.Hour), nil
}
