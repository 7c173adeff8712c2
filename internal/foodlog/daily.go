package foodlog

import (
	"fmt"
	"strings"
	"time"

	"github.com/stealthomikey/caloriequest/internal/model"
)

const dateLayout = "2006-01-02"

var zonedLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02T15:04:05Z0700",
	"2006-01-02 15:04:05Z0700",
}

// Timestamps without an offset are produced by the backend in UTC.
var naiveLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	dateLayout,
}

type DailyTotals struct {
	Calories     float64 `json:"calories"`
	Protein      float64 `json:"protein"`
	Carbohydrate float64 `json:"carbohydrate"`
	Fat          float64 `json:"fat"`
}

// ParseTimestamp parses an ISO-8601 logged_at value. Values without a zone are UTC.
func ParseTimestamp(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("parse timestamp %q: not ISO-8601", value)
}

// FilterDay returns the entries logged on the same calendar day as ref, with both sides
// converted to loc. Entries with malformed timestamps are left out and reported in issues.
func FilterDay(entries []model.LoggedFoodEntry, ref time.Time, loc *time.Location) ([]model.LoggedFoodEntry, []error) {
	if loc == nil {
		loc = time.Local
	}
	y, m, d := ref.In(loc).Date()
	today := make([]model.LoggedFoodEntry, 0)
	var issues []error
	for _, e := range entries {
		t, err := ParseTimestamp(e.LoggedAt)
		if err != nil {
			issues = append(issues, &MalformedTimestampError{EntryID: e.ID, Value: e.LoggedAt, Err: err})
			continue
		}
		ty, tm, td := t.In(loc).Date()
		if ty == y && tm == m && td == d {
			today = append(today, e)
		}
	}
	return today, issues
}

// Aggregate sums nutrition in entry order.
func Aggregate(entries []model.LoggedFoodEntry) DailyTotals {
	var totals DailyTotals
	for _, e := range entries {
		totals.Calories += e.Calories
		totals.Protein += e.Protein
		totals.Carbohydrate += e.Carbohydrate
		totals.Fat += e.Fat
	}
	return totals
}
