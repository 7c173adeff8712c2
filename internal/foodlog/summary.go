package foodlog

import (
	"fmt"
	"time"

	"github.com/stealthomikey/caloriequest/internal/model"
)

const DefaultGoal = 2000

// Config carries the viewer-specific inputs of the daily pipeline.
type Config struct {
	Goal     float64
	Location *time.Location
}

func (c Config) Validate() error {
	if c.Goal < 0 {
		return fmt.Errorf("daily goal must be >= 0")
	}
	return nil
}

func (c Config) location() *time.Location {
	if c.Location == nil {
		return time.Local
	}
	return c.Location
}

type Summary struct {
	Date     string                  `json:"date"`
	Timezone string                  `json:"timezone"`
	Entries  []model.LoggedFoodEntry `json:"entries"`
	Totals   DailyTotals             `json:"totals"`
	Feed     ChartFeed               `json:"chart"`
	Issues   []error                 `json:"-"`
	Warnings []string                `json:"warnings,omitempty"`
}

// Summarize runs filter, aggregation and chart building over one snapshot.
func Summarize(entries []model.LoggedFoodEntry, now time.Time, cfg Config) Summary {
	loc := cfg.location()
	today, issues := FilterDay(entries, now, loc)
	totals := Aggregate(today)
	s := Summary{
		Date:     now.In(loc).Format(dateLayout),
		Timezone: loc.String(),
		Entries:  today,
		Totals:   totals,
		Feed:     BuildChartFeed(totals, cfg.Goal),
		Issues:   issues,
	}
	for _, issue := range issues {
		s.Warnings = append(s.Warnings, issue.Error())
	}
	return s
}
