package foodlog_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stealthomikey/caloriequest/internal/foodlog"
)

func TestMacroDistributionOrderAndOmission(t *testing.T) {
	t.Parallel()

	macros := foodlog.MacroDistribution(foodlog.DailyTotals{Protein: 30, Carbohydrate: 0, Fat: 20})
	require.Len(t, macros, 2)
	assert.Equal(t, foodlog.LabelProtein, macros[0].Label)
	assert.Equal(t, foodlog.LabelFat, macros[1].Label)
	assert.Equal(t, 60.0, macros[0].Percent)
	assert.Equal(t, 40.0, macros[1].Percent)

	macros = foodlog.MacroDistribution(foodlog.DailyTotals{Protein: -1, Carbohydrate: 5})
	require.Len(t, macros, 1)
	assert.Equal(t, foodlog.LabelCarbohydrate, macros[0].Label)
	assert.Equal(t, 100.0, macros[0].Percent)
}

func TestMacroDistributionPercentRoundsToOneDecimal(t *testing.T) {
	t.Parallel()

	macros := foodlog.MacroDistribution(foodlog.DailyTotals{Protein: 1, Carbohydrate: 1, Fat: 1})
	require.Len(t, macros, 3)
	for _, m := range macros {
		assert.Equal(t, 33.3, m.Percent)
	}
}

func TestMacroDistributionConservesSum(t *testing.T) {
	t.Parallel()

	totals := []foodlog.DailyTotals{
		{Protein: 30, Carbohydrate: 90, Fat: 20},
		{Protein: 0.1, Carbohydrate: 0.2, Fat: 0.3},
		{Protein: 12.75, Fat: 4.25},
		{},
	}
	for _, tt := range totals {
		sum := 0.0
		for _, m := range foodlog.MacroDistribution(tt) {
			sum += m.Value
		}
		assert.InDelta(t, tt.Protein+tt.Carbohydrate+tt.Fat, sum, 1e-9)
	}
}

func TestGoalBarNeverNegative(t *testing.T) {
	t.Parallel()

	for _, c := range []float64{0, 1, 1999, 2000, 2001, 5000} {
		for _, g := range []float64{0, 1, 2000, 3500} {
			bar := foodlog.BuildGoalBar(c, g)
			assert.GreaterOrEqual(t, bar.Remaining, 0.0, "c=%v g=%v", c, g)
			assert.False(t, math.IsNaN(bar.PercentOfGoal), "c=%v g=%v", c, g)
			assert.Equal(t, c > g, bar.OverGoal)
			assert.Equal(t, bar.Remaining > 0, bar.ShowRemaining, "c=%v g=%v", c, g)
		}
	}
}

func TestGoalBarOverGoal(t *testing.T) {
	t.Parallel()

	bar := foodlog.BuildGoalBar(2300, 2000)
	assert.Equal(t, 0.0, bar.Remaining)
	assert.Equal(t, 115.0, bar.PercentOfGoal)
	assert.True(t, bar.OverGoal)
	assert.False(t, bar.ShowRemaining)
	assert.Equal(t, 2000.0, bar.Goal)
}

func TestGoalBarZeroGoalIsGuarded(t *testing.T) {
	t.Parallel()

	bar := foodlog.BuildGoalBar(150, 0)
	assert.Equal(t, 0.0, bar.PercentOfGoal)
	assert.True(t, bar.OverGoal)

	bar = foodlog.BuildGoalBar(0, 0)
	assert.Equal(t, 0.0, bar.PercentOfGoal)
	assert.False(t, bar.OverGoal)
	assert.Equal(t, 0.0, bar.Remaining)
	assert.False(t, bar.ShowRemaining)
}

func TestGoalBarExactlyAtGoalHasNoRemainingSegment(t *testing.T) {
	t.Parallel()

	bar := foodlog.BuildGoalBar(2000, 2000)
	assert.False(t, bar.OverGoal)
	assert.Equal(t, 100.0, bar.PercentOfGoal)
	assert.False(t, bar.ShowRemaining)
}

func TestChartFeedNoDataState(t *testing.T) {
	t.Parallel()

	feed := foodlog.BuildChartFeed(foodlog.DailyTotals{}, 2000)
	assert.False(t, feed.HasMacroData())
	assert.Empty(t, feed.Macros)
	assert.Equal(t, 0.0, feed.Goal.PercentOfGoal)
	assert.Equal(t, 2000.0, feed.Goal.Remaining)
}
