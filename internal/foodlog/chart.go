package foodlog

import "math"

const (
	LabelProtein      = "Protein"
	LabelCarbohydrate = "Carbohydrate"
	LabelFat          = "Fat"
)

type MacroSlice struct {
	Label   string  `json:"label"`
	Value   float64 `json:"value"`
	Percent float64 `json:"percent"`
}

type GoalBar struct {
	Consumed      float64 `json:"consumed"`
	Remaining     float64 `json:"remaining"`
	Goal          float64 `json:"goal"`
	PercentOfGoal float64 `json:"percent_of_goal"`
	OverGoal      bool    `json:"over_goal"`
	// ShowRemaining is false when the remaining segment would have no width.
	ShowRemaining bool `json:"show_remaining"`
}

type ChartFeed struct {
	Macros []MacroSlice `json:"macros"`
	Goal   GoalBar      `json:"goal"`
}

// HasMacroData reports whether there is anything to draw in the macro chart.
func (f ChartFeed) HasMacroData() bool {
	return len(f.Macros) > 0
}

func BuildChartFeed(totals DailyTotals, goal float64) ChartFeed {
	return ChartFeed{
		Macros: MacroDistribution(totals),
		Goal:   BuildGoalBar(totals.Calories, goal),
	}
}

// MacroDistribution emits Protein, Carbohydrate and Fat in that order, skipping
// non-positive values.
func MacroDistribution(totals DailyTotals) []MacroSlice {
	candidates := []MacroSlice{
		{Label: LabelProtein, Value: totals.Protein},
		{Label: LabelCarbohydrate, Value: totals.Carbohydrate},
		{Label: LabelFat, Value: totals.Fat},
	}
	out := make([]MacroSlice, 0, len(candidates))
	sum := 0.0
	for _, c := range candidates {
		if c.Value > 0 {
			out = append(out, c)
			sum += c.Value
		}
	}
	for i := range out {
		out[i].Percent = percent(out[i].Value, sum)
	}
	return out
}

func BuildGoalBar(consumed, goal float64) GoalBar {
	over := consumed > goal
	remaining := math.Max(0, goal-consumed)
	return GoalBar{
		Consumed:      consumed,
		Remaining:     remaining,
		Goal:          goal,
		PercentOfGoal: percent(consumed, goal),
		OverGoal:      over,
		ShowRemaining: remaining > 0,
	}
}

// percent is part/whole*100 rounded to one decimal, 0 when whole is not positive.
func percent(part, whole float64) float64 {
	if whole <= 0 {
		return 0
	}
	return round1(part / whole * 100)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
