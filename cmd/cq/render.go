package cq

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/stealthomikey/caloriequest/internal/foodlog"
	"github.com/stealthomikey/caloriequest/internal/model"
)

const goalBarWidth = 30

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func renderSummary(w io.Writer, s foodlog.Summary) {
	fmt.Fprintf(w, "Date: %s (%s)\n", s.Date, s.Timezone)
	renderGoalBar(w, s.Feed.Goal)
	fmt.Fprintf(w, "Macros: P %.1fg | C %.1fg | F %.1fg\n", s.Totals.Protein, s.Totals.Carbohydrate, s.Totals.Fat)
	if s.Feed.HasMacroData() {
		for _, m := range s.Feed.Macros {
			fmt.Fprintf(w, "  %-13s %6.1fg %5.1f%%\n", m.Label, m.Value, m.Percent)
		}
	} else {
		fmt.Fprintln(w, "  No macro data yet")
	}
	if len(s.Entries) == 0 {
		fmt.Fprintln(w, "No food logged today")
	} else {
		fmt.Fprintln(w)
		renderEntries(w, s.Entries)
	}
	for _, warning := range s.Warnings {
		fmt.Fprintf(w, "warning: %s\n", warning)
	}
}

func renderGoalBar(w io.Writer, g foodlog.GoalBar) {
	filled := 0
	if g.Goal > 0 {
		filled = int(math.Round(math.Min(g.Consumed/g.Goal, 1) * goalBarWidth))
	} else if g.Consumed > 0 {
		filled = goalBarWidth
	}
	bar := strings.Repeat("#", filled) + strings.Repeat(".", goalBarWidth-filled)
	fmt.Fprintf(w, "Calories: [%s] %.0f / %.0f kcal (%.1f%%)\n", bar, g.Consumed, g.Goal, g.PercentOfGoal)
	switch {
	case g.OverGoal:
		fmt.Fprintf(w, "Over goal by %.0f kcal\n", g.Consumed-g.Goal)
	case g.ShowRemaining:
		fmt.Fprintf(w, "Remaining: %.0f kcal\n", g.Remaining)
	}
}

func renderEntries(w io.Writer, entries []model.LoggedFoodEntry) {
	fmt.Fprintln(w, "ID\tLOGGED AT\tFOOD\tGRAMS\tKCAL\tP\tC\tF")
	for _, e := range entries {
		fmt.Fprintf(w, "%d\t%s\t%s\t%.0f\t%.0f\t%.1f\t%.1f\t%.1f\n",
			e.ID, e.LoggedAt, e.ProductName, e.ServingSizeG, e.Calories, e.Protein, e.Carbohydrate, e.Fat)
	}
}

func renderRecipes(w io.Writer, recipes []model.Recipe) {
	if len(recipes) == 0 {
		fmt.Fprintln(w, "No recipes found")
		return
	}
	for _, r := range recipes {
		fmt.Fprintf(w, "%s\t%s\n\t%s\n", r.ID, r.Title, r.Description)
	}
}
