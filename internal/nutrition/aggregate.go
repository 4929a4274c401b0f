// internal/nutrition/aggregate.go
package nutrition

import (
	"math"
	"sort"

	"macro-log/internal/models"
)

// DailyTotals sums the effective values of every log on date.
func DailyTotals(logs []models.FoodLog, date string) models.Macros {
	var total models.Macros
	for i := range logs {
		if logs[i].Date != date {
			continue
		}
		total = total.Add(ResolveAll(&logs[i]))
	}
	return total
}

// TotalsByDate groups logs by date and sums each group.
func TotalsByDate(logs []models.FoodLog) map[string]models.Macros {
	out := make(map[string]models.Macros)
	for i := range logs {
		out[logs[i].Date] = out[logs[i].Date].Add(ResolveAll(&logs[i]))
	}
	return out
}

// Dates returns the keys of a TotalsByDate result, newest first.
func Dates(totals map[string]models.Macros) []string {
	dates := make([]string, 0, len(totals))
	for d := range totals {
		dates = append(dates, d)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))
	return dates
}

// Percentages expresses totals as a share of targets. A zero target yields 0.
func Percentages(totals models.Macros, targets models.DailyTargets) models.Macros {
	return models.Macros{
		Calories: pct(totals.Calories, targets.Get(models.FieldCalories)),
		Protein:  pct(totals.Protein, targets.Get(models.FieldProtein)),
		Carbs:    pct(totals.Carbs, targets.Get(models.FieldCarbs)),
		Fat:      pct(totals.Fat, targets.Get(models.FieldFat)),
	}
}

// Remaining returns target minus total. Negative means over target.
func Remaining(totals models.Macros, targets models.DailyTargets) models.Macros {
	return models.Macros{
		Calories: targets.Get(models.FieldCalories) - totals.Calories,
		Protein:  targets.Get(models.FieldProtein) - totals.Protein,
		Carbs:    targets.Get(models.FieldCarbs) - totals.Carbs,
		Fat:      targets.Get(models.FieldFat) - totals.Fat,
	}
}

func pct(consumed, target float64) float64 {
	if target <= 0 {
		return 0
	}
	p := 100 * consumed / target
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return 0
	}
	return p
}
