package planner

import "math"

// Energy per gram of macronutrient
const (
	caloriesPerGramProtein = 4
	caloriesPerGramCarbs   = 4
	caloriesPerGramFat     = 9
)

type macroSums struct {
	calories float64
	protein  float64
	carbs    float64
	fat      float64
}

func (m *macroSums) add(calories, protein, carbs, fat, multiplier float64) {
	m.calories += calories * multiplier
	m.protein += protein * multiplier
	m.carbs += carbs * multiplier
	m.fat += fat * multiplier
}

// CalculateDailyMacros returns one totals row per day in input order.
// Recipe calories are derived from macros; a recipe with a non-positive base
// serving count contributes nothing. Totals are rounded after summing.
func CalculateDailyMacros(days []PlannerDay) []DailyMacroTotals {
	totals := make([]DailyMacroTotals, 0, len(days))

	for _, day := range days {
		var sums macroSums

		for _, meal := range day.Meals {
			servings := plannedServings(meal)

			switch {
			case meal.Recipe != nil:
				facts := meal.Recipe.Nutrition
				if facts == nil {
					continue
				}
				base := baseServings(meal.Recipe)
				multiplier := 0.0
				if base > 0 {
					multiplier = servings / base
				}
				calories := facts.Protein*caloriesPerGramProtein +
					facts.Carbs*caloriesPerGramCarbs +
					facts.Fat*caloriesPerGramFat
				sums.add(calories, facts.Protein, facts.Carbs, facts.Fat, multiplier)

			case meal.CustomFood != nil:
				food := meal.CustomFood
				sums.add(food.Calories, food.Protein, food.Carbs, food.Fat, servings)
			}
		}

		totals = append(totals, DailyMacroTotals{
			Date:          day.Date,
			TotalCalories: round(sums.calories),
			TotalProtein:  round(sums.protein),
			TotalCarbs:    round(sums.carbs),
			TotalFat:      round(sums.fat),
		})
	}

	return totals
}

func round(v float64) int {
	return int(math.Round(v))
}
