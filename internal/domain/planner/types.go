// Package planner aggregates planned meals into daily macro totals and
// consolidated shopping lists. Every function is pure over its input.
package planner

// Ingredient is a recipe ingredient line used for shopping lists
type Ingredient struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
	Unit   string  `json:"unit"`
	Notes  string  `json:"notes,omitempty"`
}

// NutritionFacts are macros in grams for the recipe's base serving count
type NutritionFacts struct {
	Protein float64 `json:"protein"`
	Carbs   float64 `json:"carbs"`
	Fat     float64 `json:"fat"`
}

// RecipeRef is a recipe as referenced by a planned meal.
// A nil Servings means the recipe declares no base serving count.
type RecipeRef struct {
	Servings    *float64        `json:"servings,omitempty"`
	Nutrition   *NutritionFacts `json:"nutrition,omitempty"`
	Ingredients []Ingredient    `json:"ingredients,omitempty"`
}

// CustomFoodRef is a free-form food entry with macros for one serving
type CustomFoodRef struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// PlannedMeal is one scheduled meal. Callers set exactly one of Recipe or CustomFood.
type PlannedMeal struct {
	ServingsMultiplier *float64       `json:"servingsMultiplier,omitempty"`
	Recipe             *RecipeRef     `json:"recipe,omitempty"`
	CustomFood         *CustomFoodRef `json:"customFood,omitempty"`
}

// PlannerDay groups the meals planned for a date
type PlannerDay struct {
	Date  string        `json:"date"`
	Meals []PlannedMeal `json:"meals"`
}

// DailyMacroTotals are the rounded macro sums of a day
type DailyMacroTotals struct {
	Date          string `json:"date"`
	TotalCalories int    `json:"totalCalories"`
	TotalProtein  int    `json:"totalProtein"`
	TotalCarbs    int    `json:"totalCarbs"`
	TotalFat      int    `json:"totalFat"`
}

// ShoppingListItem is a consolidated ingredient across selected meals
type ShoppingListItem struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
	Unit   string  `json:"unit"`
}

// Float returns a pointer to v, for optional fields
func Float(v float64) *float64 {
	return &v
}

func plannedServings(meal PlannedMeal) float64 {
	if meal.ServingsMultiplier == nil {
		return 1.0
	}
	return *meal.ServingsMultiplier
}

func baseServings(recipe *RecipeRef) float64 {
	if recipe.Servings == nil {
		return 1
	}
	return *recipe.Servings
}
