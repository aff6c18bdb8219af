package handlers

import (
	"github.com/alchemorsel/nutrition/internal/domain/dietary"
	"github.com/alchemorsel/nutrition/internal/domain/planner"
	"github.com/go-playground/validator/v10"
)

// IngredientRequest is an ingredient line in a request body
type IngredientRequest struct {
	Name   string  `json:"name" validate:"required,ingredient"`
	Amount float64 `json:"amount" validate:"gte=0,lte=1000000"`
	Unit   string  `json:"unit" validate:"unit"`
	Notes  string  `json:"notes,omitempty" validate:"max=500"`
}

// AnalyzeRequest is the body of POST /dietary/analyze
type AnalyzeRequest struct {
	Ingredients   []IngredientRequest `json:"ingredients" validate:"required,max=500,dive"`
	IsPescatarian bool                `json:"isPescatarian"`
}

// TagRecipeRequest is the body of PUT /recipes/:id/dietary
type TagRecipeRequest struct {
	Ingredients   []IngredientRequest `json:"ingredients" validate:"required,max=500,dive"`
	IsPescatarian bool                `json:"isPescatarian"`
}

// NutritionRequest carries recipe macros in grams for its base servings
type NutritionRequest struct {
	Protein float64 `json:"protein" validate:"gte=0,lte=1000000"`
	Carbs   float64 `json:"carbs" validate:"gte=0,lte=1000000"`
	Fat     float64 `json:"fat" validate:"gte=0,lte=1000000"`
}

// RecipeRequest is a planned recipe
type RecipeRequest struct {
	Servings    *float64            `json:"servings,omitempty" validate:"omitempty,servings"`
	Nutrition   *NutritionRequest   `json:"nutrition,omitempty"`
	Ingredients []IngredientRequest `json:"ingredients,omitempty" validate:"max=500,dive"`
}

// CustomFoodRequest is a free-form food with per-serving macros
type CustomFoodRequest struct {
	Calories float64 `json:"calories" validate:"gte=0,lte=1000000"`
	Protein  float64 `json:"protein" validate:"gte=0,lte=1000000"`
	Carbs    float64 `json:"carbs" validate:"gte=0,lte=1000000"`
	Fat      float64 `json:"fat" validate:"gte=0,lte=1000000"`
}

// MealRequest is a planned meal; exactly one of Recipe or CustomFood is set
type MealRequest struct {
	ServingsMultiplier *float64           `json:"servingsMultiplier,omitempty" validate:"omitempty,gte=0,lte=1000"`
	Recipe             *RecipeRequest     `json:"recipe,omitempty"`
	CustomFood         *CustomFoodRequest `json:"customFood,omitempty"`
}

// DayRequest groups the meals of a date
type DayRequest struct {
	Date  string        `json:"date" validate:"required,max=64"`
	Meals []MealRequest `json:"meals" validate:"max=1000,dive"`
}

// MacrosRequest is the body of POST /planner/macros
type MacrosRequest struct {
	Days []DayRequest `json:"days" validate:"required,max=366,dive"`
}

// TargetsRequest holds daily macro goals
type TargetsRequest struct {
	Calories float64 `json:"calories" validate:"gte=0,lte=1000000"`
	Protein  float64 `json:"protein" validate:"gte=0,lte=1000000"`
	Carbs    float64 `json:"carbs" validate:"gte=0,lte=1000000"`
	Fat      float64 `json:"fat" validate:"gte=0,lte=1000000"`
}

// ProgressRequest is the body of POST /planner/progress
type ProgressRequest struct {
	Days    []DayRequest   `json:"days" validate:"required,max=366,dive"`
	Targets TargetsRequest `json:"targets"`
}

// ShoppingListRequest is the body of POST /planner/shopping-list
type ShoppingListRequest struct {
	Meals []MealRequest `json:"meals" validate:"required,max=1000,dive"`
}

// validateMealSource enforces exactly one of recipe or customFood per meal
func validateMealSource(sl validator.StructLevel) {
	meal := sl.Current().Interface().(MealRequest)
	if (meal.Recipe == nil) == (meal.CustomFood == nil) {
		sl.ReportError(meal.Recipe, "recipe", "Recipe", "exactly_one_source", "")
	}
}

func toIngredientLines(reqs []IngredientRequest) []dietary.IngredientLine {
	lines := make([]dietary.IngredientLine, 0, len(reqs))
	for _, r := range reqs {
		lines = append(lines, dietary.IngredientLine{
			Name:   r.Name,
			Amount: r.Amount,
			Unit:   r.Unit,
			Notes:  r.Notes,
		})
	}
	return lines
}

func toMeals(reqs []MealRequest) []planner.PlannedMeal {
	meals := make([]planner.PlannedMeal, 0, len(reqs))
	for _, r := range reqs {
		meal := planner.PlannedMeal{ServingsMultiplier: r.ServingsMultiplier}

		if r.Recipe != nil {
			recipe := &planner.RecipeRef{Servings: r.Recipe.Servings}
			if n := r.Recipe.Nutrition; n != nil {
				recipe.Nutrition = &planner.NutritionFacts{Protein: n.Protein, Carbs: n.Carbs, Fat: n.Fat}
			}
			for _, ing := range r.Recipe.Ingredients {
				recipe.Ingredients = append(recipe.Ingredients, planner.Ingredient{
					Name:   ing.Name,
					Amount: ing.Amount,
					Unit:   ing.Unit,
					Notes:  ing.Notes,
				})
			}
			meal.Recipe = recipe
		}

		if c := r.CustomFood; c != nil {
			meal.CustomFood = &planner.CustomFoodRef{
				Calories: c.Calories,
				Protein:  c.Protein,
				Carbs:    c.Carbs,
				Fat:      c.Fat,
			}
		}

		meals = append(meals, meal)
	}
	return meals
}

func toDays(reqs []DayRequest) []planner.PlannerDay {
	days := make([]planner.PlannerDay, 0, len(reqs))
	for _, r := range reqs {
		days = append(days, planner.PlannerDay{Date: r.Date, Meals: toMeals(r.Meals)})
	}
	return days
}
