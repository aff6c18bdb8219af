// Package testutils provides test data factories for consistent test data generation
package testutils

import (
	"time"

	"github.com/alchemorsel/nutrition/internal/domain/dietary"
	"github.com/alchemorsel/nutrition/internal/domain/planner"
	"github.com/brianvoe/gofakeit/v6"
)

// NeutralIngredients match no dietary reference entry
var NeutralIngredients = []string{
	"chicken breast", "salmon fillet", "rice", "potato", "carrot", "spinach",
	"zucchini", "tomato", "egg", "olive oil", "quinoa", "tofu", "oats",
	"lettuce", "cucumber", "bell pepper",
}

var units = []string{"g", "ml", "cup", "tbsp", "tsp", "piece"}

// PlannerFactory builds randomized but reproducible planner and dietary inputs
type PlannerFactory struct {
	faker *gofakeit.Faker
}

// NewPlannerFactory creates a factory with a seeded faker
func NewPlannerFactory(seed int64) *PlannerFactory {
	return &PlannerFactory{faker: gofakeit.New(seed)}
}

// IngredientLine returns a line for a neutral ingredient
func (f *PlannerFactory) IngredientLine() dietary.IngredientLine {
	return dietary.IngredientLine{
		Name:   f.faker.RandomString(NeutralIngredients),
		Amount: f.amount(),
		Unit:   f.faker.RandomString(units),
	}
}

// IngredientLines returns n neutral ingredient lines
func (f *PlannerFactory) IngredientLines(n int) []dietary.IngredientLine {
	lines := make([]dietary.IngredientLine, n)
	for i := range lines {
		lines[i] = f.IngredientLine()
	}
	return lines
}

// Ingredient returns a neutral planner ingredient
func (f *PlannerFactory) Ingredient() planner.Ingredient {
	line := f.IngredientLine()
	return planner.Ingredient{Name: line.Name, Amount: line.Amount, Unit: line.Unit}
}

// RecipeMeal returns a meal referencing a recipe with macros and ingredients
func (f *PlannerFactory) RecipeMeal() planner.PlannedMeal {
	ingredients := make([]planner.Ingredient, f.faker.IntRange(1, 6))
	for i := range ingredients {
		ingredients[i] = f.Ingredient()
	}

	return planner.PlannedMeal{
		ServingsMultiplier: planner.Float(float64(f.faker.IntRange(1, 4))),
		Recipe: &planner.RecipeRef{
			Servings: planner.Float(float64(f.faker.IntRange(1, 8))),
			Nutrition: &planner.NutritionFacts{
				Protein: f.macro(),
				Carbs:   f.macro(),
				Fat:     f.macro(),
			},
			Ingredients: ingredients,
		},
	}
}

// CustomFoodMeal returns a meal with a free-form food entry
func (f *PlannerFactory) CustomFoodMeal() planner.PlannedMeal {
	return planner.PlannedMeal{
		CustomFood: &planner.CustomFoodRef{
			Calories: float64(f.faker.IntRange(50, 900)),
			Protein:  f.macro(),
			Carbs:    f.macro(),
			Fat:      f.macro(),
		},
	}
}

// Meal returns either kind of meal
func (f *PlannerFactory) Meal() planner.PlannedMeal {
	if f.faker.Bool() {
		return f.RecipeMeal()
	}
	return f.CustomFoodMeal()
}

// Days returns n consecutive planner days of up to four meals each
func (f *PlannerFactory) Days(n int) []planner.PlannerDay {
	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, f.faker.IntRange(0, 365))

	days := make([]planner.PlannerDay, n)
	for i := range days {
		meals := make([]planner.PlannedMeal, f.faker.IntRange(0, 4))
		for j := range meals {
			meals[j] = f.Meal()
		}
		days[i] = planner.PlannerDay{
			Date:  start.AddDate(0, 0, i).Format("2006-01-02"),
			Meals: meals,
		}
	}
	return days
}

func (f *PlannerFactory) amount() float64 {
	return float64(f.faker.IntRange(1, 500))
}

func (f *PlannerFactory) macro() float64 {
	return float64(f.faker.IntRange(0, 80))
}
