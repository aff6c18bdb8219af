// Package inbound defines the interfaces for inbound ports (primary/driving adapters)
// These are the interfaces that the application exposes to the outside world
package inbound

import (
	"context"
	"time"

	"github.com/alchemorsel/nutrition/internal/domain/dietary"
	"github.com/alchemorsel/nutrition/internal/domain/planner"
	"github.com/google/uuid"
)

// NutritionService defines the dietary and meal-planning use cases.
// Errors come from adapters (cache, profile store), never from the engine.
type NutritionService interface {
	// Dietary classification
	AnalyzeIngredients(ctx context.Context, cmd AnalyzeIngredientsCommand) (*DietaryAnalysisDTO, error)
	TagRecipe(ctx context.Context, cmd TagRecipeCommand) (*DietaryProfileDTO, error)
	GetRecipeProfile(ctx context.Context, recipeID uuid.UUID) (*DietaryProfileDTO, error)
	FindRecipesByTags(ctx context.Context, query TagQuery) ([]*DietaryProfileDTO, error)

	// Planner aggregation
	CalculateDailyMacros(ctx context.Context, days []planner.PlannerDay) ([]planner.DailyMacroTotals, error)
	TrackMacroProgress(ctx context.Context, cmd TrackProgressCommand) (*MacroProgressDTO, error)
	GenerateShoppingList(ctx context.Context, meals []planner.PlannedMeal) ([]planner.ShoppingListItem, error)
}

// AnalyzeIngredientsCommand asks for a classification of an ingredient list
type AnalyzeIngredientsCommand struct {
	Ingredients   []dietary.IngredientLine
	IsPescatarian bool
}

// TagRecipeCommand classifies a recipe and stores the result against it
type TagRecipeCommand struct {
	RecipeID      uuid.UUID
	Ingredients   []dietary.IngredientLine
	IsPescatarian bool
}

// TagQuery filters stored profiles by dietary tags
type TagQuery struct {
	Tags   []dietary.Tag
	Offset int
	Limit  int
}

// TrackProgressCommand compares planned days against macro targets
type TrackProgressCommand struct {
	Days    []planner.PlannerDay
	Targets planner.MacroTargets
}

// DietaryAnalysisDTO is an analysis result with its derived tags
type DietaryAnalysisDTO struct {
	Result dietary.Result `json:"result"`
	Tags   []dietary.Tag  `json:"tags"`
	Cached bool           `json:"cached"`
}

// DietaryProfileDTO is a stored analysis for a recipe
type DietaryProfileDTO struct {
	RecipeID   uuid.UUID      `json:"recipeId"`
	Result     dietary.Result `json:"result"`
	Tags       []dietary.Tag  `json:"tags"`
	AnalyzedAt time.Time      `json:"analyzedAt"`
}

// MacroProgressDTO bundles daily totals, their progress and the week summary
type MacroProgressDTO struct {
	Totals   []planner.DailyMacroTotals `json:"totals"`
	Progress []planner.MacroProgress    `json:"progress"`
	Summary  planner.WeeklySummary      `json:"summary"`
}
