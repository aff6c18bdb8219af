// Package handlers provides HTTP handlers for the REST API
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/alchemorsel/nutrition/internal/domain/dietary"
	"github.com/alchemorsel/nutrition/internal/domain/planner"
	"github.com/alchemorsel/nutrition/internal/infrastructure/http/middleware"
	"github.com/alchemorsel/nutrition/internal/infrastructure/security"
	"github.com/alchemorsel/nutrition/internal/ports/inbound"
	"github.com/alchemorsel/nutrition/pkg/errors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// NutritionHandlers handles dietary and planner REST API requests
type NutritionHandlers struct {
	service   inbound.NutritionService
	validator *security.ValidationService
	logger    *zap.Logger
}

// NewNutritionHandlers creates a new handlers instance
func NewNutritionHandlers(
	service inbound.NutritionService,
	validator *security.ValidationService,
	logger *zap.Logger,
) *NutritionHandlers {
	validator.RegisterStructValidation(validateMealSource, MealRequest{})

	return &NutritionHandlers{
		service:   service,
		validator: validator,
		logger:    logger.Named("nutrition-api"),
	}
}

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// RegisterRoutes registers the nutrition routes
func (h *NutritionHandlers) RegisterRoutes(r *gin.RouterGroup) {
	dietaryGroup := r.Group("/dietary")
	{
		dietaryGroup.POST("/analyze", h.AnalyzeIngredients)
	}

	recipes := r.Group("/recipes")
	{
		recipes.GET("/dietary", h.FindRecipesByTags)
		recipes.PUT("/:id/dietary", h.TagRecipe)
		recipes.GET("/:id/dietary", h.GetRecipeProfile)
	}

	plannerGroup := r.Group("/planner")
	{
		plannerGroup.POST("/macros", h.CalculateDailyMacros)
		plannerGroup.POST("/progress", h.TrackMacroProgress)
		plannerGroup.POST("/shopping-list", h.GenerateShoppingList)
	}
}

// AnalyzeIngredients handles POST /api/v1/dietary/analyze
func (h *NutritionHandlers) AnalyzeIngredients(c *gin.Context) {
	var req AnalyzeRequest
	if !h.bind(c, &req) {
		return
	}

	dto, err := h.service.AnalyzeIngredients(c.Request.Context(), inbound.AnalyzeIngredientsCommand{
		Ingredients:   toIngredientLines(req.Ingredients),
		IsPescatarian: req.IsPescatarian,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.respondOK(c, dto, "")
}

// TagRecipe handles PUT /api/v1/recipes/:id/dietary
func (h *NutritionHandlers) TagRecipe(c *gin.Context) {
	recipeID, ok := h.recipeID(c)
	if !ok {
		return
	}

	var req TagRecipeRequest
	if !h.bind(c, &req) {
		return
	}

	dto, err := h.service.TagRecipe(c.Request.Context(), inbound.TagRecipeCommand{
		RecipeID:      recipeID,
		Ingredients:   toIngredientLines(req.Ingredients),
		IsPescatarian: req.IsPescatarian,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.respondOK(c, dto, "Recipe tagged")
}

// GetRecipeProfile handles GET /api/v1/recipes/:id/dietary
func (h *NutritionHandlers) GetRecipeProfile(c *gin.Context) {
	recipeID, ok := h.recipeID(c)
	if !ok {
		return
	}

	dto, err := h.service.GetRecipeProfile(c.Request.Context(), recipeID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.respondOK(c, dto, "")
}

// FindRecipesByTags handles GET /api/v1/recipes/dietary?tags=a,b&offset=0&limit=20
func (h *NutritionHandlers) FindRecipesByTags(c *gin.Context) {
	var query inbound.TagQuery

	for _, raw := range strings.Split(c.Query("tags"), ",") {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		tag, err := dietary.ParseTag(raw)
		if err != nil {
			h.respondError(c, errors.NewUnknownTagError(strings.TrimSpace(raw)))
			return
		}
		query.Tags = append(query.Tags, tag)
	}

	var ok bool
	if query.Offset, ok = h.intQuery(c, "offset"); !ok {
		return
	}
	if query.Limit, ok = h.intQuery(c, "limit"); !ok {
		return
	}

	dtos, err := h.service.FindRecipesByTags(c.Request.Context(), query)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.respondOK(c, dtos, "")
}

// CalculateDailyMacros handles POST /api/v1/planner/macros
func (h *NutritionHandlers) CalculateDailyMacros(c *gin.Context) {
	var req MacrosRequest
	if !h.bind(c, &req) {
		return
	}

	totals, err := h.service.CalculateDailyMacros(c.Request.Context(), toDays(req.Days))
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.respondOK(c, totals, "")
}

// TrackMacroProgress handles POST /api/v1/planner/progress
func (h *NutritionHandlers) TrackMacroProgress(c *gin.Context) {
	var req ProgressRequest
	if !h.bind(c, &req) {
		return
	}

	dto, err := h.service.TrackMacroProgress(c.Request.Context(), inbound.TrackProgressCommand{
		Days: toDays(req.Days),
		Targets: planner.MacroTargets{
			Calories: req.Targets.Calories,
			Protein:  req.Targets.Protein,
			Carbs:    req.Targets.Carbs,
			Fat:      req.Targets.Fat,
		},
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.respondOK(c, dto, "")
}

// GenerateShoppingList handles POST /api/v1/planner/shopping-list
func (h *NutritionHandlers) GenerateShoppingList(c *gin.Context) {
	var req ShoppingListRequest
	if !h.bind(c, &req) {
		return
	}

	items, err := h.service.GenerateShoppingList(c.Request.Context(), toMeals(req.Meals))
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.respondOK(c, items, "")
}

// bind decodes and validates the JSON body, responding on failure
func (h *NutritionHandlers) bind(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		h.respondError(c, errors.NewBadRequestError("Invalid JSON body").WithCause(err))
		return false
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		h.respondError(c, err)
		return false
	}

	return true
}

func (h *NutritionHandlers) recipeID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.respondError(c, errors.NewBadRequestError("Invalid recipe id").WithCause(err))
		return uuid.Nil, false
	}
	return id, true
}

func (h *NutritionHandlers) intQuery(c *gin.Context, name string) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		h.respondError(c, errors.NewBadRequestError("Invalid "+name+" parameter").
			WithMetadata(name, raw))
		return 0, false
	}
	return n, true
}

// respondOK writes a success envelope. Results that cannot be encoded, such as
// amounts that overflowed to infinity, are reported as a validation failure.
func (h *NutritionHandlers) respondOK(c *gin.Context, data interface{}, message string) {
	body, err := json.Marshal(APIResponse{Success: true, Data: data, Message: message})
	if err != nil {
		h.respondError(c, errors.NewAppError(
			errors.CodeValidationFailed,
			"Validation failed",
			"input produces values outside the representable range",
		).WithCause(err))
		return
	}

	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}

// respondError writes an error response in the standard envelope
func (h *NutritionHandlers) respondError(c *gin.Context, err error) {
	appErr := errors.Wrap(err, "request failed")
	requestID := c.GetString(middleware.RequestIDKey)

	if appErr.StatusCode() >= http.StatusInternalServerError {
		h.logger.Error("Request failed",
			zap.String("request_id", requestID),
			zap.String("code", string(appErr.Code)),
			zap.Error(appErr),
		)
	}

	_ = c.Error(appErr)
	c.AbortWithStatusJSON(appErr.StatusCode(), errors.ToErrorResponse(appErr, requestID))
}
