package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alchemorsel/nutrition/internal/application/nutrition"
	"github.com/alchemorsel/nutrition/internal/domain/dietary"
	"github.com/alchemorsel/nutrition/internal/infrastructure/http/handlers"
	"github.com/alchemorsel/nutrition/internal/infrastructure/http/middleware"
	"github.com/alchemorsel/nutrition/internal/infrastructure/config"
	"github.com/alchemorsel/nutrition/internal/infrastructure/monitoring"
	gormRepo "github.com/alchemorsel/nutrition/internal/infrastructure/persistence/gorm"
	"github.com/alchemorsel/nutrition/internal/infrastructure/persistence/memory"
	"github.com/alchemorsel/nutrition/internal/infrastructure/persistence/sqlite"
	"github.com/alchemorsel/nutrition/internal/infrastructure/security"
	"github.com/alchemorsel/nutrition/pkg/errors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
)

// NutritionAPITestSuite drives the HTTP API against the real service stack
type NutritionAPITestSuite struct {
	suite.Suite
	router *gin.Engine
	cache  *memory.CacheRepository
}

func TestNutritionAPITestSuite(t *testing.T) {
	suite.Run(t, new(NutritionAPITestSuite))
}

func (suite *NutritionAPITestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()

	cfg, err := config.Load("")
	suite.Require().NoError(err)
	cfg.RateLimit.Enable = false

	db, err := sqlite.SetupDatabase(":memory:", nil)
	suite.Require().NoError(err)

	metrics, err := monitoring.NewMetricsCollector(logger)
	suite.Require().NoError(err)

	suite.cache = memory.NewCacheRepository(0)
	service := nutrition.NewNutritionService(
		dietary.DefaultClassifier(),
		gormRepo.NewDietaryProfileRepository(db),
		suite.cache,
		metrics,
		noop.NewTracerProvider().Tracer("test"),
		nutrition.Config{AnalysisTTL: time.Hour},
		logger,
	)

	mw := middleware.New(cfg, metrics, logger)
	suite.router = gin.New()
	suite.router.Use(mw.RequestID(), mw.Recovery(), mw.Metrics())

	api := handlers.NewNutritionHandlers(service, security.NewValidationService(logger), logger)
	api.RegisterRoutes(suite.router.Group("/api/v1"))
}

func (suite *NutritionAPITestSuite) TearDownTest() {
	suite.cache.Close()
}

func (suite *NutritionAPITestSuite) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		suite.Require().NoError(err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
}

func (suite *NutritionAPITestSuite) decodeData(w *httptest.ResponseRecorder, target interface{}) {
	var env envelope
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &env))
	suite.True(env.Success)
	suite.Require().NoError(json.Unmarshal(env.Data, target))
}

func (suite *NutritionAPITestSuite) decodeError(w *httptest.ResponseRecorder) errors.ErrorDetails {
	var resp errors.ErrorResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Error
}

func (suite *NutritionAPITestSuite) TestAnalyze() {
	suite.Run("Analyze_ShouldReturnClassification", func() {
		// Arrange
		body := map[string]interface{}{
			"ingredients": []map[string]interface{}{
				{"name": "Onion", "amount": 0.5, "unit": "kg"},
				{"name": "Sauerkraut", "amount": 100, "unit": "g"},
				{"name": "Almonds", "amount": 1, "unit": "oz"},
			},
		}

		// Act
		w := suite.do(http.MethodPost, "/api/v1/dietary/analyze", body)

		// Assert
		suite.Require().Equal(http.StatusOK, w.Code)
		suite.NotEmpty(w.Header().Get("X-Request-ID"))

		var data struct {
			Result dietary.Result `json:"result"`
			Tags   []dietary.Tag  `json:"tags"`
			Cached bool           `json:"cached"`
		}
		suite.decodeData(w, &data)
		suite.False(data.Result.IsLowFodmap)
		suite.True(data.Result.IsFermented)
		suite.True(data.Result.HasNuts)
		suite.Equal([]string{"Sauerkraut"}, data.Result.FermentationDetails.MainIngredients)
		suite.Contains(data.Tags, dietary.TagContainsNuts)
		suite.False(data.Cached)
	})

	suite.Run("Analyze_ShouldRejectMissingName", func() {
		// Arrange
		body := map[string]interface{}{
			"ingredients": []map[string]interface{}{{"amount": 1, "unit": "g"}},
		}

		// Act
		w := suite.do(http.MethodPost, "/api/v1/dietary/analyze", body)

		// Assert
		suite.Equal(http.StatusBadRequest, w.Code)
		suite.Equal(errors.CodeValidationFailed, suite.decodeError(w).Code)
	})

	suite.Run("Analyze_ShouldRejectMalformedJSON", func() {
		// Arrange
		req := httptest.NewRequest(http.MethodPost, "/api/v1/dietary/analyze", bytes.NewBufferString("{"))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		// Act
		suite.router.ServeHTTP(w, req)

		// Assert
		suite.Equal(http.StatusBadRequest, w.Code)
		suite.Equal(errors.CodeBadRequest, suite.decodeError(w).Code)
	})
}

func (suite *NutritionAPITestSuite) TestRecipeProfiles() {
	recipeID := uuid.New()
	path := "/api/v1/recipes/" + recipeID.String() + "/dietary"

	suite.Run("GetProfile_ShouldReturnNotFoundBeforeTagging", func() {
		// Act
		w := suite.do(http.MethodGet, path, nil)

		// Assert
		suite.Equal(http.StatusNotFound, w.Code)
		suite.Equal(errors.CodeProfileNotFound, suite.decodeError(w).Code)
	})

	suite.Run("TagRecipe_ShouldStoreAndServeProfile", func() {
		// Arrange
		body := map[string]interface{}{
			"ingredients": []map[string]interface{}{
				{"name": "Salmon fillet", "amount": 300, "unit": "g"},
				{"name": "Soy sauce", "amount": 2, "unit": "tbsp"},
			},
			"isPescatarian": true,
		}

		// Act
		put := suite.do(http.MethodPut, path, body)
		get := suite.do(http.MethodGet, path, nil)

		// Assert
		suite.Require().Equal(http.StatusOK, put.Code)
		suite.Require().Equal(http.StatusOK, get.Code)

		var profile struct {
			RecipeID uuid.UUID      `json:"recipeId"`
			Result   dietary.Result `json:"result"`
			Tags     []dietary.Tag  `json:"tags"`
		}
		suite.decodeData(get, &profile)
		suite.Equal(recipeID, profile.RecipeID)
		suite.True(profile.Result.IsPescatarian)
		suite.Equal([]string{"Soy sauce"}, profile.Result.FermentationDetails.Flavorings)
		suite.Equal([]dietary.Tag{
			dietary.TagLowFodmap,
			dietary.TagFermented,
			dietary.TagNutFree,
			dietary.TagPescatarian,
		}, profile.Tags)
	})

	suite.Run("FindByTags_ShouldListTaggedRecipe", func() {
		// Act
		w := suite.do(http.MethodGet, "/api/v1/recipes/dietary?tags=pescatarian,fermented", nil)

		// Assert
		suite.Require().Equal(http.StatusOK, w.Code)
		var profiles []struct {
			RecipeID uuid.UUID `json:"recipeId"`
		}
		suite.decodeData(w, &profiles)
		suite.Require().Len(profiles, 1)
		suite.Equal(recipeID, profiles[0].RecipeID)
	})

	suite.Run("FindByTags_ShouldRejectUnknownTag", func() {
		// Act
		w := suite.do(http.MethodGet, "/api/v1/recipes/dietary?tags=keto", nil)

		// Assert
		suite.Equal(http.StatusBadRequest, w.Code)
		suite.Equal(errors.CodeUnknownTag, suite.decodeError(w).Code)
	})

	suite.Run("FindByTags_ShouldRejectBadLimit", func() {
		// Act
		w := suite.do(http.MethodGet, "/api/v1/recipes/dietary?limit=ten", nil)

		// Assert
		suite.Equal(http.StatusBadRequest, w.Code)
	})

	suite.Run("TagRecipe_ShouldRejectInvalidID", func() {
		// Act
		w := suite.do(http.MethodPut, "/api/v1/recipes/not-a-uuid/dietary", map[string]interface{}{
			"ingredients": []map[string]interface{}{},
		})

		// Assert
		suite.Equal(http.StatusBadRequest, w.Code)
		suite.Equal(errors.CodeBadRequest, suite.decodeError(w).Code)
	})
}

func (suite *NutritionAPITestSuite) TestPlanner() {
	days := []map[string]interface{}{
		{
			"date": "2026-06-01",
			"meals": []map[string]interface{}{
				{
					"servingsMultiplier": 2,
					"recipe": map[string]interface{}{
						"servings":  4,
						"nutrition": map[string]interface{}{"protein": 40, "carbs": 80, "fat": 20},
						"ingredients": []map[string]interface{}{
							{"name": "Chicken", "amount": 400, "unit": "g"},
						},
					},
				},
				{
					"customFood": map[string]interface{}{"calories": 150, "protein": 5, "carbs": 20, "fat": 5},
				},
			},
		},
	}

	suite.Run("Macros_ShouldAggregateDay", func() {
		// Act
		w := suite.do(http.MethodPost, "/api/v1/planner/macros", map[string]interface{}{"days": days})

		// Assert
		suite.Require().Equal(http.StatusOK, w.Code)
		var totals []struct {
			Date          string `json:"date"`
			TotalCalories int    `json:"totalCalories"`
			TotalProtein  int    `json:"totalProtein"`
			TotalCarbs    int    `json:"totalCarbs"`
			TotalFat      int    `json:"totalFat"`
		}
		suite.decodeData(w, &totals)
		suite.Require().Len(totals, 1)
		// recipe: (160+320+180) * 2/4 = 330 kcal, 20 protein, 40 carbs, 10 fat
		suite.Equal("2026-06-01", totals[0].Date)
		suite.Equal(480, totals[0].TotalCalories)
		suite.Equal(25, totals[0].TotalProtein)
		suite.Equal(60, totals[0].TotalCarbs)
		suite.Equal(15, totals[0].TotalFat)
	})

	suite.Run("Progress_ShouldReportPercentages", func() {
		// Act
		w := suite.do(http.MethodPost, "/api/v1/planner/progress", map[string]interface{}{
			"days":    days,
			"targets": map[string]interface{}{"calories": 2400, "protein": 100, "carbs": 0, "fat": 60},
		})

		// Assert
		suite.Require().Equal(http.StatusOK, w.Code)
		var data struct {
			Progress []struct {
				Calories float64 `json:"calories"`
				Protein  float64 `json:"protein"`
				Carbs    float64 `json:"carbs"`
			} `json:"progress"`
			Summary struct {
				Days int `json:"days"`
			} `json:"summary"`
		}
		suite.decodeData(w, &data)
		suite.Require().Len(data.Progress, 1)
		suite.InDelta(20.0, data.Progress[0].Calories, 1e-9)
		suite.InDelta(25.0, data.Progress[0].Protein, 1e-9)
		suite.Zero(data.Progress[0].Carbs)
		suite.Equal(1, data.Summary.Days)
	})

	suite.Run("ShoppingList_ShouldScaleIngredients", func() {
		// Act
		w := suite.do(http.MethodPost, "/api/v1/planner/shopping-list", map[string]interface{}{
			"meals": days[0]["meals"],
		})

		// Assert
		suite.Require().Equal(http.StatusOK, w.Code)
		var items []struct {
			Name   string  `json:"name"`
			Amount float64 `json:"amount"`
			Unit   string  `json:"unit"`
		}
		suite.decodeData(w, &items)
		suite.Require().Len(items, 1)
		suite.Equal("Chicken", items[0].Name)
		suite.InDelta(200.0, items[0].Amount, 1e-9)
		suite.Equal("g", items[0].Unit)
	})

	suite.Run("ShoppingList_ShouldRejectMealWithBothSources", func() {
		// Act
		w := suite.do(http.MethodPost, "/api/v1/planner/shopping-list", map[string]interface{}{
			"meals": []map[string]interface{}{
				{
					"recipe":     map[string]interface{}{"servings": 1},
					"customFood": map[string]interface{}{"calories": 100},
				},
			},
		})

		// Assert
		suite.Equal(http.StatusBadRequest, w.Code)
		details := suite.decodeError(w)
		suite.Equal(errors.CodeValidationFailed, details.Code)
		suite.Contains(details.Details, "exactly one of recipe or customFood")
	})

	suite.Run("Macros_ShouldRejectMealWithNoSource", func() {
		// Act
		w := suite.do(http.MethodPost, "/api/v1/planner/macros", map[string]interface{}{
			"days": []map[string]interface{}{
				{"date": "2026-06-02", "meals": []map[string]interface{}{{"servingsMultiplier": 1}}},
			},
		})

		// Assert
		suite.Equal(http.StatusBadRequest, w.Code)
		suite.Equal(errors.CodeValidationFailed, suite.decodeError(w).Code)
	})
}

func (suite *NutritionAPITestSuite) TestOutOfRangeNumbers() {
	suite.Run("Analyze_ShouldRejectHugeAmount", func() {
		// Act
		w := suite.do(http.MethodPost, "/api/v1/dietary/analyze", map[string]interface{}{
			"ingredients": []map[string]interface{}{
				{"name": "garlic", "amount": 1e308, "unit": "kg"},
			},
		})

		// Assert
		suite.Equal(http.StatusBadRequest, w.Code)
		details := suite.decodeError(w)
		suite.Equal(errors.CodeValidationFailed, details.Code)
		suite.Contains(details.Details, "ingredients[0].amount must be less than or equal to 1000000")
	})

	suite.Run("ShoppingList_ShouldRejectHugeAmountAndMultiplier", func() {
		// Act
		w := suite.do(http.MethodPost, "/api/v1/planner/shopping-list", map[string]interface{}{
			"meals": []map[string]interface{}{
				{
					"servingsMultiplier": 1e308,
					"recipe": map[string]interface{}{
						"servings":    1,
						"ingredients": []map[string]interface{}{{"name": "Rice", "amount": 1e308, "unit": "g"}},
					},
				},
			},
		})

		// Assert
		suite.Equal(http.StatusBadRequest, w.Code)
		suite.Equal(errors.CodeValidationFailed, suite.decodeError(w).Code)
	})

	suite.Run("ShoppingList_ShouldRejectTinyServings", func() {
		// Act
		w := suite.do(http.MethodPost, "/api/v1/planner/shopping-list", map[string]interface{}{
			"meals": []map[string]interface{}{
				{
					"recipe": map[string]interface{}{
						"servings":    1e-300,
						"ingredients": []map[string]interface{}{{"name": "Rice", "amount": 1000000, "unit": "g"}},
					},
				},
			},
		})

		// Assert
		suite.Equal(http.StatusBadRequest, w.Code)
		details := suite.decodeError(w)
		suite.Equal(errors.CodeValidationFailed, details.Code)
		suite.Contains(details.Details, "servings must be 0 or between")
	})

	suite.Run("Progress_ShouldRejectUnencodablePercentages", func() {
		// Act
		w := suite.do(http.MethodPost, "/api/v1/planner/progress", map[string]interface{}{
			"days": []map[string]interface{}{
				{
					"date": "2026-06-03",
					"meals": []map[string]interface{}{
						{"servingsMultiplier": 1000, "customFood": map[string]interface{}{"calories": 1000000}},
					},
				},
			},
			"targets": map[string]interface{}{"calories": 1e-300},
		})

		// Assert
		suite.Equal(http.StatusBadRequest, w.Code)
		suite.NotEmpty(w.Body.Bytes())
		details := suite.decodeError(w)
		suite.Equal(errors.CodeValidationFailed, details.Code)
		suite.Contains(details.Details, "representable range")
	})
}
