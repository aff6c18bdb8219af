// Package nutrition provides the application layer for dietary classification
// and meal-plan aggregation. This implements the use cases defined in the inbound ports
package nutrition

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"time"

	"github.com/alchemorsel/nutrition/internal/domain/dietary"
	"github.com/alchemorsel/nutrition/internal/domain/planner"
	"github.com/alchemorsel/nutrition/internal/ports/inbound"
	"github.com/alchemorsel/nutrition/internal/ports/outbound"
	"github.com/alchemorsel/nutrition/pkg/errors"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	DefaultAnalysisTTL = 24 * time.Hour
	DefaultPageSize    = 20
	MaxPageSize        = 100
)

// Config tunes the nutrition service
type Config struct {
	AnalysisTTL time.Duration
}

// NutritionService implements the nutrition use cases
type NutritionService struct {
	classifier *dietary.Classifier
	profiles   outbound.DietaryProfileRepository
	cache      outbound.CacheRepository
	metrics    outbound.MetricsRecorder
	tracer     trace.Tracer
	logger     *zap.Logger
	ttl        time.Duration
	now        func() time.Time
}

// NewNutritionService creates a new nutrition service
func NewNutritionService(
	classifier *dietary.Classifier,
	profiles outbound.DietaryProfileRepository,
	cache outbound.CacheRepository,
	metrics outbound.MetricsRecorder,
	tracer trace.Tracer,
	cfg Config,
	logger *zap.Logger,
) *NutritionService {
	if classifier == nil {
		classifier = dietary.DefaultClassifier()
	}
	ttl := cfg.AnalysisTTL
	if ttl <= 0 {
		ttl = DefaultAnalysisTTL
	}

	return &NutritionService{
		classifier: classifier,
		profiles:   profiles,
		cache:      cache,
		metrics:    metrics,
		tracer:     tracer,
		logger:     logger.Named("nutrition-service"),
		ttl:        ttl,
		now:        time.Now,
	}
}

var _ inbound.NutritionService = (*NutritionService)(nil)

// AnalyzeIngredients classifies an ingredient list, serving repeats from cache
func (s *NutritionService) AnalyzeIngredients(ctx context.Context, cmd inbound.AnalyzeIngredientsCommand) (dto *inbound.DietaryAnalysisDTO, err error) {
	ctx, done := s.begin(ctx, "AnalyzeIngredients", attribute.Int("ingredients", len(cmd.Ingredients)))
	defer func() { done(err) }()

	analysis := s.analyze(ctx, cmd.Ingredients, cmd.IsPescatarian)

	return &inbound.DietaryAnalysisDTO{
		Result: analysis.result,
		Tags:   analysis.result.Tags(),
		Cached: analysis.cached,
	}, nil
}

// TagRecipe classifies a recipe and stores the profile against its id
func (s *NutritionService) TagRecipe(ctx context.Context, cmd inbound.TagRecipeCommand) (dto *inbound.DietaryProfileDTO, err error) {
	ctx, done := s.begin(ctx, "TagRecipe",
		attribute.String("recipe_id", cmd.RecipeID.String()),
		attribute.Int("ingredients", len(cmd.Ingredients)),
	)
	defer func() { done(err) }()

	if cmd.RecipeID == uuid.Nil {
		return nil, errors.NewBadRequestError("recipe id is required")
	}

	analysis := s.analyze(ctx, cmd.Ingredients, cmd.IsPescatarian)

	profile := &outbound.DietaryProfile{
		RecipeID:    cmd.RecipeID,
		Fingerprint: analysis.fingerprint,
		Result:      analysis.result,
		Tags:        analysis.result.Tags(),
		AnalyzedAt:  s.now().UTC(),
	}

	if err := s.profiles.Save(ctx, profile); err != nil {
		return nil, errors.NewDatabaseError("save dietary profile", err)
	}

	s.logger.Info("Recipe tagged",
		zap.String("recipe_id", cmd.RecipeID.String()),
		zap.Any("tags", profile.Tags),
		zap.Bool("cached", analysis.cached),
	)

	return profileToDTO(profile), nil
}

// GetRecipeProfile returns the stored profile of a recipe
func (s *NutritionService) GetRecipeProfile(ctx context.Context, recipeID uuid.UUID) (dto *inbound.DietaryProfileDTO, err error) {
	ctx, done := s.begin(ctx, "GetRecipeProfile", attribute.String("recipe_id", recipeID.String()))
	defer func() { done(err) }()

	profile, err := s.profiles.FindByRecipeID(ctx, recipeID)
	if err != nil {
		return nil, errors.NewDatabaseError("find dietary profile", err)
	}
	if profile == nil {
		return nil, errors.NewProfileNotFoundError(recipeID.String())
	}

	return profileToDTO(profile), nil
}

// FindRecipesByTags lists stored profiles carrying every requested tag
func (s *NutritionService) FindRecipesByTags(ctx context.Context, query inbound.TagQuery) (dtos []*inbound.DietaryProfileDTO, err error) {
	ctx, done := s.begin(ctx, "FindRecipesByTags", attribute.Int("tags", len(query.Tags)))
	defer func() { done(err) }()

	tags := make([]dietary.Tag, 0, len(query.Tags))
	for _, t := range query.Tags {
		tag, err := dietary.ParseTag(string(t))
		if err != nil {
			return nil, errors.NewUnknownTagError(string(t))
		}
		tags = append(tags, tag)
	}

	if query.Offset < 0 {
		return nil, errors.NewValidationError("offset must not be negative")
	}
	limit := query.Limit
	switch {
	case limit <= 0:
		limit = DefaultPageSize
	case limit > MaxPageSize:
		limit = MaxPageSize
	}

	profiles, err := s.profiles.FindByTags(ctx, tags, query.Offset, limit)
	if err != nil {
		return nil, errors.NewDatabaseError("find dietary profiles by tags", err)
	}

	dtos = make([]*inbound.DietaryProfileDTO, 0, len(profiles))
	for _, p := range profiles {
		dtos = append(dtos, profileToDTO(p))
	}
	return dtos, nil
}

// CalculateDailyMacros aggregates macro totals per planner day
func (s *NutritionService) CalculateDailyMacros(ctx context.Context, days []planner.PlannerDay) (totals []planner.DailyMacroTotals, err error) {
	_, done := s.begin(ctx, "CalculateDailyMacros", attribute.Int("days", len(days)))
	defer func() { done(err) }()

	return planner.CalculateDailyMacros(days), nil
}

// TrackMacroProgress compares each day's totals with the targets
func (s *NutritionService) TrackMacroProgress(ctx context.Context, cmd inbound.TrackProgressCommand) (dto *inbound.MacroProgressDTO, err error) {
	_, done := s.begin(ctx, "TrackMacroProgress", attribute.Int("days", len(cmd.Days)))
	defer func() { done(err) }()

	totals := planner.CalculateDailyMacros(cmd.Days)

	return &inbound.MacroProgressDTO{
		Totals:   totals,
		Progress: planner.Progress(totals, cmd.Targets),
		Summary:  planner.SummarizeWeek(totals),
	}, nil
}

// GenerateShoppingList merges the ingredients of the planned meals
func (s *NutritionService) GenerateShoppingList(ctx context.Context, meals []planner.PlannedMeal) (items []planner.ShoppingListItem, err error) {
	ctx, done := s.begin(ctx, "GenerateShoppingList", attribute.Int("meals", len(meals)))
	defer func() { done(err) }()

	items = planner.GenerateShoppingList(meals)
	s.metrics.RecordShoppingList(ctx, len(items))
	return items, nil
}

type analysis struct {
	result      dietary.Result
	fingerprint string
	cached      bool
}

// analyze runs the classifier behind the analysis cache. Cache failures are
// logged and never surface to the caller.
func (s *NutritionService) analyze(ctx context.Context, lines []dietary.IngredientLine, isPescatarian bool) analysis {
	fingerprint := Fingerprint(lines, isPescatarian)
	key := AnalysisCacheKey(fingerprint)

	if result, ok := s.cachedResult(ctx, key); ok {
		s.metrics.RecordAnalysis(ctx, len(lines), result, true)
		return analysis{result: result, fingerprint: fingerprint, cached: true}
	}

	_, span := s.tracer.Start(ctx, "dietary.Classify")
	result := s.classifier.AnalyzeRecipe(lines, isPescatarian)
	span.SetAttributes(
		attribute.Bool("low_fodmap", result.IsLowFodmap),
		attribute.Bool("fermented", result.IsFermented),
		attribute.Bool("has_nuts", result.HasNuts),
	)
	span.End()

	s.storeResult(ctx, key, result)
	s.metrics.RecordAnalysis(ctx, len(lines), result, false)

	return analysis{result: result, fingerprint: fingerprint}
}

func (s *NutritionService) cachedResult(ctx context.Context, key string) (dietary.Result, bool) {
	var result dietary.Result

	data, err := s.cache.Get(ctx, key)
	if err != nil {
		if !stderrors.Is(err, outbound.ErrCacheMiss) {
			s.logger.Warn("Analysis cache lookup failed",
				zap.String("key", key),
				zap.Error(errors.NewCacheError("get analysis", err)),
			)
		}
		s.metrics.RecordCacheLookup(false)
		return result, false
	}

	if err := json.Unmarshal(data, &result); err != nil {
		s.logger.Warn("Discarding undecodable cached analysis",
			zap.String("key", key),
			zap.Error(err),
		)
		s.metrics.RecordCacheLookup(false)
		return result, false
	}

	s.metrics.RecordCacheLookup(true)
	return result, true
}

func (s *NutritionService) storeResult(ctx context.Context, key string, result dietary.Result) {
	data, err := json.Marshal(result)
	if err != nil {
		s.logger.Error("Failed to encode analysis", zap.Error(err))
		return
	}

	if err := s.cache.Set(ctx, key, data, s.ttl); err != nil {
		s.logger.Warn("Analysis cache write failed",
			zap.String("key", key),
			zap.Error(errors.NewCacheError("set analysis", err)),
		)
	}
}

// begin opens the operation span and returns the function that closes it and
// records the operation metrics
func (s *NutritionService) begin(ctx context.Context, operation string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "nutrition."+operation, trace.WithAttributes(attrs...))

	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		s.metrics.RecordOperation(operation, time.Since(start), err)
	}
}

func profileToDTO(p *outbound.DietaryProfile) *inbound.DietaryProfileDTO {
	return &inbound.DietaryProfileDTO{
		RecipeID:   p.RecipeID,
		Result:     p.Result,
		Tags:       p.Tags,
		AnalyzedAt: p.AnalyzedAt,
	}
}
