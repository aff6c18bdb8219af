package gorm

import (
	"context"
	"errors"
	"fmt"

	"github.com/alchemorsel/nutrition/internal/domain/dietary"
	"github.com/alchemorsel/nutrition/internal/ports/outbound"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DietaryProfileRepository implements the dietary profile repository using GORM
type DietaryProfileRepository struct {
	db *gorm.DB
}

// NewDietaryProfileRepository creates a new dietary profile repository
func NewDietaryProfileRepository(db *gorm.DB) *DietaryProfileRepository {
	return &DietaryProfileRepository{db: db}
}

var _ outbound.DietaryProfileRepository = (*DietaryProfileRepository)(nil)

// tagConditions maps each tag to the column predicate it filters on
var tagConditions = map[dietary.Tag]clause.Eq{
	dietary.TagLowFodmap:    {Column: "is_low_fodmap", Value: true},
	dietary.TagHighFodmap:   {Column: "is_low_fodmap", Value: false},
	dietary.TagFermented:    {Column: "is_fermented", Value: true},
	dietary.TagContainsNuts: {Column: "has_nuts", Value: true},
	dietary.TagNutFree:      {Column: "has_nuts", Value: false},
	dietary.TagPescatarian:  {Column: "is_pescatarian", Value: true},
}

// Save inserts the profile or replaces the existing one for the same recipe
func (r *DietaryProfileRepository) Save(ctx context.Context, profile *outbound.DietaryProfile) error {
	model := ProfileToModel(profile)

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "recipe_id"}},
			UpdateAll: true,
		}).
		Create(model)
	return result.Error
}

// FindByRecipeID finds the profile of a recipe
func (r *DietaryProfileRepository) FindByRecipeID(ctx context.Context, recipeID uuid.UUID) (*outbound.DietaryProfile, error) {
	var model DietaryProfileModel

	result := r.db.WithContext(ctx).First(&model, "recipe_id = ?", recipeID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}

	return ModelToProfile(&model), nil
}

// FindByTags returns profiles carrying every given tag, newest analysis first
func (r *DietaryProfileRepository) FindByTags(ctx context.Context, tags []dietary.Tag, offset, limit int) ([]*outbound.DietaryProfile, error) {
	query := r.db.WithContext(ctx).Model(&DietaryProfileModel{})

	for _, tag := range tags {
		cond, ok := tagConditions[tag]
		if !ok {
			return nil, fmt.Errorf("unsupported dietary tag %q", tag)
		}
		query = query.Where(cond)
	}

	var models []DietaryProfileModel
	result := query.
		Order("analyzed_at DESC").
		Order("recipe_id").
		Offset(offset).
		Limit(limit).
		Find(&models)
	if result.Error != nil {
		return nil, result.Error
	}

	profiles := make([]*outbound.DietaryProfile, 0, len(models))
	for i := range models {
		profiles = append(profiles, ModelToProfile(&models[i]))
	}
	return profiles, nil
}

// ProfileToModel converts a dietary profile to its GORM model
func ProfileToModel(p *outbound.DietaryProfile) *DietaryProfileModel {
	tags := make(StringSlice, 0, len(p.Tags))
	for _, t := range p.Tags {
		tags = append(tags, string(t))
	}

	return &DietaryProfileModel{
		RecipeID:            p.RecipeID,
		Fingerprint:         p.Fingerprint,
		IsLowFodmap:         p.Result.IsLowFodmap,
		FodmapScore:         p.Result.FodmapScore,
		FodmapDetails:       MatchDetailList(p.Result.FodmapDetails),
		IsFermented:         p.Result.IsFermented,
		FermentationScore:   p.Result.FermentationScore,
		FermentationDetails: FermentationDetailsField(p.Result.FermentationDetails),
		HasNuts:             p.Result.HasNuts,
		IsPescatarian:       p.Result.IsPescatarian,
		Tags:                tags,
		AnalyzedAt:          p.AnalyzedAt,
	}
}

// ModelToProfile converts a GORM model back to a dietary profile
func ModelToProfile(m *DietaryProfileModel) *outbound.DietaryProfile {
	tags := make([]dietary.Tag, 0, len(m.Tags))
	for _, t := range m.Tags {
		tags = append(tags, dietary.Tag(t))
	}

	details := []dietary.MatchDetail(m.FodmapDetails)
	if details == nil {
		details = []dietary.MatchDetail{}
	}
	fermentation := dietary.FermentationDetails(m.FermentationDetails)
	if fermentation.MainIngredients == nil {
		fermentation.MainIngredients = []string{}
	}
	if fermentation.Flavorings == nil {
		fermentation.Flavorings = []string{}
	}

	return &outbound.DietaryProfile{
		RecipeID:    m.RecipeID,
		Fingerprint: m.Fingerprint,
		Result: dietary.Result{
			IsLowFodmap:         m.IsLowFodmap,
			FodmapScore:         m.FodmapScore,
			FodmapDetails:       details,
			IsFermented:         m.IsFermented,
			FermentationScore:   m.FermentationScore,
			FermentationDetails: fermentation,
			HasNuts:             m.HasNuts,
			IsPescatarian:       m.IsPescatarian,
		},
		Tags:       tags,
		AnalyzedAt: m.AnalyzedAt,
	}
}
