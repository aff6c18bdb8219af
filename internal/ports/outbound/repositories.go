// Package outbound defines the interfaces for outbound ports (secondary/driven adapters)
// These are the interfaces that the application uses to interact with external systems
package outbound

import (
	"context"
	"errors"
	"time"

	"github.com/alchemorsel/nutrition/internal/domain/dietary"
	"github.com/google/uuid"
)

// ErrCacheMiss is returned by CacheRepository.Get for absent or expired keys
var ErrCacheMiss = errors.New("cache miss")

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// DietaryProfile is a classification result stored against a recipe
type DietaryProfile struct {
	RecipeID    uuid.UUID
	Fingerprint string
	Result      dietary.Result
	Tags        []dietary.Tag
	AnalyzedAt  time.Time
}

// DietaryProfileRepository persists dietary profiles
type DietaryProfileRepository interface {
	// Save inserts or replaces the profile for its recipe
	Save(ctx context.Context, profile *DietaryProfile) error
	// FindByRecipeID returns nil, nil when the recipe has no profile
	FindByRecipeID(ctx context.Context, recipeID uuid.UUID) (*DietaryProfile, error)
	FindByTags(ctx context.Context, tags []dietary.Tag, offset, limit int) ([]*DietaryProfile, error)
}

// MetricsRecorder receives operational measurements from the application layer
type MetricsRecorder interface {
	RecordOperation(operation string, duration time.Duration, err error)
	RecordAnalysis(ctx context.Context, ingredients int, result dietary.Result, cached bool)
	RecordCacheLookup(hit bool)
	RecordShoppingList(ctx context.Context, items int)
}
