// Package gorm provides GORM model definitions and repositories for dietary profiles
package gorm

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/alchemorsel/nutrition/internal/domain/dietary"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DietaryProfileModel represents the GORM model for a recipe's dietary profile
type DietaryProfileModel struct {
	RecipeID    uuid.UUID `gorm:"type:char(36);primaryKey"`
	Fingerprint string    `gorm:"type:varchar(64);index"`

	IsLowFodmap         bool                     `gorm:"index"`
	FodmapScore         float64                  `gorm:"not null;default:0"`
	FodmapDetails       MatchDetailList          `gorm:"type:json"`
	IsFermented         bool                     `gorm:"index"`
	FermentationScore   float64                  `gorm:"not null;default:0"`
	FermentationDetails FermentationDetailsField `gorm:"type:json"`
	HasNuts             bool                     `gorm:"index"`
	IsPescatarian       bool                     `gorm:"index"`
	Tags                StringSlice              `gorm:"type:json"`

	AnalyzedAt time.Time `gorm:"index"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TableName overrides the table name
func (DietaryProfileModel) TableName() string {
	return "dietary_profiles"
}

// BeforeCreate hook for DietaryProfileModel
func (m *DietaryProfileModel) BeforeCreate(tx *gorm.DB) error {
	if m.RecipeID == uuid.Nil {
		return fmt.Errorf("dietary profile requires a recipe id")
	}
	return nil
}

// Models lists every model managed by auto-migration
func Models() []interface{} {
	return []interface{}{&DietaryProfileModel{}}
}

// AutoMigrate creates or updates the dietary profile schema
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}

// StringSlice custom type for handling string arrays in JSON
type StringSlice []string

// Scan implements the sql.Scanner interface
func (s *StringSlice) Scan(value interface{}) error {
	return scanJSON(value, s, func() { *s = StringSlice{} })
}

// Value implements the driver.Valuer interface
func (s StringSlice) Value() (driver.Value, error) {
	if len(s) == 0 {
		return "[]", nil
	}
	return marshalJSON(s)
}

// MatchDetailList stores FODMAP match details as JSON
type MatchDetailList []dietary.MatchDetail

// Scan implements the sql.Scanner interface
func (l *MatchDetailList) Scan(value interface{}) error {
	return scanJSON(value, l, func() { *l = MatchDetailList{} })
}

// Value implements the driver.Valuer interface
func (l MatchDetailList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "[]", nil
	}
	return marshalJSON(l)
}

// FermentationDetailsField stores fermentation buckets as JSON
type FermentationDetailsField dietary.FermentationDetails

// Scan implements the sql.Scanner interface
func (f *FermentationDetailsField) Scan(value interface{}) error {
	return scanJSON(value, f, func() { *f = FermentationDetailsField{} })
}

// Value implements the driver.Valuer interface
func (f FermentationDetailsField) Value() (driver.Value, error) {
	return marshalJSON(dietary.FermentationDetails(f))
}

func scanJSON(value interface{}, target interface{}, empty func()) error {
	switch v := value.(type) {
	case nil:
		empty()
		return nil
	case []byte:
		return json.Unmarshal(v, target)
	case string:
		return json.Unmarshal([]byte(v), target)
	default:
		return fmt.Errorf("cannot scan %T into %T", value, target)
	}
}

func marshalJSON(v interface{}) (driver.Value, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}
