// Package security provides request input validation
package security

import (
	stderrors "errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/alchemorsel/nutrition/pkg/errors"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// ValidationService provides input validation
type ValidationService struct {
	logger    *zap.Logger
	validator *validator.Validate
}

// NewValidationService creates a new validation service
func NewValidationService(logger *zap.Logger) *ValidationService {
	validate := validator.New()

	// Report fields by their JSON names
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})

	// Register custom validation rules
	validate.RegisterValidation("ingredient", validateIngredient)
	validate.RegisterValidation("unit", validateUnit)
	validate.RegisterValidation("servings", validateServings)

	return &ValidationService{
		logger:    logger.Named("validation"),
		validator: validate,
	}
}

// RegisterStructValidation adds a cross-field rule for the given types
func (v *ValidationService) RegisterStructValidation(fn validator.StructLevelFunc, types ...interface{}) {
	v.validator.RegisterStructValidation(fn, types...)
}

// ValidateStruct validates a struct and returns a VALIDATION_FAILED error
// listing every failing field
func (v *ValidationService) ValidateStruct(s interface{}) error {
	err := v.validator.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !stderrors.As(err, &validationErrors) {
		v.logger.Error("Validator rejected input type", zap.Error(err))
		return errors.NewInternalError("validation failed")
	}

	return errors.NewValidationErrors(v.GetValidationErrors(validationErrors))
}

// GetValidationErrors formats validation errors for API responses
func (v *ValidationService) GetValidationErrors(errs validator.ValidationErrors) []errors.ValidationError {
	out := make([]errors.ValidationError, 0, len(errs))

	for _, e := range errs {
		field := trimRoot(e.Namespace())
		var message string

		switch e.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", field)
		case "min":
			message = fmt.Sprintf("%s must be at least %s", field, e.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", field, e.Param())
		case "gte":
			message = fmt.Sprintf("%s must be greater than or equal to %s", field, e.Param())
		case "gt":
			message = fmt.Sprintf("%s must be greater than %s", field, e.Param())
		case "lte":
			message = fmt.Sprintf("%s must be less than or equal to %s", field, e.Param())
		case "ingredient":
			message = fmt.Sprintf("%s is not a valid ingredient name", field)
		case "unit":
			message = fmt.Sprintf("%s is not a valid unit", field)
		case "servings":
			message = fmt.Sprintf("%s must be 0 or between %g and %g", field, minServings, maxServings)
		case "exactly_one_source":
			message = fmt.Sprintf("%s: a meal needs exactly one of recipe or customFood", field)
		default:
			message = fmt.Sprintf("%s is invalid", field)
		}

		out = append(out, errors.ValidationError{
			Field:   field,
			Value:   e.Value(),
			Tag:     e.Tag(),
			Message: message,
		})
	}

	return out
}

// trimRoot drops the struct type name validator puts in front of namespaces
func trimRoot(namespace string) string {
	if i := strings.Index(namespace, "."); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

// validateIngredient validates ingredient names
func validateIngredient(fl validator.FieldLevel) bool {
	ingredient := strings.TrimSpace(fl.Field().String())

	if len(ingredient) < 1 || len(ingredient) > 200 {
		return false
	}

	// Check for markup characters
	dangerous := []string{"<", ">", "javascript:"}
	ingredientLower := strings.ToLower(ingredient)
	for _, danger := range dangerous {
		if strings.Contains(ingredientLower, danger) {
			return false
		}
	}

	for _, r := range ingredient {
		if unicode.IsControl(r) {
			return false
		}
	}

	return true
}

// validateUnit accepts empty units and short words like "g", "fl oz" or "tbsp."
func validateUnit(fl validator.FieldLevel) bool {
	unit := fl.Field().String()
	if len(unit) > 32 {
		return false
	}

	for _, r := range unit {
		if !unicode.IsLetter(r) && !unicode.IsSpace(r) && r != '.' && r != '-' {
			return false
		}
	}

	return true
}

// Accepted range for a positive base serving count
const (
	minServings = 0.01
	maxServings = 1000.0
)

// validateServings accepts 0, which the planner treats as "no base servings", or a count in range
func validateServings(fl validator.FieldLevel) bool {
	servings := fl.Field().Float()
	return servings == 0 || (servings >= minServings && servings <= maxServings)
}
