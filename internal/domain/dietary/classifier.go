package dietary

import "strings"

// IngredientLine is a single recipe ingredient as supplied by the caller
type IngredientLine struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
	Unit   string  `json:"unit"`
	Notes  string  `json:"notes,omitempty"`
}

// MatchDetail describes a structured reference match
type MatchDetail struct {
	Name      string   `json:"name"`
	Amount    float64  `json:"amount"`
	Threshold *float64 `json:"threshold,omitempty"`
	Role      Role     `json:"role,omitempty"`
}

// Match is the outcome of scanning one ingredient against one reference set
type Match struct {
	Found   bool
	Score   float64
	Details *MatchDetail
}

// FermentationDetails buckets matched fermented ingredients by role
type FermentationDetails struct {
	MainIngredients []string `json:"mainIngredients"`
	Flavorings      []string `json:"flavorings"`
}

// Result is the dietary analysis of a whole ingredient list
type Result struct {
	IsLowFodmap         bool                `json:"isLowFodmap"`
	FodmapScore         float64             `json:"fodmapScore"`
	FodmapDetails       []MatchDetail       `json:"fodmapDetails"`
	IsFermented         bool                `json:"isFermented"`
	FermentationScore   float64             `json:"fermentationScore"`
	FermentationDetails FermentationDetails `json:"fermentationDetails"`
	HasNuts             bool                `json:"hasNuts"`
	IsPescatarian       bool                `json:"isPescatarian"`
}

// Classifier holds the reference universes an analysis runs against
type Classifier struct {
	fodmap       []ReferenceTable
	fermentation []ReferenceTable
	nuts         []ReferenceItem
}

// NewClassifier creates a classifier over the given tables
func NewClassifier(fodmap, fermentation []ReferenceTable, nuts []ReferenceItem) *Classifier {
	return &Classifier{
		fodmap:       cloneTables(fodmap),
		fermentation: cloneTables(fermentation),
		nuts:         append([]ReferenceItem(nil), nuts...),
	}
}

var defaultClassifier = NewClassifier(fodmapTables, fermentationTables, nutKeywords)

// DefaultClassifier returns the classifier backed by the built-in tables
func DefaultClassifier() *Classifier {
	return defaultClassifier
}

// Analyze classifies ingredients with the built-in tables
func Analyze(ingredients []IngredientLine) Result {
	return defaultClassifier.Analyze(ingredients)
}

// AnalyzeRecipe classifies ingredients with the built-in tables and copies the
// recipe's own pescatarian flag onto the result
func AnalyzeRecipe(ingredients []IngredientLine, isPescatarian bool) Result {
	return defaultClassifier.AnalyzeRecipe(ingredients, isPescatarian)
}

// AnalyzeRecipe is Analyze with the pescatarian flag passed through untouched
func (c *Classifier) AnalyzeRecipe(ingredients []IngredientLine, isPescatarian bool) Result {
	result := c.Analyze(ingredients)
	result.IsPescatarian = isPescatarian
	return result
}

// Analyze runs every ingredient independently against the FODMAP, fermentation
// and nut universes and derives the final flags
func (c *Classifier) Analyze(ingredients []IngredientLine) Result {
	result := Result{
		FodmapDetails: []MatchDetail{},
		FermentationDetails: FermentationDetails{
			MainIngredients: []string{},
			Flavorings:      []string{},
		},
	}

	for _, ingredient := range ingredients {
		for _, table := range c.fodmap {
			match := AnalyzeIngredient(ingredient, table.Items)
			if !match.Found {
				continue
			}
			result.FodmapScore += match.Score
			if match.Details != nil {
				result.FodmapDetails = append(result.FodmapDetails, *match.Details)
			}
		}

		for _, table := range c.fermentation {
			match := AnalyzeIngredient(ingredient, table.Items)
			if !match.Found {
				continue
			}
			result.FermentationScore += match.Score
			if match.Details == nil {
				continue
			}
			switch match.Details.Role {
			case RoleMain:
				result.FermentationDetails.MainIngredients = append(result.FermentationDetails.MainIngredients, match.Details.Name)
			case RoleFlavoring:
				result.FermentationDetails.Flavorings = append(result.FermentationDetails.Flavorings, match.Details.Name)
			}
		}

		if !result.HasNuts && AnalyzeIngredient(ingredient, c.nuts).Found {
			result.HasNuts = true
		}
	}

	result.IsLowFodmap = result.FodmapScore < 1
	result.IsFermented = result.FermentationScore > 0
	return result
}

// AnalyzeIngredient scans a reference set in order and returns the first match.
// Matching is plain substring containment on the lowercased ingredient name, so
// "wine" also matches "wine vinegar".
func AnalyzeIngredient(ingredient IngredientLine, items []ReferenceItem) Match {
	name := strings.ToLower(ingredient.Name)

	for _, ref := range items {
		if !strings.Contains(name, strings.ToLower(ref.Name)) {
			continue
		}

		switch ref.Kind {
		case KindFodmap:
			grams := ToGrams(ingredient.Amount, ingredient.Unit)
			threshold := ref.ThresholdGrams
			score := 0.5
			if grams > threshold {
				score = 1
			}
			return Match{
				Found: true,
				Score: score,
				Details: &MatchDetail{
					Name:      ingredient.Name,
					Amount:    grams,
					Threshold: &threshold,
				},
			}
		case KindFermented:
			return Match{
				Found: true,
				Score: 1,
				Details: &MatchDetail{
					Name:   ingredient.Name,
					Amount: ToGrams(ingredient.Amount, ingredient.Unit),
					Role:   ref.Role,
				},
			}
		default:
			return Match{Found: true, Score: 1}
		}
	}

	return Match{}
}
