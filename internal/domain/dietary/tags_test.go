package dietary

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResultTags(t *testing.T) {
	t.Run("NeutralResult", func(t *testing.T) {
		result := Analyze(nil)
		assert.Equal(t, []Tag{TagLowFodmap, TagNutFree}, result.Tags())
	})

	t.Run("EveryFlag", func(t *testing.T) {
		result := AnalyzeRecipe([]IngredientLine{
			{Name: "garlic", Amount: 10, Unit: "g"},
			{Name: "miso", Amount: 20, Unit: "g"},
			{Name: "walnuts", Amount: 30, Unit: "g"},
		}, true)

		assert.Equal(t, []Tag{TagHighFodmap, TagFermented, TagContainsNuts, TagPescatarian}, result.Tags())
		assert.True(t, result.Satisfies(TagFermented, TagPescatarian))
		assert.False(t, result.Satisfies(TagNutFree))
	})

	t.Run("NoRequirements", func(t *testing.T) {
		assert.True(t, Analyze(nil).Satisfies())
	})
}

func TestParseTag(t *testing.T) {
	tag, err := ParseTag(" Low_FODMAP ")
	require.NoError(t, err)
	assert.Equal(t, TagLowFodmap, tag)

	_, err = ParseTag("keto")
	assert.Error(t, err)
}
