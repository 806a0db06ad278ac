package search

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/helfiapp/foodresolve/internal/model"
)

func TestMergeDedupesOnNormalizedName(t *testing.T) {
	t.Parallel()

	base := []model.FoodItem{usableItem(model.SourceMenu, "fast-1", "Big Mac")}
	extra := []model.FoodItem{
		usableItem(model.SourceOpenFoodFacts, "off-1", "BIG  MAC!"),
		usableItem(model.SourceOpenFoodFacts, "off-2", "McChicken"),
	}

	merged := Merge(base, extra)
	assert.Len(t, merged, 2)
	assert.Equal(t, "fast-1", merged[0].ID)
	assert.Equal(t, "off-2", merged[1].ID)
}

func TestBrandTokensSkipGenericFoodWords(t *testing.T) {
	t.Parallel()

	assert.Empty(t, brandTokens("large fries meal"))
	assert.Equal(t, []string{"mcdonald"}, brandTokens("mcdonalds burger"))
}

func TestMatchBrandsCompactPrefix(t *testing.T) {
	t.Parallel()

	got := matchBrands([]string{"McDonald's", "Pizza Hut", "Papa John's"}, "papa johns pizza")
	assert.Equal(t, []string{"Papa John's"}, got)
}
