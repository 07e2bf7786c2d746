package discovery

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"flavourkitchen/models"
)

func categories() []models.Category {
	return []models.Category{*thai, *italian}
}

func TestSummarize(t *testing.T) {
	list := fixture()
	sel := Selector{Category: "thai", Query: " noodles "}
	got := Summarize(len(list), Filter(list, sel), categories(), sel)

	assert.Equal(t, Summary{Total: 6, Filtered: 1, Category: "thai", CategoryTitle: "Thai", Query: "noodles"}, got)
	assert.Equal(t, "Showing 1 of 6 recipes in Thai matching “noodles”", got.String())
	assert.False(t, got.Empty())
}

func TestSummarize_UnknownCategoryHasNoTitle(t *testing.T) {
	list := fixture()
	sel := Selector{Category: "french"}
	got := Summarize(len(list), Filter(list, sel), categories(), sel)

	assert.Equal(t, "", got.CategoryTitle)
	assert.True(t, got.Empty())
	assert.False(t, got.NoRecipes())
	assert.Equal(t, "Showing 0 of 6 recipes", got.String())
}

func TestSummarize_NoRecipes(t *testing.T) {
	got := Summarize(0, nil, categories(), Selector{Query: "soup"})
	assert.True(t, got.Empty())
	assert.True(t, got.NoRecipes())
}

func TestChips(t *testing.T) {
	chips := Chips(categories(), "italian")
	assert.Equal(t, []Chip{
		{Label: "All", Active: false, Target: AllCategories},
		{Label: "Thai", Active: false, Target: "thai"},
		{Label: "Italian", Active: true, Target: AllCategories},
	}, chips)

	none := Chips(categories(), AllCategories)
	assert.True(t, none[0].Active)
}
