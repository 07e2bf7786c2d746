// Package discovery narrows an already fetched recipe list by category and
// free-text query and describes the result for display.
package discovery

import (
	"strings"

	"flavourkitchen/models"
)

// AllCategories is the category selector meaning "no category filter".
const AllCategories = ""

// Selector is the pair of independent inputs to Filter.
type Selector struct {
	// Category is a category slug, or AllCategories.
	Category string
	// Query is free text; surrounding whitespace is ignored.
	Query string
}

// Active reports whether s filters anything at all.
func (s Selector) Active() bool {
	return s.Category != AllCategories || s.normalizedQuery() != ""
}

func (s Selector) normalizedQuery() string {
	return strings.ToLower(strings.TrimSpace(s.Query))
}

// Filter returns the recipes matching both the category and the text query,
// in their original order. The input is never modified.
//
// A category match is an exact, case-sensitive comparison with the slug of
// the recipe's embedded category; recipes without a category never match an
// active category filter. A text match is a case-insensitive substring of the
// title, description or ingredients.
func Filter(recipes []models.Recipe, sel Selector) []models.Recipe {
	out := make([]models.Recipe, 0, len(recipes))
	for _, r := range recipes {
		if matchesCategory(r, sel.Category) {
			out = append(out, r)
		}
	}

	q := sel.normalizedQuery()
	if q == "" {
		return out
	}
	n := 0
	for _, r := range out {
		if matchesQuery(r, q) {
			out[n] = r
			n++
		}
	}
	return out[:n]
}

func matchesCategory(r models.Recipe, slug string) bool {
	if slug == AllCategories {
		return true
	}
	return r.Metadata.Category != nil && r.Metadata.Category.Slug == slug
}

// matchesQuery expects q already trimmed and lowercased.
func matchesQuery(r models.Recipe, q string) bool {
	return strings.Contains(strings.ToLower(r.Title), q) ||
		strings.Contains(strings.ToLower(models.Str(r.Metadata.Description)), q) ||
		strings.Contains(strings.ToLower(models.Str(r.Metadata.Ingredients)), q)
}
