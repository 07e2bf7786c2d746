package discovery

import (
	"fmt"
	"strings"

	"flavourkitchen/models"
)

// Summary describes a filter result for the "Showing N of M" line.
type Summary struct {
	Total    int    `json:"total"`
	Filtered int    `json:"filtered"`
	Category string `json:"category,omitempty"`
	// CategoryTitle is empty when no category filter is active or the
	// selected slug names no known category.
	CategoryTitle string `json:"category_title,omitempty"`
	Query         string `json:"query,omitempty"`
}

// Summarize reports the counts and the active selectors. total is the size of
// the unfiltered list.
func Summarize(total int, filtered []models.Recipe, categories []models.Category, sel Selector) Summary {
	s := Summary{
		Total:    total,
		Filtered: len(filtered),
		Category: sel.Category,
		Query:    strings.TrimSpace(sel.Query),
	}
	if sel.Category != AllCategories {
		s.CategoryTitle = CategoryTitle(categories, sel.Category)
	}
	return s
}

// CategoryTitle looks slug up in categories and returns its title, or "".
func CategoryTitle(categories []models.Category, slug string) string {
	for _, c := range categories {
		if c.Slug == slug {
			return c.Title
		}
	}
	return ""
}

// Empty reports whether nothing matched.
func (s Summary) Empty() bool {
	return s.Filtered == 0
}

// NoRecipes reports whether there was nothing to filter in the first place,
// as opposed to a filter that matched nothing.
func (s Summary) NoRecipes() bool {
	return s.Total == 0
}

// String renders the summary line, e.g.
// Showing 2 of 9 recipes in Thai matching “noodle”.
func (s Summary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Showing %d of %d recipes", s.Filtered, s.Total)
	if s.CategoryTitle != "" {
		fmt.Fprintf(&b, " in %s", s.CategoryTitle)
	}
	if s.Query != "" {
		fmt.Fprintf(&b, " matching “%s”", s.Query)
	}
	return b.String()
}
