package discovery

import "flavourkitchen/models"

// Chip is one entry of the category filter bar.
type Chip struct {
	Label  string
	Active bool
	// Target is the category selector that clicking the chip applies.
	// Clicking the active chip clears the filter.
	Target string
}

// Chips builds the filter bar: "All" followed by one chip per category in
// store order.
func Chips(categories []models.Category, active string) []Chip {
	chips := make([]Chip, 0, len(categories)+1)
	chips = append(chips, Chip{Label: "All", Active: active == AllCategories, Target: AllCategories})
	for _, c := range categories {
		chip := Chip{Label: c.Title, Active: c.Slug == active, Target: c.Slug}
		if chip.Active {
			chip.Target = AllCategories
		}
		chips = append(chips, chip)
	}
	return chips
}
