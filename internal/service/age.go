package service

import (
	"sort"
	"strings"
	"time"

	"github.com/dojokai/dojo-api/internal/models"
)

// AgeAt computes the anniversary-based age in whole years: the year
// difference is decremented when the reference month/day precedes the birth
// month/day.
func AgeAt(birth, asOf time.Time) int {
	years := asOf.Year() - birth.Year()
	if asOf.Month() < birth.Month() || (asOf.Month() == birth.Month() && asOf.Day() < birth.Day()) {
		years--
	}
	if years < 0 {
		return 0
	}
	return years
}

// CategoriesForAge returns every category whose inclusive range contains the
// age, ordered narrowest range first (lowest min age breaks remaining ties).
// When an administrator has created overlapping ranges this ordering makes
// the "pick first" selection deterministic.
func CategoriesForAge(age int, categories []models.AgeCategory) []models.AgeCategory {
	matches := make([]models.AgeCategory, 0, 1)
	for _, cat := range categories {
		if cat.Contains(age) {
			matches = append(matches, cat)
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].RangeWidth() != matches[j].RangeWidth() {
			return matches[i].RangeWidth() < matches[j].RangeWidth()
		}
		return matches[i].EffectiveMinAge() < matches[j].EffectiveMinAge()
	})
	return matches
}

// Display category breakpoints used when no persisted category covers the
// age. Bounds are inclusive upper limits; ages above the last entry are
// Veterano.
var displayCategoryBreakpoints = []struct {
	MaxAge int
	Name   string
}{
	{7, "Benjamin"},
	{9, "Alevin"},
	{11, "Infantil"},
	{13, "Cadete"},
	{15, "Junior"},
	{34, "Senior"},
}

// DisplayCategoryFor maps an age onto the static display-category table.
func DisplayCategoryFor(age int) string {
	for _, bp := range displayCategoryBreakpoints {
		if age <= bp.MaxAge {
			return bp.Name
		}
	}
	return "Veterano"
}

// MatchCategoryByName finds a persisted category whose name loosely matches
// the display name (case-insensitive substring, both directions).
func MatchCategoryByName(name string, categories []models.AgeCategory) *models.AgeCategory {
	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return nil
	}
	for i := range categories {
		candidate := strings.ToLower(categories[i].Name)
		if strings.Contains(candidate, needle) || strings.Contains(needle, candidate) {
			return &categories[i]
		}
	}
	return nil
}

// CategoryResolution is the combined outcome of the range search and the
// display-name fallback.
type CategoryResolution struct {
	Category    *models.AgeCategory
	DisplayName string
}

// ResolveCategory attempts the numeric range match first and falls back to a
// loose name match against the static display table. Display name is always
// populated.
func ResolveCategory(age int, categories []models.AgeCategory) CategoryResolution {
	display := DisplayCategoryFor(age)
	if matches := CategoriesForAge(age, categories); len(matches) > 0 {
		return CategoryResolution{Category: &matches[0], DisplayName: display}
	}
	if byName := MatchCategoryByName(display, categories); byName != nil {
		return CategoryResolution{Category: byName, DisplayName: display}
	}
	return CategoryResolution{DisplayName: display}
}
