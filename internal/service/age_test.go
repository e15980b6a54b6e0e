package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dojokai/dojo-api/internal/models"
)

func intPtr(v int) *int { return &v }

func TestAgeAtBeforeAnniversary(t *testing.T) {
	birth := time.Date(2015, 3, 10, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 8, AgeAt(birth, time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)))
}

func TestAgeAtOnAnniversary(t *testing.T) {
	birth := time.Date(2015, 3, 10, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 9, AgeAt(birth, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)))
}

func TestAgeAtEarlierMonth(t *testing.T) {
	birth := time.Date(2000, 12, 31, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 23, AgeAt(birth, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
}

func TestCategoriesForAgeExactRange(t *testing.T) {
	cats := []models.AgeCategory{
		{ID: "a", Name: "Benjamin", MinAge: intPtr(0), MaxAge: intPtr(7)},
		{ID: "b", Name: "Alevin", MinAge: intPtr(8), MaxAge: intPtr(9)},
		{ID: "c", Name: "Infantil", MinAge: intPtr(10), MaxAge: intPtr(11)},
	}
	matches := CategoriesForAge(10, cats)
	require.Len(t, matches, 1)
	assert.Equal(t, "c", matches[0].ID)
}

func TestCategoriesForAgeNoMatchReturnsEmpty(t *testing.T) {
	cats := []models.AgeCategory{{ID: "a", MinAge: intPtr(0), MaxAge: intPtr(7)}}
	assert.Empty(t, CategoriesForAge(40, cats))
}

func TestCategoriesForAgeOpenBounds(t *testing.T) {
	cats := []models.AgeCategory{{ID: "vets", Name: "Veterano", MinAge: intPtr(35)}}
	matches := CategoriesForAge(80, cats)
	require.Len(t, matches, 1)
	assert.Equal(t, "vets", matches[0].ID)
}

func TestCategoriesForAgeNarrowestWinsOnOverlap(t *testing.T) {
	cats := []models.AgeCategory{
		{ID: "wide", Name: "General", MinAge: intPtr(0), MaxAge: intPtr(99)},
		{ID: "narrow", Name: "Infantil", MinAge: intPtr(10), MaxAge: intPtr(11)},
	}
	matches := CategoriesForAge(10, cats)
	require.Len(t, matches, 2)
	assert.Equal(t, "narrow", matches[0].ID)
}

func TestDisplayCategoryBreakpoints(t *testing.T) {
	cases := map[int]string{
		5:  "Benjamin",
		7:  "Benjamin",
		8:  "Alevin",
		10: "Infantil",
		13: "Cadete",
		15: "Junior",
		20: "Senior",
		34: "Senior",
		35: "Veterano",
	}
	for age, want := range cases {
		assert.Equal(t, want, DisplayCategoryFor(age), "age %d", age)
	}
}

func TestResolveCategoryRangeFirst(t *testing.T) {
	cats := []models.AgeCategory{
		{ID: "x", Name: "Cadete", MinAge: intPtr(12), MaxAge: intPtr(13)},
	}
	res := ResolveCategory(12, cats)
	require.NotNil(t, res.Category)
	assert.Equal(t, "x", res.Category.ID)
	assert.Equal(t, "Cadete", res.DisplayName)
}

func TestResolveCategoryNameFallback(t *testing.T) {
	// Range does not cover age 10, but the persisted name loosely matches
	// the display table entry.
	cats := []models.AgeCategory{
		{ID: "inf", Name: "Grupo Infantil", MinAge: intPtr(20), MaxAge: intPtr(25)},
	}
	res := ResolveCategory(10, cats)
	require.NotNil(t, res.Category)
	assert.Equal(t, "inf", res.Category.ID)
	assert.Equal(t, "Infantil", res.DisplayName)
}

func TestResolveCategoryNoMatch(t *testing.T) {
	res := ResolveCategory(50, []models.AgeCategory{{ID: "kids", Name: "Peques", MinAge: intPtr(0), MaxAge: intPtr(7)}})
	assert.Nil(t, res.Category)
	assert.Equal(t, "Veterano", res.DisplayName)
}
