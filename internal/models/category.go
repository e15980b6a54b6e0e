package models

import "time"

// Default bounds applied when a category leaves an age limit unset.
const (
	CategoryDefaultMinAge = 0
	CategoryDefaultMaxAge = 150
)

// AgeCategory is an age bracket (categoría de edad) used for pricing and
// exam routing. Bounds are inclusive; nil means open-ended.
type AgeCategory struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	MinAge       *int      `db:"min_age" json:"min_age,omitempty"`
	MaxAge       *int      `db:"max_age" json:"max_age,omitempty"`
	MonthlyPrice *float64  `db:"monthly_price" json:"monthly_price,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// EffectiveMinAge resolves the lower bound with the open-ended default.
func (c AgeCategory) EffectiveMinAge() int {
	if c.MinAge == nil {
		return CategoryDefaultMinAge
	}
	return *c.MinAge
}

// EffectiveMaxAge resolves the upper bound with the open-ended default.
func (c AgeCategory) EffectiveMaxAge() int {
	if c.MaxAge == nil {
		return CategoryDefaultMaxAge
	}
	return *c.MaxAge
}

// Contains reports whether the inclusive range covers the given age.
func (c AgeCategory) Contains(age int) bool {
	return age >= c.EffectiveMinAge() && age <= c.EffectiveMaxAge()
}

// RangeWidth is used as the tie-break when overlapping categories match the
// same age: the narrowest range wins.
func (c AgeCategory) RangeWidth() int {
	return c.EffectiveMaxAge() - c.EffectiveMinAge()
}
