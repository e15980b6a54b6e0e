package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dojokai/dojo-api/internal/models"
)

func TestRulesForVenezuelaDocuments(t *testing.T) {
	rules := RulesFor(models.CountryModeVenezuela)

	assert.NoError(t, rules.ValidateDocument("V-12345678"))
	assert.NoError(t, rules.ValidateDocument("v1234567"))
	assert.NoError(t, rules.ValidateDocument("E-7654321"))
	assert.Error(t, rules.ValidateDocument("123-45-6789"))
	assert.Error(t, rules.ValidateDocument("X-12345678"))
	assert.Error(t, rules.ValidateDocument("V-123"))
}

func TestRulesForUSDocuments(t *testing.T) {
	rules := RulesFor(models.CountryModeUSA)

	assert.NoError(t, rules.ValidateDocument("123-45-6789"))
	assert.NoError(t, rules.ValidateDocument("123456789"))
	assert.Error(t, rules.ValidateDocument("V-12345678"))
	assert.Error(t, rules.ValidateDocument("12345"))
}

func TestRulesForVenezuelaPhones(t *testing.T) {
	rules := RulesFor(models.CountryModeVenezuela)

	assert.NoError(t, rules.ValidatePhone("0412-1234567"))
	assert.NoError(t, rules.ValidatePhone("04141234567"))
	assert.Error(t, rules.ValidatePhone("0999-1234567"))
	assert.Error(t, rules.ValidatePhone("(555) 123-4567"))
}

func TestRulesForUSPhones(t *testing.T) {
	rules := RulesFor(models.CountryModeUSA)

	assert.NoError(t, rules.ValidatePhone("(555) 123-4567"))
	assert.NoError(t, rules.ValidatePhone("555-123-4567"))
	assert.NoError(t, rules.ValidatePhone("5551234567"))
	assert.Error(t, rules.ValidatePhone("0412-1234567"))
}

func TestRulesForUnknownModeFallsBackToVenezuela(t *testing.T) {
	rules := RulesFor("XX")
	assert.Equal(t, models.CountryModeVenezuela, rules.CountryMode)
}

func TestRuleSetsAreRederived(t *testing.T) {
	// Switching locale mid-session must produce a different rule set, not a
	// cached one.
	ve := RulesFor(models.CountryModeVenezuela)
	us := RulesFor(models.CountryModeUSA)
	assert.NotEqual(t, ve.CountryMode, us.CountryMode)
	assert.Error(t, us.ValidateDocument("V-12345678"))
	assert.NoError(t, ve.ValidateDocument("V-12345678"))
}
