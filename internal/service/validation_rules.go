package service

import (
	"regexp"

	"github.com/dojokai/dojo-api/internal/models"
	appErrors "github.com/dojokai/dojo-api/pkg/errors"
)

// RuleSet bundles the locale-specific field patterns. A set is derived from
// the current country mode on every use rather than cached, so a mid-session
// locale switch can never validate against stale rules.
type RuleSet struct {
	CountryMode     string
	documentPattern *regexp.Regexp
	phonePattern    *regexp.Regexp
	DocumentHint    string
	PhoneHint       string
}

const (
	veDocumentPattern = `^[VvEeJjGgPp]-?\d{7,8}$`
	usDocumentPattern = `^\d{3}-?\d{2}-?\d{4}$|^\d{9}$`
	vePhonePattern    = `^(0412|0414|0416|0424|0426)-?\d{7}$`
	usPhonePattern    = `^\(?\d{3}\)?[-. ]?\d{3}[-. ]?\d{4}$`
)

// RulesFor builds the rule set for a country mode. Unknown modes fall back
// to the Venezuelan rules.
func RulesFor(countryMode string) RuleSet {
	if countryMode == models.CountryModeUSA {
		return RuleSet{
			CountryMode:     models.CountryModeUSA,
			documentPattern: regexp.MustCompile(usDocumentPattern),
			phonePattern:    regexp.MustCompile(usPhonePattern),
			DocumentHint:    "SSN: 123-45-6789 or 9 digits",
			PhoneHint:       "US phone: (555) 123-4567",
		}
	}
	return RuleSet{
		CountryMode:     models.CountryModeVenezuela,
		documentPattern: regexp.MustCompile(veDocumentPattern),
		phonePattern:    regexp.MustCompile(vePhonePattern),
		DocumentHint:    "Cédula: V-12345678",
		PhoneHint:       "Teléfono: 0412-1234567",
	}
}

// ValidateDocument checks a national-ID string against the locale pattern.
func (r RuleSet) ValidateDocument(value string) error {
	if !r.documentPattern.MatchString(value) {
		return appErrors.Clone(appErrors.ErrValidation, "invalid document for locale "+r.CountryMode+": "+r.DocumentHint)
	}
	return nil
}

// ValidatePhone checks a phone string against the locale pattern.
func (r RuleSet) ValidatePhone(value string) error {
	if !r.phonePattern.MatchString(value) {
		return appErrors.Clone(appErrors.ErrValidation, "invalid phone for locale "+r.CountryMode+": "+r.PhoneHint)
	}
	return nil
}
