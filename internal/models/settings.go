package models

import "time"

// Country modes driving the locale-specific validation rule sets.
const (
	CountryModeVenezuela = "VE"
	CountryModeUSA       = "US"
)

// Currencies handled by the dues workflow. Bs. amounts are derived from the
// USD base via the configured exchange rate.
const (
	CurrencyUSD     = "USD"
	CurrencyBolivar = "VES"
)

// BillingSettings is the payment-configuration singleton: currency, cutoff
// day, adjustment percentages, exchange rate and country mode.
type BillingSettings struct {
	ID              string    `db:"id" json:"id"`
	Currency        string    `db:"currency" json:"currency"`
	BasePrice       float64   `db:"base_price" json:"base_price"`
	RegistrationFee float64   `db:"registration_fee" json:"registration_fee"`
	ExchangeRate    float64   `db:"exchange_rate" json:"exchange_rate"`
	DiscountPct     float64   `db:"discount_pct" json:"discount_pct"`
	SurchargePct    float64   `db:"surcharge_pct" json:"surcharge_pct"`
	CutoffDay       int       `db:"cutoff_day" json:"cutoff_day"`
	CountryMode     string    `db:"country_mode" json:"country_mode"`
	UpdatedBy       *string   `db:"updated_by" json:"updated_by,omitempty"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// DojoProfile is the school-identity singleton shown in headers and
// receipts.
type DojoProfile struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Address   string    `db:"address" json:"address"`
	Phone     string    `db:"phone" json:"phone"`
	Email     string    `db:"email" json:"email"`
	LogoURL   string    `db:"logo_url" json:"logo_url"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// ThemeSettings is the admin-panel theming singleton.
type ThemeSettings struct {
	ID             string    `db:"id" json:"id"`
	PrimaryColor   string    `db:"primary_color" json:"primary_color"`
	SecondaryColor string    `db:"secondary_color" json:"secondary_color"`
	DarkMode       bool      `db:"dark_mode" json:"dark_mode"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}
