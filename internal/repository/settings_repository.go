package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/dojokai/dojo-api/internal/models"
)

// Singleton rows use a fixed ID so upserts stay trivial.
const singletonID = "default"

// SettingsRepository persists the configuration singletons: billing, dojo
// profile and theme.
type SettingsRepository struct {
	db *sqlx.DB
}

// NewSettingsRepository constructs a SettingsRepository.
func NewSettingsRepository(db *sqlx.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// GetBilling returns the billing settings row.
func (r *SettingsRepository) GetBilling(ctx context.Context) (*models.BillingSettings, error) {
	const query = `SELECT id, currency, base_price, registration_fee, exchange_rate, discount_pct, surcharge_pct, cutoff_day, country_mode, updated_by, updated_at
        FROM billing_settings WHERE id = $1`
	var settings models.BillingSettings
	if err := r.db.GetContext(ctx, &settings, query, singletonID); err != nil {
		return nil, err
	}
	return &settings, nil
}

// UpsertBilling saves the billing settings singleton.
func (r *SettingsRepository) UpsertBilling(ctx context.Context, settings *models.BillingSettings) error {
	settings.ID = singletonID
	settings.UpdatedAt = time.Now().UTC()
	const query = `INSERT INTO billing_settings (id, currency, base_price, registration_fee, exchange_rate, discount_pct, surcharge_pct, cutoff_day, country_mode, updated_by, updated_at)
        VALUES (:id, :currency, :base_price, :registration_fee, :exchange_rate, :discount_pct, :surcharge_pct, :cutoff_day, :country_mode, :updated_by, :updated_at)
        ON CONFLICT (id) DO UPDATE SET currency = EXCLUDED.currency, base_price = EXCLUDED.base_price, registration_fee = EXCLUDED.registration_fee,
        exchange_rate = EXCLUDED.exchange_rate, discount_pct = EXCLUDED.discount_pct, surcharge_pct = EXCLUDED.surcharge_pct,
        cutoff_day = EXCLUDED.cutoff_day, country_mode = EXCLUDED.country_mode, updated_by = EXCLUDED.updated_by, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, settings); err != nil {
		return fmt.Errorf("upsert billing settings: %w", err)
	}
	return nil
}

// GetProfile returns the dojo profile row.
func (r *SettingsRepository) GetProfile(ctx context.Context) (*models.DojoProfile, error) {
	const query = `SELECT id, name, address, phone, email, logo_url, updated_at FROM dojo_profile WHERE id = $1`
	var profile models.DojoProfile
	if err := r.db.GetContext(ctx, &profile, query, singletonID); err != nil {
		return nil, err
	}
	return &profile, nil
}

// UpsertProfile saves the dojo profile singleton.
func (r *SettingsRepository) UpsertProfile(ctx context.Context, profile *models.DojoProfile) error {
	profile.ID = singletonID
	profile.UpdatedAt = time.Now().UTC()
	const query = `INSERT INTO dojo_profile (id, name, address, phone, email, logo_url, updated_at)
        VALUES (:id, :name, :address, :phone, :email, :logo_url, :updated_at)
        ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, address = EXCLUDED.address, phone = EXCLUDED.phone,
        email = EXCLUDED.email, logo_url = EXCLUDED.logo_url, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, profile); err != nil {
		return fmt.Errorf("upsert dojo profile: %w", err)
	}
	return nil
}

// GetTheme returns the theme row.
func (r *SettingsRepository) GetTheme(ctx context.Context) (*models.ThemeSettings, error) {
	const query = `SELECT id, primary_color, secondary_color, dark_mode, updated_at FROM theme_settings WHERE id = $1`
	var theme models.ThemeSettings
	if err := r.db.GetContext(ctx, &theme, query, singletonID); err != nil {
		return nil, err
	}
	return &theme, nil
}

// UpsertTheme saves the theme singleton.
func (r *SettingsRepository) UpsertTheme(ctx context.Context, theme *models.ThemeSettings) error {
	theme.ID = singletonID
	theme.UpdatedAt = time.Now().UTC()
	const query = `INSERT INTO theme_settings (id, primary_color, secondary_color, dark_mode, updated_at)
        VALUES (:id, :primary_color, :secondary_color, :dark_mode, :updated_at)
        ON CONFLICT (id) DO UPDATE SET primary_color = EXCLUDED.primary_color, secondary_color = EXCLUDED.secondary_color,
        dark_mode = EXCLUDED.dark_mode, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, theme); err != nil {
		return fmt.Errorf("upsert theme settings: %w", err)
	}
	return nil
}
