package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dojokai/dojo-api/internal/models"
	appErrors "github.com/dojokai/dojo-api/pkg/errors"
)

type fakeCacheStore struct {
	entries map[string][]byte
	gets    int
	hits    int
}

func (f *fakeCacheStore) Get(ctx context.Context, key string, dest interface{}) error {
	f.gets++
	raw, ok := f.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	f.hits++
	return json.Unmarshal(raw, dest)
}

func (f *fakeCacheStore) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if f.entries == nil {
		f.entries = make(map[string][]byte)
	}
	f.entries[key] = raw
	return nil
}

func (f *fakeCacheStore) Delete(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.entries, key)
	}
	return nil
}

type mockSettingsRepo struct {
	billing *models.BillingSettings
	profile *models.DojoProfile
	theme   *models.ThemeSettings
	reads   int
}

func (m *mockSettingsRepo) GetBilling(ctx context.Context) (*models.BillingSettings, error) {
	m.reads++
	if m.billing == nil {
		return nil, sql.ErrNoRows
	}
	settings := *m.billing
	return &settings, nil
}

func (m *mockSettingsRepo) UpsertBilling(ctx context.Context, settings *models.BillingSettings) error {
	m.billing = settings
	return nil
}

func (m *mockSettingsRepo) GetProfile(ctx context.Context) (*models.DojoProfile, error) {
	if m.profile == nil {
		return nil, sql.ErrNoRows
	}
	profile := *m.profile
	return &profile, nil
}

func (m *mockSettingsRepo) UpsertProfile(ctx context.Context, profile *models.DojoProfile) error {
	m.profile = profile
	return nil
}

func (m *mockSettingsRepo) GetTheme(ctx context.Context) (*models.ThemeSettings, error) {
	if m.theme == nil {
		return nil, sql.ErrNoRows
	}
	theme := *m.theme
	return &theme, nil
}

func (m *mockSettingsRepo) UpsertTheme(ctx context.Context, theme *models.ThemeSettings) error {
	m.theme = theme
	return nil
}

func configDefaults() models.BillingSettings {
	return models.BillingSettings{
		Currency:        models.CurrencyUSD,
		BasePrice:       30,
		RegistrationFee: 15,
		ExchangeRate:    36.5,
		CutoffDay:       5,
		CountryMode:     models.CountryModeVenezuela,
	}
}

func newSettingsServiceForTest(repo *mockSettingsRepo) (*SettingsService, *fakeCacheStore, *mockAuditWriter) {
	store := &fakeCacheStore{}
	cache := NewCacheService(store, nil, time.Minute, nil, true)
	audit := &mockAuditWriter{}
	svc := NewSettingsService(repo, cache, audit, nil, nil, configDefaults())
	return svc, store, audit
}

func TestSettingsServiceBillingDefaultsBeforeFirstSave(t *testing.T) {
	svc, _, _ := newSettingsServiceForTest(&mockSettingsRepo{})

	settings, err := svc.GetBilling(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 30.0, settings.BasePrice)
	assert.Equal(t, models.CountryModeVenezuela, settings.CountryMode)
}

func TestSettingsServiceBillingReadThroughCache(t *testing.T) {
	repo := &mockSettingsRepo{billing: &models.BillingSettings{Currency: models.CurrencyUSD, BasePrice: 35, ExchangeRate: 40, CountryMode: models.CountryModeVenezuela}}
	svc, store, _ := newSettingsServiceForTest(repo)

	_, err := svc.GetBilling(context.Background())
	require.NoError(t, err)
	settings, err := svc.GetBilling(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 35.0, settings.BasePrice)
	assert.Equal(t, 1, repo.reads)
	assert.Equal(t, 1, store.hits)
}

func TestSettingsServiceUpdateBillingInvalidatesCache(t *testing.T) {
	repo := &mockSettingsRepo{billing: &models.BillingSettings{Currency: models.CurrencyUSD, BasePrice: 35, ExchangeRate: 40, CountryMode: models.CountryModeVenezuela}}
	svc, store, audit := newSettingsServiceForTest(repo)

	_, err := svc.GetBilling(context.Background())
	require.NoError(t, err)
	require.Contains(t, store.entries, "settings:billing")

	updated, err := svc.UpdateBilling(context.Background(), UpdateBillingRequest{
		Currency:     models.CurrencyUSD,
		BasePrice:    40,
		ExchangeRate: 42.5,
		CutoffDay:    10,
		CountryMode:  models.CountryModeUSA,
	}, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, 40.0, updated.BasePrice)
	assert.NotContains(t, store.entries, "settings:billing")
	require.Len(t, audit.entries, 1)
	assert.Equal(t, models.AuditActionSettingsUpdate, audit.entries[0].Action)

	fresh, err := svc.GetBilling(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.CountryModeUSA, fresh.CountryMode)
}

func TestSettingsServiceUpdateBillingRejectsBadCutoff(t *testing.T) {
	svc, _, _ := newSettingsServiceForTest(&mockSettingsRepo{})

	_, err := svc.UpdateBilling(context.Background(), UpdateBillingRequest{
		Currency:     models.CurrencyUSD,
		ExchangeRate: 40,
		CutoffDay:    31,
		CountryMode:  models.CountryModeVenezuela,
	}, "admin-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestSettingsServiceThemeDefaults(t *testing.T) {
	svc, _, _ := newSettingsServiceForTest(&mockSettingsRepo{})

	theme, err := svc.GetTheme(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "#C0392B", theme.PrimaryColor)
	assert.Equal(t, "#2C3E50", theme.SecondaryColor)
	assert.False(t, theme.DarkMode)
}

func TestSettingsServiceUpdateThemeRejectsBadColor(t *testing.T) {
	svc, _, _ := newSettingsServiceForTest(&mockSettingsRepo{})

	_, err := svc.UpdateTheme(context.Background(), UpdateThemeRequest{
		PrimaryColor:   "rojo",
		SecondaryColor: "#2C3E50",
	}, "admin-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestSettingsServiceProfileRoundTrip(t *testing.T) {
	svc, _, _ := newSettingsServiceForTest(&mockSettingsRepo{})

	_, err := svc.UpdateProfile(context.Background(), UpdateProfileRequest{
		Name:  "Dojo Shotokan Caracas",
		Phone: "0412-5551234",
		Email: "contacto@dojo.local",
	}, "admin-1")
	require.NoError(t, err)

	profile, err := svc.GetProfile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Dojo Shotokan Caracas", profile.Name)
}
