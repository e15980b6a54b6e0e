package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/dojokai/dojo-api/internal/models"
	appErrors "github.com/dojokai/dojo-api/pkg/errors"
)

type settingsRepository interface {
	GetBilling(ctx context.Context) (*models.BillingSettings, error)
	UpsertBilling(ctx context.Context, settings *models.BillingSettings) error
	GetProfile(ctx context.Context) (*models.DojoProfile, error)
	UpsertProfile(ctx context.Context, profile *models.DojoProfile) error
	GetTheme(ctx context.Context) (*models.ThemeSettings, error)
	UpsertTheme(ctx context.Context, theme *models.ThemeSettings) error
}

// Cache keys for the settings singletons.
const (
	cacheKeyBilling = "settings:billing"
	cacheKeyProfile = "settings:profile"
	cacheKeyTheme   = "settings:theme"
)

// UpdateBillingRequest holds the payment-configuration payload.
type UpdateBillingRequest struct {
	Currency        string  `json:"currency" validate:"required,oneof=USD VES"`
	BasePrice       float64 `json:"base_price" validate:"gte=0"`
	RegistrationFee float64 `json:"registration_fee" validate:"gte=0"`
	ExchangeRate    float64 `json:"exchange_rate" validate:"gt=0"`
	DiscountPct     float64 `json:"discount_pct" validate:"gte=0,lte=100"`
	SurchargePct    float64 `json:"surcharge_pct" validate:"gte=0,lte=100"`
	CutoffDay       int     `json:"cutoff_day" validate:"gte=0,lte=28"`
	CountryMode     string  `json:"country_mode" validate:"required,oneof=VE US"`
}

// UpdateProfileRequest holds the school-identity payload.
type UpdateProfileRequest struct {
	Name    string `json:"name" validate:"required"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Email   string `json:"email" validate:"omitempty,email"`
	LogoURL string `json:"logo_url" validate:"omitempty,url"`
}

// UpdateThemeRequest holds the admin-panel theming payload.
type UpdateThemeRequest struct {
	PrimaryColor   string `json:"primary_color" validate:"required,hexcolor"`
	SecondaryColor string `json:"secondary_color" validate:"required,hexcolor"`
	DarkMode       bool   `json:"dark_mode"`
}

// SettingsService manages the admin configuration singletons with a
// read-through cache.
type SettingsService struct {
	repo      settingsRepository
	cache     *CacheService
	audit     auditWriter
	validator *validator.Validate
	logger    *zap.Logger
	defaults  models.BillingSettings
}

// NewSettingsService constructs the settings service. The defaults seed the
// billing singleton on first read when nothing is persisted yet.
func NewSettingsService(repo settingsRepository, cache *CacheService, audit auditWriter, validate *validator.Validate, logger *zap.Logger, defaults models.BillingSettings) *SettingsService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SettingsService{repo: repo, cache: cache, audit: audit, validator: validate, logger: logger, defaults: defaults}
}

// GetBilling returns the billing singleton, serving the config defaults when
// nothing has been persisted yet.
func (s *SettingsService) GetBilling(ctx context.Context) (*models.BillingSettings, error) {
	var cached models.BillingSettings
	if hit, _ := s.cache.Get(ctx, cacheKeyBilling, &cached); hit {
		return &cached, nil
	}
	settings, err := s.repo.GetBilling(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			defaults := s.defaults
			return &defaults, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load billing settings")
	}
	_ = s.cache.Set(ctx, cacheKeyBilling, settings, 0)
	return settings, nil
}

// UpdateBilling persists the billing singleton and invalidates the cache.
func (s *SettingsService) UpdateBilling(ctx context.Context, req UpdateBillingRequest, actorID string) (*models.BillingSettings, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid billing payload")
	}
	settings := &models.BillingSettings{
		Currency:        req.Currency,
		BasePrice:       req.BasePrice,
		RegistrationFee: req.RegistrationFee,
		ExchangeRate:    req.ExchangeRate,
		DiscountPct:     req.DiscountPct,
		SurchargePct:    req.SurchargePct,
		CutoffDay:       req.CutoffDay,
		CountryMode:     req.CountryMode,
	}
	if actorID != "" {
		settings.UpdatedBy = &actorID
	}
	if err := s.repo.UpsertBilling(ctx, settings); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save billing settings")
	}
	_ = s.cache.Invalidate(ctx, cacheKeyBilling)
	s.writeAudit(ctx, actorID, "billing", fmt.Sprintf("currency=%s base=%.2f rate=%.2f mode=%s", req.Currency, req.BasePrice, req.ExchangeRate, req.CountryMode))
	s.logger.Info("billing settings updated", zap.String("country_mode", req.CountryMode), zap.String("currency", req.Currency))
	return settings, nil
}

// GetProfile returns the school-identity singleton.
func (s *SettingsService) GetProfile(ctx context.Context) (*models.DojoProfile, error) {
	var cached models.DojoProfile
	if hit, _ := s.cache.Get(ctx, cacheKeyProfile, &cached); hit {
		return &cached, nil
	}
	profile, err := s.repo.GetProfile(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return &models.DojoProfile{}, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load profile")
	}
	_ = s.cache.Set(ctx, cacheKeyProfile, profile, 0)
	return profile, nil
}

// UpdateProfile persists the school identity.
func (s *SettingsService) UpdateProfile(ctx context.Context, req UpdateProfileRequest, actorID string) (*models.DojoProfile, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid profile payload")
	}
	profile := &models.DojoProfile{
		Name:    req.Name,
		Address: req.Address,
		Phone:   req.Phone,
		Email:   req.Email,
		LogoURL: req.LogoURL,
	}
	if err := s.repo.UpsertProfile(ctx, profile); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save profile")
	}
	_ = s.cache.Invalidate(ctx, cacheKeyProfile)
	s.writeAudit(ctx, actorID, "profile", fmt.Sprintf("name=%s", req.Name))
	return profile, nil
}

// GetTheme returns the theming singleton.
func (s *SettingsService) GetTheme(ctx context.Context) (*models.ThemeSettings, error) {
	var cached models.ThemeSettings
	if hit, _ := s.cache.Get(ctx, cacheKeyTheme, &cached); hit {
		return &cached, nil
	}
	theme, err := s.repo.GetTheme(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return &models.ThemeSettings{PrimaryColor: "#C0392B", SecondaryColor: "#2C3E50"}, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load theme")
	}
	_ = s.cache.Set(ctx, cacheKeyTheme, theme, 0)
	return theme, nil
}

// UpdateTheme persists the theming singleton.
func (s *SettingsService) UpdateTheme(ctx context.Context, req UpdateThemeRequest, actorID string) (*models.ThemeSettings, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid theme payload")
	}
	theme := &models.ThemeSettings{
		PrimaryColor:   req.PrimaryColor,
		SecondaryColor: req.SecondaryColor,
		DarkMode:       req.DarkMode,
	}
	if err := s.repo.UpsertTheme(ctx, theme); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save theme")
	}
	_ = s.cache.Invalidate(ctx, cacheKeyTheme)
	s.writeAudit(ctx, actorID, "theme", fmt.Sprintf("primary=%s dark=%t", req.PrimaryColor, req.DarkMode))
	return theme, nil
}

func (s *SettingsService) writeAudit(ctx context.Context, actorID, section, detail string) {
	if s.audit == nil {
		return
	}
	entry := &models.AuditLog{
		Action:    models.AuditActionSettingsUpdate,
		Resource:  "settings",
		NewValues: []byte(fmt.Sprintf(`{"section":%q,"detail":%q}`, section, detail)),
	}
	if actorID != "" {
		entry.UserID = &actorID
	}
	if err := s.audit.CreateAuditLog(ctx, entry); err != nil {
		s.logger.Warn("audit log write failed", zap.String("section", section), zap.Error(err))
	}
}
