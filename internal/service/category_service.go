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

type categoryRepository interface {
	ListAll(ctx context.Context) ([]models.AgeCategory, error)
	FindByID(ctx context.Context, id string) (*models.AgeCategory, error)
	Create(ctx context.Context, category *models.AgeCategory) error
	Update(ctx context.Context, category *models.AgeCategory) error
	Delete(ctx context.Context, id string) error
}

// CategoryRequest holds payload for creating or updating an age category.
type CategoryRequest struct {
	Name         string   `json:"name" validate:"required"`
	MinAge       *int     `json:"min_age" validate:"omitempty,gte=0"`
	MaxAge       *int     `json:"max_age" validate:"omitempty,gte=0"`
	MonthlyPrice *float64 `json:"monthly_price" validate:"omitempty,gte=0"`
}

// CategoryService manages the configurable age brackets.
type CategoryService struct {
	repo      categoryRepository
	billing   billingReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCategoryService constructs the category service.
func NewCategoryService(repo categoryRepository, billing billingReader, validate *validator.Validate, logger *zap.Logger) *CategoryService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CategoryService{repo: repo, billing: billing, validator: validate, logger: logger}
}

// List returns all categories ordered by their lower bound.
func (s *CategoryService) List(ctx context.Context) ([]models.AgeCategory, error) {
	categories, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list categories")
	}
	return categories, nil
}

// Get returns one category.
func (s *CategoryService) Get(ctx context.Context, id string) (*models.AgeCategory, error) {
	category, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "category not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load category")
	}
	return category, nil
}

// PriceFor resolves the monthly price for a category, falling back to the
// configured base price when the category has none.
func (s *CategoryService) PriceFor(ctx context.Context, id string) (float64, error) {
	category, err := s.Get(ctx, id)
	if err != nil {
		return 0, err
	}
	if category.MonthlyPrice != nil && *category.MonthlyPrice > 0 {
		return *category.MonthlyPrice, nil
	}
	settings, err := s.billing.GetBilling(ctx)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load billing settings")
	}
	return settings.BasePrice, nil
}

// validateRange rejects inverted bounds. Overlaps with other categories are
// allowed and reported as a notice, the narrowest range wins at resolution
// time.
func (s *CategoryService) validateRange(ctx context.Context, req CategoryRequest, excludeID string) (string, error) {
	if req.MinAge != nil && req.MaxAge != nil && *req.MinAge > *req.MaxAge {
		return "", appErrors.Clone(appErrors.ErrValidation, "min_age cannot exceed max_age")
	}
	candidate := models.AgeCategory{MinAge: req.MinAge, MaxAge: req.MaxAge}
	existing, err := s.repo.ListAll(ctx)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load categories")
	}
	for _, cat := range existing {
		if cat.ID == excludeID {
			continue
		}
		if candidate.EffectiveMinAge() <= cat.EffectiveMaxAge() && cat.EffectiveMinAge() <= candidate.EffectiveMaxAge() {
			return fmt.Sprintf("age range overlaps with %s (%d-%d)", cat.Name, cat.EffectiveMinAge(), cat.EffectiveMaxAge()), nil
		}
	}
	return "", nil
}

// Create adds a category. The returned notice flags overlapping ranges.
func (s *CategoryService) Create(ctx context.Context, req CategoryRequest) (*models.AgeCategory, string, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid category payload")
	}
	notice, err := s.validateRange(ctx, req, "")
	if err != nil {
		return nil, "", err
	}
	category := &models.AgeCategory{
		Name:         req.Name,
		MinAge:       req.MinAge,
		MaxAge:       req.MaxAge,
		MonthlyPrice: req.MonthlyPrice,
	}
	if err := s.repo.Create(ctx, category); err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create category")
	}
	return category, notice, nil
}

// Update modifies a category. The returned notice flags overlapping ranges.
func (s *CategoryService) Update(ctx context.Context, id string, req CategoryRequest) (*models.AgeCategory, string, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid category payload")
	}
	category, err := s.Get(ctx, id)
	if err != nil {
		return nil, "", err
	}
	notice, err := s.validateRange(ctx, req, id)
	if err != nil {
		return nil, "", err
	}
	category.Name = req.Name
	category.MinAge = req.MinAge
	category.MaxAge = req.MaxAge
	category.MonthlyPrice = req.MonthlyPrice
	if err := s.repo.Update(ctx, category); err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update category")
	}
	return category, notice, nil
}

// Delete removes a category; students keep a dangling reference resolved to
// the display fallback.
func (s *CategoryService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete category")
	}
	return nil
}
