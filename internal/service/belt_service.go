package service

import (
	"context"
	"database/sql"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/dojokai/dojo-api/internal/models"
	appErrors "github.com/dojokai/dojo-api/pkg/errors"
)

type beltRepository interface {
	ListAll(ctx context.Context) ([]models.Belt, error)
	FindByID(ctx context.Context, id string) (*models.Belt, error)
	FindByRank(ctx context.Context, rank int) (*models.Belt, error)
	Create(ctx context.Context, belt *models.Belt) error
	Update(ctx context.Context, belt *models.Belt) error
	Delete(ctx context.Context, id string) error
	SeedDefaults(ctx context.Context) error
}

// BeltRequest holds payload for creating or updating belts.
type BeltRequest struct {
	Name  string `json:"name" validate:"required"`
	Color string `json:"color" validate:"required"`
	Rank  int    `json:"rank" validate:"required,gte=1"`
}

// BeltService manages the rank ladder.
type BeltService struct {
	repo      beltRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewBeltService constructs the belt service.
func NewBeltService(repo beltRepository, validate *validator.Validate, logger *zap.Logger) *BeltService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BeltService{repo: repo, validator: validate, logger: logger}
}

// EnsureDefaults seeds the canonical belt ladder when the table is empty.
func (s *BeltService) EnsureDefaults(ctx context.Context) error {
	if err := s.repo.SeedDefaults(ctx); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to seed belts")
	}
	return nil
}

// List returns all belts in rank order.
func (s *BeltService) List(ctx context.Context) ([]models.Belt, error) {
	belts, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list belts")
	}
	return belts, nil
}

// Get returns one belt.
func (s *BeltService) Get(ctx context.Context, id string) (*models.Belt, error) {
	belt, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "belt not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load belt")
	}
	return belt, nil
}

// Create adds a belt. Ranks must remain unique.
func (s *BeltService) Create(ctx context.Context, req BeltRequest) (*models.Belt, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid belt payload")
	}
	if existing, err := s.repo.FindByRank(ctx, req.Rank); err == nil && existing != nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "rank already taken by "+existing.Name)
	} else if err != nil && err != sql.ErrNoRows {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check rank")
	}
	belt := &models.Belt{Name: req.Name, Color: req.Color, Rank: req.Rank}
	if err := s.repo.Create(ctx, belt); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create belt")
	}
	return belt, nil
}

// Update modifies a belt.
func (s *BeltService) Update(ctx context.Context, id string, req BeltRequest) (*models.Belt, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid belt payload")
	}
	belt, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing, err := s.repo.FindByRank(ctx, req.Rank); err == nil && existing != nil && existing.ID != id {
		return nil, appErrors.Clone(appErrors.ErrConflict, "rank already taken by "+existing.Name)
	} else if err != nil && err != sql.ErrNoRows {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check rank")
	}
	belt.Name = req.Name
	belt.Color = req.Color
	belt.Rank = req.Rank
	if err := s.repo.Update(ctx, belt); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update belt")
	}
	return belt, nil
}

// Delete removes a belt.
func (s *BeltService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete belt")
	}
	return nil
}
