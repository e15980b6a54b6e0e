package service

import (
	"context"
	"database/sql"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/dojokai/dojo-api/internal/models"
	appErrors "github.com/dojokai/dojo-api/pkg/errors"
)

type guardianRepository interface {
	List(ctx context.Context, filter models.GuardianFilter) ([]models.GuardianDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.Guardian, error)
	FindByDocument(ctx context.Context, documentID string) (*models.Guardian, error)
	ExistsByDocument(ctx context.Context, documentID string, excludeID string) (bool, error)
	Create(ctx context.Context, guardian *models.Guardian) error
	Update(ctx context.Context, guardian *models.Guardian) error
	Delete(ctx context.Context, id string) error
}

// GuardianRequest holds payload for creating or updating guardians.
type GuardianRequest struct {
	DocumentID string `json:"document_id" validate:"required"`
	FullName   string `json:"full_name" validate:"required"`
	Email      string `json:"email" validate:"omitempty,email"`
	Phone      string `json:"phone" validate:"required"`
	Address    string `json:"address"`
}

// GuardianService manages responsible adults for minor students.
type GuardianService struct {
	repo      guardianRepository
	billing   billingReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewGuardianService constructs the guardian service.
func NewGuardianService(repo guardianRepository, billing billingReader, validate *validator.Validate, logger *zap.Logger) *GuardianService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GuardianService{repo: repo, billing: billing, validator: validate, logger: logger}
}

func (s *GuardianService) localeRules(ctx context.Context) RuleSet {
	settings, err := s.billing.GetBilling(ctx)
	if err != nil {
		s.logger.Warn("billing settings unavailable, using default locale rules", zap.Error(err))
		return RulesFor(models.CountryModeVenezuela)
	}
	return RulesFor(settings.CountryMode)
}

// List returns guardians with their linked-student counts.
func (s *GuardianService) List(ctx context.Context, filter models.GuardianFilter) ([]models.GuardianDetail, *models.Pagination, error) {
	guardians, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list guardians")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return guardians, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns one guardian.
func (s *GuardianService) Get(ctx context.Context, id string) (*models.Guardian, error) {
	guardian, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "guardian not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load guardian")
	}
	return guardian, nil
}

// FindByDocument looks a guardian up by national ID, used by the enrollment
// form to reuse an existing guardian instead of creating a duplicate.
func (s *GuardianService) FindByDocument(ctx context.Context, documentID string) (*models.Guardian, error) {
	guardian, err := s.repo.FindByDocument(ctx, documentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "guardian not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to look up guardian")
	}
	return guardian, nil
}

// Create registers a guardian after locale validation of document and
// phone.
func (s *GuardianService) Create(ctx context.Context, req GuardianRequest) (*models.Guardian, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid guardian payload")
	}
	rules := s.localeRules(ctx)
	if err := rules.ValidateDocument(req.DocumentID); err != nil {
		return nil, err
	}
	if err := rules.ValidatePhone(req.Phone); err != nil {
		return nil, err
	}
	exists, err := s.repo.ExistsByDocument(ctx, req.DocumentID, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate document")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "document already registered")
	}
	guardian := &models.Guardian{
		DocumentID: req.DocumentID,
		FullName:   req.FullName,
		Email:      req.Email,
		Phone:      req.Phone,
		Address:    req.Address,
	}
	if err := s.repo.Create(ctx, guardian); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create guardian")
	}
	return guardian, nil
}

// Update modifies a guardian.
func (s *GuardianService) Update(ctx context.Context, id string, req GuardianRequest) (*models.Guardian, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid guardian payload")
	}
	guardian, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	rules := s.localeRules(ctx)
	if err := rules.ValidateDocument(req.DocumentID); err != nil {
		return nil, err
	}
	if err := rules.ValidatePhone(req.Phone); err != nil {
		return nil, err
	}
	exists, err := s.repo.ExistsByDocument(ctx, req.DocumentID, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate document")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "document already registered")
	}
	guardian.DocumentID = req.DocumentID
	guardian.FullName = req.FullName
	guardian.Email = req.Email
	guardian.Phone = req.Phone
	guardian.Address = req.Address
	if err := s.repo.Update(ctx, guardian); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update guardian")
	}
	return guardian, nil
}

// Delete removes a guardian. Linked students keep their records, the
// guardian reference simply goes dangling and is reported as unset.
func (s *GuardianService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete guardian")
	}
	return nil
}
