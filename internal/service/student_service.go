package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/dojokai/dojo-api/internal/models"
	appErrors "github.com/dojokai/dojo-api/pkg/errors"
)

type studentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.StudentDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.StudentDetail, error)
	ExistsByDocument(ctx context.Context, documentID string, excludeID string) (bool, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
	Deactivate(ctx context.Context, id string) error
	SoftDelete(ctx context.Context, id string) error
}

type categoryReader interface {
	ListAll(ctx context.Context) ([]models.AgeCategory, error)
}

type beltReader interface {
	ListAll(ctx context.Context) ([]models.Belt, error)
	FindByID(ctx context.Context, id string) (*models.Belt, error)
}

type guardianReader interface {
	FindByID(ctx context.Context, id string) (*models.Guardian, error)
}

type billingReader interface {
	GetBilling(ctx context.Context) (*models.BillingSettings, error)
}

// CreateStudentRequest holds payload for enrolling students.
type CreateStudentRequest struct {
	DocumentID string    `json:"document_id" validate:"required"`
	FullName   string    `json:"full_name" validate:"required"`
	BirthDate  time.Time `json:"birth_date" validate:"required"`
	Email      string    `json:"email" validate:"omitempty,email"`
	Phone      string    `json:"phone"`
	Address    string    `json:"address"`
	CategoryID string    `json:"category_id"`
	BeltID     string    `json:"belt_id"`
	GuardianID string    `json:"guardian_id"`
}

// UpdateStudentRequest holds payload for updating students.
type UpdateStudentRequest struct {
	DocumentID string    `json:"document_id" validate:"required"`
	FullName   string    `json:"full_name" validate:"required"`
	BirthDate  time.Time `json:"birth_date" validate:"required"`
	Email      string    `json:"email" validate:"omitempty,email"`
	Phone      string    `json:"phone"`
	Address    string    `json:"address"`
	CategoryID string    `json:"category_id"`
	BeltID     string    `json:"belt_id"`
	GuardianID string    `json:"guardian_id"`
	Active     bool      `json:"active"`
}

// StudentProfile decorates a student detail with the derived age fields the
// roster views display.
type StudentProfile struct {
	models.StudentDetail
	Age             int    `json:"age"`
	DisplayCategory string `json:"display_category"`
}

// StudentService handles student enrollment use-cases.
type StudentService struct {
	repo       studentRepository
	categories categoryReader
	belts      beltReader
	guardians  guardianReader
	billing    billingReader
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewStudentService constructs the student service.
func NewStudentService(repo studentRepository, categories categoryReader, belts beltReader, guardians guardianReader, billing billingReader, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, categories: categories, belts: belts, guardians: guardians, billing: billing, validator: validate, logger: logger}
}

// localeRules resolves the active rule set. A failed settings read falls
// back to the Venezuelan defaults so enrollment never blocks on config.
func (s *StudentService) localeRules(ctx context.Context) RuleSet {
	settings, err := s.billing.GetBilling(ctx)
	if err != nil {
		s.logger.Warn("billing settings unavailable, using default locale rules", zap.Error(err))
		return RulesFor(models.CountryModeVenezuela)
	}
	return RulesFor(settings.CountryMode)
}

// List returns students and pagination metadata.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.StudentDetail, *models.Pagination, error) {
	students, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return students, pagination, nil
}

// Get returns a student profile with age and display category derived at
// read time.
func (s *StudentService) Get(ctx context.Context, id string) (*StudentProfile, error) {
	detail, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	age := AgeAt(detail.BirthDate, time.Now())
	return &StudentProfile{
		StudentDetail:   *detail,
		Age:             age,
		DisplayCategory: DisplayCategoryFor(age),
	}, nil
}

// Create enrolls a new student. The category is auto-resolved from the birth
// date when none is supplied, the belt defaults to the lowest rank, and
// minors must reference an existing guardian.
func (s *StudentService) Create(ctx context.Context, req CreateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	rules := s.localeRules(ctx)
	if err := rules.ValidateDocument(req.DocumentID); err != nil {
		return nil, err
	}
	if req.Phone != "" {
		if err := rules.ValidatePhone(req.Phone); err != nil {
			return nil, err
		}
	}

	exists, err := s.repo.ExistsByDocument(ctx, req.DocumentID, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate document")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "document already registered")
	}

	age := AgeAt(req.BirthDate, time.Now())
	if age < models.AdultAge {
		if req.GuardianID == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "a guardian is required for students under 18")
		}
		if _, err := s.guardians.FindByID(ctx, req.GuardianID); err != nil {
			if err == sql.ErrNoRows {
				return nil, appErrors.Clone(appErrors.ErrValidation, "guardian not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load guardian")
		}
	}

	categoryID := req.CategoryID
	if categoryID == "" {
		categories, err := s.categories.ListAll(ctx)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load categories")
		}
		if resolution := ResolveCategory(age, categories); resolution.Category != nil {
			categoryID = resolution.Category.ID
		}
	}

	beltID := req.BeltID
	if beltID == "" {
		belts, err := s.belts.ListAll(ctx)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load belts")
		}
		for _, belt := range belts {
			if belt.Rank == 1 {
				beltID = belt.ID
				break
			}
		}
	} else {
		belt, err := s.belts.FindByID(ctx, beltID)
		if err != nil {
			if err == sql.ErrNoRows {
				return nil, appErrors.Clone(appErrors.ErrValidation, "belt not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load belt")
		}
		if max := models.MaxRankForCategory(DisplayCategoryFor(age)); belt.Rank > max {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("belt rank %d exceeds the maximum %d for the student's age bracket", belt.Rank, max))
		}
	}

	student := &models.Student{
		DocumentID: req.DocumentID,
		FullName:   req.FullName,
		BirthDate:  req.BirthDate,
		Email:      req.Email,
		Phone:      req.Phone,
		Address:    req.Address,
		Active:     true,
	}
	if categoryID != "" {
		student.CategoryID = &categoryID
	}
	if beltID != "" {
		student.BeltID = &beltID
	}
	if req.GuardianID != "" {
		student.GuardianID = &req.GuardianID
	}
	if err := s.repo.Create(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student")
	}
	s.logger.Info("student enrolled", zap.String("student_id", student.ID), zap.Int("age", age))
	return student, nil
}

// Update modifies a student record. When the student's age has drifted out
// of the assigned category, the category is re-resolved and the returned
// notice tells the caller about the reassignment.
func (s *StudentService) Update(ctx context.Context, id string, req UpdateStudentRequest) (*models.Student, string, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	detail, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, "", appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	rules := s.localeRules(ctx)
	if err := rules.ValidateDocument(req.DocumentID); err != nil {
		return nil, "", err
	}
	if req.Phone != "" {
		if err := rules.ValidatePhone(req.Phone); err != nil {
			return nil, "", err
		}
	}
	exists, err := s.repo.ExistsByDocument(ctx, req.DocumentID, id)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate document")
	}
	if exists {
		return nil, "", appErrors.Clone(appErrors.ErrConflict, "document already registered")
	}

	age := AgeAt(req.BirthDate, time.Now())
	if age < models.AdultAge && req.GuardianID == "" {
		return nil, "", appErrors.Clone(appErrors.ErrValidation, "a guardian is required for students under 18")
	}

	categories, err := s.categories.ListAll(ctx)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load categories")
	}

	categoryID := req.CategoryID
	notice := ""
	if categoryID != "" {
		for _, cat := range categories {
			if cat.ID == categoryID && !cat.Contains(age) {
				if resolution := ResolveCategory(age, categories); resolution.Category != nil {
					categoryID = resolution.Category.ID
					notice = fmt.Sprintf("category reassigned to %s: age %d is outside %s", resolution.Category.Name, age, cat.Name)
				} else {
					categoryID = ""
					notice = fmt.Sprintf("category cleared: age %d is outside %s and no category covers it", age, cat.Name)
				}
				break
			}
		}
	} else if resolution := ResolveCategory(age, categories); resolution.Category != nil {
		categoryID = resolution.Category.ID
	}

	student := detail.Student
	student.DocumentID = req.DocumentID
	student.FullName = req.FullName
	student.BirthDate = req.BirthDate
	student.Email = req.Email
	student.Phone = req.Phone
	student.Address = req.Address
	student.Active = req.Active
	student.CategoryID = nil
	student.BeltID = nil
	student.GuardianID = nil
	if categoryID != "" {
		student.CategoryID = &categoryID
	}
	if req.BeltID != "" {
		student.BeltID = &req.BeltID
	}
	if req.GuardianID != "" {
		student.GuardianID = &req.GuardianID
	}
	if err := s.repo.Update(ctx, &student); err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update student")
	}
	if notice != "" {
		s.logger.Info("student category reassigned", zap.String("student_id", id), zap.String("notice", notice))
	}
	return &student, notice, nil
}

// Deactivate marks a student inactive without touching history.
func (s *StudentService) Deactivate(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate student")
	}
	return nil
}

// Delete soft-deletes a student; payments and exam records keep their
// references.
func (s *StudentService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete student")
	}
	return nil
}
