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

type evaluationRepository interface {
	List(ctx context.Context) ([]models.EvaluationDetail, error)
	FindByID(ctx context.Context, id string) (*models.EvaluationDetail, error)
	CreateWithStudents(ctx context.Context, evaluation *models.Evaluation, studentIDs []string) error
	Delete(ctx context.Context, id string) error
}

type rosterReader interface {
	ListActive(ctx context.Context) ([]models.StudentDetail, error)
}

// CreateEvaluationRequest holds payload for scheduling an exam event.
type CreateEvaluationRequest struct {
	Name         string    `json:"name" validate:"required"`
	ExamID       string    `json:"exam_id" validate:"required"`
	Date         time.Time `json:"date" validate:"required"`
	Time         string    `json:"time"`
	Description  string    `json:"description"`
	InstructorID string    `json:"instructor_id"`
	StudentIDs   []string  `json:"student_ids"`
}

// EligibilityPreview pairs an exam definition with the students allowed to
// take it.
type EligibilityPreview struct {
	Exam     models.ExamDefinition  `json:"exam"`
	Students []models.StudentDetail `json:"students"`
}

// EvaluationService schedules belt promotion exams.
type EvaluationService struct {
	repo      evaluationRepository
	roster    rosterReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEvaluationService constructs the evaluation service.
func NewEvaluationService(repo evaluationRepository, roster rosterReader, validate *validator.Validate, logger *zap.Logger) *EvaluationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EvaluationService{repo: repo, roster: roster, validator: validate, logger: logger}
}

// Definitions exposes the static promotion steps.
func (s *EvaluationService) Definitions() []models.ExamDefinition {
	return models.ExamDefinitions
}

// Eligible returns the active students whose belt matches the exam's origin
// belt.
func (s *EvaluationService) Eligible(ctx context.Context, examID string) (*EligibilityPreview, error) {
	def, ok := models.ExamDefinitionByID(examID)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "unknown exam "+examID)
	}
	roster, err := s.roster.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load roster")
	}
	return &EligibilityPreview{Exam: def, Students: EligibleStudents(def, roster)}, nil
}

// List returns the scheduled evaluations.
func (s *EvaluationService) List(ctx context.Context) ([]models.EvaluationDetail, error) {
	evaluations, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list evaluations")
	}
	return evaluations, nil
}

// Get returns one evaluation with its roster.
func (s *EvaluationService) Get(ctx context.Context, id string) (*models.EvaluationDetail, error) {
	evaluation, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "evaluation not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load evaluation")
	}
	return evaluation, nil
}

// Create schedules an exam event and its roster in one transaction. Every
// selected student must currently hold the exam's origin belt.
func (s *EvaluationService) Create(ctx context.Context, req CreateEvaluationRequest) (*models.Evaluation, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid evaluation payload")
	}
	def, ok := models.ExamDefinitionByID(req.ExamID)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown exam "+req.ExamID)
	}
	if len(req.StudentIDs) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNoStudentsSelected, "select at least one student for the exam")
	}

	roster, err := s.roster.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load roster")
	}
	eligible := make(map[string]bool, len(roster))
	for _, student := range EligibleStudents(def, roster) {
		eligible[student.ID] = true
	}
	for _, id := range req.StudentIDs {
		if !eligible[id] {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("student %s is not eligible for %s", id, def.Name))
		}
	}

	evaluation := &models.Evaluation{
		Name:        req.Name,
		ExamID:      req.ExamID,
		Date:        req.Date,
		Time:        req.Time,
		Description: req.Description,
	}
	if req.InstructorID != "" {
		evaluation.InstructorID = &req.InstructorID
	}
	if err := s.repo.CreateWithStudents(ctx, evaluation, req.StudentIDs); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create evaluation")
	}
	s.logger.Info("evaluation scheduled",
		zap.String("evaluation_id", evaluation.ID),
		zap.String("exam_id", req.ExamID),
		zap.Int("students", len(req.StudentIDs)))
	return evaluation, nil
}

// Delete removes an evaluation and its roster.
func (s *EvaluationService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "evaluation not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load evaluation")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete evaluation")
	}
	return nil
}
