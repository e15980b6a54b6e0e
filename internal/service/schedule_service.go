package service

import (
	"context"
	"database/sql"
	"regexp"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/dojokai/dojo-api/internal/models"
	appErrors "github.com/dojokai/dojo-api/pkg/errors"
)

type scheduleRepository interface {
	List(ctx context.Context) ([]models.ClassScheduleDetail, error)
	FindByID(ctx context.Context, id string) (*models.ClassSchedule, error)
	Create(ctx context.Context, entry *models.ClassSchedule) error
	Update(ctx context.Context, entry *models.ClassSchedule) error
	Delete(ctx context.Context, id string) error
}

// ScheduleRequest holds payload for timetable entries.
type ScheduleRequest struct {
	Weekday      int    `json:"weekday" validate:"required,gte=1,lte=7"`
	StartTime    string `json:"start_time" validate:"required"`
	EndTime      string `json:"end_time" validate:"required"`
	CategoryID   string `json:"category_id"`
	InstructorID string `json:"instructor_id"`
	Notes        string `json:"notes"`
}

var timeOfDayPattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

// ScheduleService manages the weekly class timetable.
type ScheduleService struct {
	repo      scheduleRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewScheduleService constructs the schedule service.
func NewScheduleService(repo scheduleRepository, validate *validator.Validate, logger *zap.Logger) *ScheduleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleService{repo: repo, validator: validate, logger: logger}
}

// List returns the timetable ordered by weekday and start time.
func (s *ScheduleService) List(ctx context.Context) ([]models.ClassScheduleDetail, error) {
	entries, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list schedules")
	}
	return entries, nil
}

func (s *ScheduleService) validateTimes(req ScheduleRequest) error {
	if !timeOfDayPattern.MatchString(req.StartTime) || !timeOfDayPattern.MatchString(req.EndTime) {
		return appErrors.Clone(appErrors.ErrValidation, "times must use the HH:MM 24-hour format")
	}
	if req.EndTime <= req.StartTime {
		return appErrors.Clone(appErrors.ErrValidation, "end_time must be after start_time")
	}
	return nil
}

// Create adds a timetable entry.
func (s *ScheduleService) Create(ctx context.Context, req ScheduleRequest) (*models.ClassSchedule, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule payload")
	}
	if err := s.validateTimes(req); err != nil {
		return nil, err
	}
	entry := &models.ClassSchedule{
		Weekday:   req.Weekday,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Notes:     req.Notes,
	}
	if req.CategoryID != "" {
		entry.CategoryID = &req.CategoryID
	}
	if req.InstructorID != "" {
		entry.InstructorID = &req.InstructorID
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create schedule")
	}
	return entry, nil
}

// Update modifies a timetable entry.
func (s *ScheduleService) Update(ctx context.Context, id string, req ScheduleRequest) (*models.ClassSchedule, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule payload")
	}
	if err := s.validateTimes(req); err != nil {
		return nil, err
	}
	entry, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "schedule not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule")
	}
	entry.Weekday = req.Weekday
	entry.StartTime = req.StartTime
	entry.EndTime = req.EndTime
	entry.Notes = req.Notes
	entry.CategoryID = nil
	entry.InstructorID = nil
	if req.CategoryID != "" {
		entry.CategoryID = &req.CategoryID
	}
	if req.InstructorID != "" {
		entry.InstructorID = &req.InstructorID
	}
	if err := s.repo.Update(ctx, entry); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update schedule")
	}
	return entry, nil
}

// Delete removes a timetable entry.
func (s *ScheduleService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "schedule not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete schedule")
	}
	return nil
}
