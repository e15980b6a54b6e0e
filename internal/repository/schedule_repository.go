package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/dojokai/dojo-api/internal/models"
)

// ScheduleRepository manages the weekly class timetable.
type ScheduleRepository struct {
	db *sqlx.DB
}

// NewScheduleRepository constructs a ScheduleRepository.
func NewScheduleRepository(db *sqlx.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

// List returns the timetable ordered by weekday and start time.
func (r *ScheduleRepository) List(ctx context.Context) ([]models.ClassScheduleDetail, error) {
	const query = `SELECT cs.id, cs.weekday, cs.start_time, cs.end_time, cs.category_id, cs.instructor_id, cs.notes, cs.created_at, cs.updated_at,
        c.name AS category_name, u.full_name AS instructor_name
        FROM class_schedules cs
        LEFT JOIN age_categories c ON c.id = cs.category_id
        LEFT JOIN users u ON u.id = cs.instructor_id
        ORDER BY cs.weekday ASC, cs.start_time ASC`
	var entries []models.ClassScheduleDetail
	if err := r.db.SelectContext(ctx, &entries, query); err != nil {
		return nil, fmt.Errorf("list schedules: %w", err)
	}
	return entries, nil
}

// FindByID fetches a timetable entry.
func (r *ScheduleRepository) FindByID(ctx context.Context, id string) (*models.ClassSchedule, error) {
	const query = `SELECT id, weekday, start_time, end_time, category_id, instructor_id, notes, created_at, updated_at FROM class_schedules WHERE id = $1`
	var entry models.ClassSchedule
	if err := r.db.GetContext(ctx, &entry, query, id); err != nil {
		return nil, err
	}
	return &entry, nil
}

// Create inserts a timetable entry.
func (r *ScheduleRepository) Create(ctx context.Context, entry *models.ClassSchedule) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = now
	}
	entry.UpdatedAt = now
	const query = `INSERT INTO class_schedules (id, weekday, start_time, end_time, category_id, instructor_id, notes, created_at, updated_at)
        VALUES (:id, :weekday, :start_time, :end_time, :category_id, :instructor_id, :notes, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("create schedule: %w", err)
	}
	return nil
}

// Update modifies a timetable entry.
func (r *ScheduleRepository) Update(ctx context.Context, entry *models.ClassSchedule) error {
	entry.UpdatedAt = time.Now().UTC()
	const query = `UPDATE class_schedules SET weekday = :weekday, start_time = :start_time, end_time = :end_time, category_id = :category_id, instructor_id = :instructor_id, notes = :notes, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("update schedule: %w", err)
	}
	return nil
}

// Delete removes a timetable entry.
func (r *ScheduleRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM class_schedules WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete schedule: %w", err)
	}
	return nil
}
