package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/dojokai/dojo-api/internal/models"
)

// EvaluationRepository manages exam events and their rosters.
type EvaluationRepository struct {
	db *sqlx.DB
}

// NewEvaluationRepository constructs an EvaluationRepository.
func NewEvaluationRepository(db *sqlx.DB) *EvaluationRepository {
	return &EvaluationRepository{db: db}
}

// List returns evaluations ordered by date, newest first.
func (r *EvaluationRepository) List(ctx context.Context) ([]models.EvaluationDetail, error) {
	const query = `SELECT e.id, e.name, e.exam_id, e.date, e.time, e.description, e.instructor_id, e.created_at,
        u.full_name AS instructor_name
        FROM evaluations e LEFT JOIN users u ON u.id = e.instructor_id
        ORDER BY e.date DESC, e.created_at DESC`
	var evaluations []models.EvaluationDetail
	if err := r.db.SelectContext(ctx, &evaluations, query); err != nil {
		return nil, fmt.Errorf("list evaluations: %w", err)
	}
	return evaluations, nil
}

// FindByID fetches an evaluation with its enrolled students.
func (r *EvaluationRepository) FindByID(ctx context.Context, id string) (*models.EvaluationDetail, error) {
	const query = `SELECT e.id, e.name, e.exam_id, e.date, e.time, e.description, e.instructor_id, e.created_at,
        u.full_name AS instructor_name
        FROM evaluations e LEFT JOIN users u ON u.id = e.instructor_id WHERE e.id = $1`
	var detail models.EvaluationDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, err
	}

	roster := fmt.Sprintf(`SELECT %s %s
        INNER JOIN evaluation_students es ON es.student_id = s.id
        WHERE es.evaluation_id = $1 ORDER BY s.full_name ASC`, studentDetailColumns, studentDetailJoins)
	if err := r.db.SelectContext(ctx, &detail.Students, roster, id); err != nil {
		return nil, fmt.Errorf("evaluation roster: %w", err)
	}
	return &detail, nil
}

// CreateWithStudents inserts the event and its full invitee roster in one
// transaction, so a half-created exam can never be observed.
func (r *EvaluationRepository) CreateWithStudents(ctx context.Context, evaluation *models.Evaluation, studentIDs []string) error {
	if evaluation.ID == "" {
		evaluation.ID = uuid.NewString()
	}
	if evaluation.CreatedAt.IsZero() {
		evaluation.CreatedAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin evaluation tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const insertEvent = `INSERT INTO evaluations (id, name, exam_id, date, time, description, instructor_id, created_at)
        VALUES (:id, :name, :exam_id, :date, :time, :description, :instructor_id, :created_at)`
	if _, err := tx.NamedExecContext(ctx, insertEvent, evaluation); err != nil {
		return fmt.Errorf("create evaluation: %w", err)
	}

	const insertStudent = `INSERT INTO evaluation_students (evaluation_id, student_id) VALUES ($1, $2)`
	for _, studentID := range studentIDs {
		if _, err := tx.ExecContext(ctx, insertStudent, evaluation.ID, studentID); err != nil {
			return fmt.Errorf("enroll student %s: %w", studentID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit evaluation tx: %w", err)
	}
	return nil
}

// Delete removes an evaluation and its roster rows (FK cascade).
func (r *EvaluationRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM evaluations WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete evaluation: %w", err)
	}
	return nil
}
