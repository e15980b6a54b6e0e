package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/dojokai/dojo-api/internal/models"
)

const studentDetailColumns = `s.id, s.document_id, s.full_name, s.birth_date, s.email, s.phone, s.address,
        s.category_id, s.belt_id, s.guardian_id, s.active, s.deleted, s.enrolled_at, s.created_at, s.updated_at,
        c.name AS category_name, b.name AS belt_name, b.color AS belt_color, b.rank AS belt_rank, g.full_name AS guardian_name`

const studentDetailJoins = `FROM students s
        LEFT JOIN age_categories c ON c.id = s.category_id
        LEFT JOIN belts b ON b.id = s.belt_id
        LEFT JOIN guardians g ON g.id = s.guardian_id`

// StudentRepository manages persistence for student records.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// List returns students matching the provided filters.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.StudentDetail, int, error) {
	base := studentDetailJoins
	conditions := []string{"s.deleted = false"}
	var args []interface{}

	if filter.CategoryID != "" {
		conditions = append(conditions, fmt.Sprintf("s.category_id = $%d", len(args)+1))
		args = append(args, filter.CategoryID)
	}
	if filter.BeltID != "" {
		conditions = append(conditions, fmt.Sprintf("s.belt_id = $%d", len(args)+1))
		args = append(args, filter.BeltID)
	}
	if filter.GuardianID != "" {
		conditions = append(conditions, fmt.Sprintf("s.guardian_id = $%d", len(args)+1))
		args = append(args, filter.GuardianID)
	}
	if filter.Active != nil {
		conditions = append(conditions, fmt.Sprintf("s.active = $%d", len(args)+1))
		args = append(args, *filter.Active)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(s.full_name) LIKE $%d OR LOWER(s.document_id) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	base = fmt.Sprintf("%s WHERE %s", base, strings.Join(conditions, " AND "))

	allowedSorts := map[string]string{
		"full_name":   "s.full_name",
		"document_id": "s.document_id",
		"enrolled_at": "s.enrolled_at",
		"created_at":  "s.created_at",
	}
	column, ok := allowedSorts[filter.SortBy]
	if !ok {
		column = "s.created_at"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", studentDetailColumns, base, column, order, size, offset)

	var students []models.StudentDetail
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list students: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(s.id) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count students: %w", err)
	}
	return students, total, nil
}

// ListActive returns the full active roster with belt context, used by the
// exam eligibility filter.
func (r *StudentRepository) ListActive(ctx context.Context) ([]models.StudentDetail, error) {
	query := fmt.Sprintf("SELECT %s %s WHERE s.deleted = false AND s.active = true ORDER BY s.full_name ASC", studentDetailColumns, studentDetailJoins)
	var students []models.StudentDetail
	if err := r.db.SelectContext(ctx, &students, query); err != nil {
		return nil, fmt.Errorf("list active students: %w", err)
	}
	return students, nil
}

// FindByID fetches a student detail by ID.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.StudentDetail, error) {
	query := fmt.Sprintf("SELECT %s %s WHERE s.id = $1 AND s.deleted = false", studentDetailColumns, studentDetailJoins)
	var detail models.StudentDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, err
	}
	return &detail, nil
}

// ExistsByDocument checks whether a student with the national ID exists,
// optionally excluding an ID.
func (r *StudentRepository) ExistsByDocument(ctx context.Context, documentID string, excludeID string) (bool, error) {
	query := "SELECT 1 FROM students WHERE document_id = $1 AND deleted = false"
	args := []interface{}{documentID}
	if excludeID != "" {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check student document: %w", err)
	}
	return true, nil
}

// Create inserts a new student record.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if student.CreatedAt.IsZero() {
		student.CreatedAt = now
	}
	if student.EnrolledAt.IsZero() {
		student.EnrolledAt = now
	}
	student.UpdatedAt = now
	const query = `INSERT INTO students (id, document_id, full_name, birth_date, email, phone, address, category_id, belt_id, guardian_id, active, deleted, enrolled_at, created_at, updated_at)
        VALUES (:id, :document_id, :full_name, :birth_date, :email, :phone, :address, :category_id, :belt_id, :guardian_id, :active, :deleted, :enrolled_at, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// Update modifies an existing student.
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	student.UpdatedAt = time.Now().UTC()
	const query = `UPDATE students SET document_id = :document_id, full_name = :full_name, birth_date = :birth_date, email = :email, phone = :phone, address = :address,
        category_id = :category_id, belt_id = :belt_id, guardian_id = :guardian_id, active = :active, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("update student: %w", err)
	}
	return nil
}

// Deactivate marks a student inactive without removing history.
func (r *StudentRepository) Deactivate(ctx context.Context, id string) error {
	const query = `UPDATE students SET active = false, updated_at = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, time.Now().UTC()); err != nil {
		return fmt.Errorf("deactivate student: %w", err)
	}
	return nil
}

// SoftDelete flags the record deleted; payments and evaluations keep their
// references.
func (r *StudentRepository) SoftDelete(ctx context.Context, id string) error {
	const query = `UPDATE students SET deleted = true, active = false, updated_at = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, time.Now().UTC()); err != nil {
		return fmt.Errorf("delete student: %w", err)
	}
	return nil
}
