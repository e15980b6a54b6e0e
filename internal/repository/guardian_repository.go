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

// GuardianRepository manages persistence for guardian (representante)
// records.
type GuardianRepository struct {
	db *sqlx.DB
}

// NewGuardianRepository constructs a GuardianRepository.
func NewGuardianRepository(db *sqlx.DB) *GuardianRepository {
	return &GuardianRepository{db: db}
}

// List returns guardians with their linked-student counts.
func (r *GuardianRepository) List(ctx context.Context, filter models.GuardianFilter) ([]models.GuardianDetail, int, error) {
	base := `FROM guardians g LEFT JOIN students s ON s.guardian_id = g.id AND s.deleted = false`
	conditions := []string{"1=1"}
	var args []interface{}

	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(g.full_name) LIKE $%d OR LOWER(g.document_id) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	base = fmt.Sprintf("%s WHERE %s", base, strings.Join(conditions, " AND "))

	allowedSorts := map[string]string{
		"full_name":   "g.full_name",
		"document_id": "g.document_id",
		"created_at":  "g.created_at",
	}
	column, ok := allowedSorts[filter.SortBy]
	if !ok {
		column = "g.created_at"
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

	query := fmt.Sprintf(`SELECT g.id, g.document_id, g.full_name, g.email, g.phone, g.address, g.created_at, g.updated_at,
        COUNT(s.id) AS student_count
        %s GROUP BY g.id ORDER BY %s %s LIMIT %d OFFSET %d`, base, column, order, size, offset)

	var guardians []models.GuardianDetail
	if err := r.db.SelectContext(ctx, &guardians, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list guardians: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(DISTINCT g.id) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count guardians: %w", err)
	}
	return guardians, total, nil
}

// FindByID fetches a guardian by ID.
func (r *GuardianRepository) FindByID(ctx context.Context, id string) (*models.Guardian, error) {
	const query = `SELECT id, document_id, full_name, email, phone, address, created_at, updated_at FROM guardians WHERE id = $1`
	var guardian models.Guardian
	if err := r.db.GetContext(ctx, &guardian, query, id); err != nil {
		return nil, err
	}
	return &guardian, nil
}

// FindByDocument fetches a guardian by national ID, used to reuse an
// existing guardian during student enrollment.
func (r *GuardianRepository) FindByDocument(ctx context.Context, documentID string) (*models.Guardian, error) {
	const query = `SELECT id, document_id, full_name, email, phone, address, created_at, updated_at FROM guardians WHERE document_id = $1 LIMIT 1`
	var guardian models.Guardian
	if err := r.db.GetContext(ctx, &guardian, query, documentID); err != nil {
		return nil, err
	}
	return &guardian, nil
}

// ExistsByDocument checks whether a guardian with the national ID exists,
// optionally excluding an ID.
func (r *GuardianRepository) ExistsByDocument(ctx context.Context, documentID string, excludeID string) (bool, error) {
	query := "SELECT 1 FROM guardians WHERE document_id = $1"
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
		return false, fmt.Errorf("check guardian document: %w", err)
	}
	return true, nil
}

// Create inserts a new guardian record.
func (r *GuardianRepository) Create(ctx context.Context, guardian *models.Guardian) error {
	if guardian.ID == "" {
		guardian.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if guardian.CreatedAt.IsZero() {
		guardian.CreatedAt = now
	}
	guardian.UpdatedAt = now
	const query = `INSERT INTO guardians (id, document_id, full_name, email, phone, address, created_at, updated_at)
        VALUES (:id, :document_id, :full_name, :email, :phone, :address, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, guardian); err != nil {
		return fmt.Errorf("create guardian: %w", err)
	}
	return nil
}

// Update modifies an existing guardian.
func (r *GuardianRepository) Update(ctx context.Context, guardian *models.Guardian) error {
	guardian.UpdatedAt = time.Now().UTC()
	const query = `UPDATE guardians SET document_id = :document_id, full_name = :full_name, email = :email, phone = :phone, address = :address, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, guardian); err != nil {
		return fmt.Errorf("update guardian: %w", err)
	}
	return nil
}

// Delete removes a guardian. Students referencing it keep a NULL guardian
// via the FK ON DELETE SET NULL.
func (r *GuardianRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM guardians WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete guardian: %w", err)
	}
	return nil
}
