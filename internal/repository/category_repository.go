package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/dojokai/dojo-api/internal/models"
)

// CategoryRepository manages age-category (categoría de edad) records.
type CategoryRepository struct {
	db *sqlx.DB
}

// NewCategoryRepository constructs a CategoryRepository.
func NewCategoryRepository(db *sqlx.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// ListAll returns every category ordered by lower bound.
func (r *CategoryRepository) ListAll(ctx context.Context) ([]models.AgeCategory, error) {
	const query = `SELECT id, name, min_age, max_age, monthly_price, created_at, updated_at FROM age_categories ORDER BY COALESCE(min_age, 0) ASC`
	var categories []models.AgeCategory
	if err := r.db.SelectContext(ctx, &categories, query); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

// FindByID fetches a category.
func (r *CategoryRepository) FindByID(ctx context.Context, id string) (*models.AgeCategory, error) {
	const query = `SELECT id, name, min_age, max_age, monthly_price, created_at, updated_at FROM age_categories WHERE id = $1`
	var category models.AgeCategory
	if err := r.db.GetContext(ctx, &category, query, id); err != nil {
		return nil, err
	}
	return &category, nil
}

// Create inserts a category.
func (r *CategoryRepository) Create(ctx context.Context, category *models.AgeCategory) error {
	if category.ID == "" {
		category.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if category.CreatedAt.IsZero() {
		category.CreatedAt = now
	}
	category.UpdatedAt = now
	const query = `INSERT INTO age_categories (id, name, min_age, max_age, monthly_price, created_at, updated_at)
        VALUES (:id, :name, :min_age, :max_age, :monthly_price, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, category); err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

// Update modifies a category. Price changes apply to future PriceFor calls
// only; historical payments are untouched.
func (r *CategoryRepository) Update(ctx context.Context, category *models.AgeCategory) error {
	category.UpdatedAt = time.Now().UTC()
	const query = `UPDATE age_categories SET name = :name, min_age = :min_age, max_age = :max_age, monthly_price = :monthly_price, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, category); err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	return nil
}

// Delete removes a category. Students referencing it keep a NULL category
// via the FK ON DELETE SET NULL.
func (r *CategoryRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM age_categories WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}
