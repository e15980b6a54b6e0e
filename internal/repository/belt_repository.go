package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/dojokai/dojo-api/internal/models"
)

// BeltRepository manages belt (cinta) records.
type BeltRepository struct {
	db *sqlx.DB
}

// NewBeltRepository constructs a BeltRepository.
func NewBeltRepository(db *sqlx.DB) *BeltRepository {
	return &BeltRepository{db: db}
}

// ListAll returns every belt ordered by rank.
func (r *BeltRepository) ListAll(ctx context.Context) ([]models.Belt, error) {
	const query = `SELECT id, name, color, rank FROM belts ORDER BY rank ASC`
	var belts []models.Belt
	if err := r.db.SelectContext(ctx, &belts, query); err != nil {
		return nil, fmt.Errorf("list belts: %w", err)
	}
	return belts, nil
}

// FindByID fetches a belt.
func (r *BeltRepository) FindByID(ctx context.Context, id string) (*models.Belt, error) {
	const query = `SELECT id, name, color, rank FROM belts WHERE id = $1`
	var belt models.Belt
	if err := r.db.GetContext(ctx, &belt, query, id); err != nil {
		return nil, err
	}
	return &belt, nil
}

// FindByRank fetches the belt occupying a rank, used for the default rank-1
// assignment on enrollment.
func (r *BeltRepository) FindByRank(ctx context.Context, rank int) (*models.Belt, error) {
	const query = `SELECT id, name, color, rank FROM belts WHERE rank = $1 LIMIT 1`
	var belt models.Belt
	if err := r.db.GetContext(ctx, &belt, query, rank); err != nil {
		return nil, err
	}
	return &belt, nil
}

// Create inserts a belt.
func (r *BeltRepository) Create(ctx context.Context, belt *models.Belt) error {
	if belt.ID == "" {
		belt.ID = uuid.NewString()
	}
	const query = `INSERT INTO belts (id, name, color, rank) VALUES (:id, :name, :color, :rank)`
	if _, err := r.db.NamedExecContext(ctx, query, belt); err != nil {
		return fmt.Errorf("create belt: %w", err)
	}
	return nil
}

// Update modifies a belt.
func (r *BeltRepository) Update(ctx context.Context, belt *models.Belt) error {
	const query = `UPDATE belts SET name = :name, color = :color, rank = :rank WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, belt); err != nil {
		return fmt.Errorf("update belt: %w", err)
	}
	return nil
}

// Delete removes a belt.
func (r *BeltRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM belts WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete belt: %w", err)
	}
	return nil
}

// SeedDefaults inserts the canonical belts when the table is empty.
func (r *BeltRepository) SeedDefaults(ctx context.Context) error {
	var count int
	if err := r.db.GetContext(ctx, &count, "SELECT COUNT(id) FROM belts"); err != nil {
		return fmt.Errorf("count belts: %w", err)
	}
	if count > 0 {
		return nil
	}
	for _, belt := range models.CanonicalBelts {
		belt.ID = uuid.NewString()
		if err := r.Create(ctx, &belt); err != nil {
			return err
		}
	}
	return nil
}
