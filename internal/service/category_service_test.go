package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dojokai/dojo-api/internal/models"
	appErrors "github.com/dojokai/dojo-api/pkg/errors"
)

type mockCategoryRepo struct {
	categories map[string]models.AgeCategory
	created    []models.AgeCategory
	deleted    []string
}

func (m *mockCategoryRepo) ListAll(ctx context.Context) ([]models.AgeCategory, error) {
	all := make([]models.AgeCategory, 0, len(m.categories))
	for _, c := range m.categories {
		all = append(all, c)
	}
	return all, nil
}

func (m *mockCategoryRepo) FindByID(ctx context.Context, id string) (*models.AgeCategory, error) {
	if c, ok := m.categories[id]; ok {
		return &c, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockCategoryRepo) Create(ctx context.Context, category *models.AgeCategory) error {
	category.ID = "cat-new"
	if m.categories == nil {
		m.categories = make(map[string]models.AgeCategory)
	}
	m.categories[category.ID] = *category
	m.created = append(m.created, *category)
	return nil
}

func (m *mockCategoryRepo) Update(ctx context.Context, category *models.AgeCategory) error {
	m.categories[category.ID] = *category
	return nil
}

func (m *mockCategoryRepo) Delete(ctx context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	return nil
}

func existingBrackets() map[string]models.AgeCategory {
	return map[string]models.AgeCategory{
		"cat-1": {ID: "cat-1", Name: "Infantil", MinAge: intPtr(10), MaxAge: intPtr(11)},
	}
}

func TestCategoryServiceCreateRejectsInvertedRange(t *testing.T) {
	svc := NewCategoryService(&mockCategoryRepo{}, defaultBilling(), nil, nil)

	_, _, err := svc.Create(context.Background(), CategoryRequest{
		Name:   "Cadete",
		MinAge: intPtr(13),
		MaxAge: intPtr(12),
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestCategoryServiceCreateFlagsOverlap(t *testing.T) {
	repo := &mockCategoryRepo{categories: existingBrackets()}
	svc := NewCategoryService(repo, defaultBilling(), nil, nil)

	category, notice, err := svc.Create(context.Background(), CategoryRequest{
		Name:   "Cadete",
		MinAge: intPtr(11),
		MaxAge: intPtr(13),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, category.ID)
	assert.Contains(t, notice, "Infantil")
}

func TestCategoryServiceCreateDisjointRangeNoNotice(t *testing.T) {
	repo := &mockCategoryRepo{categories: existingBrackets()}
	svc := NewCategoryService(repo, defaultBilling(), nil, nil)

	_, notice, err := svc.Create(context.Background(), CategoryRequest{
		Name:   "Cadete",
		MinAge: intPtr(12),
		MaxAge: intPtr(13),
	})
	require.NoError(t, err)
	assert.Empty(t, notice)
}

func TestCategoryServiceUpdateExcludesSelfFromOverlap(t *testing.T) {
	repo := &mockCategoryRepo{categories: existingBrackets()}
	svc := NewCategoryService(repo, defaultBilling(), nil, nil)

	updated, notice, err := svc.Update(context.Background(), "cat-1", CategoryRequest{
		Name:   "Infantil",
		MinAge: intPtr(10),
		MaxAge: intPtr(12),
	})
	require.NoError(t, err)
	assert.Empty(t, notice)
	assert.Equal(t, 12, *updated.MaxAge)
}

func TestCategoryServicePriceForFallsBackToBasePrice(t *testing.T) {
	price := 28.0
	repo := &mockCategoryRepo{categories: map[string]models.AgeCategory{
		"cat-priced": {ID: "cat-priced", Name: "Junior", MonthlyPrice: &price},
		"cat-bare":   {ID: "cat-bare", Name: "Senior"},
	}}
	svc := NewCategoryService(repo, defaultBilling(), nil, nil)

	got, err := svc.PriceFor(context.Background(), "cat-priced")
	require.NoError(t, err)
	assert.Equal(t, 28.0, got)

	got, err = svc.PriceFor(context.Background(), "cat-bare")
	require.NoError(t, err)
	assert.Equal(t, 30.0, got)
}

func TestCategoryServiceDeleteMissing(t *testing.T) {
	svc := NewCategoryService(&mockCategoryRepo{}, defaultBilling(), nil, nil)

	err := svc.Delete(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
