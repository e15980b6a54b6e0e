package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dojokai/dojo-api/internal/models"
	appErrors "github.com/dojokai/dojo-api/pkg/errors"
)

type mockStudentRepo struct {
	students    map[string]models.Student
	byDocument  map[string]string
	deactivated []string
	deleted     []string
	listTotal   int
	err         error
}

func (m *mockStudentRepo) List(ctx context.Context, filter models.StudentFilter) ([]models.StudentDetail, int, error) {
	if m.err != nil {
		return nil, 0, m.err
	}
	details := make([]models.StudentDetail, 0, len(m.students))
	for _, s := range m.students {
		details = append(details, models.StudentDetail{Student: s})
	}
	return details, m.listTotal, nil
}

func (m *mockStudentRepo) FindByID(ctx context.Context, id string) (*models.StudentDetail, error) {
	if s, ok := m.students[id]; ok {
		detail := models.StudentDetail{Student: s}
		return &detail, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockStudentRepo) ExistsByDocument(ctx context.Context, documentID string, excludeID string) (bool, error) {
	if id, ok := m.byDocument[documentID]; ok {
		if excludeID == "" || id != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockStudentRepo) Create(ctx context.Context, student *models.Student) error {
	if m.students == nil {
		m.students = make(map[string]models.Student)
	}
	if student.ID == "" {
		student.ID = "generated"
	}
	m.students[student.ID] = *student
	return nil
}

func (m *mockStudentRepo) Update(ctx context.Context, student *models.Student) error {
	m.students[student.ID] = *student
	return nil
}

func (m *mockStudentRepo) Deactivate(ctx context.Context, id string) error {
	m.deactivated = append(m.deactivated, id)
	return nil
}

func (m *mockStudentRepo) SoftDelete(ctx context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	return nil
}

type mockCategoryReader struct {
	categories []models.AgeCategory
}

func (m *mockCategoryReader) ListAll(ctx context.Context) ([]models.AgeCategory, error) {
	return m.categories, nil
}

type mockBeltReader struct {
	belts []models.Belt
}

func (m *mockBeltReader) ListAll(ctx context.Context) ([]models.Belt, error) {
	return m.belts, nil
}

func (m *mockBeltReader) FindByID(ctx context.Context, id string) (*models.Belt, error) {
	for i := range m.belts {
		if m.belts[i].ID == id {
			return &m.belts[i], nil
		}
	}
	return nil, sql.ErrNoRows
}

type mockGuardianReader struct {
	guardians map[string]models.Guardian
}

func (m *mockGuardianReader) FindByID(ctx context.Context, id string) (*models.Guardian, error) {
	if g, ok := m.guardians[id]; ok {
		return &g, nil
	}
	return nil, sql.ErrNoRows
}

type mockBillingReader struct {
	settings models.BillingSettings
	err      error
}

func (m *mockBillingReader) GetBilling(ctx context.Context) (*models.BillingSettings, error) {
	if m.err != nil {
		return nil, m.err
	}
	settings := m.settings
	return &settings, nil
}

func defaultBilling() *mockBillingReader {
	return &mockBillingReader{settings: models.BillingSettings{
		Currency:        models.CurrencyUSD,
		BasePrice:       30,
		RegistrationFee: 15,
		ExchangeRate:    36.5,
		CountryMode:     models.CountryModeVenezuela,
	}}
}

func testBelts() []models.Belt {
	belts := make([]models.Belt, 0, len(models.CanonicalBelts))
	for i, b := range models.CanonicalBelts {
		belt := b
		belt.ID = "belt-" + string(rune('a'+i))
		belts = append(belts, belt)
	}
	return belts
}

func newStudentServiceForTest(repo *mockStudentRepo) (*StudentService, *mockGuardianReader) {
	guardians := &mockGuardianReader{guardians: map[string]models.Guardian{
		"g1": {ID: "g1", FullName: "María González"},
	}}
	minAge, maxAge := 10, 11
	categories := &mockCategoryReader{categories: []models.AgeCategory{
		{ID: "cat-infantil", Name: "Infantil", MinAge: &minAge, MaxAge: &maxAge},
	}}
	svc := NewStudentService(repo, categories, &mockBeltReader{belts: testBelts()}, guardians, defaultBilling(), validator.New(), zap.NewNop())
	return svc, guardians
}

func TestStudentServiceCreateMinorResolvesCategoryAndBelt(t *testing.T) {
	repo := &mockStudentRepo{byDocument: make(map[string]string)}
	svc, _ := newStudentServiceForTest(repo)

	birth := time.Now().AddDate(-10, -1, 0)
	student, err := svc.Create(context.Background(), CreateStudentRequest{
		DocumentID: "V-31254896",
		FullName:   "Valentina Rodríguez",
		BirthDate:  birth,
		Phone:      "0412-1234567",
		GuardianID: "g1",
	})
	require.NoError(t, err)
	assert.True(t, student.Active)
	require.NotNil(t, student.CategoryID)
	assert.Equal(t, "cat-infantil", *student.CategoryID)
	require.NotNil(t, student.BeltID)
	assert.Equal(t, "belt-a", *student.BeltID)
}

func TestStudentServiceCreateMinorRequiresGuardian(t *testing.T) {
	repo := &mockStudentRepo{byDocument: make(map[string]string)}
	svc, _ := newStudentServiceForTest(repo)

	_, err := svc.Create(context.Background(), CreateStudentRequest{
		DocumentID: "V-31254896",
		FullName:   "Valentina Rodríguez",
		BirthDate:  time.Now().AddDate(-10, 0, 0),
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestStudentServiceCreateAdultWithoutGuardian(t *testing.T) {
	repo := &mockStudentRepo{byDocument: make(map[string]string)}
	svc, _ := newStudentServiceForTest(repo)

	student, err := svc.Create(context.Background(), CreateStudentRequest{
		DocumentID: "V-12903478",
		FullName:   "Andrés Mendoza",
		BirthDate:  time.Now().AddDate(-30, 0, 0),
	})
	require.NoError(t, err)
	assert.Nil(t, student.GuardianID)
}

func TestStudentServiceCreateRejectsInvalidDocument(t *testing.T) {
	repo := &mockStudentRepo{byDocument: make(map[string]string)}
	svc, _ := newStudentServiceForTest(repo)

	_, err := svc.Create(context.Background(), CreateStudentRequest{
		DocumentID: "12-34",
		FullName:   "Andrés Mendoza",
		BirthDate:  time.Now().AddDate(-30, 0, 0),
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestStudentServiceCreateDuplicateDocument(t *testing.T) {
	repo := &mockStudentRepo{byDocument: map[string]string{"V-12903478": "other"}}
	svc, _ := newStudentServiceForTest(repo)

	_, err := svc.Create(context.Background(), CreateStudentRequest{
		DocumentID: "V-12903478",
		FullName:   "Andrés Mendoza",
		BirthDate:  time.Now().AddDate(-30, 0, 0),
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestStudentServiceCreateRejectsBeltAboveCeiling(t *testing.T) {
	repo := &mockStudentRepo{byDocument: make(map[string]string)}
	svc, _ := newStudentServiceForTest(repo)

	// Benjamin bracket caps at rank 4, belt-e is Azul (rank 5).
	_, err := svc.Create(context.Background(), CreateStudentRequest{
		DocumentID: "V-33012456",
		FullName:   "Sofía González",
		BirthDate:  time.Now().AddDate(-6, 0, 0),
		GuardianID: "g1",
		BeltID:     "belt-e",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestStudentServiceUpdateReassignsCategory(t *testing.T) {
	catID := "cat-old"
	repo := &mockStudentRepo{
		byDocument: make(map[string]string),
		students: map[string]models.Student{
			"s1": {ID: "s1", DocumentID: "V-31254896", FullName: "Diego", BirthDate: time.Now().AddDate(-12, -1, 0), CategoryID: &catID, Active: true},
		},
	}
	minOld, maxOld := 10, 11
	minNew, maxNew := 12, 13
	categories := &mockCategoryReader{categories: []models.AgeCategory{
		{ID: "cat-old", Name: "Infantil", MinAge: &minOld, MaxAge: &maxOld},
		{ID: "cat-new", Name: "Cadete", MinAge: &minNew, MaxAge: &maxNew},
	}}
	guardians := &mockGuardianReader{guardians: map[string]models.Guardian{"g1": {ID: "g1"}}}
	svc := NewStudentService(repo, categories, &mockBeltReader{belts: testBelts()}, guardians, defaultBilling(), validator.New(), zap.NewNop())

	updated, notice, err := svc.Update(context.Background(), "s1", UpdateStudentRequest{
		DocumentID: "V-31254896",
		FullName:   "Diego Rodríguez",
		BirthDate:  time.Now().AddDate(-12, -1, 0),
		CategoryID: "cat-old",
		GuardianID: "g1",
		Active:     true,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, notice)
	require.NotNil(t, updated.CategoryID)
	assert.Equal(t, "cat-new", *updated.CategoryID)
}

func TestStudentServiceUpdateClearsCategoryWhenNoneFits(t *testing.T) {
	catID := "cat-mini"
	repo := &mockStudentRepo{
		byDocument: make(map[string]string),
		students: map[string]models.Student{
			"s1": {ID: "s1", DocumentID: "V-12903478", FullName: "Andrés", BirthDate: time.Now().AddDate(-30, 0, 0), CategoryID: &catID, Active: true},
		},
	}
	minMini, maxMini := 5, 6
	categories := &mockCategoryReader{categories: []models.AgeCategory{
		{ID: "cat-mini", Name: "Mini", MinAge: &minMini, MaxAge: &maxMini},
	}}
	svc := NewStudentService(repo, categories, &mockBeltReader{belts: testBelts()}, &mockGuardianReader{}, defaultBilling(), validator.New(), zap.NewNop())

	updated, notice, err := svc.Update(context.Background(), "s1", UpdateStudentRequest{
		DocumentID: "V-12903478",
		FullName:   "Andrés Mendoza",
		BirthDate:  time.Now().AddDate(-30, 0, 0),
		CategoryID: "cat-mini",
		Active:     true,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, notice)
	assert.Nil(t, updated.CategoryID)
}

func TestStudentServiceGetDerivesAge(t *testing.T) {
	repo := &mockStudentRepo{students: map[string]models.Student{
		"s1": {ID: "s1", FullName: "Luisa", BirthDate: time.Now().AddDate(-40, 0, -1), Active: true},
	}}
	svc, _ := newStudentServiceForTest(repo)

	profile, err := svc.Get(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, 40, profile.Age)
	assert.Equal(t, "Veterano", profile.DisplayCategory)
}

func TestStudentServiceDeleteSoft(t *testing.T) {
	repo := &mockStudentRepo{students: map[string]models.Student{"s1": {ID: "s1", Active: true}}}
	svc, _ := newStudentServiceForTest(repo)

	require.NoError(t, svc.Delete(context.Background(), "s1"))
	assert.Contains(t, repo.deleted, "s1")
}
