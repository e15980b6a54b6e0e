package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dojokai/dojo-api/internal/models"
	appErrors "github.com/dojokai/dojo-api/pkg/errors"
)

type mockEvaluationRepo struct {
	evaluations map[string]models.EvaluationDetail
	created     []models.Evaluation
	rosters     map[string][]string
	deleted     []string
}

func (m *mockEvaluationRepo) List(ctx context.Context) ([]models.EvaluationDetail, error) {
	details := make([]models.EvaluationDetail, 0, len(m.evaluations))
	for _, e := range m.evaluations {
		details = append(details, e)
	}
	return details, nil
}

func (m *mockEvaluationRepo) FindByID(ctx context.Context, id string) (*models.EvaluationDetail, error) {
	if e, ok := m.evaluations[id]; ok {
		return &e, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockEvaluationRepo) CreateWithStudents(ctx context.Context, evaluation *models.Evaluation, studentIDs []string) error {
	evaluation.ID = "eval-new"
	m.created = append(m.created, *evaluation)
	if m.rosters == nil {
		m.rosters = make(map[string][]string)
	}
	m.rosters[evaluation.ID] = studentIDs
	return nil
}

func (m *mockEvaluationRepo) Delete(ctx context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	return nil
}

type mockRosterReader struct {
	roster []models.StudentDetail
}

func (m *mockRosterReader) ListActive(ctx context.Context) ([]models.StudentDetail, error) {
	return m.roster, nil
}

func newEvaluationServiceForTest(repo *mockEvaluationRepo, roster []models.StudentDetail) *EvaluationService {
	return NewEvaluationService(repo, &mockRosterReader{roster: roster}, nil, nil)
}

func TestEvaluationServiceEligibleFiltersByOriginBelt(t *testing.T) {
	roster := []models.StudentDetail{
		rosterStudent("ana", "Amarilla", true),
		rosterStudent("luis", "Verde", true),
	}
	svc := newEvaluationServiceForTest(&mockEvaluationRepo{}, roster)

	preview, err := svc.Eligible(context.Background(), "amarillo-naranja")
	require.NoError(t, err)
	assert.Equal(t, "amarillo-naranja", preview.Exam.ID)
	require.Len(t, preview.Students, 1)
	assert.Equal(t, "ana", preview.Students[0].ID)
}

func TestEvaluationServiceEligibleUnknownExam(t *testing.T) {
	svc := newEvaluationServiceForTest(&mockEvaluationRepo{}, nil)

	_, err := svc.Eligible(context.Background(), "negro-dan")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestEvaluationServiceCreateSchedulesRoster(t *testing.T) {
	repo := &mockEvaluationRepo{}
	roster := []models.StudentDetail{
		rosterStudent("ana", "Blanca", true),
		rosterStudent("luis", "Blanco", true),
	}
	svc := newEvaluationServiceForTest(repo, roster)

	evaluation, err := svc.Create(context.Background(), CreateEvaluationRequest{
		Name:       "Examen de cinta amarilla",
		ExamID:     "blanco-amarillo",
		Date:       time.Now().AddDate(0, 0, 14),
		Time:       "16:00",
		StudentIDs: []string{"ana", "luis"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"ana", "luis"}, repo.rosters[evaluation.ID])
}

func TestEvaluationServiceCreateRequiresStudents(t *testing.T) {
	svc := newEvaluationServiceForTest(&mockEvaluationRepo{}, nil)

	_, err := svc.Create(context.Background(), CreateEvaluationRequest{
		Name:   "Examen vacío",
		ExamID: "blanco-amarillo",
		Date:   time.Now(),
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNoStudentsSelected.Code, appErrors.FromError(err).Code)
}

func TestEvaluationServiceCreateRejectsIneligibleStudent(t *testing.T) {
	repo := &mockEvaluationRepo{}
	roster := []models.StudentDetail{
		rosterStudent("ana", "Blanca", true),
		rosterStudent("luis", "Verde", true),
	}
	svc := newEvaluationServiceForTest(repo, roster)

	_, err := svc.Create(context.Background(), CreateEvaluationRequest{
		Name:       "Examen de cinta amarilla",
		ExamID:     "blanco-amarillo",
		Date:       time.Now(),
		StudentIDs: []string{"ana", "luis"},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.created)
}

func TestEvaluationServiceDelete(t *testing.T) {
	repo := &mockEvaluationRepo{evaluations: map[string]models.EvaluationDetail{
		"e1": {Evaluation: models.Evaluation{ID: "e1"}},
	}}
	svc := newEvaluationServiceForTest(repo, nil)

	require.NoError(t, svc.Delete(context.Background(), "e1"))
	assert.Contains(t, repo.deleted, "e1")

	err := svc.Delete(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
