package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dojokai/dojo-api/internal/models"
)

var studentRows = []string{
	"id", "document_id", "full_name", "birth_date", "email", "phone", "address",
	"category_id", "belt_id", "guardian_id", "active", "deleted", "enrolled_at", "created_at", "updated_at",
	"category_name", "belt_name", "belt_color", "belt_rank", "guardian_name",
}

func newStudentMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestStudentRepositoryList(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(studentRows).
		AddRow("s1", "V-12345678", "Ana Pérez", now.AddDate(-12, 0, 0), "", "0412-1234567", "", nil, nil, nil, true, false, now, now, now, nil, nil, nil, nil, nil)
	mock.ExpectQuery("SELECT (.+) FROM students s").
		WithArgs("%ana%").
		WillReturnRows(rows)
	mock.ExpectQuery("SELECT COUNT\\(s.id\\) FROM students s").
		WithArgs("%ana%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	students, total, err := repo.List(context.Background(), models.StudentFilter{Search: "Ana"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, students, 1)
	assert.Equal(t, "Ana Pérez", students[0].FullName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryListActive(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	now := time.Now()
	belt := "Amarillo"
	rows := sqlmock.NewRows(studentRows).
		AddRow("s1", "V-11111111", "Luis Rivas", now.AddDate(-10, 0, 0), "", "", "", nil, "b2", nil, true, false, now, now, now, nil, belt, "#FFD700", 2, nil)
	mock.ExpectQuery("SELECT (.+) WHERE s.deleted = false AND s.active = true").
		WillReturnRows(rows)

	students, err := repo.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, students, 1)
	require.NotNil(t, students[0].BeltName)
	assert.Equal(t, "Amarillo", *students[0].BeltName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryExistsByDocument(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery("SELECT 1 FROM students WHERE document_id").
		WithArgs("V-12345678").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

	exists, err := repo.ExistsByDocument(context.Background(), "V-12345678", "")
	require.NoError(t, err)
	assert.True(t, exists)

	mock.ExpectQuery("SELECT 1 FROM students WHERE document_id").
		WithArgs("V-99999999").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}))

	exists, err = repo.ExistsByDocument(context.Background(), "V-99999999", "")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectExec("INSERT INTO students").
		WillReturnResult(sqlmock.NewResult(1, 1))

	student := &models.Student{
		DocumentID: "V-12345678",
		FullName:   "Ana Pérez",
		BirthDate:  time.Date(2012, 3, 10, 0, 0, 0, 0, time.UTC),
		Active:     true,
	}
	require.NoError(t, repo.Create(context.Background(), student))
	assert.NotEmpty(t, student.ID)
	assert.False(t, student.EnrolledAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositorySoftDelete(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectExec("UPDATE students SET deleted = true").
		WithArgs("s1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.SoftDelete(context.Background(), "s1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
