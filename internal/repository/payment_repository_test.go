package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dojokai/dojo-api/internal/models"
	appErrors "github.com/dojokai/dojo-api/pkg/errors"
)

func newPaymentMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestPaymentRepositoryHistoryForStudent(t *testing.T) {
	db, mock, cleanup := newPaymentMock(t)
	defer cleanup()
	repo := NewPaymentRepository(db)

	rows := sqlmock.NewRows([]string{"id", "student_id", "amount", "currency", "method", "reference", "origin_bank", "payer_document_id", "payer_phone", "payment_date", "status", "month", "year", "advance", "observations", "created_by", "created_at"}).
		AddRow("p1", "s1", 30.0, "USD", "transferencia", "REF1", "Banesco", "V-12345678", "0412-1234567", time.Now(), "confirmado", 3, 2024, false, "", nil, time.Now())
	mock.ExpectQuery("SELECT (.+) FROM payments WHERE student_id = \\$1").
		WithArgs("s1").
		WillReturnRows(rows)

	history, err := repo.HistoryForStudent(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, models.PaymentStatusConfirmed, history[0].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newPaymentMock(t)
	defer cleanup()
	repo := NewPaymentRepository(db)

	mock.ExpectExec("INSERT INTO payments").
		WillReturnResult(sqlmock.NewResult(1, 1))

	payment := &models.Payment{
		StudentID:   "s1",
		Amount:      45,
		Currency:    "USD",
		Method:      models.PaymentMethodTransfer,
		Reference:   "REF100",
		PaymentDate: time.Now(),
		Status:      models.PaymentStatusConfirmed,
		Month:       3,
		Year:        2024,
	}
	require.NoError(t, repo.Create(context.Background(), payment))
	assert.NotEmpty(t, payment.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepositoryCreateDuplicateMapsConflict(t *testing.T) {
	db, mock, cleanup := newPaymentMock(t)
	defer cleanup()
	repo := NewPaymentRepository(db)

	mock.ExpectExec("INSERT INTO payments").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "payments_student_month_year_key"})

	err := repo.Create(context.Background(), &models.Payment{StudentID: "s1", Month: 3, Year: 2024, Status: models.PaymentStatusConfirmed})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPaymentExists.Code, appErrors.FromError(err).Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepositoryUpdateStatus(t *testing.T) {
	db, mock, cleanup := newPaymentMock(t)
	defer cleanup()
	repo := NewPaymentRepository(db)

	mock.ExpectExec("UPDATE payments SET status").
		WithArgs("p1", models.PaymentStatusRejected).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateStatus(context.Background(), "p1", models.PaymentStatusRejected))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepositoryMonthlyCollection(t *testing.T) {
	db, mock, cleanup := newPaymentMock(t)
	defer cleanup()
	repo := NewPaymentRepository(db)

	rows := sqlmock.NewRows([]string{"id", "student_id", "amount", "currency", "method", "reference", "origin_bank", "payer_document_id", "payer_phone", "payment_date", "status", "month", "year", "advance", "observations", "created_by", "created_at", "student_name", "student_document_id"}).
		AddRow("p1", "s1", 30.0, "USD", "zelle", "REF2", "", "V-12345678", "", time.Now(), "confirmado", 4, 2024, true, "", nil, time.Now(), "Ana Pérez", "V-12345678")
	mock.ExpectQuery("SELECT (.+) FROM payments p LEFT JOIN students s").
		WithArgs(4, 2024, models.PaymentStatusConfirmed).
		WillReturnRows(rows)

	payments, err := repo.MonthlyCollection(context.Background(), 4, 2024)
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, "Ana Pérez", *payments[0].StudentName)
	assert.NoError(t, mock.ExpectationsWereMet())
}
