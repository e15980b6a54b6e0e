package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dojokai/dojo-api/internal/models"
	appErrors "github.com/dojokai/dojo-api/pkg/errors"
)

type mockPaymentRepo struct {
	history    []models.Payment
	historyErr error
	payments   map[string]models.PaymentDetail
	count      int
	countErr   error
	created    []models.Payment
	statusSet  map[string]models.PaymentStatus
	collection []models.PaymentDetail
}

func (m *mockPaymentRepo) HistoryForStudent(ctx context.Context, studentID string) ([]models.Payment, error) {
	if m.historyErr != nil {
		return nil, m.historyErr
	}
	return m.history, nil
}

func (m *mockPaymentRepo) List(ctx context.Context, filter models.PaymentFilter) ([]models.PaymentDetail, int, error) {
	details := make([]models.PaymentDetail, 0, len(m.payments))
	for _, p := range m.payments {
		details = append(details, p)
	}
	return details, len(details), nil
}

func (m *mockPaymentRepo) FindByID(ctx context.Context, id string) (*models.PaymentDetail, error) {
	if p, ok := m.payments[id]; ok {
		return &p, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockPaymentRepo) CountForStudent(ctx context.Context, studentID string) (int, error) {
	if m.countErr != nil {
		return 0, m.countErr
	}
	return m.count, nil
}

func (m *mockPaymentRepo) Create(ctx context.Context, payment *models.Payment) error {
	payment.ID = "pay-new"
	payment.CreatedAt = time.Now()
	m.created = append(m.created, *payment)
	return nil
}

func (m *mockPaymentRepo) UpdateStatus(ctx context.Context, id string, status models.PaymentStatus) error {
	if m.statusSet == nil {
		m.statusSet = make(map[string]models.PaymentStatus)
	}
	m.statusSet[id] = status
	return nil
}

func (m *mockPaymentRepo) MonthlyCollection(ctx context.Context, month, year int) ([]models.PaymentDetail, error) {
	return m.collection, nil
}

type mockAuditWriter struct {
	entries []models.AuditLog
}

func (m *mockAuditWriter) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	m.entries = append(m.entries, *log)
	return nil
}

type mockPaymentCategoryReader struct {
	categories map[string]models.AgeCategory
}

func (m *mockPaymentCategoryReader) FindByID(ctx context.Context, id string) (*models.AgeCategory, error) {
	if c, ok := m.categories[id]; ok {
		return &c, nil
	}
	return nil, sql.ErrNoRows
}

// billingNoCutoff disables the discount and surcharge so the expected amount
// stays flat regardless of the day the tests run.
func billingNoCutoff() *mockBillingReader {
	return &mockBillingReader{settings: models.BillingSettings{
		Currency:        models.CurrencyUSD,
		BasePrice:       30,
		RegistrationFee: 15,
		ExchangeRate:    36.5,
		CutoffDay:       0,
		CountryMode:     models.CountryModeVenezuela,
	}}
}

func activeRosterReader() *mockStudentRepo {
	return &mockStudentRepo{students: map[string]models.Student{
		"s1": {ID: "s1", FullName: "Carlos Pérez", BirthDate: time.Now().AddDate(-25, 0, 0), Active: true},
	}}
}

func newPaymentServiceForTest(repo *mockPaymentRepo, students *mockStudentRepo) (*PaymentService, *mockAuditWriter) {
	audit := &mockAuditWriter{}
	svc := NewPaymentService(repo, students, &mockPaymentCategoryReader{}, billingNoCutoff(), audit, nil, nil)
	return svc, audit
}

func submitRequest(amount float64) SubmitPaymentRequest {
	return SubmitPaymentRequest{
		StudentID:   "s1",
		Amount:      amount,
		Currency:    models.CurrencyUSD,
		Method:      models.PaymentMethodTransfer,
		Reference:   "REF-001234",
		PaymentDate: time.Now(),
	}
}

func TestPaymentServiceSubmitCurrentMonth(t *testing.T) {
	repo := &mockPaymentRepo{count: 3}
	svc, audit := newPaymentServiceForTest(repo, activeRosterReader())

	payment, warning, err := svc.Submit(context.Background(), submitRequest(30), "admin-1")
	require.NoError(t, err)
	assert.Empty(t, warning)
	assert.Equal(t, models.PaymentStatusConfirmed, payment.Status)
	assert.Equal(t, int(time.Now().Month()), payment.Month)
	assert.Equal(t, time.Now().Year(), payment.Year)
	assert.False(t, payment.Advance)
	require.NotNil(t, payment.CreatedBy)
	assert.Equal(t, "admin-1", *payment.CreatedBy)
	require.Len(t, audit.entries, 1)
	assert.Equal(t, "payment", audit.entries[0].Resource)
}

func TestPaymentServiceSubmitFirstPaymentIncludesRegistration(t *testing.T) {
	repo := &mockPaymentRepo{count: 0}
	svc, _ := newPaymentServiceForTest(repo, activeRosterReader())

	_, _, err := svc.Submit(context.Background(), submitRequest(30), "admin-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	payment, _, err := svc.Submit(context.Background(), submitRequest(45), "admin-1")
	require.NoError(t, err)
	assert.Equal(t, 45.0, payment.Amount)
}

func TestPaymentServiceSubmitAdvanceAfterConfirmedMonth(t *testing.T) {
	now := time.Now()
	repo := &mockPaymentRepo{
		count:   2,
		history: []models.Payment{{Month: int(now.Month()), Year: now.Year(), Status: models.PaymentStatusConfirmed}},
	}
	svc, _ := newPaymentServiceForTest(repo, activeRosterReader())

	payment, _, err := svc.Submit(context.Background(), submitRequest(30), "admin-1")
	require.NoError(t, err)
	assert.True(t, payment.Advance)
	nextMonth, nextYear := int(now.Month())+1, now.Year()
	if nextMonth > 12 {
		nextMonth, nextYear = 1, nextYear+1
	}
	assert.Equal(t, nextMonth, payment.Month)
	assert.Equal(t, nextYear, payment.Year)
}

func TestPaymentServiceSubmitRejectsClaimedAdvance(t *testing.T) {
	repo := &mockPaymentRepo{count: 2}
	svc, _ := newPaymentServiceForTest(repo, activeRosterReader())

	next := time.Now().AddDate(0, 1, 0)
	req := submitRequest(30)
	req.Month = int(next.Month())
	req.Year = next.Year()

	_, _, err := svc.Submit(context.Background(), req, "admin-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrAdvanceNotEligible.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.created)
}

func TestPaymentServiceSubmitRejectsStaleTransferDate(t *testing.T) {
	repo := &mockPaymentRepo{count: 2}
	svc, _ := newPaymentServiceForTest(repo, activeRosterReader())

	req := submitRequest(30)
	req.PaymentDate = time.Now().AddDate(0, 0, -5)

	_, _, err := svc.Submit(context.Background(), req, "admin-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrDateOutOfWindow.Code, appErrors.FromError(err).Code)
}

func TestPaymentServiceSubmitRejectsDateOlderThanMonth(t *testing.T) {
	repo := &mockPaymentRepo{count: 2}
	svc, _ := newPaymentServiceForTest(repo, activeRosterReader())

	req := submitRequest(30)
	req.PaymentDate = time.Now().AddDate(0, -1, -10)

	_, _, err := svc.Submit(context.Background(), req, "admin-1")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrDateOutOfWindow.Code, appErr.Code)
	assert.Contains(t, appErr.Message, "last month")
	assert.Empty(t, repo.created)
}

func TestPaymentServiceSubmitRejectsInactiveStudent(t *testing.T) {
	repo := &mockPaymentRepo{count: 2}
	students := &mockStudentRepo{students: map[string]models.Student{
		"s1": {ID: "s1", Active: false},
	}}
	svc, _ := newPaymentServiceForTest(repo, students)

	_, _, err := svc.Submit(context.Background(), submitRequest(30), "admin-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestPaymentServiceSubmitBolivarUsesExchangeRate(t *testing.T) {
	repo := &mockPaymentRepo{count: 2}
	svc, _ := newPaymentServiceForTest(repo, activeRosterReader())

	req := submitRequest(30 * 36.5)
	req.Currency = models.CurrencyBolivar

	payment, _, err := svc.Submit(context.Background(), req, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, models.CurrencyBolivar, payment.Currency)
	assert.Equal(t, 1095.0, payment.Amount)
}

func TestPaymentServicePreviewHistoryFailureDegrades(t *testing.T) {
	repo := &mockPaymentRepo{count: 2, historyErr: errors.New("connection reset")}
	svc, _ := newPaymentServiceForTest(repo, activeRosterReader())

	preview, err := svc.Preview(context.Background(), "s1")
	require.NoError(t, err)
	assert.NotEmpty(t, preview.Warning)
	assert.Equal(t, int(time.Now().Month()), preview.Target.Month)
	assert.False(t, preview.Target.Advance)
	assert.Equal(t, 30.0, preview.AmountDue)
}

func TestPaymentServicePreviewFirstPayment(t *testing.T) {
	repo := &mockPaymentRepo{count: 0}
	svc, _ := newPaymentServiceForTest(repo, activeRosterReader())

	preview, err := svc.Preview(context.Background(), "s1")
	require.NoError(t, err)
	assert.True(t, preview.FirstPayment)
	assert.Equal(t, 30.0, preview.Breakdown.Monthly)
	assert.Equal(t, 15.0, preview.Breakdown.Registration)
	assert.Equal(t, 45.0, preview.AmountDue)
}

func TestPaymentServiceUpdateStatusCorrection(t *testing.T) {
	repo := &mockPaymentRepo{payments: map[string]models.PaymentDetail{
		"p1": {Payment: models.Payment{ID: "p1", Status: models.PaymentStatusConfirmed}},
	}}
	svc, audit := newPaymentServiceForTest(repo, activeRosterReader())

	payment, err := svc.UpdateStatus(context.Background(), "p1", models.PaymentStatusRejected, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusRejected, payment.Status)
	assert.Equal(t, models.PaymentStatusRejected, repo.statusSet["p1"])
	require.Len(t, audit.entries, 1)
}

func TestPaymentServiceUpdateStatusNoOp(t *testing.T) {
	repo := &mockPaymentRepo{payments: map[string]models.PaymentDetail{
		"p1": {Payment: models.Payment{ID: "p1", Status: models.PaymentStatusConfirmed}},
	}}
	svc, audit := newPaymentServiceForTest(repo, activeRosterReader())

	_, err := svc.UpdateStatus(context.Background(), "p1", models.PaymentStatusConfirmed, "admin-1")
	require.NoError(t, err)
	assert.Empty(t, repo.statusSet)
	assert.Empty(t, audit.entries)
}

func TestPaymentServiceUpdateStatusUnknownValue(t *testing.T) {
	repo := &mockPaymentRepo{}
	svc, _ := newPaymentServiceForTest(repo, activeRosterReader())

	_, err := svc.UpdateStatus(context.Background(), "p1", models.PaymentStatus("anulado"), "admin-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestPaymentServiceMonthlyCollectionConvertsBolivars(t *testing.T) {
	repo := &mockPaymentRepo{collection: []models.PaymentDetail{
		{Payment: models.Payment{Amount: 30, Currency: models.CurrencyUSD}},
		{Payment: models.Payment{Amount: 1095, Currency: models.CurrencyBolivar}},
	}}
	svc, _ := newPaymentServiceForTest(repo, activeRosterReader())

	payments, total, err := svc.MonthlyCollection(context.Background(), 4, 2026)
	require.NoError(t, err)
	assert.Len(t, payments, 2)
	assert.Equal(t, 60.0, total)
}

func TestPaymentServiceMonthlyCollectionRejectsBadMonth(t *testing.T) {
	svc, _ := newPaymentServiceForTest(&mockPaymentRepo{}, activeRosterReader())

	_, _, err := svc.MonthlyCollection(context.Background(), 13, 2026)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
