package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/dojokai/dojo-api/internal/models"
	appErrors "github.com/dojokai/dojo-api/pkg/errors"
)

// pqUniqueViolation is the PostgreSQL error code for unique constraint
// violations; the payments table carries a unique index on
// (student_id, month, year) for confirmed records.
const pqUniqueViolation = "23505"

// PaymentRepository manages monthly-dues records.
type PaymentRepository struct {
	db *sqlx.DB
}

// NewPaymentRepository constructs a PaymentRepository.
func NewPaymentRepository(db *sqlx.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// HistoryForStudent returns the full payment history for a student, newest
// first. The payment cycle resolver scans this list.
func (r *PaymentRepository) HistoryForStudent(ctx context.Context, studentID string) ([]models.Payment, error) {
	const query = `SELECT id, student_id, amount, currency, method, reference, origin_bank, payer_document_id, payer_phone,
        payment_date, status, month, year, advance, observations, created_by, created_at
        FROM payments WHERE student_id = $1 ORDER BY year DESC, month DESC, created_at DESC`
	var payments []models.Payment
	if err := r.db.SelectContext(ctx, &payments, query, studentID); err != nil {
		return nil, fmt.Errorf("payment history: %w", err)
	}
	return payments, nil
}

// List returns payments matching the filters with the owning student joined.
func (r *PaymentRepository) List(ctx context.Context, filter models.PaymentFilter) ([]models.PaymentDetail, int, error) {
	base := `FROM payments p LEFT JOIN students s ON s.id = p.student_id`
	conditions := []string{"1=1"}
	var args []interface{}

	if filter.StudentID != "" {
		conditions = append(conditions, fmt.Sprintf("p.student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.Month > 0 {
		conditions = append(conditions, fmt.Sprintf("p.month = $%d", len(args)+1))
		args = append(args, filter.Month)
	}
	if filter.Year > 0 {
		conditions = append(conditions, fmt.Sprintf("p.year = $%d", len(args)+1))
		args = append(args, filter.Year)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("p.status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.Method != "" {
		conditions = append(conditions, fmt.Sprintf("p.method = $%d", len(args)+1))
		args = append(args, filter.Method)
	}

	base = fmt.Sprintf("%s WHERE %s", base, strings.Join(conditions, " AND "))

	allowedSorts := map[string]string{
		"payment_date": "p.payment_date",
		"amount":       "p.amount",
		"created_at":   "p.created_at",
	}
	column, ok := allowedSorts[filter.SortBy]
	if !ok {
		column = "p.created_at"
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

	query := fmt.Sprintf(`SELECT p.id, p.student_id, p.amount, p.currency, p.method, p.reference, p.origin_bank, p.payer_document_id, p.payer_phone,
        p.payment_date, p.status, p.month, p.year, p.advance, p.observations, p.created_by, p.created_at,
        s.full_name AS student_name, s.document_id AS student_document_id
        %s ORDER BY %s %s LIMIT %d OFFSET %d`, base, column, order, size, offset)

	var payments []models.PaymentDetail
	if err := r.db.SelectContext(ctx, &payments, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list payments: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(p.id) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count payments: %w", err)
	}
	return payments, total, nil
}

// FindByID fetches a single payment with the student joined.
func (r *PaymentRepository) FindByID(ctx context.Context, id string) (*models.PaymentDetail, error) {
	const query = `SELECT p.id, p.student_id, p.amount, p.currency, p.method, p.reference, p.origin_bank, p.payer_document_id, p.payer_phone,
        p.payment_date, p.status, p.month, p.year, p.advance, p.observations, p.created_by, p.created_at,
        s.full_name AS student_name, s.document_id AS student_document_id
        FROM payments p LEFT JOIN students s ON s.id = p.student_id WHERE p.id = $1`
	var detail models.PaymentDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, err
	}
	return &detail, nil
}

// CountForStudent returns how many payments exist for a student, used to
// detect the first payment (registration fee applies).
func (r *PaymentRepository) CountForStudent(ctx context.Context, studentID string) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, "SELECT COUNT(id) FROM payments WHERE student_id = $1", studentID); err != nil {
		return 0, fmt.Errorf("count payments for student: %w", err)
	}
	return count, nil
}

// Create inserts a payment record. A duplicate confirmed payment for the
// same (student, month, year) trips the storage-layer unique index and is
// surfaced as the typed ErrPaymentExists.
func (r *PaymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	if payment.ID == "" {
		payment.ID = uuid.NewString()
	}
	if payment.CreatedAt.IsZero() {
		payment.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO payments (id, student_id, amount, currency, method, reference, origin_bank, payer_document_id, payer_phone,
        payment_date, status, month, year, advance, observations, created_by, created_at)
        VALUES (:id, :student_id, :amount, :currency, :method, :reference, :origin_bank, :payer_document_id, :payer_phone,
        :payment_date, :status, :month, :year, :advance, :observations, :created_by, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, payment); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == pqUniqueViolation {
			return appErrors.Clone(appErrors.ErrPaymentExists, fmt.Sprintf("a confirmed payment for %02d/%d already exists", payment.Month, payment.Year))
		}
		return fmt.Errorf("create payment: %w", err)
	}
	return nil
}

// UpdateStatus changes a payment's status, used by the admin correction
// endpoint.
func (r *PaymentRepository) UpdateStatus(ctx context.Context, id string, status models.PaymentStatus) error {
	const query = `UPDATE payments SET status = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status); err != nil {
		return fmt.Errorf("update payment status: %w", err)
	}
	return nil
}

// MonthlyCollection returns the confirmed payments credited to a month,
// ordered by student name, for the collection report.
func (r *PaymentRepository) MonthlyCollection(ctx context.Context, month, year int) ([]models.PaymentDetail, error) {
	const query = `SELECT p.id, p.student_id, p.amount, p.currency, p.method, p.reference, p.origin_bank, p.payer_document_id, p.payer_phone,
        p.payment_date, p.status, p.month, p.year, p.advance, p.observations, p.created_by, p.created_at,
        s.full_name AS student_name, s.document_id AS student_document_id
        FROM payments p LEFT JOIN students s ON s.id = p.student_id
        WHERE p.month = $1 AND p.year = $2 AND p.status = $3 ORDER BY s.full_name ASC`
	var payments []models.PaymentDetail
	if err := r.db.SelectContext(ctx, &payments, query, month, year, models.PaymentStatusConfirmed); err != nil {
		return nil, fmt.Errorf("monthly collection: %w", err)
	}
	return payments, nil
}
