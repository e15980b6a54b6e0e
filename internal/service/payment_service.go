package service

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/dojokai/dojo-api/internal/models"
	appErrors "github.com/dojokai/dojo-api/pkg/errors"
)

type paymentRepository interface {
	HistoryForStudent(ctx context.Context, studentID string) ([]models.Payment, error)
	List(ctx context.Context, filter models.PaymentFilter) ([]models.PaymentDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.PaymentDetail, error)
	CountForStudent(ctx context.Context, studentID string) (int, error)
	Create(ctx context.Context, payment *models.Payment) error
	UpdateStatus(ctx context.Context, id string, status models.PaymentStatus) error
	MonthlyCollection(ctx context.Context, month, year int) ([]models.PaymentDetail, error)
}

type paymentStudentReader interface {
	FindByID(ctx context.Context, id string) (*models.StudentDetail, error)
}

type paymentCategoryReader interface {
	FindByID(ctx context.Context, id string) (*models.AgeCategory, error)
}

type auditWriter interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// SubmitPaymentRequest is the verification-form payload.
type SubmitPaymentRequest struct {
	StudentID    string               `json:"student_id" validate:"required"`
	Amount       float64              `json:"amount" validate:"required,gt=0"`
	Currency     string               `json:"currency" validate:"required,oneof=USD VES"`
	Method       models.PaymentMethod `json:"method" validate:"required"`
	Reference    string               `json:"reference" validate:"required"`
	OriginBank   string               `json:"origin_bank"`
	PayerDocID   string               `json:"payer_document_id"`
	PayerPhone   string               `json:"payer_phone"`
	PaymentDate  time.Time            `json:"payment_date" validate:"required"`
	Month        int                  `json:"month"`
	Year         int                  `json:"year"`
	Observations string               `json:"observations"`
}

// PaymentPreview tells the form which month the submission will be credited
// to and how much is due, before anything is persisted.
type PaymentPreview struct {
	Target       PaymentTarget   `json:"target"`
	Breakdown    AmountBreakdown `json:"breakdown"`
	Currency     string          `json:"currency"`
	ExchangeRate float64         `json:"exchange_rate"`
	AmountDue    float64         `json:"amount_due"`
	FirstPayment bool            `json:"first_payment"`
	Warning      string          `json:"warning,omitempty"`
}

// PaymentService implements the monthly-dues verification workflow.
type PaymentService struct {
	repo       paymentRepository
	students   paymentStudentReader
	categories paymentCategoryReader
	billing    billingReader
	audit      auditWriter
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewPaymentService constructs the payment service.
func NewPaymentService(repo paymentRepository, students paymentStudentReader, categories paymentCategoryReader, billing billingReader, audit auditWriter, validate *validator.Validate, logger *zap.Logger) *PaymentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentService{repo: repo, students: students, categories: categories, billing: billing, audit: audit, validator: validate, logger: logger}
}

// monthlyPriceFor resolves the student's monthly dues: the category price
// when set, otherwise the configured base price.
func (s *PaymentService) monthlyPriceFor(ctx context.Context, student *models.StudentDetail, settings *models.BillingSettings) float64 {
	if student.CategoryID != nil {
		category, err := s.categories.FindByID(ctx, *student.CategoryID)
		if err == nil && category.MonthlyPrice != nil && *category.MonthlyPrice > 0 {
			return *category.MonthlyPrice
		}
		if err != nil && err != sql.ErrNoRows {
			s.logger.Warn("category price lookup failed", zap.Error(err))
		}
	}
	return settings.BasePrice
}

// adjustmentFor picks discount or surcharge from the configured cutoff day.
// Paying on or before the cutoff earns the discount, after it pays the
// surcharge. A zero cutoff disables both.
func adjustmentFor(settings *models.BillingSettings, when time.Time) Adjustment {
	if settings.CutoffDay <= 0 {
		return Adjustment{}
	}
	if when.Day() <= settings.CutoffDay {
		return Adjustment{DiscountPct: settings.DiscountPct}
	}
	return Adjustment{SurchargePct: settings.SurchargePct}
}

// Preview resolves the target month and the amount due for a student without
// persisting anything. A failed history read degrades to the current month
// with a warning instead of blocking the form.
func (s *PaymentService) Preview(ctx context.Context, studentID string) (*PaymentPreview, error) {
	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	settings, err := s.billing.GetBilling(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load billing settings")
	}

	now := time.Now()
	warning := ""
	var history []models.Payment
	if history, err = s.repo.HistoryForStudent(ctx, studentID); err != nil {
		s.logger.Warn("payment history unavailable, defaulting to current month", zap.String("student_id", studentID), zap.Error(err))
		warning = "no se pudo verificar el historial de pagos, se asume el mes actual"
		history = nil
	}
	target := ResolvePaymentTarget(history, now)

	monthly := s.monthlyPriceFor(ctx, student, settings)
	adj := adjustmentFor(settings, now)
	amountDue := ComputeAmount(monthly, adj, settings.ExchangeRate, settings.Currency)

	count, err := s.repo.CountForStudent(ctx, studentID)
	if err != nil {
		s.logger.Warn("payment count unavailable", zap.String("student_id", studentID), zap.Error(err))
		count = 1
	}
	first := count == 0
	breakdown := FirstPaymentBreakdown(monthly, 0)
	if first {
		breakdown = FirstPaymentBreakdown(monthly, settings.RegistrationFee)
		amountDue = ComputeAmount(breakdown.Total, adj, settings.ExchangeRate, settings.Currency)
	}

	return &PaymentPreview{
		Target:       target,
		Breakdown:    breakdown,
		Currency:     settings.Currency,
		ExchangeRate: settings.ExchangeRate,
		AmountDue:    amountDue,
		FirstPayment: first,
		Warning:      warning,
	}, nil
}

// Submit records a verified payment. The target month is resolved
// server-side; a client that claims the advance month is re-checked against
// the history and rejected when the current month has no confirmed payment.
func (s *PaymentService) Submit(ctx context.Context, req SubmitPaymentRequest, actorID string) (*models.Payment, string, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payment payload")
	}
	if !models.ValidPaymentMethod(req.Method) {
		return nil, "", appErrors.Clone(appErrors.ErrValidation, "unknown payment method")
	}

	now := time.Now()
	// Coarse form-level bound first, then the tight submit-time window.
	if !WithinTrailingMonth(req.PaymentDate, now) {
		return nil, "", appErrors.Clone(appErrors.ErrDateOutOfWindow, "transfer date must fall within the last month")
	}
	if err := ValidateTransferDate(req.PaymentDate, now); err != nil {
		return nil, "", err
	}

	student, err := s.students.FindByID(ctx, req.StudentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, "", appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	if !student.Active {
		return nil, "", appErrors.Clone(appErrors.ErrValidation, "student is not active")
	}

	settings, err := s.billing.GetBilling(ctx)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load billing settings")
	}

	warning := ""
	history, err := s.repo.HistoryForStudent(ctx, req.StudentID)
	if err != nil {
		s.logger.Warn("payment history unavailable at submit", zap.String("student_id", req.StudentID), zap.Error(err))
		warning = "no se pudo verificar el historial de pagos, se asume el mes actual"
		history = nil
	}
	target := ResolvePaymentTarget(history, now)

	// A client-claimed advance must match the server-side resolution.
	if req.Month != 0 && req.Year != 0 {
		claimedAhead := req.Year > now.Year() || (req.Year == now.Year() && req.Month > int(now.Month()))
		if claimedAhead && !target.Advance {
			return nil, "", appErrors.Clone(appErrors.ErrAdvanceNotEligible, "cannot pay next month before the current one is confirmed")
		}
	}
	if target.Note != "" {
		warning = target.Note
	}

	monthly := s.monthlyPriceFor(ctx, student, settings)
	count, err := s.repo.CountForStudent(ctx, req.StudentID)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count payments")
	}
	base := monthly
	if count == 0 {
		base = FirstPaymentBreakdown(monthly, settings.RegistrationFee).Total
	}
	adj := adjustmentFor(settings, now)
	expected := ComputeAmount(base, adj, settings.ExchangeRate, req.Currency)
	if math.Abs(req.Amount-expected) > 0.01 {
		return nil, "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("amount %.2f does not match the expected %.2f %s", req.Amount, expected, req.Currency))
	}

	payment := &models.Payment{
		StudentID:    req.StudentID,
		Amount:       Round2(req.Amount),
		Currency:     req.Currency,
		Method:       req.Method,
		Reference:    req.Reference,
		OriginBank:   req.OriginBank,
		PayerDocID:   req.PayerDocID,
		PayerPhone:   req.PayerPhone,
		PaymentDate:  req.PaymentDate,
		Status:       models.PaymentStatusConfirmed,
		Month:        target.Month,
		Year:         target.Year,
		Advance:      target.Advance,
		Observations: req.Observations,
	}
	if actorID != "" {
		payment.CreatedBy = &actorID
	}
	if err := s.repo.Create(ctx, payment); err != nil {
		return nil, "", err
	}

	s.writeAudit(ctx, actorID, models.AuditActionPaymentCreate, payment.ID, fmt.Sprintf("payment %s for %02d/%d (%s)", payment.Reference, payment.Month, payment.Year, payment.Status))
	s.logger.Info("payment recorded",
		zap.String("payment_id", payment.ID),
		zap.String("student_id", payment.StudentID),
		zap.Int("month", payment.Month),
		zap.Int("year", payment.Year),
		zap.Bool("advance", payment.Advance))
	return payment, warning, nil
}

// List returns payments and pagination metadata.
func (s *PaymentService) List(ctx context.Context, filter models.PaymentFilter) ([]models.PaymentDetail, *models.Pagination, error) {
	payments, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list payments")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return payments, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns a single payment with student context.
func (s *PaymentService) Get(ctx context.Context, id string) (*models.PaymentDetail, error) {
	payment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "payment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load payment")
	}
	return payment, nil
}

// UpdateStatus is the admin correction endpoint for self-confirmed payments.
func (s *PaymentService) UpdateStatus(ctx context.Context, id string, status models.PaymentStatus, actorID string) (*models.PaymentDetail, error) {
	switch status {
	case models.PaymentStatusPending, models.PaymentStatusConfirmed, models.PaymentStatusRejected:
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown payment status")
	}
	payment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "payment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load payment")
	}
	if payment.Status == status {
		return payment, nil
	}
	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update payment status")
	}
	s.writeAudit(ctx, actorID, models.AuditActionPaymentStatus, id, fmt.Sprintf("status %s -> %s", payment.Status, status))
	payment.Status = status
	return payment, nil
}

// MonthlyCollection returns the confirmed payments for a month along with
// the USD total.
func (s *PaymentService) MonthlyCollection(ctx context.Context, month, year int) ([]models.PaymentDetail, float64, error) {
	if month < 1 || month > 12 {
		return nil, 0, appErrors.Clone(appErrors.ErrValidation, "month must be between 1 and 12")
	}
	payments, err := s.repo.MonthlyCollection(ctx, month, year)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load collection")
	}
	settings, err := s.billing.GetBilling(ctx)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load billing settings")
	}
	total := 0.0
	for _, p := range payments {
		amount := p.Amount
		if p.Currency == models.CurrencyBolivar {
			amount = ConvertToUSD(amount, settings.ExchangeRate)
		}
		total += amount
	}
	return payments, Round2(total), nil
}

func (s *PaymentService) writeAudit(ctx context.Context, actorID, action, entityID, detail string) {
	if s.audit == nil {
		return
	}
	entry := &models.AuditLog{
		Action:    action,
		Resource:  "payment",
		NewValues: []byte(fmt.Sprintf(`{"detail":%q}`, detail)),
	}
	if actorID != "" {
		entry.UserID = &actorID
	}
	if entityID != "" {
		entry.ResourceID = &entityID
	}
	if err := s.audit.CreateAuditLog(ctx, entry); err != nil {
		s.logger.Warn("audit log write failed", zap.String("action", action), zap.Error(err))
	}
}
