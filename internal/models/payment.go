package models

import "time"

// PaymentStatus values.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pendiente"
	PaymentStatusConfirmed PaymentStatus = "confirmado"
	PaymentStatusRejected  PaymentStatus = "rechazado"
)

// PaymentMethod values accepted by the verification form.
type PaymentMethod string

const (
	PaymentMethodTransfer PaymentMethod = "transferencia"
	PaymentMethodMobile   PaymentMethod = "pago_movil"
	PaymentMethodZelle    PaymentMethod = "zelle"
	PaymentMethodPayPal   PaymentMethod = "paypal"
)

// ValidPaymentMethod reports whether the method is one of the accepted enum
// values.
func ValidPaymentMethod(m PaymentMethod) bool {
	switch m {
	case PaymentMethodTransfer, PaymentMethodMobile, PaymentMethodZelle, PaymentMethodPayPal:
		return true
	}
	return false
}

// Payment is a monthly-dues record credited toward a specific month+year.
type Payment struct {
	ID           string        `db:"id" json:"id"`
	StudentID    string        `db:"student_id" json:"student_id"`
	Amount       float64       `db:"amount" json:"amount"`
	Currency     string        `db:"currency" json:"currency"`
	Method       PaymentMethod `db:"method" json:"method"`
	Reference    string        `db:"reference" json:"reference"`
	OriginBank   string        `db:"origin_bank" json:"origin_bank"`
	PayerDocID   string        `db:"payer_document_id" json:"payer_document_id"`
	PayerPhone   string        `db:"payer_phone" json:"payer_phone"`
	PaymentDate  time.Time     `db:"payment_date" json:"payment_date"`
	Status       PaymentStatus `db:"status" json:"status"`
	Month        int           `db:"month" json:"month"`
	Year         int           `db:"year" json:"year"`
	Advance      bool          `db:"advance" json:"advance"`
	Observations string        `db:"observations" json:"observations"`
	CreatedBy    *string       `db:"created_by" json:"created_by,omitempty"`
	CreatedAt    time.Time     `db:"created_at" json:"created_at"`
}

// PaymentFilter captures the list filters for payments.
type PaymentFilter struct {
	StudentID string
	Month     int
	Year      int
	Status    PaymentStatus
	Method    PaymentMethod
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// PaymentDetail joins the owning student for listings and receipts.
type PaymentDetail struct {
	Payment
	StudentName  *string `db:"student_name" json:"student_name,omitempty"`
	StudentDocID *string `db:"student_document_id" json:"student_document_id,omitempty"`
}
