package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/dojokai/dojo-api/pkg/errors"
	"github.com/dojokai/dojo-api/pkg/export"
)

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ReportFormat values accepted by the export endpoints.
const (
	ReportFormatCSV = "csv"
	ReportFormatPDF = "pdf"
)

// ReportFile is a synchronously rendered document.
type ReportFile struct {
	Filename    string
	ContentType string
	Payload     []byte
}

// ReportService renders collection reports and payment receipts.
type ReportService struct {
	payments *PaymentService
	profile  *SettingsService
	csv      csvRenderer
	pdf      pdfRenderer
	logger   *zap.Logger
}

// NewReportService constructs the report service.
func NewReportService(payments *PaymentService, profile *SettingsService, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		payments: payments,
		profile:  profile,
		csv:      export.NewCSVExporter(),
		pdf:      export.NewPDFExporter(),
		logger:   logger,
	}
}

// MonthlyCollection renders the confirmed payments for a month as CSV or
// PDF.
func (s *ReportService) MonthlyCollection(ctx context.Context, month, year int, format string) (*ReportFile, error) {
	payments, totalUSD, err := s.payments.MonthlyCollection(ctx, month, year)
	if err != nil {
		return nil, err
	}

	headers := []string{"Estudiante", "Documento", "Monto", "Moneda", "Método", "Referencia", "Fecha", "Adelantado"}
	rows := make([]map[string]string, 0, len(payments)+1)
	for _, p := range payments {
		rows = append(rows, map[string]string{
			"Estudiante": derefStr(p.StudentName),
			"Documento":  derefStr(p.StudentDocID),
			"Monto":      fmt.Sprintf("%.2f", p.Amount),
			"Moneda":     p.Currency,
			"Método":     string(p.Method),
			"Referencia": p.Reference,
			"Fecha":      p.PaymentDate.Format("2006-01-02"),
			"Adelantado": yesNo(p.Advance),
		})
	}
	rows = append(rows, map[string]string{
		"Estudiante": "TOTAL (USD)",
		"Monto":      fmt.Sprintf("%.2f", totalUSD),
	})
	dataset := export.Dataset{Headers: headers, Rows: rows}
	title := fmt.Sprintf("Recaudación %02d/%d", month, year)

	return s.render(dataset, title, fmt.Sprintf("recaudacion_%02d_%d", month, year), format)
}

// Receipt renders a single-payment receipt as PDF.
func (s *ReportService) Receipt(ctx context.Context, paymentID string) (*ReportFile, error) {
	payment, err := s.payments.Get(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	profile, err := s.profile.GetProfile(ctx)
	if err != nil {
		return nil, err
	}

	school := profile.Name
	if school == "" {
		school = "Dojo"
	}
	dataset := export.Dataset{
		Headers: []string{"Campo", "Valor"},
		Rows: []map[string]string{
			{"Campo": "Recibo", "Valor": payment.ID},
			{"Campo": "Estudiante", "Valor": derefStr(payment.StudentName)},
			{"Campo": "Documento", "Valor": derefStr(payment.StudentDocID)},
			{"Campo": "Mes pagado", "Valor": fmt.Sprintf("%02d/%d", payment.Month, payment.Year)},
			{"Campo": "Monto", "Valor": fmt.Sprintf("%.2f %s", payment.Amount, payment.Currency)},
			{"Campo": "Método", "Valor": string(payment.Method)},
			{"Campo": "Referencia", "Valor": payment.Reference},
			{"Campo": "Fecha de pago", "Valor": payment.PaymentDate.Format("2006-01-02")},
			{"Campo": "Estado", "Valor": string(payment.Status)},
			{"Campo": "Adelantado", "Valor": yesNo(payment.Advance)},
		},
	}
	title := fmt.Sprintf("%s - Recibo de pago", school)

	return s.render(dataset, title, "recibo_"+payment.ID, ReportFormatPDF)
}

func (s *ReportService) render(dataset export.Dataset, title, basename, format string) (*ReportFile, error) {
	timestamp := time.Now().UTC().Format("20060102_150405")
	switch strings.ToLower(format) {
	case ReportFormatCSV:
		payload, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &ReportFile{
			Filename:    fmt.Sprintf("%s_%s.csv", basename, timestamp),
			ContentType: "text/csv",
			Payload:     payload,
		}, nil
	case ReportFormatPDF:
		payload, err := s.pdf.Render(dataset, title)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &ReportFile{
			Filename:    fmt.Sprintf("%s_%s.pdf", basename, timestamp),
			ContentType: "application/pdf",
			Payload:     payload,
		}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
}

func derefStr(ptr *string) string {
	if ptr == nil {
		return ""
	}
	return *ptr
}

func yesNo(v bool) string {
	if v {
		return "sí"
	}
	return "no"
}
