package service

import (
	"math"
	"time"

	"github.com/dojokai/dojo-api/internal/models"
	appErrors "github.com/dojokai/dojo-api/pkg/errors"
)

// PaymentTarget is the month+year a submission gets credited toward.
type PaymentTarget struct {
	Month   int    `json:"month"`
	Year    int    `json:"year"`
	Advance bool   `json:"advance"`
	Note    string `json:"note,omitempty"`
}

// ResolvePaymentTarget decides whether a new submission belongs to the
// current month or is advanced to the next one. The decision table over
// (current month confirmed, next month record exists):
//
//	false/false → current month
//	false/true  → current month (next already covered, no advance)
//	true/false  → next month (pago adelantado)
//	true/true   → current month, with a duplicate warning note
//
// History may contain any statuses; only confirmed records count for the
// current month, any record counts for the next month.
func ResolvePaymentTarget(history []models.Payment, now time.Time) PaymentTarget {
	curMonth := int(now.Month())
	curYear := now.Year()
	nextMonth := curMonth + 1
	nextYear := curYear
	if nextMonth > 12 {
		nextMonth = 1
		nextYear++
	}

	currentConfirmed := false
	nextExists := false
	for _, p := range history {
		if p.Month == curMonth && p.Year == curYear && p.Status == models.PaymentStatusConfirmed {
			currentConfirmed = true
		}
		if p.Month == nextMonth && p.Year == nextYear {
			nextExists = true
		}
	}

	switch {
	case currentConfirmed && !nextExists:
		return PaymentTarget{Month: nextMonth, Year: nextYear, Advance: true}
	case currentConfirmed && nextExists:
		return PaymentTarget{Month: curMonth, Year: curYear, Note: "el próximo mes ya tiene un pago registrado"}
	default:
		return PaymentTarget{Month: curMonth, Year: curYear}
	}
}

// Adjustment applies either an early-payment discount or a late (mora)
// surcharge, never both in the same submission context.
type Adjustment struct {
	DiscountPct  float64
	SurchargePct float64
}

// ComputeAmount derives the amount due from the base category price, the
// adjustment and the display currency. Bs. amounts are the USD base times
// the configured exchange rate. Result is rounded to 2 decimals.
func ComputeAmount(base float64, adj Adjustment, exchangeRate float64, currency string) float64 {
	amount := base
	if adj.DiscountPct > 0 {
		amount -= amount * adj.DiscountPct / 100
	} else if adj.SurchargePct > 0 {
		amount += amount * adj.SurchargePct / 100
	}
	if currency == models.CurrencyBolivar {
		amount *= exchangeRate
	}
	return Round2(amount)
}

// ConvertToUSD recovers the USD amount from a Bs. figure.
func ConvertToUSD(bsAmount, exchangeRate float64) float64 {
	if exchangeRate == 0 {
		return 0
	}
	return Round2(bsAmount / exchangeRate)
}

// AmountBreakdown separates the monthly dues from the one-time registration
// fee charged on a student's first payment.
type AmountBreakdown struct {
	Monthly      float64 `json:"monthly"`
	Registration float64 `json:"registration"`
	Total        float64 `json:"total"`
}

// FirstPaymentBreakdown adds the fixed registration fee to the monthly price
// and exposes the split.
func FirstPaymentBreakdown(monthly, registrationFee float64) AmountBreakdown {
	return AmountBreakdown{
		Monthly:      Round2(monthly),
		Registration: Round2(registrationFee),
		Total:        Round2(monthly + registrationFee),
	}
}

// TransferDateWindowDays is the submit-time grace window: the transfer must
// have happened today or yesterday.
const TransferDateWindowDays = 1

// ValidateTransferDate enforces the tight submit-time rule: the proposed
// date must be today or at most one calendar day in the past. Future dates
// are rejected.
func ValidateTransferDate(date, now time.Time) error {
	days := calendarDaysBetween(date, now)
	if days < 0 {
		return appErrors.Clone(appErrors.ErrDateOutOfWindow, "transfer date cannot be in the future")
	}
	if days > TransferDateWindowDays {
		return appErrors.Clone(appErrors.ErrDateOutOfWindow, "transfer date must be today or yesterday")
	}
	return nil
}

// WithinTrailingMonth is the looser form-level bound: the date must fall in
// the last month and never in the future.
func WithinTrailingMonth(date, now time.Time) bool {
	days := calendarDaysBetween(date, now)
	if days < 0 {
		return false
	}
	return !truncateToDay(date).Before(truncateToDay(now.AddDate(0, -1, 0)))
}

// Round2 rounds to two decimal places for display and storage.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// calendarDaysBetween counts whole calendar days from date to now; negative
// when date lies in the future.
func calendarDaysBetween(date, now time.Time) int {
	d := truncateToDay(date)
	n := truncateToDay(now)
	return int(n.Sub(d).Hours() / 24)
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
