package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dojokai/dojo-api/internal/models"
	appErrors "github.com/dojokai/dojo-api/pkg/errors"
)

var march15 = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

func confirmedPayment(month, year int) models.Payment {
	return models.Payment{Month: month, Year: year, Status: models.PaymentStatusConfirmed}
}

func TestResolvePaymentTargetNormal(t *testing.T) {
	target := ResolvePaymentTarget(nil, march15)
	assert.Equal(t, 3, target.Month)
	assert.Equal(t, 2024, target.Year)
	assert.False(t, target.Advance)
}

func TestResolvePaymentTargetAdvance(t *testing.T) {
	history := []models.Payment{confirmedPayment(3, 2024)}
	target := ResolvePaymentTarget(history, march15)
	assert.True(t, target.Advance)
	assert.Equal(t, 4, target.Month)
	assert.Equal(t, 2024, target.Year)
}

func TestResolvePaymentTargetNextAlreadyExists(t *testing.T) {
	history := []models.Payment{
		confirmedPayment(3, 2024),
		{Month: 4, Year: 2024, Status: models.PaymentStatusPending},
	}
	target := ResolvePaymentTarget(history, march15)
	assert.False(t, target.Advance)
	assert.Equal(t, 3, target.Month)
	assert.NotEmpty(t, target.Note)
}

func TestResolvePaymentTargetPendingCurrentDoesNotAdvance(t *testing.T) {
	history := []models.Payment{{Month: 3, Year: 2024, Status: models.PaymentStatusPending}}
	target := ResolvePaymentTarget(history, march15)
	assert.False(t, target.Advance)
	assert.Equal(t, 3, target.Month)
}

func TestResolvePaymentTargetDecemberRollover(t *testing.T) {
	dec := time.Date(2024, 12, 20, 0, 0, 0, 0, time.UTC)
	history := []models.Payment{confirmedPayment(12, 2024)}
	target := ResolvePaymentTarget(history, dec)
	require.True(t, target.Advance)
	assert.Equal(t, 1, target.Month)
	assert.Equal(t, 2025, target.Year)
}

func TestComputeAmountPlain(t *testing.T) {
	assert.InDelta(t, 30.0, ComputeAmount(30, Adjustment{}, 1, models.CurrencyUSD), 0.001)
}

func TestComputeAmountDiscount(t *testing.T) {
	assert.InDelta(t, 27.0, ComputeAmount(30, Adjustment{DiscountPct: 10}, 1, models.CurrencyUSD), 0.001)
}

func TestComputeAmountSurcharge(t *testing.T) {
	assert.InDelta(t, 31.5, ComputeAmount(30, Adjustment{SurchargePct: 5}, 1, models.CurrencyUSD), 0.001)
}

func TestComputeAmountBolivarConversion(t *testing.T) {
	got := ComputeAmount(30, Adjustment{}, 36.5, models.CurrencyBolivar)
	assert.InDelta(t, 1095.0, got, 0.001)
}

func TestCurrencyConversionRoundTrip(t *testing.T) {
	rate := 36.58
	bs := ComputeAmount(25, Adjustment{}, rate, models.CurrencyBolivar)
	usd := ConvertToUSD(bs, rate)
	assert.InDelta(t, 25.0, usd, 0.01)
}

func TestFirstPaymentBreakdown(t *testing.T) {
	breakdown := FirstPaymentBreakdown(30, 15)
	assert.InDelta(t, 30.0, breakdown.Monthly, 0.001)
	assert.InDelta(t, 15.0, breakdown.Registration, 0.001)
	assert.InDelta(t, 45.0, breakdown.Total, 0.001)
}

func TestValidateTransferDateToday(t *testing.T) {
	assert.NoError(t, ValidateTransferDate(march15, march15))
}

func TestValidateTransferDateYesterday(t *testing.T) {
	assert.NoError(t, ValidateTransferDate(march15.AddDate(0, 0, -1), march15))
}

func TestValidateTransferDateTwoDaysAgo(t *testing.T) {
	err := ValidateTransferDate(march15.AddDate(0, 0, -2), march15)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrDateOutOfWindow.Code, appErrors.FromError(err).Code)
}

func TestValidateTransferDateTomorrow(t *testing.T) {
	err := ValidateTransferDate(march15.AddDate(0, 0, 1), march15)
	require.Error(t, err)
}

func TestWithinTrailingMonth(t *testing.T) {
	assert.True(t, WithinTrailingMonth(march15.AddDate(0, 0, -20), march15))
	assert.False(t, WithinTrailingMonth(march15.AddDate(0, -2, 0), march15))
	assert.False(t, WithinTrailingMonth(march15.AddDate(0, 0, 2), march15))
}
