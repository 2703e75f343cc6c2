// Package billing computes stay totals and enforces the checkout and
// invoice-printing rules that depend on a branch's GST registration.
package billing

import (
	"strings"

	"github.com/shopspring/decimal"

	"frontoffice/internal/domain"
)

const (
	ReasonNonGSTBranch    = "non-GST branch"
	ReasonPaymentRequired = "payment method required for outstanding balance"
)

// GSTRate is applied to the whole subtotal of a GST-registered branch.
var GSTRate = decimal.NewFromInt(18).Div(decimal.NewFromInt(100))

// Compute derives the bill for a set of charges. Extra nights are priced at
// nightlyRate and added on top of the listed charges.
func Compute(charges []domain.Charge, extraNights int, nightlyRate decimal.Decimal, gstEnabled bool, amountPaid decimal.Decimal) (domain.BillingResult, error) {
	if extraNights < 0 {
		return domain.BillingResult{}, invalid("extra_nights", "must not be negative")
	}
	if nightlyRate.IsNegative() {
		return domain.BillingResult{}, invalid("nightly_rate", "must not be negative")
	}
	if amountPaid.IsNegative() {
		return domain.BillingResult{}, invalid("amount_paid", "must not be negative")
	}

	subtotal := decimal.Zero
	for _, charge := range charges {
		if charge.Amount.IsNegative() {
			return domain.BillingResult{}, invalid("amount", "charge amount must not be negative")
		}
		subtotal = subtotal.Add(charge.Amount)
	}
	subtotal = subtotal.Add(ExtraNightCharge(extraNights, nightlyRate))

	tax := Tax(subtotal, gstEnabled)
	total := subtotal.Add(tax)

	return domain.BillingResult{
		Subtotal:   subtotal,
		TaxAmount:  tax,
		Total:      total,
		BalanceDue: total.Sub(amountPaid),
	}, nil
}

func ExtraNightCharge(extraNights int, nightlyRate decimal.Decimal) decimal.Decimal {
	if extraNights <= 0 {
		return decimal.Zero
	}
	return nightlyRate.Mul(decimal.NewFromInt(int64(extraNights)))
}

// Tax rounds half-up to whole currency units. Subtotals are never negative,
// so decimal's half-away-from-zero rounding is half-up here.
func Tax(subtotal decimal.Decimal, gstEnabled bool) decimal.Decimal {
	if !gstEnabled {
		return decimal.Zero
	}
	return subtotal.Mul(GSTRate).Round(0)
}

func ValidateManualCharge(description string, amount decimal.Decimal) error {
	if strings.TrimSpace(description) == "" {
		return invalid("description", "is required")
	}
	if !amount.IsPositive() {
		return invalid("amount", "must be greater than zero")
	}
	return nil
}

func PrintAllowed(gstEnabled bool) bool {
	return gstEnabled
}

func CheckPrint(gstEnabled bool) error {
	if !PrintAllowed(gstEnabled) {
		return &PolicyViolation{Reason: ReasonNonGSTBranch}
	}
	return nil
}

// CheckCompletion blocks checkout while money is owed and nobody has said how
// it will be paid.
func CheckCompletion(result domain.BillingResult, paymentMethod string) error {
	if result.BalanceDue.IsPositive() && strings.TrimSpace(paymentMethod) == "" {
		return &PolicyViolation{Reason: ReasonPaymentRequired}
	}
	return nil
}
