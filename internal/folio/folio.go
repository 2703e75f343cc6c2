// Package folio drives a single stay through checkout:
// found -> adjusting* -> awaiting_payment? -> completed.
//
// A Folio works on its own copy of the stay; callers persist Stay() once an
// operation succeeds. Failed operations leave the copy untouched.
package folio

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"frontoffice/internal/billing"
	"frontoffice/internal/domain"
	"frontoffice/internal/xid"
)

const ReasonStayClosed = "stay already checked out"

var ErrChargeNotFound = errors.New("charge not found")

type Folio struct {
	stay   domain.Stay
	branch domain.Branch
}

func Open(stay domain.Stay, branch domain.Branch) (*Folio, error) {
	if stay.BranchID != branch.ID {
		return nil, fmt.Errorf("stay %s belongs to branch %s, not %s", stay.ID, stay.BranchID, branch.ID)
	}
	stay.Charges = append([]domain.Charge(nil), stay.Charges...)
	stay.Payments = append([]domain.Payment(nil), stay.Payments...)
	if stay.Status != domain.StayStatusCheckedOut && stay.CheckoutPhase == "" {
		stay.CheckoutPhase = domain.CheckoutFound
	}
	return &Folio{stay: stay, branch: branch}, nil
}

func (f *Folio) Stay() domain.Stay {
	return f.stay
}

func (f *Folio) Branch() domain.Branch {
	return f.branch
}

func (f *Folio) Bill() (domain.BillingResult, error) {
	if f.stay.Status == domain.StayStatusCheckedOut && f.stay.FinalBill != nil {
		return *f.stay.FinalBill, nil
	}
	return billing.Compute(f.stay.Charges, f.stay.ExtraNights, f.stay.NightlyRate, f.branch.GSTEnabled, f.stay.AmountPaid)
}

func (f *Folio) State() string {
	if f.stay.Status == domain.StayStatusCheckedOut {
		return domain.CheckoutCompleted
	}
	result, err := f.Bill()
	if err == nil && result.BalanceDue.IsPositive() {
		return domain.CheckoutAwaitingPayment
	}
	if f.stay.CheckoutPhase == domain.CheckoutAdjusting {
		return domain.CheckoutAdjusting
	}
	return domain.CheckoutFound
}

func (f *Folio) AddManualCharge(description string, amount decimal.Decimal, actor string, at time.Time) (domain.Charge, error) {
	if err := f.ensureOpen(); err != nil {
		return domain.Charge{}, err
	}
	description = strings.TrimSpace(description)
	if err := billing.ValidateManualCharge(description, amount); err != nil {
		return domain.Charge{}, err
	}

	charge := domain.Charge{
		ID:          xid.New("chg"),
		Kind:        domain.ChargeKindManual,
		Description: description,
		Amount:      amount,
		CreatedBy:   actor,
		CreatedAt:   at.UTC(),
	}
	f.stay.Charges = append(f.stay.Charges, charge)
	f.stay.CheckoutPhase = domain.CheckoutAdjusting
	return charge, nil
}

// RemoveCharge drops a manual charge. Charges raised at check-in are fixed.
func (f *Folio) RemoveCharge(chargeID string) (domain.Charge, error) {
	if err := f.ensureOpen(); err != nil {
		return domain.Charge{}, err
	}
	for i, charge := range f.stay.Charges {
		if charge.ID != chargeID {
			continue
		}
		if charge.Kind != domain.ChargeKindManual {
			return domain.Charge{}, &billing.PolicyViolation{Reason: "only manual charges can be removed"}
		}
		f.stay.Charges = append(f.stay.Charges[:i:i], f.stay.Charges[i+1:]...)
		f.stay.CheckoutPhase = domain.CheckoutAdjusting
		return charge, nil
	}
	return domain.Charge{}, ErrChargeNotFound
}

func (f *Folio) SetExtraNights(extraNights int) error {
	if err := f.ensureOpen(); err != nil {
		return err
	}
	if extraNights < 0 {
		return &billing.ValidationError{Field: "extra_nights", Reason: "must not be negative"}
	}
	f.stay.ExtraNights = extraNights
	f.stay.CheckoutPhase = domain.CheckoutAdjusting
	return nil
}

func (f *Folio) ApplyPayment(method string, amount decimal.Decimal, reference string, actor string, at time.Time) (domain.Payment, error) {
	if err := f.ensureOpen(); err != nil {
		return domain.Payment{}, err
	}
	method = normalizeMethod(method)
	if err := ValidatePayment("method", method, amount, reference); err != nil {
		return domain.Payment{}, err
	}

	payment := f.record(method, amount, reference, actor, at)
	f.stay.CheckoutPhase = domain.CheckoutAdjusting
	return payment, nil
}

func (f *Folio) CheckPrint() error {
	return billing.CheckPrint(f.branch.GSTEnabled)
}

// Complete closes the stay. A positive balance is settled in full with
// paymentMethod; without one the checkout is refused. Settlements follow the
// same rules as ApplyPayment.
func (f *Folio) Complete(paymentMethod string, reference string, actor string, at time.Time) (domain.BillingResult, *domain.Payment, error) {
	if err := f.ensureOpen(); err != nil {
		return domain.BillingResult{}, nil, err
	}

	result, err := f.Bill()
	if err != nil {
		return domain.BillingResult{}, nil, err
	}
	paymentMethod = normalizeMethod(paymentMethod)
	if err := billing.CheckCompletion(result, paymentMethod); err != nil {
		return domain.BillingResult{}, nil, err
	}
	if paymentMethod != "" && !IsSupportedPaymentMethod(paymentMethod) {
		return domain.BillingResult{}, nil, &billing.ValidationError{Field: "payment_method", Reason: "unsupported payment method"}
	}

	var settled *domain.Payment
	if result.BalanceDue.IsPositive() {
		if err := ValidatePayment("payment_method", paymentMethod, result.BalanceDue, reference); err != nil {
			return domain.BillingResult{}, nil, err
		}
		payment := f.record(paymentMethod, result.BalanceDue, reference, actor, at)
		settled = &payment
		if result, err = f.Bill(); err != nil {
			return domain.BillingResult{}, nil, err
		}
	}

	closedAt := at.UTC()
	f.stay.Status = domain.StayStatusCheckedOut
	f.stay.CheckoutPhase = domain.CheckoutCompleted
	f.stay.FinalBill = &result
	f.stay.CheckedOutAt = &closedAt
	f.stay.CheckedOutBy = actor
	return result, settled, nil
}

func (f *Folio) record(method string, amount decimal.Decimal, reference string, actor string, at time.Time) domain.Payment {
	payment := domain.Payment{
		ID:         xid.New("pay"),
		StayID:     f.stay.ID,
		BranchID:   f.stay.BranchID,
		Method:     method,
		Amount:     amount,
		Reference:  strings.TrimSpace(reference),
		ReceiptNo:  xid.Number("RCP", at),
		ReceivedBy: actor,
		ReceivedAt: at.UTC(),
	}
	f.stay.Payments = append(f.stay.Payments, payment)
	f.stay.AmountPaid = f.stay.AmountPaid.Add(amount)
	return payment
}

// ValidatePayment applies the rules every recorded payment follows. method
// must already be normalized; methodField names the request field it came from.
func ValidatePayment(methodField string, method string, amount decimal.Decimal, reference string) error {
	if !IsSupportedPaymentMethod(method) {
		return &billing.ValidationError{Field: methodField, Reason: "unsupported payment method"}
	}
	if !amount.IsPositive() {
		return &billing.ValidationError{Field: "amount", Reason: "must be greater than zero"}
	}
	if method != domain.PaymentCash && method != domain.PaymentCompany && strings.TrimSpace(reference) == "" {
		return &billing.ValidationError{Field: "reference", Reason: "is required for non-cash payments"}
	}
	return nil
}

func (f *Folio) ensureOpen() error {
	if f.stay.Status == domain.StayStatusCheckedOut {
		return &billing.PolicyViolation{Reason: ReasonStayClosed}
	}
	return nil
}

func IsSupportedPaymentMethod(method string) bool {
	switch method {
	case domain.PaymentCash, domain.PaymentCard, domain.PaymentUPI, domain.PaymentBank, domain.PaymentCompany:
		return true
	default:
		return false
	}
}

func normalizeMethod(method string) string {
	return strings.ToLower(strings.TrimSpace(method))
}
