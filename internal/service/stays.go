package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"frontoffice/internal/billing"
	"frontoffice/internal/domain"
	"frontoffice/internal/events"
	"frontoffice/internal/folio"
	"frontoffice/internal/store"
	"frontoffice/internal/xid"
)

var serviceChargeRate = decimal.NewFromInt(10).Div(decimal.NewFromInt(100))

func (s *Service) Quote(ctx context.Context, req domain.QuoteRequest) (domain.QuoteResponse, error) {
	branch, err := s.resolveBranch(ctx, req.BranchID)
	if err != nil {
		return domain.QuoteResponse{}, err
	}

	result, err := billing.Compute(req.Charges, req.ExtraNights, req.NightlyRate, branch.GSTEnabled, req.AmountPaid)
	if err != nil {
		return domain.QuoteResponse{}, err
	}
	return domain.QuoteResponse{
		Branch:       branch,
		Billing:      result,
		PrintAllowed: billing.PrintAllowed(branch.GSTEnabled),
	}, nil
}

func (s *Service) CheckIn(ctx context.Context, req domain.CheckInRequest) (domain.FolioResponse, error) {
	branch, err := s.resolveBranch(ctx, req.BranchID)
	if err != nil {
		return domain.FolioResponse{}, err
	}

	req.GuestName = strings.TrimSpace(req.GuestName)
	req.RoomNumber = strings.TrimSpace(req.RoomNumber)
	req.CompanyID = strings.TrimSpace(req.CompanyID)
	req.PaymentMethod = strings.ToLower(strings.TrimSpace(req.PaymentMethod))
	phone, err := normalizePhone(req.Phone)
	if err != nil {
		return domain.FolioResponse{}, err
	}

	switch {
	case req.GuestName == "":
		return domain.FolioResponse{}, &billing.ValidationError{Field: "guest_name", Reason: "is required"}
	case req.RoomNumber == "":
		return domain.FolioResponse{}, &billing.ValidationError{Field: "room_number", Reason: "is required"}
	case req.Nights < 1:
		return domain.FolioResponse{}, &billing.ValidationError{Field: "nights", Reason: "must be at least 1"}
	case req.AdvancePaid.IsNegative():
		return domain.FolioResponse{}, &billing.ValidationError{Field: "advance_paid", Reason: "must not be negative"}
	}
	if req.AdvancePaid.IsPositive() {
		if err := folio.ValidatePayment("payment_method", req.PaymentMethod, req.AdvancePaid, req.Reference); err != nil {
			return domain.FolioResponse{}, err
		}
	}

	if req.CompanyID != "" {
		if _, err := s.repo.GetCompany(ctx, req.CompanyID); err != nil {
			return domain.FolioResponse{}, err
		}
	}

	room, err := s.repo.GetRoom(ctx, branch.ID, req.RoomNumber)
	if err != nil {
		return domain.FolioResponse{}, err
	}
	if room.Status != domain.RoomAvailable {
		return domain.FolioResponse{}, store.ErrRoomUnavailable
	}

	now := s.now()
	actor := actorName(ctx)
	stayID := xid.New("stay")
	roomCharge := room.NightlyRate.Mul(decimal.NewFromInt(int64(req.Nights)))
	stay := domain.Stay{
		ID:             stayID,
		BranchID:       branch.ID,
		RoomNumber:     room.Number,
		GuestName:      req.GuestName,
		Phone:          phone,
		IDProofType:    strings.TrimSpace(req.IDProofType),
		IDProofNumber:  strings.TrimSpace(req.IDProofNumber),
		CompanyID:      req.CompanyID,
		CheckInAt:      now,
		OriginalNights: req.Nights,
		NightlyRate:    room.NightlyRate,
		Charges: []domain.Charge{
			{ID: xid.New("chg"), Kind: domain.ChargeKindBase, Description: fmt.Sprintf("Room Charge (%d nights)", req.Nights), Amount: roomCharge, CreatedBy: actor, CreatedAt: now},
			{ID: xid.New("chg"), Kind: domain.ChargeKindService, Description: "Service Charge", Amount: roomCharge.Mul(serviceChargeRate).Round(0), CreatedBy: actor, CreatedAt: now},
		},
		Payments:   []domain.Payment{},
		AmountPaid: decimal.Zero,
		Status:     domain.StayStatusOpen,
	}

	var advance *domain.Payment
	if req.AdvancePaid.IsPositive() {
		payment := domain.Payment{
			ID:         xid.New("pay"),
			StayID:     stayID,
			BranchID:   branch.ID,
			Method:     req.PaymentMethod,
			Amount:     req.AdvancePaid,
			Reference:  strings.TrimSpace(req.Reference),
			ReceiptNo:  xid.Number("RCP", now),
			ReceivedBy: actor,
			ReceivedAt: now,
		}
		stay.Payments = append(stay.Payments, payment)
		stay.AmountPaid = req.AdvancePaid
		advance = &payment
	}

	created, err := s.repo.CreateStay(ctx, stay)
	if err != nil {
		return domain.FolioResponse{}, err
	}

	s.invalidateDashboard(ctx, branch.ID)
	s.logAudit(ctx, branch.ID, domain.AuditCheckIn, "stay", created.ID, fmt.Sprintf("room=%s,guest=%s,nights=%d", created.RoomNumber, created.GuestName, created.OriginalNights))
	if advance != nil {
		s.publish(ctx, paymentEvent(*advance))
	}

	f, err := folio.Open(*created, branch)
	if err != nil {
		return domain.FolioResponse{}, err
	}
	return folioResponse(f)
}

// SearchStays looks up open stays for checkout. An empty result leaves the
// desk in the searching state.
func (s *Service) SearchStays(ctx context.Context, branchID string, search domain.StaySearch) (domain.StaySearchResponse, error) {
	branch, err := s.resolveBranch(ctx, branchID)
	if err != nil {
		return domain.StaySearchResponse{}, err
	}

	search.By = strings.ToLower(strings.TrimSpace(search.By))
	search.Query = strings.TrimSpace(search.Query)
	switch search.By {
	case "", "name", "room", "phone":
	default:
		return domain.StaySearchResponse{}, &billing.ValidationError{Field: "by", Reason: "must be name, room or phone"}
	}
	if search.Query == "" {
		return domain.StaySearchResponse{}, &billing.ValidationError{Field: "query", Reason: "is required"}
	}

	stays, err := s.repo.SearchOpenStays(ctx, branch.ID, search)
	if err != nil {
		return domain.StaySearchResponse{}, err
	}

	resp := domain.StaySearchResponse{State: domain.CheckoutSearching, Stays: make([]domain.StaySummary, 0, len(stays))}
	for _, stay := range stays {
		resp.Stays = append(resp.Stays, domain.StaySummary{
			ID:         stay.ID,
			RoomNumber: stay.RoomNumber,
			GuestName:  stay.GuestName,
			Phone:      stay.Phone,
			CheckInAt:  stay.CheckInAt,
			AmountPaid: stay.AmountPaid,
		})
	}
	if len(resp.Stays) > 0 {
		resp.State = domain.CheckoutFound
	}
	return resp, nil
}

func (s *Service) GetFolio(ctx context.Context, stayID string) (domain.FolioResponse, error) {
	f, err := s.openFolio(ctx, stayID)
	if err != nil {
		return domain.FolioResponse{}, err
	}
	return folioResponse(f)
}

func (s *Service) AddManualCharge(ctx context.Context, stayID string, req domain.ManualChargeRequest) (domain.FolioResponse, error) {
	var added domain.Charge
	f, err := s.mutate(ctx, stayID, req.ExpectedVersion, func(f *folio.Folio) error {
		charge, err := f.AddManualCharge(req.Description, req.Amount, actorName(ctx), s.now())
		added = charge
		return err
	})
	if err != nil {
		return domain.FolioResponse{}, err
	}

	s.logAudit(ctx, f.Stay().BranchID, domain.AuditCharge, "stay", stayID, fmt.Sprintf("add=%s,amount=%s", added.Description, added.Amount.String()))
	return folioResponse(f)
}

func (s *Service) RemoveCharge(ctx context.Context, stayID string, chargeID string, expectedVersion int64) (domain.FolioResponse, error) {
	var removed domain.Charge
	f, err := s.mutate(ctx, stayID, expectedVersion, func(f *folio.Folio) error {
		charge, err := f.RemoveCharge(chargeID)
		removed = charge
		return err
	})
	if err != nil {
		return domain.FolioResponse{}, err
	}

	s.logAudit(ctx, f.Stay().BranchID, domain.AuditCharge, "stay", stayID, fmt.Sprintf("remove=%s,amount=%s", removed.Description, removed.Amount.String()))
	return folioResponse(f)
}

func (s *Service) SetExtraNights(ctx context.Context, stayID string, req domain.ExtraNightsRequest) (domain.FolioResponse, error) {
	f, err := s.mutate(ctx, stayID, req.ExpectedVersion, func(f *folio.Folio) error {
		return f.SetExtraNights(req.ExtraNights)
	})
	if err != nil {
		return domain.FolioResponse{}, err
	}

	s.logAudit(ctx, f.Stay().BranchID, domain.AuditCharge, "stay", stayID, fmt.Sprintf("extra_nights=%d", req.ExtraNights))
	return folioResponse(f)
}

func (s *Service) CollectPayment(ctx context.Context, stayID string, req domain.CollectPaymentRequest) (domain.FolioResponse, error) {
	var received domain.Payment
	f, err := s.mutate(ctx, stayID, req.ExpectedVersion, func(f *folio.Folio) error {
		payment, err := f.ApplyPayment(req.Method, req.Amount, req.Reference, actorName(ctx), s.now())
		received = payment
		return err
	})
	if err != nil {
		return domain.FolioResponse{}, err
	}

	s.logAudit(ctx, f.Stay().BranchID, domain.AuditPayment, "payment", received.ID, fmt.Sprintf("stay=%s,method=%s,amount=%s,receipt=%s", stayID, received.Method, received.Amount.String(), received.ReceiptNo))
	s.publish(ctx, paymentEvent(received))
	return folioResponse(f)
}

func (s *Service) PrintInvoice(ctx context.Context, stayID string) (domain.InvoiceResponse, error) {
	f, err := s.openFolio(ctx, stayID)
	if err != nil {
		return domain.InvoiceResponse{}, err
	}
	if err := f.CheckPrint(); err != nil {
		return domain.InvoiceResponse{}, err
	}
	result, err := f.Bill()
	if err != nil {
		return domain.InvoiceResponse{}, err
	}

	now := s.now()
	invoiceNumber := xid.Number("INV", now)
	html, err := renderInvoice(invoiceView{
		InvoiceNumber: invoiceNumber,
		IssuedAt:      now,
		Branch:        f.Branch(),
		Stay:          f.Stay(),
		Billing:       result,
	})
	if err != nil {
		return domain.InvoiceResponse{}, err
	}

	s.logAudit(ctx, f.Stay().BranchID, domain.AuditInvoice, "stay", stayID, fmt.Sprintf("invoice=%s,total=%s", invoiceNumber, result.Total.String()))
	return domain.InvoiceResponse{InvoiceNumber: invoiceNumber, StayID: stayID, HTML: html}, nil
}

func (s *Service) CompleteCheckout(ctx context.Context, stayID string, req domain.CompleteCheckoutRequest) (domain.CheckoutResponse, error) {
	var (
		result  domain.BillingResult
		settled *domain.Payment
	)
	f, err := s.mutate(ctx, stayID, req.ExpectedVersion, func(f *folio.Folio) error {
		var err error
		result, settled, err = f.Complete(req.PaymentMethod, req.Reference, actorName(ctx), s.now())
		return err
	})
	if err != nil {
		return domain.CheckoutResponse{}, err
	}

	stay := f.Stay()
	s.invalidateDashboard(ctx, stay.BranchID)
	s.logAudit(ctx, stay.BranchID, domain.AuditCheckOut, "stay", stay.ID, fmt.Sprintf("room=%s,total=%s,paid=%s", stay.RoomNumber, result.Total.String(), stay.AmountPaid.String()))
	if settled != nil {
		s.publish(ctx, paymentEvent(*settled))
	}
	s.publish(ctx, events.StayCheckedOutEvent{
		StayID:       stay.ID,
		BranchID:     stay.BranchID,
		RoomNumber:   stay.RoomNumber,
		GuestName:    stay.GuestName,
		Subtotal:     result.Subtotal,
		TaxAmount:    result.TaxAmount,
		Total:        result.Total,
		CheckedOutBy: stay.CheckedOutBy,
		CheckedOutAt: *stay.CheckedOutAt,
	})

	return domain.CheckoutResponse{
		StayID:       stay.ID,
		RoomNumber:   stay.RoomNumber,
		State:        f.State(),
		Billing:      result,
		Payment:      settled,
		CheckedOutAt: stay.CheckedOutAt.Format(time.RFC3339),
	}, nil
}

func (s *Service) OutstandingBalances(ctx context.Context, branchID string) ([]domain.OutstandingBalance, error) {
	branch, err := s.resolveBranch(ctx, branchID)
	if err != nil {
		return nil, err
	}
	stays, err := s.repo.ListOpenStays(ctx, branch.ID)
	if err != nil {
		return nil, err
	}

	out := make([]domain.OutstandingBalance, 0, len(stays))
	for _, stay := range stays {
		result, err := billing.Compute(stay.Charges, stay.ExtraNights, stay.NightlyRate, branch.GSTEnabled, stay.AmountPaid)
		if err != nil {
			return nil, err
		}
		if !result.BalanceDue.IsPositive() {
			continue
		}
		out = append(out, domain.OutstandingBalance{
			StayID:     stay.ID,
			GuestName:  stay.GuestName,
			RoomNumber: stay.RoomNumber,
			BalanceDue: result.BalanceDue,
			CheckInAt:  stay.CheckInAt,
		})
	}
	return out, nil
}

func (s *Service) openFolio(ctx context.Context, stayID string) (*folio.Folio, error) {
	stay, err := s.repo.GetStay(ctx, strings.TrimSpace(stayID))
	if err != nil {
		return nil, err
	}
	branch, err := s.resolveBranch(ctx, stay.BranchID)
	if err != nil {
		return nil, err
	}
	return folio.Open(*stay, branch)
}

// mutate applies fn to a fresh folio and persists the result against the
// version the caller last saw. expectedVersion 0 means the version just read.
func (s *Service) mutate(ctx context.Context, stayID string, expectedVersion int64, fn func(f *folio.Folio) error) (*folio.Folio, error) {
	f, err := s.openFolio(ctx, stayID)
	if err != nil {
		return nil, err
	}
	version := f.Stay().Version
	if expectedVersion != 0 && expectedVersion != version {
		return nil, store.ErrVersionConflict
	}

	if err := fn(f); err != nil {
		return nil, err
	}

	saved, err := s.repo.UpdateStay(ctx, f.Stay(), version)
	if err != nil {
		return nil, err
	}
	return folio.Open(*saved, f.Branch())
}

func folioResponse(f *folio.Folio) (domain.FolioResponse, error) {
	result, err := f.Bill()
	if err != nil {
		return domain.FolioResponse{}, err
	}

	resp := domain.FolioResponse{
		Stay:         f.Stay(),
		Branch:       f.Branch(),
		Billing:      result,
		State:        f.State(),
		PrintAllowed: billing.PrintAllowed(f.Branch().GSTEnabled),
	}
	if !resp.PrintAllowed {
		resp.PrintRefusal = billing.ReasonNonGSTBranch
	}
	return resp, nil
}

func paymentEvent(payment domain.Payment) events.PaymentReceivedEvent {
	return events.PaymentReceivedEvent{
		PaymentID:  payment.ID,
		StayID:     payment.StayID,
		BranchID:   payment.BranchID,
		Method:     payment.Method,
		Amount:     payment.Amount,
		ReceiptNo:  payment.ReceiptNo,
		ReceivedAt: payment.ReceivedAt,
	}
}

// normalizePhone accepts an optional leading + followed by 10 to 15 digits.
// Spaces and hyphens are dropped.
func normalizePhone(raw string) (string, error) {
	phone := strings.NewReplacer(" ", "", "-", "").Replace(strings.TrimSpace(raw))
	digits := strings.TrimPrefix(phone, "+")
	if len(digits) < 10 || len(digits) > 15 {
		return "", &billing.ValidationError{Field: "phone", Reason: "must have 10 to 15 digits"}
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return "", &billing.ValidationError{Field: "phone", Reason: "must contain digits only"}
		}
	}
	return phone, nil
}
