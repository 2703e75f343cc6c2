package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"frontoffice/internal/billing"
	"frontoffice/internal/domain"
	"frontoffice/internal/xid"
)

const companyBillTermDays = 10

func (s *Service) CreateCompany(ctx context.Context, req domain.CompanyCreateRequest) (domain.Company, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Company{}, &billing.ValidationError{Field: "name", Reason: "is required"}
	}
	if req.CreditLimit.IsNegative() {
		return domain.Company{}, &billing.ValidationError{Field: "credit_limit", Reason: "must not be negative"}
	}

	created, err := s.repo.CreateCompany(ctx, domain.Company{
		ID:          xid.New("co"),
		Name:        name,
		GSTIN:       strings.ToUpper(strings.TrimSpace(req.GSTIN)),
		ContactName: strings.TrimSpace(req.ContactName),
		Phone:       strings.TrimSpace(req.Phone),
		Email:       strings.TrimSpace(req.Email),
		CreditLimit: req.CreditLimit,
		CreatedAt:   s.now(),
	})
	if err != nil {
		return domain.Company{}, err
	}
	return *created, nil
}

func (s *Service) ListCompanies(ctx context.Context) ([]domain.Company, error) {
	return s.repo.ListCompanies(ctx)
}

// GenerateCompanyBill bills a company for every stay charged to it that
// checked out between From and To (inclusive dates) and is not yet billed.
func (s *Service) GenerateCompanyBill(ctx context.Context, req domain.CompanyBillRequest) (domain.CompanyBill, error) {
	branch, err := s.resolveBranch(ctx, req.BranchID)
	if err != nil {
		return domain.CompanyBill{}, err
	}
	company, err := s.repo.GetCompany(ctx, strings.TrimSpace(req.CompanyID))
	if err != nil {
		return domain.CompanyBill{}, err
	}

	from, _, err := s.dayRange(req.From)
	if err != nil {
		return domain.CompanyBill{}, &billing.ValidationError{Field: "from", Reason: "must be YYYY-MM-DD"}
	}
	lastDay, to, err := s.dayRange(req.To)
	if err != nil {
		return domain.CompanyBill{}, &billing.ValidationError{Field: "to", Reason: "must be YYYY-MM-DD"}
	}
	if lastDay.Before(from) {
		return domain.CompanyBill{}, &billing.ValidationError{Field: "to", Reason: "must not be before from"}
	}

	existing, err := s.repo.ListCompanyBills(ctx, branch.ID, company.ID)
	if err != nil {
		return domain.CompanyBill{}, err
	}
	billed := make(map[string]struct{})
	for _, bill := range existing {
		for _, stayID := range bill.StayIDs {
			billed[stayID] = struct{}{}
		}
	}

	stays, err := s.repo.ListCheckedOutStays(ctx, branch.ID, from, to)
	if err != nil {
		return domain.CompanyBill{}, err
	}

	now := s.now()
	bill := domain.CompanyBill{
		ID:         xid.New("cb"),
		BillNumber: xid.Number("CB", now),
		CompanyID:  company.ID,
		BranchID:   branch.ID,
		Amount:     decimal.Zero,
		Status:     domain.BillStatusPending,
		PeriodFrom: from,
		PeriodTo:   lastDay,
		IssuedAt:   now,
		DueDate:    now.AddDate(0, 0, companyBillTermDays),
	}
	for _, stay := range stays {
		if stay.CompanyID != company.ID || stay.FinalBill == nil {
			continue
		}
		if _, ok := billed[stay.ID]; ok {
			continue
		}
		bill.StayIDs = append(bill.StayIDs, stay.ID)
		bill.Rooms = append(bill.Rooms, stay.RoomNumber)
		bill.Nights += stay.OriginalNights + stay.ExtraNights
		bill.Amount = bill.Amount.Add(stay.FinalBill.Subtotal)
	}
	if len(bill.StayIDs) == 0 {
		return domain.CompanyBill{}, &billing.PolicyViolation{Reason: "no unbilled completed stays for this company in the period"}
	}
	bill.GSTAmount = billing.Tax(bill.Amount, branch.GSTEnabled)
	bill.TotalAmount = bill.Amount.Add(bill.GSTAmount)

	created, err := s.repo.CreateCompanyBill(ctx, bill)
	if err != nil {
		return domain.CompanyBill{}, err
	}

	s.logAudit(ctx, branch.ID, domain.AuditCompanyBill, "company_bill", created.ID, fmt.Sprintf("company=%s,stays=%d,total=%s", company.Name, len(created.StayIDs), created.TotalAmount.String()))
	return *created, nil
}

func (s *Service) ListCompanyBills(ctx context.Context, branchID string, companyID string, status string) (domain.CompanyBillListResponse, error) {
	branch, err := s.resolveBranch(ctx, branchID)
	if err != nil {
		return domain.CompanyBillListResponse{}, err
	}
	bills, err := s.repo.ListCompanyBills(ctx, branch.ID, strings.TrimSpace(companyID))
	if err != nil {
		return domain.CompanyBillListResponse{}, err
	}

	now := s.now()
	status = strings.TrimSpace(status)
	resp := domain.CompanyBillListResponse{
		Bills:        make([]domain.CompanyBill, 0, len(bills)),
		TotalPending: decimal.Zero,
		TotalPaid:    decimal.Zero,
	}
	for _, bill := range bills {
		bill.Status = BillStatus(bill, now)
		if status != "" && !strings.EqualFold(bill.Status, status) {
			continue
		}
		if bill.Status == domain.BillStatusPaid {
			resp.TotalPaid = resp.TotalPaid.Add(bill.TotalAmount)
		} else {
			resp.TotalPending = resp.TotalPending.Add(bill.TotalAmount)
		}
		resp.Bills = append(resp.Bills, bill)
	}
	return resp, nil
}

func (s *Service) MarkCompanyBillPaid(ctx context.Context, billID string) (domain.CompanyBill, error) {
	bill, err := s.repo.GetCompanyBill(ctx, strings.TrimSpace(billID))
	if err != nil {
		return domain.CompanyBill{}, err
	}
	if _, err := s.resolveBranch(ctx, bill.BranchID); err != nil {
		return domain.CompanyBill{}, err
	}
	if bill.PaidAt != nil {
		return domain.CompanyBill{}, &billing.PolicyViolation{Reason: "company bill already paid"}
	}

	paid, err := s.repo.MarkCompanyBillPaid(ctx, bill.ID, s.now())
	if err != nil {
		return domain.CompanyBill{}, err
	}

	s.logAudit(ctx, paid.BranchID, domain.AuditCompanyBill, "company_bill", paid.ID, fmt.Sprintf("paid=%s", paid.TotalAmount.String()))
	return *paid, nil
}

// BillStatus derives Overdue from a pending bill whose due date has passed.
func BillStatus(bill domain.CompanyBill, now time.Time) string {
	if bill.PaidAt != nil {
		return domain.BillStatusPaid
	}
	if now.After(bill.DueDate) {
		return domain.BillStatusOverdue
	}
	return domain.BillStatusPending
}
