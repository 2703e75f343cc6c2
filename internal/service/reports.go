package service

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"frontoffice/internal/domain"
)

var paymentMethodOrder = []string{domain.PaymentCash, domain.PaymentCard, domain.PaymentUPI, domain.PaymentBank, domain.PaymentCompany}

func (s *Service) DailyReport(ctx context.Context, branchID string, date string) (domain.DailyReport, error) {
	branch, err := s.resolveBranch(ctx, branchID)
	if err != nil {
		return domain.DailyReport{}, err
	}
	from, to, err := s.dayRange(date)
	if err != nil {
		return domain.DailyReport{}, err
	}

	checkIns, err := s.repo.CountCheckIns(ctx, branch.ID, from, to)
	if err != nil {
		return domain.DailyReport{}, err
	}
	checkedOut, err := s.repo.ListCheckedOutStays(ctx, branch.ID, from, to)
	if err != nil {
		return domain.DailyReport{}, err
	}
	payments, err := s.repo.ListPayments(ctx, branch.ID, from, to)
	if err != nil {
		return domain.DailyReport{}, err
	}
	rooms, err := s.repo.ListRooms(ctx, branch.ID)
	if err != nil {
		return domain.DailyReport{}, err
	}

	report := domain.DailyReport{
		BranchID:      branch.ID,
		Date:          from.Format("2006-01-02"),
		CheckIns:      checkIns,
		CheckOuts:     int64(len(checkedOut)),
		RoomRevenue:   decimal.Zero,
		GSTCollected:  decimal.Zero,
		TotalBilled:   decimal.Zero,
		PaymentsTotal: decimal.Zero,
		ByPayment:     make([]domain.DailyReportPayment, 0, len(paymentMethodOrder)),
	}
	for _, stay := range checkedOut {
		if stay.FinalBill == nil {
			continue
		}
		report.RoomRevenue = report.RoomRevenue.Add(stay.FinalBill.Subtotal)
		report.GSTCollected = report.GSTCollected.Add(stay.FinalBill.TaxAmount)
		report.TotalBilled = report.TotalBilled.Add(stay.FinalBill.Total)
	}

	byMethod := make(map[string]*domain.DailyReportPayment, len(paymentMethodOrder))
	for _, payment := range payments {
		entry, ok := byMethod[payment.Method]
		if !ok {
			entry = &domain.DailyReportPayment{Method: payment.Method, Amount: decimal.Zero}
			byMethod[payment.Method] = entry
		}
		entry.Payments++
		entry.Amount = entry.Amount.Add(payment.Amount)
		report.PaymentsTotal = report.PaymentsTotal.Add(payment.Amount)
	}
	for _, method := range paymentMethodOrder {
		if entry, ok := byMethod[method]; ok {
			report.ByPayment = append(report.ByPayment, *entry)
		}
	}

	counts := roomStatusCounts(rooms)
	report.RoomsOccupied = counts[domain.RoomOccupied]
	report.RoomsAvailable = counts[domain.RoomAvailable]
	report.OccupancyRate = occupancyRate(report.RoomsOccupied, len(rooms))
	return report, nil
}

// ListAuditLogs returns one day of a branch's audit trail, newest first,
// optionally narrowed to an action or actor.
func (s *Service) ListAuditLogs(ctx context.Context, branchID string, date string, action string, actor string, limit int) ([]domain.AuditLog, error) {
	branch, err := s.resolveBranch(ctx, branchID)
	if err != nil {
		return nil, err
	}
	if limit < 1 {
		limit = 100
	}
	from, to, err := s.dayRange(date)
	if err != nil {
		return nil, err
	}

	return s.repo.ListAuditLogs(ctx, domain.AuditLogQuery{
		BranchID: branch.ID,
		From:     from,
		To:       to,
		Action:   strings.TrimSpace(action),
		Actor:    strings.TrimSpace(actor),
		Limit:    limit,
	})
}
