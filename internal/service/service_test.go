package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"frontoffice/internal/billing"
	"frontoffice/internal/domain"
	"frontoffice/internal/events"
	"frontoffice/internal/store"
	"frontoffice/internal/store/memory"
)

type recordingPublisher struct {
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, event events.Event) error {
	p.events = append(p.events, event)
	return nil
}

type recordingCache struct {
	stored      map[string]domain.DashboardStats
	invalidated []string
}

func newRecordingCache() *recordingCache {
	return &recordingCache{stored: make(map[string]domain.DashboardStats)}
}

func (c *recordingCache) Get(_ context.Context, branchID string) (*domain.DashboardStats, bool, error) {
	stats, ok := c.stored[branchID]
	if !ok {
		return nil, false, nil
	}
	return &stats, true, nil
}

func (c *recordingCache) Set(_ context.Context, branchID string, value *domain.DashboardStats, _ time.Duration) error {
	c.stored[branchID] = *value
	return nil
}

func (c *recordingCache) Invalidate(_ context.Context, branchID string) error {
	delete(c.stored, branchID)
	c.invalidated = append(c.invalidated, branchID)
	return nil
}

func newTestService() (*Service, *memory.Store) {
	repo := memory.NewSeeded()
	return New(repo, billing.MustDefaultPolicyTable(), "anna-salai"), repo
}

func frontDeskContext(branchID string) context.Context {
	return WithActor(context.Background(), domain.Actor{
		Username: "frontdesk",
		Role:     domain.RoleFrontOffice,
		BranchID: branchID,
	})
}

func amount(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func TestGetFolioForSeededStay(t *testing.T) {
	svc, _ := newTestService()

	resp, err := svc.GetFolio(frontDeskContext("anna-salai"), memory.SeedStayID)
	if err != nil {
		t.Fatalf("get folio: %v", err)
	}
	if resp.State != domain.CheckoutAwaitingPayment {
		t.Fatalf("expected awaiting_payment for an unpaid stay, got %s", resp.State)
	}
	if !resp.Billing.Subtotal.Equal(amount(8250)) || !resp.Billing.TaxAmount.Equal(amount(1485)) {
		t.Fatalf("unexpected billing %+v", resp.Billing)
	}
	if !resp.Billing.BalanceDue.Equal(amount(4735)) {
		t.Fatalf("expected balance 4735, got %s", resp.Billing.BalanceDue)
	}
	if !resp.PrintAllowed {
		t.Fatalf("expected GST branch to allow printing")
	}
}

func TestCheckoutAdjustmentsReachExpectedTotals(t *testing.T) {
	svc, repo := newTestService()
	publisher := &recordingPublisher{}
	svc.WithPublisher(publisher)
	ctx := frontDeskContext("anna-salai")

	if _, err := svc.SetExtraNights(ctx, memory.SeedStayID, domain.ExtraNightsRequest{ExtraNights: 1}); err != nil {
		t.Fatalf("set extra nights: %v", err)
	}
	resp, err := svc.AddManualCharge(ctx, memory.SeedStayID, domain.ManualChargeRequest{Description: "Laundry and minibar", Amount: amount(2500)})
	if err != nil {
		t.Fatalf("add manual charge: %v", err)
	}
	if !resp.Billing.Subtotal.Equal(amount(13250)) || !resp.Billing.TaxAmount.Equal(amount(2385)) {
		t.Fatalf("unexpected billing %+v", resp.Billing)
	}
	if !resp.Billing.Total.Equal(amount(15635)) || !resp.Billing.BalanceDue.Equal(amount(10635)) {
		t.Fatalf("unexpected totals %+v", resp.Billing)
	}
	if resp.State != domain.CheckoutAwaitingPayment {
		t.Fatalf("expected awaiting_payment, got %s", resp.State)
	}

	_, err = svc.CompleteCheckout(ctx, memory.SeedStayID, domain.CompleteCheckoutRequest{})
	if !billing.IsPolicyViolation(err) {
		t.Fatalf("expected policy violation without payment method, got %v", err)
	}

	done, err := svc.CompleteCheckout(ctx, memory.SeedStayID, domain.CompleteCheckoutRequest{PaymentMethod: "cash"})
	if err != nil {
		t.Fatalf("complete checkout: %v", err)
	}
	if done.State != domain.CheckoutCompleted {
		t.Fatalf("expected completed, got %s", done.State)
	}
	if done.Payment == nil || !done.Payment.Amount.Equal(amount(10635)) {
		t.Fatalf("expected settling payment of 10635, got %+v", done.Payment)
	}
	if !done.Billing.BalanceDue.IsZero() {
		t.Fatalf("expected zero balance after checkout, got %s", done.Billing.BalanceDue)
	}

	room, err := repo.GetRoom(context.Background(), "anna-salai", "101")
	if err != nil {
		t.Fatalf("get room: %v", err)
	}
	if room.Status != domain.RoomDirty {
		t.Fatalf("expected room 101 dirty after checkout, got %s", room.Status)
	}

	var sawCheckout, sawPayment bool
	for _, event := range publisher.events {
		switch event.RoutingKey() {
		case events.RoutingStayCheckedOut:
			sawCheckout = true
		case events.RoutingPaymentReceived:
			sawPayment = true
		}
	}
	if !sawCheckout || !sawPayment {
		t.Fatalf("expected checkout and payment events, got %+v", publisher.events)
	}

	_, err = svc.AddManualCharge(ctx, memory.SeedStayID, domain.ManualChargeRequest{Description: "Late", Amount: amount(100)})
	var violation *billing.PolicyViolation
	if !errors.As(err, &violation) || violation.Reason != "stay already checked out" {
		t.Fatalf("expected closed-stay violation, got %v", err)
	}
}

func TestStaleVersionIsRejected(t *testing.T) {
	svc, _ := newTestService()
	ctx := frontDeskContext("anna-salai")

	first, err := svc.AddManualCharge(ctx, memory.SeedStayID, domain.ManualChargeRequest{Description: "Room service", Amount: amount(400), ExpectedVersion: 1})
	if err != nil {
		t.Fatalf("first update: %v", err)
	}
	if first.Stay.Version != 2 {
		t.Fatalf("expected version 2, got %d", first.Stay.Version)
	}

	_, err = svc.AddManualCharge(ctx, memory.SeedStayID, domain.ManualChargeRequest{Description: "Room service", Amount: amount(400), ExpectedVersion: 1})
	if !errors.Is(err, store.ErrVersionConflict) {
		t.Fatalf("expected version conflict, got %v", err)
	}
}

func TestInvalidChargeLeavesStayUnchanged(t *testing.T) {
	svc, _ := newTestService()
	ctx := frontDeskContext("anna-salai")

	_, err := svc.AddManualCharge(ctx, memory.SeedStayID, domain.ManualChargeRequest{Description: "  ", Amount: amount(100)})
	if !billing.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}

	resp, err := svc.GetFolio(ctx, memory.SeedStayID)
	if err != nil {
		t.Fatalf("get folio: %v", err)
	}
	if resp.Stay.Version != 1 || len(resp.Stay.Charges) != 2 {
		t.Fatalf("expected untouched stay, got version %d with %d charges", resp.Stay.Version, len(resp.Stay.Charges))
	}
}

func TestCheckInOccupiesRoomAndRecordsAdvance(t *testing.T) {
	svc, repo := newTestService()
	ctx := frontDeskContext("anna-salai")

	req := domain.CheckInRequest{
		RoomNumber:    "102",
		GuestName:     "Priya Raman",
		Phone:         "+91 98400 12345",
		IDProofType:   "passport",
		IDProofNumber: "P1234567",
		Nights:        2,
		AdvancePaid:   amount(1000),
		PaymentMethod: "cash",
	}
	resp, err := svc.CheckIn(ctx, req)
	if err != nil {
		t.Fatalf("check in: %v", err)
	}
	if resp.Stay.BranchID != "anna-salai" {
		t.Fatalf("expected actor's branch, got %s", resp.Stay.BranchID)
	}
	if len(resp.Stay.Charges) != 2 {
		t.Fatalf("expected room and service charges, got %d", len(resp.Stay.Charges))
	}
	if !resp.Stay.Charges[0].Amount.Equal(amount(5000)) || !resp.Stay.Charges[1].Amount.Equal(amount(500)) {
		t.Fatalf("unexpected charges %+v", resp.Stay.Charges)
	}
	if resp.Stay.Phone != "+919840012345" {
		t.Fatalf("expected normalized phone, got %s", resp.Stay.Phone)
	}
	if !resp.Stay.AmountPaid.Equal(amount(1000)) || len(resp.Stay.Payments) != 1 {
		t.Fatalf("expected advance recorded as payment, got %+v", resp.Stay.Payments)
	}

	room, err := repo.GetRoom(context.Background(), "anna-salai", "102")
	if err != nil {
		t.Fatalf("get room: %v", err)
	}
	if room.Status != domain.RoomOccupied {
		t.Fatalf("expected occupied, got %s", room.Status)
	}

	if _, err := svc.CheckIn(ctx, req); !errors.Is(err, store.ErrRoomUnavailable) {
		t.Fatalf("expected room unavailable, got %v", err)
	}
}

func TestCheckInValidatesInput(t *testing.T) {
	svc, _ := newTestService()
	ctx := frontDeskContext("anna-salai")

	cases := []domain.CheckInRequest{
		{RoomNumber: "102", GuestName: "Guest", Phone: "12345", Nights: 1},
		{RoomNumber: "102", GuestName: "", Phone: "9840012345", Nights: 1},
		{RoomNumber: "102", GuestName: "Guest", Phone: "9840012345", Nights: 0},
		{RoomNumber: "102", GuestName: "Guest", Phone: "9840012345", Nights: 1, AdvancePaid: amount(100), PaymentMethod: "cheque"},
	}
	for i, req := range cases {
		if _, err := svc.CheckIn(ctx, req); !billing.IsValidation(err) {
			t.Fatalf("case %d: expected validation error, got %v", i, err)
		}
	}
}

func TestNonGSTBranchRefusesInvoice(t *testing.T) {
	svc, _ := newTestService()
	ctx := frontDeskContext("bhavani-road")

	resp, err := svc.CheckIn(ctx, domain.CheckInRequest{
		RoomNumber: "201",
		GuestName:  "Arun",
		Phone:      "9876500000",
		Nights:     1,
	})
	if err != nil {
		t.Fatalf("check in: %v", err)
	}
	if !resp.Billing.TaxAmount.IsZero() {
		t.Fatalf("expected no tax at non-GST branch, got %s", resp.Billing.TaxAmount)
	}
	if resp.PrintAllowed || resp.PrintRefusal != billing.ReasonNonGSTBranch {
		t.Fatalf("expected print refusal, got allowed=%t reason=%q", resp.PrintAllowed, resp.PrintRefusal)
	}

	_, err = svc.PrintInvoice(ctx, resp.Stay.ID)
	var violation *billing.PolicyViolation
	if !errors.As(err, &violation) || violation.Reason != "non-GST branch" {
		t.Fatalf("expected non-GST refusal, got %v", err)
	}
}

func TestPrintInvoiceRendersEscapedHTML(t *testing.T) {
	svc, _ := newTestService()
	ctx := frontDeskContext("anna-salai")

	if _, err := svc.AddManualCharge(ctx, memory.SeedStayID, domain.ManualChargeRequest{Description: "<b>Minibar</b>", Amount: amount(300)}); err != nil {
		t.Fatalf("add charge: %v", err)
	}
	invoice, err := svc.PrintInvoice(ctx, memory.SeedStayID)
	if err != nil {
		t.Fatalf("print invoice: %v", err)
	}
	if invoice.InvoiceNumber == "" || invoice.HTML == "" {
		t.Fatalf("expected invoice number and html")
	}
	if !containsAll(invoice.HTML, "Rajesh Kumar", "&lt;b&gt;Minibar&lt;/b&gt;", "8550.00") {
		t.Fatalf("invoice html missing expected content: %s", invoice.HTML)
	}
}

func TestUnknownBranchIsRejected(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Quote(context.Background(), domain.QuoteRequest{BranchID: "nowhere"})
	if !errors.Is(err, billing.ErrUnknownBranch) {
		t.Fatalf("expected unknown branch, got %v", err)
	}
}

func TestQuoteUsesBranchPolicy(t *testing.T) {
	svc, _ := newTestService()

	resp, err := svc.Quote(context.Background(), domain.QuoteRequest{
		BranchID:    "bhavani-road",
		Charges:     []domain.Charge{{Amount: amount(7500)}, {Amount: amount(750)}},
		NightlyRate: amount(2500),
		AmountPaid:  amount(5000),
	})
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if !resp.Billing.Total.Equal(amount(8250)) || resp.PrintAllowed {
		t.Fatalf("unexpected quote %+v", resp)
	}
}

func TestStaffAreScopedToTheirBranch(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.ListRooms(frontDeskContext("anna-salai"), "erode-road", "", 0)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}

	admin := WithActor(context.Background(), domain.Actor{Username: "admin", Role: domain.RoleAdmin, BranchID: "anna-salai"})
	rooms, err := svc.ListRooms(admin, "erode-road", "", 2)
	if err != nil {
		t.Fatalf("admin list rooms: %v", err)
	}
	if len(rooms) != 3 {
		t.Fatalf("expected 3 rooms on floor 2, got %d", len(rooms))
	}
}

func TestSearchStaysReportsSearchingWhenEmpty(t *testing.T) {
	svc, _ := newTestService()
	ctx := frontDeskContext("anna-salai")

	found, err := svc.SearchStays(ctx, "", domain.StaySearch{By: "name", Query: "rajesh"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if found.State != domain.CheckoutFound || len(found.Stays) != 1 {
		t.Fatalf("expected one found stay, got %+v", found)
	}

	byPhone, err := svc.SearchStays(ctx, "", domain.StaySearch{By: "phone", Query: "98765 43210"})
	if err != nil {
		t.Fatalf("search by phone: %v", err)
	}
	if len(byPhone.Stays) != 1 {
		t.Fatalf("expected phone match, got %+v", byPhone)
	}

	missing, err := svc.SearchStays(ctx, "", domain.StaySearch{By: "room", Query: "303"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if missing.State != domain.CheckoutSearching || len(missing.Stays) != 0 {
		t.Fatalf("expected searching with no stays, got %+v", missing)
	}

	if _, err := svc.SearchStays(ctx, "", domain.StaySearch{By: "email", Query: "x"}); !billing.IsValidation(err) {
		t.Fatalf("expected validation error for unknown search field, got %v", err)
	}
}

func TestRoomStatusChangesInvalidateDashboard(t *testing.T) {
	svc, _ := newTestService()
	dashboard := newRecordingCache()
	svc.WithDashboardCache(dashboard, time.Minute)
	ctx := frontDeskContext("anna-salai")

	stats, err := svc.Dashboard(ctx, "")
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if stats.TotalRooms != 9 || stats.ByStatus[domain.RoomOccupied] != 1 || stats.InHouseGuests != 1 {
		t.Fatalf("unexpected dashboard %+v", stats)
	}
	if _, ok := dashboard.stored["anna-salai"]; !ok {
		t.Fatalf("expected dashboard to be cached")
	}

	if _, err := svc.UpdateRoomStatus(ctx, "", "101", domain.RoomDirty); !billing.IsPolicyViolation(err) {
		t.Fatalf("expected occupied room to be protected, got %v", err)
	}
	if _, err := svc.UpdateRoomStatus(ctx, "", "102", domain.RoomOccupied); !billing.IsPolicyViolation(err) {
		t.Fatalf("expected manual occupied to be refused, got %v", err)
	}
	if _, err := svc.UpdateRoomStatus(ctx, "", "102", "flooded"); !billing.IsValidation(err) {
		t.Fatalf("expected unknown status to be invalid, got %v", err)
	}

	room, err := svc.UpdateRoomStatus(ctx, "", "102", domain.RoomMaintenance)
	if err != nil {
		t.Fatalf("update room status: %v", err)
	}
	if room.Status != domain.RoomMaintenance {
		t.Fatalf("expected maintenance, got %s", room.Status)
	}
	if _, ok := dashboard.stored["anna-salai"]; ok {
		t.Fatalf("expected dashboard cache to be invalidated")
	}
}

func TestCompanyBillLifecycle(t *testing.T) {
	svc, _ := newTestService()
	ctx := frontDeskContext("anna-salai")
	today := time.Now().UTC().Format("2006-01-02")

	checkIn, err := svc.CheckIn(ctx, domain.CheckInRequest{
		RoomNumber: "103",
		GuestName:  "Milk Mist Engineer",
		Phone:      "9000000001",
		Nights:     1,
		CompanyID:  "co-milk-mist",
	})
	if err != nil {
		t.Fatalf("check in: %v", err)
	}
	if _, err := svc.CompleteCheckout(ctx, checkIn.Stay.ID, domain.CompleteCheckoutRequest{PaymentMethod: "company"}); err != nil {
		t.Fatalf("complete checkout: %v", err)
	}

	bill, err := svc.GenerateCompanyBill(ctx, domain.CompanyBillRequest{CompanyID: "co-milk-mist", From: today, To: today})
	if err != nil {
		t.Fatalf("generate company bill: %v", err)
	}
	if !bill.Amount.Equal(amount(2750)) || !bill.GSTAmount.Equal(amount(495)) || !bill.TotalAmount.Equal(amount(3245)) {
		t.Fatalf("unexpected bill amounts %+v", bill)
	}
	if bill.Status != domain.BillStatusPending || bill.Nights != 1 {
		t.Fatalf("unexpected bill %+v", bill)
	}
	if bill.DueDate.Sub(bill.IssuedAt) != 10*24*time.Hour {
		t.Fatalf("expected 10 day terms, got %s", bill.DueDate.Sub(bill.IssuedAt))
	}

	if _, err := svc.GenerateCompanyBill(ctx, domain.CompanyBillRequest{CompanyID: "co-milk-mist", From: today, To: today}); !billing.IsPolicyViolation(err) {
		t.Fatalf("expected nothing left to bill, got %v", err)
	}

	list, err := svc.ListCompanyBills(ctx, "", "co-milk-mist", "")
	if err != nil {
		t.Fatalf("list company bills: %v", err)
	}
	if len(list.Bills) != 1 || !list.TotalPending.Equal(amount(3245)) || !list.TotalPaid.IsZero() {
		t.Fatalf("unexpected list %+v", list)
	}

	paid, err := svc.MarkCompanyBillPaid(ctx, bill.ID)
	if err != nil {
		t.Fatalf("mark paid: %v", err)
	}
	if paid.Status != domain.BillStatusPaid || paid.PaidAt == nil {
		t.Fatalf("expected paid bill, got %+v", paid)
	}
	if _, err := svc.MarkCompanyBillPaid(ctx, bill.ID); !billing.IsPolicyViolation(err) {
		t.Fatalf("expected second payment to be refused, got %v", err)
	}
}

func TestBillStatusDerivesOverdue(t *testing.T) {
	now := time.Date(2026, 3, 20, 12, 0, 0, 0, time.UTC)
	bill := domain.CompanyBill{DueDate: now.Add(-time.Hour)}
	if got := BillStatus(bill, now); got != domain.BillStatusOverdue {
		t.Fatalf("expected overdue, got %s", got)
	}
	bill.DueDate = now.Add(time.Hour)
	if got := BillStatus(bill, now); got != domain.BillStatusPending {
		t.Fatalf("expected pending, got %s", got)
	}
	paidAt := now
	bill.PaidAt = &paidAt
	if got := BillStatus(bill, now.Add(48*time.Hour)); got != domain.BillStatusPaid {
		t.Fatalf("expected paid, got %s", got)
	}
}

func TestDailyReportAndAuditTrail(t *testing.T) {
	svc, _ := newTestService()
	ctx := frontDeskContext("anna-salai")

	if _, err := svc.CollectPayment(ctx, memory.SeedStayID, domain.CollectPaymentRequest{Method: "upi", Amount: amount(1000), Reference: "UPI-778"}); err != nil {
		t.Fatalf("collect payment: %v", err)
	}
	if _, err := svc.CompleteCheckout(ctx, memory.SeedStayID, domain.CompleteCheckoutRequest{PaymentMethod: "card", Reference: "CARD-1"}); err != nil {
		t.Fatalf("complete checkout: %v", err)
	}

	report, err := svc.DailyReport(ctx, "", "")
	if err != nil {
		t.Fatalf("daily report: %v", err)
	}
	if report.CheckOuts != 1 || !report.RoomRevenue.Equal(amount(8250)) || !report.GSTCollected.Equal(amount(1485)) {
		t.Fatalf("unexpected report %+v", report)
	}
	if !report.PaymentsTotal.Equal(amount(4735)) {
		t.Fatalf("expected today's payments to total 4735, got %s", report.PaymentsTotal)
	}
	if len(report.ByPayment) != 2 || report.ByPayment[0].Method != domain.PaymentCard || report.ByPayment[1].Method != domain.PaymentUPI {
		t.Fatalf("unexpected payment breakdown %+v", report.ByPayment)
	}

	logs, err := svc.ListAuditLogs(ctx, "", "", domain.AuditCheckOut, "", 10)
	if err != nil {
		t.Fatalf("list audit logs: %v", err)
	}
	if len(logs) != 1 || logs[0].ActorUsername != "frontdesk" {
		t.Fatalf("expected one checkout audit entry by frontdesk, got %+v", logs)
	}
}

func TestAuditFilterLooksPastRecentNoise(t *testing.T) {
	svc, repo := newTestService()
	ctx := frontDeskContext("anna-salai")
	day := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

	if err := repo.CreateAuditLog(ctx, domain.AuditLog{
		BranchID:      "anna-salai",
		ActorUsername: "frontdesk",
		Action:        domain.AuditInvoice,
		EntityType:    "stay",
		EntityID:      memory.SeedStayID,
		CreatedAt:     day,
	}); err != nil {
		t.Fatalf("seed invoice entry: %v", err)
	}
	for i := 0; i < 20; i++ {
		if err := repo.CreateAuditLog(ctx, domain.AuditLog{
			BranchID:      "anna-salai",
			ActorUsername: "manager",
			Action:        domain.AuditRoomStatus,
			EntityType:    "room",
			EntityID:      "104",
			CreatedAt:     day.Add(time.Duration(i+1) * time.Minute),
		}); err != nil {
			t.Fatalf("seed room entry: %v", err)
		}
	}

	logs, err := svc.ListAuditLogs(ctx, "", "2026-03-14", domain.AuditInvoice, "", 2)
	if err != nil {
		t.Fatalf("list audit logs: %v", err)
	}
	if len(logs) != 1 || logs[0].Action != domain.AuditInvoice {
		t.Fatalf("expected the invoice entry behind newer room entries, got %+v", logs)
	}

	byActor, err := svc.ListAuditLogs(ctx, "", "2026-03-14", "", "FrontDesk", 2)
	if err != nil {
		t.Fatalf("list audit logs by actor: %v", err)
	}
	if len(byActor) != 1 || byActor[0].ActorUsername != "frontdesk" {
		t.Fatalf("expected actor match to ignore case, got %+v", byActor)
	}

	recent, err := svc.ListAuditLogs(ctx, "", "2026-03-14", domain.AuditRoomStatus, "", 2)
	if err != nil {
		t.Fatalf("list room entries: %v", err)
	}
	if len(recent) != 2 || !recent[0].CreatedAt.After(recent[1].CreatedAt) {
		t.Fatalf("expected two newest room entries, got %+v", recent)
	}
}

func TestOutstandingBalancesListsOpenDebts(t *testing.T) {
	svc, _ := newTestService()

	balances, err := svc.OutstandingBalances(frontDeskContext("anna-salai"), "")
	if err != nil {
		t.Fatalf("outstanding balances: %v", err)
	}
	if len(balances) != 1 || !balances[0].BalanceDue.Equal(amount(4735)) {
		t.Fatalf("unexpected balances %+v", balances)
	}
}

func TestMeListsSectionsForRole(t *testing.T) {
	svc, _ := newTestService()

	me, err := svc.Me(frontDeskContext("bhavani-road"))
	if err != nil {
		t.Fatalf("me: %v", err)
	}
	if me.Branch.GSTEnabled {
		t.Fatalf("expected bhavani-road to be non-GST")
	}
	if len(me.Sections) != 8 {
		t.Fatalf("expected 8 sections for front-office, got %v", me.Sections)
	}
}

func containsAll(haystack string, needles ...string) bool {
	for _, needle := range needles {
		found := false
		for i := 0; i+len(needle) <= len(haystack); i++ {
			if haystack[i:i+len(needle)] == needle {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
