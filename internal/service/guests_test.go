package service

import (
	"context"
	"testing"

	"frontoffice/internal/billing"
	"frontoffice/internal/domain"
	"frontoffice/internal/store/memory"
)

// returningGuest checks the seeded guest out and back in to room 103, and
// checks a second guest into room 102.
func returningGuest(t *testing.T, svc *Service, ctx context.Context) {
	t.Helper()

	if _, err := svc.CompleteCheckout(ctx, memory.SeedStayID, domain.CompleteCheckoutRequest{PaymentMethod: "cash"}); err != nil {
		t.Fatalf("complete checkout: %v", err)
	}
	if _, err := svc.CheckIn(ctx, domain.CheckInRequest{RoomNumber: "103", GuestName: "Rajesh K", Phone: "+91 98765 43210", Nights: 1}); err != nil {
		t.Fatalf("check in returning guest: %v", err)
	}
	if _, err := svc.CheckIn(ctx, domain.CheckInRequest{RoomNumber: "102", GuestName: "Priya Raman", Phone: "9840012345", Nights: 2}); err != nil {
		t.Fatalf("check in second guest: %v", err)
	}
}

func TestGuestHistoryGroupsStaysByPhone(t *testing.T) {
	svc, _ := newTestService()
	ctx := frontDeskContext("anna-salai")
	returningGuest(t, svc, ctx)

	guests, err := svc.GuestHistory(ctx, "", "rajesh")
	if err != nil {
		t.Fatalf("guest history: %v", err)
	}
	if len(guests) != 1 {
		t.Fatalf("expected one guest, got %+v", guests)
	}
	g := guests[0]
	if g.Stays != 2 || !g.InHouse || g.RoomNumber != "103" || g.Name != "Rajesh K" {
		t.Fatalf("unexpected profile %+v", g)
	}
	if !g.TotalBilled.Equal(amount(9735)) {
		t.Fatalf("expected checked-out stay billed at 9735, got %s", g.TotalBilled)
	}

	byPhone, err := svc.GuestHistory(ctx, "", "98400")
	if err != nil {
		t.Fatalf("guest history by phone: %v", err)
	}
	if len(byPhone) != 1 || byPhone[0].Name != "Priya Raman" || !byPhone[0].TotalBilled.IsZero() {
		t.Fatalf("unexpected phone match %+v", byPhone)
	}

	all, err := svc.GuestHistory(ctx, "", "")
	if err != nil {
		t.Fatalf("full guest history: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected two guests, got %d", len(all))
	}
}

func TestGuestHistoryScopedToBranch(t *testing.T) {
	svc, _ := newTestService()

	if _, err := svc.GuestHistory(frontDeskContext("anna-salai"), "erode-road", ""); err == nil {
		t.Fatalf("expected other branch to be refused")
	}
	guests, err := svc.GuestHistory(frontDeskContext("erode-road"), "", "")
	if err != nil {
		t.Fatalf("guest history: %v", err)
	}
	if len(guests) != 0 {
		t.Fatalf("expected no guests at erode-road, got %+v", guests)
	}
}

func TestSearchRecordsAcrossStatuses(t *testing.T) {
	svc, _ := newTestService()
	ctx := frontDeskContext("anna-salai")
	returningGuest(t, svc, ctx)

	closed, err := svc.SearchRecords(ctx, "", domain.StayRecordSearch{Query: "rajesh", Status: "checked_out"})
	if err != nil {
		t.Fatalf("search checked out: %v", err)
	}
	if len(closed) != 1 || closed[0].ID != memory.SeedStayID || closed[0].CheckedOutAt == nil {
		t.Fatalf("unexpected checked-out records %+v", closed)
	}
	if !closed[0].Total.Equal(amount(9735)) || !closed[0].BalanceDue.IsZero() {
		t.Fatalf("unexpected final bill on record %+v", closed[0])
	}

	open, err := svc.SearchRecords(ctx, "", domain.StayRecordSearch{Status: "open"})
	if err != nil {
		t.Fatalf("search open: %v", err)
	}
	if len(open) != 2 {
		t.Fatalf("expected two open stays, got %+v", open)
	}

	byRoom, err := svc.SearchRecords(ctx, "", domain.StayRecordSearch{Query: "102"})
	if err != nil {
		t.Fatalf("search by room: %v", err)
	}
	if len(byRoom) != 1 || byRoom[0].GuestName != "Priya Raman" {
		t.Fatalf("unexpected room match %+v", byRoom)
	}

	old, err := svc.SearchRecords(ctx, "", domain.StayRecordSearch{From: "2001-01-01", To: "2001-01-31"})
	if err != nil {
		t.Fatalf("search by dates: %v", err)
	}
	if len(old) != 0 {
		t.Fatalf("expected nothing checked in during 2001, got %+v", old)
	}
}

func TestSearchRecordsValidatesFilters(t *testing.T) {
	svc, _ := newTestService()
	ctx := frontDeskContext("anna-salai")

	cases := []domain.StayRecordSearch{
		{Status: "paid"},
		{From: "2026-13-01"},
		{From: "2026-03-10", To: "2026-03-01"},
	}
	for i, search := range cases {
		if _, err := svc.SearchRecords(ctx, "", search); !billing.IsValidation(err) {
			t.Fatalf("case %d: expected validation error, got %v", i, err)
		}
	}
}

func TestLiveRoomsHidesCompanyGuestsFromFrontOffice(t *testing.T) {
	svc, _ := newTestService()
	ctx := frontDeskContext("anna-salai")

	if _, err := svc.CheckIn(ctx, domain.CheckInRequest{RoomNumber: "103", GuestName: "Milk Mist Engineer", Phone: "9000000001", Nights: 1, CompanyID: "co-milk-mist"}); err != nil {
		t.Fatalf("check in: %v", err)
	}

	board, err := svc.LiveRooms(ctx, "")
	if err != nil {
		t.Fatalf("live rooms: %v", err)
	}
	if len(board.Rooms) != 9 || board.ByStatus[domain.RoomOccupied] != 2 {
		t.Fatalf("unexpected board %+v", board.ByStatus)
	}
	if board.GuestsStaying != 2 || board.PendingBills != 2 {
		t.Fatalf("expected two guests with pending bills, got %+v", board)
	}
	if board.CompanyGuests != nil {
		t.Fatalf("company guest count must be hidden from front office")
	}

	admin := WithActor(context.Background(), domain.Actor{Username: "admin", Role: domain.RoleAdmin, BranchID: "anna-salai"})
	board, err = svc.LiveRooms(admin, "anna-salai")
	if err != nil {
		t.Fatalf("live rooms as admin: %v", err)
	}
	if board.CompanyGuests == nil || *board.CompanyGuests != 1 {
		t.Fatalf("expected one company guest for admin, got %v", board.CompanyGuests)
	}
}

func TestCheckInAdvanceNeedsReferenceForCard(t *testing.T) {
	svc, _ := newTestService()
	ctx := frontDeskContext("anna-salai")
	req := domain.CheckInRequest{RoomNumber: "102", GuestName: "Priya Raman", Phone: "9840012345", Nights: 1, AdvancePaid: amount(1000), PaymentMethod: "card"}

	if _, err := svc.CheckIn(ctx, req); !billing.IsValidation(err) {
		t.Fatalf("expected missing card reference to be rejected, got %v", err)
	}

	req.Reference = "AUTH-1102"
	resp, err := svc.CheckIn(ctx, req)
	if err != nil {
		t.Fatalf("check in: %v", err)
	}
	if len(resp.Stay.Payments) != 1 || resp.Stay.Payments[0].Reference != "AUTH-1102" {
		t.Fatalf("expected advance to carry its reference, got %+v", resp.Stay.Payments)
	}
}
