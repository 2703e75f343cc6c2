package service

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"frontoffice/internal/billing"
	"frontoffice/internal/domain"
)

// GuestHistory builds the guest directory of a branch from its stays. Guests
// are keyed by phone number; query matches a name substring or phone digits.
func (s *Service) GuestHistory(ctx context.Context, branchID string, query string) ([]domain.GuestProfile, error) {
	branch, err := s.resolveBranch(ctx, branchID)
	if err != nil {
		return nil, err
	}
	stays, err := s.branchStays(ctx, branch.ID)
	if err != nil {
		return nil, err
	}

	query = strings.TrimSpace(query)
	byKey := make(map[string]*domain.GuestProfile)
	for _, stay := range stays {
		if !matchesGuest(stay, query) {
			continue
		}
		key := guestKey(stay)
		profile, ok := byKey[key]
		if !ok {
			profile = &domain.GuestProfile{Name: stay.GuestName, Phone: stay.Phone, TotalBilled: decimal.Zero}
			byKey[key] = profile
		}

		profile.Stays++
		if stay.CheckInAt.After(profile.LastVisit) {
			profile.LastVisit = stay.CheckInAt
			profile.Name = stay.GuestName
			if stay.CompanyID != "" {
				profile.CompanyID = stay.CompanyID
			}
		}
		if stay.Status == domain.StayStatusOpen {
			profile.InHouse = true
			profile.RoomNumber = stay.RoomNumber
		} else if stay.FinalBill != nil {
			profile.TotalBilled = profile.TotalBilled.Add(stay.FinalBill.Total)
		}
	}

	out := make([]domain.GuestProfile, 0, len(byKey))
	for _, profile := range byKey {
		out = append(out, *profile)
	}
	slices.SortFunc(out, func(a, b domain.GuestProfile) int {
		if c := b.LastVisit.Compare(a.LastVisit); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})
	return out, nil
}

// SearchRecords is the cross-status stay search. From and To bound the
// check-in date, both inclusive.
func (s *Service) SearchRecords(ctx context.Context, branchID string, search domain.StayRecordSearch) ([]domain.StayRecord, error) {
	branch, err := s.resolveBranch(ctx, branchID)
	if err != nil {
		return nil, err
	}

	status := strings.ToLower(strings.TrimSpace(search.Status))
	switch status {
	case "", domain.StayStatusOpen, domain.StayStatusCheckedOut:
	default:
		return nil, &billing.ValidationError{Field: "status", Reason: "must be open or checked_out"}
	}
	from, err := parseDay("from", search.From)
	if err != nil {
		return nil, err
	}
	to, err := parseDay("to", search.To)
	if err != nil {
		return nil, err
	}
	if !to.IsZero() {
		to = to.Add(24 * time.Hour)
	}
	if !from.IsZero() && !to.IsZero() && !from.Before(to) {
		return nil, &billing.ValidationError{Field: "to", Reason: "must not be before from"}
	}

	stays, err := s.branchStays(ctx, branch.ID)
	if err != nil {
		return nil, err
	}

	query := strings.TrimSpace(search.Query)
	out := make([]domain.StayRecord, 0, len(stays))
	for _, stay := range stays {
		if status != "" && stay.Status != status {
			continue
		}
		if !from.IsZero() && stay.CheckInAt.Before(from) {
			continue
		}
		if !to.IsZero() && !stay.CheckInAt.Before(to) {
			continue
		}
		if query != "" && !matchesGuest(stay, query) && !strings.EqualFold(stay.RoomNumber, query) {
			continue
		}

		record := domain.StayRecord{
			ID:           stay.ID,
			RoomNumber:   stay.RoomNumber,
			GuestName:    stay.GuestName,
			Phone:        stay.Phone,
			CompanyID:    stay.CompanyID,
			Status:       stay.Status,
			CheckInAt:    stay.CheckInAt,
			CheckedOutAt: stay.CheckedOutAt,
		}
		result, err := stayBill(stay, branch)
		if err != nil {
			return nil, err
		}
		record.Total = result.Total
		record.BalanceDue = result.BalanceDue
		out = append(out, record)
	}
	slices.SortFunc(out, func(a, b domain.StayRecord) int {
		return b.CheckInAt.Compare(a.CheckInAt)
	})
	return out, nil
}

// LiveRooms is the room grid with the counts shown beside it.
func (s *Service) LiveRooms(ctx context.Context, branchID string) (domain.LiveRoomBoard, error) {
	branch, err := s.resolveBranch(ctx, branchID)
	if err != nil {
		return domain.LiveRoomBoard{}, err
	}
	rooms, err := s.repo.ListRooms(ctx, branch.ID)
	if err != nil {
		return domain.LiveRoomBoard{}, err
	}
	openStays, err := s.repo.ListOpenStays(ctx, branch.ID)
	if err != nil {
		return domain.LiveRoomBoard{}, err
	}

	board := domain.LiveRoomBoard{
		BranchID:      branch.ID,
		Rooms:         rooms,
		ByStatus:      roomStatusCounts(rooms),
		GuestsStaying: len(openStays),
		UpdatedAt:     s.now().Format(time.RFC3339),
	}
	companyGuests := 0
	for _, stay := range openStays {
		result, err := stayBill(stay, branch)
		if err != nil {
			return domain.LiveRoomBoard{}, err
		}
		if result.BalanceDue.IsPositive() {
			board.PendingBills++
		}
		if stay.CompanyID != "" {
			companyGuests++
		}
	}
	if actor, ok := ActorFromContext(ctx); !ok || actor.Role != domain.RoleFrontOffice {
		board.CompanyGuests = &companyGuests
	}
	return board, nil
}

// branchStays returns every stay of a branch, open and checked out.
func (s *Service) branchStays(ctx context.Context, branchID string) ([]domain.Stay, error) {
	open, err := s.repo.ListOpenStays(ctx, branchID)
	if err != nil {
		return nil, err
	}
	closed, err := s.repo.ListCheckedOutStays(ctx, branchID, time.Time{}, s.now().Add(24*time.Hour))
	if err != nil {
		return nil, err
	}
	return append(open, closed...), nil
}

func stayBill(stay domain.Stay, branch domain.Branch) (domain.BillingResult, error) {
	if stay.Status == domain.StayStatusCheckedOut && stay.FinalBill != nil {
		return *stay.FinalBill, nil
	}
	return billing.Compute(stay.Charges, stay.ExtraNights, stay.NightlyRate, branch.GSTEnabled, stay.AmountPaid)
}

func guestKey(stay domain.Stay) string {
	if phone := phoneDigits(stay.Phone); phone != "" {
		return phone
	}
	return strings.ToLower(strings.TrimSpace(stay.GuestName))
}

func matchesGuest(stay domain.Stay, query string) bool {
	if query == "" {
		return true
	}
	if strings.Contains(strings.ToLower(stay.GuestName), strings.ToLower(query)) {
		return true
	}
	digits := phoneDigits(query)
	return digits != "" && strings.Contains(phoneDigits(stay.Phone), digits)
}

func phoneDigits(value string) string {
	var b strings.Builder
	for _, r := range value {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func parseDay(field string, value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	day, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, &billing.ValidationError{Field: field, Reason: "must be YYYY-MM-DD"}
	}
	return day.UTC(), nil
}
