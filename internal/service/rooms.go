package service

import (
	"context"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"frontoffice/internal/billing"
	"frontoffice/internal/domain"
)

const reasonRoomOccupied = "room is occupied; check the guest out first"

func (s *Service) ListRooms(ctx context.Context, branchID string, status string, floor int) ([]domain.Room, error) {
	branch, err := s.resolveBranch(ctx, branchID)
	if err != nil {
		return nil, err
	}
	rooms, err := s.repo.ListRooms(ctx, branch.ID)
	if err != nil {
		return nil, err
	}

	status = strings.ToLower(strings.TrimSpace(status))
	if status == "" && floor == 0 {
		return rooms, nil
	}
	filtered := make([]domain.Room, 0, len(rooms))
	for _, room := range rooms {
		if status != "" && room.Status != status {
			continue
		}
		if floor != 0 && room.Floor != floor {
			continue
		}
		filtered = append(filtered, room)
	}
	return filtered, nil
}

// UpdateRoomStatus is for housekeeping and maintenance. Rooms only become or
// stop being occupied through check-in and checkout.
func (s *Service) UpdateRoomStatus(ctx context.Context, branchID string, number string, status string) (domain.Room, error) {
	branch, err := s.resolveBranch(ctx, branchID)
	if err != nil {
		return domain.Room{}, err
	}

	status = strings.ToLower(strings.TrimSpace(status))
	switch status {
	case domain.RoomAvailable, domain.RoomDirty, domain.RoomMaintenance, domain.RoomReserved:
	case domain.RoomOccupied:
		return domain.Room{}, &billing.PolicyViolation{Reason: "rooms are occupied through check-in"}
	default:
		return domain.Room{}, &billing.ValidationError{Field: "status", Reason: "unknown room status"}
	}

	room, err := s.repo.GetRoom(ctx, branch.ID, strings.TrimSpace(number))
	if err != nil {
		return domain.Room{}, err
	}
	if room.Status == domain.RoomOccupied {
		return domain.Room{}, &billing.PolicyViolation{Reason: reasonRoomOccupied}
	}

	updated, err := s.repo.SetRoomStatus(ctx, branch.ID, room.Number, status, s.now())
	if err != nil {
		return domain.Room{}, err
	}

	s.invalidateDashboard(ctx, branch.ID)
	s.logAudit(ctx, branch.ID, domain.AuditRoomStatus, "room", updated.Number, fmt.Sprintf("from=%s,to=%s", room.Status, updated.Status))
	return *updated, nil
}

func (s *Service) Dashboard(ctx context.Context, branchID string) (domain.DashboardStats, error) {
	branch, err := s.resolveBranch(ctx, branchID)
	if err != nil {
		return domain.DashboardStats{}, err
	}

	if cached, ok, err := s.dashboard.Get(ctx, branch.ID); err != nil {
		log.Printf("[cache] WARN: dashboard read failed branch=%s: %v", branch.ID, err)
	} else if ok {
		return *cached, nil
	}

	rooms, err := s.repo.ListRooms(ctx, branch.ID)
	if err != nil {
		return domain.DashboardStats{}, err
	}
	openStays, err := s.repo.ListOpenStays(ctx, branch.ID)
	if err != nil {
		return domain.DashboardStats{}, err
	}
	from, to, _ := s.dayRange("")
	arrivals, err := s.repo.CountCheckIns(ctx, branch.ID, from, to)
	if err != nil {
		return domain.DashboardStats{}, err
	}
	departures, err := s.repo.ListCheckedOutStays(ctx, branch.ID, from, to)
	if err != nil {
		return domain.DashboardStats{}, err
	}

	stats := domain.DashboardStats{
		BranchID:        branch.ID,
		TotalRooms:      len(rooms),
		ByStatus:        roomStatusCounts(rooms),
		InHouseGuests:   len(openStays),
		ArrivalsToday:   int(arrivals),
		DeparturesToday: len(departures),
		GeneratedAt:     s.now().Format(time.RFC3339),
	}
	stats.OccupancyRate = occupancyRate(stats.ByStatus[domain.RoomOccupied], stats.TotalRooms)

	if err := s.dashboard.Set(ctx, branch.ID, &stats, s.dashboardTTL); err != nil {
		log.Printf("[cache] WARN: dashboard write failed branch=%s: %v", branch.ID, err)
	}
	return stats, nil
}

func roomStatusCounts(rooms []domain.Room) map[string]int {
	counts := map[string]int{
		domain.RoomAvailable:   0,
		domain.RoomOccupied:    0,
		domain.RoomDirty:       0,
		domain.RoomMaintenance: 0,
		domain.RoomReserved:    0,
	}
	for _, room := range rooms {
		counts[room.Status]++
	}
	return counts
}

// occupancyRate is a percentage rounded to two decimals.
func occupancyRate(occupied int, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(occupied)/float64(total)*10000) / 100
}
