package memory

import (
	"context"
	"fmt"
	"log"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"frontoffice/internal/billing"
	"frontoffice/internal/domain"
	"frontoffice/internal/store"
	"frontoffice/internal/xid"
)

// SeedStayID is the demo guest checked into room 101 at anna-salai.
const SeedStayID = "stay-seed-anna-salai-101"

type Store struct {
	mu              sync.RWMutex
	rooms           map[string]map[string]domain.Room
	staysByID       map[string]*domain.Stay
	companiesByID   map[string]domain.Company
	companyBills    map[string]domain.CompanyBill
	auditLogs       []domain.AuditLog
	usersByUsername map[string]domain.UserAccount
}

// seedUsers builds the initial in-memory staff accounts for dev/demo mode.
// Credentials are read from SEED_ADMIN_PASSWORD and SEED_STAFF_PASSWORD; when
// unset, dev defaults are used with a warning.
func seedUsers() map[string]domain.UserAccount {
	adminPwd := envOr("SEED_ADMIN_PASSWORD", "admin123")
	staffPwd := envOr("SEED_STAFF_PASSWORD", "staff123")
	if os.Getenv("SEED_ADMIN_PASSWORD") == "" || os.Getenv("SEED_STAFF_PASSWORD") == "" {
		log.Println("[memory-store] WARNING: using default dev credentials. Set SEED_ADMIN_PASSWORD and SEED_STAFF_PASSWORD to override.")
	}

	now := time.Now().UTC()
	users := map[string]domain.UserAccount{}
	for _, u := range []struct {
		username string
		password string
		role     string
		branchID string
	}{
		{"admin", adminPwd, domain.RoleAdmin, "anna-salai"},
		{"bmo", staffPwd, domain.RoleBMO, "anna-salai"},
		{"fmo", staffPwd, domain.RoleFMO, "anna-salai"},
		{"frontdesk", staffPwd, domain.RoleFrontOffice, "anna-salai"},
		{"bhavani", staffPwd, domain.RoleFrontOffice, "bhavani-road"},
	} {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("[memory-store] failed to hash seed password for %s: %v", u.username, err)
		}
		users[u.username] = domain.UserAccount{
			Username:  u.username,
			Password:  string(hash),
			Role:      u.role,
			BranchID:  u.branchID,
			Active:    true,
			CreatedAt: now,
		}
	}
	return users
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// seedRooms lays out three floors of three rooms per branch, priced by floor.
func seedRooms(branches []domain.Branch, now time.Time) map[string]map[string]domain.Room {
	floors := []struct {
		floor int
		kind  string
		rate  int64
	}{
		{1, "Deluxe", 2500},
		{2, "Executive", 3000},
		{3, "Suite", 4000},
	}

	rooms := make(map[string]map[string]domain.Room, len(branches))
	for _, branch := range branches {
		rooms[branch.ID] = make(map[string]domain.Room)
		for _, f := range floors {
			for n := 1; n <= 3; n++ {
				number := fmt.Sprintf("%d0%d", f.floor, n)
				rooms[branch.ID][number] = domain.Room{
					Number:      number,
					BranchID:    branch.ID,
					Floor:       f.floor,
					Type:        f.kind,
					Status:      domain.RoomAvailable,
					NightlyRate: decimal.NewFromInt(f.rate),
					UpdatedAt:   now,
				}
			}
		}
	}
	return rooms
}

// New returns an empty store with no rooms, stays or users.
func New() *Store {
	return &Store{
		rooms:           make(map[string]map[string]domain.Room),
		staysByID:       make(map[string]*domain.Stay),
		companiesByID:   make(map[string]domain.Company),
		companyBills:    make(map[string]domain.CompanyBill),
		usersByUsername: make(map[string]domain.UserAccount),
	}
}

func NewSeeded() *Store {
	now := time.Now().UTC()
	rooms := seedRooms(billing.DefaultBranches(), now)

	checkIn := now.Add(-72 * time.Hour)
	seedStay := &domain.Stay{
		ID:             SeedStayID,
		BranchID:       "anna-salai",
		RoomNumber:     "101",
		GuestName:      "Rajesh Kumar",
		Phone:          "+919876543210",
		IDProofType:    "aadhaar",
		IDProofNumber:  "XXXX-XXXX-4321",
		CheckInAt:      checkIn,
		OriginalNights: 3,
		NightlyRate:    decimal.NewFromInt(2500),
		Charges: []domain.Charge{
			{ID: "chg-seed-room", Kind: domain.ChargeKindBase, Description: "Room Charge (3 nights)", Amount: decimal.NewFromInt(7500), CreatedBy: "system", CreatedAt: checkIn},
			{ID: "chg-seed-service", Kind: domain.ChargeKindService, Description: "Service Charge", Amount: decimal.NewFromInt(750), CreatedBy: "system", CreatedAt: checkIn},
		},
		Payments: []domain.Payment{
			{ID: "pay-seed-advance", StayID: SeedStayID, BranchID: "anna-salai", Method: domain.PaymentCash, Amount: decimal.NewFromInt(5000), ReceiptNo: "RCP-SEED-0001", ReceivedBy: "system", ReceivedAt: checkIn},
		},
		AmountPaid: decimal.NewFromInt(5000),
		Status:     domain.StayStatusOpen,
		Version:    1,
	}
	room := rooms["anna-salai"]["101"]
	room.Status = domain.RoomOccupied
	rooms["anna-salai"]["101"] = room

	companies := make(map[string]domain.Company)
	for _, c := range []domain.Company{
		{ID: "co-milk-mist", Name: "Milk Mist Company", GSTIN: "33AABCM1234F1Z5", ContactName: "Accounts Desk", CreditLimit: decimal.NewFromInt(100000)},
		{ID: "co-tech-solutions", Name: "Tech Solutions Pvt Ltd", GSTIN: "33AACCT5678K1Z2", ContactName: "Admin Team", CreditLimit: decimal.NewFromInt(50000)},
		{ID: "co-global-exports", Name: "Global Exports Inc", ContactName: "Travel Desk", CreditLimit: decimal.NewFromInt(75000)},
	} {
		c.CreatedAt = now
		companies[c.ID] = c
	}

	return &Store{
		rooms:           rooms,
		staysByID:       map[string]*domain.Stay{SeedStayID: seedStay},
		companiesByID:   companies,
		companyBills:    make(map[string]domain.CompanyBill),
		auditLogs:       make([]domain.AuditLog, 0, 128),
		usersByUsername: seedUsers(),
	}
}

func (s *Store) ListRooms(_ context.Context, branchID string) ([]domain.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	branchRooms, ok := s.rooms[branchID]
	if !ok {
		return nil, store.ErrNotFound
	}
	rooms := make([]domain.Room, 0, len(branchRooms))
	for _, room := range branchRooms {
		rooms = append(rooms, room)
	}
	slices.SortFunc(rooms, func(a, b domain.Room) int {
		if a.Floor != b.Floor {
			return a.Floor - b.Floor
		}
		return cmpString(a.Number, b.Number)
	})
	return rooms, nil
}

func (s *Store) GetRoom(_ context.Context, branchID string, number string) (*domain.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	room, ok := s.rooms[branchID][number]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &room, nil
}

func (s *Store) SetRoomStatus(_ context.Context, branchID string, number string, status string, at time.Time) (*domain.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[branchID][number]
	if !ok {
		return nil, store.ErrNotFound
	}
	room.Status = status
	room.UpdatedAt = at
	s.rooms[branchID][number] = room
	return &room, nil
}

func (s *Store) CreateStay(_ context.Context, stay domain.Stay) (*domain.Stay, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if stay.ID == "" {
		return nil, store.ErrInvalidTransaction
	}
	if _, exists := s.staysByID[stay.ID]; exists {
		return nil, store.ErrInvalidTransaction
	}
	room, ok := s.rooms[stay.BranchID][stay.RoomNumber]
	if !ok {
		return nil, store.ErrNotFound
	}
	if room.Status != domain.RoomAvailable {
		return nil, store.ErrRoomUnavailable
	}

	room.Status = domain.RoomOccupied
	room.UpdatedAt = stay.CheckInAt
	s.rooms[stay.BranchID][stay.RoomNumber] = room

	stay.Version = 1
	s.staysByID[stay.ID] = cloneStay(&stay)
	return cloneStay(&stay), nil
}

func (s *Store) GetStay(_ context.Context, stayID string) (*domain.Stay, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stay, ok := s.staysByID[stayID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return cloneStay(stay), nil
}

func (s *Store) SearchOpenStays(_ context.Context, branchID string, search domain.StaySearch) ([]domain.Stay, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := strings.ToLower(strings.TrimSpace(search.Query))
	if query == "" {
		return []domain.Stay{}, nil
	}

	out := make([]domain.Stay, 0, 4)
	for _, stay := range s.staysByID {
		if stay.BranchID != branchID || stay.Status != domain.StayStatusOpen {
			continue
		}
		if matchesSearch(stay, search.By, query) {
			out = append(out, *cloneStay(stay))
		}
	}
	slices.SortFunc(out, func(a, b domain.Stay) int {
		return cmpString(a.RoomNumber, b.RoomNumber)
	})
	return out, nil
}

func matchesSearch(stay *domain.Stay, by string, query string) bool {
	name := strings.Contains(strings.ToLower(stay.GuestName), query)
	room := strings.EqualFold(stay.RoomNumber, query)
	phone := strings.Contains(digitsOnly(stay.Phone), digitsOnly(query)) && digitsOnly(query) != ""

	switch by {
	case "name":
		return name
	case "room":
		return room
	case "phone":
		return phone
	default:
		return name || room || phone
	}
}

func (s *Store) ListOpenStays(_ context.Context, branchID string) ([]domain.Stay, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Stay, 0, len(s.staysByID))
	for _, stay := range s.staysByID {
		if stay.BranchID == branchID && stay.Status == domain.StayStatusOpen {
			out = append(out, *cloneStay(stay))
		}
	}
	slices.SortFunc(out, func(a, b domain.Stay) int {
		return cmpString(a.RoomNumber, b.RoomNumber)
	})
	return out, nil
}

func (s *Store) ListCheckedOutStays(_ context.Context, branchID string, from time.Time, to time.Time) ([]domain.Stay, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Stay, 0, 16)
	for _, stay := range s.staysByID {
		if stay.BranchID != branchID || stay.Status != domain.StayStatusCheckedOut || stay.CheckedOutAt == nil {
			continue
		}
		if stay.CheckedOutAt.Before(from) || !stay.CheckedOutAt.Before(to) {
			continue
		}
		out = append(out, *cloneStay(stay))
	}
	slices.SortFunc(out, func(a, b domain.Stay) int {
		return a.CheckedOutAt.Compare(*b.CheckedOutAt)
	})
	return out, nil
}

func (s *Store) UpdateStay(_ context.Context, stay domain.Stay, expectedVersion int64) (*domain.Stay, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.staysByID[stay.ID]
	if !ok {
		return nil, store.ErrNotFound
	}
	if current.Version != expectedVersion {
		return nil, store.ErrVersionConflict
	}
	if current.Status == domain.StayStatusCheckedOut {
		return nil, store.ErrInvalidTransaction
	}
	if current.BranchID != stay.BranchID || current.RoomNumber != stay.RoomNumber {
		return nil, store.ErrInvalidTransaction
	}

	if stay.Status == domain.StayStatusCheckedOut {
		room, ok := s.rooms[stay.BranchID][stay.RoomNumber]
		if ok {
			room.Status = domain.RoomDirty
			if stay.CheckedOutAt != nil {
				room.UpdatedAt = *stay.CheckedOutAt
			}
			s.rooms[stay.BranchID][stay.RoomNumber] = room
		}
	}

	stay.Version = expectedVersion + 1
	s.staysByID[stay.ID] = cloneStay(&stay)
	return cloneStay(&stay), nil
}

func (s *Store) ListPayments(_ context.Context, branchID string, from time.Time, to time.Time) ([]domain.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Payment, 0, 32)
	for _, stay := range s.staysByID {
		if stay.BranchID != branchID {
			continue
		}
		for _, payment := range stay.Payments {
			if payment.ReceivedAt.Before(from) || !payment.ReceivedAt.Before(to) {
				continue
			}
			out = append(out, payment)
		}
	}
	slices.SortFunc(out, func(a, b domain.Payment) int {
		return a.ReceivedAt.Compare(b.ReceivedAt)
	})
	return out, nil
}

func (s *Store) CountCheckIns(_ context.Context, branchID string, from time.Time, to time.Time) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, stay := range s.staysByID {
		if stay.BranchID == branchID && !stay.CheckInAt.Before(from) && stay.CheckInAt.Before(to) {
			count++
		}
	}
	return count, nil
}

func (s *Store) CreateCompany(_ context.Context, company domain.Company) (*domain.Company, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if company.ID == "" || company.Name == "" {
		return nil, store.ErrInvalidTransaction
	}
	for _, existing := range s.companiesByID {
		if strings.EqualFold(existing.Name, company.Name) {
			return nil, store.ErrInvalidTransaction
		}
	}
	s.companiesByID[company.ID] = company
	created := company
	return &created, nil
}

func (s *Store) GetCompany(_ context.Context, companyID string) (*domain.Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	company, ok := s.companiesByID[companyID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &company, nil
}

func (s *Store) ListCompanies(_ context.Context) ([]domain.Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Company, 0, len(s.companiesByID))
	for _, company := range s.companiesByID {
		out = append(out, company)
	}
	slices.SortFunc(out, func(a, b domain.Company) int {
		return cmpString(a.Name, b.Name)
	})
	return out, nil
}

func (s *Store) CreateCompanyBill(_ context.Context, bill domain.CompanyBill) (*domain.CompanyBill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if bill.ID == "" || len(bill.StayIDs) == 0 {
		return nil, store.ErrInvalidTransaction
	}
	billed := make(map[string]struct{})
	for _, existing := range s.companyBills {
		for _, stayID := range existing.StayIDs {
			billed[stayID] = struct{}{}
		}
	}
	for _, stayID := range bill.StayIDs {
		if _, dup := billed[stayID]; dup {
			return nil, fmt.Errorf("%w: stay %s already billed", store.ErrInvalidTransaction, stayID)
		}
	}

	s.companyBills[bill.ID] = cloneCompanyBill(bill)
	created := cloneCompanyBill(bill)
	return &created, nil
}

func (s *Store) GetCompanyBill(_ context.Context, billID string) (*domain.CompanyBill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bill, ok := s.companyBills[billID]
	if !ok {
		return nil, store.ErrNotFound
	}
	out := cloneCompanyBill(bill)
	return &out, nil
}

func (s *Store) ListCompanyBills(_ context.Context, branchID string, companyID string) ([]domain.CompanyBill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.CompanyBill, 0, len(s.companyBills))
	for _, bill := range s.companyBills {
		if branchID != "" && bill.BranchID != branchID {
			continue
		}
		if companyID != "" && bill.CompanyID != companyID {
			continue
		}
		out = append(out, cloneCompanyBill(bill))
	}
	slices.SortFunc(out, func(a, b domain.CompanyBill) int {
		return b.IssuedAt.Compare(a.IssuedAt)
	})
	return out, nil
}

func (s *Store) MarkCompanyBillPaid(_ context.Context, billID string, paidAt time.Time) (*domain.CompanyBill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bill, ok := s.companyBills[billID]
	if !ok {
		return nil, store.ErrNotFound
	}
	if bill.PaidAt != nil {
		return nil, store.ErrInvalidTransaction
	}
	at := paidAt
	bill.PaidAt = &at
	bill.Status = domain.BillStatusPaid
	s.companyBills[billID] = bill
	out := cloneCompanyBill(bill)
	return &out, nil
}

func (s *Store) CreateAuditLog(_ context.Context, entry domain.AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry.ID == "" {
		entry.ID = xid.New("audit")
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	s.auditLogs = append(s.auditLogs, entry)
	return nil
}

func (s *Store) ListAuditLogs(_ context.Context, query domain.AuditLogQuery) ([]domain.AuditLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	limit := query.Limit
	if limit < 1 {
		limit = 100
	}

	logs := make([]domain.AuditLog, 0, limit)
	for i := len(s.auditLogs) - 1; i >= 0; i-- {
		entry := s.auditLogs[i]
		if entry.BranchID != query.BranchID {
			continue
		}
		if entry.CreatedAt.Before(query.From) || !entry.CreatedAt.Before(query.To) {
			continue
		}
		if query.Action != "" && entry.Action != query.Action {
			continue
		}
		if query.Actor != "" && !strings.EqualFold(entry.ActorUsername, query.Actor) {
			continue
		}
		logs = append(logs, entry)
		if len(logs) >= limit {
			break
		}
	}
	return logs, nil
}

func (s *Store) CreateUser(_ context.Context, user domain.UserAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	username := strings.ToLower(strings.TrimSpace(user.Username))
	if username == "" || user.Password == "" || user.Role == "" {
		return store.ErrInvalidTransaction
	}
	if _, exists := s.usersByUsername[username]; exists {
		return store.ErrInvalidTransaction
	}
	user.Username = username
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	s.usersByUsername[username] = user
	return nil
}

func (s *Store) ListUsers(_ context.Context) ([]domain.UserAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]domain.UserAccount, 0, len(s.usersByUsername))
	for _, user := range s.usersByUsername {
		users = append(users, user)
	}
	slices.SortFunc(users, func(a, b domain.UserAccount) int {
		return cmpString(a.Username, b.Username)
	})
	return users, nil
}

func (s *Store) UpdateUserPassword(_ context.Context, username string, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	username = strings.ToLower(strings.TrimSpace(username))
	user, ok := s.usersByUsername[username]
	if !ok {
		return store.ErrNotFound
	}
	user.Password = password
	s.usersByUsername[username] = user
	return nil
}

func digitsOnly(value string) string {
	var b strings.Builder
	for _, r := range value {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func cmpString(a string, b string) int {
	if a < b {
		return -1
	}
	if a > b {
		return 1
	}
	return 0
}

func cloneStay(src *domain.Stay) *domain.Stay {
	dst := *src
	dst.Charges = append([]domain.Charge(nil), src.Charges...)
	dst.Payments = append([]domain.Payment(nil), src.Payments...)
	if src.FinalBill != nil {
		bill := *src.FinalBill
		dst.FinalBill = &bill
	}
	if src.CheckedOutAt != nil {
		at := *src.CheckedOutAt
		dst.CheckedOutAt = &at
	}
	return &dst
}

func cloneCompanyBill(src domain.CompanyBill) domain.CompanyBill {
	dst := src
	dst.StayIDs = append([]string(nil), src.StayIDs...)
	dst.Rooms = append([]string(nil), src.Rooms...)
	if src.PaidAt != nil {
		at := *src.PaidAt
		dst.PaidAt = &at
	}
	return dst
}
