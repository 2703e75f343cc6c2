package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Branch struct {
	ID         string `json:"id" mapstructure:"id"`
	Name       string `json:"name" mapstructure:"name"`
	GSTEnabled bool   `json:"gst_enabled" mapstructure:"gst_enabled"`
}

type Charge struct {
	ID          string          `json:"id"`
	Kind        string          `json:"kind"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	CreatedBy   string          `json:"created_by,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// BillingResult is derived from a stay and its branch on every read; it is
// only persisted as the final snapshot of a completed checkout.
type BillingResult struct {
	Subtotal   decimal.Decimal `json:"subtotal"`
	TaxAmount  decimal.Decimal `json:"tax_amount"`
	Total      decimal.Decimal `json:"total"`
	BalanceDue decimal.Decimal `json:"balance_due"`
}

type Room struct {
	Number      string          `json:"number"`
	BranchID    string          `json:"branch_id"`
	Floor       int             `json:"floor"`
	Type        string          `json:"type"`
	Status      string          `json:"status"`
	NightlyRate decimal.Decimal `json:"nightly_rate"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type Payment struct {
	ID         string          `json:"id"`
	StayID     string          `json:"stay_id"`
	BranchID   string          `json:"branch_id"`
	Method     string          `json:"method"`
	Amount     decimal.Decimal `json:"amount"`
	Reference  string          `json:"reference,omitempty"`
	ReceiptNo  string          `json:"receipt_no"`
	ReceivedBy string          `json:"received_by"`
	ReceivedAt time.Time       `json:"received_at"`
}

type Stay struct {
	ID             string          `json:"id"`
	BranchID       string          `json:"branch_id"`
	RoomNumber     string          `json:"room_number"`
	GuestName      string          `json:"guest_name"`
	Phone          string          `json:"phone"`
	IDProofType    string          `json:"id_proof_type,omitempty"`
	IDProofNumber  string          `json:"id_proof_number,omitempty"`
	CompanyID      string          `json:"company_id,omitempty"`
	CheckInAt      time.Time       `json:"check_in_at"`
	OriginalNights int             `json:"original_nights"`
	NightlyRate    decimal.Decimal `json:"nightly_rate"`
	ExtraNights    int             `json:"extra_nights"`
	Charges        []Charge        `json:"charges"`
	Payments       []Payment       `json:"payments"`
	AmountPaid     decimal.Decimal `json:"amount_paid"`
	Status         string          `json:"status"`
	CheckoutPhase  string          `json:"checkout_phase,omitempty"`
	FinalBill      *BillingResult  `json:"final_bill,omitempty"`
	CheckedOutAt   *time.Time      `json:"checked_out_at,omitempty"`
	CheckedOutBy   string          `json:"checked_out_by,omitempty"`
	Version        int64           `json:"version"`
}

type StaySearch struct {
	By    string `json:"by"`
	Query string `json:"query"`
}

type StaySummary struct {
	ID         string          `json:"id"`
	RoomNumber string          `json:"room_number"`
	GuestName  string          `json:"guest_name"`
	Phone      string          `json:"phone"`
	CheckInAt  time.Time       `json:"check_in_at"`
	AmountPaid decimal.Decimal `json:"amount_paid"`
}

type StaySearchResponse struct {
	State string        `json:"state"`
	Stays []StaySummary `json:"stays"`
}

// GuestProfile groups a branch's stays by guest. TotalBilled counts
// checked-out stays only.
type GuestProfile struct {
	Name        string          `json:"name"`
	Phone       string          `json:"phone"`
	CompanyID   string          `json:"company_id,omitempty"`
	Stays       int             `json:"stays"`
	LastVisit   time.Time       `json:"last_visit"`
	TotalBilled decimal.Decimal `json:"total_billed"`
	InHouse     bool            `json:"in_house"`
	RoomNumber  string          `json:"room_number,omitempty"`
}

type StayRecordSearch struct {
	Query  string `json:"query"`
	Status string `json:"status"`
	From   string `json:"from"`
	To     string `json:"to"`
}

type StayRecord struct {
	ID           string          `json:"id"`
	RoomNumber   string          `json:"room_number"`
	GuestName    string          `json:"guest_name"`
	Phone        string          `json:"phone"`
	CompanyID    string          `json:"company_id,omitempty"`
	Status       string          `json:"status"`
	CheckInAt    time.Time       `json:"check_in_at"`
	CheckedOutAt *time.Time      `json:"checked_out_at,omitempty"`
	Total        decimal.Decimal `json:"total"`
	BalanceDue   decimal.Decimal `json:"balance_due"`
}

// LiveRoomBoard is the floor view of a branch. CompanyGuests is nil for
// front-office staff.
type LiveRoomBoard struct {
	BranchID      string         `json:"branch_id"`
	Rooms         []Room         `json:"rooms"`
	ByStatus      map[string]int `json:"by_status"`
	GuestsStaying int            `json:"guests_staying"`
	PendingBills  int            `json:"pending_bills"`
	CompanyGuests *int           `json:"company_guests,omitempty"`
	UpdatedAt     string         `json:"updated_at"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	Role        string `json:"role"`
	BranchID    string `json:"branch_id"`
	ExpiresAt   string `json:"expires_at"`
}

type Actor struct {
	Username string
	Role     string
	BranchID string
}

type MeResponse struct {
	Username string   `json:"username"`
	Role     string   `json:"role"`
	Branch   Branch   `json:"branch"`
	Sections []string `json:"sections"`
}

type CheckInRequest struct {
	BranchID      string          `json:"branch_id"`
	RoomNumber    string          `json:"room_number"`
	GuestName     string          `json:"guest_name"`
	Phone         string          `json:"phone"`
	IDProofType   string          `json:"id_proof_type"`
	IDProofNumber string          `json:"id_proof_number"`
	Nights        int             `json:"nights"`
	CompanyID     string          `json:"company_id,omitempty"`
	AdvancePaid   decimal.Decimal `json:"advance_paid"`
	PaymentMethod string          `json:"payment_method,omitempty"`
	Reference     string          `json:"reference,omitempty"`
}

type ManualChargeRequest struct {
	Description     string          `json:"description"`
	Amount          decimal.Decimal `json:"amount"`
	ExpectedVersion int64           `json:"expected_version,omitempty"`
}

type ExtraNightsRequest struct {
	ExtraNights     int   `json:"extra_nights"`
	ExpectedVersion int64 `json:"expected_version,omitempty"`
}

type CollectPaymentRequest struct {
	Method          string          `json:"method"`
	Amount          decimal.Decimal `json:"amount"`
	Reference       string          `json:"reference,omitempty"`
	ExpectedVersion int64           `json:"expected_version,omitempty"`
}

type CompleteCheckoutRequest struct {
	PaymentMethod   string `json:"payment_method,omitempty"`
	Reference       string `json:"reference,omitempty"`
	ExpectedVersion int64  `json:"expected_version,omitempty"`
}

type FolioResponse struct {
	Stay         Stay          `json:"stay"`
	Branch       Branch        `json:"branch"`
	Billing      BillingResult `json:"billing"`
	State        string        `json:"state"`
	PrintAllowed bool          `json:"print_allowed"`
	PrintRefusal string        `json:"print_refusal,omitempty"`
}

type CheckoutResponse struct {
	StayID       string        `json:"stay_id"`
	RoomNumber   string        `json:"room_number"`
	State        string        `json:"state"`
	Billing      BillingResult `json:"billing"`
	Payment      *Payment      `json:"payment,omitempty"`
	CheckedOutAt string        `json:"checked_out_at"`
}

type InvoiceResponse struct {
	InvoiceNumber string `json:"invoice_number"`
	StayID        string `json:"stay_id"`
	HTML          string `json:"html"`
}

type QuoteRequest struct {
	BranchID    string          `json:"branch_id"`
	Charges     []Charge        `json:"charges"`
	ExtraNights int             `json:"extra_nights"`
	NightlyRate decimal.Decimal `json:"nightly_rate"`
	AmountPaid  decimal.Decimal `json:"amount_paid"`
}

type QuoteResponse struct {
	Branch       Branch        `json:"branch"`
	Billing      BillingResult `json:"billing"`
	PrintAllowed bool          `json:"print_allowed"`
}

type RoomStatusRequest struct {
	Status string `json:"status"`
}

type OutstandingBalance struct {
	StayID     string          `json:"stay_id"`
	GuestName  string          `json:"guest_name"`
	RoomNumber string          `json:"room_number"`
	BalanceDue decimal.Decimal `json:"balance_due"`
	CheckInAt  time.Time       `json:"check_in_at"`
}

type Company struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	GSTIN       string          `json:"gstin,omitempty"`
	ContactName string          `json:"contact_name,omitempty"`
	Phone       string          `json:"phone,omitempty"`
	Email       string          `json:"email,omitempty"`
	CreditLimit decimal.Decimal `json:"credit_limit"`
	CreatedAt   time.Time       `json:"created_at"`
}

type CompanyCreateRequest struct {
	Name        string          `json:"name"`
	GSTIN       string          `json:"gstin"`
	ContactName string          `json:"contact_name"`
	Phone       string          `json:"phone"`
	Email       string          `json:"email"`
	CreditLimit decimal.Decimal `json:"credit_limit"`
}

type CompanyBill struct {
	ID          string          `json:"id"`
	BillNumber  string          `json:"bill_number"`
	CompanyID   string          `json:"company_id"`
	BranchID    string          `json:"branch_id"`
	StayIDs     []string        `json:"stay_ids"`
	Rooms       []string        `json:"rooms"`
	Nights      int             `json:"nights"`
	Amount      decimal.Decimal `json:"amount"`
	GSTAmount   decimal.Decimal `json:"gst_amount"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Status      string          `json:"status"`
	PeriodFrom  time.Time       `json:"period_from"`
	PeriodTo    time.Time       `json:"period_to"`
	IssuedAt    time.Time       `json:"issued_at"`
	DueDate     time.Time       `json:"due_date"`
	PaidAt      *time.Time      `json:"paid_at,omitempty"`
}

type CompanyBillRequest struct {
	BranchID  string `json:"branch_id"`
	CompanyID string `json:"company_id"`
	From      string `json:"from"`
	To        string `json:"to"`
}

type CompanyBillListResponse struct {
	Bills        []CompanyBill   `json:"bills"`
	TotalPending decimal.Decimal `json:"total_pending"`
	TotalPaid    decimal.Decimal `json:"total_paid"`
}

type StaffCreateRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
	BranchID string `json:"branch_id"`
}

type StaffUser struct {
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	BranchID  string    `json:"branch_id"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// UserAccount is an internal persistence model for auth credentials.
type UserAccount struct {
	Username  string
	Password  string
	Role      string
	BranchID  string
	Active    bool
	CreatedAt time.Time
}

type DailyReportPayment struct {
	Method   string          `json:"method"`
	Payments int64           `json:"payments"`
	Amount   decimal.Decimal `json:"amount"`
}

type DailyReport struct {
	BranchID       string               `json:"branch_id"`
	Date           string               `json:"date"`
	CheckIns       int64                `json:"check_ins"`
	CheckOuts      int64                `json:"check_outs"`
	RoomRevenue    decimal.Decimal      `json:"room_revenue"`
	GSTCollected   decimal.Decimal      `json:"gst_collected"`
	TotalBilled    decimal.Decimal      `json:"total_billed"`
	PaymentsTotal  decimal.Decimal      `json:"payments_total"`
	ByPayment      []DailyReportPayment `json:"by_payment"`
	OccupancyRate  float64              `json:"occupancy_rate"`
	RoomsOccupied  int                  `json:"rooms_occupied"`
	RoomsAvailable int                  `json:"rooms_available"`
}

type DashboardStats struct {
	BranchID        string         `json:"branch_id"`
	TotalRooms      int            `json:"total_rooms"`
	ByStatus        map[string]int `json:"by_status"`
	OccupancyRate   float64        `json:"occupancy_rate"`
	InHouseGuests   int            `json:"in_house_guests"`
	ArrivalsToday   int            `json:"arrivals_today"`
	DeparturesToday int            `json:"departures_today"`
	GeneratedAt     string         `json:"generated_at"`
}

type AuditLog struct {
	ID            string    `json:"id"`
	BranchID      string    `json:"branch_id"`
	ActorUsername string    `json:"actor_username"`
	ActorRole     string    `json:"actor_role"`
	Action        string    `json:"action"`
	EntityType    string    `json:"entity_type"`
	EntityID      string    `json:"entity_id"`
	Detail        string    `json:"detail"`
	CreatedAt     time.Time `json:"created_at"`
}

// AuditLogQuery selects entries in [From, To). Empty Action or Actor match any.
type AuditLogQuery struct {
	BranchID string
	From     time.Time
	To       time.Time
	Action   string
	Actor    string
	Limit    int
}

const (
	ChargeKindBase       = "base"
	ChargeKindService    = "service"
	ChargeKindExtraNight = "extra_night"
	ChargeKindManual     = "manual"
)

const (
	StayStatusOpen       = "open"
	StayStatusCheckedOut = "checked_out"
)

const (
	CheckoutSearching       = "searching"
	CheckoutFound           = "found"
	CheckoutAdjusting       = "adjusting"
	CheckoutAwaitingPayment = "awaiting_payment"
	CheckoutCompleted       = "completed"
)

const (
	RoomAvailable   = "available"
	RoomOccupied    = "occupied"
	RoomDirty       = "dirty"
	RoomMaintenance = "maintenance"
	RoomReserved    = "reserved"
)

const (
	PaymentCash    = "cash"
	PaymentCard    = "card"
	PaymentUPI     = "upi"
	PaymentBank    = "bank"
	PaymentCompany = "company"
)

const (
	BillStatusPaid    = "Paid"
	BillStatusPending = "Pending"
	BillStatusOverdue = "Overdue"
)

const (
	RoleAdmin       = "admin"
	RoleBMO         = "bmo"
	RoleFMO         = "fmo"
	RoleFrontOffice = "front-office"
)

const (
	AuditCheckIn     = "check-in"
	AuditCheckOut    = "check-out"
	AuditRoomStatus  = "room-status"
	AuditInvoice     = "invoice"
	AuditPayment     = "payment"
	AuditCharge      = "charge"
	AuditUserCreate  = "user-update"
	AuditCompanyBill = "company-bill"
)
