package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/shopspring/decimal"

	"frontoffice/internal/domain"
	"frontoffice/internal/store"
	"frontoffice/internal/xid"
)

//go:embed schema.sql
var schemaSQL string

type Store struct {
	db *sql.DB
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(8)
	db.SetMaxOpenConns(30)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Migrate applies the embedded schema. Every statement is idempotent.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

func (s *Store) ListRooms(ctx context.Context, branchID string) ([]domain.Room, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT number, branch_id, floor, type, status, nightly_rate, updated_at
		FROM rooms
		WHERE branch_id = $1
		ORDER BY floor, number
	`, branchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rooms := make([]domain.Room, 0, 16)
	for rows.Next() {
		var room domain.Room
		if err := rows.Scan(&room.Number, &room.BranchID, &room.Floor, &room.Type, &room.Status, &room.NightlyRate, &room.UpdatedAt); err != nil {
			return nil, err
		}
		room.UpdatedAt = room.UpdatedAt.UTC()
		rooms = append(rooms, room)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(rooms) == 0 {
		return nil, store.ErrNotFound
	}
	return rooms, nil
}

func (s *Store) GetRoom(ctx context.Context, branchID string, number string) (*domain.Room, error) {
	var room domain.Room
	err := s.db.QueryRowContext(ctx, `
		SELECT number, branch_id, floor, type, status, nightly_rate, updated_at
		FROM rooms
		WHERE branch_id = $1 AND number = $2
	`, branchID, number).Scan(&room.Number, &room.BranchID, &room.Floor, &room.Type, &room.Status, &room.NightlyRate, &room.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	room.UpdatedAt = room.UpdatedAt.UTC()
	return &room, nil
}

func (s *Store) SetRoomStatus(ctx context.Context, branchID string, number string, status string, at time.Time) (*domain.Room, error) {
	var room domain.Room
	err := s.db.QueryRowContext(ctx, `
		UPDATE rooms
		SET status = $3, updated_at = $4
		WHERE branch_id = $1 AND number = $2
		RETURNING number, branch_id, floor, type, status, nightly_rate, updated_at
	`, branchID, number, status, at).Scan(&room.Number, &room.BranchID, &room.Floor, &room.Type, &room.Status, &room.NightlyRate, &room.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	room.UpdatedAt = room.UpdatedAt.UTC()
	return &room, nil
}

func (s *Store) CreateStay(ctx context.Context, stay domain.Stay) (*domain.Stay, error) {
	if stay.ID == "" || stay.BranchID == "" || stay.RoomNumber == "" {
		return nil, store.ErrInvalidTransaction
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
		UPDATE rooms
		SET status = 'occupied', updated_at = $3
		WHERE branch_id = $1 AND number = $2 AND status = 'available'
	`, stay.BranchID, stay.RoomNumber, stay.CheckInAt)
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		var exists bool
		if err := tx.QueryRowContext(ctx, `
			SELECT EXISTS (SELECT 1 FROM rooms WHERE branch_id = $1 AND number = $2)
		`, stay.BranchID, stay.RoomNumber).Scan(&exists); err != nil {
			return nil, err
		}
		if !exists {
			return nil, store.ErrNotFound
		}
		return nil, store.ErrRoomUnavailable
	}

	stay.Version = 1
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO stays (
			id, branch_id, room_number, guest_name, phone, id_proof_type, id_proof_number, company_id,
			check_in_at, original_nights, nightly_rate, extra_nights, amount_paid, status, checkout_phase, version
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
	`, stay.ID, stay.BranchID, stay.RoomNumber, stay.GuestName, stay.Phone, stay.IDProofType, stay.IDProofNumber, nullIfEmpty(stay.CompanyID),
		stay.CheckInAt, stay.OriginalNights, stay.NightlyRate, stay.ExtraNights, stay.AmountPaid, stay.Status, stay.CheckoutPhase, stay.Version); err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrInvalidTransaction
		}
		return nil, err
	}

	if err := insertCharges(ctx, tx, stay.ID, stay.Charges); err != nil {
		return nil, err
	}
	if err := insertPayments(ctx, tx, stay.Payments); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	created := stay
	return &created, nil
}

const staySelect = `
	SELECT id, branch_id, room_number, guest_name, phone, id_proof_type, id_proof_number, company_id,
		check_in_at, original_nights, nightly_rate, extra_nights, amount_paid, status, checkout_phase,
		final_subtotal, final_tax, final_total, final_balance, checked_out_at, checked_out_by, version
	FROM stays
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanStay(row rowScanner) (domain.Stay, error) {
	var (
		stay          domain.Stay
		companyID     sql.NullString
		finalSubtotal decimal.NullDecimal
		finalTax      decimal.NullDecimal
		finalTotal    decimal.NullDecimal
		finalBalance  decimal.NullDecimal
		checkedOutAt  sql.NullTime
	)
	if err := row.Scan(
		&stay.ID, &stay.BranchID, &stay.RoomNumber, &stay.GuestName, &stay.Phone, &stay.IDProofType, &stay.IDProofNumber, &companyID,
		&stay.CheckInAt, &stay.OriginalNights, &stay.NightlyRate, &stay.ExtraNights, &stay.AmountPaid, &stay.Status, &stay.CheckoutPhase,
		&finalSubtotal, &finalTax, &finalTotal, &finalBalance, &checkedOutAt, &stay.CheckedOutBy, &stay.Version,
	); err != nil {
		return domain.Stay{}, err
	}

	stay.CompanyID = companyID.String
	stay.CheckInAt = stay.CheckInAt.UTC()
	if finalTotal.Valid {
		stay.FinalBill = &domain.BillingResult{
			Subtotal:   finalSubtotal.Decimal,
			TaxAmount:  finalTax.Decimal,
			Total:      finalTotal.Decimal,
			BalanceDue: finalBalance.Decimal,
		}
	}
	if checkedOutAt.Valid {
		at := checkedOutAt.Time.UTC()
		stay.CheckedOutAt = &at
	}
	return stay, nil
}

func (s *Store) GetStay(ctx context.Context, stayID string) (*domain.Stay, error) {
	stay, err := scanStay(s.db.QueryRowContext(ctx, staySelect+` WHERE id = $1`, stayID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}

	stays := []domain.Stay{stay}
	if err := s.hydrate(ctx, s.db, stays); err != nil {
		return nil, err
	}
	return &stays[0], nil
}

func (s *Store) SearchOpenStays(ctx context.Context, branchID string, search domain.StaySearch) ([]domain.Stay, error) {
	query := strings.TrimSpace(search.Query)
	if query == "" {
		return []domain.Stay{}, nil
	}
	digits := digitsOnly(query)

	var where string
	args := []any{branchID, query}
	switch search.By {
	case "name":
		where = `guest_name ILIKE '%' || $2 || '%'`
	case "room":
		where = `lower(room_number) = lower($2)`
	case "phone":
		if digits == "" {
			return []domain.Stay{}, nil
		}
		where = `regexp_replace(phone, '\D', '', 'g') LIKE '%' || $2 || '%'`
		args = []any{branchID, digits}
	default:
		where = `(guest_name ILIKE '%' || $2 || '%'
			OR lower(room_number) = lower($2)
			OR ($3 <> '' AND regexp_replace(phone, '\D', '', 'g') LIKE '%' || $3 || '%'))`
		args = append(args, digits)
	}

	return s.queryStays(ctx, staySelect+`
		WHERE branch_id = $1 AND status = 'open' AND `+where+`
		ORDER BY room_number
	`, args...)
}

func (s *Store) ListOpenStays(ctx context.Context, branchID string) ([]domain.Stay, error) {
	return s.queryStays(ctx, staySelect+`
		WHERE branch_id = $1 AND status = 'open'
		ORDER BY room_number
	`, branchID)
}

func (s *Store) ListCheckedOutStays(ctx context.Context, branchID string, from time.Time, to time.Time) ([]domain.Stay, error) {
	return s.queryStays(ctx, staySelect+`
		WHERE branch_id = $1 AND status = 'checked_out'
			AND checked_out_at >= $2
			AND checked_out_at < $3
		ORDER BY checked_out_at
	`, branchID, from, to)
}

func (s *Store) queryStays(ctx context.Context, query string, args ...any) ([]domain.Stay, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	stays := make([]domain.Stay, 0, 16)
	for rows.Next() {
		stay, err := scanStay(rows)
		if err != nil {
			_ = rows.Close()
			return nil, err
		}
		stays = append(stays, stay)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, err
	}
	_ = rows.Close()

	if err := s.hydrate(ctx, s.db, stays); err != nil {
		return nil, err
	}
	return stays, nil
}

// hydrate loads charges and payments for the given stays in two queries.
func (s *Store) hydrate(ctx context.Context, q queryer, stays []domain.Stay) error {
	if len(stays) == 0 {
		return nil
	}

	ids := make([]string, 0, len(stays))
	index := make(map[string]int, len(stays))
	for i := range stays {
		ids = append(ids, stays[i].ID)
		index[stays[i].ID] = i
		stays[i].Charges = []domain.Charge{}
		stays[i].Payments = []domain.Payment{}
	}

	chargeRows, err := q.QueryContext(ctx, `
		SELECT stay_id, id, kind, description, amount, created_by, created_at
		FROM stay_charges
		WHERE stay_id = ANY($1)
		ORDER BY stay_id, position
	`, ids)
	if err != nil {
		return err
	}
	for chargeRows.Next() {
		var stayID string
		var charge domain.Charge
		if err := chargeRows.Scan(&stayID, &charge.ID, &charge.Kind, &charge.Description, &charge.Amount, &charge.CreatedBy, &charge.CreatedAt); err != nil {
			_ = chargeRows.Close()
			return err
		}
		charge.CreatedAt = charge.CreatedAt.UTC()
		i := index[stayID]
		stays[i].Charges = append(stays[i].Charges, charge)
	}
	if err := chargeRows.Err(); err != nil {
		_ = chargeRows.Close()
		return err
	}
	_ = chargeRows.Close()

	paymentRows, err := q.QueryContext(ctx, `
		SELECT id, stay_id, branch_id, method, amount, reference, receipt_no, received_by, received_at
		FROM payments
		WHERE stay_id = ANY($1)
		ORDER BY received_at, id
	`, ids)
	if err != nil {
		return err
	}
	defer paymentRows.Close()
	for paymentRows.Next() {
		payment, err := scanPayment(paymentRows)
		if err != nil {
			return err
		}
		i := index[payment.StayID]
		stays[i].Payments = append(stays[i].Payments, payment)
	}
	return paymentRows.Err()
}

func scanPayment(row rowScanner) (domain.Payment, error) {
	var payment domain.Payment
	if err := row.Scan(&payment.ID, &payment.StayID, &payment.BranchID, &payment.Method, &payment.Amount, &payment.Reference, &payment.ReceiptNo, &payment.ReceivedBy, &payment.ReceivedAt); err != nil {
		return domain.Payment{}, err
	}
	payment.ReceivedAt = payment.ReceivedAt.UTC()
	return payment, nil
}

func (s *Store) UpdateStay(ctx context.Context, stay domain.Stay, expectedVersion int64) (*domain.Stay, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	var (
		currentVersion int64
		currentStatus  string
		branchID       string
		roomNumber     string
	)
	err = tx.QueryRowContext(ctx, `
		SELECT version, status, branch_id, room_number
		FROM stays
		WHERE id = $1
		FOR UPDATE
	`, stay.ID).Scan(&currentVersion, &currentStatus, &branchID, &roomNumber)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	if currentVersion != expectedVersion {
		return nil, store.ErrVersionConflict
	}
	if currentStatus == domain.StayStatusCheckedOut {
		return nil, store.ErrInvalidTransaction
	}
	if branchID != stay.BranchID || roomNumber != stay.RoomNumber {
		return nil, store.ErrInvalidTransaction
	}

	var finalSubtotal, finalTax, finalTotal, finalBalance decimal.NullDecimal
	if stay.FinalBill != nil {
		finalSubtotal = decimal.NewNullDecimal(stay.FinalBill.Subtotal)
		finalTax = decimal.NewNullDecimal(stay.FinalBill.TaxAmount)
		finalTotal = decimal.NewNullDecimal(stay.FinalBill.Total)
		finalBalance = decimal.NewNullDecimal(stay.FinalBill.BalanceDue)
	}

	stay.Version = expectedVersion + 1
	if _, err := tx.ExecContext(ctx, `
		UPDATE stays
		SET guest_name = $2, phone = $3, company_id = $4, extra_nights = $5, amount_paid = $6,
			status = $7, checkout_phase = $8, final_subtotal = $9, final_tax = $10, final_total = $11,
			final_balance = $12, checked_out_at = $13, checked_out_by = $14, version = $15
		WHERE id = $1
	`, stay.ID, stay.GuestName, stay.Phone, nullIfEmpty(stay.CompanyID), stay.ExtraNights, stay.AmountPaid,
		stay.Status, stay.CheckoutPhase, finalSubtotal, finalTax, finalTotal,
		finalBalance, nullTime(stay.CheckedOutAt), stay.CheckedOutBy, stay.Version); err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM stay_charges WHERE stay_id = $1`, stay.ID); err != nil {
		return nil, err
	}
	if err := insertCharges(ctx, tx, stay.ID, stay.Charges); err != nil {
		return nil, err
	}
	if err := insertPayments(ctx, tx, stay.Payments); err != nil {
		return nil, err
	}

	if stay.Status == domain.StayStatusCheckedOut {
		at := time.Now().UTC()
		if stay.CheckedOutAt != nil {
			at = *stay.CheckedOutAt
		}
		if _, err := tx.ExecContext(ctx, `
			UPDATE rooms
			SET status = 'dirty', updated_at = $3
			WHERE branch_id = $1 AND number = $2
		`, stay.BranchID, stay.RoomNumber, at); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	updated := stay
	return &updated, nil
}

func insertCharges(ctx context.Context, tx *sql.Tx, stayID string, charges []domain.Charge) error {
	for i, charge := range charges {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO stay_charges (id, stay_id, position, kind, description, amount, created_by, created_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		`, charge.ID, stayID, i, charge.Kind, charge.Description, charge.Amount, charge.CreatedBy, charge.CreatedAt); err != nil {
			if isUniqueViolation(err) {
				return store.ErrInvalidTransaction
			}
			return err
		}
	}
	return nil
}

// insertPayments is append-only; payments already stored are left untouched.
func insertPayments(ctx context.Context, tx *sql.Tx, payments []domain.Payment) error {
	for _, payment := range payments {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO payments (id, stay_id, branch_id, method, amount, reference, receipt_no, received_by, received_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
			ON CONFLICT (id) DO NOTHING
		`, payment.ID, payment.StayID, payment.BranchID, payment.Method, payment.Amount, payment.Reference, payment.ReceiptNo, payment.ReceivedBy, payment.ReceivedAt); err != nil {
			if isUniqueViolation(err) {
				return store.ErrInvalidTransaction
			}
			return err
		}
	}
	return nil
}

func (s *Store) ListPayments(ctx context.Context, branchID string, from time.Time, to time.Time) ([]domain.Payment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, stay_id, branch_id, method, amount, reference, receipt_no, received_by, received_at
		FROM payments
		WHERE branch_id = $1
			AND received_at >= $2
			AND received_at < $3
		ORDER BY received_at
	`, branchID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	payments := make([]domain.Payment, 0, 32)
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, payment)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return payments, nil
}

func (s *Store) CountCheckIns(ctx context.Context, branchID string, from time.Time, to time.Time) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM stays
		WHERE branch_id = $1
			AND check_in_at >= $2
			AND check_in_at < $3
	`, branchID, from, to).Scan(&count)
	return count, err
}

func (s *Store) CreateCompany(ctx context.Context, company domain.Company) (*domain.Company, error) {
	if company.ID == "" || strings.TrimSpace(company.Name) == "" {
		return nil, store.ErrInvalidTransaction
	}
	if company.CreatedAt.IsZero() {
		company.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO companies (id, name, gstin, contact_name, phone, email, credit_limit, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, company.ID, company.Name, company.GSTIN, company.ContactName, company.Phone, company.Email, company.CreditLimit, company.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrInvalidTransaction
		}
		return nil, err
	}
	created := company
	return &created, nil
}

func (s *Store) GetCompany(ctx context.Context, companyID string) (*domain.Company, error) {
	var company domain.Company
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, gstin, contact_name, phone, email, credit_limit, created_at
		FROM companies
		WHERE id = $1
	`, companyID).Scan(&company.ID, &company.Name, &company.GSTIN, &company.ContactName, &company.Phone, &company.Email, &company.CreditLimit, &company.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	company.CreatedAt = company.CreatedAt.UTC()
	return &company, nil
}

func (s *Store) ListCompanies(ctx context.Context) ([]domain.Company, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, gstin, contact_name, phone, email, credit_limit, created_at
		FROM companies
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	companies := make([]domain.Company, 0, 16)
	for rows.Next() {
		var company domain.Company
		if err := rows.Scan(&company.ID, &company.Name, &company.GSTIN, &company.ContactName, &company.Phone, &company.Email, &company.CreditLimit, &company.CreatedAt); err != nil {
			return nil, err
		}
		company.CreatedAt = company.CreatedAt.UTC()
		companies = append(companies, company)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return companies, nil
}

func (s *Store) CreateCompanyBill(ctx context.Context, bill domain.CompanyBill) (*domain.CompanyBill, error) {
	if bill.ID == "" || len(bill.StayIDs) == 0 {
		return nil, store.ErrInvalidTransaction
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO company_bills (
			id, bill_number, company_id, branch_id, nights, amount, gst_amount, total_amount,
			status, period_from, period_to, issued_at, due_date, paid_at
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
	`, bill.ID, bill.BillNumber, bill.CompanyID, bill.BranchID, bill.Nights, bill.Amount, bill.GSTAmount, bill.TotalAmount,
		bill.Status, bill.PeriodFrom, bill.PeriodTo, bill.IssuedAt, bill.DueDate, nullTime(bill.PaidAt)); err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrInvalidTransaction
		}
		return nil, err
	}

	for _, stayID := range bill.StayIDs {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO company_bill_stays (bill_id, stay_id)
			VALUES ($1,$2)
		`, bill.ID, stayID); err != nil {
			if isUniqueViolation(err) {
				return nil, fmt.Errorf("%w: stay %s already billed", store.ErrInvalidTransaction, stayID)
			}
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	created := bill
	return &created, nil
}

const companyBillSelect = `
	SELECT id, bill_number, company_id, branch_id, nights, amount, gst_amount, total_amount,
		status, period_from, period_to, issued_at, due_date, paid_at
	FROM company_bills
`

func scanCompanyBill(row rowScanner) (domain.CompanyBill, error) {
	var bill domain.CompanyBill
	var paidAt sql.NullTime
	if err := row.Scan(&bill.ID, &bill.BillNumber, &bill.CompanyID, &bill.BranchID, &bill.Nights, &bill.Amount, &bill.GSTAmount, &bill.TotalAmount,
		&bill.Status, &bill.PeriodFrom, &bill.PeriodTo, &bill.IssuedAt, &bill.DueDate, &paidAt); err != nil {
		return domain.CompanyBill{}, err
	}
	bill.PeriodFrom = bill.PeriodFrom.UTC()
	bill.PeriodTo = bill.PeriodTo.UTC()
	bill.IssuedAt = bill.IssuedAt.UTC()
	bill.DueDate = bill.DueDate.UTC()
	if paidAt.Valid {
		at := paidAt.Time.UTC()
		bill.PaidAt = &at
	}
	return bill, nil
}

func (s *Store) GetCompanyBill(ctx context.Context, billID string) (*domain.CompanyBill, error) {
	bill, err := scanCompanyBill(s.db.QueryRowContext(ctx, companyBillSelect+` WHERE id = $1`, billID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	bills := []domain.CompanyBill{bill}
	if err := s.loadBillStays(ctx, bills); err != nil {
		return nil, err
	}
	return &bills[0], nil
}

func (s *Store) ListCompanyBills(ctx context.Context, branchID string, companyID string) ([]domain.CompanyBill, error) {
	rows, err := s.db.QueryContext(ctx, companyBillSelect+`
		WHERE ($1 = '' OR branch_id = $1)
			AND ($2 = '' OR company_id = $2)
		ORDER BY issued_at DESC
	`, branchID, companyID)
	if err != nil {
		return nil, err
	}

	bills := make([]domain.CompanyBill, 0, 16)
	for rows.Next() {
		bill, err := scanCompanyBill(rows)
		if err != nil {
			_ = rows.Close()
			return nil, err
		}
		bills = append(bills, bill)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, err
	}
	_ = rows.Close()

	if err := s.loadBillStays(ctx, bills); err != nil {
		return nil, err
	}
	return bills, nil
}

func (s *Store) loadBillStays(ctx context.Context, bills []domain.CompanyBill) error {
	if len(bills) == 0 {
		return nil
	}
	ids := make([]string, 0, len(bills))
	index := make(map[string]int, len(bills))
	for i := range bills {
		ids = append(ids, bills[i].ID)
		index[bills[i].ID] = i
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT cbs.bill_id, cbs.stay_id, st.room_number
		FROM company_bill_stays cbs
		JOIN stays st ON st.id = cbs.stay_id
		WHERE cbs.bill_id = ANY($1)
		ORDER BY st.checked_out_at, st.id
	`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var billID, stayID, room string
		if err := rows.Scan(&billID, &stayID, &room); err != nil {
			return err
		}
		i := index[billID]
		bills[i].StayIDs = append(bills[i].StayIDs, stayID)
		bills[i].Rooms = append(bills[i].Rooms, room)
	}
	return rows.Err()
}

func (s *Store) MarkCompanyBillPaid(ctx context.Context, billID string, paidAt time.Time) (*domain.CompanyBill, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE company_bills
		SET status = 'Paid', paid_at = $2
		WHERE id = $1 AND paid_at IS NULL
	`, billID, paidAt)
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		if _, err := s.GetCompanyBill(ctx, billID); err != nil {
			return nil, err
		}
		return nil, store.ErrInvalidTransaction
	}
	return s.GetCompanyBill(ctx, billID)
}

func (s *Store) CreateAuditLog(ctx context.Context, entry domain.AuditLog) error {
	if entry.ID == "" {
		entry.ID = xid.New("audit")
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_logs (
			id, branch_id, actor_username, actor_role, action, entity_type, entity_id, detail, created_at
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, entry.ID, entry.BranchID, entry.ActorUsername, entry.ActorRole, entry.Action, entry.EntityType, entry.EntityID, entry.Detail, entry.CreatedAt)
	return err
}

func (s *Store) ListAuditLogs(ctx context.Context, query domain.AuditLogQuery) ([]domain.AuditLog, error) {
	limit := query.Limit
	if limit < 1 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, branch_id, actor_username, actor_role, action, entity_type, entity_id, detail, created_at
		FROM audit_logs
		WHERE branch_id = $1
			AND created_at >= $2
			AND created_at < $3
			AND ($4 = '' OR action = $4)
			AND ($5 = '' OR LOWER(actor_username) = LOWER($5))
		ORDER BY created_at DESC
		LIMIT $6
	`, query.BranchID, query.From, query.To, query.Action, query.Actor, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := make([]domain.AuditLog, 0, limit)
	for rows.Next() {
		var entry domain.AuditLog
		if err := rows.Scan(&entry.ID, &entry.BranchID, &entry.ActorUsername, &entry.ActorRole, &entry.Action, &entry.EntityType, &entry.EntityID, &entry.Detail, &entry.CreatedAt); err != nil {
			return nil, err
		}
		entry.CreatedAt = entry.CreatedAt.UTC()
		logs = append(logs, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return logs, nil
}

func (s *Store) CreateUser(ctx context.Context, user domain.UserAccount) error {
	user.Username = strings.ToLower(strings.TrimSpace(user.Username))
	if user.Username == "" || strings.TrimSpace(user.Password) == "" || user.Role == "" {
		return store.ErrInvalidTransaction
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO app_users (username, password, role, branch_id, active, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,now())
	`, user.Username, user.Password, user.Role, user.BranchID, user.Active, user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrInvalidTransaction
		}
		return err
	}
	return nil
}

func (s *Store) ListUsers(ctx context.Context) ([]domain.UserAccount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT username, password, role, branch_id, active, created_at
		FROM app_users
		ORDER BY username ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]domain.UserAccount, 0, 16)
	for rows.Next() {
		var user domain.UserAccount
		if err := rows.Scan(&user.Username, &user.Password, &user.Role, &user.BranchID, &user.Active, &user.CreatedAt); err != nil {
			return nil, err
		}
		user.CreatedAt = user.CreatedAt.UTC()
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *Store) UpdateUserPassword(ctx context.Context, username string, password string) error {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" || strings.TrimSpace(password) == "" {
		return store.ErrInvalidTransaction
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE app_users
		SET password = $2, updated_at = now()
		WHERE username = $1
	`, username, password)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
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

func nullIfEmpty(val string) any {
	if val == "" {
		return nil
	}
	return val
}

func nullTime(val *time.Time) any {
	if val == nil {
		return nil
	}
	return *val
}
