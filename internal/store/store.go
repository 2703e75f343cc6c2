package store

import (
	"context"
	"errors"
	"time"

	"frontoffice/internal/domain"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidTransaction = errors.New("invalid request")
	ErrRoomUnavailable    = errors.New("room unavailable")
	ErrVersionConflict    = errors.New("stay was modified concurrently; reload and retry")
)

type Repository interface {
	ListRooms(ctx context.Context, branchID string) ([]domain.Room, error)
	GetRoom(ctx context.Context, branchID string, number string) (*domain.Room, error)
	SetRoomStatus(ctx context.Context, branchID string, number string, status string, at time.Time) (*domain.Room, error)

	// CreateStay occupies an available room and stores the stay in one step.
	CreateStay(ctx context.Context, stay domain.Stay) (*domain.Stay, error)
	GetStay(ctx context.Context, stayID string) (*domain.Stay, error)
	SearchOpenStays(ctx context.Context, branchID string, search domain.StaySearch) ([]domain.Stay, error)
	ListOpenStays(ctx context.Context, branchID string) ([]domain.Stay, error)
	ListCheckedOutStays(ctx context.Context, branchID string, from time.Time, to time.Time) ([]domain.Stay, error)
	// UpdateStay writes the stay only if its stored version still equals
	// expectedVersion, and bumps the version. A checked-out stay also
	// releases its room as dirty.
	UpdateStay(ctx context.Context, stay domain.Stay, expectedVersion int64) (*domain.Stay, error)
	ListPayments(ctx context.Context, branchID string, from time.Time, to time.Time) ([]domain.Payment, error)
	CountCheckIns(ctx context.Context, branchID string, from time.Time, to time.Time) (int64, error)

	CreateCompany(ctx context.Context, company domain.Company) (*domain.Company, error)
	GetCompany(ctx context.Context, companyID string) (*domain.Company, error)
	ListCompanies(ctx context.Context) ([]domain.Company, error)
	CreateCompanyBill(ctx context.Context, bill domain.CompanyBill) (*domain.CompanyBill, error)
	GetCompanyBill(ctx context.Context, billID string) (*domain.CompanyBill, error)
	ListCompanyBills(ctx context.Context, branchID string, companyID string) ([]domain.CompanyBill, error)
	MarkCompanyBillPaid(ctx context.Context, billID string, paidAt time.Time) (*domain.CompanyBill, error)

	CreateAuditLog(ctx context.Context, entry domain.AuditLog) error
	// ListAuditLogs filters before applying the limit, newest first.
	ListAuditLogs(ctx context.Context, query domain.AuditLogQuery) ([]domain.AuditLog, error)

	CreateUser(ctx context.Context, user domain.UserAccount) error
	ListUsers(ctx context.Context) ([]domain.UserAccount, error)
	UpdateUserPassword(ctx context.Context, username string, password string) error
}
