package httpapi

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"frontoffice/internal/billing"
	"frontoffice/internal/domain"
)

type userStoreStub struct {
	mu      sync.Mutex
	users   map[string]domain.UserAccount
	updates int
}

func (s *userStoreStub) CreateUser(_ context.Context, user domain.UserAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.users == nil {
		s.users = make(map[string]domain.UserAccount)
	}
	s.users[user.Username] = user
	return nil
}

func (s *userStoreStub) ListUsers(_ context.Context) ([]domain.UserAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.UserAccount, 0, len(s.users))
	for _, user := range s.users {
		out = append(out, user)
	}
	return out, nil
}

func (s *userStoreStub) UpdateUserPassword(_ context.Context, username string, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user := s.users[username]
	user.Password = password
	s.users[username] = user
	s.updates++
	return nil
}

func legacyAdminStore() *userStoreStub {
	return &userStoreStub{
		users: map[string]domain.UserAccount{
			"admin": {
				Username:  "admin",
				Password:  "admin123",
				Role:      domain.RoleAdmin,
				BranchID:  "anna-salai",
				Active:    true,
				CreatedAt: time.Now().UTC(),
			},
		},
	}
}

func TestAuthManagerUpgradesLegacyPlainPassword(t *testing.T) {
	store := legacyAdminStore()

	manager := NewAuthManager("test-secret", time.Hour, nil, store)
	resp, err := manager.Login(context.Background(), domain.LoginRequest{Username: "admin", Password: "admin123"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if resp.BranchID != "anna-salai" {
		t.Fatalf("expected branch in login response, got %q", resp.BranchID)
	}

	users, err := store.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("list users failed: %v", err)
	}
	if len(users) != 1 {
		t.Fatalf("expected 1 user, got %d", len(users))
	}
	if !strings.HasPrefix(users[0].Password, "$2") {
		t.Fatalf("expected bcrypt password hash, got %s", users[0].Password)
	}
}

func TestTokenCarriesRoleAndBranch(t *testing.T) {
	manager := NewAuthManager("test-secret", time.Hour, nil, legacyAdminStore())

	resp, err := manager.Login(context.Background(), domain.LoginRequest{Username: "Admin ", Password: "admin123"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	actor, err := manager.ParseToken(resp.AccessToken)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if actor.Username != "admin" || actor.Role != domain.RoleAdmin || actor.BranchID != "anna-salai" {
		t.Fatalf("unexpected actor %+v", actor)
	}

	other := NewAuthManager("another-secret", time.Hour, nil, legacyAdminStore())
	if _, err := other.ParseToken(resp.AccessToken); err == nil {
		t.Fatalf("expected token signed with a different secret to be rejected")
	}
}

func TestCreateStaffStoresPasswordHash(t *testing.T) {
	store := legacyAdminStore()
	manager := NewAuthManager("test-secret", time.Hour, nil, store)

	user, err := manager.CreateStaff(context.Background(), domain.StaffCreateRequest{
		Username: "Meena",
		Password: "pass1234",
		Role:     domain.RoleFrontOffice,
		BranchID: "erode-road",
	})
	if err != nil {
		t.Fatalf("create staff failed: %v", err)
	}
	if user.Username != "meena" || user.BranchID != "erode-road" {
		t.Fatalf("unexpected user %+v", user)
	}

	saved := store.users["meena"]
	if saved.Password == "pass1234" || !strings.HasPrefix(saved.Password, "$2") {
		t.Fatalf("expected bcrypt hash, got %s", saved.Password)
	}

	resp, err := manager.Login(context.Background(), domain.LoginRequest{Username: "meena", Password: "pass1234"})
	if err != nil {
		t.Fatalf("login with new staff failed: %v", err)
	}
	if resp.Role != domain.RoleFrontOffice || resp.BranchID != "erode-road" {
		t.Fatalf("unexpected login response %+v", resp)
	}

	staff := manager.ListStaff(context.Background(), "erode-road")
	if len(staff) != 1 || staff[0].Username != "meena" {
		t.Fatalf("expected one erode-road staff member, got %+v", staff)
	}
}

func TestCreateStaffRejectsBadInput(t *testing.T) {
	manager := NewAuthManager("test-secret", time.Hour, nil, legacyAdminStore())
	ctx := context.Background()

	if _, err := manager.CreateStaff(ctx, domain.StaffCreateRequest{Username: "abc", Password: "pass1234", Role: domain.RoleFMO, BranchID: "anna-salai"}); err == nil {
		t.Fatalf("expected short username to be rejected")
	}
	if _, err := manager.CreateStaff(ctx, domain.StaffCreateRequest{Username: "night-clerk", Password: "pass1234", Role: "cashier", BranchID: "anna-salai"}); err == nil {
		t.Fatalf("expected unknown role to be rejected")
	}
	_, err := manager.CreateStaff(ctx, domain.StaffCreateRequest{Username: "night-clerk", Password: "pass1234", Role: domain.RoleFMO, BranchID: "ooty"})
	if !errors.Is(err, billing.ErrUnknownBranch) {
		t.Fatalf("expected unknown branch, got %v", err)
	}
	if _, err := manager.CreateStaff(ctx, domain.StaffCreateRequest{Username: "admin", Password: "pass1234", Role: domain.RoleFMO, BranchID: "anna-salai"}); err == nil {
		t.Fatalf("expected duplicate username to be rejected")
	}
}

func TestInactiveAccountCannotLogin(t *testing.T) {
	store := legacyAdminStore()
	user := store.users["admin"]
	user.Active = false
	store.users["admin"] = user

	manager := NewAuthManager("test-secret", time.Hour, nil, store)
	if _, err := manager.Login(context.Background(), domain.LoginRequest{Username: "admin", Password: "admin123"}); err == nil {
		t.Fatalf("expected inactive account to be refused")
	}
}
