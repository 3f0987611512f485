package services

import (
	"context"
	"testing"

	"github.com/finflowhq/finflow-backend/internal/dto"
	"github.com/finflowhq/finflow-backend/internal/errs"
	"github.com/finflowhq/finflow-backend/internal/models"
	"github.com/finflowhq/finflow-backend/pkg/helpers"
)

type fakeUserStore struct {
	users     map[string]*models.User
	accounts  map[string][]models.Account
	createErr error
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{
		users:    make(map[string]*models.User),
		accounts: make(map[string][]models.Account),
	}
}

func (f *fakeUserStore) CreateWithAccounts(_ context.Context, user *models.User, accounts []models.Account) error {
	if f.createErr != nil {
		return f.createErr
	}
	if _, ok := f.users[user.UID]; ok {
		return errs.NewAlreadyExistsError("user already exists")
	}
	cp := *user
	f.users[user.UID] = &cp
	f.accounts[user.UID] = accounts
	return nil
}

func (f *fakeUserStore) GetByUID(_ context.Context, uid string) (*models.User, error) {
	u, ok := f.users[uid]
	if !ok {
		return nil, errs.NewNotFoundError("user not found")
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserStore) Update(_ context.Context, user *models.User) error {
	if _, ok := f.users[user.UID]; !ok {
		return errs.NewNotFoundError("user not found")
	}
	cp := *user
	f.users[user.UID] = &cp
	return nil
}

func TestGetOrProvisionFirstLogin(t *testing.T) {
	store := newFakeUserStore()
	svc := NewUserService(store)

	user, err := svc.GetOrProvision(helpers.TestCtx(), "uid-1", "a@b.com")
	if err != nil {
		t.Fatalf("GetOrProvision error: %v", err)
	}
	if user.Email != "a@b.com" {
		t.Fatalf("email = %q", user.Email)
	}

	accounts := store.accounts["uid-1"]
	if len(accounts) != 2 {
		t.Fatalf("default accounts = %d, want 2", len(accounts))
	}
	types := map[models.AccountType]bool{}
	for _, a := range accounts {
		types[a.Type] = true
		if !a.Balance.IsZero() {
			t.Fatalf("default account opened with balance %s", a.Balance)
		}
		if !a.IsActive {
			t.Fatal("default account not active")
		}
	}
	if !types[models.AccountChecking] || !types[models.AccountSavings] {
		t.Fatalf("default pair missing: %v", types)
	}
}

func TestGetOrProvisionExistingUser(t *testing.T) {
	store := newFakeUserStore()
	store.users["uid-1"] = &models.User{UID: "uid-1", Email: "a@b.com", FirstName: "Ada"}
	svc := NewUserService(store)

	user, err := svc.GetOrProvision(helpers.TestCtx(), "uid-1", "a@b.com")
	if err != nil {
		t.Fatalf("GetOrProvision error: %v", err)
	}
	if user.FirstName != "Ada" {
		t.Fatalf("existing profile not returned: %+v", user)
	}
	if len(store.accounts["uid-1"]) != 0 {
		t.Fatal("accounts provisioned for existing user")
	}
}

func TestGetOrProvisionConcurrentFirstLogin(t *testing.T) {
	store := newFakeUserStore()
	store.createErr = errs.NewAlreadyExistsError("user already exists")
	store.users["uid-1"] = &models.User{UID: "uid-1", Email: "a@b.com"}
	svc := NewUserService(store)

	// Losing the provisioning race falls back to reading the winner's row.
	user, err := svc.GetOrProvision(helpers.TestCtx(), "uid-1", "a@b.com")
	if err != nil {
		t.Fatalf("GetOrProvision error: %v", err)
	}
	if user.UID != "uid-1" {
		t.Fatalf("uid = %q", user.UID)
	}
}

func TestUpdateProfile(t *testing.T) {
	store := newFakeUserStore()
	store.users["uid-1"] = &models.User{UID: "uid-1", Email: "a@b.com", FirstName: "Ada"}
	svc := NewUserService(store)

	user, err := svc.UpdateProfile(helpers.TestCtx(), "uid-1", dto.CreateUserRequest{LastName: "Lovelace"})
	if err != nil {
		t.Fatalf("UpdateProfile error: %v", err)
	}
	if user.FirstName != "Ada" || user.LastName != "Lovelace" {
		t.Fatalf("profile = %+v", user)
	}
}
