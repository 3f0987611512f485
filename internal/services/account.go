package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finflowhq/finflow-backend/internal/dto"
	"github.com/finflowhq/finflow-backend/internal/errs"
	"github.com/finflowhq/finflow-backend/internal/models"
)

type accountStore interface {
	Create(ctx context.Context, account *models.Account) error
	GetByID(ctx context.Context, uid, id string) (*models.Account, error)
	List(ctx context.Context, uid string, activeOnly bool) ([]models.Account, error)
	Deactivate(ctx context.Context, uid, id string) error
}

type accountService struct {
	store    accountStore
	cache    userCache
	clockNow func() time.Time
}

func NewAccountService(store accountStore, cache userCache) *accountService {
	return &accountService{store: store, cache: cache, clockNow: time.Now}
}

// Create opens a new account. The opening balance is the only client-settable
// balance; afterwards only ledger mutations move it.
func (s *accountService) Create(ctx context.Context, uid string, req dto.CreateAccountRequest) (*models.Account, error) {
	if req.Name == "" {
		return nil, errs.NewFieldValidationError("name", "name is required")
	}
	if !models.ValidAccountType(req.Type) {
		return nil, errs.NewFieldValidationError("type", "unknown account type")
	}

	balance := decimal.Zero
	if req.Balance != nil {
		balance = *req.Balance
	}
	currency := req.Currency
	if currency == "" {
		currency = "USD"
	}

	now := s.clockNow()
	account := &models.Account{
		ID:        uuid.NewString(),
		UserID:    uid,
		Name:      req.Name,
		Type:      req.Type,
		Balance:   balance,
		Currency:  currency,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Create(ctx, account); err != nil {
		return nil, err
	}

	s.cache.InvalidateUser(uid)
	return account, nil
}

func (s *accountService) Get(ctx context.Context, uid, id string) (*models.Account, error) {
	return s.store.GetByID(ctx, uid, id)
}

func (s *accountService) List(ctx context.Context, uid string, activeOnly bool) ([]models.Account, error) {
	return s.store.List(ctx, uid, activeOnly)
}

// Deactivate soft-deletes the account. Its transactions stay in the ledger;
// the account just stops counting toward totals and accepting new entries.
func (s *accountService) Deactivate(ctx context.Context, uid, id string) error {
	if err := s.store.Deactivate(ctx, uid, id); err != nil {
		return err
	}
	s.cache.InvalidateUser(uid)
	return nil
}
