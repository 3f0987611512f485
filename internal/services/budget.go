package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/finflowhq/finflow-backend/internal/dto"
	"github.com/finflowhq/finflow-backend/internal/errs"
	"github.com/finflowhq/finflow-backend/internal/models"
	"github.com/finflowhq/finflow-backend/internal/taxonomy"
)

type budgetStore interface {
	Create(ctx context.Context, b *models.Budget) error
	GetByID(ctx context.Context, uid, id string) (*models.Budget, error)
	List(ctx context.Context, uid string, activeOnly bool) ([]models.Budget, error)
	Update(ctx context.Context, b *models.Budget) error
	Delete(ctx context.Context, uid, id string) error
}

type budgetService struct {
	store    budgetStore
	spend    budgetSpend
	clockNow func() time.Time
}

func NewBudgetService(store budgetStore, spend budgetSpend) *budgetService {
	return &budgetService{store: store, spend: spend, clockNow: time.Now}
}

func (s *budgetService) Create(ctx context.Context, uid string, req dto.CreateBudgetRequest) (*models.Budget, error) {
	if !taxonomy.IsExpense(req.Category) {
		return nil, errs.NewFieldValidationError("category", "budgets require an expense category")
	}
	if !req.Limit.IsPositive() {
		return nil, errs.NewFieldValidationError("limit", "limit must be positive")
	}
	if !models.ValidBudgetPeriod(req.Period) {
		return nil, errs.NewFieldValidationError("period", "unknown budget period")
	}
	start, err := parseDate("startDate", req.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := parseDate("endDate", req.EndDate)
	if err != nil {
		return nil, err
	}
	if end.Before(start) {
		return nil, errs.NewFieldValidationError("endDate", "endDate precedes startDate")
	}

	now := s.clockNow()
	budget := &models.Budget{
		ID:        uuid.NewString(),
		UserID:    uid,
		Category:  req.Category,
		Limit:     req.Limit,
		Period:    req.Period,
		StartDate: start,
		EndDate:   end,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Create(ctx, budget); err != nil {
		return nil, err
	}
	return budget, nil
}

// List returns the user's budgets with Spent filled in from the ledger.
// Spent is always derived at read time, never stored, so it cannot drift
// from the transactions that back it.
func (s *budgetService) List(ctx context.Context, uid string, activeOnly bool) ([]models.Budget, error) {
	budgets, err := s.store.List(ctx, uid, activeOnly)
	if err != nil {
		return nil, err
	}
	for i := range budgets {
		b := &budgets[i]
		spent, err := s.spend.SpentFor(ctx, uid, string(b.Category), b.StartDate, b.EndDate)
		if err != nil {
			return nil, err
		}
		b.Spent = spent
	}
	return budgets, nil
}

func (s *budgetService) Update(ctx context.Context, uid, id string, req dto.UpdateBudgetRequest) (*models.Budget, error) {
	budget, err := s.store.GetByID(ctx, uid, id)
	if err != nil {
		return nil, err
	}

	if req.Limit != nil {
		if !req.Limit.IsPositive() {
			return nil, errs.NewFieldValidationError("limit", "limit must be positive")
		}
		budget.Limit = *req.Limit
	}
	if req.EndDate != nil {
		end, err := parseDate("endDate", *req.EndDate)
		if err != nil {
			return nil, err
		}
		if end.Before(budget.StartDate) {
			return nil, errs.NewFieldValidationError("endDate", "endDate precedes startDate")
		}
		budget.EndDate = end
	}
	if req.IsActive != nil {
		budget.IsActive = *req.IsActive
	}

	if err := s.store.Update(ctx, budget); err != nil {
		return nil, err
	}

	spent, err := s.spend.SpentFor(ctx, uid, string(budget.Category), budget.StartDate, budget.EndDate)
	if err != nil {
		return nil, err
	}
	budget.Spent = spent
	return budget, nil
}

func (s *budgetService) Delete(ctx context.Context, uid, id string) error {
	return s.store.Delete(ctx, uid, id)
}
