package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finflowhq/finflow-backend/internal/dto"
	"github.com/finflowhq/finflow-backend/internal/errs"
	"github.com/finflowhq/finflow-backend/internal/events"
	"github.com/finflowhq/finflow-backend/internal/models"
)

// --- Shared fakes ---

type fakeCache struct {
	values        map[string]any
	invalidations []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{values: make(map[string]any)}
}

func (f *fakeCache) Get(kind, uid string) (any, bool) {
	v, ok := f.values[kind+":"+uid]
	return v, ok
}

func (f *fakeCache) Set(kind, uid string, value any) {
	f.values[kind+":"+uid] = value
}

func (f *fakeCache) InvalidateUser(uid string) {
	f.invalidations = append(f.invalidations, uid)
	for k := range f.values {
		delete(f.values, k)
	}
}

type fakePublisher struct {
	events []events.Event
}

func (f *fakePublisher) Publish(event events.Event) {
	f.events = append(f.events, event)
}

// fakeLedger backs the ledger-facing interfaces with an in-memory ledger
// that maintains account balances the same way the real store does: the row
// write and the balance adjustment succeed or fail together.
type fakeLedger struct {
	transactions map[string]*models.Transaction
	balances     map[string]decimal.Decimal

	createErr error
	updateErr error
	deleteErr error
	listErr   error
}

func newFakeLedger(accounts ...string) *fakeLedger {
	f := &fakeLedger{
		transactions: make(map[string]*models.Transaction),
		balances:     make(map[string]decimal.Decimal),
	}
	for _, id := range accounts {
		f.balances[id] = decimal.Zero
	}
	return f
}

func (f *fakeLedger) Create(_ context.Context, t *models.Transaction) error {
	if f.createErr != nil {
		return f.createErr
	}
	balance, ok := f.balances[t.AccountID]
	if !ok {
		return errs.NewNotFoundError("account not found")
	}
	f.balances[t.AccountID] = balance.Add(t.BalanceDelta())
	cp := *t
	f.transactions[t.ID] = &cp
	return nil
}

func (f *fakeLedger) GetByID(_ context.Context, uid, id string) (*models.Transaction, error) {
	t, ok := f.transactions[id]
	if !ok || t.UserID != uid {
		return nil, errs.NewNotFoundError("transaction not found")
	}
	cp := *t
	return &cp, nil
}

func (f *fakeLedger) Update(_ context.Context, uid, id string, patch dto.TransactionPatch) (*models.Transaction, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	original, ok := f.transactions[id]
	if !ok || original.UserID != uid {
		return nil, errs.NewNotFoundError("transaction not found")
	}

	merged := *original
	if patch.AccountID != nil {
		merged.AccountID = *patch.AccountID
	}
	if patch.Amount != nil {
		merged.Amount = patch.Amount.Abs()
	}
	if patch.Type != nil {
		merged.Type = *patch.Type
	}
	if patch.Category != nil {
		merged.Category = *patch.Category
	}
	if patch.Description != nil {
		merged.Description = *patch.Description
	}
	if patch.Date != nil {
		merged.Date = *patch.Date
	}

	if _, ok := f.balances[merged.AccountID]; !ok {
		return nil, errs.NewNotFoundError("account not found")
	}
	f.balances[original.AccountID] = f.balances[original.AccountID].Add(original.BalanceDelta().Neg())
	f.balances[merged.AccountID] = f.balances[merged.AccountID].Add(merged.BalanceDelta())
	f.transactions[id] = &merged
	cp := merged
	return &cp, nil
}

func (f *fakeLedger) Delete(_ context.Context, uid, id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	t, ok := f.transactions[id]
	if !ok || t.UserID != uid {
		return errs.NewNotFoundError("transaction not found")
	}
	f.balances[t.AccountID] = f.balances[t.AccountID].Add(t.BalanceDelta().Neg())
	delete(f.transactions, id)
	return nil
}

func (f *fakeLedger) List(_ context.Context, uid string, q dto.TransactionQuery) ([]models.Transaction, int, error) {
	if f.listErr != nil {
		return nil, 0, f.listErr
	}
	var all []models.Transaction
	for _, t := range f.transactions {
		if t.UserID == uid {
			all = append(all, *t)
		}
	}
	total := len(all)
	start := (q.Page - 1) * q.Limit
	if start > total {
		start = total
	}
	end := start + q.Limit
	if end > total {
		end = total
	}
	return all[start:end], total, nil
}

func (f *fakeLedger) WindowSums(_ context.Context, uid string, from, to time.Time) (dto.WindowSums, error) {
	var sums dto.WindowSums
	for _, t := range f.transactions {
		if t.UserID != uid || t.Date.Before(from) || t.Date.After(to) {
			continue
		}
		if t.Type == models.TransactionIncome {
			sums.Income = sums.Income.Add(t.Amount)
		} else {
			sums.Expenses = sums.Expenses.Add(t.Amount)
		}
		sums.Count++
	}
	return sums, nil
}

func (f *fakeLedger) CategoryTotals(_ context.Context, uid string, from, to time.Time) ([]dto.CategoryTotal, error) {
	byCategory := make(map[string]*dto.CategoryTotal)
	var order []string
	for _, t := range f.transactions {
		if t.UserID != uid || t.Type != models.TransactionExpense {
			continue
		}
		if t.Date.Before(from) || t.Date.After(to) {
			continue
		}
		ct, ok := byCategory[string(t.Category)]
		if !ok {
			ct = &dto.CategoryTotal{Category: t.Category}
			byCategory[string(t.Category)] = ct
			order = append(order, string(t.Category))
		}
		ct.Total = ct.Total.Add(t.Amount)
		ct.Count++
	}
	var totals []dto.CategoryTotal
	for _, k := range order {
		totals = append(totals, *byCategory[k])
	}
	return totals, nil
}

func (f *fakeLedger) Recent(_ context.Context, uid string, limit int) ([]models.Transaction, error) {
	var recent []models.Transaction
	for _, t := range f.transactions {
		if t.UserID != uid {
			continue
		}
		recent = append(recent, *t)
		if len(recent) == limit {
			break
		}
	}
	return recent, nil
}

func (f *fakeLedger) HasAny(_ context.Context, uid string) (bool, error) {
	for _, t := range f.transactions {
		if t.UserID == uid {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeLedger) SpentFor(_ context.Context, uid string, category string, from, to time.Time) (decimal.Decimal, error) {
	spent := decimal.Zero
	for _, t := range f.transactions {
		if t.UserID != uid || t.Type != models.TransactionExpense || string(t.Category) != category {
			continue
		}
		if t.Date.Before(from) || t.Date.After(to) {
			continue
		}
		spent = spent.Add(t.Amount)
	}
	return spent, nil
}
