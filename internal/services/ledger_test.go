package services

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/finflowhq/finflow-backend/internal/dto"
	"github.com/finflowhq/finflow-backend/internal/errs"
	"github.com/finflowhq/finflow-backend/internal/models"
	"github.com/finflowhq/finflow-backend/internal/taxonomy"
	"github.com/finflowhq/finflow-backend/pkg/helpers"
)

func TestLedgerCreateAdjustsBalance(t *testing.T) {
	ledger := newFakeLedger("acc-1")
	cache := newFakeCache()
	publisher := &fakePublisher{}
	svc := NewLedgerService(ledger, cache, publisher)

	ctx := helpers.TestCtx()
	income, err := svc.Create(ctx, "user", dto.CreateTransactionRequest{
		AccountID:   "acc-1",
		Amount:      decimal.NewFromInt(3000),
		Type:        models.TransactionIncome,
		Category:    taxonomy.Salary,
		Description: "paycheck",
		Date:        "2025-03-01",
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if income.ID == "" {
		t.Fatal("expected generated id")
	}

	if _, err := svc.Create(ctx, "user", dto.CreateTransactionRequest{
		AccountID:   "acc-1",
		Amount:      decimal.NewFromInt(1500),
		Type:        models.TransactionExpense,
		Category:    taxonomy.Housing,
		Description: "rent",
		Date:        "2025-03-02",
	}); err != nil {
		t.Fatalf("Create error: %v", err)
	}

	if got := ledger.balances["acc-1"]; !got.Equal(decimal.NewFromInt(1500)) {
		t.Fatalf("balance = %s, want 1500", got)
	}
	if len(cache.invalidations) != 2 {
		t.Fatalf("invalidations = %d, want 2", len(cache.invalidations))
	}
	if len(publisher.events) != 2 {
		t.Fatalf("events = %d, want 2", len(publisher.events))
	}
}

func TestLedgerCreateValidation(t *testing.T) {
	svc := NewLedgerService(newFakeLedger("acc-1"), newFakeCache(), &fakePublisher{})
	ctx := helpers.TestCtx()

	cases := []struct {
		name string
		req  dto.CreateTransactionRequest
	}{
		{"missing account", dto.CreateTransactionRequest{Amount: decimal.NewFromInt(5), Type: models.TransactionExpense, Category: taxonomy.Groceries, Description: "x", Date: "2025-03-01"}},
		{"zero amount", dto.CreateTransactionRequest{AccountID: "acc-1", Type: models.TransactionExpense, Category: taxonomy.Groceries, Description: "x", Date: "2025-03-01"}},
		{"negative amount", dto.CreateTransactionRequest{AccountID: "acc-1", Amount: decimal.NewFromInt(-5), Type: models.TransactionExpense, Category: taxonomy.Groceries, Description: "x", Date: "2025-03-01"}},
		{"bad type", dto.CreateTransactionRequest{AccountID: "acc-1", Amount: decimal.NewFromInt(5), Type: "refund", Category: taxonomy.Groceries, Description: "x", Date: "2025-03-01"}},
		{"unknown category", dto.CreateTransactionRequest{AccountID: "acc-1", Amount: decimal.NewFromInt(5), Type: models.TransactionExpense, Category: "yachts", Description: "x", Date: "2025-03-01"}},
		{"income category on expense", dto.CreateTransactionRequest{AccountID: "acc-1", Amount: decimal.NewFromInt(5), Type: models.TransactionExpense, Category: taxonomy.Salary, Description: "x", Date: "2025-03-01"}},
		{"empty description", dto.CreateTransactionRequest{AccountID: "acc-1", Amount: decimal.NewFromInt(5), Type: models.TransactionExpense, Category: taxonomy.Groceries, Date: "2025-03-01"}},
		{"blank description", dto.CreateTransactionRequest{AccountID: "acc-1", Amount: decimal.NewFromInt(5), Type: models.TransactionExpense, Category: taxonomy.Groceries, Description: "   ", Date: "2025-03-01"}},
		{"bad date", dto.CreateTransactionRequest{AccountID: "acc-1", Amount: decimal.NewFromInt(5), Type: models.TransactionExpense, Category: taxonomy.Groceries, Description: "x", Date: "03/01/2025"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, "user", tc.req)
			var validation *errs.ValidationError
			if !errors.As(err, &validation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestLedgerMoveBetweenAccounts(t *testing.T) {
	ledger := newFakeLedger("acc-a", "acc-b")
	svc := NewLedgerService(ledger, newFakeCache(), &fakePublisher{})
	ctx := helpers.TestCtx()

	// Seed: a holds 130 after income and an expense, b holds 20.
	if _, err := svc.Create(ctx, "user", dto.CreateTransactionRequest{
		AccountID: "acc-a", Amount: decimal.NewFromInt(150), Description: "paycheck",
		Type: models.TransactionIncome, Category: taxonomy.Salary, Date: "2025-03-01",
	}); err != nil {
		t.Fatalf("Create error: %v", err)
	}
	expense, err := svc.Create(ctx, "user", dto.CreateTransactionRequest{
		AccountID: "acc-a", Amount: decimal.NewFromInt(20), Description: "groceries",
		Type: models.TransactionExpense, Category: taxonomy.Groceries, Date: "2025-03-02",
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if _, err := svc.Create(ctx, "user", dto.CreateTransactionRequest{
		AccountID: "acc-b", Amount: decimal.NewFromInt(20), Description: "rebate",
		Type: models.TransactionIncome, Category: taxonomy.OtherIncome, Date: "2025-03-02",
	}); err != nil {
		t.Fatalf("Create error: %v", err)
	}

	if got := ledger.balances["acc-a"]; !got.Equal(decimal.NewFromInt(130)) {
		t.Fatalf("acc-a = %s, want 130", got)
	}
	if got := ledger.balances["acc-b"]; !got.Equal(decimal.NewFromInt(20)) {
		t.Fatalf("acc-b = %s, want 20", got)
	}

	// Moving the expense reverses it on a and applies it on b.
	accB := "acc-b"
	if _, err := svc.Update(ctx, "user", expense.ID, dto.UpdateTransactionRequest{AccountID: &accB}); err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if got := ledger.balances["acc-a"]; !got.Equal(decimal.NewFromInt(150)) {
		t.Fatalf("acc-a after move = %s, want 150", got)
	}
	if got := ledger.balances["acc-b"]; !got.Equal(decimal.Zero) {
		t.Fatalf("acc-b after move = %s, want 0", got)
	}
}

func TestLedgerUpdateRejectsMismatchedPair(t *testing.T) {
	ledger := newFakeLedger("acc-1")
	svc := NewLedgerService(ledger, newFakeCache(), &fakePublisher{})
	ctx := helpers.TestCtx()

	expense, err := svc.Create(ctx, "user", dto.CreateTransactionRequest{
		AccountID: "acc-1", Amount: decimal.NewFromInt(40), Description: "groceries",
		Type: models.TransactionExpense, Category: taxonomy.Groceries, Date: "2025-03-01",
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	// A type-only patch cannot leave an expense category on an income row.
	income := models.TransactionIncome
	_, err = svc.Update(ctx, "user", expense.ID, dto.UpdateTransactionRequest{Type: &income})
	var validation *errs.ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if got := ledger.balances["acc-1"]; !got.Equal(decimal.NewFromInt(-40)) {
		t.Fatalf("balance moved on rejected update: %s", got)
	}
}

func TestLedgerUpdateRejectsBlankDescription(t *testing.T) {
	ledger := newFakeLedger("acc-1")
	svc := NewLedgerService(ledger, newFakeCache(), &fakePublisher{})
	ctx := helpers.TestCtx()

	expense, err := svc.Create(ctx, "user", dto.CreateTransactionRequest{
		AccountID: "acc-1", Amount: decimal.NewFromInt(40), Description: "groceries",
		Type: models.TransactionExpense, Category: taxonomy.Groceries, Date: "2025-03-01",
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	blank := "  "
	_, err = svc.Update(ctx, "user", expense.ID, dto.UpdateTransactionRequest{Description: &blank})
	var validation *errs.ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	kept, err := svc.Get(ctx, "user", expense.ID)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if kept.Description != "groceries" {
		t.Fatalf("description = %q, want groceries", kept.Description)
	}
}

func TestLedgerListRejectsMalformedDateFilter(t *testing.T) {
	svc := NewLedgerService(newFakeLedger(), newFakeCache(), &fakePublisher{})

	bad := "last tuesday"
	_, err := svc.List(helpers.TestCtx(), "user", dto.TransactionQuery{DateFrom: &bad})
	var validation *errs.ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	_, err = svc.List(helpers.TestCtx(), "user", dto.TransactionQuery{DateTo: &bad})
	if !errors.As(err, &validation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestLedgerFailedMutationLeavesCacheAlone(t *testing.T) {
	ledger := newFakeLedger("acc-1")
	ledger.createErr = errs.NewConflictError("transaction conflict, retry")
	cache := newFakeCache()
	publisher := &fakePublisher{}
	svc := NewLedgerService(ledger, cache, publisher)

	_, err := svc.Create(helpers.TestCtx(), "user", dto.CreateTransactionRequest{
		AccountID: "acc-1", Amount: decimal.NewFromInt(5), Description: "coffee",
		Type: models.TransactionExpense, Category: taxonomy.Groceries, Date: "2025-03-01",
	})
	var conflict *errs.ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected conflict error, got %v", err)
	}
	if len(cache.invalidations) != 0 {
		t.Fatal("cache invalidated on failed mutation")
	}
	if len(publisher.events) != 0 {
		t.Fatal("event published on failed mutation")
	}
	if got := ledger.balances["acc-1"]; !got.Equal(decimal.Zero) {
		t.Fatalf("balance moved on failed create: %s", got)
	}
}

func TestLedgerDeleteReversesEffect(t *testing.T) {
	ledger := newFakeLedger("acc-1")
	svc := NewLedgerService(ledger, newFakeCache(), &fakePublisher{})
	ctx := helpers.TestCtx()

	income, err := svc.Create(ctx, "user", dto.CreateTransactionRequest{
		AccountID: "acc-1", Amount: decimal.NewFromInt(100), Description: "paycheck",
		Type: models.TransactionIncome, Category: taxonomy.Salary, Date: "2025-03-01",
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if err := svc.Delete(ctx, "user", income.ID); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if got := ledger.balances["acc-1"]; !got.Equal(decimal.Zero) {
		t.Fatalf("balance after delete = %s, want 0", got)
	}
	if err := svc.Delete(ctx, "user", income.ID); err == nil {
		t.Fatal("expected not-found on second delete")
	}
}

func TestLedgerListDefaults(t *testing.T) {
	ledger := newFakeLedger("acc-1")
	cache := newFakeCache()
	svc := NewLedgerService(ledger, cache, &fakePublisher{})
	ctx := helpers.TestCtx()

	page, err := svc.List(ctx, "user", dto.TransactionQuery{})
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if page.Page != 1 || page.Limit != defaultPageLimit {
		t.Fatalf("defaults not applied: page=%d limit=%d", page.Page, page.Limit)
	}
	if page.HasNext || page.HasPrev {
		t.Fatal("empty page reports neighbors")
	}

	// The default query is served from cache on the second call.
	ledger.listErr = errs.NewDatabaseError("read", "down", nil)
	if _, err := svc.List(ctx, "user", dto.TransactionQuery{}); err != nil {
		t.Fatalf("cached List error: %v", err)
	}

	// Filtered queries bypass the cache.
	category := taxonomy.Groceries
	if _, err := svc.List(ctx, "user", dto.TransactionQuery{Category: &category}); err == nil {
		t.Fatal("expected store error for uncached query")
	}
}

func TestLedgerListClampsLimit(t *testing.T) {
	svc := NewLedgerService(newFakeLedger(), newFakeCache(), &fakePublisher{})

	page, err := svc.List(helpers.TestCtx(), "user", dto.TransactionQuery{Page: -3, Limit: 10000, SortKey: "amount"})
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if page.Page != 1 {
		t.Fatalf("page = %d, want 1", page.Page)
	}
	if page.Limit != maxPageLimit {
		t.Fatalf("limit = %d, want %d", page.Limit, maxPageLimit)
	}
}
