package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finflowhq/finflow-backend/internal/cache"
	"github.com/finflowhq/finflow-backend/internal/dto"
	"github.com/finflowhq/finflow-backend/internal/models"
	"github.com/finflowhq/finflow-backend/internal/taxonomy"
	"github.com/finflowhq/finflow-backend/pkg/helpers"
)

type fakeAccounts struct {
	balance decimal.Decimal
	count   int
	err     error
}

func (f *fakeAccounts) TotalActiveBalance(_ context.Context, _ string) (decimal.Decimal, error) {
	return f.balance, f.err
}

func (f *fakeAccounts) CountActive(_ context.Context, _ string) (int, error) {
	return f.count, f.err
}

type fakeInvestments struct {
	investments []models.Investment
	err         error
}

func (f *fakeInvestments) List(_ context.Context, _ string) ([]models.Investment, error) {
	return f.investments, f.err
}

type fakeBudgets struct {
	budgets []models.Budget
	err     error
}

func (f *fakeBudgets) List(_ context.Context, _ string, activeOnly bool) ([]models.Budget, error) {
	if f.err != nil {
		return nil, f.err
	}
	if !activeOnly {
		return f.budgets, nil
	}
	var active []models.Budget
	for _, b := range f.budgets {
		if b.IsActive {
			active = append(active, b)
		}
	}
	return active, nil
}

type fakeAlerts struct {
	alerts []models.Alert
	err    error
}

func (f *fakeAlerts) List(_ context.Context, _ string, unreadOnly bool) ([]models.Alert, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []models.Alert
	for _, a := range f.alerts {
		if unreadOnly && a.IsRead {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func seedFakeEntry(f *fakeLedger, uid, account string, amount int64, typ models.TransactionType, category taxonomy.Category, date time.Time) {
	t := &models.Transaction{
		ID:        uuid.NewString(),
		UserID:    uid,
		AccountID: account,
		Amount:    decimal.NewFromInt(amount),
		Type:      typ,
		Category:  category,
		Date:      date,
	}
	f.transactions[t.ID] = t
}

func TestDashboardStats(t *testing.T) {
	now := time.Date(2025, time.March, 20, 12, 0, 0, 0, time.UTC)

	ledger := newFakeLedger("acc-1")
	seedFakeEntry(ledger, "user", "acc-1", 3000, models.TransactionIncome, taxonomy.Salary, now.AddDate(0, 0, -5))
	seedFakeEntry(ledger, "user", "acc-1", 900, models.TransactionExpense, taxonomy.Housing, now.AddDate(0, 0, -4))
	seedFakeEntry(ledger, "user", "acc-1", 600, models.TransactionExpense, taxonomy.Groceries, now.AddDate(0, 0, -25))

	investments := &fakeInvestments{investments: []models.Investment{
		{
			Quantity:      decimal.NewFromInt(10),
			PurchasePrice: decimal.NewFromInt(90),
			CurrentPrice:  decimal.NewFromInt(100),
		},
	}}
	alerts := &fakeAlerts{alerts: []models.Alert{
		{IsRead: false},
		{IsRead: true},
	}}

	svc := NewDashboardService(ledger, &fakeAccounts{balance: decimal.NewFromInt(1000), count: 2},
		investments, &fakeBudgets{}, alerts, ledger, newFakeCache())
	svc.clockNow = func() time.Time { return now }

	stats, err := svc.GetStats(helpers.TestCtx(), "user")
	if err != nil {
		t.Fatalf("GetStats error: %v", err)
	}

	if !stats.TotalBalance.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("total balance = %s, want 1000", stats.TotalBalance)
	}
	if !stats.MonthlyIncome.Equal(decimal.NewFromInt(3000)) {
		t.Fatalf("monthly income = %s, want 3000", stats.MonthlyIncome)
	}
	if !stats.MonthlyExpenses.Equal(decimal.NewFromInt(1500)) {
		t.Fatalf("monthly expenses = %s, want 1500", stats.MonthlyExpenses)
	}
	if !stats.MonthlyNet.Equal(decimal.NewFromInt(1500)) {
		t.Fatalf("monthly net = %s, want 1500", stats.MonthlyNet)
	}

	// The older expense falls outside the calendar month but inside the
	// rolling window; the two figures must differ.
	if !stats.CalendarMonthExpenses.Equal(decimal.NewFromInt(900)) {
		t.Fatalf("calendar expenses = %s, want 900", stats.CalendarMonthExpenses)
	}
	if stats.RollingTransactionCount != 3 || stats.CalendarTransactionCount != 2 {
		t.Fatalf("counts = %d/%d, want 3/2", stats.RollingTransactionCount, stats.CalendarTransactionCount)
	}

	if !stats.InvestmentValue.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("investment value = %s, want 1000", stats.InvestmentValue)
	}
	if !stats.InvestmentGainLoss.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("investment gain = %s, want 100", stats.InvestmentGainLoss)
	}
	if stats.ActiveAlerts != 1 {
		t.Fatalf("active alerts = %d, want 1", stats.ActiveAlerts)
	}
	if stats.ActiveAccountCount != 2 {
		t.Fatalf("account count = %d, want 2", stats.ActiveAccountCount)
	}
}

func TestDashboardStatsCached(t *testing.T) {
	cacheFake := newFakeCache()
	cached := dto.DashboardStats{TotalBalance: decimal.NewFromInt(42)}
	cacheFake.Set(cache.KindDashboardStats, "user", cached)

	accounts := &fakeAccounts{err: context.DeadlineExceeded}
	svc := NewDashboardService(newFakeLedger(), accounts, &fakeInvestments{}, &fakeBudgets{}, &fakeAlerts{}, newFakeLedger(), cacheFake)

	// A cache hit never touches the stores.
	stats, err := svc.GetStats(helpers.TestCtx(), "user")
	if err != nil {
		t.Fatalf("GetStats error: %v", err)
	}
	if !stats.TotalBalance.Equal(decimal.NewFromInt(42)) {
		t.Fatalf("total balance = %s, want cached 42", stats.TotalBalance)
	}
}

func TestBudgetUtilizationSkipsZeroLimits(t *testing.T) {
	now := time.Date(2025, time.March, 20, 12, 0, 0, 0, time.UTC)
	start := now.AddDate(0, 0, -19)

	ledger := newFakeLedger("acc-1")
	seedFakeEntry(ledger, "user", "acc-1", 80, models.TransactionExpense, taxonomy.Groceries, now.AddDate(0, 0, -2))
	seedFakeEntry(ledger, "user", "acc-1", 40, models.TransactionExpense, taxonomy.Entertainment, now.AddDate(0, 0, -2))

	budgets := &fakeBudgets{budgets: []models.Budget{
		{Category: taxonomy.Groceries, Limit: decimal.NewFromInt(200), IsActive: true, StartDate: start, EndDate: now},
		{Category: taxonomy.Entertainment, Limit: decimal.NewFromInt(100), IsActive: true, StartDate: start, EndDate: now},
		{Category: taxonomy.Travel, Limit: decimal.Zero, IsActive: true, StartDate: start, EndDate: now},
		{Category: taxonomy.Shopping, Limit: decimal.NewFromInt(1000), IsActive: false, StartDate: start, EndDate: now},
	}}

	svc := NewDashboardService(ledger, &fakeAccounts{}, &fakeInvestments{}, budgets, &fakeAlerts{}, ledger, newFakeCache())
	svc.clockNow = func() time.Time { return now }

	stats, err := svc.GetStats(helpers.TestCtx(), "user")
	if err != nil {
		t.Fatalf("GetStats error: %v", err)
	}

	// Both counted budgets sit at 0.4; the zero-limit and inactive budgets
	// contribute nothing.
	if stats.BudgetUtilization != 0.4 {
		t.Fatalf("utilization = %f, want 0.4", stats.BudgetUtilization)
	}
}

func TestBudgetUtilizationIsMeanOfRatios(t *testing.T) {
	now := time.Date(2025, time.March, 20, 12, 0, 0, 0, time.UTC)
	start := now.AddDate(0, 0, -19)

	ledger := newFakeLedger("acc-1")
	seedFakeEntry(ledger, "user", "acc-1", 80, models.TransactionExpense, taxonomy.Groceries, now.AddDate(0, 0, -2))
	seedFakeEntry(ledger, "user", "acc-1", 100, models.TransactionExpense, taxonomy.Transportation, now.AddDate(0, 0, -2))

	budgets := &fakeBudgets{budgets: []models.Budget{
		{Category: taxonomy.Groceries, Limit: decimal.NewFromInt(200), IsActive: true, StartDate: start, EndDate: now},
		{Category: taxonomy.Transportation, Limit: decimal.NewFromInt(100), IsActive: true, StartDate: start, EndDate: now},
	}}

	svc := NewDashboardService(ledger, &fakeAccounts{}, &fakeInvestments{}, budgets, &fakeAlerts{}, ledger, newFakeCache())
	svc.clockNow = func() time.Time { return now }

	stats, err := svc.GetStats(helpers.TestCtx(), "user")
	if err != nil {
		t.Fatalf("GetStats error: %v", err)
	}

	// Each budget weighs equally: (80/200 + 100/100) / 2, not 180/300.
	if stats.BudgetUtilization != 0.7 {
		t.Fatalf("utilization = %f, want 0.7", stats.BudgetUtilization)
	}
}

func TestBudgetUtilizationIgnoresExpiredWindows(t *testing.T) {
	now := time.Date(2025, time.March, 20, 12, 0, 0, 0, time.UTC)

	ledger := newFakeLedger("acc-1")
	seedFakeEntry(ledger, "user", "acc-1", 200, models.TransactionExpense, taxonomy.Groceries, now.AddDate(0, 0, -40))

	// Flagged active but its window closed over a month ago.
	budgets := &fakeBudgets{budgets: []models.Budget{
		{
			Category:  taxonomy.Groceries,
			Limit:     decimal.NewFromInt(100),
			IsActive:  true,
			StartDate: now.AddDate(0, 0, -60),
			EndDate:   now.AddDate(0, 0, -35),
		},
	}}

	svc := NewDashboardService(ledger, &fakeAccounts{}, &fakeInvestments{}, budgets, &fakeAlerts{}, ledger, newFakeCache())
	svc.clockNow = func() time.Time { return now }

	stats, err := svc.GetStats(helpers.TestCtx(), "user")
	if err != nil {
		t.Fatalf("GetStats error: %v", err)
	}
	if stats.BudgetUtilization != 0 {
		t.Fatalf("utilization = %f, want 0", stats.BudgetUtilization)
	}
}

func TestBudgetUtilizationNoBudgets(t *testing.T) {
	ledger := newFakeLedger()
	svc := NewDashboardService(ledger, &fakeAccounts{}, &fakeInvestments{}, &fakeBudgets{}, &fakeAlerts{}, ledger, newFakeCache())

	stats, err := svc.GetStats(helpers.TestCtx(), "user")
	if err != nil {
		t.Fatalf("GetStats error: %v", err)
	}
	if stats.BudgetUtilization != 0 {
		t.Fatalf("utilization = %f, want 0", stats.BudgetUtilization)
	}
}
