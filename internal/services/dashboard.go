package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finflowhq/finflow-backend/internal/cache"
	"github.com/finflowhq/finflow-backend/internal/dto"
	"github.com/finflowhq/finflow-backend/internal/models"
	"github.com/finflowhq/finflow-backend/pkg/logger"
)

// Read-side interfaces for stats composition. Each names only what the
// dashboard actually consumes.

type statsLedger interface {
	WindowSums(ctx context.Context, uid string, from, to time.Time) (dto.WindowSums, error)
}

type statsAccounts interface {
	TotalActiveBalance(ctx context.Context, uid string) (decimal.Decimal, error)
	CountActive(ctx context.Context, uid string) (int, error)
}

type statsInvestments interface {
	List(ctx context.Context, uid string) ([]models.Investment, error)
}

type statsBudgets interface {
	List(ctx context.Context, uid string, activeOnly bool) ([]models.Budget, error)
}

type statsAlerts interface {
	List(ctx context.Context, uid string, unreadOnly bool) ([]models.Alert, error)
}

type budgetSpend interface {
	SpentFor(ctx context.Context, uid string, category string, from, to time.Time) (decimal.Decimal, error)
}

type dashboardService struct {
	ledger      statsLedger
	accounts    statsAccounts
	investments statsInvestments
	budgets     statsBudgets
	alerts      statsAlerts
	spend       budgetSpend
	cache       userCache
	clockNow    func() time.Time
}

func NewDashboardService(ledger statsLedger, accounts statsAccounts, investments statsInvestments, budgets statsBudgets, alerts statsAlerts, spend budgetSpend, cache userCache) *dashboardService {
	return &dashboardService{
		ledger:      ledger,
		accounts:    accounts,
		investments: investments,
		budgets:     budgets,
		alerts:      alerts,
		spend:       spend,
		cache:       cache,
		clockNow:    time.Now,
	}
}

// GetStats composes the dashboard snapshot. Results are cached per user;
// every ledger mutation drops the cached copy synchronously, so a hit is
// always consistent with the ledger.
func (s *dashboardService) GetStats(ctx context.Context, uid string) (dto.DashboardStats, error) {
	if cached, ok := s.cache.Get(cache.KindDashboardStats, uid); ok {
		if stats, ok := cached.(dto.DashboardStats); ok {
			return stats, nil
		}
	}

	now := s.clockNow()

	totalBalance, err := s.accounts.TotalActiveBalance(ctx, uid)
	if err != nil {
		return dto.DashboardStats{}, err
	}
	accountCount, err := s.accounts.CountActive(ctx, uid)
	if err != nil {
		return dto.DashboardStats{}, err
	}

	// "Monthly" figures use a rolling 30-day window ending now. The
	// calendar month-to-date pair is computed separately; the two are
	// never mixed inside one figure.
	rolling, err := s.ledger.WindowSums(ctx, uid, now.AddDate(0, 0, -30), now)
	if err != nil {
		return dto.DashboardStats{}, err
	}
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	calendar, err := s.ledger.WindowSums(ctx, uid, monthStart, now)
	if err != nil {
		return dto.DashboardStats{}, err
	}

	investments, err := s.investments.List(ctx, uid)
	if err != nil {
		return dto.DashboardStats{}, err
	}
	investmentValue := decimal.Zero
	investmentGainLoss := decimal.Zero
	for i := range investments {
		investmentValue = investmentValue.Add(investments[i].TotalValue())
		investmentGainLoss = investmentGainLoss.Add(investments[i].GainLoss())
	}

	utilization, err := s.budgetUtilization(ctx, uid, now)
	if err != nil {
		return dto.DashboardStats{}, err
	}

	alerts, err := s.alerts.List(ctx, uid, true)
	if err != nil {
		return dto.DashboardStats{}, err
	}

	stats := dto.DashboardStats{
		TotalBalance:             totalBalance,
		MonthlyIncome:            rolling.Income,
		MonthlyExpenses:          rolling.Expenses,
		MonthlyNet:               rolling.Income.Sub(rolling.Expenses),
		CalendarMonthIncome:      calendar.Income,
		CalendarMonthExpenses:    calendar.Expenses,
		InvestmentValue:          investmentValue,
		InvestmentGainLoss:       investmentGainLoss,
		BudgetUtilization:        utilization,
		ActiveAlerts:             len(alerts),
		ActiveAccountCount:       accountCount,
		RollingTransactionCount:  rolling.Count,
		CalendarTransactionCount: calendar.Count,
	}

	s.cache.Set(cache.KindDashboardStats, uid, stats)
	logger.FromContext(ctx).Debug("dashboard stats computed", "uid", uid)
	return stats, nil
}

// budgetUtilization is the mean of spent/limit across budgets whose window
// contains now. Budgets with a zero limit are excluded entirely, so no single
// degenerate budget can divide by zero.
func (s *dashboardService) budgetUtilization(ctx context.Context, uid string, now time.Time) (float64, error) {
	budgets, err := s.budgets.List(ctx, uid, true)
	if err != nil {
		return 0, err
	}

	ratioSum := decimal.Zero
	counted := 0
	for i := range budgets {
		b := &budgets[i]
		if !b.Limit.IsPositive() {
			continue
		}
		if now.Before(b.StartDate) || now.After(b.EndDate) {
			continue
		}
		spent, err := s.spend.SpentFor(ctx, uid, string(b.Category), b.StartDate, b.EndDate)
		if err != nil {
			return 0, err
		}
		ratioSum = ratioSum.Add(spent.Div(b.Limit))
		counted++
	}

	if counted == 0 {
		return 0, nil
	}
	mean, _ := ratioSum.Div(decimal.NewFromInt(int64(counted))).Float64()
	return mean, nil
}
