package dto

import (
	"github.com/shopspring/decimal"

	"github.com/finflowhq/finflow-backend/internal/taxonomy"
)

// DashboardStats is the aggregated dashboard snapshot. The "monthly" figures
// use a rolling 30-day window ending now; calendar-month-to-date figures are
// exposed separately and never conflated with the rolling window.
type DashboardStats struct {
	TotalBalance decimal.Decimal `json:"totalBalance"`

	MonthlyIncome   decimal.Decimal `json:"monthlyIncome"`
	MonthlyExpenses decimal.Decimal `json:"monthlyExpenses"`
	MonthlyNet      decimal.Decimal `json:"monthlyNet"`

	CalendarMonthIncome   decimal.Decimal `json:"calendarMonthIncome"`
	CalendarMonthExpenses decimal.Decimal `json:"calendarMonthExpenses"`

	InvestmentValue    decimal.Decimal `json:"investmentValue"`
	InvestmentGainLoss decimal.Decimal `json:"investmentGainLoss"`

	BudgetUtilization float64 `json:"budgetUtilization"`

	ActiveAlerts                 int `json:"activeAlerts"`
	ActiveAccountCount           int `json:"activeAccountCount"`
	RollingTransactionCount      int `json:"rollingTransactionCount"`
	CalendarTransactionCount     int `json:"calendarTransactionCount"`
}

type CategorySlice struct {
	Category   taxonomy.Category `json:"category"`
	Amount     decimal.Decimal   `json:"amount"`
	Count      int               `json:"count"`
	Percentage float64           `json:"percentage"`
	Color      string            `json:"color"`
}

type DateRange struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

type CategoryBreakdown struct {
	Categories  []CategorySlice `json:"categories"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	DateRange   DateRange       `json:"dateRange"`
}

// WindowSums is the income/expense pair aggregated over one date window.
type WindowSums struct {
	Income   decimal.Decimal
	Expenses decimal.Decimal
	Count    int
}

// CategoryTotal is one grouped row of the expense breakdown query.
type CategoryTotal struct {
	Category taxonomy.Category
	Total    decimal.Decimal
	Count    int
}
