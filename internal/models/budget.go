package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/finflowhq/finflow-backend/internal/taxonomy"
)

type BudgetPeriod string

const (
	BudgetWeekly    BudgetPeriod = "weekly"
	BudgetMonthly   BudgetPeriod = "monthly"
	BudgetQuarterly BudgetPeriod = "quarterly"
	BudgetYearly    BudgetPeriod = "yearly"
)

// ValidBudgetPeriod reports whether p is one of the closed period set.
func ValidBudgetPeriod(p BudgetPeriod) bool {
	switch p {
	case BudgetWeekly, BudgetMonthly, BudgetQuarterly, BudgetYearly:
		return true
	}
	return false
}

// Budget is a spending ceiling for one expense category over a period.
// Spent is not a stored column: it is derived from the transaction ledger
// (sum of expense magnitudes in the category within the period) so it can
// never drift from the transactions that back it.
type Budget struct {
	ID        string            `db:"id" json:"id"`
	UserID    string            `db:"user_id" json:"userId"`
	Category  taxonomy.Category `db:"category" json:"category"`
	Limit     decimal.Decimal   `db:"limit_amount" json:"limit"`
	Period    BudgetPeriod      `db:"period" json:"period"`
	StartDate time.Time         `db:"start_date" json:"startDate"`
	EndDate   time.Time         `db:"end_date" json:"endDate"`
	IsActive  bool              `db:"is_active" json:"isActive"`
	CreatedAt time.Time         `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time         `db:"updated_at" json:"updatedAt"`

	Spent decimal.Decimal `db:"-" json:"spent"`
}
