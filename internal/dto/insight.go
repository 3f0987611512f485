package dto

import (
	"github.com/shopspring/decimal"
)

// FinancialSnapshot is the structured summary rendered into the generation
// prompt. Category labels arrive normalized (underscores replaced by spaces).
type FinancialSnapshot struct {
	TotalBalance    decimal.Decimal
	MonthlyIncome   decimal.Decimal
	MonthlyExpenses decimal.Decimal
	TopCategories   []SnapshotCategory
	Recent          []SnapshotTransaction
}

type SnapshotCategory struct {
	Label  string
	Amount decimal.Decimal
}

type SnapshotTransaction struct {
	Date        string
	Description string
	Label       string
	Amount      decimal.Decimal
	Type        string
}

// GeneratedInsight is one element of the model's JSON array response before
// coercion into a models.Insight.
type GeneratedInsight struct {
	Title      string   `json:"title"`
	Content    string   `json:"content"`
	Type       string   `json:"type"`
	Confidence *float64 `json:"confidence"`
}
