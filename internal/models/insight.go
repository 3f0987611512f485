package models

import (
	"time"
)

type InsightType string

const (
	InsightSpendingPattern      InsightType = "spending_pattern"
	InsightBudgetRecommendation InsightType = "budget_recommendation"
	InsightInvestmentAdvice     InsightType = "investment_advice"
	InsightSavingOpportunity    InsightType = "saving_opportunity"
	InsightRiskAssessment       InsightType = "risk_assessment"
	InsightMarketAnalysis       InsightType = "market_analysis"
)

// ValidInsightType reports whether t is one of the closed insight type set.
func ValidInsightType(t InsightType) bool {
	switch t {
	case InsightSpendingPattern, InsightBudgetRecommendation,
		InsightInvestmentAdvice, InsightSavingOpportunity,
		InsightRiskAssessment, InsightMarketAnalysis:
		return true
	}
	return false
}

// Insight is a generated recommendation. Confidence is always within [0,1];
// the generation flow clamps model output before persisting.
type Insight struct {
	ID         string      `db:"id" json:"id"`
	UserID     string      `db:"user_id" json:"userId"`
	Title      string      `db:"title" json:"title"`
	Content    string      `db:"content" json:"content"`
	Type       InsightType `db:"type" json:"type"`
	Confidence float64     `db:"confidence" json:"confidence"`
	IsRelevant bool        `db:"is_relevant" json:"isRelevant"`
	CreatedAt  time.Time   `db:"created_at" json:"createdAt"`
}
