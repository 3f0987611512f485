package dto

import (
	"github.com/shopspring/decimal"

	"github.com/finflowhq/finflow-backend/internal/models"
	"github.com/finflowhq/finflow-backend/internal/taxonomy"
)

type CreateAccountRequest struct {
	Name     string             `json:"name"`
	Type     models.AccountType `json:"type"`
	Balance  *decimal.Decimal   `json:"balance,omitempty"` // opening balance only
	Currency string             `json:"currency"`
}

type CreateBudgetRequest struct {
	Category  taxonomy.Category   `json:"category"`
	Limit     decimal.Decimal     `json:"limit"`
	Period    models.BudgetPeriod `json:"period"`
	StartDate string              `json:"startDate"`
	EndDate   string              `json:"endDate"`
}

type UpdateBudgetRequest struct {
	Limit    *decimal.Decimal `json:"limit,omitempty"`
	EndDate  *string          `json:"endDate,omitempty"`
	IsActive *bool            `json:"isActive,omitempty"`
}

type CreateInvestmentRequest struct {
	Symbol        string          `json:"symbol"`
	Name          string          `json:"name"`
	Quantity      decimal.Decimal `json:"quantity"`
	PurchasePrice decimal.Decimal `json:"purchasePrice"`
	CurrentPrice  decimal.Decimal `json:"currentPrice"`
	Type          string          `json:"type"`
	PurchaseDate  string          `json:"purchaseDate"`
}

type UpdateInvestmentRequest struct {
	Quantity     *decimal.Decimal `json:"quantity,omitempty"`
	CurrentPrice *decimal.Decimal `json:"currentPrice,omitempty"`
}

type CreateUserRequest struct {
	FirstName string `json:"firstname"`
	LastName  string `json:"lastname"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}
