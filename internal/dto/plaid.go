package dto

import (
	"github.com/plaid/plaid-go/v24/plaid"
	"github.com/shopspring/decimal"
)

type PlaidEnvironment = plaid.Environment

var (
	PlaidSandbox    = plaid.Sandbox
	PlaidProduction = plaid.Production
)

type CreateLinkTokenResponse struct {
	LinkToken string `json:"linkToken"`
}

type ExchangePublicTokenRequest struct {
	PublicToken string `json:"publicToken"`
	Institution string `json:"institution"`
}

type ExchangePublicTokenResponse struct {
	ItemID string `json:"itemId"`
}

// PlaidHolding is one security position reported by the holdings endpoint.
// Prices here are the externally supplied values the investment rows adopt.
type PlaidHolding struct {
	Symbol        string
	Name          string
	Quantity      decimal.Decimal
	PurchasePrice decimal.Decimal
	CurrentPrice  decimal.Decimal
	Type          string
}
