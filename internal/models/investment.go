package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Investment is a held position. CurrentPrice is externally supplied (Plaid
// holdings refresh or direct update); this core never fetches live quotes on
// its own schedule.
type Investment struct {
	ID            string          `db:"id" json:"id"`
	UserID        string          `db:"user_id" json:"userId"`
	Symbol        string          `db:"symbol" json:"symbol"`
	Name          string          `db:"name" json:"name"`
	Quantity      decimal.Decimal `db:"quantity" json:"quantity"`
	PurchasePrice decimal.Decimal `db:"purchase_price" json:"purchasePrice"`
	CurrentPrice  decimal.Decimal `db:"current_price" json:"currentPrice"`
	Type          string          `db:"type" json:"type"`
	PurchaseDate  time.Time       `db:"purchase_date" json:"purchaseDate"`
	CreatedAt     time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time       `db:"updated_at" json:"updatedAt"`
}

// TotalValue is quantity × current price.
func (i *Investment) TotalValue() decimal.Decimal {
	return i.Quantity.Mul(i.CurrentPrice)
}

// GainLoss is total value minus quantity × purchase price.
func (i *Investment) GainLoss() decimal.Decimal {
	return i.TotalValue().Sub(i.Quantity.Mul(i.PurchasePrice))
}
