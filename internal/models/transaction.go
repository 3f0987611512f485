package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/finflowhq/finflow-backend/internal/taxonomy"
)

type TransactionType string

const (
	TransactionIncome   TransactionType = "income"
	TransactionExpense  TransactionType = "expense"
	TransactionTransfer TransactionType = "transfer"
)

// ValidTransactionType reports whether t is one of the closed type set.
func ValidTransactionType(t TransactionType) bool {
	switch t {
	case TransactionIncome, TransactionExpense, TransactionTransfer:
		return true
	}
	return false
}

// Transaction is a financial event against exactly one account. Amount is
// stored as a positive magnitude; the sign of its effect on the account
// balance is derived from Type (see BalanceDelta).
type Transaction struct {
	ID          string            `db:"id" json:"id"`
	UserID      string            `db:"user_id" json:"userId"`
	AccountID   string            `db:"account_id" json:"accountId"`
	Amount      decimal.Decimal   `db:"amount" json:"amount"`
	Type        TransactionType   `db:"type" json:"type"`
	Category    taxonomy.Category `db:"category" json:"category"`
	Description string            `db:"description" json:"description"`
	Date        time.Time         `db:"date" json:"date"`
	CreatedAt   time.Time         `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time         `db:"updated_at" json:"updatedAt"`
}

// BalanceDelta is the signed amount by which this transaction changes its
// owning account's balance: income credits the magnitude, expense and
// transfer debit it.
func (t *Transaction) BalanceDelta() decimal.Decimal {
	if t.Type == TransactionIncome {
		return t.Amount.Abs()
	}
	return t.Amount.Abs().Neg()
}
