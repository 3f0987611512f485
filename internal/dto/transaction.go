package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/finflowhq/finflow-backend/internal/models"
	"github.com/finflowhq/finflow-backend/internal/taxonomy"
)

type CreateTransactionRequest struct {
	AccountID   string                 `json:"accountId"`
	Amount      decimal.Decimal        `json:"amount"`
	Type        models.TransactionType `json:"type"`
	Category    taxonomy.Category      `json:"category"`
	Description string                 `json:"description"`
	Date        string                 `json:"date"` // YYYY-MM-DD
}

// UpdateTransactionRequest carries a partial update; nil fields are
// retained from the stored transaction.
type UpdateTransactionRequest struct {
	AccountID   *string                 `json:"accountId,omitempty"`
	Amount      *decimal.Decimal        `json:"amount,omitempty"`
	Type        *models.TransactionType `json:"type,omitempty"`
	Category    *taxonomy.Category      `json:"category,omitempty"`
	Description *string                 `json:"description,omitempty"`
	Date        *string                 `json:"date,omitempty"`
}

// TransactionPatch is the validated, parsed form of an update request as
// handed to the store. Nil fields keep the stored value.
type TransactionPatch struct {
	AccountID   *string
	Amount      *decimal.Decimal
	Type        *models.TransactionType
	Category    *taxonomy.Category
	Description *string
	Date        *time.Time
}

// TransactionQuery filters and orders the paginated listing. Sort ties are
// broken by id ascending so identical queries page deterministically.
type TransactionQuery struct {
	Category  *taxonomy.Category
	Type      *models.TransactionType
	AccountID *string
	DateFrom  *string
	DateTo    *string
	Search    *string
	SortKey   string // "date", "amount", "type", "account"
	SortDesc  bool
	Page      int
	Limit     int
}

type TransactionPage struct {
	Items      []models.Transaction `json:"items"`
	Total      int                  `json:"total"`
	Page       int                  `json:"page"`
	Limit      int                  `json:"limit"`
	TotalPages int                  `json:"totalPages"`
	HasNext    bool                 `json:"hasNext"`
	HasPrev    bool                 `json:"hasPrev"`
}
