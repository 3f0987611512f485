package models

import (
	"time"
)

// PlaidItem links a user to a Plaid item used for investment holdings
// refresh. AccessToken holds the KMS-encrypted token, never plaintext.
type PlaidItem struct {
	ID          string    `db:"id" json:"id"`
	UserID      string    `db:"user_id" json:"userId"`
	ItemID      string    `db:"item_id" json:"itemId"`
	Institution string    `db:"institution" json:"institution"`
	AccessToken string    `db:"access_token" json:"-"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}
