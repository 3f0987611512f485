package models

import (
	"time"
)

type Alert struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"userId"`
	Title     string    `db:"title" json:"title"`
	Message   string    `db:"message" json:"message"`
	Severity  string    `db:"severity" json:"severity"` // "info", "warning", "critical"
	IsRead    bool      `db:"is_read" json:"isRead"`
	IsActive  bool      `db:"is_active" json:"isActive"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}
