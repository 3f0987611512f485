package models

import (
	"time"
)

type User struct {
	UID       string    `db:"uid" json:"uid"`
	Email     string    `db:"email" json:"email"`
	FirstName string    `db:"first_name" json:"firstName,omitempty"`
	LastName  string    `db:"last_name" json:"lastName,omitempty"`
	GoogleID  *string   `db:"google_id" json:"googleId,omitempty"`
	AvatarURL string    `db:"avatar_url" json:"avatarUrl,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}
