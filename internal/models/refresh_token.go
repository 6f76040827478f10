package models

import "time"

type RefreshToken struct {
	ID         int64     `db:"id" json:"id"`
	UserID     int64     `db:"user_id" json:"userId"`
	TokenHash  string    `db:"token_hash" json:"-"`
	ExpiresAt  time.Time `db:"expires_at" json:"expiresAt"`
	Revoked    bool      `db:"revoked" json:"revoked"`
	ReplacedBy *int64    `db:"replaced_by" json:"replacedBy,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}
