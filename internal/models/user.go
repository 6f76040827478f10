package models

import "time"

const (
	RoleUser   = "user"
	RoleSeller = "seller"
)

// User represents the application user account.
type User struct {
	ID           int64     `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	FullName     string    `db:"full_name" json:"fullName"`
	Role         string    `db:"role" json:"role"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}

// Seller is the store profile owned by a seller-role user.
type Seller struct {
	ID          int64     `db:"id" json:"id"`
	UserID      int64     `db:"user_id" json:"userId"`
	StoreName   string    `db:"store_name" json:"storeName"`
	Description string    `db:"description" json:"description"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

// SellerSummary is a seller joined with its owner's display name.
type SellerSummary struct {
	Seller
	FullName string `db:"full_name" json:"fullName"`
	Email    string `db:"email" json:"email,omitempty"`
}

// UserRef is the public identity of a participant.
type UserRef struct {
	ID       int64  `db:"id" json:"id"`
	FullName string `db:"full_name" json:"fullName"`
	Email    string `db:"email" json:"email,omitempty"`
}

type Skill struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// Profile is the full view of the signed-in user.
type Profile struct {
	User   User    `json:"user"`
	Seller *Seller `json:"seller,omitempty"`
	Skills []Skill `json:"skills"`
}
