package models

import (
	"time"

	"craftmarket/internal/money"
)

type Product struct {
	ID          int64        `db:"id" json:"id"`
	SellerID    int64        `db:"seller_id" json:"sellerId"`
	Name        string       `db:"name" json:"name"`
	Description string       `db:"description" json:"description"`
	Price       money.Amount `db:"price" json:"price"`
	ImageURL    *string      `db:"image_url" json:"imageUrl,omitempty"`
	CreatedAt   time.Time    `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time    `db:"updated_at" json:"updatedAt"`
}

// ProductListing is a product with its seller's display fields.
type ProductListing struct {
	Product
	StoreName      string `db:"store_name" json:"storeName"`
	SellerFullName string `db:"seller_full_name" json:"sellerFullName"`
}

type Portfolio struct {
	ID          int64      `db:"id" json:"id"`
	SellerID    int64      `db:"seller_id" json:"sellerId"`
	Title       string     `db:"title" json:"title"`
	Description *string    `db:"description" json:"description,omitempty"`
	ImageURL    string     `db:"image_url" json:"imageUrl"`
	Category    *string    `db:"category" json:"category,omitempty"`
	Tags        StringList `db:"tags" json:"tags"`
	Featured    bool       `db:"featured" json:"featured"`
	CreatedAt   time.Time  `db:"created_at" json:"createdAt"`
}
