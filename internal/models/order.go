package models

import (
	"time"

	"craftmarket/internal/money"
)

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderCompleted OrderStatus = "completed"
	OrderCancelled OrderStatus = "cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderCompleted, OrderCancelled:
		return true
	}
	return false
}

type OrderPaymentStatus string

const (
	OrderUnpaid         OrderPaymentStatus = "unpaid"
	OrderPaymentPending OrderPaymentStatus = "pending"
	OrderPaid           OrderPaymentStatus = "paid"
	OrderPaymentFailed  OrderPaymentStatus = "failed"
)

// OrderItem is a price snapshot of a product at purchase time.
type OrderItem struct {
	ID          int64        `db:"id" json:"id"`
	OrderID     int64        `db:"order_id" json:"orderId"`
	ProductID   int64        `db:"product_id" json:"productId"`
	Quantity    int          `db:"quantity" json:"quantity"`
	Price       money.Amount `db:"price" json:"price"`
	ProductName string       `db:"product_name" json:"productName,omitempty"`
	ImageURL    *string      `db:"image_url" json:"imageUrl,omitempty"`
}

// Order defines a per-seller purchase materialised from the cart.
type Order struct {
	ID            int64              `db:"id" json:"id"`
	UserID        int64              `db:"user_id" json:"userId"`
	SellerID      int64              `db:"seller_id" json:"sellerId"`
	TotalAmount   money.Amount       `db:"total_amount" json:"totalAmount"`
	Status        OrderStatus        `db:"status" json:"status"`
	PaymentStatus OrderPaymentStatus `db:"payment_status" json:"paymentStatus"`
	SnapToken     *string            `db:"snap_token" json:"snapToken,omitempty"`
	RequestTitle  string             `db:"request_title" json:"requestTitle"`
	Description   string             `db:"description" json:"description"`
	Category      string             `db:"category" json:"category"`
	OrderDate     time.Time          `db:"order_date" json:"orderDate"`
	UpdatedAt     time.Time          `db:"updated_at" json:"updatedAt"`
	Items         []OrderItem        `db:"-" json:"items"`
}

type CartItem struct {
	ID        int64   `db:"id" json:"id"`
	UserID    int64   `db:"user_id" json:"userId"`
	ProductID int64   `db:"product_id" json:"productId"`
	Quantity  int     `db:"quantity" json:"quantity"`
	Product   Product `db:"product" json:"product"`
}
