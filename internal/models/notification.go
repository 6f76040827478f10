package models

import "time"

const (
	NotificationCustomOrder       = "custom_order"
	NotificationCustomOrderUpdate = "custom_order_update"
	NotificationCourierUpdate     = "courier_update"
	NotificationPriceNegotiation  = "price_negotiation"
	NotificationPriceAgreed       = "price_agreed"
	NotificationPaymentReceived   = "payment_received"
	NotificationPaymentSuccess    = "payment_success"
	NotificationMessage           = "message"
)

type Notification struct {
	ID          int64      `db:"id" json:"id"`
	UserID      int64      `db:"user_id" json:"userId"`
	Title       string     `db:"title" json:"title"`
	Message     string     `db:"message" json:"message"`
	Type        string     `db:"type" json:"type"`
	Read        bool       `db:"read" json:"read"`
	CreatedAt   time.Time  `db:"created_at" json:"createdAt"`
	PublishedAt *time.Time `db:"published_at" json:"-"`
}
