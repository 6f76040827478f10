package models

import (
	"time"

	"craftmarket/internal/money"
)

type CustomOrderStatus string

const (
	CustomOrderPending        CustomOrderStatus = "pending"
	CustomOrderNegotiating    CustomOrderStatus = "negotiating"
	CustomOrderAccepted       CustomOrderStatus = "accepted"
	CustomOrderRejected       CustomOrderStatus = "rejected"
	CustomOrderPaymentPending CustomOrderStatus = "payment_pending"
	CustomOrderCompleted      CustomOrderStatus = "completed"
)

func (s CustomOrderStatus) Valid() bool {
	switch s {
	case CustomOrderPending, CustomOrderNegotiating, CustomOrderAccepted,
		CustomOrderRejected, CustomOrderPaymentPending, CustomOrderCompleted:
		return true
	}
	return false
}

type NegotiationStatus string

const (
	NegotiationNone           NegotiationStatus = "none"
	NegotiationSellerProposed NegotiationStatus = "seller_proposed"
	NegotiationBuyerCountered NegotiationStatus = "buyer_countered"
	NegotiationAgreed         NegotiationStatus = "agreed"
)

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentFailed  PaymentStatus = "failed"
)

// CustomOrder is a bespoke request from a buyer to one seller.
type CustomOrder struct {
	ID                int64             `db:"id" json:"id"`
	UserID            int64             `db:"user_id" json:"userId"`
	SellerID          int64             `db:"seller_id" json:"sellerId"`
	Description       string            `db:"description" json:"description"`
	ImageURL          *string           `db:"image_url" json:"imageUrl,omitempty"`
	Status            CustomOrderStatus `db:"status" json:"status"`
	NegotiationStatus NegotiationStatus `db:"negotiation_status" json:"negotiationStatus"`
	InitialPrice      *money.Amount     `db:"initial_price" json:"initialPrice,omitempty"`
	ProposedPrice     *money.Amount     `db:"proposed_price" json:"proposedPrice,omitempty"`
	AgreedPrice       *money.Amount     `db:"agreed_price" json:"agreedPrice,omitempty"`
	PaymentStatus     PaymentStatus     `db:"payment_status" json:"paymentStatus"`
	SnapToken         *string           `db:"snap_token" json:"snapToken,omitempty"`
	PaymentReference  *string           `db:"payment_reference" json:"paymentReference,omitempty"`
	PaidAt            *time.Time        `db:"paid_at" json:"paidAt,omitempty"`
	CreatedAt         time.Time         `db:"created_at" json:"createdAt"`
	UpdatedAt         time.Time         `db:"updated_at" json:"updatedAt"`
}

// CustomOrderParties resolves the two user accounts involved in a custom order.
type CustomOrderParties struct {
	BuyerID      int64
	SellerUserID int64
	StoreName    string
}

// Role reports which side userID acts on, or "" when it is neither.
func (p CustomOrderParties) Role(userID int64) Party {
	switch userID {
	case p.BuyerID:
		return PartyBuyer
	case p.SellerUserID:
		return PartySeller
	}
	return ""
}

// Counterpart returns the user on the other side of party.
func (p CustomOrderParties) Counterpart(party Party) int64 {
	if party == PartyBuyer {
		return p.SellerUserID
	}
	return p.BuyerID
}

// CustomOrderDetail is the expanded view returned to participants.
type CustomOrderDetail struct {
	CustomOrder
	Buyer          UserRef            `json:"buyer"`
	Seller         SellerSummary      `json:"seller"`
	CourierRequest *CourierRequest    `json:"courierRequest,omitempty"`
	Negotiations   []PriceNegotiation `json:"negotiations"`
}

type Party string

const (
	PartyBuyer  Party = "buyer"
	PartySeller Party = "seller"
)

type OfferStatus string

const (
	OfferPending    OfferStatus = "pending"
	OfferAccepted   OfferStatus = "accepted"
	OfferSuperseded OfferStatus = "superseded"
)

// PriceNegotiation is one entry of the append-only offer ledger.
type PriceNegotiation struct {
	ID            int64        `db:"id" json:"id"`
	CustomOrderID int64        `db:"custom_order_id" json:"customOrderId"`
	ProposedBy    Party        `db:"proposed_by" json:"proposedBy"`
	Price         money.Amount `db:"price" json:"price"`
	Message       *string      `db:"message" json:"message,omitempty"`
	Status        OfferStatus  `db:"status" json:"status"`
	CreatedAt     time.Time    `db:"created_at" json:"createdAt"`
}

type CourierStatus string

const (
	CourierRequested CourierStatus = "requested"
	CourierPickedUp  CourierStatus = "picked_up"
	CourierDelivered CourierStatus = "delivered"
	CourierCancelled CourierStatus = "cancelled"
)

func (s CourierStatus) Valid() bool {
	switch s {
	case CourierRequested, CourierPickedUp, CourierDelivered, CourierCancelled:
		return true
	}
	return false
}

type CourierRequest struct {
	ID            int64         `db:"id" json:"id"`
	CustomOrderID int64         `db:"custom_order_id" json:"customOrderId"`
	Address       string        `db:"address" json:"address"`
	PickupTime    time.Time     `db:"pickup_time" json:"pickupTime"`
	Status        CourierStatus `db:"status" json:"status"`
	CreatedAt     time.Time     `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time     `db:"updated_at" json:"updatedAt"`
}
