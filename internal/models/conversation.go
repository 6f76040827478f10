package models

import (
	"encoding/json"
	"errors"
	"time"
)

// Conversation is the chat thread of exactly one order or one custom order.
type Conversation interface {
	ConversationID() int64
	CreatedAt() time.Time
	conversation()
}

type OrderConversation struct {
	ID      int64
	OrderID int64
	Created time.Time
}

type CustomOrderConversation struct {
	ID            int64
	CustomOrderID int64
	Created       time.Time
}

func (c OrderConversation) ConversationID() int64 { return c.ID }
func (c OrderConversation) CreatedAt() time.Time  { return c.Created }
func (OrderConversation) conversation()           {}

func (c CustomOrderConversation) ConversationID() int64 { return c.ID }
func (c CustomOrderConversation) CreatedAt() time.Time  { return c.Created }
func (CustomOrderConversation) conversation()           {}

func (c OrderConversation) MarshalJSON() ([]byte, error) {
	return json.Marshal(conversationJSON{ID: c.ID, OrderID: &c.OrderID, CreatedAt: c.Created})
}

func (c CustomOrderConversation) MarshalJSON() ([]byte, error) {
	return json.Marshal(conversationJSON{ID: c.ID, CustomOrderID: &c.CustomOrderID, CreatedAt: c.Created})
}

type conversationJSON struct {
	ID            int64     `json:"id"`
	OrderID       *int64    `json:"orderId"`
	CustomOrderID *int64    `json:"customOrderId"`
	CreatedAt     time.Time `json:"createdAt"`
}

// ConversationRow is the persisted shape of a conversation.
type ConversationRow struct {
	ID            int64     `db:"id"`
	OrderID       *int64    `db:"order_id"`
	CustomOrderID *int64    `db:"custom_order_id"`
	CreatedAt     time.Time `db:"created_at"`
}

var ErrInvalidConversation = errors.New("conversation must reference exactly one of order or custom order")

// ConversationFromRow converts a row into its variant.
func ConversationFromRow(row ConversationRow) (Conversation, error) {
	switch {
	case row.OrderID != nil && row.CustomOrderID == nil:
		return OrderConversation{ID: row.ID, OrderID: *row.OrderID, Created: row.CreatedAt}, nil
	case row.CustomOrderID != nil && row.OrderID == nil:
		return CustomOrderConversation{ID: row.ID, CustomOrderID: *row.CustomOrderID, Created: row.CreatedAt}, nil
	default:
		return nil, ErrInvalidConversation
	}
}

type Message struct {
	ID             int64     `db:"id" json:"id"`
	ConversationID int64     `db:"conversation_id" json:"conversationId"`
	SenderID       int64     `db:"sender_id" json:"senderId"`
	SenderName     string    `db:"sender_name" json:"senderName"`
	Content        string    `db:"content" json:"content"`
	CreatedAt      time.Time `db:"created_at" json:"createdAt"`
}
