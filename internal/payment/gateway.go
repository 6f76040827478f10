// Package payment talks to the Midtrans Snap gateway and maps its transaction
// vocabulary onto local payment states.
package payment

import (
	"context"
	"time"
)

type Gateway interface {
	CreateTransaction(ctx context.Context, req TransactionRequest) (Transaction, error)
}

type TransactionRequest struct {
	Reference   string
	GrossAmount int64
	Customer    Customer
	Items       []Item
	// Expiry is optional; zero leaves the gateway default.
	Expiry    time.Duration
	StartTime time.Time
}

type Customer struct {
	FirstName string
	Email     string
}

type Item struct {
	ID       string
	Name     string
	Price    int64
	Quantity int
	Category string
}

// Transaction is the opaque handle the client redeems to show the payment UI.
type Transaction struct {
	Token       string `json:"token"`
	RedirectURL string `json:"redirect_url"`
}
