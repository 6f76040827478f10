package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"craftmarket/internal/apperr"
	"craftmarket/internal/logging"
	"craftmarket/internal/models"
	"craftmarket/internal/payment"
	"craftmarket/internal/store"
)

type SnapSession struct {
	Token       string `json:"token"`
	RedirectURL string `json:"redirectUrl"`
	Reference   string `json:"reference"`
}

// CreateSnapToken opens a gateway transaction for one of the buyer's orders.
func (s *Service) CreateSnapToken(ctx context.Context, buyerID, orderID int64) (SnapSession, error) {
	order, err := s.store.GetOrder(ctx, orderID)
	if errors.Is(err, store.ErrNotFound) {
		return SnapSession{}, apperr.NotFound("order not found")
	}
	if err != nil {
		return SnapSession{}, err
	}
	if order.UserID != buyerID {
		return SnapSession{}, apperr.Forbidden("you do not have access to this order")
	}
	if len(order.Items) == 0 {
		return SnapSession{}, apperr.Validation("order has no items")
	}
	if order.PaymentStatus == models.OrderPaid {
		return SnapSession{}, apperr.Conflict("this order has already been paid")
	}
	buyer, err := s.store.GetUserByID(ctx, buyerID)
	if err != nil {
		return SnapSession{}, err
	}

	items := make([]payment.Item, 0, len(order.Items))
	for _, it := range order.Items {
		items = append(items, payment.Item{
			ID:       fmt.Sprintf("PRODUCT-%d", it.ProductID),
			Name:     it.ProductName,
			Price:    s.currency.GatewayAmount(it.Price),
			Quantity: it.Quantity,
			Category: "Product",
		})
	}

	now := s.store.Now()
	reference := payment.OrderReference(order.ID, now)
	tx, err := s.gateway.CreateTransaction(ctx, payment.TransactionRequest{
		Reference:   reference,
		GrossAmount: s.currency.GatewayAmount(order.TotalAmount),
		Customer:    payment.Customer{FirstName: customerName(buyer), Email: buyer.Email},
		Items:       items,
		Expiry:      s.paymentExpiry,
		StartTime:   now,
	})
	if err != nil {
		logging.FromContext(ctx).Error("payment gateway rejected transaction",
			slog.Int64("order_id", order.ID), logging.Err(err))
		return SnapSession{}, apperr.Upstream("failed to create payment transaction", err)
	}

	if err := s.store.SetOrderSnapToken(ctx, order.ID, tx.Token); err != nil {
		if errors.Is(err, store.ErrStale) {
			return SnapSession{}, apperr.Conflict("this order has already been paid")
		}
		return SnapSession{}, err
	}
	return SnapSession{Token: tx.Token, RedirectURL: tx.RedirectURL, Reference: reference}, nil
}

func customerName(u models.User) string {
	if u.FullName != "" {
		return u.FullName
	}
	if local, _, ok := strings.Cut(u.Email, "@"); ok && local != "" {
		return local
	}
	return "Customer"
}

// ApplyWebhookStatus records a gateway outcome on a cart order.
func (s *Service) ApplyWebhookStatus(ctx context.Context, orderID int64, outcome payment.Outcome) error {
	err := s.store.UpdateOrderPaymentStatus(ctx, orderID, outcome.OrderPaymentStatus())
	if errors.Is(err, store.ErrNotFound) {
		return apperr.NotFound("order not found")
	}
	if err != nil {
		return err
	}
	logging.FromContext(ctx).Info("order payment status updated",
		slog.Int64("order_id", orderID), slog.String("payment_status", string(outcome)))
	return nil
}
