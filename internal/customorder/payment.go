package customorder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"craftmarket/internal/apperr"
	"craftmarket/internal/lifecycle"
	"craftmarket/internal/logging"
	"craftmarket/internal/models"
	"craftmarket/internal/payment"
	"craftmarket/internal/store"
)

type PaymentSession struct {
	Token       string `json:"token"`
	RedirectURL string `json:"redirectUrl"`
	Reference   string `json:"reference"`
}

// CreatePayment opens a gateway transaction for the agreed price. The gateway
// is called before anything is written, so a failure leaves the order as is.
func (s *Service) CreatePayment(ctx context.Context, buyerID, id int64) (PaymentSession, error) {
	parties, err := s.requireSide(ctx, buyerID, id, models.PartyBuyer)
	if err != nil {
		return PaymentSession{}, err
	}
	order, err := s.loadOrder(ctx, id)
	if err != nil {
		return PaymentSession{}, err
	}
	if order.AgreedPrice == nil {
		return PaymentSession{}, apperr.Validation("no agreed price found for this custom order")
	}
	if order.PaymentStatus == models.PaymentPaid {
		return PaymentSession{}, apperr.Conflict("this custom order has already been paid")
	}
	if order.Status != models.CustomOrderPaymentPending {
		return PaymentSession{}, apperr.Conflict(fmt.Sprintf("custom order is %s", order.Status))
	}
	buyer, err := s.store.GetUserByID(ctx, buyerID)
	if err != nil {
		return PaymentSession{}, err
	}

	now := s.store.Now()
	reference := payment.CustomOrderReference(id, now)
	amount := s.currency.GatewayAmount(*order.AgreedPrice)
	tx, err := s.gateway.CreateTransaction(ctx, payment.TransactionRequest{
		Reference:   reference,
		GrossAmount: amount,
		Customer:    payment.Customer{FirstName: buyer.FullName, Email: buyer.Email},
		Items: []payment.Item{{
			ID:       fmt.Sprintf("custom-order-%d", id),
			Name:     fmt.Sprintf("Custom Order from %s", parties.StoreName),
			Price:    amount,
			Quantity: 1,
		}},
		Expiry:    s.paymentExpiry,
		StartTime: now,
	})
	if err != nil {
		logging.FromContext(ctx).Error("payment gateway rejected transaction",
			slog.Int64("custom_order_id", id), logging.Err(err))
		return PaymentSession{}, apperr.Upstream("failed to create payment transaction", err)
	}

	if err := s.store.SetCustomOrderPaymentToken(ctx, id, tx.Token, reference); err != nil {
		return PaymentSession{}, stale(err)
	}

	logging.FromContext(ctx).Info("payment transaction created",
		slog.Int64("custom_order_id", id), slog.String("reference", reference))
	return PaymentSession{Token: tx.Token, RedirectURL: tx.RedirectURL, Reference: reference}, nil
}

// HandlePaymentNotification applies a client-side payment callback. Only the
// buyer may report on their own payment, and only non-final statuses: a
// settlement is accepted from the signed gateway webhook alone.
func (s *Service) HandlePaymentNotification(ctx context.Context, buyerID, id int64, transactionStatus, paymentType string) (models.CustomOrder, error) {
	if _, err := s.requireSide(ctx, buyerID, id, models.PartyBuyer); err != nil {
		return models.CustomOrder{}, err
	}
	if payment.MapTransactionStatus(transactionStatus).Payment == models.PaymentPaid {
		return models.CustomOrder{}, apperr.Forbidden("payment settlement is confirmed by the payment gateway")
	}
	return s.ApplyGatewayStatus(ctx, id, transactionStatus, paymentType)
}

// ApplyGatewayStatus projects a gateway transaction status onto the order.
// Paid is final; re-applying the same status changes nothing and notifies
// nobody. Orders that never opened a gateway transaction are rejected.
func (s *Service) ApplyGatewayStatus(ctx context.Context, id int64, transactionStatus, paymentType string) (models.CustomOrder, error) {
	update := payment.MapTransactionStatus(transactionStatus)

	var order models.CustomOrder
	err := s.store.Transact(ctx, func(ctx context.Context) error {
		current, err := s.loadOrder(ctx, id)
		if err != nil {
			return err
		}
		order = current
		if current.PaymentStatus == models.PaymentPaid {
			return nil
		}
		if current.Status != models.CustomOrderPaymentPending || current.AgreedPrice == nil || current.PaymentReference == nil {
			return apperr.Conflict(fmt.Sprintf("custom order %d is not awaiting payment", id))
		}

		status := current.Status
		if update.Status != nil && lifecycle.CanTransition(current.Status, *update.Status) {
			status = *update.Status
		}
		if status == current.Status && update.Payment == current.PaymentStatus {
			return nil
		}

		paid := update.Payment == models.PaymentPaid
		paidAt := current.PaidAt
		if paid {
			now := s.store.Now()
			paidAt = &now
		}
		if err := s.store.ApplyPaymentResult(ctx, id, status, update.Payment, paidAt); err != nil {
			if errors.Is(err, store.ErrStale) {
				order, err = s.store.GetCustomOrder(ctx, id)
			}
			return err
		}
		if paid {
			if err := s.notifyPaid(ctx, current); err != nil {
				return err
			}
		}
		order, err = s.store.GetCustomOrder(ctx, id)
		return err
	})
	if err != nil {
		return models.CustomOrder{}, err
	}

	logging.FromContext(ctx).Info("payment status applied",
		slog.Int64("custom_order_id", id),
		slog.String("transaction_status", transactionStatus),
		slog.String("payment_type", paymentType),
		slog.String("payment_status", string(order.PaymentStatus)))
	return order, nil
}

func (s *Service) notifyPaid(ctx context.Context, order models.CustomOrder) error {
	parties, err := s.store.GetCustomOrderParties(ctx, order.ID)
	if err != nil {
		return err
	}
	amount := "the agreed price"
	if order.AgreedPrice != nil {
		amount = s.currency.Format(*order.AgreedPrice)
	}
	if err := s.notify.Notify(ctx, parties.SellerUserID, models.NotificationPaymentReceived, "Payment Received",
		fmt.Sprintf("Payment of %s has been received for custom order #%d. You can now start working on the order.", amount, order.ID)); err != nil {
		return err
	}
	return s.notify.Notify(ctx, parties.BuyerID, models.NotificationPaymentSuccess, "Payment Successful",
		fmt.Sprintf("Your payment of %s for custom order #%d has been processed successfully.", amount, order.ID))
}
