package payment

import "craftmarket/internal/models"

// Outcome is the local projection of a gateway transaction status.
type Outcome string

const (
	OutcomePaid    Outcome = "paid"
	OutcomePending Outcome = "pending"
	OutcomeFailed  Outcome = "failed"
)

// MapWebhookStatus derives the outcome of a gateway notification. A capture
// only counts as paid once fraud screening accepted it.
func MapWebhookStatus(transactionStatus, fraudStatus string) Outcome {
	switch transactionStatus {
	case "settlement":
		return OutcomePaid
	case "capture":
		if fraudStatus == "accept" {
			return OutcomePaid
		}
		return OutcomePending
	case "deny", "cancel", "expire":
		return OutcomeFailed
	default:
		return OutcomePending
	}
}

// WebhookTransactionStatus folds the fraud status into the transaction status
// so a custom order sees the same vocabulary the client callback uses.
func WebhookTransactionStatus(transactionStatus, fraudStatus string) string {
	if transactionStatus == "capture" && fraudStatus != "accept" {
		return "pending"
	}
	return transactionStatus
}

// CustomOrderUpdate is the state a transaction status moves a custom order to.
// Status is nil when the order status is left unchanged.
type CustomOrderUpdate struct {
	Payment models.PaymentStatus
	Status  *models.CustomOrderStatus
}

func MapTransactionStatus(transactionStatus string) CustomOrderUpdate {
	status := func(s models.CustomOrderStatus) *models.CustomOrderStatus { return &s }
	switch transactionStatus {
	case "capture", "settlement":
		return CustomOrderUpdate{Payment: models.PaymentPaid, Status: status(models.CustomOrderAccepted)}
	case "pending":
		return CustomOrderUpdate{Payment: models.PaymentPending, Status: status(models.CustomOrderPaymentPending)}
	case "deny", "cancel", "expire":
		return CustomOrderUpdate{Payment: models.PaymentFailed, Status: status(models.CustomOrderPaymentPending)}
	default:
		return CustomOrderUpdate{Payment: models.PaymentPending}
	}
}

// OrderPaymentStatus converts an outcome for a cart order.
func (o Outcome) OrderPaymentStatus() models.OrderPaymentStatus {
	switch o {
	case OutcomePaid:
		return models.OrderPaid
	case OutcomeFailed:
		return models.OrderPaymentFailed
	default:
		return models.OrderPaymentPending
	}
}
