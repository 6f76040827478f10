// Package lifecycle holds the status transition tables for custom orders and
// courier requests together with the notification texts each transition emits.
package lifecycle

import (
	"fmt"

	"craftmarket/internal/apperr"
	"craftmarket/internal/models"
)

var customOrderTransitions = map[models.CustomOrderStatus][]models.CustomOrderStatus{
	models.CustomOrderPending:        {models.CustomOrderAccepted, models.CustomOrderRejected, models.CustomOrderNegotiating},
	models.CustomOrderNegotiating:    {models.CustomOrderNegotiating, models.CustomOrderPaymentPending, models.CustomOrderRejected},
	models.CustomOrderPaymentPending: {models.CustomOrderAccepted},
	models.CustomOrderAccepted:       {models.CustomOrderCompleted, models.CustomOrderNegotiating},
}

// sellerTargets are the statuses a seller may set directly. payment_pending is
// reached through price agreement and accepted-after-payment through settlement.
var sellerTargets = map[models.CustomOrderStatus]bool{
	models.CustomOrderAccepted:    true,
	models.CustomOrderRejected:    true,
	models.CustomOrderNegotiating: true,
	models.CustomOrderCompleted:   true,
}

// CanTransition reports whether from -> to is an edge of the custom order graph.
func CanTransition(from, to models.CustomOrderStatus) bool {
	for _, next := range customOrderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// CheckSellerStatusUpdate validates a status change requested by the seller.
func CheckSellerStatusUpdate(from, to models.CustomOrderStatus) error {
	if !to.Valid() {
		return apperr.Validation("invalid status %q", to)
	}
	if !sellerTargets[to] {
		return apperr.Validation("status %q cannot be set directly", to)
	}
	if from == models.CustomOrderPaymentPending && to == models.CustomOrderAccepted {
		return apperr.Conflict("custom order is awaiting payment")
	}
	// An accepted order only returns to negotiation through a price proposal.
	if to == models.CustomOrderNegotiating && from != models.CustomOrderPending {
		return apperr.Conflict(fmt.Sprintf("cannot change custom order status from %s to %s", from, to))
	}
	if !CanTransition(from, to) {
		return apperr.Conflict(fmt.Sprintf("cannot change custom order status from %s to %s", from, to))
	}
	return nil
}

// OpensConversation reports whether entering status creates the chat thread.
func OpensConversation(status models.CustomOrderStatus) bool {
	return status == models.CustomOrderAccepted || status == models.CustomOrderNegotiating
}

var statusMessages = map[models.CustomOrderStatus]string{
	models.CustomOrderAccepted:       "Your custom order has been accepted! You can now chat with the designer.",
	models.CustomOrderRejected:       "Your custom order has been rejected.",
	models.CustomOrderCompleted:      "Your custom order has been completed!",
	models.CustomOrderNegotiating:    "The seller has started price negotiation for your custom order.",
	models.CustomOrderPaymentPending: "Your custom order is awaiting payment.",
}

const (
	StatusUpdateTitle    = "Custom Order Update"
	statusUpdateFallback = "Your custom order status has been updated."
)

// StatusMessage returns the buyer-facing text for a new custom order status.
func StatusMessage(status models.CustomOrderStatus) string {
	if msg, ok := statusMessages[status]; ok {
		return msg
	}
	return statusUpdateFallback
}

var courierTransitions = map[models.CourierStatus][]models.CourierStatus{
	models.CourierRequested: {models.CourierPickedUp, models.CourierCancelled},
	models.CourierPickedUp:  {models.CourierDelivered, models.CourierCancelled},
}

// CheckCourierTransition validates a courier status change.
func CheckCourierTransition(from, to models.CourierStatus) error {
	if !to.Valid() {
		return apperr.Validation("invalid courier status %q", to)
	}
	if CourierTerminal(from) {
		return apperr.Conflict(fmt.Sprintf("courier request is already %s", from))
	}
	for _, next := range courierTransitions[from] {
		if next == to {
			return nil
		}
	}
	return apperr.Conflict(fmt.Sprintf("cannot change courier status from %s to %s", from, to))
}

func CourierTerminal(status models.CourierStatus) bool {
	return status == models.CourierDelivered || status == models.CourierCancelled
}

var courierMessages = map[models.CourierStatus]string{
	models.CourierPickedUp:  "Your item has been picked up by the courier.",
	models.CourierDelivered: "Your item has been delivered to the designer.",
	models.CourierCancelled: "The courier pickup has been cancelled.",
}

const (
	CourierUpdateTitle    = "Courier Update"
	courierUpdateFallback = "Your courier request status has been updated."
)

func CourierMessage(status models.CourierStatus) string {
	if msg, ok := courierMessages[status]; ok {
		return msg
	}
	return courierUpdateFallback
}
