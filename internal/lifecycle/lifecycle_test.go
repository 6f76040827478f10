package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"craftmarket/internal/apperr"
	"craftmarket/internal/models"
)

var allStatuses = []models.CustomOrderStatus{
	models.CustomOrderPending,
	models.CustomOrderNegotiating,
	models.CustomOrderAccepted,
	models.CustomOrderRejected,
	models.CustomOrderPaymentPending,
	models.CustomOrderCompleted,
}

func TestCanTransitionGraph(t *testing.T) {
	allowed := map[[2]models.CustomOrderStatus]bool{
		{models.CustomOrderPending, models.CustomOrderAccepted}:           true,
		{models.CustomOrderPending, models.CustomOrderRejected}:           true,
		{models.CustomOrderPending, models.CustomOrderNegotiating}:        true,
		{models.CustomOrderNegotiating, models.CustomOrderNegotiating}:    true,
		{models.CustomOrderNegotiating, models.CustomOrderPaymentPending}: true,
		{models.CustomOrderNegotiating, models.CustomOrderRejected}:       true,
		{models.CustomOrderPaymentPending, models.CustomOrderAccepted}:    true,
		{models.CustomOrderAccepted, models.CustomOrderCompleted}:         true,
		{models.CustomOrderAccepted, models.CustomOrderNegotiating}:       true,
	}
	for _, from := range allStatuses {
		for _, to := range allStatuses {
			assert.Equal(t, allowed[[2]models.CustomOrderStatus{from, to}], CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestCheckSellerStatusUpdate(t *testing.T) {
	tests := []struct {
		name string
		from models.CustomOrderStatus
		to   models.CustomOrderStatus
		kind apperr.Kind
	}{
		{"accept pending", models.CustomOrderPending, models.CustomOrderAccepted, 0},
		{"reject pending", models.CustomOrderPending, models.CustomOrderRejected, 0},
		{"negotiate pending", models.CustomOrderPending, models.CustomOrderNegotiating, 0},
		{"complete accepted", models.CustomOrderAccepted, models.CustomOrderCompleted, 0},
		{"reject while negotiating", models.CustomOrderNegotiating, models.CustomOrderRejected, 0},
		{"payment_pending is never manual", models.CustomOrderNegotiating, models.CustomOrderPaymentPending, apperr.KindValidation},
		{"unknown status", models.CustomOrderPending, "shipped", apperr.KindValidation},
		{"accept while awaiting payment", models.CustomOrderPaymentPending, models.CustomOrderAccepted, apperr.KindConflict},
		{"complete pending", models.CustomOrderPending, models.CustomOrderCompleted, apperr.KindConflict},
		{"reopen rejected", models.CustomOrderRejected, models.CustomOrderAccepted, apperr.KindConflict},
		{"negotiate accepted manually", models.CustomOrderAccepted, models.CustomOrderNegotiating, apperr.KindConflict},
		{"reopen completed", models.CustomOrderCompleted, models.CustomOrderAccepted, apperr.KindConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckSellerStatusUpdate(tt.from, tt.to)
			if tt.kind == 0 {
				assert.NoError(t, err)
				return
			}
			assert.True(t, apperr.Is(err, tt.kind), "got %v", err)
		})
	}
}

func TestStatusMessageFallback(t *testing.T) {
	assert.Equal(t, "Your custom order has been rejected.", StatusMessage(models.CustomOrderRejected))
	assert.Equal(t, "Your custom order status has been updated.", StatusMessage(models.CustomOrderPending))
}

func TestCourierTransitions(t *testing.T) {
	assert.NoError(t, CheckCourierTransition(models.CourierRequested, models.CourierPickedUp))
	assert.NoError(t, CheckCourierTransition(models.CourierPickedUp, models.CourierDelivered))
	assert.NoError(t, CheckCourierTransition(models.CourierRequested, models.CourierCancelled))
	assert.NoError(t, CheckCourierTransition(models.CourierPickedUp, models.CourierCancelled))

	assert.True(t, apperr.Is(CheckCourierTransition(models.CourierRequested, models.CourierDelivered), apperr.KindConflict))
	assert.True(t, apperr.Is(CheckCourierTransition(models.CourierRequested, "lost"), apperr.KindValidation))

	for _, terminal := range []models.CourierStatus{models.CourierDelivered, models.CourierCancelled} {
		for _, to := range []models.CourierStatus{models.CourierRequested, models.CourierPickedUp, models.CourierDelivered, models.CourierCancelled} {
			assert.True(t, apperr.Is(CheckCourierTransition(terminal, to), apperr.KindConflict), "%s -> %s", terminal, to)
		}
	}
}

func TestCourierMessage(t *testing.T) {
	assert.Equal(t, "The courier pickup has been cancelled.", CourierMessage(models.CourierCancelled))
	assert.Equal(t, "Your courier request status has been updated.", CourierMessage(models.CourierRequested))
}
