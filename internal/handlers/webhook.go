package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"craftmarket/internal/apperr"
	"craftmarket/internal/logging"
	"craftmarket/internal/models"
	"craftmarket/internal/payment"
)

const maxWebhookBody = 64 << 10

// CustomOrderPayments applies gateway statuses to custom orders.
type CustomOrderPayments interface {
	ApplyGatewayStatus(ctx context.Context, id int64, transactionStatus, paymentType string) (models.CustomOrder, error)
}

// OrderPayments applies gateway outcomes to cart orders.
type OrderPayments interface {
	ApplyWebhookStatus(ctx context.Context, orderID int64, outcome payment.Outcome) error
}

type WebhookDeps struct {
	Secret       string
	Archive      payment.Archive
	CustomOrders CustomOrderPayments
	Orders       OrderPayments
}

// PaymentWebhook receives the gateway's server-to-server notifications. The
// body must carry a valid HMAC signature; a redelivered notification is
// acknowledged without being applied again.
func PaymentWebhook(deps WebhookDeps) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /payment/webhook"
		defer handlePanic(c, route)
		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()
		log := logging.FromContext(ctx).With(slog.String(logging.KeyRoute, route))

		raw, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid body")
			return
		}
		if !payment.VerifySignature([]byte(deps.Secret), raw, c.GetHeader(payment.SignatureHeader)) {
			log.Warn("webhook signature rejected")
			respondWithError(c, http.StatusUnauthorized, route, "invalid signature")
			return
		}

		var n payment.Notification
		if err := json.Unmarshal(raw, &n); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid JSON payload")
			return
		}
		if err := binding.Validator.ValidateStruct(&n); err != nil {
			respondValidationError(c, err)
			return
		}
		kind, id, err := payment.ParseReference(n.OrderID)
		if err != nil {
			log.Warn("webhook reference rejected", slog.String("order_id", n.OrderID))
			respondWithError(c, http.StatusBadRequest, route, "invalid order ID format")
			return
		}

		duplicate, err := deps.Archive.Record(ctx, n, raw)
		if err != nil {
			log.Warn("webhook archive unavailable", logging.Err(err))
		}
		if duplicate {
			log.Info("duplicate webhook ignored", slog.String("order_id", n.OrderID))
			c.JSON(http.StatusOK, gin.H{"status": "duplicate"})
			return
		}

		switch kind {
		case payment.KindCustomOrder:
			_, err = deps.CustomOrders.ApplyGatewayStatus(ctx, id,
				payment.WebhookTransactionStatus(n.TransactionStatus, n.FraudStatus), n.PaymentType)
		default:
			err = deps.Orders.ApplyWebhookStatus(ctx, id, payment.MapWebhookStatus(n.TransactionStatus, n.FraudStatus))
		}
		if err != nil {
			if status, _ := apperr.HTTPStatus(err); status >= http.StatusInternalServerError {
				if ferr := deps.Archive.Forget(ctx, n); ferr != nil {
					log.Warn("webhook archive cleanup failed", logging.Err(ferr))
				}
			}
			respondServiceError(c, route, err)
			return
		}

		log.Info("webhook applied",
			slog.String("order_id", n.OrderID),
			slog.String("transaction_status", n.TransactionStatus))
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
