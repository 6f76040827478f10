package payment

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"

	"craftmarket/internal/models"
)

var (
	transactionStatuses = []string{"capture", "settlement", "pending", "deny", "cancel", "expire", "refund", "authorize", ""}
	fraudStatuses       = []string{"accept", "challenge", "deny", ""}
)

func TestMapWebhookStatusTable(t *testing.T) {
	for _, ts := range transactionStatuses {
		for _, fs := range fraudStatuses {
			want := OutcomePending
			switch {
			case ts == "settlement":
				want = OutcomePaid
			case ts == "capture" && fs == "accept":
				want = OutcomePaid
			case ts == "deny" || ts == "cancel" || ts == "expire":
				want = OutcomeFailed
			}
			assert.Equal(t, want, MapWebhookStatus(ts, fs), "transaction=%q fraud=%q", ts, fs)
		}
	}
}

func TestMapTransactionStatus(t *testing.T) {
	tests := []struct {
		status  string
		payment models.PaymentStatus
		order   models.CustomOrderStatus
	}{
		{"capture", models.PaymentPaid, models.CustomOrderAccepted},
		{"settlement", models.PaymentPaid, models.CustomOrderAccepted},
		{"pending", models.PaymentPending, models.CustomOrderPaymentPending},
		{"deny", models.PaymentFailed, models.CustomOrderPaymentPending},
		{"cancel", models.PaymentFailed, models.CustomOrderPaymentPending},
		{"expire", models.PaymentFailed, models.CustomOrderPaymentPending},
	}
	for _, tt := range tests {
		got := MapTransactionStatus(tt.status)
		assert.Equal(t, tt.payment, got.Payment, tt.status)
		if assert.NotNil(t, got.Status, tt.status) {
			assert.Equal(t, tt.order, *got.Status, tt.status)
		}
	}

	unknown := MapTransactionStatus("refund")
	assert.Equal(t, models.PaymentPending, unknown.Payment)
	assert.Nil(t, unknown.Status)
}

func TestWebhookStatusAgreesWithClientMapping(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("fraud-adjusted status maps to the same payment outcome", prop.ForAll(
		func(ts, fs string) bool {
			outcome := MapWebhookStatus(ts, fs)
			update := MapTransactionStatus(WebhookTransactionStatus(ts, fs))
			return string(outcome) == string(update.Payment)
		},
		gen.OneConstOf(toInterfaces(transactionStatuses)...),
		gen.OneConstOf(toInterfaces(fraudStatuses)...),
	))

	properties.Property("only an accepted fraud review settles a capture", prop.ForAll(
		func(fs string) bool {
			accepted := fs == "accept"
			custom := MapTransactionStatus(WebhookTransactionStatus("capture", fs)).Payment == models.PaymentPaid
			return (MapWebhookStatus("capture", fs) == OutcomePaid) == accepted && custom == accepted
		},
		gen.AlphaString(),
	))

	properties.Property("unknown transaction statuses stay pending", prop.ForAll(
		func(ts, fs string) bool {
			switch ts {
			case "capture", "settlement", "deny", "cancel", "expire":
				return true
			}
			return MapWebhookStatus(ts, fs) == OutcomePending && MapTransactionStatus(ts).Payment == models.PaymentPending
		},
		gen.AlphaString(),
		gen.OneConstOf(toInterfaces(fraudStatuses)...),
	))

	properties.TestingRun(t)
}

func toInterfaces(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

func TestOutcomeOrderPaymentStatus(t *testing.T) {
	assert.Equal(t, models.OrderPaid, OutcomePaid.OrderPaymentStatus())
	assert.Equal(t, models.OrderPaymentFailed, OutcomeFailed.OrderPaymentStatus())
	assert.Equal(t, models.OrderPaymentPending, OutcomePending.OrderPaymentStatus())
}
