package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"craftmarket/internal/account"
	"craftmarket/internal/catalog"
	"craftmarket/internal/chat"
	"craftmarket/internal/checkout"
	"craftmarket/internal/customorder"
	"craftmarket/internal/models"
	"craftmarket/internal/money"
	"craftmarket/internal/notify"
	"craftmarket/internal/payment"
	"craftmarket/internal/store"
	"craftmarket/internal/store/storetest"
)

const (
	jwtSecret     = "jwt-secret"
	webhookSecret = "webhook-secret"
)

type fakeGateway struct {
	requests []payment.TransactionRequest
}

func (g *fakeGateway) CreateTransaction(_ context.Context, req payment.TransactionRequest) (payment.Transaction, error) {
	g.requests = append(g.requests, req)
	return payment.Transaction{Token: "tok-" + req.Reference, RedirectURL: "https://pay.example/" + req.Reference}, nil
}

type testServer struct {
	t       *testing.T
	st      *store.Store
	gateway *fakeGateway
	router  *gin.Engine
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	st := storetest.New(t)
	currency := money.NewCurrency("IDR", 2)
	notifier := notify.NewService(st)
	gateway := &fakeGateway{}
	router := NewRouter(Deps{
		DB:            st.DB(),
		JWTSecret:     jwtSecret,
		WebhookSecret: webhookSecret,
		Accounts:      account.NewService(st, jwtSecret, time.Hour, 24*time.Hour),
		Catalog:       catalog.NewService(st),
		Checkout:      checkout.NewService(st, gateway, currency, time.Hour),
		CustomOrders:  customorder.NewService(st, notifier, gateway, currency, time.Hour),
		Chat:          chat.NewService(st, notifier, chat.NewHub(8), nil, 2*time.Second),
		Notifications: notifier,
	})
	return &testServer{t: t, st: st, gateway: gateway, router: router}
}

func (s *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) webhook(body []byte, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/payment/webhook", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(payment.SignatureHeader, signature)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) signup(username, role string) (string, int64) {
	s.t.Helper()
	w := s.do(http.MethodPost, "/auth/register", "", gin.H{
		"username": username, "email": username + "@example.com", "password": "secret1",
		"fullName": "User " + username, "role": role,
	})
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(http.MethodPost, "/auth/login", "", gin.H{"email": username + "@example.com", "password": "secret1"})
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())
	var tokens account.Tokens
	require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &tokens))
	return tokens.AccessToken, tokens.User.ID
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestCustomOrderFlowOverHTTP(t *testing.T) {
	s := newTestServer(t)
	buyerToken, _ := s.signup("ayu", models.RoleUser)
	sellerToken, sellerUserID := s.signup("dewi", models.RoleSeller)

	seller, err := s.st.GetSellerByUserID(context.Background(), sellerUserID)
	require.NoError(t, err)

	w := s.do(http.MethodPost, "/custom-orders", buyerToken, gin.H{
		"sellerId": seller.ID, "description": "Embroidered tote bag with initials",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	order := decode[models.CustomOrder](t, w)

	w = s.do(http.MethodPost, fmt.Sprintf("/seller/custom-orders/%d/propose", order.ID), buyerToken, gin.H{"price": 15000})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(http.MethodPost, fmt.Sprintf("/seller/custom-orders/%d/propose", order.ID), sellerToken, gin.H{"price": 15000})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	offer := decode[models.PriceNegotiation](t, w)

	w = s.do(http.MethodPost, fmt.Sprintf("/custom-orders/%d/accept-price", order.ID), sellerToken, gin.H{"negotiationId": offer.ID})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(http.MethodPost, fmt.Sprintf("/custom-orders/%d/accept-price", order.ID), buyerToken, gin.H{"negotiationId": offer.ID})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, models.CustomOrderPaymentPending, decode[models.CustomOrder](t, w).Status)

	w = s.do(http.MethodPost, fmt.Sprintf("/custom-orders/%d/payment", order.ID), buyerToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	session := decode[customorder.PaymentSession](t, w)

	body, err := json.Marshal(gin.H{
		"order_id": session.Reference, "transaction_status": "settlement",
		"payment_type": "bank_transfer", "transaction_id": "trx-1",
	})
	require.NoError(t, err)

	w = s.webhook(body, "deadbeef")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	sig := payment.Sign([]byte(webhookSecret), body)
	w = s.webhook(body, sig)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodGet, fmt.Sprintf("/custom-orders/%d", order.ID), buyerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	detail := decode[models.CustomOrderDetail](t, w)
	assert.Equal(t, models.PaymentPaid, detail.PaymentStatus)
	assert.Equal(t, models.CustomOrderAccepted, detail.Status)

	w = s.do(http.MethodGet, "/notifications/unread-count", sellerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"count":3`)
}

func TestNegotiatedPriceIsChargedInMajorUnits(t *testing.T) {
	s := newTestServer(t)
	buyerToken, _ := s.signup("ayu", models.RoleUser)
	sellerToken, sellerUserID := s.signup("dewi", models.RoleSeller)
	seller, err := s.st.GetSellerByUserID(context.Background(), sellerUserID)
	require.NoError(t, err)

	w := s.do(http.MethodPost, "/custom-orders", buyerToken, gin.H{
		"sellerId": seller.ID, "description": "Hand-painted ceramic vase",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	order := decode[models.CustomOrder](t, w)

	w = s.do(http.MethodPost, fmt.Sprintf("/seller/custom-orders/%d/propose", order.ID), sellerToken, gin.H{"price": 100})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(http.MethodPost, fmt.Sprintf("/custom-orders/%d/counter", order.ID), buyerToken, gin.H{"price": 80.555})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, fmt.Sprintf("/custom-orders/%d/counter", order.ID), buyerToken, gin.H{"price": 80})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	counter := decode[models.PriceNegotiation](t, w)
	assert.Equal(t, money.Amount(8000), counter.Price)

	w = s.do(http.MethodPost, fmt.Sprintf("/custom-orders/%d/accept-price", order.ID), sellerToken, gin.H{"negotiationId": counter.ID})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"agreedPrice":80`)

	w = s.do(http.MethodPost, fmt.Sprintf("/custom-orders/%d/payment", order.ID), buyerToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Len(t, s.gateway.requests, 1)
	assert.Equal(t, int64(80), s.gateway.requests[0].GrossAmount)

	w = s.do(http.MethodGet, "/notifications", buyerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "IDR 80.00")
}

func TestWebhookRejectsBadReferences(t *testing.T) {
	s := newTestServer(t)

	cases := []struct {
		name   string
		ref    string
		status int
	}{
		{"non-numeric id", "custom-order-abc-1700000000000", http.StatusBadRequest},
		{"zero id", "ORDER-0-1700000000000", http.StatusBadRequest},
		{"missing custom order", "custom-order-999-1700000000000", http.StatusNotFound},
		{"missing order", "ORDER-999-1700000000000", http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			body, err := json.Marshal(gin.H{"order_id": tc.ref, "transaction_status": "settlement"})
			require.NoError(t, err)
			w := s.webhook(body, payment.Sign([]byte(webhookSecret), body))
			assert.Equal(t, tc.status, w.Code, w.Body.String())
		})
	}

	body := []byte(`{"transaction_status":"settlement"}`)
	w := s.webhook(body, payment.Sign([]byte(webhookSecret), body))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "orderID is required")
}

func TestCheckoutOverHTTP(t *testing.T) {
	s := newTestServer(t)
	buyerToken, _ := s.signup("ayu", models.RoleUser)
	sellerToken, _ := s.signup("dewi", models.RoleSeller)

	w := s.do(http.MethodPost, "/seller/products", sellerToken, gin.H{
		"name": "Clay mug", "description": "Wheel-thrown stoneware mug", "price": 4000,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	product := decode[models.Product](t, w)

	w = s.do(http.MethodPost, "/orders", buyerToken, gin.H{"items": []gin.H{{"productId": 9999, "quantity": 1}}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"productId":9999`)

	w = s.do(http.MethodPost, "/cart", buyerToken, gin.H{"productId": product.ID, "quantity": 2})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodPost, "/orders/checkout", buyerToken, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	orders := decode[[]models.Order](t, w)
	require.Len(t, orders, 1)
	assert.Equal(t, money.Amount(800000), orders[0].TotalAmount)
	assert.Contains(t, w.Body.String(), `"totalAmount":8000`)

	w = s.do(http.MethodGet, "/cart", buyerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[[]models.CartItem](t, w))

	w = s.do(http.MethodDelete, fmt.Sprintf("/seller/products/%d", product.ID), sellerToken, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(http.MethodGet, "/seller/orders", buyerToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	w := s.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}
