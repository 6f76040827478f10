package checkout

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"craftmarket/internal/apperr"
	"craftmarket/internal/models"
	"craftmarket/internal/money"
	"craftmarket/internal/payment"
	"craftmarket/internal/store"
	"craftmarket/internal/store/storetest"
)

type fakeGateway struct {
	requests []payment.TransactionRequest
	err      error
}

func (g *fakeGateway) CreateTransaction(_ context.Context, req payment.TransactionRequest) (payment.Transaction, error) {
	if g.err != nil {
		return payment.Transaction{}, g.err
	}
	g.requests = append(g.requests, req)
	return payment.Transaction{Token: "order-token", RedirectURL: "https://pay.example/order-token"}, nil
}

type fixture struct {
	st       *store.Store
	svc      *Service
	gateway  *fakeGateway
	buyer    models.User
	sellerA  models.User
	sellerB  models.User
	productA models.Product
	productB models.Product
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := storetest.New(t)
	st.WithClock(storetest.NewClock().Now)

	gw := &fakeGateway{}
	buyer := storetest.Buyer(t, st, "ayu")
	userA, sellerA := storetest.Seller(t, st, "dewi")
	userB, sellerB := storetest.Seller(t, st, "made")
	return &fixture{
		st:       st,
		svc:      NewService(st, gw, money.NewCurrency("IDR", 2), time.Hour),
		gateway:  gw,
		buyer:    buyer,
		sellerA:  userA,
		sellerB:  userB,
		productA: storetest.Product(t, st, sellerA.ID, "Batik scarf", 12550),
		productB: storetest.Product(t, st, sellerB.ID, "Clay mug", 4000),
	}
}

func assertKind(t *testing.T, err error, kind apperr.Kind) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, apperr.Is(err, kind), "unexpected error %v", err)
}

func TestCheckoutSplitsOrdersPerSeller(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.AddToCart(ctx, f.buyer.ID, f.productA.ID, 1)
	require.NoError(t, err)
	_, err = f.svc.AddToCart(ctx, f.buyer.ID, f.productB.ID, 3)
	require.NoError(t, err)
	row, err := f.svc.AddToCart(ctx, f.buyer.ID, f.productA.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, row.Quantity)

	orders, err := f.svc.Checkout(ctx, f.buyer.ID)
	require.NoError(t, err)
	require.Len(t, orders, 2)

	assert.Equal(t, f.productA.SellerID, orders[0].SellerID)
	assert.Equal(t, money.Amount(25100), orders[0].TotalAmount)
	assert.Equal(t, orderRequestTitle, orders[0].RequestTitle)
	assert.Equal(t, orderCategory, orders[0].Category)
	assert.Equal(t, models.OrderUnpaid, orders[0].PaymentStatus)
	assert.Equal(t, money.Amount(12000), orders[1].TotalAmount)

	cart, err := f.svc.GetCart(ctx, f.buyer.ID)
	require.NoError(t, err)
	assert.Empty(t, cart)

	mine, err := f.svc.GetForUser(ctx, f.buyer.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	sellerOrders, err := f.svc.GetForSeller(ctx, f.sellerB.ID)
	require.NoError(t, err)
	require.Len(t, sellerOrders, 1)
	require.Len(t, sellerOrders[0].Items, 1)
	assert.Equal(t, 3, sellerOrders[0].Items[0].Quantity)
	assert.Equal(t, "Clay mug", sellerOrders[0].Items[0].ProductName)
}

func TestCreateOrdersIsAllOrNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateOrders(ctx, f.buyer.ID, []LineInput{
		{ProductID: f.productA.ID, Quantity: 1},
		{ProductID: f.productB.ID, Quantity: 1},
		{ProductID: 9999, Quantity: 1},
	})
	var notFound ProductNotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, int64(9999), notFound.ProductID)

	orders, err := f.svc.GetForUser(ctx, f.buyer.ID)
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestCheckoutEmptyCart(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Checkout(context.Background(), f.buyer.ID)
	assertKind(t, err, apperr.KindValidation)
}

func TestCartOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	row, err := f.svc.AddToCart(ctx, f.buyer.ID, f.productA.ID, 1)
	require.NoError(t, err)

	_, err = f.svc.UpdateCartItem(ctx, f.sellerA.ID, row.ID, 5)
	assertKind(t, err, apperr.KindForbidden)
	assertKind(t, f.svc.RemoveCartItem(ctx, f.sellerA.ID, row.ID), apperr.KindForbidden)

	_, err = f.svc.UpdateCartItem(ctx, f.buyer.ID, row.ID, 0)
	assertKind(t, err, apperr.KindValidation)

	updated, err := f.svc.UpdateCartItem(ctx, f.buyer.ID, row.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, updated.Quantity)

	_, err = f.svc.AddToCart(ctx, f.buyer.ID, 9999, 1)
	assertKind(t, err, apperr.KindNotFound)

	require.NoError(t, f.svc.RemoveCartItem(ctx, f.buyer.ID, row.ID))
	n, err := f.svc.ClearCart(ctx, f.buyer.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestUpdateStatusOnlyBySeller(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	orders, err := f.svc.CreateOrders(ctx, f.buyer.ID, []LineInput{{ProductID: f.productA.ID, Quantity: 1}})
	require.NoError(t, err)
	id := orders[0].ID

	_, err = f.svc.UpdateStatus(ctx, f.sellerB.ID, id, models.OrderCompleted)
	assertKind(t, err, apperr.KindForbidden)
	_, err = f.svc.UpdateStatus(ctx, f.sellerA.ID, id, "shipped")
	assertKind(t, err, apperr.KindValidation)

	order, err := f.svc.UpdateStatus(ctx, f.sellerA.ID, id, models.OrderCompleted)
	require.NoError(t, err)
	assert.Equal(t, models.OrderCompleted, order.Status)
}

func TestCreateSnapTokenAndWebhook(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	orders, err := f.svc.CreateOrders(ctx, f.buyer.ID, []LineInput{{ProductID: f.productA.ID, Quantity: 2}})
	require.NoError(t, err)
	id := orders[0].ID

	_, err = f.svc.CreateSnapToken(ctx, f.sellerA.ID, id)
	assertKind(t, err, apperr.KindForbidden)

	session, err := f.svc.CreateSnapToken(ctx, f.buyer.ID, id)
	require.NoError(t, err)
	assert.Equal(t, "order-token", session.Token)

	kind, parsed, err := payment.ParseReference(session.Reference)
	require.NoError(t, err)
	assert.Equal(t, payment.KindOrder, kind)
	assert.Equal(t, id, parsed)

	require.Len(t, f.gateway.requests, 1)
	req := f.gateway.requests[0]
	assert.Equal(t, int64(251), req.GrossAmount)
	require.Len(t, req.Items, 1)
	assert.Equal(t, "Product", req.Items[0].Category)
	assert.Equal(t, int64(126), req.Items[0].Price)
	assert.Equal(t, "Buyer ayu", req.Customer.FirstName)

	order, err := f.st.GetOrder(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.OrderPaymentPending, order.PaymentStatus)

	require.NoError(t, f.svc.ApplyWebhookStatus(ctx, id, payment.OutcomePaid))
	require.NoError(t, f.svc.ApplyWebhookStatus(ctx, id, payment.OutcomeFailed))
	order, err = f.st.GetOrder(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.OrderPaid, order.PaymentStatus)

	_, err = f.svc.CreateSnapToken(ctx, f.buyer.ID, id)
	assertKind(t, err, apperr.KindConflict)

	assertKind(t, f.svc.ApplyWebhookStatus(ctx, 9999, payment.OutcomePaid), apperr.KindNotFound)
}

func TestCreateSnapTokenGatewayFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	orders, err := f.svc.CreateOrders(ctx, f.buyer.ID, []LineInput{{ProductID: f.productB.ID, Quantity: 1}})
	require.NoError(t, err)

	f.gateway.err = errors.New("connection refused")
	_, err = f.svc.CreateSnapToken(ctx, f.buyer.ID, orders[0].ID)
	assertKind(t, err, apperr.KindUpstream)

	order, err := f.st.GetOrder(ctx, orders[0].ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderUnpaid, order.PaymentStatus)
	assert.Nil(t, order.SnapToken)
}
