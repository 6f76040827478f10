package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"craftmarket/internal/models"
	"craftmarket/internal/store"
	"craftmarket/internal/store/storetest"
)

func TestCreateOrderLoadsItems(t *testing.T) {
	s := storetest.New(t)
	ctx := context.Background()
	buyer := storetest.Buyer(t, s, "gita")
	_, seller := storetest.Seller(t, s, "hadi")
	mug := storetest.Product(t, s, seller.ID, "Clay mug", 45000)
	bowl := storetest.Product(t, s, seller.ID, "Clay bowl", 60000)

	order := models.Order{
		UserID: buyer.ID, SellerID: seller.ID, TotalAmount: 150000, Status: models.OrderPending,
		PaymentStatus: models.OrderUnpaid, RequestTitle: "Order from cart", Description: "d", Category: "product",
		Items: []models.OrderItem{
			{ProductID: mug.ID, Quantity: 2, Price: mug.Price},
			{ProductID: bowl.ID, Quantity: 1, Price: bowl.Price},
		},
	}
	require.NoError(t, s.CreateOrder(ctx, &order))

	got, err := s.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 2)
	assert.Equal(t, "Clay mug", got.Items[0].ProductName)
	assert.Equal(t, 2, got.Items[0].Quantity)

	list, err := s.ListOrdersBySeller(ctx, seller.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Len(t, list[0].Items, 2)
}

func TestOrderPaymentStatusNeverLeavesPaid(t *testing.T) {
	s := storetest.New(t)
	ctx := context.Background()
	buyer := storetest.Buyer(t, s, "indra")
	_, seller := storetest.Seller(t, s, "joko")
	p := storetest.Product(t, s, seller.ID, "Rattan basket", 70000)

	order := models.Order{
		UserID: buyer.ID, SellerID: seller.ID, TotalAmount: p.Price, Status: models.OrderPending,
		PaymentStatus: models.OrderUnpaid, RequestTitle: "Order", Description: "d", Category: "product",
		Items: []models.OrderItem{{ProductID: p.ID, Quantity: 1, Price: p.Price}},
	}
	require.NoError(t, s.CreateOrder(ctx, &order))

	require.NoError(t, s.UpdateOrderPaymentStatus(ctx, order.ID, models.OrderPaid))
	require.NoError(t, s.UpdateOrderPaymentStatus(ctx, order.ID, models.OrderPaymentFailed))

	got, err := s.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderPaid, got.PaymentStatus)

	err = s.SetOrderSnapToken(ctx, order.ID, "late-token")
	assert.ErrorIs(t, err, store.ErrStale)
	got, err = s.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderPaid, got.PaymentStatus)
	assert.Nil(t, got.SnapToken)
}

func TestNotificationsOutbox(t *testing.T) {
	s := storetest.New(t)
	clock := storetest.NewClock()
	s.WithClock(clock.Now)
	ctx := context.Background()
	buyer := storetest.Buyer(t, s, "kartika")

	for _, title := range []string{"one", "two", "three"} {
		n := models.Notification{UserID: buyer.ID, Title: title, Message: title, Type: models.NotificationMessage}
		require.NoError(t, s.CreateNotification(ctx, &n))
		clock.Advance(time.Minute)
	}

	list, err := s.ListNotifications(ctx, buyer.ID, 2)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "three", list[0].Title)

	require.NoError(t, s.MarkNotificationRead(ctx, list[0].ID, buyer.ID))
	unread, err := s.CountUnreadNotifications(ctx, buyer.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, unread)

	pending, err := s.ListUnpublishedNotifications(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 3)
	require.NoError(t, s.MarkNotificationsPublished(ctx, []int64{pending[0].ID, pending[1].ID}, clock.Now()))

	pending, err = s.ListUnpublishedNotifications(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "three", pending[0].Title)

	marked, err := s.MarkAllNotificationsRead(ctx, buyer.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, marked)
}
