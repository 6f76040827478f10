package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"craftmarket/internal/models"
	"craftmarket/internal/store/storetest"
)

func TestEnsureCustomOrderConversationIsIdempotent(t *testing.T) {
	s := storetest.New(t)
	ctx := context.Background()
	o, buyer, sellerUser := newCustomOrder(t, s)

	first, err := s.EnsureCustomOrderConversation(ctx, o.ID)
	require.NoError(t, err)
	second, err := s.EnsureCustomOrderConversation(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ConversationID(), second.ConversationID())

	variant, ok := first.(models.CustomOrderConversation)
	require.True(t, ok)
	assert.Equal(t, o.ID, variant.CustomOrderID)

	for _, m := range []models.Message{
		{ConversationID: first.ConversationID(), SenderID: buyer.ID, Content: "hi"},
		{ConversationID: first.ConversationID(), SenderID: sellerUser.ID, Content: "hello"},
	} {
		require.NoError(t, s.CreateMessage(ctx, &m))
	}

	all, err := s.ListMessages(ctx, first.ConversationID(), 0)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "hi", all[0].Content)
	assert.Equal(t, buyer.FullName, all[0].SenderName)

	newer, err := s.ListMessages(ctx, first.ConversationID(), all[0].ID)
	require.NoError(t, err)
	require.Len(t, newer, 1)
	assert.Equal(t, "hello", newer[0].Content)
}

func TestEnsureOrderConversation(t *testing.T) {
	s := storetest.New(t)
	ctx := context.Background()
	buyer := storetest.Buyer(t, s, "eka")
	_, seller := storetest.Seller(t, s, "fajar")
	p := storetest.Product(t, s, seller.ID, "Batik scarf", 150000)

	order := models.Order{
		UserID: buyer.ID, SellerID: seller.ID, TotalAmount: p.Price, Status: models.OrderPending,
		PaymentStatus: models.OrderUnpaid, RequestTitle: "Order", Description: "d", Category: "product",
		Items: []models.OrderItem{{ProductID: p.ID, Quantity: 1, Price: p.Price}},
	}
	require.NoError(t, s.CreateOrder(ctx, &order))

	conv, err := s.EnsureOrderConversation(ctx, order.ID)
	require.NoError(t, err)
	variant, ok := conv.(models.OrderConversation)
	require.True(t, ok)
	assert.Equal(t, order.ID, variant.OrderID)
}
