package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestConversationFromRow(t *testing.T) {
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	conv, err := ConversationFromRow(ConversationRow{ID: 1, CustomOrderID: ptr(int64(7)), CreatedAt: now})
	require.NoError(t, err)
	custom, ok := conv.(CustomOrderConversation)
	require.True(t, ok)
	assert.Equal(t, int64(7), custom.CustomOrderID)

	conv, err = ConversationFromRow(ConversationRow{ID: 2, OrderID: ptr(int64(9)), CreatedAt: now})
	require.NoError(t, err)
	_, ok = conv.(OrderConversation)
	assert.True(t, ok)

	_, err = ConversationFromRow(ConversationRow{ID: 3})
	assert.ErrorIs(t, err, ErrInvalidConversation)
	_, err = ConversationFromRow(ConversationRow{ID: 4, OrderID: ptr(int64(1)), CustomOrderID: ptr(int64(1))})
	assert.ErrorIs(t, err, ErrInvalidConversation)
}

func TestConversationJSONKeepsNullSide(t *testing.T) {
	body, err := json.Marshal(CustomOrderConversation{ID: 3, CustomOrderID: 5})
	require.NoError(t, err)
	assert.Contains(t, string(body), `"orderId":null`)
	assert.Contains(t, string(body), `"customOrderId":5`)
}

func TestStringListScan(t *testing.T) {
	var tags StringList
	require.NoError(t, tags.Scan(`["ceramic","blue"]`))
	assert.Equal(t, StringList{"ceramic", "blue"}, tags)

	require.NoError(t, tags.Scan([]byte("wood, oak ,")))
	assert.Equal(t, StringList{"wood", "oak"}, tags)

	require.NoError(t, tags.Scan(nil))
	assert.Nil(t, tags)

	assert.Error(t, tags.Scan(42))
}

func TestStringListValue(t *testing.T) {
	v, err := StringList{"a", "b"}.Value()
	require.NoError(t, err)
	assert.Equal(t, `["a","b"]`, v)

	v, err = StringList(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)
}

func TestPartiesRole(t *testing.T) {
	p := CustomOrderParties{BuyerID: 1, SellerUserID: 2}
	assert.Equal(t, PartyBuyer, p.Role(1))
	assert.Equal(t, PartySeller, p.Role(2))
	assert.Equal(t, Party(""), p.Role(3))
	assert.Equal(t, int64(2), p.Counterpart(PartyBuyer))
	assert.Equal(t, int64(1), p.Counterpart(PartySeller))
}
