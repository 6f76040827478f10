package chat

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"craftmarket/internal/models"
)

func TestHubIsolatesConversations(t *testing.T) {
	hub := NewHub(4)
	first, cancelFirst := hub.Subscribe(1)
	defer cancelFirst()
	second, cancelSecond := hub.Subscribe(2)
	defer cancelSecond()

	require.NoError(t, hub.Publish(context.Background(), models.Message{ID: 10, ConversationID: 1, Content: "one"}))

	select {
	case msg := <-first:
		assert.Equal(t, "one", msg.Content)
	case <-time.After(time.Second):
		t.Fatal("subscriber of conversation 1 did not receive the message")
	}
	select {
	case msg := <-second:
		t.Fatalf("conversation 2 received a foreign message: %+v", msg)
	default:
	}
}

func TestHubCancelUnregisters(t *testing.T) {
	hub := NewHub(1)
	ch, cancel := hub.Subscribe(7)
	assert.Len(t, hub.subs[7], 1)

	cancel()
	cancel()
	assert.Empty(t, hub.subs[7])
	_, open := <-ch
	assert.False(t, open)

	require.NoError(t, hub.Publish(context.Background(), models.Message{ConversationID: 7}))
}

func TestHubDropsWhenBufferFull(t *testing.T) {
	hub := NewHub(1)
	ch, cancel := hub.Subscribe(3)
	defer cancel()

	ctx := context.Background()
	require.NoError(t, hub.Publish(ctx, models.Message{ID: 1, ConversationID: 3}))
	require.NoError(t, hub.Publish(ctx, models.Message{ID: 2, ConversationID: 3}))

	msg := <-ch
	assert.EqualValues(t, 1, msg.ID)
	select {
	case extra := <-ch:
		t.Fatalf("expected overflow to be dropped, got %+v", extra)
	default:
	}
}
