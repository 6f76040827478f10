package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"craftmarket/internal/logging"
	"craftmarket/internal/models"
)

const channelPattern = "chat:conversation:*"

func channelName(conversationID int64) string {
	return fmt.Sprintf("chat:conversation:%d", conversationID)
}

// RedisBroker fans messages out across server instances. Every instance
// publishes to Redis and relays what it receives into its local Hub.
type RedisBroker struct {
	client *redis.Client
	hub    *Hub
	log    *slog.Logger
}

func NewRedisBroker(client *redis.Client, hub *Hub) *RedisBroker {
	return &RedisBroker{client: client, hub: hub, log: logging.Component("chat-redis")}
}

func (b *RedisBroker) Publish(ctx context.Context, msg models.Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return b.client.Publish(ctx, channelName(msg.ConversationID), payload).Err()
}

// Run relays Redis messages into the hub until ctx is cancelled.
func (b *RedisBroker) Run(ctx context.Context) error {
	sub := b.client.PSubscribe(ctx, channelPattern)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", channelPattern, err)
	}
	b.log.Info("chat broker subscribed", slog.String("pattern", channelPattern))

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case m, ok := <-ch:
			if !ok {
				return nil
			}
			var msg models.Message
			if err := json.Unmarshal([]byte(m.Payload), &msg); err != nil {
				b.log.Warn("discarding malformed chat payload", slog.String("channel", m.Channel), logging.Err(err))
				continue
			}
			_ = b.hub.Publish(ctx, msg)
		}
	}
}
