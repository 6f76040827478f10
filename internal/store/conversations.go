package store

import (
	"context"

	"craftmarket/internal/models"
)

const conversationColumns = "id, order_id, custom_order_id, created_at"

func (s *Store) GetConversation(ctx context.Context, id int64) (models.Conversation, error) {
	return s.conversation(ctx, "SELECT "+conversationColumns+" FROM conversations WHERE id = $1", id)
}

func (s *Store) FindOrderConversation(ctx context.Context, orderID int64) (models.Conversation, error) {
	return s.conversation(ctx, "SELECT "+conversationColumns+" FROM conversations WHERE order_id = $1", orderID)
}

func (s *Store) FindCustomOrderConversation(ctx context.Context, customOrderID int64) (models.Conversation, error) {
	return s.conversation(ctx, "SELECT "+conversationColumns+" FROM conversations WHERE custom_order_id = $1", customOrderID)
}

// EnsureOrderConversation returns the order's conversation, creating it once.
func (s *Store) EnsureOrderConversation(ctx context.Context, orderID int64) (models.Conversation, error) {
	if _, err := s.exec(ctx, "INSERT INTO conversations (order_id, created_at) VALUES ($1, $2) ON CONFLICT DO NOTHING",
		orderID, s.Now()); err != nil {
		return nil, err
	}
	return s.FindOrderConversation(ctx, orderID)
}

// EnsureCustomOrderConversation returns the custom order's conversation,
// creating it once.
func (s *Store) EnsureCustomOrderConversation(ctx context.Context, customOrderID int64) (models.Conversation, error) {
	if _, err := s.exec(ctx, "INSERT INTO conversations (custom_order_id, created_at) VALUES ($1, $2) ON CONFLICT DO NOTHING",
		customOrderID, s.Now()); err != nil {
		return nil, err
	}
	return s.FindCustomOrderConversation(ctx, customOrderID)
}

func (s *Store) conversation(ctx context.Context, query string, args ...any) (models.Conversation, error) {
	var row models.ConversationRow
	if err := s.get(ctx, &row, query, args...); err != nil {
		return nil, err
	}
	return models.ConversationFromRow(row)
}
