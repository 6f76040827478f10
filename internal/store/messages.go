package store

import (
	"context"

	"craftmarket/internal/models"
)

var listMessagesQuery = `SELECT m.id, m.conversation_id, m.sender_id, u.full_name AS sender_name, m.content, m.created_at
FROM messages m JOIN users u ON u.id = m.sender_id
WHERE m.conversation_id = $1 AND m.id > $2
ORDER BY m.created_at ASC, m.id ASC`

func (s *Store) CreateMessage(ctx context.Context, m *models.Message) error {
	now := s.Now()
	id, err := s.insert(ctx, "INSERT INTO messages (conversation_id, sender_id, content, created_at) VALUES ($1, $2, $3, $4) RETURNING id",
		m.ConversationID, m.SenderID, m.Content, now)
	if err != nil {
		return err
	}
	m.ID, m.CreatedAt = id, now
	return nil
}

// ListMessages returns messages with id greater than afterID in send order.
func (s *Store) ListMessages(ctx context.Context, conversationID, afterID int64) ([]models.Message, error) {
	out := []models.Message{}
	err := s.selectAll(ctx, &out, listMessagesQuery, conversationID, afterID)
	return out, err
}
