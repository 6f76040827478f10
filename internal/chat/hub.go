package chat

import (
	"context"
	"log/slog"
	"sync"

	"craftmarket/internal/logging"
	"craftmarket/internal/models"
)

// Publisher delivers a stored message to live subscribers.
type Publisher interface {
	Publish(ctx context.Context, msg models.Message) error
}

// Hub is an in-process registry of subscribers keyed by conversation id.
type Hub struct {
	mu     sync.RWMutex
	subs   map[int64]map[chan models.Message]struct{}
	buffer int
}

func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = 16
	}
	return &Hub{subs: make(map[int64]map[chan models.Message]struct{}), buffer: buffer}
}

// Subscribe registers a listener for one conversation. The returned cancel
// unregisters it and closes the channel; it is safe to call more than once.
func (h *Hub) Subscribe(conversationID int64) (<-chan models.Message, func()) {
	ch := make(chan models.Message, h.buffer)

	h.mu.Lock()
	if h.subs[conversationID] == nil {
		h.subs[conversationID] = make(map[chan models.Message]struct{})
	}
	h.subs[conversationID][ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subs[conversationID], ch)
			if len(h.subs[conversationID]) == 0 {
				delete(h.subs, conversationID)
			}
			close(ch)
		})
	}
	return ch, cancel
}

// Publish fans msg out to the conversation's subscribers. A subscriber whose
// buffer is full misses the message and catches up by polling.
func (h *Hub) Publish(_ context.Context, msg models.Message) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subs[msg.ConversationID] {
		select {
		case ch <- msg:
		default:
			logging.Component("chat-hub").Warn("subscriber buffer full, dropping message",
				slog.Int64("conversation_id", msg.ConversationID), slog.Int64("message_id", msg.ID))
		}
	}
	return nil
}
