// Package chat stores conversation messages and pushes them to live readers.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"craftmarket/internal/apperr"
	"craftmarket/internal/logging"
	"craftmarket/internal/models"
	"craftmarket/internal/notify"
	"craftmarket/internal/store"
)

type Service struct {
	store        *store.Store
	notify       *notify.Service
	hub          *Hub
	publisher    Publisher
	pollInterval time.Duration
}

// NewService wires the chat service. publisher defaults to the hub itself
// when messages do not need to cross instances.
func NewService(st *store.Store, notifier *notify.Service, hub *Hub, publisher Publisher, pollInterval time.Duration) *Service {
	if publisher == nil {
		publisher = hub
	}
	return &Service{store: st, notify: notifier, hub: hub, publisher: publisher, pollInterval: pollInterval}
}

type SendInput struct {
	OrderID       *int64 `json:"orderId"`
	CustomOrderID *int64 `json:"customOrderId"`
	Content       string `json:"content"`
}

type History struct {
	Messages       []models.Message `json:"messages"`
	PollIntervalMs int64            `json:"pollIntervalMs"`
}

// CustomOrderThread is a custom order's chat as seen by one participant.
type CustomOrderThread struct {
	Conversation models.Conversation `json:"conversation"`
	CustomOrder  models.CustomOrder  `json:"customOrder"`
	OtherUser    models.UserRef      `json:"otherUser"`
}

type participants struct {
	buyerID      int64
	sellerUserID int64
}

func (p participants) includes(userID int64) bool {
	return userID == p.buyerID || userID == p.sellerUserID
}

func (p participants) other(userID int64) int64 {
	if userID == p.buyerID {
		return p.sellerUserID
	}
	return p.buyerID
}

func (s *Service) customOrderParticipants(ctx context.Context, id int64) (participants, error) {
	parties, err := s.store.GetCustomOrderParties(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return participants{}, apperr.NotFound("custom order not found")
	}
	if err != nil {
		return participants{}, err
	}
	return participants{buyerID: parties.BuyerID, sellerUserID: parties.SellerUserID}, nil
}

func (s *Service) orderParticipants(ctx context.Context, id int64) (participants, error) {
	order, err := s.store.GetOrder(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return participants{}, apperr.NotFound("order not found")
	}
	if err != nil {
		return participants{}, err
	}
	seller, err := s.store.GetSellerByID(ctx, order.SellerID)
	if err != nil {
		return participants{}, err
	}
	return participants{buyerID: order.UserID, sellerUserID: seller.UserID}, nil
}

func (s *Service) conversationParticipants(ctx context.Context, conv models.Conversation) (participants, error) {
	switch c := conv.(type) {
	case models.OrderConversation:
		return s.orderParticipants(ctx, c.OrderID)
	case models.CustomOrderConversation:
		return s.customOrderParticipants(ctx, c.CustomOrderID)
	default:
		return participants{}, models.ErrInvalidConversation
	}
}

// SendMessage stores a message in the conversation of exactly one order or
// custom order, notifies the other participant and publishes it live.
func (s *Service) SendMessage(ctx context.Context, senderID int64, in SendInput) (models.Message, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return models.Message{}, apperr.Validation("message content is required")
	}
	if (in.OrderID == nil) == (in.CustomOrderID == nil) {
		return models.Message{}, apperr.Validation("exactly one of orderId or customOrderId is required")
	}

	var (
		conv   models.Conversation
		people participants
		note   string
		err    error
	)
	if in.CustomOrderID != nil {
		conv, err = s.store.FindCustomOrderConversation(ctx, *in.CustomOrderID)
		if err == nil {
			people, err = s.customOrderParticipants(ctx, *in.CustomOrderID)
		}
		note = fmt.Sprintf("You have a new message for custom order #%d", *in.CustomOrderID)
	} else {
		conv, err = s.store.FindOrderConversation(ctx, *in.OrderID)
		if err == nil {
			people, err = s.orderParticipants(ctx, *in.OrderID)
		}
		note = fmt.Sprintf("You have a new message for order #%d", *in.OrderID)
	}
	if errors.Is(err, store.ErrNotFound) {
		return models.Message{}, apperr.NotFound("conversation not found")
	}
	if err != nil {
		return models.Message{}, err
	}
	if !people.includes(senderID) {
		return models.Message{}, apperr.Forbidden("you are not a participant in this conversation")
	}

	msg := models.Message{ConversationID: conv.ConversationID(), SenderID: senderID, Content: content}
	err = s.store.Transact(ctx, func(ctx context.Context) error {
		if err := s.store.CreateMessage(ctx, &msg); err != nil {
			return err
		}
		return s.notify.Notify(ctx, people.other(senderID), models.NotificationMessage, "New Message", note)
	})
	if err != nil {
		return models.Message{}, err
	}

	if sender, err := s.store.GetUserByID(ctx, senderID); err == nil {
		msg.SenderName = sender.FullName
	}
	if err := s.publisher.Publish(ctx, msg); err != nil {
		logging.FromContext(ctx).Warn("chat publish failed",
			slog.Int64("conversation_id", msg.ConversationID), logging.Err(err))
	}
	return msg, nil
}

// GetHistory returns the messages after afterID for a participant.
func (s *Service) GetHistory(ctx context.Context, viewerID, conversationID, afterID int64) (History, error) {
	if err := s.authorize(ctx, viewerID, conversationID); err != nil {
		return History{}, err
	}
	messages, err := s.store.ListMessages(ctx, conversationID, afterID)
	if err != nil {
		return History{}, err
	}
	return History{Messages: messages, PollIntervalMs: s.pollInterval.Milliseconds()}, nil
}

// Subscribe streams new messages of a conversation to a participant.
func (s *Service) Subscribe(ctx context.Context, viewerID, conversationID int64) (<-chan models.Message, func(), error) {
	if err := s.authorize(ctx, viewerID, conversationID); err != nil {
		return nil, nil, err
	}
	ch, cancel := s.hub.Subscribe(conversationID)
	return ch, cancel, nil
}

func (s *Service) authorize(ctx context.Context, viewerID, conversationID int64) error {
	conv, err := s.store.GetConversation(ctx, conversationID)
	if errors.Is(err, store.ErrNotFound) {
		return apperr.NotFound("conversation not found")
	}
	if err != nil {
		return err
	}
	people, err := s.conversationParticipants(ctx, conv)
	if err != nil {
		return err
	}
	if !people.includes(viewerID) {
		return apperr.Forbidden("you are not a participant in this conversation")
	}
	return nil
}

func (s *Service) GetOrCreateCustomOrderConversation(ctx context.Context, userID, customOrderID int64) (models.Conversation, error) {
	people, err := s.customOrderParticipants(ctx, customOrderID)
	if err != nil {
		return nil, err
	}
	if !people.includes(userID) {
		return nil, apperr.Forbidden("you do not have access to this custom order")
	}
	return s.store.EnsureCustomOrderConversation(ctx, customOrderID)
}

func (s *Service) GetOrCreateOrderConversation(ctx context.Context, userID, orderID int64) (models.Conversation, error) {
	people, err := s.orderParticipants(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !people.includes(userID) {
		return nil, apperr.Forbidden("you do not have access to this order")
	}
	return s.store.EnsureOrderConversation(ctx, orderID)
}

// GetCustomOrderConversation returns the thread without creating it; the
// conversation is nil until the order is accepted or negotiated.
func (s *Service) GetCustomOrderConversation(ctx context.Context, userID, customOrderID int64) (CustomOrderThread, error) {
	people, err := s.customOrderParticipants(ctx, customOrderID)
	if err != nil {
		return CustomOrderThread{}, err
	}
	if !people.includes(userID) {
		return CustomOrderThread{}, apperr.Forbidden("you do not have access to this custom order")
	}

	order, err := s.store.GetCustomOrder(ctx, customOrderID)
	if err != nil {
		return CustomOrderThread{}, err
	}
	other, err := s.store.GetUserByID(ctx, people.other(userID))
	if err != nil {
		return CustomOrderThread{}, err
	}
	thread := CustomOrderThread{
		CustomOrder: order,
		OtherUser:   models.UserRef{ID: other.ID, FullName: other.FullName, Email: other.Email},
	}
	conv, err := s.store.FindCustomOrderConversation(ctx, customOrderID)
	switch {
	case err == nil:
		thread.Conversation = conv
	case !errors.Is(err, store.ErrNotFound):
		return CustomOrderThread{}, err
	}
	return thread, nil
}
