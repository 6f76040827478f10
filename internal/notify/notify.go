// Package notify writes user notifications and relays them to Kafka.
package notify

import (
	"context"
	"errors"

	"craftmarket/internal/apperr"
	"craftmarket/internal/models"
	"craftmarket/internal/store"
)

// ListLimit caps how many notifications a user sees per fetch.
const ListLimit = 50

type Service struct {
	store *store.Store
}

func NewService(st *store.Store) *Service {
	return &Service{store: st}
}

// Notify records an event for userID. It joins the caller's transaction when
// ctx carries one.
func (s *Service) Notify(ctx context.Context, userID int64, typ, title, message string) error {
	n := models.Notification{UserID: userID, Type: typ, Title: title, Message: message}
	return s.store.CreateNotification(ctx, &n)
}

func (s *Service) GetForUser(ctx context.Context, userID int64) ([]models.Notification, error) {
	return s.store.ListNotifications(ctx, userID, ListLimit)
}

func (s *Service) MarkAsRead(ctx context.Context, userID, id int64) error {
	err := s.store.MarkNotificationRead(ctx, id, userID)
	if errors.Is(err, store.ErrNotFound) {
		return apperr.NotFound("notification not found")
	}
	return err
}

func (s *Service) MarkAllAsRead(ctx context.Context, userID int64) (int64, error) {
	return s.store.MarkAllNotificationsRead(ctx, userID)
}

func (s *Service) UnreadCount(ctx context.Context, userID int64) (int64, error) {
	return s.store.CountUnreadNotifications(ctx, userID)
}
