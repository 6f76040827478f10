package store

import (
	"context"
	"time"

	"craftmarket/internal/models"
)

const notificationColumns = "id, user_id, title, message, type, read, created_at, published_at"

func (s *Store) CreateNotification(ctx context.Context, n *models.Notification) error {
	now := s.Now()
	id, err := s.insert(ctx, "INSERT INTO notifications (user_id, title, message, type, read, created_at) VALUES ($1, $2, $3, $4, $5, $6) RETURNING id",
		n.UserID, n.Title, n.Message, n.Type, false, now)
	if err != nil {
		return err
	}
	n.ID, n.Read, n.CreatedAt = id, false, now
	return nil
}

func (s *Store) ListNotifications(ctx context.Context, userID int64, limit int) ([]models.Notification, error) {
	out := []models.Notification{}
	err := s.selectAll(ctx, &out, "SELECT "+notificationColumns+" FROM notifications WHERE user_id = $1 ORDER BY created_at DESC, id DESC LIMIT $2",
		userID, limit)
	return out, err
}

func (s *Store) CountUnreadNotifications(ctx context.Context, userID int64) (int64, error) {
	var n int64
	err := s.get(ctx, &n, "SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND read = $2", userID, false)
	return n, err
}

// MarkNotificationRead reports ErrNotFound when the notification is not userID's.
func (s *Store) MarkNotificationRead(ctx context.Context, id, userID int64) error {
	n, err := s.exec(ctx, "UPDATE notifications SET read = $1 WHERE id = $2 AND user_id = $3", true, id, userID)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) MarkAllNotificationsRead(ctx context.Context, userID int64) (int64, error) {
	return s.exec(ctx, "UPDATE notifications SET read = $1 WHERE user_id = $2 AND read = $3", true, userID, false)
}

// ListUnpublishedNotifications returns the relay backlog in insertion order.
func (s *Store) ListUnpublishedNotifications(ctx context.Context, limit int) ([]models.Notification, error) {
	out := []models.Notification{}
	err := s.selectAll(ctx, &out, "SELECT "+notificationColumns+" FROM notifications WHERE published_at IS NULL ORDER BY id LIMIT $1", limit)
	return out, err
}

func (s *Store) MarkNotificationsPublished(ctx context.Context, ids []int64, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	query, args, err := in("UPDATE notifications SET published_at = ? WHERE id IN (?)", at.UTC(), ids)
	if err != nil {
		return err
	}
	_, err = s.exec(ctx, query, args...)
	return err
}
