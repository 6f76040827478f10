package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"craftmarket/internal/models"
	"craftmarket/internal/store"
	"craftmarket/internal/store/storetest"
)

func TestTransactRollsBackOnError(t *testing.T) {
	s := storetest.New(t)
	ctx := context.Background()
	buyer := storetest.Buyer(t, s, "ayu")

	boom := errors.New("boom")
	err := s.Transact(ctx, func(ctx context.Context) error {
		n := models.Notification{UserID: buyer.ID, Title: "t", Message: "m", Type: models.NotificationMessage}
		require.NoError(t, s.CreateNotification(ctx, &n))
		return boom
	})
	require.ErrorIs(t, err, boom)

	count, err := s.CountUnreadNotifications(ctx, buyer.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestTransactNestedJoinsOuter(t *testing.T) {
	s := storetest.New(t)
	ctx := context.Background()
	buyer := storetest.Buyer(t, s, "budi")

	err := s.Transact(ctx, func(ctx context.Context) error {
		return s.Transact(ctx, func(ctx context.Context) error {
			n := models.Notification{UserID: buyer.ID, Title: "t", Message: "m", Type: models.NotificationMessage}
			return s.CreateNotification(ctx, &n)
		})
	})
	require.NoError(t, err)

	count, err := s.CountUnreadNotifications(ctx, buyer.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestGetMissingReturnsNotFound(t *testing.T) {
	s := storetest.New(t)
	ctx := context.Background()

	_, err := s.GetCustomOrder(ctx, 42)
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = s.GetConversation(ctx, 42)
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = s.GetOrder(ctx, 42)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestCreateNotificationWithSQLMock(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	s := store.New(sqlx.NewDb(db, "sqlmock")).WithClock(func() time.Time { return now })

	mock.ExpectQuery("INSERT INTO notifications").
		WithArgs(int64(7), "New Message", "hello", models.NotificationMessage, false, now).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))

	n := models.Notification{UserID: 7, Title: "New Message", Message: "hello", Type: models.NotificationMessage}
	require.NoError(t, s.CreateNotification(context.Background(), &n))
	assert.EqualValues(t, 11, n.ID)
	assert.Equal(t, now, n.CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactRollbackWithSQLMock(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	s := store.New(sqlx.NewDb(db, "sqlmock"))

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE custom_orders SET status").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err = s.Transact(context.Background(), func(ctx context.Context) error {
		return s.TransitionCustomOrder(ctx, 3, models.CustomOrderPending, models.CustomOrderAccepted)
	})
	assert.ErrorIs(t, err, store.ErrStale)
	require.NoError(t, mock.ExpectationsWereMet())
}
