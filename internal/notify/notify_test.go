package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"craftmarket/internal/apperr"
	"craftmarket/internal/models"
	"craftmarket/internal/store/storetest"
)

func TestServiceMarkAsReadForeignNotification(t *testing.T) {
	st := storetest.New(t)
	ctx := context.Background()
	alice := storetest.Buyer(t, st, "alice")
	bob := storetest.Buyer(t, st, "bob")
	svc := NewService(st)

	require.NoError(t, svc.Notify(ctx, alice.ID, models.NotificationMessage, "New Message", "hi"))
	list, err := svc.GetForUser(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)

	err = svc.MarkAsRead(ctx, bob.ID, list[0].ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	require.NoError(t, svc.MarkAsRead(ctx, alice.ID, list[0].ID))
	count, err := svc.UnreadCount(ctx, alice.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

type recordingPublisher struct {
	batches [][]models.Notification
	err     error
}

func (p *recordingPublisher) Publish(_ context.Context, batch []models.Notification) error {
	if p.err != nil {
		return p.err
	}
	p.batches = append(p.batches, batch)
	return nil
}

func TestRelayFlushMarksPublished(t *testing.T) {
	st := storetest.New(t)
	ctx := context.Background()
	user := storetest.Buyer(t, st, "carla")
	svc := NewService(st)
	require.NoError(t, svc.Notify(ctx, user.ID, models.NotificationCustomOrder, "New Custom Order", "a"))
	require.NoError(t, svc.Notify(ctx, user.ID, models.NotificationMessage, "New Message", "b"))

	pub := &recordingPublisher{}
	relay := NewRelay(st, pub, 0)

	n, err := relay.Flush(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.Len(t, pub.batches, 1)
	assert.Equal(t, "New Custom Order", pub.batches[0][0].Title)

	n, err = relay.Flush(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRelayFlushKeepsBacklogOnPublishError(t *testing.T) {
	st := storetest.New(t)
	ctx := context.Background()
	user := storetest.Buyer(t, st, "dian")
	require.NoError(t, NewService(st).Notify(ctx, user.ID, models.NotificationMessage, "New Message", "x"))

	relay := NewRelay(st, &recordingPublisher{err: errors.New("broker down")}, 0)
	_, err := relay.Flush(ctx)
	require.Error(t, err)

	pending, err := st.ListUnpublishedNotifications(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestToEvent(t *testing.T) {
	ev := toEvent(models.Notification{ID: 3, UserID: 9, Type: models.NotificationPaymentSuccess, Title: "Payment Successful"})
	assert.Equal(t, int64(9), ev.UserID)
	assert.Equal(t, "payment_success", ev.Type)
}
